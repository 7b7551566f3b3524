// Package app bootstraps the CourseBridge service: configuration, storage,
// the Saleor client, the fulfillment pipeline and the HTTP surface.
package app

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"CourseBridge/config"
	"CourseBridge/internal/controller/rest"
	"CourseBridge/internal/controller/rest/handlers"
	"CourseBridge/internal/domain/enrollment"
	"CourseBridge/internal/domain/fulfillment"
	"CourseBridge/internal/external/kafka"
	"CourseBridge/internal/external/opensearch"
	"CourseBridge/internal/external/saleor"
	course_repo "CourseBridge/internal/repo/course"
	enrollment_repo "CourseBridge/internal/repo/enrollment"
	user_repo "CourseBridge/internal/repo/user"
	"CourseBridge/internal/repo/webhooklog"
	"CourseBridge/internal/saleorapp"
	"CourseBridge/pkg/health"
	"CourseBridge/pkg/logger"
	"CourseBridge/pkg/postgres"

	"golang.org/x/sync/errgroup"
)

//go:embed migrations/*.sql
var MIGRATION_FS embed.FS

const shutdownTimeout = 5 * time.Second

func Run(cfg config.Config) {
	l := logger.New(cfg.LogLevel)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	pg, err := postgres.New(cfg.PgURL, postgres.MaxPoolSize(cfg.PgPoolMax))
	if err != nil {
		l.Fatal(fmt.Errorf("app - Run - postgres.New: %w", err))
	}
	defer pg.Close()

	if err = ApplyMigrations(cfg.PgURL, MIGRATION_FS); err != nil {
		l.Fatal(fmt.Errorf("app - Run - ApplyMigrations: %w", err))
	}

	userRepo := user_repo.NewPgUserRepo(pg)
	courseRepo := course_repo.NewPgCourseRepo(pg)
	enrollmentRepo := enrollment_repo.NewPgEnrollmentRepo(pg)
	processedOrders := webhooklog.NewPgProcessedOrders(pg)

	var enrollmentOpts []enrollment.Option
	if len(cfg.KafkaBrokers) > 0 {
		l.Info("Enrollment events enabled: brokers=%v topic=%s", cfg.KafkaBrokers, cfg.KafkaEnrollmentsTopic)
		publisher := kafka.NewPublisher(l, cfg.KafkaBrokers, cfg.KafkaEnrollmentsTopic)
		defer func() { _ = publisher.Close() }()
		enrollmentOpts = append(enrollmentOpts, enrollment.WithEventPublisher(publisher))
	}
	if len(cfg.OpensearchURLs) > 0 {
		sink, err := opensearch.NewAuditSink(ctx, cfg.OpensearchURLs, cfg.OpensearchIndexEnrollment)
		if err != nil {
			l.Fatal(fmt.Errorf("app - Run - opensearch.NewAuditSink: %w", err))
		}
		enrollmentOpts = append(enrollmentOpts, enrollment.WithAuditSink(sink))
	}
	enrollmentService := enrollment.NewService(userRepo, courseRepo, enrollmentRepo, l, enrollmentOpts...)

	tokens := saleor.NewTokenStore(cfg.SaleorAPIToken)
	retry := saleor.DefaultRetryConfig()
	if cfg.SaleorRetryAttempts > 0 {
		retry.MaxAttempts = cfg.SaleorRetryAttempts
	}
	saleorClient := saleor.NewClient(cfg.SaleorAPIURL, tokens, cfg.SaleorTimeout, retry, l, nil)

	fulfiller := saleorapp.NewFulfiller(saleorClient, l)

	registry := fulfillment.NewRegistry()
	fulfillment.NewSteps(enrollmentService, enrollmentService, fulfiller, l).RegisterAll(registry)
	pipeline := fulfillment.NewEngine(registry, cfg.FulfillmentPipeline, l)
	fulfillmentService := fulfillment.NewService(pipeline, processedOrders, l)

	checkoutService := saleorapp.NewCheckoutService(saleorClient, cfg.SaleorStorefrontHost, cfg.SaleorChannel, l)
	courseSync := saleorapp.NewCourseSync(saleorClient, courseRepo, l)
	manifest := saleorapp.NewManifest(cfg.AppBaseURL)

	webhookHandler := handlers.NewWebhookHandler(fulfillmentService, l)
	appHandler := handlers.NewAppHandler(manifest, tokens, l)
	checkoutHandler := handlers.NewCheckoutHandler(checkoutService, l)
	courseHandler := handlers.NewCourseHandler(courseSync, l)

	checkers := []health.Checker{
		health.NewPostgresChecker(pg.Pool),
		health.NewHTTPChecker("saleor", cfg.SaleorAPIURL),
	}
	if len(cfg.KafkaBrokers) > 0 {
		checkers = append(checkers, health.NewKafkaChecker(cfg.KafkaBrokers))
	}
	healthRegistry := health.NewRegistry(checkers...)

	engine := NewGinEngine(l)
	router := rest.NewRouter(webhookHandler, appHandler, checkoutHandler, courseHandler, healthRegistry)
	router.SetUp(engine)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: engine,
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		l.Info("CourseBridge started: port=%d pipeline=%v", cfg.Port, cfg.FulfillmentPipeline)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		l.Info("Shutting down CourseBridge...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer shutdownCancel()

		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		l.Error("Service stopped with error: %v", err)
		return
	}
	l.Info("CourseBridge stopped")
}
