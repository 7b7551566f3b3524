// Command sync publishes platform courses to the Saleor catalog. It
// provisions the Course product type and attributes on every run and then
// syncs either the courses named on the command line or, with -all, the
// whole catalog.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"CourseBridge/config"
	"CourseBridge/internal/domain/course"
	"CourseBridge/internal/external/saleor"
	course_repo "CourseBridge/internal/repo/course"
	"CourseBridge/internal/saleorapp"
	"CourseBridge/pkg/logger"
	"CourseBridge/pkg/postgres"
)

func main() {
	all := flag.Bool("all", false, "sync every course in the catalog")
	flag.Parse()

	if !*all && flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: sync [-all] [course-key ...]")
		os.Exit(2)
	}

	cfg, err := config.New()
	if err != nil {
		log.Fatalf("Config error: %s", err)
	}
	l := logger.New(cfg.LogLevel)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	pg, err := postgres.New(cfg.PgURL, postgres.MaxPoolSize(cfg.PgPoolMax))
	if err != nil {
		l.Fatal(fmt.Errorf("sync - postgres.New: %w", err))
	}
	defer pg.Close()

	tokens := saleor.NewTokenStore(cfg.SaleorAPIToken)
	client := saleor.NewClient(cfg.SaleorAPIURL, tokens, cfg.SaleorTimeout, saleor.DefaultRetryConfig(), l, nil)

	courses := course_repo.NewPgCourseRepo(pg)
	courseSync := saleorapp.NewCourseSync(client, courses, l)

	if err := courseSync.EnsureCatalog(ctx); err != nil {
		l.Fatal(fmt.Errorf("sync - EnsureCatalog: %w", err))
	}

	if *all {
		synced, err := courseSync.SyncAll(ctx)
		if err != nil {
			l.Fatal(fmt.Errorf("sync - SyncAll after %d courses: %w", synced, err))
		}
		l.Info("Synced %d courses", synced)
		return
	}

	for _, arg := range flag.Args() {
		key, err := course.ParseKey(arg)
		if err != nil {
			l.Fatal(fmt.Errorf("sync - invalid course key %q: %w", arg, err))
		}
		if err := courseSync.SyncCourse(ctx, key); err != nil {
			l.Fatal(fmt.Errorf("sync - SyncCourse %s: %w", key, err))
		}
	}
	l.Info("Synced %d courses", flag.NArg())
}
