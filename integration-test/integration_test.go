//go:build integration
// +build integration

package integration_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"CourseBridge/internal/app"
	"CourseBridge/internal/controller/rest"
	"CourseBridge/internal/controller/rest/handlers"
	"CourseBridge/internal/domain/course"
	"CourseBridge/internal/domain/enrollment"
	"CourseBridge/internal/domain/fulfillment"
	"CourseBridge/internal/external/saleor"
	course_repo "CourseBridge/internal/repo/course"
	enrollment_repo "CourseBridge/internal/repo/enrollment"
	user_repo "CourseBridge/internal/repo/user"
	"CourseBridge/internal/repo/webhooklog"
	"CourseBridge/internal/saleorapp"
	"CourseBridge/internal/testinfra"
	"CourseBridge/pkg/health"
	"CourseBridge/pkg/logger"
	"CourseBridge/pkg/postgres"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pgURL string

func TestMain(m *testing.M) {
	ctx := context.Background()

	container, err := testinfra.NewPostgres(ctx)
	if err != nil {
		log.Fatalf("Failed to start postgres: %v", err)
	}
	pgURL = container.URL

	code := m.Run()

	container.Cleanup(ctx)
	os.Exit(code)
}

// fakeSaleor answers the GraphQL operations the service issues during the
// tested flows. It dispatches on the operation name in the query document.
type fakeSaleor struct {
	mu              sync.Mutex
	users           map[string]saleor.User
	variants        map[string]saleor.ProductVariant
	fulfilledOrders []string
}

func (f *fakeSaleor) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		var req struct {
			Query     string         `json:"query"`
			Variables map[string]any `json:"variables"`
		}
		if err := json.Unmarshal(body, &req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		f.mu.Lock()
		defer f.mu.Unlock()

		var data any
		switch {
		case contains(req.Query, "getUser"):
			email, _ := req.Variables["email"].(string)
			if user, ok := f.users[email]; ok {
				data = map[string]any{"user": user}
			} else {
				data = map[string]any{"user": nil}
			}
		case contains(req.Query, "getProductVariant"):
			sku, _ := req.Variables["sku"].(string)
			if variant, ok := f.variants[sku]; ok {
				data = map[string]any{"productVariant": variant}
			} else {
				data = map[string]any{"productVariant": nil}
			}
		case contains(req.Query, "getWarehouses"):
			data = map[string]any{"warehouses": edges(saleor.NamedNode{ID: "V2FyZWhvdXNlOjE=", Name: "Default"})}
		case contains(req.Query, "orderFulfill"):
			orderID, _ := req.Variables["order"].(string)
			f.fulfilledOrders = append(f.fulfilledOrders, orderID)
			data = map[string]any{"orderFulfill": map[string]any{
				"fulfillments": []map[string]any{{"created": time.Now().Format(time.RFC3339), "status": "FULFILLED"}},
				"errors":       []any{},
			}}
		case contains(req.Query, "checkoutCreate"):
			data = map[string]any{"checkoutCreate": map[string]any{
				"checkout": map[string]any{"id": "Q2hlY2tvdXQ6MQ=="},
				"errors":   []any{},
			}}
		case contains(req.Query, "attachCustomer"):
			data = map[string]any{"checkoutCustomerAttach": map[string]any{
				"checkout": map[string]any{"id": "Q2hlY2tvdXQ6MQ=="},
				"errors":   []any{},
			}}
		default:
			http.Error(w, "unexpected operation", http.StatusBadRequest)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"data": data})
	}
}

func (f *fakeSaleor) fulfilled() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.fulfilledOrders...)
}

func contains(query, operation string) bool {
	return strings.Contains(query, operation)
}

func edges[T any](nodes ...T) map[string]any {
	wrapped := make([]map[string]any, 0, len(nodes))
	for _, node := range nodes {
		wrapped = append(wrapped, map[string]any{"node": node})
	}
	return map[string]any{"edges": wrapped}
}

func setupTestServer(t *testing.T, saleorURL string) (*httptest.Server, *postgres.Postgres) {
	t.Helper()

	l := logger.New("disabled")

	pg, err := postgres.New(pgURL, postgres.MaxPoolSize(4))
	require.NoError(t, err)
	t.Cleanup(pg.Close)

	require.NoError(t, app.ApplyMigrations(pgURL, app.MIGRATION_FS))

	_, err = pg.Pool.Exec(context.Background(),
		"TRUNCATE TABLE processed_webhooks, enrollments, courses, users CASCADE")
	require.NoError(t, err)

	userRepo := user_repo.NewPgUserRepo(pg)
	courseRepo := course_repo.NewPgCourseRepo(pg)
	enrollmentRepo := enrollment_repo.NewPgEnrollmentRepo(pg)
	processedOrders := webhooklog.NewPgProcessedOrders(pg)

	enrollmentService := enrollment.NewService(userRepo, courseRepo, enrollmentRepo, l)

	tokens := saleor.NewTokenStore("test-token")
	client := saleor.NewClient(saleorURL, tokens, 5*time.Second, saleor.DefaultRetryConfig(), l, nil)
	fulfiller := saleorapp.NewFulfiller(client, l)

	registry := fulfillment.NewRegistry()
	fulfillment.NewSteps(enrollmentService, enrollmentService, fulfiller, l).RegisterAll(registry)
	pipeline := fulfillment.NewEngine(registry, []string{
		fulfillment.StepResolveUser,
		fulfillment.StepResolveCourses,
		fulfillment.StepEnrollUser,
		fulfillment.StepReportFulfillment,
	}, l)
	fulfillmentService := fulfillment.NewService(pipeline, processedOrders, l)

	checkoutService := saleorapp.NewCheckoutService(client, "https://store.example.com", "default-channel", l)
	courseSync := saleorapp.NewCourseSync(client, courseRepo, l)

	router := rest.NewRouter(
		handlers.NewWebhookHandler(fulfillmentService, l),
		handlers.NewAppHandler(saleorapp.NewManifest("https://bridge.example.com"), tokens, l),
		handlers.NewCheckoutHandler(checkoutService, l),
		handlers.NewCourseHandler(courseSync, l),
		health.NewRegistry(health.NewPostgresChecker(pg.Pool)),
	)

	engine := app.NewGinEngine(l)
	router.SetUp(engine)

	return httptest.NewServer(engine), pg
}

func seedLearner(t *testing.T, pg *postgres.Postgres, email string) enrollment.User {
	t.Helper()

	user := enrollment.User{
		ID:        uuid.New(),
		Username:  email,
		Email:     email,
		IsActive:  true,
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, user_repo.NewPgUserRepo(pg).Create(context.Background(), user))
	return user
}

func seedCourse(t *testing.T, pg *postgres.Postgres, rawKey string) course.Key {
	t.Helper()

	key, err := course.ParseKey(rawKey)
	require.NoError(t, err)

	crs := course.Course{
		Key:         key,
		DisplayName: "Demo Course",
		Org:         key.Org,
		Language:    "en",
	}
	require.NoError(t, course_repo.NewPgCourseRepo(pg).Upsert(context.Background(), crs))
	return key
}

func postWebhook(t *testing.T, serverURL, orderID, email, courseKey string) *http.Response {
	t.Helper()

	payload := map[string]any{
		"order": map[string]any{
			"id":     orderID,
			"isPaid": true,
			"lines": []map[string]any{{
				"id":       "line-1",
				"quantity": 1,
				"variant": map[string]any{
					"name":    "Verified",
					"product": map[string]any{"externalReference": courseKey},
				},
			}},
			"user": map[string]any{"email": email},
		},
	}
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	resp, err := http.Post(serverURL+"/saleor/webhooks/enroll-user", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	return resp
}

func responseMessage(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()

	var decoded struct {
		Message string `json:"message"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	return decoded.Message
}

func TestEnrollmentWebhookFlow(t *testing.T) {
	saleorStub := &fakeSaleor{}
	saleorServer := httptest.NewServer(saleorStub.handler())
	defer saleorServer.Close()

	server, pg := setupTestServer(t, saleorServer.URL)
	defer server.Close()

	const courseKey = "course-v1:Demo+101+2026"
	user := seedLearner(t, pg, "learner@example.com")
	key := seedCourse(t, pg, courseKey)

	resp := postWebhook(t, server.URL, "order-1", user.Email, courseKey)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Webhook received successfully.", responseMessage(t, resp))

	enrollments, err := enrollment_repo.NewPgEnrollmentRepo(pg).GetForUser(context.Background(), user.ID)
	require.NoError(t, err)
	require.Len(t, enrollments, 1)
	assert.Equal(t, key.String(), enrollments[0].CourseKey.String())
	assert.Equal(t, enrollment.Mode("verified"), enrollments[0].Mode)
	assert.True(t, enrollments[0].IsActive)

	assert.Equal(t, []string{"order-1"}, saleorStub.fulfilled())

	t.Run("duplicate delivery is acknowledged without side effects", func(t *testing.T) {
		resp := postWebhook(t, server.URL, "order-1", user.Email, courseKey)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "Order already processed.", responseMessage(t, resp))

		enrollments, err := enrollment_repo.NewPgEnrollmentRepo(pg).GetForUser(context.Background(), user.ID)
		require.NoError(t, err)
		assert.Len(t, enrollments, 1)
		assert.Equal(t, []string{"order-1"}, saleorStub.fulfilled())
	})
}

func TestEnrollmentWebhookRejectsUnknownBuyer(t *testing.T) {
	saleorStub := &fakeSaleor{}
	saleorServer := httptest.NewServer(saleorStub.handler())
	defer saleorServer.Close()

	server, pg := setupTestServer(t, saleorServer.URL)
	defer server.Close()

	seedCourse(t, pg, "course-v1:Demo+101+2026")

	resp := postWebhook(t, server.URL, "order-ghost", "ghost@example.com", "course-v1:Demo+101+2026")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "User with email ghost@example.com does not exist.", responseMessage(t, resp))

	t.Run("redelivery retries after the failure", func(t *testing.T) {
		user := seedLearner(t, pg, "ghost@example.com")

		resp := postWebhook(t, server.URL, "order-ghost", user.Email, "course-v1:Demo+101+2026")
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "Webhook received successfully.", responseMessage(t, resp))
	})
}

func TestCheckoutRedirectFlow(t *testing.T) {
	saleorStub := &fakeSaleor{
		users: map[string]saleor.User{
			"buyer@example.com": {ID: "VXNlcjox", Email: "buyer@example.com"},
		},
		variants: map[string]saleor.ProductVariant{
			"demo-course-verified": {ID: "VmFyaWFudDox", SKU: "demo-course-verified"},
		},
	}
	saleorServer := httptest.NewServer(saleorStub.handler())
	defer saleorServer.Close()

	server, _ := setupTestServer(t, saleorServer.URL)
	defer server.Close()

	noRedirect := &http.Client{
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	resp, err := noRedirect.Get(fmt.Sprintf("%s/saleor/checkout?sku=%s&email=%s",
		server.URL, "demo-course-verified", "buyer@example.com"))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Location"), "https://store.example.com/checkout?checkout=")
}
