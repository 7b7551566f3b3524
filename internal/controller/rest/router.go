// Package rest wires the HTTP surface: the Saleor app endpoints, the order
// webhook and the operational probes.
package rest

import (
	"time"

	"CourseBridge/internal/controller/rest/handlers"
	"CourseBridge/pkg/health"
	"CourseBridge/pkg/metrics"

	"github.com/gin-gonic/gin"
)

const readinessTimeout = 5 * time.Second

type Router struct {
	webhook  handlers.WebhookHandler
	app      handlers.AppHandler
	checkout handlers.CheckoutHandler
	course   handlers.CourseHandler
	health   *health.Registry
}

func NewRouter(
	webhook handlers.WebhookHandler,
	app handlers.AppHandler,
	checkout handlers.CheckoutHandler,
	course handlers.CourseHandler,
	healthRegistry *health.Registry,
) *Router {
	return &Router{
		webhook:  webhook,
		app:      app,
		checkout: checkout,
		course:   course,
		health:   healthRegistry,
	}
}

func (r *Router) SetUp(engine *gin.Engine) {
	engine.GET("/health/live", health.LivenessHandler())
	engine.GET("/health/ready", health.ReadinessHandler(r.health, readinessTimeout))
	engine.GET("/metrics", gin.WrapH(metrics.Handler()))

	saleorGroup := engine.Group("/saleor")
	saleorGroup.GET("/manifest", r.app.Manifest)
	saleorGroup.POST("/register", r.app.Register)
	saleorGroup.GET("/checkout", r.checkout.Redirect)
	saleorGroup.POST("/webhooks/enroll-user", r.webhook.EnrollUser)

	internal := engine.Group("/internal")
	internal.POST("/courses/:course_key/sync", r.course.Sync)
}
