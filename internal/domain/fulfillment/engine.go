package fulfillment

import (
	"context"
	"fmt"
	"time"

	"CourseBridge/internal/domain/enrollment"
	"CourseBridge/internal/domain/order"
	"CourseBridge/pkg/logger"
	"CourseBridge/pkg/metrics"
)

// RunOption seeds the run context before the first step executes. Seeding is
// set-if-absent: an option never overrides a value the engine already filled
// in from the order.
type RunOption func(*Context)

// WithUser seeds an already resolved platform account, letting a caller skip
// the user-resolution step's lookup.
func WithUser(u *enrollment.User) RunOption {
	return func(c *Context) {
		if c.User == nil {
			c.User = u
		}
	}
}

// WithBuyer seeds the buyer identity for orders that carry none.
func WithBuyer(b *order.Buyer) RunOption {
	return func(c *Context) {
		if c.Buyer == nil {
			c.Buyer = b
		}
	}
}

// Engine executes a statically configured, ordered sequence of named steps
// against one shared run context, short-circuiting on the first failure.
type Engine struct {
	registry *Registry
	steps    []string
	log      *logger.Logger
}

// NewEngine creates an engine over the registry with the configured step
// order. The step list is immutable for the lifetime of the process.
func NewEngine(registry *Registry, steps []string, l *logger.Logger) *Engine {
	return &Engine{
		registry: registry,
		steps:    steps,
		log:      l,
	}
}

// Run executes the configured steps in order against a fresh context seeded
// from the order. It returns the accumulated context when all steps complete
// or when a step records a soft failure (inspect Context.Failed). A hard
// error from a step, or an unresolvable step name, aborts the run with a
// non-nil error.
func (e *Engine) Run(ctx context.Context, ord order.Order, opts ...RunOption) (*Context, error) {
	run := &Context{
		Order: ord,
		Buyer: ord.User,
	}
	for _, opt := range opts {
		opt(run)
	}

	for _, name := range e.steps {
		step, err := e.registry.Resolve(name)
		if err != nil {
			metrics.PipelineRunsTotal.WithLabelValues("error").Inc()
			return nil, err
		}

		start := time.Now()
		err = step(ctx, run)
		metrics.PipelineStepDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())

		if err != nil {
			metrics.PipelineRunsTotal.WithLabelValues("error").Inc()
			return nil, fmt.Errorf("step %s: %w", name, err)
		}
		if run.Failed() {
			e.log.WarnCtx(ctx, "Pipeline aborted at step %s for order %s: %s", name, ord.ID, run.Err)
			metrics.PipelineRunsTotal.WithLabelValues("soft_failure").Inc()
			return run, nil
		}
	}

	metrics.PipelineRunsTotal.WithLabelValues("success").Inc()
	return run, nil
}
