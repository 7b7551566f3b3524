package fulfillment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"CourseBridge/internal/domain/order"
	"CourseBridge/pkg/logger"
	"CourseBridge/pkg/metrics"
)

// ErrInvalidPayload is returned when the webhook order object cannot be
// shaped into an order.
var ErrInvalidPayload = errors.New("invalid order payload")

// ProcessedOrderStore tracks which order deliveries have already been
// fulfilled, so redelivered webhooks do not re-run enrollment.
type ProcessedOrderStore interface {
	// Reserve claims the order for processing. It returns false when the
	// order was already processed by an earlier delivery.
	Reserve(ctx context.Context, orderID string) (bool, error)

	// Release frees a reservation after a failed run so a redelivery can
	// retry the order.
	Release(ctx context.Context, orderID string) error
}

// Result is the terminal outcome of one webhook delivery.
type Result struct {
	// Duplicate is set when the order was already processed earlier.
	Duplicate bool

	// Err is the soft failure message, empty on success.
	Err string

	// Run is the accumulated pipeline context, nil for duplicates.
	Run *Context
}

// Service drives the pipeline for inbound order webhooks and enforces
// exactly-once processing per order on top of at-least-once delivery.
type Service struct {
	engine    *Engine
	processed ProcessedOrderStore
	log       *logger.Logger
}

func NewService(engine *Engine, processed ProcessedOrderStore, l *logger.Logger) *Service {
	return &Service{
		engine:    engine,
		processed: processed,
		log:       l,
	}
}

// ProcessOrder normalizes the raw webhook order object and runs the pipeline
// over it. Redelivered orders short-circuit to a duplicate result. When the
// pipeline fails, soft or hard, the reservation is released so the commerce
// backend's redelivery can retry the order.
func (s *Service) ProcessOrder(ctx context.Context, rawOrder json.RawMessage) (Result, error) {
	ord, err := order.Normalize(rawOrder)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}

	if ord.ID != "" {
		reserved, err := s.processed.Reserve(ctx, ord.ID)
		if err != nil {
			return Result{}, fmt.Errorf("reserve order %s: %w", ord.ID, err)
		}
		if !reserved {
			s.log.InfoCtx(ctx, "Order %s already processed, skipping", ord.ID)
			metrics.PipelineRunsTotal.WithLabelValues("duplicate").Inc()
			return Result{Duplicate: true}, nil
		}
	}

	run, err := s.engine.Run(ctx, ord)
	if err != nil {
		s.release(ctx, ord.ID)
		return Result{}, err
	}
	if run.Failed() {
		s.release(ctx, ord.ID)
		return Result{Err: run.Err, Run: run}, nil
	}

	return Result{Run: run}, nil
}

func (s *Service) release(ctx context.Context, orderID string) {
	if orderID == "" {
		return
	}
	if err := s.processed.Release(ctx, orderID); err != nil {
		s.log.ErrorCtx(ctx, "release processed-order reservation for %s: %v", orderID, err)
	}
}
