// Package webhooklog tracks processed webhook deliveries so duplicate
// deliveries of the same order are not fulfilled twice.
package webhooklog

import (
	"context"
	"fmt"
	"time"

	"CourseBridge/internal/domain/fulfillment"
	"CourseBridge/pkg/postgres"

	"github.com/Masterminds/squirrel"
)

var _ fulfillment.ProcessedOrderStore = (*PgProcessedOrders)(nil)

type PgProcessedOrders struct {
	db      postgres.Executor
	builder squirrel.StatementBuilderType
}

func NewPgProcessedOrders(pg *postgres.Postgres) *PgProcessedOrders {
	return &PgProcessedOrders{db: pg.Pool, builder: pg.Builder}
}

// Reserve claims the order. The insert is a no-op when a row already exists,
// which is how a duplicate delivery is detected.
func (r *PgProcessedOrders) Reserve(ctx context.Context, orderID string) (bool, error) {
	query, args, err := r.builder.
		Insert("processed_webhooks").
		Columns("order_id", "processed_at").
		Values(orderID, time.Now().UTC()).
		Suffix("ON CONFLICT (order_id) DO NOTHING").
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build reserve query: %w", err)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("reserve order: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// Release frees the reservation after a failed run.
func (r *PgProcessedOrders) Release(ctx context.Context, orderID string) error {
	query, args, err := r.builder.
		Delete("processed_webhooks").
		Where(squirrel.Eq{"order_id": orderID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build release query: %w", err)
	}

	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("release order: %w", err)
	}
	return nil
}
