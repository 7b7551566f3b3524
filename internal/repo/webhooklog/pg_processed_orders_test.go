package webhooklog

import (
	"context"
	"testing"

	"github.com/Masterminds/squirrel"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReserve(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &PgProcessedOrders{db: mock, builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)}
	ctx := context.Background()

	t.Run("should reserve a new order", func(t *testing.T) {
		mock.ExpectExec(`INSERT INTO processed_webhooks`).
			WithArgs("ord-1", pgxmock.AnyArg()).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		reserved, err := repo.Reserve(ctx, "ord-1")

		require.NoError(t, err)
		assert.True(t, reserved)
	})

	t.Run("should detect an already processed order", func(t *testing.T) {
		mock.ExpectExec(`INSERT INTO processed_webhooks`).
			WithArgs("ord-1", pgxmock.AnyArg()).
			WillReturnResult(pgxmock.NewResult("INSERT", 0))

		reserved, err := repo.Reserve(ctx, "ord-1")

		require.NoError(t, err)
		assert.False(t, reserved)
	})

	t.Run("should handle database error", func(t *testing.T) {
		mock.ExpectExec(`INSERT INTO processed_webhooks`).
			WithArgs("ord-1", pgxmock.AnyArg()).
			WillReturnError(assert.AnError)

		_, err := repo.Reserve(ctx, "ord-1")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "reserve order")
	})
}

func TestRelease(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &PgProcessedOrders{db: mock, builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)}
	ctx := context.Background()

	t.Run("should delete the reservation", func(t *testing.T) {
		mock.ExpectExec(`DELETE FROM processed_webhooks WHERE order_id = \$1`).
			WithArgs("ord-1").
			WillReturnResult(pgxmock.NewResult("DELETE", 1))

		require.NoError(t, repo.Release(ctx, "ord-1"))
	})
}
