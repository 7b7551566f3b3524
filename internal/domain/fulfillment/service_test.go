package fulfillment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"CourseBridge/internal/domain/enrollment"
	"CourseBridge/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProcessedStore struct {
	reserved map[string]bool
	released []string
	err      error
}

func newFakeProcessedStore() *fakeProcessedStore {
	return &fakeProcessedStore{reserved: make(map[string]bool)}
}

func (f *fakeProcessedStore) Reserve(_ context.Context, orderID string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	if f.reserved[orderID] {
		return false, nil
	}
	f.reserved[orderID] = true
	return true, nil
}

func (f *fakeProcessedStore) Release(_ context.Context, orderID string) error {
	delete(f.reserved, orderID)
	f.released = append(f.released, orderID)
	return nil
}

func orderPayload(orderID, email, mode, courseID string) json.RawMessage {
	return json.RawMessage(fmt.Sprintf(
		`{"id": %q, "isPaid": true, "lines": [{"variant": {"name": %q, "product": {"externalReference": %q}}}], "user": {"email": %q}}`,
		orderID, mode, courseID, email,
	))
}

func TestService_ProcessOrder(t *testing.T) {
	t.Parallel()

	newService := func(users *fakeUsers, enroller *fakeEnroller, store ProcessedOrderStore) *Service {
		engine := newEngine(users, enroller, &fakeFulfiller{}, defaultSteps())
		return NewService(engine, store, logger.New("disabled"))
	}

	t.Run("should process a paid order exactly once", func(t *testing.T) {
		t.Parallel()

		enroller := &fakeEnroller{}
		store := newFakeProcessedStore()
		svc := newService(knownUsers("a@example.com"), enroller, store)

		payload := orderPayload("ord-1", "a@example.com", "Verified", "course-v1:Org+101+2024")

		first, err := svc.ProcessOrder(context.Background(), payload)
		require.NoError(t, err)
		assert.False(t, first.Duplicate)
		assert.Empty(t, first.Err)
		require.Len(t, first.Run.Enrollments, 1)

		second, err := svc.ProcessOrder(context.Background(), payload)
		require.NoError(t, err)
		assert.True(t, second.Duplicate)
		assert.Len(t, enroller.calls, 1)
	})

	t.Run("should release the reservation on a soft failure", func(t *testing.T) {
		t.Parallel()

		store := newFakeProcessedStore()
		svc := newService(knownUsers(), &fakeEnroller{}, store)

		payload := orderPayload("ord-2", "ghost@example.com", "Verified", "course-v1:Org+101+2024")

		res, err := svc.ProcessOrder(context.Background(), payload)
		require.NoError(t, err)
		assert.Equal(t, "User with email ghost@example.com does not exist.", res.Err)
		assert.Equal(t, []string{"ord-2"}, store.released)

		// a redelivery after the failure gets a fresh run
		res, err = svc.ProcessOrder(context.Background(), payload)
		require.NoError(t, err)
		assert.False(t, res.Duplicate)
		assert.NotEmpty(t, res.Err)
	})

	t.Run("should release the reservation on a hard failure", func(t *testing.T) {
		t.Parallel()

		users := &fakeUsers{
			find: func(_ context.Context, _ string) (enrollment.User, error) {
				return enrollment.User{}, errors.New("store unavailable")
			},
		}
		store := newFakeProcessedStore()
		svc := newService(users, &fakeEnroller{}, store)

		_, err := svc.ProcessOrder(context.Background(), orderPayload("ord-3", "a@example.com", "Audit", "course-v1:Org+101+2024"))

		require.Error(t, err)
		assert.Equal(t, []string{"ord-3"}, store.released)
	})

	t.Run("should reject an unparseable order object", func(t *testing.T) {
		t.Parallel()

		svc := newService(knownUsers(), &fakeEnroller{}, newFakeProcessedStore())

		_, err := svc.ProcessOrder(context.Background(), json.RawMessage(`"not an object"`))

		assert.ErrorIs(t, err, ErrInvalidPayload)
	})
}
