package fulfillment

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"CourseBridge/internal/domain/course"
	"CourseBridge/internal/domain/enrollment"
	"CourseBridge/internal/domain/order"
	"CourseBridge/pkg/logger"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUsers struct {
	calls int
	find  func(ctx context.Context, email string) (enrollment.User, error)
}

func (f *fakeUsers) FindUserByEmail(ctx context.Context, email string) (enrollment.User, error) {
	f.calls++
	return f.find(ctx, email)
}

type enrollCall struct {
	key  course.Key
	mode enrollment.Mode
}

type fakeEnroller struct {
	calls  []enrollCall
	enroll func(ctx context.Context, user enrollment.User, key course.Key, mode enrollment.Mode) (enrollment.Enrollment, error)
}

func (f *fakeEnroller) Enroll(ctx context.Context, user enrollment.User, key course.Key, mode enrollment.Mode) (enrollment.Enrollment, error) {
	f.calls = append(f.calls, enrollCall{key: key, mode: mode})
	if f.enroll != nil {
		return f.enroll(ctx, user, key, mode)
	}
	return enrollment.Enrollment{ID: uuid.New(), UserID: user.ID, CourseKey: key, Mode: mode, IsActive: true}, nil
}

type fakeFulfiller struct {
	calls int
	err   error
}

func (f *fakeFulfiller) FulfillOrder(_ context.Context, _ order.Order) error {
	f.calls++
	return f.err
}

func knownUsers(emails ...string) *fakeUsers {
	accounts := make(map[string]enrollment.User, len(emails))
	for _, email := range emails {
		accounts[email] = enrollment.User{ID: uuid.New(), Username: email, Email: email, IsActive: true}
	}
	return &fakeUsers{
		find: func(_ context.Context, email string) (enrollment.User, error) {
			user, ok := accounts[email]
			if !ok {
				return enrollment.User{}, enrollment.ErrUserNotFound
			}
			return user, nil
		},
	}
}

func line(mode, courseID string) order.Line {
	return order.Line{
		ID:       uuid.NewString(),
		Quantity: 1,
		Variant: order.Variant{
			Name:    mode,
			Product: order.Product{ExternalReference: courseID},
		},
	}
}

func paidOrder(email string, lines ...order.Line) order.Order {
	ord := order.Order{
		ID:     uuid.NewString(),
		Status: "UNFULFILLED",
		IsPaid: true,
		Lines:  lines,
	}
	if ord.Lines == nil {
		ord.Lines = []order.Line{}
	}
	if email != "" {
		ord.User = &order.Buyer{ID: uuid.NewString(), Email: email}
	}
	return ord
}

func defaultSteps() []string {
	return []string{StepResolveUser, StepResolveCourses, StepEnrollUser, StepReportFulfillment}
}

func newEngine(users *fakeUsers, enroller *fakeEnroller, fulfiller *fakeFulfiller, steps []string) *Engine {
	registry := NewRegistry()
	NewSteps(users, enroller, fulfiller, logger.New("disabled")).RegisterAll(registry)
	return NewEngine(registry, steps, logger.New("disabled"))
}

func TestEngine_Run(t *testing.T) {
	t.Parallel()

	t.Run("should enroll the buyer and fulfill the order", func(t *testing.T) {
		t.Parallel()

		users := knownUsers("a@example.com")
		enroller := &fakeEnroller{}
		fulfiller := &fakeFulfiller{}
		engine := newEngine(users, enroller, fulfiller, defaultSteps())

		ord := paidOrder("a@example.com", line("Verified", "course-v1:Org+101+2024"))

		run, err := engine.Run(context.Background(), ord)

		require.NoError(t, err)
		assert.False(t, run.Failed())
		require.NotNil(t, run.User)
		assert.Equal(t, "a@example.com", run.User.Email)
		require.Len(t, run.Enrollments, 1)
		assert.Equal(t, enrollment.ModeVerified, run.Enrollments[0].Mode)
		assert.Equal(t, 1, fulfiller.calls)
	})

	t.Run("should complete with no enrollments for an order with zero lines", func(t *testing.T) {
		t.Parallel()

		enroller := &fakeEnroller{}
		engine := newEngine(knownUsers("a@example.com"), enroller, &fakeFulfiller{}, defaultSteps())

		run, err := engine.Run(context.Background(), paidOrder("a@example.com"))

		require.NoError(t, err)
		assert.False(t, run.Failed())
		assert.Empty(t, run.Courses)
		assert.Empty(t, run.Enrollments)
		assert.Empty(t, enroller.calls)
	})

	t.Run("should stop after user resolution when the account does not exist", func(t *testing.T) {
		t.Parallel()

		enroller := &fakeEnroller{}
		engine := newEngine(knownUsers(), enroller, &fakeFulfiller{}, defaultSteps())

		ord := paidOrder("ghost@example.com", line("Verified", "course-v1:Org+101+2024"))

		run, err := engine.Run(context.Background(), ord)

		require.NoError(t, err)
		assert.Equal(t, "User with email ghost@example.com does not exist.", run.Err)
		assert.Nil(t, run.Courses)
		assert.Empty(t, enroller.calls)
	})

	t.Run("should fail the whole batch on a line without course id or mode", func(t *testing.T) {
		t.Parallel()

		testCases := []struct {
			name  string
			lines []order.Line
		}{
			{
				name:  "missing mode",
				lines: []order.Line{line("", "course-v1:Org+101+2024")},
			},
			{
				name:  "missing course id",
				lines: []order.Line{line("Verified", "")},
			},
			{
				name: "valid line before the broken one",
				lines: []order.Line{
					line("Audit", "course-v1:Org+100+2024"),
					line("Verified", ""),
				},
			},
		}

		for _, tc := range testCases {
			t.Run(tc.name, func(t *testing.T) {
				t.Parallel()

				enroller := &fakeEnroller{}
				engine := newEngine(knownUsers("a@example.com"), enroller, &fakeFulfiller{}, defaultSteps())

				run, err := engine.Run(context.Background(), paidOrder("a@example.com", tc.lines...))

				require.NoError(t, err)
				assert.Equal(t, "Missing course ID or mode in order line.", run.Err)
				assert.Empty(t, enroller.calls)
			})
		}
	})

	t.Run("should fail the batch on a malformed course id", func(t *testing.T) {
		t.Parallel()

		enroller := &fakeEnroller{}
		engine := newEngine(knownUsers("a@example.com"), enroller, &fakeFulfiller{}, defaultSteps())

		run, err := engine.Run(context.Background(), paidOrder("a@example.com", line("Verified", "not-a-course-key")))

		require.NoError(t, err)
		assert.Equal(t, `Invalid course ID "not-a-course-key" in order line.`, run.Err)
		assert.Empty(t, enroller.calls)
	})

	t.Run("should stop at the first failing enrollment and keep earlier ones", func(t *testing.T) {
		t.Parallel()

		keyB, err := course.ParseKey("course-v1:Org+B+2024")
		require.NoError(t, err)

		enroller := &fakeEnroller{}
		enroller.enroll = func(_ context.Context, user enrollment.User, key course.Key, mode enrollment.Mode) (enrollment.Enrollment, error) {
			if key == keyB {
				return enrollment.Enrollment{}, enrollment.ErrEnrollmentClosed
			}
			return enrollment.Enrollment{ID: uuid.New(), UserID: user.ID, CourseKey: key, Mode: mode, IsActive: true}, nil
		}
		fulfiller := &fakeFulfiller{}
		engine := newEngine(knownUsers("a@example.com"), enroller, fulfiller, defaultSteps())

		ord := paidOrder("a@example.com",
			line("Verified", "course-v1:Org+A+2024"),
			line("Verified", "course-v1:Org+B+2024"),
			line("Verified", "course-v1:Org+C+2024"),
		)

		run, err := engine.Run(context.Background(), ord)

		require.NoError(t, err)
		require.NotNil(t, run.User)
		wantErr := fmt.Sprintf("Failed to enroll user %s in course course-v1:Org+B+2024. Error: enrollment is closed", run.User.ID)
		assert.Equal(t, wantErr, run.Err)
		require.Len(t, enroller.calls, 2)
		require.Len(t, run.Enrollments, 1)
		assert.Equal(t, "course-v1:Org+A+2024", run.Enrollments[0].CourseKey.String())
		assert.Zero(t, fulfiller.calls)
	})

	t.Run("should soft-fail when fulfillment reporting fails", func(t *testing.T) {
		t.Parallel()

		fulfiller := &fakeFulfiller{err: errors.New("order not found")}
		engine := newEngine(knownUsers("a@example.com"), &fakeEnroller{}, fulfiller, defaultSteps())

		ord := paidOrder("a@example.com", line("Audit", "course-v1:Org+101+2024"))

		run, err := engine.Run(context.Background(), ord)

		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("Failed to fulfill order %s. Error: order not found", ord.ID), run.Err)
	})

	t.Run("should abort on an unknown step name", func(t *testing.T) {
		t.Parallel()

		engine := newEngine(knownUsers(), &fakeEnroller{}, &fakeFulfiller{}, []string{"no_such_step"})

		_, err := engine.Run(context.Background(), paidOrder("a@example.com"))

		assert.ErrorIs(t, err, ErrUnknownStep)
	})

	t.Run("should propagate a hard step error", func(t *testing.T) {
		t.Parallel()

		users := &fakeUsers{
			find: func(_ context.Context, _ string) (enrollment.User, error) {
				return enrollment.User{}, errors.New("store unavailable")
			},
		}
		engine := newEngine(users, &fakeEnroller{}, &fakeFulfiller{}, defaultSteps())

		_, err := engine.Run(context.Background(), paidOrder("a@example.com", line("Audit", "course-v1:Org+101+2024")))

		require.Error(t, err)
		assert.Contains(t, err.Error(), "resolve_user")
	})

	t.Run("should skip the lookup for a pre-resolved user", func(t *testing.T) {
		t.Parallel()

		users := knownUsers("a@example.com")
		engine := newEngine(users, &fakeEnroller{}, &fakeFulfiller{}, defaultSteps())

		seeded := enrollment.User{ID: uuid.New(), Email: "seeded@example.com"}

		run, err := engine.Run(context.Background(),
			paidOrder("a@example.com", line("Audit", "course-v1:Org+101+2024")),
			WithUser(&seeded))

		require.NoError(t, err)
		assert.Zero(t, users.calls)
		assert.Equal(t, seeded.ID, run.User.ID)
	})

	t.Run("should not let a seeding option override the order's buyer", func(t *testing.T) {
		t.Parallel()

		engine := newEngine(knownUsers("a@example.com"), &fakeEnroller{}, &fakeFulfiller{}, defaultSteps())

		other := order.Buyer{Email: "other@example.com"}

		run, err := engine.Run(context.Background(),
			paidOrder("a@example.com", line("Audit", "course-v1:Org+101+2024")),
			WithBuyer(&other))

		require.NoError(t, err)
		assert.Equal(t, "a@example.com", run.Buyer.Email)
	})

	t.Run("should preserve line order in resolved course requests", func(t *testing.T) {
		t.Parallel()

		enroller := &fakeEnroller{}
		engine := newEngine(knownUsers("a@example.com"), enroller, &fakeFulfiller{}, defaultSteps())

		ord := paidOrder("a@example.com",
			line("Audit", "course-v1:Org+A+2024"),
			line("Verified", "course-v1:Org+B+2024"),
		)

		run, err := engine.Run(context.Background(), ord)

		require.NoError(t, err)
		require.Len(t, run.Courses, 2)
		assert.Equal(t, enrollment.ModeAudit, run.Courses[0].Mode)
		assert.Equal(t, "course-v1:Org+A+2024", run.Courses[0].Key.String())
		assert.Equal(t, enrollment.ModeVerified, run.Courses[1].Mode)
		assert.Equal(t, "course-v1:Org+B+2024", run.Courses[1].Key.String())
	})
}
