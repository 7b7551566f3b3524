package enrollment

import (
	"context"
	"fmt"
	"time"

	"CourseBridge/internal/domain/course"
	"CourseBridge/internal/messaging"
	"CourseBridge/pkg/logger"
	"CourseBridge/pkg/metrics"
)

// Service performs course enrollment against the platform store and emits
// enrollment events to the configured sinks.
type Service struct {
	users       UserRepo
	courses     CourseRepo
	enrollments EnrollmentRepo
	events      messaging.Publisher
	audit       EventSink
	log         *logger.Logger
	now         func() time.Time
}

// Option configures optional Service collaborators.
type Option func(*Service)

// WithEventPublisher enables publishing enrollment events to a broker.
func WithEventPublisher(p messaging.Publisher) Option {
	return func(s *Service) { s.events = p }
}

// WithAuditSink enables mirroring enrollment events to an audit store.
func WithAuditSink(sink EventSink) Option {
	return func(s *Service) { s.audit = sink }
}

// NewService creates an enrollment service.
func NewService(users UserRepo, courses CourseRepo, enrollments EnrollmentRepo, l *logger.Logger, opts ...Option) *Service {
	s := &Service{
		users:       users,
		courses:     courses,
		enrollments: enrollments,
		log:         l,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// FindUserByEmail returns the platform account for the email, or ErrUserNotFound.
func (s *Service) FindUserByEmail(ctx context.Context, email string) (User, error) {
	return s.users.GetByEmail(ctx, email)
}

// Enroll enrolls the user into the course run at the given mode.
// Re-enrolling an already enrolled user updates the mode (the store-level
// upsert makes webhook redelivery harmless at this layer).
func (s *Service) Enroll(ctx context.Context, user User, key course.Key, mode Mode) (Enrollment, error) {
	crs, err := s.courses.GetByKey(ctx, key)
	if err != nil {
		return Enrollment{}, err
	}

	if !crs.EnrollmentOpen(s.now()) {
		return Enrollment{}, ErrEnrollmentClosed
	}
	if crs.InvitationOnly {
		return Enrollment{}, ErrInvitationOnly
	}
	if crs.MaxEnrollments != nil {
		active, err := s.enrollments.CountActive(ctx, key)
		if err != nil {
			return Enrollment{}, fmt.Errorf("count active enrollments: %w", err)
		}
		if active >= *crs.MaxEnrollments {
			return Enrollment{}, ErrCourseFull
		}
	}

	enr, err := s.enrollments.Upsert(ctx, user.ID, key, mode)
	if err != nil {
		return Enrollment{}, fmt.Errorf("store enrollment: %w", err)
	}

	metrics.EnrollmentsTotal.WithLabelValues(string(mode)).Inc()
	s.log.InfoCtx(ctx, "User %s enrolled in course %s with mode %s", user.Username, key, mode)

	s.emit(ctx, Event{
		UserID:    user.ID,
		Email:     user.Email,
		CourseKey: key.String(),
		Mode:      mode,
		CreatedAt: enr.UpdatedAt,
	})

	return enr, nil
}

// Enrollments returns the user's enrollments, newest first.
func (s *Service) Enrollments(ctx context.Context, user User) ([]Enrollment, error) {
	return s.enrollments.GetForUser(ctx, user.ID)
}

// emit forwards the event to the broker and audit sink. Both are best-effort:
// a delivery failure must not fail an enrollment that is already persisted.
func (s *Service) emit(ctx context.Context, ev Event) {
	if s.events != nil {
		envelope, err := messaging.NewEnvelope(ev.UserID.String(), "enrollment.created", ev)
		if err == nil {
			err = s.events.Publish(ctx, envelope)
		}
		if err != nil {
			s.log.ErrorCtx(ctx, "publish enrollment event: %v", err)
		}
	}

	if s.audit != nil {
		if err := s.audit.RecordEnrollment(ctx, ev); err != nil {
			s.log.ErrorCtx(ctx, "record enrollment audit event: %v", err)
		}
	}
}
