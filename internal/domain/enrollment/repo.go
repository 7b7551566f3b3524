package enrollment

import (
	"context"

	"CourseBridge/internal/domain/course"

	"github.com/google/uuid"
)

// UserRepo looks up platform accounts.
type UserRepo interface {
	// GetByEmail returns the account for the email or ErrUserNotFound.
	GetByEmail(ctx context.Context, email string) (User, error)
}

// CourseRepo reads the course catalog.
type CourseRepo interface {
	// GetByKey returns the course for the key or course.ErrNotFound.
	GetByKey(ctx context.Context, key course.Key) (course.Course, error)
}

// EnrollmentRepo persists enrollments.
type EnrollmentRepo interface {
	// Upsert inserts the enrollment or, when the user is already enrolled in
	// the course, reactivates it with the new mode. Returns the stored row.
	Upsert(ctx context.Context, userID uuid.UUID, key course.Key, mode Mode) (Enrollment, error)

	// CountActive returns the number of active enrollments in the course.
	CountActive(ctx context.Context, key course.Key) (int, error)

	// GetForUser returns all enrollments of the user, newest first.
	GetForUser(ctx context.Context, userID uuid.UUID) ([]Enrollment, error)
}

// EventSink records enrollment events for audit/search (e.g. OpenSearch).
type EventSink interface {
	RecordEnrollment(ctx context.Context, ev Event) error
}
