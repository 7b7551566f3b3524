// Package enrollment holds platform accounts and course enrollments, and the
// service that performs enrollment on behalf of the fulfillment pipeline.
package enrollment

import (
	"time"

	"CourseBridge/internal/domain/course"

	"github.com/google/uuid"
)

// User is a platform account.
type User struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// Mode is the track a learner is enrolled under.
type Mode string

const (
	ModeAudit        Mode = "audit"
	ModeVerified     Mode = "verified"
	ModeHonor        Mode = "honor"
	ModeProfessional Mode = "professional"
)

// Enrollment is one user's enrollment into one course run.
type Enrollment struct {
	ID        uuid.UUID  `json:"id"`
	UserID    uuid.UUID  `json:"user_id"`
	CourseKey course.Key `json:"course_key"`
	Mode      Mode       `json:"mode"`
	IsActive  bool       `json:"is_active"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Event is the record published after a successful enrollment.
type Event struct {
	UserID    uuid.UUID `json:"user_id"`
	Email     string    `json:"email"`
	CourseKey string    `json:"course_key"`
	Mode      Mode      `json:"mode"`
	CreatedAt time.Time `json:"created_at"`
}
