package enrollment

import "errors"

var (
	// ErrUserNotFound is returned when no platform account matches the lookup.
	ErrUserNotFound = errors.New("user not found")

	// ErrEnrollmentClosed is returned when the course enrollment window is not open.
	ErrEnrollmentClosed = errors.New("enrollment is closed")

	// ErrCourseFull is returned when the course enrollment cap has been reached.
	ErrCourseFull = errors.New("course is full")

	// ErrInvitationOnly is returned when the course only admits invited learners.
	ErrInvitationOnly = errors.New("course is invitation only")
)
