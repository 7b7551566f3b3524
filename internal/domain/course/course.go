// Package course holds the course catalog entity and course key parsing.
package course

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a course is not present in the catalog.
var ErrNotFound = errors.New("course not found")

// Course is one course run in the platform catalog. The attribute set mirrors
// what gets published to the e-commerce product catalog.
type Course struct {
	Key             Key
	DisplayName     string
	Org             string
	Language        string
	Start           *time.Time
	End             *time.Time
	EnrollmentStart *time.Time
	EnrollmentEnd   *time.Time
	SelfPaced       bool
	InvitationOnly  bool
	// MaxEnrollments caps active enrollments when set; nil means unlimited.
	MaxEnrollments *int
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// EnrollmentOpen reports whether the enrollment window is open at the given time.
func (c Course) EnrollmentOpen(now time.Time) bool {
	if c.EnrollmentStart != nil && now.Before(*c.EnrollmentStart) {
		return false
	}
	if c.EnrollmentEnd != nil && now.After(*c.EnrollmentEnd) {
		return false
	}
	return true
}
