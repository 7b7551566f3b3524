// Package fulfillment implements the order-fulfillment pipeline: an ordered
// chain of named steps that resolves a webhook order to a platform user and
// course enrollment requests, performs the enrollments and reports the
// fulfillment back to the commerce backend.
package fulfillment

import (
	"CourseBridge/internal/domain/course"
	"CourseBridge/internal/domain/enrollment"
	"CourseBridge/internal/domain/order"
)

// CourseRequest is one course/mode pair derived from an order line.
type CourseRequest struct {
	Key  course.Key      `json:"course_key"`
	Mode enrollment.Mode `json:"course_mode"`
}

// Context is the state accumulated across one pipeline run. It is owned by
// the single run that created it and is never shared between runs. Steps
// read the fields produced by earlier steps and fill in their own.
type Context struct {
	// Order is the normalized webhook order, read-only for the whole run.
	Order order.Order

	// Buyer is the raw buyer identity from the order, not yet resolved.
	Buyer *order.Buyer

	// User is the resolved platform account, set by the user-resolution step.
	User *enrollment.User

	// Courses are the enrollment requests derived from the order lines.
	Courses []CourseRequest

	// Enrollments are the records produced by the enrollment step.
	Enrollments []enrollment.Enrollment

	// Err holds a soft failure message. A step that sets it short-circuits
	// the rest of the run; the HTTP layer translates it into a 400 response.
	Err string
}

// Fail records a soft failure, aborting the run after the current step.
func (c *Context) Fail(message string) {
	c.Err = message
}

// Failed reports whether a step recorded a soft failure.
func (c *Context) Failed() bool {
	return c.Err != ""
}
