package fulfillment

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"CourseBridge/internal/domain/course"
	"CourseBridge/internal/domain/enrollment"
	"CourseBridge/internal/domain/order"
	"CourseBridge/pkg/logger"
)

// Step names as they appear in the FULFILLMENT_PIPELINE configuration.
const (
	StepResolveUser       = "resolve_user"
	StepResolveCourses    = "resolve_courses"
	StepEnrollUser        = "enroll_user"
	StepReportFulfillment = "report_fulfillment"
)

// UserFinder resolves a platform account by email.
type UserFinder interface {
	FindUserByEmail(ctx context.Context, email string) (enrollment.User, error)
}

// Enroller enrolls a platform account into a course run.
type Enroller interface {
	Enroll(ctx context.Context, user enrollment.User, key course.Key, mode enrollment.Mode) (enrollment.Enrollment, error)
}

// OrderFulfiller marks the order fulfilled in the commerce backend.
type OrderFulfiller interface {
	FulfillOrder(ctx context.Context, ord order.Order) error
}

// Steps holds the collaborators the built-in pipeline steps depend on.
type Steps struct {
	users     UserFinder
	enroller  Enroller
	fulfiller OrderFulfiller
	log       *logger.Logger
}

func NewSteps(users UserFinder, enroller Enroller, fulfiller OrderFulfiller, l *logger.Logger) *Steps {
	return &Steps{
		users:     users,
		enroller:  enroller,
		fulfiller: fulfiller,
		log:       l,
	}
}

// RegisterAll binds the built-in steps under their configuration names.
func (s *Steps) RegisterAll(r *Registry) {
	r.Register(StepResolveUser, s.ResolveUser)
	r.Register(StepResolveCourses, s.ResolveCourses)
	r.Register(StepEnrollUser, s.EnrollUser)
	r.Register(StepReportFulfillment, s.ReportFulfillment)
}

// ResolveUser looks up the platform account for the order's buyer email and
// stores it on the context. A missing account is a soft failure.
func (s *Steps) ResolveUser(ctx context.Context, run *Context) error {
	if run.User != nil {
		return nil
	}

	var email string
	if run.Buyer != nil {
		email = run.Buyer.Email
	}

	user, err := s.users.FindUserByEmail(ctx, email)
	if errors.Is(err, enrollment.ErrUserNotFound) {
		run.Fail(fmt.Sprintf("User with email %s does not exist.", email))
		return nil
	}
	if err != nil {
		return fmt.Errorf("find user by email: %w", err)
	}

	run.User = &user
	return nil
}

// ResolveCourses derives a course/mode request from every order line. A line
// with no derivable course id or mode aborts the whole batch, as does a
// malformed course id.
func (s *Steps) ResolveCourses(_ context.Context, run *Context) error {
	requests := make([]CourseRequest, 0, len(run.Order.Lines))

	for _, line := range run.Order.Lines {
		mode := strings.ToLower(line.Variant.Name)
		ref := line.Variant.Product.ExternalReference
		if mode == "" || ref == "" {
			run.Fail("Missing course ID or mode in order line.")
			return nil
		}

		key, err := course.ParseKey(ref)
		if err != nil {
			run.Fail(fmt.Sprintf("Invalid course ID %q in order line.", ref))
			return nil
		}

		requests = append(requests, CourseRequest{Key: key, Mode: enrollment.Mode(mode)})
	}

	run.Courses = requests
	return nil
}

// EnrollUser enrolls the resolved user into every requested course, in line
// order. The first failing request aborts the rest; enrollments already
// performed in the same run stay in effect.
func (s *Steps) EnrollUser(ctx context.Context, run *Context) error {
	if run.User == nil {
		return errors.New("no resolved user in context, check the pipeline step order")
	}

	records := make([]enrollment.Enrollment, 0, len(run.Courses))

	for _, req := range run.Courses {
		enr, err := s.enroller.Enroll(ctx, *run.User, req.Key, req.Mode)
		if err != nil {
			run.Enrollments = records
			run.Fail(fmt.Sprintf("Failed to enroll user %s in course %s. Error: %v", run.User.ID, req.Key, err))
			return nil
		}
		records = append(records, enr)
	}

	run.Enrollments = records
	return nil
}

// ReportFulfillment marks the order fulfilled in the commerce backend so the
// storefront reflects the completed enrollments.
func (s *Steps) ReportFulfillment(ctx context.Context, run *Context) error {
	if err := s.fulfiller.FulfillOrder(ctx, run.Order); err != nil {
		run.Fail(fmt.Sprintf("Failed to fulfill order %s. Error: %v", run.Order.ID, err))
		return nil
	}

	s.log.InfoCtx(ctx, "Order %s fulfilled with %d enrollment(s)", run.Order.ID, len(run.Enrollments))
	return nil
}
