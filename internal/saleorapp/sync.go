package saleorapp

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"CourseBridge/internal/domain/course"
	"CourseBridge/internal/external/saleor"
	"CourseBridge/pkg/logger"
)

// ProductTypeName is the Saleor product type course products are created under.
const ProductTypeName = "Course"

const catalogPageSize = 100

// courseAttributes describes the product attributes the sync provisions in
// Saleor and fills per course.
var courseAttributes = []saleor.AttributeCreateInput{
	{Name: "Course ID", ExternalReference: "course-id", Type: "PRODUCT_TYPE", InputType: "PLAIN_TEXT"},
	{Name: "Organization", ExternalReference: "org", Type: "PRODUCT_TYPE", InputType: "PLAIN_TEXT"},
	{Name: "Language", ExternalReference: "language", Type: "PRODUCT_TYPE", InputType: "PLAIN_TEXT"},
	{Name: "Course Start Date", ExternalReference: "start", Type: "PRODUCT_TYPE", InputType: "DATE_TIME"},
	{Name: "Course End Date", ExternalReference: "end", Type: "PRODUCT_TYPE", InputType: "DATE_TIME"},
	{Name: "Enrollment Start Date", ExternalReference: "enrollment-start", Type: "PRODUCT_TYPE", InputType: "DATE_TIME"},
	{Name: "Enrollment End Date", ExternalReference: "enrollment-end", Type: "PRODUCT_TYPE", InputType: "DATE_TIME"},
	{Name: "Self Paced", ExternalReference: "self-paced", Type: "PRODUCT_TYPE", InputType: "BOOLEAN"},
	{Name: "Invitation Only", ExternalReference: "invitation-only", Type: "PRODUCT_TYPE", InputType: "BOOLEAN"},
	{Name: "Max Student Enrollments Allowed", ExternalReference: "max-enrollments", Type: "PRODUCT_TYPE", InputType: "PLAIN_TEXT"},
}

// CatalogAPI is the slice of the Saleor client the sync uses.
type CatalogAPI interface {
	GetAttributes(ctx context.Context, limit int) ([]saleor.NamedNode, error)
	CreateProductAttributes(ctx context.Context, attributes []saleor.AttributeCreateInput) ([]saleor.NamedNode, error)
	GetProductTypes(ctx context.Context, limit int) ([]saleor.NamedNode, error)
	CreateProductType(ctx context.Context, input saleor.ProductTypeInput) (*saleor.NamedNode, error)
	GetProductByExternalRef(ctx context.Context, externalRef string) (*saleor.Product, error)
	CreateCourseProduct(ctx context.Context, input saleor.ProductInput) (*saleor.Product, error)
	UpdateCourseProduct(ctx context.Context, productID string, input saleor.ProductInput) (*saleor.Product, error)
}

// CourseCatalog reads courses from the platform store.
type CourseCatalog interface {
	GetByKey(ctx context.Context, key course.Key) (course.Course, error)
	List(ctx context.Context) ([]course.Course, error)
}

// CourseSync publishes platform courses as Saleor products: one product per
// course run, keyed by the course key in the product's external reference.
type CourseSync struct {
	api     CatalogAPI
	courses CourseCatalog
	log     *logger.Logger

	mu            sync.Mutex
	productTypeID string
	attributeIDs  map[string]string
}

func NewCourseSync(api CatalogAPI, courses CourseCatalog, l *logger.Logger) *CourseSync {
	return &CourseSync{
		api:     api,
		courses: courses,
		log:     l,
	}
}

// EnsureCatalog provisions the course attributes and the Course product type
// in Saleor, creating only what is missing. SyncCourse runs it on first use;
// calling it up front just surfaces provisioning errors earlier.
func (s *CourseSync) EnsureCatalog(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ensureCatalog(ctx)
}

func (s *CourseSync) ensureCatalog(ctx context.Context) error {
	existing, err := s.api.GetAttributes(ctx, catalogPageSize)
	if err != nil {
		return fmt.Errorf("list attributes: %w", err)
	}

	s.attributeIDs = make(map[string]string, len(courseAttributes))
	for _, attr := range existing {
		s.attributeIDs[attr.Name] = attr.ID
	}

	var missing []saleor.AttributeCreateInput
	for _, attr := range courseAttributes {
		if _, ok := s.attributeIDs[attr.Name]; !ok {
			missing = append(missing, attr)
		}
	}
	if len(missing) > 0 {
		created, err := s.api.CreateProductAttributes(ctx, missing)
		if err != nil {
			return fmt.Errorf("create attributes: %w", err)
		}
		for _, attr := range created {
			s.attributeIDs[attr.Name] = attr.ID
		}
	}

	types, err := s.api.GetProductTypes(ctx, catalogPageSize)
	if err != nil {
		return fmt.Errorf("list product types: %w", err)
	}
	for _, pt := range types {
		if pt.Name == ProductTypeName {
			s.productTypeID = pt.ID
			return nil
		}
	}

	attributeIDs := make([]string, 0, len(courseAttributes))
	for _, attr := range courseAttributes {
		if id, ok := s.attributeIDs[attr.Name]; ok {
			attributeIDs = append(attributeIDs, id)
		}
	}
	productType, err := s.api.CreateProductType(ctx, saleor.ProductTypeInput{
		Name:              ProductTypeName,
		HasVariants:       true,
		ProductAttributes: attributeIDs,
	})
	if err != nil {
		return fmt.Errorf("create product type: %w", err)
	}
	s.productTypeID = productType.ID

	s.log.Info("Provisioned Saleor product type %s (%s)", ProductTypeName, productType.ID)
	return nil
}

// SyncCourse creates or updates the product for one course.
func (s *CourseSync) SyncCourse(ctx context.Context, key course.Key) error {
	s.mu.Lock()
	if s.productTypeID == "" {
		if err := s.ensureCatalog(ctx); err != nil {
			s.mu.Unlock()
			return fmt.Errorf("provision catalog: %w", err)
		}
	}
	s.mu.Unlock()

	crs, err := s.courses.GetByKey(ctx, key)
	if err != nil {
		return err
	}

	product, err := s.api.GetProductByExternalRef(ctx, key.String())
	if err != nil {
		return fmt.Errorf("get product for %s: %w", key, err)
	}

	input := s.productInput(crs)
	if product == nil {
		if _, err := s.api.CreateCourseProduct(ctx, input); err != nil {
			return fmt.Errorf("create product for %s: %w", key, err)
		}
		s.log.InfoCtx(ctx, "Created Saleor product for course %s", key)
		return nil
	}

	// product type cannot change on update
	input.ProductType = ""
	if _, err := s.api.UpdateCourseProduct(ctx, product.ID, input); err != nil {
		return fmt.Errorf("update product for %s: %w", key, err)
	}
	s.log.InfoCtx(ctx, "Updated Saleor product for course %s", key)
	return nil
}

// SyncAll syncs every course in the platform catalog and returns how many
// were processed.
func (s *CourseSync) SyncAll(ctx context.Context) (int, error) {
	courses, err := s.courses.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("list courses: %w", err)
	}

	for i, crs := range courses {
		if err := s.SyncCourse(ctx, crs.Key); err != nil {
			return i, err
		}
	}
	return len(courses), nil
}

func (s *CourseSync) productInput(crs course.Course) saleor.ProductInput {
	attrs := []saleor.AttributeValueInput{
		s.plainText("Course ID", crs.Key.String()),
		s.plainText("Organization", crs.Org),
		s.plainText("Language", crs.Language),
		s.boolean("Self Paced", crs.SelfPaced),
		s.boolean("Invitation Only", crs.InvitationOnly),
	}
	if crs.Start != nil {
		attrs = append(attrs, s.dateTime("Course Start Date", *crs.Start))
	}
	if crs.End != nil {
		attrs = append(attrs, s.dateTime("Course End Date", *crs.End))
	}
	if crs.EnrollmentStart != nil {
		attrs = append(attrs, s.dateTime("Enrollment Start Date", *crs.EnrollmentStart))
	}
	if crs.EnrollmentEnd != nil {
		attrs = append(attrs, s.dateTime("Enrollment End Date", *crs.EnrollmentEnd))
	}
	if crs.MaxEnrollments != nil {
		attrs = append(attrs, s.plainText("Max Student Enrollments Allowed", strconv.Itoa(*crs.MaxEnrollments)))
	}

	// drop attributes the catalog does not know
	filtered := attrs[:0]
	for _, attr := range attrs {
		if attr.ID != "" {
			filtered = append(filtered, attr)
		}
	}

	return saleor.ProductInput{
		Name:              crs.DisplayName,
		ProductType:       s.productTypeID,
		ExternalReference: crs.Key.String(),
		Attributes:        filtered,
	}
}

func (s *CourseSync) plainText(name, value string) saleor.AttributeValueInput {
	return saleor.AttributeValueInput{ID: s.attributeIDs[name], PlainText: value}
}

func (s *CourseSync) boolean(name string, value bool) saleor.AttributeValueInput {
	v := value
	return saleor.AttributeValueInput{ID: s.attributeIDs[name], Boolean: &v}
}

func (s *CourseSync) dateTime(name string, value time.Time) saleor.AttributeValueInput {
	return saleor.AttributeValueInput{ID: s.attributeIDs[name], DateTime: value.UTC().Format(time.RFC3339)}
}
