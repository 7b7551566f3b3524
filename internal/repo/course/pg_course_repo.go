package course_repo

import (
	"context"
	"errors"
	"fmt"

	"CourseBridge/internal/domain/course"
	"CourseBridge/internal/domain/enrollment"
	"CourseBridge/pkg/postgres"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
)

var _ enrollment.CourseRepo = (*PgCourseRepo)(nil)

type PgCourseRepo struct {
	db      postgres.Executor
	builder squirrel.StatementBuilderType
}

func NewPgCourseRepo(pg *postgres.Postgres) *PgCourseRepo {
	return &PgCourseRepo{db: pg.Pool, builder: pg.Builder}
}

const courseColumns = "course_key, display_name, org, language, start_at, end_at, " +
	"enrollment_start, enrollment_end, self_paced, invitation_only, max_enrollments, created_at, updated_at"

func (r *PgCourseRepo) GetByKey(ctx context.Context, key course.Key) (course.Course, error) {
	query, args, err := r.builder.
		Select(courseColumns).
		From("courses").
		Where(squirrel.Eq{"course_key": key.String()}).
		ToSql()
	if err != nil {
		return course.Course{}, fmt.Errorf("build course query: %w", err)
	}

	crs, err := scanCourse(r.db.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return course.Course{}, course.ErrNotFound
	}
	if err != nil {
		return course.Course{}, fmt.Errorf("query course by key: %w", err)
	}
	return crs, nil
}

func (r *PgCourseRepo) List(ctx context.Context) ([]course.Course, error) {
	query, args, err := r.builder.
		Select(courseColumns).
		From("courses").
		OrderBy("course_key").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build course list query: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query courses: %w", err)
	}
	defer rows.Close()

	var courses []course.Course
	for rows.Next() {
		crs, err := scanCourse(rows)
		if err != nil {
			return nil, fmt.Errorf("scan course row: %w", err)
		}
		courses = append(courses, crs)
	}
	return courses, rows.Err()
}

// Upsert inserts the course or refreshes its catalog attributes.
func (r *PgCourseRepo) Upsert(ctx context.Context, crs course.Course) error {
	query, args, err := r.builder.
		Insert("courses").
		Columns("course_key", "display_name", "org", "language", "start_at", "end_at",
			"enrollment_start", "enrollment_end", "self_paced", "invitation_only", "max_enrollments").
		Values(crs.Key.String(), crs.DisplayName, crs.Org, crs.Language, crs.Start, crs.End,
			crs.EnrollmentStart, crs.EnrollmentEnd, crs.SelfPaced, crs.InvitationOnly, crs.MaxEnrollments).
		Suffix(`ON CONFLICT (course_key) DO UPDATE SET
			display_name = EXCLUDED.display_name,
			org = EXCLUDED.org,
			language = EXCLUDED.language,
			start_at = EXCLUDED.start_at,
			end_at = EXCLUDED.end_at,
			enrollment_start = EXCLUDED.enrollment_start,
			enrollment_end = EXCLUDED.enrollment_end,
			self_paced = EXCLUDED.self_paced,
			invitation_only = EXCLUDED.invitation_only,
			max_enrollments = EXCLUDED.max_enrollments,
			updated_at = now()`).
		ToSql()
	if err != nil {
		return fmt.Errorf("build course upsert query: %w", err)
	}

	_, err = r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("upsert course: %w", err)
	}
	return nil
}

func scanCourse(row pgx.Row) (course.Course, error) {
	var crs course.Course
	var rawKey string

	err := row.Scan(&rawKey, &crs.DisplayName, &crs.Org, &crs.Language, &crs.Start, &crs.End,
		&crs.EnrollmentStart, &crs.EnrollmentEnd, &crs.SelfPaced, &crs.InvitationOnly,
		&crs.MaxEnrollments, &crs.CreatedAt, &crs.UpdatedAt)
	if err != nil {
		return course.Course{}, err
	}

	crs.Key, err = course.ParseKey(rawKey)
	if err != nil {
		return course.Course{}, fmt.Errorf("parse stored course key %q: %w", rawKey, err)
	}
	return crs, nil
}
