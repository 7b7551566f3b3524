package enrollment_repo

import (
	"context"
	"fmt"

	"CourseBridge/internal/domain/course"
	"CourseBridge/internal/domain/enrollment"
	"CourseBridge/pkg/postgres"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var _ enrollment.EnrollmentRepo = (*PgEnrollmentRepo)(nil)

type PgEnrollmentRepo struct {
	db      postgres.Executor
	builder squirrel.StatementBuilderType
}

func NewPgEnrollmentRepo(pg *postgres.Postgres) *PgEnrollmentRepo {
	return &PgEnrollmentRepo{db: pg.Pool, builder: pg.Builder}
}

const enrollmentColumns = "id, user_id, course_key, mode, is_active, created_at, updated_at"

// Upsert inserts the enrollment or, when the user is already enrolled in the
// course, reactivates it with the new mode. The unique constraint on
// (user_id, course_key) makes this safe under webhook redelivery.
func (r *PgEnrollmentRepo) Upsert(ctx context.Context, userID uuid.UUID, key course.Key, mode enrollment.Mode) (enrollment.Enrollment, error) {
	query, args, err := r.builder.
		Insert("enrollments").
		Columns("id", "user_id", "course_key", "mode").
		Values(uuid.New(), userID, key.String(), mode).
		Suffix(`ON CONFLICT (user_id, course_key) DO UPDATE SET
			mode = EXCLUDED.mode,
			is_active = true,
			updated_at = now()
		RETURNING ` + enrollmentColumns).
		ToSql()
	if err != nil {
		return enrollment.Enrollment{}, fmt.Errorf("build enrollment upsert query: %w", err)
	}

	enr, err := scanEnrollment(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		return enrollment.Enrollment{}, fmt.Errorf("upsert enrollment: %w", err)
	}
	return enr, nil
}

func (r *PgEnrollmentRepo) CountActive(ctx context.Context, key course.Key) (int, error) {
	query, args, err := r.builder.
		Select("count(*)").
		From("enrollments").
		Where(squirrel.Eq{"course_key": key.String(), "is_active": true}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build enrollment count query: %w", err)
	}

	var count int
	if err := r.db.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count active enrollments: %w", err)
	}
	return count, nil
}

func (r *PgEnrollmentRepo) GetForUser(ctx context.Context, userID uuid.UUID) ([]enrollment.Enrollment, error) {
	query, args, err := r.builder.
		Select(enrollmentColumns).
		From("enrollments").
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("created_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build enrollment list query: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query enrollments: %w", err)
	}
	defer rows.Close()

	var enrollments []enrollment.Enrollment
	for rows.Next() {
		enr, err := scanEnrollment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan enrollment row: %w", err)
		}
		enrollments = append(enrollments, enr)
	}
	return enrollments, rows.Err()
}

func scanEnrollment(row pgx.Row) (enrollment.Enrollment, error) {
	var enr enrollment.Enrollment
	var rawKey string

	err := row.Scan(&enr.ID, &enr.UserID, &rawKey, &enr.Mode, &enr.IsActive, &enr.CreatedAt, &enr.UpdatedAt)
	if err != nil {
		return enrollment.Enrollment{}, err
	}

	enr.CourseKey, err = course.ParseKey(rawKey)
	if err != nil {
		return enrollment.Enrollment{}, fmt.Errorf("parse stored course key %q: %w", rawKey, err)
	}
	return enr, nil
}
