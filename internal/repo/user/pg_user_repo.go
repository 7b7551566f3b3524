package user_repo

import (
	"context"
	"errors"
	"fmt"

	"CourseBridge/internal/domain/enrollment"
	"CourseBridge/pkg/postgres"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
)

var _ enrollment.UserRepo = (*PgUserRepo)(nil)

type PgUserRepo struct {
	db      postgres.Executor
	builder squirrel.StatementBuilderType
}

func NewPgUserRepo(pg *postgres.Postgres) *PgUserRepo {
	return &PgUserRepo{db: pg.Pool, builder: pg.Builder}
}

const userColumns = "id, username, email, first_name, last_name, is_active, created_at"

func (r *PgUserRepo) GetByEmail(ctx context.Context, email string) (enrollment.User, error) {
	query, args, err := r.builder.
		Select(userColumns).
		From("users").
		Where(squirrel.Eq{"email": email}).
		ToSql()
	if err != nil {
		return enrollment.User{}, fmt.Errorf("build user query: %w", err)
	}

	row := r.db.QueryRow(ctx, query, args...)

	var user enrollment.User
	err = row.Scan(&user.ID, &user.Username, &user.Email, &user.FirstName, &user.LastName, &user.IsActive, &user.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return enrollment.User{}, enrollment.ErrUserNotFound
	}
	if err != nil {
		return enrollment.User{}, fmt.Errorf("query user by email: %w", err)
	}
	return user, nil
}

func (r *PgUserRepo) Create(ctx context.Context, user enrollment.User) error {
	query, args, err := r.builder.
		Insert("users").
		Columns("id", "username", "email", "first_name", "last_name", "is_active", "created_at").
		Values(user.ID, user.Username, user.Email, user.FirstName, user.LastName, user.IsActive, user.CreatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert query: %w", err)
	}

	_, err = r.db.Exec(ctx, query, args...)
	if postgres.IsPgErrorUniqueViolation(err) {
		return fmt.Errorf("user already exists: %w", err)
	}
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}
