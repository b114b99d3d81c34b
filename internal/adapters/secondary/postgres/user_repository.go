package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lorrc/helpdesk-core/internal/core/domain"
	apperrors "github.com/lorrc/helpdesk-core/internal/core/errors"
	"github.com/lorrc/helpdesk-core/internal/core/ports"
)

const userColumns = `u.id, u.name, u.login, u.email, u.role, u.team_id`

// UserRepository reads the user directory.
type UserRepository struct {
	pool *pgxpool.Pool
}

var _ ports.UserRepository = (*UserRepository)(nil)

func NewUserRepository(pool *pgxpool.Pool) ports.UserRepository {
	return &UserRepository{pool: pool}
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users u WHERE u.id = $1`
	return r.get(ctx, query, id)
}

// GetByLogin matches logins ignoring case.
func (r *UserRepository) GetByLogin(ctx context.Context, login string) (*domain.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users u WHERE LOWER(u.login) = LOWER($1)`
	return r.get(ctx, query, login)
}

func (r *UserRepository) get(ctx context.Context, query string, arg any) (*domain.User, error) {
	var row userRow
	err := GetDBTX(ctx, r.pool).QueryRow(ctx, query, arg).Scan(row.dest()...)
	if err != nil {
		return nil, mapError(err, apperrors.ErrUserNotFound)
	}
	return row.toDomain(), nil
}

// userRow scans a users row reached through a LEFT JOIN, so every column
// may be NULL.
type userRow struct {
	id     *int64
	name   *string
	login  *string
	email  *string
	role   *string
	teamID *int64
}

func (u *userRow) dest() []any {
	return []any{&u.id, &u.name, &u.login, &u.email, &u.role, &u.teamID}
}

func (u *userRow) toDomain() *domain.User {
	if u.id == nil {
		return nil
	}
	return &domain.User{
		ID:     *u.id,
		Name:   deref(u.name),
		Login:  deref(u.login),
		Email:  deref(u.email),
		Role:   domain.ParseRole(deref(u.role)),
		TeamID: u.teamID,
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
