package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lorrc/helpdesk-core/internal/core/domain"
	apperrors "github.com/lorrc/helpdesk-core/internal/core/errors"
	"github.com/lorrc/helpdesk-core/internal/core/ports"
)

// CatalogRepository reads categories and problem types.
type CatalogRepository struct {
	pool *pgxpool.Pool
}

var _ ports.CatalogRepository = (*CatalogRepository)(nil)

func NewCatalogRepository(pool *pgxpool.Pool) ports.CatalogRepository {
	return &CatalogRepository{pool: pool}
}

func (r *CatalogRepository) GetCategory(ctx context.Context, id int64) (*domain.Category, error) {
	const query = `SELECT id, name FROM categories WHERE id = $1`

	var c domain.Category
	if err := GetDBTX(ctx, r.pool).QueryRow(ctx, query, id).Scan(&c.ID, &c.Name); err != nil {
		return nil, mapError(err, apperrors.ErrCategoryNotFound)
	}
	return &c, nil
}

// GetProblem resolves the stored default priority; an unknown value leaves
// DefaultPriority empty.
func (r *CatalogRepository) GetProblem(ctx context.Context, id int64) (*domain.ProblemType, error) {
	const query = `SELECT id, name, default_priority FROM problem_types WHERE id = $1`

	var (
		p   domain.ProblemType
		raw string
	)
	if err := GetDBTX(ctx, r.pool).QueryRow(ctx, query, id).Scan(&p.ID, &p.Name, &raw); err != nil {
		return nil, mapError(err, apperrors.ErrProblemNotFound)
	}
	p.DefaultPriority, _ = domain.ParsePriority(raw)
	return &p, nil
}
