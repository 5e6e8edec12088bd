package repos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"equiptrack/internal/domain"
)

type CategoryRepo struct{ db sqlx.ExtContext }

func NewCategoryRepo(db sqlx.ExtContext) *CategoryRepo { return &CategoryRepo{db: db} }

func (r *CategoryRepo) Get(ctx context.Context, id int64) (domain.Category, error) {
	var c domain.Category
	err := sqlx.GetContext(ctx, r.db, &c, `SELECT id, name, deleted_at FROM category WHERE id = ?`, id)
	return c, err
}

func (r *CategoryRepo) List(ctx context.Context, includeArchived bool) ([]domain.Category, error) {
	q := `SELECT id, name, deleted_at FROM category`
	if !includeArchived {
		q += ` WHERE deleted_at IS NULL`
	}
	var out []domain.Category
	err := sqlx.SelectContext(ctx, r.db, &out, q+` ORDER BY name`)
	return out, err
}

func (r *CategoryRepo) Insert(ctx context.Context, c *domain.Category) error {
	res, err := r.db.ExecContext(ctx, `INSERT INTO category(name) VALUES (?)`, c.Name)
	if err != nil {
		return err
	}
	c.ID, err = res.LastInsertId()
	return err
}

func (r *CategoryRepo) SetDeletedAt(ctx context.Context, id int64, at *time.Time) error {
	return guarded(r.db.ExecContext(ctx, `UPDATE category SET deleted_at = ? WHERE id = ?`, at, id))
}
