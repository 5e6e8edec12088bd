package repos

import (
	"context"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"equiptrack/internal/domain"
)

type StoreRepo struct{ db sqlx.ExtContext }

func NewStoreRepo(db sqlx.ExtContext) *StoreRepo { return &StoreRepo{db: db} }

const storeCols = `
    id, name, address, COALESCE(manager,'') AS manager, COALESCE(region,'') AS region,
    COALESCE(code_fr,'') AS code_fr, COALESCE(status,'') AS status,
    COALESCE(project_type,'') AS project_type, opened_on, deleted_at`

func (r *StoreRepo) Get(ctx context.Context, id int64) (domain.Store, error) {
	var s domain.Store
	err := sqlx.GetContext(ctx, r.db, &s, `SELECT`+storeCols+` FROM store WHERE id = ?`, id)
	return s, err
}

func (r *StoreRepo) List(ctx context.Context, f Filter) ([]domain.Store, Page, error) {
	where := []string{"1=1"}
	args := []any{}
	if !f.IncludeArchived {
		where = append(where, "deleted_at IS NULL")
	}
	if q := strings.ToLower(strings.TrimSpace(f.Q)); q != "" {
		where = append(where, "LOWER(name) LIKE ?")
		args = append(args, like(q))
	}
	cond := strings.Join(where, " AND ")

	var total int
	if err := sqlx.GetContext(ctx, r.db, &total, `SELECT COUNT(*) FROM store WHERE `+cond, args...); err != nil {
		return nil, Page{}, err
	}
	p := NewPage(f.Page, f.Limit, total)

	var out []domain.Store
	err := sqlx.SelectContext(ctx, r.db, &out, `SELECT`+storeCols+` FROM store WHERE `+cond+`
  ORDER BY id DESC LIMIT ? OFFSET ?`, append(args, p.Limit, p.Offset())...)
	return out, p, err
}

// All returns stores ordered by name; archived ones only when asked.
func (r *StoreRepo) All(ctx context.Context, includeArchived bool) ([]domain.Store, error) {
	q := `SELECT` + storeCols + ` FROM store`
	if !includeArchived {
		q += ` WHERE deleted_at IS NULL`
	}
	var out []domain.Store
	err := sqlx.SelectContext(ctx, r.db, &out, q+` ORDER BY name`)
	return out, err
}

func (r *StoreRepo) Insert(ctx context.Context, s *domain.Store) error {
	res, err := sqlx.NamedExecContext(ctx, r.db, `
  INSERT INTO store(name, address, manager, region, code_fr, status, project_type, opened_on)
  VALUES (:name, :address, :manager, :region, :code_fr, :status, :project_type, :opened_on)`, s)
	if err != nil {
		return err
	}
	s.ID, err = res.LastInsertId()
	return err
}

func (r *StoreRepo) Update(ctx context.Context, s domain.Store) error {
	return guarded(sqlx.NamedExecContext(ctx, r.db, `
  UPDATE store SET name = :name, address = :address, manager = :manager, region = :region,
    code_fr = :code_fr, status = :status, project_type = :project_type, opened_on = :opened_on
  WHERE id = :id`, s))
}

func (r *StoreRepo) SetDeletedAt(ctx context.Context, id int64, at *time.Time) error {
	return guarded(r.db.ExecContext(ctx, `UPDATE store SET deleted_at = ? WHERE id = ?`, at, id))
}
