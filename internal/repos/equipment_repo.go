package repos

import (
	"context"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"equiptrack/internal/domain"
)

type EquipmentRepo struct{ db sqlx.ExtContext }

func NewEquipmentRepo(db sqlx.ExtContext) *EquipmentRepo { return &EquipmentRepo{db: db} }

const equipmentCols = `
    e.id, e.name, e.reference, e.category_id, COALESCE(c.name,'') AS category_name,
    e.state, e.stock_quantity, e.deleted_at`

func (r *EquipmentRepo) Get(ctx context.Context, id int64) (domain.Equipment, error) {
	var e domain.Equipment
	err := sqlx.GetContext(ctx, r.db, &e, `
  SELECT`+equipmentCols+`
  FROM equipment e
  LEFT JOIN category c ON c.id = e.category_id
  WHERE e.id = ?`, id)
	return e, err
}

func (r *EquipmentRepo) List(ctx context.Context, f Filter) ([]domain.Equipment, Page, error) {
	where := []string{"1=1"}
	args := []any{}
	if !f.IncludeArchived {
		where = append(where, "e.deleted_at IS NULL")
	}
	if f.CategoryID > 0 {
		where = append(where, "e.category_id = ?")
		args = append(args, f.CategoryID)
	}
	if q := strings.ToLower(strings.TrimSpace(f.Q)); q != "" {
		where = append(where, "(LOWER(e.name) LIKE ? OR LOWER(e.reference) LIKE ?)")
		args = append(args, like(q), like(q))
	}
	cond := strings.Join(where, " AND ")

	var total int
	if err := sqlx.GetContext(ctx, r.db, &total, `SELECT COUNT(*) FROM equipment e WHERE `+cond, args...); err != nil {
		return nil, Page{}, err
	}
	p := NewPage(f.Page, f.Limit, total)

	var out []domain.Equipment
	err := sqlx.SelectContext(ctx, r.db, &out, `
  SELECT`+equipmentCols+`
  FROM equipment e
  LEFT JOIN category c ON c.id = e.category_id
  WHERE `+cond+`
  ORDER BY e.id DESC
  LIMIT ? OFFSET ?`, append(args, p.Limit, p.Offset())...)
	return out, p, err
}

// Active returns every non-archived item ordered by name, for select boxes.
func (r *EquipmentRepo) Active(ctx context.Context) ([]domain.Equipment, error) {
	var out []domain.Equipment
	err := sqlx.SelectContext(ctx, r.db, &out, `
  SELECT`+equipmentCols+`
  FROM equipment e
  LEFT JOIN category c ON c.id = e.category_id
  WHERE e.deleted_at IS NULL
  ORDER BY e.name`)
	return out, err
}

func (r *EquipmentRepo) Insert(ctx context.Context, e *domain.Equipment) error {
	res, err := r.db.ExecContext(ctx, `
  INSERT INTO equipment(category_id, name, reference, state, stock_quantity)
  VALUES (?, ?, ?, ?, ?)`, e.CategoryID, e.Name, e.Reference, string(e.State), e.StockQuantity)
	if err != nil {
		return err
	}
	e.ID, err = res.LastInsertId()
	return err
}

// Update saves descriptive fields. The stock counter is never written here.
func (r *EquipmentRepo) Update(ctx context.Context, e domain.Equipment) error {
	return guarded(r.db.ExecContext(ctx, `
  UPDATE equipment SET category_id = ?, name = ?, reference = ?, state = ?
  WHERE id = ?`, e.CategoryID, e.Name, e.Reference, string(e.State), e.ID))
}

func (r *EquipmentRepo) SetDeletedAt(ctx context.Context, id int64, at *time.Time) error {
	return guarded(r.db.ExecContext(ctx, `UPDATE equipment SET deleted_at = ? WHERE id = ?`, at, id))
}

// TakeStock subtracts by units if enough stock exists, ErrGuard otherwise.
func (r *EquipmentRepo) TakeStock(ctx context.Context, id int64, by int) error {
	return guarded(r.db.ExecContext(ctx, `
  UPDATE equipment
  SET stock_quantity = stock_quantity - ?
  WHERE id = ? AND stock_quantity >= ?`, by, id, by))
}

// PutStock adds by units back to the stock counter.
func (r *EquipmentRepo) PutStock(ctx context.Context, id int64, by int) error {
	return guarded(r.db.ExecContext(ctx, `
  UPDATE equipment SET stock_quantity = stock_quantity + ? WHERE id = ?`, by, id))
}

func (r *EquipmentRepo) Stock(ctx context.Context, id int64) (int, error) {
	var qty int
	err := sqlx.GetContext(ctx, r.db, &qty, `SELECT stock_quantity FROM equipment WHERE id = ?`, id)
	return qty, err
}
