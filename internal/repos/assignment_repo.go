package repos

import (
	"context"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"equiptrack/internal/domain"
)

type AssignmentRepo struct{ db sqlx.ExtContext }

func NewAssignmentRepo(db sqlx.ExtContext) *AssignmentRepo { return &AssignmentRepo{db: db} }

const assignmentSelect = `
  SELECT a.id, a.equipment_id, a.store_id, a.assigned_at, a.quantity, a.returned_quantity,
         a.returned_at, a.created_by, a.returned_by, a.deleted_at,
         e.name AS equipment_name, e.reference AS equipment_reference, s.name AS store_name,
         COALESCE(cu.full_name,'') AS created_by_name, COALESCE(ru.full_name,'') AS returned_by_name
  FROM assignment a
  JOIN equipment e ON e.id = a.equipment_id
  JOIN store s ON s.id = a.store_id
  LEFT JOIN users cu ON cu.id = a.created_by
  LEFT JOIN users ru ON ru.id = a.returned_by`

func (r *AssignmentRepo) Get(ctx context.Context, id int64) (domain.Assignment, error) {
	var a domain.Assignment
	err := sqlx.GetContext(ctx, r.db, &a, assignmentSelect+` WHERE a.id = ?`, id)
	return a, err
}

func (r *AssignmentRepo) List(ctx context.Context, f Filter) ([]domain.Assignment, Page, error) {
	where := []string{"1=1"}
	args := []any{}
	if !f.IncludeArchived {
		where = append(where, "a.deleted_at IS NULL")
	}
	if f.StoreID > 0 {
		where = append(where, "a.store_id = ?")
		args = append(args, f.StoreID)
	}
	if q := strings.ToLower(strings.TrimSpace(f.StoreQ)); q != "" {
		where = append(where, "LOWER(s.name) LIKE ?")
		args = append(args, like(q))
	}
	if q := strings.ToLower(strings.TrimSpace(f.EquipmentQ)); q != "" {
		where = append(where, "(LOWER(e.name) LIKE ? OR LOWER(e.reference) LIKE ?)")
		args = append(args, like(q), like(q))
	}
	cond := strings.Join(where, " AND ")

	var total int
	if err := sqlx.GetContext(ctx, r.db, &total, `
  SELECT COUNT(*) FROM assignment a
  JOIN equipment e ON e.id = a.equipment_id
  JOIN store s ON s.id = a.store_id
  WHERE `+cond, args...); err != nil {
		return nil, Page{}, err
	}
	p := NewPage(f.Page, f.Limit, total)

	var out []domain.Assignment
	err := sqlx.SelectContext(ctx, r.db, &out, assignmentSelect+` WHERE `+cond+`
  ORDER BY a.id DESC LIMIT ? OFFSET ?`, append(args, p.Limit, p.Offset())...)
	return out, p, err
}

// ByStore lists a store's assignments, newest first. With openOnly set,
// archived and fully returned rows are left out.
func (r *AssignmentRepo) ByStore(ctx context.Context, storeID int64, openOnly bool) ([]domain.Assignment, error) {
	q := assignmentSelect + ` WHERE a.store_id = ?`
	if openOnly {
		q += ` AND a.deleted_at IS NULL AND a.returned_quantity < a.quantity`
	}
	var out []domain.Assignment
	err := sqlx.SelectContext(ctx, r.db, &out, q+` ORDER BY a.assigned_at DESC, a.id DESC`, storeID)
	return out, err
}

func (r *AssignmentRepo) Insert(ctx context.Context, a *domain.Assignment) error {
	res, err := r.db.ExecContext(ctx, `
  INSERT INTO assignment(equipment_id, store_id, created_by, assigned_at, quantity, returned_quantity)
  VALUES (?, ?, ?, ?, ?, 0)`, a.EquipmentID, a.StoreID, a.CreatedBy, a.AssignedAt, a.Quantity)
	if err != nil {
		return err
	}
	a.ID, err = res.LastInsertId()
	return err
}

// Reassign sets quantity and store. Quantity may not drop below what was
// already returned.
func (r *AssignmentRepo) Reassign(ctx context.Context, id, storeID int64, qty int) error {
	return guarded(r.db.ExecContext(ctx, `
  UPDATE assignment SET quantity = ?, store_id = ?
  WHERE id = ? AND returned_quantity <= ?`, qty, storeID, id, qty))
}

// AddReturned books qty as returned if that does not exceed the assigned quantity.
func (r *AssignmentRepo) AddReturned(ctx context.Context, id int64, qty int, by *int64, at time.Time) error {
	return guarded(r.db.ExecContext(ctx, `
  UPDATE assignment
  SET returned_quantity = returned_quantity + ?, returned_at = ?, returned_by = ?
  WHERE id = ? AND returned_quantity + ? <= quantity`, qty, at, by, id, qty))
}

func (r *AssignmentRepo) SetDeletedAt(ctx context.Context, id int64, at *time.Time) error {
	return guarded(r.db.ExecContext(ctx, `UPDATE assignment SET deleted_at = ? WHERE id = ?`, at, id))
}

// HardDelete removes the row together with its movements.
func (r *AssignmentRepo) HardDelete(ctx context.Context, id int64) error {
	return guarded(r.db.ExecContext(ctx, `DELETE FROM assignment WHERE id = ?`, id))
}

// OpenCountForEquipment counts non-archived assignments that still hold stock.
func (r *AssignmentRepo) OpenCountForEquipment(ctx context.Context, equipmentID int64) (int, error) {
	var n int
	err := sqlx.GetContext(ctx, r.db, &n, `
  SELECT COUNT(*) FROM assignment
  WHERE equipment_id = ? AND deleted_at IS NULL AND returned_quantity < quantity`, equipmentID)
	return n, err
}
