package repos

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"equiptrack/internal/domain"
)

// MovementRepo is append-only. Rows disappear only when their assignment is
// hard-deleted.
type MovementRepo struct{ db sqlx.ExtContext }

func NewMovementRepo(db sqlx.ExtContext) *MovementRepo { return &MovementRepo{db: db} }

const movementSelect = `
  SELECT m.id, m.assignment_id, m.equipment_id, m.store_id, m.type, m.direction, m.quantity,
         m.occurred_at, m.performed_by,
         e.name AS equipment_name, COALESCE(s.name,'') AS store_name,
         COALESCE(u.full_name,'') AS performed_by_name
  FROM movement m
  JOIN equipment e ON e.id = m.equipment_id
  LEFT JOIN store s ON s.id = m.store_id
  LEFT JOIN users u ON u.id = m.performed_by`

const movementOrder = ` ORDER BY m.occurred_at DESC, m.id DESC`

func (r *MovementRepo) Append(ctx context.Context, m *domain.Movement) error {
	if !m.Type.Valid() {
		return fmt.Errorf("movement: unknown type %q", m.Type)
	}
	if m.Quantity <= 0 {
		return fmt.Errorf("movement: quantity must be positive, got %d", m.Quantity)
	}
	var dir any
	if m.Direction != nil {
		dir = string(*m.Direction)
	}
	res, err := r.db.ExecContext(ctx, `
  INSERT INTO movement(assignment_id, equipment_id, store_id, performed_by, type, direction, quantity, occurred_at)
  VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		m.AssignmentID, m.EquipmentID, m.StoreID, m.PerformedBy, string(m.Type), dir, m.Quantity, m.OccurredAt)
	if err != nil {
		return err
	}
	m.ID, err = res.LastInsertId()
	return err
}

func (r *MovementRepo) ByEquipment(ctx context.Context, equipmentID int64) ([]domain.Movement, error) {
	return r.list(ctx, ` WHERE m.equipment_id = ?`, equipmentID)
}

func (r *MovementRepo) ByStore(ctx context.Context, storeID int64) ([]domain.Movement, error) {
	return r.list(ctx, ` WHERE m.store_id = ?`, storeID)
}

func (r *MovementRepo) ByAssignment(ctx context.Context, assignmentID int64) ([]domain.Movement, error) {
	return r.list(ctx, ` WHERE m.assignment_id = ?`, assignmentID)
}

func (r *MovementRepo) list(ctx context.Context, where string, args ...any) ([]domain.Movement, error) {
	var out []domain.Movement
	err := sqlx.SelectContext(ctx, r.db, &out, movementSelect+where+movementOrder, args...)
	return out, err
}

func (r *MovementRepo) CountSince(ctx context.Context, since time.Time) (int, error) {
	var n int
	err := sqlx.GetContext(ctx, r.db, &n, `SELECT COUNT(*) FROM movement WHERE occurred_at >= ?`, since)
	return n, err
}
