package repos

import (
	"context"

	"github.com/jmoiron/sqlx"

	"equiptrack/internal/domain"
)

// AuditRepo is write-once: rows are appended and never updated.
type AuditRepo struct{ db sqlx.ExtContext }

func NewAuditRepo(db sqlx.ExtContext) *AuditRepo { return &AuditRepo{db: db} }

const auditSelect = `
  SELECT a.id, a.user_id, a.action, a.entity_class, a.entity_id, a.occurred_at,
         COALESCE(u.full_name,'') AS user_name
  FROM audit a
  LEFT JOIN users u ON u.id = a.user_id`

func (r *AuditRepo) Append(ctx context.Context, a *domain.Audit) error {
	res, err := r.db.ExecContext(ctx, `
  INSERT INTO audit(user_id, action, entity_class, entity_id, occurred_at)
  VALUES (?, ?, ?, ?, ?)`, a.UserID, a.Action, a.EntityClass, a.EntityID, a.OccurredAt)
	if err != nil {
		return err
	}
	a.ID, err = res.LastInsertId()
	return err
}

// History returns the entries for one entity, newest first.
func (r *AuditRepo) History(ctx context.Context, entity string, id int64) ([]domain.Audit, error) {
	var out []domain.Audit
	err := sqlx.SelectContext(ctx, r.db, &out, auditSelect+`
  WHERE a.entity_class = ? AND a.entity_id = ?
  ORDER BY a.occurred_at DESC, a.id DESC`, entity, id)
	return out, err
}

// First returns the oldest entry with the given action.
func (r *AuditRepo) First(ctx context.Context, entity string, id int64, action string) (domain.Audit, error) {
	var a domain.Audit
	err := sqlx.GetContext(ctx, r.db, &a, auditSelect+`
  WHERE a.entity_class = ? AND a.entity_id = ? AND a.action = ?
  ORDER BY a.occurred_at ASC, a.id ASC LIMIT 1`, entity, id, action)
	return a, err
}

// Latest returns the newest entry with the given action.
func (r *AuditRepo) Latest(ctx context.Context, entity string, id int64, action string) (domain.Audit, error) {
	var a domain.Audit
	err := sqlx.GetContext(ctx, r.db, &a, auditSelect+`
  WHERE a.entity_class = ? AND a.entity_id = ? AND a.action = ?
  ORDER BY a.occurred_at DESC, a.id DESC LIMIT 1`, entity, id, action)
	return a, err
}

func (r *AuditRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := sqlx.GetContext(ctx, r.db, &n, `SELECT COUNT(*) FROM audit`)
	return n, err
}
