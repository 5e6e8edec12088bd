package services

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"equiptrack/internal/domain"
	"equiptrack/internal/metrics"
	"equiptrack/internal/repos"
)

// Base carries what every mutating service needs. Audit and Metrics may be nil.
type Base struct {
	DB      *sqlx.DB
	Audit   AuditSink
	Metrics *metrics.Metrics
}

func (b Base) record(ctx context.Context, actor int64, action, entity string, id int64) {
	if b.Audit == nil {
		return
	}
	b.Audit.Record(ctx, AuditEvent{Actor: actor, Action: action, Entity: entity, EntityID: id})
}

func (b Base) observe(op string, err error) {
	b.Metrics.Op(op, outcome(err))
}

// setArchived archives (or restores) one record inside a transaction. It
// reports false when the record was already in the requested state; only an
// effective change is audited.
func (b Base) setArchived(
	ctx context.Context, actor int64, entity string, id int64, archive bool,
	load func(ctx context.Context, tx *sqlx.Tx) (domain.Archivable, error),
	save func(ctx context.Context, tx *sqlx.Tx, at *time.Time) error,
) (bool, error) {
	changed := false
	err := repos.InTx(ctx, b.DB, func(tx *sqlx.Tx) error {
		rec, err := load(ctx, tx)
		if err != nil {
			return err
		}
		if archive {
			at := now()
			if changed = rec.SoftDelete(at); changed {
				return save(ctx, tx, &at)
			}
			return nil
		}
		if changed = rec.Restore(); changed {
			return save(ctx, tx, nil)
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	if changed {
		action := domain.ActionRestore
		if archive {
			action = domain.ActionSoftDelete
		}
		b.record(ctx, actor, action, entity, id)
	}
	return changed, nil
}
