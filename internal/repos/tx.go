package repos

import (
	"context"
	"errors"

	"github.com/jmoiron/sqlx"
)

// ErrGuard is returned when a guarded conditional update matched no row.
var ErrGuard = errors.New("repos: guarded update matched no rows")

// InTx runs fn inside one transaction. The transaction is committed when fn
// returns nil and rolled back otherwise.
func InTx(ctx context.Context, db *sqlx.DB, fn func(tx *sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

func guarded(res interface{ RowsAffected() (int64, error) }, err error) error {
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrGuard
	}
	return nil
}
