package repos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
)

// Counters is the dashboard snapshot.
type Counters struct {
	Stores          int `db:"stores"`
	Equipment       int `db:"equipment"`
	Categories      int `db:"categories"`
	Assignments     int `db:"assignments"`
	TotalStock      int `db:"total_stock"`
	OutOfStock      int `db:"out_of_stock"`
	LowStock        int `db:"low_stock"`
	Outstanding     int `db:"outstanding"`
	PendingReturns  int `db:"pending_returns"`
	RecentMovements int `db:"recent_movements"`
}

type StatsRepo struct{ db sqlx.QueryerContext }

func NewStatsRepo(db sqlx.QueryerContext) *StatsRepo { return &StatsRepo{db: db} }

// Counters computes all dashboard figures in one statement. Archived rows are
// excluded everywhere.
func (r *StatsRepo) Counters(ctx context.Context, lowStock int, since time.Time) (Counters, error) {
	var c Counters
	err := sqlx.GetContext(ctx, r.db, &c, `
  SELECT
    (SELECT COUNT(*) FROM store WHERE deleted_at IS NULL) AS stores,
    (SELECT COUNT(*) FROM equipment WHERE deleted_at IS NULL) AS equipment,
    (SELECT COUNT(*) FROM category WHERE deleted_at IS NULL) AS categories,
    (SELECT COUNT(*) FROM assignment WHERE deleted_at IS NULL) AS assignments,
    (SELECT COALESCE(SUM(stock_quantity),0) FROM equipment WHERE deleted_at IS NULL) AS total_stock,
    (SELECT COUNT(*) FROM equipment WHERE deleted_at IS NULL AND stock_quantity = 0) AS out_of_stock,
    (SELECT COUNT(*) FROM equipment WHERE deleted_at IS NULL AND stock_quantity > 0 AND stock_quantity <= ?) AS low_stock,
    (SELECT COALESCE(SUM(quantity - returned_quantity),0) FROM assignment WHERE deleted_at IS NULL) AS outstanding,
    (SELECT COUNT(*) FROM assignment WHERE deleted_at IS NULL AND returned_quantity < quantity) AS pending_returns,
    (SELECT COUNT(*) FROM movement WHERE occurred_at >= ?) AS recent_movements`, lowStock, since)
	return c, err
}
