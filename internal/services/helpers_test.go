package services_test

import (
	"context"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"equiptrack/internal/domain"
	"equiptrack/internal/metrics"
	"equiptrack/internal/repos"
	"equiptrack/internal/services"
)

type env struct {
	db      *sqlx.DB
	metrics *metrics.Metrics
	base    services.Base
	assign  *services.AssignmentService
	equip   *services.EquipmentService
	stores  *services.StoreService
	cats    *services.CategoryService
	users   *services.UserService

	admin     int64
	category  int64
	equipment int64
	store     int64
}

func setup(t *testing.T, stock int) *env {
	t.Helper()
	db, err := repos.OpenDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	m := metrics.New()
	b := services.Base{DB: db, Audit: services.NewAuditWriter(repos.NewAuditRepo(db), m), Metrics: m}
	e := &env{
		db:      db,
		metrics: m,
		base:    b,
		assign:  services.NewAssignmentService(b),
		equip:   services.NewEquipmentService(b),
		stores:  &services.StoreService{Base: b},
		cats:    &services.CategoryService{Base: b},
		users:   &services.UserService{Base: b, Users: repos.NewUserRepo(db)},
	}
	ctx := context.Background()

	admin, err := repos.NewUserRepo(db).ByEmail(ctx, "admin@equiptrack.test")
	require.NoError(t, err)
	e.admin = admin.ID

	c, err := e.cats.Create(ctx, e.admin, services.CategoryInput{Name: "Kitchen"})
	require.NoError(t, err)
	e.category = c.ID

	eq, err := e.equip.Create(ctx, e.admin, services.EquipmentInput{
		Name: "Fryer", Reference: "KIT-FRY-01", CategoryID: c.ID, State: "new", StockQuantity: stock,
	})
	require.NoError(t, err)
	e.equipment = eq.ID

	st, err := e.stores.Create(ctx, e.admin, services.StoreInput{
		Name: "Lyon", Address: "1 place Bellecour", Status: "open", ProjectType: "creation",
	})
	require.NoError(t, err)
	e.store = st.ID
	return e
}

func (e *env) stock(t *testing.T) int {
	t.Helper()
	n, err := repos.NewEquipmentRepo(e.db).Stock(context.Background(), e.equipment)
	require.NoError(t, err)
	return n
}

func (e *env) movements(t *testing.T) []domain.Movement {
	t.Helper()
	ms, err := repos.NewMovementRepo(e.db).ByEquipment(context.Background(), e.equipment)
	require.NoError(t, err)
	return ms
}

func (e *env) audits(t *testing.T, entity string, id int64) []domain.Audit {
	t.Helper()
	as, err := repos.NewAuditRepo(e.db).History(context.Background(), entity, id)
	require.NoError(t, err)
	return as
}

func (e *env) assignment(t *testing.T, id int64) domain.Assignment {
	t.Helper()
	a, err := e.assign.Get(context.Background(), id)
	require.NoError(t, err)
	return a
}

// assertInvariants checks the properties that must hold after any operation.
func (e *env) assertInvariants(t *testing.T) {
	t.Helper()
	var bad int
	require.NoError(t, e.db.Get(&bad, `SELECT COUNT(*) FROM equipment WHERE stock_quantity < 0`))
	require.Zero(t, bad, "negative stock")
	require.NoError(t, e.db.Get(&bad, `SELECT COUNT(*) FROM assignment WHERE quantity <= 0 OR returned_quantity < 0 OR returned_quantity > quantity`))
	require.Zero(t, bad, "assignment quantities out of range")
}
