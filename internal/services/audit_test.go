package services_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"equiptrack/internal/domain"
	applog "equiptrack/internal/log"
	"equiptrack/internal/metrics"
	"equiptrack/internal/repos"
	"equiptrack/internal/services"
)

type recorder struct{ events []services.AuditEvent }

func (r *recorder) Record(_ context.Context, ev services.AuditEvent) { r.events = append(r.events, ev) }

func TestOperationsEmitOneEventEach(t *testing.T) {
	e := setup(t, 10)
	rec := &recorder{}
	b := e.base
	b.Audit = rec
	svc := services.NewAssignmentService(b)
	ctx := context.Background()

	a, err := svc.Create(ctx, e.admin, services.AssignmentInput{EquipmentID: e.equipment, StoreID: e.store, Quantity: 2})
	require.NoError(t, err)
	require.NoError(t, svc.Return(ctx, e.admin, a.ID, 1))
	require.Error(t, svc.Return(ctx, e.admin, a.ID, 5))
	_, err = svc.SoftDelete(ctx, e.admin, a.ID)
	require.NoError(t, err)
	_, err = svc.SoftDelete(ctx, e.admin, a.ID)
	require.NoError(t, err)

	var actions []string
	for _, ev := range rec.events {
		assert.Equal(t, domain.EntityAssignment, ev.Entity)
		assert.Equal(t, a.ID, ev.EntityID)
		assert.Equal(t, e.admin, ev.Actor)
		actions = append(actions, ev.Action)
	}
	assert.Equal(t, []string{domain.ActionCreate, domain.ActionReturn, domain.ActionSoftDelete}, actions)
}

func TestAuditFailureDoesNotUndoTheChange(t *testing.T) {
	e := setup(t, 10)
	ctx := context.Background()

	var buf bytes.Buffer
	applog.SetOutput(&buf)
	t.Cleanup(func() { applog.SetOutput(&bytes.Buffer{}) })

	// a writer pointed at a closed database fails every append
	broken, err := repos.OpenDB(":memory:")
	require.NoError(t, err)
	require.NoError(t, broken.Close())
	m := metrics.New()
	b := e.base
	b.Audit = services.NewAuditWriter(repos.NewAuditRepo(broken), m)
	svc := services.NewAssignmentService(b)
	audits := repos.NewAuditRepo(e.db)
	before, err := audits.Count(ctx)
	require.NoError(t, err)

	_, err = svc.Create(ctx, e.admin, services.AssignmentInput{EquipmentID: e.equipment, StoreID: e.store, Quantity: 3})
	require.NoError(t, err)
	assert.Equal(t, 7, e.stock(t))
	after, err := audits.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, before, after)

	expected := `
# HELP equiptrack_audit_write_failures_total Audit entries that could not be written.
# TYPE equiptrack_audit_write_failures_total counter
equiptrack_audit_write_failures_total 1
`
	require.NoError(t, testutil.GatherAndCompare(m.Registry, strings.NewReader(expected), "equiptrack_audit_write_failures_total"))
	assert.Contains(t, buf.String(), `"msg":"audit.write"`)
}

func TestCategoryNamesAreUnique(t *testing.T) {
	e := setup(t, 1)
	ctx := context.Background()

	_, err := e.cats.Create(ctx, e.admin, services.CategoryInput{Name: " kitchen "})
	require.ErrorIs(t, err, services.ErrValidation)

	changed, err := e.cats.SoftDelete(ctx, e.admin, e.category)
	require.NoError(t, err)
	assert.True(t, changed)
	active, err := e.cats.List(ctx, false)
	require.NoError(t, err)
	assert.Empty(t, active)

	// archived categories cannot take new equipment
	_, err = e.equip.Create(ctx, e.admin, services.EquipmentInput{Name: "Oven", Reference: "KIT-OVN-01", CategoryID: e.category, State: "new"})
	require.ErrorIs(t, err, services.ErrValidation)
}

func TestStoreDetail(t *testing.T) {
	e := setup(t, 10)
	ctx := context.Background()

	err := e.stores.Update(ctx, e.admin, e.store, services.StoreInput{
		Name: "Lyon Bellecour", Address: "1 place Bellecour", Status: "closed", ProjectType: "reconstruction", OpenedOn: "2020-02-01",
	})
	require.NoError(t, err)
	_, err = e.assign.Create(ctx, e.admin, services.AssignmentInput{EquipmentID: e.equipment, StoreID: e.store, Quantity: 1})
	require.NoError(t, err)

	d, err := e.stores.Detail(ctx, e.store)
	require.NoError(t, err)
	assert.Equal(t, "Lyon Bellecour", d.Store.Name)
	require.NotNil(t, d.Store.OpenedOn)
	assert.Equal(t, 2020, d.Store.OpenedOn.Year())
	assert.Len(t, d.Assignments, 1)
	assert.Len(t, d.Movements, 1)
	require.NotNil(t, d.Trail.Editor)

	err = e.stores.Update(ctx, e.admin, e.store, services.StoreInput{Name: "Lyon", Address: "x", Status: "open", ProjectType: "creation", OpenedOn: "01/02/2020"})
	require.ErrorIs(t, err, services.ErrValidation)
}

func TestDashboardCounters(t *testing.T) {
	e := setup(t, 4)
	ctx := context.Background()
	_, err := e.assign.Create(ctx, e.admin, services.AssignmentInput{EquipmentID: e.equipment, StoreID: e.store, Quantity: 3})
	require.NoError(t, err)

	dash := services.NewDashboardService(repos.NewStatsRepo(e.db), 5)
	c, err := dash.Counters(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, c.Stores)
	assert.Equal(t, 1, c.Equipment)
	assert.Equal(t, 1, c.Assignments)
	assert.Equal(t, 1, c.TotalStock)
	assert.Equal(t, 1, c.LowStock)
	assert.Equal(t, 3, c.Outstanding)
	assert.Equal(t, 1, c.PendingReturns)
	assert.Equal(t, 1, c.RecentMovements)
}
