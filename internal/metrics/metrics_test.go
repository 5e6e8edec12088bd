package metrics

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpCountsByOutcome(t *testing.T) {
	m := New()
	m.Op("assignment.create", OutcomeOK)
	m.Op("assignment.create", OutcomeOK)
	m.Op("assignment.create", OutcomeRejected)
	m.AuditFailed()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.operations.WithLabelValues("assignment.create", OutcomeOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.operations.WithLabelValues("assignment.create", OutcomeRejected)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.auditFailures))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.Op("x", OutcomeOK)
	m.AuditFailed()

	app := fiber.New()
	app.Use(m.Middleware())
	app.Get("/", func(c *fiber.Ctx) error { return c.SendString("ok") })
	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
}

func TestMiddlewareRecordsRoute(t *testing.T) {
	m := New()
	app := fiber.New()
	app.Use(m.Middleware())
	app.Get("/store/:id", func(c *fiber.Ctx) error { return c.SendStatus(204) })

	resp, err := app.Test(httptest.NewRequest("GET", "/store/7", nil))
	require.NoError(t, err)
	assert.Equal(t, 204, resp.StatusCode)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requestCount.WithLabelValues("GET", "/store/:id", "204")))
}
