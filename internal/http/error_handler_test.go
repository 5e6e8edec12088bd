package handlers_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"

	"equiptrack/internal/http/handlers"
)

func TestErrorHandlerHidesInternals(t *testing.T) {
	app := fiber.New(fiber.Config{
		Views:        handlers.NewEngine("../../web/templates"),
		ErrorHandler: handlers.ErrorHandler,
	})
	app.Get("/boom", func(c *fiber.Ctx) error { return errors.New("database exploded: secret dsn") })
	app.Get("/gone", func(c *fiber.Ctx) error { return fiber.ErrNotFound })

	var resp *http.Response
	entries := captureLogs(t, func() {
		var err error
		resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/boom", nil), -1)
		if err != nil {
			t.Fatal(err)
		}
	})
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", resp.StatusCode)
	}
	b := body(resp)
	if strings.Contains(b, "secret dsn") {
		t.Fatalf("internal error leaked to the page")
	}
	if !strings.Contains(b, "Something went wrong. Please try again.") {
		t.Fatalf("friendly message missing: %s", b)
	}
	e := findLog(entries, "server.error")
	if e == nil || e.Level != "error" {
		t.Fatalf("expected server.error log, got %+v", entries)
	}

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/gone", nil), -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusNotFound || !strings.Contains(body(resp), "Page not found") {
		t.Fatalf("expected 404 page, got %d", resp.StatusCode)
	}
}

func TestHealthzAndMetrics(t *testing.T) {
	ta := newTestApp(t)
	cl := ta.client()

	resp := cl.get("/healthz")
	if resp.StatusCode != http.StatusOK || !strings.Contains(body(resp), `"ok":true`) {
		t.Fatalf("healthz: %d", resp.StatusCode)
	}

	cl.login("admin@equiptrack.test")
	seedViaForms(t, cl)

	resp = cl.get("/metrics")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("metrics: %d", resp.StatusCode)
	}
	b := body(resp)
	for _, want := range []string{
		`equiptrack_http_requests_total{method="GET",route="/login",status="200"}`,
		`equiptrack_operations_total{op="equipment.create",outcome="ok"} 1`,
		`equiptrack_operations_total{op="store.create",outcome="ok"} 1`,
	} {
		if !strings.Contains(b, want) {
			t.Fatalf("metrics output missing %s", want)
		}
	}
}

func TestUnknownRouteRendersNotFound(t *testing.T) {
	ta := newTestApp(t)
	cl := ta.client()
	cl.login("alice@equiptrack.test")
	resp := cl.get("/no/such/page")
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
	if b := body(resp); !strings.Contains(b, "Page not found") || !strings.Contains(b, "Alice Martin") {
		t.Fatalf("404 page should keep the layout: %s", b)
	}
}
