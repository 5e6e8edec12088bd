package handlers

import (
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/csrf"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/middleware/session"
	html "github.com/gofiber/template/html/v2"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"equiptrack/internal/config"
	applog "equiptrack/internal/log"
	"equiptrack/internal/metrics"
)

func fmtTime(layout string) func(v any) string {
	return func(v any) string {
		switch t := v.(type) {
		case time.Time:
			if t.IsZero() {
				return ""
			}
			return t.Local().Format(layout)
		case *time.Time:
			if t == nil || t.IsZero() {
				return ""
			}
			return t.Local().Format(layout)
		}
		return ""
	}
}

// NewEngine loads the html templates under dir with the view helpers.
func NewEngine(dir string) *html.Engine {
	engine := html.New(dir, ".html")
	engine.AddFunc("date", fmtTime("2006-01-02"))
	engine.AddFunc("datetime", fmtTime("2006-01-02 15:04"))
	engine.AddFunc("selected", func(a, b any) bool { return fmt.Sprint(a) == fmt.Sprint(b) })
	return engine
}

// NewApp builds the fiber application with every middleware and route.
func NewApp(db *sqlx.DB, cfg config.Config, m *metrics.Metrics) *fiber.App {
	if m == nil {
		m = metrics.New()
	}
	engine := NewEngine(cfg.TemplatesDir)

	app := fiber.New(fiber.Config{
		Views:        engine,
		ErrorHandler: ErrorHandler,
	})
	// Global body size guard
	app.Server().MaxRequestBodySize = 1 << 20 // 1 MiB

	sessions := session.New(session.Config{
		Expiration:     cfg.SessionTTL,
		KeyLookup:      "cookie:flash",
		CookieHTTPOnly: true,
		CookieSameSite: "Lax",
		CookieSecure:   cfg.CookieSecure,
	})
	deps := NewDeps(db, cfg, m, sessions)

	// ---------- Middlewares ----------
	app.Use(requestid.New())
	app.Use(logger.New())
	app.Use(helmet.New())
	app.Use(m.Middleware())
	if cfg.RateLimit > 0 {
		app.Use(limiter.New(limiter.Config{
			Max:        cfg.RateLimit,
			Expiration: time.Minute,
			Next: func(c *fiber.Ctx) bool {
				return strings.HasPrefix(c.Path(), "/static/")
			},
		}))
	}
	app.Use(LoadUser(deps.Auth))
	app.Use(csrf.New(csrf.Config{
		KeyLookup:      "form:csrf",
		CookieName:     "csrf_",
		CookieSameSite: "Lax",
		CookieSecure:   cfg.CookieSecure,
		ContextKey:     "csrf",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			applog.Security(c, "csrf.fail", map[string]any{"error": err.Error()})
			deps.AuthHandler.flash(c, "danger", "Security check failed. Please refresh and try again.")
			return c.Redirect(back(c, "/"), fiber.StatusSeeOther)
		},
	}))

	// ---------- Static assets ----------
	app.Static("/static", cfg.StaticDir)

	app.Get("/healthz", func(c *fiber.Ctx) error {
		if err := db.PingContext(c.UserContext()); err != nil {
			applog.Error(c, "healthz.db", err, nil)
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"ok": false})
		}
		return c.JSON(fiber.Map{"ok": true})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})))

	// Auth routes (login throttled)
	authH := deps.AuthHandler
	app.Get("/login", authH.LoginForm)
	app.Post("/login", limiter.New(limiter.Config{
		Max:        5,
		Expiration: 10 * time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.login.hit", nil)
			c.Status(fiber.StatusTooManyRequests)
			return authH.render(c, "login", fiber.Map{"Err": "Too many attempts. Please try again later."})
		},
	}), authH.Login)
	app.Post("/logout", authH.Logout)

	user := RequireUser()
	admin := RequireAdmin()

	app.Get("/", user, deps.DashboardHandler.Home)

	eq := app.Group("/equipment", user)
	eqH := deps.EquipmentHandler
	eq.Get("/", eqH.Index)
	eq.Get("/new", admin, eqH.New)
	eq.Post("/new", admin, eqH.Create)
	eq.Get("/:id", eqH.Show)
	eq.Get("/:id/edit", eqH.Edit)
	eq.Post("/:id/edit", eqH.Update)
	eq.Post("/:id/adjust", eqH.Adjust)
	eq.Post("/:id/delete", eqH.Delete)
	eq.Post("/:id/restore", admin, eqH.Restore)

	st := app.Group("/store", user)
	stH := deps.StoreHandler
	st.Get("/", stH.Index)
	st.Get("/new", admin, stH.New)
	st.Post("/new", admin, stH.Create)
	st.Get("/:id", stH.Show)
	st.Get("/:id/edit", stH.Edit)
	st.Post("/:id/edit", stH.Update)
	st.Post("/:id/delete", stH.Delete)
	st.Post("/:id/restore", admin, stH.Restore)
	st.Get("/:id/assigned.pdf", stH.AssignedPDF)

	cat := app.Group("/category", user)
	catH := deps.CategoryHandler
	cat.Get("/", catH.Index)
	cat.Post("/", admin, catH.Create)
	cat.Post("/:id/delete", admin, catH.Delete)
	cat.Post("/:id/restore", admin, catH.Restore)

	as := app.Group("/assignment", user)
	asH := deps.AssignmentHandler
	as.Get("/", asH.Index)
	as.Get("/new", asH.New)
	as.Post("/new", asH.Create)
	as.Get("/:id", asH.Show)
	as.Get("/:id/edit", asH.Edit)
	as.Post("/:id/edit", asH.Update)
	as.Post("/:id/return", asH.Return)
	as.Post("/:id/delete", asH.Delete)
	as.Post("/:id/restore", admin, asH.Restore)

	us := app.Group("/user", user, admin)
	usH := deps.UserHandler
	us.Get("/", usH.Index)
	us.Get("/new", usH.New)
	us.Post("/new", usH.Create)
	us.Get("/:id", usH.Show)
	us.Get("/:id/edit", usH.Edit)
	us.Post("/:id/edit", usH.Update)
	us.Post("/:id/activate", usH.Activate)
	us.Post("/:id/deactivate", usH.Deactivate)
	us.Get("/:id/password", usH.PasswordForm)
	us.Post("/:id/password", usH.Password)

	// 404
	app.Use(func(c *fiber.Ctx) error {
		return page(c, fiber.StatusNotFound, "Page not found")
	})
	return app
}
