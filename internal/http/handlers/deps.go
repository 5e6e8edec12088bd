package handlers

import (
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/jmoiron/sqlx"

	"equiptrack/internal/config"
	"equiptrack/internal/metrics"
	"equiptrack/internal/repos"
	"equiptrack/internal/services"
)

type Deps struct {
	Auth *services.AuthService

	AuthHandler       *AuthHandler
	DashboardHandler  *DashboardHandler
	EquipmentHandler  *EquipmentHandler
	StoreHandler      *StoreHandler
	CategoryHandler   *CategoryHandler
	AssignmentHandler *AssignmentHandler
	UserHandler       *UserHandler
}

func NewDeps(db *sqlx.DB, cfg config.Config, m *metrics.Metrics, sessions *session.Store) *Deps {
	userRepo := repos.NewUserRepo(db)
	base := services.Base{
		DB:      db,
		Audit:   services.NewAuditWriter(repos.NewAuditRepo(db), m),
		Metrics: m,
	}

	authSvc := &services.AuthService{Users: userRepo}
	equipSvc := services.NewEquipmentService(base)
	storeSvc := &services.StoreService{Base: base}
	catSvc := &services.CategoryService{Base: base}
	assignSvc := services.NewAssignmentService(base)
	userSvc := &services.UserService{Base: base, Users: userRepo}
	dashSvc := services.NewDashboardService(repos.NewStatsRepo(db), cfg.LowStock)

	v := &View{Sessions: sessions, PageSize: cfg.PageSize}
	return &Deps{
		Auth:              authSvc,
		AuthHandler:       &AuthHandler{View: v, Auth: authSvc, CookieSecure: cfg.CookieSecure, SessionTTL: cfg.SessionTTL},
		DashboardHandler:  &DashboardHandler{View: v, Dashboard: dashSvc},
		EquipmentHandler:  &EquipmentHandler{View: v, Equipment: equipSvc, Categories: catSvc},
		StoreHandler:      &StoreHandler{View: v, Stores: storeSvc, Assignments: assignSvc},
		CategoryHandler:   &CategoryHandler{View: v, Categories: catSvc},
		AssignmentHandler: &AssignmentHandler{View: v, Assignments: assignSvc, Equipment: equipSvc, Stores: storeSvc},
		UserHandler:       &UserHandler{View: v, Users: userSvc},
	}
}
