package services

import (
	"context"
	"time"

	"equiptrack/internal/repos"
)

type DashboardService struct {
	Stats    *repos.StatsRepo
	LowStock int
	Now      func() time.Time
}

func NewDashboardService(stats *repos.StatsRepo, lowStock int) *DashboardService {
	return &DashboardService{Stats: stats, LowStock: lowStock, Now: now}
}

// Counters returns the dashboard figures; recent movements cover the last 7 days.
func (s *DashboardService) Counters(ctx context.Context) (repos.Counters, error) {
	return s.Stats.Counters(ctx, s.LowStock, s.Now().AddDate(0, 0, -7))
}
