package main

import (
	"context"
	"os"

	"go.uber.org/zap"

	"equiptrack/internal/config"
	"equiptrack/internal/http/handlers"
	applog "equiptrack/internal/log"
	"equiptrack/internal/metrics"
	"equiptrack/internal/repos"
)

func main() {
	ctx := context.Background()
	cfg, err := config.Load(ctx)
	if err != nil {
		applog.L().Fatal("config.load", zap.Error(err))
	}

	if err := applog.Init(cfg.LogLevel, cfg.LogFile); err != nil {
		applog.L().Fatal("log.init", zap.String("level", cfg.LogLevel), zap.String("file", cfg.LogFile), zap.Error(err))
	}
	defer applog.Sync()
	applog.Info(nil, "config.loaded", cfg.Fields())

	db, err := repos.OpenDB(cfg.DBDSN)
	if err != nil {
		applog.L().Fatal("db.open", zap.Error(err))
	}
	defer db.Close()

	if cfg.Seed {
		if err := repos.SeedDemo(ctx, db); err != nil {
			applog.L().Fatal("db.seed", zap.Error(err))
		}
	}

	app := handlers.NewApp(db, cfg, metrics.New())
	applog.L().Info("server.start", zap.String("addr", ":"+cfg.Port))
	if err := app.Listen(":" + cfg.Port); err != nil {
		applog.L().Error("server.stop", zap.Error(err))
		os.Exit(1)
	}
}
