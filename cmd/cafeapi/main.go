package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/vbonduro/cafeapi/internal/config"
	"github.com/vbonduro/cafeapi/internal/db"
	"github.com/vbonduro/cafeapi/internal/logging"
	"github.com/vbonduro/cafeapi/internal/service"
	"github.com/vbonduro/cafeapi/internal/store"
	"github.com/vbonduro/cafeapi/internal/web"
	"github.com/vbonduro/cafeapi/internal/web/templates"
)

func main() {
	cfg, err := config.LoadEnvFile(config.EnvFile())
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, cleanup, err := logging.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer cleanup()

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		return
	}
	defer func() {
		if err := database.Close(); err != nil {
			logger.Error("failed to close database", "error", err)
		}
	}()

	if cfg.APIKey == "" {
		logger.Warn("CAFE_API_KEY is not set; every report-closed request will be rejected")
	}

	cafeService := service.NewCafeService(store.NewCafeStore(database), cfg.APIKey, logger)
	server := web.NewServer(cafeService, templates.FS, database, logger, cfg.MetricsEnabled)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := server.ListenAndServe(ctx, cfg.ListenAddr); err != nil {
		logger.Error("server error", "error", err)
	}
}
