package main

import (
	"context"
	"fmt"
	"os"

	"github.com/nurpe/gigpay/internal/auth"
	"github.com/nurpe/gigpay/internal/config"
	"github.com/nurpe/gigpay/internal/db"
	"github.com/nurpe/gigpay/internal/excel"
	httphandler "github.com/nurpe/gigpay/internal/http"
	"github.com/nurpe/gigpay/internal/http/middleware"
	"github.com/nurpe/gigpay/internal/logger"
	"github.com/nurpe/gigpay/internal/metrics"
	"github.com/nurpe/gigpay/internal/pdf"
	"github.com/nurpe/gigpay/internal/repository"
	"github.com/nurpe/gigpay/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Environment, logger.Options{
		Level:      cfg.Log.Level,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
	})

	database, err := db.New(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect database")
	}

	store := repository.NewStore(database)
	engine, err := service.NewEngine(context.Background(), store, log, service.EngineOptions{
		Owner:       cfg.Platform.Owner,
		EscrowVault: cfg.Platform.EscrowVault,
		FeeRate:     cfg.Platform.FeeRate,
		Metrics:     metrics.Engine(),
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to init payment engine")
	}

	exportService := service.NewExportService(engine, pdf.NewGenerator(), excel.NewGenerator())

	tokenParser := auth.NewParser(cfg.Auth.AccessSecret)
	handler := httphandler.NewHandler(engine, exportService, log)
	authMiddleware := middleware.Auth(tokenParser)
	limiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRPM, cfg.HTTP.RateLimitBurst)
	if limiter == nil {
		log.Warn().Msg("rate limiting disabled")
	}
	router := httphandler.NewRouter(handler, authMiddleware, limiter, cfg.Environment, cfg.HTTP.CORSAllowedOrigins)

	addr := fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
	log.Info().
		Str("addr", addr).
		Str("owner", engine.Owner()).
		Uint32("fee_rate", cfg.Platform.FeeRate).
		Msg("starting gigpay service")

	if err := router.Run(addr); err != nil {
		log.Error().Err(err).Msg("server stopped")
		os.Exit(1)
	}
}
