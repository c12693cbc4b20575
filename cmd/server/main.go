package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/reservation_insight/backend/internal/config"
	"github.com/reservation_insight/backend/internal/db"
	httpapi "github.com/reservation_insight/backend/internal/http"
	"github.com/reservation_insight/backend/internal/http/handlers"
	"github.com/reservation_insight/backend/internal/service"
	"github.com/reservation_insight/backend/internal/session"
)

// @title Reservation Insight
// @version 1.0
// @description Uploads a reservation event export and returns a model-generated insight
// @BasePath /
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	zerolog.TimeFieldFormat = time.RFC3339
	level, _ := zerolog.ParseLevel(cfg.LogLevel)
	logger := log.Level(level).With().Str("service", "reservation-insight").Logger()

	ctx := context.Background()
	var (
		runs  service.RunRecorder
		store handlers.RunStore
	)
	if cfg.DatabaseURL != "" {
		pg, err := db.New(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect db")
		}
		defer pg.Close()
		if err := pg.EnsureSchema(ctx); err != nil {
			logger.Fatal().Err(err).Msg("failed to apply schema")
		}
		runs, store = pg, pg
	} else {
		logger.Info().Msg("DATABASE_URL not set, run history disabled")
	}

	sessions, err := session.NewRegistry(cfg.MaxSessions)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create session registry")
	}

	pipeline := service.NewPipeline(cfg, runs, logger)
	router := httpapi.Router(cfg, pipeline, sessions, store, logger)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Info().Str("port", cfg.Port).Str("model", cfg.Model).Msg("server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctxShutdown)
	logger.Info().Msg("server stopped")
}
