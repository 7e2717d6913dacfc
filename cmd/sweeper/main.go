package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/toolindex/toolindex-api/internal/config"
	"github.com/toolindex/toolindex-api/internal/domain/moderation"
	"github.com/toolindex/toolindex-api/internal/pkg/database"
	"github.com/toolindex/toolindex-api/internal/pkg/logger"
)

// The sweeper clears suspensions whose window has closed. Reads stay
// correct without it, it only keeps the ledger rows tidy.
func main() {
	cfg := config.Load()
	if err := logger.Init(logger.Config{Level: cfg.LogLevel, Environment: cfg.Env, LogFile: cfg.LogFile}); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize logger")
	}

	log.Info().
		Dur("interval", cfg.SweepInterval).
		Msg("Starting suspension sweeper")

	db, err := database.NewPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer database.ClosePostgres(db)

	statusRepo := moderation.NewStatusRepository(db)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ticker := time.NewTicker(cfg.SweepInterval)
	defer ticker.Stop()

	sweep(ctx, statusRepo)
	for {
		select {
		case <-ticker.C:
			sweep(ctx, statusRepo)
		case <-ctx.Done():
			log.Info().Msg("Sweeper exiting")
			return
		}
	}
}

func sweep(ctx context.Context, repo moderation.StatusRepository) {
	n, err := repo.ExpireSuspensions(ctx, time.Now().UTC())
	if err != nil {
		log.Error().Err(err).Msg("Suspension sweep failed")
		return
	}
	if n > 0 {
		log.Info().Int64("users", n).Msg("Expired suspensions cleared")
	}
}
