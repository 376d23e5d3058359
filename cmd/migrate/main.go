// Command migrate applies the usage ledger schema ahead of deployment.
package main

import (
	"context"
	"time"

	"gocatalog/adapters/sqlstore"
	"gocatalog/internal/config"
	"gocatalog/internal/logging"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		boot := logging.New(logging.Config{})
		boot.Fatal().Err(err).Msg("failed to load configuration")
	}
	logger := logging.Component(logging.New(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format}), "Migrate")

	if !cfg.Database.Enabled() {
		logger.Fatal().Msg("DATABASE_URL is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	db, err := sqlstore.Open(ctx, cfg.Database.Driver, cfg.Database.URL)
	if err != nil {
		logger.Fatal().Err(err).Msg("migration failed")
	}
	defer db.Close()

	logger.Info().Str("driver", cfg.Database.Driver).Msg("usage ledger schema is up to date")
}
