package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"gocatalog/internal/api"
	"gocatalog/internal/config"
	"gocatalog/internal/container"
	"gocatalog/internal/logging"
	"gocatalog/ui"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables from .env file
	envErr := godotenv.Load()

	appConfig, err := config.Load()
	if err != nil {
		boot := logging.New(logging.Config{})
		boot.Fatal().Err(err).Msg("failed to load configuration")
	}

	logger := logging.New(logging.Config{Level: appConfig.Log.Level, Format: appConfig.Log.Format})
	if envErr != nil {
		logger.Debug().Msg("no .env file found, using system environment variables")
	}
	gin.SetMode(appConfig.Server.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c, err := container.New(ctx, appConfig, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize application")
	}
	defer c.Close()

	server := ui.NewServer(ui.Dependencies{
		Catalog:  c.Catalog,
		Usage:    c.Usage,
		Assist:   api.NewRouter(c.Assist, logger),
		Provider: c.Gateway.Provider(),
	}, logger)

	if err := server.Run(ctx, ":"+appConfig.Server.Port); err != nil {
		logger.Error().Err(err).Msg("server stopped")
		c.Close()
		os.Exit(1)
	}
}
