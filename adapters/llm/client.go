package llm

import (
	"gocatalog/internal/config"
	"gocatalog/internal/logging"
	"gocatalog/ports"

	"github.com/rs/zerolog"
)

// NewGateway builds the model gateway for cfg. Without a credential for the
// selected provider it returns a gateway that always reports unavailable, so
// callers degrade instead of failing at startup.
func NewGateway(cfg config.AIConfig, logger zerolog.Logger) ports.ModelGateway {
	log := logging.Component(logger, "ModelGateway")

	if cfg.APIKey() == "" {
		log.Info().Str("provider", cfg.Provider).Msg("no credential configured, AI features use static fallbacks")
		return NewUnconfiguredGateway(cfg.Provider, cfg.Model)
	}

	var gateway ports.ModelGateway
	switch cfg.Provider {
	case "gemini":
		gateway = NewGeminiGateway(cfg)
	default:
		gateway = NewOpenAIGateway(cfg)
	}

	log.Info().
		Str("provider", gateway.Provider()).
		Str("model", gateway.Model()).
		Float64("rate_per_sec", cfg.RatePerSec).
		Int("burst", cfg.Burst).
		Msg("model gateway configured")

	return NewRateLimitedGateway(gateway, cfg.RatePerSec, cfg.Burst)
}
