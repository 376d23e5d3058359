package container

import (
	"context"

	"gocatalog/adapters/llm"
	"gocatalog/adapters/sqlstore"
	"gocatalog/ai"
	"gocatalog/app"
	"gocatalog/internal/api"
	"gocatalog/internal/config"
	"gocatalog/internal/errors"
	"gocatalog/internal/logging"
	"gocatalog/internal/mapping"
	"gocatalog/internal/synthesis"
	"gocatalog/internal/usage"
	"gocatalog/ports"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"
)

// Container holds all application dependencies and manages their lifecycle
type Container struct {
	Config *config.Config
	Logger zerolog.Logger

	// Infrastructure
	DB        *sqlx.DB
	UsageRepo ports.GatewayUsageRepository
	Gateway   ports.ModelGateway

	// Core engine
	Mapper       *mapping.ColumnMapper
	Materializer *synthesis.RowMaterializer

	// AI components
	Prompts  *ai.PromptManager
	Enricher *ai.EnrichmentOrchestrator
	Router   *ai.AssistantDialogueRouter

	// Services
	Catalog *app.CatalogService
	Usage   *usage.Service
	Assist  *api.AssistHandler
}

// New builds the dependency graph. The usage ledger is opened only when a
// database URL is configured.
func New(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*Container, error) {
	if cfg == nil {
		return nil, errors.ConfigInvalid("config cannot be nil")
	}

	c := &Container{Config: cfg, Logger: logger}

	if cfg.Database.Enabled() {
		if err := c.initDatabase(ctx); err != nil {
			return nil, err
		}
	}

	if err := c.initAI(); err != nil {
		c.Close()
		return nil, err
	}

	c.Mapper = mapping.NewColumnMapper(nil, mapping.MapperOptions{}, logger)
	c.Materializer = synthesis.NewRowMaterializer(synthesis.NewFieldSynthesizer(nil), logger)
	c.Catalog = app.NewCatalogService(c.Mapper, c.Materializer, c.Enricher, c.Router, logger)
	c.Usage = usage.NewService(c.UsageRepo)
	c.Assist = api.NewAssistHandler(c.Router, c.Enricher, logger)

	log := logging.Component(logger, "Container")
	log.Info().
		Str("provider", c.Gateway.Provider()).
		Str("model", c.Gateway.Model()).
		Bool("usage_ledger", c.UsageRepo != nil).
		Msg("container initialized")
	return c, nil
}

// initDatabase opens the usage ledger.
func (c *Container) initDatabase(ctx context.Context) error {
	db, err := sqlstore.Open(ctx, c.Config.Database.Driver, c.Config.Database.URL)
	if err != nil {
		return err
	}
	c.DB = db
	c.UsageRepo = sqlstore.NewUsageRepository(db)
	return nil
}

// initAI builds the gateway chain and the components that consume it.
func (c *Container) initAI() error {
	prompts, err := ai.NewPromptManager(c.Config.AI.PromptsDir, c.Logger)
	if err != nil {
		return err
	}
	c.Prompts = prompts

	gateway := llm.NewGateway(c.Config.AI, c.Logger)
	if c.UsageRepo != nil {
		gateway = llm.WithUsageLedger(gateway, c.UsageRepo, c.Logger)
	}
	c.Gateway = gateway

	c.Enricher = ai.NewEnrichmentOrchestrator(gateway, prompts, c.Logger)
	c.Router = ai.NewAssistantDialogueRouter(gateway, prompts, c.Logger)
	return nil
}

// Close releases the database connection, if any.
func (c *Container) Close() error {
	if c.DB == nil {
		return nil
	}
	return c.DB.Close()
}
