package bootstrap

import (
	"context"
	"fmt"

	"ampersand-agent/internal/config"
	"ampersand-agent/internal/controller"
	"ampersand-agent/internal/pkg/logger"
	"ampersand-agent/internal/repository/contract"
	"ampersand-agent/internal/repository/implementation"
	"ampersand-agent/internal/repository/memory"
	"ampersand-agent/internal/service"
	"ampersand-agent/pkg/article"
	"ampersand-agent/pkg/database"
	"ampersand-agent/pkg/events"
	"ampersand-agent/pkg/events/local"
	"ampersand-agent/pkg/llm/factory"
	"ampersand-agent/pkg/mode"
	"ampersand-agent/pkg/rag/decision"
	"ampersand-agent/pkg/rag/executor"
	"ampersand-agent/pkg/rag/history"
	"ampersand-agent/pkg/rag/response"
	"ampersand-agent/pkg/search"

	pktNats "ampersand-agent/pkg/nats"

	"github.com/redis/go-redis/v9"
)

type Container struct {
	Logger   logger.ILogger
	Catalog  *mode.Catalog
	Parser   *mode.Parser
	Store    *history.Store
	Pipeline *executor.Pipeline

	ChatbotService service.IChatbotService

	// Controllers
	ConversationController controller.IConversationController
	HealthController       controller.IHealthController

	closers []func()
}

// NewContainer wires every component from cfg. Optional backends that fail
// to connect (NATS) are logged and replaced by their in-process fallback;
// the configured summary backend is required.
func NewContainer(cfg *config.Config, log logger.ILogger) (*Container, error) {
	c := &Container{Logger: log}

	// 1. Mode catalog
	catalog, err := loadCatalog(cfg.App.ModesFile)
	if err != nil {
		return nil, err
	}
	c.Catalog = catalog
	c.Parser = mode.NewParser(catalog, cfg.Platform.BotUsername)

	// 2. LLM provider
	provider, err := factory.NewLLMProvider(factory.Config{
		Provider:  cfg.Ai.LLMProvider,
		Model:     cfg.Ai.LLMModel,
		BaseURL:   cfg.Ai.LLMBaseURL,
		APIKey:    cfg.LLMAPIKey(),
		MaxTokens: cfg.Ai.MaxOutputTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize LLM provider: %w", err)
	}
	log.Info("BOOTSTRAP", "Using LLM provider", map[string]interface{}{
		"provider": cfg.Ai.LLMProvider,
		"model":    cfg.Ai.LLMModel,
	})

	// 3. Memory
	summaries, err := c.summaryRepository(cfg)
	if err != nil {
		c.Close()
		return nil, err
	}
	c.Store = history.NewStore(memory.NewWindowRepository(cfg.Memory.Capacity), summaries, log)

	// 4. Events
	publisher := c.publisher(cfg)

	// 5. Pipeline
	c.Pipeline = executor.NewPipeline(executor.Dependencies{
		Catalog: catalog,
		Policy:  decision.NewPolicy(cfg.Search.Cooldown, log),
		Searcher: search.NewGateway(search.Config{
			APIKey:   cfg.Keys.GoogleAPIKey,
			EngineID: cfg.Keys.GoogleCSEID,
			Timeout:  cfg.Search.FetchTimeout,
		}, log),
		Extractor: article.NewExtractor(article.Config{Timeout: cfg.Search.FetchTimeout}, log),
		Generator: response.NewGenerator(provider, response.Config{
			MaxPromptTokens: cfg.Ai.MaxPromptTokens,
			MaxOutputTokens: cfg.Ai.MaxOutputTokens,
		}, log),
		Memory:    c.Store,
		Publisher: publisher,
		Logger:    log,
	}, executor.Config{
		SearchCandidates: cfg.Search.Candidates,
		WebContentLimit:  cfg.Search.WebContentMaxChars,
		SummaryInterval:  cfg.Memory.SummaryInterval,
	})

	// 6. Service & controllers
	c.ChatbotService = service.NewChatbotService(c.Pipeline, c.Store, catalog, c.Parser, service.Config{
		Tracked: cfg.Platform.IsTracked,
	}, log)
	c.ConversationController = controller.NewConversationController(c.ChatbotService)
	c.HealthController = controller.NewHealthController()

	return c, nil
}

// Close releases backend connections in reverse order of creation.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	c.closers = nil
}

func loadCatalog(path string) (*mode.Catalog, error) {
	if path == "" {
		return mode.DefaultCatalog()
	}
	return mode.LoadCatalog(path)
}

func (c *Container) summaryRepository(cfg *config.Config) (contract.ISummaryRepository, error) {
	switch cfg.Memory.SummaryBackend {
	case "redis":
		opts, err := redis.ParseURL(cfg.Memory.RedisURL)
		if err != nil {
			c.Logger.Warn("BOOTSTRAP", "Failed to parse Redis URL, using it as address", map[string]interface{}{
				"error": err.Error(),
			})
			opts = &redis.Options{Addr: cfg.Memory.RedisURL}
		}
		rdb := redis.NewClient(opts)
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			_ = rdb.Close()
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		c.closers = append(c.closers, func() { _ = rdb.Close() })
		return implementation.NewRedisSummaryRepository(rdb), nil

	case "postgres":
		db, err := database.NewGormDBFromDSN(cfg.Memory.DBConnection)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to postgres: %w", err)
		}
		if err := database.Migrate(db); err != nil {
			return nil, fmt.Errorf("failed to migrate summary table: %w", err)
		}
		c.closers = append(c.closers, func() {
			if sqlDB, err := db.DB(); err == nil {
				_ = sqlDB.Close()
			}
		})
		return implementation.NewGormSummaryRepository(db), nil

	default:
		return implementation.NewFileSummaryRepository(cfg.Memory.SummaryDir)
	}
}

// publisher prefers JetStream and falls back to the in-process bus, whose
// events only reach the audit log.
func (c *Container) publisher(cfg *config.Config) events.Publisher {
	if cfg.App.NatsURL != "" {
		natsPublisher, err := pktNats.NewPublisher(cfg.App.NatsURL, c.Logger)
		if err == nil {
			c.closers = append(c.closers, natsPublisher.Close)
			return natsPublisher
		}
		c.Logger.Warn("BOOTSTRAP", "Failed to connect to NATS, using in-process bus", map[string]interface{}{
			"error": err.Error(),
		})
	}

	bus := local.NewBus(c.Logger)
	ctx, cancel := context.WithCancel(context.Background())
	if err := bus.Subscribe(ctx, local.AuditHandler(c.Logger)); err != nil {
		c.Logger.Warn("BOOTSTRAP", "Failed to subscribe audit handler", map[string]interface{}{
			"error": err.Error(),
		})
	}
	c.closers = append(c.closers, func() {
		cancel()
		_ = bus.Close()
	})
	return bus
}
