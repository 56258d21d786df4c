// Package bootstrap wires configuration, stores, services and the HTTP app.
package bootstrap

import (
	"os"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"triage_server/adapter/in/worker"
	"triage_server/adapter/out/persistence"
	"triage_server/config"
	"triage_server/core/domain"
	"triage_server/core/service/inbox"
	"triage_server/core/service/pipeline"
	"triage_server/core/service/triage"
	"triage_server/infra/database"
	"triage_server/pkg/cache"
)

// Dependencies is the assembled object graph.
type Dependencies struct {
	Config *config.Config
	Log    zerolog.Logger

	DB    *sqlx.DB
	Redis *redis.Client

	EmailRepo   domain.EmailRepository
	Settings    domain.SettingsRepository
	ResultCache *persistence.ResultCache

	Pipeline  *pipeline.Pipeline
	Views     *inbox.Service
	Processor *worker.Processor
}

// NewLogger builds the service logger from config.
func NewLogger(cfg *config.Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.LogLevel))
	if err != nil {
		level = zerolog.InfoLevel
	}

	var log zerolog.Logger
	if cfg.IsDevelopment() {
		log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout})
	} else {
		log = zerolog.New(os.Stdout)
	}
	return log.Level(level).With().Timestamp().Str("service", "triage").Logger()
}

// NewDependencies builds the full graph. Postgres and Redis are optional:
// without DATABASE_URL the service runs stateless (classify/extract/dnd-check
// only), without REDIS_URL results are simply never cached.
func NewDependencies(cfg *config.Config, log zerolog.Logger) (*Dependencies, func(), error) {
	deps := &Dependencies{Config: cfg, Log: log}

	if cfg.DatabaseURL != "" {
		db, err := database.NewPostgres(cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		deps.DB = db
		deps.EmailRepo = persistence.NewEmailAdapter(db)
		deps.Settings = persistence.NewSettingsAdapter(db)
		log.Info().Msg("postgres connected")
	} else {
		log.Warn().Msg("DATABASE_URL not set, running stateless")
	}

	if cfg.RedisURL != "" {
		client, err := database.NewRedis(cfg.RedisURL)
		if err != nil {
			cleanupDeps(deps)
			return nil, nil, err
		}
		deps.Redis = client
		deps.ResultCache = persistence.NewResultCache(cache.NewRedisCache(client), cfg.ResultTTL)
		log.Info().Msg("redis connected")
	}

	deps.Pipeline = pipeline.New(pipeline.Deps{
		Engine:   triage.NewEngine(nil),
		DND:      triage.NewDNDEvaluator(),
		Settings: deps.Settings,
	})

	if deps.EmailRepo != nil {
		deps.Views = inbox.NewService(deps.EmailRepo)

		wcfg := worker.DefaultProcessorConfig()
		wcfg.BatchSize = cfg.WorkerBatchSize
		wcfg.MaxWorkers = cfg.WorkerMax
		wcfg.FetchLimit = cfg.WorkerFetch
		wcfg.Staleness = cfg.ResultTTL
		var resultCache worker.ResultCache
		if deps.ResultCache != nil {
			resultCache = deps.ResultCache
		}
		deps.Processor = worker.NewProcessor(deps.EmailRepo, deps.Pipeline, resultCache, wcfg, log)
	}

	cleanup := func() { cleanupDeps(deps) }
	return deps, cleanup, nil
}

func cleanupDeps(deps *Dependencies) {
	if deps.Processor != nil {
		deps.Processor.Stop()
	}
	if deps.Redis != nil {
		_ = deps.Redis.Close()
	}
	if deps.DB != nil {
		_ = deps.DB.Close()
	}
}
