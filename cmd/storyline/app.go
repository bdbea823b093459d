package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/storyline/internal/config"
	"github.com/kailas-cloud/storyline/internal/db"
	dbRedis "github.com/kailas-cloud/storyline/internal/db/redis"
	"github.com/kailas-cloud/storyline/internal/domain"
	logpkg "github.com/kailas-cloud/storyline/internal/logger"
	"github.com/kailas-cloud/storyline/internal/metrics"
	"github.com/kailas-cloud/storyline/internal/repository/embcache"
	searchrepo "github.com/kailas-cloud/storyline/internal/repository/search"
	storyrepo "github.com/kailas-cloud/storyline/internal/repository/story"
	openaiEmb "github.com/kailas-cloud/storyline/internal/transport/openai"
	embeddinguc "github.com/kailas-cloud/storyline/internal/usecase/embedding"
	healthuc "github.com/kailas-cloud/storyline/internal/usecase/health"
	indexinguc "github.com/kailas-cloud/storyline/internal/usecase/indexing"
	searchuc "github.com/kailas-cloud/storyline/internal/usecase/search"
	storyuc "github.com/kailas-cloud/storyline/internal/usecase/story"
)

// app is the composition root shared by every command.
type app struct {
	env    string
	cfg    config.Config
	logger *zap.Logger
	store  *dbRedis.Store

	stories  *storyrepo.Repo
	indexer  *indexinguc.Service
	storySvc *storyuc.Service
	search   *searchuc.Service
	health   *healthuc.Service
}

// newApp loads config, connects to the database, and builds every service.
// mode overrides indexing.mode when non-empty.
func newApp(ctx context.Context, mode indexinguc.Mode) (*app, error) {
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}

	keys, err := db.NewKeyspace(cfg.Storage.KeyPrefix)
	if err != nil {
		return nil, fmt.Errorf("storage.key_prefix: %w", err)
	}

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:       cfg.Database.Addrs,
		Username:    cfg.Database.Username,
		Password:    cfg.Database.Password,
		DB:          cfg.Database.DB,
		DialTimeout: config.Seconds(cfg.Database.DialTimeoutSec),
		ClientName:  logpkg.ServiceName,
	})
	if err != nil {
		return nil, fmt.Errorf("create database store: %w", err)
	}

	if err := store.WaitForReady(ctx, config.Seconds(cfg.Database.ReadinessTimeout)); err != nil {
		store.Close()
		return nil, fmt.Errorf("database not ready: %w", err)
	}
	logger.Info("Connected to database", zap.Strings("addrs", cfg.Database.Addrs))

	metrics.Register()

	base := openaiEmb.NewEmbedder(&openaiEmb.Config{
		APIKey:     cfg.Embedding.APIKey,
		BaseURL:    cfg.Embedding.BaseURL,
		Model:      cfg.Embedding.Model,
		Dimensions: cfg.Embedding.Dimensions,
		Provider:   cfg.Embedding.Provider,
		Timeout:    config.Seconds(cfg.Embedding.TimeoutSec),
		Logger:     logger,
	})
	docEmbedder, queryEmbedder := buildEmbedders(base, cfg.Embedding, keys, store, logger)

	stories := storyrepo.New(store, keys, cfg.Embedding.Dimensions, storyrepo.HNSWConfig{
		M:           cfg.Index.HNSWM,
		EFConstruct: cfg.Index.HNSWEFConstruct,
	})

	if mode == "" {
		mode = indexinguc.Mode(cfg.Indexing.Mode)
	}
	indexer, err := indexinguc.New(stories, docEmbedder, indexinguc.Config{
		Mode: mode,
		Pool: indexinguc.PoolConfig{
			NumWorkers: uint(cfg.Indexing.Workers),
			QueueSize:  uint(cfg.Indexing.QueueSize),
			JobTimeout: config.Seconds(cfg.Indexing.JobTimeoutSec),
			Logger:     logger.Named("indexing"),
		},
	}, logger)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("create indexer: %w", err)
	}

	return &app{
		env:      env,
		cfg:      cfg,
		logger:   logger,
		store:    store,
		stories:  stories,
		indexer:  indexer,
		storySvc: storyuc.New(stories, indexer, logger),
		search:   searchuc.New(searchrepo.New(store, keys), queryEmbedder, logger),
		health:   healthuc.New(store, store, keys.Index(), base),
	}, nil
}

// ensureIndex creates the story search index if it does not exist yet.
func (a *app) ensureIndex(ctx context.Context) error {
	created, err := a.stories.EnsureIndex(ctx)
	if err != nil {
		return fmt.Errorf("ensure search index: %w", err)
	}
	if created {
		a.logger.Info("Created story search index",
			zap.Int("dimensions", a.cfg.Embedding.Dimensions),
			zap.Int("hnsw_m", a.cfg.Index.HNSWM),
		)
	}
	return nil
}

// rebuildIndex drops the story search index and creates it from the current config.
func (a *app) rebuildIndex(ctx context.Context) error {
	a.logger.Info("Rebuilding story search index", zap.String("key_prefix", a.cfg.Storage.KeyPrefix))
	if err := a.stories.RebuildIndex(ctx); err != nil {
		return fmt.Errorf("rebuild search index: %w", err)
	}
	a.logger.Info("Story search index rebuilt")
	return nil
}

// Close drains background indexing, then releases the database connection.
func (a *app) Close() {
	a.indexer.Close()
	a.store.Close()
	_ = a.logger.Sync()
}

// buildEmbedders assembles the decorator chains: OpenAI -> Retry -> Instrumented, with the
// query side optionally cached. Story text is never served from the cache.
func buildEmbedders(
	base domain.Embedder,
	cfg config.EmbeddingConfig,
	keys db.Keyspace,
	store *dbRedis.Store,
	logger *zap.Logger,
) (doc, query domain.Embedder) {
	retrying := embeddinguc.NewRetryEmbedder(base, embeddinguc.RetryConfig{
		MaxAttempts:     cfg.Retry.MaxAttempts,
		InitialInterval: config.Millis(cfg.Retry.InitialIntervalMS),
		MaxInterval:     config.Millis(cfg.Retry.MaxIntervalMS),
	}, cfg.Provider, cfg.Model, logger)

	doc = embeddinguc.NewInstrumentedEmbedder(retrying, cfg.Provider, cfg.Model, logger)
	query = doc

	if cfg.Cache.Enabled {
		query = embcache.New(doc, store, embcache.Options{
			Keys:       keys,
			Model:      cfg.Model,
			Dimensions: cfg.Dimensions,
			TTL:        config.Seconds(cfg.Cache.TTLSec),
		}, metrics.EmbeddingCacheTotal, logger)
	}

	logger.Info("Embedders created",
		zap.String("provider", cfg.Provider),
		zap.String("model", cfg.Model),
		zap.Int("dimensions", cfg.Dimensions),
		zap.Bool("query_cache", cfg.Cache.Enabled),
	)
	return doc, query
}
