// Package app assembles a complete Kaiwa chatbot instance from
// configuration: intent catalog, embedding cache, matcher, composer, and
// pipeline, plus the optional transcript store. Both the server and REPL
// binaries build through here so they always agree on the wiring.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/bdobrica/Kaiwa/internal/kaiwa/config"
	"github.com/bdobrica/Kaiwa/internal/kaiwa/embed"
	"github.com/bdobrica/Kaiwa/internal/kaiwa/history"
	"github.com/bdobrica/Kaiwa/internal/kaiwa/intent"
	"github.com/bdobrica/Kaiwa/internal/kaiwa/match"
	"github.com/bdobrica/Kaiwa/internal/kaiwa/pipeline"
	"github.com/bdobrica/Kaiwa/internal/kaiwa/respond"
)

// App is a fully wired chatbot instance. All state (catalog, embedding
// cache) is owned by the instance; two Apps never share caches.
type App struct {
	Config   config.Config
	Catalog  *intent.Catalog
	Pipeline *pipeline.Pipeline
	History  *history.Store // nil when no DB path is configured
	Logger   *slog.Logger

	redisClient *redis.Client
}

// New builds an App from cfg. Missing provider credentials degrade to the
// no-op collaborators (every message then resolves to fallback) rather than
// failing startup; a misconfigured transcript store or unreachable Redis is
// a hard error because those were asked for explicitly.
func New(cfg config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}

	catalog := intent.LoadFile(cfg.IntentsPath, logger)

	var embedder embed.Embedder
	if cfg.Embedding.APIKey != "" {
		embedder = embed.NewOpenAIEmbedder(embed.OpenAIConfig{
			APIKey:  cfg.Embedding.APIKey,
			BaseURL: cfg.Embedding.BaseURL,
			Model:   cfg.Embedding.Model,
			Timeout: cfg.Embedding.Timeout,
		})
	} else {
		logger.Warn("app: no embedding API key configured, semantic matching disabled")
		embedder = embed.NoopEmbedder{}
	}

	var responder respond.Responder
	if cfg.Completion.APIKey != "" {
		responder = respond.NewOpenAIResponder(respond.OpenAIConfig{
			APIKey:  cfg.Completion.APIKey,
			BaseURL: cfg.Completion.BaseURL,
			Model:   cfg.Completion.Model,
			Timeout: cfg.Completion.Timeout,
		})
	} else {
		logger.Warn("app: no completion API key configured, replies use canned responses")
		responder = respond.NoopResponder{}
	}

	app := &App{Config: cfg, Catalog: catalog, Logger: logger}

	var store embed.Store
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := client.Ping(context.Background()).Err(); err != nil {
			return nil, fmt.Errorf("app: connect redis at %s: %w", cfg.RedisAddr, err)
		}
		app.redisClient = client
		store = embed.NewRedisStore(client)
		logger.Info("app: embedding cache backed by redis", "addr", cfg.RedisAddr)
	} else {
		store = embed.NewMemoryStore()
	}

	cache := embed.NewCache(store, embedder, logger)
	matcher := match.New(match.Config{
		Catalog:   catalog,
		Embedder:  embedder,
		Cache:     cache,
		Dimension: cfg.EmbeddingDim,
		Logger:    logger,
	})
	composer := respond.NewComposer(catalog, responder, logger)

	app.Pipeline = pipeline.New(pipeline.Config{
		Catalog:     catalog,
		Matcher:     matcher,
		Composer:    composer,
		Threshold:   cfg.Threshold,
		FallbackTag: cfg.FallbackTag,
		Logger:      logger,
	})

	if cfg.DBPath != "" {
		store, err := history.New(cfg.DBPath)
		if err != nil {
			app.Close()
			return nil, fmt.Errorf("app: open transcript store: %w", err)
		}
		app.History = store
		logger.Info("app: transcript store enabled", "path", cfg.DBPath)
	}

	return app, nil
}

// Close releases the App's resources.
func (a *App) Close() error {
	var firstErr error
	if a.History != nil {
		if err := a.History.Close(); err != nil {
			firstErr = err
		}
	}
	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
