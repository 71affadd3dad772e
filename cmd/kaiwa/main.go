// Kaiwa is the semantic intent chatbot HTTP server.
//
// All configuration is loaded from environment variables (a .env file in the
// working directory is read first when present). The server loads the intent
// catalog, wires the embedding and completion providers, and serves the chat
// API.
//
// Optional environment variables:
//
//	KAIWA_LISTEN_ADDR     - HTTP listen address (default ":8080")
//	KAIWA_INTENTS_FILE    - path to the intents JSON document (default "intents.json")
//	KAIWA_DB_PATH         - SQLite transcript database; empty disables transcripts
//	KAIWA_REDIS_ADDR      - Redis address for a shared embedding cache; empty keeps it in-process
//	KAIWA_THRESHOLD       - minimum match confidence (default 0.6)
//	KAIWA_FALLBACK_TAG    - reserved fallback intent tag (default "fallback")
//	KAIWA_EMBEDDING_DIM   - provider embedding dimension (default 768)
//	KAIWA_RATE_LIMIT      - chat calls per sender per window (default 20)
//	KAIWA_RATE_WINDOW     - rate-limit window (default "1m")
//	KAIWA_CONFIG_FILE     - optional YAML file overriding the above
//	EMBEDDING_API_KEY     - embeddings API key; empty disables semantic matching
//	EMBEDDING_BASE_URL    - override embeddings API base URL (e.g. for Ollama)
//	EMBEDDING_MODEL       - embedding model name (default "text-embedding-3-small")
//	EMBEDDING_TIMEOUT     - embeddings call timeout (default "15s")
//	LLM_API_KEY           - completions API key; empty means canned replies only
//	LLM_BASE_URL          - override completions API base URL
//	LLM_MODEL             - chat model name (default "gpt-4o-mini")
//	LLM_TIMEOUT           - completion call timeout (default "20s")
//	LOG_LEVEL             - "debug", "info", "warn", "error" (default: "info")
//	LOG_FORMAT            - "text" or "json" (default: "text")
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/bdobrica/Kaiwa/common/version"
	"github.com/bdobrica/Kaiwa/internal/kaiwa/app"
	"github.com/bdobrica/Kaiwa/internal/kaiwa/config"
	"github.com/bdobrica/Kaiwa/internal/kaiwa/observability"
	"github.com/bdobrica/Kaiwa/internal/kaiwa/server"
)

func main() {
	godotenv.Load()

	cfg, err := config.FromEnv()
	if err != nil {
		slog.Error("invalid configuration", "err", err)
		os.Exit(1)
	}
	observability.Setup(cfg.LogLevel, cfg.LogFormat)
	logger := slog.Default()
	logger.Info("kaiwa starting", "version", version.Version, "addr", cfg.ListenAddr)

	a, err := app.New(cfg, logger)
	if err != nil {
		logger.Error("failed to initialize kaiwa", "err", err)
		os.Exit(1)
	}
	defer a.Close()

	var recorder server.Recorder
	if a.History != nil {
		recorder = a.History
	}
	srv := server.New(server.Config{
		Chatter:  a.Pipeline,
		Recorder: recorder,
		Limiter:  server.NewRateLimiter(cfg.RateLimit, cfg.RateWindow),
		Logger:   logger,
	})

	httpSrv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown failed", "err", err)
		}
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server exited with error", "err", err)
			os.Exit(1)
		}
	}
}
