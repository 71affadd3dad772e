// Package server exposes the chat pipeline over HTTP. It is thin I/O glue:
// request decoding, per-sender rate limiting, and transcript recording
// around the pipeline's single Match entry point.
package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/bdobrica/Kaiwa/common/trace"
	"github.com/bdobrica/Kaiwa/internal/kaiwa/history"
	"github.com/bdobrica/Kaiwa/internal/kaiwa/observability"
	"github.com/bdobrica/Kaiwa/internal/kaiwa/pipeline"
)

// Chatter is the pipeline surface the server depends on. The production
// implementation is *pipeline.Pipeline.
type Chatter interface {
	Match(ctx context.Context, message string) pipeline.Result
	AddTrainingExample(message, tag string) bool
}

// Recorder is the transcript surface the server depends on. The production
// implementation is *history.Store; a nil Recorder disables transcripts.
type Recorder interface {
	Record(ctx context.Context, e history.Exchange) error
	Recent(ctx context.Context, limit int) ([]history.Exchange, error)
}

// Config holds options for creating a Server.
type Config struct {
	// Chatter handles chat and training requests. Required.
	Chatter Chatter
	// Recorder persists exchanges. Nil disables the transcript endpoints.
	Recorder Recorder
	// Limiter rate-limits chat calls per sender. Nil disables limiting.
	Limiter *RateLimiter
	// Logger defaults to slog.Default when nil.
	Logger *slog.Logger
}

// Server handles the Kaiwa HTTP routes.
type Server struct {
	chatter  Chatter
	recorder Recorder
	limiter  *RateLimiter
	logger   *slog.Logger
}

// New creates a new Server.
func New(cfg Config) *Server {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Server{
		chatter:  cfg.Chatter,
		recorder: cfg.Recorder,
		limiter:  cfg.Limiter,
		logger:   cfg.Logger,
	}
}

// Handler returns the chi router with all routes registered.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	r.Post("/v1/chat", s.handleChat)
	r.Post("/v1/train", s.handleTrain)
	r.Get("/v1/history", s.handleHistory)

	return r
}

type chatRequest struct {
	Message string `json:"message"`
	Sender  string `json:"sender,omitempty"`
}

type trainRequest struct {
	Message string `json:"message"`
	Tag     string `json:"tag"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}
	if req.Message == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "message must not be empty"})
		return
	}

	sender := req.Sender
	if sender == "" {
		sender = r.RemoteAddr
	}
	if s.limiter != nil && !s.limiter.Allow(sender) {
		writeJSON(w, http.StatusTooManyRequests,
			errorResponse{Error: "rate limit exceeded, try again in a moment"})
		return
	}

	ctx, traceID := trace.Ensure(r.Context())
	result := s.chatter.Match(ctx, req.Message)

	if s.recorder != nil {
		// Transcript writes never fail the chat request.
		if err := s.recorder.Record(ctx, history.Exchange{
			TraceID:    traceID,
			Sender:     sender,
			Message:    req.Message,
			Tag:        result.Tag,
			Confidence: result.Confidence,
			Response:   result.Response,
		}); err != nil {
			observability.WithTrace(ctx, s.logger).Error("server: record exchange failed", "err", err)
		}
	}

	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleTrain(w http.ResponseWriter, r *http.Request) {
	var req trainRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}
	if req.Message == "" || req.Tag == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "message and tag must not be empty"})
		return
	}

	if !s.chatter.AddTrainingExample(req.Message, req.Tag) {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "unknown intent tag"})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.recorder == nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "transcript store is disabled"})
		return
	}

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "limit must be a non-negative integer"})
			return
		}
		limit = n
	}

	exchanges, err := s.recorder.Recent(r.Context(), limit)
	if err != nil {
		s.logger.Error("server: query history failed", "err", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to query history"})
		return
	}
	if exchanges == nil {
		exchanges = []history.Exchange{}
	}
	writeJSON(w, http.StatusOK, exchanges)
}

// requestLogger emits one structured log line per request with method, path,
// status, and latency.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info("server: request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
		)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
