// Package server exposes the score engine and keyword store over a JSON HTTP
// API.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/iwvelando/market-score/internal/engine"
	"github.com/iwvelando/market-score/internal/keyword"
	"github.com/iwvelando/market-score/internal/scoreconfig"
	"github.com/iwvelando/market-score/internal/store"
	"github.com/iwvelando/market-score/pkg/constants"
	"go.uber.org/zap"
)

// Repository is the persistence the handler needs.
type Repository interface {
	Save(ctx context.Context, rec keyword.Record) error
	Get(ctx context.Context, id string) (keyword.Record, error)
	List(ctx context.Context) ([]keyword.Record, error)
	Delete(ctx context.Context, id string) error
	SaveOverride(ctx context.Context, marketID string, override scoreconfig.PartialScoreConfig) error
	DeleteOverride(ctx context.Context, marketID string) error
	LoadOverrides(ctx context.Context) (map[string]scoreconfig.PartialScoreConfig, []string, error)
}

// Options tunes the handler. Zero values select defaults.
type Options struct {
	Version        string
	MaxBodySize    int64
	RequestTimeout time.Duration
	AllowedOrigins []string
	// BaseOverrides come from the configuration file. Overrides stored
	// through the API take precedence per market.
	BaseOverrides map[string]scoreconfig.PartialScoreConfig
}

type handler struct {
	logger      *zap.Logger
	repo        Repository
	maxBodySize int64
	version     string
	base        map[string]scoreconfig.PartialScoreConfig

	mu       sync.RWMutex
	engine   *engine.Orchestrator
	resolver *scoreconfig.Resolver
	warnings []string

	locks *keyLocks
}

// NewHandler constructs the HTTP handler that serves the keyword API.
func NewHandler(ctx context.Context, logger *zap.Logger, repo Repository, opts Options) (http.Handler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if repo == nil {
		return nil, errors.New("server requires a repository")
	}

	if opts.MaxBodySize <= 0 {
		opts.MaxBodySize = constants.DefaultMaxBodySizeBytes
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = constants.DefaultRequestTimeout
	}
	if len(opts.AllowedOrigins) == 0 {
		opts.AllowedOrigins = []string{"*"}
	}

	trimmedVersion := strings.TrimSpace(opts.Version)
	if trimmedVersion == "" {
		trimmedVersion = "dev"
	}

	h := &handler{
		logger:      logger,
		repo:        repo,
		maxBodySize: opts.MaxBodySize,
		version:     trimmedVersion,
		base:        opts.BaseOverrides,
		locks:       newKeyLocks(),
	}

	stored, warnings, err := repo.LoadOverrides(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load stored overrides: %w", err)
	}
	h.rebuild(stored, warnings)

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(h.loggingMiddleware)
	r.Use(middleware.Timeout(opts.RequestTimeout))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Get("/version", h.handleVersion)

		r.Get("/markets", h.handleListMarkets)
		r.Get("/markets/{market}/config", h.handleMarketConfig)
		r.Put("/markets/{market}/override", h.handlePutOverride)
		r.Delete("/markets/{market}/override", h.handleDeleteOverride)

		r.Post("/preview", h.handlePreview)

		r.Get("/keywords", h.handleListKeywords)
		r.Post("/keywords", h.handleCreateKeyword)
		r.Get("/keywords/{id}", h.handleGetKeyword)
		r.Patch("/keywords/{id}", h.handleUpdateKeyword)
		r.Delete("/keywords/{id}", h.handleDeleteKeyword)
		r.Post("/keywords/{id}/status/automatic", h.handleResetStatus)
	})

	return r, nil
}

// rebuild swaps in a resolver over the file overrides layered with the stored
// ones.
func (h *handler) rebuild(stored map[string]scoreconfig.PartialScoreConfig, warnings []string) {
	merged := make(map[string]scoreconfig.PartialScoreConfig, len(h.base)+len(stored))
	for id, override := range h.base {
		merged[id] = override
	}
	for id, override := range stored {
		merged[id] = override
	}

	resolver := scoreconfig.NewResolver(nil, merged)

	h.mu.Lock()
	h.resolver = resolver
	h.engine = engine.New(h.logger, resolver)
	h.warnings = warnings
	h.mu.Unlock()
}

func (h *handler) current() (*engine.Orchestrator, *scoreconfig.Resolver) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.engine, h.resolver
}

func (h *handler) handleVersion(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{
		"version": h.version,
	})
}

func (h *handler) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		h.logger.Debug("HTTP request",
			zap.String("op", "server.request"),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("duration", time.Since(start)),
			zap.String("requestId", middleware.GetReqID(r.Context())),
		)
	})
}

// decodeBody decodes a JSON request body into v, enforcing the body limit.
func (h *handler) decodeBody(w http.ResponseWriter, r *http.Request, v any, op string) bool {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodySize)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.respondErrorWithOp(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("request body exceeds limit of %d bytes", h.maxBodySize), op)
			return false
		}
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err), op)
		return false
	}
	return true
}

func (h *handler) respondStoreError(w http.ResponseWriter, err error, op string) {
	if errors.Is(err, store.ErrNotFound) {
		h.respondErrorWithOp(w, http.StatusNotFound, err.Error(), op)
		return
	}
	h.respondErrorWithOp(w, http.StatusInternalServerError, err.Error(), op)
}

func (h *handler) respondErrorWithOp(w http.ResponseWriter, status int, msg string, op string) {
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed",
			zap.String("op", op),
			zap.Int("status", status),
			zap.String("error", msg),
		)
	} else {
		h.logger.Debug("request rejected",
			zap.String("op", op),
			zap.Int("status", status),
			zap.String("error", msg),
		)
	}

	h.writeJSON(w, status, map[string]string{"error": msg})
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to write JSON response", zap.Error(err))
	}
}
