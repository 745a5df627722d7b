package api

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/schemachat/schemachat/internal/chat"
	"github.com/schemachat/schemachat/internal/config"
	"github.com/schemachat/schemachat/internal/observability"
)

type ReadinessCheck func(ctx context.Context) error

// ChatService answers one conversational turn.
type ChatService interface {
	Converse(ctx context.Context, message string) chat.Reply
}

// ToolRunner executes a named catalog tool directly, without the
// conversational wrapper.
type ToolRunner interface {
	Dispatch(ctx context.Context, toolName string, args map[string]any) chat.ToolResult
}

type Dependencies struct {
	Logger            *slog.Logger
	Readiness         ReadinessCheck
	DependencyTimeout time.Duration
	Chat              ChatService
	Tools             ToolRunner
}

func NewHandler(cfg config.Config, deps Dependencies) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /v1/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "service": cfg.Service.Name})
	})

	mux.HandleFunc("GET /v1/ready", func(w http.ResponseWriter, r *http.Request) {
		if deps.Readiness == nil {
			writeJSON(w, http.StatusOK, map[string]any{"status": "ready"})
			return
		}
		timeout := deps.DependencyTimeout
		if timeout <= 0 {
			timeout = 2 * time.Second
		}
		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()
		if err := deps.Readiness(ctx); err != nil {
			writeError(r.Context(), w, http.StatusServiceUnavailable, "NOT_READY", err.Error(), true, nil)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"status": "ready"})
	})

	mux.Handle("GET /v1/metrics", promhttp.Handler())

	mux.HandleFunc("POST /v1/chat", func(w http.ResponseWriter, r *http.Request) {
		handleChat(deps, w, r)
	})
	mux.HandleFunc("GET /v1/tools", func(w http.ResponseWriter, r *http.Request) {
		handleListTools(w, r)
	})
	mux.HandleFunc("POST /v1/tools/run", func(w http.ResponseWriter, r *http.Request) {
		handleToolRun(deps, w, r)
	})

	return observability.Instrument(deps.Logger)(mux)
}

// CheckMetadata reports readiness by pinging the catalog connection pool.
func CheckMetadata(db *sql.DB) ReadinessCheck {
	return func(ctx context.Context) error {
		if db == nil {
			return errors.New("metadata database is not configured")
		}
		return db.PingContext(ctx)
	}
}

func CheckMetadataDSN(cfg config.Config) ReadinessCheck {
	return func(_ context.Context) error {
		if cfg.Metadata.DSN == "" {
			return errors.New("metadata dsn is not configured")
		}
		return nil
	}
}

func CombineReadinessChecks(checks ...ReadinessCheck) ReadinessCheck {
	filtered := make([]ReadinessCheck, 0, len(checks))
	for _, check := range checks {
		if check != nil {
			filtered = append(filtered, check)
		}
	}
	return func(ctx context.Context) error {
		for _, check := range filtered {
			if err := check(ctx); err != nil {
				return err
			}
		}
		return nil
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(ctx context.Context, w http.ResponseWriter, status int, code, message string, retryable bool, extra map[string]any) {
	writeJSON(w, status, map[string]any{
		"error_code": code,
		"message":    message,
		"retryable":  retryable,
		"context":    extra,
		"trace_id":   observability.TraceIDFromContext(ctx),
	})
}
