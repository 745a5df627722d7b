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

	"github.com/schemachat/schemachat/internal/api"
	"github.com/schemachat/schemachat/internal/chat"
	"github.com/schemachat/schemachat/internal/config"
	"github.com/schemachat/schemachat/internal/llm"
	"github.com/schemachat/schemachat/internal/metadata"
	"github.com/schemachat/schemachat/internal/observability"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadFromEnv("schemachat-api")
	if err != nil {
		slog.Error("failed to load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg, os.Stdout)

	db, err := metadata.Open(context.Background(), metadata.DBConfig{
		DSN:             cfg.Metadata.DSN,
		MaxOpenConns:    cfg.Metadata.MaxOpenConns,
		MaxIdleConns:    cfg.Metadata.MaxIdleConns,
		ConnMaxIdleTime: cfg.Metadata.ConnMaxIdleTime,
		ConnMaxLifetime: cfg.Metadata.ConnMaxLifetime,
	})
	if err != nil {
		if db == nil {
			logger.Error("failed to open clickhouse", slog.Any("error", err))
			os.Exit(1)
		}
		// Run degraded: every tool dispatch reports the catalog outage
		// with remediation steps until ClickHouse comes back.
		logger.Warn("clickhouse is unreachable, serving degraded responses", slog.Any("error", err))
	}
	if db != nil {
		defer func() { _ = db.Close() }()
	}

	dispatcher := chat.NewDispatcher(db, cfg.Metadata.Database, cfg.Metadata.AllowedTables, logger)

	var completer llm.Completer
	if cfg.LLM.Enabled {
		client, err := llm.NewClient(llm.ClientConfig{
			BaseURL: cfg.LLM.BaseURL,
			APIKey:  cfg.LLM.APIKey,
			Model:   cfg.LLM.Model,
			Timeout: cfg.LLM.Timeout,
		})
		if err != nil {
			logger.Error("failed to initialize llm client", slog.Any("error", err))
			os.Exit(1)
		}
		completer = client
	}

	orchestrator := chat.NewOrchestrator(dispatcher, completer, chat.OrchestratorConfig{
		MaxTokens:   cfg.LLM.MaxTokens,
		Temperature: cfg.LLM.Temperature,
	}, logger)

	handler := api.NewHandler(cfg, api.Dependencies{
		Logger: logger,
		Chat:   orchestrator,
		Tools:  dispatcher,
		Readiness: api.CombineReadinessChecks(
			api.CheckMetadataDSN(cfg),
			api.CheckMetadata(db),
		),
		DependencyTimeout: time.Second,
	})

	server := &http.Server{
		Addr:         cfg.HTTP.Address,
		Handler:      handler,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("starting api server", slog.String("addr", cfg.HTTP.Address))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("api server failed", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	logger.Info("shutting down api server")
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", slog.Any("error", err))
		_ = server.Close()
		os.Exit(1)
	}
}
