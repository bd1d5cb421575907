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

	"github.com/asksql/asksql/internal/api"
	"github.com/asksql/asksql/internal/auth"
	"github.com/asksql/asksql/internal/chart"
	"github.com/asksql/asksql/internal/config"
	"github.com/asksql/asksql/internal/nl2sql"
	"github.com/asksql/asksql/internal/observability"
	"github.com/asksql/asksql/internal/provision"
	sqliteengine "github.com/asksql/asksql/internal/query/sqlite"
	"github.com/asksql/asksql/internal/schema"
)

func main() {
	// A missing .env file is fine; the environment wins either way.
	_ = godotenv.Load()

	cfg, err := config.LoadFromEnv("asksql-api")
	if err != nil {
		slog.Error("failed to load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg, os.Stdout)

	if cfg.Database.AutoDownload {
		downloadCtx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		if err := provision.Ensure(downloadCtx, http.DefaultClient, cfg.Database.Path, cfg.Database.DownloadURL); err != nil {
			logger.Warn("database download failed; continuing with schema placeholder",
				slog.String("path", cfg.Database.Path),
				slog.Any("error", err),
			)
		}
		cancel()
	}

	var translator nl2sql.Translator
	if cfg.AI.TranslateEnabled {
		switch cfg.AI.Provider {
		case config.ProviderGemini:
			gemini, err := nl2sql.NewGeminiTranslator(context.Background(), nl2sql.GeminiConfig{
				APIKey:      cfg.AI.APIKey,
				Model:       cfg.AI.Model,
				Temperature: cfg.AI.Temperature,
				MaxTokens:   cfg.AI.MaxTokens,
			})
			if err != nil {
				logger.Error("failed to initialize gemini translator", slog.Any("error", err))
				os.Exit(1)
			}
			defer func() { _ = gemini.Close() }()
			translator = gemini
		default:
			translator, err = nl2sql.NewOpenAITranslator(nl2sql.OpenAIConfig{
				BaseURL:     cfg.AI.BaseURL,
				APIKey:      cfg.AI.APIKey,
				Model:       cfg.AI.Model,
				Temperature: cfg.AI.Temperature,
				MaxTokens:   cfg.AI.MaxTokens,
				Timeout:     cfg.AI.Timeout,
			})
			if err != nil {
				logger.Error("failed to initialize openai translator", slog.Any("error", err))
				os.Exit(1)
			}
		}
	}

	deps := api.Dependencies{
		Logger:     logger,
		Translator: translator,
		Engine:     sqliteengine.NewEngine(cfg.Database.Path),
		Schema:     schema.NewIntrospector(cfg.Database.Path, logger),
		Renderer: chart.NewRenderer(chart.Config{
			Width:           cfg.Chart.Width,
			Height:          cfg.Chart.Height,
			TopN:            cfg.Chart.TopN,
			PieSliceLimit:   cfg.Chart.PieSliceLimit,
			PieOtherMinFrac: cfg.Chart.PieOtherMinFrac,
		}),
		ChartEnabled: cfg.Chart.Enabled,
		RowLimit:     cfg.Database.RowLimit,
		Readiness: api.CombineReadinessChecks(
			api.CheckDatabasePath(cfg),
			api.CheckTranslatorConfig(cfg),
		),
		DependencyTimeout: time.Second,
	}
	if cfg.Auth.Required {
		validator, err := auth.NewStaticAPIKeyValidator(cfg.Auth.StaticKeys)
		if err != nil {
			logger.Error("failed to parse static auth keys", slog.Any("error", err))
			os.Exit(1)
		}
		deps.AuthMiddleware = auth.Middleware(logger, validator)
	}

	handler := api.NewHandler(cfg, deps)
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
