package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rentbot/backend/internal/application/rentbot"
	"github.com/rentbot/backend/internal/infrastructure/cache"
	"github.com/rentbot/backend/internal/infrastructure/config"
	"github.com/rentbot/backend/internal/infrastructure/extraction"
	"github.com/rentbot/backend/internal/infrastructure/logger"
	"github.com/rentbot/backend/internal/infrastructure/migration"
	"github.com/rentbot/backend/internal/infrastructure/persistence"
	"github.com/rentbot/backend/internal/infrastructure/printing"
	"github.com/rentbot/backend/internal/infrastructure/storage"
	"github.com/rentbot/backend/internal/infrastructure/telemetry"
	"github.com/rentbot/backend/internal/infrastructure/whatsapp"
	"github.com/rentbot/backend/internal/interfaces/http/handler"
	"github.com/rentbot/backend/internal/interfaces/http/router"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const shutdownTimeout = 15 * time.Second

func runCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Connect to WhatsApp and start handling landlord messages",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig()
			if err != nil {
				return err
			}
			defer func() {
				_ = logger.Sync(log)
			}()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return run(ctx, cfg, log)
		},
	}
}

func run(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	log.Info("Starting rent bot",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("version", Version),
	)

	tracer, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    Version,
		Environment:       cfg.App.Env,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		return err
	}
	defer shutdownWith(log, "tracer", tracer.Shutdown)

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level),
		logger.WithSlowThreshold(cfg.Database.SlowQueryThreshold))
	db, err := persistence.Open(ctx, &cfg.Database, persistence.WithLogger(gormLog))
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	if cfg.Database.AutoMigrate {
		if err := migrateUp(ctx, cfg.Database.DSN(), log); err != nil {
			return err
		}
	}

	repos := db.Repositories()

	extractor, err := extraction.NewGroqExtractor(extraction.Config{
		APIKey:      cfg.LLM.APIKey,
		BaseURL:     cfg.LLM.BaseURL,
		Model:       cfg.LLM.Model,
		Temperature: cfg.LLM.Temperature,
		MaxTokens:   cfg.LLM.MaxTokens,
		Timeout:     cfg.LLM.Timeout,
		Currency:    cfg.Bot.Currency,
		Logger:      log,
	})
	if err != nil {
		return err
	}

	renderer := printing.NewChromedpRenderer(&printing.ChromedpConfig{
		DefaultTimeout: cfg.Renderer.Timeout,
		RemoteURL:      cfg.Renderer.RemoteURL,
		NoSandbox:      cfg.Renderer.NoSandbox,
		Logger:         log.Named("renderer"),
	})
	defer renderer.Close()

	dedupe, err := cache.NewDedupeStoreFactory(cfg.Dedupe, cfg.Redis).WithLogger(log).Create(ctx)
	if err != nil {
		return err
	}
	if dedupe != nil {
		defer dedupe.Close()
	}

	archive, err := storage.NewReceiptArchive(ctx, &cfg.Storage, log)
	if err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	registry.MustRegister(db.Collector(cfg.App.Name))
	metrics := telemetry.NewBotMetrics(registry)

	wa, err := whatsapp.New(ctx, cfg.Channel, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := wa.Close(); err != nil {
			log.Error("Error closing WhatsApp session store", zap.Error(err))
		}
	}()

	location := cfg.Bot.Location()
	composer := rentbot.NewReceiptComposer(rentbot.ReceiptComposerConfig{
		Payments: repos.Payments,
		Renderer: renderer,
		Channel:  wa,
		Archive:  archive,
		TempDir:  cfg.Renderer.TempDir,
		Currency: cfg.Bot.Currency,
		Location: location,
		Logger:   log.Named("receipts"),
	})

	svc := rentbot.NewService(rentbot.ServiceConfig{
		Landlords:   repos.Landlords,
		Tenants:     repos.Tenants,
		Payments:    repos.Payments,
		Extractor:   extractor,
		Receipts:    composer,
		Channel:     wa,
		Dedupe:      dedupe,
		DedupeTTL:   cfg.Dedupe.TTL,
		TenantMatch: rentbot.TenantMatchPolicy(cfg.Bot.TenantMatch),
		Currency:    cfg.Bot.Currency,
		Location:    location,
		Metrics:     metrics,
		Logger:      log,
	})

	if cfg.HTTP.Enabled {
		health := handler.NewHealthHandler(cfg.App.Name, Version, db, wa).
			WithStats(func() (any, error) { return db.Stats(), nil })
		server := router.NewServer(cfg.HTTP, router.NewEngine(health, registry, log.Named("http")), log)
		server.Start()
		defer shutdownWith(log, "ops HTTP server", server.Shutdown)
	}

	if err := wa.Start(ctx, svc); err != nil {
		return err
	}
	log.Info("Bot is running; press Ctrl+C to stop")

	select {
	case <-ctx.Done():
	case <-wa.Done():
	}
	log.Info("Shutting down")
	if wa.LoggedOut() {
		return whatsapp.ErrLoggedOut
	}
	return nil
}

func migrateUp(ctx context.Context, dsn string, log *zap.Logger) error {
	m, err := migration.NewFromURL(dsn, log)
	if err != nil {
		return fmt.Errorf("failed to initialize migrator: %w", err)
	}
	defer m.Close()
	return m.Up(ctx)
}

func shutdownWith(log *zap.Logger, name string, fn func(context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := fn(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("Shutdown failed", zap.String("component", name), zap.Error(err))
	}
}
