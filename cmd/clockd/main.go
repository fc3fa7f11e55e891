package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/clockface/internal/adapter/cache"
	httpadapter "github.com/couchcryptid/clockface/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/clockface/internal/adapter/kafka"
	"github.com/couchcryptid/clockface/internal/adapter/sqlite"
	"github.com/couchcryptid/clockface/internal/adapter/ws"
	"github.com/couchcryptid/clockface/internal/config"
	"github.com/couchcryptid/clockface/internal/domain"
	"github.com/couchcryptid/clockface/internal/observability"
	"github.com/couchcryptid/clockface/internal/presentation"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	locales, err := domain.LoadLocales()
	if err != nil {
		logger.Error("failed to load locale table", "error", err)
		os.Exit(1)
	}

	// CLOCK_LOCALE wins over the host locale environment.
	localeName := cfg.Locale
	if localeName == "" {
		localeName = domain.DetectHostLocale()
	}
	locale, matched := locales.Match(localeName)
	if !matched {
		logger.Warn("locale not supported, using fallback", "requested", localeName, "fallback", locale.Tag)
	}
	default24Hour := locales.DefaultUse24Hour(localeName)

	policy, err := domain.ParseFormatPolicy(cfg.TimeFormat)
	if err != nil {
		logger.Error("invalid time format", "error", err)
		os.Exit(1)
	}
	formatter := domain.NewFormatter(locale, domain.WithPolicy(policy))
	logger.Info("clock formatting",
		"locale", locale.Tag,
		"policy", policy,
		"default_24_hour", default24Hour,
	)

	layouter, err := cache.NewCachedLayouter(domain.DialGeometry{}, cfg.LayoutCacheSize, cache.DefaultIdleTTL, metrics)
	if err != nil {
		logger.Error("failed to create layout cache", "error", err)
		os.Exit(1)
	}

	store, err := sqlite.Open(cfg.PrefsDBPath)
	if err != nil {
		logger.Error("failed to open preference store", "error", err, "path", cfg.PrefsDBPath)
		os.Exit(1)
	}

	sessions := ws.NewHandler(ws.Config{
		Formatter:     formatter,
		Layouter:      layouter,
		Store:         store,
		PrefsKey:      cfg.PrefsKey,
		Default24Hour: default24Hour,
		MessageRate:   cfg.WSMessageRate,
		MessageBurst:  cfg.WSMessageBurst,
		Logger:        logger,
		Metrics:       metrics,
	})

	srv := httpadapter.NewServer(cfg.HTTPAddr, httpadapter.Deps{
		Formatter:     formatter,
		Layouter:      layouter,
		Store:         store,
		Ready:         store,
		Sessions:      sessions,
		PrefsKey:      cfg.PrefsKey,
		Default24Hour: default24Hour,
		Logger:        logger,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start the Kafka broadcast (feature-flagged via KAFKA_ENABLED).
	var publisher *kafkaadapter.Publisher
	broadcastDone := make(chan struct{})
	if cfg.KafkaEnabled {
		publisher = kafkaadapter.NewPublisher(cfg, locale.Tag, logger, metrics)
		broadcastLogger := logger.With("session_id", "broadcast")
		presenter := presentation.NewPresenter(presentation.Deps{
			Formatter:     formatter,
			Layouter:      layouter,
			Renderer:      publisher,
			Default24Hour: default24Hour,
			Logger:        broadcastLogger,
			Metrics:       metrics,
		})
		session := presentation.NewSession(presenter, clockwork.NewRealClock(), broadcastLogger, metrics)
		logger.Info("kafka broadcast enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)

		go func() {
			defer close(broadcastDone)
			if err := session.Run(ctx, presentation.MountOptions{}, nil); err != nil {
				logger.Error("broadcast session error", "error", err)
			}
		}()
	} else {
		close(broadcastDone)
		logger.Info("kafka broadcast disabled")
	}

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if err := sessions.Shutdown(shutdownCtx); err != nil {
		logger.Error("websocket sessions shutdown error", "error", err)
	}
	<-broadcastDone
	if publisher != nil {
		if err := publisher.Close(); err != nil {
			logger.Error("kafka publisher close error", "error", err)
		}
	}
	if err := store.Close(); err != nil {
		logger.Error("preference store close error", "error", err)
	}
	if err := layouter.Close(); err != nil {
		logger.Error("layout cache close error", "error", err)
	}

	logger.Info("shutdown complete")
}
