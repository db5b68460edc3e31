package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	lifecycleservice "symposium/contexts/event-core/lifecycle-service"
	lifecyclepostgres "symposium/contexts/event-core/lifecycle-service/adapters/postgres"
	lifecycleworkers "symposium/contexts/event-core/lifecycle-service/application/workers"
	criteriaservice "symposium/contexts/evaluation/criteria-service"
	criteriapostgres "symposium/contexts/evaluation/criteria-service/adapters/postgres"
	scoringengine "symposium/contexts/evaluation/scoring-engine"
	scoringpostgres "symposium/contexts/evaluation/scoring-engine/adapters/postgres"
	"symposium/internal/platform/config"
	"symposium/internal/platform/db"
	"symposium/internal/platform/httpserver"
	"symposium/internal/platform/messaging"
)

// Package bootstrap is the composition root.
// Keep construction/wiring here so module code stays framework-agnostic.

type APIApp struct {
	server   *httpserver.Server
	postgres *db.Postgres
	logger   *slog.Logger
}

type WorkerApp struct {
	postgres     *db.Postgres
	relay        lifecycleworkers.NotificationRelay
	relayEnabled bool
	pollInterval time.Duration
	logger       *slog.Logger
}

func BuildAPI() (*APIApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "api")
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		return nil, errors.New("POSTGRES_DSN is required")
	}

	pg, err := db.Connect(cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}

	bus := messaging.NewBus(logger)

	lifecycleRepo := lifecyclepostgres.NewRepository(pg.DB, logger)
	lifecycleModule := lifecycleservice.NewModule(lifecycleservice.Dependencies{
		Events:     lifecycleRepo,
		History:    lifecycleRepo,
		Profiles:   lifecycleRepo,
		Graph:      lifecycleRepo,
		Outbox:     lifecycleRepo,
		Watermarks: lifecycleRepo,
		Publisher:  messaging.NotificationPublisher{Bus: bus},
		Clock:      lifecyclepostgres.SystemClock{},
		IDGen:      lifecyclepostgres.UUIDGenerator{},
		BatchSize:  cfg.NotificationBatchSize,
		Logger:     logger,
	})

	criteriaRepo := criteriapostgres.NewRepository(pg.DB, logger)
	criteriaModule := criteriaservice.NewModule(criteriaservice.Dependencies{
		Criteria: criteriaRepo,
		Events:   criteriaRepo,
		Clock:    criteriapostgres.SystemClock{},
		IDGen:    criteriapostgres.UUIDGenerator{},
		Logger:   logger,
	})

	scoringRepo := scoringpostgres.NewRepository(pg.DB, logger)
	scoringModule := scoringengine.NewModule(scoringengine.Dependencies{
		Ratings:        scoringRepo,
		Criteria:       scoringRepo,
		Participations: scoringRepo,
		Scores:         scoringRepo,
		Clock:          scoringpostgres.SystemClock{},
		IDGen:          scoringpostgres.UUIDGenerator{},
		Logger:         logger,
	})

	server := httpserver.New(lifecycleModule, criteriaModule, scoringModule, logger, normalizeAddr(cfg.HTTPPort))
	return &APIApp{
		server:   server,
		postgres: pg,
		logger:   logger,
	}, nil
}

func BuildWorker() (*WorkerApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "worker")
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		return nil, errors.New("POSTGRES_DSN is required")
	}

	pg, err := db.Connect(cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}

	bus := messaging.NewBus(logger)

	lifecycleRepo := lifecyclepostgres.NewRepository(pg.DB, logger)
	return &WorkerApp{
		postgres: pg,
		relay: lifecycleworkers.NotificationRelay{
			Outbox:    lifecycleRepo,
			Publisher: messaging.NotificationPublisher{Bus: bus},
			Clock:     lifecyclepostgres.SystemClock{},
			BatchSize: cfg.NotificationBatchSize,
			Logger:    logger,
		},
		relayEnabled: cfg.EnableNotificationRelay,
		pollInterval: 2 * time.Second,
		logger:       logger,
	}, nil
}

func (a *APIApp) Run(_ context.Context) error {
	if a.logger != nil {
		a.logger.Info("api app started",
			"event", "bootstrap_api_started",
			"module", "internal/app/bootstrap",
			"layer", "platform",
		)
	}
	return a.server.Start()
}

func (a *APIApp) Close() error {
	if a.postgres != nil {
		return a.postgres.Close()
	}
	return nil
}

func (w *WorkerApp) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	w.logger.Info("worker app started",
		"event", "bootstrap_worker_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
		"poll_interval", w.pollInterval.String(),
		"relay_enabled", w.relayEnabled,
	)

	for {
		if w.relayEnabled {
			if err := w.relay.RunOnce(ctx); err != nil {
				return err
			}
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func (w *WorkerApp) Close() error {
	if w.postgres != nil {
		return w.postgres.Close()
	}
	return nil
}

func normalizeAddr(port string) string {
	value := strings.TrimSpace(port)
	if value == "" {
		return ":8080"
	}
	if strings.HasPrefix(value, ":") {
		return value
	}
	return ":" + value
}
