// Package di provides dependency injection wiring and initialization.
package di

import (
	"fmt"

	"github.com/aristath/bankdash/internal/cache"
	"github.com/aristath/bankdash/internal/clients/bankapi"
	"github.com/aristath/bankdash/internal/config"
	"github.com/aristath/bankdash/internal/dashboard"
	"github.com/aristath/bankdash/internal/events"
	"github.com/aristath/bankdash/internal/normalizer"
	"github.com/aristath/bankdash/internal/scheduler"
	"github.com/aristath/bankdash/internal/server"
	"github.com/rs/zerolog"
)

// Wire initializes all dependencies and returns a fully configured container
// Order of operations:
// 1. Banking API client and normalizer
// 2. Session registry
// 3. Scheduler jobs
func Wire(cfg *config.Config, log zerolog.Logger) (*Container, *JobInstances, error) {
	if cfg == nil {
		return nil, nil, fmt.Errorf("config cannot be nil")
	}

	container := &Container{
		Config:     cfg,
		Client:     bankapi.NewClient(cfg.API.BaseURL, cfg.API.Timeout, log),
		Normalizer: normalizer.New(cfg.API.ProfileConcurrency, log),
		Scheduler:  scheduler.New(log),
	}

	container.Sessions = server.NewSessionRegistry(func() *dashboard.Orchestrator {
		return NewOrchestrator(container, events.NewBus(), log)
	}, server.SessionOptions{
		Rate:  cfg.Session.Rate,
		Burst: cfg.Session.Burst,
	}, log)

	jobs, err := RegisterJobs(container, log)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to register jobs: %w", err)
	}

	log.Info().Str("api", cfg.API.BaseURL).Msg("Dependency injection wiring completed successfully")

	return container, jobs, nil
}

// NewOrchestrator builds an orchestrator with its own cache registry, emitting on bus.
func NewOrchestrator(container *Container, bus *events.Bus, log zerolog.Logger) *dashboard.Orchestrator {
	return dashboard.New(
		container.Client,
		cache.NewRegistry(container.Config.API.CacheTTL),
		container.Normalizer,
		events.NewManager(bus, log),
		log,
		dashboard.Options{PageSize: container.Config.API.PageSize},
	)
}
