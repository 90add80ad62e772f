// Package clienv opens the runtime shared by portalctl commands.
package clienv

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/ops-portal/internal/config"
	"github.com/spec-kit/ops-portal/internal/observability"
	"github.com/spec-kit/ops-portal/internal/persistence"
)

// Env carries the loaded configuration and open connections.
type Env struct {
	Config   *config.Config
	Logger   *zap.Logger
	Postgres *persistence.Postgres
}

// Open loads configuration, builds the logger and connects to postgres.
// Commands that write data set requireDB so they refuse to run against the
// in-memory store.
func Open(ctx context.Context, requireDB bool) (*Env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	if requireDB && cfg.Postgres.DSN == "" {
		return nil, fmt.Errorf("POSTGRES_DSN is required for this command")
	}

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to connect postgres: %w", err)
	}

	return &Env{Config: cfg, Logger: logger, Postgres: pg}, nil
}

// Close releases the connections held by env.
func (e *Env) Close() {
	if e == nil {
		return
	}
	e.Postgres.Close()
	_ = e.Logger.Sync()
}
