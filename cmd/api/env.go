package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/deskops/support-desk/internal/config"
	"github.com/deskops/support-desk/internal/observability"
	"github.com/deskops/support-desk/internal/persistence"
	"github.com/deskops/support-desk/internal/repository"
	"github.com/deskops/support-desk/internal/repository/memory"
)

// commandEnv is the state shared by every command.
type commandEnv struct {
	cfg      *config.Config
	logger   *zap.Logger
	postgres *persistence.Postgres
	store    repository.Store
}

func bootstrap(ctx context.Context) (*commandEnv, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to init logger: %w", err)
	}

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		_ = logger.Sync()
		return nil, fmt.Errorf("failed to connect postgres: %w", err)
	}

	var store repository.Store
	if pool := pg.PoolHandle(); pool != nil {
		store = repository.NewPostgresStore(pool)
	} else {
		store = memory.NewStore()
	}

	return &commandEnv{cfg: cfg, logger: logger, postgres: pg, store: store}, nil
}

func (r *commandEnv) close() {
	r.postgres.Close()
	_ = r.logger.Sync()
}

// requirePostgres fails commands that would be meaningless against the
// process-local store.
func (r *commandEnv) requirePostgres(command string) error {
	if r.postgres.PoolHandle() == nil {
		return fmt.Errorf("%s needs POSTGRES_DSN; the in-memory store does not outlive the process", command)
	}
	return nil
}
