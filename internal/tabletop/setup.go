package tabletop

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/dicetool/internal/config"
	"github.com/cory-johannsen/dicetool/internal/game/dice"
	"github.com/cory-johannsen/dicetool/internal/game/preset"
	"github.com/cory-johannsen/dicetool/internal/game/rolllog"
	"github.com/cory-johannsen/dicetool/internal/storage/memory"
	"github.com/cory-johannsen/dicetool/internal/storage/postgres"
	"github.com/cory-johannsen/dicetool/internal/storage/sqlite"
)

// OpenBackend opens the roll-log backend selected by cfg.Storage.
//
// Postcondition: On success the returned close function releases the
// backend and is safe to call once.
func OpenBackend(ctx context.Context, cfg config.Config, logger *zap.Logger) (rolllog.Backend, func(), error) {
	start := time.Now()
	switch cfg.Storage.Backend {
	case config.BackendMemory:
		logger.Warn("using in-memory roll log; rolls are lost on exit")
		return memory.NewBackend(), func() {}, nil

	case config.BackendSQLite:
		b, err := sqlite.Open(cfg.Storage.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("sqlite roll log opened",
			zap.String("path", cfg.Storage.SQLitePath),
			zap.Duration("elapsed", time.Since(start)),
		)
		return b, func() {
			if err := b.Close(); err != nil {
				logger.Warn("closing sqlite roll log", zap.Error(err))
			}
		}, nil

	case config.BackendPostgres:
		pool, err := postgres.NewPool(ctx, cfg.Database)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("database connected",
			zap.String("host", cfg.Database.Host),
			zap.Int("port", cfg.Database.Port),
			zap.String("database", cfg.Database.Name),
			zap.Duration("elapsed", time.Since(start)),
		)
		return postgres.NewLogRepository(pool.DB()), pool.Close, nil
	}
	return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
}

// NewFromConfig assembles a Service from cfg: presets, dice source, and the
// configured backend.
//
// Postcondition: On success the returned close function releases the backend.
func NewFromConfig(ctx context.Context, cfg config.Config, logger *zap.Logger) (*Service, func(), error) {
	presets, err := preset.Load(cfg.Presets.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("loading presets: %w", err)
	}
	src, err := dice.NewSource(cfg.Dice.Source, cfg.Dice.Seed)
	if err != nil {
		return nil, nil, err
	}
	backend, closeFn, err := OpenBackend(ctx, cfg, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("opening %s backend: %w", cfg.Storage.Backend, err)
	}

	store := rolllog.NewStore(backend, cfg.Storage.Key, logger)
	svc := NewService(
		dice.NewLoggedRoller(src, logger),
		store,
		presets,
		Options{
			TimestampLayout: cfg.Dice.TimestampLayout,
			MaxCount:        cfg.Dice.MaxCount,
			MaxSides:        cfg.Dice.MaxSides,
		},
		logger,
	)
	logger.Info("roll service ready",
		zap.String("backend", cfg.Storage.Backend),
		zap.String("key", cfg.Storage.Key),
		zap.String("source", cfg.Dice.Source),
		zap.Int("log_entries", store.Len(ctx)),
	)
	return svc, closeFn, nil
}
