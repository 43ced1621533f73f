package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/goliatone/go-formstate/internal/catalog"
	"github.com/goliatone/go-formstate/internal/config"
)

type seededStore interface {
	catalog.Store
	catalog.Seeder
}

// openStore opens the configured backend. The memory store is always
// seeded; sqlite only when seed is set so saved edits survive restarts.
func openStore(ctx context.Context, sc config.StoreConfig, seed bool) (catalog.Store, func(), error) {
	var (
		store   seededStore
		closeFn = func() {}
	)
	switch sc.Driver {
	case config.DriverSQLite:
		sqlStore, err := catalog.OpenSQLStore(ctx, sc.DSN)
		if err != nil {
			return nil, nil, err
		}
		store = sqlStore
		closeFn = func() {
			if err := sqlStore.Close(); err != nil {
				logger.Warn("close store", zap.Error(err))
			}
		}
	case config.DriverMemory:
		store = catalog.NewMemoryStore()
		seed = true
	default:
		return nil, nil, fmt.Errorf("%w: unknown store driver %q", config.ErrInvalid, sc.Driver)
	}

	if seed {
		fx, err := catalog.LoadFixturesFile(sc.Fixtures)
		if err != nil {
			closeFn()
			return nil, nil, err
		}
		if err := fx.Seed(ctx, store); err != nil {
			closeFn()
			return nil, nil, fmt.Errorf("seed store: %w", err)
		}
		logger.Info("seeded store",
			zap.String("driver", sc.Driver),
			zap.Int("products", len(fx.Products)),
			zap.Int("collections", len(fx.Collections)),
			zap.Int("categories", len(fx.Categories)),
		)
	}
	return store, closeFn, nil
}
