package main

import (
	"context"
	"fmt"

	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/memory"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/postgres"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/sqlite"
	"github.com/jhoicas/stock-ledger/pkg/config"
)

// backend persistencia elegida por DB_DRIVER.
type backend struct {
	txRunner  inventory.TxRunner
	stock     repository.StockRepository
	txs       repository.TransactionRepository
	items     repository.ItemRepository
	locations repository.LocationRepository
	ping      func(context.Context) error
	close     func()
}

func openBackend(ctx context.Context, cfg config.DBConfig) (*backend, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		pool, err := postgres.NewPool(ctx, cfg)
		if err != nil {
			return nil, err
		}
		if err := postgres.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, err
		}
		return &backend{
			txRunner:  postgres.NewTxRunner(pool),
			stock:     postgres.NewStockRepository(pool),
			txs:       postgres.NewTransactionRepository(pool),
			items:     postgres.NewItemRepository(pool),
			locations: postgres.NewLocationRepository(pool),
			ping:      pool.Ping,
			close:     pool.Close,
		}, nil

	case config.DriverSQLite:
		store, err := sqlite.New(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return &backend{
			txRunner:  store,
			stock:     store.StockRepository(),
			txs:       store.TransactionRepository(),
			items:     store.Items(),
			locations: store.Locations(),
			ping:      store.Ping,
			close:     func() { _ = store.Close() },
		}, nil

	case config.DriverMemory:
		store := memory.New()
		return &backend{
			txRunner:  store,
			stock:     store.StockRepository(),
			txs:       store.TransactionRepository(),
			items:     store.Items(),
			locations: store.Locations(),
			ping:      func(context.Context) error { return nil },
			close:     func() {},
		}, nil

	default:
		return nil, fmt.Errorf("DB_DRIVER desconocido: %q", cfg.Driver)
	}
}
