package inventory_test

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/memory"
)

const (
	itemX = "item-x"
	itemY = "item-y"
	locA  = "loc-a"
	locB  = "loc-b"
	locC  = "loc-c"
	actor = "user-1"
)

type ledger struct {
	store *memory.Store
	exec  *inventory.MutationExecutor
	rev   *inventory.ReversalEngine
	query *inventory.QueryUseCase
}

// newLedger arma ejecutor, motor de reversión y consultas sobre un store en memoria
// con dos ítems y tres ubicaciones.
func newLedger(t *testing.T) *ledger {
	t.Helper()
	ctx := context.Background()
	store := memory.New()
	now := time.Now().UTC()
	for _, it := range []*entity.Item{
		{ID: itemX, SKU: "SKU-X", Name: "X", CreatedAt: now, UpdatedAt: now},
		{ID: itemY, SKU: "SKU-Y", Name: "Y", CreatedAt: now, UpdatedAt: now},
	} {
		require.NoError(t, store.Items().Create(ctx, it))
	}
	for _, l := range []*entity.Location{
		{ID: locA, Label: "A-01-01", Aisle: "A", Bay: "01", Height: "01", Type: entity.LocationTypeStandard, CreatedAt: now},
		{ID: locB, Label: "B-01-01", Aisle: "B", Bay: "01", Height: "01", Type: entity.LocationTypeStandard, CreatedAt: now},
		{ID: locC, Label: "C-01-01", Aisle: "C", Bay: "01", Height: "01", Type: entity.LocationTypeBulk, CreatedAt: now},
	} {
		require.NoError(t, store.Locations().Create(ctx, l))
	}

	log := zerolog.Nop()
	return &ledger{
		store: store,
		exec:  inventory.NewMutationExecutor(store, store.Items(), store.Locations(), log, nil),
		rev:   inventory.NewReversalEngine(store, log, nil),
		query: inventory.NewQueryUseCase(store.TransactionRepository(), store.StockRepository(), store.Items(), store.Locations()),
	}
}

func (l *ledger) qty(t *testing.T, item, loc string) int64 {
	t.Helper()
	q, err := l.query.GetQuantity(context.Background(), item, loc)
	require.NoError(t, err)
	return q
}

func (l *ledger) seed(t *testing.T, item, loc string, qty int64) *entity.Transaction {
	t.Helper()
	tx, err := l.exec.ApplyAdd(context.Background(), actor, item, loc, qty)
	require.NoError(t, err)
	return tx
}
