package postgres_test

import (
	"context"
	"errors"
	"math"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/postgres"
	"github.com/jhoicas/stock-ledger/pkg/config"
)

// getPool conecta a TEST_DATABASE_URL; sin ella el test se omite.
func getPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL no definida")
	}
	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, config.DBConfig{DatabaseURL: url, MaxConns: 10})
	if err != nil {
		t.Skipf("PostgreSQL no disponible: %v", err)
	}
	t.Cleanup(pool.Close)
	require.NoError(t, postgres.Migrate(ctx, pool))
	return pool
}

type pgFixture struct {
	exec   *inventory.MutationExecutor
	rev    *inventory.ReversalEngine
	query  *inventory.QueryUseCase
	itemID string
	locA   string
	locB   string
}

// newFixture crea un ítem y dos ubicaciones con IDs únicos para no chocar con otros tests.
func newFixture(t *testing.T, pool *pgxpool.Pool) *pgFixture {
	t.Helper()
	ctx := context.Background()
	now := time.Now().UTC()
	suffix := uuid.New().String()[:8]

	items := postgres.NewItemRepository(pool)
	locations := postgres.NewLocationRepository(pool)
	f := &pgFixture{itemID: uuid.New().String(), locA: uuid.New().String(), locB: uuid.New().String()}
	require.NoError(t, items.Create(ctx, &entity.Item{
		ID: f.itemID, CompanyID: "test", SKU: "SKU-" + suffix, Name: "Test", CreatedAt: now, UpdatedAt: now,
	}))
	for _, id := range []string{f.locA, f.locB} {
		label := "T" + suffix + "-" + id[:4] + "-01"
		require.NoError(t, locations.Create(ctx, &entity.Location{
			ID: id, Label: label, Aisle: "T" + suffix, Bay: id[:4], Height: "01", Type: entity.LocationTypeStandard, CreatedAt: now,
		}))
	}

	runner := postgres.NewTxRunner(pool)
	log := zerolog.Nop()
	f.exec = inventory.NewMutationExecutor(runner, items, locations, log, nil)
	f.rev = inventory.NewReversalEngine(runner, log, nil)
	f.query = inventory.NewQueryUseCase(postgres.NewTransactionRepository(pool), postgres.NewStockRepository(pool), items, locations)
	return f
}

func (f *pgFixture) qty(t *testing.T, loc string) int64 {
	t.Helper()
	q, err := f.query.GetQuantity(context.Background(), f.itemID, loc)
	require.NoError(t, err)
	return q
}

func TestPostgres_MoveUndoRedo(t *testing.T) {
	pool := getPool(t)
	f := newFixture(t, pool)
	ctx := context.Background()

	_, err := f.exec.ApplyAdd(ctx, "u1", f.itemID, f.locA, 10)
	require.NoError(t, err)
	move, err := f.exec.ApplyMove(ctx, "u1", f.itemID, f.locA, f.locB, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(7), f.qty(t, f.locA))
	assert.Equal(t, int64(3), f.qty(t, f.locB))

	_, err = f.rev.Undo(ctx, move.ID, "u2")
	require.NoError(t, err)
	assert.Equal(t, int64(10), f.qty(t, f.locA))
	assert.Equal(t, int64(0), f.qty(t, f.locB))

	_, err = f.rev.Undo(ctx, move.ID, "u2")
	assert.ErrorIs(t, err, domain.ErrAlreadyInState)

	redone, err := f.rev.Redo(ctx, move.ID, "u3")
	require.NoError(t, err)
	assert.Equal(t, entity.StatusRedone, redone.Status)
	assert.Equal(t, int64(3), f.qty(t, f.locB))

	hist, err := f.query.ListHistory(ctx, repository.TransactionFilter{ItemID: f.itemID})
	require.NoError(t, err)
	require.Len(t, hist, 2)
	assert.Equal(t, move.ID, hist[0].Transaction.ID)
	assert.Equal(t, entity.StatusRedone, hist[0].Transaction.Status)
}

func TestPostgres_UndoMoveRevalidatesDestination(t *testing.T) {
	pool := getPool(t)
	f := newFixture(t, pool)
	ctx := context.Background()

	_, err := f.exec.ApplyAdd(ctx, "u1", f.itemID, f.locA, 5)
	require.NoError(t, err)
	move, err := f.exec.ApplyMove(ctx, "u1", f.itemID, f.locA, f.locB, 5)
	require.NoError(t, err)
	_, err = f.exec.ApplyRemove(ctx, "u1", f.itemID, f.locB, 5)
	require.NoError(t, err)

	_, err = f.rev.Undo(ctx, move.ID, "u1")
	var ise *domain.InsufficientStockError
	require.ErrorAs(t, err, &ise)
	assert.Equal(t, f.locB, ise.LocationID)
	assert.Equal(t, int64(0), f.qty(t, f.locA))
	assert.Equal(t, int64(0), f.qty(t, f.locB))
}

func TestPostgres_QuantityOverflow(t *testing.T) {
	pool := getPool(t)
	f := newFixture(t, pool)
	ctx := context.Background()

	_, err := f.exec.ApplyAdd(ctx, "u1", f.itemID, f.locA, math.MaxInt64)
	require.NoError(t, err)
	_, err = f.exec.ApplyAdd(ctx, "u1", f.itemID, f.locB, 5)
	require.NoError(t, err)

	_, err = f.exec.ApplyMove(ctx, "u1", f.itemID, f.locB, f.locA, 5)
	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "quantity", ve.Field)
	assert.Equal(t, int64(math.MaxInt64), f.qty(t, f.locA))
	assert.Equal(t, int64(5), f.qty(t, f.locB))
}

func TestPostgres_ConcurrentRemoves(t *testing.T) {
	pool := getPool(t)
	f := newFixture(t, pool)
	ctx := context.Background()
	_, err := f.exec.ApplyAdd(ctx, "u1", f.itemID, f.locA, 10)
	require.NoError(t, err)

	var ok atomic.Int32
	var g errgroup.Group
	for i := 0; i < 10; i++ {
		g.Go(func() error {
			_, err := f.exec.ApplyRemove(ctx, "u1", f.itemID, f.locA, 3)
			switch {
			case err == nil:
				ok.Add(1)
			case errors.Is(err, domain.ErrInsufficientStock):
			default:
				return err
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
	assert.Equal(t, int32(3), ok.Load())
	assert.Equal(t, int64(1), f.qty(t, f.locA))
}

func TestPostgres_ConcurrentUndo(t *testing.T) {
	pool := getPool(t)
	f := newFixture(t, pool)
	ctx := context.Background()
	tx, err := f.exec.ApplyAdd(ctx, "u1", f.itemID, f.locA, 4)
	require.NoError(t, err)

	var ok atomic.Int32
	var g errgroup.Group
	for i := 0; i < 5; i++ {
		g.Go(func() error {
			_, err := f.rev.Undo(ctx, tx.ID, "u1")
			switch {
			case err == nil:
				ok.Add(1)
			case errors.Is(err, domain.ErrAlreadyInState):
			default:
				return err
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
	assert.Equal(t, int32(1), ok.Load())
	assert.Equal(t, int64(0), f.qty(t, f.locA))
}
