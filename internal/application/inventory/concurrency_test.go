package inventory_test

import (
	"context"
	"errors"
	"math/rand"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

func TestConcurrentRemove_NeverOversells(t *testing.T) {
	l := newLedger(t)
	l.seed(t, itemX, locA, 10)

	var ok, rejected atomic.Int32
	var g errgroup.Group
	for i := 0; i < 10; i++ {
		g.Go(func() error {
			_, err := l.exec.ApplyRemove(context.Background(), actor, itemX, locA, 3)
			switch {
			case err == nil:
				ok.Add(1)
			case errors.Is(err, domain.ErrInsufficientStock):
				rejected.Add(1)
			default:
				return err
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	assert.Equal(t, int32(3), ok.Load())
	assert.Equal(t, int32(7), rejected.Load())
	assert.Equal(t, int64(1), l.qty(t, itemX, locA))
}

func TestConcurrentUndo_ExactlyOneWins(t *testing.T) {
	l := newLedger(t)
	tx := l.seed(t, itemX, locA, 10)

	var ok, already atomic.Int32
	var g errgroup.Group
	for i := 0; i < 8; i++ {
		g.Go(func() error {
			_, err := l.rev.Undo(context.Background(), tx.ID, actor)
			switch {
			case err == nil:
				ok.Add(1)
			case errors.Is(err, domain.ErrAlreadyInState):
				already.Add(1)
			default:
				return err
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	assert.Equal(t, int32(1), ok.Load())
	assert.Equal(t, int32(7), already.Load())
	assert.Equal(t, int64(0), l.qty(t, itemX, locA))
}

// Traslados cruzados A->B y B->A bloquean claves en el mismo orden global y no se interbloquean.
func TestConcurrentCrossMoves(t *testing.T) {
	l := newLedger(t)
	l.seed(t, itemX, locA, 50)
	l.seed(t, itemX, locB, 50)

	var g errgroup.Group
	for i := 0; i < 20; i++ {
		src, dst := locA, locB
		if i%2 == 1 {
			src, dst = locB, locA
		}
		g.Go(func() error {
			_, err := l.exec.ApplyMove(context.Background(), actor, itemX, src, dst, 1)
			return err
		})
	}
	require.NoError(t, g.Wait())
	assert.Equal(t, int64(100), l.qty(t, itemX, locA)+l.qty(t, itemX, locB))
}

// Secuencias aleatorias de apply/undo/redo concurrentes: ninguna cantidad queda negativa y el
// stock final coincide con la suma de los efectos vigentes del log.
func TestRandomSequences_StockMatchesLog(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()
	locs := []string{locA, locB, locC}

	var g errgroup.Group
	for w := 0; w < 4; w++ {
		seed := int64(w + 1)
		g.Go(func() error {
			rng := rand.New(rand.NewSource(seed))
			var mine []string
			for i := 0; i < 150; i++ {
				qty := int64(rng.Intn(5) + 1)
				src := locs[rng.Intn(len(locs))]
				dst := locs[(rng.Intn(len(locs)-1)+1+indexOf(locs, src))%len(locs)]
				var (
					tx  *entity.Transaction
					err error
				)
				switch rng.Intn(5) {
				case 0:
					tx, err = l.exec.ApplyAdd(ctx, actor, itemX, dst, qty)
				case 1:
					tx, err = l.exec.ApplyRemove(ctx, actor, itemX, src, qty)
				case 2:
					tx, err = l.exec.ApplyMove(ctx, actor, itemX, src, dst, qty)
				case 3:
					if len(mine) > 0 {
						_, err = l.rev.Undo(ctx, mine[rng.Intn(len(mine))], actor)
					}
				case 4:
					if len(mine) > 0 {
						_, err = l.rev.Redo(ctx, mine[rng.Intn(len(mine))], actor)
					}
				}
				if err != nil && !domain.IsClientError(err) {
					return err
				}
				if tx != nil {
					mine = append(mine, tx.ID)
				}
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	expected := map[string]int64{}
	list, err := l.query.ListHistory(ctx, repository.TransactionFilter{ItemID: itemX, Limit: 500, Ascending: true})
	require.NoError(t, err)
	offset := len(list)
	for len(list) > 0 {
		for _, e := range list {
			tx := e.Transaction
			if !tx.Status.Applied() {
				continue
			}
			if tx.Source() != "" {
				expected[tx.Source()] -= tx.Quantity
			}
			if tx.Destination() != "" {
				expected[tx.Destination()] += tx.Quantity
			}
		}
		list, err = l.query.ListHistory(ctx, repository.TransactionFilter{ItemID: itemX, Limit: 500, Offset: offset, Ascending: true})
		require.NoError(t, err)
		offset += len(list)
	}

	for _, loc := range locs {
		q := l.qty(t, itemX, loc)
		assert.GreaterOrEqual(t, q, int64(0), loc)
		assert.Equal(t, expected[loc], q, loc)
	}
}

func indexOf(list []string, s string) int {
	for i, v := range list {
		if v == s {
			return i
		}
	}
	return -1
}
