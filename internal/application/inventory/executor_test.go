package inventory_test

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

func TestApplyAdd_CreatesRecordLazily(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()

	tx, err := l.exec.ApplyAdd(ctx, actor, itemX, locA, 4)
	require.NoError(t, err)
	assert.Equal(t, entity.KindAdd, tx.Kind)
	assert.Equal(t, entity.StatusCompleted, tx.Status)
	assert.Equal(t, actor, tx.CreatedBy)
	assert.Nil(t, tx.SourceLocationID)
	assert.Equal(t, locA, tx.Destination())
	assert.Equal(t, int64(4), l.qty(t, itemX, locA))

	stored, err := l.query.GetTransaction(ctx, tx.ID)
	require.NoError(t, err)
	assert.Equal(t, tx.ID, stored.ID)
}

func TestApply_Validation(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()

	cases := map[string]inventory.Command{
		"cantidad cero":     inventory.AddCommand{ItemID: itemX, DestinationID: locA, Quantity: 0},
		"cantidad negativa": inventory.RemoveCommand{ItemID: itemX, SourceID: locA, Quantity: -1},
		"sin destino":       inventory.AddCommand{ItemID: itemX, Quantity: 1},
		"sin origen":        inventory.RemoveCommand{ItemID: itemX, Quantity: 1},
		"move mismo origen": inventory.MoveCommand{ItemID: itemX, SourceID: locA, DestinationID: locA, Quantity: 1},
		"move sin destino":  inventory.MoveCommand{ItemID: itemX, SourceID: locA, Quantity: 1},
		"sin ítem":          inventory.AddCommand{DestinationID: locA, Quantity: 1},
		"comando nulo":      nil,
	}
	for name, cmd := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := l.exec.Apply(ctx, actor, cmd)
			var ve *domain.ValidationError
			assert.ErrorAs(t, err, &ve)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
	assert.Equal(t, int64(0), l.qty(t, itemX, locA))
}

func TestApply_UnknownReferences(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()

	_, err := l.exec.ApplyAdd(ctx, actor, "no-existe", locA, 1)
	var nf *domain.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "item", nf.Resource)

	_, err = l.exec.ApplyMove(ctx, actor, itemX, locA, "no-existe", 1)
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "location", nf.Resource)
}

func TestApplyRemove_Insufficient(t *testing.T) {
	l := newLedger(t)
	l.seed(t, itemX, locA, 2)

	_, err := l.exec.ApplyRemove(context.Background(), actor, itemX, locA, 3)
	var ise *domain.InsufficientStockError
	require.ErrorAs(t, err, &ise)
	assert.Equal(t, itemX, ise.ItemID)
	assert.Equal(t, locA, ise.LocationID)
	assert.Equal(t, int64(2), ise.Available)
	assert.Equal(t, int64(3), ise.Requested)
	assert.Equal(t, domain.OpApply, ise.Operation)
	assert.Equal(t, "source", ise.Role)
	assert.Equal(t, int64(2), l.qty(t, itemX, locA))

	// Un rechazo no deja registro en el log.
	list, err := l.query.ListHistory(context.Background(), repository.TransactionFilter{ItemID: itemX})
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestApplyRemove_ToZeroKeepsRecord(t *testing.T) {
	l := newLedger(t)
	l.seed(t, itemX, locA, 3)

	_, err := l.exec.ApplyRemove(context.Background(), actor, itemX, locA, 3)
	require.NoError(t, err)

	recs, err := l.query.StockByItem(context.Background(), itemX)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, locA, recs[0].LocationID)
	assert.Equal(t, int64(0), recs[0].Quantity)
}

func TestApplyMove(t *testing.T) {
	l := newLedger(t)
	l.seed(t, itemX, locA, 10)

	tx, err := l.exec.ApplyMove(context.Background(), actor, itemX, locA, locB, 3)
	require.NoError(t, err)
	assert.Equal(t, locA, tx.Source())
	assert.Equal(t, locB, tx.Destination())
	assert.Equal(t, int64(7), l.qty(t, itemX, locA))
	assert.Equal(t, int64(3), l.qty(t, itemX, locB))

	_, err = l.exec.ApplyMove(context.Background(), actor, itemX, locB, locC, 4)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, int64(3), l.qty(t, itemX, locB))
	assert.Equal(t, int64(0), l.qty(t, itemX, locC))
}

func TestApply_QuantityOverflow(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()
	l.seed(t, itemX, locA, math.MaxInt64)
	l.seed(t, itemX, locB, 5)

	_, err := l.exec.ApplyAdd(ctx, actor, itemX, locA, 1)
	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "quantity", ve.Field)
	assert.NotErrorIs(t, err, domain.ErrInsufficientStock)

	_, err = l.exec.ApplyMove(ctx, actor, itemX, locB, locA, 5)
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, int64(math.MaxInt64), l.qty(t, itemX, locA))
	assert.Equal(t, int64(5), l.qty(t, itemX, locB))
}

func TestApplyBatch_AllOrNothing(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()
	l.seed(t, itemX, locA, 5)
	l.seed(t, itemY, locB, 1)

	_, err := l.exec.ApplyBatch(ctx, actor, []inventory.Command{
		inventory.RemoveCommand{ItemID: itemX, SourceID: locA, Quantity: 5},
		inventory.AddCommand{ItemID: itemY, DestinationID: locC, Quantity: 9},
		inventory.RemoveCommand{ItemID: itemY, SourceID: locB, Quantity: 2},
	})
	require.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Contains(t, err.Error(), "línea 3")

	assert.Equal(t, int64(5), l.qty(t, itemX, locA))
	assert.Equal(t, int64(0), l.qty(t, itemY, locC))
	assert.Equal(t, int64(1), l.qty(t, itemY, locB))
	list, err := l.query.ListHistory(ctx, repository.TransactionFilter{})
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestApplyBatch_SequentialValidation(t *testing.T) {
	l := newLedger(t)

	// Cada línea ve el stock dejado por las anteriores.
	txs, err := l.exec.ApplyBatch(context.Background(), actor, []inventory.Command{
		inventory.AddCommand{ItemID: itemX, DestinationID: locA, Quantity: 4},
		inventory.MoveCommand{ItemID: itemX, SourceID: locA, DestinationID: locB, Quantity: 4},
		inventory.RemoveCommand{ItemID: itemX, SourceID: locB, Quantity: 1},
	})
	require.NoError(t, err)
	require.Len(t, txs, 3)
	assert.Equal(t, entity.KindMove, txs[1].Kind)
	assert.Equal(t, int64(0), l.qty(t, itemX, locA))
	assert.Equal(t, int64(3), l.qty(t, itemX, locB))
}

func TestApplyBatch_Empty(t *testing.T) {
	l := newLedger(t)
	_, err := l.exec.ApplyBatch(context.Background(), actor, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestApply_CommitFailure(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()
	boom := errors.New("disco lleno")
	l.store.FailNextCommit(boom)

	_, err := l.exec.ApplyAdd(ctx, actor, itemX, locA, 5)
	require.ErrorIs(t, err, domain.ErrCommitFailure)
	assert.ErrorIs(t, err, boom)
	assert.True(t, domain.IsRetryable(err))
	assert.Equal(t, int64(0), l.qty(t, itemX, locA))

	list, err := l.query.ListHistory(ctx, repository.TransactionFilter{})
	require.NoError(t, err)
	assert.Empty(t, list)

	// El reintento funciona: el intento fallido no dejó nada.
	_, err = l.exec.ApplyAdd(ctx, actor, itemX, locA, 5)
	require.NoError(t, err)
	assert.Equal(t, int64(5), l.qty(t, itemX, locA))
}

func TestApply_CancelledBeforeCommit(t *testing.T) {
	l := newLedger(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := l.exec.ApplyAdd(ctx, actor, itemX, locA, 5)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, int64(0), l.qty(t, itemX, locA))
}
