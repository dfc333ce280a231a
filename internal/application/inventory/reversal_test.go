package inventory_test

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

func TestUndoRedo_RemoveScenario(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()
	l.seed(t, itemX, locA, 10)

	tx, err := l.exec.ApplyRemove(ctx, actor, itemX, locA, 5)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusCompleted, tx.Status)
	assert.Equal(t, int64(5), l.qty(t, itemX, locA))

	undone, err := l.rev.Undo(ctx, tx.ID, "user-2")
	require.NoError(t, err)
	assert.Equal(t, entity.StatusUndone, undone.Status)
	require.NotNil(t, undone.UndoneAt)
	require.NotNil(t, undone.UndoneBy)
	assert.Equal(t, "user-2", *undone.UndoneBy)
	assert.Equal(t, int64(10), l.qty(t, itemX, locA))

	redone, err := l.rev.Redo(ctx, tx.ID, "user-3")
	require.NoError(t, err)
	assert.Equal(t, entity.StatusRedone, redone.Status)
	assert.Nil(t, redone.UndoneAt)
	assert.Nil(t, redone.UndoneBy)
	require.NotNil(t, redone.RedoneBy)
	assert.Equal(t, "user-3", *redone.RedoneBy)
	assert.Equal(t, int64(5), l.qty(t, itemX, locA))

	stored, err := l.query.GetTransaction(ctx, tx.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusRedone, stored.Status)
	assert.Equal(t, int64(5), stored.Quantity)
	assert.Equal(t, tx.CreatedAt, stored.CreatedAt)
}

func TestUndoRedo_MoveScenario(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()
	l.seed(t, itemX, locA, 10)

	tx, err := l.exec.ApplyMove(ctx, actor, itemX, locA, locB, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(7), l.qty(t, itemX, locA))
	assert.Equal(t, int64(3), l.qty(t, itemX, locB))

	_, err = l.rev.Undo(ctx, tx.ID, actor)
	require.NoError(t, err)
	assert.Equal(t, int64(10), l.qty(t, itemX, locA))
	assert.Equal(t, int64(0), l.qty(t, itemX, locB))
}

func TestUndoRedo_RoundTrip(t *testing.T) {
	ops := map[string]func(l *ledger) (*entity.Transaction, error){
		"add": func(l *ledger) (*entity.Transaction, error) {
			return l.exec.ApplyAdd(context.Background(), actor, itemX, locA, 4)
		},
		"remove": func(l *ledger) (*entity.Transaction, error) {
			return l.exec.ApplyRemove(context.Background(), actor, itemX, locA, 4)
		},
		"move": func(l *ledger) (*entity.Transaction, error) {
			return l.exec.ApplyMove(context.Background(), actor, itemX, locA, locB, 4)
		},
	}
	for name, op := range ops {
		t.Run(name, func(t *testing.T) {
			l := newLedger(t)
			ctx := context.Background()
			l.seed(t, itemX, locA, 6)
			beforeA, beforeB := l.qty(t, itemX, locA), l.qty(t, itemX, locB)

			tx, err := op(l)
			require.NoError(t, err)
			afterA, afterB := l.qty(t, itemX, locA), l.qty(t, itemX, locB)

			_, err = l.rev.Undo(ctx, tx.ID, actor)
			require.NoError(t, err)
			assert.Equal(t, beforeA, l.qty(t, itemX, locA))
			assert.Equal(t, beforeB, l.qty(t, itemX, locB))

			_, err = l.rev.Redo(ctx, tx.ID, actor)
			require.NoError(t, err)
			assert.Equal(t, afterA, l.qty(t, itemX, locA))
			assert.Equal(t, afterB, l.qty(t, itemX, locB))

			// REDONE admite un nuevo undo.
			_, err = l.rev.Undo(ctx, tx.ID, actor)
			require.NoError(t, err)
			assert.Equal(t, beforeA, l.qty(t, itemX, locA))
		})
	}
}

func TestUndoRedo_IllegalTransitions(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()
	tx := l.seed(t, itemX, locA, 5)

	_, err := l.rev.Redo(ctx, tx.ID, actor)
	var ais *domain.AlreadyInStateError
	require.ErrorAs(t, err, &ais)
	assert.Equal(t, "COMPLETED", ais.Current)
	assert.Equal(t, "REDONE", ais.Requested)
	assert.Equal(t, int64(5), l.qty(t, itemX, locA))

	_, err = l.rev.Undo(ctx, tx.ID, actor)
	require.NoError(t, err)
	_, err = l.rev.Undo(ctx, tx.ID, actor)
	assert.ErrorIs(t, err, domain.ErrAlreadyInState)
	assert.Equal(t, int64(0), l.qty(t, itemX, locA))

	_, err = l.rev.Redo(ctx, tx.ID, actor)
	require.NoError(t, err)
	_, err = l.rev.Redo(ctx, tx.ID, actor)
	assert.ErrorIs(t, err, domain.ErrAlreadyInState)
	assert.Equal(t, int64(5), l.qty(t, itemX, locA))
}

func TestUndo_NotFoundAndValidation(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()

	_, err := l.rev.Undo(ctx, "no-existe", actor)
	var nf *domain.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "transaction", nf.Resource)

	_, err = l.rev.Redo(ctx, "", actor)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	tx := l.seed(t, itemX, locA, 1)
	_, err = l.rev.Undo(ctx, tx.ID, "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Equal(t, int64(1), l.qty(t, itemX, locA))
}

func TestUndoMove_RevalidatesDestination(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()
	l.seed(t, itemX, locA, 5)

	move, err := l.exec.ApplyMove(ctx, actor, itemX, locA, locB, 5)
	require.NoError(t, err)
	_, err = l.exec.ApplyRemove(ctx, actor, itemX, locB, 5)
	require.NoError(t, err)

	_, err = l.rev.Undo(ctx, move.ID, actor)
	var ise *domain.InsufficientStockError
	require.ErrorAs(t, err, &ise)
	assert.Equal(t, locB, ise.LocationID)
	assert.Equal(t, "destination", ise.Role)
	assert.Equal(t, domain.OpUndo, ise.Operation)
	assert.Equal(t, int64(0), ise.Available)
	assert.Equal(t, int64(5), ise.Requested)

	assert.Equal(t, int64(0), l.qty(t, itemX, locA))
	assert.Equal(t, int64(0), l.qty(t, itemX, locB))
	stored, err := l.query.GetTransaction(ctx, move.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusCompleted, stored.Status)
}

func TestUndoAdd_RevalidatesDestination(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()
	add := l.seed(t, itemX, locA, 5)
	_, err := l.exec.ApplyRemove(ctx, actor, itemX, locA, 2)
	require.NoError(t, err)

	_, err = l.rev.Undo(ctx, add.ID, actor)
	require.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Contains(t, err.Error(), "deshacer")
	assert.Equal(t, int64(3), l.qty(t, itemX, locA))
}

func TestRedoRemove_RevalidatesSource(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()
	l.seed(t, itemX, locA, 5)

	rm, err := l.exec.ApplyRemove(ctx, actor, itemX, locA, 5)
	require.NoError(t, err)
	_, err = l.rev.Undo(ctx, rm.ID, actor)
	require.NoError(t, err)
	_, err = l.exec.ApplyMove(ctx, actor, itemX, locA, locB, 2)
	require.NoError(t, err)

	_, err = l.rev.Redo(ctx, rm.ID, actor)
	var ise *domain.InsufficientStockError
	require.ErrorAs(t, err, &ise)
	assert.Equal(t, domain.OpRedo, ise.Operation)
	assert.Equal(t, int64(3), ise.Available)
	assert.Equal(t, int64(3), l.qty(t, itemX, locA))
}

func TestUndo_CommitFailureLeavesNoTrace(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()
	tx := l.seed(t, itemX, locA, 5)
	l.store.FailNextCommit(assert.AnError)

	_, err := l.rev.Undo(ctx, tx.ID, actor)
	require.ErrorIs(t, err, domain.ErrCommitFailure)
	assert.Equal(t, int64(5), l.qty(t, itemX, locA))
	stored, err := l.query.GetTransaction(ctx, tx.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusCompleted, stored.Status)
	assert.Nil(t, stored.UndoneAt)
}

func TestUndoRemove_QuantityOverflow(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()
	l.seed(t, itemX, locA, 10)
	removed, err := l.exec.ApplyRemove(ctx, actor, itemX, locA, 10)
	require.NoError(t, err)
	l.seed(t, itemX, locA, math.MaxInt64)

	_, err = l.rev.Undo(ctx, removed.ID, actor)
	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "quantity", ve.Field)

	tx, err := l.query.GetTransaction(ctx, removed.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusCompleted, tx.Status)
	assert.Equal(t, int64(math.MaxInt64), l.qty(t, itemX, locA))
}
