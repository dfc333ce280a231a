package entity_test

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

func TestTransactionStatus_CanTransition(t *testing.T) {
	cases := []struct {
		from, to entity.TransactionStatus
		ok       bool
	}{
		{entity.StatusCompleted, entity.StatusUndone, true},
		{entity.StatusRedone, entity.StatusUndone, true},
		{entity.StatusUndone, entity.StatusRedone, true},
		{entity.StatusCompleted, entity.StatusRedone, false},
		{entity.StatusRedone, entity.StatusRedone, false},
		{entity.StatusUndone, entity.StatusUndone, false},
		{entity.StatusUndone, entity.StatusCompleted, false},
		{entity.StatusCompleted, entity.StatusCompleted, false},
	}
	for _, c := range cases {
		assert.Equal(t, c.ok, c.from.CanTransition(c.to), "%s -> %s", c.from, c.to)
	}
}

func TestTransactionStatus_Applied(t *testing.T) {
	assert.True(t, entity.StatusCompleted.Applied())
	assert.True(t, entity.StatusRedone.Applied())
	assert.False(t, entity.StatusUndone.Applied())
	assert.False(t, entity.TransactionStatus("OTRO").Valid())
	assert.False(t, entity.TransactionKind("SWAP").Valid())
}

func TestTransaction_MarkUndoneRedone(t *testing.T) {
	src := "loc-a"
	tx := &entity.Transaction{ID: "t1", Kind: entity.KindRemove, SourceLocationID: &src, Status: entity.StatusCompleted}
	at := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	tx.MarkUndone(at, "ana")
	assert.Equal(t, entity.StatusUndone, tx.Status)
	require.NotNil(t, tx.UndoneBy)
	assert.Equal(t, "ana", *tx.UndoneBy)
	assert.Nil(t, tx.RedoneAt)

	tx.MarkRedone(at.Add(time.Minute), "luis")
	assert.Equal(t, entity.StatusRedone, tx.Status)
	assert.Nil(t, tx.UndoneAt)
	assert.Nil(t, tx.UndoneBy)
	require.NotNil(t, tx.RedoneBy)
	assert.Equal(t, "luis", *tx.RedoneBy)

	assert.Equal(t, "loc-a", tx.Source())
	assert.Equal(t, "", tx.Destination())
}

func TestTransaction_Clone(t *testing.T) {
	src := "loc-a"
	tx := &entity.Transaction{ID: "t1", SourceLocationID: &src}
	tx.MarkUndone(time.Now(), "ana")

	c := tx.Clone()
	*c.SourceLocationID = "loc-b"
	*c.UndoneBy = "otro"

	assert.Equal(t, "loc-a", tx.Source())
	assert.Equal(t, "ana", *tx.UndoneBy)
}

func TestStockKey_Less(t *testing.T) {
	a := entity.StockKey{ItemID: "i1", LocationID: "l2"}
	b := entity.StockKey{ItemID: "i1", LocationID: "l3"}
	c := entity.StockKey{ItemID: "i2", LocationID: "l1"}

	assert.True(t, a.Less(b))
	assert.True(t, b.Less(c))
	assert.False(t, c.Less(a))
	assert.False(t, a.Less(a))
	assert.Equal(t, "i1@l2", a.String())
}

func TestQuantityOverflows(t *testing.T) {
	assert.False(t, entity.QuantityOverflows(10, 5))
	assert.False(t, entity.QuantityOverflows(math.MaxInt64, 0))
	assert.False(t, entity.QuantityOverflows(math.MaxInt64, -1))
	assert.False(t, entity.QuantityOverflows(math.MaxInt64-1, 1))
	assert.True(t, entity.QuantityOverflows(math.MaxInt64, 1))
	assert.True(t, entity.QuantityOverflows(1, math.MaxInt64))
}
