package entity

import (
	"math"
	"time"
)

// StockRecord cantidad actual de un ítem en una ubicación. Única por (ItemID, LocationID).
// Quantity nunca es negativa; un registro en 0 se conserva (distinto de "sin registro").
type StockRecord struct {
	ItemID     string
	LocationID string
	Quantity   int64
	UpdatedAt  time.Time
}

// StockKey identifica un StockRecord.
type StockKey struct {
	ItemID     string
	LocationID string
}

// Less define el orden global de bloqueo de claves de stock (ítem y luego ubicación).
func (k StockKey) Less(o StockKey) bool {
	if k.ItemID != o.ItemID {
		return k.ItemID < o.ItemID
	}
	return k.LocationID < o.LocationID
}

func (k StockKey) String() string {
	return k.ItemID + "@" + k.LocationID
}

// QuantityOverflows indica si sumar delta a current excede el máximo de int64.
func QuantityOverflows(current, delta int64) bool {
	return delta > 0 && current > math.MaxInt64-delta
}
