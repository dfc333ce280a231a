package repository

import (
	"context"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// StockRepository define el puerto del Stock Store. Se usa dentro de una unidad de trabajo
// (TxRunner) para garantizar consistencia con el log de transacciones.
type StockRepository interface {
	// Get devuelve el stock confirmado; Quantity 0 si no existe registro.
	Get(ctx context.Context, itemID, locationID string) (*entity.StockRecord, error)
	// GetForUpdate bloquea la clave hasta el fin de la unidad de trabajo (SELECT FOR UPDATE).
	GetForUpdate(ctx context.Context, itemID, locationID string) (*entity.StockRecord, error)
	// Adjust suma delta y devuelve la nueva cantidad. Falla con *domain.InsufficientStockError
	// si el resultado sería negativo. Crea el registro en el primer incremento.
	Adjust(ctx context.Context, itemID, locationID string, delta int64) (int64, error)
	// ListByItem lista los registros de un ítem (incluidos los que están en 0).
	ListByItem(ctx context.Context, itemID string) ([]*entity.StockRecord, error)
}
