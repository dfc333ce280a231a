package inventory

import (
	"context"
	"errors"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// lockKeys bloquea cada clave en el orden global. Debe llamarse antes de cualquier Adjust
// de la unidad de trabajo para que la lectura-verificación-escritura quede aislada.
func lockKeys(ctx context.Context, stockRepo repository.StockRepository, keys []entity.StockKey) error {
	for _, k := range keys {
		if _, err := stockRepo.GetForUpdate(ctx, k.ItemID, k.LocationID); err != nil {
			return err
		}
	}
	return nil
}

// applyDeltas aplica los deltas sobre claves ya bloqueadas. Un faltante se devuelve como
// *domain.InsufficientStockError anotado con la operación y el papel de la ubicación;
// el TxRunner descarta entonces todo lo aplicado en la unidad de trabajo.
func applyDeltas(ctx context.Context, stockRepo repository.StockRepository, deltas []stockDelta, op string) error {
	for _, d := range deltas {
		if _, err := stockRepo.Adjust(ctx, d.key.ItemID, d.key.LocationID, d.delta); err != nil {
			var ise *domain.InsufficientStockError
			if errors.As(err, &ise) {
				ise.Operation = op
				ise.Role = d.role
			}
			return err
		}
	}
	return nil
}

// lockAndApply bloquea las claves tocadas por deltas y los aplica.
func lockAndApply(ctx context.Context, stockRepo repository.StockRepository, deltas []stockDelta, op string) error {
	if err := lockKeys(ctx, stockRepo, lockOrder(deltas)); err != nil {
		return err
	}
	return applyDeltas(ctx, stockRepo, deltas, op)
}
