package inventory

import (
	"context"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 500
)

// HistoryEntry transacción con los datos de catálogo que muestra el historial.
type HistoryEntry struct {
	Transaction      *entity.Transaction
	ItemSKU          string
	ItemName         string
	SourceLabel      string
	DestinationLabel string
}

// QueryUseCase lecturas sin efecto: historial de transacciones y cantidades actuales.
type QueryUseCase struct {
	txRepo       repository.TransactionRepository
	stockRepo    repository.StockRepository
	itemRepo     repository.ItemRepository
	locationRepo repository.LocationRepository
}

// NewQueryUseCase construye el caso de uso con repositorios atados al pool (fuera de tx).
func NewQueryUseCase(
	txRepo repository.TransactionRepository,
	stockRepo repository.StockRepository,
	itemRepo repository.ItemRepository,
	locationRepo repository.LocationRepository,
) *QueryUseCase {
	return &QueryUseCase{txRepo: txRepo, stockRepo: stockRepo, itemRepo: itemRepo, locationRepo: locationRepo}
}

// GetQuantity devuelve la cantidad actual (0 si no hay registro).
func (uc *QueryUseCase) GetQuantity(ctx context.Context, itemID, locationID string) (int64, error) {
	if itemID == "" || locationID == "" {
		return 0, domain.Invalid("item_id/location_id", "requeridos")
	}
	rec, err := uc.stockRepo.Get(ctx, itemID, locationID)
	if err != nil {
		return 0, err
	}
	return rec.Quantity, nil
}

// StockByItem lista los registros de stock de un ítem.
func (uc *QueryUseCase) StockByItem(ctx context.Context, itemID string) ([]*entity.StockRecord, error) {
	if itemID == "" {
		return nil, domain.Invalid("item_id", "requerido")
	}
	return uc.stockRepo.ListByItem(ctx, itemID)
}

// GetTransaction obtiene una transacción por ID.
func (uc *QueryUseCase) GetTransaction(ctx context.Context, id string) (*entity.Transaction, error) {
	tx, err := uc.txRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if tx == nil {
		return nil, domain.NotFound("transaction", id)
	}
	return tx, nil
}

// ListHistory lista transacciones filtradas y ordenadas por fecha de creación
// (descendente salvo filter.Ascending).
func (uc *QueryUseCase) ListHistory(ctx context.Context, filter repository.TransactionFilter) ([]HistoryEntry, error) {
	if filter.Kind != "" && !filter.Kind.Valid() {
		return nil, domain.Invalid("kind", "desconocido")
	}
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, domain.Invalid("status", "desconocido")
	}
	if filter.From != nil && filter.To != nil && filter.To.Before(*filter.From) {
		return nil, domain.Invalid("to", "anterior a from")
	}
	if filter.Limit <= 0 {
		filter.Limit = defaultHistoryLimit
	}
	if filter.Limit > maxHistoryLimit {
		filter.Limit = maxHistoryLimit
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	txs, err := uc.txRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	items := make(map[string]*entity.Item)
	labels := make(map[string]string)
	out := make([]HistoryEntry, 0, len(txs))
	for _, tx := range txs {
		e := HistoryEntry{Transaction: tx}
		item, ok := items[tx.ItemID]
		if !ok {
			if item, err = uc.itemRepo.GetByID(ctx, tx.ItemID); err != nil {
				return nil, err
			}
			items[tx.ItemID] = item
		}
		if item != nil {
			e.ItemSKU, e.ItemName = item.SKU, item.Name
		}
		if e.SourceLabel, err = uc.label(ctx, labels, tx.Source()); err != nil {
			return nil, err
		}
		if e.DestinationLabel, err = uc.label(ctx, labels, tx.Destination()); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

func (uc *QueryUseCase) label(ctx context.Context, cache map[string]string, locationID string) (string, error) {
	if locationID == "" {
		return "", nil
	}
	if l, ok := cache[locationID]; ok {
		return l, nil
	}
	loc, err := uc.locationRepo.GetByID(ctx, locationID)
	if err != nil {
		return "", err
	}
	l := ""
	if loc != nil {
		l = loc.Label
	}
	cache[locationID] = l
	return l, nil
}
