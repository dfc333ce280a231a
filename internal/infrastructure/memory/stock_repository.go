package memory

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var clock = time.Now

var _ repository.StockRepository = (*stockRepo)(nil)

// stockRepo Stock Store atado a una unidad de trabajo.
type stockRepo struct {
	u *unitOfWork
}

func (r *stockRepo) Get(_ context.Context, itemID, locationID string) (*entity.StockRecord, error) {
	return r.u.read(entity.StockKey{ItemID: itemID, LocationID: locationID}), nil
}

func (r *stockRepo) GetForUpdate(ctx context.Context, itemID, locationID string) (*entity.StockRecord, error) {
	r.u.lock(stockLockKey(entity.StockKey{ItemID: itemID, LocationID: locationID}))
	return r.Get(ctx, itemID, locationID)
}

func (r *stockRepo) Adjust(_ context.Context, itemID, locationID string, delta int64) (int64, error) {
	k := entity.StockKey{ItemID: itemID, LocationID: locationID}
	r.u.lock(stockLockKey(k))
	current := r.u.read(k).Quantity
	if entity.QuantityOverflows(current, delta) {
		return current, domain.Invalid("quantity", "excede el máximo")
	}
	next := current + delta
	if next < 0 {
		return current, &domain.InsufficientStockError{
			ItemID:     itemID,
			LocationID: locationID,
			Available:  current,
			Requested:  -delta,
		}
	}
	r.u.stock[k] = next
	return next, nil
}

func (r *stockRepo) ListByItem(_ context.Context, itemID string) ([]*entity.StockRecord, error) {
	s := r.u.s
	s.mu.RLock()
	seen := make(map[entity.StockKey]bool)
	var list []*entity.StockRecord
	for k, rec := range s.stock {
		if k.ItemID != itemID {
			continue
		}
		c := *rec
		if q, ok := r.u.stock[k]; ok {
			c.Quantity = q
		}
		seen[k] = true
		list = append(list, &c)
	}
	s.mu.RUnlock()
	for k, q := range r.u.stock {
		if k.ItemID == itemID && !seen[k] {
			list = append(list, &entity.StockRecord{ItemID: k.ItemID, LocationID: k.LocationID, Quantity: q})
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].LocationID < list[j].LocationID })
	return list, nil
}

// read devuelve la cantidad vista por la unidad de trabajo (pendiente o confirmada).
func (u *unitOfWork) read(k entity.StockKey) *entity.StockRecord {
	u.s.mu.RLock()
	defer u.s.mu.RUnlock()
	rec := &entity.StockRecord{ItemID: k.ItemID, LocationID: k.LocationID}
	if committed, ok := u.s.stock[k]; ok {
		*rec = *committed
	}
	if q, ok := u.stock[k]; ok {
		rec.Quantity = q
	}
	return rec
}

var errOutsideUnitOfWork = errors.New("operación de escritura fuera de una unidad de trabajo")

// autoStock Stock Store sin tx explícita: cada llamada corre en su propia unidad de trabajo.
type autoStock struct {
	s *Store
}

func (r *autoStock) Get(ctx context.Context, itemID, locationID string) (rec *entity.StockRecord, err error) {
	err = r.s.Run(ctx, func(stock repository.StockRepository, _ repository.TransactionRepository) error {
		rec, err = stock.Get(ctx, itemID, locationID)
		return err
	})
	return rec, err
}

// GetForUpdate fuera de tx no puede retener el bloqueo; equivale a Get.
func (r *autoStock) GetForUpdate(ctx context.Context, itemID, locationID string) (*entity.StockRecord, error) {
	return r.Get(ctx, itemID, locationID)
}

// Adjust solo se permite dentro de Run: el stock lo escriben únicamente el ejecutor y el
// motor de reversión.
func (r *autoStock) Adjust(context.Context, string, string, int64) (int64, error) {
	return 0, errOutsideUnitOfWork
}

func (r *autoStock) ListByItem(ctx context.Context, itemID string) (list []*entity.StockRecord, err error) {
	err = r.s.Run(ctx, func(stock repository.StockRepository, _ repository.TransactionRepository) error {
		list, err = stock.ListByItem(ctx, itemID)
		return err
	})
	return list, err
}
