package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ repository.StockRepository = (*StockRepo)(nil)

// StockRepo implementación de StockRepository sobre PostgreSQL (usable con pool o tx).
type StockRepo struct {
	q Querier
}

// NewStockRepository construye el adaptador de stock. Pasar pool o tx (Querier).
func NewStockRepository(q Querier) *StockRepo {
	return &StockRepo{q: q}
}

// Get obtiene el stock actual de un ítem en una ubicación (0 si no hay registro).
func (r *StockRepo) Get(ctx context.Context, itemID, locationID string) (*entity.StockRecord, error) {
	return r.get(ctx, itemID, locationID, false)
}

// GetForUpdate obtiene el stock y bloquea la fila para update (SELECT FOR UPDATE).
func (r *StockRepo) GetForUpdate(ctx context.Context, itemID, locationID string) (*entity.StockRecord, error) {
	return r.get(ctx, itemID, locationID, true)
}

func (r *StockRepo) get(ctx context.Context, itemID, locationID string, forUpdate bool) (*entity.StockRecord, error) {
	query := `
		SELECT item_id, location_id, quantity, updated_at
		FROM stock_records WHERE item_id = $1 AND location_id = $2`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	var s entity.StockRecord
	err := r.q.QueryRow(ctx, query, itemID, locationID).Scan(
		&s.ItemID, &s.LocationID, &s.Quantity, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &entity.StockRecord{ItemID: itemID, LocationID: locationID}, nil
		}
		return nil, fmt.Errorf("get stock: %w", err)
	}
	return &s, nil
}

// Adjust bloquea la fila, verifica que el resultado no sea negativo y aplica el delta.
// El primer incremento crea el registro (ON CONFLICT cubre la inserción concurrente).
func (r *StockRepo) Adjust(ctx context.Context, itemID, locationID string, delta int64) (int64, error) {
	current, err := r.GetForUpdate(ctx, itemID, locationID)
	if err != nil {
		return 0, err
	}
	if entity.QuantityOverflows(current.Quantity, delta) {
		return current.Quantity, domain.Invalid("quantity", "excede el máximo")
	}
	if current.Quantity+delta < 0 {
		return current.Quantity, &domain.InsufficientStockError{
			ItemID:     itemID,
			LocationID: locationID,
			Available:  current.Quantity,
			Requested:  -delta,
		}
	}
	query := `
		INSERT INTO stock_records (item_id, location_id, quantity, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (item_id, location_id)
		DO UPDATE SET quantity = stock_records.quantity + EXCLUDED.quantity, updated_at = now()
		RETURNING quantity`
	var next int64
	if err := r.q.QueryRow(ctx, query, itemID, locationID, delta).Scan(&next); err != nil {
		if isCheckViolation(err) {
			return current.Quantity, &domain.InsufficientStockError{
				ItemID:     itemID,
				LocationID: locationID,
				Available:  current.Quantity,
				Requested:  -delta,
			}
		}
		if isForeignKeyViolation(err) {
			return 0, domain.NotFound("item/location", itemID+"@"+locationID)
		}
		if isOutOfRange(err) {
			return current.Quantity, domain.Invalid("quantity", "excede el máximo")
		}
		return 0, fmt.Errorf("adjust stock: %w", err)
	}
	return next, nil
}

// ListByItem lista el stock de un ítem en todas sus ubicaciones.
func (r *StockRepo) ListByItem(ctx context.Context, itemID string) ([]*entity.StockRecord, error) {
	query := `
		SELECT item_id, location_id, quantity, updated_at
		FROM stock_records WHERE item_id = $1 ORDER BY location_id`
	rows, err := r.q.Query(ctx, query, itemID)
	if err != nil {
		return nil, fmt.Errorf("list stock by item: %w", err)
	}
	defer rows.Close()
	var list []*entity.StockRecord
	for rows.Next() {
		var s entity.StockRecord
		if err := rows.Scan(&s.ItemID, &s.LocationID, &s.Quantity, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan stock: %w", err)
		}
		list = append(list, &s)
	}
	return list, rows.Err()
}
