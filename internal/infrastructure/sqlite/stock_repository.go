package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ repository.StockRepository = (*StockRepo)(nil)

// StockRepo Stock Store sobre SQLite.
type StockRepo struct {
	q querier
}

// Get devuelve el registro o uno en 0 si no existe.
func (r *StockRepo) Get(ctx context.Context, itemID, locationID string) (*entity.StockRecord, error) {
	rec := &entity.StockRecord{ItemID: itemID, LocationID: locationID}
	var updated string
	err := r.q.QueryRowContext(ctx,
		`SELECT quantity, updated_at FROM stock_records WHERE item_id = ? AND location_id = ?`,
		itemID, locationID,
	).Scan(&rec.Quantity, &updated)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return rec, nil
		}
		return nil, fmt.Errorf("get stock: %w", err)
	}
	if rec.UpdatedAt, err = parseTime(updated); err != nil {
		return nil, fmt.Errorf("parse stock updated_at: %w", err)
	}
	return rec, nil
}

// GetForUpdate equivale a Get: la transacción IMMEDIATE ya tiene el bloqueo de escritura.
func (r *StockRepo) GetForUpdate(ctx context.Context, itemID, locationID string) (*entity.StockRecord, error) {
	return r.Get(ctx, itemID, locationID)
}

// Adjust suma delta y devuelve la nueva cantidad.
func (r *StockRepo) Adjust(ctx context.Context, itemID, locationID string, delta int64) (int64, error) {
	rec, err := r.Get(ctx, itemID, locationID)
	if err != nil {
		return 0, err
	}
	if entity.QuantityOverflows(rec.Quantity, delta) {
		return rec.Quantity, domain.Invalid("quantity", "excede el máximo")
	}
	next := rec.Quantity + delta
	if next < 0 {
		return rec.Quantity, &domain.InsufficientStockError{
			ItemID:     itemID,
			LocationID: locationID,
			Available:  rec.Quantity,
			Requested:  -delta,
		}
	}
	_, err = r.q.ExecContext(ctx, `
		INSERT INTO stock_records (item_id, location_id, quantity, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (item_id, location_id) DO UPDATE
		SET quantity = excluded.quantity, updated_at = excluded.updated_at`,
		itemID, locationID, next, formatTime(time.Now()),
	)
	if err != nil {
		switch {
		case isCheckViolation(err):
			return rec.Quantity, &domain.InsufficientStockError{
				ItemID: itemID, LocationID: locationID, Available: rec.Quantity, Requested: -delta,
			}
		case isForeignKeyViolation(err):
			return 0, domain.NotFound("item/location", itemID+"@"+locationID)
		}
		return 0, fmt.Errorf("adjust stock: %w", err)
	}
	return next, nil
}

// ListByItem lista los registros del ítem ordenados por ubicación.
func (r *StockRepo) ListByItem(ctx context.Context, itemID string) ([]*entity.StockRecord, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT location_id, quantity, updated_at FROM stock_records WHERE item_id = ? ORDER BY location_id`,
		itemID,
	)
	if err != nil {
		return nil, fmt.Errorf("list stock: %w", err)
	}
	defer rows.Close()
	var list []*entity.StockRecord
	for rows.Next() {
		rec := &entity.StockRecord{ItemID: itemID}
		var updated string
		if err := rows.Scan(&rec.LocationID, &rec.Quantity, &updated); err != nil {
			return nil, fmt.Errorf("scan stock: %w", err)
		}
		if rec.UpdatedAt, err = parseTime(updated); err != nil {
			return nil, fmt.Errorf("parse stock updated_at: %w", err)
		}
		list = append(list, rec)
	}
	return list, rows.Err()
}
