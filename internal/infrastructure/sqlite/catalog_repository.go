package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var (
	_ repository.ItemRepository     = (*ItemRepo)(nil)
	_ repository.LocationRepository = (*LocationRepo)(nil)
)

// ItemRepo catálogo de ítems sobre SQLite.
type ItemRepo struct {
	q querier
}

const itemColumns = `id, company_id, sku, name, barcode, created_at, updated_at`

func (r *ItemRepo) Create(ctx context.Context, it *entity.Item) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO items (`+itemColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		it.ID, it.CompanyID, it.SKU, it.Name, it.Barcode, formatTime(it.CreatedAt), formatTime(it.UpdatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert item: %w", err)
	}
	return nil
}

func (r *ItemRepo) GetByID(ctx context.Context, id string) (*entity.Item, error) {
	return r.getOne(ctx, `SELECT `+itemColumns+` FROM items WHERE id = ?`, id)
}

func (r *ItemRepo) GetBySKU(ctx context.Context, sku string) (*entity.Item, error) {
	return r.getOne(ctx, `SELECT `+itemColumns+` FROM items WHERE sku = ?`, sku)
}

func (r *ItemRepo) getOne(ctx context.Context, query, arg string) (*entity.Item, error) {
	it, err := scanItem(r.q.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get item: %w", err)
	}
	return it, nil
}

func (r *ItemRepo) List(ctx context.Context, limit, offset int) ([]*entity.Item, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT `+itemColumns+` FROM items ORDER BY sku LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()
	var list []*entity.Item
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		list = append(list, it)
	}
	return list, rows.Err()
}

func scanItem(s scanner) (*entity.Item, error) {
	var it entity.Item
	var created, updated string
	if err := s.Scan(&it.ID, &it.CompanyID, &it.SKU, &it.Name, &it.Barcode, &created, &updated); err != nil {
		return nil, err
	}
	var err error
	if it.CreatedAt, err = parseTime(created); err != nil {
		return nil, err
	}
	if it.UpdatedAt, err = parseTime(updated); err != nil {
		return nil, err
	}
	return &it, nil
}

// LocationRepo catálogo de ubicaciones sobre SQLite.
type LocationRepo struct {
	q querier
}

const locationColumns = `id, label, aisle, bay, height, type, created_at`

func (r *LocationRepo) Create(ctx context.Context, l *entity.Location) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO locations (`+locationColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		l.ID, l.Label, l.Aisle, l.Bay, l.Height, l.Type, formatTime(l.CreatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert location: %w", err)
	}
	return nil
}

func (r *LocationRepo) GetByID(ctx context.Context, id string) (*entity.Location, error) {
	return r.getOne(ctx, `SELECT `+locationColumns+` FROM locations WHERE id = ?`, id)
}

func (r *LocationRepo) GetByLabel(ctx context.Context, label string) (*entity.Location, error) {
	return r.getOne(ctx, `SELECT `+locationColumns+` FROM locations WHERE label = ?`, label)
}

func (r *LocationRepo) getOne(ctx context.Context, query, arg string) (*entity.Location, error) {
	l, err := scanLocation(r.q.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get location: %w", err)
	}
	return l, nil
}

func (r *LocationRepo) List(ctx context.Context, limit, offset int) ([]*entity.Location, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT `+locationColumns+` FROM locations ORDER BY label LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list locations: %w", err)
	}
	defer rows.Close()
	var list []*entity.Location
	for rows.Next() {
		l, err := scanLocation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan location: %w", err)
		}
		list = append(list, l)
	}
	return list, rows.Err()
}

func scanLocation(s scanner) (*entity.Location, error) {
	var l entity.Location
	var created string
	if err := s.Scan(&l.ID, &l.Label, &l.Aisle, &l.Bay, &l.Height, &l.Type, &created); err != nil {
		return nil, err
	}
	var err error
	if l.CreatedAt, err = parseTime(created); err != nil {
		return nil, err
	}
	return &l, nil
}
