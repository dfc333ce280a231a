package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ repository.TransactionRepository = (*TransactionRepo)(nil)

const transactionColumns = `id, kind, quantity, item_id, source_location_id, destination_location_id,
	status, created_at, created_by, undone_at, undone_by, redone_at, redone_by`

// TransactionRepo Transaction Log sobre SQLite.
type TransactionRepo struct {
	q querier
}

func (r *TransactionRepo) Create(ctx context.Context, tx *entity.Transaction) error {
	var createdBy sql.NullString
	if tx.CreatedBy != "" {
		createdBy = sql.NullString{String: tx.CreatedBy, Valid: true}
	}
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO ledger_transactions (`+transactionColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		tx.ID, string(tx.Kind), tx.Quantity, tx.ItemID,
		nullString(tx.SourceLocationID), nullString(tx.DestinationLocationID),
		string(tx.Status), formatTime(tx.CreatedAt), createdBy,
		formatTimePtr(tx.UndoneAt), nullString(tx.UndoneBy),
		formatTimePtr(tx.RedoneAt), nullString(tx.RedoneBy),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("create transaction: %w", err)
	}
	return nil
}

func (r *TransactionRepo) GetByID(ctx context.Context, id string) (*entity.Transaction, error) {
	row := r.q.QueryRowContext(ctx, `SELECT `+transactionColumns+` FROM ledger_transactions WHERE id = ?`, id)
	tx, err := scanTransaction(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get transaction: %w", err)
	}
	return tx, nil
}

// GetForUpdate equivale a GetByID dentro de la transacción IMMEDIATE.
func (r *TransactionRepo) GetForUpdate(ctx context.Context, id string) (*entity.Transaction, error) {
	return r.GetByID(ctx, id)
}

func (r *TransactionRepo) UpdateStatus(ctx context.Context, tx *entity.Transaction) error {
	res, err := r.q.ExecContext(ctx, `
		UPDATE ledger_transactions
		SET status = ?, undone_at = ?, undone_by = ?, redone_at = ?, redone_by = ?
		WHERE id = ?`,
		string(tx.Status), formatTimePtr(tx.UndoneAt), nullString(tx.UndoneBy),
		formatTimePtr(tx.RedoneAt), nullString(tx.RedoneBy), tx.ID,
	)
	if err != nil {
		return fmt.Errorf("update transaction status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.NotFound("transaction", tx.ID)
	}
	return nil
}

func (r *TransactionRepo) List(ctx context.Context, f repository.TransactionFilter) ([]*entity.Transaction, error) {
	var where []string
	var args []any
	if f.ItemID != "" {
		where = append(where, "item_id = ?")
		args = append(args, f.ItemID)
	}
	if f.LocationID != "" {
		where = append(where, "(source_location_id = ? OR destination_location_id = ?)")
		args = append(args, f.LocationID, f.LocationID)
	}
	if f.Kind != "" {
		where = append(where, "kind = ?")
		args = append(args, string(f.Kind))
	}
	if f.Status != "" {
		where = append(where, "status = ?")
		args = append(args, string(f.Status))
	}
	if f.From != nil {
		where = append(where, "created_at >= ?")
		args = append(args, formatTime(*f.From))
	}
	if f.To != nil {
		where = append(where, "created_at <= ?")
		args = append(args, formatTime(*f.To))
	}
	query := `SELECT ` + transactionColumns + ` FROM ledger_transactions`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	if f.Ascending {
		query += " ORDER BY created_at ASC, seq ASC"
	} else {
		query += " ORDER BY created_at DESC, seq DESC"
	}
	limit := f.Limit
	if limit <= 0 {
		limit = -1
	}
	query += " LIMIT ? OFFSET ?"
	args = append(args, limit, f.Offset)

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()
	var list []*entity.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		list = append(list, tx)
	}
	return list, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTransaction(s scanner) (*entity.Transaction, error) {
	var (
		t                                      entity.Transaction
		kind, status, created                  string
		source, dest, createdBy                sql.NullString
		undoneAt, undoneBy, redoneAt, redoneBy sql.NullString
	)
	if err := s.Scan(&t.ID, &kind, &t.Quantity, &t.ItemID, &source, &dest,
		&status, &created, &createdBy, &undoneAt, &undoneBy, &redoneAt, &redoneBy); err != nil {
		return nil, err
	}
	var err error
	t.Kind = entity.TransactionKind(kind)
	t.Status = entity.TransactionStatus(status)
	t.SourceLocationID = stringPtr(source)
	t.DestinationLocationID = stringPtr(dest)
	t.CreatedBy = createdBy.String
	t.UndoneBy = stringPtr(undoneBy)
	t.RedoneBy = stringPtr(redoneBy)
	if t.CreatedAt, err = parseTime(created); err != nil {
		return nil, err
	}
	if t.UndoneAt, err = parseTimePtr(undoneAt); err != nil {
		return nil, err
	}
	if t.RedoneAt, err = parseTimePtr(redoneAt); err != nil {
		return nil, err
	}
	return &t, nil
}
