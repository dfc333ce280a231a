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

var _ repository.TransactionRepository = (*TransactionRepo)(nil)

const transactionColumns = `id, kind, quantity, item_id, source_location_id, destination_location_id,
	status, created_at, created_by, undone_at, undone_by, redone_at, redone_by`

// TransactionRepo implementación del Transaction Log sobre PostgreSQL (usable con pool o tx).
type TransactionRepo struct {
	q Querier
}

// NewTransactionRepository construye el adaptador. Pasar pool o tx (Querier).
func NewTransactionRepository(q Querier) *TransactionRepo {
	return &TransactionRepo{q: q}
}

// Create persiste una transacción del log.
func (r *TransactionRepo) Create(ctx context.Context, tx *entity.Transaction) error {
	query := `
		INSERT INTO ledger_transactions (` + transactionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err := r.q.Exec(ctx, query,
		tx.ID, string(tx.Kind), tx.Quantity, tx.ItemID, tx.SourceLocationID, tx.DestinationLocationID,
		string(tx.Status), tx.CreatedAt, nullable(tx.CreatedBy), tx.UndoneAt, tx.UndoneBy, tx.RedoneAt, tx.RedoneBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("create transaction: %w", err)
	}
	return nil
}

// GetByID obtiene una transacción por ID (nil si no existe).
func (r *TransactionRepo) GetByID(ctx context.Context, id string) (*entity.Transaction, error) {
	return r.get(ctx, id, false)
}

// GetForUpdate obtiene la transacción y bloquea su fila (SELECT FOR UPDATE).
func (r *TransactionRepo) GetForUpdate(ctx context.Context, id string) (*entity.Transaction, error) {
	return r.get(ctx, id, true)
}

func (r *TransactionRepo) get(ctx context.Context, id string, forUpdate bool) (*entity.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM ledger_transactions WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	tx, err := scanTransaction(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get transaction: %w", err)
	}
	return tx, nil
}

// UpdateStatus persiste estado y metadatos de undo/redo.
func (r *TransactionRepo) UpdateStatus(ctx context.Context, tx *entity.Transaction) error {
	query := `
		UPDATE ledger_transactions
		SET status = $2, undone_at = $3, undone_by = $4, redone_at = $5, redone_by = $6
		WHERE id = $1`
	cmd, err := r.q.Exec(ctx, query,
		tx.ID, string(tx.Status), tx.UndoneAt, tx.UndoneBy, tx.RedoneAt, tx.RedoneBy,
	)
	if err != nil {
		return fmt.Errorf("update transaction status: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.NotFound("transaction", tx.ID)
	}
	return nil
}

// List lista transacciones con filtros opcionales, ordenadas por created_at.
func (r *TransactionRepo) List(ctx context.Context, f repository.TransactionFilter) ([]*entity.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM ledger_transactions WHERE 1=1`
	args := []any{}
	pos := 1
	if f.ItemID != "" {
		query += fmt.Sprintf(" AND item_id = $%d", pos)
		args = append(args, f.ItemID)
		pos++
	}
	if f.LocationID != "" {
		query += fmt.Sprintf(" AND (source_location_id = $%d OR destination_location_id = $%d)", pos, pos)
		args = append(args, f.LocationID)
		pos++
	}
	if f.Kind != "" {
		query += fmt.Sprintf(" AND kind = $%d", pos)
		args = append(args, string(f.Kind))
		pos++
	}
	if f.Status != "" {
		query += fmt.Sprintf(" AND status = $%d", pos)
		args = append(args, string(f.Status))
		pos++
	}
	if f.From != nil {
		query += fmt.Sprintf(" AND created_at >= $%d", pos)
		args = append(args, *f.From)
		pos++
	}
	if f.To != nil {
		query += fmt.Sprintf(" AND created_at <= $%d", pos)
		args = append(args, *f.To)
		pos++
	}
	if f.Ascending {
		query += " ORDER BY created_at ASC, seq ASC"
	} else {
		query += " ORDER BY created_at DESC, seq DESC"
	}
	query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, f.Limit, f.Offset)

	rows, err := r.q.Query(ctx, query, args...)
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

func scanTransaction(row pgx.Row) (*entity.Transaction, error) {
	var t entity.Transaction
	var kind, status string
	var createdBy *string
	if err := row.Scan(
		&t.ID, &kind, &t.Quantity, &t.ItemID, &t.SourceLocationID, &t.DestinationLocationID,
		&status, &t.CreatedAt, &createdBy, &t.UndoneAt, &t.UndoneBy, &t.RedoneAt, &t.RedoneBy,
	); err != nil {
		return nil, err
	}
	t.Kind = entity.TransactionKind(kind)
	t.Status = entity.TransactionStatus(status)
	if createdBy != nil {
		t.CreatedBy = *createdBy
	}
	return &t, nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
