// Package sqlite implementa los puertos de persistencia sobre SQLite (DB_DRIVER=sqlite).
//
// SQLite admite un solo escritor: el pool se limita a una conexión y cada unidad de trabajo
// abre la transacción con BEGIN IMMEDIATE, de modo que las unidades de trabajo quedan
// serializadas y GetForUpdate no necesita bloqueo de fila.
package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

//go:embed schema.sql
var schema string

var _ inventory.TxRunner = (*Store)(nil)

// querier lo implementan *sql.DB y *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store base SQLite con esquema migrado.
type Store struct {
	db *sql.DB
}

// New abre (o crea) la base en path y migra el esquema. ":memory:" sirve para tests.
func New(path string) (*Store, error) {
	dsn := fmt.Sprintf("file:%s?_foreign_keys=on&_journal_mode=WAL&_busy_timeout=5000&_txlock=immediate", path)
	if path == ":memory:" {
		dsn = "file::memory:?_foreign_keys=on&_txlock=immediate"
	}
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate sqlite: %w", err)
	}
	return &Store{db: db}, nil
}

// Close cierra la base.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping verifica la conexión (health check).
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Run ejecuta fn dentro de una transacción IMMEDIATE.
func (s *Store) Run(ctx context.Context, fn func(
	stockRepo repository.StockRepository,
	txRepo repository.TransactionRepository,
) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.CommitFailure("begin transaction", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(&StockRepo{q: tx}, &TransactionRepo{q: tx}); err != nil {
		if isBusy(err) {
			return domain.CommitFailure("execute transaction", err)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return domain.CommitFailure("commit transaction", err)
	}
	return nil
}

// StockRepository repositorio de stock fuera de tx (lecturas).
func (s *Store) StockRepository() *StockRepo { return &StockRepo{q: s.db} }

// TransactionRepository repositorio del log fuera de tx (lecturas).
func (s *Store) TransactionRepository() *TransactionRepo { return &TransactionRepo{q: s.db} }

// Items repositorio de ítems.
func (s *Store) Items() *ItemRepo { return &ItemRepo{q: s.db} }

// Locations repositorio de ubicaciones.
func (s *Store) Locations() *LocationRepo { return &LocationRepo{q: s.db} }

func sqliteCode(err error) sqlite3.ErrNoExtended {
	var se sqlite3.Error
	if errors.As(err, &se) {
		return se.ExtendedCode
	}
	return 0
}

func isUniqueViolation(err error) bool {
	c := sqliteCode(err)
	return c == sqlite3.ErrConstraintUnique || c == sqlite3.ErrConstraintPrimaryKey
}

func isCheckViolation(err error) bool {
	return sqliteCode(err) == sqlite3.ErrConstraintCheck
}

func isForeignKeyViolation(err error) bool {
	return sqliteCode(err) == sqlite3.ErrConstraintForeignKey
}

func isBusy(err error) bool {
	var se sqlite3.Error
	if errors.As(err, &se) {
		return se.Code == sqlite3.ErrBusy || se.Code == sqlite3.ErrLocked
	}
	return false
}

// timeLayout ancho fijo en UTC: el orden lexicográfico coincide con el cronológico.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string { return t.UTC().Format(timeLayout) }

func parseTime(s string) (time.Time, error) { return time.Parse(timeLayout, s) }

func formatTimePtr(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: formatTime(*t), Valid: true}
}

func parseTimePtr(ns sql.NullString) (*time.Time, error) {
	if !ns.Valid {
		return nil, nil
	}
	t, err := parseTime(ns.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	v := ns.String
	return &v
}
