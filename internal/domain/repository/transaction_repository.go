package repository

import (
	"context"
	"time"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// TransactionFilter filtros para el historial (todos opcionales).
type TransactionFilter struct {
	ItemID     string
	LocationID string // coincide con origen o destino
	Kind       entity.TransactionKind
	Status     entity.TransactionStatus
	From       *time.Time
	To         *time.Time
	Ascending  bool // por defecto createdAt DESC
	Limit      int
	Offset     int
}

// TransactionRepository define el puerto del Transaction Log (alta y actualización de estado).
// No existe Delete: una transacción nunca se elimina.
type TransactionRepository interface {
	Create(ctx context.Context, tx *entity.Transaction) error
	// GetByID devuelve nil, nil si no existe.
	GetByID(ctx context.Context, id string) (*entity.Transaction, error)
	// GetForUpdate bloquea la fila hasta el fin de la unidad de trabajo; nil, nil si no existe.
	GetForUpdate(ctx context.Context, id string) (*entity.Transaction, error)
	// UpdateStatus persiste Status y metadatos de undo/redo. Los demás campos son inmutables.
	UpdateStatus(ctx context.Context, tx *entity.Transaction) error
	List(ctx context.Context, filter TransactionFilter) ([]*entity.Transaction, error)
}
