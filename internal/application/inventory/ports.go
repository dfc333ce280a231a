package inventory

import (
	"context"
	"time"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una unidad de trabajo atómica, pasando repositorios
// atados a ella. Si fn devuelve error se descarta todo; si no, se confirma stock y log juntos.
// Los fallos de inicio o confirmación se devuelven envueltos en domain.ErrCommitFailure.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		stockRepo repository.StockRepository,
		txRepo repository.TransactionRepository,
	) error) error
}

// Observer recibe el resultado de cada operación del motor (métricas).
type Observer interface {
	Observe(op string, kind entity.TransactionKind, err error, elapsed time.Duration)
}

type nopObserver struct{}

func (nopObserver) Observe(string, entity.TransactionKind, error, time.Duration) {}
