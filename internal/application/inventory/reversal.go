package inventory

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// ReversalEngine deshace y rehace transacciones. Las precondiciones se validan siempre contra
// el stock actual, nunca contra el stock del momento en que se creó la transacción.
type ReversalEngine struct {
	txRunner TxRunner
	log      zerolog.Logger
	obs      Observer
	now      func() time.Time
}

// NewReversalEngine construye el caso de uso. log se usa tal cual; obs puede ser nil.
func NewReversalEngine(txRunner TxRunner, log zerolog.Logger, obs Observer) *ReversalEngine {
	if obs == nil {
		obs = nopObserver{}
	}
	return &ReversalEngine{
		txRunner: txRunner,
		log:      log,
		obs:      obs,
		now:      time.Now,
	}
}

// Undo revierte el efecto de una transacción COMPLETED o REDONE y la pasa a UNDONE.
func (uc *ReversalEngine) Undo(ctx context.Context, transactionID, actorID string) (*entity.Transaction, error) {
	return uc.transition(ctx, transactionID, actorID, entity.StatusUndone)
}

// Redo vuelve a aplicar el efecto de una transacción UNDONE y la pasa a REDONE.
func (uc *ReversalEngine) Redo(ctx context.Context, transactionID, actorID string) (*entity.Transaction, error) {
	return uc.transition(ctx, transactionID, actorID, entity.StatusRedone)
}

func (uc *ReversalEngine) transition(ctx context.Context, id, actor string, to entity.TransactionStatus) (*entity.Transaction, error) {
	op := domain.OpUndo
	if to == entity.StatusRedone {
		op = domain.OpRedo
	}
	start := time.Now()
	var kind entity.TransactionKind

	tx, err := uc.run(ctx, id, actor, to, op, &kind)
	uc.obs.Observe(op, kind, err, time.Since(start))
	if err != nil {
		uc.log.Debug().Err(err).Str("transaction_id", id).Str("op", op).Msg("transición rechazada")
		return nil, err
	}
	uc.log.Info().
		Str("transaction_id", tx.ID).
		Str("kind", string(tx.Kind)).
		Str("status", string(tx.Status)).
		Str("actor", actor).
		Msg("transición aplicada")
	return tx, nil
}

func (uc *ReversalEngine) run(
	ctx context.Context,
	id, actor string,
	to entity.TransactionStatus,
	op string,
	kind *entity.TransactionKind,
) (*entity.Transaction, error) {
	if id == "" {
		return nil, domain.Invalid("transaction_id", "requerido")
	}
	if actor == "" {
		return nil, domain.Invalid("actor_id", "requerido para "+op)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var result *entity.Transaction
	runCtx := context.WithoutCancel(ctx)
	err := uc.txRunner.Run(runCtx, func(
		stockRepo repository.StockRepository,
		txRepo repository.TransactionRepository,
	) error {
		// La fila de la transacción se bloquea antes que cualquier clave de stock.
		tx, err := txRepo.GetForUpdate(runCtx, id)
		if err != nil {
			return err
		}
		if tx == nil {
			return domain.NotFound("transaction", id)
		}
		*kind = tx.Kind
		if err := guardTransition(tx, to); err != nil {
			return err
		}
		cmd, err := commandFromTransaction(tx)
		if err != nil {
			return err
		}
		deltas, err := forwardDeltas(cmd)
		if err != nil {
			return err
		}
		if to == entity.StatusUndone {
			deltas = inverseDeltas(deltas)
		}
		if err := lockAndApply(runCtx, stockRepo, deltas, op); err != nil {
			return err
		}

		now := uc.now().UTC()
		if to == entity.StatusUndone {
			tx.MarkUndone(now, actor)
		} else {
			tx.MarkRedone(now, actor)
		}
		if err := txRepo.UpdateStatus(runCtx, tx); err != nil {
			return err
		}
		result = tx
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// guardTransition rechaza los pasos ilegales de la máquina de estados.
func guardTransition(tx *entity.Transaction, to entity.TransactionStatus) error {
	if tx.Status.CanTransition(to) {
		return nil
	}
	return &domain.AlreadyInStateError{
		TransactionID: tx.ID,
		Current:       string(tx.Status),
		Requested:     string(to),
	}
}
