package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// MutationExecutor aplica ADD, REMOVE y MOVE de forma transaccional: bloquea las claves de
// stock, valida precondiciones contra el stock actual y registra la transacción COMPLETED
// en la misma unidad de trabajo.
type MutationExecutor struct {
	txRunner     TxRunner
	itemRepo     repository.ItemRepository
	locationRepo repository.LocationRepository
	log          zerolog.Logger
	obs          Observer
	now          func() time.Time
}

// NewMutationExecutor construye el caso de uso. log llega ya con sus campos de componente;
// obs puede ser nil.
func NewMutationExecutor(
	txRunner TxRunner,
	itemRepo repository.ItemRepository,
	locationRepo repository.LocationRepository,
	log zerolog.Logger,
	obs Observer,
) *MutationExecutor {
	if obs == nil {
		obs = nopObserver{}
	}
	return &MutationExecutor{
		txRunner:     txRunner,
		itemRepo:     itemRepo,
		locationRepo: locationRepo,
		log:          log,
		obs:          obs,
		now:          time.Now,
	}
}

// ApplyAdd suma qty en destinationID.
func (uc *MutationExecutor) ApplyAdd(ctx context.Context, actor, itemID, destinationID string, qty int64) (*entity.Transaction, error) {
	return uc.Apply(ctx, actor, AddCommand{ItemID: itemID, DestinationID: destinationID, Quantity: qty})
}

// ApplyRemove resta qty de sourceID; falla con InsufficientStock si no alcanza.
func (uc *MutationExecutor) ApplyRemove(ctx context.Context, actor, itemID, sourceID string, qty int64) (*entity.Transaction, error) {
	return uc.Apply(ctx, actor, RemoveCommand{ItemID: itemID, SourceID: sourceID, Quantity: qty})
}

// ApplyMove traslada qty de sourceID a destinationID como una sola unidad.
func (uc *MutationExecutor) ApplyMove(ctx context.Context, actor, itemID, sourceID, destinationID string, qty int64) (*entity.Transaction, error) {
	return uc.Apply(ctx, actor, MoveCommand{ItemID: itemID, SourceID: sourceID, DestinationID: destinationID, Quantity: qty})
}

// Apply valida y aplica un comando. Devuelve la transacción creada.
func (uc *MutationExecutor) Apply(ctx context.Context, actor string, cmd Command) (*entity.Transaction, error) {
	start := time.Now()
	txs, err := uc.apply(ctx, actor, []Command{cmd})
	uc.obs.Observe(domain.OpApply, kindOf(cmd), err, time.Since(start))
	if err != nil {
		return nil, err
	}
	return txs[0], nil
}

// ApplyBatch aplica varios comandos en una única unidad de trabajo. Cada comando se valida
// contra el stock resultante de los anteriores; si alguno falla no se persiste nada.
func (uc *MutationExecutor) ApplyBatch(ctx context.Context, actor string, cmds []Command) ([]*entity.Transaction, error) {
	if len(cmds) == 0 {
		return nil, domain.Invalid("items", "el lote no puede estar vacío")
	}
	start := time.Now()
	txs, err := uc.apply(ctx, actor, cmds)
	uc.obs.Observe("apply_batch", "", err, time.Since(start))
	return txs, err
}

func (uc *MutationExecutor) apply(ctx context.Context, actor string, cmds []Command) ([]*entity.Transaction, error) {
	deltas := make([][]stockDelta, len(cmds))
	var all []stockDelta
	for i, cmd := range cmds {
		if cmd == nil {
			return nil, batchErr(len(cmds), i, domain.Invalid("kind", "comando vacío"))
		}
		if err := cmd.Validate(); err != nil {
			return nil, batchErr(len(cmds), i, err)
		}
		d, err := forwardDeltas(cmd)
		if err != nil {
			return nil, batchErr(len(cmds), i, err)
		}
		deltas[i] = d
		all = append(all, d...)
	}
	if err := uc.checkReferences(ctx, cmds); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var created []*entity.Transaction
	// Superada la validación, la unidad de trabajo corre hasta el final o falla entera.
	runCtx := context.WithoutCancel(ctx)
	err := uc.txRunner.Run(runCtx, func(
		stockRepo repository.StockRepository,
		txRepo repository.TransactionRepository,
	) error {
		created = created[:0]
		if err := lockKeys(runCtx, stockRepo, lockOrder(all)); err != nil {
			return err
		}
		now := uc.now().UTC()
		for i, cmd := range cmds {
			if err := applyDeltas(runCtx, stockRepo, deltas[i], domain.OpApply); err != nil {
				return batchErr(len(cmds), i, err)
			}
			tx := newTransaction(uuid.New().String(), cmd, actor, now)
			if err := txRepo.Create(runCtx, tx); err != nil {
				return err
			}
			created = append(created, tx)
		}
		return nil
	})
	if err != nil {
		uc.log.Debug().Err(err).Int("commands", len(cmds)).Msg("mutación rechazada")
		return nil, err
	}
	for _, tx := range created {
		uc.log.Info().
			Str("transaction_id", tx.ID).
			Str("kind", string(tx.Kind)).
			Str("item_id", tx.ItemID).
			Int64("quantity", tx.Quantity).
			Str("actor", actor).
			Msg("mutación de stock aplicada")
	}
	return created, nil
}

// checkReferences verifica que ítems y ubicaciones existan. No se eliminan mientras estén
// referenciados, así que basta con verificarlos fuera de la unidad de trabajo.
func (uc *MutationExecutor) checkReferences(ctx context.Context, cmds []Command) error {
	items := make(map[string]bool)
	locations := make(map[string]bool)
	for _, cmd := range cmds {
		if !items[cmd.Item()] {
			item, err := uc.itemRepo.GetByID(ctx, cmd.Item())
			if err != nil {
				return err
			}
			if item == nil {
				return domain.NotFound("item", cmd.Item())
			}
			items[cmd.Item()] = true
		}
		for _, locID := range locationsOf(cmd) {
			if locations[locID] {
				continue
			}
			loc, err := uc.locationRepo.GetByID(ctx, locID)
			if err != nil {
				return err
			}
			if loc == nil {
				return domain.NotFound("location", locID)
			}
			locations[locID] = true
		}
	}
	return nil
}

func batchErr(size, i int, err error) error {
	if size == 1 {
		return err
	}
	return fmt.Errorf("línea %d del lote: %w", i+1, err)
}

func kindOf(cmd Command) entity.TransactionKind {
	if cmd == nil {
		return ""
	}
	return cmd.Kind()
}
