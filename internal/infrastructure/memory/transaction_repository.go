package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ repository.TransactionRepository = (*txRepo)(nil)

// txRepo Transaction Log atado a una unidad de trabajo.
type txRepo struct {
	u *unitOfWork
}

func (r *txRepo) Create(_ context.Context, tx *entity.Transaction) error {
	if tx.ID == "" {
		return domain.Invalid("id", "requerido")
	}
	if existing := r.u.lookup(tx.ID); existing != nil {
		return domain.ErrDuplicate
	}
	r.u.created = append(r.u.created, tx.Clone())
	return nil
}

func (r *txRepo) GetByID(_ context.Context, id string) (*entity.Transaction, error) {
	tx := r.u.lookup(id)
	if tx == nil {
		return nil, nil
	}
	return tx.Clone(), nil
}

func (r *txRepo) GetForUpdate(ctx context.Context, id string) (*entity.Transaction, error) {
	r.u.lock(txLockKey(id))
	return r.GetByID(ctx, id)
}

func (r *txRepo) UpdateStatus(_ context.Context, tx *entity.Transaction) error {
	current := r.u.lookup(tx.ID)
	if current == nil {
		return domain.NotFound("transaction", tx.ID)
	}
	in := tx.Clone()
	next := current.Clone()
	next.Status = in.Status
	next.UndoneAt, next.UndoneBy = in.UndoneAt, in.UndoneBy
	next.RedoneAt, next.RedoneBy = in.RedoneAt, in.RedoneBy
	for i, c := range r.u.created {
		if c.ID == tx.ID {
			r.u.created[i] = next
			return nil
		}
	}
	r.u.updated[tx.ID] = next
	return nil
}

func (r *txRepo) List(_ context.Context, f repository.TransactionFilter) ([]*entity.Transaction, error) {
	s := r.u.s
	s.mu.RLock()
	type row struct {
		tx  *entity.Transaction
		seq int
	}
	rows := make([]row, 0, len(s.txs))
	for id, tx := range s.txs {
		if up, ok := r.u.updated[id]; ok {
			tx = up
		}
		if matches(tx, f) {
			rows = append(rows, row{tx: tx.Clone(), seq: s.seq[id]})
		}
	}
	s.mu.RUnlock()
	for i, tx := range r.u.created {
		if matches(tx, f) {
			rows = append(rows, row{tx: tx.Clone(), seq: s.nextSeq + i})
		}
	}

	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if !a.tx.CreatedAt.Equal(b.tx.CreatedAt) {
			if f.Ascending {
				return a.tx.CreatedAt.Before(b.tx.CreatedAt)
			}
			return a.tx.CreatedAt.After(b.tx.CreatedAt)
		}
		if f.Ascending {
			return a.seq < b.seq
		}
		return a.seq > b.seq
	})

	if f.Offset >= len(rows) {
		return []*entity.Transaction{}, nil
	}
	rows = rows[f.Offset:]
	if f.Limit > 0 && f.Limit < len(rows) {
		rows = rows[:f.Limit]
	}
	out := make([]*entity.Transaction, len(rows))
	for i, rw := range rows {
		out[i] = rw.tx
	}
	return out, nil
}

func matches(tx *entity.Transaction, f repository.TransactionFilter) bool {
	if f.ItemID != "" && tx.ItemID != f.ItemID {
		return false
	}
	if f.LocationID != "" && tx.Source() != f.LocationID && tx.Destination() != f.LocationID {
		return false
	}
	if f.Kind != "" && tx.Kind != f.Kind {
		return false
	}
	if f.Status != "" && tx.Status != f.Status {
		return false
	}
	if f.From != nil && tx.CreatedAt.Before(*f.From) {
		return false
	}
	if f.To != nil && tx.CreatedAt.After(*f.To) {
		return false
	}
	return true
}

// lookup transacción vista por la unidad de trabajo (sin copiar).
func (u *unitOfWork) lookup(id string) *entity.Transaction {
	for _, c := range u.created {
		if c.ID == id {
			return c
		}
	}
	if up, ok := u.updated[id]; ok {
		return up
	}
	u.s.mu.RLock()
	defer u.s.mu.RUnlock()
	return u.s.txs[id]
}

// autoTx Transaction Log sin tx explícita: cada llamada es su propia unidad de trabajo.
type autoTx struct {
	s *Store
}

// Create solo se permite dentro de Run: la transacción nace junto con su efecto de stock.
func (r *autoTx) Create(context.Context, *entity.Transaction) error {
	return errOutsideUnitOfWork
}

func (r *autoTx) GetByID(ctx context.Context, id string) (tx *entity.Transaction, err error) {
	err = r.s.Run(ctx, func(_ repository.StockRepository, txs repository.TransactionRepository) error {
		tx, err = txs.GetByID(ctx, id)
		return err
	})
	return tx, err
}

func (r *autoTx) GetForUpdate(ctx context.Context, id string) (*entity.Transaction, error) {
	return r.GetByID(ctx, id)
}

func (r *autoTx) UpdateStatus(context.Context, *entity.Transaction) error {
	return errOutsideUnitOfWork
}

func (r *autoTx) List(ctx context.Context, f repository.TransactionFilter) (list []*entity.Transaction, err error) {
	err = r.s.Run(ctx, func(_ repository.StockRepository, txs repository.TransactionRepository) error {
		list, err = txs.List(ctx, f)
		return err
	})
	return list, err
}
