// Package memory implementa los puertos de persistencia en memoria: Stock Store, Transaction
// Log y catálogo. Sirve para desarrollo (DB_DRIVER=memory) y como backend de los tests.
//
// Cada unidad de trabajo bloquea por clave (stock o transacción) hasta su fin y acumula sus
// escrituras; al confirmar las publica juntas bajo el mutex de datos. Un fallo descarta todo.
package memory

import (
	"context"
	"errors"
	"sync"

	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ inventory.TxRunner = (*Store)(nil)

// Store estado confirmado más la tabla de bloqueos.
type Store struct {
	mu         sync.RWMutex
	stock      map[entity.StockKey]*entity.StockRecord
	txs        map[string]*entity.Transaction
	seq        map[string]int
	nextSeq    int
	items      map[string]*entity.Item
	locations  map[string]*entity.Location
	locks      *lockTable
	failCommit error
}

// New crea un store vacío.
func New() *Store {
	return &Store{
		stock:     make(map[entity.StockKey]*entity.StockRecord),
		txs:       make(map[string]*entity.Transaction),
		seq:       make(map[string]int),
		items:     make(map[string]*entity.Item),
		locations: make(map[string]*entity.Location),
		locks:     newLockTable(),
	}
}

// FailNextCommit hace fallar la próxima confirmación con err (tests de CommitFailure).
func (s *Store) FailNextCommit(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failCommit = err
}

// Run ejecuta fn en una unidad de trabajo. Si fn devuelve error no se publica nada.
func (s *Store) Run(ctx context.Context, fn func(
	stockRepo repository.StockRepository,
	txRepo repository.TransactionRepository,
) error) error {
	if err := ctx.Err(); err != nil {
		return domain.CommitFailure("begin transaction", err)
	}
	u := newUnitOfWork(s)
	defer u.releaseAll()

	if err := fn(&stockRepo{u: u}, &txRepo{u: u}); err != nil {
		return err
	}
	if err := u.commit(); err != nil {
		return domain.CommitFailure("commit transaction", err)
	}
	return nil
}

// StockRepository repositorio fuera de tx: cada llamada es su propia unidad de trabajo.
func (s *Store) StockRepository() repository.StockRepository {
	return &autoStock{s: s}
}

// TransactionRepository repositorio fuera de tx: cada llamada es su propia unidad de trabajo.
func (s *Store) TransactionRepository() repository.TransactionRepository {
	return &autoTx{s: s}
}

// unitOfWork claves retenidas y escrituras pendientes.
type unitOfWork struct {
	s       *Store
	held    map[string]bool
	order   []string
	stock   map[entity.StockKey]int64
	created []*entity.Transaction
	updated map[string]*entity.Transaction
}

func newUnitOfWork(s *Store) *unitOfWork {
	return &unitOfWork{
		s:       s,
		held:    make(map[string]bool),
		stock:   make(map[entity.StockKey]int64),
		updated: make(map[string]*entity.Transaction),
	}
}

func (u *unitOfWork) lock(key string) {
	if u.held[key] {
		return
	}
	u.s.locks.acquire(key)
	u.held[key] = true
	u.order = append(u.order, key)
}

func (u *unitOfWork) releaseAll() {
	for i := len(u.order) - 1; i >= 0; i-- {
		u.s.locks.release(u.order[i])
	}
	u.order = nil
	u.held = map[string]bool{}
}

func (u *unitOfWork) commit() error {
	s := u.s
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failCommit != nil {
		err := s.failCommit
		s.failCommit = nil
		return err
	}
	for _, tx := range u.created {
		if _, ok := s.txs[tx.ID]; ok {
			return errors.New("id de transacción duplicado")
		}
	}
	now := clock()
	for k, q := range u.stock {
		rec, ok := s.stock[k]
		if !ok {
			rec = &entity.StockRecord{ItemID: k.ItemID, LocationID: k.LocationID}
			s.stock[k] = rec
		}
		rec.Quantity = q
		rec.UpdatedAt = now
	}
	for _, tx := range u.created {
		s.txs[tx.ID] = tx
		s.seq[tx.ID] = s.nextSeq
		s.nextSeq++
	}
	for id, tx := range u.updated {
		s.txs[id] = tx
	}
	return nil
}

func stockLockKey(k entity.StockKey) string { return "stock:" + k.String() }
func txLockKey(id string) string          { return "txn:" + id }
