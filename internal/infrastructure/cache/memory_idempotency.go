// Package cache implementa el almacén de claves de idempotencia (Redis y memoria).
package cache

import (
	"context"
	"sync"
	"time"

	"github.com/jhoicas/stock-ledger/internal/application/ports"
)

var _ ports.IdempotencyStore = (*MemoryIdempotency)(nil)

type memEntry struct {
	resp    ports.StoredResponse
	expires time.Time
}

// MemoryIdempotency claves en memoria del proceso. Para DB_DRIVER=memory y tests.
type MemoryIdempotency struct {
	mu      sync.Mutex
	entries map[string]memEntry
	now     func() time.Time
}

// NewMemoryIdempotency crea un almacén vacío.
func NewMemoryIdempotency() *MemoryIdempotency {
	return &MemoryIdempotency{entries: make(map[string]memEntry), now: time.Now}
}

func (m *MemoryIdempotency) Reserve(_ context.Context, key string, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.live(key); ok {
		return false, nil
	}
	m.entries[key] = memEntry{resp: ports.StoredResponse{Pending: true}, expires: m.now().Add(ttl)}
	return true, nil
}

func (m *MemoryIdempotency) Complete(_ context.Context, key string, resp ports.StoredResponse, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	resp.Pending = false
	m.entries[key] = memEntry{resp: resp, expires: m.now().Add(ttl)}
	return nil
}

func (m *MemoryIdempotency) Get(_ context.Context, key string) (*ports.StoredResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.live(key)
	if !ok {
		return nil, nil
	}
	resp := e.resp
	return &resp, nil
}

func (m *MemoryIdempotency) Release(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	return nil
}

// live devuelve la entrada si no expiró. Requiere m.mu.
func (m *MemoryIdempotency) live(key string) (memEntry, bool) {
	e, ok := m.entries[key]
	if !ok {
		return memEntry{}, false
	}
	if !e.expires.IsZero() && m.now().After(e.expires) {
		delete(m.entries, key)
		return memEntry{}, false
	}
	return e, true
}
