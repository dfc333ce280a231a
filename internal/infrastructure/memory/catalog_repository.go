package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var (
	_ repository.ItemRepository     = (*ItemRepo)(nil)
	_ repository.LocationRepository = (*LocationRepo)(nil)
)

// ItemRepo catálogo de ítems en memoria.
type ItemRepo struct {
	s *Store
}

// Items devuelve el repositorio de ítems del store.
func (s *Store) Items() *ItemRepo { return &ItemRepo{s: s} }

func (r *ItemRepo) Create(_ context.Context, item *entity.Item) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.items[item.ID]; ok {
		return domain.ErrDuplicate
	}
	for _, it := range r.s.items {
		if it.SKU == item.SKU {
			return domain.ErrDuplicate
		}
	}
	c := *item
	r.s.items[item.ID] = &c
	return nil
}

func (r *ItemRepo) GetByID(_ context.Context, id string) (*entity.Item, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	it, ok := r.s.items[id]
	if !ok {
		return nil, nil
	}
	c := *it
	return &c, nil
}

func (r *ItemRepo) GetBySKU(_ context.Context, sku string) (*entity.Item, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, it := range r.s.items {
		if it.SKU == sku {
			c := *it
			return &c, nil
		}
	}
	return nil, nil
}

func (r *ItemRepo) List(_ context.Context, limit, offset int) ([]*entity.Item, error) {
	r.s.mu.RLock()
	list := make([]*entity.Item, 0, len(r.s.items))
	for _, it := range r.s.items {
		c := *it
		list = append(list, &c)
	}
	r.s.mu.RUnlock()
	sort.Slice(list, func(i, j int) bool { return list[i].SKU < list[j].SKU })
	return page(list, limit, offset), nil
}

// LocationRepo catálogo de ubicaciones en memoria.
type LocationRepo struct {
	s *Store
}

// Locations devuelve el repositorio de ubicaciones del store.
func (s *Store) Locations() *LocationRepo { return &LocationRepo{s: s} }

func (r *LocationRepo) Create(_ context.Context, loc *entity.Location) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.locations[loc.ID]; ok {
		return domain.ErrDuplicate
	}
	for _, l := range r.s.locations {
		if l.Label == loc.Label {
			return domain.ErrDuplicate
		}
	}
	c := *loc
	r.s.locations[loc.ID] = &c
	return nil
}

func (r *LocationRepo) GetByID(_ context.Context, id string) (*entity.Location, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	l, ok := r.s.locations[id]
	if !ok {
		return nil, nil
	}
	c := *l
	return &c, nil
}

func (r *LocationRepo) GetByLabel(_ context.Context, label string) (*entity.Location, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, l := range r.s.locations {
		if l.Label == label {
			c := *l
			return &c, nil
		}
	}
	return nil, nil
}

func (r *LocationRepo) List(_ context.Context, limit, offset int) ([]*entity.Location, error) {
	r.s.mu.RLock()
	list := make([]*entity.Location, 0, len(r.s.locations))
	for _, l := range r.s.locations {
		c := *l
		list = append(list, &c)
	}
	r.s.mu.RUnlock()
	sort.Slice(list, func(i, j int) bool { return list[i].Label < list[j].Label })
	return page(list, limit, offset), nil
}

func page[T any](list []T, limit, offset int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(list) {
		return []T{}
	}
	list = list[offset:]
	if limit > 0 && limit < len(list) {
		list = list[:limit]
	}
	return list
}
