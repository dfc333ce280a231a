package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// CatalogUseCase alta y consulta de ítems y ubicaciones. El ledger solo referencia IDs
// existentes; aquí no hay bajas.
type CatalogUseCase struct {
	items     repository.ItemRepository
	locations repository.LocationRepository
	now       func() time.Time
}

// NewCatalogUseCase construye el caso de uso.
func NewCatalogUseCase(items repository.ItemRepository, locations repository.LocationRepository) *CatalogUseCase {
	return &CatalogUseCase{items: items, locations: locations, now: time.Now}
}

// CreateItem crea un ítem. El SKU se normaliza a mayúsculas y debe ser único.
func (uc *CatalogUseCase) CreateItem(ctx context.Context, companyID string, in dto.CreateItemRequest) (*dto.ItemResponse, error) {
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	sku := strings.ToUpper(strings.TrimSpace(in.SKU))
	if sku == "" {
		return nil, domain.Invalid("sku", "requerido")
	}
	existing, err := uc.items.GetBySKU(ctx, sku)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrDuplicate
	}
	now := uc.now().UTC()
	item := &entity.Item{
		ID:        uuid.New().String(),
		CompanyID: companyID,
		SKU:       sku,
		Name:      strings.TrimSpace(in.Name),
		Barcode:   in.Barcode,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.items.Create(ctx, item); err != nil {
		return nil, err
	}
	return toItemResponse(item), nil
}

// GetItem obtiene un ítem por ID.
func (uc *CatalogUseCase) GetItem(ctx context.Context, id string) (*dto.ItemResponse, error) {
	item, err := uc.items.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.NotFound("item", id)
	}
	return toItemResponse(item), nil
}

// ListItems lista ítems con paginación.
func (uc *CatalogUseCase) ListItems(ctx context.Context, page dto.PageRequest) (*dto.ItemListResponse, error) {
	page.DefaultPage()
	list, err := uc.items.List(ctx, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ItemResponse, 0, len(list))
	for _, it := range list {
		out = append(out, *toItemResponse(it))
	}
	return &dto.ItemListResponse{Items: out, Page: dto.PageResponse{Limit: page.Limit, Offset: page.Offset}}, nil
}

// CreateLocation crea una ubicación a partir de su etiqueta "pasillo-módulo-altura".
func (uc *CatalogUseCase) CreateLocation(ctx context.Context, in dto.CreateLocationRequest) (*dto.LocationResponse, error) {
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	aisle, bay, height, ok := entity.ParseLocationLabel(in.Label)
	if !ok {
		return nil, domain.Invalid("label", "formato esperado pasillo-módulo-altura")
	}
	label := entity.FormatLocationLabel(aisle, bay, height)
	locType := in.Type
	if locType == "" {
		locType = entity.LocationTypeStandard
	}
	existing, err := uc.locations.GetByLabel(ctx, label)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrDuplicate
	}
	loc := &entity.Location{
		ID:        uuid.New().String(),
		Label:     label,
		Aisle:     aisle,
		Bay:       bay,
		Height:    height,
		Type:      locType,
		CreatedAt: uc.now().UTC(),
	}
	if err := uc.locations.Create(ctx, loc); err != nil {
		return nil, err
	}
	return toLocationResponse(loc), nil
}

// GetLocation obtiene una ubicación por ID.
func (uc *CatalogUseCase) GetLocation(ctx context.Context, id string) (*dto.LocationResponse, error) {
	loc, err := uc.locations.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if loc == nil {
		return nil, domain.NotFound("location", id)
	}
	return toLocationResponse(loc), nil
}

// ListLocations lista ubicaciones con paginación.
func (uc *CatalogUseCase) ListLocations(ctx context.Context, page dto.PageRequest) (*dto.LocationListResponse, error) {
	page.DefaultPage()
	list, err := uc.locations.List(ctx, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	out := make([]dto.LocationResponse, 0, len(list))
	for _, l := range list {
		out = append(out, *toLocationResponse(l))
	}
	return &dto.LocationListResponse{Items: out, Page: dto.PageResponse{Limit: page.Limit, Offset: page.Offset}}, nil
}

func toItemResponse(it *entity.Item) *dto.ItemResponse {
	return &dto.ItemResponse{
		ID:        it.ID,
		CompanyID: it.CompanyID,
		SKU:       it.SKU,
		Name:      it.Name,
		Barcode:   it.Barcode,
		CreatedAt: it.CreatedAt,
		UpdatedAt: it.UpdatedAt,
	}
}

func toLocationResponse(l *entity.Location) *dto.LocationResponse {
	return &dto.LocationResponse{
		ID:        l.ID,
		Label:     l.Label,
		Aisle:     l.Aisle,
		Bay:       l.Bay,
		Height:    l.Height,
		Type:      l.Type,
		CreatedAt: l.CreatedAt,
	}
}
