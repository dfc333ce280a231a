package dto

import "time"

// AddStockRequest body para POST /api/stock/add.
type AddStockRequest struct {
	ItemID                string `json:"item_id" validate:"required"`
	DestinationLocationID string `json:"destination_location_id" validate:"required"`
	Quantity              int64  `json:"quantity" validate:"gt=0"`
}

// RemoveLine línea de stock a retirar.
type RemoveLine struct {
	ItemID           string `json:"item_id" validate:"required"`
	SourceLocationID string `json:"source_location_id" validate:"required"`
	Quantity         int64  `json:"quantity" validate:"gt=0"`
}

// RemoveStockRequest body para POST /api/stock/remove. Con Items se retiran varias líneas
// en una sola operación atómica; sin Items se usan los campos de la línea única.
type RemoveStockRequest struct {
	ItemID           string       `json:"item_id,omitempty"`
	SourceLocationID string       `json:"source_location_id,omitempty"`
	Quantity         int64        `json:"quantity,omitempty"`
	Items            []RemoveLine `json:"items,omitempty" validate:"omitempty,max=500,dive"`
}

// Lines devuelve las líneas a retirar (Items o la línea única).
func (r RemoveStockRequest) Lines() []RemoveLine {
	if len(r.Items) > 0 {
		return r.Items
	}
	return []RemoveLine{{ItemID: r.ItemID, SourceLocationID: r.SourceLocationID, Quantity: r.Quantity}}
}

// MoveStockRequest body para POST /api/stock/move.
type MoveStockRequest struct {
	ItemID                string `json:"item_id" validate:"required"`
	SourceLocationID      string `json:"source_location_id" validate:"required"`
	DestinationLocationID string `json:"destination_location_id" validate:"required,nefield=SourceLocationID"`
	Quantity              int64  `json:"quantity" validate:"gt=0"`
}

// BatchLine mutación dentro de un lote. Los campos de ubicación requeridos dependen de Kind.
type BatchLine struct {
	Kind                  string `json:"kind" validate:"required,oneof=ADD REMOVE MOVE"`
	ItemID                string `json:"item_id" validate:"required"`
	SourceLocationID      string `json:"source_location_id,omitempty"`
	DestinationLocationID string `json:"destination_location_id,omitempty"`
	Quantity              int64  `json:"quantity" validate:"gt=0"`
}

// BatchRequest body para POST /api/stock/batch.
type BatchRequest struct {
	Items []BatchLine `json:"items" validate:"required,min=1,max=500,dive"`
}

// TransactionResponse salida de una transacción del log.
type TransactionResponse struct {
	ID                    string     `json:"id"`
	Kind                  string     `json:"kind"`
	Quantity              int64      `json:"quantity"`
	ItemID                string     `json:"item_id"`
	SourceLocationID      *string    `json:"source_location_id,omitempty"`
	DestinationLocationID *string    `json:"destination_location_id,omitempty"`
	Status                string     `json:"status"`
	CreatedAt             time.Time  `json:"created_at"`
	CreatedBy             string     `json:"created_by,omitempty"`
	UndoneAt              *time.Time `json:"undone_at,omitempty"`
	UndoneBy              *string    `json:"undone_by,omitempty"`
	RedoneAt              *time.Time `json:"redone_at,omitempty"`
	RedoneBy              *string    `json:"redone_by,omitempty"`
}

// BatchResponse transacciones creadas por un lote, en el orden de las líneas.
type BatchResponse struct {
	Transactions []TransactionResponse `json:"transactions"`
}

// HistoryEntryResponse transacción con datos de catálogo para el historial.
type HistoryEntryResponse struct {
	TransactionResponse
	ItemSKU          string `json:"item_sku,omitempty"`
	ItemName         string `json:"item_name,omitempty"`
	SourceLabel      string `json:"source_label,omitempty"`
	DestinationLabel string `json:"destination_label,omitempty"`
}

// HistoryListResponse lista paginada del historial.
type HistoryListResponse struct {
	Items []HistoryEntryResponse `json:"items"`
	Page  PageResponse           `json:"page"`
}

// StockQuantityResponse cantidad actual de un ítem en una ubicación.
type StockQuantityResponse struct {
	ItemID     string `json:"item_id"`
	LocationID string `json:"location_id"`
	Quantity   int64  `json:"quantity"`
}

// StockByItemResponse registros de stock de un ítem.
type StockByItemResponse struct {
	ItemID  string                  `json:"item_id"`
	Records []StockQuantityResponse `json:"records"`
	Total   int64                   `json:"total"`
}
