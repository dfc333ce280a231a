package dto

import "time"

// CreateItemRequest entrada para crear un ítem.
type CreateItemRequest struct {
	SKU     string `json:"sku" validate:"required,max=64"`
	Name    string `json:"name" validate:"required,min=1,max=200"`
	Barcode string `json:"barcode" validate:"max=64"`
}

// ItemResponse salida de un ítem.
type ItemResponse struct {
	ID        string    `json:"id"`
	CompanyID string    `json:"company_id"`
	SKU       string    `json:"sku"`
	Name      string    `json:"name"`
	Barcode   string    `json:"barcode,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ItemListResponse lista paginada de ítems.
type ItemListResponse struct {
	Items []ItemResponse `json:"items"`
	Page  PageResponse   `json:"page"`
}

// CreateLocationRequest entrada para crear una ubicación. Label "pasillo-módulo-altura".
type CreateLocationRequest struct {
	Label string `json:"label" validate:"required,max=64"`
	Type  string `json:"type" validate:"omitempty,oneof=STANDARD BULK PICKING"`
}

// LocationResponse salida de una ubicación.
type LocationResponse struct {
	ID        string    `json:"id"`
	Label     string    `json:"label"`
	Aisle     string    `json:"aisle"`
	Bay       string    `json:"bay"`
	Height    string    `json:"height"`
	Type      string    `json:"type"`
	CreatedAt time.Time `json:"created_at"`
}

// LocationListResponse lista paginada de ubicaciones.
type LocationListResponse struct {
	Items []LocationResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}
