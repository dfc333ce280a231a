package entity

import "time"

// Item representa un artículo identificado por su SKU (único), perteneciente a una empresa.
// Solo los campos descriptivos pueden cambiar; nunca se elimina mientras tenga stock o transacciones.
type Item struct {
	ID        string
	CompanyID string
	SKU       string
	Name      string
	Barcode   string
	CreatedAt time.Time
	UpdatedAt time.Time
}
