package entity

import (
	"strings"
	"time"
)

// Tipos de ubicación.
const (
	LocationTypeStandard = "STANDARD"
	LocationTypeBulk     = "BULK"
	LocationTypePicking  = "PICKING"
)

// Location representa una posición física de almacenamiento. La etiqueta es única
// y se descompone en pasillo, módulo y altura (ej. "A-01-02").
type Location struct {
	ID        string
	Label     string
	Aisle     string
	Bay       string
	Height    string
	Type      string
	CreatedAt time.Time
}

// ParseLocationLabel descompone una etiqueta "pasillo-módulo-altura".
// Devuelve ok=false si la etiqueta no tiene exactamente tres segmentos no vacíos.
func ParseLocationLabel(label string) (aisle, bay, height string, ok bool) {
	parts := strings.Split(strings.TrimSpace(label), "-")
	if len(parts) != 3 {
		return "", "", "", false
	}
	for _, p := range parts {
		if p == "" {
			return "", "", "", false
		}
	}
	return strings.ToUpper(parts[0]), parts[1], parts[2], true
}

// FormatLocationLabel etiqueta canónica pasillo-módulo-altura, la que se guarda y se deduplica.
func FormatLocationLabel(aisle, bay, height string) string {
	return aisle + "-" + bay + "-" + height
}

// IsValidLocationType indica si t es un tipo de ubicación conocido.
func IsValidLocationType(t string) bool {
	switch t {
	case LocationTypeStandard, LocationTypeBulk, LocationTypePicking:
		return true
	}
	return false
}
