package ports

import (
	"context"
	"time"
)

// StoredResponse respuesta HTTP guardada para una clave de idempotencia.
// Pending indica que la petición original sigue en curso.
type StoredResponse struct {
	Status      int    `json:"status"`
	ContentType string `json:"content_type"`
	Body        []byte `json:"body"`
	Pending     bool   `json:"-"`
}

// IdempotencyStore define el puerto de salida para claves de idempotencia de las mutaciones.
// Un reintento con la misma clave recibe la respuesta original en vez de aplicar dos veces.
// Adaptadores: Redis (producción) y memoria (desarrollo y tests).
type IdempotencyStore interface {
	// Reserve marca la clave como en curso. Devuelve false si ya existía.
	Reserve(ctx context.Context, key string, ttl time.Duration) (bool, error)
	// Complete guarda la respuesta final de la clave.
	Complete(ctx context.Context, key string, resp StoredResponse, ttl time.Duration) error
	// Get devuelve la respuesta guardada, Pending si sigue en curso, o nil si no existe.
	Get(ctx context.Context, key string) (*StoredResponse, error)
	// Release libera la clave para que la petición pueda reintentarse.
	Release(ctx context.Context, key string) error
}
