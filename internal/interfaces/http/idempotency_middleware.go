package http

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/application/ports"
)

// Cabeceras de idempotencia.
const (
	HeaderIdempotencyKey = "Idempotency-Key"
	HeaderReplayed       = "Idempotent-Replayed"
	maxIdempotencyKeyLen = 128
)

// Idempotency evita aplicar dos veces una mutación reintentada. Sin cabecera Idempotency-Key
// la petición pasa tal cual. La clave se reserva antes de ejecutar; una respuesta 2xx queda
// guardada y se repite ante reintentos, cualquier otro resultado libera la clave.
// Debe usarse DESPUÉS de AuthMiddleware: la clave se aísla por usuario.
//   - 409 IDEMPOTENCY_IN_PROGRESS → otra petición con la misma clave sigue en curso.
//   - 503 IDEMPOTENCY_UNAVAILABLE → el almacén de claves no responde.
func Idempotency(store ports.IdempotencyStore, ttl time.Duration, log zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := strings.TrimSpace(c.Get(HeaderIdempotencyKey))
		if key == "" {
			return c.Next()
		}
		if len(key) > maxIdempotencyKeyLen {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Code: "VALIDATION", Message: "Idempotency-Key demasiado larga",
			})
		}
		scoped := GetUserID(c) + ":" + c.Method() + ":" + c.Path() + ":" + key
		ctx := c.UserContext()

		reserved, err := store.Reserve(ctx, scoped, ttl)
		if err != nil {
			log.Error().Err(err).Msg("reservar clave de idempotencia")
			return unavailable(c)
		}
		if !reserved {
			stored, err := store.Get(ctx, scoped)
			if err != nil {
				log.Error().Err(err).Msg("leer clave de idempotencia")
				return unavailable(c)
			}
			if stored == nil || stored.Pending {
				return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
					Code: "IDEMPOTENCY_IN_PROGRESS", Message: "una petición con la misma Idempotency-Key está en curso",
				})
			}
			c.Set(HeaderReplayed, "true")
			if stored.ContentType != "" {
				c.Set(fiber.HeaderContentType, stored.ContentType)
			}
			return c.Status(stored.Status).Send(stored.Body)
		}

		if err := c.Next(); err != nil {
			_ = store.Release(ctx, scoped)
			return err
		}
		status := c.Response().StatusCode()
		if status < 200 || status >= 300 {
			if err := store.Release(ctx, scoped); err != nil {
				log.Warn().Err(err).Msg("liberar clave de idempotencia")
			}
			return nil
		}
		resp := ports.StoredResponse{
			Status:      status,
			ContentType: string(c.Response().Header.ContentType()),
			Body:        append([]byte(nil), c.Response().Body()...),
		}
		if err := store.Complete(ctx, scoped, resp, ttl); err != nil {
			// La mutación ya se confirmó: se responde igual y la clave expira con su TTL.
			log.Warn().Err(err).Msg("guardar respuesta idempotente")
		}
		return nil
	}
}

func unavailable(c *fiber.Ctx) error {
	return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{
		Code: "IDEMPOTENCY_UNAVAILABLE", Message: "no se pudo verificar la Idempotency-Key, reintente",
	})
}
