package http

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/domain"
)

// errorResponse traduce un error de dominio a status HTTP y cuerpo.
func errorResponse(err error) (int, dto.ErrorResponse) {
	var (
		ve  *domain.ValidationError
		nf  *domain.NotFoundError
		ise *domain.InsufficientStockError
		ais *domain.AlreadyInStateError
	)
	switch {
	case errors.As(err, &ve):
		return fiber.StatusBadRequest, dto.ErrorResponse{
			Code: "VALIDATION", Message: err.Error(),
			Details: map[string]any{"field": ve.Field},
		}
	case errors.As(err, &nf):
		return fiber.StatusNotFound, dto.ErrorResponse{
			Code: "NOT_FOUND", Message: err.Error(),
			Details: map[string]any{"resource": nf.Resource, "id": nf.ID},
		}
	case errors.As(err, &ise):
		return fiber.StatusConflict, dto.ErrorResponse{
			Code: "INSUFFICIENT_STOCK", Message: err.Error(),
			Details: map[string]any{
				"item_id":     ise.ItemID,
				"location_id": ise.LocationID,
				"available":   ise.Available,
				"requested":   ise.Requested,
				"operation":   ise.Operation,
				"role":        ise.Role,
			},
		}
	case errors.As(err, &ais):
		return fiber.StatusConflict, dto.ErrorResponse{
			Code: "ALREADY_IN_STATE", Message: err.Error(),
			Details: map[string]any{"current": ais.Current, "requested": ais.Requested},
		}
	case errors.Is(err, domain.ErrInvalidInput):
		return fiber.StatusBadRequest, dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()}
	case errors.Is(err, domain.ErrNotFound):
		return fiber.StatusNotFound, dto.ErrorResponse{Code: "NOT_FOUND", Message: err.Error()}
	case errors.Is(err, domain.ErrDuplicate):
		return fiber.StatusConflict, dto.ErrorResponse{Code: "DUPLICATE", Message: err.Error()}
	case errors.Is(err, domain.ErrUnauthorized):
		return fiber.StatusUnauthorized, dto.ErrorResponse{Code: "UNAUTHORIZED", Message: err.Error()}
	case errors.Is(err, domain.ErrCommitFailure):
		return fiber.StatusServiceUnavailable, dto.ErrorResponse{
			Code: "COMMIT_FAILURE", Message: "no se pudo confirmar la operación; puede reintentarse",
		}
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return fiber.StatusRequestTimeout, dto.ErrorResponse{Code: "CANCELLED", Message: "petición cancelada antes de aplicarse"}
	default:
		return fiber.StatusInternalServerError, dto.ErrorResponse{Code: "INTERNAL", Message: "error interno"}
	}
}

// respondError escribe el error; los 5xx se registran con el error original.
func respondError(c *fiber.Ctx, log zerolog.Logger, err error) error {
	status, body := errorResponse(err)
	if status >= fiber.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.Path()).Str("method", c.Method()).Msg("error en petición")
	}
	return c.Status(status).JSON(body)
}

func invalidBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
}
