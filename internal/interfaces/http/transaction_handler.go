package http

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// TransactionHandler maneja undo/redo y el historial del log.
type TransactionHandler struct {
	reversal *inventory.ReversalEngine
	query    *inventory.QueryUseCase
	log      zerolog.Logger
}

// NewTransactionHandler construye el handler.
func NewTransactionHandler(reversal *inventory.ReversalEngine, query *inventory.QueryUseCase, log zerolog.Logger) *TransactionHandler {
	return &TransactionHandler{reversal: reversal, query: query, log: log}
}

// Undo godoc
// @Summary      Deshacer transacción
// @Description  COMPLETED o REDONE -> UNDONE. Revalida contra el stock actual.
// @Tags         transactions
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la transacción"
// @Success      200  {object}  dto.TransactionResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/transactions/{id}/undo [post]
func (h *TransactionHandler) Undo(c *fiber.Ctx) error {
	tx, err := h.reversal.Undo(c.UserContext(), c.Params("id"), GetUserID(c))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(toTransactionResponse(tx))
}

// Redo godoc
// @Summary      Rehacer transacción
// @Description  UNDONE -> REDONE. Revalida contra el stock actual.
// @Tags         transactions
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la transacción"
// @Success      200  {object}  dto.TransactionResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/transactions/{id}/redo [post]
func (h *TransactionHandler) Redo(c *fiber.Ctx) error {
	tx, err := h.reversal.Redo(c.UserContext(), c.Params("id"), GetUserID(c))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(toTransactionResponse(tx))
}

// GetByID godoc
// @Summary      Obtener transacción
// @Tags         transactions
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la transacción"
// @Success      200  {object}  dto.TransactionResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/transactions/{id} [get]
func (h *TransactionHandler) GetByID(c *fiber.Ctx) error {
	tx, err := h.query.GetTransaction(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(toTransactionResponse(tx))
}

// List godoc
// @Summary      Historial de transacciones
// @Tags         transactions
// @Security     Bearer
// @Produce      json
// @Param        item_id      query  string  false  "Filtrar por ítem"
// @Param        location_id  query  string  false  "Filtrar por ubicación (origen o destino)"
// @Param        kind         query  string  false  "ADD | REMOVE | MOVE"
// @Param        status       query  string  false  "COMPLETED | UNDONE | REDONE"
// @Param        from         query  string  false  "RFC3339"
// @Param        to           query  string  false  "RFC3339"
// @Param        order        query  string  false  "asc | desc"  default(desc)
// @Param        limit        query  int     false  "Límite"      default(50)
// @Param        offset       query  int     false  "Offset"      default(0)
// @Success      200  {object}  dto.HistoryListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/transactions [get]
func (h *TransactionHandler) List(c *fiber.Ctx) error {
	filter, err := parseHistoryFilter(c)
	if err != nil {
		return respondError(c, h.log, err)
	}
	entries, err := h.query.ListHistory(c.UserContext(), filter)
	if err != nil {
		return respondError(c, h.log, err)
	}
	out := dto.HistoryListResponse{
		Items: make([]dto.HistoryEntryResponse, 0, len(entries)),
		Page:  dto.PageResponse{Limit: filter.Limit, Offset: filter.Offset},
	}
	for _, e := range entries {
		out.Items = append(out.Items, toHistoryEntry(e))
	}
	return c.JSON(out)
}

func parseHistoryFilter(c *fiber.Ctx) (repository.TransactionFilter, error) {
	f := repository.TransactionFilter{
		ItemID:     c.Query("item_id"),
		LocationID: c.Query("location_id"),
		Kind:       entity.TransactionKind(strings.ToUpper(c.Query("kind"))),
		Status:     entity.TransactionStatus(strings.ToUpper(c.Query("status"))),
		Limit:      c.QueryInt("limit", 50),
		Offset:     c.QueryInt("offset", 0),
	}
	switch strings.ToLower(c.Query("order", "desc")) {
	case "asc":
		f.Ascending = true
	case "desc":
	default:
		return f, domain.Invalid("order", "debe ser asc o desc")
	}
	var err error
	if f.From, err = parseTimeQuery(c, "from"); err != nil {
		return f, err
	}
	if f.To, err = parseTimeQuery(c, "to"); err != nil {
		return f, err
	}
	if f.Limit > 500 {
		f.Limit = 500
	}
	return f, nil
}

func parseTimeQuery(c *fiber.Ctx, key string) (*time.Time, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, domain.Invalid(key, "fecha RFC3339 inválida")
	}
	return &t, nil
}
