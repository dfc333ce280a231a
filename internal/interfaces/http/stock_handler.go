package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/application/inventory"
)

// StockHandler maneja las mutaciones de stock (ADD, REMOVE, MOVE, lotes) y la consulta de cantidades.
type StockHandler struct {
	exec  *inventory.MutationExecutor
	query *inventory.QueryUseCase
	log   zerolog.Logger
}

// NewStockHandler construye el handler.
func NewStockHandler(exec *inventory.MutationExecutor, query *inventory.QueryUseCase, log zerolog.Logger) *StockHandler {
	return &StockHandler{exec: exec, query: query, log: log}
}

// Add godoc
// @Summary      Entrada de stock (ADD)
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key  header  string               false  "Clave de idempotencia"
// @Param        body             body    dto.AddStockRequest  true   "item_id, destination_location_id, quantity"
// @Success      201  {object}  dto.TransactionResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      503  {object}  dto.ErrorResponse
// @Router       /api/stock/add [post]
func (h *StockHandler) Add(c *fiber.Ctx) error {
	var in dto.AddStockRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	if err := dto.Validate(in); err != nil {
		return respondError(c, h.log, err)
	}
	tx, err := h.exec.ApplyAdd(c.UserContext(), GetUserID(c), in.ItemID, in.DestinationLocationID, in.Quantity)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toTransactionResponse(tx))
}

// Remove godoc
// @Summary      Salida de stock (REMOVE)
// @Description  Con items[] retira varias líneas de forma atómica: si una no alcanza, no se retira ninguna.
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key  header  string                  false  "Clave de idempotencia"
// @Param        body             body    dto.RemoveStockRequest  true   "línea única o items[]"
// @Success      201  {object}  dto.TransactionResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/stock/remove [post]
func (h *StockHandler) Remove(c *fiber.Ctx) error {
	var in dto.RemoveStockRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	if len(in.Items) == 0 {
		line := in.Lines()[0]
		if err := dto.Validate(line); err != nil {
			return respondError(c, h.log, err)
		}
		tx, err := h.exec.ApplyRemove(c.UserContext(), GetUserID(c), line.ItemID, line.SourceLocationID, line.Quantity)
		if err != nil {
			return respondError(c, h.log, err)
		}
		return c.Status(fiber.StatusCreated).JSON(toTransactionResponse(tx))
	}

	if err := dto.Validate(in); err != nil {
		return respondError(c, h.log, err)
	}
	cmds := make([]inventory.Command, 0, len(in.Items))
	for _, l := range in.Items {
		cmds = append(cmds, inventory.RemoveCommand{ItemID: l.ItemID, SourceID: l.SourceLocationID, Quantity: l.Quantity})
	}
	txs, err := h.exec.ApplyBatch(c.UserContext(), GetUserID(c), cmds)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toBatchResponse(txs))
}

// Move godoc
// @Summary      Traslado de stock (MOVE)
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key  header  string                false  "Clave de idempotencia"
// @Param        body             body    dto.MoveStockRequest  true   "item_id, source_location_id, destination_location_id, quantity"
// @Success      201  {object}  dto.TransactionResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/stock/move [post]
func (h *StockHandler) Move(c *fiber.Ctx) error {
	var in dto.MoveStockRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	if err := dto.Validate(in); err != nil {
		return respondError(c, h.log, err)
	}
	tx, err := h.exec.ApplyMove(c.UserContext(), GetUserID(c), in.ItemID, in.SourceLocationID, in.DestinationLocationID, in.Quantity)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toTransactionResponse(tx))
}

// Batch godoc
// @Summary      Lote mixto de mutaciones
// @Description  Aplica las líneas en orden dentro de una sola unidad atómica.
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key  header  string            false  "Clave de idempotencia"
// @Param        body             body    dto.BatchRequest  true   "items[] con kind ADD | REMOVE | MOVE"
// @Success      201  {object}  dto.BatchResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/stock/batch [post]
func (h *StockHandler) Batch(c *fiber.Ctx) error {
	var in dto.BatchRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	if err := dto.Validate(in); err != nil {
		return respondError(c, h.log, err)
	}
	cmds := make([]inventory.Command, 0, len(in.Items))
	for _, l := range in.Items {
		cmds = append(cmds, commandFromLine(l))
	}
	txs, err := h.exec.ApplyBatch(c.UserContext(), GetUserID(c), cmds)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toBatchResponse(txs))
}

// Get godoc
// @Summary      Consultar stock
// @Description  Con location_id devuelve la cantidad de esa clave; sin él, todas las ubicaciones del ítem.
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        item_id      query  string  true   "ID del ítem"
// @Param        location_id  query  string  false  "ID de la ubicación"
// @Success      200  {object}  dto.StockQuantityResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/stock [get]
func (h *StockHandler) Get(c *fiber.Ctx) error {
	itemID := c.Query("item_id")
	locationID := c.Query("location_id")
	if locationID != "" {
		qty, err := h.query.GetQuantity(c.UserContext(), itemID, locationID)
		if err != nil {
			return respondError(c, h.log, err)
		}
		return c.JSON(dto.StockQuantityResponse{ItemID: itemID, LocationID: locationID, Quantity: qty})
	}
	records, err := h.query.StockByItem(c.UserContext(), itemID)
	if err != nil {
		return respondError(c, h.log, err)
	}
	out := dto.StockByItemResponse{ItemID: itemID, Records: make([]dto.StockQuantityResponse, 0, len(records))}
	for _, r := range records {
		out.Records = append(out.Records, dto.StockQuantityResponse{ItemID: r.ItemID, LocationID: r.LocationID, Quantity: r.Quantity})
		out.Total += r.Quantity
	}
	return c.JSON(out)
}
