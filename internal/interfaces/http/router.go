package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/application/ports"
	"github.com/jhoicas/stock-ledger/internal/application/usecase"
	"github.com/jhoicas/stock-ledger/pkg/jwt"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Executor       *inventory.MutationExecutor
	Reversal       *inventory.ReversalEngine
	Query          *inventory.QueryUseCase
	CatalogUC      *usecase.CatalogUseCase
	Idempotency    ports.IdempotencyStore
	IdempotencyTTL time.Duration
	JWTSecret      string
	Log            zerolog.Logger
}

// Router registra las rutas de la API. Todas requieren Bearer Token; las mutaciones
// además exigen rol admin u operator.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))
	writers := RequireRole(jwt.RoleAdmin, jwt.RoleOperator)
	readers := RequireRole(jwt.RoleAdmin, jwt.RoleOperator, jwt.RoleViewer)
	idem := Idempotency(deps.Idempotency, deps.IdempotencyTTL, deps.Log)

	// Stock
	stockHandler := NewStockHandler(deps.Executor, deps.Query, deps.Log)
	stock := api.Group("/stock")
	stock.Get("/", readers, stockHandler.Get)
	stock.Post("/add", writers, idem, stockHandler.Add)
	stock.Post("/remove", writers, idem, stockHandler.Remove)
	stock.Post("/move", writers, idem, stockHandler.Move)
	stock.Post("/batch", writers, idem, stockHandler.Batch)

	// Transacciones: historial y undo/redo
	txHandler := NewTransactionHandler(deps.Reversal, deps.Query, deps.Log)
	txs := api.Group("/transactions")
	txs.Get("/", readers, txHandler.List)
	txs.Get("/:id", readers, txHandler.GetByID)
	txs.Post("/:id/undo", writers, txHandler.Undo)
	txs.Post("/:id/redo", writers, txHandler.Redo)

	// Catálogo
	catalogHandler := NewCatalogHandler(deps.CatalogUC, deps.Log)
	items := api.Group("/items")
	items.Get("/", readers, catalogHandler.ListItems)
	items.Get("/:id", readers, catalogHandler.GetItem)
	items.Post("/", writers, catalogHandler.CreateItem)
	locations := api.Group("/locations")
	locations.Get("/", readers, catalogHandler.ListLocations)
	locations.Get("/:id", readers, catalogHandler.GetLocation)
	locations.Post("/", writers, catalogHandler.CreateLocation)
}
