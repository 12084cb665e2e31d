package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-sucursales/internal/application/inventory"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Ledger        *inventory.StockLedger
	Transfers     *inventory.TransferWorkflow
	Bags          *inventory.OpenBagTracker
	Counts        *inventory.ReconciliationEngine
	DeliveryNotes *inventory.DeliveryNotes
	JWTSecret     string
}

// Router registra las rutas de la API. Todo /api requiere Bearer Token.
func Router(app *fiber.App, deps RouterDeps) {
	protected := app.Group("/api", AuthMiddleware(deps.JWTSecret))
	supervisors := RequireRole(RoleAdmin, RoleEncargado)

	inventoryHandler := NewInventoryHandler(deps.Ledger, deps.Counts, deps.Bags)
	transferHandler := NewTransferHandler(deps.Transfers, deps.DeliveryNotes)
	bagHandler := NewOpenBagHandler(deps.Bags)

	// Stock por sucursal
	branches := protected.Group("/branches")
	branches.Get("/:branch_id/stock", inventoryHandler.ListBranchStock)
	branches.Get("/:branch_id/stock/:product_id", inventoryHandler.GetBranchStock)
	branches.Get("/:branch_id/incoming", transferHandler.Incoming)

	// Libro de movimientos, ajustes, mermas y conteos
	invGroup := protected.Group("/inventory")
	invGroup.Get("/low-stock", inventoryHandler.ListLowStock)
	invGroup.Post("/movements", inventoryHandler.RecordMovement)
	invGroup.Get("/movements", inventoryHandler.ListMovements)
	invGroup.Post("/adjustments", supervisors, inventoryHandler.AdjustStock)
	invGroup.Post("/shrinkage", supervisors, inventoryHandler.RecordShrinkage)
	invGroup.Post("/counts", supervisors, inventoryHandler.SubmitCount)

	// Traslados
	transfers := protected.Group("/transfers")
	transfers.Post("/", transferHandler.Create)
	transfers.Get("/", transferHandler.List)
	transfers.Get("/:id", transferHandler.Get)
	transfers.Post("/:id/approve", supervisors, transferHandler.Approve)
	transfers.Post("/:id/receive", transferHandler.Receive)
	transfers.Post("/:id/cancel", supervisors, transferHandler.Cancel)
	transfers.Get("/:id/delivery-note", transferHandler.DeliveryNote)

	// Bolsas abiertas
	bags := protected.Group("/open-bags")
	bags.Post("/", bagHandler.Open)
	bags.Get("/", bagHandler.List)
	bags.Get("/:id", bagHandler.Get)
	bags.Post("/:id/deduct", bagHandler.Deduct)
	bags.Post("/:id/close", bagHandler.Close)
}
