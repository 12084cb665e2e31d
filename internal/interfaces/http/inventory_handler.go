package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-sucursales/internal/application/dto"
	"github.com/jhoicas/inventario-sucursales/internal/application/inventory"
	"github.com/jhoicas/inventario-sucursales/internal/domain"
	"github.com/jhoicas/inventario-sucursales/internal/domain/entity"
	dominv "github.com/jhoicas/inventario-sucursales/internal/domain/inventory"
	"github.com/jhoicas/inventario-sucursales/internal/domain/repository"
)

// InventoryHandler maneja stock por sucursal, movimientos, ajustes, mermas y conteos (protegido).
type InventoryHandler struct {
	ledger *inventory.StockLedger
	counts *inventory.ReconciliationEngine
	bags   *inventory.OpenBagTracker
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(ledger *inventory.StockLedger, counts *inventory.ReconciliationEngine, bags *inventory.OpenBagTracker) *InventoryHandler {
	return &InventoryHandler{ledger: ledger, counts: counts, bags: bags}
}

// ListBranchStock godoc
// @Summary      Stock de una sucursal
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        branch_id  path   string  true   "Sucursal"
// @Param        search     query  string  false  "Nombre o SKU"
// @Param        low_stock  query  bool    false  "Sólo en o bajo el mínimo"
// @Param        page       query  int     false  "Página (1..n)"
// @Param        limit      query  int     false  "Tamaño de página (máx. 100)"
// @Success      200  {object}  dto.Envelope{data=[]dto.BranchStockResponse}
// @Failure      400  {object}  dto.Envelope
// @Router       /api/branches/{branch_id}/stock [get]
func (h *InventoryHandler) ListBranchStock(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return writeError(c, domain.Invalid("page", "paginación inválida"))
	}
	page.DefaultPage()
	list, total, err := h.ledger.ListBranchStock(c.Context(), repository.BranchStockQuery{
		BranchID: c.Params("branch_id"),
		Search:   c.Query("search"),
		LowStock: c.QueryBool("low_stock"),
		Limit:    page.Limit,
		Offset:   page.Offset(),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.Paged(dto.ToBranchStockViewList(list), page, total))
}

// GetBranchStock godoc
// @Summary      Saldo de un producto en una sucursal
// @Description  Sin historial devuelve cantidad cero.
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        branch_id   path  string  true  "Sucursal"
// @Param        product_id  path  string  true  "Producto"
// @Success      200  {object}  dto.Envelope{data=dto.BranchStockResponse}
// @Router       /api/branches/{branch_id}/stock/{product_id} [get]
func (h *InventoryHandler) GetBranchStock(c *fiber.Ctx) error {
	s, err := h.ledger.GetBranchStock(c.Context(), c.Params("branch_id"), c.Params("product_id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.OK(dto.ToBranchStockResponse(s)))
}

// ListLowStock godoc
// @Summary      Reporte de stock bajo
// @Description  Filas en o bajo el mínimo del producto y bolsas abiertas bajo su umbral.
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        branch_id  query  string  false  "Sucursal (vacío = todas)"
// @Success      200  {object}  dto.Envelope{data=dto.LowStockResponse}
// @Router       /api/inventory/low-stock [get]
func (h *InventoryHandler) ListLowStock(c *fiber.Ctx) error {
	branchID := c.Query("branch_id")
	stock, err := h.ledger.ListLowStock(c.Context(), branchID)
	if err != nil {
		return writeError(c, err)
	}
	bags, err := h.bags.ListLowStock(c.Context(), branchID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.OK(dto.LowStockResponse{
		Stock:    dto.ToBranchStockViewList(stock),
		OpenBags: dto.ToOpenBagList(bags),
	}))
}

// RecordMovement godoc
// @Summary      Registrar movimiento
// @Description  Sólo SALE, RETURN, PURCHASE o INITIAL. quantity lleva signo. Ajustes, mermas, conteos y traslados usan sus rutas.
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RecordMovementRequest  true  "Movimiento"
// @Success      201  {object}  dto.Envelope{data=dto.MovementResultResponse}
// @Failure      400  {object}  dto.Envelope
// @Failure      404  {object}  dto.Envelope
// @Failure      409  {object}  dto.Envelope
// @Router       /api/inventory/movements [post]
func (h *InventoryHandler) RecordMovement(c *fiber.Ctx) error {
	var in dto.RecordMovementRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	if !dominv.IsDirectEntry(entity.MovementType(in.Type)) {
		return writeError(c, domain.Invalid("type", "tipo no admitido en esta ruta: use SALE, RETURN, PURCHASE o INITIAL"))
	}
	stock, mov, err := h.ledger.RecordMovement(c.Context(), inventory.MovementInput{
		BranchID:        in.BranchID,
		ProductID:       in.ProductID,
		Type:            entity.MovementType(in.Type),
		Quantity:        in.Quantity,
		ReferenceType:   in.ReferenceType,
		ReferenceID:     in.ReferenceID,
		Reason:          in.Reason,
		RelatedBranchID: in.RelatedBranchID,
		PerformedBy:     GetUserID(c),
		Notes:           in.Notes,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.OK(movementResult(stock, mov)))
}

// ListMovements godoc
// @Summary      Consultar el libro de movimientos
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        branch_id     query  string  false  "Sucursal"
// @Param        product_id    query  string  false  "Producto"
// @Param        type          query  string  false  "Tipo de movimiento"
// @Param        reference_id  query  string  false  "Referencia (traslado, bolsa, conteo)"
// @Param        from          query  string  false  "Desde (RFC3339)"
// @Param        to            query  string  false  "Hasta (RFC3339)"
// @Param        page          query  int     false  "Página"
// @Param        limit         query  int     false  "Tamaño de página"
// @Success      200  {object}  dto.Envelope{data=[]dto.MovementResponse}
// @Router       /api/inventory/movements [get]
func (h *InventoryHandler) ListMovements(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return writeError(c, domain.Invalid("page", "paginación inválida"))
	}
	page.DefaultPage()
	filter := entity.MovementFilter{
		BranchID:    c.Query("branch_id"),
		ProductID:   c.Query("product_id"),
		Type:        entity.MovementType(c.Query("type")),
		ReferenceID: c.Query("reference_id"),
		Limit:       page.Limit,
		Offset:      page.Offset(),
	}
	var err error
	if filter.From, err = queryTime(c, "from"); err != nil {
		return writeError(c, err)
	}
	if filter.To, err = queryTime(c, "to"); err != nil {
		return writeError(c, err)
	}
	list, total, err := h.ledger.ListMovements(c.Context(), filter)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.Paged(dto.ToMovementList(list), page, total))
}

// AdjustStock godoc
// @Summary      Ajuste manual de stock
// @Description  quantity positiva = ADJUSTMENT_PLUS, negativa = ADJUSTMENT_MINUS. reason obligatorio.
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.AdjustmentRequest  true  "Ajuste"
// @Success      201  {object}  dto.Envelope{data=dto.MovementResultResponse}
// @Failure      400  {object}  dto.Envelope
// @Failure      409  {object}  dto.Envelope
// @Router       /api/inventory/adjustments [post]
func (h *InventoryHandler) AdjustStock(c *fiber.Ctx) error {
	var in dto.AdjustmentRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	stock, mov, err := h.ledger.AdjustStock(c.Context(), inventory.AdjustInput{
		BranchID:    in.BranchID,
		ProductID:   in.ProductID,
		Quantity:    in.Quantity,
		Reason:      in.Reason,
		PerformedBy: GetUserID(c),
		Notes:       in.Notes,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.OK(movementResult(stock, mov)))
}

// RecordShrinkage godoc
// @Summary      Registrar merma
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ShrinkageRequest  true  "Merma (quantity > 0)"
// @Success      201  {object}  dto.Envelope{data=dto.MovementResponse}
// @Failure      400  {object}  dto.Envelope
// @Failure      409  {object}  dto.Envelope
// @Router       /api/inventory/shrinkage [post]
func (h *InventoryHandler) RecordShrinkage(c *fiber.Ctx) error {
	var in dto.ShrinkageRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	mov, err := h.ledger.RecordShrinkage(c.Context(), inventory.ShrinkageInput{
		BranchID:    in.BranchID,
		ProductID:   in.ProductID,
		Quantity:    in.Quantity,
		Reason:      dominv.ShrinkageReason(in.Reason),
		PerformedBy: GetUserID(c),
		Notes:       in.Notes,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.OK(dto.ToMovementResponse(mov)))
}

// SubmitCount godoc
// @Summary      Conteo físico
// @Description  Cada diferencia contra el saldo genera un INVENTORY_COUNT. Se aplica completo o nada.
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CountRequest  true  "Conteo"
// @Success      201  {object}  dto.Envelope{data=dto.CountResultResponse}
// @Failure      400  {object}  dto.Envelope
// @Failure      404  {object}  dto.Envelope
// @Router       /api/inventory/counts [post]
func (h *InventoryHandler) SubmitCount(c *fiber.Ctx) error {
	var in dto.CountRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	entries := make([]inventory.CountEntry, 0, len(in.Entries))
	for _, e := range in.Entries {
		entries = append(entries, inventory.CountEntry{ProductID: e.ProductID, CountedQuantity: e.CountedQuantity})
	}
	res, err := h.counts.SubmitCount(c.Context(), inventory.CountInput{
		BranchID:    in.BranchID,
		Entries:     entries,
		Notes:       in.Notes,
		PerformedBy: GetUserID(c),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.OK(dto.ToCountResultResponse(res)))
}

func movementResult(stock *entity.BranchStock, mov *entity.StockMovement) dto.MovementResultResponse {
	r := dto.MovementResultResponse{Movement: dto.ToMovementResponse(mov)}
	if stock != nil {
		s := dto.ToBranchStockResponse(stock)
		r.Stock = &s
	}
	return r
}

func queryTime(c *fiber.Ctx, key string) (*time.Time, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, domain.Invalid(key, "fecha inválida, use RFC3339")
	}
	return &t, nil
}
