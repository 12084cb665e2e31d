package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-sucursales/internal/application/dto"
	"github.com/jhoicas/inventario-sucursales/internal/application/inventory"
	"github.com/jhoicas/inventario-sucursales/internal/domain"
	"github.com/jhoicas/inventario-sucursales/internal/domain/entity"
)

// OpenBagHandler bolsas abiertas de productos a granel.
type OpenBagHandler struct {
	tracker *inventory.OpenBagTracker
}

func NewOpenBagHandler(tracker *inventory.OpenBagTracker) *OpenBagHandler {
	return &OpenBagHandler{tracker: tracker}
}

// Open godoc
// @Summary      Abrir bolsa
// @Description  Consume una unidad sellada (OPEN_BAG) y habilita la venta por peso.
// @Tags         open-bags
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.OpenBagRequest  true  "Bolsa"
// @Success      201  {object}  dto.Envelope{data=dto.OpenBagResponse}
// @Failure      400  {object}  dto.Envelope
// @Failure      409  {object}  dto.Envelope  "INSUFFICIENT_STOCK o BAG_ALREADY_OPEN"
// @Router       /api/open-bags [post]
func (h *OpenBagHandler) Open(c *fiber.Ctx) error {
	var in dto.OpenBagRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	bag, err := h.tracker.Open(c.Context(), inventory.OpenBagInput{
		BranchID:       in.BranchID,
		ProductID:      in.ProductID,
		OriginalWeight: in.OriginalWeight,
		Threshold:      in.Threshold,
		Notes:          in.Notes,
		OpenedBy:       GetUserID(c),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.OK(dto.ToOpenBagResponse(bag)))
}

// List godoc
// @Summary      Listar bolsas
// @Tags         open-bags
// @Security     Bearer
// @Produce      json
// @Param        branch_id   query  string  false  "Sucursal"
// @Param        product_id  query  string  false  "Producto"
// @Param        status      query  string  false  "OPEN | EMPTY"
// @Param        page        query  int     false  "Página"
// @Param        limit       query  int     false  "Tamaño de página"
// @Success      200  {object}  dto.Envelope{data=[]dto.OpenBagResponse}
// @Router       /api/open-bags [get]
func (h *OpenBagHandler) List(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return writeError(c, domain.Invalid("page", "paginación inválida"))
	}
	page.DefaultPage()
	list, total, err := h.tracker.List(c.Context(), entity.OpenBagFilter{
		BranchID:  c.Query("branch_id"),
		ProductID: c.Query("product_id"),
		Status:    entity.OpenBagStatus(c.Query("status")),
		Limit:     page.Limit,
		Offset:    page.Offset(),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.Paged(dto.ToOpenBagList(list), page, total))
}

// Get godoc
// @Summary      Detalle de bolsa
// @Tags         open-bags
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "Bolsa"
// @Success      200  {object}  dto.Envelope{data=dto.OpenBagResponse}
// @Failure      404  {object}  dto.Envelope
// @Router       /api/open-bags/{id} [get]
func (h *OpenBagHandler) Get(c *fiber.Ctx) error {
	bag, err := h.tracker.Get(c.Context(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.OK(dto.ToOpenBagResponse(bag)))
}

// Deduct godoc
// @Summary      Vender por peso
// @Tags         open-bags
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                true  "Bolsa"
// @Param        body  body  dto.DeductBagRequest  true  "Peso vendido"
// @Success      200  {object}  dto.Envelope{data=dto.OpenBagResponse}
// @Failure      409  {object}  dto.Envelope
// @Router       /api/open-bags/{id}/deduct [post]
func (h *OpenBagHandler) Deduct(c *fiber.Ctx) error {
	var in dto.DeductBagRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	bag, err := h.tracker.Deduct(c.Context(), c.Params("id"), in.Quantity, in.SaleReference, GetUserID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.OK(dto.ToOpenBagResponse(bag)))
}

// Close godoc
// @Summary      Cerrar bolsa
// @Description  El remanente se da de baja y la bolsa pasa a EMPTY.
// @Tags         open-bags
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string               true   "Bolsa"
// @Param        body  body  dto.CloseBagRequest  false  "Notas"
// @Success      200  {object}  dto.Envelope{data=dto.OpenBagResponse}
// @Failure      409  {object}  dto.Envelope
// @Router       /api/open-bags/{id}/close [post]
func (h *OpenBagHandler) Close(c *fiber.Ctx) error {
	var in dto.CloseBagRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return invalidBody(c)
		}
	}
	bag, err := h.tracker.Close(c.Context(), c.Params("id"), in.Notes, GetUserID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.OK(dto.ToOpenBagResponse(bag)))
}
