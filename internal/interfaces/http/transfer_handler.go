package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-sucursales/internal/application/dto"
	"github.com/jhoicas/inventario-sucursales/internal/application/inventory"
	"github.com/jhoicas/inventario-sucursales/internal/domain"
	"github.com/jhoicas/inventario-sucursales/internal/domain/entity"
)

// TransferHandler ciclo de vida de traslados entre sucursales (protegido).
type TransferHandler struct {
	workflow *inventory.TransferWorkflow
	notes    *inventory.DeliveryNotes
}

// NewTransferHandler construye el handler. notes puede ser nil (sin remito PDF).
func NewTransferHandler(workflow *inventory.TransferWorkflow, notes *inventory.DeliveryNotes) *TransferHandler {
	return &TransferHandler{workflow: workflow, notes: notes}
}

// Create godoc
// @Summary      Solicitar traslado
// @Description  Crea el traslado en PENDING. No mueve stock.
// @Tags         transfers
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateTransferRequest  true  "Traslado"
// @Success      201  {object}  dto.Envelope{data=dto.TransferResponse}
// @Failure      400  {object}  dto.Envelope
// @Failure      404  {object}  dto.Envelope
// @Router       /api/transfers [post]
func (h *TransferHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateTransferRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	t, err := h.workflow.Create(c.Context(), in.ToCreateTransferInput(GetUserID(c)))
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.OK(dto.ToTransferResponse(t)))
}

// List godoc
// @Summary      Listar traslados
// @Tags         transfers
// @Security     Bearer
// @Produce      json
// @Param        branch_id  query  string  false  "Sucursal origen o destino"
// @Param        status     query  string  false  "PENDING | IN_TRANSIT | RECEIVED | CANCELLED"
// @Param        page       query  int     false  "Página"
// @Param        limit      query  int     false  "Tamaño de página"
// @Success      200  {object}  dto.Envelope{data=[]dto.TransferResponse}
// @Router       /api/transfers [get]
func (h *TransferHandler) List(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return writeError(c, domain.Invalid("page", "paginación inválida"))
	}
	page.DefaultPage()
	list, total, err := h.workflow.List(c.Context(), entity.TransferFilter{
		BranchID: c.Query("branch_id"),
		Status:   entity.TransferStatus(c.Query("status")),
		Limit:    page.Limit,
		Offset:   page.Offset(),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.Paged(dto.ToTransferList(list), page, total))
}

// Get godoc
// @Summary      Detalle de traslado
// @Tags         transfers
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "Traslado"
// @Success      200  {object}  dto.Envelope{data=dto.TransferResponse}
// @Failure      404  {object}  dto.Envelope
// @Router       /api/transfers/{id} [get]
func (h *TransferHandler) Get(c *fiber.Ctx) error {
	t, err := h.workflow.Get(c.Context(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.OK(dto.ToTransferResponse(t)))
}

// Approve godoc
// @Summary      Aprobar y despachar
// @Description  Descuenta TRANSFER_OUT en origen por lo enviado y pasa a IN_TRANSIT.
// @Tags         transfers
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                      true   "Traslado"
// @Param        body  body  dto.ApproveTransferRequest  false  "Cantidades enviadas por línea"
// @Success      200  {object}  dto.Envelope{data=dto.TransferResponse}
// @Failure      409  {object}  dto.Envelope
// @Router       /api/transfers/{id}/approve [post]
func (h *TransferHandler) Approve(c *fiber.Ctx) error {
	var in dto.ApproveTransferRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return invalidBody(c)
		}
	}
	t, err := h.workflow.Approve(c.Context(), c.Params("id"), dto.ToItemQuantities(in.Items), GetUserID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.OK(dto.ToTransferResponse(t)))
}

// Receive godoc
// @Summary      Recibir traslado
// @Description  Acredita TRANSFER_IN en destino por lo recibido. Las diferencias quedan como varianza.
// @Tags         transfers
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                      true   "Traslado"
// @Param        body  body  dto.ReceiveTransferRequest  false  "Cantidades recibidas por línea"
// @Success      200  {object}  dto.Envelope{data=dto.TransferResponse}
// @Failure      409  {object}  dto.Envelope
// @Router       /api/transfers/{id}/receive [post]
func (h *TransferHandler) Receive(c *fiber.Ctx) error {
	var in dto.ReceiveTransferRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return invalidBody(c)
		}
	}
	t, err := h.workflow.Receive(c.Context(), c.Params("id"), dto.ToItemQuantities(in.Items), in.Notes, GetUserID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.OK(dto.ToTransferResponse(t)))
}

// Cancel godoc
// @Summary      Cancelar traslado
// @Description  En IN_TRANSIT devuelve lo enviado al origen con movimientos compensatorios.
// @Tags         transfers
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                     true  "Traslado"
// @Param        body  body  dto.CancelTransferRequest  true  "Motivo"
// @Success      200  {object}  dto.Envelope{data=dto.TransferResponse}
// @Failure      409  {object}  dto.Envelope
// @Failure      500  {object}  dto.Envelope  "COMPENSATION_FAILURE"
// @Router       /api/transfers/{id}/cancel [post]
func (h *TransferHandler) Cancel(c *fiber.Ctx) error {
	var in dto.CancelTransferRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	t, err := h.workflow.Cancel(c.Context(), c.Params("id"), in.Reason, GetUserID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.OK(dto.ToTransferResponse(t)))
}

// DeliveryNote godoc
// @Summary      Remito PDF
// @Description  Disponible para traslados despachados (IN_TRANSIT o RECEIVED).
// @Tags         transfers
// @Security     Bearer
// @Produce      application/pdf
// @Param        id  path  string  true  "Traslado"
// @Success      200  {file}    binary
// @Failure      409  {object}  dto.Envelope
// @Router       /api/transfers/{id}/delivery-note [get]
func (h *TransferHandler) DeliveryNote(c *fiber.Ctx) error {
	if h.notes == nil {
		return fail(c, fiber.StatusNotImplemented, "NOT_IMPLEMENTED", "remito no disponible", nil)
	}
	pdf, filename, err := h.notes.Render(c.Context(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Send(pdf)
}

// Incoming godoc
// @Summary      Stock en camino
// @Description  Suma por producto de lo enviado en traslados IN_TRANSIT hacia la sucursal.
// @Tags         transfers
// @Security     Bearer
// @Produce      json
// @Param        branch_id  path  string  true  "Sucursal destino"
// @Success      200  {object}  dto.Envelope{data=[]dto.IncomingStockResponse}
// @Router       /api/branches/{branch_id}/incoming [get]
func (h *TransferHandler) Incoming(c *fiber.Ctx) error {
	list, err := h.workflow.Incoming(c.Context(), c.Params("branch_id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.OK(dto.ToIncomingList(list)))
}
