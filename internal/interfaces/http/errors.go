package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-sucursales/internal/application/dto"
	"github.com/jhoicas/inventario-sucursales/internal/domain"
)

// Códigos de error estables de la API.
const (
	CodeValidation          = "VALIDATION"
	CodeInvalidBody         = "INVALID_BODY"
	CodeNotFound            = "NOT_FOUND"
	CodeInsufficientStock   = "INSUFFICIENT_STOCK"
	CodeInvalidTransition   = "INVALID_STATE_TRANSITION"
	CodeConcurrency         = "CONCURRENCY_CONFLICT"
	CodeCompensationFailure = "COMPENSATION_FAILURE"
	CodeBagAlreadyOpen      = "BAG_ALREADY_OPEN"
	CodeUnauthorized        = "UNAUTHORIZED"
	CodeForbidden           = "FORBIDDEN"
	CodeInternal            = "INTERNAL"
)

// writeError traduce errores de dominio a status + envelope. Los detalles permiten al cliente
// refrescar (saldo vigente, estado actual) sin otra consulta.
func writeError(c *fiber.Ctx, err error) error {
	var (
		validation   *domain.ValidationError
		notFound     *domain.NotFoundError
		insufficient *domain.InsufficientStockError
		transition   *domain.StateTransitionError
		compensation *domain.CompensationError
	)
	switch {
	case errors.As(err, &compensation):
		return fail(c, fiber.StatusInternalServerError, CodeCompensationFailure, err.Error(), map[string]any{
			"transfer_id": compensation.TransferID,
			"retryable":   true,
		})
	case errors.As(err, &validation):
		var details map[string]any
		if validation.Field != "" {
			details = map[string]any{"field": validation.Field}
		}
		return fail(c, fiber.StatusBadRequest, CodeValidation, err.Error(), details)
	case errors.Is(err, domain.ErrValidation):
		return fail(c, fiber.StatusBadRequest, CodeValidation, err.Error(), nil)
	case errors.As(err, &notFound):
		return fail(c, fiber.StatusNotFound, CodeNotFound, err.Error(), map[string]any{
			"resource": notFound.Resource,
			"id":       notFound.ID,
		})
	case errors.Is(err, domain.ErrNotFound):
		return fail(c, fiber.StatusNotFound, CodeNotFound, err.Error(), nil)
	case errors.As(err, &insufficient):
		return fail(c, fiber.StatusConflict, CodeInsufficientStock, err.Error(), map[string]any{
			"branch_id":          insufficient.BranchID,
			"product_id":         insufficient.ProductID,
			"current_quantity":   insufficient.Available,
			"requested_quantity": insufficient.Requested,
		})
	case errors.Is(err, domain.ErrInsufficientStock):
		return fail(c, fiber.StatusConflict, CodeInsufficientStock, err.Error(), nil)
	case errors.As(err, &transition):
		return fail(c, fiber.StatusConflict, CodeInvalidTransition, err.Error(), map[string]any{
			"current_status": transition.Current,
			"action":         transition.Action,
		})
	case errors.Is(err, domain.ErrInvalidStateTransition):
		return fail(c, fiber.StatusConflict, CodeInvalidTransition, err.Error(), nil)
	case errors.Is(err, domain.ErrBagAlreadyOpen):
		return fail(c, fiber.StatusConflict, CodeBagAlreadyOpen, err.Error(), nil)
	case errors.Is(err, domain.ErrConcurrencyConflict):
		return fail(c, fiber.StatusConflict, CodeConcurrency, "conflicto de concurrencia, reintente", nil)
	case errors.Is(err, domain.ErrUnauthorized):
		return fail(c, fiber.StatusUnauthorized, CodeUnauthorized, err.Error(), nil)
	}
	logFromCtx(c).Error().Err(err).Str("path", c.Path()).Msg("error interno")
	return fail(c, fiber.StatusInternalServerError, CodeInternal, "error interno", nil)
}

func fail(c *fiber.Ctx, status int, code, message string, details map[string]any) error {
	return c.Status(status).JSON(dto.Fail(code, message, details))
}

func invalidBody(c *fiber.Ctx) error {
	return fail(c, fiber.StatusBadRequest, CodeInvalidBody, "cuerpo inválido", nil)
}
