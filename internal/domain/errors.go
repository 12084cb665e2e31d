package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Errores de dominio (sin dependencias de infraestructura).
var (
	ErrNotFound               = errors.New("recurso no encontrado")
	ErrValidation             = errors.New("entrada inválida")
	ErrUnauthorized           = errors.New("no autorizado")
	ErrInsufficientStock      = errors.New("stock insuficiente")
	ErrInvalidStateTransition = errors.New("transición de estado no permitida")
	ErrConcurrencyConflict    = errors.New("conflicto de concurrencia")
	ErrCompensationFailure    = errors.New("no se pudo registrar el movimiento compensatorio")
	ErrBagAlreadyOpen         = errors.New("ya existe una bolsa abierta para el producto en la sucursal")
)

// ValidationError indica el campo que no pasó la validación.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// Invalid construye un ValidationError para el campo indicado.
func Invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// NotFoundError identifica el recurso inexistente.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s no encontrado", e.Resource, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// NotFound construye un NotFoundError.
func NotFound(resource, id string) error {
	return &NotFoundError{Resource: resource, ID: id}
}

// InsufficientStockError lleva el saldo vigente para que el llamador pueda refrescar.
type InsufficientStockError struct {
	BranchID  string
	ProductID string
	Available decimal.Decimal
	Requested decimal.Decimal
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("stock insuficiente en sucursal %s para producto %s: disponible %s, solicitado %s",
		e.BranchID, e.ProductID, e.Available.String(), e.Requested.String())
}

func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }

// StateTransitionError lleva el estado actual del recurso.
type StateTransitionError struct {
	Resource string
	ID       string
	Current  string
	Action   string
}

func (e *StateTransitionError) Error() string {
	return fmt.Sprintf("%s %s en estado %s no admite %s", e.Resource, e.ID, e.Current, e.Action)
}

func (e *StateTransitionError) Unwrap() error { return ErrInvalidStateTransition }

// CompensationError se reporta cuando la reversa de un traslado en tránsito no se pudo escribir.
// La causa original queda accesible con errors.Unwrap/errors.Is.
type CompensationError struct {
	TransferID string
	Cause      error
}

func (e *CompensationError) Error() string {
	return fmt.Sprintf("traslado %s: compensación fallida: %v", e.TransferID, e.Cause)
}

func (e *CompensationError) Unwrap() []error { return []error{ErrCompensationFailure, e.Cause} }
