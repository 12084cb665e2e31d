// Package inventory contiene las reglas puras del libro de inventario (servicio de dominio),
// sin acceso a persistencia.
package inventory

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-sucursales/internal/domain"
	"github.com/jhoicas/inventario-sucursales/internal/domain/entity"
)

// IsDeduction indica los tipos que descuentan stock y no pueden dejar saldo negativo.
func IsDeduction(t entity.MovementType) bool {
	switch t {
	case entity.MovementSale, entity.MovementTransferOut, entity.MovementShrinkage, entity.MovementAdjustmentMinus:
		return true
	}
	return false
}

// IsAddition indica los tipos que sólo pueden sumar stock.
func IsAddition(t entity.MovementType) bool {
	switch t {
	case entity.MovementReturn, entity.MovementPurchase, entity.MovementTransferIn,
		entity.MovementAdjustmentPlus, entity.MovementInitial:
		return true
	}
	return false
}

// RequiresReason: los tipos manuales exigen motivo.
func RequiresReason(t entity.MovementType) bool {
	switch t {
	case entity.MovementAdjustmentPlus, entity.MovementAdjustmentMinus, entity.MovementShrinkage:
		return true
	}
	return false
}

// IsDirectEntry indica los tipos que un usuario registra directamente como operación de venta
// o abastecimiento. Ajustes, mermas, conteos, traslados y aperturas tienen su propio flujo.
func IsDirectEntry(t entity.MovementType) bool {
	switch t {
	case entity.MovementSale, entity.MovementReturn, entity.MovementPurchase, entity.MovementInitial:
		return true
	}
	return false
}

// IsTransfer indica los tipos que requieren sucursal relacionada.
func IsTransfer(t entity.MovementType) bool {
	return t == entity.MovementTransferOut || t == entity.MovementTransferIn
}

// ParseMovementType valida el tipo recibido desde el exterior.
func ParseMovementType(s string) (entity.MovementType, bool) {
	t := entity.MovementType(s)
	if IsDeduction(t) || IsAddition(t) || t == entity.MovementInventoryCount {
		return t, true
	}
	return "", false
}

// ValidateDelta verifica que el signo del delta corresponda al tipo.
// INVENTORY_COUNT acepta ambos signos: representa el conteo físico, no una causa inferida.
func ValidateDelta(t entity.MovementType, delta decimal.Decimal) error {
	if delta.IsZero() {
		return domain.Invalid("quantity", "el delta no puede ser cero")
	}
	if IsDeduction(t) && delta.IsPositive() {
		return domain.Invalid("quantity", "un movimiento "+string(t)+" debe ser negativo")
	}
	if IsAddition(t) && delta.IsNegative() {
		return domain.Invalid("quantity", "un movimiento "+string(t)+" debe ser positivo")
	}
	return nil
}

// AdjustmentType devuelve ADJUSTMENT_PLUS o ADJUSTMENT_MINUS según el signo del delta.
func AdjustmentType(delta decimal.Decimal) entity.MovementType {
	if delta.IsNegative() {
		return entity.MovementAdjustmentMinus
	}
	return entity.MovementAdjustmentPlus
}
