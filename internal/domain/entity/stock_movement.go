package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// MovementType clasifica la causa de un cambio de cantidad.
type MovementType string

// Tipos de movimiento del libro de inventario.
const (
	MovementSale            MovementType = "SALE"
	MovementReturn          MovementType = "RETURN"
	MovementPurchase        MovementType = "PURCHASE"
	MovementTransferOut     MovementType = "TRANSFER_OUT"
	MovementTransferIn      MovementType = "TRANSFER_IN"
	MovementAdjustmentPlus  MovementType = "ADJUSTMENT_PLUS"
	MovementAdjustmentMinus MovementType = "ADJUSTMENT_MINUS"
	MovementShrinkage       MovementType = "SHRINKAGE"
	MovementInitial         MovementType = "INITIAL"
	MovementInventoryCount  MovementType = "INVENTORY_COUNT"
)

// Tipos de referencia (qué originó el movimiento).
const (
	ReferenceTransfer       = "TRANSFER"
	ReferenceOpenBag        = "OPEN_BAG"
	ReferenceInventoryCount = "INVENTORY_COUNT"
	ReferenceSale           = "SALE"
)

// StockMovement es una entrada inmutable del libro: se crea una vez y nunca se modifica.
// QuantityAfter = QuantityBefore + Quantity.
type StockMovement struct {
	ID               string
	BranchID         string
	ProductID        string
	Type             MovementType
	Quantity         decimal.Decimal // delta con signo
	QuantityBefore   decimal.Decimal
	QuantityAfter    decimal.Decimal
	ReferenceType    string
	ReferenceID      string
	AdjustmentReason string
	RelatedBranchID  string
	PerformedBy      string
	Notes            string
	CreatedAt        time.Time
}

// MovementFilter filtros de consulta del libro.
type MovementFilter struct {
	BranchID    string
	ProductID   string
	Type        MovementType
	ReferenceID string
	From        *time.Time
	To          *time.Time
	Limit       int
	Offset      int
}
