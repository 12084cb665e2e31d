package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// BranchStock representa el saldo de un producto en una sucursal.
// Es una proyección materializada de los movimientos: Quantity siempre es la suma
// de los deltas registrados para (BranchID, ProductID). Nunca se elimina.
type BranchStock struct {
	BranchID                 string
	ProductID                string
	Quantity                 decimal.Decimal
	ReservedQuantity         decimal.Decimal
	ExpectedShrinkagePercent decimal.Decimal
	ActualShrinkage          decimal.Decimal
	LastCountedAt            *time.Time
	LastCountedQuantity      *decimal.Decimal
	Version                  int64
	UpdatedAt                time.Time
}

// NewBranchStock devuelve una fila en cero para una combinación sin historial.
func NewBranchStock(branchID, productID string) *BranchStock {
	return &BranchStock{
		BranchID:                 branchID,
		ProductID:                productID,
		Quantity:                 decimal.Zero,
		ReservedQuantity:         decimal.Zero,
		ExpectedShrinkagePercent: decimal.Zero,
		ActualShrinkage:          decimal.Zero,
	}
}

// BranchStockView agrega datos del catálogo (nombre, sku, mínimo) para mostrar.
// MinStock vive en el producto, no en la fila de stock.
type BranchStockView struct {
	BranchStock
	ProductName string
	SKU         string
	MinStock    decimal.Decimal
}

// IsLow indica si el saldo está en o por debajo del mínimo configurado en el producto.
func (v BranchStockView) IsLow() bool {
	return v.MinStock.GreaterThan(decimal.Zero) && v.Quantity.LessThanOrEqual(v.MinStock)
}
