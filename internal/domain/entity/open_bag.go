package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// OpenBagStatus estado de una bolsa abierta.
type OpenBagStatus string

const (
	OpenBagOpen  OpenBagStatus = "OPEN"
	OpenBagEmpty OpenBagStatus = "EMPTY"
)

// OpenBag sub-inventario por peso creado al abrir una unidad sellada para venta a granel.
// 0 <= RemainingWeight <= OriginalWeight; en EMPTY RemainingWeight es siempre 0.
type OpenBag struct {
	ID                string
	BranchID          string
	ProductID         string
	OriginalWeight    decimal.Decimal
	RemainingWeight   decimal.Decimal
	LowStockThreshold decimal.Decimal
	Status            OpenBagStatus
	OpenedAt          time.Time
	OpenedBy          string
	ClosedAt          *time.Time
	ClosedBy          string
	Notes             string
	UpdatedAt         time.Time
}

// IsLow indica si la bolsa abierta quedó en o bajo su umbral.
func (b *OpenBag) IsLow() bool {
	return b.Status == OpenBagOpen && b.RemainingWeight.LessThanOrEqual(b.LowStockThreshold)
}

// OpenBagFilter filtros de consulta.
type OpenBagFilter struct {
	BranchID  string
	ProductID string
	Status    OpenBagStatus
	Limit     int
	Offset    int
}
