package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-sucursales/internal/application/inventory"
	"github.com/jhoicas/inventario-sucursales/internal/domain/entity"
)

// RecordMovementRequest body para POST /api/inventory/movements.
// Quantity lleva signo (SALE negativo, PURCHASE positivo).
type RecordMovementRequest struct {
	BranchID        string          `json:"branch_id"`
	ProductID       string          `json:"product_id"`
	Type            string          `json:"type"`
	Quantity        decimal.Decimal `json:"quantity"`
	ReferenceType   string          `json:"reference_type,omitempty"`
	ReferenceID     string          `json:"reference_id,omitempty"`
	Reason          string          `json:"reason,omitempty"`
	RelatedBranchID string          `json:"related_branch_id,omitempty"`
	Notes           string          `json:"notes,omitempty"`
}

// AdjustmentRequest body para POST /api/inventory/adjustments. El signo define el tipo.
type AdjustmentRequest struct {
	BranchID  string          `json:"branch_id"`
	ProductID string          `json:"product_id"`
	Quantity  decimal.Decimal `json:"quantity"`
	Reason    string          `json:"reason"`
	Notes     string          `json:"notes,omitempty"`
}

// ShrinkageRequest body para POST /api/inventory/shrinkage. Quantity es la magnitud (> 0).
type ShrinkageRequest struct {
	BranchID  string          `json:"branch_id"`
	ProductID string          `json:"product_id"`
	Quantity  decimal.Decimal `json:"quantity"`
	Reason    string          `json:"reason"` // EXPIRED|DAMAGED|THEFT|SPOILAGE|WEIGHING_DIFFERENCE|OTHER
	Notes     string          `json:"notes,omitempty"`
}

// CountRequest body para POST /api/inventory/counts.
type CountRequest struct {
	BranchID string              `json:"branch_id"`
	Entries  []CountEntryRequest `json:"entries"`
	Notes    string              `json:"notes,omitempty"`
}

// CountEntryRequest cantidad contada de un producto.
type CountEntryRequest struct {
	ProductID       string          `json:"product_id"`
	CountedQuantity decimal.Decimal `json:"counted_quantity"`
}

// BranchStockResponse saldo de un producto en una sucursal.
type BranchStockResponse struct {
	BranchID                 string           `json:"branch_id"`
	ProductID                string           `json:"product_id"`
	ProductName              string           `json:"product_name,omitempty"`
	SKU                      string           `json:"sku,omitempty"`
	Quantity                 decimal.Decimal  `json:"quantity"`
	ReservedQuantity         decimal.Decimal  `json:"reserved_quantity"`
	MinStock                 *decimal.Decimal `json:"min_stock,omitempty"`
	IsLow                    bool             `json:"is_low"`
	ExpectedShrinkagePercent decimal.Decimal  `json:"expected_shrinkage_percent"`
	ActualShrinkage          decimal.Decimal  `json:"actual_shrinkage"`
	LastCountedAt            *time.Time       `json:"last_counted_at,omitempty"`
	LastCountedQuantity      *decimal.Decimal `json:"last_counted_quantity,omitempty"`
	UpdatedAt                *time.Time       `json:"updated_at,omitempty"`
}

// MovementResponse entrada del libro.
type MovementResponse struct {
	ID               string          `json:"id"`
	BranchID         string          `json:"branch_id"`
	ProductID        string          `json:"product_id"`
	Type             string          `json:"type"`
	Quantity         decimal.Decimal `json:"quantity"`
	QuantityBefore   decimal.Decimal `json:"quantity_before"`
	QuantityAfter    decimal.Decimal `json:"quantity_after"`
	ReferenceType    string          `json:"reference_type,omitempty"`
	ReferenceID      string          `json:"reference_id,omitempty"`
	AdjustmentReason string          `json:"adjustment_reason,omitempty"`
	RelatedBranchID  string          `json:"related_branch_id,omitempty"`
	PerformedBy      string          `json:"performed_by,omitempty"`
	Notes            string          `json:"notes,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
}

// MovementResultResponse respuesta de una escritura: movimiento + saldo resultante.
type MovementResultResponse struct {
	Movement MovementResponse     `json:"movement"`
	Stock    *BranchStockResponse `json:"stock,omitempty"`
}

// LowStockResponse reporte de stock bajo: filas de stock y bolsas abiertas bajo su umbral.
type LowStockResponse struct {
	Stock    []BranchStockResponse `json:"stock"`
	OpenBags []OpenBagResponse     `json:"open_bags"`
}

// CountResultResponse resumen del conteo físico.
type CountResultResponse struct {
	CountID     string                `json:"count_id"`
	Processed   int                   `json:"processed"`
	Adjustments int                   `json:"adjustments"`
	NoChange    int                   `json:"no_change"`
	Details     []CountDetailResponse `json:"details"`
}

// CountDetailResponse resultado por línea contada.
type CountDetailResponse struct {
	ProductID  string          `json:"product_id"`
	Previous   decimal.Decimal `json:"previous"`
	Counted    decimal.Decimal `json:"counted"`
	Variance   decimal.Decimal `json:"variance"`
	Action     string          `json:"action"`
	MovementID string          `json:"movement_id,omitempty"`
}

// ToBranchStockResponse mapea un saldo sin datos de catálogo.
func ToBranchStockResponse(s *entity.BranchStock) BranchStockResponse {
	r := BranchStockResponse{
		BranchID:                 s.BranchID,
		ProductID:                s.ProductID,
		Quantity:                 s.Quantity,
		ReservedQuantity:         s.ReservedQuantity,
		ExpectedShrinkagePercent: s.ExpectedShrinkagePercent,
		ActualShrinkage:          s.ActualShrinkage,
		LastCountedAt:            s.LastCountedAt,
		LastCountedQuantity:      s.LastCountedQuantity,
	}
	if !s.UpdatedAt.IsZero() {
		u := s.UpdatedAt
		r.UpdatedAt = &u
	}
	return r
}

// ToBranchStockViewResponse mapea un saldo con nombre, sku y mínimo.
func ToBranchStockViewResponse(v *entity.BranchStockView) BranchStockResponse {
	r := ToBranchStockResponse(&v.BranchStock)
	r.ProductName = v.ProductName
	r.SKU = v.SKU
	minStock := v.MinStock
	r.MinStock = &minStock
	r.IsLow = v.IsLow()
	return r
}

// ToBranchStockViewList mapea un listado de saldos.
func ToBranchStockViewList(list []*entity.BranchStockView) []BranchStockResponse {
	out := make([]BranchStockResponse, 0, len(list))
	for _, v := range list {
		out = append(out, ToBranchStockViewResponse(v))
	}
	return out
}

// ToMovementResponse mapea un movimiento.
func ToMovementResponse(m *entity.StockMovement) MovementResponse {
	return MovementResponse{
		ID:               m.ID,
		BranchID:         m.BranchID,
		ProductID:        m.ProductID,
		Type:             string(m.Type),
		Quantity:         m.Quantity,
		QuantityBefore:   m.QuantityBefore,
		QuantityAfter:    m.QuantityAfter,
		ReferenceType:    m.ReferenceType,
		ReferenceID:      m.ReferenceID,
		AdjustmentReason: m.AdjustmentReason,
		RelatedBranchID:  m.RelatedBranchID,
		PerformedBy:      m.PerformedBy,
		Notes:            m.Notes,
		CreatedAt:        m.CreatedAt,
	}
}

// ToMovementList mapea un listado de movimientos.
func ToMovementList(list []*entity.StockMovement) []MovementResponse {
	out := make([]MovementResponse, 0, len(list))
	for _, m := range list {
		out = append(out, ToMovementResponse(m))
	}
	return out
}

// ToCountResultResponse mapea el resultado del conteo.
func ToCountResultResponse(r *inventory.CountResult) CountResultResponse {
	out := CountResultResponse{
		CountID:     r.CountID,
		Processed:   r.Processed,
		Adjustments: r.Adjustments,
		NoChange:    r.NoChange,
		Details:     make([]CountDetailResponse, 0, len(r.Details)),
	}
	for _, d := range r.Details {
		out.Details = append(out.Details, CountDetailResponse{
			ProductID:  d.ProductID,
			Previous:   d.Previous,
			Counted:    d.Counted,
			Variance:   d.Variance,
			Action:     d.Action,
			MovementID: d.MovementID,
		})
	}
	return out
}
