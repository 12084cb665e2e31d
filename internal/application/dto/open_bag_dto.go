package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-sucursales/internal/domain/entity"
)

// OpenBagRequest body para POST /api/open-bags. Sin threshold se usa el 15% del peso.
type OpenBagRequest struct {
	BranchID       string           `json:"branch_id"`
	ProductID      string           `json:"product_id"`
	OriginalWeight decimal.Decimal  `json:"original_weight"`
	Threshold      *decimal.Decimal `json:"low_stock_threshold,omitempty"`
	Notes          string           `json:"notes,omitempty"`
}

// DeductBagRequest body para POST /api/open-bags/:id/deduct.
type DeductBagRequest struct {
	Quantity      decimal.Decimal `json:"quantity"`
	SaleReference string          `json:"sale_reference,omitempty"`
}

// CloseBagRequest body para POST /api/open-bags/:id/close.
type CloseBagRequest struct {
	Notes string `json:"notes,omitempty"`
}

// OpenBagResponse bolsa abierta.
type OpenBagResponse struct {
	ID                string          `json:"id"`
	BranchID          string          `json:"branch_id"`
	ProductID         string          `json:"product_id"`
	OriginalWeight    decimal.Decimal `json:"original_weight"`
	RemainingWeight   decimal.Decimal `json:"remaining_weight"`
	LowStockThreshold decimal.Decimal `json:"low_stock_threshold"`
	Status            string          `json:"status"`
	IsLow             bool            `json:"is_low"`
	OpenedAt          time.Time       `json:"opened_at"`
	OpenedBy          string          `json:"opened_by,omitempty"`
	ClosedAt          *time.Time      `json:"closed_at,omitempty"`
	ClosedBy          string          `json:"closed_by,omitempty"`
	Notes             string          `json:"notes,omitempty"`
}

// ToOpenBagResponse mapea una bolsa.
func ToOpenBagResponse(b *entity.OpenBag) OpenBagResponse {
	return OpenBagResponse{
		ID:                b.ID,
		BranchID:          b.BranchID,
		ProductID:         b.ProductID,
		OriginalWeight:    b.OriginalWeight,
		RemainingWeight:   b.RemainingWeight,
		LowStockThreshold: b.LowStockThreshold,
		Status:            string(b.Status),
		IsLow:             b.IsLow(),
		OpenedAt:          b.OpenedAt,
		OpenedBy:          b.OpenedBy,
		ClosedAt:          b.ClosedAt,
		ClosedBy:          b.ClosedBy,
		Notes:             b.Notes,
	}
}

// ToOpenBagList mapea un listado de bolsas.
func ToOpenBagList(list []*entity.OpenBag) []OpenBagResponse {
	out := make([]OpenBagResponse, 0, len(list))
	for _, b := range list {
		out = append(out, ToOpenBagResponse(b))
	}
	return out
}
