package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-sucursales/internal/application/inventory"
	"github.com/jhoicas/inventario-sucursales/internal/domain/entity"
)

// CreateTransferRequest body para POST /api/transfers.
type CreateTransferRequest struct {
	SourceBranchID      string                `json:"source_branch_id"`
	DestinationBranchID string                `json:"destination_branch_id"`
	Items               []TransferItemRequest `json:"items"`
	Notes               string                `json:"notes,omitempty"`
}

// TransferItemRequest línea solicitada.
type TransferItemRequest struct {
	ProductID string          `json:"product_id"`
	Quantity  decimal.Decimal `json:"quantity"`
}

// ItemQuantityRequest cantidad enviada o recibida para una línea existente.
type ItemQuantityRequest struct {
	ItemID   string          `json:"item_id"`
	Quantity decimal.Decimal `json:"quantity"`
}

// ApproveTransferRequest body para POST /api/transfers/:id/approve.
// Sin items se envía lo solicitado.
type ApproveTransferRequest struct {
	Items []ItemQuantityRequest `json:"items,omitempty"`
}

// ReceiveTransferRequest body para POST /api/transfers/:id/receive.
// Sin items se recibe lo enviado.
type ReceiveTransferRequest struct {
	Items []ItemQuantityRequest `json:"items,omitempty"`
	Notes string                `json:"notes,omitempty"`
}

// CancelTransferRequest body para POST /api/transfers/:id/cancel.
type CancelTransferRequest struct {
	Reason string `json:"reason"`
}

// TransferResponse traslado con sus líneas.
type TransferResponse struct {
	ID                  string                 `json:"id"`
	TransferNumber      string                 `json:"transfer_number"`
	SourceBranchID      string                 `json:"source_branch_id"`
	DestinationBranchID string                 `json:"destination_branch_id"`
	Status              string                 `json:"status"`
	HasVariance         bool                   `json:"has_variance"`
	RequestedBy         string                 `json:"requested_by,omitempty"`
	ApprovedBy          string                 `json:"approved_by,omitempty"`
	ShippedBy           string                 `json:"shipped_by,omitempty"`
	ReceivedBy          string                 `json:"received_by,omitempty"`
	CancelledBy         string                 `json:"cancelled_by,omitempty"`
	RequestedAt         time.Time              `json:"requested_at"`
	ApprovedAt          *time.Time             `json:"approved_at,omitempty"`
	ShippedAt           *time.Time             `json:"shipped_at,omitempty"`
	ReceivedAt          *time.Time             `json:"received_at,omitempty"`
	CancelledAt         *time.Time             `json:"cancelled_at,omitempty"`
	CancelReason        string                 `json:"cancel_reason,omitempty"`
	Notes               string                 `json:"notes,omitempty"`
	Items               []TransferItemResponse `json:"items"`
}

// TransferItemResponse línea del traslado. Variance = recibido - enviado.
type TransferItemResponse struct {
	ID                string           `json:"id"`
	ProductID         string           `json:"product_id"`
	RequestedQuantity decimal.Decimal  `json:"requested_quantity"`
	ShippedQuantity   *decimal.Decimal `json:"shipped_quantity,omitempty"`
	ReceivedQuantity  *decimal.Decimal `json:"received_quantity,omitempty"`
	Variance          *decimal.Decimal `json:"variance,omitempty"`
}

// IncomingStockResponse stock en camino hacia una sucursal.
type IncomingStockResponse struct {
	ProductID       string          `json:"product_id"`
	Quantity        decimal.Decimal `json:"quantity"`
	TransferCount   int             `json:"transfer_count"`
	OldestShippedAt time.Time       `json:"oldest_shipped_at"`
}

// ToCreateTransferInput mapea el body al caso de uso.
func (r CreateTransferRequest) ToCreateTransferInput(requestedBy string) inventory.CreateTransferInput {
	in := inventory.CreateTransferInput{
		SourceBranchID:      r.SourceBranchID,
		DestinationBranchID: r.DestinationBranchID,
		Notes:               r.Notes,
		RequestedBy:         requestedBy,
	}
	for _, it := range r.Items {
		in.Items = append(in.Items, inventory.TransferItemInput{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	return in
}

// ToItemQuantities mapea cantidades por línea.
func ToItemQuantities(items []ItemQuantityRequest) []inventory.ItemQuantity {
	if len(items) == 0 {
		return nil
	}
	out := make([]inventory.ItemQuantity, 0, len(items))
	for _, it := range items {
		out = append(out, inventory.ItemQuantity{ItemID: it.ItemID, Quantity: it.Quantity})
	}
	return out
}

// ToTransferResponse mapea un traslado.
func ToTransferResponse(t *entity.StockTransfer) TransferResponse {
	r := TransferResponse{
		ID:                  t.ID,
		TransferNumber:      t.TransferNumber,
		SourceBranchID:      t.SourceBranchID,
		DestinationBranchID: t.DestinationBranchID,
		Status:              string(t.Status),
		HasVariance:         t.HasVariance(),
		RequestedBy:         t.RequestedBy,
		ApprovedBy:          t.ApprovedBy,
		ShippedBy:           t.ShippedBy,
		ReceivedBy:          t.ReceivedBy,
		CancelledBy:         t.CancelledBy,
		RequestedAt:         t.RequestedAt,
		ApprovedAt:          t.ApprovedAt,
		ShippedAt:           t.ShippedAt,
		ReceivedAt:          t.ReceivedAt,
		CancelledAt:         t.CancelledAt,
		CancelReason:        t.CancelReason,
		Notes:               t.Notes,
		Items:               make([]TransferItemResponse, 0, len(t.Items)),
	}
	for _, it := range t.Items {
		ir := TransferItemResponse{
			ID:                it.ID,
			ProductID:         it.ProductID,
			RequestedQuantity: it.RequestedQuantity,
			ShippedQuantity:   it.ShippedQuantity,
			ReceivedQuantity:  it.ReceivedQuantity,
		}
		if it.ShippedQuantity != nil && it.ReceivedQuantity != nil {
			v := it.Variance()
			ir.Variance = &v
		}
		r.Items = append(r.Items, ir)
	}
	return r
}

// ToTransferList mapea un listado de traslados.
func ToTransferList(list []*entity.StockTransfer) []TransferResponse {
	out := make([]TransferResponse, 0, len(list))
	for _, t := range list {
		out = append(out, ToTransferResponse(t))
	}
	return out
}

// ToIncomingList mapea el stock en camino.
func ToIncomingList(list []entity.IncomingStock) []IncomingStockResponse {
	out := make([]IncomingStockResponse, 0, len(list))
	for _, in := range list {
		out = append(out, IncomingStockResponse{
			ProductID:       in.ProductID,
			Quantity:        in.Quantity,
			TransferCount:   in.TransferCount,
			OldestShippedAt: in.OldestShippedAt,
		})
	}
	return out
}
