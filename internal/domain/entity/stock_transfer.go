package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransferStatus estados del traslado entre sucursales.
type TransferStatus string

const (
	TransferPending   TransferStatus = "PENDING"
	TransferInTransit TransferStatus = "IN_TRANSIT"
	TransferReceived  TransferStatus = "RECEIVED"
	TransferCancelled TransferStatus = "CANCELLED"
)

// StockTransfer solicitud de traslado de mercadería entre dos sucursales.
type StockTransfer struct {
	ID                  string
	TransferNumber      string
	SourceBranchID      string
	DestinationBranchID string
	Status              TransferStatus
	RequestedBy         string
	ApprovedBy          string
	ShippedBy           string
	ReceivedBy          string
	CancelledBy         string
	RequestedAt         time.Time
	ApprovedAt          *time.Time
	ShippedAt           *time.Time
	ReceivedAt          *time.Time
	CancelledAt         *time.Time
	CancelReason        string
	Notes               string
	Items               []StockTransferItem
	UpdatedAt           time.Time
}

// StockTransferItem línea del traslado.
// ShippedQuantity se fija al aprobar y no vuelve a cambiar; ReceivedQuantity al recibir.
type StockTransferItem struct {
	ID                string
	TransferID        string
	ProductID         string
	RequestedQuantity decimal.Decimal
	ShippedQuantity   *decimal.Decimal
	ReceivedQuantity  *decimal.Decimal
}

// Variance devuelve recibido - enviado; cero mientras falte alguno de los dos.
func (i StockTransferItem) Variance() decimal.Decimal {
	if i.ShippedQuantity == nil || i.ReceivedQuantity == nil {
		return decimal.Zero
	}
	return i.ReceivedQuantity.Sub(*i.ShippedQuantity)
}

// HasVariance indica si alguna línea recibida difiere de lo enviado.
func (t *StockTransfer) HasVariance() bool {
	for _, it := range t.Items {
		if !it.Variance().IsZero() {
			return true
		}
	}
	return false
}

// Item busca una línea por ID.
func (t *StockTransfer) Item(itemID string) (*StockTransferItem, bool) {
	for i := range t.Items {
		if t.Items[i].ID == itemID {
			return &t.Items[i], true
		}
	}
	return nil, false
}

// TransferFilter filtros de consulta de traslados.
type TransferFilter struct {
	BranchID string // origen o destino
	Status   TransferStatus
	Limit    int
	Offset   int
}

// IncomingStock cantidad en tránsito hacia una sucursal, agregada por producto.
type IncomingStock struct {
	ProductID       string
	Quantity        decimal.Decimal
	TransferCount   int
	OldestShippedAt time.Time
}
