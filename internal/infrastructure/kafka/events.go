package kafka

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-sucursales/internal/domain/entity"
)

// Tipos de evento.
const (
	EventTypeMovementRecorded = "stock.movement.recorded"
	eventTypeTransferPrefix   = "stock.transfer."
)

// TransferEventType devuelve stock.transfer.<status> en minúsculas (stock.transfer.in_transit).
func TransferEventType(status entity.TransferStatus) string {
	return eventTypeTransferPrefix + strings.ToLower(string(status))
}

// MovementEvent representa un movimiento confirmado del libro.
type MovementEvent struct {
	EventID         string          `json:"event_id"`
	EventType       string          `json:"event_type"`
	MovementID      string          `json:"movement_id"`
	BranchID        string          `json:"branch_id"`
	ProductID       string          `json:"product_id"`
	MovementType    string          `json:"movement_type"`
	Quantity        decimal.Decimal `json:"quantity"`
	QuantityBefore  decimal.Decimal `json:"quantity_before"`
	QuantityAfter   decimal.Decimal `json:"quantity_after"`
	ReferenceType   string          `json:"reference_type,omitempty"`
	ReferenceID     string          `json:"reference_id,omitempty"`
	RelatedBranchID string          `json:"related_branch_id,omitempty"`
	PerformedBy     string          `json:"performed_by,omitempty"`
	Timestamp       time.Time       `json:"timestamp"`
}

// TransferEvent representa una transición confirmada de un traslado.
type TransferEvent struct {
	EventID             string              `json:"event_id"`
	EventType           string              `json:"event_type"`
	TransferID          string              `json:"transfer_id"`
	TransferNumber      string              `json:"transfer_number"`
	SourceBranchID      string              `json:"source_branch_id"`
	DestinationBranchID string              `json:"destination_branch_id"`
	Status              string              `json:"status"`
	HasVariance         bool                `json:"has_variance"`
	Items               []TransferEventItem `json:"items"`
	Timestamp           time.Time           `json:"timestamp"`
}

// TransferEventItem línea del traslado en el evento.
type TransferEventItem struct {
	ProductID         string           `json:"product_id"`
	RequestedQuantity decimal.Decimal  `json:"requested_quantity"`
	ShippedQuantity   *decimal.Decimal `json:"shipped_quantity,omitempty"`
	ReceivedQuantity  *decimal.Decimal `json:"received_quantity,omitempty"`
}

func newMovementEvent(id string, m *entity.StockMovement) MovementEvent {
	return MovementEvent{
		EventID:         id,
		EventType:       EventTypeMovementRecorded,
		MovementID:      m.ID,
		BranchID:        m.BranchID,
		ProductID:       m.ProductID,
		MovementType:    string(m.Type),
		Quantity:        m.Quantity,
		QuantityBefore:  m.QuantityBefore,
		QuantityAfter:   m.QuantityAfter,
		ReferenceType:   m.ReferenceType,
		ReferenceID:     m.ReferenceID,
		RelatedBranchID: m.RelatedBranchID,
		PerformedBy:     m.PerformedBy,
		Timestamp:       m.CreatedAt,
	}
}

func newTransferEvent(id string, t *entity.StockTransfer) TransferEvent {
	items := make([]TransferEventItem, 0, len(t.Items))
	for _, it := range t.Items {
		items = append(items, TransferEventItem{
			ProductID:         it.ProductID,
			RequestedQuantity: it.RequestedQuantity,
			ShippedQuantity:   it.ShippedQuantity,
			ReceivedQuantity:  it.ReceivedQuantity,
		})
	}
	return TransferEvent{
		EventID:             id,
		EventType:           TransferEventType(t.Status),
		TransferID:          t.ID,
		TransferNumber:      t.TransferNumber,
		SourceBranchID:      t.SourceBranchID,
		DestinationBranchID: t.DestinationBranchID,
		Status:              string(t.Status),
		HasVariance:         t.HasVariance(),
		Items:               items,
		Timestamp:           t.UpdatedAt,
	}
}
