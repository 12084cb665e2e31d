package inventory

import (
	"context"
	"fmt"

	"github.com/jhoicas/inventario-sucursales/internal/domain"
	"github.com/jhoicas/inventario-sucursales/internal/domain/entity"
)

// DeliveryNoteGenerator representa gráficamente el remito de un traslado (PDF).
type DeliveryNoteGenerator interface {
	GenerateDeliveryNote(ctx context.Context, note *DeliveryNote) ([]byte, error)
}

// DeliveryNote datos del remito: el traslado ya despachado y el catálogo de cada línea.
type DeliveryNote struct {
	Transfer    *entity.StockTransfer
	Source      *entity.Branch
	Destination *entity.Branch
	Lines       []DeliveryNoteLine
}

// DeliveryNoteLine línea del remito con nombre y SKU del producto.
type DeliveryNoteLine struct {
	Item        entity.StockTransferItem
	SKU         string
	ProductName string
}

// DeliveryNotes arma y genera remitos de traslados.
type DeliveryNotes struct {
	deps      Deps
	generator DeliveryNoteGenerator
}

// NewDeliveryNotes construye el caso de uso inyectando el generador.
func NewDeliveryNotes(deps Deps, generator DeliveryNoteGenerator) *DeliveryNotes {
	return &DeliveryNotes{deps: deps.withDefaults(), generator: generator}
}

// Render genera el remito. Sólo hay remito desde que el traslado se despachó (IN_TRANSIT o RECEIVED).
// Devuelve el PDF y el nombre de archivo sugerido.
func (d *DeliveryNotes) Render(ctx context.Context, transferID string) ([]byte, string, error) {
	t, err := d.deps.Transfers.GetByID(ctx, transferID)
	if err != nil {
		return nil, "", err
	}
	if t == nil {
		return nil, "", domain.NotFound("traslado", transferID)
	}
	if t.Status != entity.TransferInTransit && t.Status != entity.TransferReceived {
		return nil, "", &domain.StateTransitionError{
			Resource: "traslado", ID: t.ID, Current: string(t.Status), Action: "remito",
		}
	}

	note := &DeliveryNote{Transfer: t}
	if note.Source, err = d.branch(ctx, t.SourceBranchID); err != nil {
		return nil, "", err
	}
	if note.Destination, err = d.branch(ctx, t.DestinationBranchID); err != nil {
		return nil, "", err
	}
	for _, it := range t.Items {
		line := DeliveryNoteLine{Item: it, ProductName: it.ProductID}
		p, err := d.deps.Products.GetByID(ctx, it.ProductID)
		if err != nil {
			return nil, "", err
		}
		if p != nil {
			line.SKU, line.ProductName = p.SKU, p.Name
		}
		note.Lines = append(note.Lines, line)
	}

	pdf, err := d.generator.GenerateDeliveryNote(ctx, note)
	if err != nil {
		return nil, "", fmt.Errorf("remito %s: %w", t.TransferNumber, err)
	}
	return pdf, fmt.Sprintf("remito-%s.pdf", t.TransferNumber), nil
}

// branch devuelve la sucursal o una con sólo el ID si el catálogo ya no la tiene.
func (d *DeliveryNotes) branch(ctx context.Context, id string) (*entity.Branch, error) {
	b, err := d.deps.Branches.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return &entity.Branch{ID: id, Name: id}, nil
	}
	return b, nil
}
