// Package pdf genera el remito (nota de entrega) de un traslado entre sucursales.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: REMITO + N° traslado │ Estado + Fecha de despacho   │
//	│  ─────────────────────────────────────────────────────────  │
//	│  ORIGEN: sucursal │ DESTINO: sucursal                        │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: SKU | Producto | Solicitado | Enviado | Recibido      │
//	│  ─────────────────────────────────────────────────────────  │
//	│  FOOTER: QR con el ID + firmas de despacho y recepción        │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"time"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-sucursales/internal/application/inventory"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorAlert   = &props.Color{Red: 170, Green: 30, Blue: 30}
)

// ── Generator ─────────────────────────────────────────────────────────────────

var _ inventory.DeliveryNoteGenerator = (*MarotoPDFGenerator)(nil)

// MarotoPDFGenerator implementa inventory.DeliveryNoteGenerator usando Maroto v2.
type MarotoPDFGenerator struct{}

// NewMarotoPDFGenerator construye el generador.
func NewMarotoPDFGenerator() *MarotoPDFGenerator { return &MarotoPDFGenerator{} }

// GenerateDeliveryNote genera el PDF y devuelve sus bytes.
func (g *MarotoPDFGenerator) GenerateDeliveryNote(_ context.Context, note *inventory.DeliveryNote) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Remito "+note.Transfer.TransferNumber, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(note))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(branchesRow(note))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	m.AddRows(tableDetailRows(note.Lines)...)
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	if note.Transfer.Notes != "" {
		m.AddRows(row.New(10).Add(col.New(12).Add(
			text.New("Observaciones: "+note.Transfer.Notes, props.Text{Size: 8, Top: 2, Color: colorGray}),
		)))
	}
	m.AddRows(line.NewRow(3))
	m.AddRows(footerRow(note))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func headerRow(note *inventory.DeliveryNote) core.Row {
	t := note.Transfer
	return row.New(18).Add(
		col.New(7).Add(
			text.New("REMITO DE TRASLADO", props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New(t.TransferNumber, props.Text{
				Style: fontstyle.Bold, Size: 11, Top: 9,
			}),
		),
		col.New(5).Add(
			text.New("Estado: "+string(t.Status), props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right, Color: colorPrimary, Top: 1,
			}),
			text.New("Despacho: "+formatDate(t.ShippedAt), props.Text{
				Size: 8, Align: align.Right, Top: 7, Color: colorGray,
			}),
			text.New("Recepción: "+formatDate(t.ReceivedAt), props.Text{
				Size: 8, Align: align.Right, Top: 12, Color: colorGray,
			}),
		),
	)
}

func branchesRow(note *inventory.DeliveryNote) core.Row {
	block := func(title, name, user string) core.Col {
		return col.New(6).Add(
			text.New(title, props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1}),
			text.New(name, props.Text{Style: fontstyle.Bold, Size: 10, Top: 6}),
			text.New("Responsable: "+nonEmpty(user, "—"), props.Text{Size: 8, Top: 12, Color: colorGray}),
		)
	}
	return row.New(18).Add(
		block("ORIGEN", note.Source.Name, note.Transfer.ShippedBy),
		block("DESTINO", note.Destination.Name, note.Transfer.ReceivedBy),
	)
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a, Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("SKU", 2, align.Left),
		h("Producto", 4, align.Left),
		h("Solicitado", 2, align.Right),
		h("Enviado", 2, align.Right),
		h("Recibido", 2, align.Right),
	)
}

// tableDetailRows: una fila por línea; lo recibido que difiere de lo enviado va resaltado.
func tableDetailRows(lines []inventory.DeliveryNoteLine) []core.Row {
	result := make([]core.Row, 0, len(lines))
	for _, l := range lines {
		received := props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1}
		if !l.Item.Variance().IsZero() {
			received.Style = fontstyle.Bold
			received.Color = colorAlert
		}
		result = append(result, row.New(7).Add(
			col.New(2).Add(text.New(nonEmpty(l.SKU, "—"), props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(4).Add(text.New(l.ProductName, props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(2).Add(text.New(formatQty(&l.Item.RequestedQuantity), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
			col.New(2).Add(text.New(formatQty(l.Item.ShippedQuantity), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
			col.New(2).Add(text.New(formatQty(l.Item.ReceivedQuantity), received)),
		))
	}
	return result
}

// footerRow: QR con el ID del traslado y espacio para firmas.
func footerRow(note *inventory.DeliveryNote) core.Row {
	return row.New(40).Add(
		col.New(3).Add(code.NewQr(note.Transfer.ID, props.Rect{Percent: 90, Center: true})),
		col.New(9).Add(
			text.New("Firma despacho: ______________________", props.Text{Size: 9, Top: 8, Left: 3}),
			text.New("Firma recepción: _____________________", props.Text{Size: 9, Top: 20, Left: 3}),
			text.New("ID: "+note.Transfer.ID, props.Text{Size: 6.5, Top: 32, Left: 3, Color: colorGray}),
		),
	)
}

// ── helpers ───────────────────────────────────────────────────────────────────

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

func formatDate(t *time.Time) string {
	if t == nil {
		return "—"
	}
	return t.Format("02/01/2006 15:04")
}

// formatQty muestra hasta 3 decimales sin ceros de relleno ("2.5", "10").
func formatQty(q *decimal.Decimal) string {
	if q == nil {
		return "—"
	}
	return q.Round(3).String()
}
