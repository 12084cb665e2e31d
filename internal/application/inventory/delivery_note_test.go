package inventory_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-sucursales/internal/application/inventory"
	"github.com/jhoicas/inventario-sucursales/internal/domain"
)

type capturingGenerator struct {
	note *inventory.DeliveryNote
	err  error
}

func (g *capturingGenerator) GenerateDeliveryNote(_ context.Context, note *inventory.DeliveryNote) ([]byte, error) {
	g.note = note
	if g.err != nil {
		return nil, g.err
	}
	return []byte("%PDF-fake"), nil
}

func TestDeliveryNote_TrasladoDespachado(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.purchase(t, branchCentro, prodArroz, "10")
	tr := f.createTransfer(t, item(prodArroz, "4"))
	_, err := f.transfers.Approve(ctx, tr.ID, nil, testUser)
	require.NoError(t, err)

	gen := &capturingGenerator{}
	pdf, filename, err := inventory.NewDeliveryNotes(f.deps, gen).Render(ctx, tr.ID)
	require.NoError(t, err)

	assert.Equal(t, []byte("%PDF-fake"), pdf)
	assert.Equal(t, "remito-TR-000001.pdf", filename)
	require.NotNil(t, gen.note)
	assert.Equal(t, "Centro", gen.note.Source.Name)
	assert.Equal(t, "Norte", gen.note.Destination.Name)
	require.Len(t, gen.note.Lines, 1)
	assert.Equal(t, "ARR-1KG", gen.note.Lines[0].SKU)
	assert.Equal(t, "Arroz 1kg", gen.note.Lines[0].ProductName)
	assertDec(t, "4", *gen.note.Lines[0].Item.ShippedQuantity)
}

func TestDeliveryNote_PendienteNoTieneRemito(t *testing.T) {
	f := newFixture(t)
	tr := f.createTransfer(t, item(prodArroz, "1"))

	_, _, err := inventory.NewDeliveryNotes(f.deps, &capturingGenerator{}).Render(context.Background(), tr.ID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidStateTransition))
}

func TestDeliveryNote_TrasladoInexistente(t *testing.T) {
	f := newFixture(t)

	_, _, err := inventory.NewDeliveryNotes(f.deps, &capturingGenerator{}).Render(context.Background(), "no-existe")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestDeliveryNote_ErrorDelGenerador(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.purchase(t, branchCentro, prodArroz, "10")
	tr := f.createTransfer(t, item(prodArroz, "4"))
	_, err := f.transfers.Approve(ctx, tr.ID, nil, testUser)
	require.NoError(t, err)

	boom := errors.New("fuente no disponible")
	_, _, err = inventory.NewDeliveryNotes(f.deps, &capturingGenerator{err: boom}).Render(ctx, tr.ID)
	assert.ErrorIs(t, err, boom)
}
