package inventory_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-sucursales/internal/application/inventory"
	"github.com/jhoicas/inventario-sucursales/internal/domain"
	"github.com/jhoicas/inventario-sucursales/internal/domain/entity"
	"github.com/jhoicas/inventario-sucursales/internal/domain/repository"
	"github.com/jhoicas/inventario-sucursales/internal/infrastructure/memory"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const (
	branchCentro = "suc-centro"
	branchNorte  = "suc-norte"
	prodArroz    = "prod-arroz"
	prodAzucar   = "prod-azucar"
	prodAlimento = "prod-alimento-perro"
	testUser     = "00000000-0000-0000-0000-000000000001"
)

type fixture struct {
	store     *memory.Store
	deps      inventory.Deps
	ledger    *inventory.StockLedger
	transfers *inventory.TransferWorkflow
	bags      *inventory.OpenBagTracker
	counts    *inventory.ReconciliationEngine
}

// newFixture arma los casos de uso sobre el store en memoria con dos sucursales y tres productos.
// opts permite reemplazar dependencias (runner, eventos, métricas) antes de construir.
func newFixture(t *testing.T, opts ...func(*inventory.Deps)) *fixture {
	t.Helper()
	store := memory.NewStore()
	store.SeedBranch(entity.Branch{ID: branchCentro, Name: "Centro"})
	store.SeedBranch(entity.Branch{ID: branchNorte, Name: "Norte"})
	store.SeedProduct(entity.Product{ID: prodArroz, SKU: "ARR-1KG", Name: "Arroz 1kg", MinStock: dec("5")})
	store.SeedProduct(entity.Product{ID: prodAzucar, SKU: "AZU-1KG", Name: "Azúcar 1kg", MinStock: dec("2")})
	store.SeedProduct(entity.Product{ID: prodAlimento, SKU: "ALP-20KG", Name: "Alimento perro 20kg", IsWeighted: true})

	deps := store.Deps()
	for _, o := range opts {
		o(&deps)
	}
	ledger := inventory.NewStockLedger(deps, nil)
	return &fixture{
		store:     store,
		deps:      deps,
		ledger:    ledger,
		transfers: inventory.NewTransferWorkflow(deps, ledger, nil),
		bags:      inventory.NewOpenBagTracker(deps, ledger, nil),
		counts:    inventory.NewReconciliationEngine(ledger, nil),
	}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertDec(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...interface{}) {
	t.Helper()
	if !dec(want).Equal(got) {
		assert.Fail(t, fmt.Sprintf("esperado %s, obtenido %s", want, got.String()), msgAndArgs...)
	}
}

// purchase carga stock inicial con una compra.
func (f *fixture) purchase(t *testing.T, branchID, productID, qty string) {
	t.Helper()
	_, _, err := f.ledger.RecordMovement(context.Background(), inventory.MovementInput{
		BranchID:    branchID,
		ProductID:   productID,
		Type:        entity.MovementPurchase,
		Quantity:    dec(qty),
		PerformedBy: testUser,
	})
	require.NoError(t, err)
}

func (f *fixture) quantity(t *testing.T, branchID, productID string) decimal.Decimal {
	t.Helper()
	s, err := f.ledger.GetBranchStock(context.Background(), branchID, productID)
	require.NoError(t, err)
	return s.Quantity
}

// assertLedgerConsistent verifica que cada saldo sea la suma de sus movimientos
// y que cada movimiento cumpla after = before + delta.
func (f *fixture) assertLedgerConsistent(t *testing.T) {
	t.Helper()
	sums := map[[2]string]decimal.Decimal{}
	for _, m := range f.store.Movements() {
		assert.True(t, m.QuantityAfter.Equal(m.QuantityBefore.Add(m.Quantity)),
			"movimiento %s inconsistente", m.ID)
		k := [2]string{m.BranchID, m.ProductID}
		sums[k] = sums[k].Add(m.Quantity)
	}
	for k, sum := range sums {
		assertDec(t, sum.String(), f.quantity(t, k[0], k[1]), "saldo de %v", k)
	}
}

func (f *fixture) movementsOf(refID string) []entity.StockMovement {
	var out []entity.StockMovement
	for _, m := range f.store.Movements() {
		if m.ReferenceID == refID {
			out = append(out, m)
		}
	}
	return out
}

// ──────────────────────────────────────────────────────────────────────────────
// Dobles de prueba
// ──────────────────────────────────────────────────────────────────────────────

// flakyTx devuelve conflicto de concurrencia en las primeras `fails` ejecuciones.
type flakyTx struct {
	inner inventory.TxRunner
	fails int
	calls int
}

func (f *flakyTx) Run(ctx context.Context, fn func(ctx context.Context, repos inventory.TxRepos) error) error {
	f.calls++
	if f.fails > 0 {
		f.fails--
		return domain.ErrConcurrencyConflict
	}
	return f.inner.Run(ctx, fn)
}

// failingMovementsTx hace fallar la inserción de movimientos del tipo indicado.
type failingMovementsTx struct {
	inner  inventory.TxRunner
	failOn entity.MovementType
}

func (f *failingMovementsTx) Run(ctx context.Context, fn func(ctx context.Context, repos inventory.TxRepos) error) error {
	return f.inner.Run(ctx, func(ctx context.Context, repos inventory.TxRepos) error {
		repos.Movements = failingMovements{StockMovementRepository: repos.Movements, failOn: f.failOn}
		return fn(ctx, repos)
	})
}

type failingMovements struct {
	repository.StockMovementRepository
	failOn entity.MovementType
}

func (f failingMovements) Create(ctx context.Context, m *entity.StockMovement) error {
	if m.Type == f.failOn {
		return errors.New("conexión perdida")
	}
	return f.StockMovementRepository.Create(ctx, m)
}

type recordingEvents struct {
	mu        sync.Mutex
	movements []*entity.StockMovement
	transfers []entity.TransferStatus
	err       error
}

func (r *recordingEvents) MovementsRecorded(_ context.Context, m []*entity.StockMovement) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.movements = append(r.movements, m...)
	return r.err
}

func (r *recordingEvents) TransferChanged(_ context.Context, t *entity.StockTransfer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.transfers = append(r.transfers, t.Status)
	return r.err
}

type countingMetrics struct {
	mu            sync.Mutex
	movements     map[entity.MovementType]int
	rejections    map[string]int
	transitions   map[entity.TransferStatus]int
	compensations int
	retries       int
}

func newCountingMetrics() *countingMetrics {
	return &countingMetrics{
		movements:   map[entity.MovementType]int{},
		rejections:  map[string]int{},
		transitions: map[entity.TransferStatus]int{},
	}
}

func (m *countingMetrics) MovementRecorded(t entity.MovementType) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.movements[t]++
}

func (m *countingMetrics) Rejected(reason string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rejections[reason]++
}

func (m *countingMetrics) TransferTransition(s entity.TransferStatus) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transitions[s]++
}

func (m *countingMetrics) CompensationFailed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.compensations++
}

func (m *countingMetrics) ConcurrencyRetry() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.retries++
}
