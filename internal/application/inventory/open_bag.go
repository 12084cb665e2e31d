package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-sucursales/internal/domain"
	"github.com/jhoicas/inventario-sucursales/internal/domain/entity"
	dominv "github.com/jhoicas/inventario-sucursales/internal/domain/inventory"
	"github.com/jhoicas/inventario-sucursales/pkg/logger"
)

const openBagReason = "apertura de unidad sellada para venta a granel"

// OpenBagTracker administra el sub-inventario por peso de unidades abiertas.
type OpenBagTracker struct {
	deps   Deps
	ledger *StockLedger
	log    *logger.Logger
	now    func() time.Time
}

// NewOpenBagTracker construye el caso de uso de bolsas abiertas.
func NewOpenBagTracker(deps Deps, ledger *StockLedger, log *logger.Logger) *OpenBagTracker {
	if log == nil {
		log = logger.Nop()
	}
	return &OpenBagTracker{deps: deps.withDefaults(), ledger: ledger, log: log, now: time.Now}
}

// OpenBagInput apertura de una unidad sellada. Threshold nil = 15% del peso original.
type OpenBagInput struct {
	BranchID       string
	ProductID      string
	OriginalWeight decimal.Decimal
	Threshold      *decimal.Decimal
	Notes          string
	OpenedBy       string
}

// Open consume una unidad sellada del stock de la sucursal y crea la bolsa OPEN, ambas cosas
// en la misma transacción. Falla si ya hay una bolsa abierta para (sucursal, producto).
func (t *OpenBagTracker) Open(ctx context.Context, in OpenBagInput) (*entity.OpenBag, error) {
	if in.BranchID == "" {
		return nil, domain.Invalid("branch_id", "requerido")
	}
	if in.ProductID == "" {
		return nil, domain.Invalid("product_id", "requerido")
	}
	if !in.OriginalWeight.IsPositive() {
		return nil, domain.Invalid("original_weight", "debe ser mayor a cero")
	}
	threshold := dominv.DefaultBagThreshold(in.OriginalWeight)
	if in.Threshold != nil {
		if in.Threshold.IsNegative() || in.Threshold.GreaterThan(in.OriginalWeight) {
			return nil, domain.Invalid("threshold", "debe estar entre 0 y el peso original")
		}
		threshold = *in.Threshold
	}
	if err := t.ledger.ensureBranch(ctx, in.BranchID); err != nil {
		return nil, err
	}
	if err := t.ledger.ensureProduct(ctx, in.ProductID); err != nil {
		return nil, err
	}

	var (
		bag *entity.OpenBag
		mov *entity.StockMovement
	)
	err := t.ledger.runTx(ctx, func(ctx context.Context, repos TxRepos) error {
		id := uuid.New().String()
		// Bloquear la fila de stock serializa dos aperturas concurrentes antes de buscar la bolsa abierta.
		if _, err := repos.Stock.GetForUpdate(ctx, in.BranchID, in.ProductID); err != nil {
			return err
		}
		existing, err := repos.Bags.FindOpen(ctx, in.BranchID, in.ProductID)
		if err != nil {
			return err
		}
		if existing != nil {
			return domain.ErrBagAlreadyOpen
		}
		_, m, err := t.ledger.apply(ctx, repos, MovementInput{
			BranchID:      in.BranchID,
			ProductID:     in.ProductID,
			Type:          entity.MovementAdjustmentMinus,
			Quantity:      decimal.NewFromInt(-1),
			ReferenceType: entity.ReferenceOpenBag,
			ReferenceID:   id,
			Reason:        openBagReason,
			PerformedBy:   in.OpenedBy,
			Notes:         in.Notes,
		})
		if err != nil {
			return err
		}
		now := t.now()
		b := &entity.OpenBag{
			ID:                id,
			BranchID:          in.BranchID,
			ProductID:         in.ProductID,
			OriginalWeight:    in.OriginalWeight,
			RemainingWeight:   in.OriginalWeight,
			LowStockThreshold: threshold,
			Status:            entity.OpenBagOpen,
			OpenedAt:          now,
			OpenedBy:          in.OpenedBy,
			Notes:             in.Notes,
			UpdatedAt:         now,
		}
		if err := repos.Bags.Create(ctx, b); err != nil {
			return err
		}
		bag, mov = b, m
		return nil
	})
	if err != nil {
		t.ledger.rejected(err)
		return nil, err
	}

	t.deps.Metrics.MovementRecorded(mov.Type)
	t.log.Info().
		Str("bag_id", bag.ID).
		Str("branch_id", bag.BranchID).
		Str("product_id", bag.ProductID).
		Str("original_weight", bag.OriginalWeight.String()).
		Str("threshold", bag.LowStockThreshold.String()).
		Msg("bolsa abierta")
	t.ledger.publishMovements(ctx, []*entity.StockMovement{mov})
	return bag, nil
}

// Deduct descuenta peso de una bolsa abierta. Si el remanente llega a cero la bolsa pasa a EMPTY.
func (t *OpenBagTracker) Deduct(ctx context.Context, bagID string, quantity decimal.Decimal, saleReference, performedBy string) (*entity.OpenBag, error) {
	if bagID == "" {
		return nil, domain.Invalid("bag_id", "requerido")
	}
	if !quantity.IsPositive() {
		return nil, domain.Invalid("quantity", "debe ser mayor a cero")
	}
	var bag *entity.OpenBag
	err := t.ledger.runTx(ctx, func(ctx context.Context, repos TxRepos) error {
		b, err := t.lockOpen(ctx, repos, bagID, "deduct")
		if err != nil {
			return err
		}
		if quantity.GreaterThan(b.RemainingWeight) {
			return &domain.InsufficientStockError{
				BranchID:  b.BranchID,
				ProductID: b.ProductID,
				Available: b.RemainingWeight,
				Requested: quantity,
			}
		}
		now := t.now()
		b.RemainingWeight = b.RemainingWeight.Sub(quantity)
		if b.RemainingWeight.IsZero() {
			b.Status = entity.OpenBagEmpty
			b.ClosedAt = &now
			b.ClosedBy = performedBy
		}
		b.UpdatedAt = now
		if err := repos.Bags.Update(ctx, b); err != nil {
			return err
		}
		bag = b
		return nil
	})
	if err != nil {
		t.ledger.rejected(err)
		return nil, err
	}

	ev := t.log.Info().
		Str("bag_id", bag.ID).
		Str("quantity", quantity.String()).
		Str("remaining_weight", bag.RemainingWeight.String()).
		Str("sale_reference", saleReference)
	if bag.IsLow() {
		ev = ev.Bool("low_stock", true)
	}
	ev.Msg("descuento de bolsa abierta")
	return bag, nil
}

// Close da de baja la bolsa: remanente 0 y EMPTY aunque quedara peso.
func (t *OpenBagTracker) Close(ctx context.Context, bagID, notes, closedBy string) (*entity.OpenBag, error) {
	if bagID == "" {
		return nil, domain.Invalid("bag_id", "requerido")
	}
	var (
		bag      *entity.OpenBag
		writeOff decimal.Decimal
	)
	err := t.ledger.runTx(ctx, func(ctx context.Context, repos TxRepos) error {
		b, err := t.lockOpen(ctx, repos, bagID, "close")
		if err != nil {
			return err
		}
		now := t.now()
		writeOff = b.RemainingWeight
		b.RemainingWeight = decimal.Zero
		b.Status = entity.OpenBagEmpty
		b.ClosedAt = &now
		b.ClosedBy = closedBy
		b.Notes = appendNote(b.Notes, notes)
		b.UpdatedAt = now
		if err := repos.Bags.Update(ctx, b); err != nil {
			return err
		}
		bag = b
		return nil
	})
	if err != nil {
		t.ledger.rejected(err)
		return nil, err
	}

	t.log.Info().
		Str("bag_id", bag.ID).
		Str("written_off", writeOff.String()).
		Msg("bolsa cerrada")
	return bag, nil
}

// Get obtiene una bolsa.
func (t *OpenBagTracker) Get(ctx context.Context, id string) (*entity.OpenBag, error) {
	b, err := t.deps.Bags.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, domain.NotFound("bolsa", id)
	}
	return b, nil
}

// List lista bolsas con filtros.
func (t *OpenBagTracker) List(ctx context.Context, filter entity.OpenBagFilter) ([]*entity.OpenBag, int, error) {
	switch filter.Status {
	case "", entity.OpenBagOpen, entity.OpenBagEmpty:
	default:
		return nil, 0, domain.Invalid("status", "estado desconocido")
	}
	filter.Limit, filter.Offset = normalizePage(filter.Limit, filter.Offset)
	return t.deps.Bags.List(ctx, filter)
}

// ListLowStock bolsas abiertas en o bajo su umbral (hasta que se cierren).
func (t *OpenBagTracker) ListLowStock(ctx context.Context, branchID string) ([]*entity.OpenBag, error) {
	return t.deps.Bags.ListLow(ctx, branchID)
}

func (t *OpenBagTracker) lockOpen(ctx context.Context, repos TxRepos, id, action string) (*entity.OpenBag, error) {
	b, err := repos.Bags.GetForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, domain.NotFound("bolsa", id)
	}
	if b.Status != entity.OpenBagOpen {
		return nil, &domain.StateTransitionError{Resource: "bolsa", ID: b.ID, Current: string(b.Status), Action: action}
	}
	return b, nil
}
