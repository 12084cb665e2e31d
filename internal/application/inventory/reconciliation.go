package inventory

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-sucursales/internal/domain"
	"github.com/jhoicas/inventario-sucursales/internal/domain/entity"
	"github.com/jhoicas/inventario-sucursales/pkg/logger"
)

// Acciones del detalle de conteo.
const (
	CountActionAdjusted = "ADJUSTED"
	CountActionNoChange = "NO_CHANGE"
)

const defaultCountReason = "conteo físico de inventario"

// ReconciliationEngine convierte un conteo físico en movimientos INVENTORY_COUNT.
type ReconciliationEngine struct {
	ledger *StockLedger
	log    *logger.Logger
}

// NewReconciliationEngine construye el motor de conciliación.
func NewReconciliationEngine(ledger *StockLedger, log *logger.Logger) *ReconciliationEngine {
	if log == nil {
		log = logger.Nop()
	}
	return &ReconciliationEngine{ledger: ledger, log: log}
}

// CountEntry cantidad contada de un producto.
type CountEntry struct {
	ProductID       string
	CountedQuantity decimal.Decimal
}

// CountInput conteo de una sucursal.
type CountInput struct {
	BranchID    string
	Entries     []CountEntry
	Notes       string
	PerformedBy string
}

// CountDetail resultado por línea, en el orden recibido.
type CountDetail struct {
	ProductID  string
	Previous   decimal.Decimal
	Counted    decimal.Decimal
	Variance   decimal.Decimal
	Action     string
	MovementID string
}

// CountResult resumen del conteo.
type CountResult struct {
	CountID     string
	Processed   int
	Adjustments int
	NoChange    int
	Details     []CountDetail
}

// SubmitCount compara cada cantidad contada con el saldo vigente (leído bajo bloqueo) y escribe
// un INVENTORY_COUNT por la diferencia. Sin diferencia no hay movimiento.
// El conteo se aplica completo o no se aplica.
func (r *ReconciliationEngine) SubmitCount(ctx context.Context, in CountInput) (*CountResult, error) {
	if err := validateCount(in); err != nil {
		return nil, err
	}
	if err := r.ledger.ensureBranch(ctx, in.BranchID); err != nil {
		return nil, err
	}
	for _, e := range in.Entries {
		if err := r.ledger.ensureProduct(ctx, e.ProductID); err != nil {
			return nil, err
		}
	}

	reason := strings.TrimSpace(in.Notes)
	if reason == "" {
		reason = defaultCountReason
	}
	countID := uuid.New().String()

	order := make([]int, len(in.Entries))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return in.Entries[order[a]].ProductID < in.Entries[order[b]].ProductID
	})

	var (
		result *CountResult
		movs   []*entity.StockMovement
	)
	err := r.ledger.runTx(ctx, func(ctx context.Context, repos TxRepos) error {
		res := &CountResult{CountID: countID, Processed: len(in.Entries), Details: make([]CountDetail, len(in.Entries))}
		movs = nil
		for _, i := range order {
			e := in.Entries[i]
			stock, err := repos.Stock.GetForUpdate(ctx, in.BranchID, e.ProductID)
			if err != nil {
				return err
			}
			d := CountDetail{
				ProductID: e.ProductID,
				Previous:  stock.Quantity,
				Counted:   e.CountedQuantity,
				Variance:  e.CountedQuantity.Sub(stock.Quantity),
			}
			if d.Variance.IsZero() {
				if err := r.ledger.markCounted(ctx, repos, stock); err != nil {
					return err
				}
				d.Action = CountActionNoChange
				res.NoChange++
			} else {
				_, mov, err := r.ledger.apply(ctx, repos, MovementInput{
					BranchID:      in.BranchID,
					ProductID:     e.ProductID,
					Type:          entity.MovementInventoryCount,
					Quantity:      d.Variance,
					ReferenceType: entity.ReferenceInventoryCount,
					ReferenceID:   countID,
					Reason:        reason,
					PerformedBy:   in.PerformedBy,
					Notes:         in.Notes,
				})
				if err != nil {
					return err
				}
				d.Action = CountActionAdjusted
				d.MovementID = mov.ID
				res.Adjustments++
				movs = append(movs, mov)
			}
			res.Details[i] = d
		}
		result = res
		return nil
	})
	if err != nil {
		r.ledger.rejected(err)
		return nil, err
	}

	for _, m := range movs {
		r.ledger.deps.Metrics.MovementRecorded(m.Type)
	}
	r.log.Info().
		Str("count_id", countID).
		Str("branch_id", in.BranchID).
		Int("processed", result.Processed).
		Int("adjustments", result.Adjustments).
		Int("no_change", result.NoChange).
		Msg("conteo de inventario aplicado")
	r.ledger.publishMovements(ctx, movs)
	return result, nil
}

func validateCount(in CountInput) error {
	if in.BranchID == "" {
		return domain.Invalid("branch_id", "requerido")
	}
	if len(in.Entries) == 0 {
		return domain.Invalid("entries", "debe incluir al menos un producto")
	}
	seen := make(map[string]bool, len(in.Entries))
	for _, e := range in.Entries {
		if e.ProductID == "" {
			return domain.Invalid("entries.product_id", "requerido")
		}
		if seen[e.ProductID] {
			return domain.Invalid("entries.product_id", "producto repetido: "+e.ProductID)
		}
		seen[e.ProductID] = true
		if e.CountedQuantity.IsNegative() {
			return domain.Invalid("entries.counted_quantity", "no puede ser negativa")
		}
	}
	return nil
}
