package inventory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-sucursales/internal/domain"
	"github.com/jhoicas/inventario-sucursales/internal/domain/entity"
	dominv "github.com/jhoicas/inventario-sucursales/internal/domain/inventory"
	"github.com/jhoicas/inventario-sucursales/pkg/logger"
)

// TransferWorkflow coordina el traslado de stock entre sucursales sin transacción distribuida:
// el débito en origen (aprobación) y el crédito en destino (recepción) se confirman por separado
// y entre ambos el traslado queda IN_TRANSIT, consultable como stock en camino.
type TransferWorkflow struct {
	deps   Deps
	ledger *StockLedger
	log    *logger.Logger
	now    func() time.Time
}

// NewTransferWorkflow construye el flujo de traslados sobre el libro.
func NewTransferWorkflow(deps Deps, ledger *StockLedger, log *logger.Logger) *TransferWorkflow {
	if log == nil {
		log = logger.Nop()
	}
	return &TransferWorkflow{deps: deps.withDefaults(), ledger: ledger, log: log, now: time.Now}
}

// TransferItemInput línea solicitada.
type TransferItemInput struct {
	ProductID string
	Quantity  decimal.Decimal
}

// CreateTransferInput solicitud de traslado.
type CreateTransferInput struct {
	SourceBranchID      string
	DestinationBranchID string
	Items               []TransferItemInput
	Notes               string
	RequestedBy         string
}

// ItemQuantity cantidad informada para una línea existente (enviada o recibida).
type ItemQuantity struct {
	ItemID   string
	Quantity decimal.Decimal
}

// Create registra el traslado en PENDING. No mueve stock.
func (w *TransferWorkflow) Create(ctx context.Context, in CreateTransferInput) (*entity.StockTransfer, error) {
	if err := validateCreateTransfer(in); err != nil {
		return nil, err
	}
	if err := w.ledger.ensureBranch(ctx, in.SourceBranchID); err != nil {
		return nil, err
	}
	if err := w.ledger.ensureBranch(ctx, in.DestinationBranchID); err != nil {
		return nil, err
	}
	for _, it := range in.Items {
		if err := w.ledger.ensureProduct(ctx, it.ProductID); err != nil {
			return nil, err
		}
	}

	var transfer *entity.StockTransfer
	err := w.deps.Tx.Run(ctx, func(ctx context.Context, repos TxRepos) error {
		n, err := repos.Transfers.NextNumber(ctx)
		if err != nil {
			return err
		}
		now := w.now()
		t := &entity.StockTransfer{
			ID:                  uuid.New().String(),
			TransferNumber:      fmt.Sprintf("TR-%06d", n),
			SourceBranchID:      in.SourceBranchID,
			DestinationBranchID: in.DestinationBranchID,
			Status:              entity.TransferPending,
			RequestedBy:         in.RequestedBy,
			RequestedAt:         now,
			Notes:               strings.TrimSpace(in.Notes),
			UpdatedAt:           now,
		}
		for _, it := range in.Items {
			t.Items = append(t.Items, entity.StockTransferItem{
				ID:                uuid.New().String(),
				TransferID:        t.ID,
				ProductID:         it.ProductID,
				RequestedQuantity: it.Quantity,
			})
		}
		if err := repos.Transfers.Create(ctx, t); err != nil {
			return err
		}
		transfer = t
		return nil
	})
	if err != nil {
		return nil, err
	}

	w.deps.Metrics.TransferTransition(transfer.Status)
	w.log.Info().
		Str("transfer_id", transfer.ID).
		Str("transfer_number", transfer.TransferNumber).
		Str("source_branch_id", transfer.SourceBranchID).
		Str("destination_branch_id", transfer.DestinationBranchID).
		Int("items", len(transfer.Items)).
		Msg("traslado creado")
	w.publishTransfer(ctx, transfer)
	return transfer, nil
}

// Approve fija las cantidades enviadas (por defecto lo solicitado) y descuenta el origen con
// TRANSFER_OUT por línea. Todo o nada: si una línea deja el origen en negativo no se aprueba ninguna.
func (w *TransferWorkflow) Approve(ctx context.Context, transferID string, shipped []ItemQuantity, approvedBy string) (*entity.StockTransfer, error) {
	if transferID == "" {
		return nil, domain.Invalid("transfer_id", "requerido")
	}
	var (
		transfer *entity.StockTransfer
		movs     []*entity.StockMovement
	)
	err := w.ledger.runTx(ctx, func(ctx context.Context, repos TxRepos) error {
		movs = nil
		t, err := w.lockForAction(ctx, repos, transferID, dominv.ActionApprove)
		if err != nil {
			return err
		}
		quantities, err := resolveQuantities(t, shipped, func(it entity.StockTransferItem) decimal.Decimal {
			return it.RequestedQuantity
		}, false)
		if err != nil {
			return err
		}
		for _, idx := range lockOrder(t.Items) {
			it := &t.Items[idx]
			qty := quantities[it.ID]
			_, mov, err := w.ledger.apply(ctx, repos, MovementInput{
				BranchID:        t.SourceBranchID,
				ProductID:       it.ProductID,
				Type:            entity.MovementTransferOut,
				Quantity:        qty.Neg(),
				ReferenceType:   entity.ReferenceTransfer,
				ReferenceID:     t.ID,
				RelatedBranchID: t.DestinationBranchID,
				PerformedBy:     approvedBy,
				Notes:           "traslado " + t.TransferNumber,
			})
			if err != nil {
				return err
			}
			it.ShippedQuantity = &qty
			movs = append(movs, mov)
		}
		now := w.now()
		t.Status = entity.TransferInTransit
		t.ApprovedBy, t.ShippedBy = approvedBy, approvedBy
		t.ApprovedAt, t.ShippedAt = &now, &now
		t.UpdatedAt = now
		if err := repos.Transfers.Update(ctx, t); err != nil {
			return err
		}
		transfer = t
		return nil
	})
	if err != nil {
		w.ledger.rejected(err)
		return nil, err
	}

	w.afterTransition(ctx, transfer, movs, "traslado aprobado y despachado")
	return transfer, nil
}

// Receive acredita el destino con TRANSFER_IN por lo recibido (por defecto lo enviado).
// La diferencia recibido-enviado queda registrada en la línea; no genera movimientos correctivos.
func (w *TransferWorkflow) Receive(ctx context.Context, transferID string, received []ItemQuantity, notes, receivedBy string) (*entity.StockTransfer, error) {
	if transferID == "" {
		return nil, domain.Invalid("transfer_id", "requerido")
	}
	var (
		transfer *entity.StockTransfer
		movs     []*entity.StockMovement
	)
	err := w.ledger.runTx(ctx, func(ctx context.Context, repos TxRepos) error {
		movs = nil
		t, err := w.lockForAction(ctx, repos, transferID, dominv.ActionReceive)
		if err != nil {
			return err
		}
		quantities, err := resolveQuantities(t, received, func(it entity.StockTransferItem) decimal.Decimal {
			return shippedOf(it)
		}, true)
		if err != nil {
			return err
		}
		for _, idx := range lockOrder(t.Items) {
			it := &t.Items[idx]
			qty := quantities[it.ID]
			it.ReceivedQuantity = &qty
			if qty.IsZero() {
				continue
			}
			_, mov, err := w.ledger.apply(ctx, repos, MovementInput{
				BranchID:        t.DestinationBranchID,
				ProductID:       it.ProductID,
				Type:            entity.MovementTransferIn,
				Quantity:        qty,
				ReferenceType:   entity.ReferenceTransfer,
				ReferenceID:     t.ID,
				RelatedBranchID: t.SourceBranchID,
				PerformedBy:     receivedBy,
				Notes:           "traslado " + t.TransferNumber,
			})
			if err != nil {
				return err
			}
			movs = append(movs, mov)
		}
		now := w.now()
		t.Status = entity.TransferReceived
		t.ReceivedBy = receivedBy
		t.ReceivedAt = &now
		t.Notes = appendNote(t.Notes, notes)
		t.UpdatedAt = now
		if err := repos.Transfers.Update(ctx, t); err != nil {
			return err
		}
		transfer = t
		return nil
	})
	if err != nil {
		w.ledger.rejected(err)
		return nil, err
	}

	if transfer.HasVariance() {
		for _, it := range transfer.Items {
			if v := it.Variance(); !v.IsZero() {
				w.log.Warn().
					Str("transfer_id", transfer.ID).
					Str("product_id", it.ProductID).
					Str("variance", v.String()).
					Msg("diferencia entre enviado y recibido")
			}
		}
	}
	w.afterTransition(ctx, transfer, movs, "traslado recibido")
	return transfer, nil
}

// Cancel cancela desde PENDING (sólo cambio de estado) o desde IN_TRANSIT, en cuyo caso
// primero devuelve al origen lo enviado con un TRANSFER_IN compensatorio por línea.
// Si la compensación no se puede escribir el traslado sigue IN_TRANSIT y se devuelve
// domain.ErrCompensationFailure: hay una diferencia real de stock pendiente y es seguro reintentar.
func (w *TransferWorkflow) Cancel(ctx context.Context, transferID, reason, cancelledBy string) (*entity.StockTransfer, error) {
	if transferID == "" {
		return nil, domain.Invalid("transfer_id", "requerido")
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, domain.Invalid("reason", "el motivo de cancelación es obligatorio")
	}

	var (
		transfer     *entity.StockTransfer
		movs         []*entity.StockMovement
		compensating bool
	)
	err := w.ledger.runTx(ctx, func(ctx context.Context, repos TxRepos) error {
		movs = nil
		compensating = false
		t, err := w.lockForAction(ctx, repos, transferID, dominv.ActionCancel)
		if err != nil {
			return err
		}
		if t.Status == entity.TransferInTransit {
			compensating = true
			for _, idx := range lockOrder(t.Items) {
				it := t.Items[idx]
				qty := shippedOf(it)
				if !qty.IsPositive() {
					continue
				}
				_, mov, err := w.ledger.apply(ctx, repos, MovementInput{
					BranchID:        t.SourceBranchID,
					ProductID:       it.ProductID,
					Type:            entity.MovementTransferIn,
					Quantity:        qty,
					ReferenceType:   entity.ReferenceTransfer,
					ReferenceID:     t.ID,
					RelatedBranchID: t.DestinationBranchID,
					Reason:          reason,
					PerformedBy:     cancelledBy,
					Notes:           "reversa por cancelación del traslado " + t.TransferNumber,
				})
				if err != nil {
					return err
				}
				movs = append(movs, mov)
			}
		}
		now := w.now()
		t.Status = entity.TransferCancelled
		t.CancelledBy = cancelledBy
		t.CancelledAt = &now
		t.CancelReason = reason
		t.UpdatedAt = now
		if err := repos.Transfers.Update(ctx, t); err != nil {
			return err
		}
		transfer = t
		return nil
	})
	if err != nil {
		if compensating && !errors.Is(err, domain.ErrCompensationFailure) {
			err = &domain.CompensationError{TransferID: transferID, Cause: err}
		}
		if errors.Is(err, domain.ErrCompensationFailure) {
			w.deps.Metrics.CompensationFailed()
			w.log.Error().Err(err).
				Str("transfer_id", transferID).
				Msg("compensación de traslado en tránsito fallida: stock de origen sin restituir")
		} else {
			w.ledger.rejected(err)
		}
		return nil, err
	}

	w.afterTransition(ctx, transfer, movs, "traslado cancelado")
	return transfer, nil
}

// Get obtiene un traslado con sus líneas.
func (w *TransferWorkflow) Get(ctx context.Context, id string) (*entity.StockTransfer, error) {
	t, err := w.deps.Transfers.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, domain.NotFound("traslado", id)
	}
	return t, nil
}

// List lista traslados (la sucursal filtra por origen o destino).
func (w *TransferWorkflow) List(ctx context.Context, filter entity.TransferFilter) ([]*entity.StockTransfer, int, error) {
	switch filter.Status {
	case "", entity.TransferPending, entity.TransferInTransit, entity.TransferReceived, entity.TransferCancelled:
	default:
		return nil, 0, domain.Invalid("status", "estado desconocido")
	}
	filter.Limit, filter.Offset = normalizePage(filter.Limit, filter.Offset)
	return w.deps.Transfers.List(ctx, filter)
}

// Incoming stock en camino hacia la sucursal (traslados IN_TRANSIT), por producto.
// BranchStock no lo incluye: se acredita recién al recibir.
func (w *TransferWorkflow) Incoming(ctx context.Context, branchID string) ([]entity.IncomingStock, error) {
	if branchID == "" {
		return nil, domain.Invalid("branch_id", "requerido")
	}
	return w.deps.Transfers.IncomingByBranch(ctx, branchID)
}

func (w *TransferWorkflow) lockForAction(ctx context.Context, repos TxRepos, id string, action dominv.TransferAction) (*entity.StockTransfer, error) {
	t, err := repos.Transfers.GetForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, domain.NotFound("traslado", id)
	}
	if _, ok := dominv.NextTransferStatus(t.Status, action); !ok {
		return nil, &domain.StateTransitionError{
			Resource: "traslado",
			ID:       t.ID,
			Current:  string(t.Status),
			Action:   string(action),
		}
	}
	return t, nil
}

func (w *TransferWorkflow) afterTransition(ctx context.Context, t *entity.StockTransfer, movs []*entity.StockMovement, msg string) {
	w.deps.Metrics.TransferTransition(t.Status)
	for _, m := range movs {
		w.deps.Metrics.MovementRecorded(m.Type)
	}
	w.log.Info().
		Str("transfer_id", t.ID).
		Str("transfer_number", t.TransferNumber).
		Str("status", string(t.Status)).
		Int("movements", len(movs)).
		Msg(msg)
	w.ledger.publishMovements(ctx, movs)
	w.publishTransfer(ctx, t)
}

func (w *TransferWorkflow) publishTransfer(ctx context.Context, t *entity.StockTransfer) {
	if err := w.deps.Events.TransferChanged(ctx, t); err != nil {
		w.log.Warn().Err(err).Str("transfer_id", t.ID).Msg("no se pudo publicar evento de traslado")
	}
}

// resolveQuantities combina lo informado por línea con el valor por defecto.
// allowZero distingue recepción (puede perderse todo) de despacho (debe enviarse algo).
func resolveQuantities(t *entity.StockTransfer, given []ItemQuantity, def func(entity.StockTransferItem) decimal.Decimal, allowZero bool) (map[string]decimal.Decimal, error) {
	out := make(map[string]decimal.Decimal, len(t.Items))
	for _, it := range t.Items {
		out[it.ID] = def(it)
	}
	seen := make(map[string]bool, len(given))
	for _, g := range given {
		if g.ItemID == "" {
			return nil, domain.Invalid("items.item_id", "requerido")
		}
		if _, ok := t.Item(g.ItemID); !ok {
			return nil, domain.NotFound("línea de traslado", g.ItemID)
		}
		if seen[g.ItemID] {
			return nil, domain.Invalid("items.item_id", "línea repetida: "+g.ItemID)
		}
		seen[g.ItemID] = true
		if g.Quantity.IsNegative() || (!allowZero && g.Quantity.IsZero()) {
			return nil, domain.Invalid("items.quantity", "cantidad inválida para la línea "+g.ItemID)
		}
		out[g.ItemID] = g.Quantity
	}
	return out, nil
}

// lockOrder índices de líneas ordenados por producto: bloqueo determinístico para evitar deadlocks.
func lockOrder(items []entity.StockTransferItem) []int {
	idx := make([]int, len(items))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return items[idx[a]].ProductID < items[idx[b]].ProductID
	})
	return idx
}

func shippedOf(it entity.StockTransferItem) decimal.Decimal {
	if it.ShippedQuantity == nil {
		return decimal.Zero
	}
	return *it.ShippedQuantity
}

func appendNote(current, extra string) string {
	extra = strings.TrimSpace(extra)
	if extra == "" {
		return current
	}
	if current == "" {
		return extra
	}
	return current + "\n" + extra
}

func validateCreateTransfer(in CreateTransferInput) error {
	if in.SourceBranchID == "" {
		return domain.Invalid("source_branch_id", "requerido")
	}
	if in.DestinationBranchID == "" {
		return domain.Invalid("destination_branch_id", "requerido")
	}
	if in.SourceBranchID == in.DestinationBranchID {
		return domain.Invalid("destination_branch_id", "origen y destino deben ser distintos")
	}
	if len(in.Items) == 0 {
		return domain.Invalid("items", "debe incluir al menos una línea")
	}
	seen := make(map[string]bool, len(in.Items))
	for _, it := range in.Items {
		if it.ProductID == "" {
			return domain.Invalid("items.product_id", "requerido")
		}
		if seen[it.ProductID] {
			return domain.Invalid("items.product_id", "producto repetido: "+it.ProductID)
		}
		seen[it.ProductID] = true
		if !it.Quantity.IsPositive() {
			return domain.Invalid("items.quantity", "debe ser mayor a cero")
		}
	}
	return nil
}
