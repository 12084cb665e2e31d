package inventory

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-sucursales/internal/domain"
	"github.com/jhoicas/inventario-sucursales/internal/domain/entity"
	dominv "github.com/jhoicas/inventario-sucursales/internal/domain/inventory"
	"github.com/jhoicas/inventario-sucursales/internal/domain/repository"
	"github.com/jhoicas/inventario-sucursales/pkg/logger"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

// StockLedger es el único punto por el que pasa cualquier cambio de cantidad.
// Cada escritura actualiza BranchStock e inserta un StockMovement en la misma transacción,
// con la fila (sucursal, producto) bloqueada durante el read-modify-write.
type StockLedger struct {
	deps Deps
	log  *logger.Logger
	now  func() time.Time
}

// NewStockLedger construye el libro de inventario.
func NewStockLedger(deps Deps, log *logger.Logger) *StockLedger {
	if log == nil {
		log = logger.Nop()
	}
	return &StockLedger{deps: deps.withDefaults(), log: log, now: time.Now}
}

// MovementInput solicitud de movimiento. Quantity es el delta con signo.
type MovementInput struct {
	BranchID        string
	ProductID       string
	Type            entity.MovementType
	Quantity        decimal.Decimal
	ReferenceType   string
	ReferenceID     string
	Reason          string
	RelatedBranchID string
	PerformedBy     string
	Notes           string
}

// AdjustInput ajuste manual: el signo de Quantity define ADJUSTMENT_PLUS/MINUS.
type AdjustInput struct {
	BranchID    string
	ProductID   string
	Quantity    decimal.Decimal
	Reason      string
	PerformedBy string
	Notes       string
}

// ShrinkageInput merma: Quantity es la cantidad perdida (positiva).
type ShrinkageInput struct {
	BranchID    string
	ProductID   string
	Quantity    decimal.Decimal
	Reason      dominv.ShrinkageReason
	PerformedBy string
	Notes       string
}

// RecordMovement valida y registra un movimiento; devuelve el saldo resultante y el movimiento creado.
func (l *StockLedger) RecordMovement(ctx context.Context, in MovementInput) (*entity.BranchStock, *entity.StockMovement, error) {
	if err := validateMovement(in); err != nil {
		l.deps.Metrics.Rejected("validation")
		return nil, nil, err
	}
	if err := l.ensureBranch(ctx, in.BranchID); err != nil {
		return nil, nil, err
	}
	if in.RelatedBranchID != "" {
		if err := l.ensureBranch(ctx, in.RelatedBranchID); err != nil {
			return nil, nil, err
		}
	}
	if err := l.ensureProduct(ctx, in.ProductID); err != nil {
		return nil, nil, err
	}

	var (
		stock *entity.BranchStock
		mov   *entity.StockMovement
	)
	err := l.runTx(ctx, func(ctx context.Context, repos TxRepos) error {
		var err error
		stock, mov, err = l.apply(ctx, repos, in)
		return err
	})
	if err != nil {
		l.rejected(err)
		return nil, nil, err
	}

	l.deps.Metrics.MovementRecorded(mov.Type)
	l.log.Info().
		Str("branch_id", mov.BranchID).
		Str("product_id", mov.ProductID).
		Str("movement_type", string(mov.Type)).
		Str("quantity", mov.Quantity.String()).
		Str("quantity_after", mov.QuantityAfter.String()).
		Msg("movimiento registrado")
	l.publishMovements(ctx, []*entity.StockMovement{mov})
	return stock, mov, nil
}

// AdjustStock registra un ajuste manual (motivo obligatorio).
func (l *StockLedger) AdjustStock(ctx context.Context, in AdjustInput) (*entity.BranchStock, *entity.StockMovement, error) {
	return l.RecordMovement(ctx, MovementInput{
		BranchID:    in.BranchID,
		ProductID:   in.ProductID,
		Type:        dominv.AdjustmentType(in.Quantity),
		Quantity:    in.Quantity,
		Reason:      in.Reason,
		PerformedBy: in.PerformedBy,
		Notes:       in.Notes,
	})
}

// RecordShrinkage registra una merma tipificada.
func (l *StockLedger) RecordShrinkage(ctx context.Context, in ShrinkageInput) (*entity.StockMovement, error) {
	if !in.Quantity.IsPositive() {
		return nil, domain.Invalid("quantity", "la merma debe ser mayor a cero")
	}
	if _, ok := dominv.ParseShrinkageReason(string(in.Reason)); !ok {
		return nil, domain.Invalid("reason", "motivo de merma desconocido")
	}
	reason := string(in.Reason)
	if n := strings.TrimSpace(in.Notes); n != "" {
		reason += ": " + n
	}
	_, mov, err := l.RecordMovement(ctx, MovementInput{
		BranchID:    in.BranchID,
		ProductID:   in.ProductID,
		Type:        entity.MovementShrinkage,
		Quantity:    in.Quantity.Neg(),
		Reason:      reason,
		PerformedBy: in.PerformedBy,
		Notes:       in.Notes,
	})
	return mov, err
}

// GetBranchStock devuelve el saldo de un producto en la sucursal (cero si nunca tuvo movimientos).
func (l *StockLedger) GetBranchStock(ctx context.Context, branchID, productID string) (*entity.BranchStock, error) {
	if branchID == "" {
		return nil, domain.Invalid("branch_id", "requerido")
	}
	if productID == "" {
		return nil, domain.Invalid("product_id", "requerido")
	}
	return l.deps.Stock.Get(ctx, branchID, productID)
}

// ListBranchStock lista el stock de una sucursal con datos del producto.
func (l *StockLedger) ListBranchStock(ctx context.Context, q repository.BranchStockQuery) ([]*entity.BranchStockView, int, error) {
	if q.BranchID == "" {
		return nil, 0, domain.Invalid("branch_id", "requerido")
	}
	q.Limit, q.Offset = normalizePage(q.Limit, q.Offset)
	q.Search = strings.TrimSpace(q.Search)
	return l.deps.Stock.List(ctx, q)
}

// ListLowStock filas con cantidad en o bajo el mínimo del producto. branchID vacío = todas.
func (l *StockLedger) ListLowStock(ctx context.Context, branchID string) ([]*entity.BranchStockView, error) {
	return l.deps.Stock.ListLowStock(ctx, branchID)
}

// ListMovements consulta el libro (sólo lectura).
func (l *StockLedger) ListMovements(ctx context.Context, filter entity.MovementFilter) ([]*entity.StockMovement, int, error) {
	if filter.Type != "" {
		if _, ok := dominv.ParseMovementType(string(filter.Type)); !ok {
			return nil, 0, domain.Invalid("type", "tipo de movimiento desconocido")
		}
	}
	if filter.From != nil && filter.To != nil && filter.From.After(*filter.To) {
		return nil, 0, domain.Invalid("from", "debe ser anterior a to")
	}
	filter.Limit, filter.Offset = normalizePage(filter.Limit, filter.Offset)
	return l.deps.Movements.List(ctx, filter)
}

// apply es el único camino de escritura del saldo. Debe ejecutarse dentro de una transacción:
// bloquea la fila, calcula before/after con lo leído bajo el bloqueo y escribe fila + movimiento.
func (l *StockLedger) apply(ctx context.Context, repos TxRepos, in MovementInput) (*entity.BranchStock, *entity.StockMovement, error) {
	if err := validateMovement(in); err != nil {
		return nil, nil, err
	}
	stock, err := repos.Stock.GetForUpdate(ctx, in.BranchID, in.ProductID)
	if err != nil {
		return nil, nil, err
	}
	before := stock.Quantity
	after := before.Add(in.Quantity)
	if after.IsNegative() {
		return nil, nil, &domain.InsufficientStockError{
			BranchID:  in.BranchID,
			ProductID: in.ProductID,
			Available: before,
			Requested: in.Quantity.Abs(),
		}
	}

	now := l.now()
	stock.Quantity = after
	stock.UpdatedAt = now
	switch in.Type {
	case entity.MovementShrinkage:
		stock.ActualShrinkage = stock.ActualShrinkage.Add(in.Quantity.Abs())
	case entity.MovementInventoryCount:
		counted := after
		stock.LastCountedAt = &now
		stock.LastCountedQuantity = &counted
	}
	if err := repos.Stock.Update(ctx, stock); err != nil {
		return nil, nil, err
	}

	mov := &entity.StockMovement{
		ID:               uuid.New().String(),
		BranchID:         in.BranchID,
		ProductID:        in.ProductID,
		Type:             in.Type,
		Quantity:         in.Quantity,
		QuantityBefore:   before,
		QuantityAfter:    after,
		ReferenceType:    in.ReferenceType,
		ReferenceID:      in.ReferenceID,
		AdjustmentReason: strings.TrimSpace(in.Reason),
		RelatedBranchID:  in.RelatedBranchID,
		PerformedBy:      in.PerformedBy,
		Notes:            in.Notes,
		CreatedAt:        now,
	}
	if err := repos.Movements.Create(ctx, mov); err != nil {
		return nil, nil, err
	}
	return stock, mov, nil
}

// markCounted registra la fecha y cantidad del conteo sin alterar la cantidad (no genera movimiento).
func (l *StockLedger) markCounted(ctx context.Context, repos TxRepos, stock *entity.BranchStock) error {
	now := l.now()
	counted := stock.Quantity
	stock.LastCountedAt = &now
	stock.LastCountedQuantity = &counted
	stock.UpdatedAt = now
	return repos.Stock.Update(ctx, stock)
}

// runTx ejecuta fn en una transacción; ante un conflicto de concurrencia reintenta una sola vez
// con lectura fresca. fn debe reiniciar todo estado capturado en cada ejecución.
func (l *StockLedger) runTx(ctx context.Context, fn func(ctx context.Context, repos TxRepos) error) error {
	err := l.deps.Tx.Run(ctx, fn)
	if errors.Is(err, domain.ErrConcurrencyConflict) {
		l.deps.Metrics.ConcurrencyRetry()
		l.log.Warn().Err(err).Msg("conflicto de concurrencia, reintentando con lectura fresca")
		err = l.deps.Tx.Run(ctx, fn)
	}
	return err
}

func (l *StockLedger) rejected(err error) {
	switch {
	case errors.Is(err, domain.ErrInsufficientStock):
		l.deps.Metrics.Rejected("insufficient_stock")
	case errors.Is(err, domain.ErrValidation):
		l.deps.Metrics.Rejected("validation")
	case errors.Is(err, domain.ErrInvalidStateTransition):
		l.deps.Metrics.Rejected("invalid_state")
	case errors.Is(err, domain.ErrConcurrencyConflict):
		l.deps.Metrics.Rejected("concurrency")
	}
}

func (l *StockLedger) publishMovements(ctx context.Context, movs []*entity.StockMovement) {
	if len(movs) == 0 {
		return
	}
	if err := l.deps.Events.MovementsRecorded(ctx, movs); err != nil {
		l.log.Warn().Err(err).Int("movements", len(movs)).Msg("no se pudo publicar evento de movimientos")
	}
}

func (l *StockLedger) ensureBranch(ctx context.Context, id string) error {
	if l.deps.Branches == nil {
		return nil
	}
	b, err := l.deps.Branches.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if b == nil {
		return domain.NotFound("sucursal", id)
	}
	return nil
}

func (l *StockLedger) ensureProduct(ctx context.Context, id string) error {
	if l.deps.Products == nil {
		return nil
	}
	p, err := l.deps.Products.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if p == nil {
		return domain.NotFound("producto", id)
	}
	return nil
}

func validateMovement(in MovementInput) error {
	if in.BranchID == "" {
		return domain.Invalid("branch_id", "requerido")
	}
	if in.ProductID == "" {
		return domain.Invalid("product_id", "requerido")
	}
	if _, ok := dominv.ParseMovementType(string(in.Type)); !ok {
		return domain.Invalid("type", "tipo de movimiento desconocido")
	}
	if err := dominv.ValidateDelta(in.Type, in.Quantity); err != nil {
		return err
	}
	if dominv.RequiresReason(in.Type) && strings.TrimSpace(in.Reason) == "" {
		return domain.Invalid("reason", "el motivo es obligatorio para "+string(in.Type))
	}
	if dominv.IsTransfer(in.Type) {
		if in.RelatedBranchID == "" {
			return domain.Invalid("related_branch_id", "requerido en traslados")
		}
		if in.RelatedBranchID == in.BranchID {
			return domain.Invalid("related_branch_id", "debe ser distinta de la sucursal del movimiento")
		}
	}
	return nil
}

func normalizePage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
