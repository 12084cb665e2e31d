package inventory

import (
	"context"

	"github.com/jhoicas/inventario-sucursales/internal/domain/entity"
	"github.com/jhoicas/inventario-sucursales/internal/domain/repository"
)

// TxRepos repositorios atados a una misma transacción de BD.
type TxRepos struct {
	Stock     repository.BranchStockRepository
	Movements repository.StockMovementRepository
	Transfers repository.StockTransferRepository
	Bags      repository.OpenBagRepository
}

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Commit si fn devuelve nil, Rollback en cualquier otro caso.
type TxRunner interface {
	Run(ctx context.Context, fn func(ctx context.Context, repos TxRepos) error) error
}

// EventPublisher publica hechos ya confirmados. Un fallo aquí nunca revierte el libro.
type EventPublisher interface {
	MovementsRecorded(ctx context.Context, movements []*entity.StockMovement) error
	TransferChanged(ctx context.Context, transfer *entity.StockTransfer) error
}

// Metrics contadores operativos del inventario.
type Metrics interface {
	MovementRecorded(t entity.MovementType)
	Rejected(reason string)
	TransferTransition(status entity.TransferStatus)
	CompensationFailed()
	ConcurrencyRetry()
}

// NopPublisher descarta los eventos (publicación deshabilitada).
type NopPublisher struct{}

func (NopPublisher) MovementsRecorded(context.Context, []*entity.StockMovement) error { return nil }
func (NopPublisher) TransferChanged(context.Context, *entity.StockTransfer) error { return nil }

// NopMetrics descarta las métricas.
type NopMetrics struct{}

func (NopMetrics) MovementRecorded(entity.MovementType) {}
func (NopMetrics) Rejected(string) {}
func (NopMetrics) TransferTransition(entity.TransferStatus) {}
func (NopMetrics) CompensationFailed() {}
func (NopMetrics) ConcurrencyRetry() {}

// Deps agrupa las dependencias compartidas por los casos de uso de inventario.
type Deps struct {
	Tx        TxRunner
	Stock     repository.BranchStockRepository
	Movements repository.StockMovementRepository
	Transfers repository.StockTransferRepository
	Bags      repository.OpenBagRepository
	Products  repository.ProductRepository
	Branches  repository.BranchRepository
	Events    EventPublisher
	Metrics   Metrics
}

func (d Deps) withDefaults() Deps {
	if d.Events == nil {
		d.Events = NopPublisher{}
	}
	if d.Metrics == nil {
		d.Metrics = NopMetrics{}
	}
	return d
}
