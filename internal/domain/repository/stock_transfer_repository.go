package repository

import (
	"context"

	"github.com/jhoicas/inventario-sucursales/internal/domain/entity"
)

// StockTransferRepository puerto de persistencia de traslados y sus líneas.
type StockTransferRepository interface {
	NextNumber(ctx context.Context) (int64, error)
	Create(ctx context.Context, transfer *entity.StockTransfer) error
	GetByID(ctx context.Context, id string) (*entity.StockTransfer, error)
	// GetForUpdate bloquea la cabecera del traslado durante la transición.
	GetForUpdate(ctx context.Context, id string) (*entity.StockTransfer, error)
	// Update persiste estado, auditoría y cantidades de las líneas.
	Update(ctx context.Context, transfer *entity.StockTransfer) error
	List(ctx context.Context, filter entity.TransferFilter) ([]*entity.StockTransfer, int, error)
	// IncomingByBranch suma lo enviado en traslados IN_TRANSIT hacia la sucursal.
	IncomingByBranch(ctx context.Context, branchID string) ([]entity.IncomingStock, error)
}
