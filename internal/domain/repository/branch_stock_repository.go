package repository

import (
	"context"

	"github.com/jhoicas/inventario-sucursales/internal/domain/entity"
)

// BranchStockQuery filtros del listado de stock de una sucursal.
type BranchStockQuery struct {
	BranchID string
	Search   string // nombre o sku
	LowStock bool
	Limit    int
	Offset   int
}

// BranchStockRepository puerto para el saldo por (sucursal, producto).
// Dentro de una transacción GetForUpdate bloquea la fila hasta el commit.
type BranchStockRepository interface {
	Get(ctx context.Context, branchID, productID string) (*entity.BranchStock, error)
	// GetForUpdate crea la fila en cero si no existe y la bloquea (SELECT FOR UPDATE).
	GetForUpdate(ctx context.Context, branchID, productID string) (*entity.BranchStock, error)
	// Update escribe la fila si Version coincide; en otro caso devuelve domain.ErrConcurrencyConflict.
	Update(ctx context.Context, stock *entity.BranchStock) error
	List(ctx context.Context, q BranchStockQuery) ([]*entity.BranchStockView, int, error)
	// ListLowStock devuelve filas con cantidad <= mínimo del producto. branchID vacío = todas.
	ListLowStock(ctx context.Context, branchID string) ([]*entity.BranchStockView, error)
}
