package repository

import (
	"context"

	"github.com/jhoicas/inventario-sucursales/internal/domain/entity"
)

// StockMovementRepository puerto de persistencia del libro (sólo inserción y lectura).
type StockMovementRepository interface {
	Create(ctx context.Context, movement *entity.StockMovement) error
	List(ctx context.Context, filter entity.MovementFilter) ([]*entity.StockMovement, int, error)
}
