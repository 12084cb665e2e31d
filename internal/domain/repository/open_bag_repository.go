package repository

import (
	"context"

	"github.com/jhoicas/inventario-sucursales/internal/domain/entity"
)

// OpenBagRepository puerto de persistencia de bolsas abiertas.
type OpenBagRepository interface {
	Create(ctx context.Context, bag *entity.OpenBag) error
	GetByID(ctx context.Context, id string) (*entity.OpenBag, error)
	GetForUpdate(ctx context.Context, id string) (*entity.OpenBag, error)
	// FindOpen devuelve la bolsa OPEN de (sucursal, producto) o nil.
	FindOpen(ctx context.Context, branchID, productID string) (*entity.OpenBag, error)
	Update(ctx context.Context, bag *entity.OpenBag) error
	List(ctx context.Context, filter entity.OpenBagFilter) ([]*entity.OpenBag, int, error)
	// ListLow devuelve bolsas OPEN con remanente <= umbral. branchID vacío = todas.
	ListLow(ctx context.Context, branchID string) ([]*entity.OpenBag, error)
}
