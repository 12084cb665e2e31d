package repository

import (
	"context"

	"github.com/jhoicas/inventario-sucursales/internal/domain/entity"
)

// ProductRepository lectura del catálogo (administrado por otro subsistema).
type ProductRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Product, error)
}

// BranchRepository lectura de sucursales.
type BranchRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Branch, error)
}
