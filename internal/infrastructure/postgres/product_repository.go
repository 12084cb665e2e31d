package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/inventario-sucursales/internal/domain/entity"
	"github.com/jhoicas/inventario-sucursales/internal/domain/repository"
)

var (
	_ repository.ProductRepository = (*ProductRepo)(nil)
	_ repository.BranchRepository  = (*BranchRepo)(nil)
)

// ProductRepo lectura del catálogo de productos sobre PostgreSQL (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador de lectura de productos. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

// GetByID obtiene un producto por ID; nil si no existe.
func (r *ProductRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	query := `SELECT id, sku, name, min_stock, is_weighted FROM products WHERE id = $1`
	var p entity.Product
	err := r.q.QueryRow(ctx, query, id).Scan(&p.ID, &p.SKU, &p.Name, &p.MinStock, &p.IsWeighted)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrapErr("get product", err)
	}
	return &p, nil
}

// BranchRepo lectura de sucursales.
type BranchRepo struct {
	q Querier
}

// NewBranchRepository construye el adaptador de lectura de sucursales.
func NewBranchRepository(q Querier) *BranchRepo {
	return &BranchRepo{q: q}
}

// GetByID obtiene una sucursal por ID; nil si no existe.
func (r *BranchRepo) GetByID(ctx context.Context, id string) (*entity.Branch, error) {
	var b entity.Branch
	err := r.q.QueryRow(ctx, `SELECT id, name FROM branches WHERE id = $1`, id).Scan(&b.ID, &b.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrapErr("get branch", err)
	}
	return &b, nil
}
