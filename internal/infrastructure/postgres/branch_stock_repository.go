package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/inventario-sucursales/internal/domain"
	"github.com/jhoicas/inventario-sucursales/internal/domain/entity"
	"github.com/jhoicas/inventario-sucursales/internal/domain/repository"
)

var _ repository.BranchStockRepository = (*BranchStockRepo)(nil)

const branchStockColumns = `s.branch_id, s.product_id, s.quantity, s.reserved_quantity, s.expected_shrinkage_percent,
		s.actual_shrinkage, s.last_counted_at, s.last_counted_quantity, s.version, s.updated_at`

// BranchStockRepo saldo por (sucursal, producto) sobre PostgreSQL (usable con pool o tx).
type BranchStockRepo struct {
	q Querier
}

// NewBranchStockRepository construye el adaptador. Pasar pool o tx (Querier).
func NewBranchStockRepository(q Querier) *BranchStockRepo {
	return &BranchStockRepo{q: q}
}

func scanBranchStock(row pgx.Row, extra ...any) (*entity.BranchStock, error) {
	var s entity.BranchStock
	dest := append([]any{
		&s.BranchID, &s.ProductID, &s.Quantity, &s.ReservedQuantity, &s.ExpectedShrinkagePercent,
		&s.ActualShrinkage, &s.LastCountedAt, &s.LastCountedQuantity, &s.Version, &s.UpdatedAt,
	}, extra...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	return &s, nil
}

// Get obtiene el saldo; sin fila devuelve cero (la combinación nunca tuvo movimientos).
func (r *BranchStockRepo) Get(ctx context.Context, branchID, productID string) (*entity.BranchStock, error) {
	query := `SELECT ` + branchStockColumns + `
		FROM branch_stock s WHERE s.branch_id = $1 AND s.product_id = $2`
	s, err := scanBranchStock(r.q.QueryRow(ctx, query, branchID, productID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return entity.NewBranchStock(branchID, productID), nil
		}
		return nil, wrapErr("get branch stock", err)
	}
	return s, nil
}

// GetForUpdate crea la fila en cero si no existe y la bloquea (SELECT FOR UPDATE) hasta el fin de la tx.
func (r *BranchStockRepo) GetForUpdate(ctx context.Context, branchID, productID string) (*entity.BranchStock, error) {
	_, err := r.q.Exec(ctx, `
		INSERT INTO branch_stock (branch_id, product_id) VALUES ($1, $2)
		ON CONFLICT (branch_id, product_id) DO NOTHING`, branchID, productID)
	if err != nil {
		return nil, wrapErr("bootstrap branch stock", err)
	}
	query := `SELECT ` + branchStockColumns + `
		FROM branch_stock s WHERE s.branch_id = $1 AND s.product_id = $2
		FOR UPDATE`
	s, err := scanBranchStock(r.q.QueryRow(ctx, query, branchID, productID))
	if err != nil {
		return nil, wrapErr("get branch stock for update", err)
	}
	return s, nil
}

// Update escribe la fila sólo si la versión leída sigue vigente.
func (r *BranchStockRepo) Update(ctx context.Context, s *entity.BranchStock) error {
	query := `
		UPDATE branch_stock SET
			quantity = $3, reserved_quantity = $4, expected_shrinkage_percent = $5, actual_shrinkage = $6,
			last_counted_at = $7, last_counted_quantity = $8, updated_at = $9, version = version + 1
		WHERE branch_id = $1 AND product_id = $2 AND version = $10`
	cmd, err := r.q.Exec(ctx, query,
		s.BranchID, s.ProductID, s.Quantity, s.ReservedQuantity, s.ExpectedShrinkagePercent, s.ActualShrinkage,
		s.LastCountedAt, s.LastCountedQuantity, s.UpdatedAt, s.Version,
	)
	if err != nil {
		return wrapErr("update branch stock", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("update branch stock %s/%s: %w", s.BranchID, s.ProductID, domain.ErrConcurrencyConflict)
	}
	s.Version++
	return nil
}

// List lista el stock de una sucursal con datos del producto.
func (r *BranchStockRepo) List(ctx context.Context, q repository.BranchStockQuery) ([]*entity.BranchStockView, int, error) {
	query := `SELECT ` + branchStockColumns + `, p.name, p.sku, p.min_stock, count(*) OVER()
		FROM branch_stock s
		JOIN products p ON p.id = s.product_id
		WHERE s.branch_id = $1`
	args := []any{q.BranchID}
	pos := 2
	if q.Search != "" {
		query += fmt.Sprintf(" AND (p.name ILIKE $%d OR p.sku ILIKE $%d)", pos, pos)
		args = append(args, "%"+q.Search+"%")
		pos++
	}
	if q.LowStock {
		query += " AND p.min_stock > 0 AND s.quantity <= p.min_stock"
	}
	query += fmt.Sprintf(" ORDER BY p.name, s.product_id LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, q.Limit, q.Offset)

	return r.queryViews(ctx, "list branch stock", query, args...)
}

// ListLowStock filas con cantidad en o bajo el mínimo del producto. branchID vacío = todas.
func (r *BranchStockRepo) ListLowStock(ctx context.Context, branchID string) ([]*entity.BranchStockView, error) {
	query := `SELECT ` + branchStockColumns + `, p.name, p.sku, p.min_stock, count(*) OVER()
		FROM branch_stock s
		JOIN products p ON p.id = s.product_id
		WHERE p.min_stock > 0 AND s.quantity <= p.min_stock
		  AND ($1 = '' OR s.branch_id::text = $1)
		ORDER BY s.branch_id, p.name, s.product_id`
	list, _, err := r.queryViews(ctx, "list low stock", query, branchID)
	return list, err
}

func (r *BranchStockRepo) queryViews(ctx context.Context, op, query string, args ...any) ([]*entity.BranchStockView, int, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, wrapErr(op, err)
	}
	defer rows.Close()
	var (
		list  []*entity.BranchStockView
		total int
	)
	for rows.Next() {
		var v entity.BranchStockView
		s, err := scanBranchStock(rows, &v.ProductName, &v.SKU, &v.MinStock, &total)
		if err != nil {
			return nil, 0, wrapErr("scan "+op, err)
		}
		v.BranchStock = *s
		list = append(list, &v)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, wrapErr(op, err)
	}
	return list, total, nil
}
