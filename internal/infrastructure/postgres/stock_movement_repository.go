package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/inventario-sucursales/internal/domain/entity"
	"github.com/jhoicas/inventario-sucursales/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

// StockMovementRepo libro de movimientos sobre PostgreSQL. La tabla rechaza UPDATE y DELETE (trigger).
type StockMovementRepo struct {
	q Querier
}

// NewStockMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockMovementRepository(q Querier) *StockMovementRepo {
	return &StockMovementRepo{q: q}
}

// Create inserta un movimiento.
func (r *StockMovementRepo) Create(ctx context.Context, m *entity.StockMovement) error {
	query := `
		INSERT INTO stock_movements (id, branch_id, product_id, movement_type, quantity, quantity_before, quantity_after,
			reference_type, reference_id, adjustment_reason, related_branch_id, performed_by, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
	_, err := r.q.Exec(ctx, query,
		m.ID, m.BranchID, m.ProductID, string(m.Type), m.Quantity, m.QuantityBefore, m.QuantityAfter,
		nullable(m.ReferenceType), nullable(m.ReferenceID), nullable(m.AdjustmentReason),
		nullable(m.RelatedBranchID), nullable(m.PerformedBy), nullable(m.Notes), m.CreatedAt,
	)
	if err != nil {
		return wrapErr("create stock movement", err)
	}
	return nil
}

// List consulta el libro con filtros, más recientes primero.
func (r *StockMovementRepo) List(ctx context.Context, f entity.MovementFilter) ([]*entity.StockMovement, int, error) {
	query := `
		SELECT id, branch_id, product_id, movement_type, quantity, quantity_before, quantity_after,
			reference_type, reference_id, adjustment_reason, related_branch_id, performed_by, notes, created_at,
			count(*) OVER()
		FROM stock_movements WHERE 1 = 1`
	var args []any
	pos := 1
	add := func(cond string, v any) {
		query += fmt.Sprintf(" AND "+cond, pos)
		args = append(args, v)
		pos++
	}
	if f.BranchID != "" {
		add("branch_id = $%d", f.BranchID)
	}
	if f.ProductID != "" {
		add("product_id = $%d", f.ProductID)
	}
	if f.Type != "" {
		add("movement_type = $%d", string(f.Type))
	}
	if f.ReferenceID != "" {
		add("reference_id = $%d", f.ReferenceID)
	}
	if f.From != nil {
		add("created_at >= $%d", *f.From)
	}
	if f.To != nil {
		add("created_at <= $%d", *f.To)
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC, id LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, f.Limit, f.Offset)

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, wrapErr("list stock movements", err)
	}
	defer rows.Close()
	var (
		list  []*entity.StockMovement
		total int
	)
	for rows.Next() {
		var (
			m                                          entity.StockMovement
			typ                                        string
			refType, refID, reason, related, by, notes *string
		)
		if err := rows.Scan(&m.ID, &m.BranchID, &m.ProductID, &typ, &m.Quantity, &m.QuantityBefore, &m.QuantityAfter,
			&refType, &refID, &reason, &related, &by, &notes, &m.CreatedAt, &total); err != nil {
			return nil, 0, wrapErr("scan stock movement", err)
		}
		m.Type = entity.MovementType(typ)
		m.ReferenceType, m.ReferenceID, m.AdjustmentReason = deref(refType), deref(refID), deref(reason)
		m.RelatedBranchID, m.PerformedBy, m.Notes = deref(related), deref(by), deref(notes)
		list = append(list, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, wrapErr("list stock movements", err)
	}
	return list, total, nil
}
