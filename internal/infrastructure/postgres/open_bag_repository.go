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

var _ repository.OpenBagRepository = (*OpenBagRepo)(nil)

const openBagColumns = `id, branch_id, product_id, original_weight, remaining_weight, low_stock_threshold,
		status, opened_at, opened_by, closed_at, closed_by, notes, updated_at`

// OpenBagRepo bolsas abiertas sobre PostgreSQL. Un índice único parcial garantiza una sola OPEN por (sucursal, producto).
type OpenBagRepo struct {
	q Querier
}

// NewOpenBagRepository construye el adaptador. Pasar pool o tx (Querier).
func NewOpenBagRepository(q Querier) *OpenBagRepo {
	return &OpenBagRepo{q: q}
}

func scanOpenBag(row pgx.Row, extra ...any) (*entity.OpenBag, error) {
	var (
		b                       entity.OpenBag
		status                  string
		openedBy, closedBy, nts *string
	)
	dest := append([]any{
		&b.ID, &b.BranchID, &b.ProductID, &b.OriginalWeight, &b.RemainingWeight, &b.LowStockThreshold,
		&status, &b.OpenedAt, &openedBy, &b.ClosedAt, &closedBy, &nts, &b.UpdatedAt,
	}, extra...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	b.Status = entity.OpenBagStatus(status)
	b.OpenedBy, b.ClosedBy, b.Notes = deref(openedBy), deref(closedBy), deref(nts)
	return &b, nil
}

// Create inserta la bolsa. Una segunda OPEN para el mismo par devuelve domain.ErrBagAlreadyOpen.
func (r *OpenBagRepo) Create(ctx context.Context, b *entity.OpenBag) error {
	query := `
		INSERT INTO open_bags (id, branch_id, product_id, original_weight, remaining_weight, low_stock_threshold,
			status, opened_at, opened_by, notes, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(ctx, query,
		b.ID, b.BranchID, b.ProductID, b.OriginalWeight, b.RemainingWeight, b.LowStockThreshold,
		string(b.Status), b.OpenedAt, nullable(b.OpenedBy), nullable(b.Notes), b.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrBagAlreadyOpen
		}
		return wrapErr("create open bag", err)
	}
	return nil
}

// GetByID obtiene una bolsa; nil si no existe.
func (r *OpenBagRepo) GetByID(ctx context.Context, id string) (*entity.OpenBag, error) {
	return r.getOne(ctx, "get open bag", `SELECT `+openBagColumns+` FROM open_bags WHERE id = $1`, id)
}

// GetForUpdate bloquea la bolsa hasta el fin de la transacción.
func (r *OpenBagRepo) GetForUpdate(ctx context.Context, id string) (*entity.OpenBag, error) {
	return r.getOne(ctx, "get open bag for update", `SELECT `+openBagColumns+` FROM open_bags WHERE id = $1 FOR UPDATE`, id)
}

// FindOpen devuelve la bolsa OPEN del par o nil.
func (r *OpenBagRepo) FindOpen(ctx context.Context, branchID, productID string) (*entity.OpenBag, error) {
	query := `SELECT ` + openBagColumns + ` FROM open_bags
		WHERE branch_id = $1 AND product_id = $2 AND status = 'OPEN'
		FOR UPDATE`
	return r.getOne(ctx, "find open bag", query, branchID, productID)
}

func (r *OpenBagRepo) getOne(ctx context.Context, op, query string, args ...any) (*entity.OpenBag, error) {
	b, err := scanOpenBag(r.q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrapErr(op, err)
	}
	return b, nil
}

// Update persiste remanente, estado y cierre.
func (r *OpenBagRepo) Update(ctx context.Context, b *entity.OpenBag) error {
	query := `
		UPDATE open_bags SET remaining_weight = $2, status = $3, closed_at = $4, closed_by = $5,
			notes = $6, updated_at = $7
		WHERE id = $1`
	cmd, err := r.q.Exec(ctx, query, b.ID, b.RemainingWeight, string(b.Status), b.ClosedAt,
		nullable(b.ClosedBy), nullable(b.Notes), b.UpdatedAt)
	if err != nil {
		return wrapErr("update open bag", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("update open bag %s: no existe", b.ID)
	}
	return nil
}

// List lista bolsas con filtros, más recientes primero.
func (r *OpenBagRepo) List(ctx context.Context, f entity.OpenBagFilter) ([]*entity.OpenBag, int, error) {
	query := `SELECT ` + openBagColumns + `, count(*) OVER() FROM open_bags WHERE 1 = 1`
	var args []any
	pos := 1
	if f.BranchID != "" {
		query += fmt.Sprintf(" AND branch_id = $%d", pos)
		args = append(args, f.BranchID)
		pos++
	}
	if f.ProductID != "" {
		query += fmt.Sprintf(" AND product_id = $%d", pos)
		args = append(args, f.ProductID)
		pos++
	}
	if f.Status != "" {
		query += fmt.Sprintf(" AND status = $%d", pos)
		args = append(args, string(f.Status))
		pos++
	}
	query += fmt.Sprintf(" ORDER BY opened_at DESC, id LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, f.Limit, f.Offset)

	var total int
	list, err := r.query(ctx, "list open bags", query, []any{&total}, args...)
	if err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

// ListLow bolsas OPEN con remanente en o bajo el umbral. branchID vacío = todas.
func (r *OpenBagRepo) ListLow(ctx context.Context, branchID string) ([]*entity.OpenBag, error) {
	query := `SELECT ` + openBagColumns + ` FROM open_bags
		WHERE status = 'OPEN' AND remaining_weight <= low_stock_threshold
		  AND ($1 = '' OR branch_id::text = $1)
		ORDER BY branch_id, remaining_weight, id`
	return r.query(ctx, "list low open bags", query, nil, branchID)
}

func (r *OpenBagRepo) query(ctx context.Context, op, query string, extra []any, args ...any) ([]*entity.OpenBag, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, wrapErr(op, err)
	}
	defer rows.Close()
	var list []*entity.OpenBag
	for rows.Next() {
		b, err := scanOpenBag(rows, extra...)
		if err != nil {
			return nil, wrapErr("scan "+op, err)
		}
		list = append(list, b)
	}
	return list, wrapErr(op, rows.Err())
}
