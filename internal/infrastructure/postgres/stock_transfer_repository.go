package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/inventario-sucursales/internal/domain/entity"
	"github.com/jhoicas/inventario-sucursales/internal/domain/repository"
)

var _ repository.StockTransferRepository = (*StockTransferRepo)(nil)

const transferColumns = `id, transfer_number, source_branch_id, destination_branch_id, status,
		requested_by, approved_by, shipped_by, received_by, cancelled_by,
		requested_at, approved_at, shipped_at, received_at, cancelled_at,
		cancel_reason, notes, updated_at`

// StockTransferRepo traslados y sus líneas sobre PostgreSQL.
type StockTransferRepo struct {
	q Querier
}

// NewStockTransferRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockTransferRepository(q Querier) *StockTransferRepo {
	return &StockTransferRepo{q: q}
}

// NextNumber toma el siguiente valor de la secuencia de numeración.
func (r *StockTransferRepo) NextNumber(ctx context.Context) (int64, error) {
	var n int64
	if err := r.q.QueryRow(ctx, `SELECT nextval('stock_transfer_number_seq')`).Scan(&n); err != nil {
		return 0, wrapErr("next transfer number", err)
	}
	return n, nil
}

// Create inserta cabecera y líneas.
func (r *StockTransferRepo) Create(ctx context.Context, t *entity.StockTransfer) error {
	query := `
		INSERT INTO stock_transfers (id, transfer_number, source_branch_id, destination_branch_id, status,
			requested_by, requested_at, notes, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(ctx, query,
		t.ID, t.TransferNumber, t.SourceBranchID, t.DestinationBranchID, string(t.Status),
		nullable(t.RequestedBy), t.RequestedAt, nullable(t.Notes), t.UpdatedAt,
	)
	if err != nil {
		return wrapErr("create stock transfer", err)
	}
	for _, it := range t.Items {
		_, err := r.q.Exec(ctx, `
			INSERT INTO stock_transfer_items (id, transfer_id, product_id, requested_quantity, shipped_quantity, received_quantity)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			it.ID, t.ID, it.ProductID, it.RequestedQuantity, it.ShippedQuantity, it.ReceivedQuantity,
		)
		if err != nil {
			return wrapErr("create stock transfer item", err)
		}
	}
	return nil
}

// GetByID obtiene un traslado con sus líneas; nil si no existe.
func (r *StockTransferRepo) GetByID(ctx context.Context, id string) (*entity.StockTransfer, error) {
	return r.get(ctx, id, "")
}

// GetForUpdate bloquea la cabecera hasta el fin de la transacción.
func (r *StockTransferRepo) GetForUpdate(ctx context.Context, id string) (*entity.StockTransfer, error) {
	return r.get(ctx, id, " FOR UPDATE")
}

func (r *StockTransferRepo) get(ctx context.Context, id, lock string) (*entity.StockTransfer, error) {
	query := `SELECT ` + transferColumns + ` FROM stock_transfers WHERE id = $1` + lock
	t, err := scanTransfer(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrapErr("get stock transfer", err)
	}
	items, err := r.items(ctx, []string{t.ID})
	if err != nil {
		return nil, err
	}
	t.Items = items[t.ID]
	return t, nil
}

// Update persiste estado, auditoría y cantidades enviadas/recibidas.
func (r *StockTransferRepo) Update(ctx context.Context, t *entity.StockTransfer) error {
	query := `
		UPDATE stock_transfers SET status = $2,
			approved_by = $3, shipped_by = $4, received_by = $5, cancelled_by = $6,
			approved_at = $7, shipped_at = $8, received_at = $9, cancelled_at = $10,
			cancel_reason = $11, notes = $12, updated_at = $13
		WHERE id = $1`
	cmd, err := r.q.Exec(ctx, query, t.ID, string(t.Status),
		nullable(t.ApprovedBy), nullable(t.ShippedBy), nullable(t.ReceivedBy), nullable(t.CancelledBy),
		t.ApprovedAt, t.ShippedAt, t.ReceivedAt, t.CancelledAt,
		nullable(t.CancelReason), nullable(t.Notes), t.UpdatedAt,
	)
	if err != nil {
		return wrapErr("update stock transfer", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("update stock transfer %s: no existe", t.ID)
	}
	for _, it := range t.Items {
		_, err := r.q.Exec(ctx, `
			UPDATE stock_transfer_items SET shipped_quantity = $2, received_quantity = $3
			WHERE id = $1`, it.ID, it.ShippedQuantity, it.ReceivedQuantity)
		if err != nil {
			return wrapErr("update stock transfer item", err)
		}
	}
	return nil
}

// List lista traslados (la sucursal filtra por origen o destino), más recientes primero.
func (r *StockTransferRepo) List(ctx context.Context, f entity.TransferFilter) ([]*entity.StockTransfer, int, error) {
	query := `SELECT ` + transferColumns + `, count(*) OVER() FROM stock_transfers WHERE 1 = 1`
	var args []any
	pos := 1
	if f.BranchID != "" {
		query += fmt.Sprintf(" AND (source_branch_id = $%d OR destination_branch_id = $%d)", pos, pos)
		args = append(args, f.BranchID)
		pos++
	}
	if f.Status != "" {
		query += fmt.Sprintf(" AND status = $%d", pos)
		args = append(args, string(f.Status))
		pos++
	}
	query += fmt.Sprintf(" ORDER BY requested_at DESC, transfer_number DESC LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, f.Limit, f.Offset)

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, wrapErr("list stock transfers", err)
	}
	var (
		list  []*entity.StockTransfer
		ids   []string
		total int
	)
	for rows.Next() {
		t, err := scanTransfer(rows, &total)
		if err != nil {
			rows.Close()
			return nil, 0, wrapErr("scan stock transfer", err)
		}
		list = append(list, t)
		ids = append(ids, t.ID)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, 0, wrapErr("list stock transfers", err)
	}
	if len(ids) == 0 {
		return list, total, nil
	}
	items, err := r.items(ctx, ids)
	if err != nil {
		return nil, 0, err
	}
	for _, t := range list {
		t.Items = items[t.ID]
	}
	return list, total, nil
}

// IncomingByBranch suma lo enviado en traslados IN_TRANSIT hacia la sucursal, por producto.
func (r *StockTransferRepo) IncomingByBranch(ctx context.Context, branchID string) ([]entity.IncomingStock, error) {
	query := `
		SELECT i.product_id, SUM(i.shipped_quantity), COUNT(DISTINCT t.id), MIN(t.shipped_at)
		FROM stock_transfers t
		JOIN stock_transfer_items i ON i.transfer_id = t.id
		WHERE t.status = 'IN_TRANSIT' AND t.destination_branch_id = $1 AND i.shipped_quantity > 0
		GROUP BY i.product_id
		ORDER BY i.product_id`
	rows, err := r.q.Query(ctx, query, branchID)
	if err != nil {
		return nil, wrapErr("incoming by branch", err)
	}
	defer rows.Close()
	list := []entity.IncomingStock{}
	for rows.Next() {
		var (
			in     entity.IncomingStock
			oldest *time.Time
		)
		if err := rows.Scan(&in.ProductID, &in.Quantity, &in.TransferCount, &oldest); err != nil {
			return nil, wrapErr("scan incoming", err)
		}
		if oldest != nil {
			in.OldestShippedAt = *oldest
		}
		list = append(list, in)
	}
	return list, wrapErr("incoming by branch", rows.Err())
}

func (r *StockTransferRepo) items(ctx context.Context, transferIDs []string) (map[string][]entity.StockTransferItem, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, transfer_id, product_id, requested_quantity, shipped_quantity, received_quantity
		FROM stock_transfer_items WHERE transfer_id = ANY($1)
		ORDER BY transfer_id, product_id`, transferIDs)
	if err != nil {
		return nil, wrapErr("list stock transfer items", err)
	}
	defer rows.Close()
	out := make(map[string][]entity.StockTransferItem, len(transferIDs))
	for rows.Next() {
		var it entity.StockTransferItem
		if err := rows.Scan(&it.ID, &it.TransferID, &it.ProductID, &it.RequestedQuantity,
			&it.ShippedQuantity, &it.ReceivedQuantity); err != nil {
			return nil, wrapErr("scan stock transfer item", err)
		}
		out[it.TransferID] = append(out[it.TransferID], it)
	}
	return out, wrapErr("list stock transfer items", rows.Err())
}

func scanTransfer(row pgx.Row, extra ...any) (*entity.StockTransfer, error) {
	var (
		t                                              entity.StockTransfer
		status                                         string
		requestedBy, approvedBy, shippedBy, receivedBy *string
		cancelledBy, cancelReason, notes               *string
	)
	dest := append([]any{
		&t.ID, &t.TransferNumber, &t.SourceBranchID, &t.DestinationBranchID, &status,
		&requestedBy, &approvedBy, &shippedBy, &receivedBy, &cancelledBy,
		&t.RequestedAt, &t.ApprovedAt, &t.ShippedAt, &t.ReceivedAt, &t.CancelledAt,
		&cancelReason, &notes, &t.UpdatedAt,
	}, extra...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	t.Status = entity.TransferStatus(status)
	t.RequestedBy, t.ApprovedBy, t.ShippedBy = deref(requestedBy), deref(approvedBy), deref(shippedBy)
	t.ReceivedBy, t.CancelledBy = deref(receivedBy), deref(cancelledBy)
	t.CancelReason, t.Notes = deref(cancelReason), deref(notes)
	return &t, nil
}
