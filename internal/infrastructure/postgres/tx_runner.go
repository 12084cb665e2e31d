package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/inventario-sucursales/internal/application/inventory"
)

var _ inventory.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL (READ COMMITTED + bloqueos de fila).
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// Run inicia una transacción, ejecuta fn con repos atados a la tx y hace Commit o Rollback.
func (r *TxRunner) Run(ctx context.Context, fn func(ctx context.Context, repos inventory.TxRepos) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return wrapErr("begin transaction", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	repos := inventory.TxRepos{
		Stock:     NewBranchStockRepository(tx),
		Movements: NewStockMovementRepository(tx),
		Transfers: NewStockTransferRepository(tx),
		Bags:      NewOpenBagRepository(tx),
	}
	if err := fn(ctx, repos); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return wrapErr("commit transaction", err)
	}
	return nil
}

// Deps arma las dependencias de los casos de uso sobre el pool.
func Deps(pool *pgxpool.Pool) inventory.Deps {
	return inventory.Deps{
		Tx:        NewTxRunner(pool),
		Stock:     NewBranchStockRepository(pool),
		Movements: NewStockMovementRepository(pool),
		Transfers: NewStockTransferRepository(pool),
		Bags:      NewOpenBagRepository(pool),
		Products:  NewProductRepository(pool),
		Branches:  NewBranchRepository(pool),
	}
}

// Ping verifica la conexión (para /health).
func Ping(ctx context.Context, pool *pgxpool.Pool) error {
	if err := pool.Ping(ctx); err != nil {
		return fmt.Errorf("ping DB: %w", err)
	}
	return nil
}
