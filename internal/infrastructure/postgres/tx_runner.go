package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/condicional-api/internal/application/condicional"
	"github.com/jhoicas/condicional-api/internal/domain/repository"
)

// Ensure TxRunner implements condicional.TxRunner.
var _ condicional.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// Run inicia una transacción, ejecuta fn con repos atados a la tx y hace Commit o Rollback.
func (r *TxRunner) Run(ctx context.Context, fn func(
	condRepo repository.CondicionalRepository,
	itemRepo repository.ItemRepository,
	saleRepo repository.SaleRepository,
	clientRepo repository.ClientRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	condRepo := NewCondicionalRepository(tx)
	itemRepo := NewItemRepository(tx)
	saleRepo := NewSaleRepository(tx)
	clientRepo := NewClientRepository(tx)

	if err := fn(condRepo, itemRepo, saleRepo, clientRepo); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
