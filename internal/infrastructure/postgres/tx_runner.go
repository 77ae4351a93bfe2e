package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yms2/mes-core/internal/application/inventory"
	"github.com/yms2/mes-core/internal/domain"
	"github.com/yms2/mes-core/internal/domain/repository"
)

// Ensure TxRunner implements inventory.TxRunner.
var _ inventory.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL con los
// repositorios del núcleo atados a esa tx. Los conflictos de serialización y
// deadlocks se traducen a domain.ErrConcurrencyConflict para que el caso de uso
// los reintente de forma acotada.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// Run inicia una transacción, ejecuta fn con repos atados a la tx y hace Commit o Rollback.
func (r *TxRunner) Run(ctx context.Context, fn func(
	invRepo repository.InventoryRepository,
	lotRepo repository.LotRepository,
	auditRepo repository.AdjustmentRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	invRepo := NewInventoryRepository(tx)
	lotRepo := NewLotRepository(tx)
	auditRepo := NewAdjustmentRepository(tx)

	if err := fn(invRepo, lotRepo, auditRepo); err != nil {
		if isSerializationFailure(err) {
			return domain.ErrConcurrencyConflict
		}
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		if isSerializationFailure(err) {
			return domain.ErrConcurrencyConflict
		}
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
