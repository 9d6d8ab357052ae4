package postgres

import (
	"context"
	"fmt"
)

// inTx inicia una transacción sobre q (si q ya es una tx se usa un savepoint), ejecuta fn y hace
// Commit o Rollback.
func inTx(ctx context.Context, q Querier, fn func(tx Querier) error) error {
	tx, err := q.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
