package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TxFunc runs inside a database transaction.
type TxFunc func(ctx context.Context, tx pgx.Tx) error

// TxManager scopes a unit of work to a single transaction: the callback's
// writes commit together or roll back together.
type TxManager interface {
	InTx(ctx context.Context, fn TxFunc) error
}

type pgxTxManager struct {
	pool *pgxpool.Pool
}

// NewTxManager returns a pool-backed transaction manager.
func NewTxManager(pool *pgxpool.Pool) TxManager {
	return &pgxTxManager{pool: pool}
}

func (m *pgxTxManager) InTx(ctx context.Context, fn TxFunc) error {
	tx, err := m.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if err := fn(ctx, tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}
