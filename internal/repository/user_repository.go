package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/leave-service/internal/domain"
)

// UserRepository defines persistence access for users. The two tx-scoped
// balance methods exist for the ledger: the balance row must be locked and
// rewritten inside the same transaction as the approval stamp.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	BalanceForUpdate(ctx context.Context, tx pgx.Tx, id string) (int, error)
	SetBalance(ctx context.Context, tx pgx.Tx, id string, balance int) error
}

type userRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository returns a Postgres-backed implementation.
func NewUserRepository(pool *pgxpool.Pool) UserRepository {
	return &userRepository{pool: pool}
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	const query = `
        INSERT INTO users (name, email, password_hash, role, leave_balance)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id, created_at, updated_at`

	return r.pool.QueryRow(ctx, query,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.Role,
		user.LeaveBalance,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	const query = `
        SELECT id, name, email, password_hash, role, leave_balance, created_at, updated_at
        FROM users WHERE id=$1`
	return r.scanUser(r.pool.QueryRow(ctx, query, id))
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	const query = `
        SELECT id, name, email, password_hash, role, leave_balance, created_at, updated_at
        FROM users WHERE email=$1`
	return r.scanUser(r.pool.QueryRow(ctx, query, email))
}

func (r *userRepository) scanUser(row pgx.Row) (*domain.User, error) {
	var user domain.User
	if err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.Role,
		&user.LeaveBalance,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &user, nil
}

// BalanceForUpdate reads the current balance under a row lock, serializing
// concurrent debits against the same user.
func (r *userRepository) BalanceForUpdate(ctx context.Context, tx pgx.Tx, id string) (int, error) {
	const query = `SELECT leave_balance FROM users WHERE id=$1 FOR UPDATE`
	var balance int
	if err := tx.QueryRow(ctx, query, id).Scan(&balance); err != nil {
		return 0, err
	}
	return balance, nil
}

func (r *userRepository) SetBalance(ctx context.Context, tx pgx.Tx, id string, balance int) error {
	const query = `UPDATE users SET leave_balance=$1, updated_at=NOW() WHERE id=$2`
	cmd, err := tx.Exec(ctx, query, balance, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
