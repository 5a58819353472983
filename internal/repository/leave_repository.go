package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/leave-service/internal/domain"
)

const leaveColumns = `id, employee_id, start_date, end_date, days, leave_type, reason,
       status, applied_at, reviewer_id, reviewed_at, review_comment`

// LeaveRepository encapsulates leave request persistence.
// GetForUpdate and MarkReviewed take an explicit transaction: the status
// transition must commit atomically with the ledger debit.
type LeaveRepository interface {
	Create(ctx context.Context, leave *domain.LeaveRequest) error
	GetByID(ctx context.Context, id string) (*domain.LeaveRequest, error)
	GetForUpdate(ctx context.Context, tx pgx.Tx, id string) (*domain.LeaveRequest, error)
	MarkReviewed(ctx context.Context, tx pgx.Tx, id string, status domain.LeaveStatus, reviewerID string, reviewedAt time.Time, comment string) error
	ListByEmployee(ctx context.Context, employeeID string) ([]domain.LeaveRequest, error)
	ListPending(ctx context.Context) ([]domain.LeaveRequest, error)
	ListRecent(ctx context.Context, limit int) ([]domain.LeaveRequest, error)
}

type leaveRepository struct {
	pool *pgxpool.Pool
}

// NewLeaveRepository instantiates the repository.
func NewLeaveRepository(pool *pgxpool.Pool) LeaveRepository {
	return &leaveRepository{pool: pool}
}

func (r *leaveRepository) Create(ctx context.Context, leave *domain.LeaveRequest) error {
	const query = `
        INSERT INTO leave_requests (employee_id, start_date, end_date, days, leave_type, reason, status, applied_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING id`
	return r.pool.QueryRow(ctx, query,
		leave.EmployeeID,
		leave.StartDate,
		leave.EndDate,
		leave.Days,
		leave.LeaveType,
		leave.Reason,
		leave.Status,
		leave.AppliedAt,
	).Scan(&leave.ID)
}

func (r *leaveRepository) GetByID(ctx context.Context, id string) (*domain.LeaveRequest, error) {
	query := `SELECT ` + leaveColumns + ` FROM leave_requests WHERE id=$1`
	return scanLeave(r.pool.QueryRow(ctx, query, id))
}

// GetForUpdate locks the request row so that concurrent reviews serialize;
// the loser re-reads a non-PENDING status and fails the transition check.
func (r *leaveRepository) GetForUpdate(ctx context.Context, tx pgx.Tx, id string) (*domain.LeaveRequest, error) {
	query := `SELECT ` + leaveColumns + ` FROM leave_requests WHERE id=$1 FOR UPDATE`
	return scanLeave(tx.QueryRow(ctx, query, id))
}

func (r *leaveRepository) MarkReviewed(ctx context.Context, tx pgx.Tx, id string, status domain.LeaveStatus, reviewerID string, reviewedAt time.Time, comment string) error {
	const query = `
        UPDATE leave_requests
        SET status=$1, reviewer_id=$2, reviewed_at=$3, review_comment=$4
        WHERE id=$5 AND status=$6`
	cmd, err := tx.Exec(ctx, query, status, reviewerID, reviewedAt, comment, id, domain.LeaveStatusPending)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *leaveRepository) ListByEmployee(ctx context.Context, employeeID string) ([]domain.LeaveRequest, error) {
	query := `SELECT ` + leaveColumns + `
        FROM leave_requests WHERE employee_id=$1 ORDER BY applied_at DESC`
	rows, err := r.pool.Query(ctx, query, employeeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanLeaves(rows)
}

// ListPending returns the review queue oldest-first.
func (r *leaveRepository) ListPending(ctx context.Context) ([]domain.LeaveRequest, error) {
	query := `SELECT ` + leaveColumns + `
        FROM leave_requests WHERE status=$1 ORDER BY applied_at ASC`
	rows, err := r.pool.Query(ctx, query, domain.LeaveStatusPending)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanLeaves(rows)
}

func (r *leaveRepository) ListRecent(ctx context.Context, limit int) ([]domain.LeaveRequest, error) {
	if limit <= 0 {
		limit = 20
	}
	query := `SELECT ` + leaveColumns + `
        FROM leave_requests ORDER BY applied_at DESC LIMIT $1`
	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanLeaves(rows)
}

func scanLeave(row pgx.Row) (*domain.LeaveRequest, error) {
	var leave domain.LeaveRequest
	if err := row.Scan(
		&leave.ID,
		&leave.EmployeeID,
		&leave.StartDate,
		&leave.EndDate,
		&leave.Days,
		&leave.LeaveType,
		&leave.Reason,
		&leave.Status,
		&leave.AppliedAt,
		&leave.ReviewerID,
		&leave.ReviewedAt,
		&leave.ReviewComment,
	); err != nil {
		return nil, err
	}
	return &leave, nil
}

func scanLeaves(rows pgx.Rows) ([]domain.LeaveRequest, error) {
	var result []domain.LeaveRequest
	for rows.Next() {
		var leave domain.LeaveRequest
		if err := rows.Scan(
			&leave.ID,
			&leave.EmployeeID,
			&leave.StartDate,
			&leave.EndDate,
			&leave.Days,
			&leave.LeaveType,
			&leave.Reason,
			&leave.Status,
			&leave.AppliedAt,
			&leave.ReviewerID,
			&leave.ReviewedAt,
			&leave.ReviewComment,
		); err != nil {
			return nil, err
		}
		result = append(result, leave)
	}
	return result, rows.Err()
}
