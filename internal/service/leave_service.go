package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/leave-service/internal/domain"
	"github.com/spec-kit/leave-service/internal/events"
	"github.com/spec-kit/leave-service/internal/ledger"
	"github.com/spec-kit/leave-service/internal/repository"
	apperrors "github.com/spec-kit/leave-service/pkg/util"
)

const defaultLeaveType = "Vacation"

// LeaveService coordinates the leave request lifecycle: submission, review
// and the ordered list views. The balance is checked at submission and
// re-checked inside the approval transaction; both checks are deliberate.
type LeaveService struct {
	users      repository.UserRepository
	leaves     repository.LeaveRepository
	ledger     *ledger.Ledger
	txm        repository.TxManager
	dispatcher events.Dispatcher
}

// LeaveDependencies bundles collaborators for the leave service.
type LeaveDependencies struct {
	UserRepo   repository.UserRepository
	LeaveRepo  repository.LeaveRepository
	Ledger     *ledger.Ledger
	TxManager  repository.TxManager
	Dispatcher events.Dispatcher
}

// SubmitInput describes a leave application payload. Dates are canonical
// YYYY-MM-DD strings.
type SubmitInput struct {
	StartDate string
	EndDate   string
	LeaveType string
	Reason    string
}

// NewLeaveService constructs the service.
func NewLeaveService(deps LeaveDependencies) *LeaveService {
	return &LeaveService{
		users:      deps.UserRepo,
		leaves:     deps.LeaveRepo,
		ledger:     deps.Ledger,
		txm:        deps.TxManager,
		dispatcher: deps.Dispatcher,
	}
}

// Submit validates and persists a new PENDING leave request for the
// employee. No balance is debited here; that happens only on approval.
func (s *LeaveService) Submit(ctx context.Context, employeeID string, input SubmitInput) (*domain.LeaveRequest, error) {
	start, err := domain.ParseDate(input.StartDate)
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error(), nil)
	}
	end, err := domain.ParseDate(input.EndDate)
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error(), nil)
	}

	days := domain.InclusiveDays(start, end)
	if days <= 0 {
		return nil, apperrors.NewValidationError("end date precedes start date", map[string]any{
			"start_date": input.StartDate,
			"end_date":   input.EndDate,
		})
	}

	// Fresh read: the balance may have moved since the client rendered it.
	employee, err := s.users.GetByID(ctx, employeeID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("employee")
		}
		return nil, err
	}
	if !ledger.CheckSufficient(employee.LeaveBalance, days) {
		return nil, apperrors.NewInsufficientBalance(employee.LeaveBalance, days)
	}

	leaveType := strings.TrimSpace(input.LeaveType)
	if leaveType == "" {
		leaveType = defaultLeaveType
	}

	leave := &domain.LeaveRequest{
		EmployeeID: employee.ID,
		StartDate:  start,
		EndDate:    end,
		Days:       days,
		LeaveType:  leaveType,
		Reason:     strings.TrimSpace(input.Reason),
		Status:     domain.LeaveStatusPending,
		AppliedAt:  time.Now().UTC(),
	}
	if err := s.leaves.Create(ctx, leave); err != nil {
		return nil, err
	}

	s.publishEvent(ctx, events.Event{
		Type:    events.EventLeaveSubmitted,
		LeaveID: leave.ID,
		ActorID: employee.ID,
		Payload: events.LeaveSubmittedPayload{
			EmployeeID: employee.ID,
			LeaveType:  leave.LeaveType,
			StartDate:  input.StartDate,
			EndDate:    input.EndDate,
			Days:       days,
		},
	})
	return leave, nil
}

// Review transitions a PENDING request to APPROVED or REJECTED. Approval
// debits the employee's balance in the same transaction as the status stamp;
// if the debit fails the request stays PENDING and nothing is written.
func (s *LeaveService) Review(ctx context.Context, reviewer *domain.User, leaveID string, action domain.ReviewAction, comment string) (*domain.LeaveRequest, error) {
	if reviewer == nil || reviewer.Role != domain.RoleHR {
		return nil, apperrors.NewForbidden("hr role required")
	}
	if action != domain.ReviewActionApprove && action != domain.ReviewActionReject {
		return nil, apperrors.NewValidationError("unknown action", map[string]any{"action": string(action)})
	}

	comment = strings.TrimSpace(comment)

	var (
		reviewed   *domain.LeaveRequest
		newBalance *int
	)
	err := s.txm.InTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		leave, err := s.leaves.GetForUpdate(ctx, tx, leaveID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.NewNotFound("leave request")
			}
			return err
		}
		if leave.Reviewed() {
			return apperrors.NewIllegalTransition(string(leave.Status))
		}

		status := domain.LeaveStatusRejected
		if action == domain.ReviewActionApprove {
			status = domain.LeaveStatusApproved
			balance, err := s.ledger.Debit(ctx, tx, leave.EmployeeID, leave.Days)
			if err != nil {
				return err
			}
			newBalance = &balance
		}

		now := time.Now().UTC()
		if err := s.leaves.MarkReviewed(ctx, tx, leave.ID, status, reviewer.ID, now, comment); err != nil {
			return err
		}

		leave.Status = status
		reviewerID := reviewer.ID
		leave.ReviewerID = &reviewerID
		leave.ReviewedAt = &now
		leave.ReviewComment = &comment
		reviewed = leave
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishEvent(ctx, events.Event{
		Type:    events.EventLeaveReviewed,
		LeaveID: reviewed.ID,
		ActorID: reviewer.ID,
		Payload: events.LeaveReviewedPayload{
			EmployeeID: reviewed.EmployeeID,
			ReviewerID: reviewer.ID,
			Status:     reviewed.Status,
			Days:       reviewed.Days,
			NewBalance: newBalance,
			Comment:    comment,
		},
	})
	return reviewed, nil
}

// GetForActor fetches a single request, visible to its owner or to HR.
func (s *LeaveService) GetForActor(ctx context.Context, actor *domain.User, leaveID string) (*domain.LeaveRequest, error) {
	leave, err := s.leaves.GetByID(ctx, leaveID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("leave request")
		}
		return nil, err
	}
	if actor == nil || (actor.Role != domain.RoleHR && actor.ID != leave.EmployeeID) {
		return nil, apperrors.NewForbidden("not your leave request")
	}
	return leave, nil
}

// ListForEmployee returns the employee's requests, newest application first.
func (s *LeaveService) ListForEmployee(ctx context.Context, employeeID string) ([]domain.LeaveRequest, error) {
	return s.leaves.ListByEmployee(ctx, employeeID)
}

// ListPendingForReview returns the review queue across all employees,
// oldest application first.
func (s *LeaveService) ListPendingForReview(ctx context.Context) ([]domain.LeaveRequest, error) {
	return s.leaves.ListPending(ctx)
}

// ListRecent returns the latest requests across all employees for the HR
// dashboard.
func (s *LeaveService) ListRecent(ctx context.Context, limit int) ([]domain.LeaveRequest, error) {
	return s.leaves.ListRecent(ctx, limit)
}

func (s *LeaveService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}
