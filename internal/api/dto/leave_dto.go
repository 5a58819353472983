package dto

import (
	"time"

	"github.com/spec-kit/leave-service/internal/domain"
)

// SubmitLeaveRequest payload. Dates are YYYY-MM-DD.
type SubmitLeaveRequest struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	LeaveType string `json:"leave_type"`
	Reason    string `json:"reason"`
}

// ReviewLeaveRequest payload for HR decisions.
type ReviewLeaveRequest struct {
	Action  string `json:"action"`
	Comment string `json:"comment"`
}

// LeaveResponse is the API shape of a leave request.
type LeaveResponse struct {
	ID            string             `json:"id"`
	EmployeeID    string             `json:"employee_id"`
	StartDate     string             `json:"start_date"`
	EndDate       string             `json:"end_date"`
	Days          int                `json:"days"`
	LeaveType     string             `json:"leave_type"`
	Reason        string             `json:"reason,omitempty"`
	Status        domain.LeaveStatus `json:"status"`
	AppliedAt     time.Time          `json:"applied_at"`
	ReviewerID    *string            `json:"reviewer_id,omitempty"`
	ReviewedAt    *time.Time         `json:"reviewed_at,omitempty"`
	ReviewComment *string            `json:"review_comment,omitempty"`
}

// NewLeaveResponse maps a leave request to its API shape.
func NewLeaveResponse(leave *domain.LeaveRequest) LeaveResponse {
	return LeaveResponse{
		ID:            leave.ID,
		EmployeeID:    leave.EmployeeID,
		StartDate:     leave.StartDate.Format(domain.DateLayout),
		EndDate:       leave.EndDate.Format(domain.DateLayout),
		Days:          leave.Days,
		LeaveType:     leave.LeaveType,
		Reason:        leave.Reason,
		Status:        leave.Status,
		AppliedAt:     leave.AppliedAt,
		ReviewerID:    leave.ReviewerID,
		ReviewedAt:    leave.ReviewedAt,
		ReviewComment: leave.ReviewComment,
	}
}

// NewLeaveResponses maps a slice of leave requests.
func NewLeaveResponses(leaves []domain.LeaveRequest) []LeaveResponse {
	items := make([]LeaveResponse, 0, len(leaves))
	for i := range leaves {
		items = append(items, NewLeaveResponse(&leaves[i]))
	}
	return items
}
