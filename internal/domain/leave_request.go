package domain

import "time"

// LeaveStatus enumerates lifecycle states for a leave request.
// PENDING is the only non-terminal state.
type LeaveStatus string

const (
	LeaveStatusPending  LeaveStatus = "PENDING"
	LeaveStatusApproved LeaveStatus = "APPROVED"
	LeaveStatusRejected LeaveStatus = "REJECTED"
)

// ReviewAction is the verb an HR reviewer applies to a pending request.
type ReviewAction string

const (
	ReviewActionApprove ReviewAction = "approve"
	ReviewActionReject  ReviewAction = "reject"
)

// LeaveRequest is the aggregate for a single leave application.
// Days is computed once at submission and never changes; the review fields
// are stamped exactly once when the request leaves PENDING.
type LeaveRequest struct {
	ID            string
	EmployeeID    string
	StartDate     time.Time
	EndDate       time.Time
	Days          int
	LeaveType     string
	Reason        string
	Status        LeaveStatus
	AppliedAt     time.Time
	ReviewerID    *string
	ReviewedAt    *time.Time
	ReviewComment *string
}

// Reviewed reports whether the request has reached a terminal state.
func (l *LeaveRequest) Reviewed() bool {
	return l.Status != LeaveStatusPending
}
