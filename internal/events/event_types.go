package events

import (
	"time"

	"github.com/spec-kit/leave-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventLeaveSubmitted EventType = "leave_submitted"
	EventLeaveReviewed  EventType = "leave_reviewed"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	LeaveID   string      `json:"leave_id"`
	ActorID   string      `json:"actor_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// LeaveSubmittedPayload payload.
type LeaveSubmittedPayload struct {
	EmployeeID string `json:"employee_id"`
	LeaveType  string `json:"leave_type"`
	StartDate  string `json:"start_date"`
	EndDate    string `json:"end_date"`
	Days       int    `json:"days"`
}

// LeaveReviewedPayload payload.
type LeaveReviewedPayload struct {
	EmployeeID string             `json:"employee_id"`
	ReviewerID string             `json:"reviewer_id"`
	Status     domain.LeaveStatus `json:"status"`
	Days       int                `json:"days"`
	NewBalance *int               `json:"new_balance,omitempty"`
	Comment    string             `json:"comment,omitempty"`
}
