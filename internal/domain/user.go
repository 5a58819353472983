package domain

import "time"

// Role determines what a user may do: employees submit leave requests,
// HR reviews them.
type Role string

const (
	RoleEmployee Role = "EMPLOYEE"
	RoleHR       Role = "HR"
)

// Valid reports whether the role is one of the known values.
func (r Role) Valid() bool {
	return r == RoleEmployee || r == RoleHR
}

// User is the domain model for both employees and HR reviewers.
// LeaveBalance is in whole days and is only ever decremented through the
// ledger debit as part of an approval transaction.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	LeaveBalance int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
