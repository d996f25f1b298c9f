package domain

import "time"

type UserRole string

const (
	UserRoleManager UserRole = "manager"
	UserRoleFaculty UserRole = "faculty"
	UserRoleStudent UserRole = "student"
)

type AccountStatus string

const (
	AccountStatusActive  AccountStatus = "ACTIVE"
	AccountStatusBlocked AccountStatus = "BLOCKED"
	AccountStatusPenalty AccountStatus = "PENALTY"
)

// UserStatus is the account lifecycle flag. It is distinct from
// AccountStatus, which tracks business standing (blocks, penalties).
type UserStatus string

const (
	UserStatusActive    UserStatus = "active"
	UserStatusSuspended UserStatus = "suspended"
	UserStatusDeleted   UserStatus = "deleted"
)

// MaxActiveRentals is the hard cap on concurrent rentals per student.
const MaxActiveRentals = 3

type User struct {
	ID                int32         `json:"id"`
	Email             string        `json:"email"`
	PasswordHash      string        `json:"-"`
	Name              string        `json:"name"`
	EnrollmentNumber  *string       `json:"enrollment_number,omitempty"`
	Role              UserRole      `json:"role"`
	AccountStatus     AccountStatus `json:"account_status"`
	Status            UserStatus    `json:"status"`
	ActiveRentals     int32         `json:"active_rentals"`
	TotalRentals      int32         `json:"total_rentals"`
	PenaltyUntil      *time.Time    `json:"penalty_until,omitempty"`
	AssignedFacultyID *int32        `json:"assigned_faculty_id,omitempty"`
	CreatedOn         time.Time     `json:"created_on"`
	UpdatedOn         time.Time     `json:"updated_on"`
}

func (u *User) IsManager() bool {
	return u.Role == UserRoleManager && u.Status == UserStatusActive
}
