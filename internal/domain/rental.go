package domain

import "time"

type RentalStatus string

const (
	RentalStatusActive             RentalStatus = "ACTIVE"
	RentalStatusReturned           RentalStatus = "RETURNED"
	RentalStatusOverdue            RentalStatus = "OVERDUE"
	RentalStatusManuallyReturned   RentalStatus = "MANUALLY_RETURNED"
	RentalStatusAutoReturned       RentalStatus = "AUTO_RETURNED"
	RentalStatusUnderInvestigation RentalStatus = "UNDER_INVESTIGATION"
	RentalStatusLostPenaltyApplied RentalStatus = "LOST_PENALTY_APPLIED"
)

// DefaultRentalDays is the issue window applied when the caller does not
// supply one (request approvals always use it).
const DefaultRentalDays = 14

// ReturnMode selects the terminal status a rental closes with.
type ReturnMode string

const (
	ReturnModeManager         ReturnMode = "MANAGER_RETURN"
	ReturnModeAuto            ReturnMode = "AUTO_RETURN"
	ReturnModeRequestApproved ReturnMode = "REQUEST_APPROVED_RETURN"
	ReturnModeLost            ReturnMode = "LOST_RETURN"
)

// TerminalStatus maps a return mode to the status the rental closes with.
func (m ReturnMode) TerminalStatus() RentalStatus {
	switch m {
	case ReturnModeAuto:
		return RentalStatusAutoReturned
	case ReturnModeRequestApproved:
		return RentalStatusReturned
	case ReturnModeLost:
		return RentalStatusLostPenaltyApplied
	default:
		return RentalStatusManuallyReturned
	}
}

// ReleasedBookStatus is the status the book takes when a rental closes
// with this mode. A lost close keeps the book out of circulation.
func (m ReturnMode) ReleasedBookStatus() BookStatus {
	if m == ReturnModeLost {
		return BookStatusLost
	}
	return BookStatusAvailable
}

type Rental struct {
	ID           int32        `json:"id"`
	UserID       int32        `json:"user_id"`
	BookID       int32        `json:"book_id"`
	IssuedOn     time.Time    `json:"issued_on"`
	DueOn        time.Time    `json:"due_on"`
	ReturnedOn   *time.Time   `json:"returned_on,omitempty"`
	Status       RentalStatus `json:"status"`
	RenewalCount int32        `json:"renewal_count"`

	// Snapshot fields are captured from the user and book at issue time.
	// Historical display uses these, not the live records.
	UserName         string  `json:"user_name"`
	UserEmail        string  `json:"user_email"`
	EnrollmentNumber *string `json:"enrollment_number,omitempty"`
	BookTitle        string  `json:"book_title"`
	BookAuthor       string  `json:"book_author"`
	BookISBN         *string `json:"book_isbn,omitempty"`

	CreatedOn time.Time `json:"created_on"`
	UpdatedOn time.Time `json:"updated_on"`
}

// Open reports whether the rental still holds the book. OVERDUE is an open
// state: the sweep job may stamp it, but the book has not come back.
func (r *Rental) Open() bool {
	return r.Status == RentalStatusActive || r.Status == RentalStatusOverdue
}

// PastDue reports whether an open rental has outlived its due date.
// Overdue-ness is derived at query time; the stored OVERDUE status is
// only an audit stamp written by the maintenance sweep.
func (r *Rental) PastDue(now time.Time) bool {
	return r.Open() && r.DueOn.Before(now)
}
