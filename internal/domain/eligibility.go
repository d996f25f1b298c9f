package domain

import (
	"fmt"
	"time"
)

// Eligibility is the outcome of the rental eligibility rules for one user.
type Eligibility struct {
	CanRent bool   `json:"can_rent"`
	Reason  string `json:"reason,omitempty"`
}

// CheckRentalEligibility evaluates the rent/no-rent rules in order; the
// first failing rule wins. It has no side effects.
func CheckRentalEligibility(u *User, now time.Time) Eligibility {
	if u.Role != UserRoleStudent {
		return Eligibility{Reason: "Only students can rent books"}
	}
	if u.Status != UserStatusActive {
		return Eligibility{Reason: "Your account is inactive"}
	}
	if u.AccountStatus == AccountStatusBlocked {
		return Eligibility{Reason: "Your account is blocked due to violations"}
	}
	if u.AccountStatus == AccountStatusPenalty && u.PenaltyUntil != nil && u.PenaltyUntil.After(now) {
		return Eligibility{Reason: fmt.Sprintf("Your account is under penalty until %s", u.PenaltyUntil.Format("2006-01-02"))}
	}
	if u.ActiveRentals >= MaxActiveRentals {
		return Eligibility{Reason: fmt.Sprintf("Maximum %d active rentals allowed. Please return a book first.", MaxActiveRentals)}
	}
	return Eligibility{CanRent: true}
}
