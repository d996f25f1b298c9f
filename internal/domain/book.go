package domain

import "time"

type BookStatus string

const (
	BookStatusAvailable          BookStatus = "AVAILABLE"
	BookStatusRented             BookStatus = "RENTED"
	BookStatusUnderInvestigation BookStatus = "UNDER_INVESTIGATION"
	BookStatusLost               BookStatus = "LOST"
)

// Book is a single physical copy; there is no per-title copy count.
type Book struct {
	ID              int32      `json:"id"`
	ISBN            *string    `json:"isbn,omitempty"`
	Title           string     `json:"title"`
	Author          string     `json:"author"`
	Genres          []string   `json:"genres,omitempty"`
	RentalStatus    BookStatus `json:"rental_status"`
	CurrentRentalID *int32     `json:"current_rental_id,omitempty"`
	CurrentHolderID *int32     `json:"current_holder_id,omitempty"`
	TotalRentals    int32      `json:"total_rentals"`
	LastRentedOn    *time.Time `json:"last_rented_on,omitempty"`
	CreatedOn       time.Time  `json:"created_on"`
	UpdatedOn       time.Time  `json:"updated_on"`
}

// Rentable reports whether the book can be issued right now.
func (b *Book) Rentable() bool {
	return b.RentalStatus == BookStatusAvailable
}
