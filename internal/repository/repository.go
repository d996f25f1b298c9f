package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"librental-backend/internal/domain"
)

// Sentinel errors returned by implementations. Services translate these
// into user-facing messages; the raw database error stays wrapped.
var (
	// ErrNotFound means the referenced record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate means a unique constraint rejected the write.
	ErrDuplicate = errors.New("duplicate record")
	// ErrUnavailable means a conditional update found the record in the
	// wrong state (e.g. the book was no longer AVAILABLE at flip time).
	ErrUnavailable = errors.New("record not in required state")
)

// Mutating methods that take a *sql.Tx participate in a caller-owned
// transaction; the caller commits or rolls back the whole operation.

type UserRepository interface {
	// Create inserts the user. Creating a manager runs the
	// one-active-manager existence check inside the same transaction
	// and fails with ErrDuplicate when another active manager exists.
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id int32) (*domain.User, error)
	GetByIDForUpdate(ctx context.Context, tx *sql.Tx, id int32) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	SetAccountStatus(ctx context.Context, id int32, status domain.AccountStatus, penaltyUntil *time.Time) error
	SetStatus(ctx context.Context, id int32, status domain.UserStatus) error
	// AdjustRentalCounts shifts active_rentals and total_rentals by the
	// given deltas. Only the rental lifecycle calls this.
	AdjustRentalCounts(ctx context.Context, tx *sql.Tx, id int32, activeDelta, totalDelta int32) error
	List(ctx context.Context, role domain.UserRole, status domain.UserStatus, page, pageSize int32) ([]domain.User, int32, error)
	CountByRole(ctx context.Context) (map[domain.UserRole]int32, error)
	CountByAccountStatus(ctx context.Context) (map[domain.AccountStatus]int32, error)
}

type BookRepository interface {
	Create(ctx context.Context, book *domain.Book) error
	GetByID(ctx context.Context, id int32) (*domain.Book, error)
	GetByIDForUpdate(ctx context.Context, tx *sql.Tx, id int32) (*domain.Book, error)
	GetByISBN(ctx context.Context, isbn string) (*domain.Book, error)
	Update(ctx context.Context, book *domain.Book) error
	SetStatus(ctx context.Context, id int32, status domain.BookStatus) error
	// MarkRented is the availability race guard: a single conditional
	// update that flips the book to RENTED only if it is still
	// AVAILABLE, returning ErrUnavailable otherwise.
	MarkRented(ctx context.Context, tx *sql.Tx, bookID, rentalID, holderID int32, now time.Time) error
	// Release clears the rental references and sets the book status,
	// AVAILABLE on a normal close or LOST when the book never came back.
	Release(ctx context.Context, tx *sql.Tx, bookID int32, status domain.BookStatus) error
	Search(ctx context.Context, query, genre string, status domain.BookStatus, page, pageSize int32) ([]domain.Book, int32, error)
	CountByStatus(ctx context.Context) (map[domain.BookStatus]int32, error)
}

type RentalRepository interface {
	Create(ctx context.Context, tx *sql.Tx, rental *domain.Rental) error
	GetByID(ctx context.Context, id int32) (*domain.Rental, error)
	GetByIDForUpdate(ctx context.Context, tx *sql.Tx, id int32) (*domain.Rental, error)
	// GetOpenByUserAndBook locks and returns the ACTIVE or OVERDUE
	// rental for (user, book), or ErrNotFound.
	GetOpenByUserAndBook(ctx context.Context, tx *sql.Tx, userID, bookID int32) (*domain.Rental, error)
	// Close sets a terminal status and returned_on, only while the
	// rental is still open; ErrUnavailable otherwise.
	Close(ctx context.Context, tx *sql.Tx, id int32, status domain.RentalStatus, returnedOn time.Time) error
	ListByUser(ctx context.Context, userID int32, status domain.RentalStatus, page, pageSize int32) ([]domain.Rental, int32, error)
	ListOpenByDueDate(ctx context.Context, limit int32) ([]domain.Rental, error)
	ListOverdue(ctx context.Context, now time.Time) ([]domain.Rental, error)
	ListDueWithin(ctx context.Context, now time.Time, days int) ([]domain.Rental, error)
	ListIssuedOn(ctx context.Context, day time.Time) ([]domain.Rental, error)
	CountByStatus(ctx context.Context) (map[domain.RentalStatus]int32, error)
	// MarkOverdue stamps OVERDUE on open rentals past their due date
	// and reports how many were updated. Only the maintenance sweep
	// calls this; queries always derive overdue-ness from due_on.
	MarkOverdue(ctx context.Context, now time.Time) (int64, error)
}

type BookRequestRepository interface {
	// Create inserts a pending request; ErrDuplicate when a pending
	// request for the same (student, book, type) already exists.
	Create(ctx context.Context, req *domain.BookRequest) error
	GetByID(ctx context.Context, id int32) (*domain.BookRequest, error)
	// GetPendingForUpdate locks the request row while it is still
	// pending; ErrNotFound when missing or already decided.
	GetPendingForUpdate(ctx context.Context, tx *sql.Tx, id int32) (*domain.BookRequest, error)
	Decide(ctx context.Context, tx *sql.Tx, id int32, status domain.RequestStatus, managerID int32, notes string, decidedOn time.Time) error
	HasPending(ctx context.Context, studentID, bookID int32, reqType domain.RequestType) (bool, error)
	ListPending(ctx context.Context, page, pageSize int32) ([]domain.BookRequest, int32, error)
	ListByFaculty(ctx context.Context, facultyID int32, page, pageSize int32) ([]domain.BookRequest, int32, error)
}

type NotificationRepository interface {
	// Create inserts the notification; with a non-nil tx it joins the
	// caller's transaction.
	Create(ctx context.Context, tx *sql.Tx, note *domain.Notification) error
	List(ctx context.Context, userID int32, page, pageSize int32) ([]domain.Notification, int32, error)
	MarkAsRead(ctx context.Context, id, userID int32) error
}
