package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"librental-backend/internal/apperr"
	"librental-backend/internal/domain"
	"librental-backend/internal/repository"
)

// rentalLifecycle holds the two atomic rental mutations shared by direct
// manager assignment and the request approval pipeline. Only these two
// paths ever flip a book between AVAILABLE and RENTED.
type rentalLifecycle struct {
	rentalRepo repository.RentalRepository
	bookRepo   repository.BookRepository
	userRepo   repository.UserRepository
}

// createRentalTx applies the rental-creation effects inside the caller's
// transaction: rental row with snapshots, conditional book flip, user
// counters. The flip is the race guard; losing it aborts everything.
func (l *rentalLifecycle) createRentalTx(ctx context.Context, tx *sql.Tx, user *domain.User, book *domain.Book, rentalDays int, now time.Time, unavailableMsg string) (*domain.Rental, error) {
	issuedOn := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	rental := &domain.Rental{
		UserID:           user.ID,
		BookID:           book.ID,
		IssuedOn:         issuedOn,
		DueOn:            issuedOn.AddDate(0, 0, rentalDays),
		Status:           domain.RentalStatusActive,
		UserName:         user.Name,
		UserEmail:        user.Email,
		EnrollmentNumber: user.EnrollmentNumber,
		BookTitle:        book.Title,
		BookAuthor:       book.Author,
		BookISBN:         book.ISBN,
	}
	if err := l.rentalRepo.Create(ctx, tx, rental); err != nil {
		return nil, apperr.Internal(err)
	}

	if err := l.bookRepo.MarkRented(ctx, tx, book.ID, rental.ID, user.ID, now); err != nil {
		if errors.Is(err, repository.ErrUnavailable) {
			return nil, apperr.Conflict(unavailableMsg)
		}
		return nil, apperr.Internal(err)
	}

	if err := l.userRepo.AdjustRentalCounts(ctx, tx, user.ID, 1, 1); err != nil {
		return nil, apperr.Internal(err)
	}

	return rental, nil
}

// closeRentalTx applies the rental-close effects inside the caller's
// transaction: terminal status per mode, book release, counter decrement.
// A lost close stamps the rental LOST_PENALTY_APPLIED and leaves the book
// LOST instead of AVAILABLE.
func (l *rentalLifecycle) closeRentalTx(ctx context.Context, tx *sql.Tx, rental *domain.Rental, mode domain.ReturnMode, now time.Time) error {
	status := mode.TerminalStatus()
	if err := l.rentalRepo.Close(ctx, tx, rental.ID, status, now); err != nil {
		if errors.Is(err, repository.ErrUnavailable) {
			return apperr.Validation(fmt.Sprintf("Cannot return book with status: %s", rental.Status))
		}
		return apperr.Internal(err)
	}
	if err := l.bookRepo.Release(ctx, tx, rental.BookID, mode.ReleasedBookStatus()); err != nil {
		return apperr.Internal(err)
	}
	if err := l.userRepo.AdjustRentalCounts(ctx, tx, rental.UserID, -1, 0); err != nil {
		return apperr.Internal(err)
	}
	rental.Status = status
	rental.ReturnedOn = &now
	return nil
}

// requireManager verifies the caller is the active manager.
func (l *rentalLifecycle) requireManager(ctx context.Context, managerID int32) (*domain.User, error) {
	if managerID == 0 {
		return nil, apperr.Validation("Manager id is required")
	}
	manager, err := l.userRepo.GetByID(ctx, managerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.Forbidden("Only the manager can perform this action")
		}
		return nil, apperr.Internal(err)
	}
	if !manager.IsManager() {
		return nil, apperr.Forbidden("Only the manager can perform this action")
	}
	return manager, nil
}
