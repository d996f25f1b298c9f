package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"librental-backend/internal/apperr"
	"librental-backend/internal/domain"
	"librental-backend/internal/logger"
	"librental-backend/internal/repository"
)

type rentalService struct {
	rentalLifecycle
	db          *sql.DB
	noteRepo    repository.NotificationRepository
	emailSvc    EmailService
	defaultDays int
}

func NewRentalService(
	db *sql.DB,
	rentalRepo repository.RentalRepository,
	bookRepo repository.BookRepository,
	userRepo repository.UserRepository,
	noteRepo repository.NotificationRepository,
	emailSvc EmailService,
	defaultDays int,
) RentalService {
	if defaultDays <= 0 {
		defaultDays = domain.DefaultRentalDays
	}
	return &rentalService{
		rentalLifecycle: rentalLifecycle{
			rentalRepo: rentalRepo,
			bookRepo:   bookRepo,
			userRepo:   userRepo,
		},
		db:          db,
		noteRepo:    noteRepo,
		emailSvc:    emailSvc,
		defaultDays: defaultDays,
	}
}

func (s *rentalService) CheckEligibility(ctx context.Context, userID int32) (domain.Eligibility, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.Eligibility{}, apperr.NotFound("User not found")
		}
		return domain.Eligibility{}, apperr.Internal(err)
	}
	return domain.CheckRentalEligibility(user, time.Now()), nil
}

func (s *rentalService) AssignBook(ctx context.Context, managerID, userID, bookID int32, rentalDays int) (*domain.Rental, error) {
	if _, err := s.requireManager(ctx, managerID); err != nil {
		return nil, err
	}
	if rentalDays <= 0 {
		rentalDays = s.defaultDays
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	defer tx.Rollback()

	now := time.Now()

	user, err := s.userRepo.GetByIDForUpdate(ctx, tx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound("User not found")
		}
		return nil, apperr.Internal(err)
	}
	if elig := domain.CheckRentalEligibility(user, now); !elig.CanRent {
		return nil, apperr.Validation(elig.Reason)
	}

	book, err := s.bookRepo.GetByIDForUpdate(ctx, tx, bookID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound("Book not found")
		}
		return nil, apperr.Internal(err)
	}

	rental, err := s.createRentalTx(ctx, tx, user, book, rentalDays, now, "Book is not available")
	if err != nil {
		return nil, err
	}

	note := &domain.Notification{
		UserID:  user.ID,
		Title:   "Book Issued",
		Message: fmt.Sprintf("%s has been issued to you, due on %s", book.Title, rental.DueOn.Format("2006-01-02")),
		Attributes: map[string]string{
			"type":      "RENTAL_CREATED",
			"rental_id": fmt.Sprintf("%d", rental.ID),
		},
	}
	if err := s.noteRepo.Create(ctx, tx, note); err != nil {
		return nil, apperr.Internal(err)
	}

	if err := tx.Commit(); err != nil {
		return nil, apperr.Internal(err)
	}

	if err := s.emailSvc.SendRentalAssignedNotification(ctx, user.Email, user.Name, book.Title, rental.DueOn); err != nil {
		logger.Warn("Failed to send rental assignment email", "user_id", user.ID, "error", err)
	}

	return rental, nil
}

func (s *rentalService) ReturnBook(ctx context.Context, managerID, rentalID int32, mode domain.ReturnMode) (*domain.Rental, error) {
	// Direct returns are a manager capability; students and faculty go
	// through the request pipeline.
	if _, err := s.requireManager(ctx, managerID); err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	defer tx.Rollback()

	rental, err := s.rentalRepo.GetByIDForUpdate(ctx, tx, rentalID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound("Rental not found")
		}
		return nil, apperr.Internal(err)
	}
	if !rental.Open() {
		return nil, apperr.Validation(fmt.Sprintf("Cannot return book with status: %s", rental.Status))
	}

	now := time.Now()
	if err := s.closeRentalTx(ctx, tx, rental, mode, now); err != nil {
		return nil, err
	}

	note := &domain.Notification{
		UserID:  rental.UserID,
		Title:   "Book Returned",
		Message: fmt.Sprintf("%s has been returned", rental.BookTitle),
		Attributes: map[string]string{
			"type":      "RENTAL_CLOSED",
			"rental_id": fmt.Sprintf("%d", rental.ID),
		},
	}
	if mode == domain.ReturnModeLost {
		note.Title = "Book Marked Lost"
		note.Message = fmt.Sprintf("%s has been recorded as lost; a penalty applies to your account", rental.BookTitle)
		note.Attributes["type"] = "BOOK_LOST"
	}
	if err := s.noteRepo.Create(ctx, tx, note); err != nil {
		return nil, apperr.Internal(err)
	}

	if err := tx.Commit(); err != nil {
		return nil, apperr.Internal(err)
	}

	// No confirmation email on a lost close; nothing was returned.
	if mode != domain.ReturnModeLost {
		if err := s.emailSvc.SendReturnConfirmation(ctx, rental.UserEmail, rental.UserName, rental.BookTitle); err != nil {
			logger.Warn("Failed to send return confirmation email", "user_id", rental.UserID, "error", err)
		}
	}

	return rental, nil
}

func (s *rentalService) GetRental(ctx context.Context, rentalID int32) (*domain.Rental, error) {
	rental, err := s.rentalRepo.GetByID(ctx, rentalID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound("Rental not found")
		}
		return nil, apperr.Internal(err)
	}
	return rental, nil
}

func (s *rentalService) ListUserRentals(ctx context.Context, userID int32, status domain.RentalStatus, page, pageSize int32) ([]domain.Rental, int32, error) {
	rentals, count, err := s.rentalRepo.ListByUser(ctx, userID, status, page, pageSize)
	if err != nil {
		return nil, 0, apperr.Internal(err)
	}
	return rentals, count, nil
}
