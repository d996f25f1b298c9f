package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"librental-backend/internal/domain"
	"librental-backend/internal/repository"
	"librental-backend/internal/service"
)

type rentalFixture struct {
	rentalRepo *MockRentalRepo
	bookRepo   *MockBookRepo
	userRepo   *MockUserRepo
	noteRepo   *MockNotificationRepo
	emailSvc   *MockEmailService
	dbMock     sqlmock.Sqlmock
	svc        service.RentalService
}

func newRentalFixture(t *testing.T) *rentalFixture {
	db, dbMock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	f := &rentalFixture{
		rentalRepo: new(MockRentalRepo),
		bookRepo:   new(MockBookRepo),
		userRepo:   new(MockUserRepo),
		noteRepo:   new(MockNotificationRepo),
		emailSvc:   new(MockEmailService),
		dbMock:     dbMock,
	}
	f.svc = service.NewRentalService(db, f.rentalRepo, f.bookRepo, f.userRepo, f.noteRepo, f.emailSvc, 14)
	return f
}

func activeManager() *domain.User {
	return &domain.User{ID: 99, Name: "Manager", Email: "manager@test.com", Role: domain.UserRoleManager, Status: domain.UserStatusActive, AccountStatus: domain.AccountStatusActive}
}

func eligibleStudent() *domain.User {
	enrollment := "EN-100"
	return &domain.User{
		ID:               1,
		Name:             "Student",
		Email:            "student@test.com",
		EnrollmentNumber: &enrollment,
		Role:             domain.UserRoleStudent,
		Status:           domain.UserStatusActive,
		AccountStatus:    domain.AccountStatusActive,
	}
}

func availableBook() *domain.Book {
	isbn := "978-0000000001"
	return &domain.Book{ID: 2, Title: "The Go Programming Language", Author: "Donovan", ISBN: &isbn, RentalStatus: domain.BookStatusAvailable}
}

func TestRentalService_AssignBook(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		f := newRentalFixture(t)
		student := eligibleStudent()
		book := availableBook()

		f.dbMock.ExpectBegin()
		f.dbMock.ExpectCommit()

		f.userRepo.On("GetByID", ctx, int32(99)).Return(activeManager(), nil)
		f.userRepo.On("GetByIDForUpdate", ctx, mock.Anything, int32(1)).Return(student, nil)
		f.bookRepo.On("GetByIDForUpdate", ctx, mock.Anything, int32(2)).Return(book, nil)
		f.rentalRepo.On("Create", ctx, mock.Anything, mock.AnythingOfType("*domain.Rental")).
			Run(func(args mock.Arguments) {
				args.Get(2).(*domain.Rental).ID = 42
			}).Return(nil)
		f.bookRepo.On("MarkRented", ctx, mock.Anything, int32(2), int32(42), int32(1), mock.AnythingOfType("time.Time")).Return(nil)
		f.userRepo.On("AdjustRentalCounts", ctx, mock.Anything, int32(1), int32(1), int32(1)).Return(nil)
		f.noteRepo.On("Create", ctx, mock.Anything, mock.AnythingOfType("*domain.Notification")).Return(nil)
		f.emailSvc.On("SendRentalAssignedNotification", ctx, "student@test.com", "Student", book.Title, mock.AnythingOfType("time.Time")).Return(nil)

		rental, err := f.svc.AssignBook(ctx, 99, 1, 2, 7)
		require.NoError(t, err)
		require.NotNil(t, rental)
		assert.Equal(t, int32(42), rental.ID)
		assert.Equal(t, domain.RentalStatusActive, rental.Status)
		assert.Equal(t, "Student", rental.UserName)
		assert.Equal(t, book.Title, rental.BookTitle)

		// issued_on is midnight; due_on is exactly rentalDays later
		assert.Equal(t, 0, rental.IssuedOn.Hour())
		assert.Equal(t, rental.IssuedOn.AddDate(0, 0, 7), rental.DueOn)

		assert.NoError(t, f.dbMock.ExpectationsWereMet())
	})

	t.Run("Default rental days", func(t *testing.T) {
		f := newRentalFixture(t)
		f.dbMock.ExpectBegin()
		f.dbMock.ExpectCommit()

		f.userRepo.On("GetByID", ctx, int32(99)).Return(activeManager(), nil)
		f.userRepo.On("GetByIDForUpdate", ctx, mock.Anything, int32(1)).Return(eligibleStudent(), nil)
		f.bookRepo.On("GetByIDForUpdate", ctx, mock.Anything, int32(2)).Return(availableBook(), nil)
		f.rentalRepo.On("Create", ctx, mock.Anything, mock.AnythingOfType("*domain.Rental")).Return(nil)
		f.bookRepo.On("MarkRented", ctx, mock.Anything, int32(2), int32(0), int32(1), mock.AnythingOfType("time.Time")).Return(nil)
		f.userRepo.On("AdjustRentalCounts", ctx, mock.Anything, int32(1), int32(1), int32(1)).Return(nil)
		f.noteRepo.On("Create", ctx, mock.Anything, mock.Anything).Return(nil)
		f.emailSvc.On("SendRentalAssignedNotification", ctx, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

		rental, err := f.svc.AssignBook(ctx, 99, 1, 2, 0)
		require.NoError(t, err)
		assert.Equal(t, rental.IssuedOn.AddDate(0, 0, 14), rental.DueOn)
	})

	t.Run("Not a manager", func(t *testing.T) {
		f := newRentalFixture(t)
		f.userRepo.On("GetByID", ctx, int32(5)).Return(&domain.User{ID: 5, Role: domain.UserRoleFaculty, Status: domain.UserStatusActive}, nil)

		rental, err := f.svc.AssignBook(ctx, 5, 1, 2, 7)
		assert.Nil(t, rental)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Only the manager can perform this action")
	})

	t.Run("Ineligible user aborts transaction", func(t *testing.T) {
		f := newRentalFixture(t)
		blocked := eligibleStudent()
		blocked.AccountStatus = domain.AccountStatusBlocked

		f.dbMock.ExpectBegin()
		f.dbMock.ExpectRollback()

		f.userRepo.On("GetByID", ctx, int32(99)).Return(activeManager(), nil)
		f.userRepo.On("GetByIDForUpdate", ctx, mock.Anything, int32(1)).Return(blocked, nil)

		rental, err := f.svc.AssignBook(ctx, 99, 1, 2, 7)
		assert.Nil(t, rental)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Your account is blocked due to violations")
		f.bookRepo.AssertNotCalled(t, "MarkRented", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		assert.NoError(t, f.dbMock.ExpectationsWereMet())
	})

	t.Run("Too many active rentals", func(t *testing.T) {
		f := newRentalFixture(t)
		maxed := eligibleStudent()
		maxed.ActiveRentals = domain.MaxActiveRentals

		f.dbMock.ExpectBegin()
		f.dbMock.ExpectRollback()

		f.userRepo.On("GetByID", ctx, int32(99)).Return(activeManager(), nil)
		f.userRepo.On("GetByIDForUpdate", ctx, mock.Anything, int32(1)).Return(maxed, nil)

		rental, err := f.svc.AssignBook(ctx, 99, 1, 2, 7)
		assert.Nil(t, rental)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Maximum 3 active rentals allowed. Please return a book first.")
	})

	t.Run("Lost the availability race", func(t *testing.T) {
		f := newRentalFixture(t)

		f.dbMock.ExpectBegin()
		f.dbMock.ExpectRollback()

		f.userRepo.On("GetByID", ctx, int32(99)).Return(activeManager(), nil)
		f.userRepo.On("GetByIDForUpdate", ctx, mock.Anything, int32(1)).Return(eligibleStudent(), nil)
		f.bookRepo.On("GetByIDForUpdate", ctx, mock.Anything, int32(2)).Return(availableBook(), nil)
		f.rentalRepo.On("Create", ctx, mock.Anything, mock.AnythingOfType("*domain.Rental")).Return(nil)
		f.bookRepo.On("MarkRented", ctx, mock.Anything, int32(2), int32(0), int32(1), mock.AnythingOfType("time.Time")).Return(repository.ErrUnavailable)

		rental, err := f.svc.AssignBook(ctx, 99, 1, 2, 7)
		assert.Nil(t, rental)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Book is not available")
		f.userRepo.AssertNotCalled(t, "AdjustRentalCounts", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		assert.NoError(t, f.dbMock.ExpectationsWereMet())
	})
}

func TestRentalService_ReturnBook(t *testing.T) {
	ctx := context.Background()

	openRental := func() *domain.Rental {
		return &domain.Rental{
			ID:        42,
			UserID:    1,
			BookID:    2,
			Status:    domain.RentalStatusActive,
			UserName:  "Student",
			UserEmail: "student@test.com",
			BookTitle: "The Go Programming Language",
		}
	}

	t.Run("Success", func(t *testing.T) {
		f := newRentalFixture(t)
		rental := openRental()

		f.dbMock.ExpectBegin()
		f.dbMock.ExpectCommit()

		f.userRepo.On("GetByID", ctx, int32(99)).Return(activeManager(), nil)
		f.rentalRepo.On("GetByIDForUpdate", ctx, mock.Anything, int32(42)).Return(rental, nil)
		f.rentalRepo.On("Close", ctx, mock.Anything, int32(42), domain.RentalStatusManuallyReturned, mock.AnythingOfType("time.Time")).Return(nil)
		f.bookRepo.On("Release", ctx, mock.Anything, int32(2), domain.BookStatusAvailable).Return(nil)
		f.userRepo.On("AdjustRentalCounts", ctx, mock.Anything, int32(1), int32(-1), int32(0)).Return(nil)
		f.noteRepo.On("Create", ctx, mock.Anything, mock.AnythingOfType("*domain.Notification")).Return(nil)
		f.emailSvc.On("SendReturnConfirmation", ctx, "student@test.com", "Student", rental.BookTitle).Return(nil)

		got, err := f.svc.ReturnBook(ctx, 99, 42, domain.ReturnModeManager)
		require.NoError(t, err)
		assert.Equal(t, domain.RentalStatusManuallyReturned, got.Status)
		require.NotNil(t, got.ReturnedOn)
		assert.NoError(t, f.dbMock.ExpectationsWereMet())
	})

	t.Run("Overdue rental still returnable", func(t *testing.T) {
		f := newRentalFixture(t)
		rental := openRental()
		rental.Status = domain.RentalStatusOverdue

		f.dbMock.ExpectBegin()
		f.dbMock.ExpectCommit()

		f.userRepo.On("GetByID", ctx, int32(99)).Return(activeManager(), nil)
		f.rentalRepo.On("GetByIDForUpdate", ctx, mock.Anything, int32(42)).Return(rental, nil)
		f.rentalRepo.On("Close", ctx, mock.Anything, int32(42), domain.RentalStatusAutoReturned, mock.AnythingOfType("time.Time")).Return(nil)
		f.bookRepo.On("Release", ctx, mock.Anything, int32(2), domain.BookStatusAvailable).Return(nil)
		f.userRepo.On("AdjustRentalCounts", ctx, mock.Anything, int32(1), int32(-1), int32(0)).Return(nil)
		f.noteRepo.On("Create", ctx, mock.Anything, mock.Anything).Return(nil)
		f.emailSvc.On("SendReturnConfirmation", ctx, mock.Anything, mock.Anything, mock.Anything).Return(nil)

		got, err := f.svc.ReturnBook(ctx, 99, 42, domain.ReturnModeAuto)
		require.NoError(t, err)
		assert.Equal(t, domain.RentalStatusAutoReturned, got.Status)
	})

	t.Run("Already closed", func(t *testing.T) {
		f := newRentalFixture(t)
		rental := openRental()
		rental.Status = domain.RentalStatusReturned

		f.dbMock.ExpectBegin()
		f.dbMock.ExpectRollback()

		f.userRepo.On("GetByID", ctx, int32(99)).Return(activeManager(), nil)
		f.rentalRepo.On("GetByIDForUpdate", ctx, mock.Anything, int32(42)).Return(rental, nil)

		got, err := f.svc.ReturnBook(ctx, 99, 42, domain.ReturnModeManager)
		assert.Nil(t, got)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Cannot return book with status: RETURNED")
		f.bookRepo.AssertNotCalled(t, "Release", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Lost book closes with penalty status", func(t *testing.T) {
		f := newRentalFixture(t)
		rental := openRental()

		f.dbMock.ExpectBegin()
		f.dbMock.ExpectCommit()

		f.userRepo.On("GetByID", ctx, int32(99)).Return(activeManager(), nil)
		f.rentalRepo.On("GetByIDForUpdate", ctx, mock.Anything, int32(42)).Return(rental, nil)
		f.rentalRepo.On("Close", ctx, mock.Anything, int32(42), domain.RentalStatusLostPenaltyApplied, mock.AnythingOfType("time.Time")).Return(nil)
		f.bookRepo.On("Release", ctx, mock.Anything, int32(2), domain.BookStatusLost).Return(nil)
		f.userRepo.On("AdjustRentalCounts", ctx, mock.Anything, int32(1), int32(-1), int32(0)).Return(nil)
		f.noteRepo.On("Create", ctx, mock.Anything, mock.MatchedBy(func(n *domain.Notification) bool {
			return n.Attributes["type"] == "BOOK_LOST"
		})).Return(nil)

		got, err := f.svc.ReturnBook(ctx, 99, 42, domain.ReturnModeLost)
		require.NoError(t, err)
		assert.Equal(t, domain.RentalStatusLostPenaltyApplied, got.Status)
		require.NotNil(t, got.ReturnedOn)
		f.emailSvc.AssertNotCalled(t, "SendReturnConfirmation", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		assert.NoError(t, f.dbMock.ExpectationsWereMet())
	})

	t.Run("Rental not found", func(t *testing.T) {
		f := newRentalFixture(t)

		f.dbMock.ExpectBegin()
		f.dbMock.ExpectRollback()

		f.userRepo.On("GetByID", ctx, int32(99)).Return(activeManager(), nil)
		f.rentalRepo.On("GetByIDForUpdate", ctx, mock.Anything, int32(7)).Return(nil, repository.ErrNotFound)

		got, err := f.svc.ReturnBook(ctx, 99, 7, domain.ReturnModeManager)
		assert.Nil(t, got)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Rental not found")
	})
}

func TestRentalService_CheckEligibility(t *testing.T) {
	ctx := context.Background()

	t.Run("Eligible", func(t *testing.T) {
		f := newRentalFixture(t)
		f.userRepo.On("GetByID", ctx, int32(1)).Return(eligibleStudent(), nil)

		elig, err := f.svc.CheckEligibility(ctx, 1)
		require.NoError(t, err)
		assert.True(t, elig.CanRent)
		assert.Empty(t, elig.Reason)
	})

	t.Run("Expired penalty does not block", func(t *testing.T) {
		f := newRentalFixture(t)
		user := eligibleStudent()
		past := time.Now().AddDate(0, 0, -1)
		user.AccountStatus = domain.AccountStatusPenalty
		user.PenaltyUntil = &past
		f.userRepo.On("GetByID", ctx, int32(1)).Return(user, nil)

		elig, err := f.svc.CheckEligibility(ctx, 1)
		require.NoError(t, err)
		assert.True(t, elig.CanRent)
	})

	t.Run("Unknown user", func(t *testing.T) {
		f := newRentalFixture(t)
		f.userRepo.On("GetByID", ctx, int32(404)).Return(nil, repository.ErrNotFound)

		_, err := f.svc.CheckEligibility(ctx, 404)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "User not found")
	})
}
