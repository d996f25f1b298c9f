package service_test

import (
	"context"
	"database/sql"
	"time"

	"github.com/stretchr/testify/mock"

	"librental-backend/internal/domain"
	"librental-backend/internal/service"
)

// MockUserRepo
type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}
func (m *MockUserRepo) GetByID(ctx context.Context, id int32) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}
func (m *MockUserRepo) GetByIDForUpdate(ctx context.Context, tx *sql.Tx, id int32) (*domain.User, error) {
	args := m.Called(ctx, tx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}
func (m *MockUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}
func (m *MockUserRepo) Update(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}
func (m *MockUserRepo) SetAccountStatus(ctx context.Context, id int32, status domain.AccountStatus, penaltyUntil *time.Time) error {
	args := m.Called(ctx, id, status, penaltyUntil)
	return args.Error(0)
}
func (m *MockUserRepo) SetStatus(ctx context.Context, id int32, status domain.UserStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}
func (m *MockUserRepo) AdjustRentalCounts(ctx context.Context, tx *sql.Tx, id int32, activeDelta, totalDelta int32) error {
	args := m.Called(ctx, tx, id, activeDelta, totalDelta)
	return args.Error(0)
}
func (m *MockUserRepo) List(ctx context.Context, role domain.UserRole, status domain.UserStatus, page, pageSize int32) ([]domain.User, int32, error) {
	args := m.Called(ctx, role, status, page, pageSize)
	return args.Get(0).([]domain.User), args.Get(1).(int32), args.Error(2)
}
func (m *MockUserRepo) CountByRole(ctx context.Context) (map[domain.UserRole]int32, error) {
	args := m.Called(ctx)
	return args.Get(0).(map[domain.UserRole]int32), args.Error(1)
}
func (m *MockUserRepo) CountByAccountStatus(ctx context.Context) (map[domain.AccountStatus]int32, error) {
	args := m.Called(ctx)
	return args.Get(0).(map[domain.AccountStatus]int32), args.Error(1)
}

// MockBookRepo
type MockBookRepo struct {
	mock.Mock
}

func (m *MockBookRepo) Create(ctx context.Context, book *domain.Book) error {
	args := m.Called(ctx, book)
	return args.Error(0)
}
func (m *MockBookRepo) GetByID(ctx context.Context, id int32) (*domain.Book, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Book), args.Error(1)
}
func (m *MockBookRepo) GetByIDForUpdate(ctx context.Context, tx *sql.Tx, id int32) (*domain.Book, error) {
	args := m.Called(ctx, tx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Book), args.Error(1)
}
func (m *MockBookRepo) GetByISBN(ctx context.Context, isbn string) (*domain.Book, error) {
	args := m.Called(ctx, isbn)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Book), args.Error(1)
}
func (m *MockBookRepo) Update(ctx context.Context, book *domain.Book) error {
	args := m.Called(ctx, book)
	return args.Error(0)
}
func (m *MockBookRepo) SetStatus(ctx context.Context, id int32, status domain.BookStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}
func (m *MockBookRepo) MarkRented(ctx context.Context, tx *sql.Tx, bookID, rentalID, holderID int32, now time.Time) error {
	args := m.Called(ctx, tx, bookID, rentalID, holderID, now)
	return args.Error(0)
}
func (m *MockBookRepo) Release(ctx context.Context, tx *sql.Tx, bookID int32, status domain.BookStatus) error {
	args := m.Called(ctx, tx, bookID, status)
	return args.Error(0)
}
func (m *MockBookRepo) Search(ctx context.Context, query, genre string, status domain.BookStatus, page, pageSize int32) ([]domain.Book, int32, error) {
	args := m.Called(ctx, query, genre, status, page, pageSize)
	return args.Get(0).([]domain.Book), args.Get(1).(int32), args.Error(2)
}
func (m *MockBookRepo) CountByStatus(ctx context.Context) (map[domain.BookStatus]int32, error) {
	args := m.Called(ctx)
	return args.Get(0).(map[domain.BookStatus]int32), args.Error(1)
}

// MockRentalRepo
type MockRentalRepo struct {
	mock.Mock
}

func (m *MockRentalRepo) Create(ctx context.Context, tx *sql.Tx, rental *domain.Rental) error {
	args := m.Called(ctx, tx, rental)
	return args.Error(0)
}
func (m *MockRentalRepo) GetByID(ctx context.Context, id int32) (*domain.Rental, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Rental), args.Error(1)
}
func (m *MockRentalRepo) GetByIDForUpdate(ctx context.Context, tx *sql.Tx, id int32) (*domain.Rental, error) {
	args := m.Called(ctx, tx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Rental), args.Error(1)
}
func (m *MockRentalRepo) GetOpenByUserAndBook(ctx context.Context, tx *sql.Tx, userID, bookID int32) (*domain.Rental, error) {
	args := m.Called(ctx, tx, userID, bookID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Rental), args.Error(1)
}
func (m *MockRentalRepo) Close(ctx context.Context, tx *sql.Tx, id int32, status domain.RentalStatus, returnedOn time.Time) error {
	args := m.Called(ctx, tx, id, status, returnedOn)
	return args.Error(0)
}
func (m *MockRentalRepo) ListByUser(ctx context.Context, userID int32, status domain.RentalStatus, page, pageSize int32) ([]domain.Rental, int32, error) {
	args := m.Called(ctx, userID, status, page, pageSize)
	return args.Get(0).([]domain.Rental), args.Get(1).(int32), args.Error(2)
}
func (m *MockRentalRepo) ListOpenByDueDate(ctx context.Context, limit int32) ([]domain.Rental, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]domain.Rental), args.Error(1)
}
func (m *MockRentalRepo) ListOverdue(ctx context.Context, now time.Time) ([]domain.Rental, error) {
	args := m.Called(ctx, now)
	return args.Get(0).([]domain.Rental), args.Error(1)
}
func (m *MockRentalRepo) ListDueWithin(ctx context.Context, now time.Time, days int) ([]domain.Rental, error) {
	args := m.Called(ctx, now, days)
	return args.Get(0).([]domain.Rental), args.Error(1)
}
func (m *MockRentalRepo) ListIssuedOn(ctx context.Context, day time.Time) ([]domain.Rental, error) {
	args := m.Called(ctx, day)
	return args.Get(0).([]domain.Rental), args.Error(1)
}
func (m *MockRentalRepo) CountByStatus(ctx context.Context) (map[domain.RentalStatus]int32, error) {
	args := m.Called(ctx)
	return args.Get(0).(map[domain.RentalStatus]int32), args.Error(1)
}
func (m *MockRentalRepo) MarkOverdue(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}

// MockRequestRepo
type MockRequestRepo struct {
	mock.Mock
}

func (m *MockRequestRepo) Create(ctx context.Context, req *domain.BookRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}
func (m *MockRequestRepo) GetByID(ctx context.Context, id int32) (*domain.BookRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BookRequest), args.Error(1)
}
func (m *MockRequestRepo) GetPendingForUpdate(ctx context.Context, tx *sql.Tx, id int32) (*domain.BookRequest, error) {
	args := m.Called(ctx, tx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BookRequest), args.Error(1)
}
func (m *MockRequestRepo) Decide(ctx context.Context, tx *sql.Tx, id int32, status domain.RequestStatus, managerID int32, notes string, decidedOn time.Time) error {
	args := m.Called(ctx, tx, id, status, managerID, notes, decidedOn)
	return args.Error(0)
}
func (m *MockRequestRepo) HasPending(ctx context.Context, studentID, bookID int32, reqType domain.RequestType) (bool, error) {
	args := m.Called(ctx, studentID, bookID, reqType)
	return args.Bool(0), args.Error(1)
}
func (m *MockRequestRepo) ListPending(ctx context.Context, page, pageSize int32) ([]domain.BookRequest, int32, error) {
	args := m.Called(ctx, page, pageSize)
	return args.Get(0).([]domain.BookRequest), args.Get(1).(int32), args.Error(2)
}
func (m *MockRequestRepo) ListByFaculty(ctx context.Context, facultyID int32, page, pageSize int32) ([]domain.BookRequest, int32, error) {
	args := m.Called(ctx, facultyID, page, pageSize)
	return args.Get(0).([]domain.BookRequest), args.Get(1).(int32), args.Error(2)
}

// MockNotificationRepo
type MockNotificationRepo struct {
	mock.Mock
}

func (m *MockNotificationRepo) Create(ctx context.Context, tx *sql.Tx, note *domain.Notification) error {
	args := m.Called(ctx, tx, note)
	return args.Error(0)
}
func (m *MockNotificationRepo) List(ctx context.Context, userID int32, page, pageSize int32) ([]domain.Notification, int32, error) {
	args := m.Called(ctx, userID, page, pageSize)
	return args.Get(0).([]domain.Notification), args.Get(1).(int32), args.Error(2)
}
func (m *MockNotificationRepo) MarkAsRead(ctx context.Context, id, userID int32) error {
	args := m.Called(ctx, id, userID)
	return args.Error(0)
}

// MockEmailService
type MockEmailService struct {
	mock.Mock
}

var _ service.EmailService = (*MockEmailService)(nil)

func (m *MockEmailService) SendRequestSubmittedNotification(ctx context.Context, managerEmail, facultyName, studentName, bookTitle string, reqType domain.RequestType) error {
	args := m.Called(ctx, managerEmail, facultyName, studentName, bookTitle, reqType)
	return args.Error(0)
}
func (m *MockEmailService) SendRequestApprovedNotification(ctx context.Context, facultyEmail, studentName, bookTitle string, reqType domain.RequestType, notes string) error {
	args := m.Called(ctx, facultyEmail, studentName, bookTitle, reqType, notes)
	return args.Error(0)
}
func (m *MockEmailService) SendRequestRejectedNotification(ctx context.Context, facultyEmail, studentName, bookTitle string, reqType domain.RequestType, notes string) error {
	args := m.Called(ctx, facultyEmail, studentName, bookTitle, reqType, notes)
	return args.Error(0)
}
func (m *MockEmailService) SendRentalAssignedNotification(ctx context.Context, userEmail, userName, bookTitle string, dueOn time.Time) error {
	args := m.Called(ctx, userEmail, userName, bookTitle, dueOn)
	return args.Error(0)
}
func (m *MockEmailService) SendReturnConfirmation(ctx context.Context, userEmail, userName, bookTitle string) error {
	args := m.Called(ctx, userEmail, userName, bookTitle)
	return args.Error(0)
}
func (m *MockEmailService) SendDueSoonReminder(ctx context.Context, userEmail, userName, bookTitle string, dueOn time.Time) error {
	args := m.Called(ctx, userEmail, userName, bookTitle, dueOn)
	return args.Error(0)
}
func (m *MockEmailService) SendOverdueReminder(ctx context.Context, userEmail, userName, bookTitle string, dueOn time.Time) error {
	args := m.Called(ctx, userEmail, userName, bookTitle, dueOn)
	return args.Error(0)
}
