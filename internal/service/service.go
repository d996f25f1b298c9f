package service

import (
	"context"
	"time"

	"librental-backend/internal/domain"
)

type AuthService interface {
	Register(ctx context.Context, params RegisterParams) (*domain.User, error)
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	Refresh(ctx context.Context, refreshToken string) (string, string, error)
}

// RegisterParams carries the signup fields. Students must name an assigned
// faculty; other roles must not.
type RegisterParams struct {
	Name              string
	Email             string
	Password          string
	Role              domain.UserRole
	EnrollmentNumber  *string
	AssignedFacultyID *int32
}

type LoginResult struct {
	User         *domain.User
	AccessToken  string
	RefreshToken string
}

type RentalService interface {
	// AssignBook creates a rental directly; manager only.
	AssignBook(ctx context.Context, managerID, userID, bookID int32, rentalDays int) (*domain.Rental, error)
	// ReturnBook closes an open rental; manager only. The approved
	// return-request path closes rentals through RequestService instead.
	ReturnBook(ctx context.Context, managerID, rentalID int32, mode domain.ReturnMode) (*domain.Rental, error)
	GetRental(ctx context.Context, rentalID int32) (*domain.Rental, error)
	ListUserRentals(ctx context.Context, userID int32, status domain.RentalStatus, page, pageSize int32) ([]domain.Rental, int32, error)
	CheckEligibility(ctx context.Context, userID int32) (domain.Eligibility, error)
}

type RequestService interface {
	CreateRequest(ctx context.Context, facultyID, studentID, bookID int32, reqType domain.RequestType, reason string) (*domain.BookRequest, error)
	ApproveRequest(ctx context.Context, managerID, requestID int32, notes string) (*domain.BookRequest, error)
	RejectRequest(ctx context.Context, managerID, requestID int32, notes string) (*domain.BookRequest, error)
	GetRequest(ctx context.Context, id int32) (*domain.BookRequest, error)
	ListPendingRequests(ctx context.Context, page, pageSize int32) ([]domain.BookRequest, int32, error)
	ListFacultyRequests(ctx context.Context, facultyID int32, page, pageSize int32) ([]domain.BookRequest, int32, error)
}

// DashboardStats is the read-only aggregation behind the manager dashboard.
// Everything is computed at query time; nothing is cached.
type DashboardStats struct {
	BooksByStatus        map[domain.BookStatus]int32    `json:"books_by_status"`
	UsersByRole          map[domain.UserRole]int32      `json:"users_by_role"`
	UsersByAccountStatus map[domain.AccountStatus]int32 `json:"users_by_account_status"`
	RentalsByStatus      map[domain.RentalStatus]int32  `json:"rentals_by_status"`
	RentalsToday         int32                          `json:"rentals_today"`
	OverdueCount         int32                          `json:"overdue_count"`
	DueSoonCount         int32                          `json:"due_soon_count"`
}

type ReportService interface {
	GetDashboardStats(ctx context.Context) (*DashboardStats, error)
	ListTodaysRentals(ctx context.Context) ([]domain.Rental, error)
	ListActiveRentals(ctx context.Context, limit int32) ([]domain.Rental, error)
	ListOverdueRentals(ctx context.Context) ([]domain.Rental, error)
	ListDueSoonRentals(ctx context.Context) ([]domain.Rental, error)
}

type UserService interface {
	GetUser(ctx context.Context, id int32) (*domain.User, error)
	ListUsers(ctx context.Context, role domain.UserRole, status domain.UserStatus, page, pageSize int32) ([]domain.User, int32, error)
	BlockUser(ctx context.Context, managerID, userID int32, block bool, reason string) error
	ApplyPenalty(ctx context.Context, managerID, userID int32, until time.Time, reason string) error
	ClearPenalty(ctx context.Context, managerID, userID int32) error
	DeleteUser(ctx context.Context, managerID, userID int32) error
}

type BookService interface {
	AddBook(ctx context.Context, managerID int32, book *domain.Book) error
	GetBook(ctx context.Context, id int32) (*domain.Book, error)
	GetBookByISBN(ctx context.Context, isbn string) (*domain.Book, error)
	UpdateBook(ctx context.Context, managerID int32, book *domain.Book) error
	SearchBooks(ctx context.Context, query, genre string, status domain.BookStatus, page, pageSize int32) ([]domain.Book, int32, error)
	// SetBookStatus moves a book to UNDER_INVESTIGATION or LOST;
	// refused while an open rental holds the book.
	SetBookStatus(ctx context.Context, managerID, bookID int32, status domain.BookStatus) error
}

type NotificationService interface {
	GetNotifications(ctx context.Context, userID int32, page, pageSize int32) ([]domain.Notification, int32, error)
	MarkAsRead(ctx context.Context, userID, notificationID int32) error
}

type EmailService interface {
	SendRequestSubmittedNotification(ctx context.Context, managerEmail, facultyName, studentName, bookTitle string, reqType domain.RequestType) error
	SendRequestApprovedNotification(ctx context.Context, facultyEmail, studentName, bookTitle string, reqType domain.RequestType, notes string) error
	SendRequestRejectedNotification(ctx context.Context, facultyEmail, studentName, bookTitle string, reqType domain.RequestType, notes string) error
	SendRentalAssignedNotification(ctx context.Context, userEmail, userName, bookTitle string, dueOn time.Time) error
	SendReturnConfirmation(ctx context.Context, userEmail, userName, bookTitle string) error
	SendDueSoonReminder(ctx context.Context, userEmail, userName, bookTitle string, dueOn time.Time) error
	SendOverdueReminder(ctx context.Context, userEmail, userName, bookTitle string, dueOn time.Time) error
}
