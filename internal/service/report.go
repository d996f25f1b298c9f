package service

import (
	"context"
	"time"

	"librental-backend/internal/apperr"
	"librental-backend/internal/domain"
	"librental-backend/internal/repository"
)

type reportService struct {
	bookRepo    repository.BookRepository
	userRepo    repository.UserRepository
	rentalRepo  repository.RentalRepository
	dueSoonDays int
}

func NewReportService(
	bookRepo repository.BookRepository,
	userRepo repository.UserRepository,
	rentalRepo repository.RentalRepository,
	dueSoonDays int,
) ReportService {
	if dueSoonDays <= 0 {
		dueSoonDays = 2
	}
	return &reportService{
		bookRepo:    bookRepo,
		userRepo:    userRepo,
		rentalRepo:  rentalRepo,
		dueSoonDays: dueSoonDays,
	}
}

func (s *reportService) GetDashboardStats(ctx context.Context) (*DashboardStats, error) {
	now := time.Now()

	books, err := s.bookRepo.CountByStatus(ctx)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	roles, err := s.userRepo.CountByRole(ctx)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	accounts, err := s.userRepo.CountByAccountStatus(ctx)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	rentals, err := s.rentalRepo.CountByStatus(ctx)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	today, err := s.rentalRepo.ListIssuedOn(ctx, now)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	overdue, err := s.rentalRepo.ListOverdue(ctx, now)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	dueSoon, err := s.rentalRepo.ListDueWithin(ctx, now, s.dueSoonDays)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	return &DashboardStats{
		BooksByStatus:        books,
		UsersByRole:          roles,
		UsersByAccountStatus: accounts,
		RentalsByStatus:      rentals,
		RentalsToday:         int32(len(today)),
		OverdueCount:         int32(len(overdue)),
		DueSoonCount:         int32(len(dueSoon)),
	}, nil
}

func (s *reportService) ListTodaysRentals(ctx context.Context) ([]domain.Rental, error) {
	rentals, err := s.rentalRepo.ListIssuedOn(ctx, time.Now())
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return rentals, nil
}

func (s *reportService) ListActiveRentals(ctx context.Context, limit int32) ([]domain.Rental, error) {
	if limit <= 0 {
		limit = 100
	}
	rentals, err := s.rentalRepo.ListOpenByDueDate(ctx, limit)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return rentals, nil
}

func (s *reportService) ListOverdueRentals(ctx context.Context) ([]domain.Rental, error) {
	rentals, err := s.rentalRepo.ListOverdue(ctx, time.Now())
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return rentals, nil
}

func (s *reportService) ListDueSoonRentals(ctx context.Context) ([]domain.Rental, error) {
	rentals, err := s.rentalRepo.ListDueWithin(ctx, time.Now(), s.dueSoonDays)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return rentals, nil
}
