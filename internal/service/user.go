package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"librental-backend/internal/apperr"
	"librental-backend/internal/domain"
	"librental-backend/internal/logger"
	"librental-backend/internal/repository"
)

type userService struct {
	userRepo repository.UserRepository
	noteRepo repository.NotificationRepository
}

func NewUserService(userRepo repository.UserRepository, noteRepo repository.NotificationRepository) UserService {
	return &userService{userRepo: userRepo, noteRepo: noteRepo}
}

func (s *userService) GetUser(ctx context.Context, id int32) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound("User not found")
		}
		return nil, apperr.Internal(err)
	}
	return user, nil
}

func (s *userService) ListUsers(ctx context.Context, role domain.UserRole, status domain.UserStatus, page, pageSize int32) ([]domain.User, int32, error) {
	users, count, err := s.userRepo.List(ctx, role, status, page, pageSize)
	if err != nil {
		return nil, 0, apperr.Internal(err)
	}
	return users, count, nil
}

func (s *userService) BlockUser(ctx context.Context, managerID, userID int32, block bool, reason string) error {
	target, err := s.requireManagerAndTarget(ctx, managerID, userID)
	if err != nil {
		return err
	}

	status := domain.AccountStatusActive
	if block {
		status = domain.AccountStatusBlocked
	}
	if err := s.userRepo.SetAccountStatus(ctx, userID, status, nil); err != nil {
		return apperr.Internal(err)
	}

	title := "Account Unblocked"
	message := "Your account has been unblocked"
	if block {
		title = "Account Blocked"
		message = "Your account has been blocked due to violations"
		if reason != "" {
			message = fmt.Sprintf("%s: %s", message, reason)
		}
	}
	s.notify(ctx, target.ID, title, message)
	return nil
}

func (s *userService) ApplyPenalty(ctx context.Context, managerID, userID int32, until time.Time, reason string) error {
	target, err := s.requireManagerAndTarget(ctx, managerID, userID)
	if err != nil {
		return err
	}
	if !until.After(time.Now()) {
		return apperr.Validation("Penalty end date must be in the future")
	}

	if err := s.userRepo.SetAccountStatus(ctx, userID, domain.AccountStatusPenalty, &until); err != nil {
		return apperr.Internal(err)
	}

	message := fmt.Sprintf("Your account is under penalty until %s", until.Format("2006-01-02"))
	if reason != "" {
		message = fmt.Sprintf("%s: %s", message, reason)
	}
	s.notify(ctx, target.ID, "Penalty Applied", message)
	return nil
}

func (s *userService) ClearPenalty(ctx context.Context, managerID, userID int32) error {
	target, err := s.requireManagerAndTarget(ctx, managerID, userID)
	if err != nil {
		return err
	}

	if err := s.userRepo.SetAccountStatus(ctx, userID, domain.AccountStatusActive, nil); err != nil {
		return apperr.Internal(err)
	}
	s.notify(ctx, target.ID, "Penalty Cleared", "Your account is in good standing again")
	return nil
}

func (s *userService) DeleteUser(ctx context.Context, managerID, userID int32) error {
	target, err := s.requireManagerAndTarget(ctx, managerID, userID)
	if err != nil {
		return err
	}
	if target.ActiveRentals > 0 {
		return apperr.Conflict("Cannot delete a user with active rentals")
	}

	// Soft delete: the row stays for rental history, the lifecycle flag
	// takes the account out of the active set.
	if err := s.userRepo.SetStatus(ctx, userID, domain.UserStatusDeleted); err != nil {
		return apperr.Internal(err)
	}
	return nil
}

func (s *userService) requireManagerAndTarget(ctx context.Context, managerID, userID int32) (*domain.User, error) {
	manager, err := s.userRepo.GetByID(ctx, managerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.Forbidden("Only the manager can perform this action")
		}
		return nil, apperr.Internal(err)
	}
	if !manager.IsManager() {
		return nil, apperr.Forbidden("Only the manager can perform this action")
	}

	target, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound("User not found")
		}
		return nil, apperr.Internal(err)
	}
	return target, nil
}

func (s *userService) notify(ctx context.Context, userID int32, title, message string) {
	note := &domain.Notification{
		UserID:  userID,
		Title:   title,
		Message: message,
		Attributes: map[string]string{
			"type": "ACCOUNT_STATUS",
		},
	}
	if err := s.noteRepo.Create(ctx, nil, note); err != nil {
		logger.Warn("Failed to create account status notification", "user_id", userID, "error", err)
	}
}
