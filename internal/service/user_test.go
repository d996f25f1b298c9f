package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"librental-backend/internal/domain"
	"librental-backend/internal/service"
)

func TestUserService_BlockAndPenalty(t *testing.T) {
	ctx := context.Background()

	t.Run("Block user", func(t *testing.T) {
		userRepo := new(MockUserRepo)
		noteRepo := new(MockNotificationRepo)
		svc := service.NewUserService(userRepo, noteRepo)

		userRepo.On("GetByID", ctx, int32(99)).Return(activeManager(), nil)
		userRepo.On("GetByID", ctx, int32(1)).Return(eligibleStudent(), nil)
		userRepo.On("SetAccountStatus", ctx, int32(1), domain.AccountStatusBlocked, (*time.Time)(nil)).Return(nil)
		noteRepo.On("Create", ctx, mock.Anything, mock.AnythingOfType("*domain.Notification")).Return(nil)

		err := svc.BlockUser(ctx, 99, 1, true, "repeated late returns")
		require.NoError(t, err)
		userRepo.AssertExpectations(t)
	})

	t.Run("Penalty must end in the future", func(t *testing.T) {
		userRepo := new(MockUserRepo)
		noteRepo := new(MockNotificationRepo)
		svc := service.NewUserService(userRepo, noteRepo)

		userRepo.On("GetByID", ctx, int32(99)).Return(activeManager(), nil)
		userRepo.On("GetByID", ctx, int32(1)).Return(eligibleStudent(), nil)

		err := svc.ApplyPenalty(ctx, 99, 1, time.Now().AddDate(0, 0, -1), "")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Penalty end date must be in the future")
		userRepo.AssertNotCalled(t, "SetAccountStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Only the manager can block", func(t *testing.T) {
		userRepo := new(MockUserRepo)
		noteRepo := new(MockNotificationRepo)
		svc := service.NewUserService(userRepo, noteRepo)

		userRepo.On("GetByID", ctx, int32(10)).Return(activeFaculty(), nil)

		err := svc.BlockUser(ctx, 10, 1, true, "")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Only the manager can perform this action")
	})
}

func TestUserService_DeleteUser(t *testing.T) {
	ctx := context.Background()

	t.Run("Soft delete", func(t *testing.T) {
		userRepo := new(MockUserRepo)
		noteRepo := new(MockNotificationRepo)
		svc := service.NewUserService(userRepo, noteRepo)

		userRepo.On("GetByID", ctx, int32(99)).Return(activeManager(), nil)
		userRepo.On("GetByID", ctx, int32(1)).Return(eligibleStudent(), nil)
		userRepo.On("SetStatus", ctx, int32(1), domain.UserStatusDeleted).Return(nil)

		err := svc.DeleteUser(ctx, 99, 1)
		require.NoError(t, err)
		userRepo.AssertExpectations(t)
	})

	t.Run("Refused while rentals are open", func(t *testing.T) {
		userRepo := new(MockUserRepo)
		noteRepo := new(MockNotificationRepo)
		svc := service.NewUserService(userRepo, noteRepo)

		holding := eligibleStudent()
		holding.ActiveRentals = 1
		userRepo.On("GetByID", ctx, int32(99)).Return(activeManager(), nil)
		userRepo.On("GetByID", ctx, int32(1)).Return(holding, nil)

		err := svc.DeleteUser(ctx, 99, 1)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Cannot delete a user with active rentals")
		userRepo.AssertNotCalled(t, "SetStatus", mock.Anything, mock.Anything, mock.Anything)
	})
}
