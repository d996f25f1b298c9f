package service

import (
	"context"
	"errors"

	"librental-backend/internal/apperr"
	"librental-backend/internal/domain"
	"librental-backend/internal/repository"
)

type notificationService struct {
	noteRepo repository.NotificationRepository
}

func NewNotificationService(noteRepo repository.NotificationRepository) NotificationService {
	return &notificationService{noteRepo: noteRepo}
}

func (s *notificationService) GetNotifications(ctx context.Context, userID int32, page, pageSize int32) ([]domain.Notification, int32, error) {
	notes, count, err := s.noteRepo.List(ctx, userID, page, pageSize)
	if err != nil {
		return nil, 0, apperr.Internal(err)
	}
	return notes, count, nil
}

func (s *notificationService) MarkAsRead(ctx context.Context, userID, notificationID int32) error {
	if err := s.noteRepo.MarkAsRead(ctx, notificationID, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound("Notification not found")
		}
		return apperr.Internal(err)
	}
	return nil
}
