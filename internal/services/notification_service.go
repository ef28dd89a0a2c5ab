package services

import (
	"context"
	"errors"

	"github.com/medicore/medicore-api/internal/models"
	"github.com/medicore/medicore-api/internal/repository"
	"github.com/medicore/medicore-api/pkg/logger"
	"gorm.io/gorm"
)

// NotificationService manages in-app notifications for admin users
type NotificationService struct {
	notificationRepo repository.NotificationRepository
	userRepo         repository.UserRepository
}

func NewNotificationService(notificationRepo repository.NotificationRepository, userRepo repository.UserRepository) *NotificationService {
	return &NotificationService{
		notificationRepo: notificationRepo,
		userRepo:         userRepo,
	}
}

// Notify creates a notification for a single user
func (s *NotificationService) Notify(ctx context.Context, userID uint, notType, title, message string) error {
	notification := &models.Notification{
		UserID:           userID,
		NotificationType: &notType,
		Title:            title,
		Message:          message,
	}
	return s.notificationRepo.Create(ctx, notification)
}

// NotifyAdmins fans the same notification out to every active admin.
// Failures are logged per recipient so one bad row does not stop the rest.
func (s *NotificationService) NotifyAdmins(ctx context.Context, notType, title, message string) error {
	if s == nil {
		return nil
	}
	admins, err := s.userRepo.FindAdmins(ctx)
	if err != nil {
		return err
	}

	for _, admin := range admins {
		if err := s.Notify(ctx, admin.ID, notType, title, message); err != nil {
			logger.Error("failed to create admin notification", "user_id", admin.ID, "error", err)
		}
	}
	return nil
}

// ListForUser returns a user's notifications, newest first
func (s *NotificationService) ListForUser(ctx context.Context, userID uint, query *repository.ListQuery) ([]models.Notification, int64, error) {
	return s.notificationRepo.FindByUser(ctx, userID, query)
}

// MarkAsRead marks a single notification as read. The notification must
// belong to the requesting user.
func (s *NotificationService) MarkAsRead(ctx context.Context, id, userID uint) (*models.Notification, error) {
	notification, err := s.notificationRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if notification.UserID != userID {
		return nil, ErrUnauthorized
	}

	notification.MarkAsRead()
	if err := s.notificationRepo.Update(ctx, notification); err != nil {
		return nil, err
	}
	return notification, nil
}

// MarkAllAsRead marks every unread notification for the user as read
func (s *NotificationService) MarkAllAsRead(ctx context.Context, userID uint) error {
	return s.notificationRepo.MarkAllAsRead(ctx, userID)
}

// Delete removes a notification owned by the user
func (s *NotificationService) Delete(ctx context.Context, id, userID uint) error {
	notification, err := s.notificationRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	if notification.UserID != userID {
		return ErrUnauthorized
	}
	return s.notificationRepo.Delete(ctx, id)
}
