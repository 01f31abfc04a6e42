package service

import (
	"errors"

	"gorm.io/gorm"

	"github.com/bellanovaantonio1-commits/antonio-bellaova-platform/internal/app/model"
	"github.com/bellanovaantonio1-commits/antonio-bellaova-platform/internal/app/repository"
	"github.com/bellanovaantonio1-commits/antonio-bellaova-platform/internal/websocket"
	"github.com/bellanovaantonio1-commits/antonio-bellaova-platform/pkg/logger"
)

var ErrNotificationNotFound = errors.New("notification not found")

type NotificationService interface {
	Notify(userID uint, notifyType model.NotificationType, title, message, link string)
	ListForUser(userID uint, unreadOnly bool) ([]model.Notification, error)
	CountUnread(userID uint) (int64, error)
	MarkRead(notificationID, userID uint) error
	MarkAllRead(userID uint) error
}

type notificationService struct {
	notificationRepo repository.NotificationRepository
	hub              *websocket.Hub
}

func NewNotificationService(notificationRepo repository.NotificationRepository, hub *websocket.Hub) NotificationService {
	return &notificationService{notificationRepo: notificationRepo, hub: hub}
}

// Notify persists a notification and pushes it to the user's live
// connections. Failures are logged, never propagated; notifications
// must not break the operation that triggered them.
func (s *notificationService) Notify(userID uint, notifyType model.NotificationType, title, message, link string) {
	notification := &model.Notification{
		UserID:  userID,
		Type:    notifyType,
		Title:   title,
		Message: message,
		Link:    link,
	}
	if err := s.notificationRepo.Create(notification); err != nil {
		logger.Error("Failed to create notification", err, map[string]interface{}{
			"user_id": userID,
			"type":    notifyType,
		})
		return
	}
	if s.hub != nil {
		s.hub.SendToUser(userID, websocket.EventNotification, notification)
	}
}

func (s *notificationService) ListForUser(userID uint, unreadOnly bool) ([]model.Notification, error) {
	return s.notificationRepo.FindByUser(userID, unreadOnly)
}

func (s *notificationService) CountUnread(userID uint) (int64, error) {
	return s.notificationRepo.CountUnread(userID)
}

func (s *notificationService) MarkRead(notificationID, userID uint) error {
	if err := s.notificationRepo.MarkRead(notificationID, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotificationNotFound
		}
		return err
	}
	return nil
}

func (s *notificationService) MarkAllRead(userID uint) error {
	return s.notificationRepo.MarkAllRead(userID)
}
