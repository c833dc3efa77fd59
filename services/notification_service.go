package services

import (
	"context"
	"fmt"

	"github.com/signworks/orderflow-api/models"
	"gorm.io/gorm"
)

// NotificationService reads and acknowledges a user's inbox
type NotificationService struct {
	db *gorm.DB
}

// NewNotificationService creates a notification service bound to db
func NewNotificationService(db *gorm.DB) *NotificationService {
	return &NotificationService{db: db}
}

// List returns the user's notifications, newest first
func (s *NotificationService) List(ctx context.Context, userID uint, unreadOnly bool, limit int) ([]models.Notification, int64, error) {
	if limit < 1 || limit > maxPageSize {
		limit = maxPageSize
	}

	var unread int64
	if err := s.db.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND read = ?", userID, false).
		Count(&unread).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count notifications: %w", err)
	}

	query := s.db.WithContext(ctx).Where("user_id = ?", userID)
	if unreadOnly {
		query = query.Where("read = ?", false)
	}

	var notifications []models.Notification
	if err := query.Order("created_at DESC").Order("id DESC").Limit(limit).Find(&notifications).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch notifications: %w", err)
	}
	return notifications, unread, nil
}

// MarkRead acknowledges one of the user's notifications
func (s *NotificationService) MarkRead(ctx context.Context, userID, id uint) (*models.Notification, error) {
	var n models.Notification
	if err := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&n).Error; err != nil {
		return nil, notFoundOr(err, "notification", id)
	}
	if !n.Read {
		if err := s.db.WithContext(ctx).Model(&n).Update("read", true).Error; err != nil {
			return nil, fmt.Errorf("failed to update notification: %w", err)
		}
		n.Read = true
	}
	return &n, nil
}

// MarkAllRead acknowledges every unread notification of the user
func (s *NotificationService) MarkAllRead(ctx context.Context, userID uint) (int64, error) {
	res := s.db.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND read = ?", userID, false).
		Update("read", true)
	return res.RowsAffected, res.Error
}
