package store

import (
	"bitcoin-watcher-go/internal/models"
	"gorm.io/gorm"
)

// NotificationStore is the append-only repository for dispatched notifications.
type NotificationStore struct {
	db *gorm.DB
}

// NewNotificationStore creates a NotificationStore.
func NewNotificationStore(db *gorm.DB) *NotificationStore {
	return &NotificationStore{db: db}
}

// Append persists a notification record.
func (s *NotificationStore) Append(n *models.Notification) error {
	return s.db.Create(n).Error
}

// Recent returns up to limit notifications, newest first.
func (s *NotificationStore) Recent(limit int) ([]models.Notification, error) {
	var notifications []models.Notification
	err := s.db.Order("timestamp desc").Limit(limit).Find(&notifications).Error
	return notifications, err
}
