package models

import "time"

// Notification records a push notification that was dispatched for a signal.
type Notification struct {
	ID         uint      `gorm:"primarykey" json:"id"`
	Timestamp  time.Time `gorm:"index" json:"timestamp"`
	SignalID   uint      `json:"signal_id"`
	SignalType string    `json:"signal_type"`
	Title      string    `json:"title"`
	Message    string    `json:"message"`
	Price      float64   `json:"price"`
	MessageID  string    `json:"message_id,omitempty"`
}
