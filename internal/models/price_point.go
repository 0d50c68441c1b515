package models

import "time"

// PricePoint is a single timestamped price sample.
// The price history is append-only and ordered by timestamp ascending.
type PricePoint struct {
	ID        uint      `gorm:"primarykey" json:"-"`
	Timestamp time.Time `gorm:"index" json:"timestamp"`
	Price     float64   `gorm:"not null" json:"price"`
}
