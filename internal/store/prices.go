// Package store contains the gorm-backed repositories for all persisted
// aggregates: prices, signals, trades, notifications and settings.
package store

import (
	"time"

	"bitcoin-watcher-go/internal/models"
	"gorm.io/gorm"
)

// PriceStore is the append-only repository for price samples.
type PriceStore struct {
	db *gorm.DB
}

// NewPriceStore creates a PriceStore.
func NewPriceStore(db *gorm.DB) *PriceStore {
	return &PriceStore{db: db}
}

// Append stores a new price sample.
func (s *PriceStore) Append(price float64, timestamp time.Time) error {
	point := models.PricePoint{Timestamp: timestamp, Price: price}
	return s.db.Create(&point).Error
}

// Range returns all samples in [from, to] ordered by timestamp ascending.
func (s *PriceStore) Range(from, to time.Time) ([]models.PricePoint, error) {
	var points []models.PricePoint
	err := s.db.
		Where("timestamp >= ? AND timestamp <= ?", from, to).
		Order("timestamp asc").
		Find(&points).Error
	return points, err
}

// Latest returns the most recent price sample, or nil when none exist.
func (s *PriceStore) Latest() (*models.PricePoint, error) {
	var point models.PricePoint
	err := s.db.Order("timestamp desc").First(&point).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &point, nil
}
