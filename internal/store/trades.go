package store

import (
	"bitcoin-watcher-go/internal/models"
	"gorm.io/gorm"
)

// TradeStore is the append-only repository for executed trades.
type TradeStore struct {
	db *gorm.DB
}

// NewTradeStore creates a TradeStore.
func NewTradeStore(db *gorm.DB) *TradeStore {
	return &TradeStore{db: db}
}

// Append persists a trade record.
func (s *TradeStore) Append(record *models.TradeRecord) error {
	return s.db.Create(record).Error
}

// Recent returns up to limit trades, newest first.
func (s *TradeStore) Recent(limit int) ([]models.TradeRecord, error) {
	var trades []models.TradeRecord
	err := s.db.Order("created_at desc").Limit(limit).Find(&trades).Error
	return trades, err
}

// FailedTradeStore is the append-only repository for failed trade attempts.
type FailedTradeStore struct {
	db *gorm.DB
}

// NewFailedTradeStore creates a FailedTradeStore.
func NewFailedTradeStore(db *gorm.DB) *FailedTradeStore {
	return &FailedTradeStore{db: db}
}

// Append persists a failed trade record.
func (s *FailedTradeStore) Append(record *models.FailedTradeRecord) error {
	return s.db.Create(record).Error
}

// Recent returns up to limit failed trades, newest first.
func (s *FailedTradeStore) Recent(limit int) ([]models.FailedTradeRecord, error) {
	var failures []models.FailedTradeRecord
	err := s.db.Order("created_at desc").Limit(limit).Find(&failures).Error
	return failures, err
}
