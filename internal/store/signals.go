package store

import (
	"bitcoin-watcher-go/internal/models"
	"gorm.io/gorm"
)

// SignalStore is the append-only repository for classified signals.
type SignalStore struct {
	db *gorm.DB
}

// NewSignalStore creates a SignalStore.
func NewSignalStore(db *gorm.DB) *SignalStore {
	return &SignalStore{db: db}
}

// Append persists a new signal and returns its id.
func (s *SignalStore) Append(sig models.Signal) (uint, error) {
	if err := s.db.Create(&sig).Error; err != nil {
		return 0, err
	}
	return sig.ID, nil
}

// FindLatest returns the most recently persisted signal, or nil when none
// exists yet.
func (s *SignalStore) FindLatest() (*models.Signal, error) {
	var sig models.Signal
	err := s.db.Order("timestamp desc, id desc").First(&sig).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sig, nil
}
