package store

import (
	"fmt"

	"bitcoin-watcher-go/internal/models"
	"gorm.io/gorm"
)

// Trading modes.
const (
	ModeSandbox = "sandbox"
	ModeLive    = "live"
)

// Settings is the fully resolved configuration for one analysis cycle.
// It is re-read from the store at the start of every cycle.
type Settings struct {
	BuyThreshold         float64 `json:"buy_threshold"`
	SellThreshold        float64 `json:"sell_threshold"`
	ShortMAPeriod        int     `json:"short_ma_period"`
	LongMAPeriod         int     `json:"long_ma_period"`
	RSIPeriod            int     `json:"rsi_period"` // 0 disables RSI confirmation
	RSIOverbought        float64 `json:"rsi_overbought"`
	RSIOversold          float64 `json:"rsi_oversold"`
	TradingEnabled       bool    `json:"trading_enabled"`
	TradingMode          string  `json:"trading_mode"` // sandbox or live
	TradeAmountQuote     float64 `json:"trade_amount_quote"`
	SellPercentage       float64 `json:"sell_percentage"` // (0,100]
	NotificationsEnabled bool    `json:"notifications_enabled"`
}

// DefaultSettings returns the fixed defaults that stored overrides layer onto.
func DefaultSettings() Settings {
	return Settings{
		BuyThreshold:         0.005,
		SellThreshold:        0.005,
		ShortMAPeriod:        7,
		LongMAPeriod:         21,
		RSIPeriod:            0,
		RSIOverbought:        70,
		RSIOversold:          30,
		TradingEnabled:       false,
		TradingMode:          ModeSandbox,
		TradeAmountQuote:     50,
		SellPercentage:       100,
		NotificationsEnabled: true,
	}
}

// SettingsStore resolves settings from the stored override row.
type SettingsStore struct {
	db *gorm.DB
}

// NewSettingsStore creates a SettingsStore.
func NewSettingsStore(db *gorm.DB) *SettingsStore {
	return &SettingsStore{db: db}
}

// Get returns the effective settings: stored overrides merged onto the
// defaults. Absent override fields fall back silently.
func (s *SettingsStore) Get() (Settings, error) {
	settings := DefaultSettings()

	var override models.SettingsOverride
	err := s.db.First(&override).Error
	if err == gorm.ErrRecordNotFound {
		return settings, nil
	}
	if err != nil {
		return settings, fmt.Errorf("failed to read settings override: %w", err)
	}

	return merge(settings, override), nil
}

// Update applies a partial override on top of the stored row and persists it.
func (s *SettingsStore) Update(patch models.SettingsOverride) error {
	var override models.SettingsOverride
	err := s.db.First(&override).Error
	if err != nil && err != gorm.ErrRecordNotFound {
		return fmt.Errorf("failed to read settings override: %w", err)
	}

	applyPatch(&override, patch)
	return s.db.Save(&override).Error
}

func merge(base Settings, o models.SettingsOverride) Settings {
	if o.BuyThreshold != nil {
		base.BuyThreshold = *o.BuyThreshold
	}
	if o.SellThreshold != nil {
		base.SellThreshold = *o.SellThreshold
	}
	if o.ShortMAPeriod != nil {
		base.ShortMAPeriod = *o.ShortMAPeriod
	}
	if o.LongMAPeriod != nil {
		base.LongMAPeriod = *o.LongMAPeriod
	}
	if o.RSIPeriod != nil {
		base.RSIPeriod = *o.RSIPeriod
	}
	if o.RSIOverbought != nil {
		base.RSIOverbought = *o.RSIOverbought
	}
	if o.RSIOversold != nil {
		base.RSIOversold = *o.RSIOversold
	}
	if o.TradingEnabled != nil {
		base.TradingEnabled = *o.TradingEnabled
	}
	if o.TradingMode != nil {
		base.TradingMode = *o.TradingMode
	}
	if o.TradeAmountQuote != nil {
		base.TradeAmountQuote = *o.TradeAmountQuote
	}
	if o.SellPercentage != nil {
		base.SellPercentage = *o.SellPercentage
	}
	if o.NotificationsEnabled != nil {
		base.NotificationsEnabled = *o.NotificationsEnabled
	}
	return base
}

func applyPatch(dst *models.SettingsOverride, patch models.SettingsOverride) {
	if patch.BuyThreshold != nil {
		dst.BuyThreshold = patch.BuyThreshold
	}
	if patch.SellThreshold != nil {
		dst.SellThreshold = patch.SellThreshold
	}
	if patch.ShortMAPeriod != nil {
		dst.ShortMAPeriod = patch.ShortMAPeriod
	}
	if patch.LongMAPeriod != nil {
		dst.LongMAPeriod = patch.LongMAPeriod
	}
	if patch.RSIPeriod != nil {
		dst.RSIPeriod = patch.RSIPeriod
	}
	if patch.RSIOverbought != nil {
		dst.RSIOverbought = patch.RSIOverbought
	}
	if patch.RSIOversold != nil {
		dst.RSIOversold = patch.RSIOversold
	}
	if patch.TradingEnabled != nil {
		dst.TradingEnabled = patch.TradingEnabled
	}
	if patch.TradingMode != nil {
		dst.TradingMode = patch.TradingMode
	}
	if patch.TradeAmountQuote != nil {
		dst.TradeAmountQuote = patch.TradeAmountQuote
	}
	if patch.SellPercentage != nil {
		dst.SellPercentage = patch.SellPercentage
	}
	if patch.NotificationsEnabled != nil {
		dst.NotificationsEnabled = patch.NotificationsEnabled
	}
}
