package models

import "gorm.io/gorm"

// SettingsOverride holds stored user overrides for the analyzer settings.
// Every field is optional; nil means "fall back to the default". There is at
// most one row.
type SettingsOverride struct {
	gorm.Model
	BuyThreshold         *float64 `json:"buy_threshold,omitempty"`
	SellThreshold        *float64 `json:"sell_threshold,omitempty"`
	ShortMAPeriod        *int     `json:"short_ma_period,omitempty"`
	LongMAPeriod         *int     `json:"long_ma_period,omitempty"`
	RSIPeriod            *int     `json:"rsi_period,omitempty"`
	RSIOverbought        *float64 `json:"rsi_overbought,omitempty"`
	RSIOversold          *float64 `json:"rsi_oversold,omitempty"`
	TradingEnabled       *bool    `json:"trading_enabled,omitempty"`
	TradingMode          *string  `json:"trading_mode,omitempty"` // sandbox or live
	TradeAmountQuote     *float64 `json:"trade_amount_quote,omitempty"`
	SellPercentage       *float64 `json:"sell_percentage,omitempty"`
	NotificationsEnabled *bool    `json:"notifications_enabled,omitempty"`
}
