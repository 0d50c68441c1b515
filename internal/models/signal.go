package models

import "time"

// Signal types produced by the classifier.
const (
	SignalBuy  = "BUY"
	SignalSell = "SELL"
	SignalHold = "HOLD"
)

// Signal is the result of one classification cycle.
// Signals are created once per cycle, never mutated, and persisted append-only.
type Signal struct {
	ID         uint      `gorm:"primarykey" json:"id"`
	Timestamp  time.Time `gorm:"index" json:"timestamp"`
	Type       string    `gorm:"not null" json:"type"` // BUY, SELL or HOLD
	Price      float64   `json:"price"`
	Confidence float64   `json:"confidence"` // 0..100
	ShortMA    float64   `json:"short_ma"`
	LongMA     float64   `json:"long_ma"`
	RSI        *float64  `json:"rsi,omitempty"`
	Reason     string    `json:"reason,omitempty"`
}
