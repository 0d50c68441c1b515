package models

import "gorm.io/gorm"

// TradeRecord is the audit record for a successfully placed order.
// Exactly one is created per placed order; records are immutable.
type TradeRecord struct {
	gorm.Model
	SignalID        uint    `json:"signal_id"`
	OrderID         int64   `json:"order_id"`
	Symbol          string  `json:"symbol"`
	Side            string  `json:"side"` // BUY or SELL
	Status          string  `json:"status"`
	ExecutedQty     float64 `json:"executed_qty"`
	AveragePrice    float64 `json:"average_price"`
	Fills           int     `json:"fills"`
	CommissionTotal float64 `json:"commission_total"`
	Sandbox         bool    `json:"sandbox"`
}

// FailedTradeRecord is the audit record for an attempted-but-failed trade.
type FailedTradeRecord struct {
	gorm.Model
	SignalID    uint    `json:"signal_id"`
	SignalType  string  `json:"signal_type"`
	SignalPrice float64 `json:"signal_price"`
	Error       string  `json:"error"`
}
