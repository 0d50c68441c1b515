package signal

import "bitcoin-watcher-go/internal/models"

// IsTransition reports whether next constitutes a signal transition relative
// to the most recently persisted signal.
//
// A transition requires the new signal to be BUY or SELL, and either no prior
// signal or a prior signal of a different type. HOLD never transitions, and a
// repeated BUY or SELL does not re-trigger. The last-signal snapshot must be
// taken before the new signal is persisted.
func IsTransition(last *models.Signal, next models.Signal) bool {
	if next.Type != models.SignalBuy && next.Type != models.SignalSell {
		return false
	}
	return last == nil || last.Type != next.Type
}
