// Package notification delivers push notifications for signal transitions.
// Delivery is best-effort; a failure never aborts the analysis cycle.
package notification

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Dispatcher sends a notification to subscribed devices.
type Dispatcher interface {
	// Send delivers a message to a topic and returns the provider's message id.
	Send(ctx context.Context, topic, title, body string, data map[string]string) (string, error)
}

// LogDispatcher logs notifications instead of delivering them. Used in
// development and whenever no provider credentials are configured.
type LogDispatcher struct {
	logger *zap.Logger
}

// NewLogDispatcher creates a log-backed dispatcher.
func NewLogDispatcher(logger *zap.Logger) *LogDispatcher {
	return &LogDispatcher{logger: logger.Named("notifier")}
}

func (d *LogDispatcher) Send(ctx context.Context, topic, title, body string, data map[string]string) (string, error) {
	messageID := uuid.NewString()
	d.logger.Info("Notification (log only)",
		zap.String("topic", topic),
		zap.String("title", title),
		zap.String("body", body),
		zap.Any("data", data),
		zap.String("message_id", messageID),
	)
	return messageID, nil
}
