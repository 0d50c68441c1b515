package notification

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

const fcmEndpoint = "https://fcm.googleapis.com/fcm/send"

// FCMDispatcher sends push notifications to an FCM topic.
type FCMDispatcher struct {
	client    *resty.Client
	serverKey string
	logger    *zap.Logger
}

var _ Dispatcher = (*FCMDispatcher)(nil)

// NewFCMDispatcher creates an FCM dispatcher authenticated with a server key.
func NewFCMDispatcher(serverKey string, logger *zap.Logger) *FCMDispatcher {
	client := resty.New().
		SetBaseURL(fcmEndpoint).
		SetTimeout(10 * time.Second)

	return &FCMDispatcher{
		client:    client,
		serverKey: serverKey,
		logger:    logger.Named("fcm"),
	}
}

type fcmMessage struct {
	To           string            `json:"to"`
	Notification fcmNotification   `json:"notification"`
	Data         map[string]string `json:"data,omitempty"`
}

type fcmNotification struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

type fcmResponse struct {
	MessageID int64  `json:"message_id"`
	Error     string `json:"error,omitempty"`
}

func (d *FCMDispatcher) Send(ctx context.Context, topic, title, body string, data map[string]string) (string, error) {
	message := fcmMessage{
		To:           "/topics/" + topic,
		Notification: fcmNotification{Title: title, Body: body},
		Data:         data,
	}

	resp, err := d.client.R().
		SetContext(ctx).
		SetHeader("Authorization", "key="+d.serverKey).
		SetHeader("Content-Type", "application/json").
		SetBody(message).
		SetResult(&fcmResponse{}).
		Post("")
	if err != nil {
		return "", fmt.Errorf("fcm send failed: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("fcm send rejected with status %s: %s", resp.Status(), resp.String())
	}

	result := resp.Result().(*fcmResponse)
	if result.Error != "" {
		return "", fmt.Errorf("fcm send error: %s", result.Error)
	}

	messageID := strconv.FormatInt(result.MessageID, 10)
	d.logger.Info("Notification sent", zap.String("topic", topic), zap.String("message_id", messageID))
	return messageID, nil
}
