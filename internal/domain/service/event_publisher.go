package service

import (
	"context"
)

// PushDispatchEvent asks the worker to fan a notification out to the
// recipient's registered devices.
type PushDispatchEvent struct {
	RequestID      string `json:"request_id,omitempty"` // For distributed tracing
	NotificationID string `json:"notification_id"`
	UserID         string `json:"user_id"`
	Title          string `json:"title"`
	Body           string `json:"body"`
	Type           string `json:"type"`
	Priority       string `json:"priority"`
}

// EventPublisher defines the interface for publishing dispatch events to a
// message queue for async processing.
type EventPublisher interface {
	// PublishDispatchEvent publishes a push dispatch event.
	PublishDispatchEvent(ctx context.Context, event *PushDispatchEvent) error

	// Close releases any resources held by the publisher.
	Close() error
}
