package service

import "context"

// PushSender sends push notifications to device tokens. The Firebase
// implementation is optional; a nil sender disables push delivery.
type PushSender interface {
	// SendSingle sends a push notification to a single device token.
	SendSingle(ctx context.Context, token, title, body string, data map[string]string) error

	// SendBatch sends to multiple tokens (max 500) and reports per-token
	// outcomes, including tokens the provider rejected as invalid.
	SendBatch(ctx context.Context, tokens []string, title, body string, data map[string]string) (successCount, failureCount int, invalidTokens []string, err error)
}
