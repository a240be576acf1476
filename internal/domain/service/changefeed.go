package service

import "context"

// ChangeOp is the kind of row mutation carried by a change event.
type ChangeOp string

const (
	ChangeInsert ChangeOp = "INSERT"
	ChangeUpdate ChangeOp = "UPDATE"
	ChangeDelete ChangeOp = "DELETE"
)

// ChangeEvent is a table-level change notification. Services publish one
// after each committed write; consumers use it only for cache invalidation,
// never for incremental data patching.
type ChangeEvent struct {
	Table      string   `json:"table"`
	Op         ChangeOp `json:"op"`
	RowID      string   `json:"row_id,omitempty"`
	BusinessID string   `json:"business_id,omitempty"`
	UserID     string   `json:"user_id,omitempty"`
	RequestID  string   `json:"request_id,omitempty"`
}

// ChangeFeedPublisher publishes change events to the broker.
type ChangeFeedPublisher interface {
	// PublishChange publishes one change event. Failures are logged by the
	// caller and never abort the originating write, which has already
	// committed.
	PublishChange(ctx context.Context, event *ChangeEvent) error

	// Close releases broker resources.
	Close() error
}

// ChangeFeedConsumer delivers change events to a handler until ctx ends.
type ChangeFeedConsumer interface {
	// Consume blocks, invoking handler for each received event. It reconnects
	// with backoff and returns only when ctx is cancelled.
	Consume(ctx context.Context, handler func(*ChangeEvent)) error

	// Close releases broker resources.
	Close() error
}
