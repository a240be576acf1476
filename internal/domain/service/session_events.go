package service

import "github.com/google/uuid"

// SessionEventType mirrors the auth state changes the clients observe.
type SessionEventType string

const (
	// SessionSignedIn fires after a successful sign-in.
	SessionSignedIn SessionEventType = "SIGNED_IN"
	// SessionSignedOut fires after a sign-out or forced sign-out.
	SessionSignedOut SessionEventType = "SIGNED_OUT"
	// SessionTokenRefreshed fires on access-token refresh. A refresh for the
	// same identity must NOT wipe caches; only an identity change does.
	SessionTokenRefreshed SessionEventType = "TOKEN_REFRESHED"
)

// SessionEvent is one auth state change.
type SessionEvent struct {
	Type         SessionEventType
	UserID       uuid.UUID
	SameIdentity bool // set on TOKEN_REFRESHED when the subject is unchanged
}

// SessionEventBus is the in-process stream of auth state changes. The cache
// invalidator subscribes; the auth service publishes. Publish is synchronous
// so a sign-out returns only after subscribers (cache clear) have run.
type SessionEventBus interface {
	// Publish delivers the event to every subscriber before returning.
	Publish(event SessionEvent)

	// Subscribe registers a handler for all future events.
	Subscribe(handler func(SessionEvent))
}
