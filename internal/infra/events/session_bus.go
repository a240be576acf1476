// Package events provides the in-process auth session event bus.
package events

import (
	"sync"

	"bizhub/internal/domain/service"
)

// sessionBus implements service.SessionEventBus. Publish runs handlers
// synchronously so a sign-out returns only after subscribers have reacted.
type sessionBus struct {
	mu       sync.RWMutex
	handlers []func(service.SessionEvent)
}

// NewSessionBus is the constructor for sessionBus.
func NewSessionBus() service.SessionEventBus {
	return &sessionBus{}
}

// Publish delivers the event to every subscriber before returning.
func (b *sessionBus) Publish(event service.SessionEvent) {
	b.mu.RLock()
	handlers := b.handlers
	b.mu.RUnlock()

	for _, handler := range handlers {
		handler(event)
	}
}

// Subscribe registers a handler for all future events.
func (b *sessionBus) Subscribe(handler func(service.SessionEvent)) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers = append(b.handlers, handler)
}
