// Package delivery groups the inbound adapters of the application: the HTTP
// API and the Pub/Sub push worker.
package delivery

import "context"

// Delivery is a long-running inbound server. Implementations register an fx
// OnStop hook for graceful shutdown; Serve blocks until the server exits.
type Delivery interface {
	Serve(ctx context.Context) error
}
