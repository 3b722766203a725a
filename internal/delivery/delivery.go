// Package delivery defines the contract every transport server implements.
package delivery

import "context"

// Delivery is a long-running transport (the localhost HTTP API). Serve
// blocks until the server stops or fails.
type Delivery interface {
	Serve(ctx context.Context) error
}
