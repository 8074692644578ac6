// Package storage provides the durable keyed blob store the cart
// persists into. Backends share last-write-wins semantics; there is no
// cross-process locking, so concurrent writers race and the later
// write survives.
package storage

import "context"

// Store is the interface for all blob store backends.
type Store interface {
	// Read returns the payload stored under key, or types.ErrKeyNotFound.
	Read(ctx context.Context, key string) ([]byte, error)

	// Write persists the payload under key, replacing any prior value.
	Write(ctx context.Context, key string, data []byte) error

	// Name returns the backend identifier.
	Name() string

	// Close releases resources.
	Close() error
}
