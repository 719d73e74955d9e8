package cache

import (
	"context"
	"time"
)

// Store is a key-value store with expiration. Used for refresh token
// denylisting and for debouncing webhook dispatch wake-ups.
type Store interface {
	// Set stores a key-value pair with expiration
	Set(ctx context.Context, key, value string, ttl time.Duration) error

	// SetNX stores the pair only when the key does not exist yet.
	// Returns true when the key was set by this call.
	SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error)

	// Get retrieves a value by key
	Get(ctx context.Context, key string) (string, bool, error)

	// Delete removes a key
	Delete(ctx context.Context, key string) error
}

// Notifier wakes subscribers across processes
type Notifier interface {
	// Notify publishes a message on the channel
	Notify(ctx context.Context, channel, message string) error

	// Subscribe returns a stream of messages on the channel. The stream
	// closes when ctx is cancelled.
	Subscribe(ctx context.Context, channel string) <-chan string
}
