package storage

import (
	"context"
)

// Keys used by the account layer.
// Значения хранятся как есть: индекс аккаунтов в JSON, default user как строка.
const (
	KeyAccounts    = "user_infos"
	KeyDefaultUser = "default_user"
	KeyDeviceID    = "device_id"
)

// SecureStore defines key/value persistence for session data on the client.
// This is the lowest storage layer - it works with raw bytes and does not interpret them.
// Implementations must be durable across process restarts unless stated otherwise.
type SecureStore interface {
	// Read returns the stored value.
	// Returns ErrKeyNotFound if nothing is stored under key.
	Read(ctx context.Context, key string) ([]byte, error)

	// Write stores value under key, replacing any previous value.
	Write(ctx context.Context, key string, value []byte) error

	// Remove deletes key. Removing a missing key is not an error.
	Remove(ctx context.Context, key string) error
}
