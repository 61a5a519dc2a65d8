// Package kv is the durable key/value collaborator: point lookups, write-once
// records, set indexes and an availability probe.
package kv

import (
	"context"
	"errors"
)

var (
	ErrNotFound    = errors.New("kv: key not found")
	ErrUnavailable = errors.New("kv: store unavailable")
)

// Store is a minimal key/value store with string sets.
type Store interface {
	// Get returns the value at key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set writes value at key, replacing any existing value.
	Set(ctx context.Context, key string, value []byte) error
	// SetIfAbsent writes value only when key does not exist and reports
	// whether it wrote.
	SetIfAbsent(ctx context.Context, key string, value []byte) (bool, error)
	// SAdd adds members to the set at setKey. Re-adding is a no-op.
	SAdd(ctx context.Context, setKey string, members ...string) error
	// SMembers returns the members of the set at setKey in ascending order.
	// A missing set is empty, not an error.
	SMembers(ctx context.Context, setKey string) ([]string, error)
	// Ping reports whether the store can serve requests, wrapping
	// ErrUnavailable when it cannot.
	Ping(ctx context.Context) error
	Close() error
}
