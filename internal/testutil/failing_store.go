package testutil

import (
	"context"
	"strings"
	"sync/atomic"

	"github.com/alexanderramin/elicit/internal/kv"
)

// FailingStore wraps a kv.Store and injects errors. Writes (Set, SetIfAbsent,
// SAdd) are counted starting at 1; the write numbered FailOn and any write to
// a key with FailKeyPrefix fail with Err. Down makes Ping report the store as
// unavailable. Reads always pass through.
type FailingStore struct {
	kv.Store
	FailOn        int32
	FailKeyPrefix string
	Err           error
	Down          atomic.Bool

	writes atomic.Int32
}

func (f *FailingStore) fail(key string) bool {
	n := f.writes.Add(1)
	if f.FailOn > 0 && n == f.FailOn {
		return true
	}
	return f.FailKeyPrefix != "" && strings.HasPrefix(key, f.FailKeyPrefix)
}

func (f *FailingStore) Set(ctx context.Context, key string, value []byte) error {
	if f.fail(key) {
		return f.Err
	}
	return f.Store.Set(ctx, key, value)
}

func (f *FailingStore) SetIfAbsent(ctx context.Context, key string, value []byte) (bool, error) {
	if f.fail(key) {
		return false, f.Err
	}
	return f.Store.SetIfAbsent(ctx, key, value)
}

func (f *FailingStore) SAdd(ctx context.Context, setKey string, members ...string) error {
	if f.fail(setKey) {
		return f.Err
	}
	return f.Store.SAdd(ctx, setKey, members...)
}

func (f *FailingStore) Ping(ctx context.Context) error {
	if f.Down.Load() {
		return kv.ErrUnavailable
	}
	return f.Store.Ping(ctx)
}
