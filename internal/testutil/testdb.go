package testutil

import (
	"testing"

	"github.com/alexanderramin/elicit/internal/kv"
)

// NewTestStore creates an in-memory SQLite store with all migrations applied.
// The store is closed when the test completes.
func NewTestStore(t *testing.T) kv.Store {
	t.Helper()
	store, err := kv.OpenSQLite(":memory:")
	if err != nil {
		t.Fatalf("failed to create test store: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}
