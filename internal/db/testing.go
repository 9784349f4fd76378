// Test helpers for database access. Tests use in-memory databases for speed
// and rely on t.Cleanup for teardown.
package db

import (
	"testing"
)

// NewTestStore creates an in-memory store for testing. Migrations are
// applied automatically and the database is closed when the test completes.
//
// Usage:
//
//	func TestSomething(t *testing.T) {
//	    store := db.NewTestStore(t)
//	    // use store...
//	}
func NewTestStore(t testing.TB) *Store {
	t.Helper()

	store, err := OpenStoreInMemory()
	if err != nil {
		t.Fatalf("create test store: %v", err)
	}

	t.Cleanup(func() {
		_ = store.Close()
	})

	return store
}
