package testsupport

import (
	"context"
	"testing"

	"parley/internal/config"
	"parley/internal/store"
)

// MustOpenStore opens a store.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *store.Store {
	t.Helper()

	st, err := store.Open(cfg)
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() {
		st.Close()
	})
	return st
}

// NewSession creates a session with an opening line for tests.
func NewSession(t testing.TB, st *store.Store, scenarioID, opening string) *store.Session {
	t.Helper()

	session, err := st.CreateSession(context.Background(), scenarioID, opening)
	if err != nil {
		t.Fatalf("store.CreateSession: %v", err)
	}
	return session
}
