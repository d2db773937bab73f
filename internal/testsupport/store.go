package testsupport

import (
	"context"
	"testing"

	"deskbuddy/internal/config"
	"deskbuddy/internal/store"
)

// MustOpenStore opens and initializes a store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config, opts ...store.Option) *store.Store {
	t.Helper()

	s, err := store.Open(context.Background(), cfg, opts...)
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() {
		s.Close()
	})
	if err := s.Initialize(context.Background()); err != nil {
		t.Fatalf("store.Initialize: %v", err)
	}
	return s
}

// InsertRecords adds n records stamped at the given time.
func InsertRecords(t testing.TB, s *store.Store, n int, at func(i int) store.Record) {
	t.Helper()

	for i := 0; i < n; i++ {
		if _, err := s.InsertRecord(context.Background(), at(i)); err != nil {
			t.Fatalf("store.InsertRecord: %v", err)
		}
	}
}
