package store

import (
	"context"
	"os"
	"testing"
)

// This test requires a running PostgreSQL reachable through TEST_DATABASE_URL
// If it is not set or the database is not available, the test will be skipped
func TestPostgresStore(t *testing.T) {
	databaseURL := os.Getenv("TEST_DATABASE_URL")
	if databaseURL == "" {
		t.Skip("TEST_DATABASE_URL is not set, skipping test")
	}

	s, err := NewPostgresStore(context.Background(), databaseURL)
	if err != nil {
		t.Skipf("PostgreSQL is not available, skipping test: %v", err)
	}
	defer s.Close()

	runStoreContract(t, s)
}
