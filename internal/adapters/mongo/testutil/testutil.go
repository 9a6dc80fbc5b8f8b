// Package testutil provides shared helpers for MongoDB integration tests.
package testutil

import (
	"context"
	"os"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/v2/mongo"

	mongoadapter "github.com/listly-app/shopping-list-api/internal/adapters/mongo"
)

// OpenDatabase connects to the server named by TEST_MONGO_URL, drops the
// test database so each run starts clean, and ensures indexes. Tests are
// skipped when the variable is unset.
func OpenDatabase(t *testing.T) *mongo.Database {
	t.Helper()

	uri := os.Getenv("TEST_MONGO_URL")
	if uri == "" {
		t.Skip("TEST_MONGO_URL not set; skipping mongo integration test")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := mongoadapter.Connect(ctx, uri, "listly_test")
	if err != nil {
		t.Fatalf("connect mongo: %v", err)
	}
	t.Cleanup(func() {
		_ = db.Client().Disconnect(context.Background())
	})

	if err := db.Drop(ctx); err != nil {
		t.Fatalf("drop test database: %v", err)
	}
	if err := mongoadapter.EnsureIndexes(ctx, db); err != nil {
		t.Fatalf("ensure indexes: %v", err)
	}
	return db
}
