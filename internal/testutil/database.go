// Package testutil provides shared helpers for tests that need a real
// prediction store.
package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/futurizm/futurizm/internal/model"
	"github.com/futurizm/futurizm/internal/service"
	"github.com/futurizm/futurizm/internal/storage"
)

// TestDB wraps an in-memory migrated store for one test.
type TestDB struct {
	Storage service.Storage
	t       *testing.T
}

// SetupTestDB creates a new in-memory test database.
// It automatically handles migrations and cleanup.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	store, err := storage.NewSQLiteStorage(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	ctx := context.Background()
	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() {
		_ = store.Close()
	})

	return &TestDB{Storage: store, t: t}
}

// SeedPrediction stores a prediction record with sensible item defaults,
// failing the test on error. It returns the stored record's ID.
func (db *TestDB) SeedPrediction(date string, key model.ModelKey, category string) string {
	db.t.Helper()

	p := &model.Prediction{
		Date:     date,
		Model:    key,
		Category: category,
		Items: []model.PredictionItem{
			{Title: "First test event", Chance: 72, ChanceColor: model.ChanceHigh, Content: "A short explanation used only in tests."},
			{Title: "Second test event", Chance: 40, ChanceColor: model.ChanceLow, Content: "Another short explanation used only in tests."},
			{Title: "Third test event", Chance: 55, ChanceColor: model.ChanceHigh, Content: "One more short explanation used only in tests."},
		},
		CreatedAt: time.Now().UTC(),
	}

	if err := db.Storage.UpsertPrediction(context.Background(), p); err != nil {
		db.t.Fatalf("failed to seed prediction %s/%s: %v", date, key, err)
	}
	return p.ID
}
