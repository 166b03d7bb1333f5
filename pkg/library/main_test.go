package library

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/CTAG07/babble/pkg/markov"
	_ "github.com/mattn/go-sqlite3"
)

// setupTestDB creates a new SQLite database and a Library for testing.
// It uses t.Cleanup to ensure resources are released.
func setupTestDB(t *testing.T, opts ...markov.Option) (*sql.DB, *Library) {
	dbFile := filepath.Join(t.TempDir(), "test.db")
	db, err := sql.Open("sqlite3", dbFile+"?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := SetupSchema(db); err != nil {
		t.Fatalf("failed to set up schema: %v", err)
	}

	l, err := New(db, opts...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(l.Close)

	return db, l
}

// setupTestDBWithCorpus is a convenience helper that also inserts a default corpus.
func setupTestDBWithCorpus(t *testing.T, opts ...markov.Option) (context.Context, *Library, CorpusInfo) {
	_, l := setupTestDB(t, opts...)
	ctx := context.Background()
	info, err := l.InsertCorpus(ctx, "cats", "the cat sat on the mat the cat ran")
	if err != nil {
		t.Fatalf("setup: InsertCorpus() failed: %v", err)
	}
	return ctx, l, info
}
