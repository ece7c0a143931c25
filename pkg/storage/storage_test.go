package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "ledger.sqlite"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestRecordAndListRuns(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	first := Run{
		StartedAt:   time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC),
		WindowStart: "2024-06-14T10:00:00Z",
		WindowEnd:   "2024-06-15T10:00:00Z",
		Pages:       3,
		Events:      120,
		Outcome:     "ok",
	}
	second := Run{
		StartedAt:   time.Date(2024, 6, 16, 10, 0, 0, 0, time.UTC),
		WindowStart: "2024-06-15T10:00:00Z",
		WindowEnd:   "2024-06-16T10:00:00Z",
		Pages:       1,
		Events:      0,
		Outcome:     "failed",
		Error:       "authentication rejected (status 401)",
	}
	if err := db.RecordRun(ctx, first); err != nil {
		t.Fatal(err)
	}
	if err := db.RecordRun(ctx, second); err != nil {
		t.Fatal(err)
	}

	runs, err := db.ListRuns(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 2 {
		t.Fatalf("got %d runs, want 2", len(runs))
	}
	// Newest first.
	if runs[0].Outcome != "failed" || runs[0].Error == "" {
		t.Fatalf("newest run mismatch: %+v", runs[0])
	}
	if runs[1].Pages != 3 || runs[1].Events != 120 || runs[1].Error != "" {
		t.Fatalf("oldest run mismatch: %+v", runs[1])
	}
	if !runs[1].StartedAt.Equal(first.StartedAt) {
		t.Fatalf("started_at roundtrip: got %s, want %s", runs[1].StartedAt, first.StartedAt)
	}
}

func TestListRunsLimit(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		err := db.RecordRun(ctx, Run{
			StartedAt:   time.Now().UTC(),
			WindowStart: "2024-06-14T10:00:00Z",
			WindowEnd:   "2024-06-15T10:00:00Z",
			Outcome:     "ok",
		})
		if err != nil {
			t.Fatal(err)
		}
	}

	runs, err := db.ListRuns(ctx, 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 3 {
		t.Fatalf("got %d runs, want 3", len(runs))
	}
}
