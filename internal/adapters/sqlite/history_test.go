package sqlite

import (
	"testing"
	"time"

	"zotsync/internal/ports"
)

func openTestHistory(t *testing.T) *History {
	t.Helper()
	t.Setenv("XDG_DATA_HOME", t.TempDir())
	h, err := Open("/vault/books")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { h.Close() })
	return h
}

func TestRunRoundTrip(t *testing.T) {
	h := openTestHistory(t)

	started := time.Date(2026, 8, 20, 9, 0, 0, 0, time.UTC)
	id, err := h.BeginRun("live", started)
	if err != nil {
		t.Fatalf("BeginRun failed: %v", err)
	}

	if err := h.RecordDocument(id, ports.RunDocument{
		Title: "Deep Work", State: "committed", NotesCreated: 3, Duplicates: 1,
	}); err != nil {
		t.Fatalf("RecordDocument failed: %v", err)
	}

	if err := h.FinishRun(ports.RunSummary{
		ID: id, Mode: "live", StartedAt: started,
		FinishedAt: started.Add(time.Minute),
		Matched:    1, Processed: 1, NotesCreated: 3, Duplicates: 1,
	}); err != nil {
		t.Fatalf("FinishRun failed: %v", err)
	}

	runs, err := h.RecentRuns(5)
	if err != nil {
		t.Fatalf("RecentRuns failed: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("got %d runs, want 1", len(runs))
	}
	r := runs[0]
	if r.ID != id || r.Mode != "live" || r.NotesCreated != 3 || r.Duplicates != 1 {
		t.Errorf("run = %+v", r)
	}
	if !r.StartedAt.Equal(started) {
		t.Errorf("StartedAt = %v, want %v", r.StartedAt, started)
	}

	docs, err := h.RunDocuments(id)
	if err != nil {
		t.Fatalf("RunDocuments failed: %v", err)
	}
	if len(docs) != 1 || docs[0].Title != "Deep Work" || docs[0].State != "committed" {
		t.Errorf("docs = %+v", docs)
	}
}

func TestRecentRunsNewestFirst(t *testing.T) {
	h := openTestHistory(t)

	for i := 0; i < 3; i++ {
		if _, err := h.BeginRun("dry-run", time.Now()); err != nil {
			t.Fatalf("BeginRun failed: %v", err)
		}
	}

	runs, err := h.RecentRuns(2)
	if err != nil {
		t.Fatalf("RecentRuns failed: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("got %d runs, want limit of 2", len(runs))
	}
	if runs[0].ID <= runs[1].ID {
		t.Errorf("runs not newest first: %d, %d", runs[0].ID, runs[1].ID)
	}
}

func TestReopenKeepsRuns(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", t.TempDir())

	h, err := Open("/vault/books")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	id, err := h.BeginRun("live", time.Now())
	if err != nil {
		t.Fatalf("BeginRun failed: %v", err)
	}
	if err := h.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	h2, err := Open("/vault/books")
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer h2.Close()

	runs, err := h2.RecentRuns(5)
	if err != nil {
		t.Fatalf("RecentRuns failed: %v", err)
	}
	if len(runs) != 1 || runs[0].ID != id {
		t.Errorf("runs after reopen = %+v", runs)
	}
}

func TestSeparateDatabasePerVault(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", t.TempDir())

	a, err := Open("/vault/a")
	if err != nil {
		t.Fatal(err)
	}
	defer a.Close()
	b, err := Open("/vault/b")
	if err != nil {
		t.Fatal(err)
	}
	defer b.Close()

	if a.Path() == b.Path() {
		t.Errorf("vaults share a database: %s", a.Path())
	}
}
