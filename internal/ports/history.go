package ports

import "time"

// RunSummary is one recorded sync run.
type RunSummary struct {
	ID           int64
	Mode         string // "live" or "dry-run"
	StartedAt    time.Time
	FinishedAt   time.Time
	Matched      int // documents passing the title filter
	Processed    int // documents reaching a terminal state past filtering
	NotesCreated int
	Duplicates   int
	Failed       int // documents abandoned with an unresolved parent
}

// RunDocument is one document's terminal state within a run.
type RunDocument struct {
	Title        string
	State        string
	NotesCreated int
	Duplicates   int
}

// RunHistory records sync runs for later inspection. Recording is
// best-effort: the driver logs failures and keeps going.
type RunHistory interface {
	BeginRun(mode string, startedAt time.Time) (int64, error)
	RecordDocument(runID int64, doc RunDocument) error
	FinishRun(summary RunSummary) error
	RecentRuns(limit int) ([]RunSummary, error)
	Close() error
}
