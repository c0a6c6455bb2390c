package ports

import "zotsync/internal/domain"

// JournalStore persists the sync journal. Load failures are first-run
// conditions, never fatal: implementations return an empty journal
// rather than an error when the file is missing or malformed.
type JournalStore interface {
	// Load reads the journal, merging the fallback copy under the
	// primary one (primary wins on key conflicts).
	Load() *domain.Journal
	// Save persists the journal. Implementations must not corrupt the
	// previous valid journal on a mid-write crash, and must fall back to
	// an alternate path (with a warning) rather than fail the run when
	// the primary location is not writable.
	Save(j *domain.Journal) error
}
