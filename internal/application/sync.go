package application

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"zotsync/internal/domain"
	"zotsync/internal/ports"
)

// DocState is the terminal state of one document in a run.
type DocState int

const (
	// StateFilteredOut: the document has no title or fails the title filter.
	StateFilteredOut DocState = iota
	// StateSkippedResume: the title was completed in a previous live run.
	StateSkippedResume
	// StateParentFailed: the parent item could not be resolved in live
	// mode; the document was abandoned with no journal mutation.
	StateParentFailed
	// StateParentPlanned: dry-run only; the parent does not exist yet,
	// so its creation (and all notes) were reported but not performed.
	StateParentPlanned
	// StateCommitted: every highlight was attempted and, in live mode,
	// the journal was persisted.
	StateCommitted
)

func (s DocState) String() string {
	switch s {
	case StateFilteredOut:
		return "filtered-out"
	case StateSkippedResume:
		return "skipped-resume"
	case StateParentFailed:
		return "parent-failed"
	case StateParentPlanned:
		return "parent-planned"
	case StateCommitted:
		return "committed"
	default:
		return fmt.Sprintf("DocState(%d)", int(s))
	}
}

// Options configures one sync run.
type Options struct {
	Mode Mode
	// Resume skips titles already completed in a previous live run.
	// Only honored in live mode.
	Resume bool
	// OnlyTitles is a case-insensitive containment allow-list.
	// Empty matches everything.
	OnlyTitles []string
	// BatchLimit stops the run after N processed documents (0 = unbounded),
	// checked at document boundaries, never mid-document.
	BatchLimit int
	// CollectionName is the remote collection resolved parents are filed
	// under. Empty disables collection handling.
	CollectionName string
}

// Stats summarizes a run.
type Stats struct {
	Matched      int // documents passing the title filter
	Processed    int // documents whose highlights were processed
	NotesCreated int
	Duplicates   int
	Failed       int // documents abandoned as parent-failed
}

// Runner orchestrates a sync run: list documents, resolve parents,
// create missing child notes, commit the journal after each document.
// Processing is strictly sequential; the journal is the only mutable
// state and is persisted per document so a crash loses at most the
// document in flight (and nothing already marked sent).
type Runner struct {
	source   ports.DocumentSource
	store    ports.RemoteStore
	mutator  ports.RemoteMutator
	journals ports.JournalStore
	history  ports.RunHistory // may be nil
	logger   *log.Logger

	// resolverRetryDelay overrides the resolver's recovery backoff base
	// when non-zero. Tests use it to avoid multi-second sleeps.
	resolverRetryDelay time.Duration
}

// NewRunner creates a sync runner. history may be nil to disable run
// recording. If logger is nil, a default logger writing to stderr is used.
func NewRunner(source ports.DocumentSource, store ports.RemoteStore, mutator ports.RemoteMutator, journals ports.JournalStore, history ports.RunHistory, logger *log.Logger) *Runner {
	if logger == nil {
		logger = log.New(os.Stderr, "[sync] ", log.LstdFlags)
	}
	return &Runner{
		source:   source,
		store:    store,
		mutator:  mutator,
		journals: journals,
		history:  history,
		logger:   logger,
	}
}

// Run processes every document under rootPath. It returns the run stats
// and a non-nil error only for conditions that abort the whole run
// (listing failure); per-document failures are logged and skipped.
func (r *Runner) Run(ctx context.Context, rootPath string, opts Options) (*Stats, error) {
	docs, err := r.source.ListDocuments(rootPath)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	r.logger.Printf("found %d documents under %s", len(docs), rootPath)

	journal := r.journals.Load()
	resolver := NewResolver(r.store, r.mutator, journal, r.logger)
	if r.resolverRetryDelay > 0 {
		resolver.retryDelay = r.resolverRetryDelay
	}
	collectionKey := r.resolveCollection(ctx, opts)

	stats := &Stats{}
	startedAt := time.Now()
	var runID int64
	if r.history != nil {
		runID, err = r.history.BeginRun(opts.Mode.String(), startedAt)
		if err != nil {
			r.logger.Printf("history unavailable: %v (continuing without it)", err)
			r.history = nil
		}
	}

	for _, doc := range docs {
		res := r.processDocument(ctx, resolver, journal, doc, collectionKey, opts)

		switch res.State {
		case StateFilteredOut:
			continue
		case StateParentFailed:
			stats.Matched++
			stats.Failed++
		case StateSkippedResume, StateParentPlanned:
			stats.Matched++
		case StateCommitted:
			stats.Matched++
			stats.Processed++
			stats.NotesCreated += res.NotesCreated
			stats.Duplicates += res.Duplicates
		}

		r.recordDocument(runID, doc.Title, res)

		if opts.BatchLimit > 0 && stats.Processed >= opts.BatchLimit {
			r.logger.Printf("reached batch limit of %d, stopping early", opts.BatchLimit)
			break
		}
	}

	if r.history != nil {
		summary := ports.RunSummary{
			ID:           runID,
			Mode:         opts.Mode.String(),
			StartedAt:    startedAt,
			FinishedAt:   time.Now(),
			Matched:      stats.Matched,
			Processed:    stats.Processed,
			NotesCreated: stats.NotesCreated,
			Duplicates:   stats.Duplicates,
			Failed:       stats.Failed,
		}
		if err := r.history.FinishRun(summary); err != nil {
			r.logger.Printf("failed to record run: %v", err)
		}
	}

	r.logger.Printf("done: matched=%d processed=%d notes=%d duplicates=%d failed=%d",
		stats.Matched, stats.Processed, stats.NotesCreated, stats.Duplicates, stats.Failed)
	return stats, nil
}

// docResult is the outcome of one document.
type docResult struct {
	State        DocState
	NotesCreated int
	Duplicates   int
}

func (r *Runner) processDocument(ctx context.Context, resolver *Resolver, journal *domain.Journal, doc domain.Document, collectionKey string, opts Options) docResult {
	if doc.Title == "" || !titleMatchesFilter(doc.Title, opts.OnlyTitles) {
		return docResult{State: StateFilteredOut}
	}

	normTitle := domain.NormalizeTitle(doc.Title)

	if opts.Resume && opts.Mode.Live() && journal.IsDone(normTitle) {
		r.logger.Printf("skipping (already completed in previous run): %s", doc.Title)
		return docResult{State: StateSkippedResume}
	}

	r.logger.Printf("processing: %s (%s) — %d highlights", doc.Title, doc.Author, len(doc.Highlights))

	parentKey, err := resolver.Resolve(ctx, doc.Title, doc.Author, collectionKey, opts.Mode)
	if opts.Mode.Live() && (err != nil || parentKey == "") {
		if err != nil {
			r.logger.Printf("abandoning %q: %v", doc.Title, err)
		} else {
			r.logger.Printf("abandoning %q: no parent item", doc.Title)
		}
		return docResult{State: StateParentFailed}
	}
	if !opts.Mode.Live() && parentKey == "" {
		r.logger.Printf("skipping notes for %q — item does not exist yet", doc.Title)
		return docResult{State: StateParentPlanned}
	}

	if opts.Mode.Live() && collectionKey != "" {
		if err := r.ensureInCollection(ctx, parentKey, collectionKey); err != nil {
			r.logger.Printf("could not add %q to collection: %v", doc.Title, err)
		}
	}

	res := docResult{State: StateCommitted}
	for _, h := range doc.Highlights {
		fp := h.Fingerprint()
		if journal.HasSent(doc.Title, fp) {
			r.logger.Printf("  skipping duplicate: %s", truncate(h.Text, 60))
			res.Duplicates++
			continue
		}
		if _, err := r.mutator.CreateChild(ctx, parentKey, h.NoteHTML()); err != nil {
			// Not marked sent: the highlight stays eligible for the next run.
			r.logger.Printf("  failed to add note: %v", err)
			continue
		}
		if opts.Mode.Live() {
			journal.MarkSent(doc.Title, fp)
		}
		res.NotesCreated++
	}

	if opts.Mode.Live() {
		r.logger.Printf("  new notes created: %d", res.NotesCreated)
		journal.MarkDone(normTitle)
		if err := r.journals.Save(journal); err != nil {
			r.logger.Printf("could not persist journal: %v", err)
		}
	}

	return res
}

// resolveCollection finds or creates the configured collection. Any
// failure degrades to "no collection": the run proceeds, parents are
// just not filed. In dry-run mode a missing collection is reported and
// left uncreated.
func (r *Runner) resolveCollection(ctx context.Context, opts Options) string {
	if opts.CollectionName == "" {
		return ""
	}

	key, err := r.store.FindCollection(ctx, opts.CollectionName)
	if err != nil {
		r.logger.Printf("collection lookup failed: %v (continuing without collection)", err)
		return ""
	}
	if key != "" {
		return key
	}

	if !opts.Mode.Live() {
		r.logger.Printf("would create collection: %s", opts.CollectionName)
		return ""
	}

	if _, err := r.mutator.CreateCollection(ctx, opts.CollectionName); err != nil {
		r.logger.Printf("failed to create collection %q: %v", opts.CollectionName, err)
		return ""
	}
	// The creation response for collections is not trusted to carry the
	// key either; search again instead.
	key, err = r.store.FindCollection(ctx, opts.CollectionName)
	if err != nil || key == "" {
		r.logger.Printf("created collection %q but could not find its key", opts.CollectionName)
		return ""
	}
	return key
}

// ensureInCollection adds the item to the collection via a read-modify-
// write guarded by the version the item was read at.
func (r *Runner) ensureInCollection(ctx context.Context, itemKey, collectionKey string) error {
	rec, err := r.store.GetParent(ctx, itemKey)
	if err != nil {
		return fmt.Errorf("fetch item %s: %w", itemKey, err)
	}
	for _, c := range rec.Collections {
		if c == collectionKey {
			return nil
		}
	}
	fields := rec.Fields
	if fields == nil {
		fields = make(map[string]any)
	}
	fields["collections"] = append(rec.Collections, collectionKey)
	if err := r.mutator.UpdateParent(ctx, itemKey, fields, rec.Version); err != nil {
		return fmt.Errorf("update item %s: %w", itemKey, err)
	}
	return nil
}

func (r *Runner) recordDocument(runID int64, title string, res docResult) {
	if r.history == nil {
		return
	}
	err := r.history.RecordDocument(runID, ports.RunDocument{
		Title:        title,
		State:        res.State.String(),
		NotesCreated: res.NotesCreated,
		Duplicates:   res.Duplicates,
	})
	if err != nil {
		r.logger.Printf("failed to record document %q: %v", title, err)
	}
}

// titleMatchesFilter reports whether the title passes the allow-list:
// case-insensitive containment, empty list matches all.
func titleMatchesFilter(title string, onlyTitles []string) bool {
	if len(onlyTitles) == 0 {
		return true
	}
	t := strings.ToLower(title)
	for _, substr := range onlyTitles {
		if strings.Contains(t, strings.ToLower(substr)) {
			return true
		}
	}
	return false
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
