package application

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"zotsync/internal/domain"
	"zotsync/internal/ports"
)

const (
	// recoveryAttempts bounds the recency-listing queries issued when a
	// creation response carries no extractable key.
	recoveryAttempts = 3
	// recoveryVersionWindow is subtracted from the pre-creation library
	// version to form the "since" lower bound of the recovery listing.
	// The version/since semantics of the remote store are assumed, not
	// verified; see DESIGN.md.
	recoveryVersionWindow = 3
)

// errKeyNotListed drives the recovery retry loop: the created item has
// not shown up in the recency listing yet.
var errKeyNotListed = errors.New("created item not in recency listing yet")

// Resolver finds or creates the parent (book) item for a title/author
// pair. It consults the journal cache first, then the remote search
// index, and only creates when neither knows the title. Creation
// responses with no extractable key trigger a bounded recovery via
// recency listings; the resolver never re-creates, because a duplicate
// parent is worse than a stalled document.
type Resolver struct {
	store   ports.RemoteStore
	mutator ports.RemoteMutator
	journal *domain.Journal
	logger  *log.Logger

	// retryDelay is the base of the linear backoff between recovery
	// listings (1x, 2x, 3x). Tests shrink it.
	retryDelay time.Duration
}

// NewResolver creates a resolver. If logger is nil, a default logger
// writing to stderr is used.
func NewResolver(store ports.RemoteStore, mutator ports.RemoteMutator, journal *domain.Journal, logger *log.Logger) *Resolver {
	if logger == nil {
		logger = log.New(os.Stderr, "[resolve] ", log.LstdFlags)
	}
	return &Resolver{
		store:      store,
		mutator:    mutator,
		journal:    journal,
		logger:     logger,
		retryDelay: time.Second,
	}
}

// Resolve returns the remote key of the parent item for the document,
// creating it when needed in live mode. In dry-run mode a missing
// parent yields ("", nil): the intended creation is reported and no
// state is mutated.
func (r *Resolver) Resolve(ctx context.Context, title, author, collectionKey string, mode Mode) (string, error) {
	normTitle := domain.NormalizeTitle(title)

	if key, ok := r.journal.ParentKey(normTitle); ok {
		return key, nil
	}

	if key := r.searchByTitle(ctx, title, author); key != "" {
		r.journal.SetParentKey(normTitle, key)
		return key, nil
	}

	if !mode.Live() {
		r.logger.Printf("would create book item: %s", title)
		return "", nil
	}

	res, err := r.mutator.CreateParent(ctx, ports.ParentFields{
		Title:         title,
		Author:        author,
		CollectionKey: collectionKey,
	})
	if err != nil {
		return "", &ParentError{Title: title, Err: err}
	}

	if key, ok := extractCreatedKey(res); ok {
		r.journal.SetParentKey(normTitle, key)
		return key, nil
	}

	r.logger.Printf("creation response for %q carried no key; trying recency listing", title)

	since := -1
	if res.Version > 0 {
		since = res.Version - recoveryVersionWindow
		if since < 0 {
			since = 0
		}
	}

	key, err := r.recoverKey(ctx, title, author, since)
	if err != nil {
		return "", &ParentError{Title: title, Err: err}
	}
	r.journal.SetParentKey(normTitle, key)
	return key, nil
}

// searchByTitle queries the title-mode search and returns the key of
// the first candidate whose normalized title matches exactly (and whose
// author last names contain the wanted author, when one is given).
// Search failures are treated as "no match"; the caller decides what
// happens next.
func (r *Resolver) searchByTitle(ctx context.Context, title, author string) string {
	records, err := r.store.SearchParents(ctx, title)
	if err != nil {
		r.logger.Printf("search for %q failed: %v (treating as no match)", title, err)
		return ""
	}
	return matchRecord(records, title, author)
}

// recoverKey re-runs the title/author match against recency listings,
// waiting with linear backoff between the bounded attempts. The search
// index is eventually consistent, so the first listing is also delayed.
func (r *Resolver) recoverKey(ctx context.Context, title, author string, since int) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case <-time.After(r.retryDelay):
	}

	var key string
	operation := func() error {
		records, err := r.store.ListRecent(ctx, since)
		if err != nil {
			return err
		}
		if k := matchRecord(records, title, author); k != "" {
			key = k
			return nil
		}
		return errKeyNotListed
	}

	bo := backoff.WithContext(newLinearBackOff(2*r.retryDelay, r.retryDelay), ctx)
	err := backoff.Retry(operation, backoff.WithMaxRetries(bo, recoveryAttempts-1))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrKeyUnresolved, err)
	}
	return key, nil
}

// matchRecord applies the parent-match rules to a candidate list: exact
// normalized-title equality, and when an author is given, the
// normalized author must be a substring of the candidate's joined
// author last names. First match wins.
func matchRecord(records []ports.RemoteRecord, title, author string) string {
	wantTitle := domain.NormalizeTitle(title)
	wantAuthor := domain.NormalizeAuthor(author)

	for _, rec := range records {
		if domain.NormalizeTitle(rec.Title) != wantTitle {
			continue
		}
		if wantAuthor != "" && !strings.Contains(domain.NormalizeAuthor(rec.AuthorLastNames), wantAuthor) {
			continue
		}
		return rec.Key
	}
	return ""
}

// linearBackOff grows the wait by a fixed step on every retry
// (2x, 3x, ... of the base delay after the initial wait).
type linearBackOff struct {
	next time.Duration
	step time.Duration

	initial time.Duration
}

func newLinearBackOff(initial, step time.Duration) *linearBackOff {
	return &linearBackOff{next: initial, step: step, initial: initial}
}

func (b *linearBackOff) NextBackOff() time.Duration {
	d := b.next
	b.next += b.step
	return d
}

func (b *linearBackOff) Reset() {
	b.next = b.initial
}
