package application

import (
	"context"
	"io"
	"log"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zotsync/internal/domain"
	"zotsync/internal/ports"
)

func newTestResolver(store *fakeStore, mutator *fakeMutator, journal *domain.Journal) *Resolver {
	r := NewResolver(store, mutator, journal, log.New(io.Discard, "", 0))
	r.retryDelay = time.Millisecond
	return r
}

func TestResolver_CachedKeySkipsRemote(t *testing.T) {
	store := newFakeStore()
	mutator := &fakeMutator{}
	journal := domain.NewJournal()
	journal.SetParentKey("deep work", "CACHED")

	r := newTestResolver(store, mutator, journal)
	key, err := r.Resolve(context.Background(), "Deep Work", "Cal Newport", "", ModeLive)

	require.NoError(t, err)
	assert.Equal(t, "CACHED", key)
	assert.Zero(t, store.calls(), "cached key must not hit the remote store")
	assert.Zero(t, mutator.mutations())
}

func TestResolver_SearchMatch(t *testing.T) {
	store := newFakeStore()
	store.searchResults = []ports.RemoteRecord{
		{Key: "WRONG", Title: "Deep Learning", AuthorLastNames: "Goodfellow"},
		{Key: "RIGHT", Title: "Deep Work!", AuthorLastNames: "Newport Grant"},
	}
	mutator := &fakeMutator{}
	journal := domain.NewJournal()

	r := newTestResolver(store, mutator, journal)
	key, err := r.Resolve(context.Background(), "Deep Work", "Newport", "", ModeLive)

	require.NoError(t, err)
	assert.Equal(t, "RIGHT", key)
	assert.Zero(t, mutator.mutations(), "search hit must not create anything")

	cached, ok := journal.ParentKey("deep work")
	assert.True(t, ok)
	assert.Equal(t, "RIGHT", cached)
}

func TestResolver_SearchMatchRejectsWrongAuthor(t *testing.T) {
	store := newFakeStore()
	store.searchResults = []ports.RemoteRecord{
		{Key: "OTHER", Title: "Deep Work", AuthorLastNames: "Somebody"},
	}
	mutator := &fakeMutator{
		createParentResult: &ports.CreateResult{
			StatusCode: 200,
			Successful: map[string]string{"0": "NEWKEY"},
		},
	}
	journal := domain.NewJournal()

	r := newTestResolver(store, mutator, journal)
	key, err := r.Resolve(context.Background(), "Deep Work", "Newport", "", ModeLive)

	require.NoError(t, err)
	assert.Equal(t, "NEWKEY", key, "author mismatch must fall through to creation")
	require.Len(t, mutator.createdParents, 1)
	assert.Equal(t, "Deep Work", mutator.createdParents[0].Title)
}

func TestResolver_DryRunNeverCreates(t *testing.T) {
	store := newFakeStore()
	mutator := &fakeMutator{}
	journal := domain.NewJournal()

	r := newTestResolver(store, mutator, journal)
	key, err := r.Resolve(context.Background(), "Deep Work", "Cal Newport", "COLL", ModeDryRun)

	require.NoError(t, err)
	assert.Empty(t, key)
	assert.Zero(t, mutator.mutations())
	_, cached := journal.ParentKey("deep work")
	assert.False(t, cached, "dry-run must not mutate the journal")
}

func TestResolver_CreateWithLocationHeaderKey(t *testing.T) {
	store := newFakeStore()
	mutator := &fakeMutator{
		createParentResult: &ports.CreateResult{
			StatusCode: 200,
			Location:   "https://api.example.org/users/7/items/HDRKEY",
		},
	}
	journal := domain.NewJournal()

	r := newTestResolver(store, mutator, journal)
	key, err := r.Resolve(context.Background(), "Deep Work", "", "", ModeLive)

	require.NoError(t, err)
	assert.Equal(t, "HDRKEY", key)
	assert.Zero(t, store.recentCalls, "extractable key must not trigger recovery")
}

func TestResolver_KeyRecoveryFromRecencyListing(t *testing.T) {
	store := newFakeStore()
	store.recentResults = [][]ports.RemoteRecord{
		nil, // first listing: not visible yet
		{{Key: "LATE", Title: "Deep Work", AuthorLastNames: "Newport"}},
	}
	mutator := &fakeMutator{
		createParentResult: &ports.CreateResult{StatusCode: 200, Version: 510},
	}
	journal := domain.NewJournal()

	r := newTestResolver(store, mutator, journal)
	key, err := r.Resolve(context.Background(), "Deep Work", "Newport", "", ModeLive)

	require.NoError(t, err)
	assert.Equal(t, "LATE", key)
	assert.Equal(t, 2, store.recentCalls)
	assert.Equal(t, 507, store.lastSinceValue, "since bound is pre-create version minus the window")

	cached, ok := journal.ParentKey("deep work")
	assert.True(t, ok)
	assert.Equal(t, "LATE", cached)
}

func TestResolver_KeyRecoveryExhaustion(t *testing.T) {
	store := newFakeStore() // every listing comes back empty
	mutator := &fakeMutator{
		createParentResult: &ports.CreateResult{StatusCode: 200, Version: 510},
	}
	journal := domain.NewJournal()

	r := newTestResolver(store, mutator, journal)
	key, err := r.Resolve(context.Background(), "Deep Work", "Newport", "", ModeLive)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrKeyUnresolved)
	assert.Empty(t, key)
	assert.Equal(t, recoveryAttempts, store.recentCalls, "recovery is bounded")

	var perr *ParentError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "Deep Work", perr.Title)

	_, cached := journal.ParentKey("deep work")
	assert.False(t, cached, "unresolved creation must not cache a key")
}

func TestResolver_SearchErrorTreatedAsNoMatch(t *testing.T) {
	store := newFakeStore()
	store.searchErr = context.DeadlineExceeded
	mutator := &fakeMutator{
		createParentResult: &ports.CreateResult{
			StatusCode: 200,
			Successful: map[string]string{"0": "NEWKEY"},
		},
	}
	journal := domain.NewJournal()

	r := newTestResolver(store, mutator, journal)
	key, err := r.Resolve(context.Background(), "Deep Work", "", "", ModeLive)

	require.NoError(t, err)
	assert.Equal(t, "NEWKEY", key, "read errors degrade to no-match, then create")
}
