package application

import (
	"context"
	"fmt"

	"zotsync/internal/domain"
	"zotsync/internal/ports"
)

// fakeSource returns a fixed document list.
type fakeSource struct {
	docs []domain.Document
	err  error
}

func (s *fakeSource) ListDocuments(string) ([]domain.Document, error) {
	return s.docs, s.err
}

// fakeStore is an in-memory ports.RemoteStore with call counters.
type fakeStore struct {
	searchResults  []ports.RemoteRecord
	searchErr      error
	recentResults  [][]ports.RemoteRecord // one slice per ListRecent call
	parents        map[string]*ports.RemoteRecord
	collections    map[string]string // name -> key
	searchCalls    int
	recentCalls    int
	getCalls       int
	findCollCalls  int
	lastSinceValue int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		parents:     make(map[string]*ports.RemoteRecord),
		collections: make(map[string]string),
	}
}

func (s *fakeStore) SearchParents(_ context.Context, _ string) ([]ports.RemoteRecord, error) {
	s.searchCalls++
	return s.searchResults, s.searchErr
}

func (s *fakeStore) GetParent(_ context.Context, key string) (*ports.RemoteRecord, error) {
	s.getCalls++
	rec, ok := s.parents[key]
	if !ok {
		return nil, fmt.Errorf("item %s not found", key)
	}
	return rec, nil
}

func (s *fakeStore) ListRecent(_ context.Context, since int) ([]ports.RemoteRecord, error) {
	s.lastSinceValue = since
	call := s.recentCalls
	s.recentCalls++
	if call < len(s.recentResults) {
		return s.recentResults[call], nil
	}
	return nil, nil
}

func (s *fakeStore) FindCollection(_ context.Context, name string) (string, error) {
	s.findCollCalls++
	return s.collections[name], nil
}

func (s *fakeStore) calls() int {
	return s.searchCalls + s.recentCalls + s.getCalls + s.findCollCalls
}

// fakeMutator records every mutation and returns canned results.
type fakeMutator struct {
	createParentResult *ports.CreateResult
	createParentErr    error
	createChildErr     error
	failChildAtCall    int // 1-based call index that fails; 0 = never
	childCalls         int

	createdParents     []ports.ParentFields
	createdChildren    []string // note HTML bodies
	updatedParents     []string
	createdCollections []string
}

func (m *fakeMutator) CreateParent(_ context.Context, fields ports.ParentFields) (*ports.CreateResult, error) {
	m.createdParents = append(m.createdParents, fields)
	if m.createParentErr != nil {
		return nil, m.createParentErr
	}
	if m.createParentResult != nil {
		return m.createParentResult, nil
	}
	return &ports.CreateResult{StatusCode: 200}, nil
}

func (m *fakeMutator) CreateChild(_ context.Context, parentKey, noteHTML string) (*ports.CreateResult, error) {
	m.childCalls++
	if m.createChildErr != nil && (m.failChildAtCall == 0 || m.failChildAtCall == m.childCalls) {
		return nil, m.createChildErr
	}
	m.createdChildren = append(m.createdChildren, noteHTML)
	return &ports.CreateResult{StatusCode: 200}, nil
}

func (m *fakeMutator) UpdateParent(_ context.Context, key string, _ map[string]any, _ int) error {
	m.updatedParents = append(m.updatedParents, key)
	return nil
}

func (m *fakeMutator) CreateCollection(_ context.Context, name string) (*ports.CreateResult, error) {
	m.createdCollections = append(m.createdCollections, name)
	return &ports.CreateResult{StatusCode: 200}, nil
}

func (m *fakeMutator) mutations() int {
	return len(m.createdParents) + len(m.createdChildren) + len(m.updatedParents) + len(m.createdCollections)
}

// memJournalStore keeps the journal in memory.
type memJournalStore struct {
	journal   *domain.Journal
	saveCalls int
	saveErr   error
}

func newMemJournalStore() *memJournalStore {
	return &memJournalStore{journal: domain.NewJournal()}
}

func (s *memJournalStore) Load() *domain.Journal {
	return s.journal
}

func (s *memJournalStore) Save(j *domain.Journal) error {
	s.saveCalls++
	s.journal = j
	return s.saveErr
}
