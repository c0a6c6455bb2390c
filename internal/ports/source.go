package ports

import "zotsync/internal/domain"

// DocumentSource yields the highlight documents to synchronize.
// Implementations must return documents in deterministic order (the
// kindle adapter sorts by file path) so dedup logs and journal contents
// are reproducible across runs.
type DocumentSource interface {
	ListDocuments(rootPath string) ([]domain.Document, error)
}
