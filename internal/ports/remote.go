package ports

import "context"

// RemoteRecord is one bibliographic item as seen by the remote store.
// Fields carries the raw item data needed for update round-trips
// (collection membership edits PUT the whole data object back).
type RemoteRecord struct {
	Key             string
	Title           string
	AuthorLastNames string // author last names joined with spaces
	Version         int
	Collections     []string
	Fields          map[string]any
}

// ParentFields describes a parent (book) item to create.
type ParentFields struct {
	Title         string
	Author        string
	CollectionKey string // optional; added to the item's collections when set
}

// CreateResult is the decoded shape of a creation response. The remote
// API is inconsistent about where the new key appears: it may come back
// in a "successful" map keyed by submission index, as the first element
// of a list response, only via a Location-style header, or not at all.
// Each field is populated when present and left zero otherwise; key
// extraction is the caller's concern.
type CreateResult struct {
	StatusCode int
	// Successful maps submission index ("0", "1", ...) to the created key.
	Successful map[string]string
	// Records holds list-shaped response bodies.
	Records []RemoteRecord
	// Location is the Location response header, when set.
	Location string
	// Version is the Last-Modified-Version response header, when set.
	// The resolver uses it to bound recency-listing recovery queries.
	Version int
}

// RemoteStore covers the read-only remote operations. Read failures are
// recoverable: callers treat them as "no match" and move on.
type RemoteStore interface {
	// SearchParents runs a fuzzy title-mode search for book items.
	SearchParents(ctx context.Context, query string) ([]RemoteRecord, error)
	// GetParent fetches one item by key, including its raw fields.
	GetParent(ctx context.Context, key string) (*RemoteRecord, error)
	// ListRecent lists recently modified items with version > sinceVersion,
	// newest first. sinceVersion < 0 means no lower bound.
	ListRecent(ctx context.Context, sinceVersion int) ([]RemoteRecord, error)
	// FindCollection returns the key of the named collection, or "" when
	// it does not exist.
	FindCollection(ctx context.Context, name string) (string, error)
}

// RemoteMutator covers every remote operation that writes. All mutating
// calls in the system route through this interface: the live client
// talks to the API, the dry-run gate logs the intent and returns a
// fixed stand-in. Nothing else may issue a write.
type RemoteMutator interface {
	CreateParent(ctx context.Context, fields ParentFields) (*CreateResult, error)
	CreateChild(ctx context.Context, parentKey, noteHTML string) (*CreateResult, error)
	// UpdateParent writes back an item's raw fields, guarded by the
	// version the fields were read at.
	UpdateParent(ctx context.Context, key string, fields map[string]any, versionGuard int) error
	CreateCollection(ctx context.Context, name string) (*CreateResult, error)
}
