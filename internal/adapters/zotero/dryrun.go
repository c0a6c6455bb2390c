package zotero

import (
	"context"
	"log"
	"os"

	"zotsync/internal/ports"
)

// DryRun implements ports.RemoteMutator without issuing any network
// call. Every intended mutation is logged and answered with a fixed
// success stand-in. It is the single chokepoint that guarantees a
// simulated run cannot write to the library.
type DryRun struct {
	logger *log.Logger
}

// Ensure DryRun implements RemoteMutator
var _ ports.RemoteMutator = (*DryRun)(nil)

// NewDryRun creates the dry-run mutator. If logger is nil, a default
// logger writing to stderr is used.
func NewDryRun(logger *log.Logger) *DryRun {
	if logger == nil {
		logger = log.New(os.Stderr, "[dry-run] ", log.LstdFlags)
	}
	return &DryRun{logger: logger}
}

// standIn is the fixed result every blocked mutation returns.
func standIn() *ports.CreateResult {
	return &ports.CreateResult{StatusCode: 200}
}

func (d *DryRun) CreateParent(_ context.Context, fields ports.ParentFields) (*ports.CreateResult, error) {
	d.logger.Printf("blocked POST /items (book: %s)", fields.Title)
	return standIn(), nil
}

func (d *DryRun) CreateChild(_ context.Context, parentKey, noteHTML string) (*ports.CreateResult, error) {
	d.logger.Printf("blocked POST /items (note for %s: %s)", parentKey, truncate(noteHTML, 80))
	return standIn(), nil
}

func (d *DryRun) UpdateParent(_ context.Context, key string, _ map[string]any, _ int) error {
	d.logger.Printf("blocked PUT /items/%s", key)
	return nil
}

func (d *DryRun) CreateCollection(_ context.Context, name string) (*ports.CreateResult, error) {
	d.logger.Printf("blocked POST /collections (%s)", name)
	return standIn(), nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
