// Package journal persists the sync journal as a JSON file inside the
// vault, with a local fallback copy for vaults on read-only mounts.
package journal

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"zotsync/internal/domain"
	"zotsync/internal/ports"
)

const (
	// FileName is the journal file kept next to the highlight notes.
	FileName = ".sent_highlights.json"
	// FallbackFileName is written in the working directory when the
	// primary location is not writable.
	FallbackFileName = ".sent_highlights_local.json"
)

// Store reads and writes the journal file. The on-disk layout reserves
// the underscore-prefixed keys "_items" and "_done_titles"; every other
// top-level key is a literal document title mapping to its sent
// fingerprints.
type Store struct {
	path         string
	fallbackPath string
	logger       *log.Logger
}

var _ ports.JournalStore = (*Store)(nil)

// NewStore creates a store whose primary journal lives under rootPath.
func NewStore(rootPath string, logger *log.Logger) *Store {
	if logger == nil {
		logger = log.New(os.Stderr, "[journal] ", log.LstdFlags)
	}
	return &Store{
		path:         filepath.Join(rootPath, FileName),
		fallbackPath: FallbackFileName,
		logger:       logger,
	}
}

// Load reads the fallback copy and overlays the primary journal on top
// of it. Missing or malformed files yield an empty journal.
func (s *Store) Load() *domain.Journal {
	j := domain.NewJournal()
	j.Merge(s.read(s.fallbackPath))
	j.Merge(s.read(s.path))
	return j
}

// Save writes the journal atomically to the primary path, falling back
// to the local copy when the primary location rejects the write.
func (s *Store) Save(j *domain.Journal) error {
	data, err := encode(j)
	if err != nil {
		return fmt.Errorf("failed to encode journal: %w", err)
	}
	if err := writeAtomic(s.path, data); err != nil {
		s.logger.Printf("cannot write %s (%v), using fallback %s", s.path, err, s.fallbackPath)
		if ferr := writeAtomic(s.fallbackPath, data); ferr != nil {
			return fmt.Errorf("failed to write journal fallback: %w", ferr)
		}
	}
	return nil
}

func (s *Store) read(path string) *domain.Journal {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	j, err := decode(data)
	if err != nil {
		s.logger.Printf("ignoring malformed journal %s: %v", path, err)
		return nil
	}
	return j
}

func decode(data []byte) (*domain.Journal, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	j := domain.NewJournal()
	for key, val := range raw {
		switch key {
		case "_items":
			if err := json.Unmarshal(val, &j.Items); err != nil {
				return nil, fmt.Errorf("_items: %w", err)
			}
		case "_done_titles":
			var titles []string
			if err := json.Unmarshal(val, &titles); err != nil {
				return nil, fmt.Errorf("_done_titles: %w", err)
			}
			for _, t := range titles {
				j.MarkDone(t)
			}
		default:
			var fps []string
			if err := json.Unmarshal(val, &fps); err != nil {
				return nil, fmt.Errorf("title %q: %w", key, err)
			}
			for _, fp := range fps {
				j.MarkSent(key, fp)
			}
		}
	}
	return j, nil
}

func encode(j *domain.Journal) ([]byte, error) {
	out := make(map[string]any, len(j.Sent)+2)
	out["_items"] = j.Items
	out["_done_titles"] = j.DoneTitles()
	for title := range j.Sent {
		out[title] = j.SentFingerprints(title)
	}
	return json.MarshalIndent(out, "", "  ")
}

func writeAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}
