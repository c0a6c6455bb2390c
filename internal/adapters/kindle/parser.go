// Package kindle reads highlight documents exported into an Obsidian
// vault by the "Kindle Highlights" plugin: one markdown file per book,
// a top-level heading with the title, an "Author:" line, and highlight
// blocks separated by horizontal rules.
package kindle

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"zotsync/internal/domain"
	"zotsync/internal/ports"
)

var (
	titlePattern    = regexp.MustCompile(`(?m)^#\s*(.+)`)
	authorPattern   = regexp.MustCompile(`(?i)Author:\s*\[?([^\]\n]+)\]?`)
	locationPattern = regexp.MustCompile(`(?i)location[:\s]+([0-9,-]+)`)
	notePattern     = regexp.MustCompile(`(?is)(?:Note|My Note)[:\s]+(.+)$`)
	locationSuffix  = regexp.MustCompile(`(?i)\s*[—-]\s*location:.*$`)
)

// Source implements ports.DocumentSource over a vault directory tree.
type Source struct{}

// Ensure Source implements DocumentSource
var _ ports.DocumentSource = (*Source)(nil)

// NewSource creates a kindle document source.
func NewSource() *Source {
	return &Source{}
}

// ListDocuments walks the vault recursively and parses every markdown
// file, in sorted path order so runs are deterministic. Documents
// without a title are returned as-is; the sync driver filters them.
func (s *Source) ListDocuments(rootPath string) ([]domain.Document, error) {
	if strings.HasPrefix(rootPath, "~") {
		home, _ := os.UserHomeDir()
		rootPath = filepath.Join(home, rootPath[1:])
	}

	var paths []string
	err := filepath.WalkDir(rootPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if strings.HasPrefix(d.Name(), ".") && path != rootPath {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasSuffix(strings.ToLower(d.Name()), ".md") {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk vault: %w", err)
	}
	sort.Strings(paths)

	docs := make([]domain.Document, 0, len(paths))
	for _, path := range paths {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		doc := Parse(string(raw))
		doc.Path = path
		docs = append(docs, doc)
	}
	return docs, nil
}

// Parse extracts the title, author and highlights from one exported
// markdown file.
func Parse(text string) domain.Document {
	var doc domain.Document

	if m := titlePattern.FindStringSubmatch(text); m != nil {
		doc.Title = strings.TrimSpace(m[1])
	}
	if m := authorPattern.FindStringSubmatch(text); m != nil {
		doc.Author = strings.TrimSpace(m[1])
	}

	for _, block := range strings.Split(text, "\n---\n") {
		block = strings.TrimSpace(block)
		if block == "" || strings.HasPrefix(block, "#") {
			continue
		}
		// Blocks without a location are front matter or stray prose, not
		// highlights.
		if !strings.Contains(strings.ToLower(block), "location") {
			continue
		}

		h := domain.Highlight{}
		if m := locationPattern.FindStringSubmatch(block); m != nil {
			h.Location = m[1]
		}
		if m := notePattern.FindStringSubmatch(block); m != nil {
			h.Note = strings.TrimSpace(m[1])
		}

		firstLine := block
		if i := strings.Index(block, "\n"); i >= 0 {
			firstLine = block[:i]
		}
		h.Text = strings.TrimSpace(locationSuffix.ReplaceAllString(firstLine, ""))

		if h.Text != "" {
			doc.Highlights = append(doc.Highlights, h)
		}
	}

	return doc
}
