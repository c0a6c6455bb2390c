package domain

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
)

// Highlight is one extracted reading highlight. Note and Location are
// empty when absent. Identity is the Fingerprint, not object identity.
type Highlight struct {
	Text     string
	Note     string
	Location string
}

// Document is one parsed highlight export file. A document without a
// title is invalid and skipped by the sync driver.
type Document struct {
	Title      string
	Author     string
	Path       string
	Highlights []Highlight
}

// Fingerprint returns the stable content hash identifying this
// highlight for dedup purposes: MD5 over text, note and location joined
// with "|". Two highlights with identical text/note/location collapse
// to one; that is accepted behavior, not a bug. The digest is
// byte-compatible with journals written by earlier versions of this
// tool, so it must not change.
func (h Highlight) Fingerprint() string {
	sum := md5.Sum([]byte(h.Text + "|" + h.Note + "|" + h.Location))
	return hex.EncodeToString(sum[:])
}

// NoteHTML renders the highlight as the HTML body of a Zotero child
// note: the text as a blockquote, followed by the personal note and the
// Kindle location when present.
func (h Highlight) NoteHTML() string {
	html := fmt.Sprintf("<blockquote>%s</blockquote>", h.Text)
	if h.Note != "" {
		html += fmt.Sprintf("<p><em>Note: %s</em></p>", h.Note)
	}
	if h.Location != "" {
		html += fmt.Sprintf("<p><small>Location: %s</small></p>", h.Location)
	}
	return html
}
