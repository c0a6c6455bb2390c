package domain

import "sort"

// Journal is the persisted record of what has already been pushed to
// Zotero. It maps normalized titles to their Zotero item keys, tracks
// which normalized titles have been fully processed, and keeps the set
// of sent highlight fingerprints per literal document title.
//
// All maps are non-nil after NewJournal; code elsewhere never checks
// for absent maps.
type Journal struct {
	// Items maps NormalizeTitle(title) -> Zotero item key.
	Items map[string]string
	// Done holds NormalizeTitle(title) for fully processed documents.
	Done map[string]bool
	// Sent maps the literal document title -> set of fingerprints whose
	// child notes were created in a live run.
	Sent map[string]map[string]bool
}

// NewJournal returns an empty journal with all maps initialized.
func NewJournal() *Journal {
	return &Journal{
		Items: make(map[string]string),
		Done:  make(map[string]bool),
		Sent:  make(map[string]map[string]bool),
	}
}

// ParentKey returns the cached Zotero item key for a normalized title.
func (j *Journal) ParentKey(normTitle string) (string, bool) {
	key, ok := j.Items[normTitle]
	return key, ok
}

// SetParentKey caches the Zotero item key for a normalized title.
func (j *Journal) SetParentKey(normTitle, key string) {
	j.Items[normTitle] = key
}

// IsDone reports whether a normalized title was fully processed in a
// previous live run.
func (j *Journal) IsDone(normTitle string) bool {
	return j.Done[normTitle]
}

// MarkDone records a normalized title as fully processed.
func (j *Journal) MarkDone(normTitle string) {
	j.Done[normTitle] = true
}

// HasSent reports whether the fingerprint was already sent for the
// given literal title.
func (j *Journal) HasSent(title, fingerprint string) bool {
	return j.Sent[title][fingerprint]
}

// MarkSent records a fingerprint as sent for the given literal title.
// Callers must only do this after a live child-note creation succeeded.
func (j *Journal) MarkSent(title, fingerprint string) {
	set, ok := j.Sent[title]
	if !ok {
		set = make(map[string]bool)
		j.Sent[title] = set
	}
	set[fingerprint] = true
}

// SentFingerprints returns the sorted fingerprints recorded for a
// literal title. Sorting keeps persisted journal contents deterministic.
func (j *Journal) SentFingerprints(title string) []string {
	set := j.Sent[title]
	if len(set) == 0 {
		return nil
	}
	fps := make([]string, 0, len(set))
	for fp := range set {
		fps = append(fps, fp)
	}
	sort.Strings(fps)
	return fps
}

// DoneTitles returns the sorted normalized titles marked done.
func (j *Journal) DoneTitles() []string {
	titles := make([]string, 0, len(j.Done))
	for t := range j.Done {
		titles = append(titles, t)
	}
	sort.Strings(titles)
	return titles
}

// Merge overlays another journal on top of this one. Entries from the
// overlay win on key conflicts; the store uses this to give the primary
// journal precedence over the fallback copy.
func (j *Journal) Merge(overlay *Journal) {
	if overlay == nil {
		return
	}
	for t, key := range overlay.Items {
		j.Items[t] = key
	}
	for t := range overlay.Done {
		j.Done[t] = true
	}
	for title, set := range overlay.Sent {
		merged := make(map[string]bool, len(set))
		for fp := range set {
			merged[fp] = true
		}
		j.Sent[title] = merged
	}
}
