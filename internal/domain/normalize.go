package domain

import "strings"

// titlePunctuation lists the runes stripped from titles before matching:
// ASCII punctuation plus the curly quotation marks Kindle exports use.
const titlePunctuation = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~“”‘’"

// NormalizeTitle canonicalizes a title for use as a join key between
// local documents and Zotero items: punctuation stripped, lower-cased,
// internal whitespace collapsed, trimmed. Empty input yields "".
// The function is idempotent, which matters because normalized titles
// are persisted in the journal across runs.
func NormalizeTitle(s string) string {
	if s == "" {
		return ""
	}
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		if strings.ContainsRune(titlePunctuation, r) {
			continue
		}
		b.WriteRune(r)
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// NormalizeAuthor canonicalizes an author name: lower-cased with
// whitespace collapsed. Punctuation is preserved (names like "O'Brien"
// must keep their apostrophes to match Zotero creator fields).
func NormalizeAuthor(s string) string {
	if s == "" {
		return ""
	}
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
