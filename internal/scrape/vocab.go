package scrape

import (
	"strings"

	ahocorasick "github.com/petar-dambovaliev/aho-corasick"
)

// TermHit is one recognized vocabulary term inside a lot description.
type TermHit struct {
	Term  string // canonical vocabulary form
	Text  string // text as it appeared
	Start int    // byte offsets into the scanned text
	End   int
}

// TermMatcher spots approved vocabulary terms (mints, denominations, rulers)
// in free-text lot titles and descriptions, to pre-fill import suggestions.
type TermMatcher struct {
	ac    ahocorasick.AhoCorasick
	terms []string
}

func NewTermMatcher(terms []string) *TermMatcher {
	patterns := make([]string, 0, len(terms))
	canonical := make([]string, 0, len(terms))
	for _, t := range terms {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		patterns = append(patterns, t)
		canonical = append(canonical, t)
	}

	builder := ahocorasick.NewAhoCorasickBuilder(ahocorasick.Opts{
		AsciiCaseInsensitive: true,
		MatchOnlyWholeWords:  true,
		MatchKind:            ahocorasick.LeftMostLongestMatch,
	})
	return &TermMatcher{ac: builder.Build(patterns), terms: canonical}
}

// Scan returns every vocabulary hit in text, left to right. The automaton
// folds ASCII case itself, so the offsets index text as given; lowering a
// copy first would shift them whenever Unicode case mapping changes byte
// length.
func (m *TermMatcher) Scan(text string) []TermHit {
	if m == nil || text == "" {
		return nil
	}
	matches := m.ac.FindAll(text)
	hits := make([]TermHit, 0, len(matches))
	for _, match := range matches {
		hits = append(hits, TermHit{
			Term:  m.terms[match.Pattern()],
			Text:  text[match.Start():match.End()],
			Start: match.Start(),
			End:   match.End(),
		})
	}
	return hits
}

// Terms returns the distinct canonical terms found in text, in first-seen
// order. This is what import pre-fill consumes.
func (m *TermMatcher) Terms(text string) []string {
	var out []string
	seen := map[string]struct{}{}
	for _, h := range m.Scan(text) {
		if _, dup := seen[h.Term]; dup {
			continue
		}
		seen[h.Term] = struct{}{}
		out = append(out, h.Term)
	}
	return out
}
