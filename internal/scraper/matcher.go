package scraper

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// TableMatcher decides whether a table is the standings table from the
// lowercased, space-joined text of its header cells.
type TableMatcher interface {
	Match(headerText string) bool
}

// MatcherFunc adapts a plain function to TableMatcher
type MatcherFunc func(headerText string) bool

// Match calls f
func (f MatcherFunc) Match(headerText string) bool {
	return f(headerText)
}

var (
	DefaultPointsMarkers = []string{"pts"}
	DefaultLabelMarkers  = []string{"equipe", "rang", "classement"}
)

// KeywordMatcher accepts a header that contains at least one points marker
// and at least one label marker. Both sides are compared lowercased and
// without accents, so "Équipe" matches the marker "equipe".
type KeywordMatcher struct {
	PointsMarkers []string
	LabelMarkers  []string
}

// NewKeywordMatcher creates a KeywordMatcher. Empty marker lists fall back to
// the defaults.
func NewKeywordMatcher(points, labels []string) KeywordMatcher {
	if len(points) == 0 {
		points = DefaultPointsMarkers
	}
	if len(labels) == 0 {
		labels = DefaultLabelMarkers
	}
	return KeywordMatcher{
		PointsMarkers: points,
		LabelMarkers:  labels,
	}
}

// Match implements TableMatcher
func (m KeywordMatcher) Match(headerText string) bool {
	folded := Fold(headerText)
	return containsAny(folded, m.PointsMarkers) && containsAny(folded, m.LabelMarkers)
}

func containsAny(text string, markers []string) bool {
	for _, marker := range markers {
		marker = Fold(strings.TrimSpace(marker))
		if marker != "" && strings.Contains(text, marker) {
			return true
		}
	}
	return false
}

// Fold lowercases s and strips combining accents
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	return strings.ToLower(folded)
}
