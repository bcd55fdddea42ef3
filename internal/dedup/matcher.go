package dedup

import (
	"regexp"
	"sort"
	"strings"
)

// SimilarityMatcher builds a lookup pattern for fuzzy title matching. The
// keyword implementation below can be swapped for a trigram or embedding
// matcher without touching the lifecycle manager.
type SimilarityMatcher interface {
	// TitlePattern returns a regex pattern matching titles similar to the
	// given one, or "" when no useful pattern can be built. Matching is
	// case-insensitive; callers apply the flag on their query side.
	TitlePattern(title string) string
}

// KeywordMatcher matches on the three longest words of a title, in their
// original order.
type KeywordMatcher struct{}

var wordRe = regexp.MustCompile(`[a-zA-Z0-9]+`)

func (KeywordMatcher) TitlePattern(title string) string {
	words := wordRe.FindAllString(title, -1)
	if len(words) == 0 {
		return ""
	}

	type indexed struct {
		word string
		pos  int
	}
	ranked := make([]indexed, len(words))
	for i, w := range words {
		ranked[i] = indexed{word: w, pos: i}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return len(ranked[i].word) > len(ranked[j].word)
	})

	n := 3
	if len(ranked) < n {
		n = len(ranked)
	}
	picked := ranked[:n]
	sort.Slice(picked, func(i, j int) bool { return picked[i].pos < picked[j].pos })

	parts := make([]string, len(picked))
	for i, p := range picked {
		parts[i] = regexp.QuoteMeta(strings.ToLower(p.word))
	}
	return strings.Join(parts, `.*`)
}
