package catalog

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"liftlog/workout-app/internal/domain"

	"github.com/agnivade/levenshtein"
)

// DefaultLimit caps both server and client search results.
const DefaultLimit = 20

// Minimum per-word similarity for a typo to still count as a match.
const wordSimilarityThreshold = 0.75

// Search ranks entries against query and returns up to limit matches in
// name order. An empty query returns the first limit entries by name.
func Search(entries []domain.Exercise, query string, limit int) []domain.Exercise {
	if limit <= 0 {
		limit = DefaultLimit
	}
	q := normalize(query)
	if q == "" {
		out := SortByName(entries)
		if len(out) > limit {
			out = out[:limit]
		}
		return out
	}

	type scored struct {
		ex    domain.Exercise
		score float64
	}
	var hits []scored
	for _, ex := range entries {
		if s := Score(ex, q); s > 0 {
			hits = append(hits, scored{ex: ex, score: s})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].score != hits[j].score {
			return hits[i].score > hits[j].score
		}
		return lessByName(hits[i].ex, hits[j].ex)
	})
	if len(hits) > limit {
		hits = hits[:limit]
	}

	out := make([]domain.Exercise, len(hits))
	for i, h := range hits {
		out[i] = h.ex
	}
	sort.SliceStable(out, func(i, j int) bool { return lessByName(out[i], out[j]) })
	return out
}

// Score rates how well ex matches an already normalized query, in [0, 1].
// Zero means no match.
func Score(ex domain.Exercise, normalizedQuery string) float64 {
	best := scoreCandidate(normalize(ex.Name), normalizedQuery)
	for _, alias := range ex.Aliases {
		// aliases rank just below the same match on the name
		if s := scoreCandidate(normalize(alias), normalizedQuery) * 0.95; s > best {
			best = s
		}
	}
	return best
}

func scoreCandidate(candidate, q string) float64 {
	switch {
	case candidate == "":
		return 0
	case candidate == q:
		return 1.0
	case strings.HasPrefix(candidate, q):
		return 0.9
	case strings.Contains(candidate, q):
		return 0.8
	}

	// Every query word must match some candidate word, allowing typos.
	words := strings.Fields(candidate)
	var total float64
	for _, qw := range strings.Fields(q) {
		var bestWord float64
		for _, w := range words {
			s := similarityScore(qw, w)
			if strings.HasPrefix(w, qw) {
				s = 1.0
			}
			if s > bestWord {
				bestWord = s
			}
		}
		if bestWord < wordSimilarityThreshold {
			return 0
		}
		total += bestWord
	}
	return 0.7 * total / float64(len(strings.Fields(q)))
}

// SortByName returns a copy of entries ordered case-insensitively by name.
func SortByName(entries []domain.Exercise) []domain.Exercise {
	out := append([]domain.Exercise(nil), entries...)
	sort.SliceStable(out, func(i, j int) bool { return lessByName(out[i], out[j]) })
	return out
}

func lessByName(a, b domain.Exercise) bool {
	return strings.ToLower(a.Name) < strings.ToLower(b.Name)
}

// normalize lowercases s, turns punctuation into spaces and collapses runs of spaces.
func normalize(s string) string {
	var result strings.Builder
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			result.WriteRune(r)
		} else {
			result.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(result.String()), " ")
}

// similarityScore is a 0-1 score based on the Levenshtein distance of the
// two words, measured in runes.
func similarityScore(a, b string) float64 {
	if a == b {
		return 1.0
	}
	maxLen := max(utf8.RuneCountInString(a), utf8.RuneCountInString(b))
	if maxLen == 0 {
		return 1.0
	}
	return 1.0 - float64(levenshtein.ComputeDistance(a, b))/float64(maxLen)
}
