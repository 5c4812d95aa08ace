package fields

import (
	"strings"
	"unicode/utf8"
)

const (
	minMatchLabelLen = 2
	minMatchScore    = 0.3 // exclusive
)

// FindPosition returns the unused position whose text best matches label.
//
// Each position is scored by substring containment (label length over text
// length) and by word overlap (shared words over label words); the higher
// score counts. Blank text is contained in every label and scores the full
// label length. The first position reaching the best score wins, and the
// match is accepted only above minMatchScore. The assignment is greedy: a
// caller matching several labels in turn may starve a later label of the
// position that would have suited it best.
func FindPosition(label string, positions []TextPosition, used UsedPositions) (int, TextPosition, bool) {
	needle := normalizeLabel(label)
	needleLen := utf8.RuneCountInString(needle)
	if needleLen < minMatchLabelLen {
		return -1, TextPosition{}, false
	}
	needleWords := wordSet(needle)

	best, bestScore := -1, 0.0
	for i, pos := range positions {
		if used.Has(i) {
			continue
		}
		text := strings.ToLower(strings.TrimSpace(pos.Text))

		if strings.Contains(text, needle) || strings.Contains(needle, text) {
			score := float64(needleLen) / float64(max(utf8.RuneCountInString(text), 1))
			if score > bestScore {
				best, bestScore = i, score
			}
		}

		if common := countCommon(needleWords, wordSet(text)); common > 0 {
			score := float64(common) / float64(len(needleWords))
			if score > bestScore {
				best, bestScore = i, score
			}
		}
	}

	if best < 0 || bestScore <= minMatchScore {
		return -1, TextPosition{}, false
	}
	return best, positions[best], true
}

// normalizeLabel drops a trailing colon or required-marker, then trims and
// lowercases
func normalizeLabel(label string) string {
	return strings.ToLower(strings.TrimSpace(strings.TrimRight(label, ":*")))
}

func wordSet(s string) map[string]struct{} {
	words := strings.Fields(s)
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

func countCommon(a, b map[string]struct{}) int {
	n := 0
	for w := range a {
		if _, ok := b[w]; ok {
			n++
		}
	}
	return n
}
