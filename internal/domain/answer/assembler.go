// Package answer turns a ranked, filtered list of matches into a single
// bounded answer string.
package answer

import (
	"sort"
	"strings"
	"unicode/utf8"
)

// Separator joins selected chunks in the assembled answer.
const Separator = "\n\n---\n\n"

// minTailChars is the smallest leftover budget worth filling with a
// truncated slice of the overflowing chunk.
const minTailChars = 120

// Classifier reports whether text should be excluded from the answer.
type Classifier interface {
	IsNoise(text string) bool
}

// Chunk is the slice of a match the assembler operates on.
type Chunk struct {
	Score float64
	Text  string
}

// Assembler selects, deduplicates, and concatenates signal text from
// ranked chunks under a character budget. Pure function of its inputs;
// safe for concurrent use.
type Assembler struct {
	noise Classifier
}

// NewAssembler creates an assembler using the given noise classifier.
func NewAssembler(noise Classifier) *Assembler {
	return &Assembler{noise: noise}
}

// Assemble builds the answer string. Guarantees: rune length of the output
// never exceeds maxChars; at most maxChunks full chunks are joined; no
// duplicated trimmed text; output is "" only when every chunk's text is
// empty. When every chunk is classified noise, the highest-scored chunk's
// raw trimmed text is returned truncated to maxChars, so the caller never
// silently gets nothing when some text existed.
func (a *Assembler) Assemble(chunks []Chunk, maxChars, maxChunks int) string {
	if len(chunks) == 0 || maxChars <= 0 || maxChunks <= 0 {
		return ""
	}

	ranked := make([]Chunk, len(chunks))
	copy(ranked, chunks)
	// Stable: ties keep index order, which is the index's own ranking.
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})

	sepLen := utf8.RuneCountInString(Separator)
	seen := make(map[string]struct{}, len(ranked))
	var selected []string
	total := 0

	for _, c := range ranked {
		if len(selected) >= maxChunks {
			break
		}

		t := strings.TrimSpace(c.Text)
		if t == "" {
			continue
		}
		if a.noise.IsNoise(t) {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}

		sepCost := 0
		if len(selected) > 0 {
			sepCost = sepLen
		}

		if total+sepCost+utf8.RuneCountInString(t) > maxChars {
			// First overflowing chunk: fill the tail of the budget if
			// enough of it is left, then stop either way.
			if remaining := maxChars - total - sepCost; remaining >= minTailChars {
				selected = append(selected, truncate(t, remaining))
			}
			break
		}

		selected = append(selected, t)
		seen[t] = struct{}{}
		total += sepCost + utf8.RuneCountInString(t)
	}

	if len(selected) == 0 {
		return a.fallback(ranked, maxChars)
	}

	return strings.Join(selected, Separator)
}

// fallback returns the highest-scored non-empty raw text truncated to the
// budget, noise or not.
func (a *Assembler) fallback(ranked []Chunk, maxChars int) string {
	for _, c := range ranked {
		t := strings.TrimSpace(c.Text)
		if t == "" {
			continue
		}
		return truncate(t, maxChars)
	}
	return ""
}

func truncate(s string, maxRunes int) string {
	if utf8.RuneCountInString(s) <= maxRunes {
		return s
	}
	r := []rune(s)
	return string(r[:maxRunes])
}
