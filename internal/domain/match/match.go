// Package match holds the value objects flowing through a retrieval call:
// the raw index hit (Candidate) and the hit enriched with display text
// (Match). Both are request-scoped and immutable once built.
package match

import "strings"

// fallbackKeys is the fixed probe order used when the primary payload key
// holds no usable text.
var fallbackKeys = []string{"clean_text", "text", "body", "answer", "question"}

// Candidate is a raw result returned by the vector index for a similarity
// query. Score is 0 when the index omits it.
type Candidate struct {
	id      string
	score   float64
	payload map[string]any
}

// NewCandidate creates an index candidate.
func NewCandidate(id string, score float64, payload map[string]any) Candidate {
	return Candidate{id: id, score: score, payload: payload}
}

// ID returns the point identifier.
func (c *Candidate) ID() string { return c.id }

// Score returns the similarity score (higher = more similar).
func (c *Candidate) Score() float64 { return c.score }

// Payload returns the opaque payload stored with the point.
func (c *Candidate) Payload() map[string]any { return c.payload }

// Match is a Candidate enriched with its extracted text. Text is "" only
// when no configured payload key held a usable string.
type Match struct {
	id      string
	score   float64
	text    string
	payload map[string]any
}

// New creates a match.
func New(id string, score float64, text string, payload map[string]any) Match {
	return Match{id: id, score: score, text: text, payload: payload}
}

// FromCandidate builds a Match by extracting text from the candidate's
// payload, probing primaryKey first.
func FromCandidate(c Candidate, primaryKey string) Match {
	return Match{
		id:      c.id,
		score:   c.score,
		text:    ExtractText(c.payload, primaryKey),
		payload: c.payload,
	}
}

// ID returns the point identifier.
func (m *Match) ID() string { return m.id }

// Score returns the similarity score.
func (m *Match) Score() float64 { return m.score }

// Text returns the extracted display text.
func (m *Match) Text() string { return m.text }

// Payload returns the point payload.
func (m *Match) Payload() map[string]any { return m.payload }

// ExtractText probes primaryKey, then the fixed fallback key order, and
// returns the first payload value that is a non-empty string after
// trimming. Returns "" when nothing usable is found.
func ExtractText(payload map[string]any, primaryKey string) string {
	if payload == nil {
		return ""
	}

	if s, ok := stringValue(payload[primaryKey]); ok {
		return s
	}

	for _, k := range fallbackKeys {
		if s, ok := stringValue(payload[k]); ok {
			return s
		}
	}

	return ""
}

func stringValue(v any) (string, bool) {
	s, ok := v.(string)
	if !ok {
		return "", false
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	return s, true
}
