// Package noise classifies extracted match text as signal or noise.
// Retrieved chunks from crawled documents frequently carry UI chrome,
// contact footers, and menu fragments; the filter rejects those before
// answer assembly. Thresholds are heuristic, so the checks stay
// conservative: admitting some noise beats discarding short valid answers.
package noise

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Profile selects a named filtering policy.
type Profile string

const (
	// ProfileStrict requires 60+ chars of signal and rejects menu-like
	// strings made of short tokens.
	ProfileStrict Profile = "strict"
	// ProfileLoose requires 40+ chars and skips the short-token check.
	ProfileLoose Profile = "loose"
)

const (
	strictMinSignalLength = 60
	looseMinSignalLength  = 40
)

// DefaultDenylist holds boilerplate phrases observed in ingested pages:
// footers, navigation labels, legal notices, calls to action. Matching is
// case-insensitive substring containment.
var DefaultDenylist = []string{
	"Barcha huquqlar",
	"©",
	"SOFF CRM",
	"Demo olish",
	"Qo'ng'iroq",
	"Narxlarni ko'rish",
	"Bizning hamjamiyatimizga qo'shiling",
	"Kontakt",
	"Biz haqimizda",
	"Bosh sahifa",
}

var (
	// One or more digit groups totaling 9+ digits, optionally separated by
	// spaces/hyphens/parentheses, optional leading +.
	phoneRe = regexp.MustCompile(`\+?\d[\d\s\-()]{7,}\d`)
	// Whole string is at most 6 word-like groups of 1-3 chars each.
	shortTokensRe = regexp.MustCompile(`^(\W*\w{1,3}\W*){1,6}$`)
)

// Config holds filter settings.
type Config struct {
	Profile Profile
	// MinSignalLength overrides the profile's minimum length when > 0.
	MinSignalLength int
	// Denylist overrides DefaultDenylist when non-empty.
	Denylist []string
}

// Filter decides whether extracted text is usable. Pure function of its
// input and configuration; safe for concurrent use.
type Filter struct {
	minLen          int
	checkShortToken bool
	denylist        []string
}

// New creates a filter for the given configuration.
func New(cfg Config) (*Filter, error) {
	f := &Filter{}

	switch cfg.Profile {
	case ProfileStrict, "":
		f.minLen = strictMinSignalLength
		f.checkShortToken = true
	case ProfileLoose:
		f.minLen = looseMinSignalLength
	default:
		return nil, fmt.Errorf("unknown noise profile %q", cfg.Profile)
	}

	if cfg.MinSignalLength > 0 {
		f.minLen = cfg.MinSignalLength
	}

	phrases := cfg.Denylist
	if len(phrases) == 0 {
		phrases = DefaultDenylist
	}
	f.denylist = make([]string, len(phrases))
	for i, p := range phrases {
		f.denylist[i] = strings.ToLower(p)
	}

	return f, nil
}

// IsNoise reports whether text should be excluded from answer assembly.
// Checks apply in order and short-circuit on the first hit.
func (f *Filter) IsNoise(text string) bool {
	t := strings.TrimSpace(text)
	if t == "" {
		return true
	}

	// Length is counted in runes: the knowledge base is not ASCII.
	if utf8.RuneCountInString(t) < f.minLen {
		return true
	}

	if phoneRe.MatchString(t) {
		return true
	}

	low := strings.ToLower(t)
	for _, phrase := range f.denylist {
		if strings.Contains(low, phrase) {
			return true
		}
	}

	if f.checkShortToken && shortTokensRe.MatchString(strings.ReplaceAll(t, "\n", " ")) {
		return true
	}

	return false
}
