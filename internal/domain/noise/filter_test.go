package noise

import (
	"strings"
	"testing"
)

func mustFilter(t *testing.T, cfg Config) *Filter {
	t.Helper()
	f, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return f
}

func TestIsNoise_Empty(t *testing.T) {
	f := mustFilter(t, Config{})
	if !f.IsNoise("") {
		t.Error("empty string must be noise")
	}
	if !f.IsNoise("   \n\t  ") {
		t.Error("whitespace-only string must be noise")
	}
}

func TestIsNoise_TooShort(t *testing.T) {
	f := mustFilter(t, Config{Profile: ProfileStrict})
	if !f.IsNoise("short") {
		t.Error("5-char string must be noise under strict profile")
	}

	// 50 chars: noise under strict (min 60), signal under loose (min 40).
	// Long words sidestep the short-token check.
	text := "considerable explanation paragraph containing words"
	if !f.IsNoise(text) {
		t.Error("50-char string must be noise under strict profile")
	}

	loose := mustFilter(t, Config{Profile: ProfileLoose})
	if loose.IsNoise(text) {
		t.Error("50-char string must be signal under loose profile")
	}
}

func TestIsNoise_PhoneNumber(t *testing.T) {
	f := mustFilter(t, Config{MinSignalLength: 1})
	cases := []string{
		"+998 90 123 45 67",
		"call us at 555-123-4567 anytime for a consultation about plans",
		"(998) 71 200 00 00",
	}
	for _, c := range cases {
		if !f.IsNoise(c) {
			t.Errorf("expected phone text flagged as noise: %q", c)
		}
	}
}

func TestIsNoise_Denylist(t *testing.T) {
	f := mustFilter(t, Config{MinSignalLength: 1})
	text := "Lorem ipsum dolor sit amet something something barcha HUQUQLAR himoyalangan and more text here"
	if !f.IsNoise(text) {
		t.Error("denylisted phrase must be matched case-insensitively")
	}

	custom := mustFilter(t, Config{MinSignalLength: 1, Denylist: []string{"subscribe now"}})
	if !custom.IsNoise("Please Subscribe Now to our newsletter for weekly updates and offers") {
		t.Error("custom denylist phrase must be matched")
	}
	if custom.IsNoise("Barcha huquqlar himoyalangan plus enough padding text to pass length") {
		t.Error("default denylist must not apply when a custom one is set")
	}
}

func TestIsNoise_ShortTokens(t *testing.T) {
	strict := mustFilter(t, Config{Profile: ProfileStrict, MinSignalLength: 1})
	if !strict.IsNoise("KPI | CRM | FAQ") {
		t.Error("menu-like short-token string must be noise under strict profile")
	}

	loose := mustFilter(t, Config{Profile: ProfileLoose, MinSignalLength: 1})
	if loose.IsNoise("KPI | CRM | FAQ") {
		t.Error("loose profile must not apply the short-token check")
	}
}

func TestIsNoise_PlainParagraph(t *testing.T) {
	f := mustFilter(t, Config{Profile: ProfileStrict})
	paragraph := strings.TrimSpace(strings.Repeat("The quarterly report describes revenue growth across regions. ", 4))
	if len(paragraph) < 200 {
		t.Fatalf("test paragraph too short: %d", len(paragraph))
	}
	if f.IsNoise(paragraph) {
		t.Error("plain 200+ char paragraph must be signal")
	}
}

func TestIsNoise_RuneLength(t *testing.T) {
	// 45 runes of Cyrillic are >60 bytes; the threshold counts runes.
	text := strings.Repeat("ж", 45)
	f := mustFilter(t, Config{Profile: ProfileStrict})
	if !f.IsNoise(text) {
		t.Error("45-rune string must be noise under strict profile")
	}
}

func TestNew_UnknownProfile(t *testing.T) {
	if _, err := New(Config{Profile: "fuzzy"}); err == nil {
		t.Error("expected error for unknown profile")
	}
}
