package pipeline

import (
	"regexp"
	"strings"
)

// Corporate suffixes and filler terms stripped from company names before any
// comparison. Dotted short forms (ltd., inc., corp., pvt., co.) are removed
// together with their trailing period.
var (
	reSuffixes   = regexp.MustCompile(`\b(?:ltd\.?|limited|inc\.?|incorporated|corp\.?|corporation|llc|plc|pvt\.?|private|co\.?|company|group|holding|holdings|industries|international|global|and|amp)\b`)
	rePunct      = regexp.MustCompile(`[^\w\s]`)
	reWhitespace = regexp.MustCompile(`\s+`)
)

// Normalize canonicalizes a raw company name: lowercase, corporate suffixes
// removed as whole words, punctuation replaced with spaces, whitespace
// collapsed. Returns "" for input that is empty or reduces to nothing.
// Normalize is pure and idempotent.
func Normalize(raw string) string {
	name := strings.ToLower(strings.TrimSpace(raw))
	if name == "" {
		return ""
	}

	name = reSuffixes.ReplaceAllString(name, "")
	name = rePunct.ReplaceAllString(name, " ")
	name = reWhitespace.ReplaceAllString(name, " ")

	return strings.TrimSpace(name)
}
