// Package slug derives URL slugs for blog posts and keeps them unique.
package slug

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	invalidChars = regexp.MustCompile(`[^\w\s-]`)
	separators   = regexp.MustCompile(`[\s_-]+`)

	diacriticStripper = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

	// Turkish letters that do not decompose into base + combining mark.
	turkishFolding = strings.NewReplacer("ı", "i", "İ", "I")
)

// Normalize folds the title to ASCII, lowercases it, strips everything
// outside word characters and collapses whitespace/underscore runs into
// single hyphens. Normalizing an already-normalized slug is a no-op.
func Normalize(title string) string {
	s := turkishFolding.Replace(strings.TrimSpace(title))
	if folded, _, err := transform.String(diacriticStripper, s); err == nil {
		s = folded
	}
	s = strings.ToLower(s)
	s = invalidChars.ReplaceAllString(s, "")
	s = separators.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// EnsureUnique probes base, base-1, base-2, ... until taken reports a free
// slug. taken must already exclude the row being updated. The loop is not a
// concurrency-safe allocator; the unique index on the slug column backstops
// a racing duplicate.
func EnsureUnique(base string, taken func(slug string) (bool, error)) (string, error) {
	candidate := base
	for counter := 1; ; counter++ {
		inUse, err := taken(candidate)
		if err != nil {
			return "", fmt.Errorf("check slug %q: %w", candidate, err)
		}
		if !inUse {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, counter)
	}
}
