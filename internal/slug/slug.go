// Package slug derives URL-safe unique identifiers for prompts.
package slug

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	// Matches spaces, underscores, and slashes (for replacement with dashes).
	wordSeparatorRe = regexp.MustCompile(`[\s_/]+`)
	// Matches non-alphanumeric characters (except dashes).
	nonAlphanumericRe = regexp.MustCompile(`[^a-z0-9-]`)
	// Matches multiple consecutive dashes.
	multipleDashRe = regexp.MustCompile(`-+`)
)

// stripMarks removes combining marks after NFD decomposition, so
// accented letters fold to their ASCII base ("café" → "cafe").
var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Slugify converts a prompt title to a canonical URL-safe slug.
//
// Normalization rules:
//  1. Transliterate accented letters to their ASCII base
//  2. Trim whitespace and lowercase
//  3. Replace spaces, underscores, and slashes with dashes
//  4. Remove non-alphanumeric characters (except dashes)
//  5. Collapse multiple dashes
//  6. Trim leading/trailing dashes
//
// Examples:
//
//	"Code Review"      → "code-review"
//	"Café Recipes"     → "cafe-recipes"
//	"SQL/Postgres tips" → "sql-postgres-tips"
//	"  multi   word "  → "multi-word"
func Slugify(title string) string {
	s, _, err := transform.String(stripMarks, title)
	if err != nil {
		// Transliteration is best effort; fall back to the raw title.
		s = title
	}

	s = strings.ToLower(strings.TrimSpace(s))
	s = wordSeparatorRe.ReplaceAllString(s, "-")
	s = nonAlphanumericRe.ReplaceAllString(s, "")
	s = multipleDashRe.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")

	return s
}

// ExistsFunc reports whether a slug is already taken.
type ExistsFunc func(ctx context.Context, slug string) (bool, error)

// Resolve produces the slug to persist for a new prompt.
//
// An explicit slug from the request is used verbatim as the starting
// candidate; otherwise the candidate is derived from the title. When the
// candidate is taken, numeric suffixes -1, -2, -3, … are tried in order
// and the first free one wins.
//
// Resolve only reads via exists; the store's unique constraint on the
// slug column remains the backstop for two concurrent creations racing
// past these checks.
func Resolve(ctx context.Context, explicit, title string, exists ExistsFunc) (string, error) {
	candidate := explicit
	if candidate == "" {
		candidate = Slugify(title)
	}
	if candidate == "" {
		candidate = "prompt"
	}

	taken, err := exists(ctx, candidate)
	if err != nil {
		return "", fmt.Errorf("check slug %q: %w", candidate, err)
	}
	if !taken {
		return candidate, nil
	}

	base := candidate
	for counter := 1; ; counter++ {
		candidate = fmt.Sprintf("%s-%d", base, counter)
		taken, err := exists(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("check slug %q: %w", candidate, err)
		}
		if !taken {
			return candidate, nil
		}
	}
}
