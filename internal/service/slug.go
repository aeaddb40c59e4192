package service

import (
	"strings"
	"unicode"
)

// Slugify derives the URL-safe slug for a card title: lowercase the title,
// drop every rune that is not a lowercase ASCII letter, digit, or
// whitespace, trim, then join the remaining words with single hyphens.
// The exact rules are load-bearing: existing published URLs depend on them.
func Slugify(title string) string {
	lowered := strings.ToLower(title)

	var b strings.Builder
	b.Grow(len(lowered))
	for _, r := range lowered {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}

	return strings.Join(strings.Fields(b.String()), "-")
}
