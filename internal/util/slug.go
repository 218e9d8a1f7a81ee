package util

import "strings"

// NormalizeSlug derives a URL-safe identifier from a display name:
// lowercased, non-alphanumerics stripped (keeping spaces and hyphens),
// whitespace runs collapsed to single hyphens.
func NormalizeSlug(name string) string {
	lowered := strings.ToLower(strings.TrimSpace(name))

	var b strings.Builder
	b.Grow(len(lowered))
	for _, r := range lowered {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-':
			b.WriteRune(r)
		case r == ' ', r == '\t', r == '\n':
			b.WriteRune(' ')
		}
	}

	return strings.Join(strings.Fields(b.String()), "-")
}
