// Package title provides title canonicalization for cache keys and matching.
package title

import "strings"

// Normalize maps raw title text to its canonical comparison key: lowercase,
// letters/digits/spaces only, single-spaced, trimmed. Two titles refer to the
// same publication iff their normalized forms are equal.
func Normalize(text string) string {
	if text == "" {
		return ""
	}

	s := strings.ToLower(text)
	s = strings.ReplaceAll(s, " ", " ")

	var b strings.Builder
	b.Grow(len(s))
	space := false
	for _, r := range s {
		switch {
		case r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == '\v' || r == '\f':
			space = true
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			if space && b.Len() > 0 {
				b.WriteByte(' ')
			}
			space = false
			b.WriteRune(r)
		default:
			// Punctuation and other characters separate words.
			space = true
		}
	}

	return b.String()
}
