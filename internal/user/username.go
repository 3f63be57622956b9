package user

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// latinizer decomposes accented characters and strips the combining
// marks, so "Jürgen" becomes "Jurgen" before filtering.
var latinizer = transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// NormalizeEmail lowercases and trims an email address for matching.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NormalizeUsername latinizes a provider-supplied username candidate and
// reduces it to the host username alphabet [a-z0-9._-]. Leading and
// trailing separators are dropped. May return "" when nothing survives.
func NormalizeUsername(s string) string {
	out, _, err := transform.String(latinizer, s)
	if err != nil {
		out = s
	}

	out = strings.ToLower(out)

	var b strings.Builder
	for _, r := range out {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '.', r == '_', r == '-':
			b.WriteRune(r)
		}
	}

	return strings.Trim(b.String(), "._-")
}
