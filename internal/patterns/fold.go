package patterns

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Fold strips diacritics and upper-cases s, so ORGÁNICA and organica compare equal.
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.ToUpper(out)
}

// ContainsWord reports whether folded term occurs in folded text on word boundaries.
// Both arguments must already be folded.
func ContainsWord(text, term string) bool {
	re, err := regexp.Compile(`(^|[^\p{L}\p{N}])` + regexp.QuoteMeta(term) + `($|[^\p{L}\p{N}])`)
	if err != nil {
		return strings.Contains(text, term)
	}
	return re.MatchString(text)
}
