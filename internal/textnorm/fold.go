package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var diacriticStripper = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// StripDiacritics removes combining marks: "présent" -> "present".
func StripDiacritics(s string) string {
	out, _, err := transform.String(diacriticStripper, s)
	if err != nil {
		return s
	}
	return out
}

// Fold lowercases and strips diacritics while mapping every input rune to
// exactly one output rune, so rune offsets in the folded string line up with
// the original. Matchers scan the folded form and cut evidence from the
// original.
func Fold(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r < 0x80:
			b.WriteRune(unicode.ToLower(r))
		case r == '’': // curly apostrophe, common in French extractions
			b.WriteByte('\'')
		default:
			stripped := StripDiacritics(string(r))
			if fr := []rune(stripped); len(fr) > 0 && fr[0] < 0x80 {
				b.WriteRune(unicode.ToLower(fr[0]))
			} else {
				b.WriteRune(unicode.ToLower(r))
			}
		}
	}
	return b.String()
}

// NormalizeToken keeps only letters of a folded token, for month-name and
// heading comparisons ("Févr." -> "fevr").
func NormalizeToken(s string) string {
	var b strings.Builder
	for _, r := range Fold(s) {
		if unicode.IsLetter(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
