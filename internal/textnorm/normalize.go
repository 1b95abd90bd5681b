// Package textnorm turns raw PDF-extracted text into the canonical form the
// rest of the pipeline operates on. Canonical text keeps line breaks (they
// carry section structure) and is stable: normalizing twice changes nothing.
package textnorm

import (
	"regexp"
	"strings"
)

var (
	// PDF extractors break words across lines with a trailing hyphen.
	hyphenBreakRe = regexp.MustCompile(`(\p{L})-[ \t]*\n(\p{L})`)
	spaceRunRe    = regexp.MustCompile(`[ \t]+`)
	blankRunRe    = regexp.MustCompile(`\n{4,}`)
)

// Normalize converts raw extracted text to canonical form. Idempotent.
func Normalize(raw string) string {
	text := strings.ReplaceAll(raw, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	text = strings.ReplaceAll(text, "\u00a0", " ")
	text = strings.ReplaceAll(text, "\u00ad", "")

	// PDF extraction frequently replaces en-dashes in date ranges with NULs.
	text = strings.ReplaceAll(text, "\x00", " - ")

	text = strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, text)

	// Repeated passes: consecutive hyphenated breaks share boundary letters.
	for {
		joined := hyphenBreakRe.ReplaceAllString(text, "$1$2")
		if joined == text {
			break
		}
		text = joined
	}

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(spaceRunRe.ReplaceAllString(line, " "), " ")
	}
	text = strings.Join(lines, "\n")

	text = blankRunRe.ReplaceAllString(text, "\n\n\n")

	return strings.TrimSpace(text)
}
