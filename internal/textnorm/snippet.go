package textnorm

import "strings"

// maxSnippetLen bounds evidence snippets so they stay readable in reports.
const maxSnippetLen = 220

// Snippet returns the trimmed line of canonical text surrounding the given
// character index, middle-truncated to 220 chars. If the line is empty, a
// 220-char window centered on the index is used instead.
func Snippet(text string, index int) string {
	if len(text) == 0 {
		return ""
	}
	if index < 0 {
		index = 0
	}
	if index >= len(text) {
		index = len(text) - 1
	}

	lineStart := strings.LastIndexByte(text[:index], '\n') + 1
	lineEnd := len(text)
	if rel := strings.IndexByte(text[index:], '\n'); rel >= 0 {
		lineEnd = index + rel
	}

	line := strings.TrimSpace(text[lineStart:lineEnd])
	if line == "" {
		lo := index - maxSnippetLen/2
		if lo < 0 {
			lo = 0
		}
		hi := lo + maxSnippetLen
		if hi > len(text) {
			hi = len(text)
		}
		line = strings.TrimSpace(text[lo:hi])
	}

	return truncateMiddle(line, maxSnippetLen)
}

func truncateMiddle(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	head := (limit - 1) / 2
	tail := limit - 1 - head
	return string(runes[:head]) + "…" + string(runes[len(runes)-tail:])
}
