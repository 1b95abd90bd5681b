// Package match finds role skills and keywords in canonical resume text.
// Matching is two-pass: a case- and diacritic-insensitive exact pass with
// word boundaries for short tokens, then a fuzzy per-line pass under a
// normalized edit-distance threshold. Every hit carries an evidence
// snippet cut from the original text.
package match

import (
	"regexp"
	"strings"

	"github.com/agnivade/levenshtein"

	"cvranker/internal/textnorm"
	"cvranker/internal/types"
)

const (
	// fuzzyThreshold is the maximum normalized edit distance (0 = equal)
	// for a fuzzy hit.
	fuzzyThreshold = 0.25
	// minFuzzyTermLen disables the fuzzy pass for very short terms, where
	// edit distance is meaningless.
	minFuzzyTermLen = 4
	// minWindowLen is the smallest candidate substring worth comparing.
	minWindowLen = 3
	// shortTermLen is the exact-pass boundary cutoff: alphanumeric terms
	// this short get hard word boundaries so "go" never matches "google".
	shortTermLen = 5
)

// Index is a per-candidate view of the canonical text: a folded copy with
// rune-aligned offsets back into the original, plus folded lines for the
// fuzzy pass. Built once per analysis and discarded with it.
type Index struct {
	text       string
	folded     string
	runeStarts []int // rune index -> byte offset in original text
	lines      []indexLine
}

type indexLine struct {
	folded string
	offset int // byte offset of the line start in the original text
}

// NewIndex folds the canonical text and records offset mappings.
func NewIndex(text string) *Index {
	ix := &Index{
		text:   text,
		folded: textnorm.Fold(text),
	}
	ix.runeStarts = make([]int, 0, len(text)/2)
	for i := range text {
		ix.runeStarts = append(ix.runeStarts, i)
	}

	offset := 0
	for _, line := range strings.Split(text, "\n") {
		ix.lines = append(ix.lines, indexLine{folded: textnorm.Fold(line), offset: offset})
		offset += len(line) + 1
	}
	return ix
}

// origOffset converts a byte offset in the folded text to a byte offset in
// the original. Folding maps runes 1:1, so the rune count up to the folded
// offset indexes runeStarts directly.
func (ix *Index) origOffset(foldedByteOffset int) int {
	runeIdx := len([]rune(ix.folded[:foldedByteOffset]))
	if runeIdx >= len(ix.runeStarts) {
		return len(ix.text)
	}
	return ix.runeStarts[runeIdx]
}

// Snippet returns the evidence snippet around an original-text offset.
func (ix *Index) Snippet(offset int) string {
	return textnorm.Snippet(ix.text, offset)
}

var alnumRe = regexp.MustCompile(`^[a-z0-9]+$`)

// termPattern compiles the exact-pass pattern for a folded term. Short
// alphanumeric terms are wrapped in non-alphanumeric boundaries; the term
// itself is submatch 1 so the hit offset excludes the boundary byte.
func termPattern(folded string) *regexp.Regexp {
	quoted := regexp.QuoteMeta(folded)
	if alnumRe.MatchString(folded) && len(folded) <= shortTermLen {
		return regexp.MustCompile(`(?:^|[^a-z0-9])(` + quoted + `)(?:[^a-z0-9]|$)`)
	}
	return regexp.MustCompile(`(` + quoted + `)`)
}

// FindTerm locates the first exact occurrence of a term, returning the
// offset of the hit in the original text.
func (ix *Index) FindTerm(term string) (int, bool) {
	folded := textnorm.Fold(strings.TrimSpace(term))
	if folded == "" {
		return 0, false
	}
	loc := termPattern(folded).FindStringSubmatchIndex(ix.folded)
	if loc == nil {
		return 0, false
	}
	return ix.origOffset(loc[2]), true
}

// Mentions returns the original-text offsets of every exact occurrence.
func (ix *Index) Mentions(term string) []int {
	folded := textnorm.Fold(strings.TrimSpace(term))
	if folded == "" {
		return nil
	}
	var offsets []int
	for _, loc := range termPattern(folded).FindAllStringSubmatchIndex(ix.folded, -1) {
		offsets = append(offsets, ix.origOffset(loc[2]))
	}
	return offsets
}

// FuzzyLine scores every non-empty line against the term and returns the
// best line's offset when its normalized distance is within threshold.
func (ix *Index) FuzzyLine(term string) (int, float64, bool) {
	folded := textnorm.Fold(strings.TrimSpace(term))
	if len(folded) < minFuzzyTermLen {
		return 0, 0, false
	}

	bestOffset, bestScore, found := 0, 2.0, false
	termWords := len(strings.Fields(folded))
	for _, line := range ix.lines {
		if strings.TrimSpace(line.folded) == "" {
			continue
		}
		// ok already implies the score is within threshold
		score, ok := bestWindowScore(line.folded, folded, termWords)
		if ok && score < bestScore {
			bestOffset, bestScore, found = line.offset, score, true
		}
	}
	return bestOffset, bestScore, found
}

// bestWindowScore slides word windows of roughly the term's width across
// the line and keeps the lowest normalized distance. Position within the
// line is ignored.
func bestWindowScore(foldedLine, foldedTerm string, termWords int) (float64, bool) {
	words := strings.Fields(foldedLine)
	if len(words) == 0 {
		return 0, false
	}

	best, found := 1.0, false
	for size := max(1, termWords-1); size <= termWords+1; size++ {
		for start := 0; start+size <= len(words); start++ {
			window := strings.Join(words[start:start+size], " ")
			window = strings.Trim(window, ",;:.()[]")
			if len(window) < minWindowLen {
				continue
			}
			score := normalizedDistance(window, foldedTerm)
			if score < best {
				best, found = score, true
			}
		}
	}
	if !found || best > fuzzyThreshold {
		return best, false
	}
	return best, true
}

func normalizedDistance(a, b string) float64 {
	la, lb := len([]rune(a)), len([]rune(b))
	longest := la
	if lb > longest {
		longest = lb
	}
	if longest == 0 {
		return 0
	}
	return float64(levenshtein.ComputeDistance(a, b)) / float64(longest)
}

// MatchSkill resolves one skill against the index: exact pass over the
// skill and its aliases first, fuzzy pass second. Matched results always
// carry at least one evidence snippet.
func MatchSkill(ix *Index, skill types.RoleSkill, aliases []string) types.SkillMatch {
	weight := skill.Weight
	if weight < 0 {
		weight = 0
	}
	result := types.SkillMatch{Term: skill.Skill, Weight: weight, Evidence: []string{}}

	terms := append([]string{skill.Skill}, aliases...)
	for _, term := range terms {
		if offset, ok := ix.FindTerm(term); ok {
			result.Matched = true
			result.Evidence = []string{ix.Snippet(offset)}
			return result
		}
	}

	bestScore := fuzzyThreshold + 1
	for _, term := range terms {
		if offset, score, ok := ix.FuzzyLine(term); ok && score < bestScore {
			bestScore = score
			result.Matched = true
			result.Evidence = []string{ix.Snippet(offset)}
		}
	}
	return result
}

// MatchKeyword applies the same two-pass algorithm to an unweighted term.
func MatchKeyword(ix *Index, term string) types.KeywordHit {
	hit := types.KeywordHit{Term: term, Evidence: []string{}}
	if offset, ok := ix.FindTerm(term); ok {
		hit.Matched = true
		hit.Evidence = []string{ix.Snippet(offset)}
		return hit
	}
	if offset, _, ok := ix.FuzzyLine(term); ok {
		hit.Matched = true
		hit.Evidence = []string{ix.Snippet(offset)}
	}
	return hit
}

// FoldedText exposes the folded text for scanners (dates, degrees,
// scale patterns) that need regex passes with evidence offsets.
func (ix *Index) FoldedText() string { return ix.folded }

// ToOriginal converts a byte offset in the folded text to the original.
func (ix *Index) ToOriginal(foldedByteOffset int) int {
	return ix.origOffset(foldedByteOffset)
}

// Text returns the canonical text the index was built from.
func (ix *Index) Text() string { return ix.text }
