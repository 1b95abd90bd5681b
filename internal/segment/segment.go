// Package segment locates the experience section of a resume and splits it
// into individual roles with merged month intervals. Every downstream
// extractor shares the role list computed here.
package segment

import (
	"regexp"
	"strings"
	"unicode"

	"cvranker/internal/dates"
	"cvranker/internal/textnorm"
	"cvranker/internal/types"
)

// startHeadings are squashed (lowercase, letters-only) section titles that
// open the experience section, English and French.
var startHeadings = map[string]bool{
	"experience":                  true,
	"experiences":                 true,
	"professionalexperience":      true,
	"workexperience":              true,
	"workhistory":                 true,
	"careerhistory":               true,
	"employmenthistory":           true,
	"parcoursprofessionnel":       true,
	"experienceprofessionnelle":   true,
	"experiencesprofessionnelles": true,
	"experiencepro":               true,
	"emplois":                     true,
}

// endHeadings close the experience section.
var endHeadings = map[string]bool{
	"education":             true,
	"formation":             true,
	"formations":            true,
	"skills":                true,
	"technicalskills":       true,
	"competences":           true,
	"competencestechniques": true,
	"projects":              true,
	"projets":               true,
	"personalprojects":      true,
	"certifications":        true,
	"certificates":          true,
	"languages":             true,
	"langues":               true,
	"hobbies":               true,
	"interests":             true,
	"centresdinteret":       true,
	"references":            true,
	"about":                 true,
	"aboutme":               true,
	"summary":               true,
	"profile":               true,
	"profil":                true,
	"contact":               true,
	"awards":                true,
	"publications":          true,
}

var skillSeparatorRe = regexp.MustCompile(`[,|/•]`)

// Section is the located experience section, as byte offsets into the
// canonical text.
type Section struct {
	Start int
	End   int
	Found bool
}

// Body slices the section out of the canonical text.
func (s Section) Body(text string) string {
	if !s.Found {
		return ""
	}
	return text[s.Start:s.End]
}

// Contains reports whether a byte offset falls inside the section.
func (s Section) Contains(offset int) bool {
	return s.Found && offset >= s.Start && offset < s.End
}

// Segmenter splits canonical text into roles using a shared date parser.
type Segmenter struct {
	parser *dates.Parser
}

// New creates a segmenter bound to the given date parser.
func New(parser *dates.Parser) *Segmenter {
	return &Segmenter{parser: parser}
}

type textLine struct {
	text   string
	folded string
	offset int
}

func splitLines(text string) []textLine {
	raw := strings.Split(text, "\n")
	lines := make([]textLine, len(raw))
	offset := 0
	for i, line := range raw {
		lines[i] = textLine{text: line, folded: textnorm.Fold(line), offset: offset}
		offset += len(line) + 1
	}
	return lines
}

// looksLikeHeading applies the cheap typographic heading test: short line,
// few words, and either mostly uppercase or very few words.
func looksLikeHeading(line string) bool {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" || len(trimmed) > 100 {
		return false
	}
	words := len(strings.Fields(trimmed))
	if words > 10 {
		return false
	}
	if words <= 5 {
		return true
	}
	letters, uppers := 0, 0
	for _, r := range trimmed {
		if unicode.IsLetter(r) {
			letters++
			if unicode.IsUpper(r) {
				uppers++
			}
		}
	}
	return letters > 0 && float64(uppers)/float64(letters) >= 0.7
}

func headingToken(line string) string {
	return textnorm.NormalizeToken(line)
}

// ExperienceSection locates the experience section. When the first match
// yields a body under 100 chars, the next matching heading is tried and the
// larger body wins.
func (s *Segmenter) ExperienceSection(text string) Section {
	lines := splitLines(text)

	var candidates []int
	for i, line := range lines {
		if startHeadings[headingToken(line.text)] && looksLikeHeading(line.text) {
			candidates = append(candidates, i)
		}
	}
	if len(candidates) == 0 {
		return Section{}
	}

	best := s.sectionFrom(text, lines, candidates[0])
	if best.End-best.Start < 100 && len(candidates) > 1 {
		alt := s.sectionFrom(text, lines, candidates[1])
		if alt.End-alt.Start > best.End-best.Start {
			best = alt
		}
	}
	return best
}

func (s *Segmenter) sectionFrom(text string, lines []textLine, headingIdx int) Section {
	start := lines[headingIdx].offset + len(lines[headingIdx].text) + 1
	if start > len(text) {
		start = len(text)
	}
	end := len(text)
	for i := headingIdx + 1; i < len(lines); i++ {
		if endHeadings[headingToken(lines[i].text)] && looksLikeHeading(lines[i].text) {
			end = lines[i].offset
			break
		}
	}
	if end < start {
		end = start
	}
	return Section{Start: start, End: end, Found: true}
}

// isSkillList flags lines that enumerate technologies rather than describe
// a role, so they are never mistaken for titles.
func isSkillList(line string) bool {
	trimmed := strings.TrimSpace(line)
	if len(trimmed) > 140 {
		return true
	}
	words := strings.Fields(trimmed)
	if len(skillSeparatorRe.FindAllString(trimmed, -1)) >= 3 && len(words) >= 4 {
		return true
	}
	short := 0
	for _, w := range words {
		if len([]rune(strings.Trim(w, ",;|/•"))) <= 4 {
			short++
		}
	}
	return short >= 5
}

// Roles segments the experience section (or, with no section heading, the
// whole text) into roles. A line carrying at least one date interval opens
// a role; its block runs until the next opener.
func (s *Segmenter) Roles(text string, section Section) []types.ParsedRole {
	scope := text
	if section.Found {
		scope = section.Body(text)
	}

	lines := splitLines(scope)

	type opener struct {
		line      int
		intervals []types.MonthInterval
	}
	var openers []opener
	for i, line := range lines {
		ctx := dates.HasInternshipMarker(line.folded) ||
			(i > 0 && dates.HasInternshipMarker(lines[i-1].folded)) ||
			(i+1 < len(lines) && dates.HasInternshipMarker(lines[i+1].folded))
		ivs := s.parser.LineIntervals(line.text, ctx)
		if len(ivs) > 0 {
			openers = append(openers, opener{line: i, intervals: ivs})
		}
	}
	if len(openers) == 0 {
		return nil
	}

	roles := make([]types.ParsedRole, 0, len(openers))
	for k, op := range openers {
		blockEnd := len(lines)
		if k+1 < len(openers) {
			blockEnd = openers[k+1].line
		}

		var blockLines []string
		var intervals []types.MonthInterval
		for i := op.line; i < blockEnd; i++ {
			blockLines = append(blockLines, lines[i].text)
			if i == op.line {
				intervals = append(intervals, op.intervals...)
				continue
			}
			ctx := dates.HasInternshipMarker(lines[i].folded) ||
				dates.HasInternshipMarker(lines[i-1].folded) ||
				(i+1 < len(lines) && dates.HasInternshipMarker(lines[i+1].folded))
			intervals = append(intervals, s.parser.LineIntervals(lines[i].text, ctx)...)
		}

		merged := dates.Merge(intervals)
		if len(merged) == 0 {
			continue
		}

		block := strings.Join(blockLines, "\n")
		title := roleTitle(lines, op.line)
		professional := !dates.HasInternshipMarker(textnorm.Fold(title + "\n" + block))

		roles = append(roles, types.ParsedRole{
			Title:           title,
			StartMonthIndex: merged[0].Start,
			EndMonthIndex:   merged[len(merged)-1].End,
			DurationMonths:  dates.TotalMonths(merged),
			TextBlock:       block,
			Intervals:       merged,
			Professional:    professional,
		})
	}
	return roles
}

// roleTitle lifts the title off the opener line once dates are stripped,
// falling back to up to two preceding non-heading, non-skill-list lines.
func roleTitle(lines []textLine, openerIdx int) string {
	if title := dates.StripDates(lines[openerIdx].text); letterCount(title) >= 3 {
		return title
	}
	for back := 1; back <= 2; back++ {
		i := openerIdx - back
		if i < 0 {
			break
		}
		candidate := strings.TrimSpace(lines[i].text)
		if candidate == "" || isSkillList(candidate) {
			continue
		}
		token := headingToken(candidate)
		if startHeadings[token] || endHeadings[token] {
			continue
		}
		return candidate
	}
	return ""
}

func letterCount(s string) int {
	n := 0
	for _, r := range s {
		if unicode.IsLetter(r) {
			n++
		}
	}
	return n
}

// ProfessionalMonths returns the merged interval union of professional
// roles and its total width in months.
func ProfessionalMonths(roles []types.ParsedRole) ([]types.MonthInterval, int) {
	var intervals []types.MonthInterval
	for _, role := range roles {
		if role.Professional {
			intervals = append(intervals, role.Intervals...)
		}
	}
	merged := dates.Merge(intervals)
	return merged, dates.TotalMonths(merged)
}

// YearsExperience computes total professional years. With no segmented
// role it falls back to section intervals, then full-text intervals, then
// an explicit "X years experience" anchor (rejected for internship-only
// resumes). Returns nil only when every source is empty.
func (s *Segmenter) YearsExperience(text string, section Section, roles []types.ParsedRole) *float64 {
	if len(roles) > 0 {
		_, months := ProfessionalMonths(roles)
		years := dates.MonthsToYears(months)
		return &years
	}

	if section.Found {
		if merged := dates.Merge(s.parser.Extract(section.Body(text))); len(merged) > 0 {
			years := dates.MonthsToYears(dates.TotalMonths(merged))
			return &years
		}
	}

	fullMerged := dates.Merge(s.parser.Extract(text))
	if len(fullMerged) > 0 {
		years := dates.MonthsToYears(dates.TotalMonths(fullMerged))
		return &years
	}

	folded := textnorm.Fold(text)
	if anchored, ok := dates.YearsAnchor(folded); ok && !looksInternshipOnly(folded, fullMerged) {
		years := dates.MonthsToYears(int(anchored * 12))
		return &years
	}
	return nil
}

// looksInternshipOnly guards the years anchor: a resume that mentions only
// internships should not claim professional years from prose.
func looksInternshipOnly(folded string, merged []types.MonthInterval) bool {
	if !dates.HasInternshipMarker(folded) {
		return false
	}
	for _, iv := range merged {
		if iv.Months() > 6 {
			return false
		}
	}
	return true
}
