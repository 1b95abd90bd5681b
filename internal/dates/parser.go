// Package dates extracts employment month intervals from canonical resume
// text. Seven locale-aware extractors run over a folded (lowercase,
// diacritic-stripped) copy of each line and their results are unioned, so
// extractor order is immaterial.
package dates

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"cvranker/internal/textnorm"
	"cvranker/internal/types"
)

const (
	year4 = `(?:19|20)\d{2}`
	sep   = `\s*(?:[-–—]+|to|au|until|till|jusqu'(?:a|au)|a)\s*`
)

var (
	yearRangeRe     *regexp.Regexp
	monthRangeRe    *regexp.Regexp
	dayMonthYearRe  *regexp.Regexp
	monthSlashRe    *regexp.Regexp
	dottedRangeRe   *regexp.Regexp
	singleMonthRe   *regexp.Regexp
	openEndedRe     *regexp.Regexp
	bareYearRe      = regexp.MustCompile(`\b(?:19|20)\d{2}\b`)
	internMarkerRe  = regexp.MustCompile(`\b(?:stage|stagiaire|internship|intern|trainee|alternance|apprentissage|apprenti|pfe|sfe)\b|fin d.?etudes`)
	yearsAnchorRe   = regexp.MustCompile(`\b(\d{1,2})(?:[.,]\d)?\s*\+?\s*(?:years?|ans?)\b[\s:]*(?:of\s+)?(?:d'?)?experience`)
	anchorAltRe     = regexp.MustCompile(`\bexperience\s*[:of]*\s*(\d{1,2})\s*\+?\s*(?:years?|ans?)\b`)
)

func init() {
	months := monthAlt()
	yearRangeRe = regexp.MustCompile(fmt.Sprintf(
		`\b(%s)%s(%s|\d{2}|%s)\b`, year4, sep, year4, presentAlt))
	monthRangeRe = regexp.MustCompile(fmt.Sprintf(
		`\b(%s)\.?,?\s*(%s)%s(?:(%s)|(?:(%s)\.?,?\s*)?(%s))\b`,
		months, year4, sep, presentAlt, months, year4))
	dayMonthYearRe = regexp.MustCompile(fmt.Sprintf(
		`\b(\d{1,2})\s+(%s)\.?\s+(%s)%s(\d{1,2})\s+(%s)\.?\s+(%s)\b`,
		months, year4, sep, months, year4))
	monthSlashRe = regexp.MustCompile(fmt.Sprintf(
		`\b(\d{1,2})\s*/\s*(%s)%s(?:(\d{1,2})\s*/\s*(%s)|(%s))\b`,
		year4, sep, year4, presentAlt))
	dottedRangeRe = regexp.MustCompile(fmt.Sprintf(
		`\b(\d{1,2})\.(\d{1,2})\.(%s)%s(\d{1,2})\.(\d{1,2})\.(%s)\b`,
		year4, sep, year4))
	singleMonthRe = regexp.MustCompile(fmt.Sprintf(
		`\b(%s)\.?,?\s*(%s)\b`, months, year4))
	openEndedRe = regexp.MustCompile(fmt.Sprintf(
		`\b(?:since|depuis)\s+(?:(%s)\.?,?\s*)?(%s)\b`, months, year4))
}

// Parser extracts intervals against an injected clock; it never reads
// system time, so analyses are reproducible.
type Parser struct {
	now    types.YearMonth
	nowIdx int
}

// NewParser creates a parser resolving present tokens against now.
func NewParser(now types.YearMonth) *Parser {
	return &Parser{now: now, nowIdx: now.Index()}
}

// Now returns the injected clock.
func (p *Parser) Now() types.YearMonth { return p.now }

// NowIndex returns the month index of the injected clock.
func (p *Parser) NowIndex() int { return p.nowIdx }

// HasInternshipMarker reports whether folded text mentions an internship,
// apprenticeship or end-of-studies project.
func HasInternshipMarker(folded string) bool {
	return internMarkerRe.MatchString(folded)
}

// Extract returns every validated interval found in canonical text.
// Lone month-year mentions only count when an internship marker appears
// within one line of them.
func (p *Parser) Extract(text string) []types.MonthInterval {
	lines := strings.Split(text, "\n")
	folded := make([]string, len(lines))
	for i, line := range lines {
		folded[i] = textnorm.Fold(line)
	}

	var out []types.MonthInterval
	for i := range folded {
		ctx := HasInternshipMarker(folded[i]) ||
			(i > 0 && HasInternshipMarker(folded[i-1])) ||
			(i+1 < len(folded) && HasInternshipMarker(folded[i+1]))
		out = append(out, p.foldedLineIntervals(folded[i], ctx)...)
	}
	return out
}

// LineIntervals extracts intervals from one canonical line. The context
// flag enables the anchored single month-year extractor, which callers set
// when an internship marker appears on a neighboring line.
func (p *Parser) LineIntervals(line string, internshipContext bool) []types.MonthInterval {
	return p.foldedLineIntervals(textnorm.Fold(line), internshipContext)
}

func (p *Parser) foldedLineIntervals(folded string, internshipContext bool) []types.MonthInterval {
	var out []types.MonthInterval
	add := func(start, end int) {
		if end > start {
			out = append(out, types.MonthInterval{Start: start, End: end})
		}
	}

	// Month-precise ranges claim their spans first so the coarser
	// year-range extractor cannot re-read "Jun 2019 - 2021" as 2019-2021.
	var claimed [][]int
	for _, re := range []*regexp.Regexp{monthRangeRe, dayMonthYearRe, monthSlashRe, dottedRangeRe} {
		claimed = append(claimed, re.FindAllStringIndex(folded, -1)...)
	}
	overlapsClaimed := func(from, to int) bool {
		for _, span := range claimed {
			if from < span[1] && to > span[0] {
				return true
			}
		}
		return false
	}

	for _, loc := range yearRangeRe.FindAllStringSubmatchIndex(folded, -1) {
		if overlapsClaimed(loc[0], loc[1]) {
			continue
		}
		startTok := folded[loc[2]:loc[3]]
		endTok := folded[loc[4]:loc[5]]
		startYear, ok := p.mapYear(startTok)
		if !ok {
			continue
		}
		if isPresentToken(endTok) {
			add(startYear*12, p.nowIdx)
			continue
		}
		endYear, ok := p.mapYear(endTok)
		if !ok {
			continue
		}
		add(startYear*12, endYear*12)
	}

	for _, m := range monthRangeRe.FindAllStringSubmatch(folded, -1) {
		month, ok := monthNumber(m[1])
		if !ok {
			continue
		}
		year, ok := p.mapYear(m[2])
		if !ok {
			continue
		}
		start := year*12 + month - 1
		switch {
		case m[3] != "": // present token
			add(start, p.nowIdx)
		case m[4] != "": // Mon YYYY - Mon YYYY
			endMonth, ok := monthNumber(m[4])
			if !ok {
				continue
			}
			endYear, ok := p.mapYear(m[5])
			if !ok {
				continue
			}
			add(start, endYear*12+endMonth-1+1)
		default: // Mon YYYY - YYYY
			endYear, ok := p.mapYear(m[5])
			if !ok {
				continue
			}
			add(start, endYear*12)
		}
	}

	for _, m := range dayMonthYearRe.FindAllStringSubmatch(folded, -1) {
		startMonth, ok1 := monthNumber(m[2])
		endMonth, ok2 := monthNumber(m[5])
		if !ok1 || !ok2 {
			continue
		}
		startYear, ok1 := p.mapYear(m[3])
		endYear, ok2 := p.mapYear(m[6])
		if !ok1 || !ok2 {
			continue
		}
		add(startYear*12+startMonth-1, endYear*12+endMonth-1+1)
	}

	for _, m := range monthSlashRe.FindAllStringSubmatch(folded, -1) {
		startMonth, err := strconv.Atoi(m[1])
		if err != nil || startMonth < 1 || startMonth > 12 {
			continue
		}
		startYear, ok := p.mapYear(m[2])
		if !ok {
			continue
		}
		start := startYear*12 + startMonth - 1
		if m[5] != "" { // present token
			add(start, p.nowIdx)
			continue
		}
		endMonth, err := strconv.Atoi(m[3])
		if err != nil || endMonth < 1 || endMonth > 12 {
			continue
		}
		endYear, ok := p.mapYear(m[4])
		if !ok {
			continue
		}
		add(start, endYear*12+endMonth-1+1)
	}

	for _, m := range dottedRangeRe.FindAllStringSubmatch(folded, -1) {
		startMonth, ok1 := dottedMonth(m[1], m[2])
		endMonth, ok2 := dottedMonth(m[4], m[5])
		if !ok1 || !ok2 {
			continue
		}
		startYear, ok1 := p.mapYear(m[3])
		endYear, ok2 := p.mapYear(m[6])
		if !ok1 || !ok2 {
			continue
		}
		add(startYear*12+startMonth-1, endYear*12+endMonth-1+1)
	}

	for _, m := range openEndedRe.FindAllStringSubmatch(folded, -1) {
		month := 1
		if m[1] != "" {
			if mm, ok := monthNumber(m[1]); ok {
				month = mm
			}
		}
		year, ok := p.mapYear(m[2])
		if !ok {
			continue
		}
		add(year*12+month-1, p.nowIdx)
	}

	if internshipContext {
		for _, m := range singleMonthRe.FindAllStringSubmatch(folded, -1) {
			month, ok := monthNumber(m[1])
			if !ok {
				continue
			}
			year, ok := p.mapYear(m[2])
			if !ok {
				continue
			}
			start := year*12 + month - 1
			add(start, start+1)
		}
	}

	return out
}

// dottedMonth resolves the month of a DD.MM (French) numeric pair. When
// both parts could be a month the second wins; otherwise whichever fits.
func dottedMonth(first, second string) (int, bool) {
	a, err1 := strconv.Atoi(first)
	b, err2 := strconv.Atoi(second)
	if err1 != nil || err2 != nil {
		return 0, false
	}
	if b >= 1 && b <= 12 {
		return b, true
	}
	if a >= 1 && a <= 12 {
		return a, true
	}
	return 0, false
}

func isPresentToken(token string) bool {
	if token == "" {
		return false
	}
	return !(token[0] >= '0' && token[0] <= '9')
}

// YearsAnchor finds an explicit "X years experience" / "X ans
// d'expérience" claim in folded text.
func YearsAnchor(folded string) (float64, bool) {
	if m := yearsAnchorRe.FindStringSubmatch(folded); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil && n >= 0 && n <= 60 {
			return float64(n), true
		}
	}
	if m := anchorAltRe.FindStringSubmatch(folded); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil && n >= 0 && n <= 60 {
			return float64(n), true
		}
	}
	return 0, false
}

// StripDates removes every recognized date expression (and bare years)
// from a canonical line, leaving its prose. Used to lift role titles off
// lines that carry both a title and a date range.
func StripDates(line string) string {
	folded := textnorm.Fold(line)
	marked := make([]bool, utf8.RuneCountInString(folded))

	mark := func(spans [][]int) {
		for _, span := range spans {
			from := utf8.RuneCountInString(folded[:span[0]])
			to := utf8.RuneCountInString(folded[:span[1]])
			for i := from; i < to && i < len(marked); i++ {
				marked[i] = true
			}
		}
	}
	for _, re := range []*regexp.Regexp{
		dayMonthYearRe, monthRangeRe, dottedRangeRe, monthSlashRe,
		yearRangeRe, openEndedRe, singleMonthRe, bareYearRe,
	} {
		mark(re.FindAllStringIndex(folded, -1))
	}

	var b strings.Builder
	for i, r := range []rune(line) {
		if i < len(marked) && marked[i] {
			continue
		}
		b.WriteRune(r)
	}
	return tidyTitle(b.String())
}

func tidyTitle(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	return strings.Trim(s, " \t-–—·•|,;:()[]")
}
