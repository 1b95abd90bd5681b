package features

import (
	"fmt"
	"strings"

	"cvranker/internal/textnorm"
	"cvranker/internal/types"
)

const (
	tinyTextLen  = 200
	shortTextLen = 1000
	richTextLen  = 3000
	garbleLimit  = 0.1
)

// parseQuality estimates how much to trust the structured extraction,
// accumulating confidence deltas for text volume, OCR garble, date count,
// section detection and skill match ratio.
func (e *Extractor) parseQuality(text string, datesParsed int, sectionFound bool, skillsMatched, skillsTotal int) types.ParseQuality {
	q := types.ParseQuality{
		Confidence:             0.5,
		DatesParsed:            datesParsed,
		ExperienceSectionFound: sectionFound,
		SkillsMatched:          skillsMatched,
		Issues:                 []string{},
	}

	length := len(text)
	switch {
	case length < tinyTextLen:
		q.Confidence -= 0.3
		q.Issues = append(q.Issues, "very little text extracted")
	case length < shortTextLen:
		q.Confidence -= 0.1
	case length >= richTextLen:
		q.Confidence += 0.1
	}

	garble := textnorm.NonLatinRatio(text)
	if garble > garbleLimit {
		q.Confidence -= 0.2
		q.Issues = append(q.Issues, fmt.Sprintf("text contains OCR artifacts (%.0f%% foreign glyphs)", garble*100))
	}

	switch {
	case datesParsed == 0:
		q.Confidence -= 0.2
		q.Issues = append(q.Issues, "no dates recognized")
	case datesParsed >= 3:
		q.Confidence += 0.1
	}

	if sectionFound {
		q.Confidence += 0.1
	} else {
		q.Confidence -= 0.1
		q.Issues = append(q.Issues, "experience section not found")
	}

	if skillsTotal > 0 {
		ratio := float64(skillsMatched) / float64(skillsTotal)
		if ratio >= 0.5 {
			q.Confidence += 0.1
		} else if skillsMatched == 0 {
			q.Confidence -= 0.1
			q.Issues = append(q.Issues, "no required skills matched")
		}
	}

	if q.Confidence > 1 {
		q.Confidence = 1
	}
	if q.Confidence < 0 {
		q.Confidence = 0
	}

	switch {
	case q.Confidence >= 0.7:
		q.Overall = types.ParseHigh
	case q.Confidence >= 0.4:
		q.Overall = types.ParseMedium
	default:
		q.Overall = types.ParseLow
	}

	switch {
	case length < tinyTextLen || garble > garbleLimit:
		q.TextExtraction = types.ExtractionPoor
	case length < shortTextLen:
		q.TextExtraction = types.ExtractionPartial
	default:
		q.TextExtraction = types.ExtractionGood
	}

	return q
}

// warnings renders human-readable notes for reviewers.
func (e *Extractor) warnings(text string, f *types.Features, role *types.RoleSpec) []string {
	warnings := []string{}

	if len(text) < tinyTextLen {
		warnings = append(warnings, "Very little text was extracted from this resume; results are unreliable.")
	}
	if f.YearsExperience != nil && *f.YearsExperience < 1 && role.MinYearsExperience >= 3 {
		warnings = append(warnings, "Candidate has under a year of professional experience for an experienced role.")
	}
	for _, flag := range f.RedFlags {
		if flag.Severity == types.SeverityHigh {
			warnings = append(warnings, fmt.Sprintf("High-severity red flag (%s): %s.", flag.Type, flag.Evidence))
		}
	}
	if f.Recency.Trajectory == types.TrajectoryDescending {
		warnings = append(warnings, "Career trajectory appears to be descending.")
	}
	if f.ParseQuality.Overall == types.ParseLow && len(f.ParseQuality.Issues) > 0 {
		warnings = append(warnings, "Low parse quality: "+strings.Join(f.ParseQuality.Issues, "; ")+".")
	}
	return warnings
}
