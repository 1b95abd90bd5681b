package features

import (
	"fmt"

	"cvranker/internal/segment"
	"cvranker/internal/textnorm"
	"cvranker/internal/types"
)

const (
	hoppingWindowMonths = 60
	shortStintMonths    = 12
	gapHighMonths       = 24
	gapMediumMonths     = 12
)

var leadershipTitleTokens = []string{"lead", "principal", "architect", "architecte", "head", "director", "directeur"}

// redFlags detects job hopping, employment gaps, title inflation and
// career regression over the shared role list. Penalties are summed and
// capped at 25 by Features.TotalPenalty.
func (e *Extractor) redFlags(roles []types.ParsedRole, years *float64) []types.RedFlag {
	flags := []types.RedFlag{}
	flags = append(flags, e.jobHopping(roles)...)
	flags = append(flags, e.employmentGaps(roles)...)
	flags = append(flags, titleInflation(roles, years)...)
	flags = append(flags, careerRegression(roles)...)
	return flags
}

// jobHopping counts short stints (merged intervals of at most a year)
// across professional roles still active in the hopping window.
func (e *Extractor) jobHopping(roles []types.ParsedRole) []types.RedFlag {
	shortStints := 0
	for _, role := range roles {
		if !role.Professional || role.EndMonthIndex < e.nowIdx-hoppingWindowMonths {
			continue
		}
		for _, iv := range role.Intervals {
			if iv.Months() <= shortStintMonths {
				shortStints++
			}
		}
	}

	switch {
	case shortStints >= 3:
		return []types.RedFlag{{
			Type:     types.FlagJobHopping,
			Severity: types.SeverityHigh,
			Evidence: fmt.Sprintf("%d stints of a year or less in recent history", shortStints),
			Penalty:  10,
		}}
	case shortStints == 2:
		return []types.RedFlag{{
			Type:     types.FlagJobHopping,
			Severity: types.SeverityMedium,
			Evidence: "2 stints of a year or less in recent history",
			Penalty:  5,
		}}
	}
	return nil
}

// employmentGaps inspects the merged professional timeline for holes.
func (e *Extractor) employmentGaps(roles []types.ParsedRole) []types.RedFlag {
	merged, _ := segment.ProfessionalMonths(roles)
	var flags []types.RedFlag
	for i := 1; i < len(merged); i++ {
		gap := merged[i].Start - merged[i-1].End
		if gap > gapHighMonths {
			flags = append(flags, types.RedFlag{
				Type:     types.FlagEmploymentGap,
				Severity: types.SeverityHigh,
				Evidence: fmt.Sprintf("employment gap of %d months", gap),
				Penalty:  8,
			})
		} else if gap > gapMediumMonths {
			flags = append(flags, types.RedFlag{
				Type:     types.FlagEmploymentGap,
				Severity: types.SeverityMedium,
				Evidence: fmt.Sprintf("employment gap of %d months", gap),
				Penalty:  4,
			})
		}
	}
	return flags
}

// titleInflation flags senior or leadership titles that the candidate's
// total experience cannot support.
func titleInflation(roles []types.ParsedRole, years *float64) []types.RedFlag {
	if years == nil {
		return nil
	}

	hasSeniorTitle, hasLeadershipTitle := false, false
	seniorTitle, leadershipTitle := "", ""
	for _, role := range roles {
		folded := textnorm.Fold(role.Title)
		for _, token := range defaultSeniorTokens {
			if n, _ := countToken(folded, token); n > 0 {
				if !hasSeniorTitle {
					seniorTitle = role.Title
				}
				hasSeniorTitle = true
				break
			}
		}
		for _, token := range leadershipTitleTokens {
			if n, _ := countToken(folded, token); n > 0 {
				if !hasLeadershipTitle {
					leadershipTitle = role.Title
				}
				hasLeadershipTitle = true
				break
			}
		}
	}

	var flags []types.RedFlag
	if hasSeniorTitle {
		switch {
		case *years < 2:
			flags = append(flags, types.RedFlag{
				Type:     types.FlagTitleInflation,
				Severity: types.SeverityHigh,
				Evidence: fmt.Sprintf("senior title %q with %.1f years of experience", seniorTitle, *years),
				Penalty:  10,
			})
		case *years < 3:
			flags = append(flags, types.RedFlag{
				Type:     types.FlagTitleInflation,
				Severity: types.SeverityMedium,
				Evidence: fmt.Sprintf("senior title %q with %.1f years of experience", seniorTitle, *years),
				Penalty:  5,
			})
		}
	}
	if hasLeadershipTitle && *years < 4 {
		flags = append(flags, types.RedFlag{
			Type:     types.FlagTitleInflation,
			Severity: types.SeverityHigh,
			Evidence: fmt.Sprintf("leadership title %q with %.1f years of experience", leadershipTitle, *years),
			Penalty:  8,
		})
	}
	return flags
}

// careerRegression flags an adjacent senior-to-junior transition.
func careerRegression(roles []types.ParsedRole) []types.RedFlag {
	ordered := professionalByStart(roles)

	var flags []types.RedFlag
	prevLevel, prevTitle := 0, ""
	for _, role := range ordered {
		level := titleLevel(role.Title)
		if level == 0 {
			continue
		}
		if prevLevel == 3 && level == 1 {
			flags = append(flags, types.RedFlag{
				Type:     types.FlagCareerRegression,
				Severity: types.SeverityMedium,
				Evidence: fmt.Sprintf("moved from %q to %q", prevTitle, role.Title),
				Penalty:  5,
			})
		}
		prevLevel, prevTitle = level, role.Title
	}
	return flags
}
