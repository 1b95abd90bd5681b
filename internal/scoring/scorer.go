// Package scoring turns a feature bundle into an explainable 0-100 score:
// normalized component weights, per-component scores, red-flag penalty
// subtraction, and hard-filter threshold evaluation.
package scoring

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"cvranker/internal/types"
)

// defaultWeights apply when the configured weights sum to zero or less.
var defaultWeights = types.ComponentScores{
	MustHave:     0.30,
	NiceToHave:   0.10,
	Experience:   0.20,
	SkillDepth:   0.10,
	Seniority:    0.10,
	Recency:      0.08,
	ProjectScale: 0.08,
	Education:    0.04,
}

// roleTier buckets a role by its minimum experience requirement.
type roleTier int

const (
	tierJunior roleTier = iota
	tierMid
	tierSenior
)

func tierOf(minYears float64) roleTier {
	switch {
	case minYears >= 5:
		return tierSenior
	case minYears >= 3:
		return tierMid
	default:
		return tierJunior
	}
}

// Score computes the full score result for one candidate.
func Score(f *types.Features, role *types.RoleSpec) types.ScoreResult {
	weights := normalizeWeights(role.Scoring.Weights)
	tier := tierOf(role.MinYearsExperience)

	components := types.ComponentScores{
		MustHave:     skillScore(f.MustHave),
		NiceToHave:   skillScore(f.NiceToHave),
		Experience:   experienceScore(f, role.MinYearsExperience),
		SkillDepth:   depthScore(f.SkillDepth),
		Seniority:    seniorityScore(f.Seniority, tier),
		Recency:      f.Recency.RecencyScore,
		ProjectScale: f.ProjectScale.ScaleScore,
		Education:    educationScore(f.Education.EducationScore, tier),
	}

	weighted := weights.MustHave*components.MustHave +
		weights.NiceToHave*components.NiceToHave +
		weights.Experience*components.Experience +
		weights.SkillDepth*components.SkillDepth +
		weights.Seniority*components.Seniority +
		weights.Recency*components.Recency +
		weights.ProjectScale*components.ProjectScale +
		weights.Education*components.Education

	raw := int(math.Round(100 * weighted))
	penalty := f.TotalPenalty()
	overall := raw - penalty
	if overall < 0 {
		overall = 0
	}

	result := types.ScoreResult{
		OverallScore: overall,
		RawScore:     raw,
		Penalty:      penalty,
		Components:   components,
		WeightsUsed:  weights,
	}
	result.ThresholdReasons = thresholdReasons(f, role, &result)
	result.BelowThreshold = len(result.ThresholdReasons) > 0
	return result
}

// normalizeWeights clamps negatives to zero and divides by the sum, or
// falls back to the fixed defaults when the sum is not positive. Budget
// and contract weights are accepted but never consumed.
func normalizeWeights(w types.ScoringWeights) types.ComponentScores {
	clamp := func(v float64) float64 {
		if v < 0 {
			return 0
		}
		return v
	}
	c := types.ComponentScores{
		MustHave:     clamp(w.MustHave),
		NiceToHave:   clamp(w.NiceToHave),
		Experience:   clamp(w.Experience),
		SkillDepth:   clamp(w.SkillDepth),
		Seniority:    clamp(w.Seniority),
		Recency:      clamp(w.Recency),
		ProjectScale: clamp(w.ProjectScale),
		Education:    clamp(w.Education),
	}
	sum := c.MustHave + c.NiceToHave + c.Experience + c.SkillDepth +
		c.Seniority + c.Recency + c.ProjectScale + c.Education
	if sum <= 0 {
		return defaultWeights
	}
	return types.ComponentScores{
		MustHave:     c.MustHave / sum,
		NiceToHave:   c.NiceToHave / sum,
		Experience:   c.Experience / sum,
		SkillDepth:   c.SkillDepth / sum,
		Seniority:    c.Seniority / sum,
		Recency:      c.Recency / sum,
		ProjectScale: c.ProjectScale / sum,
		Education:    c.Education / sum,
	}
}

// skillScore is the weight-weighted match ratio. With no weight at stake
// there is nothing to miss, so the score is 1.
func skillScore(matches []types.SkillMatch) float64 {
	total, matched := 0.0, 0.0
	for _, m := range matches {
		weight := m.Weight
		if weight < 0 {
			weight = 0
		}
		total += weight
		if m.Matched {
			matched += weight
		}
	}
	if total == 0 {
		return 1
	}
	return matched / total
}

// experienceCurve rewards meeting the bar steeply and saturates at 1.5x.
func experienceCurve(years *float64, minYears float64) float64 {
	if minYears == 0 {
		return 1
	}
	if years == nil {
		return 0
	}
	r := *years / minYears
	switch {
	case r >= 1.5:
		return 1.0
	case r >= 1.0:
		return 0.8 + 0.4*(r-1)
	case r >= 0.6:
		return 0.4 + (r - 0.6)
	default:
		return 0.67 * r
	}
}

// experienceScore applies the curve to relevant years (total years stand
// in when no relevance data exists) with a bonus for currently-held
// relevant roles.
func experienceScore(f *types.Features, minYears float64) float64 {
	var years *float64
	if f.YearsExperience != nil {
		v := f.RelevantExperience.RelevantYears
		years = &v
	}

	score := experienceCurve(years, minYears)

	bonus := 0.0
	for _, role := range f.RelevantExperience.Roles {
		if !role.Relevant || !role.Professional {
			continue
		}
		if role.Recency == types.RecencyCurrent {
			bonus = 0.1
			break
		}
		if role.Recency == types.RecencyRecent {
			bonus = 0.05
		}
	}
	score += bonus
	if score > 1 {
		score = 1
	}
	return score
}

// seniorityScore is contextual: the same detected level scores very
// differently against junior, mid and senior roles.
func seniorityScore(s types.Seniority, tier roleTier) float64 {
	conf := s.Confidence
	switch tier {
	case tierSenior:
		switch s.Level {
		case types.SenioritySenior:
			return 0.9 + 0.1*conf
		case types.SeniorityMid:
			return 0.5 + 0.2*conf
		case types.SeniorityJunior:
			return 0.2 - 0.1*conf
		default:
			return 0.5
		}
	case tierMid:
		switch s.Level {
		case types.SenioritySenior:
			return 0.85
		case types.SeniorityMid:
			return 0.8 + 0.2*conf
		case types.SeniorityJunior:
			return 0.4 - 0.1*conf
		default:
			return 0.5
		}
	default:
		switch s.Level {
		case types.SenioritySenior:
			return 0.6
		case types.SeniorityMid:
			return 0.8
		case types.SeniorityJunior:
			return 0.9
		default:
			return 0.7
		}
	}
}

// educationScore compresses the raw education signal: it matters less the
// more senior the role.
func educationScore(edu float64, tier roleTier) float64 {
	switch tier {
	case tierSenior:
		return 0.5 + 0.3*edu
	case tierMid:
		return 0.4 + 0.4*edu
	default:
		return 0.3 + 0.5*edu
	}
}

// depthScore blends average depth with the share of high-context skills.
func depthScore(depths []types.SkillDepth) float64 {
	if len(depths) == 0 {
		return 0.5
	}
	sum, high := 0.0, 0
	for _, d := range depths {
		sum += d.DepthScore
		if d.ContextQuality == types.ContextHigh {
			high++
		}
	}
	avg := sum / float64(len(depths))
	highRatio := float64(high) / float64(len(depths))
	return avg*0.7 + highRatio*0.3
}

// thresholdReasons evaluates the hard filters. Every tripped filter
// appends its own reason; filters never change the score itself.
func thresholdReasons(f *types.Features, role *types.RoleSpec, result *types.ScoreResult) []string {
	reasons := []string{}
	hf := role.Scoring.HardFilters

	if hf != nil && hf.MinMustHaveMatchRatio != nil && result.Components.MustHave < *hf.MinMustHaveMatchRatio {
		reasons = append(reasons, fmt.Sprintf(
			"Must-have skill match %.2f below required ratio %.2f",
			result.Components.MustHave, *hf.MinMustHaveMatchRatio))
	}

	if hf != nil && hf.RequireAllMustHaveSkills {
		var missing []string
		for _, m := range f.MustHave {
			if !m.Matched {
				missing = append(missing, m.Term)
			}
		}
		if len(missing) > 0 {
			sort.Strings(missing)
			reasons = append(reasons, "Missing must-have skills: "+strings.Join(missing, ", "))
		}
	}

	if hf != nil && hf.MinRelevantExperienceYears != nil &&
		f.RelevantExperience.RelevantYears < *hf.MinRelevantExperienceYears {
		reasons = append(reasons, fmt.Sprintf(
			"Relevant experience %.1f years below required %.1f",
			f.RelevantExperience.RelevantYears, *hf.MinRelevantExperienceYears))
	}

	if hf != nil && hf.MaxRedFlagPenalty != nil && result.Penalty > *hf.MaxRedFlagPenalty {
		reasons = append(reasons, fmt.Sprintf(
			"Red-flag penalty %d exceeds allowed %d", result.Penalty, *hf.MaxRedFlagPenalty))
	}

	if role.MinYearsExperience >= 5 &&
		f.Seniority.Level == types.SeniorityJunior && f.Seniority.Confidence > 0.6 {
		reasons = append(reasons, "Junior-level candidate for senior role")
	}

	highFlags := 0
	for _, flag := range f.RedFlags {
		if flag.Severity == types.SeverityHigh {
			highFlags++
		}
	}
	if highFlags >= 2 {
		reasons = append(reasons, fmt.Sprintf("%d high-severity red flags", highFlags))
	}

	return reasons
}
