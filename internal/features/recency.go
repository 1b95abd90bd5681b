package features

import (
	"cvranker/internal/textnorm"
	"cvranker/internal/types"
)

// Skill recency multipliers per category.
var recencyMultipliers = map[types.RecencyCategory]float64{
	types.SkillRecencyCurrent: 1.0,
	types.SkillRecencyRecent:  0.85,
	types.SkillRecencyStale:   0.6,
	types.SkillRecencyOld:     0.3,
	types.SkillRecencyUnknown: 0.7,
}

// staleCutoffMonths separates stale from old skill usage.
const staleCutoffMonths = 60

// recencyAnalysis classifies each skill by the freshest professional role
// that mentions it, and derives the career trajectory from role levels
// ordered by start date.
func (e *Extractor) recencyAnalysis(roles []types.ParsedRole, roleIx *roleIndexes, project *types.ProjectSpec, role *types.RoleSpec) types.RecencyAnalysis {
	skills := append(append([]types.RoleSkill{}, role.MustHaveSkills...), role.NiceToHaveSkills...)

	out := types.RecencyAnalysis{Skills: []types.SkillRecency{}}
	knownSum, knownCount := 0.0, 0
	for _, skill := range skills {
		category := e.skillCategory(roles, roleIx, project.AliasesFor(skill.Skill))
		multiplier := recencyMultipliers[category]
		if category != types.SkillRecencyUnknown {
			knownSum += multiplier
			knownCount++
		}
		out.Skills = append(out.Skills, types.SkillRecency{
			Skill:      skill.Skill,
			Category:   category,
			Multiplier: multiplier,
		})
	}

	out.Trajectory = trajectory(roles)

	score := 0.7
	if knownCount > 0 {
		score = knownSum / float64(knownCount)
	}
	switch out.Trajectory {
	case types.TrajectoryAscending:
		score += 0.1
	case types.TrajectoryDescending:
		score -= 0.15
	}
	if score > 1 {
		score = 1
	}
	if score < 0 {
		score = 0
	}
	out.RecencyScore = score
	return out
}

// skillCategory finds the latest professional role mentioning any of the
// skill's terms. A skill seen only outside role blocks (for instance in a
// skills list) stays unknown.
func (e *Extractor) skillCategory(roles []types.ParsedRole, roleIx *roleIndexes, terms []string) types.RecencyCategory {
	latestEnd, found := 0, false
	for i := range roles {
		if !roles[i].Professional {
			continue
		}
		for _, term := range terms {
			if roleIx.containsTerm(i, term) {
				if !found || roles[i].EndMonthIndex > latestEnd {
					latestEnd = roles[i].EndMonthIndex
					found = true
				}
				break
			}
		}
	}
	if !found {
		return types.SkillRecencyUnknown
	}

	delta := e.nowIdx - latestEnd
	switch {
	case delta <= 1:
		return types.SkillRecencyCurrent
	case delta <= 24:
		return types.SkillRecencyRecent
	case delta <= staleCutoffMonths:
		return types.SkillRecencyStale
	default:
		return types.SkillRecencyOld
	}
}

// titleLevel maps a role title to a coarse seniority tier for trajectory
// analysis: senior=3, mid=2, junior=1, unknown=0.
func titleLevel(title string) int {
	folded := textnorm.Fold(title)
	for _, token := range defaultSeniorTokens {
		if n, _ := countToken(folded, token); n > 0 {
			return 3
		}
	}
	for _, token := range defaultJuniorTokens {
		if n, _ := countToken(folded, token); n > 0 {
			return 1
		}
	}
	for _, token := range defaultMidTokens {
		if n, _ := countToken(folded, token); n > 0 {
			return 2
		}
	}
	return 0
}

// trajectory counts ascending vs descending transitions between
// consecutive professional roles with recognizable levels.
func trajectory(roles []types.ParsedRole) types.Trajectory {
	ordered := professionalByStart(roles)

	var levels []int
	for _, role := range ordered {
		if level := titleLevel(role.Title); level > 0 {
			levels = append(levels, level)
		}
	}

	asc, desc := 0, 0
	for i := 1; i < len(levels); i++ {
		switch {
		case levels[i] > levels[i-1]:
			asc++
		case levels[i] < levels[i-1]:
			desc++
		}
	}

	switch {
	case asc > desc && asc >= 1:
		return types.TrajectoryAscending
	case desc > asc && desc >= 1:
		return types.TrajectoryDescending
	case len(ordered) >= 3 && asc == desc:
		return types.TrajectoryStable
	default:
		return types.TrajectoryUnclear
	}
}

func professionalByStart(roles []types.ParsedRole) []types.ParsedRole {
	ordered := make([]types.ParsedRole, 0, len(roles))
	for _, role := range roles {
		if role.Professional {
			ordered = append(ordered, role)
		}
	}
	for i := 1; i < len(ordered); i++ {
		for j := i; j > 0 && ordered[j].StartMonthIndex < ordered[j-1].StartMonthIndex; j-- {
			ordered[j], ordered[j-1] = ordered[j-1], ordered[j]
		}
	}
	return ordered
}
