package features

import (
	"regexp"

	"cvranker/internal/match"
	"cvranker/internal/segment"
	"cvranker/internal/textnorm"
	"cvranker/internal/types"
)

const contextWindow = 200

var highSignalRe = regexp.MustCompile(`\b(?:production|enterprise|platform|plateforme|architecture|architected|led|dirige|designed|concu|scaled|scalability|saas|b2b|mission[- ]critical|haute disponibilite)\b`)
var mediumSignalRe = regexp.MustCompile(`\b(?:project|projet|application|feature|fonctionnalite|integration|service|api)\b`)

// skillDepth grades how substantially each required and preferred skill is
// used: mention volume, placement in the experience section, presence in a
// recent role, and the quality of the surrounding prose.
func (e *Extractor) skillDepth(ix *match.Index, section segment.Section, roles []types.ParsedRole, roleIx *roleIndexes, project *types.ProjectSpec, role *types.RoleSpec) []types.SkillDepth {
	skills := append(append([]types.RoleSkill{}, role.MustHaveSkills...), role.NiceToHaveSkills...)
	out := make([]types.SkillDepth, 0, len(skills))

	for _, skill := range skills {
		terms := project.AliasesFor(skill.Skill)

		seen := map[int]bool{}
		var offsets []int
		for _, term := range terms {
			for _, off := range ix.Mentions(term) {
				if !seen[off] {
					seen[off] = true
					offsets = append(offsets, off)
				}
			}
		}

		depth := types.SkillDepth{
			Skill:          skill.Skill,
			MentionCount:   len(offsets),
			ContextQuality: types.ContextLow,
		}

		for _, off := range offsets {
			if section.Contains(off) {
				depth.InExperienceSection = true
				break
			}
		}

		for i := range roles {
			tag := e.roleRecency(roles[i].EndMonthIndex)
			if tag != types.RecencyCurrent && tag != types.RecencyRecent {
				continue
			}
			for _, term := range terms {
				if roleIx.containsTerm(i, term) {
					depth.InRecentRole = true
					break
				}
			}
			if depth.InRecentRole {
				break
			}
		}

		depth.ContextQuality = mentionContextQuality(ix, offsets)
		depth.DepthScore = depthScore(depth)
		out = append(out, depth)
	}
	return out
}

// mentionContextQuality inspects a window around each mention for
// high-signal production vocabulary; the best window wins.
func mentionContextQuality(ix *match.Index, offsets []int) types.ContextQuality {
	quality := types.ContextLow
	text := ix.Text()
	for _, off := range offsets {
		lo := off - contextWindow
		if lo < 0 {
			lo = 0
		}
		hi := off + contextWindow
		if hi > len(text) {
			hi = len(text)
		}
		window := textnorm.Fold(text[lo:hi])
		if highSignalRe.MatchString(window) {
			return types.ContextHigh
		}
		if mediumSignalRe.MatchString(window) {
			quality = types.ContextMedium
		}
	}
	return quality
}

func depthScore(d types.SkillDepth) float64 {
	mentions := float64(d.MentionCount) / 5
	if mentions > 1 {
		mentions = 1
	}
	score := 0.3 * mentions
	if d.InExperienceSection {
		score += 0.2
	}
	if d.InRecentRole {
		score += 0.2
	}
	switch d.ContextQuality {
	case types.ContextHigh:
		score += 0.3
	case types.ContextMedium:
		score += 0.15
	}
	return score
}
