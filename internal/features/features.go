// Package features turns canonical resume text plus a role specification
// into the full per-candidate feature bundle. The parsed role list is
// computed once and shared by every analyzer that needs it.
package features

import (
	"strings"

	"cvranker/internal/dates"
	"cvranker/internal/match"
	"cvranker/internal/segment"
	"cvranker/internal/textnorm"
	"cvranker/internal/types"
)

// Extractor runs the full feature pipeline against an injected clock.
type Extractor struct {
	now    types.YearMonth
	nowIdx int
	parser *dates.Parser
	seg    *segment.Segmenter
}

// New creates an extractor for the given clock.
func New(now types.YearMonth) *Extractor {
	parser := dates.NewParser(now)
	return &Extractor{
		now:    now,
		nowIdx: now.Index(),
		parser: parser,
		seg:    segment.New(parser),
	}
}

// Extract produces the feature bundle for one candidate. The input text
// must already be canonical (textnorm.Normalize).
func (e *Extractor) Extract(text string, project *types.ProjectSpec, role *types.RoleSpec) types.Features {
	ix := match.NewIndex(text)
	section := e.seg.ExperienceSection(text)
	roles := e.seg.Roles(text, section)
	years := e.seg.YearsExperience(text, section, roles)

	// Per-role indexes let skill checks respect word boundaries inside a
	// single block; built lazily since most roles never get queried.
	roleIx := newRoleIndexes(roles)

	aliases := func(skill string) []string {
		if project == nil {
			return nil
		}
		return project.SkillAliases[skill]
	}
	mustHave := make([]types.SkillMatch, 0, len(role.MustHaveSkills))
	for _, skill := range role.MustHaveSkills {
		mustHave = append(mustHave, match.MatchSkill(ix, skill, aliases(skill.Skill)))
	}
	niceToHave := make([]types.SkillMatch, 0, len(role.NiceToHaveSkills))
	for _, skill := range role.NiceToHaveSkills {
		niceToHave = append(niceToHave, match.MatchSkill(ix, skill, aliases(skill.Skill)))
	}
	keywordHits := make([]types.KeywordHit, 0, len(role.Keywords))
	for _, keyword := range role.Keywords {
		keywordHits = append(keywordHits, match.MatchKeyword(ix, keyword))
	}

	relevant := e.relevantExperience(roles, role.ExperienceRelevanceKeywords, years)
	depth := e.skillDepth(ix, section, roles, roleIx, project, role)
	seniority := e.seniority(ix, years, role.SeniorityIndicators)
	recency := e.recencyAnalysis(roles, roleIx, project, role)
	redFlags := e.redFlags(roles, years)
	scale := e.projectScale(ix)
	education := e.education(ix)

	datesParsed := len(e.parser.Extract(text))
	matched := 0
	for _, m := range mustHave {
		if m.Matched {
			matched++
		}
	}
	for _, m := range niceToHave {
		if m.Matched {
			matched++
		}
	}
	quality := e.parseQuality(text, datesParsed, section.Found, matched,
		len(mustHave)+len(niceToHave))

	f := types.Features{
		MustHave:           mustHave,
		NiceToHave:         niceToHave,
		KeywordHits:        keywordHits,
		YearsExperience:    years,
		RelevantExperience: relevant,
		SkillDepth:         depth,
		Seniority:          seniority,
		Recency:            recency,
		RedFlags:           redFlags,
		ProjectScale:       scale,
		Education:          education,
		ParseQuality:       quality,
	}
	f.Warnings = e.warnings(text, &f, role)
	return f
}

// roleIndexes builds word-boundary-aware indexes over role blocks on
// demand.
type roleIndexes struct {
	roles   []types.ParsedRole
	indexes []*match.Index
}

func newRoleIndexes(roles []types.ParsedRole) *roleIndexes {
	return &roleIndexes{
		roles:   roles,
		indexes: make([]*match.Index, len(roles)),
	}
}

func (r *roleIndexes) index(i int) *match.Index {
	if r.indexes[i] == nil {
		r.indexes[i] = match.NewIndex(r.roles[i].Title + "\n" + r.roles[i].TextBlock)
	}
	return r.indexes[i]
}

// containsTerm reports whether role i mentions the term (exact pass only).
func (r *roleIndexes) containsTerm(i int, term string) bool {
	_, ok := r.index(i).FindTerm(term)
	return ok
}

// roleRecency tags a role by how long ago it ended.
func (e *Extractor) roleRecency(endMonthIndex int) types.RecencyTag {
	delta := e.nowIdx - endMonthIndex
	switch {
	case delta <= 1:
		return types.RecencyCurrent
	case delta <= 24:
		return types.RecencyRecent
	default:
		return types.RecencyOld
	}
}

// relevantExperience splits professional years into role-relevant years.
// With no relevance keywords every professional role counts as relevant.
func (e *Extractor) relevantExperience(roles []types.ParsedRole, keywords []string, years *float64) types.RelevantExperience {
	totalYears := 0.0
	if years != nil {
		totalYears = *years
	}

	foldedKeywords := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		foldedKeywords = append(foldedKeywords, textnorm.Fold(kw))
	}

	out := types.RelevantExperience{TotalYears: totalYears, Roles: []types.RoleExperience{}}
	var relevantIntervals []types.MonthInterval
	for _, role := range roles {
		folded := textnorm.Fold(role.Title + "\n" + role.TextBlock)
		relevant := len(foldedKeywords) == 0 && role.Professional
		for _, kw := range foldedKeywords {
			if kw != "" && strings.Contains(folded, kw) {
				relevant = true
				break
			}
		}
		if relevant && role.Professional {
			relevantIntervals = append(relevantIntervals, role.Intervals...)
		}
		out.Roles = append(out.Roles, types.RoleExperience{
			Title:           role.Title,
			Years:           dates.MonthsToYears(role.DurationMonths),
			Relevant:        relevant,
			Professional:    role.Professional,
			Recency:         e.roleRecency(role.EndMonthIndex),
			StartMonthIndex: role.StartMonthIndex,
			EndMonthIndex:   role.EndMonthIndex,
		})
	}

	if len(foldedKeywords) == 0 {
		out.RelevantYears = totalYears
	} else {
		merged := dates.Merge(relevantIntervals)
		out.RelevantYears = dates.MonthsToYears(dates.TotalMonths(merged))
	}
	return out
}
