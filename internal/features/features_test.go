package features

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cvranker/internal/textnorm"
	"cvranker/internal/types"
)

var testNow = types.YearMonth{Year: 2025, Month: 6}

func basicRole() *types.RoleSpec {
	return &types.RoleSpec{
		RoleID:             "backend-senior",
		Title:              "Senior Backend Engineer",
		MinYearsExperience: 5,
		MustHaveSkills: []types.RoleSkill{
			{Skill: "go", Weight: 3},
			{Skill: "postgresql", Weight: 2},
		},
		NiceToHaveSkills: []types.RoleSkill{
			{Skill: "kubernetes", Weight: 1},
		},
		Keywords: []string{"microservices"},
	}
}

func basicProject() *types.ProjectSpec {
	return &types.ProjectSpec{
		ProjectID:    "hiring-2025",
		SkillAliases: map[string][]string{"go": {"golang"}},
	}
}

const seniorResume = `Jane Smith
Senior Software Engineer

EXPERIENCE

Senior Software Engineer — Acme
Jan 2020 - present
Designed Go microservices for a production payments platform serving 2M users.
Led a team of 12 engineers. PostgreSQL and Kubernetes on AWS.

Software Engineer — Widget SA
2016 - 2019
Golang APIs and PostgreSQL tuning.

EDUCATION

MSc Computer Science, Université de Paris, 2016
`

func extract(t *testing.T, text string, project *types.ProjectSpec, role *types.RoleSpec) types.Features {
	t.Helper()
	return New(testNow).Extract(textnorm.Normalize(text), project, role)
}

func TestExtractSkillMatches(t *testing.T) {
	f := extract(t, seniorResume, basicProject(), basicRole())

	require.Len(t, f.MustHave, 2)
	for _, m := range f.MustHave {
		assert.True(t, m.Matched, "must-have %q should match", m.Term)
		require.NotEmpty(t, m.Evidence)
		assert.NotEmpty(t, m.Evidence[0])
	}
	require.Len(t, f.NiceToHave, 1)
	assert.True(t, f.NiceToHave[0].Matched)

	require.Len(t, f.KeywordHits, 1)
	assert.True(t, f.KeywordHits[0].Matched)
}

func TestExtractYearsAndRelevantExperience(t *testing.T) {
	f := extract(t, seniorResume, basicProject(), basicRole())

	require.NotNil(t, f.YearsExperience)
	// Jan 2020..May 2025 (65 months) + 2016-2019 (36 months)
	assert.InDelta(t, 8.4, *f.YearsExperience, 0.05)

	assert.Equal(t, f.RelevantExperience.TotalYears, f.RelevantExperience.RelevantYears)
	require.Len(t, f.RelevantExperience.Roles, 2)
	assert.Equal(t, types.RecencyCurrent, f.RelevantExperience.Roles[0].Recency)
	assert.Equal(t, types.RecencyOld, f.RelevantExperience.Roles[1].Recency)
}

func TestRelevanceKeywordsRestrictYears(t *testing.T) {
	role := basicRole()
	role.ExperienceRelevanceKeywords = []string{"payments"}
	f := extract(t, seniorResume, basicProject(), role)

	// only the first role mentions payments: 65 months
	assert.InDelta(t, 5.4, f.RelevantExperience.RelevantYears, 0.05)
	assert.Less(t, f.RelevantExperience.RelevantYears, f.RelevantExperience.TotalYears)
}

func TestSkillDepth(t *testing.T) {
	f := extract(t, seniorResume, basicProject(), basicRole())

	require.Len(t, f.SkillDepth, 3)
	byName := map[string]types.SkillDepth{}
	for _, d := range f.SkillDepth {
		byName[d.Skill] = d
	}

	goDepth := byName["go"]
	assert.GreaterOrEqual(t, goDepth.MentionCount, 2)
	assert.True(t, goDepth.InExperienceSection)
	assert.True(t, goDepth.InRecentRole)
	assert.Equal(t, types.ContextHigh, goDepth.ContextQuality)
	assert.Greater(t, goDepth.DepthScore, 0.7)

	for _, d := range f.SkillDepth {
		assert.GreaterOrEqual(t, d.DepthScore, 0.0)
		assert.LessOrEqual(t, d.DepthScore, 1.0)
	}
}

func TestSeniorityDetection(t *testing.T) {
	f := extract(t, seniorResume, basicProject(), basicRole())

	assert.Equal(t, types.SenioritySenior, f.Seniority.Level)
	assert.GreaterOrEqual(t, f.Seniority.Confidence, 0.6)
	assert.LessOrEqual(t, f.Seniority.Confidence, 0.95)
	assert.NotEmpty(t, f.Seniority.Evidence)
}

func TestJuniorDetection(t *testing.T) {
	text := "Junior Developer 2023–2024. Junior Developer 2024–present."
	f := extract(t, text, basicProject(), basicRole())

	assert.Equal(t, types.SeniorityJunior, f.Seniority.Level)
	assert.Greater(t, f.Seniority.Confidence, 0.6)
}

func TestSkillRecencyCategories(t *testing.T) {
	f := extract(t, seniorResume, basicProject(), basicRole())

	byName := map[string]types.SkillRecency{}
	for _, s := range f.Recency.Skills {
		byName[s.Skill] = s
	}
	assert.Equal(t, types.SkillRecencyCurrent, byName["go"].Category)
	assert.Equal(t, 1.0, byName["go"].Multiplier)
	assert.Equal(t, types.SkillRecencyCurrent, byName["kubernetes"].Category)
}

func TestSkillOnlyInSkillsListIsUnknown(t *testing.T) {
	text := `EXPERIENCE

Developer — Somewhere
2020 - 2022
Wrote internal tooling.

SKILLS

Rust, Haskell
`
	role := &types.RoleSpec{
		RoleID:         "r",
		Title:          "Dev",
		MustHaveSkills: []types.RoleSkill{{Skill: "rust", Weight: 1}},
	}
	f := extract(t, text, basicProject(), role)

	require.Len(t, f.Recency.Skills, 1)
	assert.Equal(t, types.SkillRecencyUnknown, f.Recency.Skills[0].Category)
	assert.Equal(t, 0.7, f.Recency.Skills[0].Multiplier)
}

func TestJobHoppingBoundaries(t *testing.T) {
	two := `EXPERIENCE

Developer
Jan 2022 - Jun 2022
Engineer
Jan 2023 - Aug 2023
Lead Engineer
2010 - 2019
`
	f := extract(t, two, basicProject(), basicRole())
	flags := flagsOfType(f.RedFlags, types.FlagJobHopping)
	require.Len(t, flags, 1)
	assert.Equal(t, types.SeverityMedium, flags[0].Severity)
	assert.Equal(t, 5, flags[0].Penalty)

	three := two + "Developer\nJan 2024 - Apr 2024\n"
	f = extract(t, three, basicProject(), basicRole())
	flags = flagsOfType(f.RedFlags, types.FlagJobHopping)
	require.Len(t, flags, 1)
	assert.Equal(t, types.SeverityHigh, flags[0].Severity)
	assert.Equal(t, 10, flags[0].Penalty)
}

func TestEmploymentGapFlags(t *testing.T) {
	text := `EXPERIENCE

Engineer
2015 - 2017
Engineer
2020 - present
`
	f := extract(t, text, basicProject(), basicRole())
	flags := flagsOfType(f.RedFlags, types.FlagEmploymentGap)
	require.Len(t, flags, 1)
	assert.Equal(t, types.SeverityHigh, flags[0].Severity)
	assert.Equal(t, 8, flags[0].Penalty)
}

func TestTitleInflation(t *testing.T) {
	text := "Senior Principal Engineer\n2024 - present\nBuilding things."
	f := extract(t, text, basicProject(), basicRole())

	flags := flagsOfType(f.RedFlags, types.FlagTitleInflation)
	require.NotEmpty(t, flags)
	var total int
	for _, flag := range flags {
		total += flag.Penalty
	}
	assert.GreaterOrEqual(t, total, 10)
}

func TestCareerRegression(t *testing.T) {
	text := "Senior Architect 2018-2022\nJunior Engineer 2022-2025"
	f := extract(t, text, basicProject(), basicRole())

	flags := flagsOfType(f.RedFlags, types.FlagCareerRegression)
	require.Len(t, flags, 1)
	assert.Equal(t, types.SeverityMedium, flags[0].Severity)
	assert.Equal(t, 5, flags[0].Penalty)

	assert.Equal(t, types.TrajectoryDescending, f.Recency.Trajectory)
	assert.InDelta(t, 0.55, f.Recency.RecencyScore, 0.001)
}

func TestPenaltyCap(t *testing.T) {
	f := types.Features{RedFlags: []types.RedFlag{
		{Penalty: 10}, {Penalty: 10}, {Penalty: 10},
	}}
	assert.Equal(t, 25, f.TotalPenalty())
}

func TestProjectScaleSignals(t *testing.T) {
	f := extract(t, seniorResume, basicProject(), basicRole())

	assert.Equal(t, int64(2_000_000), f.ProjectScale.MaxUserScale)
	assert.Equal(t, 12, f.ProjectScale.MaxTeamSize)
	assert.Contains(t, f.ProjectScale.ImpactIndicators, "production")
	assert.GreaterOrEqual(t, f.ProjectScale.ScaleScore, 0.75)
	assert.LessOrEqual(t, f.ProjectScale.ScaleScore, 1.0)
}

func TestEducationDetection(t *testing.T) {
	f := extract(t, seniorResume, basicProject(), basicRole())

	require.NotNil(t, f.Education.BestDegree)
	assert.Equal(t, types.DegreeMasters, f.Education.BestDegree.Level)
	assert.Equal(t, types.FieldCS, f.Education.BestDegree.Field)
	assert.InDelta(t, 0.9, f.Education.EducationScore, 0.001)
}

func TestEducationNoneScoresMidRange(t *testing.T) {
	f := extract(t, "Engineer\n2019 - 2024\nShipping code.", basicProject(), basicRole())
	assert.Nil(t, f.Education.BestDegree)
	assert.Equal(t, 0.5, f.Education.EducationScore)
}

func TestParseQualityTinyText(t *testing.T) {
	f := extract(t, "short", basicProject(), basicRole())

	assert.Equal(t, types.ParseLow, f.ParseQuality.Overall)
	assert.Equal(t, types.ExtractionPoor, f.ParseQuality.TextExtraction)
	assert.NotEmpty(t, f.ParseQuality.Issues)
	assert.NotEmpty(t, f.Warnings)
}

func TestParseQualityRichResume(t *testing.T) {
	long := seniorResume + strings.Repeat("Additional accomplishments in production systems.\n", 60)
	f := extract(t, long, basicProject(), basicRole())

	assert.Equal(t, types.ParseHigh, f.ParseQuality.Overall)
	assert.Equal(t, types.ExtractionGood, f.ParseQuality.TextExtraction)
	assert.True(t, f.ParseQuality.ExperienceSectionFound)
	assert.GreaterOrEqual(t, f.ParseQuality.DatesParsed, 2)
}

func flagsOfType(flags []types.RedFlag, ft types.RedFlagType) []types.RedFlag {
	var out []types.RedFlag
	for _, f := range flags {
		if f.Type == ft {
			out = append(out, f)
		}
	}
	return out
}
