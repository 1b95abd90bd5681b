package analyzer

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cvranker/internal/textnorm"
	"cvranker/internal/types"
)

var testNow = types.YearMonth{Year: 2025, Month: 6}

func floatPtr(v float64) *float64 { return &v }

func analyzeText(text string, project *types.ProjectSpec, role *types.RoleSpec) types.CandidateAnalysis {
	return Analyze(types.AnalyzeInput{
		CandidateID: "cand-1",
		RawText:     text,
		Project:     project,
		Role:        role,
		Now:         testNow,
	})
}

// Scenario: senior engineer with leadership evidence on a single line.
func TestSeniorEngineerWithLeadership(t *testing.T) {
	text := "Sr Software Engineer. 2019 - present at Acme. Led a team of 8."
	project := &types.ProjectSpec{
		ProjectID:    "p",
		SkillAliases: map[string][]string{"leadership": {"led"}},
	}
	role := &types.RoleSpec{
		RoleID:             "senior-swe",
		Title:              "Senior Software Engineer",
		MinYearsExperience: 5,
		MustHaveSkills:     []types.RoleSkill{{Skill: "leadership", Weight: 1}},
	}

	analysis := analyzeText(text, project, role)
	f := analysis.Features

	require.NotNil(t, f.YearsExperience)
	assert.Equal(t, 6.4, *f.YearsExperience)
	assert.Equal(t, types.SenioritySenior, f.Seniority.Level)

	require.Len(t, f.MustHave, 1)
	assert.True(t, f.MustHave[0].Matched)
	require.NotEmpty(t, f.MustHave[0].Evidence)
	assert.Equal(t, "Sr Software Engineer. 2019 - present at Acme. Led a team of 8.",
		f.MustHave[0].Evidence[0])

	assert.InDelta(t, 1.0, analysis.Score.Components.Experience, 0.0001)
	assert.False(t, analysis.Score.BelowThreshold)
}

// Scenario: internship-only French resume against an experienced role.
func TestInternshipOnlyCandidate(t *testing.T) {
	text := "Stagiaire – Mars 2024 – Juin 2024. PFE."
	role := &types.RoleSpec{
		RoleID:             "backend-mid",
		Title:              "Backend Developer",
		MinYearsExperience: 2,
		Scoring: types.ScoringSpec{
			HardFilters: &types.HardFilters{MinRelevantExperienceYears: floatPtr(1)},
		},
	}

	analysis := analyzeText(text, nil, role)
	f := analysis.Features

	require.NotNil(t, f.YearsExperience)
	assert.Equal(t, 0.0, *f.YearsExperience, "internship months must not count")

	assert.True(t, analysis.Score.BelowThreshold)
	require.NotEmpty(t, analysis.Score.ThresholdReasons)
	assert.Contains(t, analysis.Score.ThresholdReasons[0], "Relevant experience")
}

// Scenario: junior candidate screened for a senior role.
func TestJuniorForSeniorRole(t *testing.T) {
	text := "Junior Developer 2023–2024. Junior Developer 2024–present."
	role := &types.RoleSpec{
		RoleID:             "senior-dev",
		Title:              "Senior Developer",
		MinYearsExperience: 5,
	}

	analysis := analyzeText(text, nil, role)

	assert.Equal(t, types.SeniorityJunior, analysis.Features.Seniority.Level)
	assert.Greater(t, analysis.Features.Seniority.Confidence, 0.6)
	assert.True(t, analysis.Score.BelowThreshold)
	assert.Contains(t, analysis.Score.ThresholdReasons, "Junior-level candidate for senior role")
}

// Scenario: short skill tokens need word boundaries.
func TestShortSkillWordBoundary(t *testing.T) {
	text := "Skills: React, Node.js, Go, TypeScript"
	role := &types.RoleSpec{
		RoleID:         "go-dev",
		Title:          "Go Developer",
		MustHaveSkills: []types.RoleSkill{{Skill: "go", Weight: 1}},
	}

	analysis := analyzeText(text, nil, role)
	require.Len(t, analysis.Features.MustHave, 1)
	assert.True(t, analysis.Features.MustHave[0].Matched)

	// "golang" alone only matches when aliased
	golangText := "Skills: golang, TypeScript"
	unaliased := analyzeText(golangText, nil, role)
	assert.False(t, unaliased.Features.MustHave[0].Matched)

	project := &types.ProjectSpec{SkillAliases: map[string][]string{"go": {"golang"}}}
	aliased := analyzeText(golangText, project, role)
	assert.True(t, aliased.Features.MustHave[0].Matched)
}

// Scenario: serial short stints inside the experience section.
func TestJobHopperScenario(t *testing.T) {
	text := "EXPERIENCE\n\nConsultant\n2015-2016, 2018-2019, 2020-2021, 2023-present\n"
	role := &types.RoleSpec{
		RoleID:             "dev",
		Title:              "Developer",
		MinYearsExperience: 3,
	}

	analysis := analyzeText(text, nil, role)
	f := analysis.Features

	require.NotNil(t, f.YearsExperience)
	assert.InDelta(t, 5.5, *f.YearsExperience, 0.15)

	var hopping *types.RedFlag
	for i := range f.RedFlags {
		if f.RedFlags[i].Type == types.FlagJobHopping {
			hopping = &f.RedFlags[i]
		}
	}
	require.NotNil(t, hopping, "expected a job-hopping flag")
	assert.Equal(t, types.SeverityHigh, hopping.Severity)
	assert.Equal(t, 10, hopping.Penalty)
}

// Scenario: regression from a senior to a junior title.
func TestCareerRegressionScenario(t *testing.T) {
	text := "Senior Architect 2018-2022\nJunior Engineer 2022-2025"
	role := &types.RoleSpec{
		RoleID:             "eng",
		Title:              "Engineer",
		MinYearsExperience: 3,
	}

	analysis := analyzeText(text, nil, role)
	f := analysis.Features

	var regression *types.RedFlag
	for i := range f.RedFlags {
		if f.RedFlags[i].Type == types.FlagCareerRegression {
			regression = &f.RedFlags[i]
		}
	}
	require.NotNil(t, regression)
	assert.Equal(t, types.SeverityMedium, regression.Severity)
	assert.Equal(t, 5, regression.Penalty)

	assert.Equal(t, types.TrajectoryDescending, f.Recency.Trajectory)
	assert.InDelta(t, 0.55, f.Recency.RecencyScore, 0.001)
}

func TestAnalyzeIsDeterministic(t *testing.T) {
	text := "Senior Engineer\nJan 2019 - present\nGo, PostgreSQL, Kubernetes in production."
	project := &types.ProjectSpec{SkillAliases: map[string][]string{"go": {"golang"}}}
	role := &types.RoleSpec{
		RoleID:             "r",
		Title:              "Engineer",
		MinYearsExperience: 3,
		MustHaveSkills:     []types.RoleSkill{{Skill: "go", Weight: 1}},
		Keywords:           []string{"production"},
	}

	first := analyzeText(text, project, role)
	second := analyzeText(text, project, role)

	a, err := json.Marshal(first)
	require.NoError(t, err)
	b, err := json.Marshal(second)
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b), "analysis must be byte-identical for identical input")
}

func TestAnalyzeCanonicalTextRoundTrip(t *testing.T) {
	raw := "Senior   Engineer\r\n2019 - present\n\n\n\n\nGo services."
	role := &types.RoleSpec{RoleID: "r", Title: "E", MinYearsExperience: 1,
		MustHaveSkills: []types.RoleSkill{{Skill: "go", Weight: 1}}}

	fromRaw := analyzeText(raw, nil, role)
	fromCanonical := analyzeText(textnorm.Normalize(raw), nil, role)

	a, _ := json.Marshal(fromRaw)
	b, _ := json.Marshal(fromCanonical)
	assert.Equal(t, string(a), string(b))
}

func TestAnalyzeEmptyTextNeverPanics(t *testing.T) {
	role := &types.RoleSpec{RoleID: "r", Title: "E", MinYearsExperience: 5,
		MustHaveSkills: []types.RoleSkill{{Skill: "go", Weight: 1}}}

	analysis := analyzeText("", nil, role)

	assert.Nil(t, analysis.Features.YearsExperience)
	assert.Equal(t, types.ParseLow, analysis.Features.ParseQuality.Overall)
	assert.NotEmpty(t, analysis.Features.Warnings)
	assert.GreaterOrEqual(t, analysis.Score.OverallScore, 0)
}

func TestMinYearsZeroAlwaysFullExperienceScore(t *testing.T) {
	role := &types.RoleSpec{RoleID: "r", Title: "Any", MinYearsExperience: 0}

	analysis := analyzeText("No dates at all in this text.", nil, role)
	assert.InDelta(t, 1.0, analysis.Score.Components.Experience, 0.0001)
}

func TestRequireAllMustHavesListsEveryMissingSkill(t *testing.T) {
	role := &types.RoleSpec{
		RoleID: "r", Title: "E",
		MustHaveSkills: []types.RoleSkill{
			{Skill: "elixir", Weight: 1},
			{Skill: "clojure", Weight: 1},
		},
		Scoring: types.ScoringSpec{
			HardFilters: &types.HardFilters{RequireAllMustHaveSkills: true},
		},
	}

	analysis := analyzeText("Plain Go developer resume text.", nil, role)
	assert.True(t, analysis.Score.BelowThreshold)
	require.NotEmpty(t, analysis.Score.ThresholdReasons)
	assert.Contains(t, analysis.Score.ThresholdReasons[0], "clojure")
	assert.Contains(t, analysis.Score.ThresholdReasons[0], "elixir")
}
