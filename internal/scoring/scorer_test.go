package scoring

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cvranker/internal/types"
)

func floatPtr(v float64) *float64 { return &v }
func intPtr(v int) *int           { return &v }

func featuresFixture() *types.Features {
	years := 6.0
	return &types.Features{
		MustHave: []types.SkillMatch{
			{Term: "go", Weight: 3, Matched: true, Evidence: []string{"go line"}},
			{Term: "postgresql", Weight: 2, Matched: true, Evidence: []string{"pg line"}},
		},
		NiceToHave: []types.SkillMatch{
			{Term: "kubernetes", Weight: 1, Matched: false, Evidence: []string{}},
		},
		YearsExperience: &years,
		RelevantExperience: types.RelevantExperience{
			TotalYears:    6.0,
			RelevantYears: 6.0,
			Roles: []types.RoleExperience{
				{Title: "Engineer", Years: 6, Relevant: true, Professional: true, Recency: types.RecencyCurrent},
			},
		},
		SkillDepth: []types.SkillDepth{
			{Skill: "go", DepthScore: 0.8, ContextQuality: types.ContextHigh},
			{Skill: "postgresql", DepthScore: 0.6, ContextQuality: types.ContextMedium},
		},
		Seniority: types.Seniority{Level: types.SenioritySenior, Confidence: 0.9, Evidence: []string{"senior"}},
		Recency:   types.RecencyAnalysis{RecencyScore: 0.9, Trajectory: types.TrajectoryAscending},
		ProjectScale: types.ProjectScale{ScaleScore: 0.6},
		Education:    types.Education{EducationScore: 0.9},
		ParseQuality: types.ParseQuality{Overall: types.ParseHigh, Confidence: 0.8},
	}
}

func seniorRole() *types.RoleSpec {
	return &types.RoleSpec{
		RoleID:             "r1",
		Title:              "Senior Engineer",
		MinYearsExperience: 5,
		MustHaveSkills: []types.RoleSkill{
			{Skill: "go", Weight: 3},
			{Skill: "postgresql", Weight: 2},
		},
		NiceToHaveSkills: []types.RoleSkill{{Skill: "kubernetes", Weight: 1}},
	}
}

func TestDefaultWeightsWhenSumNotPositive(t *testing.T) {
	weights := normalizeWeights(types.ScoringWeights{})
	assert.Equal(t, defaultWeights, weights)

	weights = normalizeWeights(types.ScoringWeights{MustHave: -1})
	assert.Equal(t, defaultWeights, weights)
}

func TestWeightNormalizationSumsToOne(t *testing.T) {
	weights := normalizeWeights(types.ScoringWeights{
		MustHave: 3, NiceToHave: 1, Experience: 2, SkillDepth: 1,
		Seniority: 1, Recency: 1, ProjectScale: 0.5, Education: 0.5,
	})
	sum := weights.MustHave + weights.NiceToHave + weights.Experience +
		weights.SkillDepth + weights.Seniority + weights.Recency +
		weights.ProjectScale + weights.Education
	assert.InDelta(t, 1.0, sum, 0.001)
	assert.Equal(t, 0.3, weights.MustHave)
}

func TestSkillScore(t *testing.T) {
	assert.Equal(t, 1.0, skillScore(nil), "no weight at stake scores 1")
	assert.Equal(t, 0.6, skillScore([]types.SkillMatch{
		{Weight: 3, Matched: true},
		{Weight: 2, Matched: false},
	}))
	assert.Equal(t, 1.0, skillScore([]types.SkillMatch{{Weight: 0, Matched: false}}))
}

func TestExperienceCurve(t *testing.T) {
	six := 6.0
	tests := []struct {
		name     string
		years    *float64
		minYears float64
		expected float64
	}{
		{"zero minimum always satisfied", nil, 0, 1.0},
		{"nil years scores zero", nil, 5, 0.0},
		{"well above bar", floatPtr(9), 5, 1.0},
		{"exactly at bar", floatPtr(5), 5, 0.8},
		{"between 1x and 1.5x", &six, 5, 0.8 + 0.4*0.2},
		{"at 60 percent", floatPtr(3), 5, 0.4},
		{"below 60 percent", floatPtr(2), 5, 0.67 * 0.4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, experienceCurve(tt.years, tt.minYears), 0.0001)
		})
	}
}

func TestExperienceScoreCurrentRoleBonus(t *testing.T) {
	f := featuresFixture()
	// 6/5 = 1.2 -> 0.88, +0.1 current bonus
	assert.InDelta(t, 0.98, experienceScore(f, 5), 0.0001)

	f.RelevantExperience.Roles[0].Recency = types.RecencyRecent
	assert.InDelta(t, 0.93, experienceScore(f, 5), 0.0001)

	f.RelevantExperience.Roles[0].Recency = types.RecencyOld
	assert.InDelta(t, 0.88, experienceScore(f, 5), 0.0001)
}

func TestSeniorityScoreContextual(t *testing.T) {
	senior := types.Seniority{Level: types.SenioritySenior, Confidence: 0.9}
	mid := types.Seniority{Level: types.SeniorityMid, Confidence: 0.8}
	junior := types.Seniority{Level: types.SeniorityJunior, Confidence: 0.7}

	assert.InDelta(t, 0.99, seniorityScore(senior, tierSenior), 0.0001)
	assert.InDelta(t, 0.66, seniorityScore(mid, tierSenior), 0.0001)
	assert.InDelta(t, 0.13, seniorityScore(junior, tierSenior), 0.0001)

	assert.InDelta(t, 0.85, seniorityScore(senior, tierMid), 0.0001)
	assert.InDelta(t, 0.96, seniorityScore(mid, tierMid), 0.0001)

	assert.InDelta(t, 0.6, seniorityScore(senior, tierJunior), 0.0001)
	assert.InDelta(t, 0.9, seniorityScore(junior, tierJunior), 0.0001)
}

func TestDepthScoreDefaultsWhenEmpty(t *testing.T) {
	assert.Equal(t, 0.5, depthScore(nil))

	score := depthScore([]types.SkillDepth{
		{DepthScore: 0.8, ContextQuality: types.ContextHigh},
		{DepthScore: 0.4, ContextQuality: types.ContextLow},
	})
	assert.InDelta(t, 0.6*0.7+0.5*0.3, score, 0.0001)
}

func TestScoreBoundsAndConsistency(t *testing.T) {
	f := featuresFixture()
	result := Score(f, seniorRole())

	assert.GreaterOrEqual(t, result.OverallScore, 0)
	assert.LessOrEqual(t, result.OverallScore, 100)
	assert.LessOrEqual(t, result.OverallScore, result.RawScore)

	weighted := result.WeightsUsed.MustHave*result.Components.MustHave +
		result.WeightsUsed.NiceToHave*result.Components.NiceToHave +
		result.WeightsUsed.Experience*result.Components.Experience +
		result.WeightsUsed.SkillDepth*result.Components.SkillDepth +
		result.WeightsUsed.Seniority*result.Components.Seniority +
		result.WeightsUsed.Recency*result.Components.Recency +
		result.WeightsUsed.ProjectScale*result.Components.ProjectScale +
		result.WeightsUsed.Education*result.Components.Education
	assert.Equal(t, int(math.Round(100*weighted)), result.RawScore)
}

func TestPenaltySubtraction(t *testing.T) {
	f := featuresFixture()
	f.RedFlags = []types.RedFlag{{Type: types.FlagJobHopping, Severity: types.SeverityHigh, Penalty: 10}}

	withFlag := Score(f, seniorRole())
	assert.Equal(t, withFlag.RawScore-10, withFlag.OverallScore)
	assert.Equal(t, 10, withFlag.Penalty)
}

func TestThresholdMustHaveRatio(t *testing.T) {
	f := featuresFixture()
	f.MustHave[1].Matched = false

	role := seniorRole()
	role.Scoring.HardFilters = &types.HardFilters{MinMustHaveMatchRatio: floatPtr(0.8)}

	result := Score(f, role)
	assert.True(t, result.BelowThreshold)
	require.NotEmpty(t, result.ThresholdReasons)
	assert.Contains(t, result.ThresholdReasons[0], "Must-have skill match")
}

func TestThresholdRequireAllListsMissing(t *testing.T) {
	f := featuresFixture()
	f.MustHave[0].Matched = false
	f.MustHave[1].Matched = false

	role := seniorRole()
	role.Scoring.HardFilters = &types.HardFilters{RequireAllMustHaveSkills: true}

	result := Score(f, role)
	assert.True(t, result.BelowThreshold)
	require.NotEmpty(t, result.ThresholdReasons)
	assert.Contains(t, result.ThresholdReasons[0], "go")
	assert.Contains(t, result.ThresholdReasons[0], "postgresql")
}

func TestThresholdBothMustHaveRulesAppend(t *testing.T) {
	f := featuresFixture()
	f.MustHave[0].Matched = false
	f.MustHave[1].Matched = false

	role := seniorRole()
	role.Scoring.HardFilters = &types.HardFilters{
		MinMustHaveMatchRatio:    floatPtr(0.5),
		RequireAllMustHaveSkills: true,
	}

	result := Score(f, role)
	assert.Len(t, result.ThresholdReasons, 2)
}

func TestThresholdRelevantExperience(t *testing.T) {
	f := featuresFixture()
	f.RelevantExperience.RelevantYears = 1.0

	role := seniorRole()
	role.Scoring.HardFilters = &types.HardFilters{MinRelevantExperienceYears: floatPtr(3)}

	result := Score(f, role)
	assert.True(t, result.BelowThreshold)
}

func TestThresholdMaxPenalty(t *testing.T) {
	f := featuresFixture()
	f.RedFlags = []types.RedFlag{
		{Severity: types.SeverityHigh, Penalty: 10},
		{Severity: types.SeverityMedium, Penalty: 5},
	}

	role := seniorRole()
	role.Scoring.HardFilters = &types.HardFilters{MaxRedFlagPenalty: intPtr(10)}

	result := Score(f, role)
	assert.True(t, result.BelowThreshold)
}

func TestThresholdJuniorForSeniorRole(t *testing.T) {
	f := featuresFixture()
	f.Seniority = types.Seniority{Level: types.SeniorityJunior, Confidence: 0.7}

	result := Score(f, seniorRole())
	assert.True(t, result.BelowThreshold)
	assert.Contains(t, result.ThresholdReasons, "Junior-level candidate for senior role")

	// low confidence does not trip the filter
	f.Seniority.Confidence = 0.5
	result = Score(f, seniorRole())
	assert.NotContains(t, result.ThresholdReasons, "Junior-level candidate for senior role")
}

func TestThresholdTwoHighSeverityFlags(t *testing.T) {
	f := featuresFixture()
	f.RedFlags = []types.RedFlag{
		{Severity: types.SeverityHigh, Penalty: 10},
		{Severity: types.SeverityHigh, Penalty: 8},
	}

	result := Score(f, seniorRole())
	assert.True(t, result.BelowThreshold)
}

func TestBelowThresholdImpliesReasons(t *testing.T) {
	f := featuresFixture()
	result := Score(f, seniorRole())
	if result.BelowThreshold {
		assert.NotEmpty(t, result.ThresholdReasons)
	} else {
		assert.Empty(t, result.ThresholdReasons)
	}
}
