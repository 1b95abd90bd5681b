package ranker

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cvranker/internal/types"
)

func TestListCandidates(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.pdf", "a.PDF", "notes.txt", "c.pdf"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0600))
	}
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "sub"), 0750))

	paths, err := ListCandidates(dir)
	require.NoError(t, err)
	require.Len(t, paths, 3)
	assert.Equal(t, "a.PDF", filepath.Base(paths[0]))
	assert.Equal(t, "b.pdf", filepath.Base(paths[1]))
	assert.Equal(t, "c.pdf", filepath.Base(paths[2]))
}

func TestCandidateID(t *testing.T) {
	assert.Equal(t, "jane-smith", CandidateID("/cv/jane-smith.pdf"))
	assert.Equal(t, "john.doe", CandidateID("john.doe.PDF"))
}

func TestSortAnalysesIsDeterministic(t *testing.T) {
	analyses := []types.CandidateAnalysis{
		{CandidateID: "charlie", Score: types.ScoreResult{OverallScore: 70}},
		{CandidateID: "alice", Score: types.ScoreResult{OverallScore: 85}},
		{CandidateID: "bob", Score: types.ScoreResult{OverallScore: 85}},
	}

	sortAnalyses(analyses)

	assert.Equal(t, "alice", analyses[0].CandidateID, "ties break by candidate id")
	assert.Equal(t, "bob", analyses[1].CandidateID)
	assert.Equal(t, "charlie", analyses[2].CandidateID)
}

func TestAnalyzeTextEndToEnd(t *testing.T) {
	role := &types.RoleSpec{
		RoleID:             "backend",
		Title:              "Backend Engineer",
		MinYearsExperience: 3,
		MustHaveSkills:     []types.RoleSkill{{Skill: "go", Weight: 1}},
	}

	analysis := AnalyzeText("cand-1", "Senior Go developer\n2018 - present\nBuilding APIs.",
		nil, role, types.YearMonth{Year: 2025, Month: 6})

	assert.Equal(t, "cand-1", analysis.CandidateID)
	assert.Equal(t, "backend", analysis.RoleID)
	assert.True(t, analysis.Features.MustHave[0].Matched)
	assert.Greater(t, analysis.Score.OverallScore, 0)
}
