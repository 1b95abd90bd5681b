package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cvranker/internal/types"
)

func TestShortTermWordBoundaries(t *testing.T) {
	ix := NewIndex("We use Google Analytics daily")
	_, found := ix.FindTerm("go")
	assert.False(t, found, "\"go\" must not match inside \"google\"")

	ix = NewIndex("React, Node.js, Go, TypeScript")
	offset, found := ix.FindTerm("go")
	require.True(t, found)
	assert.Equal(t, "Go", ix.Text()[offset:offset+2])
}

func TestExactMatchIsDiacriticInsensitive(t *testing.T) {
	ix := NewIndex("Développement d'applications métier")
	_, found := ix.FindTerm("developpement")
	assert.True(t, found)
}

func TestLongTermSubstringMatch(t *testing.T) {
	ix := NewIndex("Extensive PostgreSQL tuning work")
	_, found := ix.FindTerm("postgresql")
	assert.True(t, found)

	// long terms are not boundary-guarded: postgres matches postgresql
	_, found = ix.FindTerm("postgres")
	assert.True(t, found)
}

func TestFuzzyLineCatchesTypos(t *testing.T) {
	ix := NewIndex("Worked with Kubernets clusters in production")

	offset, score, found := ix.FuzzyLine("kubernetes")
	require.True(t, found)
	assert.LessOrEqual(t, score, 0.25)
	assert.Equal(t, 0, offset)
}

func TestFuzzyRequiresMinTermLength(t *testing.T) {
	ix := NewIndex("Gx development")
	_, _, found := ix.FuzzyLine("go")
	assert.False(t, found)
}

func TestFuzzyRejectsDistantTerms(t *testing.T) {
	ix := NewIndex("Completely unrelated prose about gardening")
	_, _, found := ix.FuzzyLine("kubernetes")
	assert.False(t, found)
}

func TestMatchSkillExactBeatsFuzzy(t *testing.T) {
	ix := NewIndex("Senior Golang developer\nKubernets admin")

	m := MatchSkill(ix, types.RoleSkill{Skill: "golang", Weight: 1}, nil)
	require.True(t, m.Matched)
	require.NotEmpty(t, m.Evidence)
	assert.Equal(t, "Senior Golang developer", m.Evidence[0])
}

func TestMatchSkillViaAlias(t *testing.T) {
	ix := NewIndex("Led the team. Golang services at scale.")

	unaliased := MatchSkill(ix, types.RoleSkill{Skill: "go", Weight: 1}, nil)
	assert.False(t, unaliased.Matched)

	aliased := MatchSkill(ix, types.RoleSkill{Skill: "go", Weight: 1}, []string{"golang"})
	require.True(t, aliased.Matched)
	assert.NotEmpty(t, aliased.Evidence)
}

func TestAliasExpansionIsMonotone(t *testing.T) {
	ix := NewIndex("Years of golang and python work")

	skills := []string{"go", "python", "rust"}
	aliases := map[string][]string{"go": {"golang"}}
	more := map[string][]string{"go": {"golang"}, "rust": {"rustlang"}}

	for _, skill := range skills {
		base := MatchSkill(ix, types.RoleSkill{Skill: skill, Weight: 1}, aliases[skill])
		expanded := MatchSkill(ix, types.RoleSkill{Skill: skill, Weight: 1}, more[skill])
		if base.Matched {
			assert.True(t, expanded.Matched, "adding aliases must never unmatch %q", skill)
		}
	}
}

func TestMatchSkillUnmatchedHasEmptyEvidence(t *testing.T) {
	ix := NewIndex("Nothing relevant here")
	m := MatchSkill(ix, types.RoleSkill{Skill: "terraform", Weight: 2}, nil)
	assert.False(t, m.Matched)
	assert.Empty(t, m.Evidence)
	assert.Equal(t, 2.0, m.Weight)
}

func TestNegativeWeightClamped(t *testing.T) {
	ix := NewIndex("terraform modules")
	m := MatchSkill(ix, types.RoleSkill{Skill: "terraform", Weight: -3}, nil)
	assert.Equal(t, 0.0, m.Weight)
	assert.True(t, m.Matched)
}

func TestMatchKeyword(t *testing.T) {
	ix := NewIndex("Payments platform built on microservices")

	hit := MatchKeyword(ix, "microservices")
	require.True(t, hit.Matched)
	assert.NotEmpty(t, hit.Evidence)

	miss := MatchKeyword(ix, "blockchain")
	assert.False(t, miss.Matched)
	assert.Empty(t, miss.Evidence)
}

func TestMentions(t *testing.T) {
	ix := NewIndex("Go services. More Go code. Go everywhere. Google too.")
	offsets := ix.Mentions("go")
	assert.Len(t, offsets, 3, "boundary-guarded mentions must skip google")
}

func TestEvidenceIsSubstringOfLine(t *testing.T) {
	text := "First line\nSenior Golang developer in Paris\nLast line"
	ix := NewIndex(text)
	m := MatchSkill(ix, types.RoleSkill{Skill: "golang", Weight: 1}, nil)
	require.True(t, m.Matched)
	assert.Contains(t, text, m.Evidence[0])
}
