// Package analyzer is the stateless core entry point: it normalizes raw
// extracted text, runs feature extraction and scoring, and assembles an
// immutable CandidateAnalysis. Given identical input (clock included) the
// output is byte-identical; nothing here reads ambient state.
package analyzer

import (
	"cvranker/internal/features"
	"cvranker/internal/scoring"
	"cvranker/internal/textnorm"
	"cvranker/internal/types"
)

// Analyze runs the full pipeline for one candidate. Malformed input never
// aborts the analysis; degraded inputs surface through parse quality and
// warnings instead.
func Analyze(input types.AnalyzeInput) types.CandidateAnalysis {
	role := input.Role
	if role == nil {
		role = &types.RoleSpec{}
	}

	text := textnorm.Normalize(input.RawText)

	extractor := features.New(input.Now)
	f := extractor.Extract(text, input.Project, role)
	score := scoring.Score(&f, role)

	return types.CandidateAnalysis{
		CandidateID: input.CandidateID,
		RoleID:      role.RoleID,
		Features:    f,
		Score:       score,
	}
}
