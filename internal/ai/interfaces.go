// Package ai is the optional narrative layer: given a finished
// CandidateAnalysis it produces a short recruiter-facing summary through
// Gemini. It never feeds back into scoring; the deterministic core stays
// deterministic whether or not this package is enabled.
package ai

import (
	"context"

	"cvranker/internal/types"
)

// TokenUsage reports model token consumption for one operation.
type TokenUsage struct {
	InputTokens  int32 `json:"inputTokens"`
	OutputTokens int32 `json:"outputTokens"`
	TotalTokens  int32 `json:"totalTokens"`
}

// Provider is the interface AI backends implement.
type Provider interface {
	SummarizeAnalysis(ctx context.Context, analysis types.CandidateAnalysis) (string, *TokenUsage, error)
	GetModelInfo(ctx context.Context) *ModelInfo
	Close() error
}

// ModelInfo describes the configured model for health checks.
type ModelInfo struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName,omitempty"`
	Version     string `json:"version,omitempty"`
	Available   bool   `json:"available"`
	Error       string `json:"error,omitempty"`
}
