// Package server exposes the analysis pipeline over HTTP: single-candidate
// analysis, batch ranking of raw texts, health and stats. The server holds
// the loaded specs and swaps them atomically on reload.
package server

import (
	"sync/atomic"
	"time"

	"cvranker/internal/ai"
	"cvranker/internal/config"
	apperrors "cvranker/internal/errors"
	"cvranker/internal/specs"
)

// AnalyzeRequest asks for one candidate analysis from raw text.
type AnalyzeRequest struct {
	CandidateID string `json:"candidateId"`
	RoleID      string `json:"roleId"`
	RawText     string `json:"rawText"`
	Now         string `json:"now,omitempty"`     // "YYYY-MM"; defaults to wall clock
	Summary     bool   `json:"summary,omitempty"` // request an AI narrative
}

// RankRequest asks for a ranked comparison of several raw texts.
type RankRequest struct {
	RoleID     string          `json:"roleId"`
	Candidates []RankCandidate `json:"candidates"`
	Now        string          `json:"now,omitempty"`
}

// RankCandidate is one entry of a RankRequest.
type RankCandidate struct {
	CandidateID string `json:"candidateId"`
	RawText     string `json:"rawText"`
}

// ErrorResponse is the JSON error envelope.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// Server holds configuration and shared state for the HTTP server.
type Server struct {
	Host    string
	Port    string
	Version string

	AppConfig *config.Config
	TLSConfig config.TLSConfig

	// API Authentication
	APIKeys map[string]bool

	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	MaxRequestSize int64

	RateLimit   *config.RateLimitConfig
	RateLimiter *RateLimiter

	// Loaded specifications, replaced wholesale on reload.
	specsResult atomic.Pointer[specs.LoadResult]

	// Optional AI summarizer, nil when disabled.
	Summarizer *ai.Service

	Logger *apperrors.Logger
}

// NewServer creates a Server from the application configuration.
func NewServer(cfg *config.Config, version string, loaded *specs.LoadResult, summarizer *ai.Service, logger *apperrors.Logger) *Server {
	apiKeyMap := make(map[string]bool)
	for _, key := range cfg.Server.APIKeys {
		if key != "" {
			apiKeyMap[key] = true
		}
	}

	var rateLimiter *RateLimiter
	if cfg.Server.RateLimit.Enabled {
		rateLimiter = NewRateLimiter(
			cfg.Server.RateLimit.RequestsPerMin,
			cfg.Server.RateLimit.BurstCapacity,
			logger,
		)
	}

	s := &Server{
		Host:           cfg.Server.Host,
		Port:           cfg.Server.Port,
		Version:        version,
		AppConfig:      cfg,
		TLSConfig:      cfg.Server.TLS,
		APIKeys:        apiKeyMap,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		MaxRequestSize: cfg.Server.MaxRequestSize,
		RateLimit:      &cfg.Server.RateLimit,
		RateLimiter:    rateLimiter,
		Summarizer:     summarizer,
		Logger:         logger,
	}
	s.specsResult.Store(loaded)
	return s
}

// Specs returns the currently loaded specifications.
func (s *Server) Specs() *specs.LoadResult {
	return s.specsResult.Load()
}

// ReplaceSpecs swaps in freshly reloaded specifications.
func (s *Server) ReplaceSpecs(loaded *specs.LoadResult) {
	s.specsResult.Store(loaded)
	s.Logger.Info("Server specs replaced", "roles", len(loaded.Project.Roles))
}
