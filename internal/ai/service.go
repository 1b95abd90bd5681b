package ai

import (
	"context"
	"fmt"

	"cvranker/internal/config"
	apperrors "cvranker/internal/errors"
)

// Service wires a configured provider for summary generation.
type Service struct {
	Provider Provider
	cfg      *config.AIConfig
	logger   *apperrors.Logger
}

// NewService creates the summary service for the configured provider.
func NewService(cfg *config.AIConfig, logger *apperrors.Logger) (*Service, error) {
	logger.Debug("Initializing AI summary service",
		"provider", cfg.Provider,
		"model", cfg.Model,
		"timeout", cfg.Timeout,
		"max_retries", cfg.MaxRetries)

	var provider Provider
	var err error
	switch cfg.Provider {
	case "gemini":
		provider, err = NewGeminiProvider(cfg, logger)
	default:
		return nil, apperrors.NewConfigError(apperrors.ErrCodeInvalidConfig,
			fmt.Sprintf("Unsupported AI provider: %s", cfg.Provider), nil)
	}
	if err != nil {
		return nil, apperrors.NewAIError(apperrors.ErrCodeAIServiceFailed,
			"Failed to create AI provider", err)
	}

	return &Service{Provider: provider, cfg: cfg, logger: logger}, nil
}

// GetModelInfo returns model availability for health checks.
func (s *Service) GetModelInfo(ctx context.Context) *ModelInfo {
	return s.Provider.GetModelInfo(ctx)
}
