package ai

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"math/big"
	"net"
	"strings"
	"time"

	"google.golang.org/api/googleapi"
	"google.golang.org/genai"

	"cvranker/internal/config"
	apperrors "cvranker/internal/errors"
	"cvranker/internal/types"
)

// GeminiProvider implements Provider for Google Gemini.
type GeminiProvider struct {
	client  *genai.Client
	cfg     *config.AIConfig
	breaker *summaryBreaker
	logger  *apperrors.Logger
}

var _ Provider = (*GeminiProvider)(nil)

// NewGeminiProvider creates a Gemini-backed summary provider.
func NewGeminiProvider(cfg *config.AIConfig, logger *apperrors.Logger) (*GeminiProvider, error) {
	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey: cfg.APIKey,
	})
	if err != nil {
		return nil, apperrors.NewAIError(apperrors.ErrCodeAIServiceFailed,
			"Failed to create Gemini client", err)
	}

	return &GeminiProvider{
		client:  client,
		cfg:     cfg,
		breaker: newSummaryBreaker(cfg, logger),
		logger:  logger,
	}, nil
}

// SummarizeAnalysis renders a short recruiter-facing narrative for one
// candidate analysis. The analysis JSON is the sole model input; the model
// explains the deterministic verdict, it never changes it.
func (g *GeminiProvider) SummarizeAnalysis(ctx context.Context, analysis types.CandidateAnalysis) (string, *TokenUsage, error) {
	prompt, err := buildSummaryPrompt(analysis)
	if err != nil {
		return "", nil, err
	}

	callCtx, cancel := context.WithTimeout(ctx, g.cfg.Timeout)
	defer cancel()

	temperature := g.cfg.Temperature
	genConfig := &genai.GenerateContentConfig{Temperature: &temperature}

	resp, err := g.executeWithRetry(callCtx, func() (*genai.GenerateContentResponse, error) {
		return g.breaker.Execute(func() (*genai.GenerateContentResponse, error) {
			return g.client.Models.GenerateContent(callCtx, g.cfg.Model,
				genai.Text(prompt), genConfig)
		})
	})
	if err != nil {
		return "", nil, apperrors.NewAIError(apperrors.ErrCodeAIServiceFailed,
			"Summary generation failed", err)
	}

	usage := tokenUsageFrom(resp)
	return strings.TrimSpace(resp.Text()), usage, nil
}

func buildSummaryPrompt(analysis types.CandidateAnalysis) (string, error) {
	payload, err := json.MarshalIndent(analysis, "", "  ")
	if err != nil {
		return "", apperrors.NewInternalError("ENCODE_FAILED", "Cannot encode analysis", err)
	}

	var sb strings.Builder
	sb.WriteString("You are assisting a recruiter reviewing pre-screened candidates.\n")
	sb.WriteString("Below is the structured analysis of one candidate produced by a deterministic resume pipeline.\n")
	sb.WriteString("Write a concise 3-5 sentence summary for the recruiter: overall fit, strongest evidence, ")
	sb.WriteString("main gaps or risks, and whether any hard filters were tripped.\n")
	sb.WriteString("Do not invent facts that are not in the analysis, and do not change any scores.\n\n")
	sb.WriteString("ANALYSIS:\n")
	sb.Write(payload)
	sb.WriteString("\n")
	return sb.String(), nil
}

func tokenUsageFrom(resp *genai.GenerateContentResponse) *TokenUsage {
	if resp == nil || resp.UsageMetadata == nil {
		return nil
	}
	return &TokenUsage{
		InputTokens:  resp.UsageMetadata.PromptTokenCount,
		OutputTokens: resp.UsageMetadata.CandidatesTokenCount,
		TotalTokens:  resp.UsageMetadata.TotalTokenCount,
	}
}

// GetModelInfo checks model availability for health checks.
func (g *GeminiProvider) GetModelInfo(ctx context.Context) *ModelInfo {
	info := &ModelInfo{Name: g.cfg.Model}

	checkCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	model, err := g.client.Models.Get(checkCtx, g.cfg.Model, &genai.GetModelConfig{})
	if err != nil {
		info.Error = fmt.Sprintf("Failed to get model info: %v", err)
		g.logger.Warn("Model availability check failed",
			"model", g.cfg.Model, "error", err.Error())
		return info
	}

	info.Available = true
	info.DisplayName = model.DisplayName
	info.Version = model.Version
	return info
}

// Close releases provider resources.
func (g *GeminiProvider) Close() error {
	return nil
}

// executeWithRetry retries transient failures with exponential backoff and
// jitter. Auth and client errors fail immediately.
func (g *GeminiProvider) executeWithRetry(ctx context.Context, fn func() (*genai.GenerateContentResponse, error)) (*genai.GenerateContentResponse, error) {
	var lastErr error
	retries := 0

	for attempt := 0; attempt <= g.cfg.MaxRetries; attempt++ {
		retries = attempt
		if attempt > 0 {
			g.logger.Warn("Retrying AI summary",
				"attempt", attempt,
				"max_retries", g.cfg.MaxRetries,
				"error", lastErr.Error())

			baseDelay := time.Duration(math.Pow(2, float64(attempt-1))) * time.Second
			jitterMax := big.NewInt(int64(float64(baseDelay) * 0.1))
			jitterBig, _ := rand.Int(rand.Reader, jitterMax)
			backoff := min(baseDelay+time.Duration(jitterBig.Int64()), 30*time.Second)

			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		result, err := fn()
		if err == nil {
			return result, nil
		}
		lastErr = err

		if !isRetryableError(err) {
			break
		}
	}

	return nil, fmt.Errorf("summary failed after %d retries: %w", retries, lastErr)
}

// isRetryableError classifies transient vs permanent failures.
func isRetryableError(err error) bool {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case 429, 500, 502, 503, 504:
			return true
		default:
			return false
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return netErr.Timeout()
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	return false
}
