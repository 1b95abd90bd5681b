package ai

import (
	"github.com/sony/gobreaker/v2"
	"google.golang.org/genai"

	"cvranker/internal/config"
	apperrors "cvranker/internal/errors"
)

// summaryBreaker wraps Gemini calls with circuit breaker protection so a
// degraded model endpoint cannot stall a whole ranking batch.
type summaryBreaker struct {
	cb *gobreaker.CircuitBreaker[*genai.GenerateContentResponse]
}

func newSummaryBreaker(cfg *config.AIConfig, logger *apperrors.Logger) *summaryBreaker {
	if !cfg.CircuitBreaker.Enabled {
		return nil
	}

	settings := gobreaker.Settings{
		Name:        "AI-summarize",
		MaxRequests: cfg.CircuitBreaker.MaxRequests,
		Interval:    cfg.CircuitBreaker.Interval,
		Timeout:     cfg.CircuitBreaker.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= cfg.CircuitBreaker.MinRequests &&
				failureRatio >= cfg.CircuitBreaker.FailureThreshold
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Info("Circuit breaker state changed",
				"name", name,
				"from", from.String(),
				"to", to.String(),
				"failure_threshold", cfg.CircuitBreaker.FailureThreshold)
		},
	}

	return &summaryBreaker{cb: gobreaker.NewCircuitBreaker[*genai.GenerateContentResponse](settings)}
}

// Execute runs fn under the breaker; a nil breaker executes directly.
func (sb *summaryBreaker) Execute(fn func() (*genai.GenerateContentResponse, error)) (*genai.GenerateContentResponse, error) {
	if sb == nil || sb.cb == nil {
		return fn()
	}
	return sb.cb.Execute(fn)
}

// IsHealthy reports whether the breaker is closed.
func (sb *summaryBreaker) IsHealthy() bool {
	if sb == nil || sb.cb == nil {
		return true
	}
	return sb.cb.State() == gobreaker.StateClosed
}

// Stats returns breaker statistics for the stats endpoint.
func (sb *summaryBreaker) Stats() map[string]any {
	if sb == nil || sb.cb == nil {
		return map[string]any{"enabled": false}
	}
	return map[string]any{
		"name":    sb.cb.Name(),
		"state":   sb.cb.State().String(),
		"counts":  sb.cb.Counts(),
		"enabled": true,
	}
}
