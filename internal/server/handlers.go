package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"sort"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"cvranker/internal/observability"
	"cvranker/internal/ranker"
	"cvranker/internal/types"
)

// parseNow resolves the optional "YYYY-MM" clock override. Batch callers
// pin it to make reruns reproducible; otherwise the wall clock is used.
func parseNow(value string) (types.YearMonth, error) {
	if value == "" {
		now := time.Now()
		return types.YearMonth{Year: now.Year(), Month: int(now.Month())}, nil
	}
	parsed, err := time.Parse("2006-01", value)
	if err != nil {
		return types.YearMonth{}, fmt.Errorf("invalid now value %q (want YYYY-MM)", value)
	}
	return types.YearMonth{Year: parsed.Year(), Month: int(parsed.Month())}, nil
}

// analyzeResponse wraps an analysis with its optional AI narrative.
type analyzeResponse struct {
	types.CandidateAnalysis
	Summary string `json:"summary,omitempty"`
}

// createAnalyzeHandler serves single-candidate analysis of raw text.
func (s *Server) createAnalyzeHandler(om *observability.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		tracer := om.Tracer("cvranker.api")
		ctx, span := tracer.Start(ctx, "api.analyze")
		defer span.End()

		var req AnalyzeRequest
		if err := parseJSONRequest(r, &req); err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeErrorResponse(w, "Invalid request body", err.Error(), http.StatusBadRequest)
			return
		}

		if strings.TrimSpace(req.RawText) == "" {
			err := fmt.Errorf("missing raw text")
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeErrorResponse(w, "Missing raw text", "rawText field is required", http.StatusBadRequest)
			return
		}

		loaded := s.Specs()
		role, err := loaded.RoleByID(req.RoleID)
		if err != nil {
			span.RecordError(err)
			writeErrorResponse(w, "Unknown role", err.Error(), http.StatusNotFound)
			return
		}

		now, err := parseNow(req.Now)
		if err != nil {
			span.RecordError(err)
			writeErrorResponse(w, "Invalid clock", err.Error(), http.StatusBadRequest)
			return
		}

		span.SetAttributes(
			attribute.Int("request.text_length", len(req.RawText)),
			attribute.String("request.role_id", role.RoleID),
		)

		started := time.Now()
		analysis := ranker.AnalyzeText(req.CandidateID, req.RawText, loaded.Project, role, now)
		om.RecordAnalysis(ctx, role.RoleID, analysis.Score.OverallScore,
			analysis.Score.BelowThreshold, time.Since(started))

		response := analyzeResponse{CandidateAnalysis: analysis}
		if req.Summary && s.Summarizer != nil {
			summary, usage, err := s.Summarizer.Provider.SummarizeAnalysis(ctx, analysis)
			if err != nil {
				s.Logger.LogError(err, "AI summary failed; returning analysis without it",
					"candidate", req.CandidateID)
			} else {
				response.Summary = summary
				if usage != nil {
					s.Logger.Info("AI token usage",
						"input_tokens", usage.InputTokens,
						"output_tokens", usage.OutputTokens,
						"total_tokens", usage.TotalTokens)
				}
			}
		}

		span.SetAttributes(
			attribute.Bool("success", true),
			attribute.Int("analysis.score", analysis.Score.OverallScore),
			attribute.Bool("analysis.below_threshold", analysis.Score.BelowThreshold),
		)

		writeJSON(w, response)
	}
}

// createRankHandler ranks a batch of raw texts against one role.
func (s *Server) createRankHandler(om *observability.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		tracer := om.Tracer("cvranker.api")
		ctx, span := tracer.Start(ctx, "api.rank")
		defer span.End()

		var req RankRequest
		if err := parseJSONRequest(r, &req); err != nil {
			span.RecordError(err)
			writeErrorResponse(w, "Invalid request body", err.Error(), http.StatusBadRequest)
			return
		}

		if len(req.Candidates) == 0 {
			err := fmt.Errorf("missing candidates")
			span.RecordError(err)
			writeErrorResponse(w, "Missing candidates", "candidates field is required", http.StatusBadRequest)
			return
		}

		loaded := s.Specs()
		role, err := loaded.RoleByID(req.RoleID)
		if err != nil {
			span.RecordError(err)
			writeErrorResponse(w, "Unknown role", err.Error(), http.StatusNotFound)
			return
		}

		now, err := parseNow(req.Now)
		if err != nil {
			span.RecordError(err)
			writeErrorResponse(w, "Invalid clock", err.Error(), http.StatusBadRequest)
			return
		}

		span.SetAttributes(
			attribute.Int("request.candidates", len(req.Candidates)),
			attribute.String("request.role_id", role.RoleID),
		)

		report := &types.RankingReport{RoleID: role.RoleID, RoleTitle: role.Title}
		analyses := make([]types.CandidateAnalysis, 0, len(req.Candidates))
		for _, candidate := range req.Candidates {
			if strings.TrimSpace(candidate.RawText) == "" {
				report.Errors = append(report.Errors,
					fmt.Sprintf("%s: empty raw text", candidate.CandidateID))
				continue
			}
			started := time.Now()
			analysis := ranker.AnalyzeText(candidate.CandidateID, candidate.RawText, loaded.Project, role, now)
			om.RecordAnalysis(ctx, role.RoleID, analysis.Score.OverallScore,
				analysis.Score.BelowThreshold, time.Since(started))
			analyses = append(analyses, analysis)
		}

		sort.Slice(analyses, func(i, j int) bool {
			if analyses[i].Score.OverallScore != analyses[j].Score.OverallScore {
				return analyses[i].Score.OverallScore > analyses[j].Score.OverallScore
			}
			return analyses[i].CandidateID < analyses[j].CandidateID
		})
		for i, analysis := range analyses {
			report.Candidates = append(report.Candidates, types.RankedCandidate{
				Rank:     i + 1,
				Analysis: analysis,
			})
		}

		if metrics := om.GetMetrics(); metrics != nil {
			metrics.RankRequests.Add(ctx, 1,
				metric.WithAttributes(attribute.String("role_id", role.RoleID)))
		}

		span.SetAttributes(
			attribute.Bool("success", true),
			attribute.Int("response.ranked", len(report.Candidates)),
		)

		writeJSON(w, report)
	}
}

// healthHandler reports service and dependency health.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	loaded := s.Specs()
	response := map[string]any{
		"status":  "healthy",
		"service": "cvranker",
		"version": s.Version,
		"specs": map[string]any{
			"project":     loaded.Project.ProjectID,
			"roles":       len(loaded.Project.Roles),
			"load_errors": len(loaded.Errors),
		},
	}

	if s.Summarizer != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
		defer cancel()
		response["ai_model"] = s.Summarizer.GetModelInfo(ctx)
	}

	if len(loaded.Project.Roles) == 0 {
		response["status"] = "degraded"
		w.WriteHeader(http.StatusServiceUnavailable)
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		log.Printf("Failed to encode health response: %v", err)
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// statsHandler exposes server statistics including rate limiting info.
func (s *Server) statsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := map[string]any{
		"service": "cvranker",
		"version": s.Version,
		"server": map[string]any{
			"max_request_size_bytes": s.MaxRequestSize,
		},
	}

	if s.RateLimiter != nil {
		response["rate_limiting"] = s.RateLimiter.GetStats()
	} else {
		response["rate_limiting"] = map[string]any{"enabled": false}
	}

	if s.RateLimit != nil {
		response["rate_limit_config"] = map[string]any{
			"enabled":          s.RateLimit.Enabled,
			"requests_per_min": s.RateLimit.RequestsPerMin,
			"burst_capacity":   s.RateLimit.BurstCapacity,
			"by_ip":            s.RateLimit.ByIP,
			"by_api_key":       s.RateLimit.ByAPIKey,
		}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		log.Printf("Failed to encode stats response: %v", err)
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// parseJSONRequest parses a JSON request body into the provided struct.
func parseJSONRequest(r *http.Request, v any) error {
	if r.Header.Get("Content-Type") != "application/json" {
		return fmt.Errorf("content-type must be application/json")
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return fmt.Errorf("request body too large (limit is %d bytes)", maxBytesErr.Limit)
		}
		return fmt.Errorf("failed to read request body: %w", err)
	}
	defer func() {
		if err := r.Body.Close(); err != nil {
			log.Printf("Failed to close request body: %v", err)
		}
	}()

	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("failed to parse JSON: %w", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// writeErrorResponse writes a standardized error response.
func writeErrorResponse(w http.ResponseWriter, error, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	response := ErrorResponse{Error: error, Message: message}
	if err := json.NewEncoder(w).Encode(response); err != nil {
		log.Printf("Failed to encode error response: %v", err)
		http.Error(w, "Failed to encode error response", http.StatusInternalServerError)
	}
}
