package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"cvranker/internal/config"
	apperrors "cvranker/internal/errors"
	"cvranker/internal/observability"
	"cvranker/internal/specs"
	"cvranker/internal/types"
)

func testServer(t *testing.T, apiKeys []string) (*Server, *http.ServeMux) {
	t.Helper()

	cfg := &config.Config{}
	cfg.Server.Host = "localhost"
	cfg.Server.Port = "0"
	cfg.Server.MaxRequestSize = 1 << 20
	cfg.Server.APIKeys = apiKeys

	logger, err := apperrors.New("error")
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}

	loaded := &specs.LoadResult{
		Project: &types.ProjectSpec{
			ProjectID:    "test",
			SkillAliases: map[string][]string{"go": {"golang"}},
			Roles: []types.RoleSpec{
				{
					RoleID:             "backend",
					Title:              "Backend Engineer",
					MinYearsExperience: 3,
					MustHaveSkills:     []types.RoleSkill{{Skill: "go", Weight: 1}},
				},
			},
		},
	}

	srv := NewServer(cfg, "test", loaded, nil, logger)

	om, err := observability.NewManager(&config.ObservabilityConfig{})
	if err != nil {
		t.Fatalf("failed to create observability manager: %v", err)
	}
	return srv, srv.setupRoutes(om)
}

func postJSON(t *testing.T, mux *http.ServeMux, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("failed to marshal request: %v", err)
	}
	r := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	r.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		r.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, r)
	return w
}

func TestAnalyzeEndpoint(t *testing.T) {
	_, mux := testServer(t, nil)

	w := postJSON(t, mux, "/api/v1/analyze", AnalyzeRequest{
		CandidateID: "cand-1",
		RoleID:      "backend",
		RawText:     "Senior Go developer\n2018 - present\nGolang microservices.",
		Now:         "2025-06",
	}, nil)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var response analyzeResponse
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if response.CandidateID != "cand-1" {
		t.Errorf("candidateId = %q", response.CandidateID)
	}
	if len(response.Features.MustHave) != 1 || !response.Features.MustHave[0].Matched {
		t.Errorf("expected matched must-have skill, got %+v", response.Features.MustHave)
	}
}

func TestAnalyzeEndpointValidation(t *testing.T) {
	_, mux := testServer(t, nil)

	w := postJSON(t, mux, "/api/v1/analyze", AnalyzeRequest{RoleID: "backend"}, nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("empty rawText: expected 400, got %d", w.Code)
	}

	w = postJSON(t, mux, "/api/v1/analyze", AnalyzeRequest{
		RoleID:  "unknown-role",
		RawText: "some text",
	}, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown role: expected 404, got %d", w.Code)
	}

	w = postJSON(t, mux, "/api/v1/analyze", AnalyzeRequest{
		RoleID:  "backend",
		RawText: "some text",
		Now:     "june 2025",
	}, nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("bad clock: expected 400, got %d", w.Code)
	}
}

func TestRankEndpointOrdersCandidates(t *testing.T) {
	_, mux := testServer(t, nil)

	w := postJSON(t, mux, "/api/v1/rank", RankRequest{
		RoleID: "backend",
		Now:    "2025-06",
		Candidates: []RankCandidate{
			{CandidateID: "weak", RawText: "Accountant. 2023 - 2024."},
			{CandidateID: "strong", RawText: "Senior Go engineer\n2017 - present\nGo services in production."},
			{CandidateID: "empty", RawText: "   "},
		},
	}, nil)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var report types.RankingReport
	if err := json.Unmarshal(w.Body.Bytes(), &report); err != nil {
		t.Fatalf("failed to decode report: %v", err)
	}
	if len(report.Candidates) != 2 {
		t.Fatalf("expected 2 ranked candidates, got %d", len(report.Candidates))
	}
	if report.Candidates[0].Analysis.CandidateID != "strong" {
		t.Errorf("expected strong candidate first, got %q", report.Candidates[0].Analysis.CandidateID)
	}
	if report.Candidates[0].Rank != 1 || report.Candidates[1].Rank != 2 {
		t.Errorf("ranks not sequential: %+v", report.Candidates)
	}
	if len(report.Errors) != 1 {
		t.Errorf("expected 1 error for the empty candidate, got %v", report.Errors)
	}
}

func TestAuthMiddleware(t *testing.T) {
	_, mux := testServer(t, []string{"valid-key-123456"})

	req := AnalyzeRequest{RoleID: "backend", RawText: "Go developer 2019 - present", Now: "2025-06"}

	w := postJSON(t, mux, "/api/v1/analyze", req, nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("missing key: expected 401, got %d", w.Code)
	}

	w = postJSON(t, mux, "/api/v1/analyze", req, map[string]string{"X-API-Key": "wrong"})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("invalid key: expected 401, got %d", w.Code)
	}

	w = postJSON(t, mux, "/api/v1/analyze", req, map[string]string{"X-API-Key": "valid-key-123456"})
	if w.Code != http.StatusOK {
		t.Errorf("valid key: expected 200, got %d: %s", w.Code, w.Body.String())
	}

	w = postJSON(t, mux, "/api/v1/analyze", req, map[string]string{"Authorization": "Bearer valid-key-123456"})
	if w.Code != http.StatusOK {
		t.Errorf("bearer token: expected 200, got %d", w.Code)
	}
}

func TestHealthEndpoint(t *testing.T) {
	_, mux := testServer(t, nil)

	r := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode health response: %v", err)
	}
	if body["status"] != "healthy" {
		t.Errorf("status = %v", body["status"])
	}
}
