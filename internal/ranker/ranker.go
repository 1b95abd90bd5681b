// Package ranker analyzes a folder of candidate PDFs against one role and
// produces a deterministically ordered ranking. Candidates are analyzed in
// parallel, one per worker; analysis itself shares no mutable state, so
// the only coordination is the result slice.
package ranker

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"cvranker/internal/analyzer"
	"cvranker/internal/cache"
	apperrors "cvranker/internal/errors"
	"cvranker/internal/extract"
	"cvranker/internal/textnorm"
	"cvranker/internal/types"
)

// Ranker runs the extraction + analysis pipeline over candidate folders.
type Ranker struct {
	extractor *extract.Extractor
	store     *cache.Store
	workers   int
	logger    *apperrors.Logger
}

// New creates a ranker with the given worker count.
func New(extractor *extract.Extractor, store *cache.Store, workers int, logger *apperrors.Logger) *Ranker {
	if workers < 1 {
		workers = 1
	}
	return &Ranker{extractor: extractor, store: store, workers: workers, logger: logger}
}

// ListCandidates enumerates candidate PDFs in a folder, sorted by name.
func ListCandidates(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, apperrors.NewIOError(apperrors.ErrCodeFileNotFound,
			"Cannot read candidates directory: "+dir, err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(entry.Name()), ".pdf") {
			paths = append(paths, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(paths)
	return paths, nil
}

// CandidateID derives the candidate identifier from the PDF filename.
func CandidateID(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// RankFolder extracts, analyzes and ranks every PDF in the folder.
// Per-candidate failures are reported in the result without aborting the
// batch. The clock is injected so reruns reproduce the same report.
func (r *Ranker) RankFolder(ctx context.Context, dir string, project *types.ProjectSpec, role *types.RoleSpec, now types.YearMonth) (*types.RankingReport, error) {
	paths, err := ListCandidates(dir)
	if err != nil {
		return nil, err
	}

	report := &types.RankingReport{RoleID: role.RoleID, RoleTitle: role.Title}

	var mu sync.Mutex
	analyses := make([]types.CandidateAnalysis, 0, len(paths))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(r.workers)
	for _, path := range paths {
		group.Go(func() error {
			analysis, err := r.analyzeFile(groupCtx, path, project, role, now)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				report.Errors = append(report.Errors, fmt.Sprintf("%s: %v", CandidateID(path), err))
				return nil
			}
			analyses = append(analyses, *analysis)
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	sortAnalyses(analyses)
	for i, analysis := range analyses {
		report.Candidates = append(report.Candidates, types.RankedCandidate{
			Rank:     i + 1,
			Analysis: analysis,
		})
	}
	sort.Strings(report.Errors)
	return report, nil
}

// AnalyzeText runs the core pipeline for already-extracted text.
func AnalyzeText(candidateID, rawText string, project *types.ProjectSpec, role *types.RoleSpec, now types.YearMonth) types.CandidateAnalysis {
	return analyzer.Analyze(types.AnalyzeInput{
		CandidateID: candidateID,
		RawText:     rawText,
		Project:     project,
		Role:        role,
		Now:         now,
	})
}

func (r *Ranker) analyzeFile(ctx context.Context, path string, project *types.ProjectSpec, role *types.RoleSpec, now types.YearMonth) (*types.CandidateAnalysis, error) {
	candidateID := CandidateID(path)

	sourceHash, err := cache.HashFile(path)
	if err != nil {
		return nil, err
	}

	var text string
	if record := r.store.Get(sourceHash); record != nil {
		text = record.NormalizedText
		r.logger.Debug("Using cached text", "candidate", candidateID)
	} else {
		result, err := r.extractor.Extract(ctx, path)
		if err != nil {
			return nil, err
		}
		text = textnorm.Normalize(result.RawText)
		if err := r.store.Put(candidateID, sourceHash, text, result.PageCount, result.UsedOCR, time.Now()); err != nil {
			r.logger.LogError(err, "Failed to write cache record", "candidate", candidateID)
		}
	}

	analysis := AnalyzeText(candidateID, text, project, role, now)
	return &analysis, nil
}

// sortAnalyses orders by score descending, then candidate id ascending so
// ties break the same way on every run.
func sortAnalyses(analyses []types.CandidateAnalysis) {
	sort.Slice(analyses, func(i, j int) bool {
		if analyses[i].Score.OverallScore != analyses[j].Score.OverallScore {
			return analyses[i].Score.OverallScore > analyses[j].Score.OverallScore
		}
		return analyses[i].CandidateID < analyses[j].CandidateID
	})
}
