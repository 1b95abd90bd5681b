package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"cvranker/internal/common"
	"cvranker/internal/extract"
	"cvranker/internal/ranker"
	"cvranker/internal/specs"
	"cvranker/internal/types"

	"github.com/spf13/cobra"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [resume-file]",
	Short: "Analyze one resume against a role",
	Long: `Analyze a single resume against a role from the specs directory.
The input may be a PDF (text is extracted, with OCR fallback when
configured) or an already-extracted text file. The output is the full
explainable analysis: evidence-backed skill matches, experience, seniority,
red flags and the final score.`,
	Args: cobra.ExactArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfigFromContext(cmd.Context())
		if analyzeConfig.OutputFormat == "" {
			analyzeConfig.OutputFormat = cfg.App.DefaultFormat
		}
		return common.ValidateOutputFormat(analyzeConfig.OutputFormat, cfg.App.SupportedFormats)
	},
	RunE: runAnalyze,
}

var (
	analyzeConfig common.CommandConfig
	analyzeRoleID string
	analyzeNow    string
)

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeConfig.OutputFile, "output", "o", "", "Output file path (default: stdout)")
	analyzeCmd.Flags().StringVar(&analyzeConfig.OutputFormat, "format", "", "Output format: json, text, or markdown")
	analyzeCmd.Flags().StringVarP(&analyzeRoleID, "role", "r", "", "Role ID from the specs directory (required)")
	analyzeCmd.Flags().StringVar(&analyzeNow, "now", "", "Clock override as YYYY-MM for reproducible runs")
	_ = analyzeCmd.MarkFlagRequired("role")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg := getConfigFromContext(cmd.Context())
	logger := getLoggerFromContext(cmd.Context())

	loaded, err := specs.NewLoader(cfg.Specs.Dir, logger).Load()
	if err != nil {
		return fmt.Errorf("failed to load specs: %w", err)
	}
	role, err := loaded.RoleByID(analyzeRoleID)
	if err != nil {
		return err
	}

	now, err := resolveClock(analyzeNow)
	if err != nil {
		return err
	}

	path := args[0]
	candidateID := ranker.CandidateID(path)

	// PDFs go through extraction; anything else is treated as raw text.
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		extractor := extract.New(&cfg.Extract, logger)
		result, err := extractor.Extract(cmd.Context(), path)
		if err != nil {
			return fmt.Errorf("failed to extract text: %w", err)
		}
		logger.Info("Extracted resume text",
			"candidate", candidateID,
			"pages", result.PageCount,
			"used_ocr", result.UsedOCR,
			"chars", len(result.RawText))

		analysis := ranker.AnalyzeText(candidateID, result.RawText, loaded.Project, role, now)
		outputHandler := common.NewOutputHandler(logger)
		return outputHandler.HandleOutput(analysis, analyzeConfig)
	}

	createInput := func(contents []string) (string, error) {
		if len(contents) != 1 {
			return "", fmt.Errorf("expected 1 file path, got %d", len(contents))
		}
		return contents[0], nil
	}

	logDetails := func(rawText string, cfg common.CommandConfig) {
		logger.Info("Starting candidate analysis",
			"candidate", candidateID,
			"role", role.RoleID,
			"text_chars", len(rawText),
			"output_format", cfg.OutputFormat)
	}

	analyzeOperation := func(ctx context.Context, rawText string) (types.CandidateAnalysis, error) {
		return ranker.AnalyzeText(candidateID, rawText, loaded.Project, role, now), nil
	}

	if err := common.RunPipelineCommand(
		cmd.Context(),
		logger,
		analyzeConfig,
		args,
		createInput,
		analyzeOperation,
		logDetails,
	); err != nil {
		return fmt.Errorf("failed to analyze resume: %w", err)
	}
	logger.Info("Candidate analysis completed successfully")
	return nil
}
