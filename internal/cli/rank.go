package cli

import (
	"fmt"

	"cvranker/internal/cache"
	"cvranker/internal/common"
	"cvranker/internal/extract"
	"cvranker/internal/ranker"
	"cvranker/internal/specs"

	"github.com/spf13/cobra"
)

var rankCmd = &cobra.Command{
	Use:   "rank [candidates-dir]",
	Short: "Rank a folder of candidate PDFs against a role",
	Long: `Analyze every PDF in a folder against one role and print a ranked
report. Candidates are processed in parallel; extraction results are cached
so reruns skip the PDF work. Per-candidate failures are reported without
aborting the batch.`,
	Args: cobra.ExactArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfigFromContext(cmd.Context())
		if rankConfig.OutputFormat == "" {
			rankConfig.OutputFormat = cfg.App.DefaultFormat
		}
		return common.ValidateOutputFormat(rankConfig.OutputFormat, cfg.App.SupportedFormats)
	},
	RunE: runRank,
}

var (
	rankConfig common.CommandConfig
	rankRoleID string
	rankNow    string
)

func init() {
	rankCmd.Flags().StringVarP(&rankConfig.OutputFile, "output", "o", "", "Output file path (default: stdout)")
	rankCmd.Flags().StringVar(&rankConfig.OutputFormat, "format", "", "Output format: json, text, or markdown")
	rankCmd.Flags().StringVarP(&rankRoleID, "role", "r", "", "Role ID from the specs directory (required)")
	rankCmd.Flags().StringVar(&rankNow, "now", "", "Clock override as YYYY-MM for reproducible runs")
	_ = rankCmd.MarkFlagRequired("role")
}

func runRank(cmd *cobra.Command, args []string) error {
	cfg := getConfigFromContext(cmd.Context())
	logger := getLoggerFromContext(cmd.Context())

	loaded, err := specs.NewLoader(cfg.Specs.Dir, logger).Load()
	if err != nil {
		return fmt.Errorf("failed to load specs: %w", err)
	}
	role, err := loaded.RoleByID(rankRoleID)
	if err != nil {
		return err
	}

	now, err := resolveClock(rankNow)
	if err != nil {
		return err
	}

	extractor := extract.New(&cfg.Extract, logger)
	store := cache.NewStore(cfg.Cache.Dir, cfg.Cache.Enabled, logger)
	r := ranker.New(extractor, store, cfg.Ranker.Workers, logger)

	logger.Info("Starting batch ranking",
		"dir", args[0],
		"role", role.RoleID,
		"workers", cfg.Ranker.Workers)

	report, err := r.RankFolder(cmd.Context(), args[0], loaded.Project, role, now)
	if err != nil {
		return fmt.Errorf("failed to rank candidates: %w", err)
	}

	logger.Info("Batch ranking completed",
		"ranked", len(report.Candidates),
		"errors", len(report.Errors))

	outputHandler := common.NewOutputHandler(logger)
	return outputHandler.HandleOutput(*report, rankConfig)
}
