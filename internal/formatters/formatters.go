package formatters

import (
	"encoding/json"
	"fmt"
	"strings"

	"cvranker/internal/types"
)

// Formatter interface for different output formats
type Formatter interface {
	Format(data any) (string, error)
	SupportedType() string
}

// FormatterRegistry manages all available formatters
type FormatterRegistry struct {
	formatters map[string]map[string]Formatter // format -> type -> formatter
}

// NewFormatterRegistry creates a new formatter registry with default formatters
func NewFormatterRegistry() *FormatterRegistry {
	registry := &FormatterRegistry{
		formatters: make(map[string]map[string]Formatter),
	}

	registry.RegisterFormatter("json", "any", &JSONFormatter{})
	registry.RegisterFormatter("text", "CandidateAnalysis", &AnalysisTextFormatter{})
	registry.RegisterFormatter("markdown", "CandidateAnalysis", &AnalysisMarkdownFormatter{})
	registry.RegisterFormatter("text", "RankingReport", &RankingTextFormatter{})
	registry.RegisterFormatter("markdown", "RankingReport", &RankingMarkdownFormatter{})

	return registry
}

// RegisterFormatter registers a new formatter for a specific format and data type
func (fr *FormatterRegistry) RegisterFormatter(format, dataType string, formatter Formatter) {
	if fr.formatters[format] == nil {
		fr.formatters[format] = make(map[string]Formatter)
	}
	fr.formatters[format][dataType] = formatter
}

// Format formats data using the appropriate formatter
func (fr *FormatterRegistry) Format(data any, format string) (string, error) {
	dataType := getDataType(data)

	if formatters, exists := fr.formatters[format]; exists {
		if formatter, exists := formatters[dataType]; exists {
			return formatter.Format(data)
		}
		if formatter, exists := formatters["any"]; exists {
			return formatter.Format(data)
		}
	}

	return "", fmt.Errorf("no formatter found for format '%s' and type '%s'", format, dataType)
}

// GetSupportedFormats returns all supported formats
func (fr *FormatterRegistry) GetSupportedFormats() []string {
	formats := make([]string, 0, len(fr.formatters))
	for format := range fr.formatters {
		formats = append(formats, format)
	}
	return formats
}

func getDataType(data any) string {
	switch data.(type) {
	case types.CandidateAnalysis:
		return "CandidateAnalysis"
	case types.RankingReport:
		return "RankingReport"
	default:
		return "any"
	}
}

// JSONFormatter handles JSON formatting for any data type
type JSONFormatter struct{}

func (jf *JSONFormatter) Format(data any) (string, error) {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", err
	}
	return string(jsonData), nil
}

func (jf *JSONFormatter) SupportedType() string {
	return "any"
}

// AnalysisTextFormatter renders one candidate analysis as plain text
type AnalysisTextFormatter struct{}

func (atf *AnalysisTextFormatter) Format(data any) (string, error) {
	analysis, ok := data.(types.CandidateAnalysis)
	if !ok {
		return "", fmt.Errorf("expected CandidateAnalysis, got %T", data)
	}

	var output strings.Builder

	output.WriteString("=== CANDIDATE ANALYSIS ===\n\n")
	output.WriteString(fmt.Sprintf("Candidate: %s\n", analysis.CandidateID))
	output.WriteString(fmt.Sprintf("Role: %s\n", analysis.RoleID))
	output.WriteString(fmt.Sprintf("Score: %d/100 (raw %d, penalty %d)\n",
		analysis.Score.OverallScore, analysis.Score.RawScore, analysis.Score.Penalty))
	if analysis.Score.BelowThreshold {
		output.WriteString("BELOW THRESHOLD:\n")
		for _, reason := range analysis.Score.ThresholdReasons {
			output.WriteString(fmt.Sprintf("  - %s\n", reason))
		}
	}
	output.WriteString("\n")

	f := analysis.Features
	if f.YearsExperience != nil {
		output.WriteString(fmt.Sprintf("Experience: %.1f years total, %.1f relevant\n",
			f.RelevantExperience.TotalYears, f.RelevantExperience.RelevantYears))
	} else {
		output.WriteString("Experience: unknown\n")
	}
	output.WriteString(fmt.Sprintf("Seniority: %s (confidence %.2f)\n",
		f.Seniority.Level, f.Seniority.Confidence))
	output.WriteString(fmt.Sprintf("Trajectory: %s\n\n", f.Recency.Trajectory))

	output.WriteString("Must-have skills:\n")
	writeSkillMatches(&output, f.MustHave)
	if len(f.NiceToHave) > 0 {
		output.WriteString("Nice-to-have skills:\n")
		writeSkillMatches(&output, f.NiceToHave)
	}

	if len(f.RedFlags) > 0 {
		output.WriteString("\nRed flags:\n")
		for _, flag := range f.RedFlags {
			output.WriteString(fmt.Sprintf("  - [%s] %s: %s (-%d)\n",
				flag.Severity, flag.Type, flag.Evidence, flag.Penalty))
		}
	}

	if len(f.Warnings) > 0 {
		output.WriteString("\nWarnings:\n")
		for _, warning := range f.Warnings {
			output.WriteString(fmt.Sprintf("  - %s\n", warning))
		}
	}

	return output.String(), nil
}

func writeSkillMatches(output *strings.Builder, matches []types.SkillMatch) {
	for _, m := range matches {
		marker := "missing"
		if m.Matched {
			marker = "matched"
		}
		output.WriteString(fmt.Sprintf("  - %s: %s\n", m.Term, marker))
		if m.Matched && len(m.Evidence) > 0 {
			output.WriteString(fmt.Sprintf("      %s\n", m.Evidence[0]))
		}
	}
}

func (atf *AnalysisTextFormatter) SupportedType() string {
	return "CandidateAnalysis"
}

// AnalysisMarkdownFormatter renders one candidate analysis as markdown
type AnalysisMarkdownFormatter struct{}

func (amf *AnalysisMarkdownFormatter) Format(data any) (string, error) {
	analysis, ok := data.(types.CandidateAnalysis)
	if !ok {
		return "", fmt.Errorf("expected CandidateAnalysis, got %T", data)
	}

	var output strings.Builder

	output.WriteString(fmt.Sprintf("# Candidate Analysis: %s\n\n", analysis.CandidateID))
	output.WriteString(fmt.Sprintf("**Role:** %s\n\n", analysis.RoleID))
	output.WriteString(fmt.Sprintf("**Score:** %d/100 (raw %d, penalty %d)\n\n",
		analysis.Score.OverallScore, analysis.Score.RawScore, analysis.Score.Penalty))

	if analysis.Score.BelowThreshold {
		output.WriteString("## Below Threshold\n\n")
		for _, reason := range analysis.Score.ThresholdReasons {
			output.WriteString(fmt.Sprintf("- %s\n", reason))
		}
		output.WriteString("\n")
	}

	f := analysis.Features
	output.WriteString("## Profile\n\n")
	if f.YearsExperience != nil {
		output.WriteString(fmt.Sprintf("- **Experience:** %.1f years total, %.1f relevant\n",
			f.RelevantExperience.TotalYears, f.RelevantExperience.RelevantYears))
	} else {
		output.WriteString("- **Experience:** unknown\n")
	}
	output.WriteString(fmt.Sprintf("- **Seniority:** %s (confidence %.2f)\n",
		f.Seniority.Level, f.Seniority.Confidence))
	output.WriteString(fmt.Sprintf("- **Trajectory:** %s\n", f.Recency.Trajectory))
	output.WriteString(fmt.Sprintf("- **Parse quality:** %s\n\n", f.ParseQuality.Overall))

	output.WriteString("## Skills\n\n")
	for _, m := range append(append([]types.SkillMatch{}, f.MustHave...), f.NiceToHave...) {
		check := "✗"
		if m.Matched {
			check = "✓"
		}
		output.WriteString(fmt.Sprintf("- %s **%s**", check, m.Term))
		if m.Matched && len(m.Evidence) > 0 {
			output.WriteString(fmt.Sprintf(" — `%s`", m.Evidence[0]))
		}
		output.WriteString("\n")
	}
	output.WriteString("\n")

	if len(f.RedFlags) > 0 {
		output.WriteString("## Red Flags\n\n")
		for _, flag := range f.RedFlags {
			output.WriteString(fmt.Sprintf("- **%s** (%s): %s (-%d)\n",
				flag.Type, flag.Severity, flag.Evidence, flag.Penalty))
		}
		output.WriteString("\n")
	}

	if len(f.Warnings) > 0 {
		output.WriteString("## Warnings\n\n")
		for _, warning := range f.Warnings {
			output.WriteString(fmt.Sprintf("- %s\n", warning))
		}
	}

	return output.String(), nil
}

func (amf *AnalysisMarkdownFormatter) SupportedType() string {
	return "CandidateAnalysis"
}

// RankingTextFormatter renders a ranking report as plain text
type RankingTextFormatter struct{}

func (rtf *RankingTextFormatter) Format(data any) (string, error) {
	report, ok := data.(types.RankingReport)
	if !ok {
		return "", fmt.Errorf("expected RankingReport, got %T", data)
	}

	var output strings.Builder

	output.WriteString(fmt.Sprintf("=== RANKING: %s ===\n\n", report.RoleTitle))
	for _, ranked := range report.Candidates {
		analysis := ranked.Analysis
		flag := ""
		if analysis.Score.BelowThreshold {
			flag = " [below threshold]"
		}
		output.WriteString(fmt.Sprintf("%2d. %-30s %3d/100%s\n",
			ranked.Rank, analysis.CandidateID, analysis.Score.OverallScore, flag))
	}

	if len(report.Errors) > 0 {
		output.WriteString("\nErrors:\n")
		for _, e := range report.Errors {
			output.WriteString(fmt.Sprintf("  - %s\n", e))
		}
	}

	return output.String(), nil
}

func (rtf *RankingTextFormatter) SupportedType() string {
	return "RankingReport"
}

// RankingMarkdownFormatter renders a ranking report as markdown
type RankingMarkdownFormatter struct{}

func (rmf *RankingMarkdownFormatter) Format(data any) (string, error) {
	report, ok := data.(types.RankingReport)
	if !ok {
		return "", fmt.Errorf("expected RankingReport, got %T", data)
	}

	var output strings.Builder

	output.WriteString(fmt.Sprintf("# Ranking: %s\n\n", report.RoleTitle))
	output.WriteString("| Rank | Candidate | Score | Seniority | Years | Below threshold |\n")
	output.WriteString("|------|-----------|-------|-----------|-------|------------------|\n")
	for _, ranked := range report.Candidates {
		analysis := ranked.Analysis
		years := "?"
		if analysis.Features.YearsExperience != nil {
			years = fmt.Sprintf("%.1f", *analysis.Features.YearsExperience)
		}
		below := ""
		if analysis.Score.BelowThreshold {
			below = "yes"
		}
		output.WriteString(fmt.Sprintf("| %d | %s | %d | %s | %s | %s |\n",
			ranked.Rank, analysis.CandidateID, analysis.Score.OverallScore,
			analysis.Features.Seniority.Level, years, below))
	}
	output.WriteString("\n")

	if len(report.Errors) > 0 {
		output.WriteString("## Errors\n\n")
		for _, e := range report.Errors {
			output.WriteString(fmt.Sprintf("- %s\n", e))
		}
	}

	return output.String(), nil
}

func (rmf *RankingMarkdownFormatter) SupportedType() string {
	return "RankingReport"
}

// Global formatter registry
var GlobalRegistry = NewFormatterRegistry()
