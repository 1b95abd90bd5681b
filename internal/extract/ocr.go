package extract

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/sony/gobreaker/v2"

	"cvranker/internal/config"
	apperrors "cvranker/internal/errors"
)

// ocrRunner shells out to an external OCR tool (ocrmypdf by default) and
// reads the sidecar text it produces. OCR is slow and flaky enough that a
// circuit breaker guards it: when the tool keeps failing, batch runs skip
// it instead of stalling on every scanned PDF.
type ocrRunner struct {
	cfg     *config.ExtractConfig
	breaker *gobreaker.CircuitBreaker[string]
	logger  *apperrors.Logger
}

func newOCRRunner(cfg *config.ExtractConfig, logger *apperrors.Logger) *ocrRunner {
	runner := &ocrRunner{cfg: cfg, logger: logger}
	if !cfg.CircuitBreaker.Enabled {
		return runner
	}

	settings := gobreaker.Settings{
		Name:        "OCR",
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
				"to", to.String())
		},
	}
	runner.breaker = gobreaker.NewCircuitBreaker[string](settings)
	return runner
}

// run extracts text from the PDF via OCR, honoring the circuit breaker.
func (o *ocrRunner) run(ctx context.Context, pdfPath string) (string, error) {
	if o.breaker == nil {
		return o.execute(ctx, pdfPath)
	}
	return o.breaker.Execute(func() (string, error) {
		return o.execute(ctx, pdfPath)
	})
}

func (o *ocrRunner) execute(ctx context.Context, pdfPath string) (string, error) {
	runCtx, cancel := context.WithTimeout(ctx, o.cfg.OCRTimeout)
	defer cancel()

	workDir, err := os.MkdirTemp("", "cvranker-ocr-*")
	if err != nil {
		return "", apperrors.NewIOError("TEMP_DIR_FAILED", "Cannot create OCR work directory", err)
	}
	defer func() {
		_ = os.RemoveAll(workDir)
	}()

	sidecar := filepath.Join(workDir, "sidecar.txt")
	output := filepath.Join(workDir, "ocr.pdf")
	languages := strings.Join(o.cfg.OCRLanguages, "+")

	args := []string{"--sidecar", sidecar, "-l", languages, "--force-ocr", pdfPath, output}
	cmd := exec.CommandContext(runCtx, o.cfg.OCRCommand, args...)

	if out, err := cmd.CombinedOutput(); err != nil {
		return "", apperrors.NewExtractError(apperrors.ErrCodeOCRFailed,
			fmt.Sprintf("OCR command failed for %s: %s", pdfPath, firstLine(string(out))), err)
	}

	text, err := os.ReadFile(sidecar)
	if err != nil {
		return "", apperrors.NewExtractError(apperrors.ErrCodeOCRFailed,
			"OCR produced no sidecar text for "+pdfPath, err)
	}
	return string(text), nil
}

func firstLine(s string) string {
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		return s[:idx]
	}
	return s
}
