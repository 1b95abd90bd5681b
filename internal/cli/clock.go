package cli

import (
	"fmt"
	"time"

	"cvranker/internal/types"
)

// resolveClock parses the --now override ("YYYY-MM") or falls back to the
// wall clock. Pinning the clock makes reruns byte-identical.
func resolveClock(override string) (types.YearMonth, error) {
	if override == "" {
		now := time.Now()
		return types.YearMonth{Year: now.Year(), Month: int(now.Month())}, nil
	}
	parsed, err := time.Parse("2006-01", override)
	if err != nil {
		return types.YearMonth{}, fmt.Errorf("invalid --now value %q (want YYYY-MM)", override)
	}
	return types.YearMonth{Year: parsed.Year(), Month: int(parsed.Month())}, nil
}
