// Package extract turns candidate PDFs into raw text for the analysis
// core. Native PDF text extraction runs first; when the result looks like
// a failed extraction (per the deterministic garble predicate), an
// external OCR tool is invoked behind a circuit breaker.
package extract

import (
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	apperrors "cvranker/internal/errors"
)

// pdfText extracts plain text and the page count from a PDF file.
// Unreadable pages are skipped; an empty result is not an error here, the
// caller decides whether to fall back to OCR.
func pdfText(path string) (string, int, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", 0, apperrors.NewExtractError(apperrors.ErrCodePDFUnreadable,
			fmt.Sprintf("Failed to open PDF: %s", path), err)
	}
	defer func() {
		_ = f.Close()
	}()

	var builder strings.Builder
	totalPages := r.NumPage()
	for pageIndex := 1; pageIndex <= totalPages; pageIndex++ {
		page := r.Page(pageIndex)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		builder.WriteString(text)
		builder.WriteString("\n")
	}

	return builder.String(), totalPages, nil
}
