package extract

import (
	"context"

	"cvranker/internal/config"
	apperrors "cvranker/internal/errors"
	"cvranker/internal/textnorm"
)

// Result is the outcome of text extraction for one candidate PDF.
type Result struct {
	RawText   string
	PageCount int
	UsedOCR   bool
}

// Extractor extracts raw resume text from PDFs with optional OCR
// fallback. The garble decision is a pure predicate over canonical text,
// so identical files always take the same path.
type Extractor struct {
	cfg    *config.ExtractConfig
	ocr    *ocrRunner
	logger *apperrors.Logger
}

// New creates an extractor.
func New(cfg *config.ExtractConfig, logger *apperrors.Logger) *Extractor {
	return &Extractor{
		cfg:    cfg,
		ocr:    newOCRRunner(cfg, logger),
		logger: logger,
	}
}

// Extract reads the PDF, and falls back to OCR when the native text layer
// is missing or garbled and OCR is enabled. The better of the two texts
// wins: OCR output that is itself garbage never replaces readable text.
func (e *Extractor) Extract(ctx context.Context, pdfPath string) (*Result, error) {
	text, pages, err := pdfText(pdfPath)
	if err != nil && !e.cfg.OCREnabled {
		return nil, err
	}

	canonical := textnorm.Normalize(text)
	needOCR := err != nil || canonical == "" || textnorm.LooksGarbled(canonical)
	if !needOCR || !e.cfg.OCREnabled {
		if err != nil {
			return nil, err
		}
		return &Result{RawText: text, PageCount: pages}, nil
	}

	e.logger.Info("Falling back to OCR", "file", pdfPath, "native_chars", len(canonical))
	ocrText, ocrErr := e.ocr.run(ctx, pdfPath)
	if ocrErr != nil {
		e.logger.LogError(ocrErr, "OCR fallback failed; keeping native extraction", "file", pdfPath)
		if err != nil {
			return nil, err
		}
		return &Result{RawText: text, PageCount: pages}, nil
	}

	ocrCanonical := textnorm.Normalize(ocrText)
	if err != nil || (len(ocrCanonical) > len(canonical) && !textnorm.LooksGarbled(ocrCanonical)) {
		return &Result{RawText: ocrText, PageCount: pages, UsedOCR: true}, nil
	}
	return &Result{RawText: text, PageCount: pages}, nil
}
