// Package extract provides the text-extraction capability: per-format
// extractors behind one interface, with an OCR fallback chain for scanned
// PDFs.
package extract

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrNoText is returned when a document yields no usable text.
var ErrNoText = errors.New("no text could be extracted")

// Extractor turns a document file into plain text.
type Extractor interface {
	Extract(ctx context.Context, path string) (string, error)
}

// Plain reads a file as UTF-8 text.
type Plain struct{}

// Extract implements Extractor.
func (Plain) Extract(_ context.Context, path string) (string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	if len(strings.TrimSpace(string(content))) == 0 {
		return "", fmt.Errorf("%s: %w", path, ErrNoText)
	}
	return string(content), nil
}

// Chain tries the primary extractor and, when it yields no usable text,
// retries via the fallback. Any other primary error is terminal; the OCR
// retry exists only for the empty-text case.
type Chain struct {
	Primary  Extractor
	Fallback Extractor
}

// Extract implements Extractor.
func (c Chain) Extract(ctx context.Context, path string) (string, error) {
	text, err := c.Primary.Extract(ctx, path)
	if err == nil && strings.TrimSpace(text) != "" {
		return text, nil
	}
	if err != nil && !errors.Is(err, ErrNoText) {
		return "", err
	}
	if c.Fallback == nil {
		if err != nil {
			return "", err
		}
		return "", fmt.Errorf("%s: %w", path, ErrNoText)
	}

	text, err = c.Fallback.Extract(ctx, path)
	if err != nil {
		return "", fmt.Errorf("fallback extraction failed: %w", err)
	}
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%s: %w", path, ErrNoText)
	}
	return text, nil
}

// ForPath picks an extractor by file extension. PDFs get the pdftotext
// extractor, chained with the OCR path when ocr is true; markdown is
// flattened to plain text; everything else is read as-is. Structured JSON
// is not handled here, see DecodePayload.
func ForPath(path string, ocr bool) Extractor {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		var fallback Extractor
		if ocr {
			fallback = NewPDFOCR(nil)
		}
		return Chain{Primary: NewPDFText(nil), Fallback: fallback}
	case ".md", ".markdown":
		return Markdown{}
	default:
		return Plain{}
	}
}
