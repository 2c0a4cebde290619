package extract

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// CommandRunner executes an external command and returns its stdout.
// It exists so extractors can be tested without the real tools installed.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	out, err := exec.CommandContext(ctx, name, args...).Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && len(exitErr.Stderr) > 0 {
			return nil, fmt.Errorf("%s: %s: %w", name, strings.TrimSpace(string(exitErr.Stderr)), err)
		}
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return out, nil
}

// PDFText extracts the embedded text layer of a PDF via pdftotext.
type PDFText struct {
	runner CommandRunner
}

// NewPDFText creates the pdftotext extractor. A nil runner uses the real
// command.
func NewPDFText(runner CommandRunner) *PDFText {
	if runner == nil {
		runner = execRunner{}
	}
	return &PDFText{runner: runner}
}

// Extract implements Extractor. A PDF without a text layer (a scan)
// produces ErrNoText, which signals the caller to try the OCR path.
func (p *PDFText) Extract(ctx context.Context, path string) (string, error) {
	out, err := p.runner.Run(ctx, "pdftotext", "-layout", path, "-")
	if err != nil {
		return "", fmt.Errorf("pdf extraction failed for %s: %w", path, err)
	}
	text := string(out)
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%s: %w", path, ErrNoText)
	}
	return text, nil
}

// PDFOCR extracts text from a scanned PDF by running it through ocrmypdf
// and reading the resulting text layer.
type PDFOCR struct {
	runner CommandRunner
}

// NewPDFOCR creates the OCR extractor. A nil runner uses the real commands.
func NewPDFOCR(runner CommandRunner) *PDFOCR {
	if runner == nil {
		runner = execRunner{}
	}
	return &PDFOCR{runner: runner}
}

// Extract implements Extractor.
func (p *PDFOCR) Extract(ctx context.Context, path string) (string, error) {
	tmpDir, err := os.MkdirTemp("", "docchat-ocr-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer func() {
		_ = os.RemoveAll(tmpDir)
	}()

	sidecar := filepath.Join(tmpDir, "sidecar.txt")
	ocrPDF := filepath.Join(tmpDir, "ocr.pdf")

	// --sidecar writes the recognised text per page; the output PDF is a
	// byproduct we discard with the temp dir.
	if _, err := p.runner.Run(ctx, "ocrmypdf", "--force-ocr", "--sidecar", sidecar, path, ocrPDF); err != nil {
		return "", fmt.Errorf("ocr failed for %s: %w", path, err)
	}

	content, err := os.ReadFile(sidecar)
	if err != nil {
		return "", fmt.Errorf("failed to read ocr output: %w", err)
	}
	text := string(content)
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%s: %w", path, ErrNoText)
	}
	return text, nil
}
