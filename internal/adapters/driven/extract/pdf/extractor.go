// Package pdf extracts text from PDF sources by shelling out to
// pdftotext (poppler-utils).
package pdf

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/custodia-labs/deskhand/internal/core/domain"
	"github.com/custodia-labs/deskhand/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// Extractor handles PDF content.
type Extractor struct {
	runner driven.CommandRunner
	binary string
}

// New creates a new PDF extractor using the given command runner.
func New(runner driven.CommandRunner) *Extractor {
	return &Extractor{
		runner: runner,
		binary: "pdftotext",
	}
}

// SupportedMIMETypes returns the MIME types this extractor handles.
func (e *Extractor) SupportedMIMETypes() []string {
	return []string{"application/pdf"}
}

// Extract writes the PDF to a temporary file and converts it with
// pdftotext, reading the result from stdout.
func (e *Extractor) Extract(ctx context.Context, data []byte, name string) (string, error) {
	tmp, err := os.CreateTemp("", "deskhand-*.pdf")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close temp file: %w", err)
	}

	// "-" sends the converted text to stdout; -layout keeps tables readable.
	out, err := e.runner.Run(ctx, e.binary, "-layout", tmp.Name(), "-")
	if err != nil {
		return "", fmt.Errorf("%w: pdftotext on %s: %v", domain.ErrExtraction, name, err)
	}

	return strings.TrimSpace(string(out)), nil
}
