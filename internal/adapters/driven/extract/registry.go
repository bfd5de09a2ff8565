package extract

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"sync"

	"github.com/custodia-labs/deskhand/internal/core/domain"
	"github.com/custodia-labs/deskhand/internal/core/ports/driven"
)

// Ensure Registry implements the interface.
var _ driven.ExtractorRegistry = (*Registry)(nil)

// Registry resolves extractors by MIME type. Registration order matters:
// a later extractor claiming an already-claimed MIME type replaces the
// earlier one.
type Registry struct {
	mu         sync.RWMutex
	extractors map[string]driven.Extractor
}

// NewRegistry creates an empty extractor registry.
func NewRegistry() *Registry {
	return &Registry{
		extractors: make(map[string]driven.Extractor),
	}
}

// Register adds an extractor for all of its supported MIME types.
func (r *Registry) Register(e driven.Extractor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, mime := range e.SupportedMIMETypes() {
		r.extractors[normaliseMIME(mime)] = e
	}
}

// ForMIME returns the extractor for a MIME type.
func (r *Registry) ForMIME(mimeType string) (driven.Extractor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.extractors[normaliseMIME(mimeType)]
	if !ok {
		return nil, fmt.Errorf("%w: no extractor for %q", domain.ErrUnsupportedType, mimeType)
	}
	return e, nil
}

// normaliseMIME strips parameters like "; charset=utf-8" and lowercases.
func normaliseMIME(mime string) string {
	if i := strings.Index(mime, ";"); i >= 0 {
		mime = mime[:i]
	}
	return strings.ToLower(strings.TrimSpace(mime))
}

// ExecRunner runs external commands via os/exec.
type ExecRunner struct{}

var _ driven.CommandRunner = ExecRunner{}

// Run executes the command and returns its stdout.
func (ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	out, err := exec.CommandContext(ctx, name, args...).Output()
	if err != nil {
		return nil, fmt.Errorf("run %s: %w", name, err)
	}
	return out, nil
}
