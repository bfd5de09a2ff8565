package driven

import "context"

// Extractor converts raw source material of specific MIME types into
// plain text. Extractors are registered with the ExtractorRegistry at
// startup.
type Extractor interface {
	// SupportedMIMETypes lists the MIME types this extractor handles.
	SupportedMIMETypes() []string

	// Extract converts raw bytes into plain text. It returns an error
	// wrapping domain.ErrExtraction when the material is unreadable.
	Extract(ctx context.Context, data []byte, name string) (string, error)
}

// ExtractorRegistry resolves extractors by MIME type.
type ExtractorRegistry interface {
	// Register adds an extractor for all of its supported MIME types.
	Register(e Extractor)

	// ForMIME returns the extractor for a MIME type, or an error
	// wrapping domain.ErrUnsupportedType when none is registered.
	ForMIME(mimeType string) (Extractor, error)
}

// CommandRunner executes an external command and returns its stdout.
// Abstracted so extractors that shell out (pdftotext) are testable.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}
