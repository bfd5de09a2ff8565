// Package fetch retrieves raw source material for remote documents:
// web URLs, Google Docs (via the Docs API) and Google Sheets (exported
// as CSV via the Drive API).
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"google.golang.org/api/docs/v1"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"

	"github.com/custodia-labs/deskhand/internal/core/domain"
	"github.com/custodia-labs/deskhand/internal/core/ports/driven"
)

// Ensure Fetcher implements the interface.
var _ driven.SourceFetcher = (*Fetcher)(nil)

// Default configuration values.
const (
	DefaultTimeout = 60 * time.Second

	// maxFetchBytes bounds how much of a remote resource is read.
	maxFetchBytes = 20 << 20 // 20 MiB
)

// Config holds configuration for the source fetcher.
type Config struct {
	// CredentialsFile is the path to a service account JSON key.
	// Required for Google Doc and Google Sheet sources.
	CredentialsFile string

	// HTTPClient overrides the client used for URL sources and, when
	// set, the authenticated Google transport. Used in tests.
	HTTPClient *http.Client

	// Timeout is the request timeout for URL sources (default: 60s).
	Timeout time.Duration
}

// Fetcher retrieves raw bytes for URL and Google sources.
type Fetcher struct {
	client   *http.Client
	docsSvc  *docs.Service
	driveSvc *drive.Service
}

// New creates a source fetcher. Google services are only initialised
// when credentials are configured; fetching a Google source without them
// returns an error.
func New(ctx context.Context, cfg Config) (*Fetcher, error) {
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	f := &Fetcher{
		client: cfg.HTTPClient,
	}
	if f.client == nil {
		f.client = &http.Client{Timeout: cfg.Timeout}
	}

	var opts []option.ClientOption
	switch {
	case cfg.HTTPClient != nil:
		opts = append(opts, option.WithHTTPClient(cfg.HTTPClient))
	case cfg.CredentialsFile != "":
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	default:
		return f, nil
	}

	docsSvc, err := docs.NewService(ctx, append(opts, option.WithScopes(docs.DocumentsReadonlyScope))...)
	if err != nil {
		return nil, fmt.Errorf("create docs service: %w", err)
	}
	driveSvc, err := drive.NewService(ctx, append(opts, option.WithScopes(drive.DriveReadonlyScope))...)
	if err != nil {
		return nil, fmt.Errorf("create drive service: %w", err)
	}

	f.docsSvc = docsSvc
	f.driveSvc = driveSvc
	return f, nil
}

// Fetch returns the raw bytes and effective MIME type for a source.
func (f *Fetcher) Fetch(ctx context.Context, source domain.SourceType, ref string) ([]byte, string, error) {
	switch source {
	case domain.SourceURL:
		return f.fetchURL(ctx, ref)
	case domain.SourceGoogleDoc:
		return f.fetchGoogleDoc(ctx, ref)
	case domain.SourceGoogleSheet:
		return f.fetchGoogleSheet(ctx, ref)
	default:
		return nil, "", fmt.Errorf("%w: cannot fetch source type %q", domain.ErrUnsupportedType, source)
	}
}

// fetchURL downloads a web resource, reporting the response content type.
func (f *Fetcher) fetchURL(ctx context.Context, url string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, "", fmt.Errorf("create request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("fetch %s: status %d", url, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxFetchBytes))
	if err != nil {
		return nil, "", fmt.Errorf("read %s: %w", url, err)
	}

	mimeType := resp.Header.Get("Content-Type")
	if i := strings.Index(mimeType, ";"); i >= 0 {
		mimeType = mimeType[:i]
	}
	if mimeType == "" {
		mimeType = "text/plain"
	}
	return data, strings.TrimSpace(mimeType), nil
}

// fetchGoogleDoc reads a document through the Docs API and flattens its
// body to plain text.
func (f *Fetcher) fetchGoogleDoc(ctx context.Context, fileID string) ([]byte, string, error) {
	if f.docsSvc == nil {
		return nil, "", fmt.Errorf("google docs: credentials not configured")
	}

	doc, err := f.docsSvc.Documents.Get(fileID).Context(ctx).Do()
	if err != nil {
		return nil, "", fmt.Errorf("get google doc %s: %w", fileID, err)
	}

	return []byte(flattenDocument(doc)), "text/plain", nil
}

// fetchGoogleSheet exports a spreadsheet as CSV through the Drive API.
// Only the first tab is exported; connected-sheet workflows that need
// per-tab access go through the Spreadsheet port instead.
func (f *Fetcher) fetchGoogleSheet(ctx context.Context, fileID string) ([]byte, string, error) {
	if f.driveSvc == nil {
		return nil, "", fmt.Errorf("google drive: credentials not configured")
	}

	resp, err := f.driveSvc.Files.Export(fileID, "text/csv").Context(ctx).Download()
	if err != nil {
		return nil, "", fmt.Errorf("export google sheet %s: %w", fileID, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxFetchBytes))
	if err != nil {
		return nil, "", fmt.Errorf("read google sheet %s: %w", fileID, err)
	}
	return data, "text/csv", nil
}

// flattenDocument walks a Docs API document body and concatenates its
// paragraph text. Tables are flattened row by row.
func flattenDocument(doc *docs.Document) string {
	var b strings.Builder
	if doc.Body == nil {
		return ""
	}
	writeStructuralElements(&b, doc.Body.Content)
	return strings.TrimSpace(b.String())
}

func writeStructuralElements(b *strings.Builder, elements []*docs.StructuralElement) {
	for _, el := range elements {
		switch {
		case el.Paragraph != nil:
			for _, pe := range el.Paragraph.Elements {
				if pe.TextRun != nil {
					b.WriteString(pe.TextRun.Content)
				}
			}
		case el.Table != nil:
			for _, row := range el.Table.TableRows {
				for _, cell := range row.TableCells {
					writeStructuralElements(b, cell.Content)
				}
			}
		}
	}
}
