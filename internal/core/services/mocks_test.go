package services

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/custodia-labs/deskhand/internal/a1"
	"github.com/custodia-labs/deskhand/internal/core/domain"
	"github.com/custodia-labs/deskhand/internal/core/ports/driven"
)

// stubEmbedder returns canned vectors. When vectors is non-nil, text is
// looked up there; otherwise embedFn is called.
type stubEmbedder struct {
	vectors map[string][]float64
	embedFn func(text string) ([]float64, error)
	dims    int
}

func (s *stubEmbedder) Embed(_ context.Context, text string) ([]float64, error) {
	if s.vectors != nil {
		if vec, ok := s.vectors[text]; ok {
			return vec, nil
		}
	}
	if s.embedFn != nil {
		return s.embedFn(text)
	}
	return make([]float64, s.Dimensions()), nil
}

func (s *stubEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float64, error) {
	out := make([][]float64, len(texts))
	for i, text := range texts {
		vec, err := s.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		out[i] = vec
	}
	return out, nil
}

func (s *stubEmbedder) Dimensions() int {
	if s.dims > 0 {
		return s.dims
	}
	return 3
}

func (s *stubEmbedder) ModelName() string         { return "stub-embed" }
func (s *stubEmbedder) Ping(context.Context) error { return nil }
func (s *stubEmbedder) Close() error               { return nil }

// stubLLM replays a queue of completion responses and a fixed analysis.
type stubLLM struct {
	completions []driven.CompletionResponse
	requests    []driven.CompletionRequest
	completeErr error
	analysis    *domain.Analysis
	analyzeErr  error
}

func (s *stubLLM) Complete(_ context.Context, req driven.CompletionRequest) (*driven.CompletionResponse, error) {
	s.requests = append(s.requests, req)
	if s.completeErr != nil {
		return nil, s.completeErr
	}
	if len(s.completions) == 0 {
		return &driven.CompletionResponse{Text: "done"}, nil
	}
	resp := s.completions[0]
	s.completions = s.completions[1:]
	return &resp, nil
}

func (s *stubLLM) Generate(ctx context.Context, prompt string, _ driven.GenerateOptions) (string, error) {
	resp, err := s.Complete(ctx, driven.CompletionRequest{
		Messages: []driven.ChatMessage{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return "", err
	}
	return resp.Text, nil
}

func (s *stubLLM) Analyze(context.Context, driven.AnalysisRequest) (*domain.Analysis, error) {
	if s.analyzeErr != nil {
		return nil, s.analyzeErr
	}
	if s.analysis != nil {
		return s.analysis, nil
	}
	return &domain.Analysis{Title: "Stub Title", Summary: "Stub summary."}, nil
}

func (s *stubLLM) ModelName() string         { return "stub-llm" }
func (s *stubLLM) Ping(context.Context) error { return nil }
func (s *stubLLM) Close() error               { return nil }

// stubExtractor implements a single-type text extractor.
type stubExtractor struct {
	text string
	err  error
}

func (s *stubExtractor) SupportedMIMETypes() []string { return []string{"text/plain"} }

func (s *stubExtractor) Extract(context.Context, []byte, string) (string, error) {
	return s.text, s.err
}

// stubRegistry resolves every MIME type to one extractor.
type stubRegistry struct {
	extractor driven.Extractor
	err       error
}

func (s *stubRegistry) Register(driven.Extractor) {}

func (s *stubRegistry) ForMIME(string) (driven.Extractor, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.extractor, nil
}

// stubFetcher returns canned bytes for any source reference.
type stubFetcher struct {
	data  []byte
	mime  string
	err   error
	calls int
}

func (s *stubFetcher) Fetch(context.Context, domain.SourceType, string) ([]byte, string, error) {
	s.calls++
	return s.data, s.mime, s.err
}

// fakeSheet is an in-memory grid implementing driven.Spreadsheet. Column
// insertion shifts row data the way a real provider does, which is what
// the verification column-shift handling is tested against.
type fakeSheet struct {
	mu    sync.Mutex
	title string
	tabs  []domain.TabInfo
	rows  [][]string

	updateErrs map[string][]error // cell -> queued errors
	infoErr    error
	readErr    error

	inserted []int
	writes   []string // "cell=value" in order
}

func newFakeSheet(rows [][]string) *fakeSheet {
	return &fakeSheet{
		title: "Fake Sheet",
		tabs:  []domain.TabInfo{{ID: 11, Name: "Leads", RowCount: len(rows), ColumnCount: 4}},
		rows:  rows,
	}
}

func (f *fakeSheet) GetInfo(context.Context, string) (*driven.SpreadsheetInfo, error) {
	if f.infoErr != nil {
		return nil, f.infoErr
	}
	return &driven.SpreadsheetInfo{Title: f.title, Tabs: f.tabs}, nil
}

// ReadRange understands whole-column ranges like "Leads!B:C" and slices
// the grid accordingly; any other range returns whole rows.
func (f *fakeSheet) ReadRange(_ context.Context, _ string, a1Range string) ([][]string, error) {
	if f.readErr != nil {
		return nil, f.readErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	from, to := 0, -1
	if bang := strings.IndexByte(a1Range, '!'); bang >= 0 {
		if cols := strings.Split(a1Range[bang+1:], ":"); len(cols) == 2 {
			if lo, hi := a1.ColumnIndex(cols[0]), a1.ColumnIndex(cols[1]); lo >= 0 && hi >= lo {
				from, to = lo, hi
			}
		}
	}

	out := make([][]string, len(f.rows))
	for i, row := range f.rows {
		if to < 0 {
			out[i] = append([]string(nil), row...)
			continue
		}
		lo, hi := from, to+1
		if lo > len(row) {
			lo = len(row)
		}
		if hi > len(row) {
			hi = len(row)
		}
		out[i] = append([]string(nil), row[lo:hi]...)
	}
	return out, nil
}

func (f *fakeSheet) WriteRange(_ context.Context, _, _ string, values [][]string) (int, error) {
	cells := 0
	for _, row := range values {
		cells += len(row)
	}
	return cells, nil
}

func (f *fakeSheet) AppendRows(_ context.Context, _, _ string, values [][]string) (int, error) {
	cells := 0
	for _, row := range values {
		cells += len(row)
	}
	return cells, nil
}

func (f *fakeSheet) UpdateCell(_ context.Context, _, _, cell, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if errs := f.updateErrs[cell]; len(errs) > 0 {
		err := errs[0]
		f.updateErrs[cell] = errs[1:]
		if err != nil {
			return err
		}
	}

	f.writes = append(f.writes, fmt.Sprintf("%s=%s", cell, value))
	return nil
}

func (f *fakeSheet) ClearRange(context.Context, string, string) error { return nil }

func (f *fakeSheet) InsertColumn(_ context.Context, _ string, _ int64, index, _ int) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.inserted = append(f.inserted, index)
	for i, row := range f.rows {
		if index >= len(row) {
			continue
		}
		updated := make([]string, 0, len(row)+1)
		updated = append(updated, row[:index]...)
		updated = append(updated, "")
		updated = append(updated, row[index:]...)
		f.rows[i] = updated
	}
	return nil
}

func (f *fakeSheet) AddTab(context.Context, string, string) (int64, error) { return 42, nil }

// stubEmailVerifier returns canned checks per address.
type stubEmailVerifier struct {
	checks map[string]*domain.EmailCheck
	err    error
	calls  []string
}

func (s *stubEmailVerifier) Check(_ context.Context, email string) (*domain.EmailCheck, error) {
	s.calls = append(s.calls, email)
	if s.err != nil {
		return nil, s.err
	}
	if check, ok := s.checks[email]; ok {
		return check, nil
	}
	return &domain.EmailCheck{Reachability: "unknown"}, nil
}

// stubPhoneVerifier returns canned checks per number.
type stubPhoneVerifier struct {
	checks map[string]*domain.PhoneCheck
	err    error
}

func (s *stubPhoneVerifier) Check(_ context.Context, phone string) (*domain.PhoneCheck, error) {
	if s.err != nil {
		return nil, s.err
	}
	if check, ok := s.checks[phone]; ok {
		return check, nil
	}
	return &domain.PhoneCheck{Valid: false}, nil
}

// collectSink records every event it receives.
type collectSink struct {
	events   []sinkEvent
	failFrom int // fail Send calls from this index on, when > 0
}

type sinkEvent struct {
	name    string
	payload any
}

func (c *collectSink) Send(event string, payload any) error {
	if c.failFrom > 0 && len(c.events) >= c.failFrom {
		return fmt.Errorf("consumer closed")
	}
	c.events = append(c.events, sinkEvent{name: event, payload: payload})
	return nil
}

func (c *collectSink) names() []string {
	names := make([]string, len(c.events))
	for i, e := range c.events {
		names[i] = e.name
	}
	return names
}
