package cli

import (
	"context"
	"errors"
	"time"

	"github.com/custodia-labs/deskhand/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/deskhand/internal/core/domain"
	"github.com/custodia-labs/deskhand/internal/core/ports/driven"
	"github.com/custodia-labs/deskhand/internal/core/ports/driving"
)

// setupTestServices installs stub services and seeded in-memory stores
// behind the package-level command vars. The returned cleanup restores
// whatever was there before.
func setupTestServices() func() {
	oldIngest := ingestService
	oldSearch := searchService
	oldChat := chatService
	oldSheet := sheetService
	oldVerify := verifyService
	oldDocs := docStore
	oldTenants := tenantStore
	oldAudit := auditStore
	oldConfig := configStore
	oldValidator := validator
	oldProc := verifierProc

	docs := memory.NewDocumentStore()
	_ = docs.SaveDocument(context.Background(), &domain.Document{
		ID:             "doc-1",
		TenantID:       "tenant-1",
		Source:         domain.SourceUpload,
		SourceRef:      "/tmp/pricing.md",
		Name:           "pricing.md",
		MIMEType:       "text/markdown",
		Content:        "Plans start at ten dollars a month.",
		Title:          "Pricing Guide",
		Summary:        "Plans and pricing for the hosted product.",
		Topic:          "pricing",
		Sentiment:      "positive",
		SentimentScore: 0.4,
		Status:         domain.StatusProcessed,
		ChunkCount:     2,
		CreatedAt:      time.Now().UTC(),
	})

	tenants := memory.NewTenantStore()
	_ = tenants.Save(context.Background(), &domain.Tenant{
		ID:          "tenant-1",
		Name:        "Acme",
		Description: "Acme sells rockets.",
		CreatedAt:   time.Now().UTC(),
	})

	audit := memory.NewAuditStore()
	_ = audit.Record(context.Background(), &domain.AuditEntry{
		ID:            "audit-1",
		TenantID:      "tenant-1",
		Operation:     "update_cell",
		SpreadsheetID: "ss-1",
		Target:        "Leads!B2",
		CellsAffected: 1,
		Detail:        "set to Contacted",
		CreatedAt:     time.Now().UTC(),
	})

	SetServices(Services{
		Ingestor: &stubIngestor{docs: docs},
		Searcher: &stubSearcher{results: testSearchResults()},
		Chat: &stubChatService{resp: &driving.ChatResponse{
			Text: "Plans start at ten dollars a month.",
			Sources: []domain.SourceRef{
				{DocumentID: "doc-1", Title: "Pricing Guide", Score: 0.88},
			},
		}},
		Sheets:       &stubSheetService{sheet: testConnectedSheet()},
		Verification: &stubVerificationService{},
		DocStore:     docs,
		TenantStore:  tenants,
		AuditStore:   audit,
		ConfigStore:  newStubConfigStore(),
		Validator:    &stubValidator{},
	})

	return func() {
		ingestService = oldIngest
		searchService = oldSearch
		chatService = oldChat
		sheetService = oldSheet
		verifyService = oldVerify
		docStore = oldDocs
		tenantStore = oldTenants
		auditStore = oldAudit
		configStore = oldConfig
		validator = oldValidator
		verifierProc = oldProc
	}
}

func testSearchResults() *domain.SearchResults {
	return &domain.SearchResults{
		Documents: []domain.RankedDocument{
			{Document: domain.Document{ID: "doc-1", Title: "Pricing Guide"}, Score: 0.91},
		},
		Chunks: []domain.RankedChunk{
			{
				Chunk:         domain.Chunk{ID: "chunk-1", DocumentID: "doc-1", Content: "Plans start at ten dollars a month."},
				DocumentTitle: "Pricing Guide",
				Score:         0.88,
			},
		},
	}
}

func testConnectedSheet() *domain.ConnectedSheet {
	return &domain.ConnectedSheet{
		ID:            "sheet-1",
		TenantID:      "tenant-1",
		SpreadsheetID: "ss-1",
		Title:         "Leads",
		Tabs: []domain.TabInfo{
			{ID: 0, Name: "Leads", RowCount: 100, ColumnCount: 8},
		},
		SyncedAt:  time.Now().UTC(),
		CreatedAt: time.Now().UTC(),
	}
}

// stubIngestor registers into the shared document store so the pipeline
// commands can read back what they ingested.
type stubIngestor struct {
	docs        driven.DocumentStore
	registerErr error
	processErr  error
	resynced    []string
	deleted     []string
}

var _ driving.Ingestor = (*stubIngestor)(nil)

func (s *stubIngestor) Register(ctx context.Context, req driving.IngestRequest) (*domain.Document, error) {
	if s.registerErr != nil {
		return nil, s.registerErr
	}
	doc := &domain.Document{
		ID:        "doc-new",
		TenantID:  req.TenantID,
		Source:    req.Source,
		SourceRef: req.SourceRef,
		Name:      req.Name,
		MIMEType:  req.MIMEType,
		Status:    domain.StatusPending,
		CreatedAt: time.Now().UTC(),
	}
	if s.docs != nil {
		if err := s.docs.SaveDocument(ctx, doc); err != nil {
			return nil, err
		}
	}
	return doc, nil
}

func (s *stubIngestor) Process(ctx context.Context, documentID string, _ driving.IngestRequest) error {
	if s.processErr != nil {
		return s.processErr
	}
	doc, err := s.docs.GetDocument(ctx, documentID)
	if err != nil {
		return err
	}
	doc.Status = domain.StatusProcessed
	doc.Title = "Onboarding Notes"
	doc.Topic = "onboarding"
	doc.ChunkCount = 3
	return s.docs.SaveDocument(ctx, doc)
}

func (s *stubIngestor) Resync(_ context.Context, documentID string) error {
	s.resynced = append(s.resynced, documentID)
	return nil
}

func (s *stubIngestor) Delete(ctx context.Context, documentID string) error {
	s.deleted = append(s.deleted, documentID)
	if s.docs != nil {
		return s.docs.DeleteDocument(ctx, documentID)
	}
	return nil
}

type stubSearcher struct {
	results *domain.SearchResults
	err     error

	lastQuery string
	lastLimit int
}

var _ driving.Searcher = (*stubSearcher)(nil)

func (s *stubSearcher) Search(_ context.Context, _, query string, limit int) (*domain.SearchResults, error) {
	s.lastQuery = query
	s.lastLimit = limit
	if s.err != nil {
		return nil, s.err
	}
	return s.results, nil
}

type stubChatService struct {
	resp *driving.ChatResponse
	err  error

	lastReq driving.ChatRequest
}

var _ driving.ChatService = (*stubChatService)(nil)

func (s *stubChatService) Chat(_ context.Context, req driving.ChatRequest) (*driving.ChatResponse, error) {
	s.lastReq = req
	if s.err != nil {
		return nil, s.err
	}
	return s.resp, nil
}

type stubSheetService struct {
	sheet *domain.ConnectedSheet
	err   error

	disconnected []string
}

var _ driving.SheetService = (*stubSheetService)(nil)

func (s *stubSheetService) Connect(_ context.Context, tenantID, spreadsheetID string) (*domain.ConnectedSheet, error) {
	if s.err != nil {
		return nil, s.err
	}
	sheet := *s.sheet
	sheet.TenantID = tenantID
	sheet.SpreadsheetID = spreadsheetID
	return &sheet, nil
}

func (s *stubSheetService) List(_ context.Context, tenantID string) ([]domain.ConnectedSheet, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.sheet == nil || s.sheet.TenantID != tenantID {
		return nil, nil
	}
	return []domain.ConnectedSheet{*s.sheet}, nil
}

func (s *stubSheetService) Sync(_ context.Context, _ string) (*domain.ConnectedSheet, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.sheet, nil
}

func (s *stubSheetService) Disconnect(_ context.Context, sheetID string) error {
	if s.err != nil {
		return s.err
	}
	s.disconnected = append(s.disconnected, sheetID)
	return nil
}

// stubVerificationService replays canned progress events into the sink.
type stubVerificationService struct {
	err error
}

var _ driving.VerificationService = (*stubVerificationService)(nil)

func (s *stubVerificationService) Run(_ context.Context, _ driving.VerifyRequest, sink driving.EventSink) error {
	if s.err != nil {
		return s.err
	}
	_ = sink.Send(driving.EventEmailProgress, driving.ProgressPayload{
		Current: 1, Total: 2, Row: 2, Value: "ana@example.com", Status: "safe",
	})
	_ = sink.Send(driving.EventEmailProgress, driving.ProgressPayload{
		Current: 2, Total: 2, Row: 3, Skipped: true,
	})
	_ = sink.Send(driving.EventQuotaWait, driving.QuotaWaitPayload{
		Attempt: 1, MaxAttempts: 5, WaitSeconds: 60, Cell: "H4",
	})
	return nil
}

// stubConfigStore is a map-backed driven.ConfigStore for command tests.
type stubConfigStore struct {
	values map[string]any
}

var _ driven.ConfigStore = (*stubConfigStore)(nil)

func newStubConfigStore() *stubConfigStore {
	return &stubConfigStore{values: map[string]any{
		"embedding.provider":         "openai",
		"embedding.model":            "text-embedding-3-small",
		"embedding.api_key":          "sk-test",
		"llm.provider":               "openai",
		"llm.model":                  "gpt-4o",
		"llm.api_key":                "sk-test",
		"google.credentials_file":    "/etc/deskhand/credentials.json",
		"google.requests_per_minute": 60,
	}}
}

func (s *stubConfigStore) Get(key string) (any, bool) {
	v, ok := s.values[key]
	return v, ok
}

func (s *stubConfigStore) GetString(key string) string {
	v, _ := s.values[key].(string)
	return v
}

func (s *stubConfigStore) GetInt(key string) int {
	v, _ := s.values[key].(int)
	return v
}

func (s *stubConfigStore) GetBool(key string) bool {
	v, _ := s.values[key].(bool)
	return v
}

func (s *stubConfigStore) GetStringSlice(key string) []string {
	v, _ := s.values[key].([]string)
	return v
}

func (s *stubConfigStore) Set(key string, value any) error {
	s.values[key] = value
	return nil
}

func (s *stubConfigStore) Save() error { return nil }

func (s *stubConfigStore) Load() error { return nil }

func (s *stubConfigStore) Path() string { return "/tmp/deskhand/config.toml" }

type stubValidator struct {
	embedErr error
	llmErr   error
}

var _ driven.AIConfigValidator = (*stubValidator)(nil)

func (s *stubValidator) ValidateEmbedding(_ *domain.EmbeddingSettings) error { return s.embedErr }

func (s *stubValidator) ValidateLLM(_ *domain.LLMSettings) error { return s.llmErr }

// errServiceDown is the canned failure used by the error-path tests.
var errServiceDown = errors.New("backend unavailable")
