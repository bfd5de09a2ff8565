package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/deskhand/internal/core/domain"
	"github.com/custodia-labs/deskhand/internal/core/ports/driven"
	"github.com/custodia-labs/deskhand/internal/core/ports/driving"
	"github.com/custodia-labs/deskhand/internal/logger"
)

// Ensure ChatService implements the interface.
var _ driving.ChatService = (*ChatService)(nil)

// historyLimit is how many prior turns are replayed to the model.
const historyLimit = 10

// sheetKeywords route a message to the tool agent when the tenant has at
// least one connected sheet.
var sheetKeywords = []string{
	"sheet", "spreadsheet", "tab", "cell", "row", "column", "table", "excel",
	"formula", "range",
}

// SheetQueryClassifier decides whether a message is about spreadsheet
// work. It is a pluggable predicate so the rule-based default can later
// be replaced by a model-based classifier without touching the service.
type SheetQueryClassifier func(message string, sheets []domain.ConnectedSheet) bool

// KeywordSheetClassifier is the default classifier: the message mentions
// a sheet keyword and the tenant has a connected sheet, or the message
// names a connected sheet or one of its tabs (case-insensitive).
func KeywordSheetClassifier(message string, sheets []domain.ConnectedSheet) bool {
	if len(sheets) == 0 {
		return false
	}

	lower := strings.ToLower(message)
	for _, kw := range sheetKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}

	for _, sheet := range sheets {
		if sheet.Title != "" && strings.Contains(lower, strings.ToLower(sheet.Title)) {
			return true
		}
		for _, tab := range sheet.Tabs {
			if tab.Name != "" && strings.Contains(lower, strings.ToLower(tab.Name)) {
				return true
			}
		}
	}

	return false
}

// defaultChatSystemPrompt is the fallback when no PromptStore is configured.
const defaultChatSystemPrompt = `You are a knowledgeable assistant answering questions about the client's documents.
Use only the provided context. Always attribute claims to a document by its title.
If the context does not contain the answer, say so plainly.`

// defaultToolSystemPrompt is the fallback when no PromptStore is configured.
const defaultToolSystemPrompt = `You are an assistant that can read and edit the client's spreadsheets using the provided tools.
Read the relevant cells before writing. Confirm with the user before destructive operations such as clearing ranges or overwriting data.
Always attribute factual claims from documents to the document's title.`

// ChatService answers tenant questions. It assembles retrieval context,
// classifies the message, and routes it either to the spreadsheet tool
// agent or to the plain retrieval-augmented responder.
type ChatService struct {
	searcher     driving.Searcher
	docStore     driven.DocumentStore
	sheetStore   driven.SheetStore
	tenantStore  driven.TenantStore
	convStore    driven.ConversationStore
	llm          driven.LLMService
	orchestrator *ToolOrchestrator
	classifier   SheetQueryClassifier
	promptStore  driven.PromptStore
}

// NewChatService creates a new chat service. The tenantStore and
// convStore are optional; without them client context and history are
// simply omitted.
func NewChatService(
	searcher driving.Searcher,
	docStore driven.DocumentStore,
	sheetStore driven.SheetStore,
	tenantStore driven.TenantStore,
	convStore driven.ConversationStore,
	llm driven.LLMService,
	orchestrator *ToolOrchestrator,
) *ChatService {
	return &ChatService{
		searcher:     searcher,
		docStore:     docStore,
		sheetStore:   sheetStore,
		tenantStore:  tenantStore,
		convStore:    convStore,
		llm:          llm,
		orchestrator: orchestrator,
		classifier:   KeywordSheetClassifier,
	}
}

// SetClassifier replaces the sheet-relatedness predicate.
func (s *ChatService) SetClassifier(c SheetQueryClassifier) {
	if c != nil {
		s.classifier = c
	}
}

// SetPromptStore sets the prompt store for loading customisable prompts.
func (s *ChatService) SetPromptStore(store driven.PromptStore) {
	s.promptStore = store
}

// Chat answers one user message.
func (s *ChatService) Chat(ctx context.Context, req driving.ChatRequest) (*driving.ChatResponse, error) {
	logger.Section("Chat")

	req.Message = strings.TrimSpace(req.Message)
	if req.TenantID == "" || req.Message == "" {
		return nil, fmt.Errorf("%w: tenant id and message required", domain.ErrInvalidInput)
	}
	if s.llm == nil {
		return nil, domain.ErrLLMUnavailable
	}

	sheets, err := s.sheetStore.ListByTenant(ctx, req.TenantID)
	if err != nil {
		return nil, fmt.Errorf("list connected sheets: %w", err)
	}

	retrieved, err := s.searcher.Search(ctx, req.TenantID, req.Message, 0)
	if err != nil {
		return nil, fmt.Errorf("retrieve context: %w", err)
	}

	history, err := s.history(ctx, req)
	if err != nil {
		return nil, err
	}

	var resp *driving.ChatResponse
	// A message with images never routes to the tool agent: the tool
	// protocol has no image channel
	if s.classifier(req.Message, sheets) && len(req.Images) == 0 && s.orchestrator != nil {
		logger.Info("Routing to tool agent (%d connected sheets)", len(sheets))
		resp, err = s.toolChat(ctx, req, sheets, retrieved, history)
	} else {
		logger.Info("Routing to retrieval responder")
		resp, err = s.ragChat(ctx, req, retrieved, history)
	}
	if err != nil {
		return nil, err
	}

	resp.Sources = sourceRefs(retrieved)
	s.recordTurns(ctx, req, resp)
	return resp, nil
}

// toolChat runs the spreadsheet tool agent.
func (s *ChatService) toolChat(
	ctx context.Context,
	req driving.ChatRequest,
	sheets []domain.ConnectedSheet,
	retrieved *domain.SearchResults,
	history []driven.ChatMessage,
) (*driving.ChatResponse, error) {
	system := s.loadPrompt(driven.PromptToolSystem, defaultToolSystemPrompt)
	system += "\n\n" + sheetContext(sheets)
	if docs := documentContext(s.clientContext(ctx, req.TenantID), retrieved); docs != "" {
		system += "\n\n" + docs
	}

	messages := append(history, driven.ChatMessage{Role: "user", Content: req.Message})

	result, err := s.orchestrator.Run(ctx, req.TenantID, system, messages)
	if err != nil {
		return nil, fmt.Errorf("tool loop: %w", err)
	}

	return &driving.ChatResponse{
		Text:       result.Text,
		Operations: result.Operations,
	}, nil
}

// ragChat runs the plain retrieval-augmented responder.
func (s *ChatService) ragChat(
	ctx context.Context,
	req driving.ChatRequest,
	retrieved *domain.SearchResults,
	history []driven.ChatMessage,
) (*driving.ChatResponse, error) {
	system := s.loadPrompt(driven.PromptChatSystem, defaultChatSystemPrompt)
	if docs := documentContext(s.clientContext(ctx, req.TenantID), retrieved); docs != "" {
		system += "\n\n" + docs
	}

	userMsg := driven.ChatMessage{Role: "user", Content: req.Message}

	// Inline attached images, and optionally the tenant's stored image
	// documents, as multi-part content
	images := req.Images
	if req.IncludeSourceImages {
		images = append(images, s.sourceImages(ctx, req.TenantID)...)
	}
	if len(images) > 0 {
		userMsg.Parts = []driven.ContentPart{{Text: req.Message}}
		for _, img := range images {
			userMsg.Parts = append(userMsg.Parts, driven.ContentPart{
				ImageData: img.Data,
				ImageMIME: img.MIMEType,
			})
		}
	}

	messages := append(history, userMsg)

	resp, err := s.llm.Complete(ctx, driven.CompletionRequest{
		System:   system,
		Messages: messages,
	})
	if err != nil {
		return nil, fmt.Errorf("complete: %w", err)
	}

	return &driving.ChatResponse{Text: resp.Text}, nil
}

// history replays the tenant's recent turns as chat messages.
func (s *ChatService) history(ctx context.Context, req driving.ChatRequest) ([]driven.ChatMessage, error) {
	if s.convStore == nil {
		return nil, nil
	}

	turns, err := s.convStore.History(ctx, req.TenantID, req.ConversationID, historyLimit)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}

	messages := make([]driven.ChatMessage, len(turns))
	for i, turn := range turns {
		messages[i] = driven.ChatMessage{
			Role:    string(turn.Role),
			Content: turn.Content,
		}
	}
	return messages, nil
}

// clientContext loads the tenant's free-text description; empty when the
// tenant is unknown or has none.
func (s *ChatService) clientContext(ctx context.Context, tenantID string) string {
	if s.tenantStore == nil {
		return ""
	}

	tenant, err := s.tenantStore.Get(ctx, tenantID)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			logger.Warn("Load tenant %s: %v", tenantID, err)
		}
		return ""
	}
	return tenant.Description
}

// sourceImages collects base64 image content from the tenant's stored
// image documents.
func (s *ChatService) sourceImages(ctx context.Context, tenantID string) []driving.ImageAttachment {
	docs, err := s.docStore.ListDocuments(ctx, tenantID, driven.DocumentFilter{
		Status: domain.StatusProcessed,
	})
	if err != nil {
		logger.Warn("List documents for source images: %v", err)
		return nil
	}

	var images []driving.ImageAttachment
	for _, doc := range docs {
		if !strings.HasPrefix(doc.MIMEType, "image/") || doc.Content == "" {
			continue
		}
		images = append(images, driving.ImageAttachment{
			Data:     doc.Content, // image documents store base64 content
			MIMEType: doc.MIMEType,
		})
	}
	return images
}

// recordTurns appends the user and assistant turns. Recording failures
// are logged, not surfaced; the answer is already produced.
func (s *ChatService) recordTurns(ctx context.Context, req driving.ChatRequest, resp *driving.ChatResponse) {
	if s.convStore == nil {
		return
	}

	now := time.Now().UTC()
	userTurn := &domain.ConversationTurn{
		ID:             uuid.New().String(),
		TenantID:       req.TenantID,
		ConversationID: req.ConversationID,
		Role:           domain.RoleUser,
		Content:        req.Message,
		CreatedAt:      now,
	}

	docIDs := make([]string, len(resp.Sources))
	for i, src := range resp.Sources {
		docIDs[i] = src.DocumentID
	}
	assistantTurn := &domain.ConversationTurn{
		ID:             uuid.New().String(),
		TenantID:       req.TenantID,
		ConversationID: req.ConversationID,
		Role:           domain.RoleAssistant,
		Content:        resp.Text,
		DocumentIDs:    docIDs,
		Sources:        resp.Sources,
		CreatedAt:      now.Add(time.Millisecond), // assistant strictly after user
	}

	if err := s.convStore.Append(ctx, userTurn); err != nil {
		logger.Warn("Record user turn: %v", err)
	}
	if err := s.convStore.Append(ctx, assistantTurn); err != nil {
		logger.Warn("Record assistant turn: %v", err)
	}
}

// loadPrompt loads a prompt from the store, falling back to the default.
func (s *ChatService) loadPrompt(name, fallback string) string {
	if s.promptStore == nil {
		return fallback
	}
	prompt, err := s.promptStore.Load(name)
	if err != nil || prompt == "" {
		return fallback
	}
	return prompt
}

// sheetContext renders connected sheet metadata for the system prompt.
func sheetContext(sheets []domain.ConnectedSheet) string {
	var b strings.Builder
	b.WriteString("Connected spreadsheets:\n")
	for _, sheet := range sheets {
		fmt.Fprintf(&b, "- %q (id %s), tabs:", sheet.Title, sheet.SpreadsheetID)
		for _, tab := range sheet.Tabs {
			fmt.Fprintf(&b, " %q (%dx%d)", tab.Name, tab.RowCount, tab.ColumnCount)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// documentContext renders the client context pseudo-document, retrieved
// chunks and document summaries for the system prompt.
func documentContext(clientContext string, retrieved *domain.SearchResults) string {
	var b strings.Builder

	if clientContext != "" {
		b.WriteString("Document: \"Client Context\"\n")
		b.WriteString(clientContext)
		b.WriteString("\n\n")
	}

	for _, rd := range retrieved.Documents {
		if rd.Document.Summary == "" {
			continue
		}
		fmt.Fprintf(&b, "Document: %q: %s\n", rd.Document.Title, rd.Document.Summary)
	}
	if len(retrieved.Documents) > 0 {
		b.WriteString("\n")
	}

	for _, rc := range retrieved.Chunks {
		fmt.Fprintf(&b, "Excerpt from %q:\n%s\n\n", rc.DocumentTitle, rc.Chunk.Content)
	}

	return strings.TrimSpace(b.String())
}

// sourceRefs converts ranked documents into citations.
func sourceRefs(retrieved *domain.SearchResults) []domain.SourceRef {
	refs := make([]domain.SourceRef, len(retrieved.Documents))
	for i, rd := range retrieved.Documents {
		refs[i] = domain.SourceRef{
			DocumentID: rd.Document.ID,
			Title:      rd.Document.Title,
			Score:      rd.Score,
		}
	}
	return refs
}
