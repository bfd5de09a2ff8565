// Command deskhand is the entrypoint for the knowledge base and
// spreadsheet automation CLI. It assembles the adapters around the core
// services and hands control to the command tree. Missing optional
// configuration (AI providers, Google credentials, verifier backends)
// disables the dependent commands instead of failing startup.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/deskhand/internal/adapters/driven/ai"
	"github.com/custodia-labs/deskhand/internal/adapters/driven/config/file"
	"github.com/custodia-labs/deskhand/internal/adapters/driven/extract"
	"github.com/custodia-labs/deskhand/internal/adapters/driven/extract/docx"
	"github.com/custodia-labs/deskhand/internal/adapters/driven/extract/html"
	"github.com/custodia-labs/deskhand/internal/adapters/driven/extract/markdown"
	"github.com/custodia-labs/deskhand/internal/adapters/driven/extract/pdf"
	"github.com/custodia-labs/deskhand/internal/adapters/driven/extract/plaintext"
	"github.com/custodia-labs/deskhand/internal/adapters/driven/fetch"
	"github.com/custodia-labs/deskhand/internal/adapters/driven/sheets/google"
	"github.com/custodia-labs/deskhand/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/deskhand/internal/adapters/driven/verify/phone"
	"github.com/custodia-labs/deskhand/internal/adapters/driven/verify/reacher"
	"github.com/custodia-labs/deskhand/internal/adapters/driving/cli"
	"github.com/custodia-labs/deskhand/internal/core/domain"
	"github.com/custodia-labs/deskhand/internal/core/ports/driven"
	"github.com/custodia-labs/deskhand/internal/core/services"
	"github.com/custodia-labs/deskhand/internal/logger"
)

func main() {
	// .env is optional; real environments set variables directly.
	_ = godotenv.Load()

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	configStore, err := file.NewConfigStore("")
	if err != nil {
		return fmt.Errorf("failed to initialise config store: %w", err)
	}

	promptStore, err := file.NewPromptStore("")
	if err != nil {
		return fmt.Errorf("failed to initialise prompt store: %w", err)
	}

	settings := configStore.AppSettings()
	applyEnvOverrides(&settings)

	store, err := sqlite.NewStore(os.Getenv("DESKHAND_DATA_DIR"))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer store.Close()

	wired := cli.Services{
		DocStore:    store.DocumentStore(),
		TenantStore: store.TenantStore(),
		AuditStore:  store.AuditStore(),
		ConfigStore: configStore,
		Validator:   ai.NewConfigValidator(),
	}

	embedder, err := ai.CreateAndValidateEmbeddingService(&settings.Embedding)
	if err != nil {
		logger.Warn("%v", err)
	}
	llm, err := ai.CreateAndValidateLLMService(&settings.LLM)
	if err != nil {
		logger.Warn("%v", err)
	}
	if aware, ok := llm.(driven.PromptStoreAware); ok {
		aware.SetPromptStore(promptStore)
	}

	var sheetsClient *google.SheetsClient
	if settings.Google.IsConfigured() {
		sheetsClient, err = google.NewSheetsClient(ctx, google.Config{
			CredentialsFile: settings.Google.CredentialsFile,
			RateLimit: google.RateLimitConfig{
				RequestsPerSecond: float64(settings.Google.RequestsPerMinute) / 60.0,
			},
		})
		if err != nil {
			logger.Warn("Sheets API unavailable: %v", err)
		}
	}

	if llm != nil && embedder != nil {
		fetcher, err := fetch.New(ctx, fetch.Config{
			CredentialsFile: settings.Google.CredentialsFile,
		})
		if err != nil {
			return fmt.Errorf("failed to initialise fetcher: %w", err)
		}

		ingest := services.NewIngestService(
			store.DocumentStore(), newExtractorRegistry(), fetcher, llm, embedder)
		search := services.NewSearchService(store.DocumentStore(), embedder)

		wired.Ingestor = ingest
		wired.Searcher = search

		if sheetsClient != nil {
			orchestrator := services.NewToolOrchestrator(llm, sheetsClient, store.AuditStore())
			chat := services.NewChatService(
				search,
				store.DocumentStore(),
				store.SheetStore(),
				store.TenantStore(),
				store.ConversationStore(),
				llm,
				orchestrator,
			)
			chat.SetPromptStore(promptStore)
			wired.Chat = chat
		}
	}

	if sheetsClient != nil {
		wired.Sheets = services.NewSheetManager(store.SheetStore(), sheetsClient)

		email := reacher.NewClient(reacher.Config{BaseURL: settings.Verifier.ReacherBaseURL})
		if settings.Verifier.ReacherBinary != "" {
			wired.VerifierProcess = reacher.NewProcess(settings.Verifier.ReacherBinary, email)
		}

		var carrier driven.PhoneVerifier
		if settings.Verifier.CarrierAPIKey != "" {
			carrier, err = phone.NewCarrierVerifier(phone.CarrierConfig{
				APIKey: settings.Verifier.CarrierAPIKey,
			})
			if err != nil {
				logger.Warn("carrier lookup unavailable: %v", err)
			}
		}

		wired.Verification = services.NewVerifyService(
			sheetsClient, email, phone.NewLocalVerifier(), carrier, store.AuditStore())
	}

	cli.SetServices(wired)
	return cli.Execute()
}

// newExtractorRegistry registers all supported content types.
func newExtractorRegistry() *extract.Registry {
	registry := extract.NewRegistry()
	registry.Register(plaintext.New())
	registry.Register(markdown.New())
	registry.Register(html.New())
	registry.Register(docx.New())
	registry.Register(pdf.New(extract.ExecRunner{}))
	return registry
}

// applyEnvOverrides lets environment variables supply secrets that should
// not live in the config file.
func applyEnvOverrides(settings *domain.AppSettings) {
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		if settings.Embedding.APIKey == "" {
			settings.Embedding.APIKey = key
		}
		if settings.LLM.APIKey == "" {
			settings.LLM.APIKey = key
		}
	}
	if key := os.Getenv("CARRIER_API_KEY"); key != "" && settings.Verifier.CarrierAPIKey == "" {
		settings.Verifier.CarrierAPIKey = key
	}
	if creds := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"); creds != "" && settings.Google.CredentialsFile == "" {
		settings.Google.CredentialsFile = creds
	}
}
