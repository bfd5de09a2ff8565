// Package cli provides the cobra command surface. Commands operate on
// services injected at startup via SetServices; a command invoked
// without its service reports a configuration error instead of
// panicking.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/custodia-labs/deskhand/internal/core/ports/driven"
	"github.com/custodia-labs/deskhand/internal/core/ports/driving"
	"github.com/custodia-labs/deskhand/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

// Injected services. Nil services disable their commands.
var (
	ingestService driving.Ingestor
	searchService driving.Searcher
	chatService   driving.ChatService
	sheetService  driving.SheetService
	verifyService driving.VerificationService

	docStore     driven.DocumentStore
	tenantStore  driven.TenantStore
	auditStore   driven.AuditStore
	configStore  driven.ConfigStore
	validator    driven.AIConfigValidator
	verifierProc driven.VerifierProcess
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "deskhand",
	Short: "Knowledge base and spreadsheet automation for client workspaces",
	Long: `Deskhand ingests client documents into a searchable knowledge base,
answers questions over it, edits connected Google Sheets through LLM
tool calling, and verifies email and phone columns in place.`,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// Services bundles everything the commands need.
type Services struct {
	Ingestor     driving.Ingestor
	Searcher     driving.Searcher
	Chat         driving.ChatService
	Sheets       driving.SheetService
	Verification driving.VerificationService

	DocStore    driven.DocumentStore
	TenantStore driven.TenantStore
	AuditStore  driven.AuditStore
	ConfigStore driven.ConfigStore
	Validator   driven.AIConfigValidator

	// VerifierProcess is the locally managed email verification backend,
	// when one is configured. Started on demand by the verify commands.
	VerifierProcess driven.VerifierProcess
}

// SetServices injects the service implementations the commands call.
func SetServices(s Services) {
	ingestService = s.Ingestor
	searchService = s.Searcher
	chatService = s.Chat
	sheetService = s.Sheets
	verifyService = s.Verification
	docStore = s.DocStore
	tenantStore = s.TenantStore
	auditStore = s.AuditStore
	configStore = s.ConfigStore
	validator = s.Validator
	verifierProc = s.VerifierProcess
}

// SetVersion overrides the reported version string.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
