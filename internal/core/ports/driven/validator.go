package driven

import "github.com/custodia-labs/deskhand/internal/core/domain"

// AIConfigValidator validates AI provider configurations by testing
// connectivity. Used by the settings commands to reject bad credentials
// at configuration time rather than at first use.
type AIConfigValidator interface {
	// ValidateEmbedding checks an embedding provider configuration.
	// Returns nil for unconfigured settings.
	ValidateEmbedding(config *domain.EmbeddingSettings) error

	// ValidateLLM checks an LLM provider configuration.
	// Returns nil for unconfigured settings.
	ValidateLLM(config *domain.LLMSettings) error
}
