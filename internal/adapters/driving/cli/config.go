package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/deskhand/internal/core/domain"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage application configuration",
	Long:  `View and edit the configuration file, and validate AI provider settings.`,
	RunE:  runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE:  runConfigShow,
}

var configGetCmd = &cobra.Command{
	Use:   "get [key]",
	Short: "Print a configuration value",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigGet,
}

var configSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Set a configuration value",
	Long: `Sets a configuration value and persists it immediately. Keys use dot
notation, e.g. "llm.model" or "google.credentials_file".`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

var configAICmd = &cobra.Command{
	Use:   "ai",
	Short: "Validate the configured AI providers",
	Long:  `Pings the configured embedding and LLM providers to verify connectivity.`,
	RunE:  runConfigAI,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configAICmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	if configStore == nil {
		return errors.New("config store not configured")
	}

	cmd.Printf("Config file: %s\n", configStore.Path())
	cmd.Println()

	cmd.Println("[Embedding]")
	cmd.Printf("  Provider: %s\n", configStore.GetString("embedding.provider"))
	cmd.Printf("  Model:    %s\n", configStore.GetString("embedding.model"))
	cmd.Println()

	cmd.Println("[LLM]")
	cmd.Printf("  Provider: %s\n", configStore.GetString("llm.provider"))
	cmd.Printf("  Model:    %s\n", configStore.GetString("llm.model"))
	cmd.Println()

	cmd.Println("[Google]")
	cmd.Printf("  Credentials: %s\n", configStore.GetString("google.credentials_file"))
	cmd.Printf("  Requests/min: %d\n", configStore.GetInt("google.requests_per_minute"))
	return nil
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	if configStore == nil {
		return errors.New("config store not configured")
	}

	value, ok := configStore.Get(args[0])
	if !ok {
		return fmt.Errorf("key not found: %s", args[0])
	}

	cmd.Printf("%v\n", value)
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	if configStore == nil {
		return errors.New("config store not configured")
	}

	if err := configStore.Set(args[0], args[1]); err != nil {
		return fmt.Errorf("failed to set %s: %w", args[0], err)
	}

	cmd.Printf("Set %s\n", args[0])
	return nil
}

func runConfigAI(cmd *cobra.Command, _ []string) error {
	if configStore == nil {
		return errors.New("config store not configured")
	}
	if validator == nil {
		return errors.New("validator not configured")
	}

	embedding := domain.EmbeddingSettings{
		Provider: domain.AIProvider(configStore.GetString("embedding.provider")),
		Model:    configStore.GetString("embedding.model"),
		BaseURL:  configStore.GetString("embedding.base_url"),
		APIKey:   configStore.GetString("embedding.api_key"),
	}
	llm := domain.LLMSettings{
		Provider: domain.AIProvider(configStore.GetString("llm.provider")),
		Model:    configStore.GetString("llm.model"),
		BaseURL:  configStore.GetString("llm.base_url"),
		APIKey:   configStore.GetString("llm.api_key"),
	}

	if err := validator.ValidateEmbedding(&embedding); err != nil {
		cmd.Printf("Embedding: FAILED (%v)\n", err)
	} else if embedding.IsConfigured() {
		cmd.Printf("Embedding: OK (%s, %s)\n", embedding.Provider, embedding.Model)
	} else {
		cmd.Println("Embedding: not configured")
	}

	if err := validator.ValidateLLM(&llm); err != nil {
		cmd.Printf("LLM:       FAILED (%v)\n", err)
	} else if llm.IsConfigured() {
		cmd.Printf("LLM:       OK (%s, %s)\n", llm.Provider, llm.Model)
	} else {
		cmd.Println("LLM:       not configured")
	}
	return nil
}
