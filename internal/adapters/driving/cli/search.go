package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/deskhand/internal/core/domain"
)

var (
	searchTenant string
	searchLimit  int
	searchJSON   bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search a tenant's knowledge base",
	Long: `Performs two-stage semantic retrieval: documents are ranked against
the query first, then the chunks of the closest documents.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().StringVarP(&searchTenant, "tenant", "t", "", "tenant ID (required)")
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 0, "maximum number of documents to consider")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	if searchService == nil {
		return errors.New("search service not configured")
	}
	if searchTenant == "" {
		return errors.New("--tenant is required")
	}

	results, err := searchService.Search(context.Background(), searchTenant, args[0], searchLimit)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return outputSearchJSON(cmd, results)
	}

	return outputSearchText(cmd, results)
}

func outputSearchJSON(cmd *cobra.Command, results *domain.SearchResults) error {
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputSearchText(cmd *cobra.Command, results *domain.SearchResults) error {
	if len(results.Chunks) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	cmd.Println("Documents:")
	for i := range results.Documents {
		title := results.Documents[i].Document.Title
		if title == "" {
			title = results.Documents[i].Document.Name
		}
		cmd.Printf("  [%d] %s (%.2f)\n", i+1, title, results.Documents[i].Score)
	}

	cmd.Println()
	cmd.Println("Passages:")
	for i := range results.Chunks {
		cmd.Printf("  [%d] %s (%.2f)\n", i+1, results.Chunks[i].DocumentTitle, results.Chunks[i].Score)
		cmd.Printf("      %s\n", snippet(results.Chunks[i].Chunk.Content, 160))
	}
	return nil
}

// snippet truncates s to max characters on a rune boundary.
func snippet(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
