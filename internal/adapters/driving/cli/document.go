package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/deskhand/internal/core/domain"
	"github.com/custodia-labs/deskhand/internal/core/ports/driven"
)

var (
	documentTenant string
	documentStatus string
	documentSource string
)

var documentCmd = &cobra.Command{
	Use:   "document",
	Short: "Manage ingested documents",
	Long:  `List, view, resync, or delete ingested documents.`,
}

var documentListCmd = &cobra.Command{
	Use:   "list",
	Short: "List a tenant's documents",
	Args:  cobra.NoArgs,
	RunE:  runDocumentList,
}

var documentGetCmd = &cobra.Command{
	Use:   "get [doc-id]",
	Short: "Show document info",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentGet,
}

var documentContentCmd = &cobra.Command{
	Use:   "content [doc-id]",
	Short: "Print extracted document content",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentContent,
}

var documentResyncCmd = &cobra.Command{
	Use:   "resync [doc-id]",
	Short: "Re-ingest a document from its source",
	Long: `Refetches the source and reruns the pipeline. Unchanged content is
detected by hash and skipped.`,
	Args: cobra.ExactArgs(1),
	RunE: runDocumentResync,
}

var documentDeleteCmd = &cobra.Command{
	Use:   "delete [doc-id]",
	Short: "Delete a document and its chunks",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentDelete,
}

func init() {
	documentListCmd.Flags().StringVarP(&documentTenant, "tenant", "t", "", "tenant ID (required)")
	documentListCmd.Flags().StringVar(&documentStatus, "status", "", "filter by status (pending, processed, failed)")
	documentListCmd.Flags().StringVar(&documentSource, "source", "", "filter by source type")

	documentCmd.AddCommand(documentListCmd)
	documentCmd.AddCommand(documentGetCmd)
	documentCmd.AddCommand(documentContentCmd)
	documentCmd.AddCommand(documentResyncCmd)
	documentCmd.AddCommand(documentDeleteCmd)
	rootCmd.AddCommand(documentCmd)
}

func runDocumentList(cmd *cobra.Command, _ []string) error {
	if docStore == nil {
		return errors.New("document store not configured")
	}
	if documentTenant == "" {
		return errors.New("--tenant is required")
	}

	ctx := context.Background()
	filter := driven.DocumentFilter{
		Status: domain.DocumentStatus(documentStatus),
		Source: domain.SourceType(documentSource),
	}

	docs, err := docStore.ListDocuments(ctx, documentTenant, filter)
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}

	if len(docs) == 0 {
		cmd.Println("No documents found.")
		return nil
	}

	for i := range docs {
		cmd.Printf("  %s\n", docs[i].ID)
		title := docs[i].Title
		if title == "" {
			title = docs[i].Name
		}
		cmd.Printf("    Title:  %s\n", title)
		cmd.Printf("    Source: %s\n", docs[i].Source)
		cmd.Printf("    Status: %s\n", docs[i].Status)
		cmd.Println()
	}

	cmd.Printf("Total: %d documents\n", len(docs))
	return nil
}

func runDocumentGet(cmd *cobra.Command, args []string) error {
	if docStore == nil {
		return errors.New("document store not configured")
	}

	ctx := context.Background()
	doc, err := docStore.GetDocument(ctx, args[0])
	if err != nil {
		return fmt.Errorf("failed to get document: %w", err)
	}

	cmd.Printf("ID:        %s\n", doc.ID)
	cmd.Printf("Tenant:    %s\n", doc.TenantID)
	cmd.Printf("Name:      %s\n", doc.Name)
	cmd.Printf("Source:    %s (%s)\n", doc.Source, doc.SourceRef)
	cmd.Printf("MIME:      %s\n", doc.MIMEType)
	cmd.Printf("Status:    %s\n", doc.Status)
	cmd.Printf("Title:     %s\n", doc.Title)
	cmd.Printf("Topic:     %s\n", doc.Topic)
	cmd.Printf("Sentiment: %s (%.2f)\n", doc.Sentiment, doc.SentimentScore)
	cmd.Printf("Chunks:    %d\n", doc.ChunkCount)
	if doc.Summary != "" {
		cmd.Println()
		cmd.Println(doc.Summary)
	}
	return nil
}

func runDocumentContent(cmd *cobra.Command, args []string) error {
	if docStore == nil {
		return errors.New("document store not configured")
	}

	ctx := context.Background()
	doc, err := docStore.GetDocument(ctx, args[0])
	if err != nil {
		return fmt.Errorf("failed to get document: %w", err)
	}

	cmd.Println(doc.Content)
	return nil
}

func runDocumentResync(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	if err := ingestService.Resync(context.Background(), args[0]); err != nil {
		return fmt.Errorf("resync failed: %w", err)
	}

	cmd.Printf("Resynced %s\n", args[0])
	return nil
}

func runDocumentDelete(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	if err := ingestService.Delete(context.Background(), args[0]); err != nil {
		return fmt.Errorf("delete failed: %w", err)
	}

	cmd.Printf("Deleted %s\n", args[0])
	return nil
}
