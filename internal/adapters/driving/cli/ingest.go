package cli

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/deskhand/internal/core/domain"
	"github.com/custodia-labs/deskhand/internal/core/ports/driving"
)

var (
	ingestTenant string
	ingestName   string
	ingestMIME   string
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Ingest source material into the knowledge base",
	Long: `Runs the full ingestion pipeline for a source: extract text, derive
metadata with the configured LLM, embed, chunk, and persist.`,
}

var ingestFileCmd = &cobra.Command{
	Use:   "file [path]",
	Short: "Ingest a local file",
	Args:  cobra.ExactArgs(1),
	RunE:  runIngestFile,
}

var ingestURLCmd = &cobra.Command{
	Use:   "url [url]",
	Short: "Ingest a web page",
	Args:  cobra.ExactArgs(1),
	RunE:  runIngestURL,
}

var ingestGDocCmd = &cobra.Command{
	Use:   "gdoc [file-id]",
	Short: "Ingest a Google Doc",
	Args:  cobra.ExactArgs(1),
	RunE:  runIngestGDoc,
}

var ingestGSheetCmd = &cobra.Command{
	Use:   "gsheet [file-id]",
	Short: "Ingest a Google Sheet as CSV",
	Args:  cobra.ExactArgs(1),
	RunE:  runIngestGSheet,
}

func init() {
	ingestCmd.PersistentFlags().StringVarP(&ingestTenant, "tenant", "t", "", "tenant ID (required)")
	ingestCmd.PersistentFlags().StringVar(&ingestName, "name", "", "display name override")
	ingestFileCmd.Flags().StringVar(&ingestMIME, "mime", "", "content type override")

	ingestCmd.AddCommand(ingestFileCmd)
	ingestCmd.AddCommand(ingestURLCmd)
	ingestCmd.AddCommand(ingestGDocCmd)
	ingestCmd.AddCommand(ingestGSheetCmd)
	rootCmd.AddCommand(ingestCmd)
}

func runIngestFile(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}
	if ingestTenant == "" {
		return errors.New("--tenant is required")
	}

	path := args[0]
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	mimeType := ingestMIME
	if mimeType == "" {
		mimeType = mime.TypeByExtension(filepath.Ext(path))
	}
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	name := ingestName
	if name == "" {
		name = filepath.Base(path)
	}

	return runPipeline(cmd, driving.IngestRequest{
		TenantID:  ingestTenant,
		Source:    domain.SourceUpload,
		SourceRef: path,
		Name:      name,
		MIMEType:  mimeType,
		Data:      data,
	})
}

func runIngestURL(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}
	if ingestTenant == "" {
		return errors.New("--tenant is required")
	}

	name := ingestName
	if name == "" {
		name = args[0]
	}

	return runPipeline(cmd, driving.IngestRequest{
		TenantID:  ingestTenant,
		Source:    domain.SourceURL,
		SourceRef: args[0],
		Name:      name,
	})
}

func runIngestGDoc(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}
	if ingestTenant == "" {
		return errors.New("--tenant is required")
	}

	return runPipeline(cmd, driving.IngestRequest{
		TenantID:  ingestTenant,
		Source:    domain.SourceGoogleDoc,
		SourceRef: args[0],
		Name:      ingestName,
	})
}

func runIngestGSheet(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}
	if ingestTenant == "" {
		return errors.New("--tenant is required")
	}

	return runPipeline(cmd, driving.IngestRequest{
		TenantID:  ingestTenant,
		Source:    domain.SourceGoogleSheet,
		SourceRef: args[0],
		Name:      ingestName,
	})
}

func runPipeline(cmd *cobra.Command, req driving.IngestRequest) error {
	ctx := context.Background()

	doc, err := ingestService.Register(ctx, req)
	if err != nil {
		return fmt.Errorf("failed to register document: %w", err)
	}

	cmd.Printf("Registered %s\n", doc.ID)

	if err := ingestService.Process(ctx, doc.ID, req); err != nil {
		return fmt.Errorf("processing failed: %w", err)
	}

	processed, err := docStore.GetDocument(ctx, doc.ID)
	if err != nil {
		return fmt.Errorf("failed to load document: %w", err)
	}

	cmd.Printf("Processed %s\n", processed.ID)
	cmd.Printf("  Title:  %s\n", processed.Title)
	cmd.Printf("  Topic:  %s\n", processed.Topic)
	cmd.Printf("  Chunks: %d\n", processed.ChunkCount)
	return nil
}
