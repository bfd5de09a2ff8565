package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	auditTenant string
	auditLimit  int
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Show the spreadsheet operation audit log",
	Long: `Lists external side effects recorded for a tenant: spreadsheet edits
from chat tool calls and verification run summaries, newest first.`,
	Args: cobra.NoArgs,
	RunE: runAudit,
}

func init() {
	auditCmd.Flags().StringVarP(&auditTenant, "tenant", "t", "", "tenant ID (required)")
	auditCmd.Flags().IntVarP(&auditLimit, "limit", "n", 50, "maximum number of entries")
	rootCmd.AddCommand(auditCmd)
}

func runAudit(cmd *cobra.Command, _ []string) error {
	if auditStore == nil {
		return errors.New("audit store not configured")
	}
	if auditTenant == "" {
		return errors.New("--tenant is required")
	}

	entries, err := auditStore.ListByTenant(context.Background(), auditTenant, auditLimit)
	if err != nil {
		return fmt.Errorf("failed to list audit entries: %w", err)
	}

	if len(entries) == 0 {
		cmd.Println("No audit entries.")
		return nil
	}

	for i := range entries {
		e := entries[i]
		cmd.Printf("  %s  %s", e.CreatedAt.Format("2006-01-02 15:04:05"), e.Operation)
		if e.Target != "" {
			cmd.Printf("  %s", e.Target)
		}
		if e.CellsAffected > 0 {
			cmd.Printf("  (%d cells)", e.CellsAffected)
		}
		cmd.Println()
		if e.Detail != "" {
			cmd.Printf("    %s\n", e.Detail)
		}
	}
	return nil
}
