package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/deskhand/internal/core/domain"
)

var sheetTenant string

var sheetCmd = &cobra.Command{
	Use:   "sheet",
	Short: "Manage connected spreadsheets",
	Long:  `Connect, list, sync, or disconnect Google Sheets for a tenant.`,
}

var sheetConnectCmd = &cobra.Command{
	Use:   "connect [spreadsheet-id]",
	Short: "Connect a spreadsheet to a tenant",
	Args:  cobra.ExactArgs(1),
	RunE:  runSheetConnect,
}

var sheetListCmd = &cobra.Command{
	Use:   "list",
	Short: "List a tenant's connected spreadsheets",
	Args:  cobra.NoArgs,
	RunE:  runSheetList,
}

var sheetSyncCmd = &cobra.Command{
	Use:   "sync [sheet-id]",
	Short: "Refresh the cached tab layout",
	Args:  cobra.ExactArgs(1),
	RunE:  runSheetSync,
}

var sheetDisconnectCmd = &cobra.Command{
	Use:   "disconnect [sheet-id]",
	Short: "Remove a spreadsheet binding",
	Args:  cobra.ExactArgs(1),
	RunE:  runSheetDisconnect,
}

func init() {
	sheetCmd.PersistentFlags().StringVarP(&sheetTenant, "tenant", "t", "", "tenant ID")

	sheetCmd.AddCommand(sheetConnectCmd)
	sheetCmd.AddCommand(sheetListCmd)
	sheetCmd.AddCommand(sheetSyncCmd)
	sheetCmd.AddCommand(sheetDisconnectCmd)
	rootCmd.AddCommand(sheetCmd)
}

func runSheetConnect(cmd *cobra.Command, args []string) error {
	if sheetService == nil {
		return errors.New("sheet service not configured")
	}
	if sheetTenant == "" {
		return errors.New("--tenant is required")
	}

	sheet, err := sheetService.Connect(context.Background(), sheetTenant, args[0])
	if err != nil {
		return fmt.Errorf("connect failed: %w", err)
	}

	cmd.Printf("Connected %q as %s\n", sheet.Title, sheet.ID)
	printTabs(cmd, sheet)
	return nil
}

func runSheetList(cmd *cobra.Command, _ []string) error {
	if sheetService == nil {
		return errors.New("sheet service not configured")
	}
	if sheetTenant == "" {
		return errors.New("--tenant is required")
	}

	sheets, err := sheetService.List(context.Background(), sheetTenant)
	if err != nil {
		return fmt.Errorf("failed to list sheets: %w", err)
	}

	if len(sheets) == 0 {
		cmd.Println("No connected sheets.")
		return nil
	}

	for i := range sheets {
		cmd.Printf("  %s\n", sheets[i].ID)
		cmd.Printf("    Title:       %s\n", sheets[i].Title)
		cmd.Printf("    Spreadsheet: %s\n", sheets[i].SpreadsheetID)
		cmd.Printf("    Tabs:        %d\n", len(sheets[i].Tabs))
		cmd.Println()
	}
	return nil
}

func runSheetSync(cmd *cobra.Command, args []string) error {
	if sheetService == nil {
		return errors.New("sheet service not configured")
	}

	sheet, err := sheetService.Sync(context.Background(), args[0])
	if err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}

	cmd.Printf("Synced %q\n", sheet.Title)
	printTabs(cmd, sheet)
	return nil
}

func runSheetDisconnect(cmd *cobra.Command, args []string) error {
	if sheetService == nil {
		return errors.New("sheet service not configured")
	}

	if err := sheetService.Disconnect(context.Background(), args[0]); err != nil {
		return fmt.Errorf("disconnect failed: %w", err)
	}

	cmd.Printf("Disconnected %s\n", args[0])
	return nil
}

func printTabs(cmd *cobra.Command, sheet *domain.ConnectedSheet) {
	for _, tab := range sheet.Tabs {
		cmd.Printf("  %s (%dx%d)\n", tab.Name, tab.RowCount, tab.ColumnCount)
	}
}
