package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/deskhand/internal/core/ports/driving"
)

var (
	verifyTenant      string
	verifySpreadsheet string
	verifySheetName   string
	verifyEmailCol    int
	verifyPhoneCol    int
	verifyCarrier     bool
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Verify email and phone columns of a sheet",
	Long: `Reads the target tab, verifies the selected columns row by row, and
writes status columns back next to them. Progress is printed as it happens.`,
	RunE: runVerify,
}

func init() {
	verifyCmd.Flags().StringVarP(&verifyTenant, "tenant", "t", "", "tenant ID (required)")
	verifyCmd.Flags().StringVarP(&verifySpreadsheet, "spreadsheet", "s", "", "spreadsheet ID (required)")
	verifyCmd.Flags().StringVar(&verifySheetName, "sheet", "", "tab name (defaults to the first tab)")
	verifyCmd.Flags().IntVar(&verifyEmailCol, "email-column", -1, "0-based email column index")
	verifyCmd.Flags().IntVar(&verifyPhoneCol, "phone-column", -1, "0-based phone column index")
	verifyCmd.Flags().BoolVar(&verifyCarrier, "carrier", false, "use the carrier lookup API for phone numbers")
	rootCmd.AddCommand(verifyCmd)
}

func runVerify(cmd *cobra.Command, _ []string) error {
	if verifyService == nil {
		return errors.New("verification service not configured")
	}
	if verifyTenant == "" {
		return errors.New("--tenant is required")
	}
	if verifySpreadsheet == "" {
		return errors.New("--spreadsheet is required")
	}
	if verifyEmailCol < 0 && verifyPhoneCol < 0 {
		return errors.New("at least one of --email-column or --phone-column is required")
	}

	req := driving.VerifyRequest{
		TenantID:         verifyTenant,
		SpreadsheetID:    verifySpreadsheet,
		SheetName:        verifySheetName,
		UseCarrierLookup: verifyCarrier,
	}
	if verifyEmailCol >= 0 {
		col := verifyEmailCol
		req.EmailColumn = &col
	}
	if verifyPhoneCol >= 0 {
		col := verifyPhoneCol
		req.PhoneColumn = &col
	}

	ctx := context.Background()
	if verifierProc != nil && verifyEmailCol >= 0 {
		if err := verifierProc.Start(ctx); err != nil {
			return fmt.Errorf("failed to start verifier backend: %w", err)
		}
		defer func() { _ = verifierProc.Stop(ctx) }()
	}

	sink := &printerSink{cmd: cmd}
	if err := verifyService.Run(ctx, req, sink); err != nil {
		return fmt.Errorf("verification failed: %w", err)
	}
	return nil
}

// printerSink renders progress events as terminal lines. It never
// returns an error; the terminal consumer is never "gone".
type printerSink struct {
	cmd *cobra.Command
}

func (s *printerSink) Send(event string, payload any) error {
	switch event {
	case driving.EventEmailProgress, driving.EventPhoneProgress:
		p, ok := payload.(driving.ProgressPayload)
		if !ok {
			break
		}
		if p.Skipped {
			s.cmd.Printf("  [%d/%d] row %d: skipped\n", p.Current, p.Total, p.Row)
			return nil
		}
		s.cmd.Printf("  [%d/%d] row %d: %s -> %s\n", p.Current, p.Total, p.Row, p.Value, p.Status)
		return nil
	case driving.EventQuotaWait:
		p, ok := payload.(driving.QuotaWaitPayload)
		if !ok {
			break
		}
		s.cmd.Printf("  quota exceeded at %s, waiting %ds (attempt %d/%d)\n",
			p.Cell, p.WaitSeconds, p.Attempt, p.MaxAttempts)
		return nil
	}

	s.cmd.Printf("%s: %v\n", event, payload)
	return nil
}
