package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/deskhand/internal/adapters/driving/sse"
	"github.com/custodia-labs/deskhand/internal/core/ports/driving"
	"github.com/custodia-labs/deskhand/internal/logger"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve verification runs over HTTP",
	Long: `Starts an HTTP server exposing verification as a streaming endpoint.
POST /verify accepts a JSON run request and streams progress as
server-sent events until the run completes.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8090", "listen address")
	rootCmd.AddCommand(serveCmd)
}

// verifyHTTPRequest is the JSON body of POST /verify.
type verifyHTTPRequest struct {
	TenantID         string `json:"tenant_id"`
	SpreadsheetID    string `json:"spreadsheet_id"`
	SheetName        string `json:"sheet_name"`
	EmailColumn      *int   `json:"email_column"`
	PhoneColumn      *int   `json:"phone_column"`
	UseCarrierLookup bool   `json:"use_carrier_lookup"`
}

func runServe(cmd *cobra.Command, _ []string) error {
	if verifyService == nil {
		return errors.New("verification service not configured")
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", handleHealth)
	mux.HandleFunc("/verify", handleVerify)

	server := &http.Server{
		Addr:              serveAddr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	if verifierProc != nil {
		ctx := context.Background()
		if err := verifierProc.Start(ctx); err != nil {
			logger.Warn("verifier backend failed to start: %v", err)
		} else {
			defer func() { _ = verifierProc.Stop(ctx) }()
		}
	}

	cmd.Printf("Listening on %s\n", serveAddr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

func handleVerify(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var body verifyHTTPRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if body.TenantID == "" || body.SpreadsheetID == "" {
		http.Error(w, "tenant_id and spreadsheet_id are required", http.StatusBadRequest)
		return
	}
	if body.EmailColumn == nil && body.PhoneColumn == nil {
		http.Error(w, "at least one of email_column or phone_column is required", http.StatusBadRequest)
		return
	}

	sink, err := sse.New(w)
	if err != nil {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	req := driving.VerifyRequest{
		TenantID:         body.TenantID,
		SpreadsheetID:    body.SpreadsheetID,
		SheetName:        body.SheetName,
		EmailColumn:      body.EmailColumn,
		PhoneColumn:      body.PhoneColumn,
		UseCarrierLookup: body.UseCarrierLookup,
	}

	// The terminal event reaches the client through the sink; a run
	// error after headers are sent can only be logged.
	if err := verifyService.Run(r.Context(), req, sink); err != nil {
		logger.Debug("verification run ended with error: %v", err)
	}
}
