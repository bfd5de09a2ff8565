package driving

import "context"

// Event names on the verification progress stream.
const (
	EventStart         = "start"
	EventInfo          = "info"
	EventQuotaWait     = "quota_wait"
	EventEmailStart    = "email_start"
	EventEmailProgress = "email_progress"
	EventEmailComplete = "email_complete"
	EventPhoneStart    = "phone_start"
	EventPhoneProgress = "phone_progress"
	EventPhoneComplete = "phone_complete"
	EventComplete      = "complete"
	EventError         = "error"
)

// EventSink receives named progress events with JSON-serialisable
// payloads. Implementations include an SSE writer and a CLI printer.
// Send returning an error means the consumer is gone; the producer stops
// scheduling further work.
type EventSink interface {
	Send(event string, payload any) error
}

// ProgressPayload is the payload of per-row progress events.
type ProgressPayload struct {
	Current int    `json:"current"`
	Total   int    `json:"total"`
	Row     int    `json:"row"`
	Value   string `json:"value"`
	Status  string `json:"status"`
	Skipped bool   `json:"skipped"`
}

// QuotaWaitPayload is the payload of quota_wait events.
type QuotaWaitPayload struct {
	Attempt     int    `json:"attempt"`
	MaxAttempts int    `json:"max_attempts"`
	WaitSeconds int    `json:"wait_seconds"`
	Cell        string `json:"cell"`
}

// VerifyRequest configures one verification run. Column indexes are
// 0-based positions in the target sheet. A nil index skips that pass.
type VerifyRequest struct {
	// TenantID is the owning tenant.
	TenantID string

	// SpreadsheetID is the target spreadsheet.
	SpreadsheetID string

	// SheetName is the target tab. Empty means the first tab.
	SheetName string

	// EmailColumn is the 0-based index of the email column, if any.
	EmailColumn *int

	// PhoneColumn is the 0-based index of the phone column, if any.
	PhoneColumn *int

	// UseCarrierLookup selects the external carrier-lookup API for
	// phone verification instead of the local validator.
	UseCarrierLookup bool
}

// VerificationService verifies email and phone columns of a sheet,
// writing status columns back and streaming progress to the sink.
type VerificationService interface {
	// Run executes one verification run. All progress, including the
	// terminal complete or error event, is delivered through sink.
	// The returned error mirrors the terminal error event, if any.
	Run(ctx context.Context, req VerifyRequest, sink EventSink) error
}
