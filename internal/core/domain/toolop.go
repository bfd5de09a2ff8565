package domain

import "time"

// Tool names exposed to the model by the tool-call orchestrator.
// Each maps to one operation on the spreadsheet provider.
const (
	ToolListTabs   = "list_tabs"
	ToolReadRange  = "read_range"
	ToolWriteRange = "write_range"
	ToolAppendRows = "append_rows"
	ToolUpdateCell = "update_cell"
	ToolClearRange = "clear_range"
)

// ToolCall is a single model-initiated invocation of a declared tool.
type ToolCall struct {
	// ID is the provider-assigned call identifier, echoed back in the
	// tool result so the model can match results to requests.
	ID string

	// Name is the tool being invoked.
	Name string

	// Arguments is the raw JSON argument payload from the model.
	Arguments string
}

// ToolOperation records the outcome of one executed tool call. Operations
// are collected in execution order and returned to the caller as an audit
// trail; they are not a persisted entity except as audit log rows.
type ToolOperation struct {
	// Tool is the tool name that was invoked.
	Tool string

	// Input is the raw JSON arguments the model supplied.
	Input string

	// Target is the range, cell or tab the operation touched, when known.
	Target string

	// Success reports whether the call succeeded.
	Success bool

	// Result is a short description of the outcome on success.
	Result string

	// Error is the failure message on error. A failed call never aborts
	// the orchestration loop; the error is fed back to the model.
	Error string

	// CellsAffected is the number of cells written, for mutating tools.
	CellsAffected int
}

// AuditEntry is a persisted record of an external side effect: either one
// tool operation from a chat turn or a verification run summary.
type AuditEntry struct {
	// ID is the unique identifier for the entry.
	ID string

	// TenantID is the owning tenant.
	TenantID string

	// Operation is the operation type (a tool name or "verification").
	Operation string

	// SpreadsheetID is the target spreadsheet, when applicable.
	SpreadsheetID string

	// Target is the range or cell affected, when applicable.
	Target string

	// CellsAffected is the number of cells written.
	CellsAffected int

	// Detail is a free-form description of the outcome.
	Detail string

	// CreatedAt is when the entry was recorded.
	CreatedAt time.Time
}
