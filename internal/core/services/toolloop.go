package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/deskhand/internal/core/domain"
	"github.com/custodia-labs/deskhand/internal/core/ports/driven"
	"github.com/custodia-labs/deskhand/internal/logger"
)

// MaxToolIterations is the hard safety bound on model turns in one
// orchestration run. On reaching it the last assistant text is returned
// even if the model still requested tools.
const MaxToolIterations = 5

// ToolLoopResult is the outcome of one orchestration run.
type ToolLoopResult struct {
	// Text is the final natural-language response.
	Text string

	// Operations is the ordered audit trail of executed tool calls.
	Operations []domain.ToolOperation

	// Iterations is how many model turns the run took.
	Iterations int
}

// ToolOrchestrator drives an iterative LLM conversation with a declared
// spreadsheet tool surface. Each model turn may request tool calls; the
// orchestrator executes them in order, feeds every result (success or
// error) back to the model, and repeats until the model stops requesting
// tools or the iteration cap is reached.
//
// The model is instructed by the system prompt to read before writing and
// to confirm destructive operations. That is a prompt-level measure, not
// a hard guarantee; the only hard guarantees are the iteration cap and
// the audit trail.
type ToolOrchestrator struct {
	llm    driven.LLMService
	sheets driven.Spreadsheet
	audit  driven.AuditStore
}

// NewToolOrchestrator creates a new orchestrator. The audit store is
// optional; when nil, operations are only returned, not persisted.
func NewToolOrchestrator(llm driven.LLMService, sheets driven.Spreadsheet, audit driven.AuditStore) *ToolOrchestrator {
	return &ToolOrchestrator{
		llm:    llm,
		sheets: sheets,
		audit:  audit,
	}
}

// Run executes the bounded tool-call loop. The system prompt and prior
// messages are supplied by the context assembler; Run owns the loop and
// the tool execution only.
func (o *ToolOrchestrator) Run(
	ctx context.Context, tenantID, system string, messages []driven.ChatMessage,
) (*ToolLoopResult, error) {
	logger.Section("Tool Loop")

	result := &ToolLoopResult{}
	convo := make([]driven.ChatMessage, len(messages))
	copy(convo, messages)

	var lastText string

	for iteration := 1; iteration <= MaxToolIterations; iteration++ {
		result.Iterations = iteration
		logger.Debug("Tool loop iteration %d/%d", iteration, MaxToolIterations)

		resp, err := o.llm.Complete(ctx, driven.CompletionRequest{
			System:   system,
			Messages: convo,
			Tools:    SheetToolSpecs(),
		})
		if err != nil {
			return nil, fmt.Errorf("complete: %w", err)
		}

		if resp.Text != "" {
			lastText = resp.Text
		}

		if len(resp.ToolCalls) == 0 {
			result.Text = lastText
			logger.Info("Tool loop done after %d iteration(s), %d operation(s)",
				iteration, len(result.Operations))
			return result, nil
		}

		// Echo the assistant's tool request turn, then execute each call
		// in the order received. A failing call never aborts the others;
		// its error is serialised back to the model like any result.
		convo = append(convo, driven.ChatMessage{
			Role:      "assistant",
			Content:   resp.Text,
			ToolCalls: resp.ToolCalls,
		})

		for _, call := range resp.ToolCalls {
			op := o.execute(ctx, tenantID, call)
			result.Operations = append(result.Operations, op)

			convo = append(convo, driven.ChatMessage{
				Role:       "tool",
				ToolCallID: call.ID,
				Content:    toolResultContent(op),
			})
		}
	}

	// Cap reached: return the last text the model produced, if any
	logger.Warn("Tool loop hit iteration cap (%d), returning last response", MaxToolIterations)
	result.Text = lastText
	return result, nil
}

// execute runs one tool call against the spreadsheet provider and
// records the outcome.
func (o *ToolOrchestrator) execute(ctx context.Context, tenantID string, call domain.ToolCall) domain.ToolOperation {
	op := domain.ToolOperation{
		Tool:  call.Name,
		Input: call.Arguments,
	}

	result, target, cells, err := o.dispatch(ctx, call)
	op.Target = target
	op.CellsAffected = cells

	if err != nil {
		op.Error = fmt.Errorf("%w: %w", domain.ErrToolExecution, err).Error()
		logger.Warn("Tool %s failed: %v", call.Name, err)
	} else {
		op.Success = true
		op.Result = result
		logger.Debug("Tool %s ok: %s", call.Name, target)
	}

	o.recordAudit(ctx, tenantID, call, op)
	return op
}

// dispatch decodes the call's arguments and invokes the provider.
func (o *ToolOrchestrator) dispatch(ctx context.Context, call domain.ToolCall) (result, target string, cells int, err error) {
	switch call.Name {
	case domain.ToolListTabs:
		var args struct {
			SpreadsheetID string `json:"spreadsheet_id"`
		}
		if err = json.Unmarshal([]byte(call.Arguments), &args); err != nil {
			return "", "", 0, fmt.Errorf("decode arguments: %w", err)
		}
		info, infoErr := o.sheets.GetInfo(ctx, args.SpreadsheetID)
		if infoErr != nil {
			return "", args.SpreadsheetID, 0, infoErr
		}
		encoded, _ := json.Marshal(info)
		return string(encoded), args.SpreadsheetID, 0, nil

	case domain.ToolReadRange:
		var args struct {
			SpreadsheetID string `json:"spreadsheet_id"`
			Range         string `json:"range"`
		}
		if err = json.Unmarshal([]byte(call.Arguments), &args); err != nil {
			return "", "", 0, fmt.Errorf("decode arguments: %w", err)
		}
		values, readErr := o.sheets.ReadRange(ctx, args.SpreadsheetID, args.Range)
		if readErr != nil {
			return "", args.Range, 0, readErr
		}
		encoded, _ := json.Marshal(values)
		return string(encoded), args.Range, 0, nil

	case domain.ToolWriteRange:
		var args struct {
			SpreadsheetID string     `json:"spreadsheet_id"`
			Range         string     `json:"range"`
			Values        [][]string `json:"values"`
		}
		if err = json.Unmarshal([]byte(call.Arguments), &args); err != nil {
			return "", "", 0, fmt.Errorf("decode arguments: %w", err)
		}
		written, writeErr := o.sheets.WriteRange(ctx, args.SpreadsheetID, args.Range, args.Values)
		if writeErr != nil {
			return "", args.Range, 0, writeErr
		}
		return fmt.Sprintf("wrote %d cells", written), args.Range, written, nil

	case domain.ToolAppendRows:
		var args struct {
			SpreadsheetID string     `json:"spreadsheet_id"`
			SheetName     string     `json:"sheet_name"`
			Values        [][]string `json:"values"`
		}
		if err = json.Unmarshal([]byte(call.Arguments), &args); err != nil {
			return "", "", 0, fmt.Errorf("decode arguments: %w", err)
		}
		written, appendErr := o.sheets.AppendRows(ctx, args.SpreadsheetID, args.SheetName, args.Values)
		if appendErr != nil {
			return "", args.SheetName, 0, appendErr
		}
		return fmt.Sprintf("appended %d rows", len(args.Values)), args.SheetName, written, nil

	case domain.ToolUpdateCell:
		var args struct {
			SpreadsheetID string `json:"spreadsheet_id"`
			SheetName     string `json:"sheet_name"`
			Cell          string `json:"cell"`
			Value         string `json:"value"`
		}
		if err = json.Unmarshal([]byte(call.Arguments), &args); err != nil {
			return "", "", 0, fmt.Errorf("decode arguments: %w", err)
		}
		target := fmt.Sprintf("%s!%s", args.SheetName, args.Cell)
		if updateErr := o.sheets.UpdateCell(ctx, args.SpreadsheetID, args.SheetName, args.Cell, args.Value); updateErr != nil {
			return "", target, 0, updateErr
		}
		return "cell updated", target, 1, nil

	case domain.ToolClearRange:
		var args struct {
			SpreadsheetID string `json:"spreadsheet_id"`
			Range         string `json:"range"`
		}
		if err = json.Unmarshal([]byte(call.Arguments), &args); err != nil {
			return "", "", 0, fmt.Errorf("decode arguments: %w", err)
		}
		if clearErr := o.sheets.ClearRange(ctx, args.SpreadsheetID, args.Range); clearErr != nil {
			return "", args.Range, 0, clearErr
		}
		return "range cleared", args.Range, 0, nil

	default:
		return "", "", 0, fmt.Errorf("%w: unknown tool %q", domain.ErrUnsupportedType, call.Name)
	}
}

// recordAudit persists one operation when an audit store is configured.
func (o *ToolOrchestrator) recordAudit(ctx context.Context, tenantID string, call domain.ToolCall, op domain.ToolOperation) {
	if o.audit == nil {
		return
	}

	entry := &domain.AuditEntry{
		ID:            uuid.New().String(),
		TenantID:      tenantID,
		Operation:     call.Name,
		Target:        op.Target,
		CellsAffected: op.CellsAffected,
		Detail:        op.Result,
		CreatedAt:     time.Now().UTC(),
	}
	if !op.Success {
		entry.Detail = op.Error
	}

	if err := o.audit.Record(ctx, entry); err != nil {
		logger.Warn("Audit record for %s failed: %v", call.Name, err)
	}
}

// toolResultContent serialises an operation outcome for the model.
func toolResultContent(op domain.ToolOperation) string {
	if op.Success {
		return op.Result
	}
	encoded, _ := json.Marshal(map[string]string{"error": op.Error})
	return string(encoded)
}

// SheetToolSpecs declares the fixed spreadsheet tool surface.
func SheetToolSpecs() []driven.ToolSpec {
	return []driven.ToolSpec{
		{
			Name:        domain.ToolListTabs,
			Description: "List the tabs of a spreadsheet with their sizes.",
			Parameters: json.RawMessage(`{
				"type": "object",
				"properties": {
					"spreadsheet_id": {"type": "string", "description": "The spreadsheet ID"}
				},
				"required": ["spreadsheet_id"]
			}`),
		},
		{
			Name:        domain.ToolReadRange,
			Description: "Read cell values from an A1-notation range. A bare sheet name reads the whole sheet.",
			Parameters: json.RawMessage(`{
				"type": "object",
				"properties": {
					"spreadsheet_id": {"type": "string", "description": "The spreadsheet ID"},
					"range": {"type": "string", "description": "A1 range, e.g. 'Sheet1!A1:C10', or a sheet name"}
				},
				"required": ["spreadsheet_id", "range"]
			}`),
		},
		{
			Name:        domain.ToolWriteRange,
			Description: "Overwrite the cells of an A1-notation range with the given values.",
			Parameters: json.RawMessage(`{
				"type": "object",
				"properties": {
					"spreadsheet_id": {"type": "string", "description": "The spreadsheet ID"},
					"range": {"type": "string", "description": "A1 range to overwrite"},
					"values": {"type": "array", "items": {"type": "array", "items": {"type": "string"}}, "description": "Row-major cell values"}
				},
				"required": ["spreadsheet_id", "range", "values"]
			}`),
		},
		{
			Name:        domain.ToolAppendRows,
			Description: "Append rows after the last data row of a sheet.",
			Parameters: json.RawMessage(`{
				"type": "object",
				"properties": {
					"spreadsheet_id": {"type": "string", "description": "The spreadsheet ID"},
					"sheet_name": {"type": "string", "description": "The tab to append to"},
					"values": {"type": "array", "items": {"type": "array", "items": {"type": "string"}}, "description": "Rows to append"}
				},
				"required": ["spreadsheet_id", "sheet_name", "values"]
			}`),
		},
		{
			Name:        domain.ToolUpdateCell,
			Description: "Write a single cell, e.g. cell 'B2' on a named sheet.",
			Parameters: json.RawMessage(`{
				"type": "object",
				"properties": {
					"spreadsheet_id": {"type": "string", "description": "The spreadsheet ID"},
					"sheet_name": {"type": "string", "description": "The tab containing the cell"},
					"cell": {"type": "string", "description": "A1 cell reference, e.g. 'B2'"},
					"value": {"type": "string", "description": "The value to write"}
				},
				"required": ["spreadsheet_id", "sheet_name", "cell", "value"]
			}`),
		},
		{
			Name:        domain.ToolClearRange,
			Description: "Clear the cells of an A1-notation range. Destructive: confirm with the user before clearing.",
			Parameters: json.RawMessage(`{
				"type": "object",
				"properties": {
					"spreadsheet_id": {"type": "string", "description": "The spreadsheet ID"},
					"range": {"type": "string", "description": "A1 range to clear"}
				},
				"required": ["spreadsheet_id", "range"]
			}`),
		},
	}
}
