// Package google provides a Spreadsheet adapter backed by the Google
// Sheets API.
package google

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/custodia-labs/deskhand/internal/core/domain"
	"github.com/custodia-labs/deskhand/internal/core/ports/driven"
)

// Ensure SheetsClient implements the interface.
var _ driven.Spreadsheet = (*SheetsClient)(nil)

// valueInputRaw stores values exactly as provided, without the
// locale-dependent parsing USER_ENTERED applies.
const valueInputRaw = "RAW"

// Config holds configuration for the Sheets client.
type Config struct {
	// CredentialsFile is the path to a service account JSON key
	// (required unless HTTPClient is set).
	CredentialsFile string

	// HTTPClient overrides the authenticated transport, used in tests.
	HTTPClient *http.Client

	// RateLimit throttles outgoing requests. Zero values use defaults.
	RateLimit RateLimitConfig
}

// SheetsClient provides spreadsheet operations using the Google Sheets API.
type SheetsClient struct {
	svc     *sheets.Service
	limiter *RateLimiter
}

// NewSheetsClient creates a Sheets API client.
func NewSheetsClient(ctx context.Context, cfg Config) (*SheetsClient, error) {
	var opts []option.ClientOption
	switch {
	case cfg.HTTPClient != nil:
		opts = append(opts, option.WithHTTPClient(cfg.HTTPClient))
	case cfg.CredentialsFile != "":
		opts = append(opts,
			option.WithCredentialsFile(cfg.CredentialsFile),
			option.WithScopes(sheets.SpreadsheetsScope))
	default:
		return nil, fmt.Errorf("google sheets: credentials file is required")
	}

	svc, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	return &SheetsClient{
		svc:     svc,
		limiter: NewRateLimiter(cfg.RateLimit),
	}, nil
}

// GetInfo returns the spreadsheet title and tab layout.
func (c *SheetsClient) GetInfo(ctx context.Context, spreadsheetID string) (*driven.SpreadsheetInfo, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	resp, err := c.svc.Spreadsheets.Get(spreadsheetID).
		Fields("properties.title", "sheets.properties").
		Context(ctx).Do()
	if err != nil {
		return nil, c.wrapError("get spreadsheet", err)
	}

	info := &driven.SpreadsheetInfo{Title: resp.Properties.Title}
	for _, sheet := range resp.Sheets {
		props := sheet.Properties
		tab := domain.TabInfo{
			ID:   props.SheetId,
			Name: props.Title,
		}
		if props.GridProperties != nil {
			tab.RowCount = int(props.GridProperties.RowCount)
			tab.ColumnCount = int(props.GridProperties.ColumnCount)
		}
		info.Tabs = append(info.Tabs, tab)
	}
	return info, nil
}

// ReadRange returns the cell values of an A1-notation range.
func (c *SheetsClient) ReadRange(ctx context.Context, spreadsheetID, a1Range string) ([][]string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	resp, err := c.svc.Spreadsheets.Values.Get(spreadsheetID, a1Range).Context(ctx).Do()
	if err != nil {
		return nil, c.wrapError("read range", err)
	}

	rows := make([][]string, len(resp.Values))
	for i, row := range resp.Values {
		cells := make([]string, len(row))
		for j, cell := range row {
			cells[j] = fmt.Sprint(cell)
		}
		rows[i] = cells
	}
	return rows, nil
}

// WriteRange overwrites the cells of an A1-notation range and returns the
// number of cells written.
func (c *SheetsClient) WriteRange(ctx context.Context, spreadsheetID, a1Range string, values [][]string) (int, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return 0, err
	}

	resp, err := c.svc.Spreadsheets.Values.Update(spreadsheetID, a1Range, valueRange(values)).
		ValueInputOption(valueInputRaw).
		Context(ctx).Do()
	if err != nil {
		return 0, c.wrapError("write range", err)
	}
	return int(resp.UpdatedCells), nil
}

// AppendRows appends rows after the last data row of a sheet.
func (c *SheetsClient) AppendRows(ctx context.Context, spreadsheetID, sheetName string, values [][]string) (int, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return 0, err
	}

	resp, err := c.svc.Spreadsheets.Values.Append(spreadsheetID, sheetName, valueRange(values)).
		ValueInputOption(valueInputRaw).
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return 0, c.wrapError("append rows", err)
	}
	if resp.Updates == nil {
		return 0, nil
	}
	return int(resp.Updates.UpdatedCells), nil
}

// UpdateCell writes a single cell.
func (c *SheetsClient) UpdateCell(ctx context.Context, spreadsheetID, sheetName, cell, value string) error {
	a1Range := fmt.Sprintf("%s!%s", sheetName, cell)
	_, err := c.WriteRange(ctx, spreadsheetID, a1Range, [][]string{{value}})
	return err
}

// ClearRange clears the cells of an A1-notation range.
func (c *SheetsClient) ClearRange(ctx context.Context, spreadsheetID, a1Range string) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	_, err := c.svc.Spreadsheets.Values.Clear(spreadsheetID, a1Range, &sheets.ClearValuesRequest{}).
		Context(ctx).Do()
	if err != nil {
		return c.wrapError("clear range", err)
	}
	return nil
}

// InsertColumn inserts count empty columns before the 0-based column
// index on the given tab.
func (c *SheetsClient) InsertColumn(ctx context.Context, spreadsheetID string, tabID int64, index, count int) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	req := &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			InsertDimension: &sheets.InsertDimensionRequest{
				Range: &sheets.DimensionRange{
					SheetId:    tabID,
					Dimension:  "COLUMNS",
					StartIndex: int64(index),
					EndIndex:   int64(index + count),
				},
				InheritFromBefore: index > 0,
			},
		}},
	}

	_, err := c.svc.Spreadsheets.BatchUpdate(spreadsheetID, req).Context(ctx).Do()
	if err != nil {
		return c.wrapError("insert column", err)
	}
	return nil
}

// AddTab creates a new worksheet and returns its numeric ID.
func (c *SheetsClient) AddTab(ctx context.Context, spreadsheetID, name string) (int64, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return 0, err
	}

	req := &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			AddSheet: &sheets.AddSheetRequest{
				Properties: &sheets.SheetProperties{Title: name},
			},
		}},
	}

	resp, err := c.svc.Spreadsheets.BatchUpdate(spreadsheetID, req).Context(ctx).Do()
	if err != nil {
		return 0, c.wrapError("add tab", err)
	}
	for _, reply := range resp.Replies {
		if reply.AddSheet != nil && reply.AddSheet.Properties != nil {
			return reply.AddSheet.Properties.SheetId, nil
		}
	}
	return 0, fmt.Errorf("add tab: no sheet properties in reply")
}

// wrapError maps Google API errors onto the port's contract. 429s wrap
// domain.ErrQuotaExceeded and extend the limiter's backoff window.
func (c *SheetsClient) wrapError(op string, err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) && gerr.Code == http.StatusTooManyRequests {
		c.limiter.RecordRateLimitError(0)
		return fmt.Errorf("%s: %w: %s", op, domain.ErrQuotaExceeded, gerr.Message)
	}
	if errors.As(err, &gerr) && gerr.Code == http.StatusNotFound {
		return fmt.Errorf("%s: %w", op, domain.ErrNotFound)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// valueRange converts a string grid to the API value type.
func valueRange(values [][]string) *sheets.ValueRange {
	rows := make([][]any, len(values))
	for i, row := range values {
		cells := make([]any, len(row))
		for j, cell := range row {
			cells[j] = cell
		}
		rows[i] = cells
	}
	return &sheets.ValueRange{Values: rows}
}
