package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/deskhand/internal/a1"
	"github.com/custodia-labs/deskhand/internal/core/domain"
	"github.com/custodia-labs/deskhand/internal/core/ports/driven"
	"github.com/custodia-labs/deskhand/internal/core/ports/driving"
	"github.com/custodia-labs/deskhand/internal/logger"
)

// Ensure VerifyService implements the interface.
var _ driving.VerificationService = (*VerifyService)(nil)

// Result column headers. A pre-existing adjacent column with one of
// these headers (case-insensitive) is reused instead of inserting a new
// column, and its non-empty cells mark rows as already verified.
const (
	emailStatusHeader = "Email Status"
	phoneStatusHeader = "Phone Status"
)

// Quota retry policy for single-cell result writes.
const (
	quotaMaxAttempts = 5
	quotaBackoff     = 60 * time.Second
)

// Inter-row delays respecting third-party rate limits.
const (
	emailRowDelay        = 300 * time.Millisecond
	phoneLocalRowDelay   = 100 * time.Millisecond
	phoneCarrierRowDelay = 2 * time.Second
)

// errConsumerGone means the event stream consumer disconnected. In-flight
// row work finishes but no further rows are scheduled.
var errConsumerGone = errors.New("event consumer disconnected")

// VerifyService verifies a sheet's email and phone columns against
// external backends, writing a parallel status column back into the
// sheet and streaming progress events.
//
// Rows are processed strictly in sheet order and never in parallel, so
// each single-cell write is durable before the next row starts. A run
// interrupted mid-way resumes idempotently: rows with a non-empty status
// cell are skipped.
type VerifyService struct {
	sheets       driven.Spreadsheet
	email        driven.EmailVerifier
	phoneLocal   driven.PhoneVerifier
	phoneCarrier driven.PhoneVerifier
	audit        driven.AuditStore

	// sleep is replaceable in tests to avoid real waits.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewVerifyService creates a new verification service. Either phone
// verifier may be nil when that mode is not configured.
func NewVerifyService(
	sheets driven.Spreadsheet,
	email driven.EmailVerifier,
	phoneLocal driven.PhoneVerifier,
	phoneCarrier driven.PhoneVerifier,
	audit driven.AuditStore,
) *VerifyService {
	return &VerifyService{
		sheets:       sheets,
		email:        email,
		phoneLocal:   phoneLocal,
		phoneCarrier: phoneCarrier,
		audit:        audit,
		sleep:        sleepCtx,
	}
}

// columnPass carries the working state of one column verification pass.
type columnPass struct {
	kind        string // "email" or "phone"
	sourceIndex int    // effective 0-based column index
	header      string
	startEvent  string
	progEvent   string
	doneEvent   string
	rowDelay    time.Duration
	verify      func(ctx context.Context, value string) domain.VerificationResult
}

// Run executes one verification run, streaming progress to sink.
func (s *VerifyService) Run(ctx context.Context, req driving.VerifyRequest, sink driving.EventSink) error {
	logger.Section("Verification")

	if err := s.emit(sink, driving.EventStart, map[string]any{
		"spreadsheet_id": req.SpreadsheetID,
		"sheet":          req.SheetName,
	}); err != nil {
		return err
	}

	runErr := s.run(ctx, req, sink)
	if runErr != nil {
		if errors.Is(runErr, errConsumerGone) {
			// Nobody is listening; don't try to emit the error
			return runErr
		}
		_ = s.emit(sink, driving.EventError, map[string]string{"message": runErr.Error()})
		return runErr
	}

	return nil
}

//nolint:gocyclo // Orchestration function with necessary sequential steps
func (s *VerifyService) run(ctx context.Context, req driving.VerifyRequest, sink driving.EventSink) error {
	if req.EmailColumn == nil && req.PhoneColumn == nil {
		return fmt.Errorf("%w: at least one of email or phone column required", domain.ErrInvalidInput)
	}

	info, err := s.sheets.GetInfo(ctx, req.SpreadsheetID)
	if err != nil {
		return fmt.Errorf("get spreadsheet info: %w", err)
	}
	if len(info.Tabs) == 0 {
		return fmt.Errorf("%w: spreadsheet has no tabs", domain.ErrInvalidInput)
	}

	sheetName := req.SheetName
	if sheetName == "" {
		sheetName = info.Tabs[0].Name
	}
	var tabID int64 = -1
	for _, tab := range info.Tabs {
		if tab.Name == sheetName {
			tabID = tab.ID
			break
		}
	}
	if tabID < 0 {
		return fmt.Errorf("%w: no tab named %q", domain.ErrNotFound, sheetName)
	}

	_ = s.emit(sink, driving.EventInfo, map[string]string{
		"title": info.Title,
		"sheet": sheetName,
	})

	phoneVerifier := s.phoneLocal
	phoneDelay := phoneLocalRowDelay
	if req.UseCarrierLookup {
		phoneVerifier = s.phoneCarrier
		phoneDelay = phoneCarrierRowDelay
	}

	// Column-shift bookkeeping: every insertion is recorded, and a later
	// pass shifts its target by the number of insertions at or before it.
	// This generalises beyond the single email-then-phone case.
	var insertions []int
	totalCells := 0

	if req.EmailColumn != nil {
		if s.email == nil {
			return fmt.Errorf("%w: email verifier not configured", domain.ErrVerifierUnavailable)
		}
		pass := columnPass{
			kind:        "email",
			sourceIndex: shiftedIndex(*req.EmailColumn, insertions),
			header:      emailStatusHeader,
			startEvent:  driving.EventEmailStart,
			progEvent:   driving.EventEmailProgress,
			doneEvent:   driving.EventEmailComplete,
			rowDelay:    emailRowDelay,
			verify:      s.verifyEmail,
		}
		cells, inserted, err := s.verifyColumn(ctx, req.SpreadsheetID, sheetName, tabID, pass, sink)
		totalCells += cells
		if inserted >= 0 {
			insertions = append(insertions, inserted)
		}
		if err != nil {
			return err
		}
	}

	if req.PhoneColumn != nil {
		if phoneVerifier == nil {
			return fmt.Errorf("%w: phone verifier not configured", domain.ErrVerifierUnavailable)
		}
		verify := func(ctx context.Context, value string) domain.VerificationResult {
			return s.verifyPhone(ctx, phoneVerifier, value)
		}
		pass := columnPass{
			kind:        "phone",
			sourceIndex: shiftedIndex(*req.PhoneColumn, insertions),
			header:      phoneStatusHeader,
			startEvent:  driving.EventPhoneStart,
			progEvent:   driving.EventPhoneProgress,
			doneEvent:   driving.EventPhoneComplete,
			rowDelay:    phoneDelay,
			verify:      verify,
		}
		cells, inserted, err := s.verifyColumn(ctx, req.SpreadsheetID, sheetName, tabID, pass, sink)
		totalCells += cells
		if inserted >= 0 {
			insertions = append(insertions, inserted)
		}
		if err != nil {
			return err
		}
	}

	s.recordAudit(ctx, req, totalCells)

	return s.emit(sink, driving.EventComplete, map[string]any{
		"cells_affected": totalCells,
	})
}

// verifyColumn runs one pass over a source column. It returns the number
// of cells written and the index of the inserted results column, or -1
// when an existing results column was reused.
func (s *VerifyService) verifyColumn(
	ctx context.Context,
	spreadsheetID, sheetName string,
	tabID int64,
	pass columnPass,
	sink driving.EventSink,
) (cells int, insertedAt int, err error) {
	insertedAt = -1

	if err := s.emit(sink, pass.startEvent, map[string]any{"column": pass.sourceIndex}); err != nil {
		return 0, insertedAt, err
	}

	// 1. Read the source column plus the column immediately to its right
	grid, err := s.sheets.ReadRange(ctx, spreadsheetID,
		a1.ColumnRange(sheetName, pass.sourceIndex, pass.sourceIndex+1))
	if err != nil {
		return 0, insertedAt, fmt.Errorf("read %s column: %w", pass.kind, err)
	}
	if len(grid) == 0 {
		logger.Info("%s pass: column is empty", pass.kind)
		return 0, insertedAt, s.emit(sink, pass.doneEvent, map[string]any{"verified": 0, "skipped": 0})
	}

	// 2-3. Reuse an adjacent results column, or insert a fresh one
	statusIndex := pass.sourceIndex + 1
	hasResults := len(grid[0]) > 1 &&
		strings.Contains(strings.ToLower(grid[0][1]), strings.ToLower(pass.header))

	if !hasResults {
		if err := s.sheets.InsertColumn(ctx, spreadsheetID, tabID, statusIndex, 1); err != nil {
			return 0, insertedAt, fmt.Errorf("insert %s results column: %w", pass.kind, err)
		}
		insertedAt = statusIndex

		headerCell := a1.Cell(statusIndex, 1)
		if err := s.writeCellWithRetry(ctx, spreadsheetID, sheetName, headerCell, pass.header, sink); err != nil {
			return 0, insertedAt, err
		}
		cells++

		// The freshly inserted column is empty; forget any stale
		// adjacent values read before the insertion
		for i := range grid {
			if len(grid[i]) > 1 {
				grid[i] = grid[i][:1]
			}
		}
	} else {
		logger.Info("%s pass: reusing existing %q column", pass.kind, pass.header)
	}

	// 5. Iterate data rows in sheet order, skipping the header row
	total := len(grid) - 1
	verified, skipped := 0, 0

	for i := 1; i < len(grid); i++ {
		row := i + 1 // 1-based sheet row
		value := ""
		if len(grid[i]) > 0 {
			value = strings.TrimSpace(grid[i][0])
		}
		existing := ""
		if len(grid[i]) > 1 {
			existing = strings.TrimSpace(grid[i][1])
		}

		progress := driving.ProgressPayload{
			Current: i,
			Total:   total,
			Row:     row,
			Value:   value,
		}

		if value == "" {
			progress.Status = string(domain.VerifyEmpty)
			progress.Skipped = true
			skipped++
			if err := s.emit(sink, pass.progEvent, progress); err != nil {
				return cells, insertedAt, err
			}
			continue
		}

		if existing != "" {
			// Already verified on a previous run
			progress.Status = existing
			progress.Skipped = true
			skipped++
			if err := s.emit(sink, pass.progEvent, progress); err != nil {
				return cells, insertedAt, err
			}
			continue
		}

		result := pass.verify(ctx, value)
		if result.Status == domain.VerifyError && result.Detail == domain.ErrVerifierUnavailable.Error() {
			return cells, insertedAt, fmt.Errorf("%w: %s backend", domain.ErrVerifierUnavailable, pass.kind)
		}

		// Write immediately so partial progress survives interruption
		cell := a1.Cell(statusIndex, row)
		if err := s.writeCellWithRetry(ctx, spreadsheetID, sheetName, cell, result.Status.Label(), sink); err != nil {
			return cells, insertedAt, err
		}
		cells++
		verified++

		progress.Status = string(result.Status)
		if err := s.emit(sink, pass.progEvent, progress); err != nil {
			return cells, insertedAt, err
		}

		if i < len(grid)-1 {
			if err := s.sleep(ctx, pass.rowDelay); err != nil {
				return cells, insertedAt, err
			}
		}
	}

	logger.Info("%s pass: %d verified, %d skipped", pass.kind, verified, skipped)
	return cells, insertedAt, s.emit(sink, pass.doneEvent, map[string]any{
		"verified": verified,
		"skipped":  skipped,
	})
}

// writeCellWithRetry writes one cell, retrying quota rejections up to
// quotaMaxAttempts with a fixed backoff and a quota_wait notification
// before each wait. Any non-quota error propagates immediately.
func (s *VerifyService) writeCellWithRetry(
	ctx context.Context,
	spreadsheetID, sheetName, cell, value string,
	sink driving.EventSink,
) error {
	var lastErr error

	for attempt := 1; attempt <= quotaMaxAttempts; attempt++ {
		err := s.sheets.UpdateCell(ctx, spreadsheetID, sheetName, cell, value)
		if err == nil {
			return nil
		}
		if !isQuotaError(err) {
			return fmt.Errorf("write %s!%s: %w", sheetName, cell, err)
		}
		lastErr = err

		if attempt == quotaMaxAttempts {
			break
		}

		if err := s.emit(sink, driving.EventQuotaWait, driving.QuotaWaitPayload{
			Attempt:     attempt,
			MaxAttempts: quotaMaxAttempts,
			WaitSeconds: int(quotaBackoff / time.Second),
			Cell:        cell,
		}); err != nil {
			return err
		}
		logger.Warn("Quota exceeded writing %s, attempt %d/%d, backing off", cell, attempt, quotaMaxAttempts)

		if err := s.sleep(ctx, quotaBackoff); err != nil {
			return err
		}
	}

	return fmt.Errorf("%w: write %s!%s after %d attempts: %w",
		domain.ErrQuotaExceeded, sheetName, cell, quotaMaxAttempts, lastErr)
}

// verifyEmail classifies one email address.
func (s *VerifyService) verifyEmail(ctx context.Context, value string) domain.VerificationResult {
	check, err := s.email.Check(ctx, value)
	if err != nil {
		if errors.Is(err, domain.ErrVerifierUnavailable) {
			return domain.VerificationResult{Value: value, Status: domain.VerifyError, Detail: domain.ErrVerifierUnavailable.Error()}
		}
		return domain.VerificationResult{Value: value, Status: domain.VerifyError, Detail: err.Error()}
	}

	status := domain.VerifyUnknown
	switch {
	case check.Disposable:
		status = domain.VerifyDisposable
	case check.Reachability == "safe":
		status = domain.VerifySafe
	case check.Reachability == "risky":
		status = domain.VerifyRisky
	case check.Reachability == "invalid":
		status = domain.VerifyInvalid
	}

	return domain.VerificationResult{
		Value:  value,
		Status: status,
		Detail: fmt.Sprintf("deliverable=%t catch_all=%t", check.Deliverable, check.CatchAll),
	}
}

// verifyPhone classifies one phone number with the chosen backend.
func (s *VerifyService) verifyPhone(ctx context.Context, verifier driven.PhoneVerifier, value string) domain.VerificationResult {
	check, err := verifier.Check(ctx, value)
	if err != nil {
		if errors.Is(err, domain.ErrVerifierUnavailable) {
			return domain.VerificationResult{Value: value, Status: domain.VerifyError, Detail: domain.ErrVerifierUnavailable.Error()}
		}
		return domain.VerificationResult{Value: value, Status: domain.VerifyError, Detail: err.Error()}
	}

	status := domain.VerifyInvalid
	if check.Valid {
		switch check.LineType {
		case "mobile":
			status = domain.VerifyMobile
		case "landline":
			status = domain.VerifyLandline
		case "voip":
			status = domain.VerifyVoip
		default:
			status = domain.VerifyUnknown
		}
	}

	return domain.VerificationResult{
		Value:  value,
		Status: status,
		Detail: fmt.Sprintf("carrier=%q country=%q", check.Carrier, check.Country),
	}
}

// recordAudit stores one summary entry for the whole run.
func (s *VerifyService) recordAudit(ctx context.Context, req driving.VerifyRequest, cells int) {
	if s.audit == nil {
		return
	}

	entry := &domain.AuditEntry{
		ID:            uuid.New().String(),
		TenantID:      req.TenantID,
		Operation:     "verification",
		SpreadsheetID: req.SpreadsheetID,
		Target:        req.SheetName,
		CellsAffected: cells,
		Detail:        fmt.Sprintf("verification run wrote %d cells", cells),
		CreatedAt:     time.Now().UTC(),
	}
	if err := s.audit.Record(ctx, entry); err != nil {
		logger.Warn("Audit record for verification run: %v", err)
	}
}

// emit sends one event, mapping a sink failure to errConsumerGone.
func (s *VerifyService) emit(sink driving.EventSink, event string, payload any) error {
	if err := sink.Send(event, payload); err != nil {
		logger.Warn("Event consumer gone during %s: %v", event, err)
		return fmt.Errorf("%w: %w", errConsumerGone, err)
	}
	return nil
}

// shiftedIndex applies prior column insertions to a 0-based index:
// every insertion at or before the index pushes it one to the right.
func shiftedIndex(index int, insertions []int) int {
	shifted := index
	for _, at := range insertions {
		if at <= index {
			shifted++
		}
	}
	return shifted
}

// isQuotaError reports whether err is a provider quota rejection. The
// spreadsheet adapter wraps HTTP 429 responses in domain.ErrQuotaExceeded;
// message sniffing covers providers that surface the raw status instead.
func isQuotaError(err error) bool {
	if errors.Is(err, domain.ErrQuotaExceeded) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "429") || strings.Contains(msg, "quota") ||
		strings.Contains(msg, "rate limit")
}

// sleepCtx waits for d or until ctx is cancelled.
func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
