package driven

import (
	"context"

	"github.com/custodia-labs/deskhand/internal/core/domain"
)

// EmailVerifier classifies the deliverability of an email address.
type EmailVerifier interface {
	// Check verifies one address. It returns an error wrapping
	// domain.ErrVerifierUnavailable when the backend is unreachable.
	Check(ctx context.Context, email string) (*domain.EmailCheck, error)
}

// PhoneVerifier classifies a phone number's format, line type and carrier.
// Two implementations exist: a local syntactic validator and an external
// carrier-lookup API; the caller picks one per run.
type PhoneVerifier interface {
	Check(ctx context.Context, phone string) (*domain.PhoneCheck, error)
}

// ProcessStatus describes the state of a managed backend process.
type ProcessStatus string

const (
	// ProcessStopped means the backend is not running.
	ProcessStopped ProcessStatus = "stopped"

	// ProcessRunning means the backend is running and reachable.
	ProcessRunning ProcessStatus = "running"
)

// VerifierProcess manages the lifecycle of a locally spawned verification
// backend. Start and Stop are guarded against concurrent invocation:
// calling Start while the process is already running is a no-op, and the
// implementation serialises state transitions internally.
type VerifierProcess interface {
	// Start launches the backend if it is not already running.
	Start(ctx context.Context) error

	// Stop terminates the backend if it is running.
	Stop(ctx context.Context) error

	// Status reports the current process state.
	Status() ProcessStatus
}
