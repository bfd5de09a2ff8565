//go:build windows

package reacher

import "os"

// interruptSignal is the polite termination signal for the backend.
// Windows has no SIGTERM; Kill is the only reliable option.
func interruptSignal() os.Signal {
	return os.Kill
}
