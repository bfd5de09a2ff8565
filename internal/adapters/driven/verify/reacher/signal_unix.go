//go:build !windows

package reacher

import (
	"os"
	"syscall"
)

// interruptSignal is the polite termination signal for the backend.
func interruptSignal() os.Signal {
	return syscall.SIGTERM
}
