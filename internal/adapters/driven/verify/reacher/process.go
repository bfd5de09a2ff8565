package reacher

import (
	"context"
	"fmt"
	"os/exec"
	"sync"
	"time"

	"github.com/custodia-labs/deskhand/internal/core/ports/driven"
	"github.com/custodia-labs/deskhand/internal/logger"
)

// Ensure Process implements the interface.
var _ driven.VerifierProcess = (*Process)(nil)

// Startup polling parameters.
const (
	startupTimeout = 30 * time.Second
	startupPoll    = 500 * time.Millisecond
	stopTimeout    = 5 * time.Second
)

// Process manages a locally spawned Reacher backend. All state
// transitions are serialised behind a mutex; Start on a running process
// and Stop on a stopped process are no-ops.
type Process struct {
	mu     sync.Mutex
	binary string
	args   []string
	client *Client
	cmd    *exec.Cmd
}

// NewProcess creates a process manager for the given backend binary.
// The client is used to health-check the spawned process.
func NewProcess(binary string, client *Client, args ...string) *Process {
	return &Process{
		binary: binary,
		args:   args,
		client: client,
	}
}

// Start launches the backend if it is not already running and waits for
// it to answer health checks.
func (p *Process) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.running() {
		return nil
	}

	cmd := exec.Command(p.binary, p.args...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", p.binary, err)
	}
	p.cmd = cmd
	logger.Info("Started verification backend %s (pid %d)", p.binary, cmd.Process.Pid)

	// Reap the process when it exits so running() stays accurate.
	go func() {
		_ = cmd.Wait()
	}()

	if err := p.waitReady(ctx); err != nil {
		p.kill()
		return fmt.Errorf("backend did not become ready: %w", err)
	}
	return nil
}

// Stop terminates the backend if it is running.
func (p *Process) Stop(_ context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.running() {
		return nil
	}

	if err := p.cmd.Process.Signal(interruptSignal()); err != nil {
		p.kill()
		p.cmd = nil
		return nil
	}

	// Give it a moment to exit cleanly, then force.
	deadline := time.Now().Add(stopTimeout)
	for time.Now().Before(deadline) {
		if !p.running() {
			p.cmd = nil
			return nil
		}
		time.Sleep(100 * time.Millisecond)
	}
	p.kill()
	p.cmd = nil
	return nil
}

// Status reports the current process state.
func (p *Process) Status() driven.ProcessStatus {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.running() {
		return driven.ProcessRunning
	}
	return driven.ProcessStopped
}

// running reports whether the child process is alive. Callers hold p.mu.
func (p *Process) running() bool {
	if p.cmd == nil || p.cmd.Process == nil {
		return false
	}
	// ProcessState is set once Wait returns.
	return p.cmd.ProcessState == nil
}

// kill force-terminates the child. Callers hold p.mu.
func (p *Process) kill() {
	if p.cmd != nil && p.cmd.Process != nil {
		_ = p.cmd.Process.Kill()
	}
}

// waitReady polls the health endpoint until it answers or the startup
// window elapses. Callers hold p.mu.
func (p *Process) waitReady(ctx context.Context) error {
	deadline := time.Now().Add(startupTimeout)
	for time.Now().Before(deadline) {
		if err := ctx.Err(); err != nil {
			return err
		}
		if p.client.Ping(ctx) == nil {
			return nil
		}
		time.Sleep(startupPoll)
	}
	return fmt.Errorf("no answer within %s", startupTimeout)
}
