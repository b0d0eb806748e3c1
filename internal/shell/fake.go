package shell

import (
	"context"
	"sync"
	"time"

	"github.com/chmouel/lazycommit/internal/apperr"
)

// Response is the canned result of a fake command.
type Response struct {
	Output string
	Err    error
	Delay  time.Duration
}

// Fake is an in-memory Runner keyed by the exact command line.
// Unknown commands fail with exit code 127.
type Fake struct {
	mu        sync.Mutex
	responses map[string]Response
	calls     []string
}

var _ Runner = (*Fake)(nil)

// NewFake returns an empty fake runner.
func NewFake() *Fake {
	return &Fake{responses: make(map[string]Response)}
}

// On registers output for command and returns f for chaining.
func (f *Fake) On(command, output string) *Fake {
	return f.Set(command, Response{Output: output})
}

// Fail registers a failure for command.
func (f *Fake) Fail(command string, exitCode int, stderr string) *Fake {
	return f.Set(command, Response{Err: &apperr.CommandFailedError{
		Command:  command,
		ExitCode: exitCode,
		Stderr:   stderr,
	}})
}

// Set registers an arbitrary response for command.
func (f *Fake) Set(command string, resp Response) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses[command] = resp
	return f
}

// Execute records the call and replays the registered response.
func (f *Fake) Execute(ctx context.Context, command string) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, command)
	resp, ok := f.responses[command]
	f.mu.Unlock()

	if !ok {
		return "", &apperr.CommandFailedError{Command: command, ExitCode: 127, Stderr: "fake: unexpected command"}
	}
	if resp.Delay > 0 {
		timer := time.NewTimer(resp.Delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return "", &apperr.CommandFailedError{Command: command, ExitCode: -1, Cause: ctx.Err()}
		case <-timer.C:
		}
	}
	return resp.Output, resp.Err
}

// Calls returns every command executed so far, in call order.
func (f *Fake) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

// Called reports whether command was executed at least once.
func (f *Fake) Called(command string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.calls {
		if c == command {
			return true
		}
	}
	return false
}
