// Package shell runs commands through bash and captures their output.
package shell

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"
	"time"

	"go.uber.org/zap"
	"mvdan.cc/sh/v3/syntax"

	"github.com/chmouel/lazycommit/internal/apperr"
	"github.com/chmouel/lazycommit/internal/log"
)

// Runner executes a shell command line and returns its standard output.
type Runner interface {
	Execute(ctx context.Context, command string) (string, error)
}

// ExecRunner runs commands with `bash -c`.
type ExecRunner struct {
	shell   string
	dir     string
	timeout time.Duration
	logger  *zap.Logger
}

var _ Runner = (*ExecRunner)(nil)

// Option configures an ExecRunner.
type Option func(*ExecRunner)

// WithDir sets the working directory of every command.
func WithDir(dir string) Option {
	return func(r *ExecRunner) { r.dir = dir }
}

// WithTimeout bounds each command; zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(r *ExecRunner) { r.timeout = d }
}

// WithShell overrides the interpreter, mostly for tests.
func WithShell(shell string) Option {
	return func(r *ExecRunner) { r.shell = shell }
}

// NewExecRunner builds a runner logging every invocation to logger.
func NewExecRunner(logger *zap.Logger, opts ...Option) *ExecRunner {
	r := &ExecRunner{
		shell:  "bash",
		logger: log.OrNop(logger),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Execute runs command and returns its stdout. Stdout and stderr are copied
// into memory by the exec package while the process runs, so a child
// producing large output on both streams cannot block on a full pipe.
func (r *ExecRunner) Execute(ctx context.Context, command string) (string, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	// #nosec G204 -- command lines are assembled from quoted arguments by the git service
	cmd := exec.CommandContext(ctx, r.shell, "-c", command)
	if r.dir != "" {
		cmd.Dir = r.dir
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	elapsed := time.Since(start)

	if err != nil {
		failed := &apperr.CommandFailedError{
			Command:  command,
			ExitCode: -1,
			Stderr:   strings.TrimSpace(stderr.String()),
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			failed.ExitCode = exitErr.ExitCode()
		} else if failed.Stderr == "" {
			failed.Stderr = err.Error()
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			failed.Cause = ctxErr
		}
		r.logger.Debug("command failed",
			zap.String("cmd", command),
			zap.Int("exit", failed.ExitCode),
			zap.Duration("elapsed", elapsed),
			zap.String("stderr", failed.Stderr),
		)
		return "", failed
	}

	r.logger.Debug("command ok",
		zap.String("cmd", command),
		zap.Duration("elapsed", elapsed),
		zap.Int("stdout_bytes", stdout.Len()),
	)
	return stdout.String(), nil
}

// Quote quotes s as a single bash word.
func Quote(s string) (string, error) {
	return syntax.Quote(s, syntax.LangBash)
}
