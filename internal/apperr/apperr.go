// Package apperr defines the error taxonomy shared by every lazycommit component.
//
// Sentinels are compared with errors.Is and carry user hints that the CLI
// prints below the error line. Structured failures are exposed as types so
// callers can recover their fields with errors.As.
package apperr

import (
	"context"
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
)

// Exit codes returned by the binary.
const (
	ExitOK        = 0
	ExitFailure   = 1
	ExitCancelled = 130
)

var (
	// ErrNoStagedFiles is returned when the index holds no staged paths.
	ErrNoStagedFiles = errors.WithHint(
		errors.New("no staged files"),
		"Stage changes with `git add <path>` before running lazycommit.",
	)
	// ErrInvalidRepository is returned outside a git work tree.
	ErrInvalidRepository = errors.WithHint(
		errors.New("not inside a git work tree"),
		"Run lazycommit from a directory inside a git repository.",
	)
	// ErrBranchResolution is returned when HEAD does not name a branch.
	ErrBranchResolution = errors.WithHint(
		errors.New("unable to resolve current branch"),
		"HEAD may be detached; check out a branch before pushing.",
	)
	// ErrGenerationService marks transport, status and decode failures of the model service.
	ErrGenerationService = errors.New("generation service error")
	// ErrNoModelSelected is returned when generation starts before a model is chosen.
	ErrNoModelSelected = errors.WithHint(
		errors.New("no model selected"),
		"Pass --model, set OLLAMA_MODEL, or pick a model interactively.",
	)
	// ErrNoModelsAvailable is returned when the service lists no models.
	ErrNoModelsAvailable = errors.WithHint(
		errors.New("no models available"),
		"Pull a model first, for example `ollama pull llama3.2`.",
	)
	// ErrUserCancelled is returned when the user aborts an interactive prompt.
	ErrUserCancelled = errors.New("cancelled by user")
	// ErrInvalidUserInput is returned for answers that cannot be interpreted.
	ErrInvalidUserInput = errors.New("invalid input")
)

// CommandFailedError reports a subprocess that exited non-zero or never started.
type CommandFailedError struct {
	Command  string
	ExitCode int
	Stderr   string
	// Cause is set when the process was stopped by its context.
	Cause error
}

func (e *CommandFailedError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "command failed: %s (exit %d)", e.Command, e.ExitCode)
	if e.Stderr != "" {
		b.WriteString(": ")
		b.WriteString(e.Stderr)
	}
	return b.String()
}

func (e *CommandFailedError) Unwrap() error { return e.Cause }

const generationServiceHint = "Make sure Ollama is running (`ollama serve`) and OLLAMA_HOST/OLLAMA_PORT point to it."

// Reasons attached to MalformedReplyError.
const (
	ReasonMissingDescription = "missing description"
	ReasonInvalidTypeOrScope = "invalid type or scope"
	ReasonInvalidType        = "invalid type"
)

// MalformedReplyError reports a model reply that could not be turned into a commit message.
type MalformedReplyError struct {
	Reason string
	Reply  string
}

// NewMalformedReply builds a MalformedReplyError with a stack attached.
func NewMalformedReply(reason, reply string) error {
	return errors.WithStack(&MalformedReplyError{Reason: reason, Reply: reply})
}

func (e *MalformedReplyError) Error() string {
	return "malformed reply: " + e.Reason
}

// ErrorHint implements the hint interface understood by errors.GetAllHints.
func (e *MalformedReplyError) ErrorHint() string {
	return "Regenerate the message or try another model; the reply was:\n" + e.Reply
}

// InvalidModelError reports a model name that is not served by the generation service.
type InvalidModelError struct {
	Name      string
	Available []string
}

func (e *InvalidModelError) Error() string {
	return fmt.Sprintf("invalid model %q", e.Name)
}

// ErrorHint implements the hint interface understood by errors.GetAllHints.
func (e *InvalidModelError) ErrorHint() string {
	if len(e.Available) == 0 {
		return "The generation service reports no models."
	}
	return "Available models: " + strings.Join(e.Available, ", ")
}

// GenerationService marks err as a generation service failure while keeping its cause.
func GenerationService(err error, msg string) error {
	if err == nil {
		return nil
	}
	return errors.WithHint(
		errors.Mark(errors.Wrap(err, msg), ErrGenerationService),
		generationServiceHint,
	)
}

// IsCancelled reports whether err stems from a user abort or a cancelled context.
func IsCancelled(err error) bool {
	return errors.Is(err, ErrUserCancelled) || errors.Is(err, context.Canceled)
}

// Hints returns the de-duplicated user hints attached anywhere in err's chain.
func Hints(err error) []string {
	if err == nil {
		return nil
	}
	seen := make(map[string]struct{})
	var out []string
	for _, h := range errors.GetAllHints(err) {
		h = strings.TrimSpace(h)
		if h == "" {
			continue
		}
		if _, ok := seen[h]; ok {
			continue
		}
		seen[h] = struct{}{}
		out = append(out, h)
	}
	return out
}

// ExitCode maps an error to the process exit status.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case IsCancelled(err):
		return ExitCancelled
	default:
		return ExitFailure
	}
}
