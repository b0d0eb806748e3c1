package ui

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/chmouel/lazycommit/internal/apperr"
	"github.com/chmouel/lazycommit/internal/models"
)

// CancelToken aborts a numbered selection.
const CancelToken = "q"

// fzfLookPath is a package-level variable for exec.LookPath, replaceable in tests.
var fzfLookPath = exec.LookPath

// fzfRun pipes lines through fzf and returns the chosen line; replaceable in tests.
var fzfRun = runFzf

// Plain prompts on a line-oriented terminal: numbered lists and (Y/n)
// questions, read one line at a time.
type Plain struct {
	in     *bufio.Reader
	out    io.Writer
	useFzf bool

	// pending holds a read abandoned by a cancelled prompt; the next
	// prompt takes its line instead of starting a second reader.
	pending chan lineResult
}

// PlainOption configures a Plain prompter.
type PlainOption func(*Plain)

// WithFzf selects through fzf when the binary is on PATH.
func WithFzf(enabled bool) PlainOption {
	return func(p *Plain) { p.useFzf = enabled }
}

// NewPlain reads answers from in and writes questions to out.
func NewPlain(in io.Reader, out io.Writer, opts ...PlainOption) *Plain {
	p := &Plain{in: bufio.NewReader(in), out: out}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

type lineResult struct {
	text string
	err  error
}

// readLine returns io.EOF only when the input ends before any text. At most
// one read is in flight; Plain is not safe for concurrent use.
func (p *Plain) readLine(ctx context.Context) (string, error) {
	if p.pending == nil {
		ch := make(chan lineResult, 1)
		go func() {
			text, err := p.in.ReadString('\n')
			if err == io.EOF && text != "" {
				err = nil
			}
			ch <- lineResult{strings.TrimSpace(text), err}
		}()
		p.pending = ch
	}
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-p.pending:
		p.pending = nil
		return r.text, r.err
	}
}

// Select prints a numbered list and reads the chosen number. The cancel
// token or end of input aborts with apperr.ErrUserCancelled.
func (p *Plain) Select(ctx context.Context, title string, items []models.Choice) (int, error) {
	if len(items) == 0 {
		return -1, errors.Wrap(apperr.ErrInvalidUserInput, "nothing to select")
	}
	if p.useFzf {
		if _, err := fzfLookPath("fzf"); err == nil {
			return p.selectWithFzf(ctx, title, items)
		}
	}

	fmt.Fprintf(p.out, "\n%s:\n\n", title)
	for i, item := range items {
		if item.Description != "" {
			fmt.Fprintf(p.out, "  [%d] %s (%s)\n", i+1, item.Label, item.Description)
			continue
		}
		fmt.Fprintf(p.out, "  [%d] %s\n", i+1, item.Label)
	}
	fmt.Fprintf(p.out, "\nSelect [1-%d] or %s to quit: ", len(items), CancelToken)

	text, err := p.readLine(ctx)
	if err != nil {
		return -1, p.readErr(err)
	}
	if strings.EqualFold(text, CancelToken) {
		return -1, apperr.ErrUserCancelled
	}
	if text == "" {
		return -1, errors.Wrap(apperr.ErrInvalidUserInput, "no selection made")
	}

	idx, err := strconv.Atoi(text)
	if err != nil {
		return -1, errors.Wrapf(apperr.ErrInvalidUserInput, "invalid selection %q", text)
	}
	if idx < 1 || idx > len(items) {
		return -1, errors.Wrapf(apperr.ErrInvalidUserInput, "selection %d out of range (must be 1-%d)", idx, len(items))
	}
	return idx - 1, nil
}

func (p *Plain) readErr(err error) error {
	if errors.Is(err, io.EOF) {
		return apperr.ErrUserCancelled
	}
	return err
}

func (p *Plain) selectWithFzf(ctx context.Context, title string, items []models.Choice) (int, error) {
	lines := make([]string, len(items))
	for i, item := range items {
		// Collapse whitespace so each choice stays on one fzf line.
		label := strings.Join(strings.Fields(item.Label), " ")
		lines[i] = fmt.Sprintf("%d\t%s\t%s", i+1, label, item.Description)
	}

	chosen, err := fzfRun(ctx, title, lines)
	if err != nil {
		if ctx.Err() != nil {
			return -1, ctx.Err()
		}
		// fzf exits 130 on Esc/Ctrl-C and 1 on no match.
		return -1, apperr.ErrUserCancelled
	}
	num, _, _ := strings.Cut(strings.TrimSpace(chosen), "\t")
	idx, err := strconv.Atoi(num)
	if err != nil || idx < 1 || idx > len(items) {
		return -1, errors.Wrapf(apperr.ErrInvalidUserInput, "unexpected fzf selection %q", chosen)
	}
	return idx - 1, nil
}

func runFzf(ctx context.Context, title string, lines []string) (string, error) {
	//nolint:gosec // fixed argv, no user input reaches the shell
	cmd := exec.CommandContext(ctx, "fzf",
		"--prompt", title+"> ",
		"--delimiter", "\t",
		"--with-nth", "2..",
		"--height", "40%",
		"--reverse",
	)
	cmd.Stdin = strings.NewReader(strings.Join(lines, "\n"))
	out, err := cmd.Output()
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// Confirm asks a (Y/n) question. An empty answer or end of input takes the
// default; anything else is yes only when it starts with "y".
func (p *Plain) Confirm(ctx context.Context, question string, defaultYes bool) (bool, error) {
	hint := "(y/N)"
	if defaultYes {
		hint = "(Y/n)"
	}
	fmt.Fprintf(p.out, "%s %s: ", question, hint)

	text, err := p.readLine(ctx)
	if errors.Is(err, io.EOF) {
		fmt.Fprintln(p.out)
		return defaultYes, nil
	}
	if err != nil {
		return false, err
	}
	if text == "" {
		return defaultYes, nil
	}
	return strings.HasPrefix(strings.ToLower(text), "y"), nil
}

// Input reads one line, returning def when the answer is blank.
func (p *Plain) Input(ctx context.Context, prompt, def string) (string, error) {
	if def != "" {
		fmt.Fprintf(p.out, "%s [%s]: ", prompt, def)
	} else {
		fmt.Fprintf(p.out, "%s: ", prompt)
	}

	text, err := p.readLine(ctx)
	if err != nil {
		return "", p.readErr(err)
	}
	if text == "" {
		return def, nil
	}
	return text, nil
}
