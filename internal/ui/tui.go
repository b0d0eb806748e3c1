package ui

import (
	"context"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/cockroachdb/errors"
	"golang.org/x/term"

	"github.com/chmouel/lazycommit/internal/apperr"
	"github.com/chmouel/lazycommit/internal/models"
	"github.com/chmouel/lazycommit/internal/theme"
	"github.com/chmouel/lazycommit/internal/ui/screen"
)

const (
	defaultWidth  = 80
	defaultHeight = 24
)

// promptModel hosts a single modal screen. The screen callbacks record the
// answer; the program quits as soon as the screen closes.
type promptModel struct {
	scr screen.Screen

	index     int
	yes       bool
	value     string
	cancelled bool
	done      bool
}

func (m *promptModel) Init() tea.Cmd { return nil }

func (m *promptModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok || m.scr == nil {
		return m, nil
	}
	next, cmd := m.scr.Update(key)
	if next == nil {
		m.scr = nil
		m.done = true
		return m, tea.Quit
	}
	m.scr = next
	return m, cmd
}

func (m *promptModel) View() string {
	if m.done || m.scr == nil {
		return ""
	}
	return m.scr.View() + "\n"
}

func newSelectModel(title string, items []models.Choice, width, height int, thm *theme.Theme) *promptModel {
	m := &promptModel{index: -1}
	s := screen.NewListSelectionScreen(items, title, width, height, thm)
	s.OnSelect = func(i int) tea.Cmd { m.index = i; return nil }
	s.OnCancel = func() tea.Cmd { m.cancelled = true; return nil }
	m.scr = s
	return m
}

func newConfirmModel(question string, defaultYes bool, thm *theme.Theme) *promptModel {
	m := &promptModel{}
	s := screen.NewConfirmScreen(question, defaultYes, thm)
	s.OnAnswer = func(yes bool) tea.Cmd { m.yes = yes; return nil }
	s.OnCancel = func() tea.Cmd { m.cancelled = true; return nil }
	m.scr = s
	return m
}

func newInputModel(prompt, def string, softLimit int, thm *theme.Theme) *promptModel {
	m := &promptModel{}
	s := screen.NewInputScreen(prompt, def, thm)
	s.SoftLimit = softLimit
	s.OnSubmit = func(v string) tea.Cmd { m.value = v; return nil }
	s.OnCancel = func() tea.Cmd { m.cancelled = true; return nil }
	m.scr = s
	return m
}

// TUI prompts with bubbletea modals drawn inline below the current output.
type TUI struct {
	in       io.Reader
	out      io.Writer
	thm      *theme.Theme
	opts     []tea.ProgramOption
	counters map[string]int
}

// NewTUI renders prompts to out and reads keys from in.
func NewTUI(in io.Reader, out io.Writer, thm *theme.Theme, opts ...tea.ProgramOption) *TUI {
	return &TUI{in: in, out: out, thm: thm, opts: opts, counters: map[string]int{}}
}

// WithCounter shows a length counter against limit on inputs titled prompt.
func (t *TUI) WithCounter(prompt string, limit int) *TUI {
	t.counters[prompt] = limit
	return t
}

func (t *TUI) size() (int, int) {
	if f, ok := t.out.(*os.File); ok {
		if w, h, err := term.GetSize(int(f.Fd())); err == nil && w > 0 && h > 0 {
			return w, h
		}
	}
	return defaultWidth, defaultHeight
}

func (t *TUI) run(ctx context.Context, m *promptModel) error {
	opts := append([]tea.ProgramOption{
		tea.WithInput(t.in),
		tea.WithOutput(t.out),
		tea.WithContext(ctx),
	}, t.opts...)

	_, err := tea.NewProgram(m, opts...).Run()
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err != nil {
		return errors.Wrap(err, "running prompt")
	}
	if m.cancelled {
		return apperr.ErrUserCancelled
	}
	return nil
}

// Select shows a filterable list and returns the chosen index.
func (t *TUI) Select(ctx context.Context, title string, items []models.Choice) (int, error) {
	if len(items) == 0 {
		return -1, errors.Wrap(apperr.ErrInvalidUserInput, "nothing to select")
	}
	w, h := t.size()
	m := newSelectModel(title, items, w, h, t.thm)
	if err := t.run(ctx, m); err != nil {
		return -1, err
	}
	return m.index, nil
}

// Confirm shows a Yes/No dialog. Esc counts as No.
func (t *TUI) Confirm(ctx context.Context, question string, defaultYes bool) (bool, error) {
	m := newConfirmModel(question, defaultYes, t.thm)
	err := t.run(ctx, m)
	if errors.Is(err, apperr.ErrUserCancelled) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return m.yes, nil
}

// Input reads a line prefilled with def.
func (t *TUI) Input(ctx context.Context, prompt, def string) (string, error) {
	m := newInputModel(prompt, def, t.counters[prompt], t.thm)
	if err := t.run(ctx, m); err != nil {
		return "", err
	}
	return m.value, nil
}
