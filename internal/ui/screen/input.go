package screen

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/chmouel/lazycommit/internal/theme"
)

// InputScreen reads one line of text. The field starts with the default
// value so accepting it unchanged is a single Enter.
type InputScreen struct {
	Prompt   string
	Default  string
	Input    textinput.Model
	ErrorMsg string
	Thm      *theme.Theme

	// SoftLimit shows a character counter that turns to the warning color
	// once exceeded. Zero disables it.
	SoftLimit int

	// Validate returns an error message for values that must be rejected.
	Validate func(string) string

	OnSubmit func(value string) tea.Cmd
	OnCancel func() tea.Cmd

	boxWidth int
}

// NewInputScreen creates an input screen prefilled with def.
func NewInputScreen(prompt, def string, thm *theme.Theme) *InputScreen {
	ti := textinput.New()
	ti.Placeholder = def
	ti.SetValue(def)
	ti.CursorEnd()
	ti.Focus()
	ti.CharLimit = 200
	ti.Prompt = ""
	ti.TextStyle = lipgloss.NewStyle().Foreground(thm.TextFg)
	ti.Width = 52

	return &InputScreen{
		Prompt:   prompt,
		Default:  def,
		Input:    ti,
		Thm:      thm,
		boxWidth: 60,
	}
}

// Type returns the screen type.
func (s *InputScreen) Type() Type {
	return TypeInput
}

// Value returns the submitted text, falling back to the default when blank.
func (s *InputScreen) Value() string {
	if v := strings.TrimSpace(s.Input.Value()); v != "" {
		return v
	}
	return s.Default
}

// Update handles keyboard input for the input screen.
func (s *InputScreen) Update(msg tea.KeyMsg) (Screen, tea.Cmd) {
	switch msg.String() {
	case keyEnter:
		value := s.Value()
		if s.Validate != nil {
			if errMsg := strings.TrimSpace(s.Validate(value)); errMsg != "" {
				s.ErrorMsg = errMsg
				return s, nil
			}
		}
		s.ErrorMsg = ""
		if s.OnSubmit != nil {
			return nil, s.OnSubmit(value)
		}
		return nil, nil
	case keyEsc, keyCtrlC:
		if s.OnCancel != nil {
			return nil, s.OnCancel()
		}
		return nil, nil
	}

	var cmd tea.Cmd
	s.Input, cmd = s.Input.Update(msg)
	return s, cmd
}

// View renders the input screen.
func (s *InputScreen) View() string {
	width := s.boxWidth

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(s.Thm.Accent).
		Padding(1, 2).
		Width(width)

	promptStyle := lipgloss.NewStyle().
		Foreground(s.Thm.Accent).
		Bold(true).
		Width(width - 6).
		Align(lipgloss.Center)

	inputStyle := lipgloss.NewStyle().
		Border(lipgloss.NormalBorder()).
		BorderForeground(s.Thm.Border).
		Padding(0, 1).
		Width(width - 6)

	lines := []string{
		promptStyle.Render(s.Prompt),
		inputStyle.Render(s.Input.View()),
	}

	if s.SoftLimit > 0 {
		n := len([]rune(s.Input.Value()))
		counter := lipgloss.NewStyle().Foreground(s.Thm.MutedFg)
		if n > s.SoftLimit {
			counter = counter.Foreground(s.Thm.WarnFg)
		}
		lines = append(lines, counter.Width(width-6).Align(lipgloss.Right).
			Render(fmt.Sprintf("%d/%d", n, s.SoftLimit)))
	}

	if s.ErrorMsg != "" {
		lines = append(lines, lipgloss.NewStyle().
			Foreground(s.Thm.ErrorFg).
			Width(width-6).
			Align(lipgloss.Center).
			Render(s.ErrorMsg))
	}

	lines = append(lines, lipgloss.NewStyle().
		Foreground(s.Thm.MutedFg).
		Width(width-6).
		Align(lipgloss.Center).
		Render("Enter to confirm • Esc to cancel"))

	return boxStyle.Render(strings.Join(lines, "\n\n"))
}
