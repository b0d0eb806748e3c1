package screen

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/chmouel/lazycommit/internal/theme"
)

// Button indexes for ConfirmScreen.
const (
	ButtonYes = 0
	ButtonNo  = 1
)

// ConfirmScreen asks a yes/no question with two buttons.
type ConfirmScreen struct {
	Question       string
	SelectedButton int
	Thm            *theme.Theme

	OnAnswer func(yes bool) tea.Cmd
	OnCancel func() tea.Cmd
}

// NewConfirmScreen creates a confirm screen focused on Yes when defaultYes is set.
func NewConfirmScreen(question string, defaultYes bool, thm *theme.Theme) *ConfirmScreen {
	selected := ButtonNo
	if defaultYes {
		selected = ButtonYes
	}
	return &ConfirmScreen{
		Question:       question,
		SelectedButton: selected,
		Thm:            thm,
	}
}

// Type returns the screen type.
func (s *ConfirmScreen) Type() Type {
	return TypeConfirm
}

// Update processes keyboard events for the confirmation dialog.
func (s *ConfirmScreen) Update(msg tea.KeyMsg) (Screen, tea.Cmd) {
	switch msg.String() {
	case keyTab, "right", "l":
		s.SelectedButton = (s.SelectedButton + 1) % 2
	case keyShiftTab, "left", "h":
		s.SelectedButton = (s.SelectedButton + 1) % 2
	case "y", "Y":
		return nil, s.answer(true)
	case "n", "N":
		return nil, s.answer(false)
	case keyEnter:
		return nil, s.answer(s.SelectedButton == ButtonYes)
	case keyEsc, keyQ, keyCtrlC:
		if s.OnCancel != nil {
			return nil, s.OnCancel()
		}
		return nil, nil
	}
	return s, nil
}

func (s *ConfirmScreen) answer(yes bool) tea.Cmd {
	if s.OnAnswer == nil {
		return nil
	}
	return s.OnAnswer(yes)
}

// View renders the question with the focused button highlighted.
func (s *ConfirmScreen) View() string {
	width := 60

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(s.Thm.Accent).
		Padding(1, 2).
		Width(width)

	questionStyle := lipgloss.NewStyle().
		Width(width-6).
		Align(lipgloss.Center).
		Foreground(s.Thm.TextFg)

	focused := lipgloss.NewStyle().
		Width((width-8)/2).
		Align(lipgloss.Center).
		Foreground(s.Thm.AccentFg).
		Background(s.Thm.Accent).
		Bold(true)

	unfocused := lipgloss.NewStyle().
		Width((width-8)/2).
		Align(lipgloss.Center).
		Foreground(s.Thm.MutedFg).
		Background(s.Thm.BorderDim)

	yes, no := unfocused.Render("[Yes]"), unfocused.Render("[No]")
	if s.SelectedButton == ButtonYes {
		yes = focused.Render("[Yes]")
	} else {
		no = focused.Render("[No]")
	}

	footer := lipgloss.NewStyle().
		Foreground(s.Thm.MutedFg).
		Width(width - 6).
		Align(lipgloss.Center).
		Render("y/n to answer • Tab to switch • Esc to cancel")

	return boxStyle.Render(fmt.Sprintf("%s\n\n%s  %s\n\n%s",
		questionStyle.Render(s.Question), yes, no, footer))
}
