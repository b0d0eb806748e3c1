package screen

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/chmouel/lazycommit/internal/models"
	"github.com/chmouel/lazycommit/internal/theme"
)

// ListSelectionScreen lets the user pick one of a list of choices. The
// selection is reported as an index into Items, whatever the filter.
type ListSelectionScreen struct {
	Items []models.Choice

	// filtered holds indexes into Items.
	filtered []int

	FilterInput  textinput.Model
	FilterActive bool
	Cursor       int
	ScrollOffset int
	Width        int
	Height       int
	Title        string
	NoResults    string
	Thm          *theme.Theme

	OnSelect func(index int) tea.Cmd
	OnCancel func() tea.Cmd
}

// NewListSelectionScreen builds a list sized to 80% of the terminal.
func NewListSelectionScreen(items []models.Choice, title string, maxWidth, maxHeight int, thm *theme.Theme) *ListSelectionScreen {
	width := max(int(float64(maxWidth)*0.8), 60)
	height := max(int(float64(maxHeight)*0.8), 12)

	ti := textinput.New()
	ti.Placeholder = "Filter..."
	ti.CharLimit = 100
	ti.Prompt = "> "
	ti.Blur()
	ti.Width = width - 4

	s := &ListSelectionScreen{
		Items:       items,
		FilterInput: ti,
		Width:       width,
		Height:      height,
		Title:       title,
		NoResults:   "No results found.",
		Thm:         thm,
	}
	s.applyFilter()
	return s
}

// Type returns the screen type.
func (s *ListSelectionScreen) Type() Type {
	return TypeListSelect
}

// Update handles keyboard input and returns nil once a choice is made.
func (s *ListSelectionScreen) Update(msg tea.KeyMsg) (Screen, tea.Cmd) {
	keyStr := msg.String()

	switch keyStr {
	case keyEnter:
		idx, ok := s.Selected()
		if !ok {
			return s, nil
		}
		if s.OnSelect != nil {
			return nil, s.OnSelect(idx)
		}
		return nil, nil
	case keyCtrlC:
		return nil, s.cancel()
	case "up", "ctrl+k":
		s.move(-1)
		return s, nil
	case "down", "ctrl+j":
		s.move(1)
		return s, nil
	}

	if s.FilterActive {
		if keyStr == keyEsc {
			s.FilterActive = false
			s.FilterInput.Blur()
			return s, nil
		}
		var cmd tea.Cmd
		s.FilterInput, cmd = s.FilterInput.Update(msg)
		s.applyFilter()
		return s, cmd
	}

	switch keyStr {
	case "f", "/":
		s.FilterActive = true
		s.FilterInput.Focus()
		return s, textinput.Blink
	case keyEsc, keyQ:
		return nil, s.cancel()
	case "k":
		s.move(-1)
	case "j":
		s.move(1)
	default:
		// Digits jump to the numbered row.
		if n, err := strconv.Atoi(keyStr); err == nil && n >= 1 && n <= len(s.filtered) {
			s.move(n - 1 - s.Cursor)
		}
	}
	return s, nil
}

func (s *ListSelectionScreen) cancel() tea.Cmd {
	if s.OnCancel == nil {
		return nil
	}
	return s.OnCancel()
}

func (s *ListSelectionScreen) move(delta int) {
	if len(s.filtered) == 0 {
		return
	}
	s.Cursor = min(max(s.Cursor+delta, 0), len(s.filtered)-1)
	visible := s.maxVisible()
	if s.Cursor < s.ScrollOffset {
		s.ScrollOffset = s.Cursor
	}
	if s.Cursor >= s.ScrollOffset+visible {
		s.ScrollOffset = s.Cursor - visible + 1
	}
}

// Selected returns the index into Items under the cursor.
func (s *ListSelectionScreen) Selected() (int, bool) {
	if s.Cursor < 0 || s.Cursor >= len(s.filtered) {
		return -1, false
	}
	return s.filtered[s.Cursor], true
}

// Visible returns the number of items matching the filter.
func (s *ListSelectionScreen) Visible() int {
	return len(s.filtered)
}

func (s *ListSelectionScreen) applyFilter() {
	query := strings.ToLower(strings.TrimSpace(s.FilterInput.Value()))
	s.filtered = s.filtered[:0]
	for i, item := range s.Items {
		if query == "" ||
			strings.Contains(strings.ToLower(item.Label), query) ||
			strings.Contains(strings.ToLower(item.Description), query) ||
			strings.Contains(strings.ToLower(item.ID), query) {
			s.filtered = append(s.filtered, i)
		}
	}
	s.Cursor = 0
	s.ScrollOffset = 0
	if len(s.filtered) == 0 {
		s.Cursor = -1
	}
}

func (s *ListSelectionScreen) maxVisible() int {
	// title, footer, border and the optional filter line
	return max(s.Height-6, 1)
}

// View renders the list selection screen.
func (s *ListSelectionScreen) View() string {
	inner := s.Width - 2

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(s.Thm.Accent).
		Width(s.Width)

	title := lipgloss.NewStyle().
		Foreground(s.Thm.Accent).
		Bold(true).
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(s.Thm.BorderDim).
		Width(inner).
		Padding(0, 1).
		Render(s.Title)

	itemStyle := lipgloss.NewStyle().Padding(0, 1).Width(inner)
	selectedStyle := itemStyle.
		Background(s.Thm.Accent).
		Foreground(s.Thm.AccentFg).
		Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(s.Thm.MutedFg)

	end := min(s.ScrollOffset+s.maxVisible(), len(s.filtered))
	rows := make([]string, 0, end-s.ScrollOffset+1)
	for pos := s.ScrollOffset; pos < end; pos++ {
		item := s.Items[s.filtered[pos]]
		label := fmt.Sprintf("%d. %s", pos+1, item.Label)
		if item.Description != "" {
			label += "  " + descStyle.Render(item.Description)
		}
		if pos == s.Cursor {
			rows = append(rows, selectedStyle.Render(ansi.Strip(label)))
		} else {
			rows = append(rows, itemStyle.Render(label))
		}
	}
	if len(s.filtered) == 0 {
		rows = append(rows, itemStyle.Foreground(s.Thm.MutedFg).Italic(true).Render(s.NoResults))
	}

	footerText := "j/k to move • f to filter • Enter to select • Esc to cancel"
	if s.FilterActive {
		footerText = "Esc to return • Enter to select"
	}
	footer := lipgloss.NewStyle().
		Foreground(s.Thm.MutedFg).
		Align(lipgloss.Right).
		Width(inner).
		PaddingTop(1).
		Render(footerText)

	parts := []string{title}
	if s.FilterActive {
		parts = append(parts, lipgloss.NewStyle().Padding(0, 1).Width(inner).Render(s.FilterInput.View()))
	}
	parts = append(parts, strings.Join(rows, "\n"), footer)
	return boxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}
