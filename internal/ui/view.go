// Package ui renders lazycommit's terminal output and prompts.
//
// Two prompters share one contract: Plain reads numbered answers line by
// line, TUI draws bubbletea modals. View prints everything else.
package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wrap"

	"github.com/chmouel/lazycommit/internal/apperr"
	"github.com/chmouel/lazycommit/internal/commitmsg"
	"github.com/chmouel/lazycommit/internal/models"
	"github.com/chmouel/lazycommit/internal/theme"
)

const messageWidth = 72

// View prints session output with theme colors. Colors are dropped
// automatically when out is not a terminal.
type View struct {
	out       io.Writer
	showIcons bool

	title   lipgloss.Style
	muted   lipgloss.Style
	text    lipgloss.Style
	accent  lipgloss.Style
	success lipgloss.Style
	warn    lipgloss.Style
	err     lipgloss.Style
	box     lipgloss.Style
}

// NewView writes to out using thm.
func NewView(out io.Writer, thm *theme.Theme, showIcons bool) *View {
	r := lipgloss.NewRenderer(out)
	return &View{
		out:       out,
		showIcons: showIcons,
		title:     r.NewStyle().Foreground(thm.Accent).Bold(true),
		muted:     r.NewStyle().Foreground(thm.MutedFg),
		text:      r.NewStyle().Foreground(thm.TextFg),
		accent:    r.NewStyle().Foreground(thm.Accent),
		success:   r.NewStyle().Foreground(thm.SuccessFg).Bold(true),
		warn:      r.NewStyle().Foreground(thm.WarnFg),
		err:       r.NewStyle().Foreground(thm.ErrorFg).Bold(true),
		box: r.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(thm.Border).
			Padding(0, 1),
	}
}

// StagedFiles lists the files about to be described.
func (v *View) StagedFiles(files []models.StagedFile) {
	fmt.Fprintf(v.out, "%s %d\n", v.title.Render("Staged files count:"), len(files))
	fmt.Fprintln(v.out, v.title.Render("Staged files:"))
	for _, f := range files {
		icon := ""
		if v.showIcons {
			icon = iconWithSpace(FileIcon(f.Path))
		}
		fmt.Fprintf(v.out, "  %s%s\n", v.accent.Render(icon), v.text.Render(f.Path))
	}
}

// ServiceURL shows which generation endpoint is used.
func (v *View) ServiceURL(url string) {
	fmt.Fprintf(v.out, "%s %s\n", v.muted.Render("BaseURL :"), url)
}

// Model shows the model in use.
func (v *View) Model(name string) {
	fmt.Fprintf(v.out, "%s %s\n", v.muted.Render("Model   :"), name)
}

// Message prints a generated commit message inside a box, wrapped to a
// readable width.
func (v *View) Message(msg models.CommitMessage) {
	fmt.Fprintln(v.out)
	fmt.Fprintln(v.out, v.title.Render("Generated commit message:"))
	fmt.Fprintln(v.out, v.box.Render(v.text.Render(wrap.String(msg.String(), messageWidth))))
	if n := len([]rune(msg.Description)); n > commitmsg.DescriptionLimit {
		v.Warning(fmt.Sprintf("description is %d characters, longer than the suggested %d", n, commitmsg.DescriptionLimit))
	}
}

// Branches lists local branches, marking the current one with "*".
func (v *View) Branches(branches []string, current string) {
	fmt.Fprintln(v.out, v.title.Render("Available branches:"))
	for _, b := range branches {
		if b == current {
			fmt.Fprintf(v.out, "%s\n", v.success.Render("* "+b))
			continue
		}
		fmt.Fprintf(v.out, "  %s\n", v.text.Render(b))
	}
	fmt.Fprintf(v.out, "You are on branch: %s\n", v.accent.Render(current))
}

// Success prints a completed step.
func (v *View) Success(text string) {
	fmt.Fprintln(v.out, v.success.Render(text))
}

// Notice prints neutral information.
func (v *View) Notice(text string) {
	fmt.Fprintln(v.out, v.muted.Render(text))
}

// Warning prints a non-fatal problem.
func (v *View) Warning(text string) {
	fmt.Fprintln(v.out, v.warn.Render("Warning: "+text))
}

// Error prints err followed by its hints, one per line.
func (v *View) Error(err error) {
	fmt.Fprintln(v.out, v.err.Render("Error: "+err.Error()))
	for _, hint := range apperr.Hints(err) {
		for _, line := range strings.Split(hint, "\n") {
			fmt.Fprintln(v.out, v.muted.Render("  "+line))
		}
	}
}
