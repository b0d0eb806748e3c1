package ui

import (
	"bytes"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"

	"github.com/chmouel/lazycommit/internal/apperr"
	"github.com/chmouel/lazycommit/internal/models"
	"github.com/chmouel/lazycommit/internal/theme"
)

func TestViewStagedFiles(t *testing.T) {
	var out bytes.Buffer
	NewView(&out, theme.Dracula(), false).StagedFiles([]models.StagedFile{
		{Path: "a.txt"},
		{Path: "internal/parser.go"},
	})

	assert.Equal(t, "Staged files count: 2\nStaged files:\n  a.txt\n  internal/parser.go\n", out.String())
}

func TestViewStagedFilesWithIcons(t *testing.T) {
	var out bytes.Buffer
	NewView(&out, theme.Dracula(), true).StagedFiles([]models.StagedFile{{Path: "main.go"}})

	icon := FileIcon("main.go")
	assert.NotEmpty(t, icon)
	assert.Contains(t, out.String(), "  "+icon+" main.go\n")
}

func TestViewBranches(t *testing.T) {
	var out bytes.Buffer
	NewView(&out, theme.Dracula(), false).Branches([]string{"feature-x", "main"}, "main")

	assert.Equal(t, "Available branches:\n  feature-x\n* main\nYou are on branch: main\n", out.String())
}

func TestViewMessage(t *testing.T) {
	var out bytes.Buffer
	NewView(&out, theme.Dracula(), false).Message(models.CommitMessage{
		Type: models.CommitFeat, Scope: "parser", Description: "add hello constant",
	})

	s := out.String()
	assert.Contains(t, s, "Generated commit message:")
	assert.Contains(t, s, "feat(parser): add hello constant")
	assert.Contains(t, s, "╭")
	assert.NotContains(t, s, "Warning")
}

func TestViewMessageWarnsOnLongDescription(t *testing.T) {
	var out bytes.Buffer
	NewView(&out, theme.Dracula(), false).Message(models.CommitMessage{
		Type: models.CommitFix, Description: strings.Repeat("x", 80),
	})
	assert.Contains(t, out.String(), "Warning: description is 80 characters, longer than the suggested 75")
}

func TestViewError(t *testing.T) {
	var out bytes.Buffer
	NewView(&out, theme.Dracula(), false).Error(errors.Wrap(apperr.ErrNoStagedFiles, "collecting files"))

	s := out.String()
	assert.True(t, strings.HasPrefix(s, "Error: collecting files: no staged files\n"))
	assert.Contains(t, s, "  Stage changes with `git add <path>`")
}

func TestViewServiceURLAndModel(t *testing.T) {
	var out bytes.Buffer
	v := NewView(&out, theme.Dracula(), false)
	v.ServiceURL("http://localhost:11434/api")
	v.Model("llama3.2")
	v.Success("Successfully committed!")
	v.Notice("dry run")

	assert.Equal(t, "BaseURL : http://localhost:11434/api\nModel   : llama3.2\nSuccessfully committed!\ndry run\n", out.String())
}

func TestFileIcon(t *testing.T) {
	assert.Empty(t, FileIcon(""))
	assert.Empty(t, FileIcon("/"))
	assert.Equal(t, FileIcon("main.go"), FileIcon("cmd/lazycommit/main.go"))
	assert.Empty(t, iconWithSpace(""))
	assert.Equal(t, "x ", iconWithSpace("x"))
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestSpinnerWithoutTerminalPrintsLabelOnce(t *testing.T) {
	var out bytes.Buffer
	s := NewSpinner(&out, theme.Dracula())
	stop := s.Start("Generating commit message")
	stop()
	stop()

	assert.Equal(t, "Generating commit message...\n", out.String())
}

func TestSpinnerAnimates(t *testing.T) {
	out := &syncBuffer{}
	s := NewSpinner(out, theme.Dracula())
	s.animate = true
	s.interval = time.Millisecond

	stop := s.Start("Generating")
	assert.Eventually(t, func() bool {
		return strings.Count(out.String(), "Generating") >= 3
	}, time.Second, time.Millisecond)
	stop()

	got := out.String()
	assert.True(t, strings.HasSuffix(got, clearLine), "line is cleared on stop")
	assert.Contains(t, got, s.frames[0])
	assert.Contains(t, got, s.frames[1])
}

func TestSpinnerRestartStopsPrevious(t *testing.T) {
	out := &syncBuffer{}
	s := NewSpinner(out, theme.Dracula())
	s.animate = true
	s.interval = time.Millisecond

	first := s.Start("one")
	second := s.Start("two")
	first() // stale stop must not stop the second animation
	assert.NotNil(t, s.stop)
	second()
	assert.Nil(t, s.stop)
}
