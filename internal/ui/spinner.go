package ui

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/chmouel/lazycommit/internal/theme"
)

const clearLine = "\r\x1b[K"

// Spinner animates a single status line while a blocking call runs. On
// anything other than a terminal it prints the label once instead.
type Spinner struct {
	out      io.Writer
	frames   []string
	interval time.Duration
	animate  bool
	style    lipgloss.Style

	mu   sync.Mutex
	stop chan struct{}
	done chan struct{}
}

// NewSpinner writes to out using the MiniDot frames.
func NewSpinner(out io.Writer, thm *theme.Theme) *Spinner {
	s := spinner.MiniDot
	return &Spinner{
		out:      out,
		frames:   s.Frames,
		interval: s.FPS,
		animate:  isTerminal(out),
		style:    lipgloss.NewStyle().Foreground(thm.Accent),
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// Start shows label and returns a function that clears it. Starting while a
// previous animation runs stops that one first.
func (s *Spinner) Start(label string) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()

	if !s.animate {
		fmt.Fprintf(s.out, "%s...\n", label)
		return func() {}
	}

	stop, done := make(chan struct{}), make(chan struct{})
	s.stop, s.done = stop, done
	go s.loop(label, stop, done)

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.stop == stop {
			s.stopLocked()
		}
	}
}

func (s *Spinner) stopLocked() {
	if s.stop == nil {
		return
	}
	close(s.stop)
	<-s.done
	s.stop, s.done = nil, nil
}

func (s *Spinner) loop(label string, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for frame := 0; ; frame++ {
		fmt.Fprintf(s.out, "%s%s %s", clearLine, label, s.style.Render(s.frames[frame%len(s.frames)]))
		select {
		case <-stop:
			fmt.Fprint(s.out, clearLine)
			return
		case <-ticker.C:
		}
	}
}
