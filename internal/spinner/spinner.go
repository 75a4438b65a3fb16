// Package spinner draws a one-line progress indicator on a terminal.
package spinner

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-runewidth"
	"golang.org/x/term"
)

var frames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

const interval = 80 * time.Millisecond

// Spinner animates a message on w until Stop is called. The message can be
// replaced while it runs.
type Spinner struct {
	w        io.Writer
	mu       sync.Mutex
	message  string
	widest   int
	done     chan struct{}
	cleared  chan struct{}
	stopOnce sync.Once
}

// IsTerminal reports whether w is a terminal. Progress is only drawn on
// terminals so that redirected output stays clean.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// Start displays an animated spinner with the given message on w.
// Call Stop to stop the spinner and clear the line.
func Start(w io.Writer, message string) *Spinner {
	s := &Spinner{
		w:       w,
		message: message,
		widest:  runewidth.StringWidth(message),
		done:    make(chan struct{}),
		cleared: make(chan struct{}),
	}
	go s.loop()
	return s
}

// SetMessage replaces the text shown next to the spinner.
func (s *Spinner) SetMessage(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.message = message
	if w := runewidth.StringWidth(message); w > s.widest {
		s.widest = w
	}
}

// Stop halts the animation and clears the line. It is safe to call more
// than once.
func (s *Spinner) Stop() {
	s.stopOnce.Do(func() {
		close(s.done)
	})
	<-s.cleared
}

func (s *Spinner) loop() {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	i := 0
	for {
		select {
		case <-s.done:
			s.mu.Lock()
			fmt.Fprintf(s.w, "\r%s\r", strings.Repeat(" ", s.widest+2)) //nolint:errcheck
			s.mu.Unlock()
			close(s.cleared)
			return
		case <-ticker.C:
			s.mu.Lock()
			// pad so a shorter message overwrites a longer one
			line := runewidth.FillRight(s.message, s.widest)
			s.mu.Unlock()
			fmt.Fprintf(s.w, "\r%s %s", frames[i%len(frames)], line) //nolint:errcheck
			i++
		}
	}
}
