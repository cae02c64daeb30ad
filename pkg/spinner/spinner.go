// Package spinner draws a one-line progress indicator on a terminal.
package spinner

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// Spinner animates a progress message on a terminal.
type Spinner struct {
	chars   []string
	delay   time.Duration
	message string
	out     io.Writer
	active  bool
	mu      sync.Mutex
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// New returns a spinner that draws on stderr so it never mixes with
// rendered output on stdout.
func New(message string) *Spinner {
	return NewWithWriter(os.Stderr, message)
}

// NewWithWriter returns a spinner that draws on out.
func NewWithWriter(out io.Writer, message string) *Spinner {
	return &Spinner{
		chars:   []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"},
		delay:   100 * time.Millisecond,
		message: message,
		out:     out,
	}
}

// Start begins drawing. It is a no-op while already running.
func (s *Spinner) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active {
		return
	}
	s.active = true
	s.stopCh = make(chan struct{})
	s.doneCh = make(chan struct{})

	go s.spin(s.stopCh, s.doneCh)
}

func (s *Spinner) spin(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(s.delay)
	defer ticker.Stop()

	for i := 0; ; i++ {
		s.mu.Lock()
		fmt.Fprintf(s.out, "\r%s %s", s.chars[i%len(s.chars)], s.message)
		s.mu.Unlock()

		select {
		case <-stop:
			return
		case <-ticker.C:
		}
	}
}

// Stop halts the animation and clears the line. Safe to call when not running.
func (s *Spinner) Stop() {
	s.mu.Lock()
	if !s.active {
		s.mu.Unlock()
		return
	}
	s.active = false
	stop, done := s.stopCh, s.doneCh
	s.mu.Unlock()

	close(stop)
	<-done

	s.mu.Lock()
	fmt.Fprint(s.out, "\r"+strings.Repeat(" ", len(s.message)+10)+"\r")
	s.mu.Unlock()
}

// Update replaces the message shown next to the spinner.
func (s *Spinner) Update(message string) {
	s.mu.Lock()
	s.message = message
	s.mu.Unlock()
}
