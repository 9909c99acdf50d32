package terminal

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// Spinner provides a simple terminal spinner for long-running operations
// such as portal navigation.
type Spinner struct {
	out       io.Writer
	message   string
	frames    []string
	current   int
	done      chan struct{}
	mu        sync.Mutex
	style     lipgloss.Style
	startTime time.Time
	showTime  bool
}

// SpinnerFrames are the default spinner animation frames.
var SpinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// NewSpinner creates a new spinner with the given message.
func NewSpinner(message string) *Spinner {
	return NewSpinnerWithOutput(os.Stdout, message)
}

// NewSpinnerWithOutput creates a spinner with custom output.
func NewSpinnerWithOutput(out io.Writer, message string) *Spinner {
	return &Spinner{
		out:      out,
		message:  message,
		frames:   SpinnerFrames,
		done:     make(chan struct{}),
		showTime: true,
		style: lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#0066CC", Dark: "#5599FF"}),
	}
}

// WithoutTime disables elapsed time display.
func (s *Spinner) WithoutTime() *Spinner {
	s.showTime = false
	return s
}

// SetMessage updates the spinner message.
func (s *Spinner) SetMessage(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.message = message
}

// Start begins the spinner animation.
func (s *Spinner) Start() {
	s.startTime = time.Now()
	go s.run()
}

func (s *Spinner) run() {
	ticker := time.NewTicker(80 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			s.mu.Lock()
			frame := s.frames[s.current%len(s.frames)]
			msg := s.message
			showTime := s.showTime
			startTime := s.startTime
			s.current++
			s.mu.Unlock()

			if showTime && !startTime.IsZero() {
				elapsed := time.Since(startTime).Round(time.Second)
				fmt.Fprintf(s.out, "\r%s %s (%s)", s.style.Render(frame), msg, elapsed)
			} else {
				fmt.Fprintf(s.out, "\r%s %s", s.style.Render(frame), msg)
			}
		}
	}
}

// Stop stops the spinner and clears the line.
func (s *Spinner) Stop() {
	close(s.done)
	fmt.Fprintf(s.out, "\r\033[K")
}

// StopWithMessage stops and prints a final message.
func (s *Spinner) StopWithMessage(message string) {
	close(s.done)
	fmt.Fprintf(s.out, "\r\033[K%s\n", message)
}
