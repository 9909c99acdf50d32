// Package terminal provides styled CLI output: colored status lines,
// bordered panels, and a spinner. No TUI framework, just print and scroll.
package terminal

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// Writer provides styled terminal output.
type Writer struct {
	out io.Writer
	mu  sync.Mutex

	// Styles
	errorStyle   lipgloss.Style
	warnStyle    lipgloss.Style
	successStyle lipgloss.Style
	infoStyle    lipgloss.Style
	dimStyle     lipgloss.Style
	boldStyle    lipgloss.Style

	panelStyle        lipgloss.Style
	errorPanelStyle   lipgloss.Style
	successPanelStyle lipgloss.Style
	warnPanelStyle    lipgloss.Style
	titleStyle        lipgloss.Style
}

// New creates a terminal Writer on stdout.
func New() *Writer {
	return NewWithOutput(os.Stdout)
}

// NewWithOutput creates a terminal Writer with a custom output destination.
func NewWithOutput(out io.Writer) *Writer {
	border := lipgloss.RoundedBorder()

	return &Writer{
		out: out,

		// Red for errors
		errorStyle: lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#D00000", Dark: "#FF5555"}).
			Bold(true),

		// Yellow for warnings
		warnStyle: lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#B8860B", Dark: "#FFAA00"}),

		// Green for success
		successStyle: lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#008000", Dark: "#55FF55"}),

		// Blue for info
		infoStyle: lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#0066CC", Dark: "#5599FF"}),

		// Dim for secondary content
		dimStyle: lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#666666", Dark: "#888888"}),

		boldStyle: lipgloss.NewStyle().Bold(true),

		panelStyle: lipgloss.NewStyle().
			BorderStyle(border).
			BorderForeground(lipgloss.AdaptiveColor{Light: "#0066CC", Dark: "#5599FF"}).
			Padding(0, 2),

		errorPanelStyle: lipgloss.NewStyle().
			BorderStyle(border).
			BorderForeground(lipgloss.AdaptiveColor{Light: "#D00000", Dark: "#FF5555"}).
			Padding(0, 1),

		successPanelStyle: lipgloss.NewStyle().
			BorderStyle(border).
			BorderForeground(lipgloss.AdaptiveColor{Light: "#008000", Dark: "#55FF55"}).
			Padding(0, 1),

		warnPanelStyle: lipgloss.NewStyle().
			BorderStyle(border).
			BorderForeground(lipgloss.AdaptiveColor{Light: "#B8860B", Dark: "#FFAA00"}).
			Padding(0, 1),

		titleStyle: lipgloss.NewStyle().Bold(true),
	}
}

// Print writes text to the terminal.
func (w *Writer) Print(format string, args ...interface{}) {
	w.mu.Lock()
	defer w.mu.Unlock()
	fmt.Fprintf(w.out, format, args...)
}

// Println writes text with a newline.
func (w *Writer) Println(format string, args ...interface{}) {
	w.mu.Lock()
	defer w.mu.Unlock()
	fmt.Fprintf(w.out, format+"\n", args...)
}

// Error writes a styled error line.
func (w *Writer) Error(format string, args ...interface{}) {
	w.mu.Lock()
	defer w.mu.Unlock()
	fmt.Fprintln(w.out, w.errorStyle.Render(fmt.Sprintf(format, args...)))
}

// Warn writes a styled warning line.
func (w *Writer) Warn(format string, args ...interface{}) {
	w.mu.Lock()
	defer w.mu.Unlock()
	fmt.Fprintln(w.out, w.warnStyle.Render(fmt.Sprintf(format, args...)))
}

// Success writes a styled success line.
func (w *Writer) Success(format string, args ...interface{}) {
	w.mu.Lock()
	defer w.mu.Unlock()
	fmt.Fprintln(w.out, w.successStyle.Render(fmt.Sprintf(format, args...)))
}

// Info writes a styled info line.
func (w *Writer) Info(format string, args ...interface{}) {
	w.mu.Lock()
	defer w.mu.Unlock()
	fmt.Fprintln(w.out, w.infoStyle.Render(fmt.Sprintf(format, args...)))
}

// Dim writes secondary content.
func (w *Writer) Dim(format string, args ...interface{}) {
	w.mu.Lock()
	defer w.mu.Unlock()
	fmt.Fprintln(w.out, w.dimStyle.Render(fmt.Sprintf(format, args...)))
}

// Bold writes bold text.
func (w *Writer) Bold(format string, args ...interface{}) {
	w.mu.Lock()
	defer w.mu.Unlock()
	fmt.Fprintln(w.out, w.boldStyle.Render(fmt.Sprintf(format, args...)))
}

// Panel writes content in a bordered box with an optional title.
func (w *Writer) Panel(title, content string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if title != "" {
		content = w.titleStyle.Render(title) + "\n\n" + content
	}
	fmt.Fprintln(w.out, w.panelStyle.Render(content))
}

// ErrorPanel writes a bordered error message with optional detail lines.
func (w *Writer) ErrorPanel(message string, details ...string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	content := w.errorStyle.Render("✗ " + message)
	for _, d := range details {
		if d != "" {
			content += "\n" + w.dimStyle.Render(d)
		}
	}
	fmt.Fprintln(w.out, w.errorPanelStyle.Render(content))
}

// SuccessPanel writes a bordered success message.
func (w *Writer) SuccessPanel(message string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	fmt.Fprintln(w.out, w.successPanelStyle.Render(w.successStyle.Render("✓ "+message)))
}

// WarnPanel writes a bordered warning message with optional detail lines.
func (w *Writer) WarnPanel(message string, details ...string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	content := w.warnStyle.Render("⚠ " + message)
	for _, d := range details {
		if d != "" {
			content += "\n" + w.dimStyle.Render(d)
		}
	}
	fmt.Fprintln(w.out, w.warnPanelStyle.Render(content))
}

// Step writes a numbered progress line, e.g. "[2/6] Connecting...".
func (w *Writer) Step(current, total int, message string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	prefix := w.dimStyle.Render(fmt.Sprintf("[%d/%d]", current, total))
	check := w.successStyle.Render("✓")
	fmt.Fprintf(w.out, "  %s %s %s\n", prefix, message, check)
}
