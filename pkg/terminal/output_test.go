package terminal_test

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/platewise/platewise/pkg/terminal"
)

func TestWriterLines(t *testing.T) {
	var buf bytes.Buffer
	w := terminal.NewWithOutput(&buf)

	w.Println("plain %s", "text")
	w.Error("bad thing")
	w.Success("good thing")
	w.Dim("aside")

	out := buf.String()
	for _, want := range []string{"plain text", "bad thing", "good thing", "aside"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestPanels(t *testing.T) {
	var buf bytes.Buffer
	w := terminal.NewWithOutput(&buf)

	w.Panel("Registration Status", "Plate: 8ABC123")
	w.ErrorPanel("Wrong passphrase.", "Check your passphrase and try again.")
	w.SuccessPanel("Configuration saved securely.")

	out := buf.String()
	for _, want := range []string{
		"Registration Status", "Plate: 8ABC123",
		"Wrong passphrase.", "Check your passphrase and try again.",
		"Configuration saved securely.",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestStep(t *testing.T) {
	var buf bytes.Buffer
	w := terminal.NewWithOutput(&buf)

	w.Step(2, 6, "Connecting to portal...")

	out := buf.String()
	if !strings.Contains(out, "2/6") || !strings.Contains(out, "Connecting to portal...") {
		t.Errorf("unexpected step output: %q", out)
	}
}

func TestSpinnerStops(t *testing.T) {
	var buf bytes.Buffer
	s := terminal.NewSpinnerWithOutput(&buf, "working").WithoutTime()
	s.Start()
	time.Sleep(120 * time.Millisecond)
	s.StopWithMessage("done")

	if !strings.Contains(buf.String(), "done") {
		t.Errorf("expected final message, got %q", buf.String())
	}
}
