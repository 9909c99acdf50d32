package browser

import (
	"testing"
	"time"
)

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()

	if !opts.Headless {
		t.Error("expected headless by default")
	}
	if opts.Timeout != DefaultTimeout {
		t.Errorf("expected timeout %v, got %v", DefaultTimeout, opts.Timeout)
	}
	if opts.Locale != "en-US" {
		t.Errorf("expected en-US locale, got %q", opts.Locale)
	}
	if opts.Timezone != "America/Los_Angeles" {
		t.Errorf("expected Pacific timezone, got %q", opts.Timezone)
	}
	if opts.Viewport.Width != 1280 || opts.Viewport.Height != 720 {
		t.Errorf("expected 1280x720 viewport, got %dx%d", opts.Viewport.Width, opts.Viewport.Height)
	}
	if !opts.Stealth {
		t.Error("expected stealth enabled by default")
	}
}

func TestWithDefaultsFillsZeroValues(t *testing.T) {
	opts := Options{Headless: false}.withDefaults()

	if opts.Headless {
		t.Error("withDefaults should not change Headless")
	}
	if opts.Timeout != DefaultTimeout {
		t.Errorf("expected default timeout, got %v", opts.Timeout)
	}
	if opts.Locale != "en-US" {
		t.Errorf("expected default locale, got %q", opts.Locale)
	}
	if opts.Timezone != "America/Los_Angeles" {
		t.Errorf("expected default timezone, got %q", opts.Timezone)
	}
	if opts.Viewport.Width != 1280 || opts.Viewport.Height != 720 {
		t.Errorf("expected default viewport, got %+v", opts.Viewport)
	}
}

func TestWithDefaultsPreservesExplicitValues(t *testing.T) {
	opts := Options{
		Timeout:  5 * time.Second,
		Locale:   "en-GB",
		Timezone: "America/New_York",
		Viewport: Viewport{Width: 1920, Height: 1080},
	}.withDefaults()

	if opts.Timeout != 5*time.Second {
		t.Errorf("timeout overwritten: %v", opts.Timeout)
	}
	if opts.Locale != "en-GB" {
		t.Errorf("locale overwritten: %q", opts.Locale)
	}
	if opts.Timezone != "America/New_York" {
		t.Errorf("timezone overwritten: %q", opts.Timezone)
	}
	if opts.Viewport.Width != 1920 {
		t.Errorf("viewport overwritten: %+v", opts.Viewport)
	}
}

func TestMetricsCounters(t *testing.T) {
	m := NewMetrics()

	m.RecordSessionCreated()
	m.RecordSessionCreated()
	m.RecordSessionClosed()
	m.RecordNavigate()
	m.RecordFill()
	m.RecordClick()
	m.RecordCaptcha(true)
	m.RecordCaptcha(false)

	snap := m.Snapshot()
	want := map[string]int64{
		"sessions_created": 2,
		"sessions_closed":  1,
		"navigations":      1,
		"fills":            1,
		"clicks":           1,
		"captcha_detected": 2,
		"captcha_solved":   1,
		"captcha_failed":   1,
	}
	for k, v := range want {
		if snap[k] != v {
			t.Errorf("%s = %d, want %d", k, snap[k], v)
		}
	}
}

func TestMetricsNilSafe(t *testing.T) {
	var m *Metrics
	m.RecordSessionCreated()
	m.RecordSessionClosed()
	m.RecordCaptcha(true)
	if m.Snapshot() != nil {
		t.Error("nil metrics snapshot should be nil")
	}
}
