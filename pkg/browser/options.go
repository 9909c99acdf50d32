// Package browser owns the sandboxed Chrome process used to drive DMV
// portals. A Session wraps one browser with reduced automation fingerprint
// and tracker blocking; pages are tabs scoped to the session and every
// session guarantees teardown of the underlying process.
package browser

import "time"

// DefaultTimeout bounds each page operation.
const DefaultTimeout = 30 * time.Second

// Viewport defines the browser viewport size.
type Viewport struct {
	Width  int
	Height int
}

// Options configures a browser session.
type Options struct {
	// Headless runs Chrome without a visible window. Headed mode is
	// required for manual CAPTCHA solving.
	Headless bool

	// Timeout bounds each page operation (navigation, element waits).
	Timeout time.Duration

	// SlowMo inserts a delay after each action, useful when watching a
	// headed session.
	SlowMo time.Duration

	Locale    string
	Timezone  string
	UserAgent string
	Viewport  Viewport

	// Stealth reduces detectable automation signals (navigator.webdriver,
	// languages, plugin list).
	Stealth bool
}

// DefaultOptions returns the settings used for DMV automation.
func DefaultOptions() Options {
	return Options{
		Headless: true,
		Timeout:  DefaultTimeout,
		Locale:   "en-US",
		Timezone: "America/Los_Angeles",
		Viewport: Viewport{Width: 1280, Height: 720},
		Stealth:  true,
	}
}

// withDefaults fills zero values so a partially-populated Options behaves.
func (o Options) withDefaults() Options {
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	if o.Locale == "" {
		o.Locale = "en-US"
	}
	if o.Timezone == "" {
		o.Timezone = "America/Los_Angeles"
	}
	if o.Viewport.Width <= 0 || o.Viewport.Height <= 0 {
		o.Viewport = Viewport{Width: 1280, Height: 720}
	}
	return o
}

// blockedURLPatterns are analytics/tracker hosts aborted at the network
// layer before any request leaves the process.
var blockedURLPatterns = []string{
	"*google-analytics.com*",
	"*googletagmanager.com*",
	"*analytics.google.com*",
	"*doubleclick.net*",
	"*facebook.com*",
	"*facebook.net*",
}

// stealthScript is injected into every new document to mask the most
// obvious automation signals.
const stealthScript = `
Object.defineProperty(navigator, 'webdriver', { get: () => undefined });
Object.defineProperty(navigator, 'languages', { get: () => ['en-US', 'en'] });
Object.defineProperty(navigator, 'plugins', { get: () => [1, 2, 3, 4, 5] });
window.chrome = window.chrome || { runtime: {} };
`
