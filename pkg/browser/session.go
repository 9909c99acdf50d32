package browser

import (
	"context"
	"sync"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"github.com/platewise/platewise/pkg/errors"
)

// Session owns one Chrome process and its profile directory. Close is
// idempotent and must run on every exit path; callers defer it immediately
// after Launch.
type Session struct {
	opts Options

	allocCtx      context.Context
	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc

	mu       sync.Mutex
	launched bool
	closed   bool
	pages    []*Page
	metrics  *Metrics
}

// Page is one tab within a session.
type Page struct {
	ctx    context.Context
	cancel context.CancelFunc
	closed bool
	mu     sync.Mutex
}

// Context returns the chromedp context for running actions against the tab.
func (p *Page) Context() context.Context {
	return p.ctx
}

// Close releases the tab. Idempotent.
func (p *Page) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.closed = true
	p.cancel()
}

// Launch starts Chrome with the session options applied. The returned
// session must be closed by the caller.
func Launch(ctx context.Context, opts Options) (*Session, error) {
	opts = opts.withDefaults()

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", opts.Headless),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-sync", true),
		chromedp.Flag("no-first-run", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("lang", opts.Locale),
		chromedp.WindowSize(opts.Viewport.Width, opts.Viewport.Height),
	)
	if opts.UserAgent != "" {
		allocOpts = append(allocOpts, chromedp.UserAgent(opts.UserAgent))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, allocOpts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	s := &Session{
		opts:          opts,
		allocCtx:      allocCtx,
		allocCancel:   allocCancel,
		browserCtx:    browserCtx,
		browserCancel: browserCancel,
		metrics:       NewMetrics(),
	}

	// Run with no actions forces the browser process to start now, so a
	// missing Chrome binary fails here instead of on first navigation.
	if err := chromedp.Run(browserCtx); err != nil {
		s.Close()
		return nil, errors.Wrap(err, errors.ErrCodeBrowserLaunch, "failed to launch browser").
			WithUserMessage("Could not launch the browser.").
			WithRemediation("Ensure Chrome or Chromium is installed and on PATH.")
	}

	s.mu.Lock()
	s.launched = true
	s.mu.Unlock()
	s.metrics.RecordSessionCreated()
	return s, nil
}

// Options returns the session options.
func (s *Session) Options() Options {
	return s.opts
}

// Metrics returns the session counters.
func (s *Session) Metrics() *Metrics {
	return s.metrics
}

// Headed reports whether the browser window is visible.
func (s *Session) Headed() bool {
	return !s.opts.Headless
}

// NewPage opens a tab with the session's fingerprint configuration applied:
// stealth init script, timezone and header overrides, and the tracker
// blocklist. Calling NewPage before a successful Launch is a programming
// error and fails fast.
func (s *Session) NewPage(ctx context.Context) (*Page, error) {
	s.mu.Lock()
	if !s.launched || s.closed {
		s.mu.Unlock()
		return nil, errors.New(errors.ErrCodeBrowserLaunch, "NewPage called before Launch or after Close")
	}
	s.mu.Unlock()

	tabCtx, tabCancel := chromedp.NewContext(s.browserCtx)

	setup := []chromedp.Action{
		network.Enable(),
		network.SetBlockedURLs(blockedURLPatterns),
		network.SetExtraHTTPHeaders(network.Headers{
			"Accept-Language": "en-US,en;q=0.9",
		}),
		emulation.SetTimezoneOverride(s.opts.Timezone),
		chromedp.EmulateViewport(int64(s.opts.Viewport.Width), int64(s.opts.Viewport.Height)),
	}
	if s.opts.Stealth {
		setup = append(setup, chromedp.ActionFunc(func(ctx context.Context) error {
			_, err := page.AddScriptToEvaluateOnNewDocument(stealthScript).Do(ctx)
			return err
		}))
	}

	if err := chromedp.Run(tabCtx, setup...); err != nil {
		tabCancel()
		return nil, errors.Wrap(err, errors.ErrCodeBrowserLaunch, "failed to configure page")
	}

	p := &Page{ctx: tabCtx, cancel: tabCancel}
	s.mu.Lock()
	s.pages = append(s.pages, p)
	s.mu.Unlock()
	return p, nil
}

// Close tears down every tab and the browser process. Idempotent; safe on
// every error path including cancellation.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	pages := s.pages
	s.pages = nil
	wasLaunched := s.launched
	s.mu.Unlock()

	for _, p := range pages {
		p.Close()
	}
	s.browserCancel()
	s.allocCancel()

	if wasLaunched {
		s.metrics.RecordSessionClosed()
	}
}
