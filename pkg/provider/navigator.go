package provider

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"github.com/platewise/platewise/pkg/browser"
	"github.com/platewise/platewise/pkg/captcha"
	"github.com/platewise/platewise/pkg/errors"
	"github.com/platewise/platewise/pkg/logging"
)

// Navigator wraps a page with the blocking idioms every provider uses:
// wait for a selector to become actionable, and wait for a navigation to
// settle. Providers never touch chromedp directly.
type Navigator struct {
	page    *browser.Page
	solver  *captcha.Solver
	metrics *browser.Metrics
	log     *logging.Logger
	timeout time.Duration
}

// NewNavigator builds a navigator over the deps' page.
func NewNavigator(d Deps) *Navigator {
	log := d.Log
	if log == nil {
		log = logging.Nop()
	}
	timeout := d.Timeout
	if timeout <= 0 {
		timeout = browser.DefaultTimeout
	}
	return &Navigator{
		page:    d.Page,
		solver:  d.Solver,
		metrics: d.Metrics,
		log:     log,
		timeout: timeout,
	}
}

// run executes actions against the page with the per-operation timeout.
func (n *Navigator) run(ctx context.Context, actions ...chromedp.Action) error {
	if err := ctx.Err(); err != nil {
		return errors.Wrap(err, errors.ErrCodeBrowserTimeout, "operation cancelled")
	}
	runCtx, cancel := context.WithTimeout(n.page.Context(), n.timeout)
	defer cancel()
	return chromedp.Run(runCtx, actions...)
}

// NavigateAndSettle loads url and waits for the document to be ready.
func (n *Navigator) NavigateAndSettle(ctx context.Context, url string) error {
	n.log.Debug(logging.CategoryBrowser, "navigate", "navigating", map[string]any{"url": url})
	n.metrics.RecordNavigate()

	err := n.run(ctx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeBrowserNavigation, "navigation failed").
			WithContext("url", url).
			WithUserMessage("Could not reach the DMV portal.").
			WithRemediation("Check your network connection and try again.")
	}
	return nil
}

// FillField waits for the field to become visible, clears it, and types
// value. A wait that exhausts the timeout maps to selector-not-found, the
// signal for portal drift.
func (n *Navigator) FillField(ctx context.Context, selector, value string) error {
	n.metrics.RecordFill()

	err := n.run(ctx,
		chromedp.WaitVisible(selector, chromedp.ByQuery),
		chromedp.Clear(selector, chromedp.ByQuery),
		chromedp.SendKeys(selector, value, chromedp.ByQuery),
	)
	if err != nil {
		return n.selectorErr(err, selector, "failed to fill field")
	}
	return nil
}

// SelectOption sets the value of a <select> element.
func (n *Navigator) SelectOption(ctx context.Context, selector, value string) error {
	n.metrics.RecordFill()

	err := n.run(ctx,
		chromedp.WaitVisible(selector, chromedp.ByQuery),
		chromedp.SetValue(selector, value, chromedp.ByQuery),
	)
	if err != nil {
		return n.selectorErr(err, selector, "failed to select option")
	}
	return nil
}

// ClickAndWait clicks the element and waits for the resulting navigation
// to settle.
func (n *Navigator) ClickAndWait(ctx context.Context, selector string) error {
	n.metrics.RecordClick()

	err := n.run(ctx,
		chromedp.WaitVisible(selector, chromedp.ByQuery),
		chromedp.Click(selector, chromedp.ByQuery),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)
	if err != nil {
		return n.selectorErr(err, selector, "failed to click")
	}
	return nil
}

// PageHTML returns the full rendered document.
func (n *Navigator) PageHTML(ctx context.Context) (string, error) {
	var html string
	if err := n.run(ctx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return "", errors.Wrap(err, errors.ErrCodeBrowserTimeout, "failed to read page content")
	}
	return html, nil
}

// Location returns the page's current URL.
func (n *Navigator) Location(ctx context.Context) (string, error) {
	var url string
	if err := n.run(ctx, chromedp.Location(&url)); err != nil {
		return "", errors.Wrap(err, errors.ErrCodeBrowserTimeout, "failed to read page location")
	}
	return url, nil
}

// ElementText returns the trimmed inner text of the first match, or
// ok=false when the element is absent. Non-blocking: no visibility wait.
func (n *Navigator) ElementText(ctx context.Context, selector string) (string, bool, error) {
	script := fmt.Sprintf(`(function() {
		var el = document.querySelector(%s);
		return el ? el.innerText.trim() : null;
	})()`, strconv.Quote(selector))

	var text *string
	if err := n.run(ctx, chromedp.Evaluate(script, &text)); err != nil {
		return "", false, errors.Wrap(err, errors.ErrCodeBrowserTimeout, "failed to query element")
	}
	if text == nil {
		return "", false, nil
	}
	return *text, true, nil
}

// ElementExists reports whether the selector matches anything on the page.
func (n *Navigator) ElementExists(ctx context.Context, selector string) (bool, error) {
	script := fmt.Sprintf(`document.querySelector(%s) !== null`, strconv.Quote(selector))
	var found bool
	if err := n.run(ctx, chromedp.Evaluate(script, &found)); err != nil {
		return false, errors.Wrap(err, errors.ErrCodeBrowserTimeout, "failed to query element")
	}
	return found, nil
}

// HasCaptcha checks the page against the known CAPTCHA markers.
func (n *Navigator) HasCaptcha(ctx context.Context) (bool, error) {
	return captcha.Detect(ctx, n.page)
}

// ResolveCaptcha detects and, when present, solves the CAPTCHA blocking
// the page. Called after each navigation that may present one.
func (n *Navigator) ResolveCaptcha(ctx context.Context) error {
	present, err := n.HasCaptcha(ctx)
	if err != nil {
		return err
	}
	if !present {
		return nil
	}
	n.log.Info(logging.CategoryCaptcha, "detected", "CAPTCHA detected on page", nil)

	url, err := n.Location(ctx)
	if err != nil {
		return err
	}
	if n.solver == nil {
		n.metrics.RecordCaptcha(false)
		return errors.CaptchaUnresolved()
	}
	if err := n.solver.Solve(ctx, n.page, url); err != nil {
		n.metrics.RecordCaptcha(false)
		return err
	}
	n.metrics.RecordCaptcha(true)
	return nil
}

// Screenshot saves a full-page capture for debugging.
func (n *Navigator) Screenshot(ctx context.Context, path string) error {
	var buf []byte
	if err := n.run(ctx, chromedp.FullScreenshot(&buf, 90)); err != nil {
		return errors.Wrap(err, errors.ErrCodeBrowserTimeout, "failed to capture screenshot")
	}
	if err := os.WriteFile(path, buf, 0o644); err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "failed to write screenshot")
	}
	return nil
}

// SavePDF renders the current page to a PDF file.
func (n *Navigator) SavePDF(ctx context.Context, path string) error {
	var buf []byte
	err := n.run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		var err error
		buf, _, err = page.PrintToPDF().Do(ctx)
		return err
	}))
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeBrowserTimeout, "failed to render PDF")
	}
	if err := os.WriteFile(path, buf, 0o644); err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "failed to write PDF")
	}
	return nil
}

// selectorErr distinguishes portal drift (element never appeared) from
// plain cancellation.
func (n *Navigator) selectorErr(err error, selector, msg string) error {
	if stderrors.Is(err, context.DeadlineExceeded) {
		return errors.Wrap(err, errors.ErrCodeSelectorNotFound, "element not found: "+selector).
			WithContext("selector", selector).
			WithUserMessage("The DMV portal page did not look as expected.").
			WithRemediation("The portal may have changed. Re-run with --headed to inspect.")
	}
	return errors.Wrap(err, errors.ErrCodeBrowserTimeout, msg).WithContext("selector", selector)
}
