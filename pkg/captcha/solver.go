package captcha

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/platewise/platewise/pkg/browser"
	"github.com/platewise/platewise/pkg/errors"
	"github.com/platewise/platewise/pkg/logging"
)

// injectTokenScript places a solved token where the portal's form
// submission reads it.
const injectTokenScript = `(function(token) {
	var el = document.getElementById('g-recaptcha-response');
	if (!el) {
		el = document.createElement('textarea');
		el.id = 'g-recaptcha-response';
		el.name = 'g-recaptcha-response';
		el.style.display = 'none';
		document.body.appendChild(el);
	}
	el.value = token;
	el.innerHTML = token;
})(%s)`

// Solver resolves a CAPTCHA blocking a portal flow. Strategies are tried
// in order: the 2Captcha API when a key is configured, then a manual wait
// when the browser window is visible. With neither available the solve is
// unresolvable and callers should surface that to the user.
type Solver struct {
	client *TwoCaptchaClient
	headed bool
	log    *logging.Logger

	// manualWait bounds how long a headed session waits for the user to
	// solve the challenge, checked every pollEvery.
	manualWait time.Duration
	pollEvery  time.Duration
}

// NewSolver builds a solver. apiKey may be empty, in which case the API
// strategy is skipped; headed enables the manual-wait strategy.
func NewSolver(apiKey string, headed bool, log *logging.Logger) *Solver {
	if log == nil {
		log = logging.Nop()
	}
	s := &Solver{
		headed:     headed,
		log:        log,
		manualWait: 2 * time.Minute,
		pollEvery:  5 * time.Second,
	}
	if apiKey != "" {
		s.client = NewTwoCaptchaClient(apiKey)
	}
	return s
}

// HasStrategy reports whether any solve strategy is available.
func (s *Solver) HasStrategy() bool {
	return s.client != nil || s.headed
}

// Solve clears the CAPTCHA currently present on pg. pageURL is the address
// of the page hosting the challenge, required by the API strategy.
func (s *Solver) Solve(ctx context.Context, pg *browser.Page, pageURL string) error {
	if !s.HasStrategy() {
		return errors.CaptchaUnresolved()
	}

	if s.client != nil {
		err := s.solveWithAPI(ctx, pg, pageURL)
		if err == nil {
			return nil
		}
		s.log.Warn(logging.CategoryCaptcha, "api_solve_failed", err.Error(), nil)
		if !s.headed {
			return err
		}
	}
	return s.waitForManualSolve(ctx, pg)
}

func (s *Solver) solveWithAPI(ctx context.Context, pg *browser.Page, pageURL string) error {
	html, err := outerHTML(ctx, pg)
	if err != nil {
		return err
	}
	key, ok := SiteKey(html)
	if !ok {
		return errors.New(errors.ErrCodeCaptchaSolveFailed, "no reCAPTCHA site key found on page")
	}

	s.log.Info(logging.CategoryCaptcha, "api_solve_start", "submitting challenge to 2captcha", map[string]any{
		"page_url": pageURL,
	})
	token, err := s.client.Solve(ctx, key, pageURL)
	if err != nil {
		return err
	}

	script := fmt.Sprintf(injectTokenScript, strconv.Quote(token))
	if err := chromedp.Run(pg.Context(), chromedp.Evaluate(script, nil)); err != nil {
		return errors.Wrap(err, errors.ErrCodeCaptchaSolveFailed, "failed to inject captcha token")
	}
	s.log.Info(logging.CategoryCaptcha, "api_solve_done", "captcha token injected", nil)
	return nil
}

// waitForManualSolve polls the page until the CAPTCHA widget disappears,
// which is how the portal reacts once the user completes the challenge.
func (s *Solver) waitForManualSolve(ctx context.Context, pg *browser.Page) error {
	s.log.Info(logging.CategoryCaptcha, "manual_wait", "waiting for CAPTCHA to be solved in the browser window", nil)

	deadline := time.Now().Add(s.manualWait)
	for time.Now().Before(deadline) {
		select {
		case <-ctx.Done():
			return errors.Wrap(ctx.Err(), errors.ErrCodeCaptchaSolveFailed, "manual solve cancelled")
		case <-time.After(s.pollEvery):
		}

		present, err := Detect(ctx, pg)
		if err != nil {
			return err
		}
		if !present {
			s.log.Info(logging.CategoryCaptcha, "manual_solved", "CAPTCHA cleared", nil)
			return nil
		}
	}
	return errors.CaptchaSolveFailed("manual")
}
