// Package captcha detects and resolves CAPTCHA challenges that block DMV
// portal flows. Detection is a fixed selector probe; resolution tries the
// 2Captcha API when a key is configured, then a manual wait when the
// browser window is visible.
package captcha

import (
	"context"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/chromedp"

	"github.com/platewise/platewise/pkg/browser"
	"github.com/platewise/platewise/pkg/errors"
)

// Selectors matched when probing a page for a CAPTCHA widget.
var Selectors = []string{
	"iframe[src*='recaptcha']",
	"iframe[src*='hcaptcha']",
	".g-recaptcha",
	"#captcha",
	"[data-sitekey]",
	".h-captcha",
}

// Present reports whether rendered HTML contains a CAPTCHA widget.
func Present(html string) bool {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return false
	}
	for _, sel := range Selectors {
		if doc.Find(sel).Length() > 0 {
			return true
		}
	}
	return false
}

// Detect probes the live page for a CAPTCHA widget.
func Detect(ctx context.Context, pg *browser.Page) (bool, error) {
	html, err := outerHTML(ctx, pg)
	if err != nil {
		return false, err
	}
	return Present(html), nil
}

// SiteKey extracts the reCAPTCHA site key from rendered HTML. It checks
// data-sitekey attributes first, then the k query parameter of embedded
// recaptcha iframes.
func SiteKey(html string) (string, bool) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", false
	}
	if v, ok := doc.Find("[data-sitekey]").First().Attr("data-sitekey"); ok && v != "" {
		return v, true
	}
	var key string
	doc.Find("iframe[src*='recaptcha']").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		src, ok := s.Attr("src")
		if !ok {
			return true
		}
		u, err := url.Parse(src)
		if err != nil {
			return true
		}
		if k := u.Query().Get("k"); k != "" {
			key = k
			return false
		}
		return true
	})
	return key, key != ""
}

func outerHTML(ctx context.Context, pg *browser.Page) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", errors.Wrap(err, errors.ErrCodeBrowserTimeout, "captcha check cancelled")
	}
	var html string
	if err := chromedp.Run(pg.Context(), chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return "", errors.Wrap(err, errors.ErrCodeBrowserTimeout, "failed to read page content")
	}
	return html, nil
}
