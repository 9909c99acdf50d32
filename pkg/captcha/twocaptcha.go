package captcha

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/platewise/platewise/pkg/errors"
)

const (
	defaultBaseURL  = "https://2captcha.com"
	defaultInterval = 5 * time.Second
	maxPollAttempts = 24
)

// TwoCaptchaClient talks to the 2Captcha solving service: submit a
// reCAPTCHA challenge, then poll for the token.
type TwoCaptchaClient struct {
	APIKey       string
	BaseURL      string
	HTTPClient   *http.Client
	PollInterval time.Duration
}

// NewTwoCaptchaClient creates a client for the hosted 2Captcha API.
func NewTwoCaptchaClient(apiKey string) *TwoCaptchaClient {
	return &TwoCaptchaClient{
		APIKey:       apiKey,
		BaseURL:      defaultBaseURL,
		HTTPClient:   &http.Client{Timeout: 30 * time.Second},
		PollInterval: defaultInterval,
	}
}

// apiResponse is the shape of both in.php and res.php JSON replies.
type apiResponse struct {
	Status  int    `json:"status"`
	Request string `json:"request"`
}

// pollState classifies one res.php reply.
type pollState int

const (
	pollPending pollState = iota
	pollSolved
	pollFailed
)

// Submit registers a challenge with the service and returns the task id.
func (c *TwoCaptchaClient) Submit(ctx context.Context, siteKey, pageURL string) (string, error) {
	form := url.Values{
		"key":       {c.APIKey},
		"method":    {"userrecaptcha"},
		"googlekey": {siteKey},
		"pageurl":   {pageURL},
		"json":      {"1"},
	}
	out, err := c.call(ctx, http.MethodPost, "/in.php", form)
	if err != nil {
		return "", err
	}
	if out.Status != 1 {
		return "", errors.New(errors.ErrCodeCaptchaSolveFailed,
			fmt.Sprintf("2captcha rejected submission: %s", out.Request))
	}
	return out.Request, nil
}

// poll checks a task once and classifies the reply.
func (c *TwoCaptchaClient) poll(ctx context.Context, taskID string) (string, pollState, error) {
	q := url.Values{
		"key":    {c.APIKey},
		"action": {"get"},
		"id":     {taskID},
		"json":   {"1"},
	}
	out, err := c.call(ctx, http.MethodGet, "/res.php?"+q.Encode(), nil)
	if err != nil {
		return "", pollFailed, err
	}
	switch {
	case out.Status == 1:
		return out.Request, pollSolved, nil
	case out.Request == "CAPCHA_NOT_READY":
		return "", pollPending, nil
	default:
		return "", pollFailed, errors.New(errors.ErrCodeCaptchaSolveFailed,
			fmt.Sprintf("2captcha task failed: %s", out.Request))
	}
}

// Solve submits the challenge and polls until a token arrives, the task
// fails, or the poll budget (two minutes at the default interval) is spent.
func (c *TwoCaptchaClient) Solve(ctx context.Context, siteKey, pageURL string) (string, error) {
	taskID, err := c.Submit(ctx, siteKey, pageURL)
	if err != nil {
		return "", err
	}

	for attempt := 0; attempt < maxPollAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return "", errors.Wrap(ctx.Err(), errors.ErrCodeCaptchaSolveFailed, "captcha solve cancelled")
		case <-time.After(c.interval()):
		}

		token, state, err := c.poll(ctx, taskID)
		switch state {
		case pollSolved:
			return token, nil
		case pollFailed:
			return "", err
		}
	}
	return "", errors.New(errors.ErrCodeCaptchaSolveFailed, "2captcha solve timed out")
}

func (c *TwoCaptchaClient) call(ctx context.Context, method, path string, form url.Values) (*apiResponse, error) {
	var body *strings.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	} else {
		body = strings.NewReader("")
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to build 2captcha request")
	}
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeCaptchaSolveFailed, "2captcha request failed").
			WithRetryable(true)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.New(errors.ErrCodeCaptchaSolveFailed,
			fmt.Sprintf("2captcha returned HTTP %d", resp.StatusCode))
	}

	var out apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeCaptchaSolveFailed, "failed to decode 2captcha response")
	}
	return &out, nil
}

func (c *TwoCaptchaClient) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return http.DefaultClient
}

func (c *TwoCaptchaClient) interval() time.Duration {
	if c.PollInterval > 0 {
		return c.PollInterval
	}
	return defaultInterval
}
