package captcha_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platewise/platewise/pkg/captcha"
	"github.com/platewise/platewise/pkg/errors"
)

func TestPresent(t *testing.T) {
	tests := []struct {
		name string
		html string
		want bool
	}{
		{"recaptcha iframe", `<html><body><iframe src="https://www.google.com/recaptcha/api2/anchor?k=abc"></iframe></body></html>`, true},
		{"hcaptcha iframe", `<html><body><iframe src="https://hcaptcha.com/captcha.html"></iframe></body></html>`, true},
		{"g-recaptcha div", `<html><body><div class="g-recaptcha" data-sitekey="key"></div></body></html>`, true},
		{"captcha id", `<html><body><div id="captcha"></div></body></html>`, true},
		{"bare sitekey attr", `<html><body><div data-sitekey="key"></div></body></html>`, true},
		{"h-captcha class", `<html><body><div class="h-captcha"></div></body></html>`, true},
		{"clean page", `<html><body><form><input id="licPlate"></form></body></html>`, false},
		{"mentions captcha in text only", `<html><body><p>no captcha here</p></body></html>`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, captcha.Present(tt.html))
		})
	}
}

func TestSiteKey(t *testing.T) {
	t.Run("data-sitekey attribute", func(t *testing.T) {
		key, ok := captcha.SiteKey(`<div class="g-recaptcha" data-sitekey="6LeIxAcTAAAAAJcZVRqyHh71UMIEGNQ_MXjiZKhI"></div>`)
		require.True(t, ok)
		assert.Equal(t, "6LeIxAcTAAAAAJcZVRqyHh71UMIEGNQ_MXjiZKhI", key)
	})

	t.Run("iframe k parameter", func(t *testing.T) {
		key, ok := captcha.SiteKey(`<iframe src="https://www.google.com/recaptcha/api2/anchor?ar=1&k=6LfD3PIbAAAAAJs_eEHvoOl75_83eXSqpPSRFJ_u&co=aHR0"></iframe>`)
		require.True(t, ok)
		assert.Equal(t, "6LfD3PIbAAAAAJs_eEHvoOl75_83eXSqpPSRFJ_u", key)
	})

	t.Run("attribute wins over iframe", func(t *testing.T) {
		html := `<div data-sitekey="from-attr"></div><iframe src="https://www.google.com/recaptcha/api2/anchor?k=from-iframe"></iframe>`
		key, ok := captcha.SiteKey(html)
		require.True(t, ok)
		assert.Equal(t, "from-attr", key)
	})

	t.Run("absent", func(t *testing.T) {
		_, ok := captcha.SiteKey(`<html><body><p>hello</p></body></html>`)
		assert.False(t, ok)
	})
}

// fakeTwoCaptcha scripts res.php replies in order after a fixed in.php
// task id.
func fakeTwoCaptcha(t *testing.T, taskID string, replies []string) *httptest.Server {
	t.Helper()
	var polls int
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/in.php":
			require.NoError(t, r.ParseForm())
			assert.Equal(t, "userrecaptcha", r.Form.Get("method"))
			assert.Equal(t, "1", r.Form.Get("json"))
			assert.NotEmpty(t, r.Form.Get("googlekey"))
			assert.NotEmpty(t, r.Form.Get("pageurl"))
			fmt.Fprintf(w, `{"status":1,"request":%q}`, taskID)
		case "/res.php":
			assert.Equal(t, taskID, r.URL.Query().Get("id"))
			require.Less(t, polls, len(replies), "more polls than scripted replies")
			fmt.Fprint(w, replies[polls])
			polls++
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
}

func newTestClient(srv *httptest.Server) *captcha.TwoCaptchaClient {
	c := captcha.NewTwoCaptchaClient("test-key")
	c.BaseURL = srv.URL
	c.PollInterval = time.Millisecond
	return c
}

func TestTwoCaptchaSolve(t *testing.T) {
	srv := fakeTwoCaptcha(t, "12345", []string{
		`{"status":0,"request":"CAPCHA_NOT_READY"}`,
		`{"status":0,"request":"CAPCHA_NOT_READY"}`,
		`{"status":1,"request":"solved-token"}`,
	})
	defer srv.Close()

	token, err := newTestClient(srv).Solve(context.Background(), "sitekey", "https://example.com")
	require.NoError(t, err)
	assert.Equal(t, "solved-token", token)
}

func TestTwoCaptchaSolveTaskFailure(t *testing.T) {
	srv := fakeTwoCaptcha(t, "12345", []string{
		`{"status":0,"request":"ERROR_CAPTCHA_UNSOLVABLE"}`,
	})
	defer srv.Close()

	_, err := newTestClient(srv).Solve(context.Background(), "sitekey", "https://example.com")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeCaptchaSolveFailed))
	assert.Contains(t, err.Error(), "ERROR_CAPTCHA_UNSOLVABLE")
}

func TestTwoCaptchaSubmitRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"status":0,"request":"ERROR_WRONG_USER_KEY"}`)
	}))
	defer srv.Close()

	_, err := newTestClient(srv).Submit(context.Background(), "sitekey", "https://example.com")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeCaptchaSolveFailed))
}

func TestTwoCaptchaSolveCancelled(t *testing.T) {
	srv := fakeTwoCaptcha(t, "12345", []string{
		`{"status":0,"request":"CAPCHA_NOT_READY"}`,
	})
	defer srv.Close()

	c := newTestClient(srv)
	c.PollInterval = time.Second

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.Solve(ctx, "sitekey", "https://example.com")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeCaptchaSolveFailed))
}

func TestSolverNoStrategy(t *testing.T) {
	s := captcha.NewSolver("", false, nil)
	assert.False(t, s.HasStrategy())

	err := s.Solve(context.Background(), nil, "https://example.com")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeCaptchaUnresolved))
}

func TestSolverStrategyAvailability(t *testing.T) {
	assert.True(t, captcha.NewSolver("key", false, nil).HasStrategy())
	assert.True(t, captcha.NewSolver("", true, nil).HasStrategy())
	assert.True(t, captcha.NewSolver("key", true, nil).HasStrategy())
}
