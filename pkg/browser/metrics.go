package browser

import "sync/atomic"

// Metrics tracks browser session performance counters.
type Metrics struct {
	// Session counts
	SessionsCreated atomic.Int64
	SessionsClosed  atomic.Int64

	// Operation counts
	NavigateCount atomic.Int64
	FillCount     atomic.Int64
	ClickCount    atomic.Int64

	// CAPTCHA outcomes
	CaptchaDetected atomic.Int64
	CaptchaSolved   atomic.Int64
	CaptchaFailed   atomic.Int64
}

// NewMetrics creates a new metrics collector.
func NewMetrics() *Metrics {
	return &Metrics{}
}

// RecordSessionCreated increments the session creation counter.
func (m *Metrics) RecordSessionCreated() {
	if m == nil {
		return
	}
	m.SessionsCreated.Add(1)
}

// RecordSessionClosed increments the session close counter.
func (m *Metrics) RecordSessionClosed() {
	if m == nil {
		return
	}
	m.SessionsClosed.Add(1)
}

// RecordNavigate increments the navigation counter.
func (m *Metrics) RecordNavigate() {
	if m == nil {
		return
	}
	m.NavigateCount.Add(1)
}

// RecordFill increments the form-fill counter.
func (m *Metrics) RecordFill() {
	if m == nil {
		return
	}
	m.FillCount.Add(1)
}

// RecordClick increments the click counter.
func (m *Metrics) RecordClick() {
	if m == nil {
		return
	}
	m.ClickCount.Add(1)
}

// RecordCaptcha tallies a CAPTCHA encounter by outcome.
func (m *Metrics) RecordCaptcha(solved bool) {
	if m == nil {
		return
	}
	m.CaptchaDetected.Add(1)
	if solved {
		m.CaptchaSolved.Add(1)
	} else {
		m.CaptchaFailed.Add(1)
	}
}

// Snapshot captures current counter values for logging.
func (m *Metrics) Snapshot() map[string]int64 {
	if m == nil {
		return nil
	}
	return map[string]int64{
		"sessions_created": m.SessionsCreated.Load(),
		"sessions_closed":  m.SessionsClosed.Load(),
		"navigations":      m.NavigateCount.Load(),
		"fills":            m.FillCount.Load(),
		"clicks":           m.ClickCount.Load(),
		"captcha_detected": m.CaptchaDetected.Load(),
		"captcha_solved":   m.CaptchaSolved.Load(),
		"captcha_failed":   m.CaptchaFailed.Load(),
	}
}
