// Package provider defines the contract every state DMV automation
// implements, plus the shared page-driving helpers and the registry that
// maps state codes to implementations.
package provider

import (
	"context"
	"time"

	"github.com/platewise/platewise/pkg/browser"
	"github.com/platewise/platewise/pkg/captcha"
	"github.com/platewise/platewise/pkg/config"
	"github.com/platewise/platewise/pkg/dmv"
	"github.com/platewise/platewise/pkg/logging"
)

// Provider is the capability set a state implementation must offer. Each
// operation drives the state's portal through the page owned by the
// provider's Navigator; operations within one renewal flow share session
// state and must run in order (eligibility before fees before submission).
type Provider interface {
	// StateCode returns the two-letter state code, e.g. "CA".
	StateCode() string

	// StateName returns the display name, e.g. "California".
	StateName() string

	// GetRegistrationStatus checks the vehicle's standing. Idempotent
	// read; fails with a vehicle-not-found error when the portal reports
	// no match for the plate/VIN pair.
	GetRegistrationStatus(ctx context.Context, plate, vinLast5 string) (*dmv.RegistrationStatus, error)

	// ValidateEligibility verifies smog and insurance requirements. Must
	// be called before GetFeeBreakdown. Smog and insurance failures are
	// expected user-recoverable outcomes carrying the portal's reason
	// text, not defects.
	ValidateEligibility(ctx context.Context, plate, vinLast5 string) (*dmv.EligibilityResult, error)

	// GetFeeBreakdown parses the itemized fee table from the page reached
	// by ValidateEligibility. Not independently re-enterable.
	GetFeeBreakdown(ctx context.Context) (*dmv.FeeBreakdown, error)

	// SubmitRenewal completes the renewal with the payment info in cfg.
	// On success it captures the confirmation identifier and saves a
	// receipt artifact.
	SubmitRenewal(ctx context.Context, cfg *config.UserConfiguration) (*dmv.RenewalResult, error)

	// Selectors exposes the portal selector table, keyed by element role.
	Selectors() map[string]string
}

// Deps are the collaborators a provider drives. One provider instance owns
// one page exclusively for the duration of a flow.
type Deps struct {
	Page    *browser.Page
	Solver  *captcha.Solver
	Metrics *browser.Metrics
	Log     *logging.Logger

	// Timeout bounds each page operation. Zero means the browser default.
	Timeout time.Duration
}

// Factory builds a provider bound to its collaborators.
type Factory func(Deps) Provider
