// Package california automates the California DMV portal: the 3-step
// registration status protocol on the ipp2 application and the renewal
// flow on the vr application.
package california

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/platewise/platewise/pkg/config"
	"github.com/platewise/platewise/pkg/dmv"
	"github.com/platewise/platewise/pkg/errors"
	"github.com/platewise/platewise/pkg/logging"
	"github.com/platewise/platewise/pkg/provider"
)

const (
	StateCode = "CA"
	StateName = "California"

	// StatusURL is the registration status lookup application.
	StatusURL = "https://www.dmv.ca.gov/wasapp/ipp2/initPers.do"
	// RenewURL is the online renewal application.
	RenewURL = "https://www.dmv.ca.gov/wasapp/vr/vr.do"

	// vinNotFoundMarker appears in the error element when the portal
	// re-renders the VIN entry step for an unknown plate/VIN pair.
	vinNotFoundMarker = "vin/hin not found"

	// expiringSoonDays is the window within which a current registration
	// is reported as expiring soon.
	expiringSoonDays = 90
)

// selectors maps element roles to portal selectors. The renewal-flow
// failure selectors (smog_error, insurance_error) are provisional: no
// confirmed real decline has been observed, and absence of the marker is
// treated as success.
var selectors = map[string]string{
	// Status flow (3 steps: plate, VIN, results)
	"status_plate_input":      "#licPlate",
	"status_continue":         "input[type='submit'][value='Continue']",
	"status_vin_input":        "#lastFiveVin",
	"status_vin_not_found":    ".error-message, .alert-danger",
	"status_results_fieldset": "fieldset.results",
	"status_results_legend":   "fieldset.results legend",

	// Renewal flow
	"renew_plate_input": "#licPlate",
	"renew_vin_input":   "#lastFiveVin",
	"renew_continue":    "input[type='submit'][value='Submit']",
	"owner_name":        "#ownerName",
	"owner_phone":       "#phone",
	"owner_email":       "#email",
	"street_address":    "#street",
	"city":              "#city",
	"state":             "#state",
	"zip":               "#zip",

	// Payment
	"card_number":       "#cardNumber",
	"card_expiry_month": "#expMonth",
	"card_expiry_year":  "#expYear",
	"card_cvv":          "#cvv",
	"billing_zip":       "#billingZip",
	"pay_button":        "#submitPayment",

	// Fees
	"fee_table":    ".fee-breakdown table",
	"total_amount": ".total-amount",

	// Errors
	"error_message":   ".error-message, .alert-danger",
	"smog_error":      ".smog-error",
	"insurance_error": ".insurance-error",

	// Confirmation
	"confirmation_number": ".confirmation-number",
	"print_receipt":       "#printReceipt",
}

// Provider drives the California DMV portal.
type Provider struct {
	nav *provider.Navigator
	log *logging.Logger
}

func init() {
	provider.Register(StateCode, New)
}

// New builds a California provider over the given collaborators.
func New(deps provider.Deps) provider.Provider {
	log := deps.Log
	if log == nil {
		log = logging.Nop()
	}
	return &Provider{
		nav: provider.NewNavigator(deps),
		log: log,
	}
}

func (p *Provider) StateCode() string { return StateCode }
func (p *Provider) StateName() string { return StateName }

// Selectors returns a copy of the portal selector table.
func (p *Provider) Selectors() map[string]string {
	out := make(map[string]string, len(selectors))
	for k, v := range selectors {
		out[k] = v
	}
	return out
}

// GetRegistrationStatus runs the 3-step status protocol: plate entry, VIN
// entry, results. The only modeled error branch is the portal re-rendering
// VIN entry with a "VIN/HIN not found" marker.
func (p *Provider) GetRegistrationStatus(ctx context.Context, plate, vinLast5 string) (*dmv.RegistrationStatus, error) {
	p.log.Info(logging.CategoryProvider, "status_check", "checking registration status", map[string]any{
		"state": StateCode,
		"plate": plate,
	})

	if err := p.nav.NavigateAndSettle(ctx, StatusURL); err != nil {
		return nil, err
	}
	if err := p.nav.ResolveCaptcha(ctx); err != nil {
		return nil, err
	}

	// Step 1: plate entry.
	if err := p.nav.FillField(ctx, selectors["status_plate_input"], plate); err != nil {
		return nil, err
	}
	if err := p.nav.ClickAndWait(ctx, selectors["status_continue"]); err != nil {
		return nil, err
	}
	if err := p.nav.ResolveCaptcha(ctx); err != nil {
		return nil, err
	}

	// The portal rarely bounces back to plate entry; resubmit once.
	vinPresent, err := p.nav.ElementExists(ctx, selectors["status_vin_input"])
	if err != nil {
		return nil, err
	}
	if !vinPresent {
		p.log.Warn(logging.CategoryProvider, "status_replate", "portal returned to plate entry, resubmitting", nil)
		if err := p.nav.FillField(ctx, selectors["status_plate_input"], plate); err != nil {
			return nil, err
		}
		if err := p.nav.ClickAndWait(ctx, selectors["status_continue"]); err != nil {
			return nil, err
		}
	}

	// Step 2: VIN entry.
	if err := p.nav.FillField(ctx, selectors["status_vin_input"], vinLast5); err != nil {
		return nil, err
	}
	if err := p.nav.ClickAndWait(ctx, selectors["status_continue"]); err != nil {
		return nil, err
	}

	if text, ok, err := p.nav.ElementText(ctx, selectors["status_vin_not_found"]); err != nil {
		return nil, err
	} else if ok && strings.Contains(strings.ToLower(text), vinNotFoundMarker) {
		return nil, errors.VehicleNotFound(plate)
	}

	// Step 3: results.
	html, err := p.nav.PageHTML(ctx)
	if err != nil {
		return nil, err
	}
	prose, ok := resultsProse(html)
	if !ok {
		return nil, errors.DMV("Registration status results not found")
	}

	return buildStatus(plate, vinLast5, prose, time.Now()), nil
}

// buildStatus turns results prose into a typed status record. now is
// injected for testability of the days-until-expiry derivation.
func buildStatus(plate, vinLast5, prose string, now time.Time) *dmv.RegistrationStatus {
	status := classifyStatus(prose)
	exp := parseDate(prose)

	var daysLeft *int
	if exp != nil {
		d := int(exp.Sub(now).Hours() / 24)
		daysLeft = &d
		if status == dmv.StatusCurrent && d <= expiringSoonDays {
			status = dmv.StatusExpiringSoon
		}
	}

	return &dmv.RegistrationStatus{
		Plate:           plate,
		VINLast5:        vinLast5,
		Status:          status,
		ExpirationDate:  exp,
		DaysUntilExpiry: daysLeft,
		StatusMessage:   prose,
	}
}

// ValidateEligibility submits plate and VIN together on the renewal
// application and checks the smog and insurance markers. Absence of a
// marker is success; there is no confirmed positive signal.
func (p *Provider) ValidateEligibility(ctx context.Context, plate, vinLast5 string) (*dmv.EligibilityResult, error) {
	p.log.Info(logging.CategoryProvider, "eligibility_check", "validating renewal eligibility", map[string]any{
		"state": StateCode,
		"plate": plate,
	})

	if err := p.nav.NavigateAndSettle(ctx, RenewURL); err != nil {
		return nil, err
	}
	if err := p.nav.ResolveCaptcha(ctx); err != nil {
		return nil, err
	}

	if err := p.nav.FillField(ctx, selectors["renew_plate_input"], plate); err != nil {
		return nil, err
	}
	if err := p.nav.FillField(ctx, selectors["renew_vin_input"], vinLast5); err != nil {
		return nil, err
	}
	if err := p.nav.ClickAndWait(ctx, selectors["renew_continue"]); err != nil {
		return nil, err
	}

	if text, ok, err := p.nav.ElementText(ctx, selectors["smog_error"]); err != nil {
		return nil, err
	} else if ok {
		return nil, errors.SmogCheck(text)
	}

	if text, ok, err := p.nav.ElementText(ctx, selectors["insurance_error"]); err != nil {
		return nil, err
	} else if ok {
		return nil, errors.Insurance(text)
	}

	now := time.Now()
	return &dmv.EligibilityResult{
		Eligible: true,
		Smog: dmv.SmogStatus{
			Passed:    true,
			CheckDate: &now,
		},
		Insurance: dmv.InsuranceStatus{
			Verified: true,
			Provider: "Verified",
		},
	}, nil
}

// GetFeeBreakdown parses the fee table from the page reached by
// ValidateEligibility.
func (p *Provider) GetFeeBreakdown(ctx context.Context) (*dmv.FeeBreakdown, error) {
	html, err := p.nav.PageHTML(ctx)
	if err != nil {
		return nil, err
	}
	fees, err := parseFeeTable(html)
	if err != nil {
		return nil, err
	}

	p.log.Info(logging.CategoryProvider, "fees_parsed", "fee breakdown parsed", map[string]any{
		"items": len(fees.Items),
		"total": fees.TotalDisplay(),
	})
	return fees, nil
}

// SubmitRenewal fills owner and payment fields on the current page and
// submits. Card number and CVV are read from their secret wrappers only at
// the moment of filling and are never logged.
func (p *Provider) SubmitRenewal(ctx context.Context, cfg *config.UserConfiguration) (*dmv.RenewalResult, error) {
	if cfg == nil || cfg.Payment == nil {
		return nil, errors.New(errors.ErrCodePayment, "payment information not provided").
			WithUserMessage("No payment method is available.").
			WithRemediation("Run 'platewise register --payment' to store a card.")
	}
	if cfg.Owner == nil {
		return nil, errors.New(errors.ErrCodeConfigInvalid, "owner information not configured")
	}

	p.log.Info(logging.CategoryPayment, "renewal_submit", "submitting renewal", map[string]any{
		"state": StateCode,
		"card":  cfg.Payment.MaskedNumber(),
	})

	ownerFields := []struct {
		key   string
		value string
	}{
		{"owner_name", cfg.Owner.FullName},
		{"owner_phone", cfg.Owner.Phone},
		{"owner_email", cfg.Owner.Email},
		{"street_address", cfg.Owner.Address.Street},
		{"city", cfg.Owner.Address.City},
		{"zip", cfg.Owner.Address.ZIPCode},
	}
	for _, f := range ownerFields {
		if err := p.nav.FillField(ctx, selectors[f.key], f.value); err != nil {
			return nil, err
		}
	}

	pay := cfg.Payment
	if err := p.nav.FillField(ctx, selectors["card_number"], pay.CardNumber.Reveal()); err != nil {
		return nil, err
	}
	if err := p.nav.SelectOption(ctx, selectors["card_expiry_month"], strconv.Itoa(pay.ExpiryMonth)); err != nil {
		return nil, err
	}
	if err := p.nav.SelectOption(ctx, selectors["card_expiry_year"], strconv.Itoa(pay.ExpiryYear)); err != nil {
		return nil, err
	}
	if err := p.nav.FillField(ctx, selectors["card_cvv"], pay.CVV.Reveal()); err != nil {
		return nil, err
	}
	if err := p.nav.FillField(ctx, selectors["billing_zip"], pay.BillingZIP); err != nil {
		return nil, err
	}

	if err := p.nav.ClickAndWait(ctx, selectors["pay_button"]); err != nil {
		return nil, err
	}

	if text, ok, err := p.nav.ElementText(ctx, selectors["error_message"]); err != nil {
		return nil, err
	} else if ok {
		if strings.Contains(strings.ToLower(text), "declined") {
			return nil, errors.PaymentDeclined()
		}
		return nil, errors.PaymentFailed(text)
	}

	confirmation, _, err := p.nav.ElementText(ctx, selectors["confirmation_number"])
	if err != nil {
		return nil, err
	}

	now := time.Now()
	receiptPath := fmt.Sprintf("dmv_receipt_%s.pdf", now.Format("2006-01-02"))
	if err := p.nav.SavePDF(ctx, receiptPath); err != nil {
		// The renewal went through; a failed receipt capture is logged,
		// not fatal.
		p.log.Warn(logging.CategoryProvider, "receipt_failed", err.Error(), nil)
		receiptPath = ""
	}

	// The portal does not expose the new expiration on the confirmation
	// page; one year forward at the first of the current month is an
	// approximation.
	newExp := time.Date(now.Year()+1, now.Month(), 1, 0, 0, 0, 0, time.Local)

	p.log.Info(logging.CategoryPayment, "renewal_done", "renewal submitted", map[string]any{
		"confirmation": confirmation,
	})
	return &dmv.RenewalResult{
		Success:            true,
		ConfirmationNumber: confirmation,
		NewExpirationDate:  &newExp,
		ReceiptPath:        receiptPath,
	}, nil
}
