package errors

import "fmt"

// Constructors for the well-known failure conditions. Each ships with the
// canned user message and remediation the CLI renders, so call sites stay
// one-liners.

// ConfigNotFound indicates no configuration file exists yet.
func ConfigNotFound() *Error {
	return New(ErrCodeConfigNotFound, "configuration not found").
		WithUserMessage("No configuration found.").
		WithRemediation("Run 'platewise register' to set up your vehicle.")
}

// ConfigDecrypt indicates the passphrase did not decrypt the config file.
func ConfigDecrypt() *Error {
	return New(ErrCodeConfigDecrypt, "failed to decrypt configuration").
		WithUserMessage("Wrong passphrase.").
		WithRemediation("Check your passphrase and try again.")
}

// VehicleNotFound indicates the portal reported no match for the plate/VIN.
func VehicleNotFound(plate string) *Error {
	return New(ErrCodeVehicleNotFound, fmt.Sprintf("vehicle not found: %s", plate)).
		WithContext("plate", plate).
		WithUserMessage(fmt.Sprintf("Vehicle not found: %s", plate)).
		WithRemediation("Check your license plate and VIN, then try again.")
}

// SmogCheck indicates the portal flagged the smog certification requirement.
func SmogCheck(reason string) *Error {
	if reason == "" {
		reason = "Visit a STAR-certified smog station to complete testing."
	}
	return New(ErrCodeSmogCheck, "smog check required").
		WithUserMessage("Smog check required.").
		WithRemediation(reason)
}

// Insurance indicates the portal could not verify insurance coverage.
func Insurance(reason string) *Error {
	if reason == "" {
		reason = "Contact your insurance provider to verify coverage with DMV."
	}
	return New(ErrCodeInsurance, "insurance not verified").
		WithUserMessage("Insurance not verified.").
		WithRemediation(reason)
}

// PaymentDeclined indicates the portal rejected the card.
func PaymentDeclined() *Error {
	return New(ErrCodePaymentDeclined, "payment declined").
		WithUserMessage("Payment failed.").
		WithRemediation("Card declined. Check your card details or try another card.")
}

// PaymentFailed indicates a payment rejection that was not a decline.
func PaymentFailed(reason string) *Error {
	return New(ErrCodePayment, "payment failed").
		WithContext("reason", reason).
		WithUserMessage("Payment failed.").
		WithRemediation(reason)
}

// CaptchaUnresolved signals a CAPTCHA with no applicable solving strategy.
// The caller's remediation is to retry in a visible browser session.
func CaptchaUnresolved() *Error {
	return New(ErrCodeCaptchaUnresolved, "captcha detected, no solving strategy applicable").
		WithUserMessage("CAPTCHA detected.").
		WithRemediation("Try running with the --headed flag to solve it manually.")
}

// CaptchaSolveFailed signals that a solving strategy ran and was exhausted.
// Distinct from CaptchaUnresolved: something was tried and did not work.
func CaptchaSolveFailed(method string) *Error {
	return New(ErrCodeCaptchaSolveFailed, "captcha solve failed").
		WithContext("method", method).
		WithUserMessage("Failed to solve CAPTCHA.").
		WithRemediation(fmt.Sprintf("Method %q failed. Wait a moment and retry, or use --headed for manual solving.", method))
}

// DMV wraps any other portal-reported failure.
func DMV(message string) *Error {
	return New(ErrCodeDMV, message).WithUserMessage(message)
}
