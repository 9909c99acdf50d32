// Package keychain stores payment credentials in the operating system's
// credential store. It is the only place the full card number and CVV are
// persisted; the encrypted config document never sees them.
package keychain

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/zalando/go-keyring"

	"github.com/platewise/platewise/pkg/errors"
	"github.com/platewise/platewise/pkg/payment"
)

// ServiceName keys every secret in the OS store.
const ServiceName = "platewise"

// Secret names within the service.
const (
	keyCardNumber = "card_number"
	keyCardExpiry = "card_expiry" // "MM/YYYY"
	keyCardCVV    = "card_cvv"
	keyBillingZIP = "billing_zip"
)

// Store writes the four payment secrets.
func Store(p payment.Info) error {
	entries := map[string]string{
		keyCardNumber: p.CardNumber.Reveal(),
		keyCardExpiry: fmt.Sprintf("%02d/%d", p.ExpiryMonth, p.ExpiryYear),
		keyCardCVV:    p.CVV.Reveal(),
		keyBillingZIP: p.BillingZIP,
	}
	for key, value := range entries {
		if err := keyring.Set(ServiceName, key, value); err != nil {
			return errors.Wrap(err, errors.ErrCodeKeychain, "failed to store payment credential").
				WithContext("key", key).
				WithUserMessage("Could not write to the system credential store.")
		}
	}
	return nil
}

// Retrieve reads the stored payment, returning ok=false when none exists
// or the stored secrets are incomplete.
func Retrieve() (payment.Info, bool, error) {
	number, err := keyring.Get(ServiceName, keyCardNumber)
	if err == keyring.ErrNotFound {
		return payment.Info{}, false, nil
	}
	if err != nil {
		return payment.Info{}, false, wrapGet(err)
	}

	expiry, err := keyring.Get(ServiceName, keyCardExpiry)
	if err != nil {
		return payment.Info{}, false, nil
	}
	cvv, err := keyring.Get(ServiceName, keyCardCVV)
	if err != nil {
		return payment.Info{}, false, nil
	}
	zip, err := keyring.Get(ServiceName, keyBillingZIP)
	if err != nil {
		return payment.Info{}, false, nil
	}

	month, year, ok := parseExpiry(expiry)
	if !ok {
		return payment.Info{}, false, nil
	}

	p, err := payment.New(number, month, year, cvv, zip)
	if err != nil {
		// Stored data no longer validates; treat as absent rather than
		// failing the whole command.
		return payment.Info{}, false, nil
	}
	return p, true, nil
}

// Delete removes all payment secrets. Missing entries are not an error.
func Delete() error {
	for _, key := range []string{keyCardNumber, keyCardExpiry, keyCardCVV, keyBillingZIP} {
		if err := keyring.Delete(ServiceName, key); err != nil && err != keyring.ErrNotFound {
			return errors.Wrap(err, errors.ErrCodeKeychain, "failed to delete payment credential").
				WithContext("key", key)
		}
	}
	return nil
}

// Exists reports whether a card number is stored.
func Exists() (bool, error) {
	_, err := keyring.Get(ServiceName, keyCardNumber)
	if err == keyring.ErrNotFound {
		return false, nil
	}
	if err != nil {
		return false, wrapGet(err)
	}
	return true, nil
}

func parseExpiry(expiry string) (month, year int, ok bool) {
	parts := strings.SplitN(expiry, "/", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	month, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, false
	}
	year, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, false
	}
	return month, year, true
}

func wrapGet(err error) error {
	return errors.Wrap(err, errors.ErrCodeKeychain, "failed to read payment credential").
		WithUserMessage("Could not read from the system credential store.")
}
