// Package payment models the card data used to pay renewal fees. The card
// number and CVV are wrapped in secret.Secret and are only persisted by the
// OS credential store, never by the config file.
package payment

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/platewise/platewise/pkg/errors"
	"github.com/platewise/platewise/pkg/secret"
)

var (
	digitsOnly = regexp.MustCompile(`^\d+$`)
	zipPattern = regexp.MustCompile(`^\d{5}$`)
)

// Info is a validated payment card. Construct through New.
type Info struct {
	CardNumber  secret.Secret
	ExpiryMonth int
	ExpiryYear  int
	CVV         secret.Secret
	BillingZIP  string
}

// New validates card details and returns an immutable Info.
// Card numbers may contain spaces or dashes; they are stripped before the
// digit, length and Luhn checks. An all-zero number is rejected even though
// it would pass Luhn.
func New(cardNumber string, expiryMonth, expiryYear int, cvv, billingZIP string) (Info, error) {
	number := strings.NewReplacer(" ", "", "-", "").Replace(cardNumber)

	if !digitsOnly.MatchString(number) {
		return Info{}, invalid("card number must contain only digits")
	}
	if len(number) != 15 && len(number) != 16 {
		return Info{}, invalid("card number must be 15 or 16 digits")
	}
	if number == strings.Repeat("0", len(number)) {
		return Info{}, invalid("invalid card number")
	}
	if !luhnValid(number) {
		return Info{}, invalid("invalid card number (checksum failed)")
	}

	if expiryMonth < 1 || expiryMonth > 12 {
		return Info{}, invalid("expiry month must be between 1 and 12")
	}
	if expiryYear < 2000 || expiryYear > 2099 {
		return Info{}, invalid("expiry year out of range")
	}

	if !digitsOnly.MatchString(cvv) || (len(cvv) != 3 && len(cvv) != 4) {
		return Info{}, invalid("CVV must be 3 or 4 digits")
	}
	if !zipPattern.MatchString(billingZIP) {
		return Info{}, invalid("billing ZIP must be 5 digits")
	}

	return Info{
		CardNumber:  secret.New(number),
		ExpiryMonth: expiryMonth,
		ExpiryYear:  expiryYear,
		CVV:         secret.New(cvv),
		BillingZIP:  billingZIP,
	}, nil
}

func invalid(msg string) *errors.Error {
	return errors.New(errors.ErrCodeInvalidInput, msg).WithUserMessage(msg)
}

// luhnValid runs the Luhn checksum over a digit string.
func luhnValid(number string) bool {
	sum := 0
	double := false
	for i := len(number) - 1; i >= 0; i-- {
		d := int(number[i] - '0')
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}
	return sum%10 == 0
}

// ExpiredAt reports whether the card is expired relative to now. A card is
// valid through the end of its expiry month.
func (p Info) ExpiredAt(now time.Time) bool {
	if p.ExpiryYear != now.Year() {
		return p.ExpiryYear < now.Year()
	}
	return p.ExpiryMonth < int(now.Month())
}

// IsExpired reports whether the card is expired today.
func (p Info) IsExpired() bool {
	return p.ExpiredAt(time.Now())
}

// CardType derives the network from the number prefix.
func (p Info) CardType() string {
	number := p.CardNumber.Reveal()
	if number == "" {
		return "Card"
	}
	switch {
	case number[0] == '4':
		return "Visa"
	case strings.HasPrefix(number, "34") || strings.HasPrefix(number, "37"):
		return "Amex"
	case number[0] == '5':
		return "Mastercard"
	case number[0] == '6':
		return "Discover"
	}
	return "Card"
}

// MaskedNumber returns the display form, e.g. "****4242".
func (p Info) MaskedNumber() string {
	number := p.CardNumber.Reveal()
	if len(number) < 4 {
		return "****"
	}
	return "****" + number[len(number)-4:]
}

// ExpiryDisplay formats the expiry as MM/YY.
func (p Info) ExpiryDisplay() string {
	return fmt.Sprintf("%02d/%02d", p.ExpiryMonth, p.ExpiryYear%100)
}
