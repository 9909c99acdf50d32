// Package vehicle defines the normalized vehicle identity used across the
// provider and configuration layers.
package vehicle

import (
	"regexp"
	"strings"

	"github.com/platewise/platewise/pkg/errors"
)

var (
	nonAlphanumeric = regexp.MustCompile(`[^A-Z0-9]`)
	// VIN characters exclude I, O and Q per the VIN standard.
	vinLast5Pattern = regexp.MustCompile(`^[A-HJ-NPR-Z0-9]{5}$`)
)

// Identity identifies a vehicle by plate and VIN-last-5. Values are always
// stored normalized; construct through NewIdentity.
type Identity struct {
	Plate    string `yaml:"plate"`
	VINLast5 string `yaml:"vin_last5"`
}

// NewIdentity normalizes and validates a plate / VIN-last-5 pair.
// Plates are uppercased with punctuation and whitespace stripped before the
// 2-8 character length check. The VIN fragment must be exactly 5 characters
// and may not contain I, O or Q.
func NewIdentity(plate, vinLast5 string) (Identity, error) {
	p := NormalizePlate(plate)
	if len(p) < 2 || len(p) > 8 {
		return Identity{}, errors.New(errors.ErrCodeInvalidInput, "plate must be 2-8 alphanumeric characters").
			WithContext("plate", plate).
			WithUserMessage("License plate must be 2-8 letters and digits.")
	}

	v := strings.ToUpper(strings.TrimSpace(vinLast5))
	if !vinLast5Pattern.MatchString(v) {
		return Identity{}, errors.New(errors.ErrCodeInvalidInput, "vin_last5 must be 5 characters, excluding I/O/Q").
			WithUserMessage("VIN must be the last 5 characters (letters I, O and Q are never used).")
	}

	return Identity{Plate: p, VINLast5: v}, nil
}

// NormalizePlate uppercases and strips everything but letters and digits.
func NormalizePlate(plate string) string {
	return nonAlphanumeric.ReplaceAllString(strings.ToUpper(plate), "")
}

// MaskedVIN returns the display form, e.g. "***45".
func (i Identity) MaskedVIN() string {
	if len(i.VINLast5) < 2 {
		return "***"
	}
	return "***" + i.VINLast5[len(i.VINLast5)-2:]
}
