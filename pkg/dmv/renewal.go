package dmv

import (
	"time"

	"github.com/shopspring/decimal"
)

// RenewalResult is the terminal record of a renewal submission. Produced
// once, never mutated.
type RenewalResult struct {
	Success            bool
	ConfirmationNumber string
	NewExpirationDate  *time.Time
	AmountPaid         *decimal.Decimal
	ReceiptPath        string
	ErrorMessage       string
}

// AmountDisplay formats the paid amount, empty when unknown.
func (r RenewalResult) AmountDisplay() string {
	if r.AmountPaid == nil {
		return ""
	}
	return "$" + r.AmountPaid.StringFixed(2)
}
