package dmv_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/platewise/platewise/pkg/dmv"
)

func TestIsRenewable(t *testing.T) {
	cases := []struct {
		status    dmv.StatusType
		renewable bool
	}{
		{dmv.StatusCurrent, true},
		{dmv.StatusExpiringSoon, true},
		{dmv.StatusPending, false},
		{dmv.StatusExpired, false},
		{dmv.StatusHold, false},
	}
	for _, tc := range cases {
		r := dmv.RegistrationStatus{Status: tc.status}
		assert.Equal(t, tc.renewable, r.IsRenewable(), "status %s", tc.status)
	}
}

func TestStatusDisplay(t *testing.T) {
	assert.Equal(t, "Expiring Soon", dmv.StatusExpiringSoon.Display())
	assert.Equal(t, "Hold", dmv.StatusHold.Display())
}

func TestFeeTotalIsExact(t *testing.T) {
	// Classic float trap: 0.1 + 0.2. Decimal arithmetic must stay exact.
	breakdown := dmv.FeeBreakdown{Items: []dmv.FeeItem{
		{Description: "Registration", Amount: decimal.RequireFromString("0.10")},
		{Description: "CHP", Amount: decimal.RequireFromString("0.20")},
	}}
	assert.True(t, breakdown.Total().Equal(decimal.RequireFromString("0.30")))

	breakdown = dmv.FeeBreakdown{Items: []dmv.FeeItem{
		{Description: "Registration Fee", Amount: decimal.RequireFromString("65.00")},
		{Description: "License Fee", Amount: decimal.RequireFromString("182.00")},
		{Description: "County Fees", Amount: decimal.RequireFromString("1.25")},
	}}
	assert.Equal(t, "$248.25", breakdown.TotalDisplay())
}

func TestEmptyFeeBreakdown(t *testing.T) {
	var breakdown dmv.FeeBreakdown
	assert.True(t, breakdown.Total().IsZero())
	assert.Equal(t, "$0.00", breakdown.TotalDisplay())
}

func TestRenewalAmountDisplay(t *testing.T) {
	var r dmv.RenewalResult
	assert.Equal(t, "", r.AmountDisplay())

	paid := decimal.RequireFromString("248.00")
	r = dmv.RenewalResult{Success: true, AmountPaid: &paid}
	assert.Equal(t, "$248.00", r.AmountDisplay())
}
