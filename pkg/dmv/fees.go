package dmv

import "github.com/shopspring/decimal"

// FeeItem is one line of the portal's fee table. Amounts are exact decimals;
// float is never used for currency.
type FeeItem struct {
	Description string
	Amount      decimal.Decimal
}

// AmountDisplay formats the amount as dollars.
func (f FeeItem) AmountDisplay() string {
	return "$" + f.Amount.StringFixed(2)
}

// FeeBreakdown is the ordered fee table for a renewal.
type FeeBreakdown struct {
	Items []FeeItem
}

// Total sums the line items. Computed on demand so a stored total can never
// drift from the items.
func (f FeeBreakdown) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range f.Items {
		total = total.Add(item.Amount)
	}
	return total
}

// TotalDisplay formats the total as dollars.
func (f FeeBreakdown) TotalDisplay() string {
	return "$" + f.Total().StringFixed(2)
}
