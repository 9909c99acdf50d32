package california

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/platewise/platewise/pkg/dmv"
)

func TestClassifyStatus(t *testing.T) {
	tests := []struct {
		name string
		text string
		want dmv.StatusType
	}{
		{
			"has been mailed",
			"Your registration card has been mailed to you as of February 05, 2026.",
			dmv.StatusCurrent,
		},
		{
			"was mailed",
			"Your registration was mailed on January 20, 2026.",
			dmv.StatusCurrent,
		},
		{
			"in progress with no further action",
			"An application for Vehicle Registration 8ABC123 is in progress as of February 07, 2026. Your registration has not yet been mailed. No further action is required.",
			dmv.StatusPending,
		},
		{
			"not yet been mailed",
			"Your registration has not yet been mailed. No further action is required.",
			dmv.StatusPending,
		},
		{
			"not yet received",
			"Your renewal application has not yet received by DMV.",
			dmv.StatusPending,
		},
		{
			"action required without no-further",
			"Items due on your registration. Action is required before processing.",
			dmv.StatusHold,
		},
		{
			"no further action is pending not hold",
			"Processing your registration. No further action is required at this time.",
			dmv.StatusPending,
		},
		{
			"items due",
			"There are items due for this vehicle. Please visit your local DMV.",
			dmv.StatusHold,
		},
		{
			"expired",
			"Your vehicle registration has expired as of December 31, 2025.",
			dmv.StatusExpired,
		},
		{
			"unknown prose defaults to pending",
			"Something completely unexpected from the DMV website.",
			dmv.StatusPending,
		},
		{
			"case insensitive",
			"Your registration card HAS BEEN MAILED to you.",
			dmv.StatusCurrent,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := classifyStatus(tt.text); got != tt.want {
				t.Errorf("classifyStatus(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestParseDate(t *testing.T) {
	day := func(y int, m time.Month, d int) *time.Time {
		t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
		return &t
	}
	tests := []struct {
		name string
		text string
		want *time.Time
	}{
		{"month day year", "February 07, 2026", day(2026, time.February, 7)},
		{"slash format", "02/07/2026", day(2026, time.February, 7)},
		{"iso format", "2026-02-07", day(2026, time.February, 7)},
		{"embedded in prose", "as of February 07, 2026 your", day(2026, time.February, 7)},
		{"embedded slash date", "updated on 02/07/2026 by", day(2026, time.February, 7)},
		{"surrounding whitespace", "  January 15, 2026  ", day(2026, time.January, 15)},
		{"no date", "no date here", nil},
		{"empty", "", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseDate(tt.text)
			if tt.want == nil {
				if got != nil {
					t.Fatalf("parseDate(%q) = %v, want nil", tt.text, got)
				}
				return
			}
			if got == nil || !got.Equal(*tt.want) {
				t.Errorf("parseDate(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"$168.00", "168.00"},
		{"168.00", "168.00"},
		{"$1,248.00", "1248.00"},
		{"Total: $248.00 due", "248.00"},
		{"$32", "32"},
		{"no amount", "0"},
		{"", "0"},
	}
	for _, tt := range tests {
		want, err := decimal.NewFromString(tt.want)
		if err != nil {
			t.Fatalf("bad test amount %q: %v", tt.want, err)
		}
		if got := parseAmount(tt.text); !got.Equal(want) {
			t.Errorf("parseAmount(%q) = %s, want %s", tt.text, got, want)
		}
	}
}

func TestParseFeeTable(t *testing.T) {
	html := `<html><body><div class="fee-breakdown"><table>
		<tr><th>Fee</th><th>Amount</th></tr>
		<tr><td>Registration Fee</td><td>$65.00</td></tr>
		<tr><td>CHP Fee</td><td>$29.00</td></tr>
		<tr><td>License Fee</td><td>$1,154.00</td></tr>
		<tr><td>Note</td><td>n/a</td></tr>
	</table></div></body></html>`

	fees, err := parseFeeTable(html)
	if err != nil {
		t.Fatalf("parseFeeTable: %v", err)
	}
	if len(fees.Items) != 3 {
		t.Fatalf("expected 3 items, got %d: %+v", len(fees.Items), fees.Items)
	}
	if fees.Items[0].Description != "Registration Fee" {
		t.Errorf("first item = %q", fees.Items[0].Description)
	}
	if got := fees.TotalDisplay(); got != "$1248.00" {
		t.Errorf("total = %s", got)
	}
}

func TestParseFeeTableMissing(t *testing.T) {
	if _, err := parseFeeTable(`<html><body><p>nothing</p></body></html>`); err == nil {
		t.Fatal("expected error for missing fee table")
	}
}

func TestResultsProse(t *testing.T) {
	html := `<html><body><fieldset class="results">
		<legend>Vehicle Registration Status</legend>
		<p>An application for Vehicle Registration 8ABC123 is in progress
		as of <span class="date">February 07, 2026</span>.</p>
		<p>Your registration has not yet been mailed.</p>
	</fieldset></body></html>`

	prose, ok := resultsProse(html)
	if !ok {
		t.Fatal("expected results container to be found")
	}
	for _, want := range []string{"Vehicle Registration Status", "in progress", "February 07, 2026", "not yet been mailed"} {
		if !strings.Contains(prose, want) {
			t.Errorf("prose missing %q: %s", want, prose)
		}
	}

	if _, ok := resultsProse(`<html><body><p>no fieldset</p></body></html>`); ok {
		t.Error("expected no results container")
	}
}

func TestBuildStatus(t *testing.T) {
	now := time.Date(2026, time.February, 10, 0, 0, 0, 0, time.UTC)

	t.Run("current far out stays current", func(t *testing.T) {
		s := buildStatus("8ABC123", "12345", "Your registration card has been mailed to you as of December 05, 2026.", now)
		if s.Status != dmv.StatusCurrent {
			t.Errorf("status = %v", s.Status)
		}
		if s.ExpirationDate == nil || s.DaysUntilExpiry == nil {
			t.Fatal("expected date fields populated")
		}
	})

	t.Run("current within 90 days becomes expiring soon", func(t *testing.T) {
		s := buildStatus("8ABC123", "12345", "Your registration card has been mailed to you as of March 05, 2026.", now)
		if s.Status != dmv.StatusExpiringSoon {
			t.Errorf("status = %v", s.Status)
		}
	})

	t.Run("no date leaves optional fields nil", func(t *testing.T) {
		s := buildStatus("8ABC123", "12345", "Something unexpected.", now)
		if s.Status != dmv.StatusPending {
			t.Errorf("status = %v", s.Status)
		}
		if s.ExpirationDate != nil || s.DaysUntilExpiry != nil {
			t.Error("expected nil date fields")
		}
		if s.StatusMessage == "" {
			t.Error("expected raw prose retained")
		}
	})
}
