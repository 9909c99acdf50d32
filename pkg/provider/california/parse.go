package california

import (
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/shopspring/decimal"

	"github.com/platewise/platewise/pkg/dmv"
	"github.com/platewise/platewise/pkg/errors"
)

// dateFormats are tried against the whole trimmed string, in order.
var dateFormats = []string{
	"January 02, 2006",
	"01/02/2006",
	"2006-01-02",
}

var (
	// embeddedDateRe finds a date buried in surrounding prose, e.g.
	// "as of February 07, 2026 your".
	embeddedDateRe = regexp.MustCompile(`[A-Z][a-z]+ \d{1,2}, \d{4}|\d{1,2}/\d{1,2}/\d{4}`)

	// amountRe finds the first dollar amount in a text fragment.
	amountRe = regexp.MustCompile(`\$?([\d,]+\.?\d*)`)
)

// classifyStatus maps the portal's prose to a status. The portal answers
// status checks with unstructured paragraphs, so classification is an
// ordered keyword rule list: first match wins, case-insensitive, and
// unrecognized prose defaults to pending rather than erroring.
func classifyStatus(text string) dmv.StatusType {
	t := strings.ToLower(text)
	switch {
	case strings.Contains(t, "has been mailed") || strings.Contains(t, "was mailed"):
		return dmv.StatusCurrent
	case strings.Contains(t, "items due") || strings.Contains(t, "action is required"):
		if strings.Contains(t, "no further action") {
			return dmv.StatusPending
		}
		return dmv.StatusHold
	case strings.Contains(t, "in progress") ||
		strings.Contains(t, "not yet been mailed") ||
		strings.Contains(t, "not yet received"):
		return dmv.StatusPending
	case strings.Contains(t, "expired"):
		return dmv.StatusExpired
	default:
		return dmv.StatusPending
	}
}

// parseDate extracts a date from portal text. Strict whole-string formats
// are tried first, then an embedded-pattern search. Returns nil when
// nothing matches; never errors.
func parseDate(text string) *time.Time {
	s := strings.TrimSpace(text)
	if s == "" {
		return nil
	}
	for _, layout := range dateFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	if m := embeddedDateRe.FindString(s); m != "" {
		for _, layout := range dateFormats {
			if t, err := time.Parse(layout, m); err == nil {
				return &t
			}
		}
	}
	return nil
}

// parseAmount extracts the first dollar amount from text as an exact
// decimal, zero when absent.
func parseAmount(text string) decimal.Decimal {
	m := amountRe.FindStringSubmatch(text)
	if m == nil {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(strings.ReplaceAll(m[1], ",", ""))
	if err != nil {
		return decimal.Zero
	}
	return d
}

// parseFeeTable parses the itemized fee table from rendered HTML. Rows
// with fewer than two cells or a non-positive amount are skipped (header
// and separator rows).
func parseFeeTable(html string) (*dmv.FeeBreakdown, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDMV, "failed to parse fee page")
	}

	table := doc.Find(selectors["fee_table"]).First()
	if table.Length() == 0 {
		return nil, errors.DMV("Fee breakdown not found")
	}

	var items []dmv.FeeItem
	table.Find("tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < 2 {
			return
		}
		amount := parseAmount(cells.Eq(1).Text())
		if !amount.IsPositive() {
			return
		}
		items = append(items, dmv.FeeItem{
			Description: strings.TrimSpace(cells.Eq(0).Text()),
			Amount:      amount,
		})
	})
	return &dmv.FeeBreakdown{Items: items}, nil
}

// resultsProse extracts the prose from the status results container: the
// legend plus every paragraph, joined. The container guarantees no
// structured fields, so downstream parsing works on this text alone.
func resultsProse(html string) (string, bool) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", false
	}

	fs := doc.Find(selectors["status_results_fieldset"]).First()
	if fs.Length() == 0 {
		return "", false
	}

	var parts []string
	if legend := strings.TrimSpace(fs.Find("legend").First().Text()); legend != "" {
		parts = append(parts, legend)
	}
	fs.Find("p").Each(func(_ int, p *goquery.Selection) {
		if t := collapseSpace(p.Text()); t != "" {
			parts = append(parts, t)
		}
	})
	if len(parts) == 0 {
		if t := collapseSpace(fs.Text()); t != "" {
			parts = append(parts, t)
		}
	}
	if len(parts) == 0 {
		return "", false
	}
	return strings.Join(parts, " "), true
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
