package extract

import (
	"regexp"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/bilmo5352/nsequotes/models"
)

// valueClass is the run of characters accepted as a field value: digits,
// comma, period, minus. Capture stops at the first character outside it.
const valueClass = `([0-9,.\-]+)`

// fieldSpec anchors one scalar field in the flattened page text.
//
// Label specs search for the label as a literal anchor immediately
// followed by a value run. Pattern specs carry their own regex with one
// capture group for values that need more shape than the default charset
// (dates, ISINs, parenthesized labels).
type fieldSpec struct {
	Key     string
	Label   string
	Pattern string
	Suffix  string
}

var labelSpecs = []fieldSpec{
	{Key: "prev_close", Label: "Prev. Close"},
	{Key: "open", Label: "Open"},
	{Key: "high", Label: "High"},
	{Key: "low", Label: "Low"},
	{Key: "close", Label: "Close"},
	{Key: "vwap", Label: "VWAP"},
	{Key: "traded_volume_lakhs", Label: "Traded Volume (Lakhs)"},
	{Key: "traded_value_cr", Label: "Traded Value (₹ Cr.)"},
	{Key: "total_market_cap_cr", Label: "Total Market Cap (₹ Cr.)"},
	{Key: "free_float_market_cap_cr", Label: "Free Float Market Cap (₹ Cr.)"},
	{Key: "impact_cost", Label: "Impact cost"},
	{Key: "face_value", Label: "Face Value"},
	{Key: "upper_band", Label: "Upper Band"},
	{Key: "lower_band", Label: "Lower Band"},
	{Key: "daily_volatility", Label: "Daily Volatility"},
	{Key: "annualised_volatility", Label: "Annualised Volatility"},
	{Key: "pe", Label: "Symbol P/E"},
	{Key: "adjusted_pe", Label: "Adjusted P/E"},
	{Key: "total_buy_qty", Label: "Total Buy Quantity"},
	{Key: "total_sell_qty", Label: "Total Sell Quantity"},
}

var patternSpecs = []fieldSpec{
	{Key: "week_52_high", Pattern: `52 Week High ?\([^)]+\)([0-9,.]+)`},
	{Key: "week_52_low", Pattern: `52 Week Low ?\([^)]+\)([0-9,.]+)`},
	{Key: "delivery_qty_pct", Pattern: `Deliverable ?/ ?Traded Quantity([0-9,.]+)%`, Suffix: "%"},
	{Key: "isin", Pattern: `\(([A-Z]{2}[A-Z0-9]{10})\)`},
	{Key: "listing_date", Pattern: `Date of Listing([0-9]{2}-[A-Za-z]{3}-[0-9]{4})`},
	{Key: "industry", Pattern: `Basic Industry([A-Za-z &]+)Dashboard`},
}

// returnPeriods lists the performance periods scanned by ExtractReturns.
var returnPeriods = []string{
	"YTD", "1M", "3M", "6M", "1Y", "3Y", "5Y", "10Y", "15Y", "20Y", "25Y", "30Y",
}

type span struct{ start, end int }

func overlaps(claimed []span, start, end int) bool {
	for _, c := range claimed {
		if start < c.end && c.start < end {
			return true
		}
	}
	return false
}

// ExtractFields recovers the scalar field catalog from flattened text.
//
// Pattern specs run first, then literal labels longest-first; every match
// claims its text span so a shorter label ("Close") can never resolve
// inside a span already claimed by a more specific one ("Prev. Close").
// A label with no match is simply absent from the result. The function is
// pure and idempotent.
func ExtractFields(flat string) models.FieldRecord {
	fields := models.FieldRecord{}
	var claimed []span

	for _, spec := range patternSpecs {
		re := regexp.MustCompile(spec.Pattern)
		for _, m := range re.FindAllStringSubmatchIndex(flat, -1) {
			if overlaps(claimed, m[0], m[1]) {
				continue
			}
			val := strings.TrimSpace(flat[m[2]:m[3]])
			if val == "" {
				break
			}
			fields[spec.Key] = val + spec.Suffix
			claimed = append(claimed, span{m[0], m[1]})
			break
		}
	}

	ordered := make([]fieldSpec, len(labelSpecs))
	copy(ordered, labelSpecs)
	sort.SliceStable(ordered, func(i, j int) bool {
		return len(ordered[i].Label) > len(ordered[j].Label)
	})

	for _, spec := range ordered {
		re := regexp.MustCompile(regexp.QuoteMeta(spec.Label) + valueClass)
		for _, m := range re.FindAllStringSubmatchIndex(flat, -1) {
			if overlaps(claimed, m[0], m[1]) {
				continue
			}
			fields[spec.Key] = flat[m[2]:m[3]]
			claimed = append(claimed, span{m[0], m[1]})
			break
		}
	}

	return fields
}

// ExtractReturns scans the text for period performance figures like
// "YTD26.26%" or "1M3.54%" and maps period → percent string.
func ExtractReturns(text string) map[string]string {
	returns := map[string]string{}
	for _, period := range returnPeriods {
		re := regexp.MustCompile(regexp.QuoteMeta(period) + `\s*([0-9.]+%)`)
		if m := re.FindStringSubmatch(text); m != nil {
			returns[period] = m[1]
		}
	}
	return returns
}

// ExtractHeader reads the quote page header: symbol text, last traded
// price and the change/percent-change pair. These live in dedicated
// elements rather than label-adjacent text, so they are resolved from the
// DOM instead of the flattened text.
func ExtractHeader(doc *goquery.Document) models.FieldRecord {
	fields := models.FieldRecord{}

	if sym := strings.TrimSpace(doc.Find("span.symbol-text").First().Text()); sym != "" {
		fields["symbol"] = sym
	}

	ltp := doc.Find("div.index-highlight").First()
	if ltp.Length() > 0 {
		spans := ltp.Find("span.value")
		if spans.Length() == 0 {
			spans = ltp.Find("span")
		}
		var b strings.Builder
		spans.Each(func(_ int, s *goquery.Selection) {
			b.WriteString(strings.TrimSpace(s.Text()))
		})
		if v := strings.TrimSpace(b.String()); v != "" {
			fields["last_price"] = v
		}
	}

	changes := doc.Find("div.index-change-highlight")
	if changes.Length() >= 2 {
		if v := joinSpanText(changes.Eq(0)); v != "" {
			fields["change"] = v
		}
		if v := joinSpanText(changes.Eq(1)); v != "" {
			fields["percent_change"] = v
		}
	}

	return fields
}

func joinSpanText(sel *goquery.Selection) string {
	var b strings.Builder
	sel.Find("span").Each(func(_ int, s *goquery.Selection) {
		b.WriteString(strings.TrimSpace(s.Text()))
	})
	return strings.TrimSpace(b.String())
}
