package extract

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

func TestExtractFields_AdjacentLabels(t *testing.T) {
	flat := "Open1,534.00High1,550.00Low1,520.00VWAP1,535.50"

	fields := ExtractFields(flat)

	want := map[string]string{
		"open": "1,534.00",
		"high": "1,550.00",
		"low":  "1,520.00",
		"vwap": "1,535.50",
	}
	for k, v := range want {
		if fields[k] != v {
			t.Errorf("fields[%q] = %q, want %q", k, fields[k], v)
		}
	}
}

func TestExtractFields_PrefixLabelCollision(t *testing.T) {
	// "Close" must not resolve inside "Prev. Close"'s span.
	flat := "Close123.45Prev. Close120.00"

	fields := ExtractFields(flat)

	if fields["close"] != "123.45" {
		t.Errorf("close = %q, want %q", fields["close"], "123.45")
	}
	if fields["prev_close"] != "120.00" {
		t.Errorf("prev_close = %q, want %q", fields["prev_close"], "120.00")
	}
}

func TestExtractFields_MissingLabelAbsent(t *testing.T) {
	fields := ExtractFields("Open1,534.00")

	if _, ok := fields["vwap"]; ok {
		t.Errorf("vwap should be absent when its label is missing, got %q", fields["vwap"])
	}
	if len(fields) != 1 {
		t.Errorf("expected exactly one field, got %d: %v", len(fields), fields)
	}
}

func TestExtractFields_Idempotent(t *testing.T) {
	flat := "Prev. Close120.00Open121.00High125.50Low119.7552 Week High (08-Jul-2025)150.0052 Week Low (12-Jan-2025)100.00"

	first := ExtractFields(flat)
	second := ExtractFields(flat)

	if len(first) != len(second) {
		t.Fatalf("repeated extraction changed field count: %d vs %d", len(first), len(second))
	}
	for k, v := range first {
		if second[k] != v {
			t.Errorf("repeated extraction changed %q: %q vs %q", k, v, second[k])
		}
	}
}

func TestExtractFields_PatternSpecs(t *testing.T) {
	flat := "52 Week High (08-Jul-2025)1,608.80" +
		"52 Week Low (07-Apr-2025)1,114.85" +
		"Deliverable / Traded Quantity54.32%" +
		"RELIANCE INDUSTRIES LTD (INE002A01018)" +
		"Date of Listing29-Nov-1995" +
		"Basic IndustryRefineries & MarketingDashboard"

	fields := ExtractFields(flat)

	want := map[string]string{
		"week_52_high":     "1,608.80",
		"week_52_low":      "1,114.85",
		"delivery_qty_pct": "54.32%",
		"isin":             "INE002A01018",
		"listing_date":     "29-Nov-1995",
		"industry":         "Refineries & Marketing",
	}
	for k, v := range want {
		if fields[k] != v {
			t.Errorf("fields[%q] = %q, want %q", k, fields[k], v)
		}
	}
}

func TestExtractFields_ValuesKeptVerbatim(t *testing.T) {
	flat := "Total Buy Quantity1,23,456Total Sell Quantity98,765"

	fields := ExtractFields(flat)

	// Thousands separators survive; no numeric coercion.
	if fields["total_buy_qty"] != "1,23,456" {
		t.Errorf("total_buy_qty = %q, want %q", fields["total_buy_qty"], "1,23,456")
	}
	if fields["total_sell_qty"] != "98,765" {
		t.Errorf("total_sell_qty = %q, want %q", fields["total_sell_qty"], "98,765")
	}
}

func TestExtractReturns(t *testing.T) {
	text := "YTD26.26% 1M3.54% 3M12.80% 1Y42.10%"

	returns := ExtractReturns(text)

	want := map[string]string{
		"YTD": "26.26%",
		"1M":  "3.54%",
		"3M":  "12.80%",
		"1Y":  "42.10%",
	}
	if len(returns) != len(want) {
		t.Fatalf("expected %d periods, got %d: %v", len(want), len(returns), returns)
	}
	for k, v := range want {
		if returns[k] != v {
			t.Errorf("returns[%q] = %q, want %q", k, returns[k], v)
		}
	}
}

func TestExtractReturns_Empty(t *testing.T) {
	returns := ExtractReturns("no performance figures here")
	if len(returns) != 0 {
		t.Errorf("expected no returns, got %v", returns)
	}
}

func TestExtractHeader(t *testing.T) {
	html := `<html><body>
		<span class="symbol-text">RELIANCE</span>
		<div class="index-highlight"><span class="value">1,540</span><span class="value">.60</span></div>
		<div class="index-change-highlight"><span>+12.30</span></div>
		<div class="index-change-highlight"><span>0.81%</span></div>
	</body></html>`
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	fields := ExtractHeader(doc)

	want := map[string]string{
		"symbol":         "RELIANCE",
		"last_price":     "1,540.60",
		"change":         "+12.30",
		"percent_change": "0.81%",
	}
	for k, v := range want {
		if fields[k] != v {
			t.Errorf("fields[%q] = %q, want %q", k, fields[k], v)
		}
	}
}

func TestExtractHeader_MissingElements(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<html><body><p>nothing</p></body></html>"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	fields := ExtractHeader(doc)
	if len(fields) != 0 {
		t.Errorf("expected no header fields, got %v", fields)
	}
}
