package extract

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"

	"github.com/bilmo5352/nsequotes/models"
)

func mustDoc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return doc
}

const orderDataHTML = `<html><body>
<div class="OrderData">
	<table class="table">
		<thead><tr><th>Qty</th><th>Bid (₹)</th><th>Ask (₹)</th><th>Qty</th></tr></thead>
		<tbody>
			<tr><td>100</td><td>1,534.50</td><td>1,534.60</td><td>250</td></tr>
			<tr><td>50</td><td>1,534.45</td><td>1,534.65</td><td>75</td></tr>
		</tbody>
	</table>
</div>
</body></html>`

func TestExtractTable_StructuralAnchor(t *testing.T) {
	rows, strategy := ExtractTable(mustDoc(t, orderDataHTML), OrderBookSchema())

	if strategy != "structural_anchor" {
		t.Fatalf("strategy = %q, want %q", strategy, "structural_anchor")
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0]["bid_qty"] != "100" || rows[0]["bid_price"] != "1,534.50" ||
		rows[0]["ask_price"] != "1,534.60" || rows[0]["ask_qty"] != "250" {
		t.Errorf("unexpected first row: %v", rows[0])
	}
}

func TestRunCascade_ShortCircuits(t *testing.T) {
	calls := map[string]int{}
	var chain []Strategy
	for _, s := range Strategies() {
		s := s
		chain = append(chain, Strategy{
			Name: s.Name,
			Fn: func(doc *goquery.Document, schema TableSchema) []models.OrderRow {
				calls[s.Name]++
				return s.Fn(doc, schema)
			},
		})
	}

	rows, strategy := RunCascade(mustDoc(t, orderDataHTML), OrderBookSchema(), chain)
	if len(rows) == 0 || strategy != "structural_anchor" {
		t.Fatalf("cascade result: %d rows via %q", len(rows), strategy)
	}

	if calls["structural_anchor"] != 1 {
		t.Errorf("structural_anchor invoked %d times, want 1", calls["structural_anchor"])
	}
	for _, name := range []string{"label_adjacency", "header_scan", "schema_scan", "regex_window"} {
		if calls[name] != 0 {
			t.Errorf("%s invoked %d times after a successful strategy, want 0", name, calls[name])
		}
	}
}

func TestRunCascade_EmptyDocument(t *testing.T) {
	rows, strategy := ExtractTable(mustDoc(t, "<html><body><p>no tables here</p></body></html>"), OrderBookSchema())

	if rows != nil {
		t.Errorf("expected nil rows, got %v", rows)
	}
	if strategy != "" {
		t.Errorf("expected empty strategy name, got %q", strategy)
	}
}

func TestExtractTable_LabelAdjacency(t *testing.T) {
	html := `<html><body>
	<div>
		<span class="order-book-label">Order Book</span>
		<table>
			<tbody>
				<tr><td>10</td><td>99.50</td><td>99.60</td><td>20</td></tr>
			</tbody>
		</table>
	</div>
	</body></html>`

	rows, strategy := ExtractTable(mustDoc(t, html), OrderBookSchema())

	if strategy != "label_adjacency" {
		t.Fatalf("strategy = %q, want %q", strategy, "label_adjacency")
	}
	if len(rows) != 1 || rows[0]["bid_price"] != "99.50" {
		t.Fatalf("unexpected rows: %v", rows)
	}
}

func TestExtractTable_HeaderScanTolerance(t *testing.T) {
	// No structural anchor, no label marker; headers carry currency signs
	// and mixed case.
	html := `<html><body>
	<table>
		<tr><th>Qty</th><th>BID (₹)</th><th>ASK (₹)</th><th>Qty</th></tr>
		<tr><td>100</td><td>1,534.50</td><td>1,534.60</td><td>250</td></tr>
		<tr><td>50</td><td>1,534.45</td><td>1,534.65</td><td>75</td></tr>
	</table>
	</body></html>`

	rows, strategy := ExtractTable(mustDoc(t, html), OrderBookSchema())

	if strategy != "header_scan" {
		t.Fatalf("strategy = %q, want %q", strategy, "header_scan")
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[1]["bid_qty"] != "50" || rows[1]["ask_qty"] != "75" {
		t.Errorf("duplicate QTY headers mapped wrong: %v", rows[1])
	}
}

func TestExtractTable_PlaceholderRowsKept(t *testing.T) {
	html := `<html><body>
	<div class="OrderData">
		<table class="table">
			<tbody>
				<tr><td>100</td><td>1,534.50</td><td>1,534.60</td><td>250</td></tr>
				<tr><td></td><td></td><td></td><td></td></tr>
				<tr><td>-</td><td>-</td><td>-</td><td>-</td></tr>
			</tbody>
		</table>
	</div>
	</body></html>`

	rows, _ := ExtractTable(mustDoc(t, html), OrderBookSchema())

	if len(rows) != 3 {
		t.Fatalf("placeholder rows must be kept, expected 3 rows, got %d", len(rows))
	}
	for i, r := range rows[1:] {
		for _, key := range []string{"bid_qty", "bid_price", "ask_price", "ask_qty"} {
			if r[key] != Placeholder {
				t.Errorf("row %d %s = %q, want %q", i+1, key, r[key], Placeholder)
			}
		}
	}
}

func TestExtractTable_SchemaScan(t *testing.T) {
	// Headerless table whose rows only qualify by value shape.
	html := `<html><body>
	<table>
		<tr><td>a</td><td>b</td><td>c</td><td>d</td></tr>
		<tr><td>100</td><td>1,534.50</td><td>1,534.60</td><td>250</td></tr>
		<tr><td>50</td><td>1,534.45</td><td>1,534.65</td><td>75</td></tr>
	</table>
	</body></html>`

	rows, strategy := ExtractTable(mustDoc(t, html), OrderBookSchema())

	if strategy != "schema_scan" {
		t.Fatalf("strategy = %q, want %q", strategy, "schema_scan")
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
}

func TestExtractTable_RegexWindow(t *testing.T) {
	// No tables at all; the row shapes only exist in flowed text.
	html := `<html><body>
	<div>Qty Bid Ask Qty</div>
	<div>100 1,534.50 1,534.60 250</div>
	<div>50 1,534.45 1,534.65 75</div>
	</body></html>`

	rows, strategy := ExtractTable(mustDoc(t, html), OrderBookSchema())

	if strategy != "regex_window" {
		t.Fatalf("strategy = %q, want %q", strategy, "regex_window")
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0]["bid_price"] != "1,534.50" || rows[0]["ask_qty"] != "250" {
		t.Errorf("unexpected first row: %v", rows[0])
	}
}

func TestMapHeaders_DuplicateTokens(t *testing.T) {
	idx := mapHeaders([]string{"Qty", "Bid (₹)", "Ask (₹)", "Qty"}, OrderBookSchema())

	want := []int{0, 1, 2, 3}
	for i, w := range want {
		if idx[i] != w {
			t.Errorf("idx[%d] = %d, want %d", i, idx[i], w)
		}
	}
}

func TestMapHeaders_UnmatchedFallsBackPositional(t *testing.T) {
	idx := mapHeaders([]string{"x", "y", "z", "w"}, OrderBookSchema())

	for i := range idx {
		if idx[i] != i {
			t.Errorf("idx[%d] = %d, want positional %d", i, idx[i], i)
		}
	}
}

func TestShapePredicates(t *testing.T) {
	tests := []struct {
		name    string
		fn      func(string) bool
		in      string
		want    bool
	}{
		{"integer plain", IntegerLike, "12345", true},
		{"integer separators", IntegerLike, "1,23,456", true},
		{"integer placeholder", IntegerLike, "-", true},
		{"integer decimal", IntegerLike, "1.5", false},
		{"integer word", IntegerLike, "abc", false},
		{"integer empty", IntegerLike, "", false},
		{"decimal plain", DecimalLike, "1534.50", true},
		{"decimal separators", DecimalLike, "1,534.50", true},
		{"decimal integer", DecimalLike, "1534", true},
		{"decimal placeholder", DecimalLike, "-", true},
		{"decimal word", DecimalLike, "abc", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.fn(tt.in); got != tt.want {
				t.Errorf("shape(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
