package extract

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/bilmo5352/nsequotes/models"
)

// Placeholder is the site's explicit "no data" cell marker. Rows carrying
// placeholders are kept; row count completeness wins over value
// completeness.
const Placeholder = "-"

// maxFallbackRows caps the rows recovered by the regex text-window
// strategy, which has no table boundary to stop at.
const maxFallbackRows = 20

// fallbackWindow bounds how far past the anchor phrase the regex strategy
// searches for row-shaped token runs.
const fallbackWindow = 3000

// ColumnSpec describes one expected table column: its output key, the
// header token matched case/punctuation tolerantly, a value-shape
// predicate, and the regex fragment the text fallback uses for the shape.
type ColumnSpec struct {
	Key     string
	Header  string
	Shape   func(string) bool
	Pattern string
}

// TableSchema names the expected columns of a target table plus the
// structural anchors the first two strategies look for.
type TableSchema struct {
	Columns   []ColumnSpec
	Anchor    string // structural container selector, e.g. "div.OrderData"
	LabelMark string // semantic label selector, e.g. "span.order-book-label"
}

// IntegerLike reports whether s looks like a quantity: digits with
// optional thousands separators. The placeholder satisfies every shape.
func IntegerLike(s string) bool {
	if s == Placeholder {
		return true
	}
	stripped := strings.ReplaceAll(strings.ReplaceAll(s, ",", ""), "-", "")
	if stripped == "" {
		return false
	}
	for _, r := range stripped {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// DecimalLike reports whether s looks like a price: a decimal point or
// separator, or a plain integer run.
func DecimalLike(s string) bool {
	if s == Placeholder {
		return true
	}
	return strings.Contains(s, ".") || strings.Contains(s, ",") || IntegerLike(s)
}

// OrderBookSchema is the four-column Qty | Bid | Ask | Qty order-book
// layout.
func OrderBookSchema() TableSchema {
	return TableSchema{
		Anchor:    "div.OrderData",
		LabelMark: "span.order-book-label",
		Columns: []ColumnSpec{
			{Key: "bid_qty", Header: "QTY", Shape: IntegerLike, Pattern: `[0-9][0-9,]*`},
			{Key: "bid_price", Header: "BID", Shape: DecimalLike, Pattern: `[0-9][0-9,]*\.[0-9]+`},
			{Key: "ask_price", Header: "ASK", Shape: DecimalLike, Pattern: `[0-9][0-9,]*\.[0-9]+`},
			{Key: "ask_qty", Header: "QTY", Shape: IntegerLike, Pattern: `[0-9][0-9,]*`},
		},
	}
}

// Strategy is one independent attempt at recovering rows from a document.
// Strategies are pure functions of the document; they never mutate state
// or retry internally.
type Strategy struct {
	Name string
	Fn   func(doc *goquery.Document, schema TableSchema) []models.OrderRow
}

// Strategies returns the cascade in strict priority order.
func Strategies() []Strategy {
	return []Strategy{
		{Name: "structural_anchor", Fn: structuralAnchor},
		{Name: "label_adjacency", Fn: labelAdjacency},
		{Name: "header_scan", Fn: headerScan},
		{Name: "schema_scan", Fn: schemaScan},
		{Name: "regex_window", Fn: regexWindow},
	}
}

// ExtractTable runs the strategy cascade against the document and returns
// the recovered rows plus the name of the strategy that produced them.
// The cascade stops at the first strategy yielding at least one row;
// later strategies never execute in that case. An empty result with an
// empty strategy name is a valid outcome, not an error.
func ExtractTable(doc *goquery.Document, schema TableSchema) ([]models.OrderRow, string) {
	return RunCascade(doc, schema, Strategies())
}

// RunCascade drives an explicit strategy chain. Split from ExtractTable so
// tests can wrap strategies with invocation counters.
func RunCascade(doc *goquery.Document, schema TableSchema, chain []Strategy) ([]models.OrderRow, string) {
	for _, s := range chain {
		if rows := s.Fn(doc, schema); len(rows) > 0 {
			return rows, s.Name
		}
	}
	return nil, ""
}

// cellText trims a cell and substitutes the placeholder for empty cells so
// rows keep their full shape.
func cellText(s *goquery.Selection) string {
	t := strings.TrimSpace(s.Text())
	if t == "" {
		return Placeholder
	}
	return t
}

// rowFromCells maps cells onto the schema positionally. Returns nil when
// the row has fewer cells than the schema expects.
func rowFromCells(cells *goquery.Selection, schema TableSchema) models.OrderRow {
	if cells.Length() < len(schema.Columns) {
		return nil
	}
	row := models.OrderRow{}
	for i, col := range schema.Columns {
		row[col.Key] = cellText(cells.Eq(i))
	}
	return row
}

// readPositional reads every data row of a table using schema order.
// Header rows (any tr carrying th cells) are skipped; the HTML5 parser
// wraps bare trs in an implicit tbody, so headers can land there too.
func readPositional(table *goquery.Selection, schema TableSchema) []models.OrderRow {
	var rows []models.OrderRow
	table.Find("tbody tr").Each(func(_ int, tr *goquery.Selection) {
		if tr.Find("th").Length() > 0 {
			return
		}
		if row := rowFromCells(tr.Find("td"), schema); row != nil {
			rows = append(rows, row)
		}
	})
	return rows
}

// structuralAnchor locates the known structural container and reads its
// table positionally. The most specific and most trusted strategy.
func structuralAnchor(doc *goquery.Document, schema TableSchema) []models.OrderRow {
	container := doc.Find(schema.Anchor).First()
	if container.Length() == 0 {
		return nil
	}
	table := container.Find("table.table").First()
	if table.Length() == 0 {
		table = container.Find("table").First()
	}
	if table.Length() == 0 {
		return nil
	}
	return readPositional(table, schema)
}

// labelAdjacency locates the semantic label marker and reads the nearest
// following table positionally: next siblings first, then each ancestor's
// subtree walking outward.
func labelAdjacency(doc *goquery.Document, schema TableSchema) []models.OrderRow {
	label := doc.Find(schema.LabelMark).First()
	if label.Length() == 0 {
		return nil
	}

	table := label.NextAllFiltered("table").First()
	if table.Length() == 0 {
		label.Parents().EachWithBreak(func(_ int, p *goquery.Selection) bool {
			if t := p.Find("table.table").First(); t.Length() > 0 {
				table = t
				return false
			}
			return true
		})
	}
	if table.Length() == 0 {
		return nil
	}
	return readPositional(table, schema)
}

// normalizeHeader upper-cases a header cell and strips the currency sign,
// parentheses, periods and spaces so "Bid (₹)" matches the BID token.
func normalizeHeader(h string) string {
	h = strings.ToUpper(h)
	for _, ch := range []string{"₹", "(", ")", ".", " "} {
		h = strings.ReplaceAll(h, ch, "")
	}
	return strings.TrimSpace(h)
}

// headerRow returns the table's header row: thead first, else the first
// tr.
func headerRow(table *goquery.Selection) *goquery.Selection {
	if tr := table.Find("thead tr").First(); tr.Length() > 0 {
		return tr
	}
	return table.Find("tr").First()
}

// mapHeaders builds a column-index map by matching normalized header text
// against each schema header token in declared order. Duplicate tokens
// (the two QTY columns) claim header indices left to right. Unmatched
// columns fall back to their positional index.
func mapHeaders(headers []string, schema TableSchema) []int {
	idx := make([]int, len(schema.Columns))
	used := make([]bool, len(headers))

	for i, col := range schema.Columns {
		idx[i] = -1
		for j, h := range headers {
			if used[j] {
				continue
			}
			if strings.Contains(normalizeHeader(h), col.Header) {
				idx[i] = j
				used[j] = true
				break
			}
		}
	}
	for i := range idx {
		if idx[i] < 0 {
			idx[i] = i
		}
	}
	return idx
}

// headerScan scans every table for header cells matching the schema's
// column tokens and reads rows through the resulting index map.
func headerScan(doc *goquery.Document, schema TableSchema) []models.OrderRow {
	var rows []models.OrderRow

	doc.Find("table").EachWithBreak(func(_ int, table *goquery.Selection) bool {
		text := table.Text()
		for _, col := range schema.Columns {
			if !strings.Contains(strings.ToUpper(text), col.Header) {
				return true
			}
		}

		hdrTr := headerRow(table)
		if hdrTr.Length() == 0 {
			return true
		}
		hdrCells := hdrTr.Find("th, td")
		if hdrCells.Length() < len(schema.Columns) {
			return true
		}
		headers := make([]string, 0, hdrCells.Length())
		hdrCells.Each(func(_ int, h *goquery.Selection) {
			headers = append(headers, h.Text())
		})
		idx := mapHeaders(headers, schema)

		dataRows := table.Find("tbody tr")
		if dataRows.Length() == 0 {
			dataRows = table.Find("tr")
		}
		hdrNode := hdrTr.Get(0)
		dataRows.Each(func(_ int, tr *goquery.Selection) {
			if tr.Get(0) == hdrNode {
				return
			}
			cells := tr.Find("td, th")
			if cells.Length() < len(schema.Columns) {
				return
			}
			row := models.OrderRow{}
			for c, col := range schema.Columns {
				j := idx[c]
				if j >= cells.Length() {
					j = c
				}
				row[col.Key] = cellText(cells.Eq(j))
			}
			rows = append(rows, row)
		})
		return len(rows) == 0
	})

	return rows
}

// schemaScan accepts a table purely on value shape: no headers required.
// The first five data rows are sampled; the table qualifies when at least
// two sampled rows satisfy every column's shape predicate, after which all
// rows are read positionally.
func schemaScan(doc *goquery.Document, schema TableSchema) []models.OrderRow {
	var rows []models.OrderRow

	doc.Find("table").EachWithBreak(func(_ int, table *goquery.Selection) bool {
		trs := table.Find("tr")
		if trs.Length() < 3 { // header plus at least two data rows
			return true
		}

		valid := 0
		trs.Each(func(i int, tr *goquery.Selection) {
			if i == 0 || i > 5 {
				return
			}
			cells := tr.Find("td, th")
			if cells.Length() < len(schema.Columns) {
				return
			}
			ok := true
			for c, col := range schema.Columns {
				if !col.Shape(cellText(cells.Eq(c))) {
					ok = false
					break
				}
			}
			if ok {
				valid++
			}
		})
		if valid < 2 {
			return true
		}

		trs.Each(func(i int, tr *goquery.Selection) {
			if i == 0 {
				return
			}
			if row := rowFromCells(tr.Find("td, th"), schema); row != nil {
				rows = append(rows, row)
			}
		})
		return len(rows) == 0
	})

	return rows
}

// regexWindow is the last resort: find an anchor phrase naming every
// expected column in proximity, then match row-shaped token runs in a
// bounded window of the document text after it.
func regexWindow(doc *goquery.Document, schema TableSchema) []models.OrderRow {
	text := PlainText(doc.Selection)

	tokens := make([]string, len(schema.Columns))
	for i, col := range schema.Columns {
		tokens[i] = regexp.QuoteMeta(col.Header)
	}
	anchor := regexp.MustCompile(`(?is)` + strings.Join(tokens, `.*?`))
	loc := anchor.FindStringIndex(text)
	if loc == nil {
		return nil
	}

	window := text[loc[1]:]
	if len(window) > fallbackWindow {
		window = window[:fallbackWindow]
	}

	parts := make([]string, len(schema.Columns))
	for i, col := range schema.Columns {
		parts[i] = "(" + col.Pattern + ")"
	}
	rowRe := regexp.MustCompile(strings.Join(parts, `\s+`))

	var rows []models.OrderRow
	for _, m := range rowRe.FindAllStringSubmatch(window, maxFallbackRows) {
		row := models.OrderRow{}
		ok := true
		for i, col := range schema.Columns {
			v := m[i+1]
			if !col.Shape(v) {
				ok = false
				break
			}
			row[col.Key] = v
		}
		if ok {
			rows = append(rows, row)
		}
	}
	return rows
}
