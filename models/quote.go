package models

// FieldRecord maps field names to raw string values. Values keep the
// site's formatting verbatim (thousands separators, percent signs); no
// numeric coercion is ever applied. Keys are unique; a label that was not
// found on the page is simply absent.
type FieldRecord map[string]string

// OrderRow is one order-book row keyed by the table schema's column keys
// (bid_qty, bid_price, ask_price, ask_qty). Placeholder cells are kept as
// "-" rather than dropping the row.
type OrderRow map[string]string

// QuoteData is the normalized output of one extraction. It is always
// well-formed: every collection is non-nil even when extraction found
// nothing, and degraded paths are recorded in Diagnostics instead of
// erroring.
type QuoteData struct {
	// Symbol is the symbol text read from the quote page header, which may
	// differ from the requested symbol when the search resolved a
	// suggestion.
	Symbol string `json:"symbol,omitempty"`

	// Fields holds the scalar label→value pairs recovered from the page.
	Fields FieldRecord `json:"fields"`

	// OrderBook holds the recovered order-book rows in extraction order.
	OrderBook []OrderRow `json:"order_book"`

	// Returns maps period labels (YTD, 1M, …) to percent strings.
	Returns map[string]string `json:"returns"`

	// TableStrategy names the cascade strategy that produced the snapshot
	// order book, or "live" when the live-DOM evaluation superseded it.
	// Empty when no strategy produced rows.
	TableStrategy string `json:"table_strategy,omitempty"`

	// Diagnostics lists degraded-mode markers recorded during extraction.
	Diagnostics []string `json:"diagnostics"`
}

// Degraded reports whether any extraction path fell back or came up empty.
func (d *QuoteData) Degraded() bool {
	return len(d.Diagnostics) > 0
}

// ArtifactPaths names the files persisted for one extraction.
type ArtifactPaths struct {
	Screenshot string `json:"screenshot,omitempty"`
	HTML       string `json:"html,omitempty"`
	JSON       string `json:"json,omitempty"`
}
