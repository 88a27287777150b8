package models

import "strings"

// QuoteRequest describes one equity-quote extraction. Immutable once issued.
type QuoteRequest struct {
	// Symbol is the stock symbol to search for (e.g. "RELIANCE"). Required.
	Symbol string `form:"symbol" binding:"required"`

	// Headless overrides the configured headless default for this request.
	Headless *bool `form:"headless"`

	// TakeScreenshot overrides the configured screenshot default.
	TakeScreenshot *bool `form:"take_screenshot"`

	// OutputDir overrides the configured artifact directory.
	OutputDir string `form:"output_dir"`
}

// Normalize upper-cases and trims the symbol the way the site's search
// expects it.
func (r *QuoteRequest) Normalize() {
	r.Symbol = strings.ToUpper(strings.TrimSpace(r.Symbol))
}
