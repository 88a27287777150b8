package scraper

import "github.com/go-rod/rod"

// RenderedDocument is a snapshot of the settled quote page: the serialized
// markup plus the still-open page handle for live evaluation. Read-only
// once captured; the page handle is only valid until the owning session
// closes.
type RenderedDocument struct {
	HTML string
	URL  string

	page *rod.Page
}

// Live returns the open page handle, or nil when the session has been
// torn down.
func (d *RenderedDocument) Live() *rod.Page {
	return d.page
}
