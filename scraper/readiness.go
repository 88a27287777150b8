package scraper

import (
	"context"
	"time"
)

// AwaitReady polls predicate up to maxAttempts times, sleeping interval
// between polls. It returns true on the first true poll and false after
// exhaustion — never an error: callers proceed in degraded mode rather
// than aborting. A predicate evaluation error counts as a false poll.
//
// This only decides that the target structure is present; whether the
// structure is usable is validated later by the table cascade itself.
func AwaitReady(ctx context.Context, predicate func() (bool, error), maxAttempts int, interval time.Duration) bool {
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if ok, err := predicate(); err == nil && ok {
			return true
		}
		if attempt == maxAttempts-1 {
			break
		}
		select {
		case <-time.After(interval):
		case <-ctx.Done():
			return false
		}
	}
	return false
}

// orderBookReadyJS checks the live document for a table whose text names
// the bid/ask/qty markers with at least two rows, or an order-book label
// element. Evaluated repeatedly by AwaitReady while the quote page's
// deferred content renders.
const orderBookReadyJS = `() => {
	const tables = document.querySelectorAll('table');
	for (const table of tables) {
		const text = table.textContent || '';
		if ((text.includes('Bid') || text.includes('bid')) &&
			(text.includes('Ask') || text.includes('ask')) &&
			(text.includes('Qty') || text.includes('qty'))) {
			const rows = table.querySelectorAll('tbody tr, tr');
			if (rows.length >= 2) {
				return true;
			}
		}
	}
	const labels = document.querySelectorAll('span.order-book-label, [class*="order"], [id*="order"]');
	for (const label of labels) {
		if (label.textContent && label.textContent.toLowerCase().includes('order')) {
			return true;
		}
	}
	return false;
}`
