package scraper

import (
	"log/slog"

	"github.com/bilmo5352/nsequotes/models"
)

// liveOrderBookJS extracts order-book rows directly from the live DOM.
// The OrderData container is the fast path; otherwise every table naming
// the bid/ask/qty markers is scanned with header-index mapping falling
// back to positional order. All rows are kept, placeholder cells
// included.
const liveOrderBookJS = `() => {
	const orderBook = [];
	const cellValue = (cell) => ((cell && cell.textContent) || '').trim() || '-';

	const orderDataDiv = document.querySelector('div.OrderData');
	if (orderDataDiv) {
		const table = orderDataDiv.querySelector('table.table');
		const tbody = table && table.querySelector('tbody');
		if (tbody) {
			for (const row of tbody.querySelectorAll('tr')) {
				const cells = row.querySelectorAll('td');
				if (cells.length >= 4) {
					orderBook.push({
						bid_qty: cellValue(cells[0]),
						bid_price: cellValue(cells[1]),
						ask_price: cellValue(cells[2]),
						ask_qty: cellValue(cells[3]),
					});
				}
			}
			if (orderBook.length > 0) {
				return orderBook;
			}
		}
	}

	for (const table of document.querySelectorAll('table')) {
		const text = table.textContent || '';
		const hasBid = text.includes('Bid') || text.includes('bid');
		const hasAsk = text.includes('Ask') || text.includes('ask');
		const hasQty = text.includes('Qty') || text.includes('qty');
		if (!hasBid || !hasAsk || !hasQty) {
			continue;
		}

		const rows = table.querySelectorAll('tbody tr, tr');
		if (rows.length <= 1) {
			continue;
		}

		const headerCells = rows[0].querySelectorAll('th, td');
		const headers = Array.from(headerCells).map(
			(cell) => ((cell.textContent || '').trim().toUpperCase()).replace(/[₹()]/g, '').trim()
		);

		let qtyIdx = null, bidIdx = null, askIdx = null, askQtyIdx = null;
		for (let i = 0; i < headers.length; i++) {
			if (headers[i].includes('QTY') && qtyIdx === null) {
				qtyIdx = i;
			} else if (headers[i].includes('BID')) {
				bidIdx = i;
			} else if (headers[i].includes('ASK')) {
				askIdx = i;
			} else if (headers[i].includes('QTY') && qtyIdx !== null) {
				askQtyIdx = i;
			}
		}
		if (qtyIdx === null) qtyIdx = 0;
		if (bidIdx === null) bidIdx = 1;
		if (askIdx === null) askIdx = 2;
		if (askQtyIdx === null) askQtyIdx = 3;

		for (let i = 1; i < rows.length; i++) {
			const cells = rows[i].querySelectorAll('td, th');
			if (cells.length >= 4) {
				orderBook.push({
					bid_qty: cellValue(cells[qtyIdx]),
					bid_price: cellValue(cells[bidIdx]),
					ask_price: cellValue(cells[askIdx]),
					ask_qty: cellValue(cells[askQtyIdx]),
				});
			}
		}
		if (orderBook.length > 0) {
			break;
		}
	}

	return orderBook;
}`

// LiveOrderBook evaluates the order-book extraction script against the
// still-open page. An evaluation failure returns no rows; the caller
// falls back to the snapshot cascade.
func (s *Session) LiveOrderBook() []models.OrderRow {
	res, err := s.page.Eval(liveOrderBookJS)
	if err != nil {
		slog.Warn("live order book evaluation failed", "error", err)
		s.note(models.DiagLiveEvaluationFailed)
		return nil
	}

	var rows []models.OrderRow
	for _, item := range res.Value.Arr() {
		row := models.OrderRow{}
		for k, v := range item.Map() {
			row[k] = v.Str()
		}
		if len(row) > 0 {
			rows = append(rows, row)
		}
	}
	return rows
}
