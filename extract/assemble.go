package extract

import "github.com/bilmo5352/nsequotes/models"

// LiveStrategyName marks results whose order book came from live-DOM
// evaluation rather than the snapshot cascade.
const LiveStrategyName = "live"

// Assemble merges live-evaluated and snapshot-parsed outputs into one
// normalized record.
//
// Precedence rule: a non-empty live-evaluated table unconditionally
// supersedes the snapshot cascade's rows, on the premise that live
// evaluation reflects the freshest DOM state. When both are non-empty and
// disagree on row count, the divergence is recorded as a diagnostic but
// live still wins. Fields are always included; a missing field never
// blocks assembly. The returned record is always well-formed, with
// non-nil collections even when every extraction path came up empty.
func Assemble(fields models.FieldRecord, returns map[string]string, live, snapshot []models.OrderRow, snapshotStrategy string, notes []string) models.QuoteData {
	data := models.QuoteData{
		Fields:      models.FieldRecord{},
		OrderBook:   []models.OrderRow{},
		Returns:     map[string]string{},
		Diagnostics: append([]string{}, notes...),
	}

	for k, v := range fields {
		data.Fields[k] = v
	}
	for k, v := range returns {
		data.Returns[k] = v
	}
	data.Symbol = data.Fields["symbol"]

	switch {
	case len(live) > 0:
		data.OrderBook = append(data.OrderBook, live...)
		data.TableStrategy = LiveStrategyName
		if len(snapshot) > 0 && len(snapshot) != len(live) {
			data.Diagnostics = append(data.Diagnostics, models.DiagLiveSnapshotDiverge)
		}
	case len(snapshot) > 0:
		data.OrderBook = append(data.OrderBook, snapshot...)
		data.TableStrategy = snapshotStrategy
	default:
		data.Diagnostics = append(data.Diagnostics, models.DiagOrderBookEmpty)
	}

	if len(data.Fields) == 0 {
		data.Diagnostics = append(data.Diagnostics, models.DiagFieldsEmpty)
	}

	return data
}
