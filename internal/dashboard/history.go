package dashboard

import (
	"ipopredict/pkg/predictor"
)

// HistoryRow is one history record with its derived metrics and display text.
type HistoryRow struct {
	Record predictor.HistoryRecord

	Accuracy       float64
	HasAccuracy    bool
	RealizedReturn float64
	HasReturn      bool

	Issue        string
	Predicted    string
	Actual       string
	ReturnText   string
	AccuracyText string
	Tone         Tone
}

// BuildHistoryRows derives accuracy and realized return for every record and
// formats each column. Undefined values render as Placeholder.
func BuildHistoryRows(records []predictor.HistoryRecord, f *Formatter) []HistoryRow {
	rows := make([]HistoryRow, 0, len(records))
	for _, rec := range records {
		row := HistoryRow{
			Record:    rec,
			Issue:     f.CurrencyPtr(rec.IssuePrice),
			Predicted: f.CurrencyPtr(rec.PredictedPrice),
			Actual:    actualText(rec.ActualPrice, f),
		}
		row.Accuracy, row.HasAccuracy = Accuracy(rec.PredictedPrice, rec.ActualPrice)
		row.RealizedReturn, row.HasReturn = RealizedReturn(rec.IssuePrice, rec.ActualPrice)
		row.AccuracyText = PercentOpt(row.Accuracy, row.HasAccuracy)
		row.ReturnText = PercentOpt(row.RealizedReturn, row.HasReturn)
		row.Tone = ReturnTone(row.RealizedReturn)
		rows = append(rows, row)
	}
	return rows
}

// actualText renders a recorded actual price of zero as Placeholder: the
// service stores 0 for IPOs that have not listed yet.
func actualText(v *float64, f *Formatter) string {
	if v == nil || *v == 0 {
		return Placeholder
	}
	return f.Currency(*v)
}
