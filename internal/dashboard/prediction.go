package dashboard

import "ipopredict/pkg/predictor"

// PredictionView is a prediction result ready for display.
type PredictionView struct {
	Predicted      string
	ExpectedReturn string
	Sentiment      string
	Tone           Tone
	Breakdown      []BreakdownLine
}

// PredictionDisplay formats res. Non-finite prices and returns render as
// zero rather than NaN.
func PredictionDisplay(res *predictor.PredictionResult, f *Formatter) PredictionView {
	if res == nil {
		return PredictionView{
			Predicted:      Placeholder,
			ExpectedReturn: Placeholder,
			Sentiment:      NotAvailable,
		}
	}
	ret := res.ExpectedReturn
	if !finite(ret) {
		ret = 0
	}
	return PredictionView{
		Predicted:      f.Currency(res.PredictedPrice),
		ExpectedReturn: Percent(ret),
		Sentiment:      Score(res.SentimentScore),
		Tone:           ReturnTone(ret),
		Breakdown:      BreakdownLines(res.Breakdown),
	}
}
