package predictor

// PredictionRequest is the body of the predict call. Every numeric field must
// be finite; encoding/json refuses NaN and Inf.
type PredictionRequest struct {
	CompanyName    string  `json:"company_name"`
	IssuePrice     float64 `json:"issue_price"`
	MarketCap      float64 `json:"market_cap"`
	GMP            float64 `json:"gmp"`
	ROCE           float64 `json:"roce"`
	ROE            float64 `json:"roe"`
	IndustryGrowth float64 `json:"industry_growth"`
}

// PredictionResult is the predict call's success response.
type PredictionResult struct {
	PredictedPrice float64  `json:"predicted_price"`
	ExpectedReturn float64  `json:"expected_return"`
	SentimentScore *float64 `json:"sentiment_score,omitempty"`

	// Breakdown holds per-factor contributions when the service reports them.
	// Values are numbers (percentage points) or preformatted strings.
	Breakdown map[string]any `json:"calculation_breakdown,omitempty"`
}

// HistoryRecord is one past prediction. Nullable columns decode to nil.
type HistoryRecord struct {
	CompanyName    string   `json:"company_name"`
	IssuePrice     *float64 `json:"issue_price"`
	PredictedPrice *float64 `json:"predicted_price"`
	ActualPrice    *float64 `json:"actual_price"`
	PredictionDate string   `json:"prediction_date,omitempty"`
	ListingDate    string   `json:"listing_date,omitempty"`
	SentimentScore *float64 `json:"sentiment_score,omitempty"`
}

// ActualPriceUpdate records the price a company actually listed at.
// ListingDate is YYYY-MM-DD and may be empty.
type ActualPriceUpdate struct {
	CompanyName string  `json:"company_name"`
	ActualPrice float64 `json:"actual_price"`
	ListingDate string  `json:"listing_date,omitempty"`
}

// UpdateAck is the update call's acknowledgement.
type UpdateAck struct {
	Message string `json:"message,omitempty"`
}
