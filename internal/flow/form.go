package flow

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"ipopredict/pkg/predictor"
)

// DateLayout is the listing-date format exchanged with the service.
const DateLayout = "2006-01-02"

// Field describes one form input.
type Field struct {
	Key     string
	Label   string
	Numeric bool
}

// PredictFields lists the prediction form inputs in display order.
var PredictFields = []Field{
	{Key: "company_name", Label: "Company Name"},
	{Key: "issue_price", Label: "Issue Price", Numeric: true},
	{Key: "market_cap", Label: "Market Cap (Cr)", Numeric: true},
	{Key: "gmp", Label: "Grey Market Premium", Numeric: true},
	{Key: "roce", Label: "ROCE (%)", Numeric: true},
	{Key: "roe", Label: "ROE (%)", Numeric: true},
	{Key: "industry_growth", Label: "Industry Growth Rate (%)", Numeric: true},
}

// CorrectionFields lists the actual-price form inputs in display order.
var CorrectionFields = []Field{
	{Key: "company_name", Label: "Company Name"},
	{Key: "actual_price", Label: "Actual Listing Price", Numeric: true},
	{Key: "listing_date", Label: "Listing Date"},
}

// CoercionError reports a form input that could not be turned into the value
// the service expects. Nothing is sent while one is present.
type CoercionError struct {
	Field string
	Value string
}

func (e *CoercionError) Error() string {
	switch {
	case strings.TrimSpace(e.Value) == "":
		return fmt.Sprintf("%s is required", e.Field)
	case e.Field == "Listing Date":
		return fmt.Sprintf("%s must be a date (YYYY-MM-DD)", e.Field)
	default:
		return fmt.Sprintf("%s must be a number", e.Field)
	}
}

// PredictForm holds the raw text of the prediction inputs.
type PredictForm struct {
	CompanyName    string
	IssuePrice     string
	MarketCap      string
	GMP            string
	ROCE           string
	ROE            string
	IndustryGrowth string
}

// Get returns the raw value for a PredictFields key.
func (f PredictForm) Get(key string) string {
	if p := f.field(key); p != nil {
		return *p
	}
	return ""
}

// Set stores the raw value for a PredictFields key. Unknown keys are ignored.
func (f *PredictForm) Set(key, value string) {
	if p := f.field(key); p != nil {
		*p = value
	}
}

func (f *PredictForm) field(key string) *string {
	switch key {
	case "company_name":
		return &f.CompanyName
	case "issue_price":
		return &f.IssuePrice
	case "market_cap":
		return &f.MarketCap
	case "gmp":
		return &f.GMP
	case "roce":
		return &f.ROCE
	case "roe":
		return &f.ROE
	case "industry_growth":
		return &f.IndustryGrowth
	}
	return nil
}

// Coerce builds the request, parsing every numeric input. The first input
// that is blank, unparsable or non-finite is reported as a *CoercionError.
func Coerce(form PredictForm) (predictor.PredictionRequest, error) {
	req := predictor.PredictionRequest{CompanyName: strings.TrimSpace(form.CompanyName)}
	if req.CompanyName == "" {
		return predictor.PredictionRequest{}, &CoercionError{Field: "Company Name"}
	}

	targets := []struct {
		key string
		dst *float64
	}{
		{"issue_price", &req.IssuePrice},
		{"market_cap", &req.MarketCap},
		{"gmp", &req.GMP},
		{"roce", &req.ROCE},
		{"roe", &req.ROE},
		{"industry_growth", &req.IndustryGrowth},
	}
	for _, t := range targets {
		v, err := parseNumber(labelFor(PredictFields, t.key), form.Get(t.key))
		if err != nil {
			return predictor.PredictionRequest{}, err
		}
		*t.dst = v
	}
	return req, nil
}

// CorrectionForm holds the raw text of the actual-price inputs.
type CorrectionForm struct {
	CompanyName string
	ActualPrice string
	ListingDate string
}

// NewCorrectionForm returns an empty form with the listing date set to the
// day of now.
func NewCorrectionForm(now time.Time) CorrectionForm {
	return CorrectionForm{ListingDate: now.Format(DateLayout)}
}

// Get returns the raw value for a CorrectionFields key.
func (f CorrectionForm) Get(key string) string {
	if p := f.field(key); p != nil {
		return *p
	}
	return ""
}

// Set stores the raw value for a CorrectionFields key.
func (f *CorrectionForm) Set(key, value string) {
	if p := f.field(key); p != nil {
		*p = value
	}
}

func (f *CorrectionForm) field(key string) *string {
	switch key {
	case "company_name":
		return &f.CompanyName
	case "actual_price":
		return &f.ActualPrice
	case "listing_date":
		return &f.ListingDate
	}
	return nil
}

// CoerceCorrection builds the update. The listing date may be blank.
func CoerceCorrection(form CorrectionForm) (predictor.ActualPriceUpdate, error) {
	upd := predictor.ActualPriceUpdate{CompanyName: strings.TrimSpace(form.CompanyName)}
	if upd.CompanyName == "" {
		return predictor.ActualPriceUpdate{}, &CoercionError{Field: "Company Name"}
	}

	price, err := parseNumber(labelFor(CorrectionFields, "actual_price"), form.ActualPrice)
	if err != nil {
		return predictor.ActualPriceUpdate{}, err
	}
	upd.ActualPrice = price

	if date := strings.TrimSpace(form.ListingDate); date != "" {
		if _, err := time.Parse(DateLayout, date); err != nil {
			return predictor.ActualPriceUpdate{}, &CoercionError{Field: "Listing Date", Value: date}
		}
		upd.ListingDate = date
	}
	return upd, nil
}

func parseNumber(label, raw string) (float64, error) {
	s := strings.TrimSpace(raw)
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, &CoercionError{Field: label, Value: raw}
	}
	return v, nil
}

func labelFor(fields []Field, key string) string {
	for _, f := range fields {
		if f.Key == key {
			return f.Label
		}
	}
	return key
}
