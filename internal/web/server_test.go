package web

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ipopredict/internal/config"
	"ipopredict/internal/dashboard"
	"ipopredict/pkg/predictor"
)

var fixedNow = time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC)

// upstream is a fake prediction service.
type upstream struct {
	mu        sync.Mutex
	predicts  []map[string]any
	updates   []map[string]any
	histories int

	predictStatus int
	predictBody   string
	historyStatus int
	historyBody   string
	updateStatus  int
	updateBody    string
}

func newUpstream() *upstream {
	return &upstream{
		predictStatus: http.StatusOK,
		predictBody:   `{"predicted_price":105.5,"expected_return":5.5,"sentiment_score":0.42,"calculation_breakdown":{"gmp_contribution":6.0}}`,
		historyStatus: http.StatusOK,
		historyBody: `[{"company_name":"Listed Co","issue_price":100,"predicted_price":100,"actual_price":120,"prediction_date":"2024-01-01","listing_date":"2024-01-10","sentiment_score":0.1},
			{"company_name":"Pending Co","issue_price":100,"predicted_price":105,"actual_price":null,"prediction_date":"2024-02-01","listing_date":null,"sentiment_score":null}]`,
		updateStatus: http.StatusOK,
		updateBody:   `{"message":"Updated actual price for Acme"}`,
	}
}

func (u *upstream) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/predict", onlyMethod(http.MethodPost, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		json.NewDecoder(r.Body).Decode(&body)
		u.mu.Lock()
		u.predicts = append(u.predicts, body)
		u.mu.Unlock()
		w.WriteHeader(u.predictStatus)
		io.WriteString(w, u.predictBody)
	}))
	mux.HandleFunc("/api/history", onlyMethod(http.MethodGet, func(w http.ResponseWriter, r *http.Request) {
		u.mu.Lock()
		u.histories++
		u.mu.Unlock()
		w.WriteHeader(u.historyStatus)
		io.WriteString(w, u.historyBody)
	}))
	mux.HandleFunc("/api/update-price", onlyMethod(http.MethodPost, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		json.NewDecoder(r.Body).Decode(&body)
		u.mu.Lock()
		u.updates = append(u.updates, body)
		u.mu.Unlock()
		w.WriteHeader(u.updateStatus)
		io.WriteString(w, u.updateBody)
	}))
	return mux
}

// onlyMethod restricts h to a single HTTP method, answering 405 otherwise.
func onlyMethod(method string, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != method {
			w.Header().Set("Allow", method)
			http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
			return
		}
		h(w, r)
	}
}

func setup(t *testing.T) (*upstream, http.Handler) {
	t.Helper()
	up := newUpstream()
	ts := httptest.NewServer(up.handler())
	t.Cleanup(ts.Close)
	return up, newHandler(predictor.NewClient(ts.URL))
}

func newHandler(svc *predictor.Client) http.Handler {
	return NewServer(Options{
		Service:        svc,
		Formatter:      dashboard.MustFormatter("en-IN", "INR"),
		Theme:          config.Defaults().Theme,
		NoticeDuration: 6 * time.Second,
		Now:            func() time.Time { return fixedNow },
	}).Handler()
}

func do(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func postForm(path string, values url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func postJSON(path, body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func predictValues() url.Values {
	return url.Values{
		"company_name":    {"Acme"},
		"issue_price":     {"100"},
		"market_cap":      {"5000"},
		"gmp":             {"12.5"},
		"roce":            {"18"},
		"roe":             {"15"},
		"industry_growth": {"7"},
	}
}

func latestCookieFrom(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == latestCookie {
			return c
		}
	}
	t.Fatalf("response set no %s cookie", latestCookie)
	return nil
}

func TestHealth(t *testing.T) {
	_, h := setup(t)
	rec := do(h, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestPredictPageEmpty(t *testing.T) {
	up, h := setup(t)
	rec := do(h, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, body, `<a href="/" class="active">Predict IPO</a>`)
	assert.Contains(t, body, `action="/predict"`)
	assert.Contains(t, body, "--primary: #1976d2;")
	assert.NotContains(t, body, "Prediction History")
	assert.Equal(t, 0, up.histories)
}

func TestPredictSubmit(t *testing.T) {
	up, h := setup(t)
	rec := do(h, postForm("/predict", predictValues()))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, up.predicts, 1)
	assert.Equal(t, map[string]any{
		"company_name":    "Acme",
		"issue_price":     100.0,
		"market_cap":      5000.0,
		"gmp":             12.5,
		"roce":            18.0,
		"roe":             15.0,
		"industry_growth": 7.0,
	}, up.predicts[0])

	body := rec.Body.String()
	assert.Contains(t, body, "₹105.50")
	assert.Contains(t, body, `class="value positive">5.50%`)
	assert.Contains(t, body, "Sentiment Score: 0.42")
	assert.Contains(t, body, "GMP contribution")
	assert.Contains(t, body, `value="Acme"`, "form keeps its values after a prediction")

	assert.Contains(t, body, "Prediction History")
	assert.Contains(t, body, "Listed Co")
	assert.Contains(t, body, "83.33%")
	assert.Contains(t, body, `class="positive">20.00%`)
	assert.Equal(t, 1, up.histories)

	latestCookieFrom(t, rec)
}

func TestPredictSubmitCoercionFailure(t *testing.T) {
	up, h := setup(t)
	values := predictValues()
	values.Set("issue_price", "lots")
	rec := do(h, postForm("/predict", values))

	assert.Empty(t, up.predicts)
	assert.Contains(t, rec.Body.String(), "Issue Price must be a number")
	assert.Empty(t, rec.Result().Cookies())
}

func TestPredictSubmitRejected(t *testing.T) {
	up, h := setup(t)
	up.predictStatus = http.StatusBadRequest
	up.predictBody = `{"error":"Invalid input"}`

	body := do(h, postForm("/predict", predictValues())).Body.String()
	assert.Contains(t, body, `role="alert">Invalid input`)
	assert.NotContains(t, body, "Prediction History")
}

func TestLatestSurvivesTabSwitch(t *testing.T) {
	up, h := setup(t)
	cookie := latestCookieFrom(t, do(h, postForm("/predict", predictValues())))

	req := httptest.NewRequest(http.MethodGet, "/update", nil)
	req.AddCookie(cookie)
	body := do(h, req).Body.String()
	assert.Contains(t, body, `<a href="/update" class="active">Update Actual Price</a>`)
	assert.NotContains(t, body, "Prediction History", "results panel only shows on the predict tab")
	assert.Contains(t, body, `value="2024-03-15"`, "listing date defaults to today")

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)
	body = do(h, req).Body.String()
	assert.Contains(t, body, "₹105.50")
	assert.Contains(t, body, "Prediction History")
	assert.Equal(t, 2, up.histories, "each mount of the panel fetches once")
}

func TestBadCookieIgnored(t *testing.T) {
	up, h := setup(t)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: latestCookie, Value: "%%%not-base64"})
	rec := do(h, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "Prediction History")
	assert.Equal(t, 0, up.histories)
}

func TestHistoryFailureShownInPanel(t *testing.T) {
	up, h := setup(t)
	up.historyStatus = http.StatusInternalServerError
	up.historyBody = `{}`

	body := do(h, postForm("/predict", predictValues())).Body.String()
	assert.Contains(t, body, "₹105.50")
	assert.Contains(t, body, "Failed to fetch prediction history")
}

func TestUpdateSubmit(t *testing.T) {
	up, h := setup(t)
	rec := do(h, postForm("/update", url.Values{
		"company_name": {"Acme"},
		"actual_price": {"120.5"},
		"listing_date": {"2024-03-10"},
	}))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, up.updates, 1)
	assert.Equal(t, map[string]any{
		"company_name": "Acme",
		"actual_price": 120.5,
		"listing_date": "2024-03-10",
	}, up.updates[0])

	body := rec.Body.String()
	assert.Contains(t, body, `role="status">Updated actual price for Acme`)
	assert.Contains(t, body, "6000ms")
	assert.NotContains(t, body, `value="Acme"`, "form resets after success")
	assert.Contains(t, body, `value="2024-03-15"`)
}

func TestUpdateSubmitNotFound(t *testing.T) {
	up, h := setup(t)
	up.updateStatus = http.StatusNotFound
	up.updateBody = `{"error":"Company not found"}`

	body := do(h, postForm("/update", url.Values{
		"company_name": {"Ghost"},
		"actual_price": {"10"},
	})).Body.String()
	assert.Contains(t, body, `role="alert">Company not found`)
	assert.Contains(t, body, `value="Ghost"`, "form keeps its values after a failure")
	assert.NotContains(t, body, `role="status"`)
}

func TestAPIPredict(t *testing.T) {
	up, h := setup(t)
	rec := do(h, postJSON("/api/predict",
		`{"company_name":"Acme","issue_price":100,"market_cap":"5000","gmp":12.5,"roce":"18","roe":15,"industry_growth":7}`))

	require.Equal(t, http.StatusOK, rec.Code)
	var res predictor.PredictionResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, 105.5, res.PredictedPrice)
	require.Len(t, up.predicts, 1)
	assert.Equal(t, 5000.0, up.predicts[0]["market_cap"])
}

func TestAPIPredictErrors(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		status     int
		upBody     string
		wantStatus int
		wantError  string
	}{
		{"bad json", `{`, 0, "", http.StatusBadRequest, "invalid JSON body"},
		{"null number", `{"company_name":"A","issue_price":null,"market_cap":1,"gmp":1,"roce":1,"roe":1,"industry_growth":1}`, 0, "", http.StatusBadRequest, "Issue Price is required"},
		{"missing name", `{"issue_price":1}`, 0, "", http.StatusBadRequest, "Company Name is required"},
		{"upstream rejects", `{"company_name":"A","issue_price":1,"market_cap":1,"gmp":1,"roce":1,"roe":1,"industry_growth":1}`, http.StatusBadRequest, `{"error":"Invalid input"}`, http.StatusBadRequest, "Invalid input"},
		{"upstream 500", `{"company_name":"A","issue_price":1,"market_cap":1,"gmp":1,"roce":1,"roe":1,"industry_growth":1}`, http.StatusInternalServerError, `oops`, http.StatusInternalServerError, "Failed to get prediction"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			up, h := setup(t)
			if tt.status != 0 {
				up.predictStatus = tt.status
				up.predictBody = tt.upBody
			}
			rec := do(h, postJSON("/api/predict", tt.body))
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.JSONEq(t, `{"error":"`+tt.wantError+`"}`, rec.Body.String())
		})
	}
}

func TestAPIPredictUnreachable(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	addr := ts.URL
	ts.Close()
	h := newHandler(predictor.NewClient(addr))

	rec := do(h, postJSON("/api/predict",
		`{"company_name":"A","issue_price":1,"market_cap":1,"gmp":1,"roce":1,"roe":1,"industry_growth":1}`))
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.JSONEq(t, `{"error":"`+predictor.TransportMessage+`"}`, rec.Body.String())
}

func TestAPIHistory(t *testing.T) {
	_, h := setup(t)
	rec := do(h, httptest.NewRequest(http.MethodGet, "/api/history", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var rows []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rows))
	require.Len(t, rows, 2)
	assert.Equal(t, "Listed Co", rows[0]["company_name"])
	assert.InDelta(t, 83.333, rows[0]["accuracy"], 0.01)
	assert.InDelta(t, 20.0, rows[0]["realized_return"], 1e-9)
	assert.Nil(t, rows[1]["accuracy"])
	assert.Nil(t, rows[1]["realized_return"])
	assert.Nil(t, rows[1]["actual_price"])
}

func TestAPIHistoryFailure(t *testing.T) {
	up, h := setup(t)
	up.historyStatus = http.StatusServiceUnavailable
	up.historyBody = ``

	rec := do(h, httptest.NewRequest(http.MethodGet, "/api/history", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.JSONEq(t, `{"error":"Failed to fetch prediction history"}`, rec.Body.String())
}

func TestAPIUpdate(t *testing.T) {
	up, h := setup(t)
	rec := do(h, postJSON("/api/update-price", `{"company_name":"Acme","actual_price":120}`))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"Updated actual price for Acme"}`, rec.Body.String())
	require.Len(t, up.updates, 1)
	assert.Equal(t, "2024-03-15", up.updates[0]["listing_date"], "listing date defaults to today")

	up.updateStatus = http.StatusNotFound
	up.updateBody = `{"error":"Company not found"}`
	rec = do(h, postJSON("/api/update-price", `{"company_name":"Ghost","actual_price":1}`))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"Company not found"}`, rec.Body.String())

	rec = do(h, postJSON("/api/update-price", `{"company_name":"Acme","actual_price":"abc"}`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"Actual Listing Price must be a number"}`, rec.Body.String())
}

func TestAPICORS(t *testing.T) {
	_, h := setup(t)
	req := httptest.NewRequest(http.MethodOptions, "/api/predict", nil)
	req.Header.Set("Origin", "http://example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := do(h, req)

	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, statusFor(&predictor.RejectedError{Status: 404}))
	assert.Equal(t, http.StatusBadGateway, statusFor(&predictor.RejectedError{Status: 302}))
	assert.Equal(t, http.StatusBadGateway, statusFor(&predictor.TransportError{Op: "x", Err: io.EOF}))
	assert.Equal(t, http.StatusBadGateway, statusFor(nil))
}
