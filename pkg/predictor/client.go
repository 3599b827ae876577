// Package predictor is a Go client for the IPO listing-price prediction
// service: predict, prediction history, and actual-price updates.
package predictor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// maxBodyBytes caps how much of a response body is read.
const maxBodyBytes = 4 << 20

// Paths are the service routes, relative to the base URL.
type Paths struct {
	Predict string
	History string
	Update  string
}

// DefaultPaths returns the routes the prediction service exposes.
func DefaultPaths() Paths {
	return Paths{
		Predict: "/api/predict",
		History: "/api/history",
		Update:  "/api/update-price",
	}
}

// Client talks to one prediction service. It never retries, and it has no
// timeout unless WithTimeout is given; callers cancel through ctx.
type Client struct {
	baseURL    string
	paths      Paths
	httpClient *http.Client
	timeout    time.Duration
	log        *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets a per-request timeout. Zero leaves calls unbounded. The
// timeout is applied to a copy of the *http.Client, never to one passed in
// with WithHTTPClient.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithPaths overrides the service routes. Empty fields keep their defaults.
func WithPaths(p Paths) Option {
	return func(c *Client) {
		if p.Predict != "" {
			c.paths.Predict = p.Predict
		}
		if p.History != "" {
			c.paths.History = p.History
		}
		if p.Update != "" {
			c.paths.Update = p.Update
		}
	}
}

// WithLogger sets the logger used for remote failures.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.log = l }
}

// NewClient creates a client for the service rooted at baseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		paths:      DefaultPaths(),
		httpClient: &http.Client{},
		log:        slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.timeout > 0 {
		hc := *c.httpClient
		hc.Timeout = c.timeout
		c.httpClient = &hc
	}
	return c
}

// BaseURL returns the service root this client targets.
func (c *Client) BaseURL() string { return c.baseURL }

// Predict submits IPO attributes and returns the predicted listing price.
func (c *Client) Predict(ctx context.Context, req PredictionRequest) (*PredictionResult, error) {
	op := "predict"
	data, err := c.do(ctx, op, http.MethodPost, c.paths.Predict, req)
	if err != nil {
		return nil, err
	}
	var res PredictionResult
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, &TransportError{Op: op, Err: fmt.Errorf("decoding response: %w", err)}
	}
	return &res, nil
}

// History returns every past prediction with any recorded actual price.
func (c *Client) History(ctx context.Context) ([]HistoryRecord, error) {
	op := "history"
	data, err := c.do(ctx, op, http.MethodGet, c.paths.History, nil)
	if err != nil {
		return nil, err
	}
	records, err := decodeHistory(data)
	if err != nil {
		return nil, &TransportError{Op: op, Err: fmt.Errorf("decoding response: %w", err)}
	}
	return records, nil
}

// UpdateActualPrice records a company's actual listing price. The service
// matches the company by name; no existence check happens here.
func (c *Client) UpdateActualPrice(ctx context.Context, upd ActualPriceUpdate) (*UpdateAck, error) {
	data, err := c.do(ctx, "update-price", http.MethodPost, c.paths.Update, upd)
	if err != nil {
		return nil, err
	}
	// The acknowledgement's shape is informational only.
	var ack UpdateAck
	_ = json.Unmarshal(data, &ack)
	return &ack, nil
}

// decodeHistory accepts a bare array or an object wrapping it under "history".
func decodeHistory(data []byte) ([]HistoryRecord, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return []HistoryRecord{}, nil
	}
	if trimmed[0] == '{' {
		var wrapped struct {
			History []HistoryRecord `json:"history"`
		}
		if err := json.Unmarshal(trimmed, &wrapped); err != nil {
			return nil, err
		}
		if wrapped.History == nil {
			return []HistoryRecord{}, nil
		}
		return wrapped.History, nil
	}
	var records []HistoryRecord
	if err := json.Unmarshal(trimmed, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// do performs one request and returns the body of a 2xx response.
func (c *Client) do(ctx context.Context, op, method, path string, in any) ([]byte, error) {
	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("%s: encoding request: %w", op, err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("%s: creating request: %w", op, err)
	}
	reqID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", reqID)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Warn("remote call failed", "op", op, "request_id", reqID, "error", err)
		return nil, &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		c.log.Warn("reading response", "op", op, "request_id", reqID, "error", err)
		return nil, &TransportError{Op: op, Err: fmt.Errorf("reading response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		rej := &RejectedError{Op: op, Status: resp.StatusCode, Message: errorField(data)}
		c.log.Warn("remote call rejected", "op", op, "request_id", reqID,
			"status", resp.StatusCode, "message", rej.Message)
		return nil, rej
	}

	c.log.Debug("remote call", "op", op, "request_id", reqID,
		"status", resp.StatusCode, "duration", time.Since(start))
	return data, nil
}

// errorField extracts a string "error" field from a JSON body, if any.
func errorField(data []byte) string {
	var payload struct {
		Error any `json:"error"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return ""
	}
	if s, ok := payload.Error.(string); ok {
		return strings.TrimSpace(s)
	}
	return ""
}
