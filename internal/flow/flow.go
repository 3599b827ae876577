// Package flow holds the presentation state of the three user flows
// (submission, history and correction) and the view that composes them.
// Front ends own the I/O: they call Begin, run the returned request
// asynchronously, and hand the outcome to Finish.
package flow

import (
	"context"
	"errors"

	"ipopredict/pkg/predictor"
)

// Fallback messages shown when the service gives no reason of its own.
const (
	PredictFallback = "Failed to get prediction"
	HistoryFallback = "Failed to fetch prediction history"
	UpdateFallback  = "Failed to update actual price"
	UpdateSuccess   = "Actual price updated successfully!"
)

// Service is the prediction service as seen by the flows.
// *predictor.Client satisfies it.
type Service interface {
	Predict(ctx context.Context, req predictor.PredictionRequest) (*predictor.PredictionResult, error)
	History(ctx context.Context) ([]predictor.HistoryRecord, error)
	UpdateActualPrice(ctx context.Context, upd predictor.ActualPriceUpdate) (*predictor.UpdateAck, error)
}

var _ Service = (*predictor.Client)(nil)

var errEmptyReply = errors.New("empty reply")
