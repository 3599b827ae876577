package flow

import (
	"context"

	"ipopredict/pkg/predictor"
)

// Submission is the state of the prediction form.
type Submission struct {
	Form   PredictForm
	Busy   bool
	Err    string
	Result *predictor.PredictionResult
}

// Begin starts a submission of s.Form. It clears the previous error and
// result and marks the flow busy. When the form does not coerce, the error
// is recorded and ok is false; nothing should be sent. A submission that is
// already in flight is not restarted.
func (s *Submission) Begin() (req predictor.PredictionRequest, ok bool) {
	if s.Busy {
		return predictor.PredictionRequest{}, false
	}
	s.Err = ""
	s.Result = nil

	req, err := Coerce(s.Form)
	if err != nil {
		s.Err = err.Error()
		return predictor.PredictionRequest{}, false
	}
	s.Busy = true
	return req, true
}

// Finish records the outcome of the call started by Begin. Busy is cleared
// on every path.
func (s *Submission) Finish(res *predictor.PredictionResult, err error) {
	s.Busy = false
	if err == nil && res == nil {
		err = errEmptyReply
	}
	if err != nil {
		s.Err = predictor.ErrorMessage(err, PredictFallback)
		s.Result = nil
		return
	}
	s.Err = ""
	s.Result = res
}

// Run performs a whole submission synchronously against svc.
func (s *Submission) Run(ctx context.Context, svc Service) {
	req, ok := s.Begin()
	if !ok {
		return
	}
	res, err := svc.Predict(ctx, req)
	s.Finish(res, err)
}
