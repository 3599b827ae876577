package flow

import (
	"time"

	"ipopredict/pkg/predictor"
)

// Tab selects which flow is visible.
type Tab int

const (
	TabPredict Tab = iota
	TabUpdate
)

func (t Tab) String() string {
	if t == TabUpdate {
		return "Update Actual Price"
	}
	return "Predict IPO"
}

// View composes the flows. Exactly one tab is active. The latest prediction
// survives tab switches; each flow's own state does not.
type View struct {
	Active Tab
	Latest *predictor.PredictionResult

	Submission *Submission
	Correction *Correction
	History    *History
}

// NewView returns a view showing the prediction form.
func NewView(now time.Time) *View {
	return &View{
		Active:     TabPredict,
		Submission: &Submission{},
		Correction: NewCorrection(now),
		History:    &History{},
	}
}

// Select activates t. Entering a tab mounts its flow afresh, so errors and
// half-filled forms from an earlier visit are gone.
func (v *View) Select(t Tab, now time.Time) {
	if t == v.Active {
		return
	}
	v.Active = t
	switch t {
	case TabPredict:
		v.Submission = &Submission{}
		v.History = &History{}
	case TabUpdate:
		v.Correction = NewCorrection(now)
	}
}

// Toggle switches to the other tab.
func (v *View) Toggle(now time.Time) {
	if v.Active == TabPredict {
		v.Select(TabUpdate, now)
		return
	}
	v.Select(TabPredict, now)
}

// RecordPrediction keeps res as the latest prediction. Nil is ignored.
func (v *View) RecordPrediction(res *predictor.PredictionResult) {
	if res != nil {
		v.Latest = res
	}
}

// ShowResults reports whether the results and history panel is visible.
func (v *View) ShowResults() bool {
	return v.Active == TabPredict && v.Latest != nil
}
