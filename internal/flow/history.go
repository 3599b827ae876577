package flow

import (
	"context"

	"ipopredict/internal/dashboard"
	"ipopredict/pkg/predictor"
)

// History is the state of the history panel. It fetches once per mount;
// a new mount is a new History value.
type History struct {
	Loading bool
	Loaded  bool
	Err     string
	Rows    []dashboard.HistoryRow

	started bool
}

// Begin reports whether the fetch should be issued. It returns true only on
// the first call.
func (h *History) Begin() bool {
	if h.started {
		return false
	}
	h.started = true
	h.Loading = true
	h.Err = ""
	return true
}

// Finish records the fetched records, deriving the display rows with f.
// On failure the rows stay empty and the error is shown in their place.
func (h *History) Finish(records []predictor.HistoryRecord, err error, f *dashboard.Formatter) {
	h.Loading = false
	h.Loaded = true
	if err != nil {
		h.Err = predictor.ErrorMessage(err, HistoryFallback)
		h.Rows = nil
		return
	}
	h.Err = ""
	h.Rows = dashboard.BuildHistoryRows(records, f)
}

// Empty reports a successful fetch that returned no records.
func (h *History) Empty() bool {
	return h.Loaded && h.Err == "" && len(h.Rows) == 0
}

// Run performs the fetch synchronously if it has not happened yet.
func (h *History) Run(ctx context.Context, svc Service, f *dashboard.Formatter) {
	if !h.Begin() {
		return
	}
	records, err := svc.History(ctx)
	h.Finish(records, err, f)
}
