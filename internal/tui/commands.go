package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"ipopredict/internal/flow"
	"ipopredict/pkg/predictor"
)

// Messages. Each reply names the flow instance it was started for; a reply
// for a flow that has since been unmounted is dropped.
type predictDoneMsg struct {
	sub *flow.Submission
	res *predictor.PredictionResult
	err error
}

type historyDoneMsg struct {
	hist    *flow.History
	records []predictor.HistoryRecord
	err     error
}

type updateDoneMsg struct {
	corr *flow.Correction
	ack  *predictor.UpdateAck
	err  error
}

type dismissNoticeMsg struct {
	corr *flow.Correction
	id   int
}

func predictCmd(ctx context.Context, svc flow.Service, sub *flow.Submission, req predictor.PredictionRequest) tea.Cmd {
	return func() tea.Msg {
		res, err := svc.Predict(ctx, req)
		return predictDoneMsg{sub: sub, res: res, err: err}
	}
}

func historyCmd(ctx context.Context, svc flow.Service, hist *flow.History) tea.Cmd {
	return func() tea.Msg {
		records, err := svc.History(ctx)
		return historyDoneMsg{hist: hist, records: records, err: err}
	}
}

func updateCmd(ctx context.Context, svc flow.Service, corr *flow.Correction, upd predictor.ActualPriceUpdate) tea.Cmd {
	return func() tea.Msg {
		ack, err := svc.UpdateActualPrice(ctx, upd)
		return updateDoneMsg{corr: corr, ack: ack, err: err}
	}
}

func dismissCmd(corr *flow.Correction, id int, after time.Duration) tea.Cmd {
	return tea.Tick(after, func(time.Time) tea.Msg {
		return dismissNoticeMsg{corr: corr, id: id}
	})
}
