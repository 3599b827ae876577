package web

import (
	"encoding/json"
	"io"
	"net/http"

	"ipopredict/internal/dashboard"
	"ipopredict/internal/flow"
	"ipopredict/pkg/predictor"
)

const maxRequestBytes = 64 << 10

// historyRow is a history record with its derived metrics. Undefined metrics
// are null.
type historyRow struct {
	predictor.HistoryRecord
	Accuracy       *float64 `json:"accuracy"`
	RealizedReturn *float64 `json:"realized_return"`
}

func (s *Server) handleAPIPredict(w http.ResponseWriter, r *http.Request) {
	sub := &flow.Submission{}
	if err := decodeFields(r.Body, flow.PredictFields, sub.Form.Set); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	req, ok := sub.Begin()
	if !ok {
		writeError(w, http.StatusBadRequest, sub.Err)
		return
	}
	res, err := s.svc.Predict(r.Context(), req)
	sub.Finish(res, err)
	if sub.Err != "" {
		writeError(w, statusFor(err), sub.Err)
		return
	}
	writeJSON(w, sub.Result)
}

func (s *Server) handleAPIHistory(w http.ResponseWriter, r *http.Request) {
	h := &flow.History{}
	h.Begin()
	records, err := s.svc.History(r.Context())
	h.Finish(records, err, s.fmt)
	if h.Err != "" {
		writeError(w, statusFor(err), h.Err)
		return
	}
	writeJSON(w, historyRows(h.Rows))
}

func (s *Server) handleAPIUpdate(w http.ResponseWriter, r *http.Request) {
	c := flow.NewCorrection(s.now())
	if err := decodeFields(r.Body, flow.CorrectionFields, c.Form.Set); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	upd, ok := c.Begin()
	if !ok {
		writeError(w, http.StatusBadRequest, c.Err)
		return
	}
	ack, err := s.svc.UpdateActualPrice(r.Context(), upd)
	c.Finish(ack, err, s.now())
	if c.Err != "" {
		writeError(w, statusFor(err), c.Err)
		return
	}
	writeJSON(w, predictor.UpdateAck{Message: c.Notice})
}

// decodeFields reads a JSON object and hands each known field to set as raw
// text: strings are unquoted, numbers keep their literal form, so coercion
// happens in one place for both the API and the HTML forms.
func decodeFields(body io.Reader, fields []flow.Field, set func(key, value string)) error {
	var raw map[string]json.RawMessage
	if err := json.NewDecoder(io.LimitReader(body, maxRequestBytes)).Decode(&raw); err != nil {
		return err
	}
	for _, f := range fields {
		msg, ok := raw[f.Key]
		if !ok {
			continue
		}
		var str string
		if err := json.Unmarshal(msg, &str); err == nil {
			set(f.Key, str)
			continue
		}
		set(f.Key, string(msg))
	}
	return nil
}

func historyRows(rows []dashboard.HistoryRow) []historyRow {
	out := make([]historyRow, 0, len(rows))
	for _, row := range rows {
		hr := historyRow{HistoryRecord: row.Record}
		if row.HasAccuracy {
			v := row.Accuracy
			hr.Accuracy = &v
		}
		if row.HasReturn {
			v := row.RealizedReturn
			hr.RealizedReturn = &v
		}
		out = append(out, hr)
	}
	return out
}
