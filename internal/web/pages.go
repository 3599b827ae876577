package web

import (
	"bytes"
	"html/template"
	"net/http"

	"ipopredict/internal/config"
	"ipopredict/internal/dashboard"
	"ipopredict/internal/flow"
)

// palette is the theme in the form the stylesheet consumes. The colours are
// validated as hex by config.
type palette struct {
	Primary    template.CSS
	Secondary  template.CSS
	Background template.CSS
	Text       template.CSS
	Positive   template.CSS
	Negative   template.CSS
}

func newPalette(t config.Theme) palette {
	def := config.Defaults().Theme
	pick := func(v, fallback string) template.CSS {
		if v == "" {
			v = fallback
		}
		return template.CSS(v)
	}
	return palette{
		Primary:    pick(t.Primary, def.Primary),
		Secondary:  pick(t.Secondary, def.Secondary),
		Background: pick(t.Background, def.Background),
		Text:       pick(t.Text, def.Text),
		Positive:   pick(t.Positive, def.Positive),
		Negative:   pick(t.Negative, def.Negative),
	}
}

type tabView struct {
	Label  string
	Href   string
	Active bool
}

type fieldView struct {
	Key      string
	Label    string
	Value    string
	Type     string
	Required bool
}

type pageData struct {
	Theme        palette
	NoticeMillis int64
	Year         int
	Tabs         []tabView
	Predict      bool

	Submission    *flow.Submission
	Result        *dashboard.PredictionView
	PredictFields []fieldView

	Correction       *flow.Correction
	CorrectionFields []fieldView

	Latest  *dashboard.PredictionView
	History *flow.History
}

// view builds the request's view: the latest prediction from the session,
// with tab mounted fresh.
func (s *Server) view(r *http.Request, tab flow.Tab) *flow.View {
	now := s.now()
	v := flow.NewView(now)
	v.RecordPrediction(latest(r))
	v.Select(tab, now)
	return v
}

func (s *Server) handlePredictPage(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, s.view(r, flow.TabPredict))
}

func (s *Server) handleUpdatePage(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, s.view(r, flow.TabUpdate))
}

func (s *Server) handlePredictSubmit(w http.ResponseWriter, r *http.Request) {
	v := s.view(r, flow.TabPredict)
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBytes)
	if err := r.ParseForm(); err != nil {
		v.Submission.Err = "Invalid form submission"
		s.render(w, r, v)
		return
	}
	for _, f := range flow.PredictFields {
		v.Submission.Form.Set(f.Key, r.PostFormValue(f.Key))
	}

	v.Submission.Run(r.Context(), s.svc)
	if res := v.Submission.Result; res != nil {
		v.RecordPrediction(res)
		setLatest(w, res)
	}
	s.render(w, r, v)
}

func (s *Server) handleUpdateSubmit(w http.ResponseWriter, r *http.Request) {
	v := s.view(r, flow.TabUpdate)
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBytes)
	if err := r.ParseForm(); err != nil {
		v.Correction.Err = "Invalid form submission"
		s.render(w, r, v)
		return
	}
	for _, f := range flow.CorrectionFields {
		v.Correction.Form.Set(f.Key, r.PostFormValue(f.Key))
	}

	v.Correction.Run(r.Context(), s.svc, s.now())
	s.render(w, r, v)
}

// render fetches history when the results panel is showing, then writes the
// page. Flow errors are part of the page, so the status is always 200.
func (s *Server) render(w http.ResponseWriter, r *http.Request, v *flow.View) {
	if v.ShowResults() {
		v.History.Run(r.Context(), s.svc, s.fmt)
	}

	data := pageData{
		Theme:        s.theme,
		NoticeMillis: s.notice.Milliseconds(),
		Year:         s.now().Year(),
		Predict:      v.Active == flow.TabPredict,
		Submission:   v.Submission,
		Correction:   v.Correction,
		History:      v.History,
	}
	for _, t := range []flow.Tab{flow.TabPredict, flow.TabUpdate} {
		href := "/"
		if t == flow.TabUpdate {
			href = "/update"
		}
		data.Tabs = append(data.Tabs, tabView{Label: t.String(), Href: href, Active: t == v.Active})
	}
	for _, f := range flow.PredictFields {
		data.PredictFields = append(data.PredictFields, newFieldView(f, v.Submission.Form.Get(f.Key)))
	}
	for _, f := range flow.CorrectionFields {
		data.CorrectionFields = append(data.CorrectionFields, newFieldView(f, v.Correction.Form.Get(f.Key)))
	}
	if res := v.Submission.Result; res != nil {
		pv := dashboard.PredictionDisplay(res, s.fmt)
		data.Result = &pv
	}
	if v.ShowResults() {
		pv := dashboard.PredictionDisplay(v.Latest, s.fmt)
		data.Latest = &pv
	}

	var buf bytes.Buffer
	if err := pages.ExecuteTemplate(&buf, "page", data); err != nil {
		s.log.Error("rendering page", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	buf.WriteTo(w)
}

func newFieldView(f flow.Field, value string) fieldView {
	fv := fieldView{Key: f.Key, Label: f.Label, Value: value, Type: "text", Required: true}
	switch {
	case f.Numeric:
		fv.Type = "number"
	case f.Key == "listing_date":
		fv.Type = "date"
		fv.Required = false
	}
	return fv
}
