// Package tui is the terminal front end: the predict and update tabs, the
// results panel and the prediction history, driven by bubbletea.
package tui

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"ipopredict/internal/dashboard"
	"ipopredict/internal/flow"
)

// Options wires a Model. Service and Formatter are required.
type Options struct {
	Context        context.Context
	Service        flow.Service
	Formatter      *dashboard.Formatter
	Theme          Theme
	NoticeDuration time.Duration
	Logger         *slog.Logger
	Now            func() time.Time
}

// Model is the root bubbletea model.
type Model struct {
	ctx    context.Context
	svc    flow.Service
	fmt    *dashboard.Formatter
	theme  Theme
	notice time.Duration
	logger *slog.Logger
	now    func() time.Time

	view *flow.View

	fields  []flow.Field
	inputs  []textinput.Model
	focus   int
	spinner spinner.Model

	viewport      viewport.Model
	ready         bool
	width, height int
}

// New returns the model showing an empty prediction form.
func New(opts Options) Model {
	if opts.Context == nil {
		opts.Context = context.Background()
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NoticeDuration <= 0 {
		opts.NoticeDuration = 6 * time.Second
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = opts.Theme.Spinner

	m := Model{
		ctx:     opts.Context,
		svc:     opts.Service,
		fmt:     opts.Formatter,
		theme:   opts.Theme,
		notice:  opts.NoticeDuration,
		logger:  opts.Logger,
		now:     opts.Now,
		view:    flow.NewView(opts.Now()),
		spinner: sp,
	}
	m.mountInputs()
	return m
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		case "tab", "shift+tab":
			m.view.Toggle(m.now())
			m.mountInputs()
			cmds = append(cmds, m.loadHistory())
		case "up":
			m.setFocus(m.focus - 1)
		case "down":
			m.setFocus(m.focus + 1)
		case "enter":
			if m.focus < len(m.inputs)-1 {
				m.setFocus(m.focus + 1)
			} else {
				cmds = append(cmds, m.submit())
			}
		case "pgup", "pgdown":
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			cmds = append(cmds, cmd)
		default:
			if m.busy() {
				break
			}
			var cmd tea.Cmd
			m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
			m.setField(m.fields[m.focus].Key, m.inputs[m.focus].Value())
			cmds = append(cmds, cmd)
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		vpHeight := m.height - 2
		if vpHeight < 1 {
			vpHeight = 1
		}
		if !m.ready {
			m.viewport = viewport.New(m.width, vpHeight)
			m.viewport.MouseWheelEnabled = true
			m.ready = true
		} else {
			m.viewport.Width = m.width
			m.viewport.Height = vpHeight
		}

	case tea.MouseMsg:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		cmds = append(cmds, cmd)

	case spinner.TickMsg:
		if m.busy() || m.view.History.Loading {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}

	case predictDoneMsg:
		if msg.sub != m.view.Submission {
			break
		}
		msg.sub.Finish(msg.res, msg.err)
		if msg.err != nil {
			m.logger.Warn("prediction failed", "error", msg.err)
		}
		m.view.RecordPrediction(msg.sub.Result)
		cmds = append(cmds, m.loadHistory())

	case historyDoneMsg:
		if msg.hist != m.view.History {
			break
		}
		msg.hist.Finish(msg.records, msg.err, m.fmt)
		if msg.err != nil {
			m.logger.Warn("loading history", "error", msg.err)
		} else {
			m.logger.Info("history loaded", "records", len(msg.records))
		}

	case updateDoneMsg:
		if msg.corr != m.view.Correction {
			break
		}
		id := msg.corr.Finish(msg.ack, msg.err, m.now())
		if msg.err != nil {
			m.logger.Warn("updating actual price", "error", msg.err)
		}
		if id != 0 {
			m.mountInputs()
			cmds = append(cmds, dismissCmd(msg.corr, id, m.notice))
		}

	case dismissNoticeMsg:
		if msg.corr == m.view.Correction {
			msg.corr.DismissNotice(msg.id)
		}
	}

	if m.ready {
		m.viewport.SetContent(m.renderContent())
	}
	return m, tea.Batch(cmds...)
}

// submit starts the active tab's request. Coercion failures stay local.
func (m *Model) submit() tea.Cmd {
	switch m.view.Active {
	case flow.TabPredict:
		sub := m.view.Submission
		req, ok := sub.Begin()
		if !ok {
			return nil
		}
		return tea.Batch(m.spinner.Tick, predictCmd(m.ctx, m.svc, sub, req))
	default:
		corr := m.view.Correction
		upd, ok := corr.Begin()
		if !ok {
			return nil
		}
		return tea.Batch(m.spinner.Tick, updateCmd(m.ctx, m.svc, corr, upd))
	}
}

// loadHistory issues the history fetch the first time the results panel is
// shown in the current mount.
func (m *Model) loadHistory() tea.Cmd {
	if !m.view.ShowResults() || !m.view.History.Begin() {
		return nil
	}
	return tea.Batch(m.spinner.Tick, historyCmd(m.ctx, m.svc, m.view.History))
}

// busy reports a request in flight for the active form.
func (m Model) busy() bool {
	if m.view.Active == flow.TabPredict {
		return m.view.Submission.Busy
	}
	return m.view.Correction.Busy
}

// mountInputs rebuilds the text inputs from the active tab's form.
func (m *Model) mountInputs() {
	if m.view.Active == flow.TabPredict {
		m.fields = flow.PredictFields
	} else {
		m.fields = flow.CorrectionFields
	}
	m.inputs = make([]textinput.Model, len(m.fields))
	for i, f := range m.fields {
		ti := textinput.New()
		ti.Prompt = ""
		ti.Width = 30
		ti.CharLimit = 0 // company names are never cut short
		if f.Numeric {
			ti.CharLimit = 32
			ti.Placeholder = "0"
		}
		if f.Key == "listing_date" {
			ti.Placeholder = flow.DateLayout
		}
		ti.SetValue(m.field(f.Key))
		m.inputs[i] = ti
	}
	m.focus = 0
	m.setFocus(0)
}

func (m *Model) setFocus(i int) {
	if i < 0 {
		i = 0
	}
	if i > len(m.inputs)-1 {
		i = len(m.inputs) - 1
	}
	m.focus = i
	for j := range m.inputs {
		if j == i {
			m.inputs[j].Focus()
		} else {
			m.inputs[j].Blur()
		}
	}
}

func (m Model) field(key string) string {
	if m.view.Active == flow.TabPredict {
		return m.view.Submission.Form.Get(key)
	}
	return m.view.Correction.Form.Get(key)
}

func (m Model) setField(key, value string) {
	if m.view.Active == flow.TabPredict {
		m.view.Submission.Form.Set(key, value)
		return
	}
	m.view.Correction.Form.Set(key, value)
}
