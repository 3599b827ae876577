package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"ipopredict/internal/dashboard"
	"ipopredict/internal/flow"
)

const title = "IPO Listing Price Predictor"

func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	headerBar := m.theme.Header.Render(padOrTrunc(" "+title+" ", m.width))

	footerText := " tab switch  up/dn field  enter next/submit  pgup/dn scroll  esc quit"
	footerBar := m.theme.Footer.Render(padOrTrunc(footerText, m.width))

	return headerBar + "\n" + m.viewport.View() + "\n" + footerBar
}

func (m Model) renderContent() string {
	var b strings.Builder

	b.WriteString(m.renderTabs())
	b.WriteString("\n\n")

	if m.view.Active == flow.TabPredict {
		m.renderPredict(&b)
	} else {
		m.renderUpdate(&b)
	}

	if m.view.ShowResults() {
		b.WriteString("\n")
		m.renderResults(&b)
	}
	return b.String()
}

func (m Model) renderTabs() string {
	var parts []string
	for _, t := range []flow.Tab{flow.TabPredict, flow.TabUpdate} {
		label := " " + t.String() + " "
		if t == m.view.Active {
			parts = append(parts, m.theme.TabActive.Render(label))
		} else {
			parts = append(parts, m.theme.TabInactive.Render(label))
		}
	}
	return strings.Join(parts, "  ")
}

func (m Model) renderForm(b *strings.Builder) {
	labelWidth := 0
	for _, f := range m.fields {
		if w := lipgloss.Width(f.Label); w > labelWidth {
			labelWidth = w
		}
	}
	for i, f := range m.fields {
		marker := "  "
		label := m.theme.Label.Render(padRight(f.Label, labelWidth))
		if i == m.focus {
			marker = m.theme.Focused.Render("> ")
			label = m.theme.Focused.Render(padRight(f.Label, labelWidth))
		}
		fmt.Fprintf(b, "%s%s  %s\n", marker, label, m.inputs[i].View())
	}
}

func (m Model) renderPredict(b *strings.Builder) {
	sub := m.view.Submission
	m.renderForm(b)
	b.WriteString("\n")

	if sub.Busy {
		fmt.Fprintf(b, "%s Predicting...\n", m.spinner.View())
	}
	if sub.Err != "" {
		b.WriteString(m.theme.Error.Render(sub.Err) + "\n")
	}
	if sub.Result != nil {
		pv := dashboard.PredictionDisplay(sub.Result, m.fmt)
		b.WriteString("\n" + m.theme.Title.Render("Prediction Results") + "\n")
		m.metric(b, "Predicted Listing Price", m.theme.Value.Render(pv.Predicted))
		m.metric(b, "Expected Return", m.theme.tone(pv.Tone).Render(pv.ExpectedReturn))
	}
}

func (m Model) renderUpdate(b *strings.Builder) {
	corr := m.view.Correction
	b.WriteString(m.theme.Title.Render("Update Actual Listing Price") + "\n")
	b.WriteString(m.theme.Dim.Render("After an IPO has listed, record its actual listing price.") + "\n\n")
	m.renderForm(b)
	b.WriteString("\n")

	if corr.Busy {
		fmt.Fprintf(b, "%s Updating...\n", m.spinner.View())
	}
	if corr.Err != "" {
		b.WriteString(m.theme.Error.Render(corr.Err) + "\n")
	}
	if corr.Notice != "" {
		b.WriteString(m.theme.Notice.Render(corr.Notice) + "\n")
	}
}

func (m Model) renderResults(b *strings.Builder) {
	pv := dashboard.PredictionDisplay(m.view.Latest, m.fmt)

	b.WriteString(m.theme.Title.Render("Latest Prediction") + "\n")
	m.metric(b, "Predicted Listing Price", m.theme.Value.Render(pv.Predicted))
	m.metric(b, "Expected Return", m.theme.tone(pv.Tone).Render(pv.ExpectedReturn))
	m.metric(b, "Sentiment Score", pv.Sentiment)
	for _, line := range pv.Breakdown {
		fmt.Fprintf(b, "    %s %s\n", m.theme.Dim.Render(padRight(line.Label, 28)), line.Value)
	}

	b.WriteString("\n" + m.theme.Title.Render("Prediction History") + "\n")
	h := m.view.History
	switch {
	case h.Loading:
		fmt.Fprintf(b, "%s Loading...\n", m.spinner.View())
	case h.Err != "":
		b.WriteString(m.theme.Error.Render(h.Err) + "\n")
	case h.Empty():
		b.WriteString(m.theme.Dim.Render("No predictions yet.") + "\n")
	default:
		m.renderHistoryTable(b, h.Rows)
	}
}

func (m Model) metric(b *strings.Builder, label, value string) {
	fmt.Fprintf(b, "  %s  %s\n", m.theme.Label.Render(padRight(label, 23)), value)
}

var historyCols = []struct {
	title string
	width int
}{
	{"Company", 24},
	{"Issue Price", 13},
	{"Predicted", 13},
	{"Actual", 13},
	{"Return", 10},
	{"Accuracy", 10},
}

func (m Model) renderHistoryTable(b *strings.Builder, rows []dashboard.HistoryRow) {
	var hdr strings.Builder
	for i, c := range historyCols {
		if i == 0 {
			hdr.WriteString(padRight(c.title, c.width))
		} else {
			hdr.WriteString(padLeft(c.title, c.width))
		}
	}
	b.WriteString(m.theme.Dim.Render(hdr.String()) + "\n")

	for _, row := range rows {
		ret := padLeft(row.ReturnText, historyCols[4].width)
		if row.HasReturn {
			ret = m.theme.tone(row.Tone).Render(ret)
		}
		b.WriteString(padOrTrunc(row.Record.CompanyName, historyCols[0].width))
		b.WriteString(padLeft(row.Issue, historyCols[1].width))
		b.WriteString(padLeft(row.Predicted, historyCols[2].width))
		b.WriteString(padLeft(row.Actual, historyCols[3].width))
		b.WriteString(ret)
		b.WriteString(padLeft(row.AccuracyText, historyCols[5].width))
		b.WriteString("\n")
	}
}

// padOrTrunc pads s with spaces or truncates it to exactly width cells.
func padOrTrunc(s string, width int) string {
	if width <= 0 {
		return s
	}
	w := lipgloss.Width(s)
	if w > width {
		r := []rune(s)
		for lipgloss.Width(string(r)) > width {
			r = r[:len(r)-1]
		}
		return string(r)
	}
	return s + strings.Repeat(" ", width-w)
}

func padRight(s string, width int) string {
	if w := lipgloss.Width(s); w < width {
		return s + strings.Repeat(" ", width-w)
	}
	return s
}

func padLeft(s string, width int) string {
	if w := lipgloss.Width(s); w < width {
		return strings.Repeat(" ", width-w) + s
	}
	return s
}
