package tui

import (
	"github.com/charmbracelet/lipgloss"

	"ipopredict/internal/config"
	"ipopredict/internal/dashboard"
)

// Theme holds the lipgloss styles the model renders with. Build it once from
// configuration and hand it to New.
type Theme struct {
	Header      lipgloss.Style
	Footer      lipgloss.Style
	TabActive   lipgloss.Style
	TabInactive lipgloss.Style
	Title       lipgloss.Style
	Label       lipgloss.Style
	Focused     lipgloss.Style
	Value       lipgloss.Style
	Dim         lipgloss.Style
	Error       lipgloss.Style
	Notice      lipgloss.Style
	Positive    lipgloss.Style
	Negative    lipgloss.Style
	Spinner     lipgloss.Style
}

// NewTheme derives the styles from the configured palette.
func NewTheme(t config.Theme) Theme {
	primary := lipgloss.Color(t.Primary)
	secondary := lipgloss.Color(t.Secondary)
	white := lipgloss.Color("#ffffff")

	return Theme{
		Header:      lipgloss.NewStyle().Bold(true).Foreground(white).Background(primary),
		Footer:      lipgloss.NewStyle().Foreground(lipgloss.Color(t.Text)).Background(lipgloss.Color(t.Background)),
		TabActive:   lipgloss.NewStyle().Bold(true).Foreground(primary).Underline(true),
		TabInactive: lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		Title:       lipgloss.NewStyle().Bold(true),
		Label:       lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		Focused:     lipgloss.NewStyle().Bold(true).Foreground(secondary),
		Value:       lipgloss.NewStyle().Bold(true).Foreground(primary),
		Dim:         lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		Error:       lipgloss.NewStyle().Foreground(lipgloss.Color(t.Negative)),
		Notice:      lipgloss.NewStyle().Foreground(white).Background(lipgloss.Color("#323232")).Padding(0, 1),
		Positive:    lipgloss.NewStyle().Foreground(lipgloss.Color(t.Positive)),
		Negative:    lipgloss.NewStyle().Foreground(lipgloss.Color(t.Negative)),
		Spinner:     lipgloss.NewStyle().Foreground(primary),
	}
}

// tone picks the style for a return.
func (th Theme) tone(t dashboard.Tone) lipgloss.Style {
	if t == dashboard.Negative {
		return th.Negative
	}
	return th.Positive
}
