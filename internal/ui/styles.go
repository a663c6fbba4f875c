package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jwulff/asltutor/internal/recognizer"
)

// Palette colors.
var (
	ColorRed     = lipgloss.Color("#FF5F5F")
	ColorGreen   = lipgloss.Color("#5FD75F")
	ColorYellow  = lipgloss.Color("#FFD75F")
	ColorBlue    = lipgloss.Color("#5FAFFF")
	ColorGray    = lipgloss.Color("#808080")
	ColorDimGray = lipgloss.Color("#444444")
	ColorWhite   = lipgloss.Color("#FFFFFF")
	ColorBlack   = lipgloss.Color("#1C1C1C")

	ColorDarkRed    = lipgloss.Color("#AF0000")
	ColorDarkGreen  = lipgloss.Color("#008700")
	ColorDarkYellow = lipgloss.Color("#AF8700")
	ColorDarkBlue   = lipgloss.Color("#005FAF")
	ColorLightGray  = lipgloss.Color("#BCBCBC")
)

// Theme names.
const (
	ThemeDark  = "dark"
	ThemeLight = "light"
)

// Theme is the set of styles the TUI renders with.
type Theme struct {
	Name string

	Title       lipgloss.Style
	Tab         lipgloss.Style
	TabActive   lipgloss.Style
	ActiveDot   lipgloss.Style
	IdleDot     lipgloss.Style
	Calibrating lipgloss.Style
	Error       lipgloss.Style
	ErrorText   lipgloss.Style
	Notice      lipgloss.Style
	Label       lipgloss.Style
	Timestamp   lipgloss.Style
	Selected    lipgloss.Style
	Dim         lipgloss.Style
	FooterKey   lipgloss.Style
	FooterDesc  lipgloss.Style
	Divider     lipgloss.Style
	Done        lipgloss.Style

	ConfidenceHigh   lipgloss.Style
	ConfidenceMedium lipgloss.Style
	ConfidenceLow    lipgloss.Style

	BarFilled lipgloss.Style
	BarEmpty  lipgloss.Style
}

// Dark is the default theme.
func Dark() Theme {
	return Theme{
		Name:             ThemeDark,
		Title:            lipgloss.NewStyle().Bold(true).Foreground(ColorBlue),
		Tab:              lipgloss.NewStyle().Foreground(ColorGray),
		TabActive:        lipgloss.NewStyle().Bold(true).Foreground(ColorWhite).Underline(true),
		ActiveDot:        lipgloss.NewStyle().Bold(true).Foreground(ColorGreen),
		IdleDot:          lipgloss.NewStyle().Foreground(ColorGray),
		Calibrating:      lipgloss.NewStyle().Bold(true).Foreground(ColorYellow),
		Error:            lipgloss.NewStyle().Bold(true).Foreground(ColorRed),
		ErrorText:        lipgloss.NewStyle().Foreground(ColorRed),
		Notice:           lipgloss.NewStyle().Foreground(ColorGreen),
		Label:            lipgloss.NewStyle().Bold(true).Foreground(ColorWhite),
		Timestamp:        lipgloss.NewStyle().Foreground(ColorGray),
		Selected:         lipgloss.NewStyle().Bold(true).Foreground(ColorBlue),
		Dim:              lipgloss.NewStyle().Foreground(ColorGray),
		FooterKey:        lipgloss.NewStyle().Bold(true).Foreground(ColorYellow),
		FooterDesc:       lipgloss.NewStyle().Foreground(ColorGray),
		Divider:          lipgloss.NewStyle().Foreground(ColorDimGray),
		Done:             lipgloss.NewStyle().Foreground(ColorGreen),
		ConfidenceHigh:   lipgloss.NewStyle().Bold(true).Foreground(ColorGreen),
		ConfidenceMedium: lipgloss.NewStyle().Bold(true).Foreground(ColorYellow),
		ConfidenceLow:    lipgloss.NewStyle().Bold(true).Foreground(ColorRed),
		BarFilled:        lipgloss.NewStyle().Foreground(ColorBlue),
		BarEmpty:         lipgloss.NewStyle().Foreground(ColorDimGray),
	}
}

// Light is for light terminal backgrounds.
func Light() Theme {
	return Theme{
		Name:             ThemeLight,
		Title:            lipgloss.NewStyle().Bold(true).Foreground(ColorDarkBlue),
		Tab:              lipgloss.NewStyle().Foreground(ColorGray),
		TabActive:        lipgloss.NewStyle().Bold(true).Foreground(ColorBlack).Underline(true),
		ActiveDot:        lipgloss.NewStyle().Bold(true).Foreground(ColorDarkGreen),
		IdleDot:          lipgloss.NewStyle().Foreground(ColorGray),
		Calibrating:      lipgloss.NewStyle().Bold(true).Foreground(ColorDarkYellow),
		Error:            lipgloss.NewStyle().Bold(true).Foreground(ColorDarkRed),
		ErrorText:        lipgloss.NewStyle().Foreground(ColorDarkRed),
		Notice:           lipgloss.NewStyle().Foreground(ColorDarkGreen),
		Label:            lipgloss.NewStyle().Bold(true).Foreground(ColorBlack),
		Timestamp:        lipgloss.NewStyle().Foreground(ColorGray),
		Selected:         lipgloss.NewStyle().Bold(true).Foreground(ColorDarkBlue),
		Dim:              lipgloss.NewStyle().Foreground(ColorGray),
		FooterKey:        lipgloss.NewStyle().Bold(true).Foreground(ColorDarkBlue),
		FooterDesc:       lipgloss.NewStyle().Foreground(ColorGray),
		Divider:          lipgloss.NewStyle().Foreground(ColorLightGray),
		Done:             lipgloss.NewStyle().Foreground(ColorDarkGreen),
		ConfidenceHigh:   lipgloss.NewStyle().Bold(true).Foreground(ColorDarkGreen),
		ConfidenceMedium: lipgloss.NewStyle().Bold(true).Foreground(ColorDarkYellow),
		ConfidenceLow:    lipgloss.NewStyle().Bold(true).Foreground(ColorDarkRed),
		BarFilled:        lipgloss.NewStyle().Foreground(ColorDarkBlue),
		BarEmpty:         lipgloss.NewStyle().Foreground(ColorLightGray),
	}
}

// ThemeByName returns Light for "light" and Dark for anything else.
func ThemeByName(name string) Theme {
	if name == ThemeLight {
		return Light()
	}
	return Dark()
}

// Toggle returns the other theme.
func (t Theme) Toggle() Theme {
	if t.Name == ThemeLight {
		return Dark()
	}
	return Light()
}

// Confidence returns the style for a confidence tier.
func (t Theme) Confidence(tier recognizer.Tier) lipgloss.Style {
	switch tier {
	case recognizer.TierHigh:
		return t.ConfidenceHigh
	case recognizer.TierMedium:
		return t.ConfidenceMedium
	default:
		return t.ConfidenceLow
	}
}

// Bar renders a width-cell bar filled to pct percent.
func (t Theme) Bar(pct, width int) string {
	pct = max(0, min(100, pct))
	filled := pct * width / 100
	return t.BarFilled.Render(strings.Repeat("█", filled)) +
		t.BarEmpty.Render(strings.Repeat("░", width-filled))
}
