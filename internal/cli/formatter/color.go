package formatter

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/depotcb/cbagent/internal/domain"
)

// Gruvbox-inspired color palette.
var (
	ColorGreen  = lipgloss.Color("#8ec07c")
	ColorYellow = lipgloss.Color("#fabd2f")
	ColorRed    = lipgloss.Color("#fb4934")
	ColorBlue   = lipgloss.Color("#83a598")
	ColorDim    = lipgloss.Color("#928374")
	ColorFg     = lipgloss.Color("#ebdbb2")
	ColorHeader = lipgloss.Color("#fe8019")
)

var (
	StyleGreen  = lipgloss.NewStyle().Foreground(ColorGreen)
	StyleYellow = lipgloss.NewStyle().Foreground(ColorYellow)
	StyleRed    = lipgloss.NewStyle().Foreground(ColorRed)
	StyleBlue   = lipgloss.NewStyle().Foreground(ColorBlue)
	StyleDim    = lipgloss.NewStyle().Foreground(ColorDim)
	StyleFg     = lipgloss.NewStyle().Foreground(ColorFg)
	StyleHeader = lipgloss.NewStyle().Foreground(ColorHeader).Bold(true)
	StyleBold   = lipgloss.NewStyle().Foreground(ColorFg).Bold(true)
)

// ImpactColor returns the style for an impact level.
func ImpactColor(level domain.ImpactLevel) lipgloss.Style {
	switch level {
	case domain.ImpactHigh:
		return StyleGreen
	case domain.ImpactMedium:
		return StyleYellow
	default:
		return StyleDim
	}
}

// CauseIndicator returns a colored primary-cause label such as "● FULFILLMENT ISSUE".
func CauseIndicator(cause domain.PrimaryCause) string {
	label := "● " + strings.ToUpper(strings.ReplaceAll(string(cause), "_", " "))
	switch cause {
	case domain.CauseNormalVariance:
		return StyleGreen.Render(label)
	case domain.CauseAssortmentGap:
		return StyleYellow.Render(label)
	case domain.CauseCatchmentDrop, domain.CauseFulfillmentIssue:
		return StyleRed.Render(label)
	default:
		return StyleDim.Render("● UNKNOWN")
	}
}

// Delta renders a signed percentage-point change, green when positive.
func Delta(pp float64) string {
	text := fmt.Sprintf("%+.2fpp", pp)
	switch {
	case pp > 0:
		return StyleGreen.Render(text)
	case pp < 0:
		return StyleRed.Render(text)
	default:
		return StyleDim.Render(text)
	}
}

// Header renders a section header with the orange header style and an underline.
func Header(text string) string {
	upper := strings.ToUpper(text)
	line := strings.Repeat("─", len(upper))
	return fmt.Sprintf("%s\n%s", StyleHeader.Render(upper), StyleDim.Render(line))
}

// Dim renders text in the muted/dim color.
func Dim(text string) string {
	return StyleDim.Render(text)
}

// Bold renders text in bold with the foreground color.
func Bold(text string) string {
	return StyleBold.Render(text)
}
