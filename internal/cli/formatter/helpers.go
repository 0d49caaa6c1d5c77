package formatter

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cast"

	"github.com/depotcb/cbagent/internal/domain"
)

// RenderBox wraps content in a rounded-border box with an optional title.
func RenderBox(title string, content string) string {
	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorDim).
		PaddingLeft(2).
		PaddingRight(2).
		PaddingTop(1).
		PaddingBottom(1)

	if title != "" {
		return boxStyle.Render(StyleHeader.Render(strings.ToUpper(title)) + "\n\n" + content)
	}
	return boxStyle.Render(content)
}

// Percent renders a CB% value, or "n/a" when it is undefined.
func Percent(v *float64) string {
	if v == nil {
		return Dim("n/a")
	}
	return fmt.Sprintf("%.2f%%", *v)
}

// Day formats a calendar day.
func Day(t time.Time) string {
	return t.Format(domain.DateLayout)
}

// Cell renders one decoded result value. Floats get two decimals and
// missing values render as "-".
func Cell(v any) string {
	switch x := v.(type) {
	case nil:
		return "-"
	case float32, float64:
		return fmt.Sprintf("%.2f", cast.ToFloat64(x))
	case time.Time:
		return Day(x)
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return s
}

// Warnings renders warning lines, or nothing when there are none.
func Warnings(ws []string) string {
	if len(ws) == 0 {
		return ""
	}
	var b strings.Builder
	for _, w := range ws {
		b.WriteString(StyleYellow.Render("  ! "+w) + "\n")
	}
	return b.String()
}
