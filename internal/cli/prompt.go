package cli

import (
	"errors"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/depotcb/cbagent/internal/cli/formatter"
)

// cbagentHuhTheme returns a huh theme matching the formatter palette.
func cbagentHuhTheme() *huh.Theme {
	t := huh.ThemeBase()

	t.Focused.Title = lipgloss.NewStyle().Foreground(formatter.ColorHeader).Bold(true)
	t.Focused.TextInput.Cursor = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.TextInput.Prompt = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.TextInput.Text = lipgloss.NewStyle().Foreground(formatter.ColorFg)
	t.Focused.TextInput.Placeholder = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Focused.Description = lipgloss.NewStyle().Foreground(formatter.ColorDim)

	t.Blurred.Title = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.TextInput.Prompt = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.TextInput.Text = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	return t
}

func validateQuestion(s string) error {
	if strings.TrimSpace(s) == "" {
		return errors.New("question is required")
	}
	return nil
}

// questionForm returns a single-field form collecting a question.
func questionForm(value *string) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Ask about CB%").
				Description("Name a depot and a period, e.g. \"last week\" or \"from 2025-06-01 to 2025-06-07\".").
				Placeholder("Why did CB% drop for depot 7634 last week?").
				Value(value).
				Validate(validateQuestion),
		),
	).WithTheme(cbagentHuhTheme()).WithShowHelp(false)
}

func promptQuestion(value *string) error {
	return questionForm(value).Run()
}
