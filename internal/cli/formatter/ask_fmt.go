package formatter

import (
	"fmt"
	"strings"

	"github.com/depotcb/cbagent/internal/contract"
	"github.com/depotcb/cbagent/internal/domain"
)

// FormatPlan renders a query plan and, when present, its rendered query.
func FormatPlan(plan domain.QueryPlan, query domain.Query) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("  Intent: %s\n", StyleBold.Render(string(plan.Intent))))
	b.WriteString(fmt.Sprintf("  Metric: %s\n", plan.Metric))
	b.WriteString(fmt.Sprintf("  Plan:   %s\n", plan.Description))
	if query.Text != "" {
		b.WriteString("\n" + Dim("  "+query.Text) + "\n")
		if len(query.Args) > 0 {
			args := make([]string, len(query.Args))
			for i, a := range query.Args {
				args[i] = Cell(a)
			}
			b.WriteString(Dim("  args: "+strings.Join(args, ", ")) + "\n")
		}
	}
	return b.String()
}

// FormatAnswer renders the result of an `ask` command.
func FormatAnswer(resp *contract.AskResponse) string {
	var b strings.Builder
	b.WriteString(FormatPlan(resp.Plan, resp.Query))
	b.WriteString("\n")

	if len(resp.Columns) > 0 {
		rows := make([][]string, 0, len(resp.Rows))
		for _, r := range resp.Rows {
			cells := make([]string, len(resp.Columns))
			for i, c := range resp.Columns {
				cells[i] = Cell(r[c])
			}
			rows = append(rows, cells)
		}
		headers := make([]string, len(resp.Columns))
		for i, c := range resp.Columns {
			headers[i] = strings.ToUpper(c)
		}
		b.WriteString(RenderTable(headers, rows))
	}
	b.WriteString(Warnings(resp.Warnings))

	out := RenderBox("Answer", b.String()) + "\n"
	if resp.RootCause != nil {
		out += FormatExplanation(resp.RootCause) + "\n"
	}
	if resp.Recommendations != nil {
		out += FormatRecommendations(resp.Recommendations) + "\n"
	}
	return out
}
