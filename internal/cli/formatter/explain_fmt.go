package formatter

import (
	"fmt"
	"strings"

	"github.com/depotcb/cbagent/internal/contract"
)

// FormatExplanation renders a root-cause breakdown with its diagnosis.
func FormatExplanation(resp *contract.ExplainResponse) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("  Depot:      %s\n", Bold(resp.DepotID)))
	b.WriteString(fmt.Sprintf("  Baseline:   %s  %s\n", resp.Baseline, Percent(resp.BaselineCB)))
	b.WriteString(fmt.Sprintf("  Comparison: %s  %s\n", resp.Comparison, Percent(resp.ComparisonCB)))
	b.WriteString(fmt.Sprintf("  Change:     %s\n\n", Delta(resp.TotalDelta)))

	b.WriteString(Header("Factors"))
	b.WriteString("\n")
	rows := make([][]string, 0, len(resp.Factors))
	for _, f := range resp.Factors {
		rows = append(rows, []string{
			string(f.Name),
			Delta(f.Contribution),
			fmt.Sprintf("%.0f%%", f.ShareOfTotal*100),
		})
	}
	b.WriteString(RenderTable([]string{"FACTOR", "CONTRIBUTION", "SHARE"}, rows))
	b.WriteString("\n")

	d := resp.Diagnosis
	b.WriteString(Header("Diagnosis"))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("  %s %s\n", CauseIndicator(d.PrimaryCause),
		Dim(fmt.Sprintf("(confidence %.0f%%)", d.Confidence*100))))
	b.WriteString(fmt.Sprintf("  Entitled %+.1f%%  Catchment %+.1f%%  Attained %+.1f%%  Fulfilment %.1f%%\n",
		d.EntitledVariancePct, d.CatchmentVariancePct, d.AttainedVariancePct, d.FulfilmentRate*100))
	for _, f := range d.Findings {
		b.WriteString(fmt.Sprintf("  - %s\n", f.Message))
	}
	if len(d.Actions) > 0 {
		b.WriteString("\n" + StyleBlue.Render("  Next steps") + "\n")
		for _, a := range d.Actions {
			b.WriteString(fmt.Sprintf("  > %s\n", a.Message))
		}
	}
	if resp.TableVersion > 0 {
		b.WriteString("\n" + Dim(fmt.Sprintf("  table version %d", resp.TableVersion)))
	}
	return RenderBox("Root Cause", b.String())
}
