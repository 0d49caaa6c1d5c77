package formatter

import (
	"fmt"
	"strings"

	"github.com/depotcb/cbagent/internal/contract"
)

// FormatRecommendations renders a ranked assortment recommendation run.
func FormatRecommendations(resp *contract.RecommendResponse) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("  Depot:      %s\n", Bold(resp.DepotID)))
	b.WriteString(fmt.Sprintf("  Window:     %s\n", resp.DateRange))
	b.WriteString(fmt.Sprintf("  Current CB: %s\n", Percent(resp.CurrentCB)))
	b.WriteString(fmt.Sprintf("  Candidates: %d simulated, %d without orders\n\n",
		resp.CandidateCount, resp.ExcludedCount))

	if len(resp.Recommendations) == 0 {
		b.WriteString(Dim("  No recommendations.") + "\n")
	} else {
		rows := make([][]string, 0, len(resp.Recommendations))
		for i, r := range resp.Recommendations {
			rows = append(rows, []string{
				fmt.Sprintf("%d", i+1),
				r.ItemID,
				string(r.Direction),
				Delta(r.PredictedCBDelta),
				fmt.Sprintf("%.0f%%", r.Confidence*100),
				fmt.Sprintf("%d/%d", r.SubstitutionEvents, r.QualifyingOrders),
				ImpactColor(r.ImpactLevel).Render(string(r.ImpactLevel)),
				strings.Join(r.NaturalSubstitutes, ","),
			})
		}
		b.WriteString(RenderTable(
			[]string{"#", "ITEM", "ACTION", "CB DELTA", "CONF", "EVENTS", "IMPACT", "SUBSTITUTES"},
			rows,
		))
		b.WriteString("\n")
		b.WriteString(fmt.Sprintf("  Combined: %s, about %.0f orders recovered\n",
			Delta(resp.TotalPredictedDelta), resp.TotalRecovered))
		b.WriteString(Dim("  "+resp.Recommendations[0].Rationale) + "\n")
	}
	b.WriteString(Warnings(resp.Warnings))
	return RenderBox("Recommendations", b.String())
}
