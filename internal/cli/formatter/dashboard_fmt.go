package formatter

import (
	"fmt"
	"strings"

	"github.com/depotcb/cbagent/internal/contract"
)

// FormatDashboard renders the daily series and its pooled summary.
func FormatDashboard(resp *contract.DashboardResponse) string {
	var b strings.Builder
	s := resp.Summary

	b.WriteString(fmt.Sprintf("  Depot:   %s   %s\n", Bold(resp.DepotID), Dim(resp.DateRange.String())))
	b.WriteString(fmt.Sprintf("  Pooled:  %s   Mean daily: %s\n", Bold(Percent(s.PooledCB)), Percent(s.MeanDailyCB)))
	b.WriteString(fmt.Sprintf("  Range:   %s .. %s\n", Percent(s.MinCB), Percent(s.MaxCB)))
	if s.LatestDate != nil {
		b.WriteString(fmt.Sprintf("  Latest:  %s on %s\n", Percent(s.LatestCB), Day(*s.LatestDate)))
	}
	b.WriteString(fmt.Sprintf("  Totals:  %d catchment, %d entitled, %d attained\n\n",
		s.Catchment, s.Entitled, s.Attained))

	rows := make([][]string, 0, len(resp.Series))
	for _, r := range resp.Series {
		rows = append(rows, []string{
			Day(r.Date),
			fmt.Sprintf("%d", r.CatchmentCount),
			fmt.Sprintf("%d", r.EntitledCount),
			fmt.Sprintf("%d", r.AttainedCount),
			Percent(r.CBPercent),
		})
	}
	b.WriteString(RenderTable([]string{"DATE", "CATCHMENT", "ENTITLED", "ATTAINED", "CB%"}, rows))
	b.WriteString(Warnings(resp.Warnings))
	return RenderBox("CB% Dashboard", b.String())
}

// FormatImport renders the outcome of a snapshot import.
func FormatImport(res *contract.ImportResult) string {
	return fmt.Sprintf("%s snapshot %s: %d metric rows, %d order lines, %d assortment rows %s\n",
		StyleGreen.Render("Imported"), res.SnapshotID,
		res.MetricRows, res.OrderRows, res.AssortmentRows,
		Dim(fmt.Sprintf("(table version %d)", res.TableVersion)))
}
