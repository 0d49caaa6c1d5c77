package formatter

import (
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/depotcb/cbagent/internal/contract"
	"github.com/depotcb/cbagent/internal/domain"
)

var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

func stripANSI(s string) string {
	return ansiPattern.ReplaceAllString(s, "")
}

func f(v float64) *float64 { return &v }

func TestRenderTable_AlignsStyledCells(t *testing.T) {
	out := stripANSI(RenderTable(
		[]string{"ITEM", "DELTA"},
		[][]string{{"X", Delta(45)}, {"LONGER", Delta(-0.5)}},
	))
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	assert.Len(t, lines, 4)
	assert.Equal(t, "ITEM    DELTA", lines[0])
	assert.Equal(t, "X       +45.00pp", lines[2])
	assert.Equal(t, "LONGER  -0.50pp", lines[3])
	assert.Empty(t, RenderTable(nil, nil))
}

func TestCell(t *testing.T) {
	assert.Equal(t, "-", Cell(nil))
	assert.Equal(t, "68.00", Cell(68.0))
	assert.Equal(t, "12", Cell(int64(12)))
	assert.Equal(t, "X", Cell("X"))
	assert.Equal(t, "2025-06-08", Cell(time.Date(2025, 6, 8, 0, 0, 0, 0, time.UTC)))
}

func TestPercent(t *testing.T) {
	assert.Equal(t, "72.00%", Percent(f(72)))
	assert.Equal(t, "n/a", stripANSI(Percent(nil)))
}

func TestFormatRecommendations(t *testing.T) {
	resp := &contract.RecommendResponse{
		DepotID:        "7634",
		DateRange:      domain.NewDateRange(time.Date(2025, 6, 8, 0, 0, 0, 0, time.UTC), time.Date(2025, 6, 14, 0, 0, 0, 0, time.UTC)),
		CurrentCB:      f(68),
		CandidateCount: 1,
		Recommendations: []domain.Recommendation{{
			ItemID: "X", Direction: domain.DirectionAdd, PredictedCBDelta: 45,
			Confidence: 0.35, QualifyingOrders: 12, SubstitutionEvents: 9,
			ImpactLevel: domain.ImpactHigh, NaturalSubstitutes: []string{"Y", "Z"},
			Rationale: "Ordered in 12 orders and substituted in 9 (75.0%).",
		}},
		TotalPredictedDelta: 45,
		TotalRecovered:      9,
		Warnings:            []string{"1 candidate had no qualifying orders"},
	}

	out := stripANSI(FormatRecommendations(resp))
	assert.Contains(t, out, "RECOMMENDATIONS")
	assert.Contains(t, out, "68.00%")
	assert.Contains(t, out, "+45.00pp")
	assert.Contains(t, out, "9/12")
	assert.Contains(t, out, "Y,Z")
	assert.Contains(t, out, "about 9 orders recovered")
	assert.Contains(t, out, "! 1 candidate had no qualifying orders")
}

func TestFormatRecommendations_Empty(t *testing.T) {
	out := stripANSI(FormatRecommendations(&contract.RecommendResponse{DepotID: "7634"}))
	assert.Contains(t, out, "No recommendations.")
	assert.Contains(t, out, "n/a")
}

func TestFormatExplanation(t *testing.T) {
	resp := &contract.ExplainResponse{
		DepotID:      "7634",
		BaselineCB:   f(72),
		ComparisonCB: f(68),
		TotalDelta:   -4,
		Factors: []domain.RootCauseFactor{
			{Name: domain.FactorEntitlement, Contribution: -3.43, ShareOfTotal: 0.857},
			{Name: domain.FactorSubstitution, Contribution: -0.57, ShareOfTotal: 0.143},
		},
		Diagnosis: domain.Diagnosis{
			PrimaryCause:   domain.CauseFulfillmentIssue,
			Confidence:     0.256,
			FulfilmentRate: 0.68,
			Findings:       []domain.Finding{{Code: domain.FindingLowFulfilment, Message: "Fulfilment rate is 68.0%"}},
			Actions:        []domain.Finding{{Code: domain.ActionAuditFulfilment, Message: "Audit picking accuracy"}},
		},
		TableVersion: 3,
	}

	out := stripANSI(FormatExplanation(resp))
	assert.Contains(t, out, "ROOT CAUSE")
	assert.Contains(t, out, "-4.00pp")
	assert.Contains(t, out, "ENTITLEMENT")
	assert.Contains(t, out, "86%")
	assert.Contains(t, out, "● FULFILLMENT ISSUE")
	assert.Contains(t, out, "confidence 26%")
	assert.Contains(t, out, "Fulfilment rate is 68.0%")
	assert.Contains(t, out, "> Audit picking accuracy")
	assert.Contains(t, out, "table version 3")
}

func TestFormatAnswer_DryRun(t *testing.T) {
	resp := &contract.AskResponse{
		Plan: domain.QueryPlan{
			Intent:      domain.IntentTrend,
			Metric:      domain.MetricCBPercent,
			Description: "CB% trend for depot 7634",
		},
		Query: domain.Query{Text: "SELECT 1 FROM cb_daily_metrics", Args: []any{"7634"}},
	}
	out := stripANSI(FormatAnswer(resp))
	assert.Contains(t, out, "trend")
	assert.Contains(t, out, "SELECT 1 FROM cb_daily_metrics")
	assert.Contains(t, out, "args: 7634")
	assert.NotContains(t, out, "ROOT CAUSE")
}

func TestFormatAnswer_Rows(t *testing.T) {
	resp := &contract.AskResponse{
		Plan:    domain.QueryPlan{Intent: domain.IntentMissingItems},
		Columns: []string{"item_id", "order_count"},
		Rows:    []contract.Row{{"item_id": "X", "order_count": int64(12)}},
	}
	out := stripANSI(FormatAnswer(resp))
	assert.Contains(t, out, "ITEM_ID")
	assert.Contains(t, out, "X")
	assert.Contains(t, out, "12")
}

func TestFormatDashboard(t *testing.T) {
	day := time.Date(2025, 6, 8, 0, 0, 0, 0, time.UTC)
	rows := []domain.MetricRow{
		{DepotID: "7634", Date: day, CatchmentCount: 1200, EntitledCount: 1050, AttainedCount: 714, CBPercent: f(68)},
		{DepotID: "7634", Date: day.AddDate(0, 0, 1)},
	}
	resp := &contract.DashboardResponse{
		DepotID:   "7634",
		DateRange: domain.NewDateRange(day, day.AddDate(0, 0, 1)),
		Series:    rows,
		Summary:   domain.Summarize(rows),
		Warnings:  []string{"1 day without entitled orders excluded from CB%"},
	}
	out := stripANSI(FormatDashboard(resp))
	assert.Contains(t, out, "CB% DASHBOARD")
	assert.Contains(t, out, "Pooled:  68.00%")
	assert.Contains(t, out, "2025-06-09")
	assert.Contains(t, out, "1 day without entitled orders")
}

func TestCauseIndicator(t *testing.T) {
	assert.Equal(t, "● NORMAL VARIANCE", stripANSI(CauseIndicator(domain.CauseNormalVariance)))
	assert.Equal(t, "● UNKNOWN", stripANSI(CauseIndicator("")))
}
