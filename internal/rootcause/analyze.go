package rootcause

import (
	"github.com/depotcb/cbagent/internal/app"
	"github.com/depotcb/cbagent/internal/domain"
	"github.com/depotcb/cbagent/internal/impact"
)

// Window is one side of a comparison: metric rows plus the order lines and
// assortment snapshot drawn from the same table version.
type Window struct {
	Range      domain.DateRange
	Metrics    []domain.MetricRow
	Orders     []domain.OrderDetailRow
	Assortment []domain.AssortmentRow
}

// Totals pools a window's rows with entitled_count > 0.
type Totals struct {
	DepotID   string
	Days      int
	Catchment int64
	Entitled  int64
	Attained  int64
}

// CB is the pooled CB% of the window in percentage points.
func (t Totals) CB() float64 {
	return cb(t)
}

type Result struct {
	DepotID    string
	Baseline   Totals
	Comparison Totals
	TotalDelta float64
	Factors    []domain.RootCauseFactor
}

// Analyze decomposes the CB% change between two sets of metric rows.
func Analyze(baseline, comparison []domain.MetricRow) ([]domain.RootCauseFactor, error) {
	res, err := AnalyzeWindows(Window{Metrics: baseline}, Window{Metrics: comparison})
	if err != nil {
		return nil, err
	}
	return res.Factors, nil
}

// AnalyzeWindows runs the full decomposition including the assortment effect.
// Depot identity is checked on every row before any window is pooled.
func AnalyzeWindows(baseline, comparison Window) (Result, error) {
	bd, err := depotOf(baseline.Metrics, "baseline")
	if err != nil {
		return Result{}, err
	}
	cd, err := depotOf(comparison.Metrics, "comparison")
	if err != nil {
		return Result{}, err
	}
	if bd != "" && cd != "" && bd != cd {
		return Result{}, app.NewError(app.ErrIncomparableWindows,
			"baseline depot %s differs from comparison depot %s", bd, cd)
	}

	b, err := pool(baseline.Metrics, "baseline")
	if err != nil {
		return Result{}, err
	}
	c, err := pool(comparison.Metrics, "comparison")
	if err != nil {
		return Result{}, err
	}

	in := Inputs{
		Baseline:        b,
		Comparison:      c,
		AssortmentShift: assortmentShift(baseline, comparison),
	}
	return Result{
		DepotID:    b.DepotID,
		Baseline:   b,
		Comparison: c,
		TotalDelta: c.CB() - b.CB(),
		Factors:    Decompose(in, AttributionOrder),
	}, nil
}

// depotOf returns the single depot of rows, or "" when rows is empty.
func depotOf(rows []domain.MetricRow, side string) (string, error) {
	if len(rows) == 0 {
		return "", nil
	}
	depot := rows[0].DepotID
	for _, r := range rows[1:] {
		if r.DepotID != depot {
			return "", app.NewError(app.ErrIncomparableWindows,
				"%s window mixes depots %s and %s", side, depot, r.DepotID)
		}
	}
	return depot, nil
}

// pool sums rows with entitled orders. Rows must share one depot.
func pool(rows []domain.MetricRow, side string) (Totals, error) {
	var t Totals
	if len(rows) > 0 {
		t.DepotID = rows[0].DepotID
	}
	for _, r := range rows {
		if r.EntitledCount <= 0 {
			continue
		}
		t.Days++
		t.Catchment += r.CatchmentCount
		t.Entitled += r.EntitledCount
		t.Attained += r.AttainedCount
	}
	if t.Entitled <= 0 {
		return Totals{}, app.NewError(app.ErrInsufficientData,
			"%s window has no rows with entitled orders", side)
	}
	return t, nil
}

// assortmentShift sums the change in substituted orders for items whose
// active flag flipped between the two snapshots.
func assortmentShift(baseline, comparison Window) float64 {
	changed := domain.ChangedItems(baseline.Assortment, comparison.Assortment)
	if len(changed) == 0 {
		return 0
	}
	before := impact.NewOrderIndex(baseline.Orders)
	after := impact.NewOrderIndex(comparison.Orders)
	shift := 0
	for _, id := range changed {
		shift += after.SubstitutedOrders(id) - before.SubstitutedOrders(id)
	}
	return float64(shift)
}
