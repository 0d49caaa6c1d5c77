package rootcause

import (
	"fmt"
	"math"
	"sort"

	"github.com/depotcb/cbagent/internal/domain"
)

// Thresholds classify a change into a primary cause. Variances are percent
// changes of per-day averages; FulfilmentFloor is a fraction of entitled.
type Thresholds struct {
	CatchmentDropPct   float64
	EntitlementDropPct float64
	FulfilmentFloor    float64
	NormalBandPct      float64
}

func DefaultThresholds() Thresholds {
	return Thresholds{
		CatchmentDropPct:   -10,
		EntitlementDropPct: -15,
		FulfilmentFloor:    0.75,
		NormalBandPct:      10,
	}
}

func variancePct(current, baseline float64) float64 {
	if baseline == 0 {
		return 0
	}
	return (current - baseline) / baseline * 100
}

func perDay(v int64, days int) float64 {
	if days == 0 {
		return 0
	}
	return float64(v) / float64(days)
}

type candidate struct {
	cause      domain.PrimaryCause
	confidence float64
}

// Diagnose classifies the result. missingItems is the number of frequently
// ordered items absent from the assortment, when known.
func Diagnose(res Result, missingItems int, th Thresholds) domain.Diagnosis {
	b, c := res.Baseline, res.Comparison
	d := domain.Diagnosis{
		EntitledVariancePct:  variancePct(perDay(c.Entitled, c.Days), perDay(b.Entitled, b.Days)),
		CatchmentVariancePct: variancePct(perDay(c.Catchment, c.Days), perDay(b.Catchment, b.Days)),
		AttainedVariancePct:  variancePct(perDay(c.Attained, c.Days), perDay(b.Attained, b.Days)),
	}
	if c.Entitled > 0 {
		d.FulfilmentRate = float64(c.Attained) / float64(c.Entitled)
	}

	var causes []candidate
	if d.CatchmentVariancePct < th.CatchmentDropPct {
		causes = append(causes, candidate{domain.CauseCatchmentDrop,
			math.Min(1, 0.8+math.Abs(d.CatchmentVariancePct)/100)})
	}
	if d.EntitledVariancePct < th.EntitlementDropPct && d.CatchmentVariancePct > th.CatchmentDropPct {
		conf := math.Min(1, 0.7+math.Abs(d.EntitledVariancePct)/100)
		if missingItems > 5 {
			conf = math.Min(0.95, conf+0.1)
		}
		causes = append(causes, candidate{domain.CauseAssortmentGap, conf})
	}
	if d.FulfilmentRate < th.FulfilmentFloor {
		causes = append(causes, candidate{domain.CauseFulfillmentIssue, (1 - d.FulfilmentRate) * 0.8})
	}

	switch {
	case len(causes) > 0:
		sort.SliceStable(causes, func(i, j int) bool { return causes[i].confidence > causes[j].confidence })
		d.PrimaryCause, d.Confidence = causes[0].cause, causes[0].confidence
	case math.Abs(d.EntitledVariancePct) <= th.NormalBandPct:
		d.PrimaryCause, d.Confidence = domain.CauseNormalVariance, 0.8
	default:
		d.PrimaryCause, d.Confidence = domain.CauseNormalVariance, 0.5
	}

	d.Findings = findings(d, missingItems)
	d.Actions = actions(d.PrimaryCause)
	return d
}

func findings(d domain.Diagnosis, missingItems int) []domain.Finding {
	switch d.PrimaryCause {
	case domain.CauseCatchmentDrop:
		return []domain.Finding{{
			Code:    domain.FindingCatchmentDrop,
			Message: fmt.Sprintf("Catchment orders dropped %.1f%% from baseline; seasonal demand or competitor activity are likely factors.", math.Abs(d.CatchmentVariancePct)),
		}}
	case domain.CauseAssortmentGap:
		out := []domain.Finding{{
			Code:    domain.FindingEntitlementDrop,
			Message: fmt.Sprintf("Entitlement dropped %.1f%% while catchment remained stable.", math.Abs(d.EntitledVariancePct)),
		}}
		if missingItems > 0 {
			out = append(out, domain.Finding{
				Code:    domain.FindingMissingItems,
				Message: fmt.Sprintf("%d items are ordered by customers but not carried.", missingItems),
			})
		}
		return out
	case domain.CauseFulfillmentIssue:
		return []domain.Finding{{
			Code:    domain.FindingLowFulfilment,
			Message: fmt.Sprintf("Fulfilment rate is only %.1f%%.", 100*d.FulfilmentRate),
		}}
	}
	return []domain.Finding{{Code: domain.FindingWithinVariance, Message: "Metrics are within normal variance from baseline."}}
}

func actions(cause domain.PrimaryCause) []domain.Finding {
	var out []domain.Finding
	switch cause {
	case domain.CauseCatchmentDrop:
		out = append(out,
			domain.Finding{Code: domain.ActionMonitorCompetitor, Message: "Monitor competitive activity in the catchment."},
			domain.Finding{Code: domain.ActionPromote, Message: "Consider promotional campaigns to drive demand."})
	case domain.CauseAssortmentGap:
		out = append(out,
			domain.Finding{Code: domain.ActionAddItems, Message: "Add missing items to the assortment."},
			domain.Finding{Code: domain.ActionReviewSeasonal, Message: "Review seasonal assortment planning."})
	case domain.CauseFulfillmentIssue:
		out = append(out,
			domain.Finding{Code: domain.ActionAuditFulfilment, Message: "Audit fulfilment operations and stock levels."},
			domain.Finding{Code: domain.ActionReviewWindows, Message: "Review delivery window constraints."})
	}
	return append(out, domain.Finding{Code: domain.ActionMonitorDaily, Message: "Monitor metrics daily to catch changes early."})
}
