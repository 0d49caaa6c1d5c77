package rootcause

import (
	"math"
	"sort"

	"github.com/depotcb/cbagent/internal/domain"
)

// Tolerance is the reconciliation tolerance in percentage points.
const Tolerance = 1e-9

// Inputs are the pooled quantities the factor chain reads.
type Inputs struct {
	Baseline   Totals
	Comparison Totals
	// AssortmentShift is the change in substituted orders, comparison minus
	// baseline, over items whose active flag differs between the snapshots.
	AssortmentShift float64
}

// Factor maps inputs to the CB% level reached once its driver has moved to
// the comparison value, with every factor before it already applied.
type Factor struct {
	Name  domain.FactorName
	Level func(in Inputs) float64
}

// AttributionOrder is the fixed sequence of the decomposition. Each factor's
// contribution is its level minus the level of the factor before it.
var AttributionOrder = []Factor{
	{Name: domain.FactorCatchment, Level: catchmentLevel},
	{Name: domain.FactorEntitlement, Level: entitlementLevel},
	{Name: domain.FactorSubstitution, Level: substitutionLevel},
	{Name: domain.FactorAssortment, Level: assortmentLevel},
}

// catchmentLevel moves catchment to C1 holding the entitlement rate E0/C0
// and the attained count. It is undefined without catchment on both sides.
func catchmentLevel(in Inputs) float64 {
	b, c := in.Baseline, in.Comparison
	if b.Catchment <= 0 || c.Catchment <= 0 {
		return math.NaN()
	}
	entitlementRate := float64(b.Entitled) / float64(b.Catchment)
	return 100 * float64(b.Attained) / (entitlementRate * float64(c.Catchment))
}

// entitlementLevel moves entitled to E1 holding the attained count.
func entitlementLevel(in Inputs) float64 {
	return 100 * float64(in.Baseline.Attained) / float64(in.Comparison.Entitled)
}

// substitutionLevel moves attained to A1 except for the part explained by
// assortment changes.
func substitutionLevel(in Inputs) float64 {
	return cb(in.Comparison) + 100*in.AssortmentShift/float64(in.Comparison.Entitled)
}

func assortmentLevel(in Inputs) float64 {
	return cb(in.Comparison)
}

func cb(t Totals) float64 {
	return 100 * float64(t.Attained) / float64(t.Entitled)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Decompose applies factors in order. A non-finite level contributes zero
// and leaves the running level unchanged. Whatever the chain does not
// explain is reported as RESIDUAL.
func Decompose(in Inputs, factors []Factor) []domain.RootCauseFactor {
	start := cb(in.Baseline)
	total := cb(in.Comparison) - start

	out := make([]domain.RootCauseFactor, 0, len(factors)+1)
	level := start
	sum := 0.0
	for _, f := range factors {
		next := f.Level(in)
		contribution := 0.0
		if finite(next) {
			contribution = next - level
			level = next
		}
		sum += contribution
		out = append(out, domain.RootCauseFactor{Name: f.Name, Contribution: contribution})
	}
	if residual := total - sum; math.Abs(residual) > Tolerance {
		out = append(out, domain.RootCauseFactor{Name: domain.FactorResidual, Contribution: residual})
	}

	for i := range out {
		if total != 0 && out[i].Contribution != 0 {
			out[i].ShareOfTotal = out[i].Contribution / total
		}
	}
	sortFactors(out, factors)
	return out
}

// sortFactors orders by absolute contribution descending, ties by position
// in the chain with RESIDUAL last.
func sortFactors(out []domain.RootCauseFactor, chain []Factor) {
	rank := make(map[domain.FactorName]int, len(chain)+1)
	for i, f := range chain {
		rank[f.Name] = i
	}
	rank[domain.FactorResidual] = len(chain)

	sort.SliceStable(out, func(i, j int) bool {
		mi, mj := math.Abs(out[i].Contribution), math.Abs(out[j].Contribution)
		if mi != mj {
			return mi > mj
		}
		return rank[out[i].Name] < rank[out[j].Name]
	})
}
