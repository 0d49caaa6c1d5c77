package domain

// Recommendation is one ranked assortment change.
type Recommendation struct {
	ItemID                   string
	PredictedCBDelta         float64
	Confidence               float64
	SubstitutionRateBaseline float64

	Direction          Direction
	QualifyingOrders   int
	SubstitutionEvents int
	EstimatedRecovered float64
	NaturalSubstitutes []string
	ImpactLevel        ImpactLevel
	Rationale          string
}

// RootCauseFactor is one additive contribution to a CB% delta, in
// percentage points.
type RootCauseFactor struct {
	Name         FactorName
	Contribution float64
	ShareOfTotal float64
}
