package impact

import (
	"fmt"
	"math"

	"github.com/depotcb/cbagent/internal/app"
	"github.com/depotcb/cbagent/internal/domain"
)

// Config tunes the simulator. All fields have usable defaults.
type Config struct {
	// CaptureRate is the share of avoided substitutions that become attained
	// orders. 1.0 is the one-to-one linear approximation.
	CaptureRate     float64
	MinSample       int
	ConfidenceFloor float64
	// SampleScale is the qualifying order count at which confidence reaches 1.
	SampleScale    float64
	HighImpactPP   float64
	MediumImpactPP float64
	MaxSubstitutes int
}

func DefaultConfig() Config {
	return Config{
		CaptureRate:     1.0,
		MinSample:       10,
		ConfidenceFloor: 0.2,
		SampleScale:     100,
		HighImpactPP:    2.0,
		MediumImpactPP:  1.0,
		MaxSubstitutes:  3,
	}
}

// withDefaults fills zero fields from DefaultConfig.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	c.CaptureRate = domain.Positive(c.CaptureRate, d.CaptureRate)
	c.MinSample = domain.Positive(c.MinSample, d.MinSample)
	c.ConfidenceFloor = domain.Positive(c.ConfidenceFloor, d.ConfidenceFloor)
	c.SampleScale = domain.Positive(c.SampleScale, d.SampleScale)
	c.HighImpactPP = domain.Positive(c.HighImpactPP, d.HighImpactPP)
	c.MediumImpactPP = domain.Positive(c.MediumImpactPP, d.MediumImpactPP)
	c.MaxSubstitutes = domain.Positive(c.MaxSubstitutes, d.MaxSubstitutes)
	return c
}

// Simulator estimates the CB% change from adding or removing one item.
type Simulator struct {
	cfg Config
}

// NewSimulator returns a Simulator using cfg.
func NewSimulator(cfg Config) *Simulator {
	return &Simulator{cfg: cfg.withDefaults()}
}

func (s *Simulator) Config() Config {
	return s.cfg
}

// Simulate estimates the CB% change of toggling itemID in the assortment.
// Active items are simulated as removals, all others as additions.
func (s *Simulator) Simulate(itemID string, rows []domain.OrderDetailRow, assortment []domain.AssortmentRow) (domain.Recommendation, error) {
	return s.simulate(itemID, NewOrderIndex(rows), domain.ActiveItems(assortment))
}

func (s *Simulator) simulate(itemID string, idx *OrderIndex, active map[string]bool) (domain.Recommendation, error) {
	n := idx.QualifyingOrders(itemID)
	if n == 0 {
		return domain.Recommendation{}, app.NewError(app.ErrInsufficientData,
			"item %s has no qualifying orders in the window", itemID)
	}
	entitled := idx.TotalOrders()
	substituted := idx.SubstitutedOrders(itemID)

	rec := domain.Recommendation{
		ItemID:                   itemID,
		QualifyingOrders:         n,
		SubstitutionRateBaseline: float64(substituted) / float64(n),
		Confidence:               s.confidence(n),
		NaturalSubstitutes:       idx.Substitutes(itemID, s.cfg.MaxSubstitutes),
	}

	if active[itemID] {
		rec.Direction = domain.DirectionRemove
		rec.SubstitutionEvents = idx.FulfilledOrders(itemID)
	} else {
		rec.Direction = domain.DirectionAdd
		rec.SubstitutionEvents = substituted
	}
	rec.EstimatedRecovered = s.cfg.CaptureRate * float64(rec.SubstitutionEvents)
	rec.PredictedCBDelta = 100 * rec.EstimatedRecovered / float64(entitled)
	if rec.Direction == domain.DirectionRemove {
		rec.PredictedCBDelta = -rec.PredictedCBDelta
	}
	rec.ImpactLevel = s.level(rec.PredictedCBDelta)
	rec.Rationale = rationale(rec, entitled)
	return rec, nil
}

// confidence grows with the square root of the sample and is held at the
// floor below the minimum sample.
func (s *Simulator) confidence(n int) float64 {
	if n < s.cfg.MinSample {
		return s.cfg.ConfidenceFloor
	}
	c := math.Sqrt(float64(n) / s.cfg.SampleScale)
	return math.Max(s.cfg.ConfidenceFloor, math.Min(1, c))
}

func (s *Simulator) level(delta float64) domain.ImpactLevel {
	switch d := math.Abs(delta); {
	case d >= s.cfg.HighImpactPP:
		return domain.ImpactHigh
	case d >= s.cfg.MediumImpactPP:
		return domain.ImpactMedium
	default:
		return domain.ImpactLow
	}
}

func rationale(rec domain.Recommendation, entitled int) string {
	if rec.Direction == domain.DirectionRemove {
		return fmt.Sprintf("Fulfilled as ordered in %d of %d orders; removing it would turn about %.0f of %d orders into substitutions (%+.2fpp).",
			rec.SubstitutionEvents, rec.QualifyingOrders, rec.EstimatedRecovered, entitled, rec.PredictedCBDelta)
	}
	return fmt.Sprintf("Ordered in %d orders and substituted in %d (%.1f%%); stocking it could recover about %.0f of %d orders (%+.2fpp).",
		rec.QualifyingOrders, rec.SubstitutionEvents, 100*rec.SubstitutionRateBaseline,
		rec.EstimatedRecovered, entitled, rec.PredictedCBDelta)
}
