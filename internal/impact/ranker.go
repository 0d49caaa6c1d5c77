package impact

import (
	"sort"

	"github.com/depotcb/cbagent/internal/app"
	"github.com/depotcb/cbagent/internal/domain"
)

// Ranking is the outcome of one recommendation run.
type Ranking struct {
	Recommendations []domain.Recommendation
	Considered      int
	Excluded        []string
	TotalDelta      float64
	TotalRecovered  float64
}

// Ranker simulates candidate items and orders them by CB% impact.
type Ranker struct {
	sim *Simulator
}

// NewRanker returns a Ranker over sim.
func NewRanker(sim *Simulator) *Ranker {
	if sim == nil {
		sim = NewSimulator(DefaultConfig())
	}
	return &Ranker{sim: sim}
}

// Recommend returns the top n candidates by simulated impact.
func (r *Ranker) Recommend(candidates []string, rows []domain.OrderDetailRow, assortment []domain.AssortmentRow, topN int) ([]domain.Recommendation, error) {
	ranking, err := r.Rank(candidates, rows, assortment, topN)
	if err != nil {
		return nil, err
	}
	return ranking.Recommendations, nil
}

// Rank simulates every distinct candidate and keeps the top n. Candidates
// without qualifying orders are excluded; any other simulator error aborts.
func (r *Ranker) Rank(candidates []string, rows []domain.OrderDetailRow, assortment []domain.AssortmentRow, topN int) (Ranking, error) {
	if topN <= 0 {
		return Ranking{}, app.NewError(app.ErrInvalidArgument, "top_n must be positive, got %d", topN)
	}

	ids := uniqueSorted(candidates)
	idx := NewOrderIndex(rows)
	active := domain.ActiveItems(assortment)

	out := Ranking{Considered: len(ids)}
	recs := make([]domain.Recommendation, 0, len(ids))
	for _, id := range ids {
		rec, err := r.sim.simulate(id, idx, active)
		if app.IsCode(err, app.ErrInsufficientData) {
			out.Excluded = append(out.Excluded, id)
			continue
		}
		if err != nil {
			return Ranking{}, err
		}
		recs = append(recs, rec)
	}

	SortRecommendations(recs)
	if len(recs) > topN {
		recs = recs[:topN]
	}
	for _, rec := range recs {
		out.TotalDelta += rec.PredictedCBDelta
		out.TotalRecovered += rec.EstimatedRecovered
	}
	out.Recommendations = recs
	return out, nil
}

// SortRecommendations orders recommendations by:
// 1. Predicted CB% delta: higher first
// 2. Confidence: higher first
// 3. Item ID: lexical ascending
func SortRecommendations(recs []domain.Recommendation) {
	sort.SliceStable(recs, func(i, j int) bool {
		a, b := recs[i], recs[j]

		// 1. Delta
		if a.PredictedCBDelta != b.PredictedCBDelta {
			return a.PredictedCBDelta > b.PredictedCBDelta
		}

		// 2. Confidence
		if a.Confidence != b.Confidence {
			return a.Confidence > b.Confidence
		}

		// 3. Item ID
		return a.ItemID < b.ItemID
	})
}

func uniqueSorted(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
