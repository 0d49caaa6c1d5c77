package app

import (
	"time"

	"github.com/depotcb/cbagent/internal/domain"
)

type RecommendRequest struct {
	DepotID      string
	DateRange    *domain.DateRange
	LookbackDays int
	Now          *time.Time
	TopN         int

	// CandidateItems restricts simulation to these items. When empty,
	// candidates are discovered from order history.
	CandidateItems    []string
	MinOrderFrequency int
	CaptureRate       float64
}

// NewRecommendRequest returns a request for the top n items of a depot,
// leaving the remaining settings to configuration defaults.
func NewRecommendRequest(depotID string, topN int) RecommendRequest {
	return RecommendRequest{DepotID: depotID, TopN: topN}
}

type RecommendResponse struct {
	RunID       string
	GeneratedAt time.Time
	DepotID     string
	DateRange   domain.DateRange
	CurrentCB   *float64

	CandidateCount      int
	ExcludedCount       int
	Recommendations     []domain.Recommendation
	TotalPredictedDelta float64
	TotalRecovered      float64
	Warnings            []string
}
