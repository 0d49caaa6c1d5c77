package app

import (
	"time"

	"github.com/depotcb/cbagent/internal/domain"
)

type ExplainRequest struct {
	DepotID    string
	Comparison domain.DateRange
	// Baseline defaults to the equally long window before Comparison.
	Baseline *domain.DateRange
}

type ExplainResponse struct {
	RunID        string
	GeneratedAt  time.Time
	DepotID      string
	Baseline     domain.DateRange
	Comparison   domain.DateRange
	BaselineCB   *float64
	ComparisonCB *float64
	TotalDelta   float64
	Factors      []domain.RootCauseFactor
	Diagnosis    domain.Diagnosis
	TableVersion int64
}

type DashboardRequest struct {
	DepotID      string
	DateRange    *domain.DateRange
	LookbackDays int
	Now          *time.Time
}

type DashboardResponse struct {
	DepotID   string
	DateRange domain.DateRange
	Series    []domain.MetricRow
	Summary   domain.MetricSummary
	Warnings  []string
}
