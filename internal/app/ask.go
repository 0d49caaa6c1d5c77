package app

import (
	"time"

	"github.com/depotcb/cbagent/internal/domain"
)

// Row is one decoded result row keyed by column name.
type Row = map[string]any

type AskRequest struct {
	Question     string
	DepotID      string
	DateRange    *domain.DateRange
	LookbackDays int
	Now          *time.Time
	DryRun       bool
}

func NewAskRequest(question string) AskRequest {
	return AskRequest{Question: question}
}

type AskResponse struct {
	RunID       string
	GeneratedAt time.Time
	Plan        domain.QueryPlan
	Query       domain.Query
	Columns     []string
	Rows        []Row

	// Set for drop-explanation questions.
	RootCause *ExplainResponse
	// Set for missing-items questions.
	Recommendations *RecommendResponse

	Warnings []string
}
