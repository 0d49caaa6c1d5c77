package service

import "github.com/depotcb/cbagent/internal/app"

// Service interfaces are the app ports; the CLI depends only on these.
type (
	AskService       = app.AskUseCase
	RecommendService = app.RecommendUseCase
	ExplainService   = app.ExplainUseCase
	DashboardService = app.DashboardUseCase
	ImportService    = app.ImportUseCase
)
