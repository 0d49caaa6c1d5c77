package app

import (
	"context"

	"github.com/depotcb/cbagent/internal/importer"
)

type AskUseCase interface {
	Ask(ctx context.Context, req AskRequest) (*AskResponse, error)
}

type RecommendUseCase interface {
	Recommend(ctx context.Context, req RecommendRequest) (*RecommendResponse, error)
}

type ExplainUseCase interface {
	Explain(ctx context.Context, req ExplainRequest) (*ExplainResponse, error)
}

type DashboardUseCase interface {
	Summary(ctx context.Context, req DashboardRequest) (*DashboardResponse, error)
}

type ImportResult struct {
	SnapshotID     string
	TableVersion   int64
	MetricRows     int
	OrderRows      int
	AssortmentRows int
}

type ImportUseCase interface {
	Import(ctx context.Context, filePath string) (*ImportResult, error)
	ImportSnapshot(ctx context.Context, snap *importer.Snapshot) (*ImportResult, error)
}
