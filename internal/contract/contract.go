package contract

import "github.com/depotcb/cbagent/internal/app"

type ErrorCode = app.ErrorCode

const (
	ErrUnparseableQuestion ErrorCode = app.ErrUnparseableQuestion
	ErrInsufficientData    ErrorCode = app.ErrInsufficientData
	ErrInvalidArgument     ErrorCode = app.ErrInvalidArgument
	ErrIncomparableWindows ErrorCode = app.ErrIncomparableWindows
	ErrStoreUnavailable    ErrorCode = app.ErrStoreUnavailable
	ErrStoreQueryRejected  ErrorCode = app.ErrStoreQueryRejected
)

type AnalysisError = app.AnalysisError

func CodeOf(err error) ErrorCode {
	return app.CodeOf(err)
}

type Row = app.Row

type AskRequest = app.AskRequest

func NewAskRequest(question string) AskRequest {
	return app.NewAskRequest(question)
}

type AskResponse = app.AskResponse

type RecommendRequest = app.RecommendRequest

func NewRecommendRequest(depotID string, topN int) RecommendRequest {
	return app.NewRecommendRequest(depotID, topN)
}

type RecommendResponse = app.RecommendResponse

type ExplainRequest = app.ExplainRequest

type ExplainResponse = app.ExplainResponse

type DashboardRequest = app.DashboardRequest

type DashboardResponse = app.DashboardResponse

type ImportResult = app.ImportResult
