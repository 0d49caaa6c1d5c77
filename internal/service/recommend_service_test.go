package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/depotcb/cbagent/internal/app"
	"github.com/depotcb/cbagent/internal/contract"
	"github.com/depotcb/cbagent/internal/domain"
	"github.com/depotcb/cbagent/internal/impact"
)

func TestRecommend_DiscoversUnstockedItems(t *testing.T) {
	h := newHarness(t)
	h.seed(t)

	req := contract.NewRecommendRequest("", 5)
	req.DateRange = &comparisonRange
	resp, err := h.recommend.Recommend(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, "7634", resp.DepotID)
	assert.Equal(t, 1, resp.CandidateCount)
	require.Len(t, resp.Recommendations, 1)
	rec := resp.Recommendations[0]
	assert.Equal(t, "X", rec.ItemID)
	assert.Equal(t, domain.DirectionAdd, rec.Direction)
	assert.InDelta(t, 45.0, rec.PredictedCBDelta, 1e-9)
	assert.InDelta(t, 45.0, resp.TotalPredictedDelta, 1e-9)
	require.NotNil(t, resp.CurrentCB)
	assert.InDelta(t, 68.0, *resp.CurrentCB, 1e-9)
}

func TestRecommend_ExplicitCandidates(t *testing.T) {
	h := newHarness(t)
	h.seed(t)

	req := contract.NewRecommendRequest("7634", 10)
	req.DateRange = &comparisonRange
	req.CandidateItems = []string{"A", "X", "X", "NOPE"}
	resp, err := h.recommend.Recommend(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, 3, resp.CandidateCount)
	assert.Equal(t, 1, resp.ExcludedCount)
	require.Len(t, resp.Recommendations, 2)
	assert.Equal(t, "X", resp.Recommendations[0].ItemID)
	assert.Equal(t, "A", resp.Recommendations[1].ItemID)
	assert.Equal(t, domain.DirectionRemove, resp.Recommendations[1].Direction)
	assert.Contains(t, resp.Warnings, "1 candidate had no qualifying orders")
}

func TestRecommend_CaptureRateOverride(t *testing.T) {
	h := newHarness(t)
	h.seed(t)

	req := contract.NewRecommendRequest("7634", 1)
	req.DateRange = &comparisonRange
	req.CaptureRate = 0.5
	resp, err := h.recommend.Recommend(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, resp.Recommendations, 1)
	assert.InDelta(t, 22.5, resp.Recommendations[0].PredictedCBDelta, 1e-9)
}

func TestRecommend_NoOrders(t *testing.T) {
	h := newHarness(t)
	h.seed(t)

	req := contract.NewRecommendRequest("7634", 3)
	req.DateRange = &baselineRange
	_, err := h.recommend.Recommend(context.Background(), req)
	require.Error(t, err)
	assert.True(t, app.IsCode(err, app.ErrInsufficientData))
}

func TestRecommend_RequiresDepot(t *testing.T) {
	h := newHarness(t)
	svc := NewRecommendService(h.loader, impact.DefaultConfig(), DefaultDefaults())
	_, err := svc.Recommend(context.Background(), contract.NewRecommendRequest("", 3))
	require.Error(t, err)
	assert.True(t, app.IsCode(err, app.ErrInvalidArgument))
}
