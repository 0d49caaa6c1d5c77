package service

import (
	"context"
	"time"

	"github.com/depotcb/cbagent/internal/app"
	"github.com/depotcb/cbagent/internal/contract"
	"github.com/depotcb/cbagent/internal/domain"
	"github.com/depotcb/cbagent/internal/impact"
	"github.com/depotcb/cbagent/internal/repository"
)

type recommendService struct {
	loader   repository.SnapshotLoader
	impact   impact.Config
	defaults Defaults
	observer UseCaseObserver
}

func NewRecommendService(
	loader repository.SnapshotLoader,
	cfg impact.Config,
	defaults Defaults,
	observers ...UseCaseObserver,
) RecommendService {
	return &recommendService{
		loader:   loader,
		impact:   cfg,
		defaults: defaults,
		observer: useCaseObserverOrNoop(observers),
	}
}

func (s *recommendService) Recommend(ctx context.Context, req contract.RecommendRequest) (resp *contract.RecommendResponse, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{}
	defer func() { observe(ctx, s.observer, "recommend", startedAt, fields, err) }()

	depot, err := resolveDepot(req.DepotID, s.defaults.DepotID)
	if err != nil {
		return nil, err
	}
	now := resolveNow(req.Now)
	rng, err := resolveRange(req.DateRange, req.LookbackDays, s.defaults.LookbackDays, now)
	if err != nil {
		return nil, err
	}
	topN := domain.Positive(req.TopN, s.defaults.TopN)
	fields["depot"] = depot
	fields["range"] = rng.String()

	resp, err = s.recommend(ctx, s.loader, depot, rng, topN, req)
	if err != nil {
		return nil, err
	}
	fields["run_id"] = resp.RunID
	fields["candidates"] = resp.CandidateCount
	fields["recommendations"] = len(resp.Recommendations)
	return resp, nil
}

// recommend runs against loader so callers can bind it to a snapshot.
func (s *recommendService) recommend(
	ctx context.Context,
	loader repository.SnapshotLoader,
	depot string,
	rng domain.DateRange,
	topN int,
	req contract.RecommendRequest,
) (*contract.RecommendResponse, error) {
	orders, err := loader.Orders(ctx, depot, rng)
	if err != nil {
		return nil, err
	}
	assortment, err := loader.Assortment(ctx, depot, rng.End)
	if err != nil {
		return nil, err
	}
	metrics, err := loader.Metrics(ctx, depot, rng)
	if err != nil {
		return nil, err
	}

	resp := &contract.RecommendResponse{
		RunID:       newRunID(),
		GeneratedAt: time.Now().UTC(),
		DepotID:     depot,
		DateRange:   rng,
		CurrentCB:   domain.Summarize(metrics).PooledCB,
	}
	if len(orders) == 0 {
		return nil, app.NewError(app.ErrInsufficientData,
			"no order details for depot %s in %s", depot, rng)
	}

	candidates := req.CandidateItems
	if len(candidates) == 0 {
		minOrders := domain.Positive(req.MinOrderFrequency, s.defaults.MinOrderFrequency)
		candidates = impact.DiscoverCandidates(orders, assortment, minOrders, s.defaults.AddItemLimit)
		if len(candidates) == 0 {
			resp.Warnings = append(resp.Warnings, "no unstocked items reach the minimum order frequency")
			return resp, nil
		}
	}

	cfg := s.impact
	if req.CaptureRate > 0 {
		cfg.CaptureRate = req.CaptureRate
	}
	ranking, err := impact.NewRanker(impact.NewSimulator(cfg)).Rank(candidates, orders, assortment, topN)
	if err != nil {
		return nil, err
	}

	resp.CandidateCount = ranking.Considered
	resp.ExcludedCount = len(ranking.Excluded)
	resp.Recommendations = ranking.Recommendations
	resp.TotalPredictedDelta = ranking.TotalDelta
	resp.TotalRecovered = ranking.TotalRecovered
	if resp.ExcludedCount > 0 {
		resp.Warnings = append(resp.Warnings, pluralize(resp.ExcludedCount, "candidate")+" had no qualifying orders")
	}
	if resp.CurrentCB == nil {
		resp.Warnings = append(resp.Warnings, "current CB% undefined: no entitled orders in range")
	}
	return resp, nil
}
