package service

import (
	"context"
	"time"

	"github.com/depotcb/cbagent/internal/app"
	"github.com/depotcb/cbagent/internal/contract"
	"github.com/depotcb/cbagent/internal/domain"
	"github.com/depotcb/cbagent/internal/planner"
	"github.com/depotcb/cbagent/internal/repository"
)

type askService struct {
	planner   *planner.Planner
	renderer  planner.Renderer
	store     repository.MetricsStore
	explain   ExplainService
	recommend RecommendService
	defaults  Defaults
	observer  UseCaseObserver
}

// NewAskService answers questions against store. explain and recommend
// enrich drop-explanation and missing-items answers; either may be nil.
func NewAskService(
	store repository.MetricsStore,
	renderer planner.Renderer,
	explain ExplainService,
	recommend RecommendService,
	defaults Defaults,
	observers ...UseCaseObserver,
) AskService {
	return &askService{
		planner:   planner.New(),
		renderer:  renderer,
		store:     store,
		explain:   explain,
		recommend: recommend,
		defaults:  defaults,
		observer:  useCaseObserverOrNoop(observers),
	}
}

func (s *askService) Ask(ctx context.Context, req contract.AskRequest) (resp *contract.AskResponse, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"dry_run": req.DryRun}
	defer func() { observe(ctx, s.observer, "ask", startedAt, fields, err) }()

	now := resolveNow(req.Now)
	pc := planner.Context{
		DepotID:             domain.FirstSet(req.DepotID, s.defaults.DepotID),
		DateRange:           req.DateRange,
		DefaultLookbackDays: domain.Positive(req.LookbackDays, s.defaults.LookbackDays),
		MinOrderFrequency:   s.defaults.MinOrderFrequency,
		Now:                 now,
	}
	plan, err := s.planner.Plan(req.Question, pc)
	if err != nil {
		return nil, err
	}
	fields["depot"] = plan.DepotID
	fields["intent"] = string(plan.Intent)

	query, err := s.renderer.Render(plan)
	if err != nil {
		return nil, err
	}

	resp = &contract.AskResponse{
		RunID:       newRunID(),
		GeneratedAt: time.Now().UTC(),
		Plan:        plan,
		Query:       query,
	}
	fields["run_id"] = resp.RunID
	if req.DryRun {
		return resp, nil
	}

	rs, err := s.store.Fetch(ctx, query)
	if err != nil {
		return nil, err
	}
	resp.Columns = rs.Columns
	resp.Rows = rs.Rows
	fields["rows"] = len(rs.Rows)
	if len(rs.Rows) == 0 {
		resp.Warnings = append(resp.Warnings, "no rows for this selection")
	}

	switch plan.Intent {
	case domain.IntentDropExplanation:
		if s.explain == nil {
			break
		}
		rc, err := s.explain.Explain(ctx, contract.ExplainRequest{
			DepotID:    plan.DepotID,
			Comparison: plan.DateRange,
			Baseline:   plan.ComparisonRange,
		})
		if warn, err := enrichmentWarning("root cause", err); err != nil {
			return nil, err
		} else if warn != "" {
			resp.Warnings = append(resp.Warnings, warn)
		}
		resp.RootCause = rc

	case domain.IntentMissingItems:
		if s.recommend == nil {
			break
		}
		rng := plan.DateRange
		rec := contract.NewRecommendRequest(plan.DepotID, 0)
		rec.DateRange = &rng
		rec.Now = &now
		if p, ok := plan.Filters["min_order_frequency"]; ok && len(p.Values) == 1 {
			if n, ok := p.Values[0].(int); ok {
				rec.MinOrderFrequency = n
			}
		}
		recs, err := s.recommend.Recommend(ctx, rec)
		if warn, err := enrichmentWarning("recommendations", err); err != nil {
			return nil, err
		} else if warn != "" {
			resp.Warnings = append(resp.Warnings, warn)
		}
		resp.Recommendations = recs
	}
	return resp, nil
}

// enrichmentWarning downgrades missing data in a follow-up analysis to a
// warning. Other failures are returned.
func enrichmentWarning(what string, err error) (string, error) {
	switch {
	case err == nil:
		return "", nil
	case app.IsCode(err, app.ErrInsufficientData):
		return what + " skipped: " + err.Error(), nil
	}
	return "", err
}
