package service

import (
	"context"
	"fmt"
	"time"

	"github.com/depotcb/cbagent/internal/app"
	"github.com/depotcb/cbagent/internal/contract"
	"github.com/depotcb/cbagent/internal/domain"
	"github.com/depotcb/cbagent/internal/repository"
)

type dashboardService struct {
	loader   repository.SnapshotLoader
	defaults Defaults
	observer UseCaseObserver
}

func NewDashboardService(loader repository.SnapshotLoader, defaults Defaults, observers ...UseCaseObserver) DashboardService {
	return &dashboardService{
		loader:   loader,
		defaults: defaults,
		observer: useCaseObserverOrNoop(observers),
	}
}

func (s *dashboardService) Summary(ctx context.Context, req contract.DashboardRequest) (resp *contract.DashboardResponse, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{}
	defer func() { observe(ctx, s.observer, "dashboard", startedAt, fields, err) }()

	depot, err := resolveDepot(req.DepotID, s.defaults.DepotID)
	if err != nil {
		return nil, err
	}
	rng, err := resolveRange(req.DateRange, req.LookbackDays, s.defaults.LookbackDays, resolveNow(req.Now))
	if err != nil {
		return nil, err
	}
	fields["depot"] = depot
	fields["range"] = rng.String()

	rows, err := s.loader.Metrics(ctx, depot, rng)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, app.NewError(app.ErrInsufficientData, "no metrics for depot %s in %s", depot, rng)
	}

	resp = &contract.DashboardResponse{
		DepotID:   depot,
		DateRange: rng,
		Series:    rows,
		Summary:   domain.Summarize(rows),
	}
	if resp.Summary.Excluded > 0 {
		resp.Warnings = append(resp.Warnings,
			fmt.Sprintf("%s without entitled orders excluded from CB%%", pluralize(resp.Summary.Excluded, "day")))
	}
	if missing := rng.Days() - len(rows); missing > 0 {
		resp.Warnings = append(resp.Warnings, pluralize(missing, "day")+" missing from the store")
	}
	fields["rows"] = len(rows)
	return resp, nil
}
