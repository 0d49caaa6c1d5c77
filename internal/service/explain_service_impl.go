package service

import (
	"context"
	"time"

	"github.com/depotcb/cbagent/internal/app"
	"github.com/depotcb/cbagent/internal/contract"
	"github.com/depotcb/cbagent/internal/domain"
	"github.com/depotcb/cbagent/internal/impact"
	"github.com/depotcb/cbagent/internal/repository"
	"github.com/depotcb/cbagent/internal/rootcause"
)

type explainService struct {
	snapshots  repository.Snapshotter
	loader     repository.SnapshotLoader
	thresholds rootcause.Thresholds
	defaults   Defaults
	observer   UseCaseObserver
}

// NewExplainService reads both windows inside one snapshot of snapshots.
// A nil snapshots reads through loader directly.
func NewExplainService(
	snapshots repository.Snapshotter,
	loader repository.SnapshotLoader,
	thresholds rootcause.Thresholds,
	defaults Defaults,
	observers ...UseCaseObserver,
) ExplainService {
	return &explainService{
		snapshots:  snapshots,
		loader:     loader,
		thresholds: thresholds,
		defaults:   defaults,
		observer:   useCaseObserverOrNoop(observers),
	}
}

func (s *explainService) Explain(ctx context.Context, req contract.ExplainRequest) (resp *contract.ExplainResponse, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{}
	defer func() { observe(ctx, s.observer, "explain", startedAt, fields, err) }()

	depot, err := resolveDepot(req.DepotID, s.defaults.DepotID)
	if err != nil {
		return nil, err
	}
	if err := req.Comparison.Validate(); err != nil {
		return nil, app.WrapError(app.ErrInvalidArgument, err, "comparison window")
	}
	baseline := req.Comparison.Preceding()
	if req.Baseline != nil {
		if err := req.Baseline.Validate(); err != nil {
			return nil, app.WrapError(app.ErrInvalidArgument, err, "baseline window")
		}
		baseline = *req.Baseline
	}
	fields["depot"] = depot
	fields["baseline"] = baseline.String()
	fields["comparison"] = req.Comparison.String()

	// Probe the version outside the snapshot so a store without the
	// version table never fails inside the transaction.
	if _, err := s.loader.TableVersion(ctx); err != nil {
		return nil, err
	}

	var b, c rootcause.Window
	var version int64
	load := func(ctx context.Context, l repository.SnapshotLoader) error {
		var err error
		if version, err = l.TableVersion(ctx); err != nil {
			return err
		}
		if b, err = loadWindow(ctx, l, depot, baseline); err != nil {
			return err
		}
		c, err = loadWindow(ctx, l, depot, req.Comparison)
		return err
	}
	if s.snapshots == nil {
		err = load(ctx, s.loader)
	} else {
		err = s.snapshots.WithinSnapshot(ctx, func(ctx context.Context, store repository.MetricsStore) error {
			return load(ctx, s.loader.On(store))
		})
	}
	if err != nil {
		return nil, err
	}

	res, err := rootcause.AnalyzeWindows(b, c)
	if err != nil {
		return nil, err
	}
	missing := len(impact.DiscoverCandidates(c.Orders, c.Assortment,
		domain.Positive(s.defaults.MinOrderFrequency, 1), 0))

	bcb, ccb := res.Baseline.CB(), res.Comparison.CB()
	resp = &contract.ExplainResponse{
		RunID:        newRunID(),
		GeneratedAt:  time.Now().UTC(),
		DepotID:      depot,
		Baseline:     baseline,
		Comparison:   req.Comparison,
		BaselineCB:   &bcb,
		ComparisonCB: &ccb,
		TotalDelta:   res.TotalDelta,
		Factors:      res.Factors,
		Diagnosis:    rootcause.Diagnose(res, missing, s.thresholds),
		TableVersion: version,
	}
	fields["run_id"] = resp.RunID
	fields["total_delta"] = resp.TotalDelta
	fields["primary_cause"] = string(resp.Diagnosis.PrimaryCause)
	return resp, nil
}

func loadWindow(ctx context.Context, l repository.SnapshotLoader, depot string, rng domain.DateRange) (rootcause.Window, error) {
	w := rootcause.Window{Range: rng}
	var err error
	if w.Metrics, err = l.Metrics(ctx, depot, rng); err != nil {
		return w, err
	}
	if w.Orders, err = l.Orders(ctx, depot, rng); err != nil {
		return w, err
	}
	w.Assortment, err = l.Assortment(ctx, depot, rng.End)
	return w, err
}
