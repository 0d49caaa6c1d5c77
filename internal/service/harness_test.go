package service

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/depotcb/cbagent/internal/domain"
	"github.com/depotcb/cbagent/internal/impact"
	"github.com/depotcb/cbagent/internal/importer"
	"github.com/depotcb/cbagent/internal/planner"
	"github.com/depotcb/cbagent/internal/repository"
	"github.com/depotcb/cbagent/internal/rootcause"
	"github.com/depotcb/cbagent/internal/testutil"
)

type recordingObserver struct {
	mu     sync.Mutex
	events []UseCaseEvent
}

func (r *recordingObserver) ObserveUseCase(_ context.Context, e UseCaseEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recordingObserver) names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, e := range r.events {
		out[i] = e.Name
	}
	return out
}

type harness struct {
	db        *sql.DB
	store     *repository.SQLStore
	loader    *repository.Loader
	obs       *recordingObserver
	defaults  Defaults
	imports   ImportService
	recommend RecommendService
	explain   ExplainService
	dashboard DashboardService
	ask       AskService
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	database := testutil.NewTestDB(t)
	store := repository.NewSQLStore(database, planner.DialectSQLite)
	loader, err := repository.NewLoader(store, planner.DefaultTables(), nil)
	require.NoError(t, err)

	h := &harness{
		db:       database,
		store:    store,
		loader:   loader,
		obs:      &recordingObserver{},
		defaults: DefaultDefaults(),
	}
	h.defaults.DepotID = "7634"
	h.imports = NewImportService(testutil.NewTestUoW(database), nil, h.obs)
	h.recommend = NewRecommendService(loader, impact.DefaultConfig(), h.defaults, h.obs)
	h.explain = NewExplainService(store, loader, rootcause.DefaultThresholds(), h.defaults, h.obs)
	h.dashboard = NewDashboardService(loader, h.defaults, h.obs)
	h.ask = NewAskService(store, loader.Renderer(), h.explain, h.recommend, h.defaults, h.obs)
	return h
}

var (
	baselineRange   = testutil.Range("2025-06-01", "2025-06-07")
	comparisonRange = testutil.Range("2025-06-08", "2025-06-14")
	scenarioNow     = time.Date(2025, 6, 14, 18, 0, 0, 0, time.UTC)
)

// scenarioSnapshot has a baseline week at 72.0% (720/1000 a day) and a
// comparison week at 68.0% (714/1050 a day). The comparison week has 20
// orders: unstocked X in 12 of them (substituted in 9), stocked A in 8.
func scenarioSnapshot() *importer.Snapshot {
	snap := &importer.Snapshot{ID: "scenario", Source: "test"}
	snap.Metrics = append(snap.Metrics,
		testutil.MetricWindow("7634", baselineRange, testutil.WithCatchment(1200), testutil.WithCounts(1000, 720))...)
	snap.Metrics = append(snap.Metrics,
		testutil.MetricWindow("7634", comparisonRange, testutil.WithCatchment(1200), testutil.WithCounts(1050, 714))...)

	for i := 0; i < 12; i++ {
		opts := []testutil.OrderOption{testutil.WithOrderID(fmt.Sprintf("o%02d", i)), testutil.WithOrderDate("2025-06-10")}
		switch {
		case i < 6:
			opts = append(opts, testutil.SubstitutedBy("Y"))
		case i < 9:
			opts = append(opts, testutil.SubstitutedBy("Z"))
		}
		snap.Orders = append(snap.Orders, testutil.NewOrderLine("7634", "X", opts...))
	}
	for i := 12; i < 20; i++ {
		snap.Orders = append(snap.Orders, testutil.NewOrderLine("7634", "A",
			testutil.WithOrderID(fmt.Sprintf("o%02d", i)), testutil.WithOrderDate("2025-06-10")))
	}
	snap.Assortment = []domain.AssortmentRow{
		testutil.NewAssortmentRow("7634", "A", true),
		testutil.NewAssortmentRow("7634", "X", false),
	}
	return snap
}

func (h *harness) seed(t *testing.T) {
	t.Helper()
	_, err := h.imports.ImportSnapshot(context.Background(), scenarioSnapshot())
	require.NoError(t, err)
}
