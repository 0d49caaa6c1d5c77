package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/depotcb/cbagent/internal/app"
	"github.com/depotcb/cbagent/internal/domain"
	"github.com/depotcb/cbagent/internal/impact"
	"github.com/depotcb/cbagent/internal/importer"
	"github.com/depotcb/cbagent/internal/planner"
	"github.com/depotcb/cbagent/internal/repository"
	"github.com/depotcb/cbagent/internal/rootcause"
	"github.com/depotcb/cbagent/internal/service"
	"github.com/depotcb/cbagent/internal/testutil"
)

var ansi = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

var cliNow = time.Date(2025, 6, 14, 9, 0, 0, 0, time.UTC)

// testApp wires a full App backed by an in-memory DB for CLI integration tests.
func testApp(t *testing.T) *App {
	t.Helper()
	database := testutil.NewTestDB(t)
	store := repository.NewSQLStore(database, planner.DialectSQLite)
	loader, err := repository.NewLoader(store, planner.DefaultTables(), nil)
	require.NoError(t, err)

	defaults := service.DefaultDefaults()
	defaults.DepotID = "7634"
	recommend := service.NewRecommendService(loader, impact.DefaultConfig(), defaults)
	explain := service.NewExplainService(store, loader, rootcause.DefaultThresholds(), defaults)

	return &App{
		Ask:       service.NewAskService(store, loader.Renderer(), explain, recommend, defaults),
		Recommend: recommend,
		Explain:   explain,
		Dashboard: service.NewDashboardService(loader, defaults),
		Import:    service.NewImportService(testutil.NewTestUoW(database), nil),
		Now:       func() time.Time { return cliNow },
	}
}

// seedWeeks imports a 72% week followed by a 68% week with one
// frequently substituted unstocked item.
func seedWeeks(t *testing.T, a *App) {
	t.Helper()
	snap := &importer.Snapshot{ID: "cli", Source: "test"}
	snap.Metrics = append(snap.Metrics, testutil.MetricWindow("7634",
		testutil.Range("2025-06-01", "2025-06-07"), testutil.WithCatchment(1200), testutil.WithCounts(1000, 720))...)
	snap.Metrics = append(snap.Metrics, testutil.MetricWindow("7634",
		testutil.Range("2025-06-08", "2025-06-14"), testutil.WithCatchment(1200), testutil.WithCounts(1050, 714))...)
	for i := 0; i < 10; i++ {
		opts := []testutil.OrderOption{testutil.WithOrderID(fmt.Sprintf("c%02d", i)), testutil.WithOrderDate("2025-06-10")}
		if i < 5 {
			opts = append(opts, testutil.SubstitutedBy("Y"))
		}
		snap.Orders = append(snap.Orders, testutil.NewOrderLine("7634", "X", opts...))
	}
	snap.Assortment = []domain.AssortmentRow{testutil.NewAssortmentRow("7634", "X", false)}

	_, err := a.Import.ImportSnapshot(context.Background(), snap)
	require.NoError(t, err)
}

// executeCmd runs a cobra command and captures stdout/stderr.
func executeCmd(t *testing.T, a *App, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd(a)
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	err := root.Execute()
	return ansi.ReplaceAllString(buf.String(), ""), err
}

func TestAskCmd_DropExplanation(t *testing.T) {
	a := testApp(t)
	seedWeeks(t, a)

	out, err := executeCmd(t, a, "ask", "Why did CB% drop for depot 7634 from 2025-06-08 to 2025-06-14?")
	require.NoError(t, err)
	assert.Contains(t, out, "drop_explanation")
	assert.Contains(t, out, "ROOT CAUSE")
	assert.Contains(t, out, "-4.00pp")
	assert.Contains(t, out, "FULFILLMENT ISSUE")
}

func TestAskCmd_DryRun(t *testing.T) {
	a := testApp(t)
	out, err := executeCmd(t, a, "ask", "--dry-run", "cb", "trend", "last", "7", "days")
	require.NoError(t, err)
	assert.Contains(t, out, "trend")
	assert.Contains(t, out, "cb_daily_metrics")
	assert.Contains(t, out, "2025-06-07")
}

func TestAskCmd_RequiresQuestionWhenNotInteractive(t *testing.T) {
	a := testApp(t)
	_, err := executeCmd(t, a, "ask")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "a question is required")
}

func TestAskCmd_PromptsOnTerminal(t *testing.T) {
	a := testApp(t)
	a.IsInteractive = func() bool { return true }
	a.PromptQuestion = func(v *string) error {
		*v = "cb trend for depot 7634 this week"
		return nil
	}
	out, err := executeCmd(t, a, "ask", "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, out, "trend")

	a.PromptQuestion = func(*string) error { return errors.New("user aborted") }
	_, err = executeCmd(t, a, "ask")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "user aborted")
}

func TestAskCmd_UnparseableMessage(t *testing.T) {
	a := testApp(t)
	_, err := executeCmd(t, a, "ask", "?!")
	require.Error(t, err)
	assert.True(t, app.IsCode(err, app.ErrUnparseableQuestion))
	assert.Contains(t, UserMessage(err), "question could not be understood")
}

func TestRecommendCmd(t *testing.T) {
	a := testApp(t)
	seedWeeks(t, a)

	out, err := executeCmd(t, a, "recommend", "--from", "2025-06-08", "--to", "2025-06-14", "--top", "3")
	require.NoError(t, err)
	assert.Contains(t, out, "RECOMMENDATIONS")
	assert.Contains(t, out, "X")
	assert.Contains(t, out, "+50.00pp")
	assert.Contains(t, out, "5/10")
}

func TestRecommendCmd_HalfRange(t *testing.T) {
	a := testApp(t)
	_, err := executeCmd(t, a, "recommend", "--from", "2025-06-08")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--from and --to must be given together")
}

func TestExplainCmd(t *testing.T) {
	a := testApp(t)
	seedWeeks(t, a)

	out, err := executeCmd(t, a, "explain", "--comparison", "2025-06-08:2025-06-14")
	require.NoError(t, err)
	assert.Contains(t, out, "72.00%")
	assert.Contains(t, out, "68.00%")
	assert.Contains(t, out, "ENTITLEMENT")
	assert.Contains(t, out, "table version 1")
}

func TestExplainCmd_Flags(t *testing.T) {
	a := testApp(t)
	_, err := executeCmd(t, a, "explain")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "comparison")

	_, err = executeCmd(t, a, "explain", "--comparison", "2025-06-08")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected FROM:TO")
}

func TestDashboardCmd(t *testing.T) {
	a := testApp(t)
	seedWeeks(t, a)

	out, err := executeCmd(t, a, "dashboard", "--days", "13")
	require.NoError(t, err)
	assert.Contains(t, out, "CB% DASHBOARD")
	assert.Contains(t, out, "2025-06-01")
	assert.Contains(t, out, "2025-06-14")
}

func TestDashboardCmd_NoData(t *testing.T) {
	a := testApp(t)
	_, err := executeCmd(t, a, "dashboard")
	require.Error(t, err)
	assert.Contains(t, UserMessage(err), "no data for this selection")
}

func TestImportCmd(t *testing.T) {
	a := testApp(t)
	path := filepath.Join(t.TempDir(), "snap.json")
	body := `{"defaults": {"depot_id": "7634"}, "metrics": [
		{"date": "2025-06-10", "catchment_count": 100, "entitled_count": 80, "attained_count": 60}]}`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	out, err := executeCmd(t, a, "import", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Imported snapshot")
	assert.Contains(t, out, "1 metric rows")
	assert.Contains(t, out, "table version 1")
}

func TestImportCmd_WithoutLocalStore(t *testing.T) {
	a := testApp(t)
	a.Import = nil
	_, err := executeCmd(t, a, "import", "x.json")
	require.Error(t, err)
}

func TestDateRangeValue(t *testing.T) {
	v := newDateRangeValue()
	require.NoError(t, v.Set("2025-06-01:2025-06-07"))
	assert.Equal(t, "2025-06-01..2025-06-07", v.String())
	require.NoError(t, v.Set("2025-06-01..2025-06-03"))
	assert.Equal(t, 3, v.Range().Days())
	assert.Error(t, v.Set("2025-06-07:2025-06-01"))
	assert.Error(t, v.Set("june"))
	assert.Equal(t, "range", v.Type())
}

func TestUserMessage(t *testing.T) {
	assert.Empty(t, UserMessage(nil))
	assert.Equal(t, "plain", UserMessage(errors.New("plain")))
	err := fmt.Errorf("ask: %w", app.NewError(app.ErrStoreUnavailable, "dial tcp: refused"))
	assert.Equal(t, "backing store unreachable: dial tcp: refused", UserMessage(err))
}
