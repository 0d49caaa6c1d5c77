package planner

import (
	"fmt"
	"strings"
	"time"

	"github.com/depotcb/cbagent/internal/app"
	"github.com/depotcb/cbagent/internal/domain"
)

const (
	DefaultLookbackDays      = 30
	DefaultMinOrderFrequency = 5
	DefaultMissingItemsLimit = 100
)

// Context carries per-call defaults for planning. Nothing in the planner
// reads process state; a zero Now means the wall clock.
type Context struct {
	DepotID             string
	DateRange           *domain.DateRange
	DefaultLookbackDays int
	MinOrderFrequency   int
	Limit               int
	Now                 time.Time
}

// Planner turns questions into query plans using an ordered intent rule set.
type Planner struct {
	Rules []IntentRule
}

// New returns a Planner with the default intent rules.
func New() *Planner {
	return &Planner{Rules: DefaultIntentRules}
}

// Plan translates a question into a structured query plan.
func (p *Planner) Plan(text string, pc Context) (domain.QueryPlan, error) {
	q := parseQuestion(text)
	if len(q.words) == 0 {
		return domain.QueryPlan{}, app.NewError(app.ErrUnparseableQuestion, "question is empty")
	}

	depots := q.depots
	if len(depots) == 0 && pc.DepotID != "" {
		depots = []string{pc.DepotID}
	}
	if len(depots) == 0 {
		return domain.QueryPlan{}, app.NewError(app.ErrUnparseableQuestion,
			"no depot in question %q and no default depot configured", text)
	}

	rng, named, err := resolveRange(q, pc)
	if err != nil {
		return domain.QueryPlan{}, err
	}

	rules := p.Rules
	if len(rules) == 0 {
		rules = DefaultIntentRules
	}
	plan := domain.QueryPlan{
		Question:  text,
		Intent:    classify(rules, q),
		Metric:    resolveMetric(q),
		Source:    domain.SourceMetrics,
		DepotID:   depots[0],
		DateRange: rng,
		Filters:   map[string]domain.Predicate{},
	}
	plan.Filters["depot_id"] = domain.Predicate{Op: domain.OpEq, Values: []any{plan.DepotID}}

	switch plan.Intent {
	case domain.IntentTrend:
		plan.GroupBy = []domain.Dimension{domain.GroupByDate}
	case domain.IntentComparison:
		if len(depots) >= 2 {
			plan.GroupBy = []domain.Dimension{domain.GroupByDepot}
			vals := make([]any, len(depots))
			for i, d := range depots {
				vals[i] = d
			}
			plan.Filters["depot_id"] = domain.Predicate{Op: domain.OpIn, Values: vals}
		} else {
			withBaseline(&plan, named)
		}
	case domain.IntentDropExplanation:
		withBaseline(&plan, named)
	case domain.IntentMissingItems:
		plan.Source = domain.SourceOrderDetails
		plan.GroupBy = []domain.Dimension{domain.GroupByItem}
		minFreq := domain.Positive(pc.MinOrderFrequency, DefaultMinOrderFrequency)
		plan.Filters["min_order_frequency"] = domain.Predicate{Op: domain.OpGte, Values: []any{minFreq}}
		plan.Limit = domain.Positive(pc.Limit, DefaultMissingItemsLimit)
	}

	start, end := plan.DateRange.Start, plan.DateRange.End
	if c := plan.ComparisonRange; c != nil {
		if c.Start.Before(start) {
			start = c.Start
		}
		if c.End.After(end) {
			end = c.End
		}
	}
	plan.Filters["date"] = domain.Predicate{
		Op:     domain.OpBetween,
		Values: []any{start.Format(domain.DateLayout), end.Format(domain.DateLayout)},
	}
	plan.Description = describe(plan, depots)
	return plan, nil
}

// Plan runs the default planner.
func Plan(text string, pc Context) (domain.QueryPlan, error) {
	return New().Plan(text, pc)
}

// withBaseline sets period grouping against a baseline window. When the
// question named two periods the later one is current and the other is the
// baseline; otherwise the baseline is the preceding window.
func withBaseline(plan *domain.QueryPlan, named []domain.DateRange) {
	if len(named) >= 2 {
		current, baseline := splitPeriods(named[0], named[1])
		plan.DateRange = current
		plan.ComparisonRange = &baseline
	} else {
		prev := plan.DateRange.Preceding()
		plan.ComparisonRange = &prev
	}
	plan.GroupBy = []domain.Dimension{domain.GroupByPeriod}
}

// resolveRange applies question phrase, then context range, then lookback.
// The second result lists every period the question named.
func resolveRange(q question, pc Context) (domain.DateRange, []domain.DateRange, error) {
	now := pc.Now
	if now.IsZero() {
		now = time.Now()
	}
	today := domain.Day(now)

	if named := resolveDateRanges(q.lower, today); len(named) > 0 {
		return named[0], named, nil
	}
	if pc.DateRange != nil {
		if err := pc.DateRange.Validate(); err != nil {
			return domain.DateRange{}, nil, app.WrapError(app.ErrInvalidArgument, err, "context date range")
		}
		return *pc.DateRange, nil, nil
	}
	return LookbackRange(today, pc.DefaultLookbackDays), nil, nil
}

// LookbackRange is [today-days, today]. A non-positive days uses
// DefaultLookbackDays.
func LookbackRange(now time.Time, days int) domain.DateRange {
	today := domain.Day(now)
	days = domain.Positive(days, DefaultLookbackDays)
	return domain.NewDateRange(today.AddDate(0, 0, -days), today)
}

var metricLabel = map[domain.Metric]string{
	domain.MetricCBPercent: "CB%",
	domain.MetricCatchment: "catchment",
	domain.MetricEntitled:  "entitled orders",
	domain.MetricAttained:  "attained orders",
}

func describe(plan domain.QueryPlan, depots []string) string {
	label := metricLabel[plan.Metric]
	where := "depot " + plan.DepotID
	switch plan.Intent {
	case domain.IntentTrend:
		return fmt.Sprintf("%s trend for %s (%s, %d days)", label, where, plan.DateRange, plan.DateRange.Days())
	case domain.IntentComparison:
		if plan.Grouped(domain.GroupByDepot) {
			return fmt.Sprintf("%s compared across depots %s (%s)", label, strings.Join(depots, ", "), plan.DateRange)
		}
		return fmt.Sprintf("%s for %s, %s against %s", label, where, plan.DateRange, *plan.ComparisonRange)
	case domain.IntentDropExplanation:
		return fmt.Sprintf("%s change for %s, %s against %s", label, where, plan.DateRange, *plan.ComparisonRange)
	case domain.IntentMissingItems:
		return fmt.Sprintf("Items ordered at %s but not in assortment (%s)", where, plan.DateRange)
	default:
		return fmt.Sprintf("%s for %s (%s)", label, where, plan.DateRange)
	}
}
