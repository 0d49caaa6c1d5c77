package planner

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/depotcb/cbagent/internal/app"
	"github.com/depotcb/cbagent/internal/domain"
)

// Dialect names the SQL flavour a query is rendered for.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectMySQL    Dialect = "mysql"
	DialectPostgres Dialect = "postgres"
)

// Tables names the physical tables a Renderer targets.
type Tables struct {
	Metrics    string
	Orders     string
	Assortment string
}

func DefaultTables() Tables {
	return Tables{
		Metrics:    "cb_daily_metrics",
		Orders:     "order_details",
		Assortment: "assortment",
	}
}

var identifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)*$`)

// Renderer turns plans into dialect-specific query text. It holds no state
// beyond its configuration, so equal plans always render equal queries.
type Renderer struct {
	Dialect Dialect
	Tables  Tables
}

// NewRenderer validates the dialect and table identifiers.
func NewRenderer(d Dialect, t Tables) (Renderer, error) {
	switch d {
	case DialectSQLite, DialectMySQL, DialectPostgres:
	default:
		return Renderer{}, app.NewError(app.ErrInvalidArgument, "unknown dialect %q", d)
	}
	for _, name := range []string{t.Metrics, t.Orders, t.Assortment} {
		if !identifier.MatchString(name) {
			return Renderer{}, app.NewError(app.ErrInvalidArgument, "invalid table name %q", name)
		}
	}
	return Renderer{Dialect: d, Tables: t}, nil
}

// builder accumulates query text and positional arguments in text order.
type builder struct {
	dialect Dialect
	sb      strings.Builder
	args    []any
}

func (b *builder) write(parts ...string) {
	for _, p := range parts {
		b.sb.WriteString(p)
	}
}

func (b *builder) arg(v any) string {
	b.args = append(b.args, v)
	if b.dialect == DialectPostgres {
		return "$" + strconv.Itoa(len(b.args))
	}
	return "?"
}

func (b *builder) query() domain.Query {
	return domain.Query{Text: b.sb.String(), Args: b.args}
}

// Columns of the metrics and order-detail tables.
const (
	colDepot       = "depot_id"
	colMetricDate  = "metric_date"
	colOrderDate   = "order_date"
	colCatchment   = "catchment_count"
	colEntitled    = "entitled_count"
	colAttained    = "attained_count"
	colCBPercent   = "cb_percent"
	colMetricValue = "metric_value"
)

const cbExpr = "CASE WHEN SUM(entitled_count) > 0 THEN 100.0 * SUM(attained_count) / SUM(entitled_count) END"

func metricExpr(m domain.Metric) (string, error) {
	switch m {
	case domain.MetricCBPercent:
		return cbExpr, nil
	case domain.MetricCatchment:
		return "SUM(catchment_count)", nil
	case domain.MetricEntitled:
		return "SUM(entitled_count)", nil
	case domain.MetricAttained:
		return "SUM(attained_count)", nil
	}
	return "", app.NewError(app.ErrInvalidArgument, "unknown metric %q", m)
}

// Render produces the query for a plan.
func (r Renderer) Render(plan domain.QueryPlan) (domain.Query, error) {
	switch plan.Source {
	case domain.SourceMetrics, "":
		return r.renderMetrics(plan)
	case domain.SourceOrderDetails:
		return r.renderMissingItems(plan)
	}
	return domain.Query{}, app.NewError(app.ErrInvalidArgument, "unknown source %q", plan.Source)
}

func (r Renderer) renderMetrics(plan domain.QueryPlan) (domain.Query, error) {
	value, err := metricExpr(plan.Metric)
	if err != nil {
		return domain.Query{}, err
	}
	b := &builder{dialect: r.Dialect}

	var groupCols []string
	b.write("SELECT ")
	for _, g := range plan.GroupBy {
		switch g {
		case domain.GroupByDate:
			b.write(colMetricDate, ", ")
			groupCols = append(groupCols, colMetricDate)
		case domain.GroupByDepot:
			b.write(colDepot, ", ")
			groupCols = append(groupCols, colDepot)
		case domain.GroupByPeriod:
			if plan.ComparisonRange == nil {
				return domain.Query{}, app.NewError(app.ErrInvalidArgument, "period grouping requires a comparison range")
			}
			b.write("CASE WHEN ", colMetricDate, " >= ", b.arg(plan.DateRange.Start.Format(domain.DateLayout)),
				" THEN 'current' ELSE 'baseline' END AS period, ")
			groupCols = append(groupCols, "period")
		default:
			return domain.Query{}, app.NewError(app.ErrInvalidArgument, "cannot group metrics by %q", g)
		}
	}

	b.write(
		"SUM(catchment_count) AS ", colCatchment, ", ",
		"SUM(entitled_count) AS ", colEntitled, ", ",
		"SUM(attained_count) AS ", colAttained, ", ",
		cbExpr, " AS ", colCBPercent, ", ",
		value, " AS ", colMetricValue,
		" FROM ", r.Tables.Metrics,
	)
	if err := r.writeWhere(b, plan, colMetricDate, ""); err != nil {
		return domain.Query{}, err
	}
	if len(groupCols) > 0 {
		b.write(" GROUP BY ", strings.Join(groupCols, ", "))
		b.write(" ORDER BY ", strings.Join(groupCols, ", "))
	}
	if plan.Limit > 0 {
		b.write(" LIMIT ", b.arg(plan.Limit))
	}
	return b.query(), nil
}

func (r Renderer) renderMissingItems(plan domain.QueryPlan) (domain.Query, error) {
	b := &builder{dialect: r.Dialect}
	b.write(
		"SELECT o.item_id AS item_id, ",
		"COUNT(DISTINCT o.order_id) AS order_count, ",
		"COUNT(DISTINCT CASE WHEN o.substituted = TRUE THEN o.order_id END) AS substitution_count, ",
		"COUNT(*) AS line_count",
		" FROM ", r.Tables.Orders, " o",
	)
	if err := r.writeWhere(b, plan, colOrderDate, "o."); err != nil {
		return domain.Query{}, err
	}
	asOf := plan.DateRange.End.Format(domain.DateLayout)
	b.write(
		" AND NOT EXISTS (SELECT 1 FROM ", r.Tables.Assortment, " a",
		" WHERE a.depot_id = o.depot_id AND a.item_id = o.item_id AND a.active = TRUE",
		" AND a.effective_date = (SELECT MAX(a2.effective_date) FROM ", r.Tables.Assortment, " a2",
		" WHERE a2.depot_id = a.depot_id AND a2.item_id = a.item_id AND a2.effective_date <= ", b.arg(asOf), "))",
		" GROUP BY o.item_id",
	)
	if pred, ok := plan.Filters["min_order_frequency"]; ok && len(pred.Values) == 1 {
		b.write(" HAVING COUNT(DISTINCT o.order_id) >= ", b.arg(pred.Values[0]))
	}
	b.write(" ORDER BY order_count DESC, item_id")
	if plan.Limit > 0 {
		b.write(" LIMIT ", b.arg(plan.Limit))
	}
	return b.query(), nil
}

// havingFilters are applied after aggregation rather than in WHERE.
var havingFilters = map[string]bool{"min_order_frequency": true}

// writeWhere renders filters in sorted key order. The "date" field maps to
// the source's date column.
func (r Renderer) writeWhere(b *builder, plan domain.QueryPlan, dateCol, prefix string) error {
	first := true
	for _, key := range plan.FilterKeys() {
		if havingFilters[key] {
			continue
		}
		col := key
		if key == "date" {
			col = dateCol
		}
		if !identifier.MatchString(col) {
			return app.NewError(app.ErrInvalidArgument, "invalid filter field %q", key)
		}
		if first {
			b.write(" WHERE ")
			first = false
		} else {
			b.write(" AND ")
		}
		if err := writePredicate(b, prefix+col, plan.Filters[key]); err != nil {
			return err
		}
	}
	if first {
		// Missing-items rendering appends AND clauses unconditionally.
		b.write(" WHERE 1 = 1")
	}
	return nil
}

func writePredicate(b *builder, col string, p domain.Predicate) error {
	switch p.Op {
	case domain.OpEq:
		if len(p.Values) != 1 {
			return app.NewError(app.ErrInvalidArgument, "%s: eq takes one value", col)
		}
		if v, ok := p.Values[0].(bool); ok {
			b.write(col, " = ", strings.ToUpper(strconv.FormatBool(v)))
			return nil
		}
		b.write(col, " = ", b.arg(argValue(p.Values[0])))
	case domain.OpGte:
		if len(p.Values) != 1 {
			return app.NewError(app.ErrInvalidArgument, "%s: gte takes one value", col)
		}
		b.write(col, " >= ", b.arg(argValue(p.Values[0])))
	case domain.OpBetween:
		if len(p.Values) != 2 {
			return app.NewError(app.ErrInvalidArgument, "%s: between takes two values", col)
		}
		b.write(col, " BETWEEN ", b.arg(argValue(p.Values[0])), " AND ", b.arg(argValue(p.Values[1])))
	case domain.OpIn:
		if len(p.Values) == 0 {
			return app.NewError(app.ErrInvalidArgument, "%s: in needs at least one value", col)
		}
		marks := make([]string, len(p.Values))
		for i, v := range p.Values {
			marks[i] = b.arg(argValue(v))
		}
		b.write(col, " IN (", strings.Join(marks, ", "), ")")
	default:
		return app.NewError(app.ErrInvalidArgument, "%s: unknown operator %q", col, p.Op)
	}
	return nil
}

// argValue passes times as calendar-day strings.
func argValue(v any) any {
	if t, ok := v.(time.Time); ok {
		return t.Format(domain.DateLayout)
	}
	return v
}

// MetricRows loads the daily metric rows of one depot.
func (r Renderer) MetricRows(depotID string, rng domain.DateRange) domain.Query {
	b := &builder{dialect: r.Dialect}
	b.write(
		"SELECT depot_id, metric_date, catchment_count, entitled_count, attained_count, cb_percent FROM ",
		r.Tables.Metrics,
		" WHERE depot_id = ", b.arg(depotID),
		" AND metric_date BETWEEN ", b.arg(rng.Start.Format(domain.DateLayout)),
		" AND ", b.arg(rng.End.Format(domain.DateLayout)),
		" ORDER BY metric_date",
	)
	return b.query()
}

// OrderDetails loads the order lines of one depot.
func (r Renderer) OrderDetails(depotID string, rng domain.DateRange) domain.Query {
	b := &builder{dialect: r.Dialect}
	b.write(
		"SELECT depot_id, order_date, order_id, item_id, substituted, substitute_item_id FROM ",
		r.Tables.Orders,
		" WHERE depot_id = ", b.arg(depotID),
		" AND order_date BETWEEN ", b.arg(rng.Start.Format(domain.DateLayout)),
		" AND ", b.arg(rng.End.Format(domain.DateLayout)),
		" ORDER BY order_date, order_id, item_id",
	)
	return b.query()
}

// Assortment loads every assortment row of a depot effective on or before asOf.
func (r Renderer) Assortment(depotID string, asOf time.Time) domain.Query {
	b := &builder{dialect: r.Dialect}
	b.write(
		"SELECT depot_id, item_id, active, effective_date FROM ",
		r.Tables.Assortment,
		" WHERE depot_id = ", b.arg(depotID),
		" AND effective_date <= ", b.arg(asOf.Format(domain.DateLayout)),
		" ORDER BY item_id, effective_date",
	)
	return b.query()
}
