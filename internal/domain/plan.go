package domain

import (
	"fmt"
	"sort"
	"time"
)

// DateRange is an inclusive range of calendar days.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// Day truncates t to midnight in its own location.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// NewDateRange builds a day-truncated range.
func NewDateRange(start, end time.Time) DateRange {
	return DateRange{Start: Day(start), End: Day(end)}
}

// ParseDateRange parses two YYYY-MM-DD strings.
func ParseDateRange(start, end string) (DateRange, error) {
	s, err := time.Parse(DateLayout, start)
	if err != nil {
		return DateRange{}, fmt.Errorf("invalid start date %q (expected YYYY-MM-DD)", start)
	}
	e, err := time.Parse(DateLayout, end)
	if err != nil {
		return DateRange{}, fmt.Errorf("invalid end date %q (expected YYYY-MM-DD)", end)
	}
	r := NewDateRange(s, e)
	if err := r.Validate(); err != nil {
		return DateRange{}, err
	}
	return r, nil
}

// Validate rejects zero or inverted ranges.
func (r DateRange) Validate() error {
	if r.Start.IsZero() || r.End.IsZero() {
		return fmt.Errorf("date range requires both start and end")
	}
	if r.End.Before(r.Start) {
		return fmt.Errorf("date range end %s is before start %s",
			r.End.Format(DateLayout), r.Start.Format(DateLayout))
	}
	return nil
}

// Days is the number of calendar days covered, inclusive.
// Days are counted on the calendar so DST changes do not shorten a range.
func (r DateRange) Days() int {
	return int(civilDay(r.End).Sub(civilDay(r.Start)).Hours()/24) + 1
}

func civilDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Contains reports whether t falls on a day inside the range.
func (r DateRange) Contains(t time.Time) bool {
	d := Day(t.In(r.Start.Location()))
	return !d.Before(r.Start) && !d.After(r.End)
}

// Preceding returns the equally long range ending the day before r starts.
func (r DateRange) Preceding() DateRange {
	end := r.Start.AddDate(0, 0, -1)
	return DateRange{Start: end.AddDate(0, 0, -(r.Days() - 1)), End: end}
}

func (r DateRange) String() string {
	return r.Start.Format(DateLayout) + ".." + r.End.Format(DateLayout)
}

// PredicateOp is a filter comparison operator.
type PredicateOp string

const (
	OpEq      PredicateOp = "eq"
	OpIn      PredicateOp = "in"
	OpBetween PredicateOp = "between"
	OpGte     PredicateOp = "gte"
)

// Predicate constrains one field of a plan.
type Predicate struct {
	Op     PredicateOp
	Values []any
}

// QueryPlan is the structured, parameterized form of a question.
type QueryPlan struct {
	Question        string
	Intent          Intent
	Metric          Metric
	Source          Source
	DepotID         string
	DateRange       DateRange
	ComparisonRange *DateRange
	GroupBy         []Dimension
	Filters         map[string]Predicate
	Limit           int
	Description     string
}

// Grouped reports whether d is one of the plan's grouping dimensions.
func (p QueryPlan) Grouped(d Dimension) bool {
	for _, g := range p.GroupBy {
		if g == d {
			return true
		}
	}
	return false
}

// FilterKeys returns filter field names in ascending order.
func (p QueryPlan) FilterKeys() []string {
	keys := make([]string, 0, len(p.Filters))
	for k := range p.Filters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Query is rendered query text with its positional arguments.
type Query struct {
	Text string
	Args []any
}
