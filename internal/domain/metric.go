package domain

import (
	"fmt"
	"math"
	"time"
)

// DateLayout is the calendar-day format used across stores and flags.
const DateLayout = "2006-01-02"

// MetricRow is one depot/date row of the metrics store. CBPercent is nil
// when EntitledCount is zero: the value is missing, not zero.
type MetricRow struct {
	DepotID        string
	Date           time.Time
	CatchmentCount int64
	EntitledCount  int64
	AttainedCount  int64
	CBPercent      *float64
}

// CBPercent returns 100*attained/entitled in percentage points, or nil when
// entitled is not positive.
func CBPercent(attained, entitled int64) *float64 {
	if entitled <= 0 {
		return nil
	}
	v := 100 * float64(attained) / float64(entitled)
	return &v
}

// Recompute returns the CB% implied by the row counts.
func (r MetricRow) Recompute() *float64 {
	return CBPercent(r.AttainedCount, r.EntitledCount)
}

// Validate checks the stored CB% against the counts within tol percentage points.
func (r MetricRow) Validate(tol float64) error {
	want := r.Recompute()
	switch {
	case want == nil && r.CBPercent == nil:
		return nil
	case want == nil:
		return fmt.Errorf("depot %s %s: cb_percent %.4f stored with entitled_count 0",
			r.DepotID, r.Date.Format(DateLayout), *r.CBPercent)
	case r.CBPercent == nil:
		return fmt.Errorf("depot %s %s: cb_percent missing with entitled_count %d",
			r.DepotID, r.Date.Format(DateLayout), r.EntitledCount)
	}
	if math.Abs(*want-*r.CBPercent) > tol {
		return fmt.Errorf("depot %s %s: cb_percent %.4f does not match %d/%d",
			r.DepotID, r.Date.Format(DateLayout), *r.CBPercent, r.AttainedCount, r.EntitledCount)
	}
	return nil
}

// MetricSummary pools a set of metric rows. Rows without a defined CB% are
// counted in Excluded and contribute nothing else.
type MetricSummary struct {
	Rows      int
	Excluded  int
	Catchment int64
	Entitled  int64
	Attained  int64

	// PooledCB is 100*ΣA/ΣE over included rows.
	PooledCB *float64
	// MeanDailyCB is the unweighted mean of included rows' CB%.
	MeanDailyCB *float64
	MinCB       *float64
	MaxCB       *float64
	LatestCB    *float64
	LatestDate  *time.Time
}

// Summarize pools rows into a MetricSummary.
func Summarize(rows []MetricRow) MetricSummary {
	var s MetricSummary
	var sum float64
	included := 0
	for _, r := range rows {
		s.Rows++
		cb := r.Recompute()
		if cb == nil {
			s.Excluded++
			continue
		}
		included++
		s.Catchment += r.CatchmentCount
		s.Entitled += r.EntitledCount
		s.Attained += r.AttainedCount
		sum += *cb

		if s.MinCB == nil || *cb < *s.MinCB {
			s.MinCB = floatPtr(*cb)
		}
		if s.MaxCB == nil || *cb > *s.MaxCB {
			s.MaxCB = floatPtr(*cb)
		}
		if s.LatestDate == nil || r.Date.After(*s.LatestDate) {
			d := r.Date
			s.LatestDate = &d
			s.LatestCB = floatPtr(*cb)
		}
	}
	if included > 0 {
		s.PooledCB = CBPercent(s.Attained, s.Entitled)
		s.MeanDailyCB = floatPtr(sum / float64(included))
	}
	return s
}

func floatPtr(v float64) *float64 {
	return &v
}
