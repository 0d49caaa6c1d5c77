package testutil

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/depotcb/cbagent/internal/domain"
)

var testOrderCounter atomic.Int64

// Date parses YYYY-MM-DD and panics on malformed input.
func Date(s string) time.Time {
	t, err := time.Parse(domain.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

// Range builds an inclusive date range from two YYYY-MM-DD strings.
func Range(start, end string) domain.DateRange {
	return domain.NewDateRange(Date(start), Date(end))
}

// Metric row options
type MetricOption func(*domain.MetricRow)

func WithCatchment(n int64) MetricOption {
	return func(m *domain.MetricRow) { m.CatchmentCount = n }
}

// WithCounts sets entitled and attained counts and recomputes CB%.
func WithCounts(entitled, attained int64) MetricOption {
	return func(m *domain.MetricRow) {
		m.EntitledCount = entitled
		m.AttainedCount = attained
		m.CBPercent = domain.CBPercent(attained, entitled)
	}
}

// WithStoredCB overrides the stored CB%, for validation tests.
func WithStoredCB(v *float64) MetricOption {
	return func(m *domain.MetricRow) { m.CBPercent = v }
}

// NewMetricRow returns a row with 1250 catchment, 1000 entitled and 720
// attained orders unless overridden.
func NewMetricRow(depotID, date string, opts ...MetricOption) domain.MetricRow {
	m := domain.MetricRow{
		DepotID:        depotID,
		Date:           Date(date),
		CatchmentCount: 1250,
		EntitledCount:  1000,
		AttainedCount:  720,
	}
	m.CBPercent = m.Recompute()
	for _, opt := range opts {
		opt(&m)
	}
	return m
}

// MetricWindow returns one row per day of rng, all built with opts.
func MetricWindow(depotID string, rng domain.DateRange, opts ...MetricOption) []domain.MetricRow {
	var out []domain.MetricRow
	for d := rng.Start; !d.After(rng.End); d = d.AddDate(0, 0, 1) {
		out = append(out, NewMetricRow(depotID, d.Format(domain.DateLayout), opts...))
	}
	return out
}

// Order detail options
type OrderOption func(*domain.OrderDetailRow)

func WithOrderID(id string) OrderOption {
	return func(o *domain.OrderDetailRow) { o.OrderID = id }
}

func WithOrderDate(date string) OrderOption {
	return func(o *domain.OrderDetailRow) { o.Date = Date(date) }
}

// SubstitutedBy marks the line as substituted by item.
func SubstitutedBy(item string) OrderOption {
	return func(o *domain.OrderDetailRow) {
		o.Substituted = true
		o.SubstituteItemID = item
	}
}

// NewOrderLine returns an unsubstituted line with a fresh order id.
func NewOrderLine(depotID, itemID string, opts ...OrderOption) domain.OrderDetailRow {
	o := domain.OrderDetailRow{
		DepotID: depotID,
		Date:    Date("2025-06-01"),
		OrderID: fmt.Sprintf("ORD%05d", testOrderCounter.Add(1)),
		ItemID:  itemID,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// NewAssortmentRow returns a row effective from 2025-01-01.
func NewAssortmentRow(depotID, itemID string, active bool) domain.AssortmentRow {
	return domain.AssortmentRow{
		DepotID:       depotID,
		ItemID:        itemID,
		Active:        active,
		EffectiveDate: Date("2025-01-01"),
	}
}
