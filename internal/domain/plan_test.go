package domain

import (
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateRange_DaysAndPreceding(t *testing.T) {
	r, err := ParseDateRange("2025-06-08", "2025-06-15")
	require.NoError(t, err)
	assert.Equal(t, 8, r.Days())

	prev := r.Preceding()
	assert.Equal(t, "2025-05-31..2025-06-07", prev.String())
	assert.Equal(t, r.Days(), prev.Days())
}

func TestDateRange_DaysAcrossDST(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	// clocks move forward on 2026-03-08
	r := NewDateRange(time.Date(2026, 3, 3, 0, 0, 0, 0, ny), time.Date(2026, 3, 10, 0, 0, 0, 0, ny))
	assert.Equal(t, 8, r.Days())

	prev := r.Preceding()
	assert.Equal(t, "2026-02-23..2026-03-02", prev.String())
	assert.Equal(t, 8, prev.Days())

	// and back on 2026-11-01
	fall := NewDateRange(time.Date(2026, 10, 31, 0, 0, 0, 0, ny), time.Date(2026, 11, 2, 0, 0, 0, 0, ny))
	assert.Equal(t, 3, fall.Days())
}

func TestDateRange_Contains(t *testing.T) {
	r := NewDateRange(testDay, testDay.AddDate(0, 0, 2))
	assert.True(t, r.Contains(testDay.Add(23*time.Hour)))
	assert.True(t, r.Contains(testDay.AddDate(0, 0, 2)))
	assert.False(t, r.Contains(testDay.AddDate(0, 0, 3)))
	assert.False(t, r.Contains(testDay.Add(-time.Second)))
}

func TestParseDateRange_Errors(t *testing.T) {
	_, err := ParseDateRange("June 1", "2025-06-15")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "YYYY-MM-DD")

	_, err = ParseDateRange("2025-06-15", "2025-06-01")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "before start")
}

func TestQueryPlan_FilterKeysSorted(t *testing.T) {
	p := QueryPlan{Filters: map[string]Predicate{
		"item_id":  {Op: OpEq, Values: []any{"a"}},
		"date":     {Op: OpBetween},
		"depot_id": {Op: OpEq},
	}}
	assert.Equal(t, []string{"date", "depot_id", "item_id"}, p.FilterKeys())
}

func TestChangedItems(t *testing.T) {
	before := []AssortmentRow{
		{ItemID: "a", Active: true, EffectiveDate: testDay},
		{ItemID: "b", Active: true, EffectiveDate: testDay},
		{ItemID: "c", Active: false, EffectiveDate: testDay},
	}
	after := []AssortmentRow{
		{ItemID: "a", Active: true, EffectiveDate: testDay},
		{ItemID: "b", Active: true, EffectiveDate: testDay},
		{ItemID: "b", Active: false, EffectiveDate: testDay.AddDate(0, 0, 3)},
		{ItemID: "d", Active: true, EffectiveDate: testDay},
	}
	assert.Equal(t, []string{"b", "d"}, ChangedItems(before, after))
}

func TestAssortmentState_LatestWins(t *testing.T) {
	rows := []AssortmentRow{
		{ItemID: "x", Active: false, EffectiveDate: testDay.AddDate(0, 0, 5)},
		{ItemID: "x", Active: true, EffectiveDate: testDay},
	}
	assert.False(t, AssortmentState(rows)["x"].Active)
	assert.False(t, ActiveItems(rows)["x"])
}

func TestFirstSetAndValueOr(t *testing.T) {
	assert.Equal(t, "b", FirstSet("", "b", "c"))
	assert.Equal(t, 0, FirstSet(0, 0))
	v := 3
	assert.Equal(t, 3, ValueOr(9, nil, &v))
	assert.Equal(t, 9, ValueOr[int](9))
	assert.Equal(t, 10, Positive(0, 10))
	assert.Equal(t, 0.5, Positive(0.5, 1.0))
}
