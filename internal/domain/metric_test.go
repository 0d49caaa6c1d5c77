package domain

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testDay = time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)

func row(day int, c, e, a int64) MetricRow {
	r := MetricRow{
		DepotID:        "7634",
		Date:           testDay.AddDate(0, 0, day),
		CatchmentCount: c,
		EntitledCount:  e,
		AttainedCount:  a,
	}
	r.CBPercent = r.Recompute()
	return r
}

func TestCBPercent_PercentagePoints(t *testing.T) {
	cb := CBPercent(720, 1000)
	require.NotNil(t, cb)
	assert.InDelta(t, 72.0, *cb, 1e-12)
}

func TestCBPercent_ZeroEntitledIsMissing(t *testing.T) {
	assert.Nil(t, CBPercent(0, 0))
	assert.Nil(t, CBPercent(5, 0))
}

func TestValidate(t *testing.T) {
	r := row(0, 1200, 1000, 720)
	require.NoError(t, r.Validate(1e-9))

	bad := 71.0
	r.CBPercent = &bad
	err := r.Validate(0.01)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not match")

	zero := row(0, 10, 0, 0)
	require.NoError(t, zero.Validate(1e-9))
	stored := 0.0
	zero.CBPercent = &stored
	require.Error(t, zero.Validate(1e-9), "a zero cb_percent is not the same as missing")
}

func TestSummarize_ExcludesZeroEntitled(t *testing.T) {
	rows := []MetricRow{
		row(0, 1200, 1000, 700),
		row(1, 50, 0, 0),
		row(2, 1200, 1000, 800),
	}
	s := Summarize(rows)

	assert.Equal(t, 3, s.Rows)
	assert.Equal(t, 1, s.Excluded)
	assert.Equal(t, int64(2000), s.Entitled)
	require.NotNil(t, s.PooledCB)
	assert.InDelta(t, 75.0, *s.PooledCB, 1e-9)
	require.NotNil(t, s.MeanDailyCB)
	assert.InDelta(t, 75.0, *s.MeanDailyCB, 1e-9, "zero-entitled row must not pull the mean down")
	assert.InDelta(t, 70.0, *s.MinCB, 1e-9)
	assert.InDelta(t, 80.0, *s.MaxCB, 1e-9)
	assert.InDelta(t, 80.0, *s.LatestCB, 1e-9)
	assert.Equal(t, testDay.AddDate(0, 0, 2), *s.LatestDate)
}

func TestSummarize_AllMissing(t *testing.T) {
	s := Summarize([]MetricRow{row(0, 10, 0, 0)})
	assert.Nil(t, s.PooledCB)
	assert.Nil(t, s.MeanDailyCB)
	assert.Equal(t, 1, s.Excluded)
}

func TestRecompute_RandomRowsMatchStored(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 500; i++ {
		e := rng.Int63n(2000)
		a := int64(0)
		if e > 0 {
			a = rng.Int63n(e + 1)
		}
		r := row(i, e+rng.Int63n(500), e, a)
		require.NoError(t, r.Validate(1e-9), "row %d", i)
		if e == 0 {
			assert.Nil(t, r.CBPercent)
		}
	}
}
