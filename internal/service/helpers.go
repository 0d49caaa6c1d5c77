package service

import (
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/depotcb/cbagent/internal/app"
	"github.com/depotcb/cbagent/internal/domain"
	"github.com/depotcb/cbagent/internal/planner"
)

// Defaults are the configured fallbacks applied to every request.
type Defaults struct {
	DepotID           string
	LookbackDays      int
	TopN              int
	MinOrderFrequency int
	AddItemLimit      int
}

// DefaultDefaults mirrors config.DefaultConfig for tests and embedding.
func DefaultDefaults() Defaults {
	return Defaults{
		LookbackDays:      planner.DefaultLookbackDays,
		TopN:              10,
		MinOrderFrequency: planner.DefaultMinOrderFrequency,
		AddItemLimit:      700,
	}
}

func resolveNow(now *time.Time) time.Time {
	if now != nil {
		return *now
	}
	return time.Now().UTC()
}

func resolveDepot(requested, fallback string) (string, error) {
	depot := domain.FirstSet(requested, fallback)
	if depot == "" {
		return "", app.NewError(app.ErrInvalidArgument, "depot id is required")
	}
	return depot, nil
}

// resolveRange prefers an explicit range, then the lookback window ending today.
func resolveRange(rng *domain.DateRange, lookback, fallback int, now time.Time) (domain.DateRange, error) {
	if rng != nil {
		if err := rng.Validate(); err != nil {
			return domain.DateRange{}, app.WrapError(app.ErrInvalidArgument, err, "date range")
		}
		return *rng, nil
	}
	return planner.LookbackRange(now, domain.Positive(lookback, fallback)), nil
}

func newRunID() string {
	return uuid.New().String()
}

func pluralize(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return strconv.Itoa(n) + " " + noun + "s"
}
