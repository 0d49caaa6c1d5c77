package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"

	"github.com/depotcb/cbagent/internal/domain"
)

// dateRangeValue is a pflag.Value for FROM:TO (or FROM..TO) calendar ranges.
type dateRangeValue struct {
	rng *domain.DateRange
}

var _ pflag.Value = (*dateRangeValue)(nil)

func newDateRangeValue() *dateRangeValue { return &dateRangeValue{} }

func (v *dateRangeValue) String() string {
	if v.rng == nil {
		return ""
	}
	return v.rng.String()
}

func (v *dateRangeValue) Set(s string) error {
	from, to, ok := strings.Cut(s, ":")
	if !ok {
		from, to, ok = strings.Cut(s, "..")
	}
	if !ok {
		return fmt.Errorf("expected FROM:TO, got %q", s)
	}
	r, err := domain.ParseDateRange(strings.TrimSpace(from), strings.TrimSpace(to))
	if err != nil {
		return err
	}
	v.rng = &r
	return nil
}

func (v *dateRangeValue) Type() string { return "range" }

// Range returns the parsed range, or nil when the flag was not set.
func (v *dateRangeValue) Range() *domain.DateRange { return v.rng }

// dateValue is a pflag.Value for one YYYY-MM-DD day.
type dateValue struct {
	day *time.Time
}

var _ pflag.Value = (*dateValue)(nil)

func (v *dateValue) String() string {
	if v.day == nil {
		return ""
	}
	return v.day.Format(domain.DateLayout)
}

func (v *dateValue) Set(s string) error {
	t, err := time.Parse(domain.DateLayout, strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("invalid date %q (expected YYYY-MM-DD)", s)
	}
	v.day = &t
	return nil
}

func (v *dateValue) Type() string { return "date" }

// rangeFlags holds the --from/--to pair shared by several commands.
type rangeFlags struct {
	from, to dateValue
	days     int
}

func (f *rangeFlags) register(fs *pflag.FlagSet) {
	fs.Var(&f.from, "from", "First day of the window (YYYY-MM-DD)")
	fs.Var(&f.to, "to", "Last day of the window (YYYY-MM-DD)")
	fs.IntVar(&f.days, "days", 0, "Lookback window ending today, in days (0 = configured default)")
}

// resolve returns the explicit range, nil when neither bound is set, or an
// error when only one is.
func (f *rangeFlags) resolve() (*domain.DateRange, error) {
	switch {
	case f.from.day == nil && f.to.day == nil:
		return nil, nil
	case f.from.day == nil || f.to.day == nil:
		return nil, fmt.Errorf("--from and --to must be given together")
	}
	r := domain.NewDateRange(*f.from.day, *f.to.day)
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return &r, nil
}
