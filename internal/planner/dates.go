package planner

import (
	"regexp"
	"strconv"
	"time"

	"github.com/depotcb/cbagent/internal/domain"
)

const isoDate = `(\d{4}-\d{2}-\d{2})`

var (
	fromToPhrase  = regexp.MustCompile(`(?:from|between)\s+` + isoDate + `\s+(?:to|and|until|through)\s+` + isoDate)
	sincePhrase   = regexp.MustCompile(`since\s+` + isoDate)
	onPhrase      = regexp.MustCompile(`\bon\s+` + isoDate)
	lastNPhrase   = regexp.MustCompile(`\b(?:last|past|previous)\s+(\d+)\s+(days?|weeks?|months?)\b`)
	lastWeekWord  = regexp.MustCompile(`\b(?:last|previous)\s+week\b`)
	thisWeekWord  = regexp.MustCompile(`\bthis\s+week\b`)
	lastMonthWord = regexp.MustCompile(`\b(?:last|previous)\s+month\b`)
	thisMonthWord = regexp.MustCompile(`\bthis\s+month\b`)
	yesterdayWord = regexp.MustCompile(`\byesterday\b`)
	todayWord     = regexp.MustCompile(`\btoday\b`)
)

type dateRule func(text string, today time.Time) (domain.DateRange, bool)

// dateRules run in order over the lower-cased question; explicit ISO ranges
// beat relative phrases.
var dateRules = []dateRule{
	matchFromTo,
	matchSince,
	matchOn,
	matchLastN,
	matchLastWeek,
	matchThisWeek,
	matchLastMonth,
	matchThisMonth,
	matchYesterday,
	matchToday,
}

// ResolveDateRange finds the first date phrase in text, evaluated against
// today. The second result is false when the text names no dates.
func ResolveDateRange(text string, today time.Time) (domain.DateRange, bool) {
	today = domain.Day(today)
	for _, rule := range dateRules {
		if r, ok := rule(text, today); ok {
			return r, true
		}
	}
	return domain.DateRange{}, false
}

// resolveDateRanges returns every distinct range named in text, in rule
// order.
func resolveDateRanges(text string, today time.Time) []domain.DateRange {
	today = domain.Day(today)
	var out []domain.DateRange
	for _, rule := range dateRules {
		r, ok := rule(text, today)
		if !ok {
			continue
		}
		dup := false
		for _, seen := range out {
			if seen.Start.Equal(r.Start) && seen.End.Equal(r.End) {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, r)
		}
	}
	return out
}

// splitPeriods orders two named periods as current and baseline: the range
// ending later is current, ties go to the later start.
func splitPeriods(a, b domain.DateRange) (current, baseline domain.DateRange) {
	if b.End.After(a.End) || (b.End.Equal(a.End) && b.Start.After(a.Start)) {
		return b, a
	}
	return a, b
}

func parseISO(s string, loc *time.Location) (time.Time, bool) {
	t, err := time.ParseInLocation(domain.DateLayout, s, loc)
	return t, err == nil
}

func matchFromTo(text string, today time.Time) (domain.DateRange, bool) {
	m := fromToPhrase.FindStringSubmatch(text)
	if m == nil {
		return domain.DateRange{}, false
	}
	start, ok1 := parseISO(m[1], today.Location())
	end, ok2 := parseISO(m[2], today.Location())
	if !ok1 || !ok2 {
		return domain.DateRange{}, false
	}
	if end.Before(start) {
		start, end = end, start
	}
	return domain.NewDateRange(start, end), true
}

func matchSince(text string, today time.Time) (domain.DateRange, bool) {
	m := sincePhrase.FindStringSubmatch(text)
	if m == nil {
		return domain.DateRange{}, false
	}
	start, ok := parseISO(m[1], today.Location())
	if !ok || start.After(today) {
		return domain.DateRange{}, false
	}
	return domain.NewDateRange(start, today), true
}

func matchOn(text string, today time.Time) (domain.DateRange, bool) {
	m := onPhrase.FindStringSubmatch(text)
	if m == nil {
		return domain.DateRange{}, false
	}
	day, ok := parseISO(m[1], today.Location())
	if !ok {
		return domain.DateRange{}, false
	}
	return domain.NewDateRange(day, day), true
}

// matchLastN maps "last N days" to [today-N, today], inclusive of both ends.
func matchLastN(text string, today time.Time) (domain.DateRange, bool) {
	m := lastNPhrase.FindStringSubmatch(text)
	if m == nil {
		return domain.DateRange{}, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n <= 0 {
		return domain.DateRange{}, false
	}
	var start time.Time
	switch m[2][0] {
	case 'd':
		start = today.AddDate(0, 0, -n)
	case 'w':
		start = today.AddDate(0, 0, -7*n)
	default:
		start = today.AddDate(0, -n, 0)
	}
	return domain.NewDateRange(start, today), true
}

// weekStart returns the Monday on or before t.
func weekStart(t time.Time) time.Time {
	offset := (int(t.Weekday()) + 6) % 7
	return t.AddDate(0, 0, -offset)
}

func matchLastWeek(text string, today time.Time) (domain.DateRange, bool) {
	if !lastWeekWord.MatchString(text) {
		return domain.DateRange{}, false
	}
	monday := weekStart(today).AddDate(0, 0, -7)
	return domain.NewDateRange(monday, monday.AddDate(0, 0, 6)), true
}

func matchThisWeek(text string, today time.Time) (domain.DateRange, bool) {
	if !thisWeekWord.MatchString(text) {
		return domain.DateRange{}, false
	}
	return domain.NewDateRange(weekStart(today), today), true
}

func monthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

func matchLastMonth(text string, today time.Time) (domain.DateRange, bool) {
	if !lastMonthWord.MatchString(text) {
		return domain.DateRange{}, false
	}
	first := monthStart(today).AddDate(0, -1, 0)
	return domain.NewDateRange(first, monthStart(today).AddDate(0, 0, -1)), true
}

func matchThisMonth(text string, today time.Time) (domain.DateRange, bool) {
	if !thisMonthWord.MatchString(text) {
		return domain.DateRange{}, false
	}
	return domain.NewDateRange(monthStart(today), today), true
}

func matchYesterday(text string, today time.Time) (domain.DateRange, bool) {
	if !yesterdayWord.MatchString(text) {
		return domain.DateRange{}, false
	}
	y := today.AddDate(0, 0, -1)
	return domain.NewDateRange(y, y), true
}

func matchToday(text string, today time.Time) (domain.DateRange, bool) {
	if !todayWord.MatchString(text) {
		return domain.DateRange{}, false
	}
	return domain.NewDateRange(today, today), true
}
