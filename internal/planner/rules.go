package planner

import "github.com/depotcb/cbagent/internal/domain"

// IntentRule pairs a predicate over the parsed question with the intent it
// selects.
type IntentRule struct {
	Intent domain.Intent
	Match  func(q question) bool
}

// DefaultIntentRules is evaluated top to bottom and the first match wins.
// The final rule always matches.
var DefaultIntentRules = []IntentRule{
	{Intent: domain.IntentDropExplanation, Match: isDropExplanation},
	{Intent: domain.IntentMissingItems, Match: isMissingItems},
	{Intent: domain.IntentComparison, Match: isComparison},
	{Intent: domain.IntentTrend, Match: isTrend},
	{Intent: domain.IntentGenericLookup, Match: func(question) bool { return true }},
}

func isDropExplanation(q question) bool {
	return q.has("why", "fell", "fall", "falling", "dip", "dipped") ||
		q.hasPrefix("drop", "declin", "decreas") ||
		q.hasPhrase("root cause", "go down", "went down", "what happened")
}

func isMissingItems(q question) bool {
	return q.has("missing", "carrying", "carry") ||
		q.hasPhrase("not stocked", "not in assortment", "should we add", "items to add",
			"add to assortment", "recommend items", "which items", "what items")
}

func isComparison(q question) bool {
	return len(q.depots) >= 2 ||
		q.has("vs", "versus", "against") ||
		q.hasPrefix("compar") ||
		q.hasPhrase("week over week", "month over month", "previous period", "prior period")
}

func isTrend(q question) bool {
	return q.hasPrefix("trend") ||
		q.has("daily", "history", "historical") ||
		q.hasPhrase("over time", "by day", "each day", "per day", "day by day")
}

// Classify returns the first intent in rules whose predicate matches.
func Classify(rules []IntentRule, text string) domain.Intent {
	q := parseQuestion(text)
	return classify(rules, q)
}

func classify(rules []IntentRule, q question) domain.Intent {
	for _, r := range rules {
		if r.Match(q) {
			return r.Intent
		}
	}
	return domain.IntentGenericLookup
}

// resolveMetric picks the focus metric from the question, CB% first.
func resolveMetric(q question) domain.Metric {
	switch {
	case q.has("cb") || q.hasPhrase("complete basket"):
		return domain.MetricCBPercent
	case q.hasPrefix("catchment"):
		return domain.MetricCatchment
	case q.hasPrefix("entitle"):
		return domain.MetricEntitled
	case q.hasPrefix("attain", "fulfil"):
		return domain.MetricAttained
	default:
		return domain.MetricCBPercent
	}
}
