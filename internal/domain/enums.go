package domain

// Metric names the measure a query plan focuses on.
type Metric string

const (
	MetricCBPercent Metric = "CB_PERCENT"
	MetricCatchment Metric = "CATCHMENT"
	MetricEntitled  Metric = "ENTITLED"
	MetricAttained  Metric = "ATTAINED"
)

// ValidMetrics is the canonical set of accepted metric names.
var ValidMetrics = map[Metric]bool{
	MetricCBPercent: true, MetricCatchment: true,
	MetricEntitled: true, MetricAttained: true,
}

// Intent is the classified purpose of a natural-language question.
type Intent string

const (
	IntentTrend           Intent = "trend"
	IntentComparison      Intent = "comparison"
	IntentMissingItems    Intent = "missing_items"
	IntentDropExplanation Intent = "drop_explanation"
	IntentGenericLookup   Intent = "generic_lookup"
)

// Dimension is a grouping key of a query plan.
type Dimension string

const (
	GroupByDate   Dimension = "date"
	GroupByDepot  Dimension = "depot"
	GroupByPeriod Dimension = "period"
	GroupByItem   Dimension = "item"
)

// Source identifies the table family a plan reads from.
type Source string

const (
	SourceMetrics      Source = "metrics"
	SourceOrderDetails Source = "order_details"
)

// FactorName names a root-cause contribution.
type FactorName string

const (
	FactorCatchment    FactorName = "CATCHMENT"
	FactorEntitlement  FactorName = "ENTITLEMENT"
	FactorSubstitution FactorName = "SUBSTITUTION"
	FactorAssortment   FactorName = "ASSORTMENT"
	FactorResidual     FactorName = "RESIDUAL"
)

// Direction tells whether a simulation adds an item to or removes it from
// the assortment.
type Direction string

const (
	DirectionAdd    Direction = "add"
	DirectionRemove Direction = "remove"
)

// ImpactLevel buckets a recommendation by the size of its CB% delta.
type ImpactLevel string

const (
	ImpactHigh   ImpactLevel = "high"
	ImpactMedium ImpactLevel = "medium"
	ImpactLow    ImpactLevel = "low"
)

// PrimaryCause is the headline classification of a metric change.
type PrimaryCause string

const (
	CauseAssortmentGap    PrimaryCause = "assortment_gap"
	CauseCatchmentDrop    PrimaryCause = "catchment_drop"
	CauseFulfillmentIssue PrimaryCause = "fulfillment_issue"
	CauseNormalVariance   PrimaryCause = "normal_variance"
)
