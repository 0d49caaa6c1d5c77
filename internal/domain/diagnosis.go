package domain

// FindingCode classifies a diagnosis finding or suggested action.
type FindingCode string

const (
	FindingCatchmentDrop    FindingCode = "CATCHMENT_DROP"
	FindingEntitlementDrop  FindingCode = "ENTITLEMENT_DROP"
	FindingMissingItems     FindingCode = "MISSING_ITEMS"
	FindingLowFulfilment    FindingCode = "LOW_FULFILMENT"
	FindingWithinVariance   FindingCode = "WITHIN_VARIANCE"
	ActionMonitorCompetitor FindingCode = "MONITOR_COMPETITION"
	ActionPromote           FindingCode = "RUN_PROMOTION"
	ActionAddItems          FindingCode = "ADD_MISSING_ITEMS"
	ActionReviewSeasonal    FindingCode = "REVIEW_SEASONAL_ASSORTMENT"
	ActionAuditFulfilment   FindingCode = "AUDIT_FULFILMENT"
	ActionReviewWindows     FindingCode = "REVIEW_DELIVERY_WINDOWS"
	ActionMonitorDaily      FindingCode = "MONITOR_DAILY"
)

// Finding is one observation or suggested action in a diagnosis.
type Finding struct {
	Code    FindingCode
	Message string
}

// Diagnosis is a threshold-based classification of a window-over-window
// change, reported alongside the additive factor breakdown. Variances are
// percent changes of per-day averages against the baseline window.
type Diagnosis struct {
	PrimaryCause         PrimaryCause
	Confidence           float64
	EntitledVariancePct  float64
	CatchmentVariancePct float64
	AttainedVariancePct  float64
	FulfilmentRate       float64
	Findings             []Finding
	Actions              []Finding
}
