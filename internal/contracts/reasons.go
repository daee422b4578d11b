package contracts

// ExclusionReason is one of the closed set of reasons a ticker can fail
// the eligibility filter. An ineligible ticker always carries at least one.
type ExclusionReason string

const (
	ReasonNonPositiveEquity ExclusionReason = "non_positive_equity"
	ReasonNonPositiveEBITDA ExclusionReason = "non_positive_ebitda"
	ReasonNegativeRevenue   ExclusionReason = "negative_revenue"
	ReasonRecurringLoss     ExclusionReason = "recurring_loss"
	ReasonExcessiveLeverage ExclusionReason = "excessive_leverage"
	ReasonLowLiquidity      ExclusionReason = "low_liquidity"
	ReasonInsufficientData  ExclusionReason = "insufficient_data"
)

// ReasonStrings converts a reason list to plain strings for persistence.
func ReasonStrings(reasons []ExclusionReason) []string {
	out := make([]string, len(reasons))
	for i, r := range reasons {
		out[i] = string(r)
	}
	return out
}

// ReasonsFromStrings is the inverse of ReasonStrings.
func ReasonsFromStrings(values []string) []ExclusionReason {
	out := make([]ExclusionReason, len(values))
	for i, v := range values {
		out[i] = ExclusionReason(v)
	}
	return out
}
