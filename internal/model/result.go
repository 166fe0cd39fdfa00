package model

// RiskTier is a named band of the aggregate risk score.
type RiskTier string

const (
	TierVeryLow  RiskTier = "Very Low"
	TierLow      RiskTier = "Low"
	TierAverage  RiskTier = "Average"
	TierElevated RiskTier = "Elevated"
	TierHigh     RiskTier = "High"
)

// TierForScore maps a clamped aggregate score to its risk tier using fixed,
// non-overlapping half-open thresholds.
func TierForScore(score float64) RiskTier {
	switch {
	case score < 0.25:
		return TierVeryLow
	case score < 0.35:
		return TierLow
	case score < 0.50:
		return TierAverage
	case score < 0.65:
		return TierElevated
	default:
		return TierHigh
	}
}

// Label returns the tier with its pricing-strategy suffix, as shown in
// executive summaries.
func (t RiskTier) Label() string {
	switch t {
	case TierVeryLow:
		return "Very Low Risk - Preferred Pricing"
	case TierLow:
		return "Low Risk - Standard Plus"
	case TierAverage:
		return "Average Risk - Standard"
	case TierElevated:
		return "Elevated Risk - Standard Rated"
	default:
		return "High Risk - Table Rated"
	}
}

// CohortSummary describes the historical cohort consulted by one factor.
type CohortSummary struct {
	Size         int     `json:"cohort_size"`
	AvgRiskScore float64 `json:"avg_risk_score"`
	ClaimRatePct float64 `json:"claim_rate,omitempty"`
	AvgPremium   float64 `json:"avg_premium,omitempty"`
	AvgBMI       float64 `json:"avg_bmi,omitempty"`
	ChronicPct   float64 `json:"chronic_condition_rate,omitempty"`
}

// FactorResult is one evaluator's output. Produced fresh per scoring call.
type FactorResult struct {
	Category         string         `json:"category"`
	Factor           string         `json:"factor"`
	Value            string         `json:"value"`
	RiskContribution float64        `json:"risk_contribution"`
	Weight           float64        `json:"weight"`
	WeightedScore    float64        `json:"weighted_score"`
	Explanation      string         `json:"explanation"`
	Degraded         bool           `json:"degraded,omitempty"`
	Cohort           *CohortSummary `json:"supporting_data,omitempty"`
}

// ScoringResult is the ordered audit trail plus the aggregate score.
type ScoringResult struct {
	CustomerID      string         `json:"customer_id"`
	Score           float64        `json:"final_risk_score"`
	Tier            RiskTier       `json:"risk_tier"`
	Factors         []FactorResult `json:"scoring_steps"`
	DegradedFactors []string       `json:"degraded_factors,omitempty"`
	Confidence      string         `json:"confidence_level"`
}

// TopFactors returns the n highest weighted contributions, descending.
func (r *ScoringResult) TopFactors(n int) []FactorResult {
	sorted := make([]FactorResult, len(r.Factors))
	copy(sorted, r.Factors)
	for i := 1; i < len(sorted); i++ {
		for j := i; j > 0 && sorted[j].WeightedScore > sorted[j-1].WeightedScore; j-- {
			sorted[j], sorted[j-1] = sorted[j-1], sorted[j]
		}
	}
	if n > len(sorted) {
		n = len(sorted)
	}
	return sorted[:n]
}

// BottomFactors returns the n lowest weighted contributions, ascending.
func (r *ScoringResult) BottomFactors(n int) []FactorResult {
	sorted := make([]FactorResult, len(r.Factors))
	copy(sorted, r.Factors)
	for i := 1; i < len(sorted); i++ {
		for j := i; j > 0 && sorted[j].WeightedScore < sorted[j-1].WeightedScore; j-- {
			sorted[j], sorted[j-1] = sorted[j-1], sorted[j]
		}
	}
	if n > len(sorted) {
		n = len(sorted)
	}
	return sorted[:n]
}

// PriceBand is the derived premium band for a score and coverage amount.
// Recomputed each call, never cached.
type PriceBand struct {
	BaseRate       float64 `json:"base_rate"`
	RiskMultiplier float64 `json:"risk_multiplier"`
	BasePremium    float64 `json:"base_premium"`
	Low            float64 `json:"annual_premium_low"`
	Calculated     float64 `json:"annual_premium_calculated"`
	Recommended    float64 `json:"annual_premium_recommended"`
	High           float64 `json:"annual_premium_high"`
}

// SentimentFactor is a contributing factor with directional sentiment
// ("positive", "negative", or "neutral").
type SentimentFactor struct {
	Text      string `json:"text"`
	Sentiment string `json:"sentiment"`
}

// PatternInsight is the externally derived multi-attribute correlation
// summary. Immutable once returned.
type PatternInsight struct {
	PatternDescription      string            `json:"pattern_description"`
	CohortSize              int               `json:"cohort_size"`
	ClaimRate               float64           `json:"claim_rate"`
	BaselineClaimRate       float64           `json:"baseline_claim_rate"`
	RiskMultiplier          float64           `json:"risk_multiplier"`
	Confidence              string            `json:"confidence"`
	KeyFactors              []string          `json:"key_factors"`
	KeyFactorsDetailed      []SentimentFactor `json:"key_factors_with_sentiment,omitempty"`
	Recommendation          string            `json:"recommendation"`
	StatisticalSignificance string            `json:"statistical_significance"`
	SuggestedPricePosition  float64           `json:"suggested_price_position"`
}

// InsightSource records where an assessment's insight came from.
type InsightSource string

const (
	InsightNone     InsightSource = "none"
	InsightModel    InsightSource = "model"
	InsightCached   InsightSource = "cache"
	InsightFallback InsightSource = "fallback"
)

// PolicyEstimate projects expected policy tenure from historical outcomes.
type PolicyEstimate struct {
	PredictedDurationYears float64 `json:"predicted_policy_duration_years"`
	AttritionLikelihood    float64 `json:"attrition_likelihood"`
}

/// Assessment is the complete per-customer result: score, price band, audit
// trail, and optional pattern insight.
type Assessment struct {
	CustomerID     string          `json:"customer_id"`
	Scoring        ScoringResult   `json:"scoring"`
	Price          PriceBand       `json:"pricing"`
	Insight        *PatternInsight `json:"pattern_insight,omitempty"`
	InsightSource  InsightSource   `json:"insight_source"`
	PolicyEstimate PolicyEstimate  `json:"policy_estimate"`
	Summary        string          `json:"summary"`
}
