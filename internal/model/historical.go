package model

import "time"

// HistoricalRecord is a past applicant with realized underwriting outcomes.
// Records are loaded once at process start and never mutated.
type HistoricalRecord struct {
	CustomerProfile

	RiskScoreCalculated float64   `json:"risk_score_calculated"`
	RiskScoreAssigned   float64   `json:"risk_score_assigned"`
	PremiumLowBoundary  float64   `json:"annual_premium_low_boundary"`
	PremiumHighBoundary float64   `json:"annual_premium_high_boundary"`
	PremiumAssigned     float64   `json:"annual_premium_assigned"`
	PolicyAccepted      bool      `json:"policy_accepted"`
	PolicyActive        bool      `json:"policy_active"`
	ClaimFiled          bool      `json:"claim_filed"`
	ClaimAmount         int64     `json:"claim_amount"`
	UnderwriterNotes    string    `json:"underwriter_notes"`
	PolicyIssueDate     time.Time `json:"policy_issue_date"`
}
