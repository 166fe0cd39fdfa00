package insight

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/ewise123/insurance-pricing-engine/internal/cohort"
	"github.com/ewise123/insurance-pricing-engine/internal/model"
)

const systemPrompt = `You are an expert actuarial analyst specializing in life insurance risk assessment.
Your role is to analyze historical data patterns and identify complex multi-dimensional relationships
that predict claim rates and risk outcomes. You provide specific, data-driven insights with statistical
rigor. Always cite exact numbers from the data provided.`

var usd = message.NewPrinter(language.AmericanEnglish)

// analysisContext is everything the prompt needs, assembled before the call
// so the fallback path can reuse the same numbers.
type analysisContext struct {
	profile      *model.CustomerProfile
	score        float64
	topFactors   []model.FactorResult
	baseline     cohort.BaselineStats
	cohortStats  *cohort.CohortStats
	subPatterns  []cohort.SubPattern
	totalRecords int
}

func buildPrompt(c *analysisContext) string {
	p := c.profile

	var b strings.Builder
	b.WriteString("Analyze this life insurance applicant's profile against historical data to identify predictive patterns.\n\n")

	b.WriteString("APPLICANT PROFILE:\n")
	fmt.Fprintf(&b, "- ID: %s\n", p.CustomerID)
	fmt.Fprintf(&b, "- Age: %.0f | Gender: %s\n", p.Age, orUnknown(string(p.Gender)))
	fmt.Fprintf(&b, "- Occupation: %s (%s)\n", orUnknown(p.Occupation), orUnknown(string(p.OccupationClass)))
	fmt.Fprintf(&b, "- BMI: %s | Smoking: %s\n", floatField(p.BMI), orUnknown(string(p.Smoking)))
	fmt.Fprintf(&b, "- Blood Pressure: %s | Cholesterol: %s\n", bpField(p), intField(p.TotalCholesterol))
	fmt.Fprintf(&b, "- Chronic Conditions: %s\n", p.ChronicConditions)
	fmt.Fprintf(&b, "- Exercise: %s | Alcohol: %s\n", orUnknown(string(p.Exercise)), orUnknown(string(p.Alcohol)))
	fmt.Fprintf(&b, "- Dangerous Hobbies: %s\n", p.DangerousHobbies)
	fmt.Fprintf(&b, "- Family History: %s\n", p.FamilyHistory)
	usd.Fprintf(&b, "- Coverage Requested: $%d\n", p.CoverageRequested)
	fmt.Fprintf(&b, "- Calculated Risk Score: %.2f\n\n", c.score)

	if len(c.topFactors) > 0 {
		b.WriteString("TOP RISK FACTORS (from deterministic scoring):\n")
		for _, f := range c.topFactors {
			fmt.Fprintf(&b, "- %s: %s (contribution %.4f)\n", f.Factor, f.Value, f.WeightedScore)
		}
		b.WriteString("\n")
	}

	b.WriteString("HISTORICAL DATA CONTEXT:\n")
	usd.Fprintf(&b, "Total Historical Records: %d\n", c.totalRecords)
	fmt.Fprintf(&b, "Overall Baseline Claim Rate: %.2f%%\n\n", c.baseline.OverallClaimRate*100)

	if cs := c.cohortStats; cs != nil {
		b.WriteString("SIMILAR COHORT ANALYSIS:\n")
		fmt.Fprintf(&b, "Cohort Size: %d customers\n", cs.Size)
		fmt.Fprintf(&b, "Cohort Claim Rate: %.2f%%\n", cs.ClaimRate*100)
		fmt.Fprintf(&b, "Actual Claims Filed: %d\n", cs.ClaimsCount)
		fmt.Fprintf(&b, "Average Risk Score: %.2f\n", cs.AvgRiskScore)
		usd.Fprintf(&b, "Average Premium: $%.2f\n", cs.AvgPremium)
	}

	b.WriteString("\nSUB-PATTERN FINDINGS:\n")
	for i, sp := range c.subPatterns {
		fmt.Fprintf(&b, "\n%d. %s\n", i+1, sp.Description)
		fmt.Fprintf(&b, "   - Sample Size: %d customers\n", sp.Size)
		fmt.Fprintf(&b, "   - Claim Rate: %.2f%%\n", sp.ClaimRate*100)
		fmt.Fprintf(&b, "   - Average Risk: %.2f\n", sp.AvgRiskScore)
	}

	fmt.Fprintf(&b, `

YOUR TASK:
1. Identify the MOST PREDICTIVE multi-dimensional pattern from the data
2. Calculate how this pattern's claim rate compares to baseline
3. Determine if this customer matches any HIGH-RISK or LOW-RISK pattern combinations
4. Assess statistical significance (is sample size large enough to be meaningful?)
5. Provide a specific, actionable recommendation
6. For each key factor, label it as positive (protective), negative (risk), or neutral (mixed/unclear)

OUTPUT FORMAT (be specific with numbers):
{
  "pattern_description": "Concise description of the key pattern you identified",
  "cohort_size": number of customers matching this exact pattern,
  "claim_rate": claim rate for this specific pattern (as decimal, e.g., 0.063),
  "risk_multiplier": how much higher/lower than baseline (e.g., 1.34 means 34%% higher),
  "confidence": "high" | "medium" | "low" (based on sample size and consistency),
  "key_factors": ["factor 1", "factor 2", "factor 3"] (the 2-4 factors driving this pattern),
  "key_factors_with_sentiment": [
    {"text": "factor 1", "sentiment": "positive|negative|neutral"},
    {"text": "factor 2", "sentiment": "positive|negative|neutral"}
  ],
  "recommendation": "Specific action for underwriter",
  "statistical_significance": "Explanation of whether sample size is adequate and if pattern is reliable",
  "suggested_price_position": decimal between 0.0 and 1.0 indicating where to place price within low/high range (0 = low boundary, 0.5 = middle, 1 = high boundary)
}

IMPORTANT:
- Focus on COMPOUND factors (combinations matter more than individual factors)
- Be specific with numbers from the data provided
- If sample size is <30, note low confidence
- Compare to baseline (%.2f%%) explicitly
- Explain WHY this pattern matters for risk assessment
- For suggested_price_position: if risk_multiplier > 1.5 suggest 0.7-0.8, if < 0.9 suggest 0.4-0.5, otherwise around 0.6
- For key_factors_with_sentiment: mark clearly risky/worsening factors as "negative" and clearly protective/mitigating factors as "positive"
`, c.baseline.OverallClaimRate*100)

	return b.String()
}

func orUnknown(v string) string {
	if v == "" {
		return "Unknown"
	}
	return v
}

func floatField(v *float64) string {
	if v == nil {
		return "Unknown"
	}
	return fmt.Sprintf("%.1f", *v)
}

func intField(v *int) string {
	if v == nil {
		return "Unknown"
	}
	return fmt.Sprintf("%d", *v)
}

func bpField(p *model.CustomerProfile) string {
	if p.SystolicBP == nil {
		return "Unknown"
	}
	if p.DiastolicBP == nil {
		return fmt.Sprintf("%d/?", *p.SystolicBP)
	}
	return fmt.Sprintf("%d/%d", *p.SystolicBP, *p.DiastolicBP)
}
