// Package scoring runs the full evaluator set against a profile and
// aggregates the weighted contributions into a final risk score.
package scoring

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/ewise123/insurance-pricing-engine/internal/factors"
	"github.com/ewise123/insurance-pricing-engine/internal/model"
)

// Engine aggregates the weighted factor evaluators. Safe for concurrent use;
// all per-call state lives on the stack.
type Engine struct {
	evals []factors.Evaluator
	src   factors.CohortSource
}

// New builds an engine over the historical cohort source. The source may be
// nil, in which case factors score without supporting data. The weight table
// is validated once here.
func New(src factors.CohortSource) (*Engine, error) {
	evals := factors.All()
	if err := factors.ValidateWeights(evals); err != nil {
		return nil, eris.Wrap(err, "scoring: weight table")
	}
	return &Engine{evals: evals, src: src}, nil
}

// Score validates the profile, runs every evaluator in canonical order, and
// returns the ordered audit trail with the clamped aggregate score.
func (e *Engine) Score(ctx context.Context, p *model.CustomerProfile) (model.ScoringResult, error) {
	p.Normalize()
	if err := p.Validate(); err != nil {
		return model.ScoringResult{}, eris.Wrap(err, "scoring: validate profile")
	}

	res := model.ScoringResult{
		CustomerID: p.CustomerID,
		Factors:    make([]model.FactorResult, 0, len(e.evals)),
	}

	var total float64
	for _, ev := range e.evals {
		fr := ev.Evaluate(ctx, p, e.src)
		res.Factors = append(res.Factors, fr)
		total += fr.WeightedScore
		if fr.Degraded {
			res.DegradedFactors = append(res.DegradedFactors, fr.Factor)
		}
	}

	if total < 0 {
		total = 0
	}
	if total > 1 {
		total = 1
	}
	res.Score = round4(total)
	res.Tier = model.TierForScore(res.Score)
	res.Confidence = confidence(p, res.Score)

	zap.L().Debug("scoring: profile scored",
		zap.String("customer_id", p.CustomerID),
		zap.Float64("score", res.Score),
		zap.String("tier", string(res.Tier)),
		zap.Int("degraded_factors", len(res.DegradedFactors)),
	)
	return res, nil
}

// confidence grades how much the assessment should be trusted. Sparse
// actuarial data at the age extremes, extreme scores, hobbies, and stacked
// chronic conditions all shave it down.
func confidence(p *model.CustomerProfile, score float64) string {
	c := 1.0
	if p.Age < 25 || p.Age > 70 {
		c *= 0.9
	}
	if score > 0.7 {
		c *= 0.85
	}
	if p.DangerousHobbies != "None" && p.DangerousHobbies != "" {
		c *= 0.9
	}
	if model.ListCount(p.ChronicConditions) >= 2 {
		c *= 0.92
	}

	switch {
	case c >= 0.95:
		return "Very High"
	case c >= 0.85:
		return "High"
	case c >= 0.75:
		return "Moderate"
	default:
		return "Low"
	}
}

var usd = message.NewPrinter(language.AmericanEnglish)

// Summary renders the executive summary for an assessment.
func Summary(p *model.CustomerProfile, res *model.ScoringResult, band model.PriceBand) string {
	topRisks := res.TopFactors(3)
	protective := res.BottomFactors(2)

	var b strings.Builder
	fmt.Fprintf(&b, "EXECUTIVE SUMMARY - Customer %s\n", p.CustomerID)
	b.WriteString(strings.Repeat("=", 70) + "\n\n")

	fmt.Fprintf(&b, "RISK ASSESSMENT: %s\n", res.Tier.Label())
	fmt.Fprintf(&b, "Final Risk Score: %.2f (0 = lowest risk, 1 = highest risk)\n\n", res.Score)

	b.WriteString("PRICING RECOMMENDATION:\n")
	usd.Fprintf(&b, "  - Recommended Annual Premium: $%.2f\n", band.Recommended)
	usd.Fprintf(&b, "  - Price Range: $%.2f - $%.2f\n", band.Low, band.High)
	usd.Fprintf(&b, "  - Coverage Amount: $%d\n\n", p.CoverageRequested)

	b.WriteString("CUSTOMER PROFILE:\n")
	fmt.Fprintf(&b, "  - Age: %.0f | Gender: %s | Occupation: %s\n",
		p.Age, orUnknown(string(p.Gender)), orUnknown(p.Occupation))
	fmt.Fprintf(&b, "  - BMI: %s | BP: %s\n", bmiField(p), bpField(p))
	fmt.Fprintf(&b, "  - Smoking: %s\n\n", orUnknown(string(p.Smoking)))

	b.WriteString("TOP RISK FACTORS:\n")
	for i, f := range topRisks {
		fmt.Fprintf(&b, "  %d. %s: %s (+%.2f to risk score)\n", i+1, f.Factor, f.Value, f.WeightedScore)
	}
	b.WriteString("\nPROTECTIVE FACTORS:\n")
	for i, f := range protective {
		fmt.Fprintf(&b, "  %d. %s: %s (Low risk contribution: %.2f)\n", i+1, f.Factor, f.Value, f.WeightedScore)
	}

	b.WriteString("\nUNDERWRITER NOTES:\n")
	usd.Fprintf(&b,
		"Based on the comprehensive risk assessment across %d factors, this customer presents a %s profile. "+
			"The pricing recommendation of $%.2f annually provides adequate margin while remaining competitive.\n",
		len(res.Factors), strings.ToLower(res.Tier.Label()), band.Recommended)

	if len(res.DegradedFactors) > 0 {
		fmt.Fprintf(&b, "\nDATA GAPS: %s scored at neutral values; consider requesting the missing information.\n",
			strings.Join(res.DegradedFactors, ", "))
	}

	switch {
	case res.Score > 0.6:
		b.WriteString("\nHIGH RISK: Consider requiring additional medical examination or aviation/hobby questionnaire.")
	case res.Score < 0.3:
		b.WriteString("\nPREFERRED RISK: Excellent candidate for accelerated underwriting and competitive pricing.")
	}

	return strings.TrimSpace(b.String())
}

func orUnknown(v string) string {
	if v == "" {
		return "Unknown"
	}
	return v
}

func bmiField(p *model.CustomerProfile) string {
	if p.BMI == nil {
		return "Unknown"
	}
	return fmt.Sprintf("%.1f", *p.BMI)
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

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
