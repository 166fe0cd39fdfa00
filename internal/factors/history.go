package factors

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/ewise123/insurance-pricing-engine/internal/cohort"
	"github.com/ewise123/insurance-pricing-engine/internal/model"
)

func evalChronic(ctx context.Context, p *model.CustomerProfile, src CohortSource) outcome {
	conditions := p.ChronicConditions
	n := model.ListCount(conditions)

	risk := 0.1
	if n > 0 {
		risk = math.Min(0.95, 0.4+float64(n)*0.2)
	}

	coh := lookupCohort(ctx, src, cohort.Filter{ChronicCount: ptr(n)})

	note := fmt.Sprintf("Chronic Conditions: %s. ", conditions)
	if n == 0 {
		note += fmt.Sprintf("No chronic conditions present, which is favorable. Risk factor: %.2f.", risk)
	} else {
		note += fmt.Sprintf(
			"Presence of %d chronic condition(s) significantly increases mortality risk through "+
				"disease progression and comorbidity effects. Risk factor: %.2f.",
			n, risk)
	}
	if coh != nil {
		note += fmt.Sprintf(" Customers with similar condition profiles (n=%d) have %.2f%% claim rates.",
			coh.Size, coh.ClaimRatePct)
	}

	return outcome{value: conditions, risk: risk, note: note, cohort: coh}
}

func evalFamilyHistory(ctx context.Context, p *model.CustomerProfile, src CohortSource) outcome {
	history := p.FamilyHistory
	n := model.ListCount(history)

	risk := 0.2
	if n > 0 {
		risk = math.Min(0.8, 0.4+float64(n)*0.2)
	}

	coh := lookupCohort(ctx, src, cohort.Filter{FamilyCount: ptr(n)})

	note := fmt.Sprintf("Family History: %s. ", history)
	if n == 0 {
		note += fmt.Sprintf("No significant family history reported. Risk factor: %.2f.", risk)
	} else {
		note += fmt.Sprintf(
			"Family history of %s indicates genetic predisposition, particularly for heart disease "+
				"and cancer. Risk factor: %.2f.",
			strings.ToLower(history), risk)
	}
	if coh != nil {
		note += fmt.Sprintf(" Similar family histories (n=%d) average %.2f risk.",
			coh.Size, coh.AvgRiskScore)
	}

	return outcome{value: history, risk: risk, note: note, cohort: coh}
}
