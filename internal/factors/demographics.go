package factors

import (
	"context"
	"fmt"

	"github.com/ewise123/insurance-pricing-engine/internal/cohort"
	"github.com/ewise123/insurance-pricing-engine/internal/model"
)

func evalAge(ctx context.Context, p *model.CustomerProfile, src CohortSource) outcome {
	var risk float64
	var bracket string
	switch age := p.Age; {
	case age < 30:
		risk, bracket = 0.1, "under 30"
	case age < 40:
		risk, bracket = 0.15, "30-39"
	case age < 50:
		risk, bracket = 0.25, "40-49"
	case age < 60:
		risk, bracket = 0.4, "50-59"
	case age < 70:
		risk, bracket = 0.6, "60-69"
	default:
		risk, bracket = 0.8, "70+"
	}

	coh := lookupCohort(ctx, src, cohort.Filter{
		AgeMin: ptr(p.Age - 5),
		AgeMax: ptr(p.Age + 5),
	})

	note := fmt.Sprintf(
		"Customer age of %.1f places them in the %s bracket. "+
			"Mortality risk increases with age and this bracket has a base risk factor of %.2f. "+
			"Actuarial tables show mortality rates rising steeply after age 50.",
		p.Age, bracket, risk)
	if coh != nil {
		note += fmt.Sprintf(" In our historical data, customers aged %.0f-%.0f (n=%d) had an average risk score of %.2f with a %.2f%% claim rate.",
			p.Age-5, p.Age+5, coh.Size, coh.AvgRiskScore, coh.ClaimRatePct)
	}

	return outcome{
		value:  fmt.Sprintf("%.1f years", p.Age),
		risk:   risk,
		note:   note,
		cohort: coh,
	}
}

func evalGender(ctx context.Context, p *model.CustomerProfile, src CohortSource) outcome {
	if p.Gender == model.GenderUnknown {
		return outcome{
			value:    "Unknown",
			risk:     neutralRisk,
			note:     "Gender not provided. Scored at the neutral midpoint.",
			degraded: true,
		}
	}

	risk := 0.45
	if p.Gender == model.GenderMale {
		risk = 0.55
	}

	coh := lookupCohort(ctx, src, cohort.Filter{Gender: p.Gender})

	note := fmt.Sprintf(
		"Gender: %s. Actuarial data consistently shows males carry 10-15%% higher mortality rates "+
			"across most age groups from heart disease, accidents, and riskier behavior. "+
			"This results in a risk factor of %.2f.",
		p.Gender, risk)
	if coh != nil {
		note += fmt.Sprintf(" Historical %s customers (n=%d) average a %.2f risk score.",
			p.Gender, coh.Size, coh.AvgRiskScore)
	}

	return outcome{value: string(p.Gender), risk: risk, note: note, cohort: coh}
}

func evalOccupation(ctx context.Context, p *model.CustomerProfile, src CohortSource) outcome {
	var risk float64
	switch p.OccupationClass {
	case model.OccupationClassI:
		risk = 0.2
	case model.OccupationClassII:
		risk = 0.4
	case model.OccupationClassIII:
		risk = 0.7
	case model.OccupationClassIV:
		risk = 0.9
	default:
		return outcome{
			value:    p.Occupation,
			risk:     neutralRisk,
			note:     "Occupation class not provided or unrecognized. Scored at the neutral midpoint.",
			degraded: true,
		}
	}

	coh := lookupCohort(ctx, src, cohort.Filter{OccupationClass: p.OccupationClass})

	note := fmt.Sprintf(
		"Occupation: %s (%s). Occupational mortality varies with workplace hazards, stress, "+
			"and accident exposure. This occupation class carries a %.2f risk factor.",
		p.Occupation, p.OccupationClass, risk)
	if coh != nil {
		note += fmt.Sprintf(" %s workers in our data (n=%d) show %.2f%% claim rates.",
			p.OccupationClass, coh.Size, coh.ClaimRatePct)
	}

	return outcome{
		value:  fmt.Sprintf("%s (%s)", p.Occupation, p.OccupationClass),
		risk:   risk,
		note:   note,
		cohort: coh,
	}
}
