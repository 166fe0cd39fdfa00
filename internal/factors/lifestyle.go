package factors

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/ewise123/insurance-pricing-engine/internal/cohort"
	"github.com/ewise123/insurance-pricing-engine/internal/model"
)

var usd = message.NewPrinter(language.AmericanEnglish)

func evalSmoking(ctx context.Context, p *model.CustomerProfile, src CohortSource) outcome {
	var risk float64
	switch p.Smoking {
	case model.SmokingNever:
		risk = 0.1
	case model.SmokingFormerOver5:
		risk = 0.3
	case model.SmokingFormerUnder5:
		risk = 0.5
	case model.SmokingCurrent:
		risk = 0.95
	default:
		return outcome{
			value:    "Unknown",
			risk:     neutralRisk,
			note:     "Smoking status not provided. Scored at the neutral midpoint.",
			degraded: true,
		}
	}

	coh := lookupCohort(ctx, src, cohort.Filter{Smoking: p.Smoking})

	note := fmt.Sprintf(
		"Smoking Status: %s. Smoking is the single largest modifiable risk factor for mortality. "+
			"Current smokers run 2-3x the mortality of non-smokers from cancer, heart disease, "+
			"and respiratory illness. This status carries a %.2f risk factor.",
		p.Smoking, risk)
	if coh != nil {
		note += usd.Sprintf(" %s customers (n=%d) average $%.0f annual premiums.",
			p.Smoking, coh.Size, coh.AvgPremium)
	}

	return outcome{value: string(p.Smoking), risk: risk, note: note, cohort: coh}
}

func evalAlcohol(ctx context.Context, p *model.CustomerProfile, src CohortSource) outcome {
	var risk float64
	switch p.Alcohol {
	case model.AlcoholNone:
		risk = 0.2
	case model.AlcoholLight:
		risk = 0.25
	case model.AlcoholModerate:
		risk = 0.4
	case model.AlcoholHeavy:
		risk = 0.8
	default:
		return outcome{
			value:    "Unknown",
			risk:     neutralRisk,
			note:     "Alcohol consumption not provided. Scored at the neutral midpoint.",
			degraded: true,
		}
	}

	coh := lookupCohort(ctx, src, cohort.Filter{Alcohol: p.Alcohol})

	note := fmt.Sprintf(
		"Alcohol Consumption: %s. Heavy use raises mortality through liver disease, accidents, "+
			"and cardiovascular issues, while mortality by consumption follows a J-curve. "+
			"This level has a %.2f risk factor.",
		p.Alcohol, risk)
	if coh != nil {
		note += fmt.Sprintf(" Customers with %s consumption (n=%d) average %.2f risk.",
			strings.ToLower(string(p.Alcohol)), coh.Size, coh.AvgRiskScore)
	}

	return outcome{value: string(p.Alcohol), risk: risk, note: note, cohort: coh}
}

func evalExercise(ctx context.Context, p *model.CustomerProfile, src CohortSource) outcome {
	var risk float64
	switch p.Exercise {
	case model.ExerciseSedentary:
		risk = 0.7
	case model.ExerciseLight:
		risk = 0.5
	case model.ExerciseModerate:
		risk = 0.3
	case model.ExerciseActive:
		risk = 0.15
	default:
		return outcome{
			value:    "Unknown",
			risk:     neutralRisk,
			note:     "Exercise frequency not provided. Scored at the neutral midpoint.",
			degraded: true,
		}
	}

	coh := lookupCohort(ctx, src, cohort.Filter{Exercise: p.Exercise})

	note := fmt.Sprintf(
		"Exercise Frequency: %s. Regular physical activity is strongly protective against "+
			"all-cause mortality, reducing risk by 20-30%%. This activity level has a %.2f risk factor.",
		p.Exercise, risk)
	if coh != nil {
		note += fmt.Sprintf(" %s customers (n=%d) have average BMI of %.1f.",
			p.Exercise, coh.Size, coh.AvgBMI)
	}

	return outcome{value: string(p.Exercise), risk: risk, note: note, cohort: coh}
}

func evalHobbies(ctx context.Context, p *model.CustomerProfile, src CohortSource) outcome {
	hobby := p.DangerousHobbies
	hasHobby := hobby != "None" && hobby != ""

	risk := 0.1
	if hasHobby {
		risk = 0.9
	}

	coh := lookupCohort(ctx, src, cohort.Filter{HasHobby: ptr(hasHobby)})

	note := fmt.Sprintf("Dangerous Hobbies: %s. ", hobby)
	if hasHobby {
		note += fmt.Sprintf(
			"Participation in %s substantially raises accident and fatality risk over the general "+
				"population. Risk factor: %.2f.",
			strings.ToLower(hobby), risk)
	} else {
		note += fmt.Sprintf("No high-risk recreational activities reported. Risk factor: %.2f.", risk)
	}
	if coh != nil {
		if hasHobby {
			note += fmt.Sprintf(" Customers with dangerous hobbies (n=%d) average %.2f risk.",
				coh.Size, coh.AvgRiskScore)
		} else {
			note += fmt.Sprintf(" Customers without dangerous hobbies (n=%d) average %.2f risk.",
				coh.Size, coh.AvgRiskScore)
		}
	}

	return outcome{value: hobby, risk: risk, note: note, cohort: coh}
}
