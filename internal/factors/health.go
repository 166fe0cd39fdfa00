package factors

import (
	"context"
	"fmt"

	"github.com/ewise123/insurance-pricing-engine/internal/cohort"
	"github.com/ewise123/insurance-pricing-engine/internal/model"
)

func evalBMI(ctx context.Context, p *model.CustomerProfile, src CohortSource) outcome {
	if p.BMI == nil {
		return outcome{
			value:    "Unknown",
			risk:     neutralRisk,
			note:     "BMI not provided. Scored at the neutral midpoint.",
			degraded: true,
		}
	}

	bmi := *p.BMI
	var risk float64
	var band string
	switch {
	case bmi < 18.5:
		risk, band = 0.4, "Underweight"
	case bmi < 25:
		risk, band = 0.2, "Normal"
	case bmi < 30:
		risk, band = 0.4, "Overweight"
	case bmi < 35:
		risk, band = 0.6, "Obese Class I"
	case bmi < 40:
		risk, band = 0.8, "Obese Class II"
	default:
		risk, band = 0.95, "Obese Class III"
	}

	coh := lookupCohort(ctx, src, cohort.Filter{
		BMIMin: ptr(bmi - 2),
		BMIMax: ptr(bmi + 2),
	})

	note := fmt.Sprintf(
		"BMI: %.1f (%s). Body Mass Index is strongly correlated with mortality risk. "+
			"Both underweight and overweight conditions raise mortality through different mechanisms "+
			"(malnutrition vs. cardiovascular disease and diabetes). This BMI level carries a %.2f risk factor.",
		bmi, band, risk)
	if coh != nil {
		note += fmt.Sprintf(" Customers with similar BMI (n=%d) have %.2f%% chronic condition rates.",
			coh.Size, coh.ChronicPct)
	}

	return outcome{
		value:  fmt.Sprintf("%.1f (%s)", bmi, band),
		risk:   risk,
		note:   note,
		cohort: coh,
	}
}

func evalBloodPressure(ctx context.Context, p *model.CustomerProfile, src CohortSource) outcome {
	if p.SystolicBP == nil {
		return outcome{
			value:    "Unknown",
			risk:     neutralRisk,
			note:     "Blood pressure not provided. Scored at the neutral midpoint.",
			degraded: true,
		}
	}

	systolic := *p.SystolicBP
	var risk float64
	var stage string
	switch {
	case systolic < 120:
		risk, stage = 0.1, "Normal"
	case systolic < 130:
		risk, stage = 0.3, "Elevated"
	case systolic < 140:
		risk, stage = 0.5, "High (Stage 1)"
	case systolic < 160:
		risk, stage = 0.7, "High (Stage 2)"
	default:
		risk, stage = 0.9, "Very High (Crisis)"
	}

	coh := lookupCohort(ctx, src, cohort.Filter{
		SystolicMin: ptr(systolic - 10),
		SystolicMax: ptr(systolic + 10),
	})

	diastolic := "?"
	if p.DiastolicBP != nil {
		diastolic = fmt.Sprintf("%d", *p.DiastolicBP)
	}

	note := fmt.Sprintf(
		"Blood Pressure: %d/%s mmHg (%s). Hypertension is a leading risk factor for heart disease, "+
			"stroke, and kidney disease. Staging follows AHA systolic thresholds. "+
			"This reading carries a %.2f risk factor.",
		systolic, diastolic, stage, risk)
	if coh != nil {
		note += fmt.Sprintf(" Customers with similar BP (n=%d) average %.2f risk scores.",
			coh.Size, coh.AvgRiskScore)
	}

	return outcome{
		value:  fmt.Sprintf("%d/%s mmHg (%s)", systolic, diastolic, stage),
		risk:   risk,
		note:   note,
		cohort: coh,
	}
}

func evalCholesterol(ctx context.Context, p *model.CustomerProfile, src CohortSource) outcome {
	if p.TotalCholesterol == nil {
		return outcome{
			value:    "Unknown",
			risk:     neutralRisk,
			note:     "Cholesterol panel not provided. Scored at the neutral midpoint.",
			degraded: true,
		}
	}

	total := *p.TotalCholesterol
	var risk float64
	var band string
	switch {
	case total < 200:
		risk, band = 0.2, "Desirable"
	case total < 240:
		risk, band = 0.5, "Borderline High"
	default:
		risk, band = 0.8, "High"
	}

	coh := lookupCohort(ctx, src, cohort.Filter{
		CholesterolMin: ptr(total - 20),
		CholesterolMax: ptr(total + 20),
	})

	hdl, ldl := "?", "?"
	if p.HDLCholesterol != nil {
		hdl = fmt.Sprintf("%d", *p.HDLCholesterol)
	}
	if p.LDLCholesterol != nil {
		ldl = fmt.Sprintf("%d", *p.LDLCholesterol)
	}

	note := fmt.Sprintf(
		"Total Cholesterol: %d mg/dL (HDL: %s, LDL: %s), %s. High cholesterol is a major risk factor "+
			"for atherosclerosis and coronary artery disease. This profile carries a %.2f risk factor.",
		total, hdl, ldl, band, risk)
	if coh != nil {
		note += fmt.Sprintf(" Similar cholesterol profiles (n=%d) average %.2f risk.",
			coh.Size, coh.AvgRiskScore)
	}

	return outcome{
		value:  fmt.Sprintf("%d mg/dL (%s)", total, band),
		risk:   risk,
		note:   note,
		cohort: coh,
	}
}
