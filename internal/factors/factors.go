// Package factors implements the weighted risk factor evaluators. The set of
// evaluators is closed and ordered; weights are fixed rating-manual values
// that must sum to 1.0.
package factors

import (
	"context"
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/ewise123/insurance-pricing-engine/internal/cohort"
	"github.com/ewise123/insurance-pricing-engine/internal/model"
)

// WeightsVersion identifies the weight table in effect. Bump when the rating
// manual changes.
const WeightsVersion = "2024.1"

// Factor categories as they appear in the audit trail.
const (
	CategoryDemographics = "Demographics"
	CategoryHealth       = "Health Metrics"
	CategoryLifestyle    = "Lifestyle"
	CategoryHistory      = "Medical History"
)

// neutralRisk is the raw contribution assigned when a factor's input is
// unknown. The factor is reported as degraded rather than erroring.
const neutralRisk = 0.5

// CohortSource answers aggregate queries over the historical dataset.
// Evaluators consult it for supporting context only; a nil source or a query
// failure never fails an evaluation.
type CohortSource interface {
	Summary(ctx context.Context, f cohort.Filter) (*model.CohortSummary, error)
}

// outcome is the raw product of one evaluator before weighting.
type outcome struct {
	value    string
	risk     float64
	note     string
	degraded bool
	cohort   *model.CohortSummary
}

type evalFunc func(ctx context.Context, p *model.CustomerProfile, src CohortSource) outcome

// Evaluator is one weighted risk factor.
type Evaluator struct {
	Name     string
	Category string
	Weight   float64
	eval     evalFunc
}

// Evaluate runs the factor against a profile and returns its audit entry.
func (e Evaluator) Evaluate(ctx context.Context, p *model.CustomerProfile, src CohortSource) model.FactorResult {
	out := e.eval(ctx, p, src)
	return model.FactorResult{
		Category:         e.Category,
		Factor:           e.Name,
		Value:            out.value,
		RiskContribution: out.risk,
		Weight:           e.Weight,
		WeightedScore:    round4(out.risk * e.Weight),
		Explanation:      out.note,
		Degraded:         out.degraded,
		Cohort:           out.cohort,
	}
}

// All returns the full evaluator set in canonical scoring order.
func All() []Evaluator {
	return []Evaluator{
		{Name: "Age", Category: CategoryDemographics, Weight: 0.20, eval: evalAge},
		{Name: "Gender", Category: CategoryDemographics, Weight: 0.05, eval: evalGender},
		{Name: "Occupation", Category: CategoryDemographics, Weight: 0.10, eval: evalOccupation},
		{Name: "Body Mass Index (BMI)", Category: CategoryHealth, Weight: 0.15, eval: evalBMI},
		{Name: "Blood Pressure", Category: CategoryHealth, Weight: 0.10, eval: evalBloodPressure},
		{Name: "Cholesterol", Category: CategoryHealth, Weight: 0.08, eval: evalCholesterol},
		{Name: "Smoking Status", Category: CategoryLifestyle, Weight: 0.15, eval: evalSmoking},
		{Name: "Alcohol Consumption", Category: CategoryLifestyle, Weight: 0.05, eval: evalAlcohol},
		{Name: "Exercise Frequency", Category: CategoryLifestyle, Weight: 0.04, eval: evalExercise},
		{Name: "Chronic Conditions", Category: CategoryHistory, Weight: 0.10, eval: evalChronic},
		{Name: "Family History", Category: CategoryHistory, Weight: 0.05, eval: evalFamilyHistory},
		{Name: "Dangerous Hobbies", Category: CategoryLifestyle, Weight: 0.03, eval: evalHobbies},
	}
}

// ValidateWeights confirms the evaluator weights sum to 1.0 within 1e-6.
// Called once at startup; a failure is a build-time defect.
func ValidateWeights(evals []Evaluator) error {
	var sum float64
	for _, e := range evals {
		sum += e.Weight
	}
	if math.Abs(sum-1.0) > 1e-6 {
		return &WeightSumError{Sum: sum}
	}
	return nil
}

// WeightSumError reports a weight table that does not sum to 1.0.
type WeightSumError struct {
	Sum float64
}

func (e *WeightSumError) Error() string {
	return fmt.Sprintf("factors: weights must sum to 1.0, got %.6f", e.Sum)
}

// lookupCohort runs a summary query, degrading to no supporting data on any
// failure. Scoring never depends on the historical dataset being present.
func lookupCohort(ctx context.Context, src CohortSource, f cohort.Filter) *model.CohortSummary {
	if src == nil {
		return nil
	}
	sum, err := src.Summary(ctx, f)
	if err != nil {
		zap.L().Warn("factors: cohort lookup failed", zap.Error(err))
		return nil
	}
	return sum
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}

func ptr[T any](v T) *T { return &v }
