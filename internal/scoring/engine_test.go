package scoring

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ewise123/insurance-pricing-engine/internal/model"
	"github.com/ewise123/insurance-pricing-engine/internal/pricing"
)

func midlifeProfile() *model.CustomerProfile {
	bmi := 28.4
	systolic, diastolic := 138, 88
	chol := 225
	return &model.CustomerProfile{
		CustomerID:        "CUST-2041",
		Age:               57,
		Gender:            model.GenderMale,
		Occupation:        "Electrician",
		OccupationClass:   model.OccupationClassII,
		BMI:               &bmi,
		SystolicBP:        &systolic,
		DiastolicBP:       &diastolic,
		TotalCholesterol:  &chol,
		Smoking:           model.SmokingFormerUnder5,
		Alcohol:           model.AlcoholLight,
		Exercise:          model.ExerciseModerate,
		ChronicConditions: "Hypertension",
		FamilyHistory:     "None",
		DangerousHobbies:  "None",
		CoverageRequested: 1450000,
	}
}

func newEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := New(nil)
	require.NoError(t, err)
	return e
}

func TestScoreMidlifeFormerSmoker(t *testing.T) {
	e := newEngine(t)
	res, err := e.Score(context.Background(), midlifeProfile())
	require.NoError(t, err)

	// 0.08 + 0.0275 + 0.04 + 0.06 + 0.05 + 0.04 + 0.075 + 0.0125 + 0.012
	// + 0.06 + 0.01 + 0.003
	assert.InDelta(t, 0.47, res.Score, 1e-4)
	assert.Equal(t, model.TierAverage, res.Tier)
	assert.Empty(t, res.DegradedFactors)
	assert.Len(t, res.Factors, 12)

	top := res.TopFactors(1)
	require.Len(t, top, 1)
	assert.Equal(t, "Age", top[0].Factor)
	assert.InDelta(t, 0.08, top[0].WeightedScore, 1e-4)

	band, err := pricing.Band(57, res.Score, 1450000)
	require.NoError(t, err)
	assert.InDelta(t, 7062.23, band.Low, 0.02)
	assert.InDelta(t, 10385.63, band.High, 0.02)
	assert.GreaterOrEqual(t, band.Recommended, band.Low)
	assert.LessOrEqual(t, band.Recommended, band.High)
}

func TestScorePreservesFactorOrder(t *testing.T) {
	e := newEngine(t)
	res, err := e.Score(context.Background(), midlifeProfile())
	require.NoError(t, err)

	want := []string{
		"Age", "Gender", "Occupation",
		"Body Mass Index (BMI)", "Blood Pressure", "Cholesterol",
		"Smoking Status", "Alcohol Consumption", "Exercise Frequency",
		"Chronic Conditions", "Family History", "Dangerous Hobbies",
	}
	for i, f := range res.Factors {
		assert.Equal(t, want[i], f.Factor, "position %d", i)
	}
}

func TestScoreUnknownFieldsDegrade(t *testing.T) {
	e := newEngine(t)
	p := &model.CustomerProfile{CustomerID: "CUST-X", Age: 40, CoverageRequested: 100000}

	res, err := e.Score(context.Background(), p)
	require.NoError(t, err)
	assert.Len(t, res.DegradedFactors, 8)
	assert.Greater(t, res.Score, 0.0)
	assert.LessOrEqual(t, res.Score, 1.0)
}

func TestScoreRejectsInvalidProfile(t *testing.T) {
	e := newEngine(t)

	_, err := e.Score(context.Background(), &model.CustomerProfile{CustomerID: "", Age: 40})
	assert.Error(t, err)

	_, err = e.Score(context.Background(), &model.CustomerProfile{CustomerID: "C-1", Age: 300})
	assert.Error(t, err)
}

func TestConfidenceHeuristic(t *testing.T) {
	e := newEngine(t)

	res, err := e.Score(context.Background(), midlifeProfile())
	require.NoError(t, err)
	assert.Equal(t, "Very High", res.Confidence)

	risky := midlifeProfile()
	risky.Age = 72
	risky.DangerousHobbies = "Skydiving"
	res, err = e.Score(context.Background(), risky)
	require.NoError(t, err)
	// 0.9 * 0.9 = 0.81 lands in the High band.
	assert.Equal(t, "High", res.Confidence)
}

func TestTierBoundaries(t *testing.T) {
	assert.Equal(t, model.TierVeryLow, model.TierForScore(0.249))
	assert.Equal(t, model.TierLow, model.TierForScore(0.25))
	assert.Equal(t, model.TierAverage, model.TierForScore(0.35))
	assert.Equal(t, model.TierElevated, model.TierForScore(0.50))
	assert.Equal(t, model.TierHigh, model.TierForScore(0.65))
}

func TestSummaryContents(t *testing.T) {
	e := newEngine(t)
	p := midlifeProfile()
	res, err := e.Score(context.Background(), p)
	require.NoError(t, err)

	band, err := pricing.Band(p.Age, res.Score, p.CoverageRequested)
	require.NoError(t, err)

	summary := Summary(p, &res, band)
	assert.Contains(t, summary, "EXECUTIVE SUMMARY - Customer CUST-2041")
	assert.Contains(t, summary, "Average Risk - Standard")
	assert.Contains(t, summary, "TOP RISK FACTORS:")
	assert.Contains(t, summary, "PROTECTIVE FACTORS:")
	assert.Contains(t, summary, "1. Age:")
	assert.Contains(t, summary, "$1,450,000")
	assert.NotContains(t, summary, "DATA GAPS")

	sparse := &model.CustomerProfile{CustomerID: "CUST-X", Age: 40, CoverageRequested: 100000}
	res, err = e.Score(context.Background(), sparse)
	require.NoError(t, err)
	band, err = pricing.Band(sparse.Age, res.Score, sparse.CoverageRequested)
	require.NoError(t, err)
	summary = Summary(sparse, &res, band)
	assert.Contains(t, summary, "DATA GAPS")
	assert.True(t, strings.Contains(summary, "Smoking Status"))
}
