package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ewise123/insurance-pricing-engine/internal/insight"
	"github.com/ewise123/insurance-pricing-engine/internal/model"
	"github.com/ewise123/insurance-pricing-engine/internal/scoring"
)

func testProfile(id string) model.CustomerProfile {
	bmi := 26.0
	return model.CustomerProfile{
		CustomerID:        id,
		Age:               44,
		Gender:            model.GenderFemale,
		Occupation:        "Teacher",
		OccupationClass:   model.OccupationClassI,
		BMI:               &bmi,
		Smoking:           model.SmokingNever,
		Alcohol:           model.AlcoholLight,
		Exercise:          model.ExerciseActive,
		ChronicConditions: "None",
		FamilyHistory:     "None",
		DangerousHobbies:  "None",
		CoverageRequested: 500000,
	}
}

func newPipeline(t *testing.T, analyzer *insight.Analyzer) *Pipeline {
	t.Helper()
	scorer, err := scoring.New(nil)
	require.NoError(t, err)
	return New(nil, scorer, analyzer, 3)
}

func TestAssessWithoutAnalyzer(t *testing.T) {
	pl := newPipeline(t, nil)
	p := testProfile("C-100")

	a, err := pl.Assess(context.Background(), &p)
	require.NoError(t, err)

	assert.Equal(t, "C-100", a.CustomerID)
	assert.Equal(t, model.InsightNone, a.InsightSource)
	assert.Nil(t, a.Insight)
	assert.Len(t, a.Scoring.Factors, 12)
	assert.Greater(t, a.Price.Recommended, 0.0)
	assert.GreaterOrEqual(t, a.Price.Recommended, a.Price.Low)
	assert.LessOrEqual(t, a.Price.Recommended, a.Price.High)
	assert.Contains(t, a.Summary, "EXECUTIVE SUMMARY")

	// No historical data, so the formula estimate applies.
	s := a.Scoring.Score
	assert.InDelta(t, 12.0-s*6.0, a.PolicyEstimate.PredictedDurationYears, 1e-9)
	assert.InDelta(t, 0.12+s*0.25, a.PolicyEstimate.AttritionLikelihood, 1e-9)
}

func TestAssessWithFallbackInsightRepositionsPremium(t *testing.T) {
	cache, err := insight.NewFileCache(t.TempDir(), time.Hour)
	require.NoError(t, err)
	analyzer := insight.New(nil, nil, cache, insight.DefaultFingerprint, insight.Options{})

	pl := newPipeline(t, analyzer)
	p := testProfile("C-101")

	a, err := pl.Assess(context.Background(), &p)
	require.NoError(t, err)
	assert.Equal(t, model.InsightFallback, a.InsightSource)
	require.NotNil(t, a.Insight)

	// Fallback suggests position 0.6; recommended sits there in the band.
	want := a.Price.Low + (a.Price.High-a.Price.Low)*0.6
	assert.InDelta(t, want, a.Price.Recommended, 0.02)
	assert.Contains(t, a.Summary, "EXECUTIVE SUMMARY")
}

func TestAssessRejectsInvalidProfile(t *testing.T) {
	pl := newPipeline(t, nil)
	bad := testProfile("")

	_, err := pl.Assess(context.Background(), &bad)
	assert.Error(t, err)
}

func TestAssessRejectsZeroCoverage(t *testing.T) {
	pl := newPipeline(t, nil)
	p := testProfile("C-102")
	p.CoverageRequested = 0

	_, err := pl.Assess(context.Background(), &p)
	assert.Error(t, err)
}

func TestAssessBatchPreservesOrderAndIsolatesFailures(t *testing.T) {
	pl := newPipeline(t, nil)

	profiles := []model.CustomerProfile{
		testProfile("C-1"),
		testProfile(""), // invalid: missing ID
		testProfile("C-3"),
		testProfile("C-4"),
	}

	items := pl.AssessBatch(context.Background(), profiles)
	require.Len(t, items, 4)

	assert.NoError(t, items[0].Err)
	assert.Equal(t, "C-1", items[0].Assessment.CustomerID)

	assert.Error(t, items[1].Err)
	assert.Nil(t, items[1].Assessment)

	assert.Equal(t, "C-3", items[2].Assessment.CustomerID)
	assert.Equal(t, "C-4", items[3].Assessment.CustomerID)
}

func TestHealthSnapshot(t *testing.T) {
	pl := newPipeline(t, nil)
	h := pl.Health()
	assert.Equal(t, "healthy", h.Status)
	assert.False(t, h.RecordsLoaded)
	assert.Equal(t, 0, h.RecordCount)
	assert.False(t, h.AnalysisEnabled)
}
