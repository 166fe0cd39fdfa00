package cohort

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ewise123/insurance-pricing-engine/internal/model"
)

func testRecord(id string, age float64, smoking model.SmokingStatus, claim bool) model.HistoricalRecord {
	bmi := 26.0
	chol := 210
	return model.HistoricalRecord{
		CustomerProfile: model.CustomerProfile{
			CustomerID:        id,
			Age:               age,
			Gender:            model.GenderMale,
			Occupation:        "Accountant",
			OccupationClass:   model.OccupationClassI,
			BMI:               &bmi,
			TotalCholesterol:  &chol,
			Smoking:           smoking,
			Alcohol:           model.AlcoholLight,
			Exercise:          model.ExerciseModerate,
			ChronicConditions: "None",
			FamilyHistory:     "None",
			DangerousHobbies:  "None",
			CoverageRequested: 500000,
		},
		RiskScoreAssigned: 0.4,
		PremiumAssigned:   1200,
		PolicyAccepted:    true,
		PolicyActive:      true,
		ClaimFiled:        claim,
		PolicyIssueDate:   time.Date(2019, 6, 1, 0, 0, 0, 0, time.UTC),
	}
}

func loadStore(t *testing.T, records []model.HistoricalRecord) *Store {
	t.Helper()
	s, err := Open()
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	var buf strings.Builder
	require.NoError(t, model.WriteHistorical(&buf, records))

	n, err := s.Load(context.Background(), strings.NewReader(buf.String()))
	require.NoError(t, err)
	require.Equal(t, len(records), n)
	return s
}

func TestLoadComputesBaseline(t *testing.T) {
	records := []model.HistoricalRecord{
		testRecord("H-1", 40, model.SmokingNever, false),
		testRecord("H-2", 45, model.SmokingNever, true),
		testRecord("H-3", 50, model.SmokingCurrent, true),
		testRecord("H-4", 55, model.SmokingCurrent, false),
	}
	s := loadStore(t, records)

	b := s.Baseline()
	assert.Equal(t, 4, b.TotalCustomers)
	assert.InDelta(t, 0.5, b.OverallClaimRate, 1e-9)
	assert.InDelta(t, 0.4, b.AvgRiskScore, 1e-9)
	assert.InDelta(t, 1200, b.AvgPremium, 1e-9)
	assert.InDelta(t, 1.0, b.AcceptanceRate, 1e-9)
}

func TestLoadRejectsSecondLoad(t *testing.T) {
	s := loadStore(t, []model.HistoricalRecord{testRecord("H-1", 40, model.SmokingNever, false)})

	_, err := s.Load(context.Background(), strings.NewReader("customer_id,age\n"))
	assert.Error(t, err)
}

func TestSummaryFilters(t *testing.T) {
	records := []model.HistoricalRecord{
		testRecord("H-1", 30, model.SmokingNever, false),
		testRecord("H-2", 35, model.SmokingNever, true),
		testRecord("H-3", 60, model.SmokingCurrent, true),
	}
	s := loadStore(t, records)

	sum, err := s.Summary(context.Background(), Filter{
		AgeMin: ptr(25.0), AgeMax: ptr(40.0),
	})
	require.NoError(t, err)
	require.NotNil(t, sum)
	assert.Equal(t, 2, sum.Size)
	assert.InDelta(t, 50.0, sum.ClaimRatePct, 1e-9)

	// Empty cohort is a nil summary, not an error.
	sum, err = s.Summary(context.Background(), Filter{AgeMin: ptr(90.0)})
	require.NoError(t, err)
	assert.Nil(t, sum)
}

func TestSummaryCategoricalFilters(t *testing.T) {
	records := []model.HistoricalRecord{
		testRecord("H-1", 40, model.SmokingNever, false),
		testRecord("H-2", 42, model.SmokingCurrent, true),
	}
	s := loadStore(t, records)

	sum, err := s.Summary(context.Background(), Filter{Smoking: model.SmokingCurrent})
	require.NoError(t, err)
	require.NotNil(t, sum)
	assert.Equal(t, 1, sum.Size)
	assert.InDelta(t, 100.0, sum.ClaimRatePct, 1e-9)
}

func TestSimilarCohortRelaxesWhenSmall(t *testing.T) {
	// Only 3 exact matches but many in the wider age band, so the relaxed
	// query should be the one that answers.
	var records []model.HistoricalRecord
	for i := 0; i < 60; i++ {
		rec := testRecord("H-wide", 52, model.SmokingNever, i%4 == 0)
		rec.CustomerID = rec.CustomerID + "-" + string(rune('A'+i%26)) + string(rune('a'+i/26))
		records = append(records, rec)
	}
	probe := &model.CustomerProfile{
		CustomerID: "C-1",
		Age:        40,
		Gender:     model.GenderMale,
		Smoking:    model.SmokingCurrent,
	}
	s := loadStore(t, records)

	cs, err := s.SimilarCohort(context.Background(), probe)
	require.NoError(t, err)
	assert.Equal(t, 60, cs.Size)
}

func TestSubPatternsSkipSmallSlices(t *testing.T) {
	var records []model.HistoricalRecord
	for i := 0; i < 15; i++ {
		rec := testRecord("H", 45, model.SmokingNever, i%3 == 0)
		rec.CustomerID = rec.CustomerID + "-" + string(rune('A'+i))
		records = append(records, rec)
	}
	s := loadStore(t, records)

	bmi := 26.5
	chol := 205
	probe := &model.CustomerProfile{
		CustomerID:       "C-1",
		Age:              44,
		Smoking:          model.SmokingNever,
		BMI:              &bmi,
		TotalCholesterol: &chol,
		OccupationClass:  model.OccupationClassI,
		Exercise:         model.ExerciseModerate,
	}

	patterns, err := s.SubPatterns(context.Background(), probe)
	require.NoError(t, err)
	require.NotEmpty(t, patterns)
	for _, p := range patterns {
		assert.Greater(t, p.Size, 10)
		assert.NotEmpty(t, p.Description)
	}
}

func TestTenureMetricsFromCohort(t *testing.T) {
	var records []model.HistoricalRecord
	for i := 0; i < 60; i++ {
		rec := testRecord("H", 50, model.SmokingNever, false)
		rec.CustomerID = rec.CustomerID + "-" + string(rune('A'+i%26)) + string(rune('a'+i/26))
		rec.PolicyActive = i%5 != 0
		records = append(records, rec)
	}
	s := loadStore(t, records)

	probe := &model.CustomerProfile{
		CustomerID:      "C-1",
		Age:             50,
		OccupationClass: model.OccupationClassI,
		Smoking:         model.SmokingNever,
	}
	est, err := s.TenureMetrics(context.Background(), probe)
	require.NoError(t, err)
	require.NotNil(t, est)
	assert.InDelta(t, 0.2, est.AttritionLikelihood, 1e-9)
	assert.Greater(t, est.PredictedDurationYears, 1.0)
	assert.LessOrEqual(t, est.PredictedDurationYears, 30.0)
}

func TestTenureMetricsEmptyStore(t *testing.T) {
	s, err := Open()
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	probe := &model.CustomerProfile{CustomerID: "C-1", Age: 40}
	est, err := s.TenureMetrics(context.Background(), probe)
	require.NoError(t, err)
	assert.Nil(t, est)
}
