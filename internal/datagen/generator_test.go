package datagen

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ewise123/insurance-pricing-engine/internal/cohort"
	"github.com/ewise123/insurance-pricing-engine/internal/model"
)

func TestGeneratorIsDeterministic(t *testing.T) {
	a := New(42).Profiles(25)
	b := New(42).Profiles(25)
	require.Len(t, a, 25)
	assert.Equal(t, a, b)

	// Outcomes draw from the same stream, so assigned scores repeat too.
	ha := New(42).Historical(25)
	hb := New(42).Historical(25)
	for i := range ha {
		assert.Equal(t, ha[i].RiskScoreAssigned, hb[i].RiskScoreAssigned)
		assert.Equal(t, ha[i].PolicyAccepted, hb[i].PolicyAccepted)
	}

	// A different seed produces a different dataset.
	c := New(7).Profiles(25)
	assert.NotEqual(t, a, c)
}

func TestGeneratedProfilesAreValid(t *testing.T) {
	profiles := New(42).Profiles(200)
	require.Len(t, profiles, 200)

	assert.Equal(t, "NEW-0001", profiles[0].CustomerID)
	assert.Equal(t, "NEW-0200", profiles[199].CustomerID)

	for i := range profiles {
		p := profiles[i]
		require.NoError(t, p.Validate(), p.CustomerID)

		assert.GreaterOrEqual(t, p.Age, 18.0)
		assert.LessOrEqual(t, p.Age, 75.0)

		require.NotNil(t, p.BMI)
		assert.GreaterOrEqual(t, *p.BMI, 17.0)
		assert.LessOrEqual(t, *p.BMI, 45.0)

		assert.GreaterOrEqual(t, p.CoverageRequested, int64(100000))
		assert.LessOrEqual(t, p.CoverageRequested, int64(5000000))
		assert.Zero(t, p.CoverageRequested%50000)

		assert.NotEmpty(t, p.Occupation)
		assert.Contains(t, []model.Gender{model.GenderMale, model.GenderFemale}, p.Gender)
	}
}

func TestGeneratedOutcomesAreConsistent(t *testing.T) {
	records := New(42).Historical(300)
	require.Len(t, records, 300)

	assert.Equal(t, "HIST-000001", records[0].CustomerID)

	accepted := 0
	for i := range records {
		r := records[i]

		assert.GreaterOrEqual(t, r.RiskScoreAssigned, 0.01)
		assert.LessOrEqual(t, r.RiskScoreAssigned, 0.99)
		assert.Greater(t, r.PremiumHighBoundary, r.PremiumLowBoundary)
		assert.GreaterOrEqual(t, r.PremiumAssigned, r.PremiumLowBoundary)
		assert.LessOrEqual(t, r.PremiumAssigned, r.PremiumHighBoundary)

		if r.PolicyAccepted {
			accepted++
		} else {
			assert.False(t, r.PolicyActive)
			assert.False(t, r.ClaimFiled)
		}
		if r.ClaimFiled {
			assert.Equal(t, r.CoverageRequested, r.ClaimAmount)
		}
		assert.NotEmpty(t, r.UnderwriterNotes)
		assert.False(t, r.PolicyIssueDate.IsZero())
	}

	// Acceptance probability is at least 0.95 - 0.9*0.4, so the bulk of the
	// book should be accepted.
	assert.Greater(t, accepted, 150)
}

func TestGeneratedRecordsLoadIntoStore(t *testing.T) {
	records := New(42).Historical(120)

	var buf strings.Builder
	require.NoError(t, model.WriteHistorical(&buf, records))

	store, err := cohort.Open()
	require.NoError(t, err)
	defer store.Close()

	n, err := store.Load(context.Background(), strings.NewReader(buf.String()))
	require.NoError(t, err)
	assert.Equal(t, 120, n)
	assert.Equal(t, 120, store.Count())

	base := store.Baseline()
	assert.Greater(t, base.AvgRiskScore, 0.0)
	assert.Greater(t, base.AcceptanceRate, 0.0)
}
