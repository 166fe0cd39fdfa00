package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBaseRateTable(t *testing.T) {
	cases := []struct {
		age  float64
		want float64
	}{
		{22, 0.60},
		{35, 0.80},
		{45, 1.50},
		{57, 3.00},
		{68, 6.00},
	}
	for _, tc := range cases {
		assert.InDelta(t, tc.want, BaseRate(tc.age), 1e-9, "age %.0f", tc.age)
	}
}

func TestBandArithmetic(t *testing.T) {
	band, err := Band(57, 0.47, 1450000)
	require.NoError(t, err)

	// 3.00/thousand * 1450 thousands * (0.5 + 0.47*3)
	assert.InDelta(t, 3.00, band.BaseRate, 1e-9)
	assert.InDelta(t, 1.91, band.RiskMultiplier, 1e-9)
	assert.InDelta(t, 8308.50, band.BasePremium, 0.01)
	assert.InDelta(t, 7062.23, band.Low, 0.01)
	assert.InDelta(t, 10385.63, band.High, 0.01)

	// 0.47 is mid-band risk, positioned at 60% of the spread.
	assert.InDelta(t, 9056.27, band.Recommended, 0.02)
	assert.Equal(t, band.Calculated, band.Recommended)
}

func TestBandRatioInvariant(t *testing.T) {
	for _, score := range []float64{0.05, 0.3, 0.47, 0.62, 0.9} {
		band, err := Band(44, score, 250000)
		require.NoError(t, err)
		assert.InDelta(t, 1.25/0.85, band.High/band.Low, 1e-6, "score %.2f", score)
		assert.GreaterOrEqual(t, band.Recommended, band.Low)
		assert.LessOrEqual(t, band.Recommended, band.High)
	}
}

func TestRecommendedPositionByRisk(t *testing.T) {
	assert.InDelta(t, 0.40, RecommendedPosition(0.1), 1e-9)
	assert.InDelta(t, 0.60, RecommendedPosition(0.45), 1e-9)
	assert.InDelta(t, 0.75, RecommendedPosition(0.8), 1e-9)
}

func TestBandRejectsBadInput(t *testing.T) {
	_, err := Band(40, 0.5, 0)
	assert.Error(t, err)

	_, err = Band(40, 0.5, -100000)
	assert.Error(t, err)

	_, err = Band(130, 0.5, 500000)
	assert.Error(t, err)
}

func TestRepositionClampsAndKeepsBoundaries(t *testing.T) {
	band, err := Band(35, 0.4, 500000)
	require.NoError(t, err)

	moved := Reposition(band, 1.8)
	assert.InDelta(t, band.High, moved.Recommended, 0.01)
	assert.Equal(t, band.Low, moved.Low)
	assert.Equal(t, band.High, moved.High)

	moved = Reposition(band, -0.5)
	assert.InDelta(t, band.Low, moved.Recommended, 0.01)

	moved = Reposition(band, 0.5)
	mid := (band.Low + band.High) / 2
	assert.InDelta(t, mid, moved.Recommended, 0.01)
}

func TestMultiplierAnchor(t *testing.T) {
	// Score 0.5 sits at 2x; the band scales linearly around it.
	assert.InDelta(t, 2.0, Multiplier(0.5), 1e-9)
	assert.InDelta(t, 0.5, Multiplier(0), 1e-9)
	assert.InDelta(t, 3.5, Multiplier(1), 1e-9)
}
