// Package pricing derives the annual premium band from a risk score and the
// requested coverage amount. The band is pure arithmetic over fixed rate
// tables and is recomputed on every call.
package pricing

import (
	"math"

	"github.com/rotisserie/eris"

	"github.com/ewise123/insurance-pricing-engine/internal/model"
)

// BaseRate returns the annual base rate per $1000 of coverage for an age.
func BaseRate(age float64) float64 {
	switch {
	case age < 30:
		return 0.60
	case age < 40:
		return 0.80
	case age < 50:
		return 1.50
	case age < 60:
		return 3.00
	default:
		return 6.00
	}
}

// Multiplier converts a risk score to the premium multiplier. A score of 0.5
// yields roughly breakeven pricing at 2.0x the base rate table.
func Multiplier(score float64) float64 {
	return 0.5 + score*3.0
}

// RecommendedPosition is where in the band the math places the quote before
// any insight adjustment: aggressive for low risk, conservative for high.
func RecommendedPosition(score float64) float64 {
	switch {
	case score < 0.3:
		return 0.40
	case score < 0.6:
		return 0.60
	default:
		return 0.75
	}
}

// Band computes the full premium band. Coverage must be positive and age
// within the rate table's domain; anything else is a hard input error.
func Band(age, score float64, coverage int64) (model.PriceBand, error) {
	if coverage <= 0 {
		return model.PriceBand{}, eris.Errorf("pricing: coverage must be positive, got %d", coverage)
	}
	if math.IsNaN(age) || age < 0 || age > 120 {
		return model.PriceBand{}, eris.Errorf("pricing: age %.1f outside rate table", age)
	}

	rate := BaseRate(age)
	mult := Multiplier(score)
	base := rate * float64(coverage) / 1000.0 * mult

	low := base * 0.85
	high := base * 1.25
	rec := PositionInBand(low, high, RecommendedPosition(score))

	return model.PriceBand{
		BaseRate:       rate,
		RiskMultiplier: round2(mult),
		BasePremium:    round2(base),
		Low:            round2(low),
		Calculated:     round2(rec),
		Recommended:    round2(rec),
		High:           round2(high),
	}, nil
}

// PositionInBand linearly interpolates a position in [0, 1] between the low
// and high boundaries.
func PositionInBand(low, high, position float64) float64 {
	return low + (high-low)*position
}

// Reposition moves the recommended premium to a new position in the band,
// clamping the position to [0, 1]. The band boundaries never move.
func Reposition(band model.PriceBand, position float64) model.PriceBand {
	if position < 0 {
		position = 0
	}
	if position > 1 {
		position = 1
	}
	band.Recommended = round2(PositionInBand(band.Low, band.High, position))
	return band
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
