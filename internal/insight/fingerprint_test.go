package insight

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ewise123/insurance-pricing-engine/internal/model"
)

func fpProfile(age, bmi float64) *model.CustomerProfile {
	return &model.CustomerProfile{
		CustomerID:      "C-1",
		Age:             age,
		Gender:          model.GenderFemale,
		OccupationClass: model.OccupationClassI,
		BMI:             &bmi,
		Smoking:         model.SmokingNever,
	}
}

func TestFingerprintIsStable(t *testing.T) {
	p := fpProfile(42, 24.5)
	a := DefaultFingerprint.Fingerprint(p, 0.42)
	b := DefaultFingerprint.Fingerprint(p, 0.42)
	assert.Equal(t, a, b)
	assert.Len(t, a, 32)
}

func TestFingerprintBucketsCollapseSimilarProfiles(t *testing.T) {
	// Ages 42 and 44 share the 40-44 bucket; scores 0.41 and 0.44 both
	// round to 0.4. The whole point is that they share one cache entry.
	a := DefaultFingerprint.Fingerprint(fpProfile(42, 24.0), 0.41)
	b := DefaultFingerprint.Fingerprint(fpProfile(44, 24.9), 0.44)
	assert.Equal(t, a, b)
}

func TestFingerprintSeparatesDistinctProfiles(t *testing.T) {
	base := DefaultFingerprint.Fingerprint(fpProfile(42, 24.0), 0.41)

	// Next age bucket.
	assert.NotEqual(t, base, DefaultFingerprint.Fingerprint(fpProfile(46, 24.0), 0.41))

	// Different smoking status.
	smoker := fpProfile(42, 24.0)
	smoker.Smoking = model.SmokingCurrent
	assert.NotEqual(t, base, DefaultFingerprint.Fingerprint(smoker, 0.41))

	// Risk bucket boundary.
	assert.NotEqual(t, base, DefaultFingerprint.Fingerprint(fpProfile(42, 24.0), 0.48))
}

func TestFingerprintUnknownBMI(t *testing.T) {
	p := fpProfile(42, 24.0)
	p.BMI = nil
	withBMI := DefaultFingerprint.Fingerprint(fpProfile(42, 24.0), 0.4)
	withoutBMI := DefaultFingerprint.Fingerprint(p, 0.4)
	assert.NotEqual(t, withBMI, withoutBMI)
}

func TestFingerprintCustomBuckets(t *testing.T) {
	wide := FingerprintConfig{AgeBucketYears: 10, BMIBucketUnits: 5}
	a := wide.Fingerprint(fpProfile(41, 24.0), 0.4)
	b := wide.Fingerprint(fpProfile(49, 24.0), 0.4)
	assert.Equal(t, a, b)
}
