// Package insight runs the external pattern analysis: it assembles cohort
// context, asks the model for a multi-attribute correlation read, caches the
// result under a lossy profile fingerprint, and degrades to a deterministic
// fallback when the model is unavailable.
package insight

import (
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"math"

	"github.com/ewise123/insurance-pricing-engine/internal/model"
)

// FingerprintConfig controls the bucket widths of the cache fingerprint.
// Wider buckets trade precision for hit rate.
type FingerprintConfig struct {
	AgeBucketYears int
	BMIBucketUnits int
}

// DefaultFingerprint matches the bucket widths the cache was tuned with.
var DefaultFingerprint = FingerprintConfig{AgeBucketYears: 5, BMIBucketUnits: 3}

// signature is the canonical lossy view of a profile used for cache keying.
// Field names sort alphabetically so the serialized form is stable.
type signature struct {
	AgeBucket       int     `json:"age_bucket"`
	BMIBucket       int     `json:"bmi_bucket"`
	Gender          string  `json:"gender"`
	OccupationClass string  `json:"occupation_class"`
	RiskBucket      float64 `json:"risk_bucket"`
	Smoking         string  `json:"smoking"`
}

// Fingerprint derives the cache key for a profile and score. Profiles that
// land in the same buckets share a key on purpose; similar applicants reuse
// one analysis.
func (c FingerprintConfig) Fingerprint(p *model.CustomerProfile, score float64) string {
	ageBucket := c.AgeBucketYears
	if ageBucket <= 0 {
		ageBucket = DefaultFingerprint.AgeBucketYears
	}
	bmiBucket := c.BMIBucketUnits
	if bmiBucket <= 0 {
		bmiBucket = DefaultFingerprint.BMIBucketUnits
	}

	sig := signature{
		AgeBucket:       int(p.Age) / ageBucket * ageBucket,
		Gender:          string(p.Gender),
		OccupationClass: string(p.OccupationClass),
		Smoking:         string(p.Smoking),
		RiskBucket:      math.Round(score*10) / 10,
	}
	if p.BMI != nil {
		sig.BMIBucket = int(*p.BMI) / bmiBucket * bmiBucket
	}

	// Struct fields are already in alphabetical json order, so Marshal is
	// deterministic.
	raw, _ := json.Marshal(sig)
	sum := md5.Sum(raw)
	return hex.EncodeToString(sum[:])
}
