// Package model defines the domain types shared across the scoring pipeline.
package model

import (
	"math"
	"strings"

	"github.com/rotisserie/eris"
)

// Gender is a categorical profile attribute. The empty value means unknown.
type Gender string

const (
	GenderUnknown Gender = ""
	GenderMale    Gender = "Male"
	GenderFemale  Gender = "Female"
)

// OccupationClass is the standard four-class occupational hazard rating.
type OccupationClass string

const (
	OccupationUnknown  OccupationClass = ""
	OccupationClassI   OccupationClass = "Class I (Low Risk)"
	OccupationClassII  OccupationClass = "Class II (Moderate Risk)"
	OccupationClassIII OccupationClass = "Class III (High Risk)"
	OccupationClassIV  OccupationClass = "Class IV (Very High Risk)"
)

// SmokingStatus is the applicant's declared smoking history.
type SmokingStatus string

const (
	SmokingUnknown      SmokingStatus = ""
	SmokingNever        SmokingStatus = "Never"
	SmokingFormerOver5  SmokingStatus = "Former (>5 years)"
	SmokingFormerUnder5 SmokingStatus = "Former (<5 years)"
	SmokingCurrent      SmokingStatus = "Current"
)

// AlcoholUse is the applicant's declared drinking frequency.
type AlcoholUse string

const (
	AlcoholUnknown  AlcoholUse = ""
	AlcoholNone     AlcoholUse = "None"
	AlcoholLight    AlcoholUse = "Light (1-2/week)"
	AlcoholModerate AlcoholUse = "Moderate (3-7/week)"
	AlcoholHeavy    AlcoholUse = "Heavy (>7/week)"
)

// ExerciseFrequency is the applicant's declared activity level.
type ExerciseFrequency string

const (
	ExerciseUnknown   ExerciseFrequency = ""
	ExerciseSedentary ExerciseFrequency = "Sedentary"
	ExerciseLight     ExerciseFrequency = "Light (1-2/week)"
	ExerciseModerate  ExerciseFrequency = "Moderate (3-4/week)"
	ExerciseActive    ExerciseFrequency = "Active (5+/week)"
)

// CustomerProfile is an immutable applicant record. Numeric health metrics
// that may be absent are pointers; nil means unknown and scores at the
// factor's neutral value. Categorical fields use the empty value for unknown.
type CustomerProfile struct {
	CustomerID      string          `json:"customer_id"`
	Age             float64         `json:"age"`
	Gender          Gender          `json:"gender"`
	Occupation      string          `json:"occupation"`
	OccupationClass OccupationClass `json:"occupation_class"`

	HeightInches *float64 `json:"height_inches,omitempty"`
	WeightLbs    *float64 `json:"weight_lbs,omitempty"`
	BMI          *float64 `json:"bmi,omitempty"`

	SystolicBP       *int `json:"blood_pressure_systolic,omitempty"`
	DiastolicBP      *int `json:"blood_pressure_diastolic,omitempty"`
	TotalCholesterol *int `json:"total_cholesterol,omitempty"`
	HDLCholesterol   *int `json:"hdl_cholesterol,omitempty"`
	LDLCholesterol   *int `json:"ldl_cholesterol,omitempty"`

	Smoking  SmokingStatus     `json:"smoking_status"`
	Alcohol  AlcoholUse        `json:"alcohol_consumption"`
	Exercise ExerciseFrequency `json:"exercise_frequency"`

	// Semicolon-separated lists; "None" means explicitly none, empty means unknown.
	ChronicConditions string `json:"chronic_conditions"`
	FamilyHistory     string `json:"family_history"`
	DangerousHobbies  string `json:"dangerous_hobbies"`

	AnnualIncome      *int  `json:"annual_income,omitempty"`
	CoverageRequested int64 `json:"coverage_amount_requested"`
	CreditScore       *int  `json:"credit_score,omitempty"`
	ExistingCoverage  int64 `json:"existing_coverage"`
}

// Normalize cleans text fields in place: NaN-ish or blank list fields become
// "None", and enum fields that don't match a known value fall back to unknown.
func (p *CustomerProfile) Normalize() {
	p.ChronicConditions = normalizeList(p.ChronicConditions)
	p.FamilyHistory = normalizeList(p.FamilyHistory)
	p.DangerousHobbies = normalizeList(p.DangerousHobbies)

	switch p.Gender {
	case GenderMale, GenderFemale:
	default:
		p.Gender = GenderUnknown
	}
	switch p.OccupationClass {
	case OccupationClassI, OccupationClassII, OccupationClassIII, OccupationClassIV:
	default:
		p.OccupationClass = OccupationUnknown
	}
	switch p.Smoking {
	case SmokingNever, SmokingFormerOver5, SmokingFormerUnder5, SmokingCurrent:
	default:
		p.Smoking = SmokingUnknown
	}
	switch p.Alcohol {
	case AlcoholNone, AlcoholLight, AlcoholModerate, AlcoholHeavy:
	default:
		p.Alcohol = AlcoholUnknown
	}
	switch p.Exercise {
	case ExerciseSedentary, ExerciseLight, ExerciseModerate, ExerciseActive:
	default:
		p.Exercise = ExerciseUnknown
	}
}

func normalizeList(v string) string {
	v = strings.TrimSpace(v)
	if v == "" || strings.EqualFold(v, "nan") {
		return "None"
	}
	return v
}

// ListCount returns the number of entries in a semicolon-separated list
// field, with "None" counting as zero.
func ListCount(v string) int {
	if v == "" || v == "None" {
		return 0
	}
	return len(strings.Split(v, ";"))
}

// Validate checks the profile for structural validity and physically
// plausible ranges. A failure here is a hard input-validation error; the
// scoring pipeline produces no partial result for an invalid profile.
func (p *CustomerProfile) Validate() error {
	var errs []string

	if strings.TrimSpace(p.CustomerID) == "" {
		errs = append(errs, "customer_id is required")
	}
	if math.IsNaN(p.Age) || math.IsInf(p.Age, 0) {
		errs = append(errs, "age must be finite")
	} else if p.Age < 0 || p.Age > 120 {
		errs = append(errs, "age must be between 0 and 120")
	}
	if p.BMI != nil && (*p.BMI < 10 || *p.BMI > 80 || math.IsNaN(*p.BMI)) {
		errs = append(errs, "bmi must be between 10 and 80")
	}
	if p.SystolicBP != nil && (*p.SystolicBP < 60 || *p.SystolicBP > 260) {
		errs = append(errs, "blood_pressure_systolic must be between 60 and 260")
	}
	if p.DiastolicBP != nil && (*p.DiastolicBP < 30 || *p.DiastolicBP > 160) {
		errs = append(errs, "blood_pressure_diastolic must be between 30 and 160")
	}
	if p.TotalCholesterol != nil && (*p.TotalCholesterol < 50 || *p.TotalCholesterol > 500) {
		errs = append(errs, "total_cholesterol must be between 50 and 500")
	}
	if p.CreditScore != nil && (*p.CreditScore < 300 || *p.CreditScore > 850) {
		errs = append(errs, "credit_score must be between 300 and 850")
	}
	if p.CoverageRequested < 0 {
		errs = append(errs, "coverage_amount_requested must be >= 0")
	}
	if p.AnnualIncome != nil && *p.AnnualIncome < 0 {
		errs = append(errs, "annual_income must be >= 0")
	}

	if len(errs) > 0 {
		return eris.Errorf("profile %q invalid: %s", p.CustomerID, strings.Join(errs, "; "))
	}
	return nil
}
