// Package datagen produces synthetic applicant datasets with realistic
// attribute correlations, for demos and for seeding the cohort store.
package datagen

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/ewise123/insurance-pricing-engine/internal/model"
	"github.com/ewise123/insurance-pricing-engine/internal/pricing"
)

var occupations = map[model.OccupationClass][]string{
	model.OccupationClassI:   {"Software Engineer", "Accountant", "Teacher", "Manager", "Analyst", "Designer"},
	model.OccupationClassII:  {"Electrician", "Plumber", "Mechanic", "Sales Rep", "Nurse", "Chef"},
	model.OccupationClassIII: {"Construction Worker", "Truck Driver", "Warehouse Worker", "Factory Worker"},
	model.OccupationClassIV:  {"Firefighter", "Police Officer", "Roofer", "Logger", "Pilot"},
}

var (
	conditionPool = []string{"Hypertension", "High Cholesterol", "Diabetes Type 2", "Asthma", "Arthritis", "Thyroid Disorder"}
	historyPool   = []string{"Heart Disease", "Cancer", "Diabetes", "Stroke", "Alzheimer's"}
	hobbyPool     = []string{"Skydiving", "Scuba Diving", "Rock Climbing", "Motorcycle Racing", "Base Jumping", "Skiing"}

	underwriterNotes = []string{
		"Standard approval",
		"Approved with standard rating",
		"Medical records reviewed - approved",
		"Elevated risk noted but within acceptable range",
		"Premium adjusted for occupation risk",
		"Good health profile, preferred pricing",
		"Multiple risk factors present",
		"Required additional medical exam",
	}
)

// Generator produces correlated synthetic applicants from a seeded source,
// so the same seed always yields the same dataset.
type Generator struct {
	rng *rand.Rand
	now time.Time
}

// New creates a generator with the given seed.
func New(seed int64) *Generator {
	return &Generator{
		rng: rand.New(rand.NewSource(seed)),
		now: time.Now(),
	}
}

// Profiles generates n applicant profiles without outcomes.
func (g *Generator) Profiles(n int) []model.CustomerProfile {
	out := make([]model.CustomerProfile, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, g.profile(fmt.Sprintf("NEW-%04d", i+1)))
	}
	return out
}

// Historical generates n past applicants with simulated underwriting
// outcomes, claims, and policy status.
func (g *Generator) Historical(n int) []model.HistoricalRecord {
	out := make([]model.HistoricalRecord, 0, n)
	for i := 0; i < n; i++ {
		p := g.profile(fmt.Sprintf("HIST-%06d", i+1))
		out = append(out, g.outcomes(p))
	}
	return out
}

func (g *Generator) profile(id string) model.CustomerProfile {
	age := clampF(g.rng.NormFloat64()*12+45, 18, 75)
	age = math.Round(age*10) / 10

	gender := model.GenderFemale
	if g.rng.Intn(2) == 0 {
		gender = model.GenderMale
	}

	// Most applicants hold low-hazard jobs.
	class := weightedClass(g.rng.Float64())
	jobs := occupations[class]
	occupation := jobs[g.rng.Intn(len(jobs))]

	heightMean := 64.0
	if gender == model.GenderMale {
		heightMean = 67.0
	}
	height := round1(g.rng.NormFloat64()*3 + heightMean)

	// BMI drifts upward with age.
	bmi := clampF(g.rng.NormFloat64()*4+22+(age-30)*0.15, 17, 45)
	bmi = round1(bmi)
	weight := round1(bmi * height * height / 703)

	systolic := int(clampF(100+age*0.5+(bmi-25)*0.8+g.rng.NormFloat64()*10, 90, 180))
	diastolic := int(clampF(60+age*0.2+(bmi-25)*0.4+g.rng.NormFloat64()*8, 60, 110))

	totalChol := int(clampF(150+age*0.8+(bmi-25)*2+g.rng.NormFloat64()*20, 120, 300))
	hdl := int(clampF(55-(bmi-25)*0.5+g.rng.NormFloat64()*10, 30, 80))
	ldl := totalChol - hdl - 20

	smoking := g.smoking(age)
	alcohol := g.alcohol(class)
	exercise := g.exercise()

	chronic := g.sampleList(conditionPool, g.chronicProb(age, bmi), []float64{0.7, 0.25, 0.05})
	family := g.sampleList(historyPool, 0.3, []float64{0.8, 0.2})

	hobby := "None"
	if g.rng.Float64() < 0.05 {
		hobby = hobbyPool[g.rng.Intn(len(hobbyPool))]
	}

	baseIncome := map[model.OccupationClass]float64{
		model.OccupationClassI:   85000,
		model.OccupationClassII:  60000,
		model.OccupationClassIII: 50000,
		model.OccupationClassIV:  55000,
	}[class]
	income := math.Max(30000, baseIncome+(age-35)*2000+g.rng.NormFloat64()*15000)
	incomeInt := int(math.Round(income))

	coverageMult := 8 + g.rng.Float64()*7
	coverage := int64(math.Round(income*coverageMult/50000)) * 50000
	coverage = clampI(coverage, 100000, 5000000)

	credit := int(clampF(580+(income/1000)*0.5+(age-25)*2+g.rng.NormFloat64()*40, 300, 850))

	var existing int64
	if g.rng.Float64() < 0.1+age*0.003+income/500000 {
		existing = int64(math.Round((100000+g.rng.Float64()*400000)/50000)) * 50000
	}

	return model.CustomerProfile{
		CustomerID:        id,
		Age:               age,
		Gender:            gender,
		Occupation:        occupation,
		OccupationClass:   class,
		HeightInches:      &height,
		WeightLbs:         &weight,
		BMI:               &bmi,
		SystolicBP:        &systolic,
		DiastolicBP:       &diastolic,
		TotalCholesterol:  &totalChol,
		HDLCholesterol:    &hdl,
		LDLCholesterol:    &ldl,
		Smoking:           smoking,
		Alcohol:           alcohol,
		Exercise:          exercise,
		ChronicConditions: chronic,
		FamilyHistory:     family,
		DangerousHobbies:  hobby,
		AnnualIncome:      &incomeInt,
		CoverageRequested: coverage,
		CreditScore:       &credit,
		ExistingCoverage:  existing,
	}
}

// outcomes simulates underwriting results using the same rating math the
// live scorer applies, plus noise for the human adjustment.
func (g *Generator) outcomes(p model.CustomerProfile) model.HistoricalRecord {
	calculated := g.riskScore(&p)
	assigned := clampF(calculated+g.rng.NormFloat64()*0.03, 0.01, 0.99)

	rate := pricing.BaseRate(p.Age)
	base := rate * float64(p.CoverageRequested) / 1000.0 * pricing.Multiplier(assigned)
	low := base * 0.85
	high := base * 1.25

	var position float64
	switch {
	case assigned < 0.3:
		position = 0.3 + g.rng.Float64()*0.3
	case assigned < 0.6:
		position = 0.4 + g.rng.Float64()*0.3
	default:
		position = 0.6 + g.rng.Float64()*0.3
	}
	premium := low + (high-low)*position

	// Cheaper quotes get accepted more, expensive ones lapse more.
	accepted := g.rng.Float64() < 0.95-position*0.4
	active := false
	if accepted {
		active = g.rng.Float64() > 0.05+position*0.15
	}

	claimed := false
	var claimAmount int64
	if accepted && active {
		claimed = g.rng.Float64() < assigned*0.005
		if claimed {
			claimAmount = p.CoverageRequested
		}
	}

	issueDays := 365 + g.rng.Intn(1461)

	return model.HistoricalRecord{
		CustomerProfile:     p,
		RiskScoreCalculated: round4(calculated),
		RiskScoreAssigned:   round4(assigned),
		PremiumLowBoundary:  round2(low),
		PremiumHighBoundary: round2(high),
		PremiumAssigned:     round2(premium),
		PolicyAccepted:      accepted,
		PolicyActive:        active,
		ClaimFiled:          claimed,
		ClaimAmount:         claimAmount,
		UnderwriterNotes:    underwriterNotes[g.rng.Intn(len(underwriterNotes))],
		PolicyIssueDate:     g.now.AddDate(0, 0, -issueDays),
	}
}

// riskScore mirrors the live weighted rating so generated outcomes are
// consistent with what the scorer would produce.
func (g *Generator) riskScore(p *model.CustomerProfile) float64 {
	score := 0.0

	switch age := p.Age; {
	case age < 30:
		score += 0.1 * 0.20
	case age < 40:
		score += 0.15 * 0.20
	case age < 50:
		score += 0.25 * 0.20
	case age < 60:
		score += 0.4 * 0.20
	case age < 70:
		score += 0.6 * 0.20
	default:
		score += 0.8 * 0.20
	}

	if p.Gender == model.GenderMale {
		score += 0.55 * 0.05
	} else {
		score += 0.45 * 0.05
	}

	score += map[model.OccupationClass]float64{
		model.OccupationClassI:   0.2,
		model.OccupationClassII:  0.4,
		model.OccupationClassIII: 0.7,
		model.OccupationClassIV:  0.9,
	}[p.OccupationClass] * 0.10

	switch bmi := *p.BMI; {
	case bmi < 18.5:
		score += 0.4 * 0.15
	case bmi < 25:
		score += 0.2 * 0.15
	case bmi < 30:
		score += 0.4 * 0.15
	case bmi < 35:
		score += 0.6 * 0.15
	case bmi < 40:
		score += 0.8 * 0.15
	default:
		score += 0.95 * 0.15
	}

	switch s := *p.SystolicBP; {
	case s < 120:
		score += 0.1 * 0.10
	case s < 130:
		score += 0.3 * 0.10
	case s < 140:
		score += 0.5 * 0.10
	case s < 160:
		score += 0.7 * 0.10
	default:
		score += 0.9 * 0.10
	}

	switch c := *p.TotalCholesterol; {
	case c < 200:
		score += 0.2 * 0.08
	case c < 240:
		score += 0.5 * 0.08
	default:
		score += 0.8 * 0.08
	}

	score += map[model.SmokingStatus]float64{
		model.SmokingNever:        0.1,
		model.SmokingFormerOver5:  0.3,
		model.SmokingFormerUnder5: 0.5,
		model.SmokingCurrent:      0.95,
	}[p.Smoking] * 0.15

	score += map[model.AlcoholUse]float64{
		model.AlcoholNone:     0.2,
		model.AlcoholLight:    0.25,
		model.AlcoholModerate: 0.4,
		model.AlcoholHeavy:    0.8,
	}[p.Alcohol] * 0.05

	score += map[model.ExerciseFrequency]float64{
		model.ExerciseSedentary: 0.7,
		model.ExerciseLight:     0.5,
		model.ExerciseModerate:  0.3,
		model.ExerciseActive:    0.15,
	}[p.Exercise] * 0.04

	if n := model.ListCount(p.ChronicConditions); n == 0 {
		score += 0.1 * 0.10
	} else {
		score += math.Min(0.95, 0.4+float64(n)*0.2) * 0.10
	}

	if n := model.ListCount(p.FamilyHistory); n == 0 {
		score += 0.2 * 0.05
	} else {
		score += math.Min(0.8, 0.4+float64(n)*0.2) * 0.05
	}

	if p.DangerousHobbies == "None" {
		score += 0.1 * 0.03
	} else {
		score += 0.9 * 0.03
	}

	return clampF(score, 0.01, 0.99)
}

func (g *Generator) smoking(age float64) model.SmokingStatus {
	p := 0.15
	if age >= 40 {
		p = 0.10
	}
	return pick(g.rng, []model.SmokingStatus{
		model.SmokingNever, model.SmokingFormerOver5, model.SmokingFormerUnder5, model.SmokingCurrent,
	}, []float64{0.6, 0.2, p, p})
}

func (g *Generator) alcohol(class model.OccupationClass) model.AlcoholUse {
	factor := 1.0
	if class == model.OccupationClassIII || class == model.OccupationClassIV {
		factor = 1.3
	}
	return pick(g.rng, []model.AlcoholUse{
		model.AlcoholNone, model.AlcoholLight, model.AlcoholModerate, model.AlcoholHeavy,
	}, []float64{0.2, 0.5 * factor, 0.25, 0.05 * factor})
}

func (g *Generator) exercise() model.ExerciseFrequency {
	return pick(g.rng, []model.ExerciseFrequency{
		model.ExerciseSedentary, model.ExerciseLight, model.ExerciseModerate, model.ExerciseActive,
	}, []float64{0.25, 0.35, 0.25, 0.15})
}

func (g *Generator) chronicProb(age, bmi float64) float64 {
	return clampF(0.1+(age-30)*0.01+(bmi-25)*0.015, 0, 0.7)
}

// sampleList draws 0..len(countWeights) distinct entries from pool, joined
// with "; ", or "None".
func (g *Generator) sampleList(pool []string, prob float64, countWeights []float64) string {
	if g.rng.Float64() >= prob {
		return "None"
	}

	count := 1 + pickIndex(g.rng, countWeights)
	if count > len(pool) {
		count = len(pool)
	}

	idx := g.rng.Perm(len(pool))[:count]
	out := ""
	for i, j := range idx {
		if i > 0 {
			out += "; "
		}
		out += pool[j]
	}
	return out
}

func weightedClass(r float64) model.OccupationClass {
	switch {
	case r < 0.4:
		return model.OccupationClassI
	case r < 0.75:
		return model.OccupationClassII
	case r < 0.95:
		return model.OccupationClassIII
	default:
		return model.OccupationClassIV
	}
}

func pick[T any](rng *rand.Rand, items []T, weights []float64) T {
	return items[pickIndex(rng, weights)]
}

func pickIndex(rng *rand.Rand, weights []float64) int {
	total := 0.0
	for _, w := range weights {
		total += w
	}
	r := rng.Float64() * total
	for i, w := range weights {
		r -= w
		if r < 0 {
			return i
		}
	}
	return len(weights) - 1
}

func clampF(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampI(v, lo, hi int64) int64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }
func round2(v float64) float64 { return math.Round(v*100) / 100 }
func round4(v float64) float64 { return math.Round(v*10000) / 10000 }
