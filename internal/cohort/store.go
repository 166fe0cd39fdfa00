// Package cohort holds the historical applicant dataset in an in-memory
// SQLite table and answers the attribute-range queries the risk factor
// evaluators and the pattern analyzer run against it. The dataset is loaded
// once at process start and is read-only for the process lifetime.
package cohort

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/ewise123/insurance-pricing-engine/internal/model"
)

// Store is the read-only historical cohort store.
type Store struct {
	db       *sql.DB
	count    int
	baseline BaselineStats
}

// BaselineStats are whole-dataset statistics computed once at load time.
type BaselineStats struct {
	TotalCustomers   int     `json:"total_customers"`
	OverallClaimRate float64 `json:"overall_claim_rate"`
	AvgRiskScore     float64 `json:"avg_risk_score"`
	AvgPremium       float64 `json:"avg_premium"`
	AcceptanceRate   float64 `json:"acceptance_rate"`
	ActiveRate       float64 `json:"active_rate"`
}

// CohortStats summarizes a similar-applicant cohort for pattern analysis.
type CohortStats struct {
	Size           int     `json:"cohort_size"`
	AvgRiskScore   float64 `json:"avg_risk_score"`
	ClaimRate      float64 `json:"claim_rate"`
	ClaimsCount    int     `json:"claims_count"`
	AvgPremium     float64 `json:"avg_premium"`
	AcceptanceRate float64 `json:"acceptance_rate"`
	ActiveRate     float64 `json:"active_rate"`
}

// SubPattern is a pre-computed compound slice of the dataset handed to the
// pattern analyzer as context.
type SubPattern struct {
	Description  string  `json:"description"`
	Size         int     `json:"size"`
	ClaimRate    float64 `json:"claim_rate"`
	AvgRiskScore float64 `json:"avg_risk"`
}

const migration = `
CREATE TABLE IF NOT EXISTS historical (
	customer_id       TEXT PRIMARY KEY,
	age               REAL NOT NULL,
	gender            TEXT NOT NULL,
	occupation        TEXT NOT NULL,
	occupation_class  TEXT NOT NULL,
	bmi               REAL,
	systolic          INTEGER,
	total_cholesterol INTEGER,
	smoking           TEXT NOT NULL,
	alcohol           TEXT NOT NULL,
	exercise          TEXT NOT NULL,
	chronic           TEXT NOT NULL,
	chronic_count     INTEGER NOT NULL,
	family            TEXT NOT NULL,
	family_count      INTEGER NOT NULL,
	hobbies           TEXT NOT NULL,
	risk_score        REAL NOT NULL,
	premium           REAL NOT NULL,
	accepted          INTEGER NOT NULL,
	active            INTEGER NOT NULL,
	claim_filed       INTEGER NOT NULL,
	claim_amount      INTEGER NOT NULL,
	issue_date        TEXT
);

CREATE INDEX IF NOT EXISTS idx_historical_age ON historical(age);
CREATE INDEX IF NOT EXISTS idx_historical_smoking ON historical(smoking);
CREATE INDEX IF NOT EXISTS idx_historical_occ ON historical(occupation_class);
`

// Open creates an empty in-memory store. Call Load exactly once before use.
func Open() (*Store, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, eris.Wrap(err, "cohort: open")
	}
	// A second connection to :memory: would see a different database; pin
	// the pool to one connection.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(migration); err != nil {
		db.Close()
		return nil, eris.Wrap(err, "cohort: migrate")
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Load ingests historical records from CSV. It may be called only once, on
// an empty store, before any queries run.
func (s *Store) Load(ctx context.Context, r io.Reader) (int, error) {
	if s.count > 0 {
		return 0, eris.New("cohort: already loaded")
	}

	records, err := model.ReadHistorical(r)
	if err != nil {
		return 0, eris.Wrap(err, "cohort: parse historical csv")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "cohort: begin load")
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO historical (
		customer_id, age, gender, occupation, occupation_class,
		bmi, systolic, total_cholesterol,
		smoking, alcohol, exercise,
		chronic, chronic_count, family, family_count, hobbies,
		risk_score, premium, accepted, active, claim_filed, claim_amount, issue_date
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, eris.Wrap(err, "cohort: prepare insert")
	}
	defer stmt.Close()

	for i := range records {
		rec := &records[i]
		var issueDate any
		if !rec.PolicyIssueDate.IsZero() {
			issueDate = rec.PolicyIssueDate.Format("2006-01-02")
		}
		_, err := stmt.ExecContext(ctx,
			rec.CustomerID, rec.Age, string(rec.Gender), rec.Occupation, string(rec.OccupationClass),
			nullFloat(rec.BMI), nullInt(rec.SystolicBP), nullInt(rec.TotalCholesterol),
			string(rec.Smoking), string(rec.Alcohol), string(rec.Exercise),
			rec.ChronicConditions, model.ListCount(rec.ChronicConditions),
			rec.FamilyHistory, model.ListCount(rec.FamilyHistory),
			rec.DangerousHobbies,
			rec.RiskScoreAssigned, rec.PremiumAssigned,
			boolInt(rec.PolicyAccepted), boolInt(rec.PolicyActive),
			boolInt(rec.ClaimFiled), rec.ClaimAmount, issueDate,
		)
		if err != nil {
			return 0, eris.Wrapf(err, "cohort: insert record %s", rec.CustomerID)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, eris.Wrap(err, "cohort: commit load")
	}

	s.count = len(records)
	if err := s.computeBaseline(ctx); err != nil {
		return 0, err
	}

	zap.L().Info("cohort: historical dataset loaded",
		zap.Int("records", s.count),
		zap.Float64("baseline_claim_rate", s.baseline.OverallClaimRate),
	)
	return s.count, nil
}

func (s *Store) computeBaseline(ctx context.Context) error {
	row := s.db.QueryRowContext(ctx, `SELECT
		COUNT(*),
		COALESCE(AVG(claim_filed), 0),
		COALESCE(AVG(risk_score), 0),
		COALESCE(AVG(premium), 0),
		COALESCE(AVG(accepted), 0),
		COALESCE(AVG(active), 0)
	FROM historical`)

	b := BaselineStats{}
	if err := row.Scan(&b.TotalCustomers, &b.OverallClaimRate, &b.AvgRiskScore,
		&b.AvgPremium, &b.AcceptanceRate, &b.ActiveRate); err != nil {
		return eris.Wrap(err, "cohort: compute baseline")
	}
	s.baseline = b
	return nil
}

// Count returns the number of loaded records.
func (s *Store) Count() int { return s.count }

// Loaded reports whether the dataset has been ingested.
func (s *Store) Loaded() bool { return s.count > 0 }

// Baseline returns whole-dataset statistics.
func (s *Store) Baseline() BaselineStats { return s.baseline }

// Filter selects a cohort by attribute ranges and categorical equality.
// Nil/zero fields are not applied.
type Filter struct {
	AgeMin, AgeMax               *float64
	BMIMin, BMIMax               *float64
	SystolicMin, SystolicMax     *int
	CholesterolMin, CholesterolMax *int
	Gender                       model.Gender
	OccupationClass              model.OccupationClass
	Smoking                      model.SmokingStatus
	Alcohol                      model.AlcoholUse
	Exercise                     model.ExerciseFrequency
	ChronicCount                 *int
	FamilyCount                  *int
	HasHobby                     *bool
}

func (f Filter) where() (string, []any) {
	var conds []string
	var args []any

	add := func(cond string, vals ...any) {
		conds = append(conds, cond)
		args = append(args, vals...)
	}

	if f.AgeMin != nil {
		add("age >= ?", *f.AgeMin)
	}
	if f.AgeMax != nil {
		add("age <= ?", *f.AgeMax)
	}
	if f.BMIMin != nil {
		add("bmi >= ?", *f.BMIMin)
	}
	if f.BMIMax != nil {
		add("bmi <= ?", *f.BMIMax)
	}
	if f.SystolicMin != nil {
		add("systolic >= ?", *f.SystolicMin)
	}
	if f.SystolicMax != nil {
		add("systolic <= ?", *f.SystolicMax)
	}
	if f.CholesterolMin != nil {
		add("total_cholesterol >= ?", *f.CholesterolMin)
	}
	if f.CholesterolMax != nil {
		add("total_cholesterol <= ?", *f.CholesterolMax)
	}
	if f.Gender != model.GenderUnknown {
		add("gender = ?", string(f.Gender))
	}
	if f.OccupationClass != model.OccupationUnknown {
		add("occupation_class = ?", string(f.OccupationClass))
	}
	if f.Smoking != model.SmokingUnknown {
		add("smoking = ?", string(f.Smoking))
	}
	if f.Alcohol != model.AlcoholUnknown {
		add("alcohol = ?", string(f.Alcohol))
	}
	if f.Exercise != model.ExerciseUnknown {
		add("exercise = ?", string(f.Exercise))
	}
	if f.ChronicCount != nil {
		add("chronic_count = ?", *f.ChronicCount)
	}
	if f.FamilyCount != nil {
		add("family_count = ?", *f.FamilyCount)
	}
	if f.HasHobby != nil {
		if *f.HasHobby {
			add("hobbies != 'None'")
		} else {
			add("hobbies = 'None'")
		}
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// Summary returns the aggregate statistics for the filtered cohort. A cohort
// of size zero returns nil rather than an error.
func (s *Store) Summary(ctx context.Context, f Filter) (*model.CohortSummary, error) {
	where, args := f.where()
	query := `SELECT
		COUNT(*),
		COALESCE(AVG(risk_score), 0),
		COALESCE(AVG(claim_filed), 0) * 100,
		COALESCE(AVG(premium), 0),
		COALESCE(AVG(bmi), 0),
		COALESCE(AVG(CASE WHEN chronic != 'None' THEN 1.0 ELSE 0.0 END), 0) * 100
	FROM historical` + where

	var sum model.CohortSummary
	row := s.db.QueryRowContext(ctx, query, args...)
	if err := row.Scan(&sum.Size, &sum.AvgRiskScore, &sum.ClaimRatePct,
		&sum.AvgPremium, &sum.AvgBMI, &sum.ChronicPct); err != nil {
		return nil, eris.Wrap(err, "cohort: summary query")
	}
	if sum.Size == 0 {
		return nil, nil
	}
	return &sum, nil
}

func (s *Store) stats(ctx context.Context, f Filter) (*CohortStats, error) {
	where, args := f.where()
	query := `SELECT
		COUNT(*),
		COALESCE(AVG(risk_score), 0),
		COALESCE(AVG(claim_filed), 0),
		COALESCE(SUM(claim_filed), 0),
		COALESCE(AVG(premium), 0),
		COALESCE(AVG(accepted), 0),
		COALESCE(AVG(active), 0)
	FROM historical` + where

	var cs CohortStats
	row := s.db.QueryRowContext(ctx, query, args...)
	if err := row.Scan(&cs.Size, &cs.AvgRiskScore, &cs.ClaimRate, &cs.ClaimsCount,
		&cs.AvgPremium, &cs.AcceptanceRate, &cs.ActiveRate); err != nil {
		return nil, eris.Wrap(err, "cohort: stats query")
	}
	return &cs, nil
}

// SimilarCohort finds a broadly similar cohort across several dimensions,
// relaxing the constraints when the match is too small to be meaningful.
func (s *Store) SimilarCohort(ctx context.Context, p *model.CustomerProfile) (*CohortStats, error) {
	f := Filter{
		AgeMin: ptr(p.Age - 10),
		AgeMax: ptr(p.Age + 10),
		Gender: p.Gender,
	}
	if p.Smoking != model.SmokingUnknown {
		f.Smoking = p.Smoking
	}
	if p.BMI != nil {
		// Band the BMI the way an underwriter groups it, not a tight range.
		switch bmi := *p.BMI; {
		case bmi < 25:
			f.BMIMax = ptr(27.0)
		case bmi < 30:
			f.BMIMin, f.BMIMax = ptr(23.0), ptr(32.0)
		default:
			f.BMIMin = ptr(28.0)
		}
	}

	cs, err := s.stats(ctx, f)
	if err != nil {
		return nil, err
	}
	if cs.Size >= 50 {
		return cs, nil
	}

	// Too small: widen the age band and drop the health constraints.
	relaxed := Filter{
		AgeMin: ptr(p.Age - 15),
		AgeMax: ptr(p.Age + 15),
		Gender: p.Gender,
	}
	return s.stats(ctx, relaxed)
}

// SubPatterns pre-computes compound attribute slices around the profile for
// the pattern analyzer. Slices with 10 or fewer members are omitted.
func (s *Store) SubPatterns(ctx context.Context, p *model.CustomerProfile) ([]SubPattern, error) {
	type candidate struct {
		desc string
		f    Filter
		ok   bool
	}

	candidates := []candidate{
		{
			desc: "Similar smoking status + BMI range",
			f: Filter{
				Smoking: p.Smoking,
				BMIMin:  bmiOffset(p.BMI, -3), BMIMax: bmiOffset(p.BMI, 3),
			},
			ok: p.Smoking != model.SmokingUnknown && p.BMI != nil,
		},
		{
			desc: "Same occupation class + chronic condition status",
			f: Filter{
				OccupationClass: p.OccupationClass,
				ChronicCount:    ptr(model.ListCount(p.ChronicConditions)),
			},
			ok: p.OccupationClass != model.OccupationUnknown,
		},
		{
			desc: "Similar exercise level + BMI",
			f: Filter{
				Exercise: p.Exercise,
				BMIMin:   bmiOffset(p.BMI, -5), BMIMax: bmiOffset(p.BMI, 5),
			},
			ok: p.Exercise != model.ExerciseUnknown && p.BMI != nil,
		},
		{
			desc: "Age + smoking + cholesterol triple match",
			f: Filter{
				AgeMin: ptr(p.Age - 5), AgeMax: ptr(p.Age + 5),
				Smoking:        p.Smoking,
				CholesterolMin: intOffset(p.TotalCholesterol, -30),
				CholesterolMax: intOffset(p.TotalCholesterol, 30),
			},
			ok: p.Smoking != model.SmokingUnknown && p.TotalCholesterol != nil,
		},
	}

	var patterns []SubPattern
	for _, c := range candidates {
		if !c.ok {
			continue
		}
		cs, err := s.stats(ctx, c.f)
		if err != nil {
			return nil, err
		}
		if cs.Size <= 10 {
			continue
		}
		patterns = append(patterns, SubPattern{
			Description:  c.desc,
			Size:         cs.Size,
			ClaimRate:    cs.ClaimRate,
			AvgRiskScore: cs.AvgRiskScore,
		})
	}
	return patterns, nil
}

// TenureMetrics estimates policy duration and attrition from accepted
// policies in a similar cohort, relaxing twice before giving up. Returns
// (nil, nil) when no usable cohort exists; the caller applies a formula
// fallback.
func (s *Store) TenureMetrics(ctx context.Context, p *model.CustomerProfile) (*model.PolicyEstimate, error) {
	filters := []Filter{
		{
			AgeMin: ptr(p.Age - 5), AgeMax: ptr(p.Age + 5),
			OccupationClass: p.OccupationClass,
			Smoking:         p.Smoking,
		},
		{
			AgeMin: ptr(p.Age - 10), AgeMax: ptr(p.Age + 10),
			Smoking: p.Smoking,
		},
		{
			AgeMin: ptr(p.Age - 10), AgeMax: ptr(p.Age + 10),
		},
	}
	minSizes := []int{50, 30, 1}

	for i, f := range filters {
		est, size, err := s.tenureFor(ctx, f)
		if err != nil {
			return nil, err
		}
		if est != nil && size >= minSizes[i] {
			return est, nil
		}
	}
	return nil, nil
}

func (s *Store) tenureFor(ctx context.Context, f Filter) (*model.PolicyEstimate, int, error) {
	where, args := f.where()
	if where == "" {
		where = " WHERE accepted = 1"
	} else {
		where += " AND accepted = 1"
	}

	query := fmt.Sprintf(`SELECT
		COUNT(*),
		COALESCE(AVG(active), 0),
		COALESCE(AVG(CASE WHEN active = 1 AND issue_date IS NOT NULL
			THEN (julianday('now') - julianday(issue_date)) / 365.25 END), 0)
	FROM historical%s`, where)

	var size int
	var activeRate, avgTenure float64
	row := s.db.QueryRowContext(ctx, query, args...)
	if err := row.Scan(&size, &activeRate, &avgTenure); err != nil {
		return nil, 0, eris.Wrap(err, "cohort: tenure query")
	}
	if size == 0 || avgTenure <= 0 {
		return nil, size, nil
	}

	return &model.PolicyEstimate{
		PredictedDurationYears: clamp(avgTenure, 1.0, 30.0),
		AttritionLikelihood:    clamp(1.0-activeRate, 0.0, 1.0),
	}, size, nil
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func ptr[T any](v T) *T { return &v }

func bmiOffset(bmi *float64, delta float64) *float64 {
	if bmi == nil {
		return nil
	}
	v := *bmi + delta
	return &v
}

func intOffset(base *int, delta int) *int {
	if base == nil {
		return nil
	}
	v := *base + delta
	return &v
}

func nullFloat(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}

func nullInt(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
