package model

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

// ProfileColumns is the canonical CSV column order for applicant profiles.
var ProfileColumns = []string{
	"customer_id", "age", "gender", "occupation", "occupation_class",
	"height_inches", "weight_lbs", "bmi",
	"blood_pressure_systolic", "blood_pressure_diastolic",
	"total_cholesterol", "hdl_cholesterol", "ldl_cholesterol",
	"smoking_status", "alcohol_consumption", "exercise_frequency",
	"chronic_conditions", "family_history", "dangerous_hobbies",
	"annual_income", "coverage_amount_requested", "credit_score", "existing_coverage",
}

// HistoricalColumns extends ProfileColumns with realized outcome fields.
var HistoricalColumns = append(append([]string{}, ProfileColumns...),
	"risk_score_calculated", "risk_score_assigned",
	"annual_premium_low_boundary", "annual_premium_high_boundary", "annual_premium_assigned",
	"policy_accepted", "policy_active", "claim_filed", "claim_amount",
	"underwriter_notes", "policy_issue_date",
)

type csvRow struct {
	idx map[string]int
	rec []string
}

func (r csvRow) get(col string) string {
	i, ok := r.idx[col]
	if !ok || i >= len(r.rec) {
		return ""
	}
	return strings.TrimSpace(r.rec[i])
}

func (r csvRow) float(col string) (float64, error) {
	v := r.get(col)
	if v == "" {
		return 0, eris.Errorf("csv: column %s is empty", col)
	}
	return strconv.ParseFloat(v, 64)
}

func (r csvRow) floatPtr(col string) *float64 {
	v := r.get(col)
	if v == "" || strings.EqualFold(v, "nan") {
		return nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return nil
	}
	return &f
}

func (r csvRow) intPtr(col string) *int {
	f := r.floatPtr(col)
	if f == nil {
		return nil
	}
	n := int(*f)
	return &n
}

func (r csvRow) int64Or(col string, def int64) int64 {
	f := r.floatPtr(col)
	if f == nil {
		return def
	}
	return int64(*f)
}

func (r csvRow) boolOr(col string, def bool) bool {
	switch strings.ToLower(r.get(col)) {
	case "true", "1", "t", "yes":
		return true
	case "false", "0", "f", "no":
		return false
	default:
		return def
	}
}

func readRows(r io.Reader) ([]csvRow, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, eris.Wrap(err, "csv: read header")
	}
	idx := make(map[string]int, len(header))
	for i, col := range header {
		idx[strings.TrimSpace(col)] = i
	}

	var rows []csvRow
	for {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrap(err, "csv: read record")
		}
		rows = append(rows, csvRow{idx: idx, rec: rec})
	}
	return rows, nil
}

func profileFromRow(row csvRow) (CustomerProfile, error) {
	age, err := row.float("age")
	if err != nil {
		return CustomerProfile{}, eris.Wrapf(err, "csv: parse age for %s", row.get("customer_id"))
	}

	p := CustomerProfile{
		CustomerID:        row.get("customer_id"),
		Age:               age,
		Gender:            Gender(row.get("gender")),
		Occupation:        row.get("occupation"),
		OccupationClass:   OccupationClass(row.get("occupation_class")),
		HeightInches:      row.floatPtr("height_inches"),
		WeightLbs:         row.floatPtr("weight_lbs"),
		BMI:               row.floatPtr("bmi"),
		SystolicBP:        row.intPtr("blood_pressure_systolic"),
		DiastolicBP:       row.intPtr("blood_pressure_diastolic"),
		TotalCholesterol:  row.intPtr("total_cholesterol"),
		HDLCholesterol:    row.intPtr("hdl_cholesterol"),
		LDLCholesterol:    row.intPtr("ldl_cholesterol"),
		Smoking:           SmokingStatus(row.get("smoking_status")),
		Alcohol:           AlcoholUse(row.get("alcohol_consumption")),
		Exercise:          ExerciseFrequency(row.get("exercise_frequency")),
		ChronicConditions: row.get("chronic_conditions"),
		FamilyHistory:     row.get("family_history"),
		DangerousHobbies:  row.get("dangerous_hobbies"),
		AnnualIncome:      row.intPtr("annual_income"),
		CoverageRequested: row.int64Or("coverage_amount_requested", 0),
		CreditScore:       row.intPtr("credit_score"),
		ExistingCoverage:  row.int64Or("existing_coverage", 0),
	}
	p.Normalize()
	return p, nil
}

// ReadProfiles parses applicant profiles from CSV. Rows are returned in file
// order; a malformed row aborts the parse with its row number.
func ReadProfiles(r io.Reader) ([]CustomerProfile, error) {
	rows, err := readRows(r)
	if err != nil {
		return nil, err
	}

	profiles := make([]CustomerProfile, 0, len(rows))
	for i, row := range rows {
		p, err := profileFromRow(row)
		if err != nil {
			return nil, eris.Wrapf(err, "csv: row %d", i+2)
		}
		profiles = append(profiles, p)
	}
	return profiles, nil
}

// ReadHistorical parses historical records with outcomes from CSV.
func ReadHistorical(r io.Reader) ([]HistoricalRecord, error) {
	rows, err := readRows(r)
	if err != nil {
		return nil, err
	}

	records := make([]HistoricalRecord, 0, len(rows))
	for i, row := range rows {
		p, err := profileFromRow(row)
		if err != nil {
			return nil, eris.Wrapf(err, "csv: row %d", i+2)
		}

		rec := HistoricalRecord{CustomerProfile: p}
		if f := row.floatPtr("risk_score_calculated"); f != nil {
			rec.RiskScoreCalculated = *f
		}
		if f := row.floatPtr("risk_score_assigned"); f != nil {
			rec.RiskScoreAssigned = *f
		}
		if f := row.floatPtr("annual_premium_low_boundary"); f != nil {
			rec.PremiumLowBoundary = *f
		}
		if f := row.floatPtr("annual_premium_high_boundary"); f != nil {
			rec.PremiumHighBoundary = *f
		}
		if f := row.floatPtr("annual_premium_assigned"); f != nil {
			rec.PremiumAssigned = *f
		}
		rec.PolicyAccepted = row.boolOr("policy_accepted", false)
		rec.PolicyActive = row.boolOr("policy_active", false)
		rec.ClaimFiled = row.boolOr("claim_filed", false)
		rec.ClaimAmount = row.int64Or("claim_amount", 0)
		rec.UnderwriterNotes = row.get("underwriter_notes")
		if d := row.get("policy_issue_date"); d != "" {
			if t, err := time.Parse("2006-01-02", d); err == nil {
				rec.PolicyIssueDate = t
			}
		}
		records = append(records, rec)
	}
	return records, nil
}

// WriteProfiles writes applicant profiles as CSV in canonical column order.
func WriteProfiles(w io.Writer, profiles []CustomerProfile) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ProfileColumns); err != nil {
		return eris.Wrap(err, "csv: write header")
	}
	for i := range profiles {
		if err := cw.Write(profileFields(&profiles[i])); err != nil {
			return eris.Wrapf(err, "csv: write row %d", i+1)
		}
	}
	cw.Flush()
	return eris.Wrap(cw.Error(), "csv: flush")
}

// WriteHistorical writes historical records as CSV in canonical column order.
func WriteHistorical(w io.Writer, records []HistoricalRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(HistoricalColumns); err != nil {
		return eris.Wrap(err, "csv: write header")
	}
	for i := range records {
		rec := &records[i]
		fields := profileFields(&rec.CustomerProfile)
		fields = append(fields,
			formatFloat(rec.RiskScoreCalculated, 4),
			formatFloat(rec.RiskScoreAssigned, 4),
			formatFloat(rec.PremiumLowBoundary, 2),
			formatFloat(rec.PremiumHighBoundary, 2),
			formatFloat(rec.PremiumAssigned, 2),
			strconv.FormatBool(rec.PolicyAccepted),
			strconv.FormatBool(rec.PolicyActive),
			strconv.FormatBool(rec.ClaimFiled),
			strconv.FormatInt(rec.ClaimAmount, 10),
			rec.UnderwriterNotes,
			rec.PolicyIssueDate.Format("2006-01-02"),
		)
		if err := cw.Write(fields); err != nil {
			return eris.Wrapf(err, "csv: write row %d", i+1)
		}
	}
	cw.Flush()
	return eris.Wrap(cw.Error(), "csv: flush")
}

func profileFields(p *CustomerProfile) []string {
	return []string{
		p.CustomerID,
		formatFloat(p.Age, 1),
		string(p.Gender),
		p.Occupation,
		string(p.OccupationClass),
		floatPtrField(p.HeightInches, 1),
		floatPtrField(p.WeightLbs, 1),
		floatPtrField(p.BMI, 1),
		intPtrField(p.SystolicBP),
		intPtrField(p.DiastolicBP),
		intPtrField(p.TotalCholesterol),
		intPtrField(p.HDLCholesterol),
		intPtrField(p.LDLCholesterol),
		string(p.Smoking),
		string(p.Alcohol),
		string(p.Exercise),
		p.ChronicConditions,
		p.FamilyHistory,
		p.DangerousHobbies,
		intPtrField(p.AnnualIncome),
		strconv.FormatInt(p.CoverageRequested, 10),
		intPtrField(p.CreditScore),
		strconv.FormatInt(p.ExistingCoverage, 10),
	}
}

func formatFloat(v float64, prec int) string {
	return strconv.FormatFloat(v, 'f', prec, 64)
}

func floatPtrField(v *float64, prec int) string {
	if v == nil {
		return ""
	}
	return formatFloat(*v, prec)
}

func intPtrField(v *int) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%d", *v)
}
