package dataset

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// Column names of the Telco attrition schema. Numeric columns keep the
// casing the source files use ("tenure" is lowercase in the wild).
const (
	ColGender          = "Gender"
	ColSeniorCitizen   = "SeniorCitizen"
	ColPartner         = "Partner"
	ColDependents      = "Dependents"
	ColTenure          = "tenure"
	ColInternetService = "InternetService"
	ColContract        = "Contract"
	ColPaymentMethod   = "PaymentMethod"
	ColMonthlyCharges  = "MonthlyCharges"
	ColChurn           = "Churn"
)

// Binary labels used after normalization.
const (
	LabelYes = "Yes"
	LabelNo  = "No"
)

// CategoricalColumns returns the categorical attributes of the schema in
// display order.
func CategoricalColumns() []string {
	return []string{
		ColGender,
		ColSeniorCitizen,
		ColPartner,
		ColDependents,
		ColInternetService,
		ColContract,
		ColPaymentMethod,
		ColChurn,
	}
}

// NumericColumns returns the numeric attributes of the schema.
func NumericColumns() []string {
	return []string{ColTenure, ColMonthlyCharges}
}

// BinaryColumns returns the columns whose values are constrained to Yes/No
// after validation. These are the columns the correlation matrix encodes
// as 1/0.
func BinaryColumns() []string {
	return []string{ColSeniorCitizen, ColPartner, ColDependents, ColChurn}
}

// IsCategoricalColumn reports whether name is a categorical schema column.
func IsCategoricalColumn(name string) bool {
	for _, c := range CategoricalColumns() {
		if c == name {
			return true
		}
	}
	return false
}

// IsNumericColumn reports whether name is a numeric schema column.
func IsNumericColumn(name string) bool {
	return name == ColTenure || name == ColMonthlyCharges
}

// CustomerRecord is one validated row of the dataset. Fields are typed and
// normalized once by the schema validator; nothing downstream re-parses
// strings. Records are immutable after validation.
type CustomerRecord struct {
	Gender          string  `json:"gender"`
	SeniorCitizen   string  `json:"senior_citizen"`
	Partner         string  `json:"partner"`
	Dependents      string  `json:"dependents"`
	Tenure          float64 `json:"tenure"`
	InternetService string  `json:"internet_service"`
	Contract        string  `json:"contract"`
	PaymentMethod   string  `json:"payment_method"`
	MonthlyCharges  float64 `json:"monthly_charges"`
	Churn           string  `json:"churn"`
}

// Churned reports whether the record carries the positive churn label.
func (r CustomerRecord) Churned() bool {
	return r.Churn == LabelYes
}

// CategoricalValue returns the record's value for a categorical column.
// The second return value is false for unknown column names.
func (r CustomerRecord) CategoricalValue(column string) (string, bool) {
	switch column {
	case ColGender:
		return r.Gender, true
	case ColSeniorCitizen:
		return r.SeniorCitizen, true
	case ColPartner:
		return r.Partner, true
	case ColDependents:
		return r.Dependents, true
	case ColInternetService:
		return r.InternetService, true
	case ColContract:
		return r.Contract, true
	case ColPaymentMethod:
		return r.PaymentMethod, true
	case ColChurn:
		return r.Churn, true
	}
	return "", false
}

// NumericValue returns the record's value for a numeric column.
func (r CustomerRecord) NumericValue(column string) (float64, bool) {
	switch column {
	case ColTenure:
		return r.Tenure, true
	case ColMonthlyCharges:
		return r.MonthlyCharges, true
	}
	return 0, false
}

// NumericRange is an observed inclusive [Min, Max] interval.
type NumericRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Contains reports whether v lies inside the inclusive range.
func (nr NumericRange) Contains(v float64) bool {
	return v >= nr.Min && v <= nr.Max
}

// Dataset is the validated, ordered row collection for one session. The
// category inventories and observed numeric ranges are computed once at
// validation time: they seed the accept-all filter defaults and keep
// histogram bin edges stable while filters change. A Dataset is replaced
// wholesale on a new upload, never mutated.
type Dataset struct {
	ID         string                  `json:"id"`
	SourceFile string                  `json:"source_file"`
	LoadedAt   time.Time               `json:"loaded_at"`
	Records    []CustomerRecord        `json:"-"`
	Categories map[string][]string     `json:"categories"`
	Ranges     map[string]NumericRange `json:"ranges"`
}

// New builds a Dataset from validated records and precomputes the
// per-attribute category inventories and numeric ranges.
func New(records []CustomerRecord, sourceFile string) *Dataset {
	d := &Dataset{
		ID:         uuid.New().String(),
		SourceFile: sourceFile,
		LoadedAt:   time.Now(),
		Records:    records,
		Categories: make(map[string][]string),
		Ranges:     make(map[string]NumericRange),
	}

	for _, col := range CategoricalColumns() {
		seen := make(map[string]bool)
		for _, rec := range records {
			v, _ := rec.CategoricalValue(col)
			seen[v] = true
		}
		labels := make([]string, 0, len(seen))
		for v := range seen {
			labels = append(labels, v)
		}
		sort.Strings(labels)
		d.Categories[col] = labels
	}

	for _, col := range NumericColumns() {
		var nr NumericRange
		for i, rec := range records {
			v, _ := rec.NumericValue(col)
			if i == 0 {
				nr = NumericRange{Min: v, Max: v}
				continue
			}
			if v < nr.Min {
				nr.Min = v
			}
			if v > nr.Max {
				nr.Max = v
			}
		}
		d.Ranges[col] = nr
	}

	return d
}

// Size returns the number of records.
func (d *Dataset) Size() int {
	return len(d.Records)
}
