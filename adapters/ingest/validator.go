package ingest

import (
	"sort"
	"strconv"
	"strings"

	"churnscope/domain/dataset"
	"churnscope/internal"
	"churnscope/internal/errors"
)

// SchemaValidator checks a RawTable against the Telco attrition schema and
// produces a typed Dataset. Validation is all-or-nothing: any missing or
// malformed required column fails the whole upload, and the error names
// every offending column.
type SchemaValidator struct{}

// NewSchemaValidator creates a new schema validator
func NewSchemaValidator() *SchemaValidator {
	return &SchemaValidator{}
}

// requiredColumns is the full set of schema columns an upload must carry.
func requiredColumns() []string {
	cols := append([]string{}, dataset.CategoricalColumns()...)
	return append(cols, dataset.NumericColumns()...)
}

// Validate turns a raw table into a Dataset or a SchemaError. Header
// matching is case-insensitive; unrecognized extra columns are ignored.
func (v *SchemaValidator) Validate(table *RawTable, sourceFile string) (*dataset.Dataset, error) {
	colIndex, missing := resolveHeader(table.Headers)
	if len(missing) > 0 {
		return nil, errors.SchemaError(missing)
	}

	bad := make(map[string]bool)
	records := make([]dataset.CustomerRecord, 0, len(table.Rows))

	for _, row := range table.Rows {
		rec, rowBad := buildRecord(row, colIndex)
		for _, col := range rowBad {
			bad[col] = true
		}
		records = append(records, rec)
	}

	if len(bad) > 0 {
		cols := make([]string, 0, len(bad))
		for col := range bad {
			cols = append(cols, col)
		}
		sort.Strings(cols)
		return nil, errors.SchemaError(cols)
	}

	d := dataset.New(records, sourceFile)
	internal.DefaultLogger.Info("[SchemaValidator] dataset %s validated: %d records from %s", d.ID, d.Size(), sourceFile)
	return d, nil
}

// resolveHeader maps each required column to its index in the header,
// case-insensitively, and reports the columns that are absent.
func resolveHeader(headers []string) (map[string]int, []string) {
	byLower := make(map[string]int, len(headers))
	for i, h := range headers {
		key := strings.ToLower(h)
		if _, exists := byLower[key]; !exists {
			byLower[key] = i
		}
	}

	colIndex := make(map[string]int)
	var missing []string
	for _, col := range requiredColumns() {
		idx, ok := byLower[strings.ToLower(col)]
		if !ok {
			missing = append(missing, col)
			continue
		}
		colIndex[col] = idx
	}
	sort.Strings(missing)
	return colIndex, missing
}

// buildRecord converts one raw row, returning the columns that failed to
// parse or normalize. A row shorter than the header counts its absent
// cells as malformed.
func buildRecord(row []string, colIndex map[string]int) (dataset.CustomerRecord, []string) {
	var bad []string

	cell := func(col string) (string, bool) {
		idx := colIndex[col]
		if idx >= len(row) {
			return "", false
		}
		return row[idx], true
	}

	numeric := func(col string) float64 {
		raw, ok := cell(col)
		if !ok || raw == "" {
			bad = append(bad, col)
			return 0
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			bad = append(bad, col)
			return 0
		}
		return v
	}

	binary := func(col string) string {
		raw, ok := cell(col)
		if !ok {
			bad = append(bad, col)
			return ""
		}
		norm, ok := normalizeBinary(raw)
		if !ok {
			bad = append(bad, col)
			return ""
		}
		return norm
	}

	categorical := func(col string) string {
		raw, ok := cell(col)
		if !ok {
			bad = append(bad, col)
			return ""
		}
		return raw
	}

	rec := dataset.CustomerRecord{
		Gender:          categorical(dataset.ColGender),
		SeniorCitizen:   binary(dataset.ColSeniorCitizen),
		Partner:         binary(dataset.ColPartner),
		Dependents:      binary(dataset.ColDependents),
		Tenure:          numeric(dataset.ColTenure),
		InternetService: categorical(dataset.ColInternetService),
		Contract:        categorical(dataset.ColContract),
		PaymentMethod:   categorical(dataset.ColPaymentMethod),
		MonthlyCharges:  numeric(dataset.ColMonthlyCharges),
		Churn:           binary(dataset.ColChurn),
	}
	return rec, bad
}

// normalizeBinary maps the label variants found in Telco exports to
// canonical Yes/No. SeniorCitizen is often exported as 0/1.
func normalizeBinary(raw string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "yes", "true", "1":
		return dataset.LabelYes, true
	case "no", "false", "0":
		return dataset.LabelNo, true
	}
	return "", false
}
