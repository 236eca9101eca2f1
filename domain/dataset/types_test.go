package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func sampleRecords() []CustomerRecord {
	return []CustomerRecord{
		{
			Gender: "Female", SeniorCitizen: LabelNo, Partner: LabelYes, Dependents: LabelNo,
			Tenure: 1, InternetService: "DSL", Contract: "Month-to-month",
			PaymentMethod: "Electronic check", MonthlyCharges: 29.85, Churn: LabelNo,
		},
		{
			Gender: "Male", SeniorCitizen: LabelYes, Partner: LabelNo, Dependents: LabelNo,
			Tenure: 34, InternetService: "Fiber optic", Contract: "One year",
			PaymentMethod: "Mailed check", MonthlyCharges: 99.65, Churn: LabelYes,
		},
		{
			Gender: "Male", SeniorCitizen: LabelNo, Partner: LabelNo, Dependents: LabelYes,
			Tenure: 12, InternetService: "DSL", Contract: "Month-to-month",
			PaymentMethod: "Electronic check", MonthlyCharges: 45.00, Churn: LabelNo,
		},
	}
}

func TestNew_CategoriesAndRanges(t *testing.T) {
	d := New(sampleRecords(), "sample.csv")

	assert.Equal(t, 3, d.Size())
	assert.NotEmpty(t, d.ID)
	assert.Equal(t, "sample.csv", d.SourceFile)

	// Inventories are sorted and deduplicated.
	assert.Equal(t, []string{"Month-to-month", "One year"}, d.Categories[ColContract])
	assert.Equal(t, []string{"DSL", "Fiber optic"}, d.Categories[ColInternetService])
	assert.Equal(t, []string{LabelNo, LabelYes}, d.Categories[ColChurn])

	assert.Equal(t, NumericRange{Min: 1, Max: 34}, d.Ranges[ColTenure])
	assert.Equal(t, NumericRange{Min: 29.85, Max: 99.65}, d.Ranges[ColMonthlyCharges])
}

func TestNew_EmptyRecords(t *testing.T) {
	d := New(nil, "empty.csv")

	assert.Equal(t, 0, d.Size())
	for _, col := range CategoricalColumns() {
		assert.Empty(t, d.Categories[col], col)
	}
}

func TestRecordAccessors(t *testing.T) {
	rec := sampleRecords()[1]

	v, ok := rec.CategoricalValue(ColContract)
	assert.True(t, ok)
	assert.Equal(t, "One year", v)

	n, ok := rec.NumericValue(ColTenure)
	assert.True(t, ok)
	assert.Equal(t, 34.0, n)

	_, ok = rec.CategoricalValue("TotalCharges")
	assert.False(t, ok)
	_, ok = rec.NumericValue(ColContract)
	assert.False(t, ok)

	assert.True(t, rec.Churned())
	assert.False(t, sampleRecords()[0].Churned())
}

func TestNumericRangeContains(t *testing.T) {
	nr := NumericRange{Min: 10, Max: 20}

	assert.True(t, nr.Contains(10), "lower bound is inclusive")
	assert.True(t, nr.Contains(20), "upper bound is inclusive")
	assert.True(t, nr.Contains(15))
	assert.False(t, nr.Contains(9.999))
	assert.False(t, nr.Contains(20.001))
}

func TestColumnSets(t *testing.T) {
	for _, col := range CategoricalColumns() {
		assert.True(t, IsCategoricalColumn(col), col)
		assert.False(t, IsNumericColumn(col), col)
	}
	for _, col := range NumericColumns() {
		assert.True(t, IsNumericColumn(col), col)
		assert.False(t, IsCategoricalColumn(col), col)
	}
	for _, col := range BinaryColumns() {
		assert.True(t, IsCategoricalColumn(col), col)
	}
}
