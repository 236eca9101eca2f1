package testkit

import (
	"testing"

	"churnscope/domain/dataset"
)

func TestTelcoGenerator_Deterministic(t *testing.T) {
	config := TelcoGeneratorConfig{CustomerCount: 100, Seed: 42}

	first := NewTelcoDataGenerator(config).GenerateRecords()
	second := NewTelcoDataGenerator(config).GenerateRecords()

	if len(first) != 100 || len(second) != 100 {
		t.Fatalf("expected 100 records each, got %d and %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("record %d differs across runs with the same seed", i)
		}
	}
}

func TestTelcoGenerator_ValidLabels(t *testing.T) {
	records := NewTelcoDataGenerator(DefaultTelcoConfig()).GenerateRecords()

	for i, rec := range records {
		for _, label := range []string{rec.SeniorCitizen, rec.Partner, rec.Dependents, rec.Churn} {
			if label != dataset.LabelYes && label != dataset.LabelNo {
				t.Fatalf("record %d has non-binary label %q", i, label)
			}
		}
		if rec.Tenure < 0 || rec.Tenure > 72 {
			t.Errorf("record %d tenure out of range: %v", i, rec.Tenure)
		}
		if rec.MonthlyCharges < 20 {
			t.Errorf("record %d charges below floor: %v", i, rec.MonthlyCharges)
		}
	}
}

func TestTelcoGenerator_ChurnPattern(t *testing.T) {
	// Month-to-month contracts must churn well above two-year ones, as in
	// the real dataset.
	records := NewTelcoDataGenerator(TelcoGeneratorConfig{CustomerCount: 3000, Seed: 1}).GenerateRecords()

	rate := func(contract string) float64 {
		total, churned := 0, 0
		for _, rec := range records {
			if rec.Contract != contract {
				continue
			}
			total++
			if rec.Churned() {
				churned++
			}
		}
		if total == 0 {
			t.Fatalf("no records for contract %q", contract)
		}
		return float64(churned) / float64(total)
	}

	monthly := rate("Month-to-month")
	twoYear := rate("Two year")
	if monthly <= twoYear+0.1 {
		t.Errorf("expected month-to-month churn well above two-year: %.2f vs %.2f", monthly, twoYear)
	}
}

func TestTelcoGenerator_DatasetInventories(t *testing.T) {
	d := NewTelcoDataGenerator(TelcoGeneratorConfig{CustomerCount: 500, Seed: 3}).GenerateDataset()

	if got := len(d.Categories[dataset.ColContract]); got != 3 {
		t.Errorf("expected 3 contract categories, got %d", got)
	}
	if got := len(d.Categories[dataset.ColPaymentMethod]); got != 4 {
		t.Errorf("expected 4 payment methods, got %d", got)
	}
	nr := d.Ranges[dataset.ColTenure]
	if nr.Min < 0 || nr.Max > 72 || nr.Min > nr.Max {
		t.Errorf("unexpected tenure range: %+v", nr)
	}
}
