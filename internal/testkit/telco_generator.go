package testkit

import (
	"math/rand"

	"churnscope/domain/dataset"
)

// TelcoGeneratorConfig configures the synthetic Telco data generator
type TelcoGeneratorConfig struct {
	CustomerCount int   `json:"customer_count"`
	Seed          int64 `json:"seed"`
}

// DefaultTelcoConfig returns sensible defaults for synthetic data
func DefaultTelcoConfig() TelcoGeneratorConfig {
	return TelcoGeneratorConfig{
		CustomerCount: 1000,
		Seed:          42,
	}
}

// TelcoDataGenerator generates realistic customer-attrition records with
// the churn patterns the real dataset is known for: month-to-month
// contracts and short tenures churn more, long contracts churn less.
type TelcoDataGenerator struct {
	config TelcoGeneratorConfig
	rng    *rand.Rand
}

// NewTelcoDataGenerator creates a new generator seeded from config
func NewTelcoDataGenerator(config TelcoGeneratorConfig) *TelcoDataGenerator {
	return &TelcoDataGenerator{
		config: config,
		rng:    rand.New(rand.NewSource(config.Seed)),
	}
}

var (
	contracts       = []string{"Month-to-month", "One year", "Two year"}
	paymentMethods  = []string{"Electronic check", "Mailed check", "Bank transfer (automatic)", "Credit card (automatic)"}
	internetService = []string{"DSL", "Fiber optic", "No"}
	genders         = []string{"Female", "Male"}
)

// GenerateRecords produces the configured number of customer records.
// Deterministic for a fixed seed.
func (g *TelcoDataGenerator) GenerateRecords() []dataset.CustomerRecord {
	records := make([]dataset.CustomerRecord, 0, g.config.CustomerCount)
	for i := 0; i < g.config.CustomerCount; i++ {
		records = append(records, g.generateCustomer())
	}
	return records
}

// GenerateDataset wraps the generated records in a validated Dataset.
func (g *TelcoDataGenerator) GenerateDataset() *dataset.Dataset {
	return dataset.New(g.GenerateRecords(), "testkit")
}

func (g *TelcoDataGenerator) generateCustomer() dataset.CustomerRecord {
	contract := pick(g.rng, contracts)
	internet := pick(g.rng, internetService)

	tenure := float64(g.rng.Intn(73)) // 0..72 months
	charges := 20 + g.rng.Float64()*100
	if internet == "Fiber optic" {
		charges += 15
	}
	if internet == "No" {
		charges = 20 + g.rng.Float64()*10
	}

	rec := dataset.CustomerRecord{
		Gender:          pick(g.rng, genders),
		SeniorCitizen:   yesNo(g.rng, 0.16),
		Partner:         yesNo(g.rng, 0.48),
		Dependents:      yesNo(g.rng, 0.30),
		Tenure:          tenure,
		InternetService: internet,
		Contract:        contract,
		PaymentMethod:   pick(g.rng, paymentMethods),
		MonthlyCharges:  charges,
	}
	rec.Churn = g.churnLabel(rec)
	return rec
}

// churnLabel draws the churn outcome from a propensity shaped like the
// real dataset's: contract type dominates, short tenure and high charges
// push the rate up.
func (g *TelcoDataGenerator) churnLabel(rec dataset.CustomerRecord) string {
	p := 0.05
	switch rec.Contract {
	case "Month-to-month":
		p = 0.40
	case "One year":
		p = 0.11
	}
	if rec.Tenure < 12 {
		p += 0.10
	}
	if rec.MonthlyCharges > 80 {
		p += 0.05
	}
	if g.rng.Float64() < p {
		return dataset.LabelYes
	}
	return dataset.LabelNo
}

func pick(rng *rand.Rand, options []string) string {
	return options[rng.Intn(len(options))]
}

func yesNo(rng *rand.Rand, pYes float64) string {
	if rng.Float64() < pYes {
		return dataset.LabelYes
	}
	return dataset.LabelNo
}
