package analysis

import (
	"github.com/montanaflynn/stats"
)

// KPISet holds the headline indicators for the current view. The average
// fields are nil for an empty view so the presentation layer renders
// "N/A" instead of a NaN; the churn rate is defined as 0 in that case.
type KPISet struct {
	TotalCustomers    int      `json:"total_customers"`
	ChurnedCustomers  int      `json:"churned_customers"`
	ChurnRatePct      float64  `json:"churn_rate_pct"`
	AvgMonthlyCharges *float64 `json:"avg_monthly_charges"`
	AvgTenure         *float64 `json:"avg_tenure"`
}

// MetricsAggregator computes KPIs over a view. Pure and deterministic.
type MetricsAggregator struct{}

// NewMetricsAggregator creates a new metrics aggregator
func NewMetricsAggregator() *MetricsAggregator {
	return &MetricsAggregator{}
}

// Compute derives the KPI set for the view.
func (a *MetricsAggregator) Compute(view *View) KPISet {
	kpis := KPISet{TotalCustomers: view.Size()}
	if kpis.TotalCustomers == 0 {
		return kpis
	}

	tenure := make([]float64, 0, view.Size())
	charges := make([]float64, 0, view.Size())
	for _, rec := range view.Records {
		if rec.Churned() {
			kpis.ChurnedCustomers++
		}
		tenure = append(tenure, rec.Tenure)
		charges = append(charges, rec.MonthlyCharges)
	}

	kpis.ChurnRatePct = 100 * float64(kpis.ChurnedCustomers) / float64(kpis.TotalCustomers)

	if mean, err := stats.Mean(charges); err == nil {
		kpis.AvgMonthlyCharges = &mean
	}
	if mean, err := stats.Mean(tenure); err == nil {
		kpis.AvgTenure = &mean
	}
	return kpis
}
