package analysis

import (
	"context"
	"fmt"

	"github.com/montanaflynn/stats"
	"golang.org/x/sync/errgroup"

	"churnscope/domain/dataset"
	"churnscope/internal/errors"
)

// Stable chart identifiers. The presentation layer routes payloads to
// charts by these keys and carries no aggregation logic of its own.
const (
	ChartChurnDistribution       = "churn_distribution"
	ChartTenureHistogram         = "tenure_histogram"
	ChartMonthlyChargesHistogram = "monthly_charges_histogram"
	ChartCategoryChurnRate       = "category_churn_rate"
	ChartChurnHeatmap            = "churn_heatmap"
	ChartMonthlyChargesBoxplot   = "monthly_charges_boxplot"
	ChartScatterSample           = "scatter_sample"
	ChartCorrelationMatrix       = "correlation_matrix"
	ChartTenureCohorts           = "tenure_cohorts"
)

// ChartOptions selects the attributes for the attribute-driven charts.
type ChartOptions struct {
	BarAttribute string `json:"bar_attribute"`
	HeatmapX     string `json:"heatmap_x"`
	HeatmapY     string `json:"heatmap_y"`
}

// DefaultChartOptions mirrors the default selections of the dashboard.
func DefaultChartOptions() ChartOptions {
	return ChartOptions{
		BarAttribute: dataset.ColContract,
		HeatmapX:     dataset.ColContract,
		HeatmapY:     dataset.ColPaymentMethod,
	}
}

// Validate rejects unknown or degenerate attribute selections.
func (o ChartOptions) Validate() error {
	for _, attr := range []string{o.BarAttribute, o.HeatmapX, o.HeatmapY} {
		if !dataset.IsCategoricalColumn(attr) {
			return fmt.Errorf("unknown categorical attribute %q", attr)
		}
	}
	if o.HeatmapX == o.HeatmapY {
		return fmt.Errorf("heatmap axes must differ, both are %q", o.HeatmapX)
	}
	return nil
}

// ChurnDistribution holds pie-ready churn label counts and proportions.
// Proportions sum to 1 for any non-empty view.
type ChurnDistribution struct {
	Counts      map[string]int     `json:"counts"`
	Proportions map[string]float64 `json:"proportions"`
	Total       int                `json:"total"`
}

// HistogramBin is one [Lo, Hi) bucket with counts per churn label. The
// final bin of a histogram is closed at Hi.
type HistogramBin struct {
	Lo     float64        `json:"lo"`
	Hi     float64        `json:"hi"`
	Counts map[string]int `json:"counts"`
	Total  int            `json:"total"`
}

// Histogram holds the binned counts for one numeric column. Edges are
// derived from the unfiltered dataset's observed range, so they do not
// move while filters change and shapes stay comparable.
type Histogram struct {
	Column string         `json:"column"`
	Edges  []float64      `json:"edges"`
	Bins   []HistogramBin `json:"bins"`
}

// CategoryRate is a per-category churn rate. RatePct is nil (undefined,
// not zero) when the category has no observations in the view.
type CategoryRate struct {
	Category string   `json:"category"`
	Total    int      `json:"total"`
	Churned  int      `json:"churned"`
	RatePct  *float64 `json:"rate_pct"`
}

// CategoryChurnRate holds bar-chart data for one categorical attribute.
// Every category the dataset knows is present, observed or not.
type CategoryChurnRate struct {
	Attribute string         `json:"attribute"`
	Rates     []CategoryRate `json:"rates"`
}

// HeatmapCell is one (x, y) cell of the cross-tabulated churn heatmap.
type HeatmapCell struct {
	X       string   `json:"x"`
	Y       string   `json:"y"`
	Total   int      `json:"total"`
	Churned int      `json:"churned"`
	RatePct *float64 `json:"rate_pct"`
}

// ChurnHeatmap holds churn rates for every value pair of two categorical
// attributes. Cells without observations carry a nil rate so the
// presentation layer can render them distinctly from a true 0%.
type ChurnHeatmap struct {
	AttributeX  string        `json:"attribute_x"`
	AttributeY  string        `json:"attribute_y"`
	XCategories []string      `json:"x_categories"`
	YCategories []string      `json:"y_categories"`
	Cells       []HeatmapCell `json:"cells"`
}

// FiveNumber is a boxplot five-number summary.
type FiveNumber struct {
	Min        float64 `json:"min"`
	Q1         float64 `json:"q1"`
	Median     float64 `json:"median"`
	Q3         float64 `json:"q3"`
	Max        float64 `json:"max"`
	SampleSize int     `json:"sample_size"`
}

// Boxplot groups five-number summaries of one numeric column by churn
// label. Labels without observations are absent from Groups.
type Boxplot struct {
	Column string                 `json:"column"`
	Groups map[string]*FiveNumber `json:"groups"`
}

// ScatterPoint is one unaggregated (tenure, charges, churn) triple.
type ScatterPoint struct {
	Tenure         float64 `json:"tenure"`
	MonthlyCharges float64 `json:"monthly_charges"`
	Churn          string  `json:"churn"`
}

// CohortRate is the churn rate of one fixed tenure cohort.
type CohortRate struct {
	Cohort  string   `json:"cohort"`
	Total   int      `json:"total"`
	Churned int      `json:"churned"`
	RatePct *float64 `json:"rate_pct"`
}

// tenure cohort boundaries in months, half-open at each edge
var cohortEdges = []float64{6, 12, 24, 36, 48, 60}

var cohortLabels = []string{"0-6", "6-12", "12-24", "24-36", "36-48", "48-60", "60+"}

// ChartDataBuilder computes the derived aggregates each chart needs. All
// builders are pure functions of the view (plus dataset-level bin edges);
// everything recomputes fully on every filter change — correctness over
// recomputation cost at these data sizes.
type ChartDataBuilder struct {
	binCount int
}

// NewChartDataBuilder creates a builder with the configured histogram
// bin count.
func NewChartDataBuilder(binCount int) *ChartDataBuilder {
	if binCount < 1 {
		binCount = 20
	}
	return &ChartDataBuilder{binCount: binCount}
}

// BuildAll computes every chart payload for the view, fanning the
// independent chart groups out concurrently within the single synchronous
// pass. The result maps stable chart identifiers to payloads.
func (b *ChartDataBuilder) BuildAll(ctx context.Context, view *View, opts ChartOptions) (map[string]interface{}, error) {
	if err := opts.Validate(); err != nil {
		return nil, errors.InvalidInput(err.Error())
	}

	var (
		distribution *ChurnDistribution
		tenureHist   *Histogram
		chargesHist  *Histogram
		barData      *CategoryChurnRate
		heatmap      *ChurnHeatmap
		boxplot      *Boxplot
		scatter      []ScatterPoint
		corr         *CorrelationMatrix
		cohorts      []CohortRate
	)

	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		distribution = b.ChurnDistribution(view)
		return nil
	})
	g.Go(func() error {
		tenureHist = b.Histogram(view, dataset.ColTenure)
		chargesHist = b.Histogram(view, dataset.ColMonthlyCharges)
		return nil
	})
	g.Go(func() error {
		barData = b.CategoryChurnRate(view, opts.BarAttribute)
		heatmap = b.ChurnHeatmap(view, opts.HeatmapX, opts.HeatmapY)
		cohorts = b.TenureCohorts(view)
		return nil
	})
	g.Go(func() error {
		boxplot = b.MonthlyChargesBoxplot(view)
		scatter = b.ScatterSample(view)
		return nil
	})
	g.Go(func() error {
		corr = b.CorrelationMatrix(view)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return map[string]interface{}{
		ChartChurnDistribution:       distribution,
		ChartTenureHistogram:         tenureHist,
		ChartMonthlyChargesHistogram: chargesHist,
		ChartCategoryChurnRate:       barData,
		ChartChurnHeatmap:            heatmap,
		ChartMonthlyChargesBoxplot:   boxplot,
		ChartScatterSample:           scatter,
		ChartCorrelationMatrix:       corr,
		ChartTenureCohorts:           cohorts,
	}, nil
}

// ChurnDistribution counts churn labels and normalizes to proportions.
func (b *ChartDataBuilder) ChurnDistribution(view *View) *ChurnDistribution {
	dist := &ChurnDistribution{
		Counts:      map[string]int{dataset.LabelYes: 0, dataset.LabelNo: 0},
		Proportions: make(map[string]float64),
		Total:       view.Size(),
	}
	for _, rec := range view.Records {
		dist.Counts[rec.Churn]++
	}
	if dist.Total > 0 {
		for label, count := range dist.Counts {
			dist.Proportions[label] = float64(count) / float64(dist.Total)
		}
	}
	return dist
}

// Histogram bins a numeric column into equal-width [lo, hi) buckets over
// the unfiltered dataset's observed range; the last bucket is closed. A
// degenerate range (min == max) collapses to a single bucket.
func (b *ChartDataBuilder) Histogram(view *View, column string) *Histogram {
	nr := view.Source.Ranges[column]
	binCount := b.binCount
	if nr.Max == nr.Min {
		binCount = 1
	}
	width := (nr.Max - nr.Min) / float64(binCount)

	hist := &Histogram{Column: column}
	hist.Edges = make([]float64, binCount+1)
	for i := 0; i <= binCount; i++ {
		hist.Edges[i] = nr.Min + float64(i)*width
	}
	hist.Edges[binCount] = nr.Max // guard against float drift on the last edge

	hist.Bins = make([]HistogramBin, binCount)
	for i := range hist.Bins {
		hist.Bins[i] = HistogramBin{
			Lo:     hist.Edges[i],
			Hi:     hist.Edges[i+1],
			Counts: map[string]int{dataset.LabelYes: 0, dataset.LabelNo: 0},
		}
	}

	for _, rec := range view.Records {
		v, _ := rec.NumericValue(column)
		idx := 0
		if width > 0 {
			idx = int((v - nr.Min) / width)
		}
		if idx >= binCount {
			idx = binCount - 1 // max value lands in the closed last bin
		}
		if idx < 0 {
			idx = 0
		}
		hist.Bins[idx].Counts[rec.Churn]++
		hist.Bins[idx].Total++
	}
	return hist
}

// CategoryChurnRate computes the churn rate per category of an attribute.
// The category list comes from the dataset, not the view, so categories
// filtered out entirely still appear — with an undefined rate.
func (b *ChartDataBuilder) CategoryChurnRate(view *View, attribute string) *CategoryChurnRate {
	totals := make(map[string]int)
	churned := make(map[string]int)
	for _, rec := range view.Records {
		v, _ := rec.CategoricalValue(attribute)
		totals[v]++
		if rec.Churned() {
			churned[v]++
		}
	}

	out := &CategoryChurnRate{Attribute: attribute}
	for _, category := range view.Source.Categories[attribute] {
		rate := CategoryRate{
			Category: category,
			Total:    totals[category],
			Churned:  churned[category],
		}
		if rate.Total > 0 {
			pct := 100 * float64(rate.Churned) / float64(rate.Total)
			rate.RatePct = &pct
		}
		out.Rates = append(out.Rates, rate)
	}
	return out
}

// ChurnHeatmap cross-tabulates churn rate over every value pair of two
// categorical attributes. Unobserved combinations get a nil rate.
func (b *ChartDataBuilder) ChurnHeatmap(view *View, attrX, attrY string) *ChurnHeatmap {
	type key struct{ x, y string }
	totals := make(map[key]int)
	churned := make(map[key]int)
	for _, rec := range view.Records {
		x, _ := rec.CategoricalValue(attrX)
		y, _ := rec.CategoricalValue(attrY)
		k := key{x, y}
		totals[k]++
		if rec.Churned() {
			churned[k]++
		}
	}

	hm := &ChurnHeatmap{
		AttributeX:  attrX,
		AttributeY:  attrY,
		XCategories: view.Source.Categories[attrX],
		YCategories: view.Source.Categories[attrY],
	}
	for _, y := range hm.YCategories {
		for _, x := range hm.XCategories {
			k := key{x, y}
			cell := HeatmapCell{X: x, Y: y, Total: totals[k], Churned: churned[k]}
			if cell.Total > 0 {
				pct := 100 * float64(cell.Churned) / float64(cell.Total)
				cell.RatePct = &pct
			}
			hm.Cells = append(hm.Cells, cell)
		}
	}
	return hm
}

// MonthlyChargesBoxplot computes five-number summaries of MonthlyCharges
// grouped by churn label.
func (b *ChartDataBuilder) MonthlyChargesBoxplot(view *View) *Boxplot {
	groups := make(map[string][]float64)
	for _, rec := range view.Records {
		groups[rec.Churn] = append(groups[rec.Churn], rec.MonthlyCharges)
	}

	box := &Boxplot{
		Column: dataset.ColMonthlyCharges,
		Groups: make(map[string]*FiveNumber),
	}
	for label, values := range groups {
		if summary := fiveNumber(values); summary != nil {
			box.Groups[label] = summary
		}
	}
	return box
}

func fiveNumber(values []float64) *FiveNumber {
	if len(values) == 0 {
		return nil
	}
	min, err := stats.Min(values)
	if err != nil {
		return nil
	}
	max, _ := stats.Max(values)
	median, _ := stats.Median(values)

	summary := &FiveNumber{
		Min:        min,
		Q1:         min,
		Median:     median,
		Q3:         max,
		Max:        max,
		SampleSize: len(values),
	}
	// Quartiles need at least four samples; below that the whiskers
	// stand in for the box.
	if len(values) >= 4 {
		if q, err := stats.Quartile(values); err == nil {
			summary.Q1 = q.Q1
			summary.Q3 = q.Q3
		}
	}
	return summary
}

// ScatterSample returns the view's (tenure, charges, churn) triples in
// dataset order, unaggregated.
func (b *ChartDataBuilder) ScatterSample(view *View) []ScatterPoint {
	points := make([]ScatterPoint, 0, view.Size())
	for _, rec := range view.Records {
		points = append(points, ScatterPoint{
			Tenure:         rec.Tenure,
			MonthlyCharges: rec.MonthlyCharges,
			Churn:          rec.Churn,
		})
	}
	return points
}

// TenureCohorts computes churn rate per fixed tenure cohort. Cohort
// boundaries never depend on the data, so cohorts are comparable across
// uploads as well as filter states.
func (b *ChartDataBuilder) TenureCohorts(view *View) []CohortRate {
	totals := make([]int, len(cohortLabels))
	churned := make([]int, len(cohortLabels))
	for _, rec := range view.Records {
		idx := cohortIndex(rec.Tenure)
		totals[idx]++
		if rec.Churned() {
			churned[idx]++
		}
	}

	out := make([]CohortRate, len(cohortLabels))
	for i, label := range cohortLabels {
		out[i] = CohortRate{Cohort: label, Total: totals[i], Churned: churned[i]}
		if totals[i] > 0 {
			pct := 100 * float64(churned[i]) / float64(totals[i])
			out[i].RatePct = &pct
		}
	}
	return out
}

func cohortIndex(tenure float64) int {
	for i, edge := range cohortEdges {
		if tenure < edge {
			return i
		}
	}
	return len(cohortEdges)
}
