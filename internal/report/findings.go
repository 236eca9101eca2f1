package report

import (
	"fmt"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"churnscope/internal/analysis"
	"churnscope/internal/session"
)

// FindingsBuilder writes the key-findings summary for a snapshot: the
// headline KPIs plus the categories and cohorts where churn concentrates
// under the current filters.
type FindingsBuilder struct{}

// NewFindingsBuilder creates a new findings builder
func NewFindingsBuilder() *FindingsBuilder {
	return &FindingsBuilder{}
}

// Markdown renders the findings as a markdown document.
func (f *FindingsBuilder) Markdown(snap *session.Snapshot) string {
	var b strings.Builder

	b.WriteString("# Key Findings\n\n")
	fmt.Fprintf(&b, "Dataset `%s` — %d of %d customers match the current filters.\n\n",
		snap.SourceFile, snap.FilteredRecords, snap.TotalRecords)

	if snap.EmptyResult {
		b.WriteString("**No customers match the current filters.** All metrics are undefined; widen a filter to continue exploring.\n")
		return b.String()
	}

	b.WriteString("## Headline\n\n")
	fmt.Fprintf(&b, "- Churn rate: **%.1f%%** (%d of %d customers)\n",
		snap.KPIs.ChurnRatePct, snap.KPIs.ChurnedCustomers, snap.KPIs.TotalCustomers)
	if snap.KPIs.AvgMonthlyCharges != nil {
		fmt.Fprintf(&b, "- Average monthly charges: **$%.2f**\n", *snap.KPIs.AvgMonthlyCharges)
	}
	if snap.KPIs.AvgTenure != nil {
		fmt.Fprintf(&b, "- Average tenure: **%.1f months**\n", *snap.KPIs.AvgTenure)
	}
	b.WriteString("\n")

	if bar, ok := snap.Charts[analysis.ChartCategoryChurnRate].(*analysis.CategoryChurnRate); ok && bar != nil {
		if top := highestRate(bar.Rates); top != nil {
			fmt.Fprintf(&b, "## Drivers\n\n- Highest churn by %s: **%s** at %.1f%% (%d customers)\n",
				bar.Attribute, top.Category, *top.RatePct, top.Total)
		}
	}

	if cohorts, ok := snap.Charts[analysis.ChartTenureCohorts].([]analysis.CohortRate); ok {
		if top := highestCohort(cohorts); top != nil {
			fmt.Fprintf(&b, "- Highest-churn tenure cohort: **%s months** at %.1f%%\n",
				top.Cohort, *top.RatePct)
		}
	}
	b.WriteString("\n")

	b.WriteString("Compare churn rates across Contract, PaymentMethod and InternetService, and use the tenure range to check whether short-tenure groups churn more.\n")
	return b.String()
}

// HTML renders the findings document to HTML.
func (f *FindingsBuilder) HTML(snap *session.Snapshot) []byte {
	md := f.Markdown(snap)
	p := parser.NewWithExtensions(parser.CommonExtensions)
	doc := p.Parse([]byte(md))
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags})
	return markdown.Render(doc, renderer)
}

func highestRate(rates []analysis.CategoryRate) *analysis.CategoryRate {
	var top *analysis.CategoryRate
	for i := range rates {
		r := &rates[i]
		if r.RatePct == nil {
			continue
		}
		if top == nil || *r.RatePct > *top.RatePct {
			top = r
		}
	}
	return top
}

func highestCohort(cohorts []analysis.CohortRate) *analysis.CohortRate {
	var top *analysis.CohortRate
	for i := range cohorts {
		c := &cohorts[i]
		if c.RatePct == nil {
			continue
		}
		if top == nil || *c.RatePct > *top.RatePct {
			top = c
		}
	}
	return top
}
