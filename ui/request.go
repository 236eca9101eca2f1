package ui

import (
	"encoding/json"
	"net/http"

	"churnscope/domain/filter"
	"churnscope/internal/analysis"
	"churnscope/internal/errors"
)

// chartOptionsFromQuery reads the attribute selections for the bar chart
// and heatmap from query parameters, falling back to the dashboard
// defaults. Shared by the gin server and the chi app.
func chartOptionsFromQuery(r *http.Request) analysis.ChartOptions {
	opts := analysis.DefaultChartOptions()
	q := r.URL.Query()
	if v := q.Get("cat"); v != "" {
		opts.BarAttribute = v
	}
	if v := q.Get("x"); v != "" {
		opts.HeatmapX = v
	}
	if v := q.Get("y"); v != "" {
		opts.HeatmapY = v
	}
	return opts
}

// decodeFilterSet parses a filter set from a JSON request body.
func decodeFilterSet(r *http.Request) (filter.Set, error) {
	var fs filter.Set
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&fs); err != nil {
		return filter.Set{}, errors.InvalidInput("invalid filter payload: " + err.Error())
	}
	return fs, nil
}
