package analysis

import (
	"gonum.org/v1/gonum/stat"

	"churnscope/domain/dataset"
)

// CorrelationMatrix holds pairwise Pearson correlations over the numeric
// columns plus 1/0 encodings of the binary Yes/No columns. Cells is
// row-major over Columns; a nil cell means the correlation is undefined
// for the current view (fewer than two records, or a constant column).
type CorrelationMatrix struct {
	Columns []string     `json:"columns"`
	Cells   [][]*float64 `json:"cells"`
}

// CorrelationMatrix computes the matrix for the view. A zero-variance
// column makes only its own cells undefined; the rest of the matrix is
// still produced.
func (b *ChartDataBuilder) CorrelationMatrix(view *View) *CorrelationMatrix {
	columns := append(append([]string{}, dataset.NumericColumns()...), dataset.BinaryColumns()...)
	vectors := make([][]float64, len(columns))
	for i, col := range columns {
		vectors[i] = encodeColumn(view, col)
	}

	degenerate := make([]bool, len(columns))
	for i, vec := range vectors {
		degenerate[i] = len(vec) < 2 || stat.Variance(vec, nil) == 0
	}

	matrix := &CorrelationMatrix{Columns: columns}
	matrix.Cells = make([][]*float64, len(columns))
	for i := range columns {
		matrix.Cells[i] = make([]*float64, len(columns))
		for j := range columns {
			if degenerate[i] || degenerate[j] {
				continue // undefined, not zero
			}
			r := stat.Correlation(vectors[i], vectors[j], nil)
			matrix.Cells[i][j] = &r
		}
	}
	return matrix
}

// encodeColumn extracts a column of the view as float64s, mapping the
// binary Yes/No labels to 1/0.
func encodeColumn(view *View, column string) []float64 {
	out := make([]float64, 0, view.Size())
	for _, rec := range view.Records {
		if v, ok := rec.NumericValue(column); ok {
			out = append(out, v)
			continue
		}
		label, _ := rec.CategoricalValue(column)
		if label == dataset.LabelYes {
			out = append(out, 1)
		} else {
			out = append(out, 0)
		}
	}
	return out
}
