package analysis

import (
	"math"
	"testing"

	"churnscope/domain/dataset"
)

func TestCorrelationMatrix_Shape(t *testing.T) {
	view := acceptAllView(t, testDataset())
	matrix := NewChartDataBuilder(20).CorrelationMatrix(view)

	wantCols := len(dataset.NumericColumns()) + len(dataset.BinaryColumns())
	if len(matrix.Columns) != wantCols {
		t.Fatalf("expected %d columns, got %d", wantCols, len(matrix.Columns))
	}
	if len(matrix.Cells) != wantCols {
		t.Fatalf("expected %d rows, got %d", wantCols, len(matrix.Cells))
	}
	for i, row := range matrix.Cells {
		if len(row) != wantCols {
			t.Errorf("row %d has %d cells, want %d", i, len(row), wantCols)
		}
	}
}

func TestCorrelationMatrix_Values(t *testing.T) {
	view := acceptAllView(t, testDataset())
	matrix := NewChartDataBuilder(20).CorrelationMatrix(view)

	col := make(map[string]int, len(matrix.Columns))
	for i, name := range matrix.Columns {
		col[name] = i
	}

	// Diagonal of a varying column is exactly 1.
	i := col[dataset.ColTenure]
	if cell := matrix.Cells[i][i]; cell == nil || math.Abs(*cell-1) > 1e-9 {
		t.Errorf("self-correlation of tenure must be 1, got %v", cell)
	}

	// Symmetry across the defined cells.
	j := col[dataset.ColMonthlyCharges]
	a, b := matrix.Cells[i][j], matrix.Cells[j][i]
	if a == nil || b == nil || math.Abs(*a-*b) > 1e-9 {
		t.Errorf("matrix must be symmetric, got %v and %v", a, b)
	}
	if math.Abs(*a) > 1 {
		t.Errorf("correlation out of [-1, 1]: %v", *a)
	}

	// In the fixture churn tracks short tenure.
	k := col[dataset.ColChurn]
	if cell := matrix.Cells[i][k]; cell == nil || *cell >= 0 {
		t.Errorf("expected negative tenure/churn correlation, got %v", cell)
	}
}

func TestCorrelationMatrix_ZeroVarianceColumn(t *testing.T) {
	// Every record in the fixture has Partner=No, so that column is
	// constant and its correlations undefined.
	view := acceptAllView(t, testDataset())
	matrix := NewChartDataBuilder(20).CorrelationMatrix(view)

	col := make(map[string]int, len(matrix.Columns))
	for i, name := range matrix.Columns {
		col[name] = i
	}

	p := col[dataset.ColPartner]
	for j := range matrix.Columns {
		if matrix.Cells[p][j] != nil || matrix.Cells[j][p] != nil {
			t.Errorf("constant column cells must be undefined, got row/col %d", j)
		}
	}

	// The rest of the matrix is unaffected.
	i, j := col[dataset.ColTenure], col[dataset.ColMonthlyCharges]
	if matrix.Cells[i][j] == nil {
		t.Error("varying columns must keep their correlations")
	}
}

func TestCorrelationMatrix_TooFewRecords(t *testing.T) {
	d := dataset.New([]dataset.CustomerRecord{
		testRecord("One year", dataset.LabelNo, 10, 40),
	}, "fixture.csv")
	matrix := NewChartDataBuilder(20).CorrelationMatrix(acceptAllView(t, d))

	for i, row := range matrix.Cells {
		for j, cell := range row {
			if cell != nil {
				t.Errorf("cell (%d, %d) must be undefined with a single record", i, j)
			}
		}
	}
}
