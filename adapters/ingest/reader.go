package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"churnscope/internal"
)

// RawTable is a parsed but unvalidated tabular file: a header row plus
// string cells. The schema validator turns it into a typed Dataset.
type RawTable struct {
	Headers []string
	Rows    [][]string
}

// DataReader handles reading Excel and CSV files
type DataReader struct {
	fileType string // "xlsx" or "csv"
}

// NewDataReader creates a reader for the file type implied by filename.
func NewDataReader(filename string) *DataReader {
	fileType := "csv"
	if strings.ToLower(filepath.Ext(filename)) == ".xlsx" {
		fileType = "xlsx"
	}
	return &DataReader{fileType: fileType}
}

// ReadFile reads a tabular file from disk.
func (r *DataReader) ReadFile(path string) (*RawTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open data file: %w", err)
	}
	defer f.Close()
	return r.Read(f)
}

// Read reads a tabular file from a stream (disk or multipart upload).
func (r *DataReader) Read(src io.Reader) (*RawTable, error) {
	readStart := time.Now()

	var rows [][]string
	var err error
	switch r.fileType {
	case "xlsx":
		rows, err = readExcelRows(src)
	default:
		rows, err = readCSVRows(src)
	}
	if err != nil {
		return nil, err
	}

	if len(rows) < 2 {
		return nil, fmt.Errorf("%s file must have at least a header row and one data row", strings.ToUpper(r.fileType))
	}

	table := processRows(rows)
	internal.DefaultLogger.Info("[DataReader] %s input read in %.2fms (%d columns, %d rows)",
		strings.ToUpper(r.fileType), float64(time.Since(readStart).Nanoseconds())/1e6,
		len(table.Headers), len(table.Rows))
	return table, nil
}

func readCSVRows(src io.Reader) ([][]string, error) {
	reader := csv.NewReader(src)
	reader.FieldsPerRecord = -1 // ragged rows are caught by the validator
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV input: %w", err)
	}
	return rows, nil
}

func readExcelRows(src io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(src)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel input: %w", err)
	}
	defer f.Close()

	// First sheet, whatever it is named.
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("Excel input has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheets[0], err)
	}
	return rows, nil
}

// processRows trims cells and splits the header from the data rows.
func processRows(rows [][]string) *RawTable {
	headerRow := rows[0]
	headers := make([]string, len(headerRow))
	for i, header := range headerRow {
		headers[i] = strings.TrimSpace(header)
	}

	dataRows := make([][]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		cells := make([]string, len(row))
		for j, cell := range row {
			cells[j] = strings.TrimSpace(cell)
		}
		dataRows = append(dataRows, cells)
	}

	return &RawTable{Headers: headers, Rows: dataRows}
}
