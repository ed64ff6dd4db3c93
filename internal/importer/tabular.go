package importer

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

// tabular.go turns uploaded CSV and XLSX files into rows. The first line
// is the header; each subsequent line becomes one Row keyed by header
// name. Blank lines are skipped.

// ParseCSV reads a CSV stream into rows. A UTF-8 BOM on the first header
// cell is stripped, since spreadsheet exports routinely carry one.
func ParseCSV(r io.Reader) ([]Row, error) {
	reader := csv.NewReader(bufio.NewReader(r))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("csv file is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read csv header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	var rows []Row
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read csv row %d: %w", len(rows)+2, err)
		}
		if row := recordToRow(header, record); len(row) > 0 {
			rows = append(rows, row)
		}
	}
	return rows, nil
}

// ParseXLSX reads the first sheet of an XLSX workbook into rows.
func ParseXLSX(r io.Reader) ([]Row, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	records, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("sheet %q is empty", sheets[0])
	}

	header := records[0]
	var rows []Row
	for _, record := range records[1:] {
		if row := recordToRow(header, record); len(row) > 0 {
			rows = append(rows, row)
		}
	}
	return rows, nil
}

// ParseUpload routes a file to the right parser by its extension.
func ParseUpload(filename string, r io.Reader) ([]Row, error) {
	switch {
	case strings.HasSuffix(strings.ToLower(filename), ".csv"):
		return ParseCSV(r)
	case strings.HasSuffix(strings.ToLower(filename), ".xlsx"):
		return ParseXLSX(r)
	default:
		return nil, fmt.Errorf("unsupported file type %q, expected .csv or .xlsx", filename)
	}
}

func recordToRow(header, record []string) Row {
	row := Row{}
	for i, key := range header {
		key = strings.TrimSpace(key)
		if key == "" || i >= len(record) {
			continue
		}
		if value := strings.TrimSpace(record[i]); value != "" {
			row[key] = value
		}
	}
	return row
}
