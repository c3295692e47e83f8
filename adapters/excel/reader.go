// Package excel loads the numeric datasets that models are fitted on from
// XLSX workbooks and CSV files.
package excel

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"apareport/domain/core"
	"apareport/domain/dataset"
	"apareport/internal/logging"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// DefaultSheet is the worksheet read from workbooks
const DefaultSheet = "Sheet1"

// missingTokens are cell values read as missing (NaN)
var missingTokens = map[string]bool{"": true, "NA": true, "NaN": true, "nan": true, "null": true, "NULL": true, ".": true}

// DataReader handles reading Excel and CSV files
type DataReader struct {
	filePath string
	fileType string // "xlsx" or "csv"
	sheet    string
	logger   *zap.Logger
}

// NewDataReader creates a reader; the file type follows the extension
func NewDataReader(filePath string, logger *zap.Logger) *DataReader {
	ext := strings.ToLower(filepath.Ext(filePath))
	fileType := "xlsx"
	if ext == ".csv" {
		fileType = "csv"
	}
	return &DataReader{filePath: filePath, fileType: fileType, sheet: DefaultSheet, logger: logging.OrNop(logger)}
}

// WithSheet selects another worksheet of a workbook
func (r *DataReader) WithSheet(sheet string) *DataReader {
	if sheet != "" {
		r.sheet = sheet
	}
	return r
}

// ReadFrame reads the file into a numeric frame. The first row holds the
// column names; missing cells become NaN and drop out of complete cases.
func (r *DataReader) ReadFrame() (*dataset.Frame, error) {
	if _, err := os.Stat(r.filePath); os.IsNotExist(err) {
		return nil, core.NewMissingReferenceError(strings.ToUpper(r.fileType)+" file", r.filePath)
	}

	var (
		rows [][]string
		err  error
	)
	start := time.Now()
	switch r.fileType {
	case "csv":
		rows, err = r.readCSVRows()
	case "xlsx":
		rows, err = r.readExcelRows()
	default:
		return nil, fmt.Errorf("unsupported file type: %s", r.fileType)
	}
	if err != nil {
		return nil, err
	}

	frame, err := ParseRows(rows)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", r.filePath, err)
	}
	r.logger.Debug("dataset loaded",
		zap.String("path", r.filePath),
		zap.String("type", r.fileType),
		zap.Int("columns", len(frame.Names())),
		zap.Int("rows", frame.NumRows()),
		zap.Duration("elapsed", time.Since(start)))
	return frame, nil
}

// readExcelRows reads the configured worksheet
func (r *DataReader) readExcelRows() ([][]string, error) {
	f, err := excelize.OpenFile(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(r.sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", r.sheet, err)
	}
	return rows, nil
}

func (r *DataReader) readCSVRows() ([][]string, error) {
	file, err := os.Open(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV file: %w", err)
	}
	return rows, nil
}

// ParseRows converts a header row plus data rows into a frame. Short rows are
// padded with missing values; cells beyond the header are ignored.
func ParseRows(rows [][]string) (*dataset.Frame, error) {
	if len(rows) < 2 {
		return nil, core.NewInsufficientDataError("dataset rows (header plus data)", len(rows), 2)
	}

	headers := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		headers[i] = strings.TrimSpace(h)
		if headers[i] == "" {
			return nil, core.NewInputShapeError("dataset header", fmt.Sprintf("column %d has no name", i+1))
		}
	}

	columns := make([][]float64, len(headers))
	for j := range columns {
		columns[j] = make([]float64, 0, len(rows)-1)
	}
	for i, row := range rows[1:] {
		for j := range headers {
			cell := ""
			if j < len(row) {
				cell = strings.TrimSpace(row[j])
			}
			v, err := parseCell(cell)
			if err != nil {
				return nil, core.NewInputShapeError("dataset",
					fmt.Sprintf("row %d column %q: %q is not numeric", i+2, headers[j], cell))
			}
			columns[j] = append(columns[j], v)
		}
	}
	return dataset.NewFrame(headers, columns)
}

func parseCell(cell string) (float64, error) {
	if missingTokens[cell] {
		return math.NaN(), nil
	}
	return strconv.ParseFloat(cell, 64)
}
