package excel

import (
	"context"
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"promptlab/domain/comparison"
	"promptlab/domain/core"
	"promptlab/internal"
	"promptlab/internal/errors"
	"promptlab/ports"

	"github.com/xuri/excelize/v2"
)

// DataReader reads paired scores from an xlsx workbook (first sheet) or a CSV file.
//
// The header row must contain base_score and enhanced_score. Optional columns:
// id, prompt, feedback, created_at (RFC3339), base_tokens, enhanced_tokens,
// options (technique names such as "defineRole;cot") and criterion pairs such
// as base_accuracy / enhanced_accuracy.
type DataReader struct {
	filePath string
	fileType string // "xlsx" or "csv"
	logger   *internal.Logger
}

// NewDataReader creates a reader; the file type follows the extension
func NewDataReader(filePath string, logger *internal.Logger) *DataReader {
	fileType := "xlsx"
	if strings.ToLower(filepath.Ext(filePath)) == ".csv" {
		fileType = "csv"
	}
	if logger != nil {
		logger = logger.WithComponent("excel")
	}
	return &DataReader{filePath: filePath, fileType: fileType, logger: logger}
}

// ListComparisons implements ports.ComparisonSource
func (r *DataReader) ListComparisons(ctx context.Context, filter ports.ComparisonFilter) (comparison.Records, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := r.ReadData()
	if err != nil {
		return nil, err
	}
	records, err := ToRecords(data)
	if err != nil {
		return nil, err
	}
	return ports.ApplyFilter(records, filter), nil
}

// GetComparison implements ports.ComparisonLookup; only rows with an id
// column value can be found
func (r *DataReader) GetComparison(ctx context.Context, id core.ComparisonID) (*comparison.Record, error) {
	records, err := r.ListComparisons(ctx, ports.ComparisonFilter{})
	if err != nil {
		return nil, err
	}
	return ports.FindComparison(records, id)
}

// ReadData reads the file into header-keyed string rows
func (r *DataReader) ReadData() (*SheetData, error) {
	if _, err := os.Stat(r.filePath); os.IsNotExist(err) {
		return nil, errors.NotFound(fmt.Sprintf("%s file %s", strings.ToUpper(r.fileType), r.filePath))
	}

	start := time.Now()
	var rows [][]string
	var err error
	switch r.fileType {
	case "csv":
		rows, err = r.readCSVRows()
	default:
		rows, err = r.readExcelRows()
	}
	if err != nil {
		return nil, err
	}
	r.logger.Debug("%s read in %.2fms (%d rows)", r.filePath, float64(time.Since(start).Nanoseconds())/1e6, len(rows))

	if len(rows) < 2 {
		return nil, errors.UnreadableInput(fmt.Sprintf("%s must have a header row and at least one data row", r.filePath), nil)
	}
	return processRows(rows), nil
}

func (r *DataReader) readExcelRows() ([][]string, error) {
	f, err := excelize.OpenFile(r.filePath)
	if err != nil {
		return nil, errors.UnreadableInput("failed to open workbook", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.UnreadableInput("workbook has no sheets", nil)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, errors.UnreadableInput(fmt.Sprintf("failed to read sheet %s", sheets[0]), err)
	}
	return rows, nil
}

func (r *DataReader) readCSVRows() ([][]string, error) {
	file, err := os.Open(r.filePath)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open CSV file")
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, errors.UnreadableInput("failed to read CSV file", err)
	}
	return rows, nil
}

// processRows converts raw string rows into SheetData, skipping blank rows
func processRows(rows [][]string) *SheetData {
	headers := make([]string, len(rows[0]))
	for i, header := range rows[0] {
		headers[i] = strings.ToLower(strings.TrimSpace(header))
	}

	var dataRows []RawRowData
	for _, row := range rows[1:] {
		rowData := make(RawRowData)
		blank := true
		for j, cell := range row {
			if j >= len(headers) {
				break
			}
			cell = strings.TrimSpace(cell)
			if cell != "" {
				blank = false
			}
			rowData[headers[j]] = cell
		}
		if !blank {
			dataRows = append(dataRows, rowData)
		}
	}

	return &SheetData{Headers: headers, Rows: dataRows}
}

// ToRecords maps sheet rows to comparison records. Row numbers in errors are
// 1-based spreadsheet rows, counting the header.
func ToRecords(data *SheetData) (comparison.Records, error) {
	if !hasHeader(data.Headers, ColumnBaseScore) || !hasHeader(data.Headers, ColumnEnhancedScore) {
		return nil, errors.UnreadableInput(
			fmt.Sprintf("header row must contain %s and %s", ColumnBaseScore, ColumnEnhancedScore), nil)
	}
	criteria := criterionColumns(data.Headers)

	records := make(comparison.Records, 0, len(data.Rows))
	for i, row := range data.Rows {
		line := i + 2
		rec := comparison.Record{
			Prompt:   row[ColumnPrompt],
			Feedback: row[ColumnFeedback],
		}

		var err error
		if rec.BaseScore, err = parseFloat(row, ColumnBaseScore, line, true); err != nil {
			return nil, err
		}
		if rec.EnhancedScore, err = parseFloat(row, ColumnEnhancedScore, line, true); err != nil {
			return nil, err
		}
		baseTokens, err := parseFloat(row, ColumnBaseTokens, line, false)
		if err != nil {
			return nil, err
		}
		enhancedTokens, err := parseFloat(row, ColumnEnhancedTokens, line, false)
		if err != nil {
			return nil, err
		}
		rec.BaseUsage.TotalTokens = int(baseTokens)
		rec.EnhancedUsage.TotalTokens = int(enhancedTokens)

		for _, name := range criteria {
			baseCol, enhancedCol := criterionBasePrefix+name, criterionEnhancePrefix+name
			if row[baseCol] == "" || row[enhancedCol] == "" {
				continue
			}
			b, err := parseFloat(row, baseCol, line, true)
			if err != nil {
				return nil, err
			}
			e, err := parseFloat(row, enhancedCol, line, true)
			if err != nil {
				return nil, err
			}
			if rec.BaseCriteria == nil {
				rec.BaseCriteria = map[string]float64{}
				rec.EnhancedCriteria = map[string]float64{}
			}
			rec.BaseCriteria[name] = b
			rec.EnhancedCriteria[name] = e
		}

		if ts := row[ColumnCreatedAt]; ts != "" {
			created, err := time.Parse(time.RFC3339, ts)
			if err != nil {
				return nil, errors.UnreadableInput(fmt.Sprintf("row %d: %s is not RFC3339", line, ColumnCreatedAt), err)
			}
			rec.CreatedAt = created
		}

		if opts := parseOptions(row[ColumnOptions]); len(opts) > 0 {
			rec.Options = opts
		}

		if id := row[ColumnID]; id != "" {
			rec.ID = core.ComparisonID(id)
		} else {
			rec.ID = core.NewComparisonID()
		}

		records = append(records, rec)
	}
	return records, nil
}

func parseFloat(row RawRowData, column string, line int, required bool) (float64, error) {
	raw := row[column]
	if raw == "" {
		if required {
			return 0, errors.UnreadableInput(fmt.Sprintf("row %d: %s is empty", line, column), nil)
		}
		return 0, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, errors.UnreadableInput(fmt.Sprintf("row %d: %s=%q is not a number", line, column, raw), err)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, errors.UnreadableInput(fmt.Sprintf("row %d: %s=%q is not a finite number", line, column, raw), nil)
	}
	return v, nil
}

// parseOptions reads enabled technique names separated by ';', ',' or spaces
func parseOptions(raw string) map[string]bool {
	names := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ';' || r == ',' || r == ' '
	})
	if len(names) == 0 {
		return nil
	}
	opts := make(map[string]bool, len(names))
	for _, name := range names {
		opts[name] = true
	}
	return opts
}

// criterionColumns finds names with both base_<name> and enhanced_<name> headers,
// excluding the score and token columns
func criterionColumns(headers []string) []string {
	var names []string
	for _, h := range headers {
		if !strings.HasPrefix(h, criterionBasePrefix) {
			continue
		}
		name := strings.TrimPrefix(h, criterionBasePrefix)
		if name == "score" || name == "tokens" || name == "" {
			continue
		}
		if hasHeader(headers, criterionEnhancePrefix+name) {
			names = append(names, name)
		}
	}
	return names
}

func hasHeader(headers []string, name string) bool {
	for _, h := range headers {
		if h == name {
			return true
		}
	}
	return false
}
