package parser

import (
	"agent-performance/errors"
	"agent-performance/metrics"
	"agent-performance/models"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const (
	agentIDColumn  = "agent_id"
	orgIDColumn    = "org_id"
	callDateColumn = "call_date"
	recordSep      = "\x1f"
	missingKey     = "\x00"
)

// Loader reads raw tables and turns them into validated tables.
type Loader struct {
	logger zerolog.Logger
}

// NewLoader returns a Loader that reports data-quality events to logger.
func NewLoader(logger zerolog.Logger) *Loader {
	return &Loader{logger: logger.With().Str("component", "loader").Logger()}
}

// LoadFile opens path and loads it against schema.
func (l *Loader) LoadFile(path string, schema models.Schema) (*models.Table, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%s: open %s: %w", schema.Name, path, err)
	}
	defer file.Close()

	return l.Load(file, schema)
}

// Load reads CSV data with a header row from r and validates it against schema.
// The required-column check runs on the raw header names, before they are trimmed.
// agent_id and org_id are trimmed, call_date is parsed per the schema's date order
// (unparseable dates become missing), and exact duplicate rows are dropped keeping
// the first occurrence.
func (l *Loader) Load(r io.Reader, schema models.Schema) (*models.Table, error) {
	start := time.Now()
	defer func() {
		metrics.LoadDurationSeconds.WithLabelValues(schema.Name).Observe(time.Since(start).Seconds())
	}()

	header, rows, err := readCSV(r, schema.Name)
	if err != nil {
		metrics.LoadErrorsTotal.WithLabelValues(schema.Name, "parse").Inc()
		return nil, err
	}

	if missing := missingColumns(header, schema.Required); len(missing) > 0 {
		l.logger.Error().
			Str("table", schema.Name).
			Strs("missing", missing).
			Msg("missing required columns")
		metrics.LoadErrorsTotal.WithLabelValues(schema.Name, "schema").Inc()
		return nil, &errors.SchemaError{Table: schema.Name, Missing: missing}
	}

	table := &models.Table{
		Name:    schema.Name,
		Columns: make([]string, len(header)),
		Rows:    rows,
	}
	for i, c := range header {
		table.Columns[i] = strings.TrimSpace(c)
	}

	for _, column := range []string{agentIDColumn, orgIDColumn} {
		idx := table.Index(column)
		if idx < 0 {
			continue
		}
		for _, row := range table.Rows {
			row[idx] = strings.TrimSpace(row[idx])
		}
	}

	if idx := table.Index(callDateColumn); idx >= 0 {
		table.Dates = make([]models.NullDate, len(table.Rows))
		for i, row := range table.Rows {
			d := ParseDate(row[idx], schema.DayFirstDates)
			table.Dates[i] = d
			row[idx] = d.String()
		}
	}

	if removed := dedupe(table); removed > 0 {
		l.logger.Warn().
			Str("table", schema.Name).
			Int("duplicates", removed).
			Msg("duplicate rows found, keeping first occurrence")
		metrics.DuplicateRowsTotal.WithLabelValues(schema.Name).Add(float64(removed))
	}

	metrics.RowsLoadedTotal.WithLabelValues(schema.Name).Add(float64(len(table.Rows)))
	l.logger.Debug().
		Str("table", schema.Name).
		Int("rows", len(table.Rows)).
		Int("columns", len(table.Columns)).
		Msg("table loaded")

	return table, nil
}

// readCSV returns the header and the data rows, padding short rows with empty cells.
func readCSV(r io.Reader, name string) ([]string, [][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil, &errors.ParseError{Table: name, Line: 1, Err: errors.ErrEmptyInput}
	}
	if err != nil {
		return nil, nil, fmt.Errorf("%s: error reading CSV header: %w", name, err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	var rows [][]string
	lineNum := 1
	for {
		record, err := reader.Read()
		lineNum++
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("%s: error reading CSV at line %d: %w", name, lineNum, err)
		}

		if len(record) > len(header) {
			return nil, nil, &errors.ParseError{
				Table:  name,
				Line:   lineNum,
				Record: record,
				Err:    errors.ErrInvalidFieldCount,
			}
		}
		for len(record) < len(header) {
			record = append(record, "")
		}
		rows = append(rows, record)
	}

	return header, rows, nil
}

// missingColumns returns the sorted required names absent from header.
func missingColumns(header, required []string) []string {
	present := make(map[string]bool, len(header))
	for _, c := range header {
		present[c] = true
	}
	var missing []string
	for _, c := range required {
		if !present[c] {
			missing = append(missing, c)
		}
	}
	sort.Strings(missing)
	return missing
}

// dedupe drops rows identical in every column to an earlier row and returns how many it dropped.
func dedupe(table *models.Table) int {
	seen := make(map[string]struct{}, len(table.Rows))
	rows := table.Rows[:0]
	var dates []models.NullDate
	if table.Dates != nil {
		dates = table.Dates[:0]
	}

	for i, row := range table.Rows {
		key := dedupeKey(row)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		rows = append(rows, row)
		if table.Dates != nil {
			dates = append(dates, table.Dates[i])
		}
	}

	removed := len(table.Rows) - len(rows)
	table.Rows = rows
	if table.Dates != nil {
		table.Dates = dates
	}
	return removed
}

// dedupeKey joins a row's cells, spelling every missing token the same way.
func dedupeKey(row []string) string {
	cells := make([]string, len(row))
	for i, cell := range row {
		if models.IsMissing(cell) {
			cell = missingKey
		}
		cells[i] = cell
	}
	return strings.Join(cells, recordSep)
}
