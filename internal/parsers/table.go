// Package parsers loads CSV exports into schemaless tables and detects
// which columns carry the semantic reconciliation fields.
package parsers

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"payout-reconciliation-service/internal/models"
	"payout-reconciliation-service/pkg/errors"
	"payout-reconciliation-service/pkg/logger"
)

// ParseConfig holds configuration options for CSV parsing.
type ParseConfig struct {
	// HasHeader indicates the first row carries column names. Without a
	// header, columns are named by position ("col_0", "col_1", ...).
	HasHeader bool

	// Delimiter is the field separator.
	Delimiter rune

	// TrimLeadingSpace removes leading whitespace in fields.
	TrimLeadingSpace bool

	// SkipEmptyRows drops rows whose cells are all empty.
	SkipEmptyRows bool
}

// DefaultParseConfig returns the defaults for marketplace and bank exports:
// comma-separated with a header row.
func DefaultParseConfig() *ParseConfig {
	return &ParseConfig{
		HasHeader:        true,
		Delimiter:        ',',
		TrimLeadingSpace: true,
		SkipEmptyRows:    true,
	}
}

// ParseStats tracks what happened during one parse.
type ParseStats struct {
	TotalRows  int
	EmptyRows  int
	ParsedRows int
}

// TableParser reads CSV data into tables.
type TableParser struct {
	config *ParseConfig
	logger logger.Logger
}

// NewTableParser creates a parser with the given configuration, or the
// defaults when config is nil.
func NewTableParser(config *ParseConfig) *TableParser {
	if config == nil {
		config = DefaultParseConfig()
	}
	return &TableParser{
		config: config,
		logger: logger.GetGlobalLogger().WithComponent("parser"),
	}
}

// ParseFile reads the CSV file at path into a table.
func (tp *TableParser) ParseFile(path string) (*models.Table, *ParseStats, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, errors.FileError(errors.CodeFileNotFound, path, err)
		}
		if os.IsPermission(err) {
			return nil, nil, errors.FileError(errors.CodeFilePermission, path, err)
		}
		return nil, nil, errors.FileError(errors.CodeFileNotFound, path, err)
	}
	defer file.Close()

	table, stats, err := tp.Parse(file, path)
	if err != nil {
		return nil, nil, err
	}

	tp.logger.WithFields(logger.Fields{
		"file":    path,
		"rows":    stats.ParsedRows,
		"columns": len(table.Columns),
	}).Debug("parsed table")

	return table, stats, nil
}

// Parse reads CSV data from r into a table. The source name is used only
// for error messages. Rows may be ragged: short rows leave trailing columns
// empty, long rows drop the overflow.
func (tp *TableParser) Parse(r io.Reader, source string) (*models.Table, *ParseStats, error) {
	reader := csv.NewReader(r)
	reader.Comma = tp.config.Delimiter
	reader.TrimLeadingSpace = tp.config.TrimLeadingSpace
	reader.FieldsPerRecord = -1

	stats := &ParseStats{}

	var columns []string
	if tp.config.HasHeader {
		header, err := reader.Read()
		if err == io.EOF {
			return nil, nil, errors.ParseError(errors.CodeEmptyTable, source, 0, nil)
		}
		if err != nil {
			return nil, nil, errors.ParseError(errors.CodeInvalidFormat, source, 1, err)
		}
		columns = make([]string, len(header))
		for i, name := range header {
			columns[i] = strings.TrimSpace(name)
		}
	}

	table := models.NewTable(columns)

	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, nil, errors.ParseError(errors.CodeInvalidFormat, source, line, err)
		}
		stats.TotalRows++

		if table.Columns == nil {
			table.Columns = positionalColumns(len(record))
		}

		if tp.config.SkipEmptyRows && isEmptyRecord(record) {
			stats.EmptyRows++
			continue
		}

		row := make(models.Row, len(table.Columns))
		for i, name := range table.Columns {
			if i < len(record) {
				row[name] = record[i]
			} else {
				row[name] = ""
			}
		}
		table.Append(row)
		stats.ParsedRows++
	}

	return table, stats, nil
}

func positionalColumns(n int) []string {
	columns := make([]string, n)
	for i := range columns {
		columns[i] = fmt.Sprintf("col_%d", i)
	}
	return columns
}

func isEmptyRecord(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
