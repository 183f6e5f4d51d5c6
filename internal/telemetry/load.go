package telemetry

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"lapsync/internal/services"
)

// Raw is a parsed telemetry log before resampling. Values holds one slice per
// column, all of length Rows. Unparsable cells are NaN.
type Raw struct {
	Path    string
	Columns []string
	Values  map[string][]float64
	Rows    int
}

// HasTime reports whether the log carries its own time axis.
func (r *Raw) HasTime() bool {
	_, ok := r.Values[ColTime]
	return ok
}

// Column returns the values of a column.
func (r *Raw) Column(name string) ([]float64, bool) {
	v, ok := r.Values[name]
	return v, ok
}

// Load reads a telemetry CSV and validates the required columns.
func Load(path string, required []string) (*Raw, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, services.Wrap(services.ErrTelemetryContract, "telemetry", "open", "Unable to open telemetry log", err)
	}
	defer f.Close()
	return Parse(f, path, required)
}

// Parse reads telemetry CSV data from r. The path is only used in errors.
func Parse(r io.Reader, path string, required []string) (*Raw, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.ReuseRecord = true
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("telemetry %s: empty file: %w", path, services.ErrTelemetryContract)
		}
		return nil, fmt.Errorf("telemetry %s: read header: %w", path, errors.Join(services.ErrTelemetryContract, err))
	}

	columns := make([]string, len(header))
	index := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		columns[i] = name
		if _, dup := index[name]; !dup && name != "" {
			index[name] = i
		}
	}
	for _, col := range required {
		if _, ok := index[col]; !ok {
			return nil, &MissingColumnError{Column: col, Path: path}
		}
	}

	values := make(map[string][]float64, len(index))
	for name := range index {
		values[name] = nil
	}
	rows := 0
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("telemetry %s: row %d: %w", path, rows+2, errors.Join(services.ErrTelemetryContract, err))
		}
		if blankRecord(record) {
			continue
		}
		for name, idx := range index {
			cell := ""
			if idx < len(record) {
				cell = record[idx]
			}
			values[name] = append(values[name], parseCell(name, cell))
		}
		rows++
	}
	if rows == 0 {
		return nil, fmt.Errorf("telemetry %s: no data rows: %w", path, services.ErrTelemetryContract)
	}
	for _, col := range required {
		if allNaN(values[col]) {
			return nil, &MissingColumnError{Column: col, Path: path, Malformed: true}
		}
	}

	return &Raw{Path: path, Columns: columns, Values: values, Rows: rows}, nil
}

func blankRecord(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func parseCell(name, cell string) float64 {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return math.NaN()
	}
	switch kindOf(name) {
	case kindBool:
		switch strings.ToLower(cell) {
		case "true", "1", "yes", "y":
			return 1
		case "false", "0", "no", "n":
			return 0
		}
		return math.NaN()
	case kindInt:
		if v, err := strconv.ParseInt(cell, 10, 64); err == nil {
			return float64(v)
		}
		if v, err := strconv.ParseFloat(cell, 64); err == nil {
			return math.Round(v)
		}
		return math.NaN()
	default:
		v, err := strconv.ParseFloat(cell, 64)
		if err != nil {
			return math.NaN()
		}
		return v
	}
}

func allNaN(values []float64) bool {
	for _, v := range values {
		if !math.IsNaN(v) {
			return false
		}
	}
	return true
}
