package stations

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"trainmap.dev/internal/models"
)

// Column names of the station reference table. They are matched by header
// name, case-insensitively and in any order.
const (
	ColumnID        = "stop_id"
	ColumnName      = "stop_name"
	ColumnLatitude  = "stop_lat"
	ColumnLongitude = "stop_lon"
)

var requiredColumns = []string{ColumnID, ColumnName, ColumnLatitude, ColumnLongitude}

// SchemaError is returned when the reference table lacks one or more required columns.
type SchemaError struct {
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("station table is missing required columns: %s", strings.Join(e.Missing, ", "))
}

type columnIndex struct {
	id, name, lat, lon int
}

// ParseTable reads a comma-separated station table whose first line is a header row.
//
// Rows with an empty identifier and rows the CSV reader cannot parse are
// skipped. Coordinates that are not decimal numbers are stored as NaN.
// The returned slice holds the table rows only; directional variants are
// added later by the directory.
func ParseTable(r io.Reader) ([]models.Station, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, &SchemaError{Missing: append([]string(nil), requiredColumns...)}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read station table header: %w", err)
	}

	cols, err := indexColumns(header)
	if err != nil {
		return nil, err
	}

	var rows []models.Station
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				continue
			}
			return nil, fmt.Errorf("failed to read station table: %w", err)
		}

		id := field(record, cols.id)
		if id == "" {
			continue
		}
		rows = append(rows, models.Station{
			ID:        id,
			Name:      field(record, cols.name),
			Latitude:  parseCoordinate(field(record, cols.lat)),
			Longitude: parseCoordinate(field(record, cols.lon)),
		})
	}
	return rows, nil
}

func indexColumns(header []string) (columnIndex, error) {
	positions := make(map[string]int, len(header))
	for i, name := range header {
		if i == 0 {
			name = strings.TrimPrefix(name, "\ufeff")
		}
		name = strings.ToLower(strings.TrimSpace(name))
		if _, seen := positions[name]; !seen {
			positions[name] = i
		}
	}

	var missing []string
	for _, name := range requiredColumns {
		if _, ok := positions[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return columnIndex{}, &SchemaError{Missing: missing}
	}

	return columnIndex{
		id:   positions[ColumnID],
		name: positions[ColumnName],
		lat:  positions[ColumnLatitude],
		lon:  positions[ColumnLongitude],
	}, nil
}

// field returns the trimmed value at position i, or "" for short rows.
func field(record []string, i int) string {
	if i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

func parseCoordinate(raw string) float64 {
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}
