package cassandra

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// ReadPropertyLog parses a whitespace-separated numeric property log
// (.prp), skipping the first skipHeader lines. Comment lines starting with
// '#' and blank lines are ignored after the header skip.
//
// All data rows must have the same column count; the step counter is
// column 1 and the configured thermo properties follow in order.
func ReadPropertyLog(path string, skipHeader int) ([][]float64, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	lines := strings.Split(strings.TrimRight(string(b), "\n"), "\n")
	if len(lines) <= skipHeader {
		return nil, fmt.Errorf("property log %s has no data after %d header lines", path, skipHeader)
	}

	var rows [][]float64
	width := -1
	for _, line := range lines[skipHeader:] {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if width == -1 {
			width = len(fields)
		} else if len(fields) != width {
			return nil, fmt.Errorf("property log %s has ragged row (%d columns, want %d)", path, len(fields), width)
		}
		row := make([]float64, len(fields))
		for i, f := range fields {
			v, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return nil, fmt.Errorf("property log %s: parse %q: %w", path, f, err)
			}
			row[i] = v
		}
		rows = append(rows, row)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("property log %s contains no data rows", path)
	}
	return rows, nil
}

// LastStep returns the step counter of the final recorded row.
func LastStep(rows [][]float64) int {
	return int(rows[len(rows)-1][0])
}

// Column extracts a 1-based column from parsed property rows.
func Column(rows [][]float64, col int) ([]float64, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("no rows")
	}
	if col < 1 || col > len(rows[0]) {
		return nil, fmt.Errorf("column %d out of range (1..%d)", col, len(rows[0]))
	}
	out := make([]float64, len(rows))
	for i, row := range rows {
		out[i] = row[col-1]
	}
	return out, nil
}

// FinalBoxLength recovers the final box edge from a box-dimension (.H)
// log, converted from Å to nm.
//
// The engine appends a fixed-shape block per snapshot; the final edge is
// the first token of the sixth line from the end of the file.
func FinalBoxLength(path string) (float64, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}

	lines := strings.Split(strings.TrimRight(string(b), "\n"), "\n")
	if len(lines) < 6 {
		return 0, fmt.Errorf("box log %s too short: %d lines", path, len(lines))
	}

	fields := strings.Fields(lines[len(lines)-6])
	if len(fields) == 0 {
		return 0, fmt.Errorf("box log %s: final-dimension line is empty", path)
	}
	angstrom, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return 0, fmt.Errorf("box log %s: parse edge %q: %w", path, fields[0], err)
	}
	return angstrom / 10.0, nil
}
