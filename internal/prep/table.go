package prep

import (
	"errors"
	"strings"
)

// Table is a generic in-memory sheet: a header row and the data rows below it.
type Table struct {
	Headers []string
	Rows    []Row
}

// Row is one data row. Line is the 1-based source line, 0 when unknown.
type Row struct {
	Line  int
	Cells []string
}

// Cell returns the trimmed cell at idx, or "" when idx is out of range.
func (r Row) Cell(idx int) string {
	if idx < 0 || idx >= len(r.Cells) {
		return ""
	}
	return strings.TrimSpace(r.Cells[idx])
}

// Reject records a row excluded by a data-quality rule.
type Reject struct {
	Line   int    `json:"line"`
	Reason string `json:"reason"`
}

// Errors returned by the preparation stages.
var (
	// ErrMissingColumn indicates a required column is absent from the header row.
	ErrMissingColumn = errors.New("prep: required column missing")
	// ErrTimeFormat indicates an open-time cell does not match the expected layout.
	ErrTimeFormat = errors.New("prep: unexpected open-time format")
	// ErrUnknownCategory indicates a category outside the fixed catalog vocabulary.
	ErrUnknownCategory = errors.New("prep: unknown category")
)

// fillDown forward-fills the given columns: a blank cell takes the nearest
// preceding non-blank value of the same column. It returns new rows and
// leaves the input untouched.
func fillDown(rows []Row, cols ...int) []Row {
	last := make([]string, len(cols))
	out := make([]Row, len(rows))
	for i, r := range rows {
		cells := make([]string, len(r.Cells))
		copy(cells, r.Cells)
		for k, c := range cols {
			if c < 0 {
				continue
			}
			v := r.Cell(c)
			if v != "" {
				last[k] = v
				continue
			}
			if last[k] == "" {
				continue
			}
			for len(cells) <= c {
				cells = append(cells, "")
			}
			cells[c] = last[k]
		}
		out[i] = Row{Line: r.Line, Cells: cells}
	}
	return out
}
