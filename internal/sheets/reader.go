// Package sheets moves tables between xlsx workbooks and the prep pipeline.
package sheets

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/vinodismyname/mcpcellar/internal/prep"
	"github.com/xuri/excelize/v2"
)

var (
	// ErrSheetNotFound indicates the requested sheet is absent from the workbook.
	ErrSheetNotFound = errors.New("sheets: sheet not found")
	// ErrNoHeader indicates the workbook ends before the configured header row.
	ErrNoHeader = errors.New("sheets: header row not found")
	// ErrTooManyRows indicates the sheet exceeds the configured row cap.
	ErrTooManyRows = errors.New("sheets: row limit exceeded")
)

// ReadOptions locates the table inside a workbook.
type ReadOptions struct {
	// Sheet to read; empty selects the first sheet.
	Sheet string
	// HeaderRow is the 1-based row holding column names. Rows above it are banners.
	HeaderRow int
	// MaxRows caps the data rows read; 0 disables the cap.
	MaxRows int
}

// ReadTable streams one sheet into a prep.Table. Blank header cells become
// "Unnamed: N" with N the 0-based column index; repeated headers get a ".1",
// ".2" suffix. Cell values are read raw so number formats never leak into
// parsing. Fully blank rows are skipped.
func ReadTable(ctx context.Context, path string, opts ReadOptions) (prep.Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return prep.Table{}, fmt.Errorf("sheets: open %s: %w", path, err)
	}
	defer f.Close()
	return readFile(ctx, f, opts)
}

func readFile(ctx context.Context, f *excelize.File, opts ReadOptions) (prep.Table, error) {
	sheet := opts.Sheet
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
		return prep.Table{}, fmt.Errorf("%w: %q", ErrSheetNotFound, sheet)
	}
	headerRow := opts.HeaderRow
	if headerRow < 1 {
		headerRow = 1
	}

	rows, err := f.Rows(sheet)
	if err != nil {
		return prep.Table{}, err
	}
	defer rows.Close()

	var t prep.Table
	line := 0
	for rows.Next() {
		line++
		if line%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return prep.Table{}, err
			}
		}
		vals, err := rows.Columns(excelize.Options{RawCellValue: true})
		if err != nil {
			return prep.Table{}, err
		}
		switch {
		case line < headerRow:
			continue
		case line == headerRow:
			t.Headers = headers(vals)
			continue
		}
		if blank(vals) {
			continue
		}
		if opts.MaxRows > 0 && len(t.Rows) >= opts.MaxRows {
			return prep.Table{}, fmt.Errorf("%w: %s has more than %d data rows", ErrTooManyRows, sheet, opts.MaxRows)
		}
		t.Rows = append(t.Rows, prep.Row{Line: line, Cells: vals})
	}
	if err := rows.Error(); err != nil {
		return prep.Table{}, err
	}
	if line < headerRow {
		return prep.Table{}, fmt.Errorf("%w: %s ends at row %d, header expected at row %d", ErrNoHeader, sheet, line, headerRow)
	}
	return t, nil
}

func headers(vals []string) []string {
	out := make([]string, len(vals))
	seen := map[string]int{}
	for i, v := range vals {
		h := strings.TrimSpace(v)
		if h == "" {
			h = "Unnamed: " + strconv.Itoa(i)
		}
		if n := seen[h]; n > 0 {
			seen[h] = n + 1
			h = h + "." + strconv.Itoa(n)
		} else {
			seen[h] = 1
		}
		out[i] = h
	}
	return out
}

func blank(vals []string) bool {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
