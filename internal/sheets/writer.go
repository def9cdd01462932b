package sheets

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/vinodismyname/mcpcellar/internal/analysis"
	"github.com/xuri/excelize/v2"
)

// DefaultABCFilename is the export name used when the caller gives none.
func DefaultABCFilename(mode analysis.Mode, metric analysis.Metric) string {
	return fmt.Sprintf("ABC_%s_%s.xlsx", mode, metric)
}

// DefaultReportFilename is the combined-report counterpart of DefaultABCFilename.
func DefaultReportFilename(mode analysis.Mode, g analysis.Granularity) string {
	return fmt.Sprintf("XYZ_%s_%s.xlsx", mode, g)
}

// ABCHeaders returns the column names of an ABC export for a mode.
func ABCHeaders(mode analysis.Mode) []string {
	if mode == analysis.ModeGlass {
		return []string{"article_name", "glasses_sold", "cost_per_glass", "price_per_glass", "category", "category_cat",
			"revenue", "profit", "cumulative_value", "cumulative_percentage", "value_percentage", "ABC_category"}
	}
	return []string{"article_name", "bottles_sold", "cost_per_bottle", "price_per_bottle", "category",
		"revenue", "profit", "cumulative_value", "cumulative_percentage", "value_percentage", "ABC_category"}
}

// ReportHeaders are the columns of a combined ABC/XYZ export.
var ReportHeaders = []string{"name", "category", "glass_category", "total_revenue", "profit", "margin_pct",
	"buckets_sold", "total_buckets", "coverage", "last_sold", "cv", "ABC", "XYZ", "rev_share", "cum_share"}

// WriteABC saves an ABC table as a single-sheet workbook, creating the parent
// directory when needed.
func WriteABC(path string, res analysis.ABCResult) error {
	f := excelize.NewFile()
	defer f.Close()
	sheet := "ABC"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return err
	}
	rows := make([][]any, 0, len(res.Rows)+1)
	rows = append(rows, toAny(ABCHeaders(res.Mode)))
	for _, r := range res.Rows {
		row := []any{r.ArticleName, r.Units, r.UnitCost, r.UnitPrice, r.Category}
		if res.Mode == analysis.ModeGlass {
			row = append(row, r.GlassCategory)
		}
		row = append(row, r.Revenue, r.Profit, r.CumulativeValue, r.CumulativePercentage, r.ValuePercentage, r.Label)
		rows = append(rows, row)
	}
	if err := writeRows(f, sheet, rows); err != nil {
		return err
	}
	return save(f, path)
}

// WriteReport saves a combined report: every row on the "report" sheet, then
// one sheet per section in section order.
func WriteReport(path string, rep analysis.Report) error {
	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", "report"); err != nil {
		return err
	}
	if err := writeRows(f, "report", reportRows(rep.Rows)); err != nil {
		return err
	}
	for _, s := range rep.Sections {
		name := sectionSheet(s.Key)
		if _, err := f.NewSheet(name); err != nil {
			return err
		}
		if err := writeRows(f, name, reportRows(s.Rows)); err != nil {
			return err
		}
	}
	return save(f, path)
}

func reportRows(in []analysis.ReportRow) [][]any {
	rows := make([][]any, 0, len(in)+1)
	rows = append(rows, toAny(ReportHeaders))
	for _, r := range in {
		rows = append(rows, []any{
			r.Name, r.Category, r.GlassCategory, r.TotalRevenue, r.Profit, optional(r.MarginPct),
			r.BucketsSold, r.TotalBuckets, r.Coverage, dateCell(r.LastSold), optional(r.CV),
			r.ABC, r.XYZ, r.RevShare, r.CumShare,
		})
	}
	return rows
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("sheets: write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}

func save(f *excelize.File, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("sheets: create export dir: %w", err)
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("sheets: save %s: %w", path, err)
	}
	return nil
}

// sectionSheet makes a section key usable as a sheet name.
func sectionSheet(key string) string {
	if key == "" {
		key = "unassigned"
	}
	r := []rune(key)
	for i, c := range r {
		switch c {
		case ':', '\\', '/', '?', '*', '[', ']':
			r[i] = '_'
		}
	}
	if len(r) > 31 {
		r = r[:31]
	}
	if string(r) == "report" {
		return "report_"
	}
	return string(r)
}

func optional(v *float64) any {
	if v == nil {
		return ""
	}
	return *v
}

func dateCell(t time.Time) any {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}

func toAny(in []string) []any {
	out := make([]any, len(in))
	for i, s := range in {
		out[i] = s
	}
	return out
}
