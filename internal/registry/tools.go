package registry

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"github.com/vinodismyname/mcpcellar/config"
	"github.com/vinodismyname/mcpcellar/internal/analysis"
	"github.com/vinodismyname/mcpcellar/internal/datasets"
	"github.com/vinodismyname/mcpcellar/internal/prep"
	"github.com/vinodismyname/mcpcellar/internal/runtime"
	"github.com/vinodismyname/mcpcellar/internal/security"
	"github.com/vinodismyname/mcpcellar/internal/sheets"
	"github.com/vinodismyname/mcpcellar/pkg/mcperr"
	"github.com/vinodismyname/mcpcellar/pkg/pagination"
	"github.com/vinodismyname/mcpcellar/pkg/validation"
)

const rejectSampleSize = 20

// SavePathValidator guards report export targets.
type SavePathValidator interface {
	ValidateSavePath(path string) (string, error)
}

// Tools holds what the cellar tool handlers share.
type Tools struct {
	Datasets *datasets.Manager
	Limits   runtime.Limits
	Config   config.Config
	Exports  SavePathValidator
}

// RegisterCellarTools defines the dataset, analysis and export tools. Export
// tools carry the write_ prefix so WriteToolFilter can hide them.
func RegisterCellarTools(s *server.MCPServer, reg *Registry, t *Tools) {
	add := func(tool mcp.Tool, h server.ToolHandlerFunc) {
		s.AddTool(tool, h)
		reg.Register(tool)
	}

	add(mcp.NewTool(
		"load_sales",
		mcp.WithDescription("Load a dish-level POS export and a wine article catalog, normalize both, collapse categories into wine families and join them into one sale-line table. Returns a dataset_id for the analysis tools plus load counts and a sample of rejected rows. Errors include PERMISSION_DENIED (path outside allow-list), INVALID_SHEET, LOAD_FAILED (missing columns, unexpected time format, unknown category) and BUSY_RESOURCE (dataset limit)."),
		mcp.WithInputSchema[LoadSalesInput](),
		mcp.WithOutputSchema[LoadSalesOutput](),
	), mcp.NewTypedToolHandler(t.loadSales))

	add(mcp.NewTool(
		"list_datasets",
		mcp.WithDescription("List loaded datasets with sizes, source paths and idle expiry."),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithOutputSchema[ListDatasetsOutput](),
	), t.listDatasets)

	add(mcp.NewTool(
		"close_dataset",
		mcp.WithDescription("Drop a loaded dataset and free its slot."),
		mcp.WithInputSchema[DatasetInput](),
		mcp.WithOutputSchema[CloseDatasetOutput](),
	), mcp.NewTypedToolHandler(t.closeDataset))

	add(mcp.NewTool(
		"sale_lines",
		mcp.WithDescription("Page through the canonical sale-line table of a dataset, optionally restricted to glass or bottle lines, sold lines, a date window or families. Use nextCursor with the same filters to continue."),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithInputSchema[SaleLinesInput](),
		mcp.WithOutputSchema[SaleLinesOutput](),
	), mcp.NewTypedToolHandler(t.saleLines))

	add(mcp.NewTool(
		"abc_analysis",
		mcp.WithDescription("Rank articles by revenue or profit contribution and label them A/B/C by cumulative share (default cuts 0.8/0.95). Glass mode prices per glass; bottle mode per bottle. Returns a summary with class counts and a concentration index, and a page of rows ordered by descending value."),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithInputSchema[ABCAnalysisInput](),
		mcp.WithOutputSchema[ABCAnalysisOutput](),
	), mcp.NewTypedToolHandler(t.abcAnalysis))

	add(mcp.NewTool(
		"xyz_analysis",
		mcp.WithDescription("Build a combined ABC/XYZ report: per-subject weekly or monthly series, coefficient of variation labelled X/Y/Z (default cuts 0.35/0.8), coverage, last sale and ABC class. Rows are ordered by ABC, XYZ and value; slice_by adds sections by dominant family."),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithInputSchema[XYZAnalysisInput](),
		mcp.WithOutputSchema[XYZAnalysisOutput](),
	), mcp.NewTypedToolHandler(t.xyzAnalysis))

	add(mcp.NewTool(
		"month_over_month",
		mcp.WithDescription("Compare each article's takings (final_sum) in the latest month with a sale against the previous calendar month: last_month, prev_month, diff_abs and diff_pct (null when the previous month is zero)."),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithInputSchema[MonthDiffInput](),
		mcp.WithOutputSchema[MonthDiffOutput](),
	), mcp.NewTypedToolHandler(t.monthOverMonth))

	add(mcp.NewTool(
		"monthly_summary",
		mcp.WithDescription("Summarize takings over a month window (default: the last twelve months): totals per month, top and bottom articles by period sum, and a per-article table with monthly series and average per month."),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithInputSchema[MonthlySummaryInput](),
		mcp.WithOutputSchema[MonthlySummaryOutput](),
	), mcp.NewTypedToolHandler(t.monthlySummary))

	add(mcp.NewTool(
		"glass_family_months",
		mcp.WithDescription("Glasses poured per wine family and calendar month (January to December, years folded together, zero-filled)."),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithInputSchema[GlassFamilyInput](),
		mcp.WithOutputSchema[GlassFamilyOutput](),
	), mcp.NewTypedToolHandler(t.glassFamilyMonths))

	add(mcp.NewTool(
		"write_abc_report",
		mcp.WithDescription("Write an ABC table to an .xlsx workbook inside an allowed directory."),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithInputSchema[WriteABCInput](),
		mcp.WithOutputSchema[WriteReportOutput](),
	), mcp.NewTypedToolHandler(t.writeABCReport))

	add(mcp.NewTool(
		"write_xyz_report",
		mcp.WithDescription("Write a combined ABC/XYZ report to an .xlsx workbook inside an allowed directory, one extra sheet per section."),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithInputSchema[WriteXYZInput](),
		mcp.WithOutputSchema[WriteReportOutput](),
	), mcp.NewTypedToolHandler(t.writeXYZReport))
}

func (t *Tools) loadSales(ctx context.Context, _ mcp.CallToolRequest, in LoadSalesInput) (*mcp.CallToolResult, error) {
	if msg := validation.ValidateStruct(in); msg != "" {
		return mcp.NewToolResultError(msg), nil
	}
	layout := t.Config.Layout
	ds, err := t.Datasets.Load(ctx, datasets.LoadRequest{
		DishPath:         in.DishPath,
		CatalogPath:      in.CatalogPath,
		DishSheet:        lo.CoalesceOrEmpty(in.DishSheet, layout.DishSheet),
		CatalogSheet:     lo.CoalesceOrEmpty(in.CatalogSheet, layout.CatalogSheet),
		DishHeaderRow:    lo.CoalesceOrEmpty(in.DishHeaderRow, layout.DishHeaderRow),
		CatalogHeaderRow: lo.CoalesceOrEmpty(in.CatalogHeaderRow, layout.CatalogHeaderRow),
		MaxRows:          t.Limits.MaxRowsPerSheet,
	})
	if err != nil {
		return toolError(err, mcperr.OpenFailed), nil
	}

	out := LoadSalesOutput{
		DatasetID:       ds.ID,
		SaleLines:       len(ds.Lines),
		Articles:        len(ds.Articles),
		OrderLines:      ds.OrderLines,
		DishRejected:    len(ds.DishRejects),
		CatalogRejected: len(ds.ItemRejects),
		RejectSample:    rejectSample(ds, rejectSampleSize),
		ExpiresAt:       ds.ExpiresAt(),
	}
	summary := fmt.Sprintf("dataset_id=%s sale_lines=%d articles=%d dish_rejected=%d catalog_rejected=%d",
		out.DatasetID, out.SaleLines, out.Articles, out.DishRejected, out.CatalogRejected)
	return mcp.NewToolResultStructured(out, summary), nil
}

func (t *Tools) listDatasets(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	out := ListDatasetsOutput{Datasets: lo.Map(t.Datasets.List(), func(ds *datasets.Dataset, _ int) DatasetInfo {
		return DatasetInfo{
			DatasetID:   ds.ID,
			DishPath:    ds.DishPath,
			CatalogPath: ds.CatalogPath,
			SaleLines:   len(ds.Lines),
			Articles:    len(ds.Articles),
			LoadedAt:    ds.LoadedAt,
			ExpiresAt:   ds.ExpiresAt(),
		}
	})}
	return mcp.NewToolResultStructured(out, fmt.Sprintf("datasets=%d", len(out.Datasets))), nil
}

func (t *Tools) closeDataset(ctx context.Context, _ mcp.CallToolRequest, in DatasetInput) (*mcp.CallToolResult, error) {
	if msg := validation.ValidateStruct(in); msg != "" {
		return mcp.NewToolResultError(msg), nil
	}
	if err := t.Datasets.Remove(in.DatasetID); err != nil {
		return toolError(err, mcperr.InvalidDataset), nil
	}
	zerolog.Ctx(ctx).Info().Str("dataset_id", in.DatasetID).Msg("dataset closed")
	return mcp.NewToolResultStructured(CloseDatasetOutput{Success: true}, "closed "+in.DatasetID), nil
}

func (t *Tools) saleLines(ctx context.Context, _ mcp.CallToolRequest, in SaleLinesInput) (*mcp.CallToolResult, error) {
	if msg := validation.ValidateStruct(in); msg != "" {
		return mcp.NewToolResultError(msg), nil
	}
	ds, err := t.dataset(in.DatasetID)
	if err != nil {
		return toolError(err, mcperr.InvalidDataset), nil
	}
	scope, err := in.ScopeInput.scope()
	if err != nil {
		return toolError(err, mcperr.Validation), nil
	}
	lines := lo.Filter(ds.Lines, func(l prep.SaleLine, _ int) bool {
		switch {
		case in.Mode == string(analysis.ModeGlass) && !l.IsGlass,
			in.Mode == string(analysis.ModeBottle) && l.IsGlass,
			in.SoldOnly && !l.Sold():
			return false
		}
		return scope.Includes(l)
	})

	ph := pagination.ParamsHash(struct {
		Mode     string
		SoldOnly bool
		Scope    ScopeInput
	}{in.Mode, in.SoldOnly, in.ScopeInput})
	page, meta, err := paginate(t.Limits, lines, ds, pagination.ViewSaleLines, ph, in.PageInput)
	if err != nil {
		return toolError(err, mcperr.CursorBuildFailed), nil
	}
	out := SaleLinesOutput{DatasetID: ds.ID, Lines: page, Meta: meta}
	summary := fmt.Sprintf("total=%d offset=%d returned=%d truncated=%v", meta.Total, meta.Offset, meta.Returned, meta.Truncated)
	return mcp.NewToolResultStructured(out, summary), nil
}

func (t *Tools) abcAnalysis(ctx context.Context, _ mcp.CallToolRequest, in ABCAnalysisInput) (*mcp.CallToolResult, error) {
	if msg := validation.ValidateStruct(in); msg != "" {
		return mcp.NewToolResultError(msg), nil
	}
	ds, res, errRes := t.runABC(in.ABCInput)
	if errRes != nil {
		return errRes, nil
	}
	page, meta, err := paginate(t.Limits, res.Rows, ds, pagination.ViewABC, pagination.ParamsHash(in.ABCInput), in.PageInput)
	if err != nil {
		return toolError(err, mcperr.CursorBuildFailed), nil
	}
	out := ABCAnalysisOutput{
		DatasetID: ds.ID,
		Mode:      res.Mode,
		Metric:    res.Metric,
		Summary:   res.Summary,
		Rows:      page,
		Meta:      meta,
	}
	c := res.Summary.Counts
	summary := fmt.Sprintf("mode=%s metric=%s articles=%d A=%d B=%d C=%d total=%.2f returned=%d truncated=%v",
		res.Mode, res.Metric, len(res.Rows), c[analysis.LabelA], c[analysis.LabelB], c[analysis.LabelC], res.Summary.Total, meta.Returned, meta.Truncated)
	return mcp.NewToolResultStructured(out, summary), nil
}

func (t *Tools) xyzAnalysis(ctx context.Context, _ mcp.CallToolRequest, in XYZAnalysisInput) (*mcp.CallToolResult, error) {
	if msg := validation.ValidateStruct(in); msg != "" {
		return mcp.NewToolResultError(msg), nil
	}
	ds, rep, errRes := t.runReport(in.XYZInput)
	if errRes != nil {
		return errRes, nil
	}
	page, meta, err := paginate(t.Limits, rep.Rows, ds, pagination.ViewXYZ, pagination.ParamsHash(in.XYZInput), in.PageInput)
	if err != nil {
		return toolError(err, mcperr.CursorBuildFailed), nil
	}
	out := XYZAnalysisOutput{
		DatasetID:   ds.ID,
		Granularity: rep.Granularity,
		Mode:        rep.Mode,
		Metric:      rep.Metric,
		Subject:     rep.Subject,
		Buckets:     rep.Buckets,
		Sections: lo.Map(rep.Sections, func(s analysis.Section, _ int) SectionInfo {
			return SectionInfo{Key: s.Key, Revenue: s.Revenue, Rows: len(s.Rows)}
		}),
		Rows: page,
		Meta: meta,
	}
	summary := fmt.Sprintf("granularity=%s mode=%s subjects=%d buckets=%d sections=%d returned=%d truncated=%v",
		rep.Granularity, rep.Mode, len(rep.Rows), len(rep.Buckets), len(rep.Sections), meta.Returned, meta.Truncated)
	return mcp.NewToolResultStructured(out, summary), nil
}

func (t *Tools) monthOverMonth(ctx context.Context, _ mcp.CallToolRequest, in MonthDiffInput) (*mcp.CallToolResult, error) {
	if msg := validation.ValidateStruct(in); msg != "" {
		return mcp.NewToolResultError(msg), nil
	}
	ds, p, errRes := t.monthly(in.MonthInput)
	if errRes != nil {
		return errRes, nil
	}
	res, err := analysis.CompareMonths(ds.Lines, p)
	if err != nil {
		return toolError(err, mcperr.AnalysisFailed), nil
	}
	page, meta, err := paginate(t.Limits, res.Rows, ds, pagination.ViewMonthDiff, pagination.ParamsHash(in.MonthInput), in.PageInput)
	if err != nil {
		return toolError(err, mcperr.CursorBuildFailed), nil
	}
	out := MonthDiffOutput{DatasetID: ds.ID, LastMonth: res.LastMonth, PrevMonth: res.PrevMonth, Rows: page, Meta: meta}
	summary := fmt.Sprintf("last_month=%s prev_month=%s articles=%d returned=%d truncated=%v",
		res.LastMonth.Format("2006-01"), res.PrevMonth.Format("2006-01"), len(res.Rows), meta.Returned, meta.Truncated)
	return mcp.NewToolResultStructured(out, summary), nil
}

func (t *Tools) monthlySummary(ctx context.Context, _ mcp.CallToolRequest, in MonthlySummaryInput) (*mcp.CallToolResult, error) {
	if msg := validation.ValidateStruct(in); msg != "" {
		return mcp.NewToolResultError(msg), nil
	}
	ds, p, errRes := t.monthly(in.MonthInput)
	if errRes != nil {
		return errRes, nil
	}
	from, err := validation.ParseMonth(in.From)
	if err != nil {
		return toolError(fmt.Errorf("from: %w", err), mcperr.Validation), nil
	}
	to, err := validation.ParseMonth(in.To)
	if err != nil {
		return toolError(fmt.Errorf("to: %w", err), mcperr.Validation), nil
	}
	res, err := analysis.SummarizeMonths(ds.Lines, analysis.WindowParams{MonthlyParams: p, From: from, To: to, TopN: in.TopN})
	if err != nil {
		return toolError(err, mcperr.AnalysisFailed), nil
	}
	ph := pagination.ParamsHash(struct {
		Month    MonthInput
		From, To string
		TopN     int
	}{in.MonthInput, in.From, in.To, in.TopN})
	page, meta, err := paginate(t.Limits, res.Rows, ds, pagination.ViewMonthly, ph, in.PageInput)
	if err != nil {
		return toolError(err, mcperr.CursorBuildFailed), nil
	}
	out := MonthlySummaryOutput{
		DatasetID: ds.ID,
		From:      res.From,
		To:        res.To,
		Months:    res.Months,
		Totals:    res.Totals,
		Total:     res.Total,
		Articles:  res.Articles,
		Top:       res.Top,
		Bottom:    res.Bottom,
		Rows:      page,
		Meta:      meta,
	}
	summary := fmt.Sprintf("from=%s to=%s months=%d articles=%d total=%.2f returned=%d truncated=%v",
		res.From.Format("2006-01"), res.To.Format("2006-01"), len(res.Months), res.Articles, res.Total, meta.Returned, meta.Truncated)
	return mcp.NewToolResultStructured(out, summary), nil
}

func (t *Tools) glassFamilyMonths(ctx context.Context, _ mcp.CallToolRequest, in GlassFamilyInput) (*mcp.CallToolResult, error) {
	if msg := validation.ValidateStruct(in); msg != "" {
		return mcp.NewToolResultError(msg), nil
	}
	ds, err := t.dataset(in.DatasetID)
	if err != nil {
		return toolError(err, mcperr.InvalidDataset), nil
	}
	scope, err := in.ScopeInput.scope()
	if err != nil {
		return toolError(err, mcperr.Validation), nil
	}
	out := GlassFamilyOutput{
		DatasetID: ds.ID,
		Months:    lo.Map(lo.Range(12), func(i, _ int) string { return time.Month(i + 1).String() }),
		Families:  analysis.GlassFamilyMonths(ds.Lines, scope),
	}
	glasses := lo.SumBy(out.Families, func(f analysis.FamilyMonths) float64 { return lo.Sum(f.Quantities[:]) })
	return mcp.NewToolResultStructured(out, fmt.Sprintf("families=%d glasses=%g", len(out.Families), glasses)), nil
}

// monthly resolves the dataset and scope shared by the month-based tools.
func (t *Tools) monthly(in MonthInput) (*datasets.Dataset, analysis.MonthlyParams, *mcp.CallToolResult) {
	ds, err := t.dataset(in.DatasetID)
	if err != nil {
		return nil, analysis.MonthlyParams{}, toolError(err, mcperr.InvalidDataset)
	}
	scope, err := in.ScopeInput.scope()
	if err != nil {
		return nil, analysis.MonthlyParams{}, toolError(err, mcperr.Validation)
	}
	return ds, analysis.MonthlyParams{Mode: analysis.Mode(in.Mode), Scope: scope}, nil
}

func (t *Tools) writeABCReport(ctx context.Context, _ mcp.CallToolRequest, in WriteABCInput) (*mcp.CallToolResult, error) {
	if msg := validation.ValidateStruct(in); msg != "" {
		return mcp.NewToolResultError(msg), nil
	}
	ds, res, errRes := t.runABC(in.ABCInput)
	if errRes != nil {
		return errRes, nil
	}
	path, err := t.exportPath(ds, in.Path, sheets.DefaultABCFilename(res.Mode, res.Metric))
	if err != nil {
		return toolError(err, mcperr.PermissionDenied), nil
	}
	if err := sheets.WriteABC(path, res); err != nil {
		return toolError(err, mcperr.ExportFailed), nil
	}
	zerolog.Ctx(ctx).Info().Str("dataset_id", ds.ID).Str("path", path).Int("rows", len(res.Rows)).Msg("abc report written")
	out := WriteReportOutput{Path: path, Rows: len(res.Rows)}
	return mcp.NewToolResultStructured(out, fmt.Sprintf("wrote %d rows to %s", out.Rows, out.Path)), nil
}

func (t *Tools) writeXYZReport(ctx context.Context, _ mcp.CallToolRequest, in WriteXYZInput) (*mcp.CallToolResult, error) {
	if msg := validation.ValidateStruct(in); msg != "" {
		return mcp.NewToolResultError(msg), nil
	}
	ds, rep, errRes := t.runReport(in.XYZInput)
	if errRes != nil {
		return errRes, nil
	}
	path, err := t.exportPath(ds, in.Path, sheets.DefaultReportFilename(rep.Mode, rep.Granularity))
	if err != nil {
		return toolError(err, mcperr.PermissionDenied), nil
	}
	if err := sheets.WriteReport(path, rep); err != nil {
		return toolError(err, mcperr.ExportFailed), nil
	}
	zerolog.Ctx(ctx).Info().Str("dataset_id", ds.ID).Str("path", path).Int("rows", len(rep.Rows)).Int("sections", len(rep.Sections)).Msg("xyz report written")
	out := WriteReportOutput{Path: path, Rows: len(rep.Rows), Sections: len(rep.Sections)}
	return mcp.NewToolResultStructured(out, fmt.Sprintf("wrote %d rows in %d sections to %s", out.Rows, out.Sections, out.Path)), nil
}

func (t *Tools) dataset(id string) (*datasets.Dataset, error) {
	ds, ok := t.Datasets.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", datasets.ErrDatasetNotFound, id)
	}
	return ds, nil
}

// runABC resolves the dataset and classifies it; a non-nil result is the
// tool error to return.
func (t *Tools) runABC(in ABCInput) (*datasets.Dataset, analysis.ABCResult, *mcp.CallToolResult) {
	ds, err := t.dataset(in.DatasetID)
	if err != nil {
		return nil, analysis.ABCResult{}, toolError(err, mcperr.InvalidDataset)
	}
	scope, err := in.ScopeInput.scope()
	if err != nil {
		return nil, analysis.ABCResult{}, toolError(err, mcperr.Validation)
	}
	res, err := analysis.ClassifyABC(ds.Lines, analysis.ABCParams{
		Mode:       analysis.Mode(in.Mode),
		Metric:     analysis.Metric(in.Metric),
		Thresholds: t.abcThresholds(in.ThresholdA, in.ThresholdB),
		Scope:      scope,
	})
	if err != nil {
		return nil, analysis.ABCResult{}, toolError(err, mcperr.AnalysisFailed)
	}
	return ds, res, nil
}

func (t *Tools) runReport(in XYZInput) (*datasets.Dataset, analysis.Report, *mcp.CallToolResult) {
	ds, err := t.dataset(in.DatasetID)
	if err != nil {
		return nil, analysis.Report{}, toolError(err, mcperr.InvalidDataset)
	}
	scope, err := in.ScopeInput.scope()
	if err != nil {
		return nil, analysis.Report{}, toolError(err, mcperr.Validation)
	}
	th := t.Config.Thresholds
	rep, err := analysis.BuildReport(ds.Lines, analysis.ReportParams{
		XYZParams: analysis.XYZParams{
			Granularity: analysis.Granularity(in.Granularity),
			Mode:        analysis.Mode(in.Mode),
			Metric:      analysis.Metric(in.Metric),
			Subject:     analysis.Subject(in.Subject),
			Thresholds: analysis.StabilityThresholds{
				X: lo.CoalesceOrEmpty(in.ThresholdX, th.X),
				Y: lo.CoalesceOrEmpty(in.ThresholdY, th.Y),
			},
			Scope: scope,
		},
		ABC:     t.abcThresholds(in.ThresholdA, in.ThresholdB),
		SliceBy: analysis.SliceBy(in.SliceBy),
	})
	if err != nil {
		return nil, analysis.Report{}, toolError(err, mcperr.AnalysisFailed)
	}
	return ds, rep, nil
}

func (t *Tools) abcThresholds(a, b float64) analysis.Thresholds {
	th := t.Config.Thresholds
	return analysis.Thresholds{A: lo.CoalesceOrEmpty(a, th.A), B: lo.CoalesceOrEmpty(b, th.B)}
}

// exportPath resolves the target of a write tool. Without an explicit path
// the file goes to the configured export directory, which is relative to the
// dish workbook unless absolute.
func (t *Tools) exportPath(ds *datasets.Dataset, requested, name string) (string, error) {
	if t.Exports == nil {
		return "", security.ErrNotAllowed
	}
	p := requested
	if p == "" {
		dir := lo.CoalesceOrEmpty(t.Config.Export.Dir, config.DefaultExportDir)
		if !filepath.IsAbs(dir) {
			dir = filepath.Join(filepath.Dir(ds.DishPath), dir)
		}
		p = filepath.Join(dir, name)
	}
	return t.Exports.ValidateSavePath(p)
}

func (in ScopeInput) scope() (analysis.Scope, error) {
	after, err := validation.ParseDate(in.After)
	if err != nil {
		return analysis.Scope{}, fmt.Errorf("after: %w", err)
	}
	before, err := validation.ParseDate(in.Before)
	if err != nil {
		return analysis.Scope{}, fmt.Errorf("before: %w", err)
	}
	return analysis.Scope{
		After:           after,
		Before:          before,
		Categories:      in.Categories,
		GlassCategories: in.GlassCategories,
		ByTheGlass:      in.ByTheGlass,
	}, nil
}

func rejectSample(ds *datasets.Dataset, n int) []RejectEntry {
	out := make([]RejectEntry, 0, n)
	for _, r := range ds.DishRejects {
		if len(out) == n {
			return out
		}
		out = append(out, RejectEntry{Source: "dish", Reject: r})
	}
	for _, r := range ds.ItemRejects {
		if len(out) == n {
			return out
		}
		out = append(out, RejectEntry{Source: "catalog", Reject: r})
	}
	return out
}
