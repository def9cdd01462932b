package registry

import (
	"time"

	"github.com/vinodismyname/mcpcellar/internal/analysis"
	"github.com/vinodismyname/mcpcellar/internal/prep"
)

// --- Input / Output Schemas (typed for discovery) ---

// LoadSalesInput names the two POS exports to join.
type LoadSalesInput struct {
	DishPath         string `json:"dish_path" validate:"required,filepath_ext" jsonschema_description:"Allowed path to the dish-level order export (.xlsx)"`
	CatalogPath      string `json:"catalog_path" validate:"required,filepath_ext" jsonschema_description:"Allowed path to the wine article price list (.xlsx)"`
	DishSheet        string `json:"dish_sheet,omitempty" jsonschema_description:"Sheet holding the dish table; first sheet when empty"`
	CatalogSheet     string `json:"catalog_sheet,omitempty" jsonschema_description:"Sheet holding the catalog table; first sheet when empty"`
	DishHeaderRow    int    `json:"dish_header_row,omitempty" validate:"omitempty,min=1" jsonschema_description:"1-based header row of the dish export (default 4)"`
	CatalogHeaderRow int    `json:"catalog_header_row,omitempty" validate:"omitempty,min=1" jsonschema_description:"1-based header row of the catalog export (default 2)"`
}

// LoadSalesOutput reports the outcome of a load.
type LoadSalesOutput struct {
	DatasetID       string        `json:"dataset_id" jsonschema_description:"Handle for subsequent analysis calls"`
	SaleLines       int           `json:"sale_lines"`
	Articles        int           `json:"articles"`
	OrderLines      int           `json:"order_lines"`
	DishRejected    int           `json:"dish_rejected"`
	CatalogRejected int           `json:"catalog_rejected"`
	RejectSample    []RejectEntry `json:"reject_sample,omitempty" jsonschema_description:"First rejected rows with source line and reason"`
	ExpiresAt       time.Time     `json:"expires_at"`
}

// RejectEntry is a rejected source row tagged with its file.
type RejectEntry struct {
	Source string `json:"source" jsonschema_description:"dish or catalog"`
	prep.Reject
}

// DatasetInfo summarizes a loaded dataset.
type DatasetInfo struct {
	DatasetID   string    `json:"dataset_id"`
	DishPath    string    `json:"dish_path"`
	CatalogPath string    `json:"catalog_path"`
	SaleLines   int       `json:"sale_lines"`
	Articles    int       `json:"articles"`
	LoadedAt    time.Time `json:"loaded_at"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// ListDatasetsOutput lists loaded datasets oldest first.
type ListDatasetsOutput struct {
	Datasets []DatasetInfo `json:"datasets"`
}

// DatasetInput addresses one dataset.
type DatasetInput struct {
	DatasetID string `json:"dataset_id" validate:"required" jsonschema_description:"Dataset handle returned by load_sales"`
}

// CloseDatasetOutput confirms a close.
type CloseDatasetOutput struct {
	Success bool `json:"success" jsonschema_description:"True when the dataset was dropped"`
}

// ScopeInput narrows the sale lines an analysis reads.
type ScopeInput struct {
	After           string   `json:"after,omitempty" validate:"omitempty,isodate" jsonschema_description:"Keep lines opened after this date (YYYY-MM-DD, exclusive)"`
	Before          string   `json:"before,omitempty" validate:"omitempty,isodate" jsonschema_description:"Keep lines opened before this date (YYYY-MM-DD, exclusive)"`
	Categories      []string `json:"categories,omitempty" jsonschema_description:"Keep these wine families (white, red, sparkling, digestif_orange)"`
	GlassCategories []string `json:"glass_categories,omitempty" jsonschema_description:"Keep these by-the-glass families"`
	ByTheGlass      bool     `json:"by_the_glass,omitempty" jsonschema_description:"Keep only articles from the by-the-glass menu"`
}

// PageInput selects a page. A cursor carries the offset and page size; the
// remaining inputs must match the call that issued it.
type PageInput struct {
	Cursor   string `json:"cursor,omitempty" validate:"omitempty,cursor" jsonschema_description:"Opaque cursor from a previous page"`
	PageSize int    `json:"page_size,omitempty" validate:"omitempty,min=1" jsonschema_description:"Rows per page (bounded by server limits)"`
}

// PageMeta captures paging/truncation metadata.
type PageMeta struct {
	Total      int    `json:"total"`
	Offset     int    `json:"offset"`
	Returned   int    `json:"returned"`
	Truncated  bool   `json:"truncated"`
	NextCursor string `json:"nextCursor,omitempty"`
}

// SaleLinesInput pages through the canonical sale-line table.
type SaleLinesInput struct {
	DatasetID string `json:"dataset_id" validate:"required" jsonschema_description:"Dataset handle"`
	Mode      string `json:"mode,omitempty" validate:"omitempty,oneof=glass bottle" jsonschema_description:"Restrict to glass or bottle lines"`
	SoldOnly  bool   `json:"sold_only,omitempty" jsonschema_description:"Drop catalog articles without a sale"`
	ScopeInput
	PageInput
}

// SaleLinesOutput is one page of sale lines.
type SaleLinesOutput struct {
	DatasetID string          `json:"dataset_id"`
	Lines     []prep.SaleLine `json:"lines"`
	Meta      PageMeta        `json:"meta"`
}

// ABCInput configures abc_analysis and write_abc_report.
type ABCInput struct {
	DatasetID  string  `json:"dataset_id" validate:"required" jsonschema_description:"Dataset handle"`
	Mode       string  `json:"mode" validate:"required,oneof=glass bottle" jsonschema_description:"glass or bottle"`
	Metric     string  `json:"metric,omitempty" validate:"omitempty,oneof=revenue profit" jsonschema_description:"revenue (default) or profit"`
	ThresholdA float64 `json:"threshold_a,omitempty" validate:"omitempty,gt=0,lte=1" jsonschema_description:"Cumulative share closing class A (default 0.8)"`
	ThresholdB float64 `json:"threshold_b,omitempty" validate:"omitempty,gt=0,lte=1" jsonschema_description:"Cumulative share closing class B (default 0.95)"`
	ScopeInput
}

// ABCAnalysisInput adds paging to ABCInput.
type ABCAnalysisInput struct {
	ABCInput
	PageInput
}

// ABCAnalysisOutput is one page of an ABC table plus its summary.
type ABCAnalysisOutput struct {
	DatasetID string              `json:"dataset_id"`
	Mode      analysis.Mode       `json:"mode"`
	Metric    analysis.Metric     `json:"metric"`
	Summary   analysis.ABCSummary `json:"summary"`
	Rows      []analysis.ABCRow   `json:"rows"`
	Meta      PageMeta            `json:"meta"`
}

// XYZInput configures xyz_analysis and write_xyz_report.
type XYZInput struct {
	DatasetID   string  `json:"dataset_id" validate:"required" jsonschema_description:"Dataset handle"`
	Granularity string  `json:"granularity" validate:"required,oneof=week month" jsonschema_description:"Bucket size: week (Monday start) or month"`
	Mode        string  `json:"mode" validate:"required,oneof=glass bottle" jsonschema_description:"glass or bottle"`
	Metric      string  `json:"metric,omitempty" validate:"omitempty,oneof=revenue profit" jsonschema_description:"Series metric: revenue (default) or profit"`
	Subject     string  `json:"subject,omitempty" validate:"omitempty,oneof=article category glass_category" jsonschema_description:"Row grouping (default article)"`
	SliceBy     string  `json:"slice_by,omitempty" validate:"omitempty,oneof=none category glass_category" jsonschema_description:"Split rows into sections by dominant category"`
	ThresholdA  float64 `json:"threshold_a,omitempty" validate:"omitempty,gt=0,lte=1" jsonschema_description:"ABC class A cut (default 0.8)"`
	ThresholdB  float64 `json:"threshold_b,omitempty" validate:"omitempty,gt=0,lte=1" jsonschema_description:"ABC class B cut (default 0.95)"`
	ThresholdX  float64 `json:"threshold_x,omitempty" validate:"omitempty,gt=0" jsonschema_description:"CV at or below which demand is X (default 0.35)"`
	ThresholdY  float64 `json:"threshold_y,omitempty" validate:"omitempty,gt=0" jsonschema_description:"CV at or below which demand is Y (default 0.8)"`
	ScopeInput
}

// XYZAnalysisInput adds paging to XYZInput.
type XYZAnalysisInput struct {
	XYZInput
	PageInput
}

// SectionInfo summarizes one report section without repeating its rows.
type SectionInfo struct {
	Key     string  `json:"key"`
	Revenue float64 `json:"revenue"`
	Rows    int     `json:"rows"`
}

// XYZAnalysisOutput is one page of a combined ABC/XYZ report.
type XYZAnalysisOutput struct {
	DatasetID   string               `json:"dataset_id"`
	Granularity analysis.Granularity `json:"granularity"`
	Mode        analysis.Mode        `json:"mode"`
	Metric      analysis.Metric      `json:"metric"`
	Subject     analysis.Subject     `json:"subject"`
	Buckets     []time.Time          `json:"buckets"`
	Sections    []SectionInfo        `json:"sections,omitempty"`
	Rows        []analysis.ReportRow `json:"rows"`
	Meta        PageMeta             `json:"meta"`
}

// WriteABCInput exports an ABC table.
type WriteABCInput struct {
	ABCInput
	Path string `json:"path,omitempty" validate:"omitempty,xlsx_out" jsonschema_description:"Target .xlsx; defaults to the export directory next to the dish file"`
}

// WriteXYZInput exports a combined report.
type WriteXYZInput struct {
	XYZInput
	Path string `json:"path,omitempty" validate:"omitempty,xlsx_out" jsonschema_description:"Target .xlsx; defaults to the export directory next to the dish file"`
}

// WriteReportOutput confirms an export.
type WriteReportOutput struct {
	Path     string `json:"path"`
	Rows     int    `json:"rows"`
	Sections int    `json:"sections,omitempty"`
}

// MonthInput selects the lines a month-based summary reads.
type MonthInput struct {
	DatasetID string `json:"dataset_id" validate:"required" jsonschema_description:"Dataset handle"`
	Mode      string `json:"mode,omitempty" validate:"omitempty,oneof=glass bottle" jsonschema_description:"Restrict to glass or bottle lines; both when empty"`
	ScopeInput
}

// MonthDiffInput pages through month_over_month.
type MonthDiffInput struct {
	MonthInput
	PageInput
}

// MonthDiffOutput is one page of the latest-month comparison.
type MonthDiffOutput struct {
	DatasetID string                `json:"dataset_id"`
	LastMonth time.Time             `json:"last_month"`
	PrevMonth time.Time             `json:"prev_month"`
	Rows      []analysis.MonthDelta `json:"rows"`
	Meta      PageMeta              `json:"meta"`
}

// MonthlySummaryInput configures monthly_summary.
type MonthlySummaryInput struct {
	MonthInput
	From string `json:"from,omitempty" validate:"omitempty,isomonth" jsonschema_description:"First month (YYYY-MM); twelve months before 'to' when empty"`
	To   string `json:"to,omitempty" validate:"omitempty,isomonth" jsonschema_description:"Last month (YYYY-MM); latest month with a sale when empty"`
	TopN int    `json:"top_n,omitempty" validate:"omitempty,min=1,max=50" jsonschema_description:"Size of the leader and laggard lists (default 5)"`
	PageInput
}

// MonthlySummaryOutput carries the window totals and one page of the
// per-article table.
type MonthlySummaryOutput struct {
	DatasetID string                   `json:"dataset_id"`
	From      time.Time                `json:"from"`
	To        time.Time                `json:"to"`
	Months    []time.Time              `json:"months"`
	Totals    []float64                `json:"totals"`
	Total     float64                  `json:"total"`
	Articles  int                      `json:"articles"`
	Top       []analysis.ArticleTotal  `json:"top"`
	Bottom    []analysis.ArticleTotal  `json:"bottom"`
	Rows      []analysis.ArticleMonths `json:"rows"`
	Meta      PageMeta                 `json:"meta"`
}

// GlassFamilyInput configures glass_family_months.
type GlassFamilyInput struct {
	DatasetID string `json:"dataset_id" validate:"required" jsonschema_description:"Dataset handle"`
	ScopeInput
}

// GlassFamilyOutput is the glass quantity grid, families by calendar month.
type GlassFamilyOutput struct {
	DatasetID string                  `json:"dataset_id"`
	Months    []string                `json:"months"`
	Families  []analysis.FamilyMonths `json:"families"`
}
