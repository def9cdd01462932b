package analysis

import (
	"sort"

	"github.com/samber/lo"
	"github.com/vinodismyname/mcpcellar/internal/prep"
)

// ABCParams configures one ABC classification.
type ABCParams struct {
	Mode       Mode
	Metric     Metric
	Thresholds Thresholds
	Scope      Scope
}

// ABCRow is one article in an ABC table. Units are glasses in glass mode and
// bottles in bottle mode; UnitPrice and UnitCost follow the same unit.
type ABCRow struct {
	ArticleName          string  `json:"article_name"`
	Category             string  `json:"category"`
	GlassCategory        string  `json:"glass_category,omitempty"`
	Units                float64 `json:"units"`
	UnitPrice            float64 `json:"unit_price"`
	UnitCost             float64 `json:"unit_cost"`
	Revenue              float64 `json:"revenue"`
	Profit               float64 `json:"profit"`
	Value                float64 `json:"value"`
	CumulativeValue      float64 `json:"cumulative_value"`
	ValuePercentage      float64 `json:"value_percentage"`
	CumulativePercentage float64 `json:"cumulative_percentage"`
	Label                string  `json:"abc_category"`
}

// ABCSummary aggregates an ABC table.
type ABCSummary struct {
	Total  float64        `json:"total"`
	Counts map[string]int `json:"counts"`
	HHI    float64        `json:"hhi"`
	Band   string         `json:"band,omitempty"`
}

// ABCResult is a complete ABC table, ordered by descending value.
type ABCResult struct {
	Mode    Mode       `json:"mode"`
	Metric  Metric     `json:"metric"`
	Rows    []ABCRow   `json:"rows"`
	Summary ABCSummary `json:"summary"`
}

// ClassifyABC groups the mode's sale lines by article name and ranks them by
// the chosen metric. lines is only read.
func ClassifyABC(lines []prep.SaleLine, p ABCParams) (ABCResult, error) {
	if p.Metric == "" {
		p.Metric = MetricRevenue
	}
	p.Thresholds = p.Thresholds.orDefault()
	if err := p.Mode.validate(); err != nil {
		return ABCResult{}, err
	}
	if err := p.Metric.validate(); err != nil {
		return ABCResult{}, err
	}
	if err := p.Thresholds.validate(); err != nil {
		return ABCResult{}, err
	}

	grouped := groupArticles(selectLines(lines, p.Mode, p.Scope), p.Mode)
	values := lo.Map(grouped, func(r ABCRow, _ int) float64 { return pick(p.Metric, r.Revenue, r.Profit) })
	rk := rank(values, p.Thresholds)

	res := ABCResult{
		Mode:   p.Mode,
		Metric: p.Metric,
		Rows:   make([]ABCRow, len(rk.Order)),
		Summary: ABCSummary{
			Total:  rk.Total,
			Counts: map[string]int{LabelA: 0, LabelB: 0, LabelC: 0},
		},
	}
	for pos, idx := range rk.Order {
		row := grouped[idx]
		row.Value = values[idx]
		row.CumulativeValue = rk.Cumulative[pos]
		row.ValuePercentage = rk.Share[pos]
		row.CumulativePercentage = rk.CumShare[pos]
		row.Label = rk.Labels[pos]
		res.Rows[pos] = row
		res.Summary.Counts[row.Label]++
	}
	res.Summary.HHI, res.Summary.Band = concentration(values)
	return res, nil
}

// groupArticles folds lines into one row per article name, in ascending name
// order. Unit fields come from the first line of each article.
func groupArticles(lines []prep.SaleLine, mode Mode) []ABCRow {
	groups := lo.GroupBy(lines, func(l prep.SaleLine) string { return l.ArticleName })
	names := lo.Keys(groups)
	sort.Strings(names)

	rows := make([]ABCRow, 0, len(names))
	for _, name := range names {
		g := groups[name]
		price, cost := unitEconomics(g[0], mode)
		units := lo.SumBy(g, func(l prep.SaleLine) float64 { return l.GlassQuantity })
		row := ABCRow{
			ArticleName: name,
			Category:    g[0].Category,
			Units:       units,
			UnitPrice:   price,
			UnitCost:    cost,
			Revenue:     units * price,
			Profit:      units * (price - cost),
		}
		if mode == ModeGlass {
			row.GlassCategory = g[0].GlassCategory
		}
		rows = append(rows, row)
	}
	return rows
}
