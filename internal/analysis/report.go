package analysis

import (
	"fmt"
	"sort"
	"time"

	"github.com/samber/lo"
	"github.com/vinodismyname/mcpcellar/internal/prep"
)

// SliceBy groups report rows into sections.
type SliceBy string

const (
	SliceNone          SliceBy = "none"
	SliceCategory      SliceBy = "category"
	SliceGlassCategory SliceBy = "glass_category"
)

func (s SliceBy) validate() error {
	switch s {
	case SliceNone, SliceCategory, SliceGlassCategory:
		return nil
	}
	return fmt.Errorf("%w: slice_by %q (want none, category or glass_category)", ErrInvalidSubject, string(s))
}

// ReportParams configures a combined ABC/XYZ report.
type ReportParams struct {
	XYZParams
	ABC     Thresholds
	SliceBy SliceBy
}

// ReportRow joins the ABC and XYZ view of one subject.
type ReportRow struct {
	Name          string    `json:"name"`
	Category      string    `json:"category"`
	GlassCategory string    `json:"glass_category"`
	TotalRevenue  float64   `json:"total_revenue"`
	Profit        float64   `json:"profit"`
	MarginPct     *float64  `json:"margin_pct"`
	BucketsSold   int       `json:"buckets_sold"`
	TotalBuckets  int       `json:"total_buckets"`
	Coverage      float64   `json:"coverage"`
	LastSold      time.Time `json:"last_sold"`
	CV            *float64  `json:"cv"`
	ABC           string    `json:"abc"`
	XYZ           string    `json:"xyz"`
	RevShare      float64   `json:"rev_share"`
	CumShare      float64   `json:"cum_share"`

	value float64
}

// Section is the slice of report rows sharing one category value.
type Section struct {
	Key     string      `json:"key"`
	Revenue float64     `json:"revenue"`
	Rows    []ReportRow `json:"rows"`
}

// Report is a combined ABC/XYZ table.
type Report struct {
	Granularity Granularity `json:"granularity"`
	Mode        Mode        `json:"mode"`
	Metric      Metric      `json:"metric"`
	Subject     Subject     `json:"subject"`
	Buckets     []time.Time `json:"buckets"`
	Rows        []ReportRow `json:"rows"`
	Sections    []Section   `json:"sections,omitempty"`
}

var labelOrder = map[string]int{LabelA: 0, LabelB: 1, LabelC: 2, LabelX: 0, LabelY: 1, LabelZ: 2}

// BuildReport ranks subjects by the chosen metric over the scoped period,
// labels their demand stability and returns rows ordered by ABC class, XYZ
// class, descending value and name.
func BuildReport(lines []prep.SaleLine, p ReportParams) (Report, error) {
	if p.SliceBy == "" {
		p.SliceBy = SliceNone
	}
	if err := p.SliceBy.validate(); err != nil {
		return Report{}, err
	}
	if err := p.XYZParams.normalize(); err != nil {
		return Report{}, err
	}
	p.ABC = p.ABC.orDefault()
	if err := p.ABC.validate(); err != nil {
		return Report{}, err
	}
	xyz, err := ClassifyXYZ(lines, p.XYZParams)
	if err != nil {
		return Report{}, err
	}

	rep := Report{
		Granularity: p.Granularity,
		Mode:        p.Mode,
		Metric:      p.Metric,
		Subject:     p.Subject,
		Buckets:     xyz.Buckets,
	}
	if len(xyz.Rows) == 0 {
		return rep, nil
	}

	type totals struct {
		revenue, profit float64
		byCat, byGlass  map[string]float64
	}
	agg := map[string]*totals{}
	for _, l := range selectLines(lines, p.Mode, p.Scope) {
		if !l.Sold() {
			continue
		}
		k := p.Subject.key(l)
		t, ok := agg[k]
		if !ok {
			t = &totals{byCat: map[string]float64{}, byGlass: map[string]float64{}}
			agg[k] = t
		}
		rev, prof := lineValues(l, p.Mode)
		t.revenue += rev
		t.profit += prof
		t.byCat[l.Category] += rev
		t.byGlass[l.GlassCategory] += rev
	}

	rows := make([]ReportRow, len(xyz.Rows))
	values := make([]float64, len(xyz.Rows))
	for i, x := range xyz.Rows {
		t := agg[x.Subject]
		rows[i] = ReportRow{
			Name:          x.Subject,
			Category:      dominant(t.byCat),
			GlassCategory: dominant(t.byGlass),
			TotalRevenue:  t.revenue,
			Profit:        t.profit,
			BucketsSold:   x.BucketsSold,
			TotalBuckets:  x.TotalBuckets,
			Coverage:      x.Coverage,
			LastSold:      x.LastSold,
			CV:            x.CV,
			XYZ:           x.Label,
		}
		if t.revenue > 0 {
			m := t.profit / t.revenue * 100
			rows[i].MarginPct = &m
		}
		values[i] = pick(p.Metric, t.revenue, t.profit)
		rows[i].value = values[i]
	}

	rk := rank(values, p.ABC)
	for pos, idx := range rk.Order {
		rows[idx].ABC = rk.Labels[pos]
		rows[idx].RevShare = rk.Share[pos] / 100
		rows[idx].CumShare = rk.CumShare[pos] / 100
	}

	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if labelOrder[a.ABC] != labelOrder[b.ABC] {
			return labelOrder[a.ABC] < labelOrder[b.ABC]
		}
		if labelOrder[a.XYZ] != labelOrder[b.XYZ] {
			return labelOrder[a.XYZ] < labelOrder[b.XYZ]
		}
		if a.value != b.value {
			return a.value > b.value
		}
		return a.Name < b.Name
	})
	rep.Rows = rows
	rep.Sections = sections(rows, p.SliceBy)
	return rep, nil
}

// sections splits rows by their dominant slice value, keeping row order,
// with the highest-revenue slice first.
func sections(rows []ReportRow, by SliceBy) []Section {
	if by == SliceNone {
		return nil
	}
	groups := lo.GroupBy(rows, func(r ReportRow) string {
		if by == SliceGlassCategory {
			return r.GlassCategory
		}
		return r.Category
	})
	out := make([]Section, 0, len(groups))
	for key, rs := range groups {
		out = append(out, Section{
			Key:     key,
			Revenue: lo.SumBy(rs, func(r ReportRow) float64 { return r.TotalRevenue }),
			Rows:    rs,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Revenue != out[j].Revenue {
			return out[i].Revenue > out[j].Revenue
		}
		return out[i].Key < out[j].Key
	})
	return out
}

// dominant returns the key with the largest value, ties broken by name.
func dominant(m map[string]float64) string {
	keys := lo.Keys(m)
	sort.Strings(keys)
	if len(keys) == 0 {
		return ""
	}
	best := keys[0]
	for _, k := range keys[1:] {
		if m[k] > m[best] {
			best = k
		}
	}
	return best
}
