package analysis

import (
	"sort"
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/vinodismyname/mcpcellar/internal/prep"
)

// DefaultTopN is the leader and laggard list size of a monthly summary.
const DefaultTopN = 5

// defaultWindowMonths is how far back a monthly summary reaches when no
// start month is given.
const defaultWindowMonths = 12

// MonthlyParams configures the month-based sales summaries. They sum what
// guests paid (final_sum). An empty Mode reads glass and bottle lines alike.
type MonthlyParams struct {
	Mode  Mode
	Scope Scope
}

func (p MonthlyParams) lines(lines []prep.SaleLine) ([]prep.SaleLine, error) {
	if p.Mode != "" {
		if err := p.Mode.validate(); err != nil {
			return nil, err
		}
	}
	return lo.Filter(lines, func(l prep.SaleLine, _ int) bool {
		if !l.Sold() || (p.Mode != "" && l.IsGlass != (p.Mode == ModeGlass)) {
			return false
		}
		return p.Scope.Includes(l)
	}), nil
}

func monthOf(t time.Time) time.Time {
	return GranularityMonth.bucketStart(t)
}

// MonthDelta compares one article's takings in the latest month with the
// month before it.
type MonthDelta struct {
	ArticleName string   `json:"article_name"`
	LastMonth   float64  `json:"last_month"`
	PrevMonth   float64  `json:"prev_month"`
	DiffAbs     float64  `json:"diff_abs"`
	DiffPct     *float64 `json:"diff_pct"`
}

// MonthComparison is the latest month against its predecessor.
type MonthComparison struct {
	LastMonth time.Time    `json:"last_month"`
	PrevMonth time.Time    `json:"prev_month"`
	Rows      []MonthDelta `json:"rows"`
}

// CompareMonths lists every article sold in the latest month present in
// scope, in name order, next to its total for the previous calendar month.
// DiffPct is nil when the previous month is zero.
func CompareMonths(lines []prep.SaleLine, p MonthlyParams) (MonthComparison, error) {
	sold, err := p.lines(lines)
	if err != nil {
		return MonthComparison{}, err
	}
	if len(sold) == 0 {
		return MonthComparison{}, nil
	}
	last := monthOf(lo.MaxBy(sold, func(a, b prep.SaleLine) bool { return a.OpenTime.After(b.OpenTime) }).OpenTime)
	prev := last.AddDate(0, -1, 0)

	cur, before := map[string]float64{}, map[string]float64{}
	for _, l := range sold {
		switch monthOf(l.OpenTime) {
		case last:
			cur[l.ArticleName] += l.FinalSum
		case prev:
			before[l.ArticleName] += l.FinalSum
		}
	}

	names := lo.Keys(cur)
	sort.Strings(names)
	res := MonthComparison{LastMonth: last, PrevMonth: prev, Rows: make([]MonthDelta, 0, len(names))}
	for _, name := range names {
		d := MonthDelta{ArticleName: name, LastMonth: cur[name], PrevMonth: before[name]}
		d.DiffAbs = d.LastMonth - d.PrevMonth
		if d.PrevMonth != 0 {
			pct := d.DiffAbs / d.PrevMonth * 100
			d.DiffPct = &pct
		}
		res.Rows = append(res.Rows, d)
	}
	return res, nil
}

// WindowParams bounds a monthly summary. From and To may be any instant in
// their month and are swapped when reversed. A zero To means the latest month
// with a sale; a zero From reaches back twelve months from To, but not before
// the first month with a sale.
type WindowParams struct {
	MonthlyParams
	From time.Time
	To   time.Time
	TopN int
}

// ArticleMonths is one article's monthly series over a window.
type ArticleMonths struct {
	ArticleName string    `json:"article_name"`
	Series      []float64 `json:"series"`
	Sum         float64   `json:"sum"`
	AvgPerMonth float64   `json:"avg_per_month"`
}

// ArticleTotal is an article and its window sum.
type ArticleTotal struct {
	ArticleName string  `json:"article_name"`
	Sum         float64 `json:"sum"`
}

// MonthlySummary aggregates a month window: totals per month, leaders and
// laggards, and a per-article table ordered by descending sum.
type MonthlySummary struct {
	From     time.Time       `json:"from"`
	To       time.Time       `json:"to"`
	Months   []time.Time     `json:"months"`
	Totals   []float64       `json:"totals"`
	Total    float64         `json:"total"`
	Articles int             `json:"articles"`
	Top      []ArticleTotal  `json:"top"`
	Bottom   []ArticleTotal  `json:"bottom"`
	Rows     []ArticleMonths `json:"rows"`
}

// SummarizeMonths builds a MonthlySummary. Months inside the window without
// a sale count as zero, so every series has one value per month. Bottom keeps
// the descending order of the table's tail.
func SummarizeMonths(lines []prep.SaleLine, p WindowParams) (MonthlySummary, error) {
	sold, err := p.lines(lines)
	if err != nil {
		return MonthlySummary{}, err
	}
	if p.TopN <= 0 {
		p.TopN = DefaultTopN
	}
	if len(sold) == 0 {
		return MonthlySummary{}, nil
	}

	first := monthOf(lo.MinBy(sold, func(a, b prep.SaleLine) bool { return a.OpenTime.Before(b.OpenTime) }).OpenTime)
	to := monthOf(lo.MaxBy(sold, func(a, b prep.SaleLine) bool { return a.OpenTime.After(b.OpenTime) }).OpenTime)
	if !p.To.IsZero() {
		to = monthOf(p.To)
	}
	from := to.AddDate(0, -(defaultWindowMonths - 1), 0)
	if from.Before(first) && !first.After(to) {
		from = first
	}
	if !p.From.IsZero() {
		from = monthOf(p.From)
	}
	if from.After(to) {
		from, to = to, from
	}

	res := MonthlySummary{From: from, To: to}
	pos := map[time.Time]int{}
	for m := from; !m.After(to); m = m.AddDate(0, 1, 0) {
		pos[m] = len(res.Months)
		res.Months = append(res.Months, m)
	}
	res.Totals = make([]float64, len(res.Months))

	series := map[string][]float64{}
	for _, l := range sold {
		i, ok := pos[monthOf(l.OpenTime)]
		if !ok {
			continue
		}
		s, ok := series[l.ArticleName]
		if !ok {
			s = make([]float64, len(res.Months))
			series[l.ArticleName] = s
		}
		s[i] += l.FinalSum
		res.Totals[i] += l.FinalSum
	}
	res.Total = lo.Sum(res.Totals)

	names := lo.Keys(series)
	sort.Strings(names)
	n := decimal.NewFromInt(int64(len(res.Months)))
	for _, name := range names {
		s := series[name]
		sum := lo.Sum(s)
		avg, _ := decimal.NewFromFloat(sum).Div(n).Round(2).Float64()
		res.Rows = append(res.Rows, ArticleMonths{ArticleName: name, Series: s, Sum: sum, AvgPerMonth: avg})
	}
	sort.SliceStable(res.Rows, func(i, j int) bool { return res.Rows[i].Sum > res.Rows[j].Sum })
	res.Articles = len(res.Rows)

	totals := lo.Map(res.Rows, func(r ArticleMonths, _ int) ArticleTotal {
		return ArticleTotal{ArticleName: r.ArticleName, Sum: r.Sum}
	})
	k := min(p.TopN, len(totals))
	res.Top = totals[:k]
	res.Bottom = totals[len(totals)-k:]
	return res, nil
}

// FamilyMonths is the glass quantity of one family per calendar month,
// January first. Years are folded together.
type FamilyMonths struct {
	Family     string      `json:"family"`
	Quantities [12]float64 `json:"quantities"`
}

// GlassFamilyMonths sums glasses poured per glass family and calendar month
// over sold glass lines in scope. Every family appears, zero-filled. Lines
// without an open time are skipped.
func GlassFamilyMonths(lines []prep.SaleLine, scope Scope) []FamilyMonths {
	out := lo.Map(prep.Families, func(f string, _ int) FamilyMonths { return FamilyMonths{Family: f} })
	idx := map[string]int{}
	for i, f := range prep.Families {
		idx[f] = i
	}
	for _, l := range lines {
		if !l.IsGlass || !l.Sold() || l.OpenTime.IsZero() || !scope.Includes(l) {
			continue
		}
		i, ok := idx[l.GlassCategory]
		if !ok {
			continue
		}
		out[i].Quantities[l.OpenTime.Month()-1] += l.GlassQuantity
	}
	return out
}
