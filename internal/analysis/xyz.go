package analysis

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/samber/lo"
	"github.com/vinodismyname/mcpcellar/config"
	"github.com/vinodismyname/mcpcellar/internal/prep"
)

// Granularity is the width of an XYZ time bucket.
type Granularity string

const (
	GranularityWeek  Granularity = "week"
	GranularityMonth Granularity = "month"
)

// Subject is the entity XYZ rows are computed for.
type Subject string

const (
	SubjectArticle       Subject = "article"
	SubjectCategory      Subject = "category"
	SubjectGlassCategory Subject = "glass_category"
)

// XYZ labels.
const (
	LabelX = "X"
	LabelY = "Y"
	LabelZ = "Z"
)

func (g Granularity) validate() error {
	switch g {
	case GranularityWeek, GranularityMonth:
		return nil
	}
	return fmt.Errorf("%w: %q (want week or month)", ErrInvalidGranularity, string(g))
}

// bucketStart truncates t to the start of its bucket. Weeks run Monday to Sunday.
func (g Granularity) bucketStart(t time.Time) time.Time {
	y, m, d := t.Date()
	if g == GranularityMonth {
		return time.Date(y, m, 1, 0, 0, 0, 0, t.Location())
	}
	day := time.Date(y, m, d, 0, 0, 0, 0, t.Location())
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

func (g Granularity) next(t time.Time) time.Time {
	if g == GranularityMonth {
		return t.AddDate(0, 1, 0)
	}
	return t.AddDate(0, 0, 7)
}

func (s Subject) validate() error {
	switch s {
	case SubjectArticle, SubjectCategory, SubjectGlassCategory:
		return nil
	}
	return fmt.Errorf("%w: %q (want article, category or glass_category)", ErrInvalidSubject, string(s))
}

func (s Subject) key(l prep.SaleLine) string {
	switch s {
	case SubjectCategory:
		return l.Category
	case SubjectGlassCategory:
		return l.GlassCategory
	default:
		return l.ArticleName
	}
}

// StabilityThresholds holds the X/Y and Y/Z coefficient-of-variation cuts.
type StabilityThresholds struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// DefaultStabilityThresholds returns the 0.35/0.80 cuts.
func DefaultStabilityThresholds() StabilityThresholds {
	return StabilityThresholds{X: config.DefaultXYZThresholdX, Y: config.DefaultXYZThresholdY}
}

func (t StabilityThresholds) orDefault() StabilityThresholds {
	if t.X == 0 && t.Y == 0 {
		return DefaultStabilityThresholds()
	}
	return t
}

func (t StabilityThresholds) validate() error {
	if !(t.X > 0 && t.X <= t.Y) {
		return fmt.Errorf("%w: xyz cuts x=%g y=%g (want 0 < x <= y)", ErrInvalidThreshold, t.X, t.Y)
	}
	return nil
}

// XYZParams configures one XYZ classification.
type XYZParams struct {
	Granularity Granularity
	Mode        Mode
	Metric      Metric
	Thresholds  StabilityThresholds
	Subject     Subject
	Scope       Scope
}

func (p *XYZParams) normalize() error {
	if p.Metric == "" {
		p.Metric = MetricRevenue
	}
	if p.Subject == "" {
		p.Subject = SubjectArticle
	}
	p.Thresholds = p.Thresholds.orDefault()
	for _, v := range []interface{ validate() error }{p.Granularity, p.Mode, p.Metric, p.Subject, p.Thresholds} {
		if err := v.validate(); err != nil {
			return err
		}
	}
	return nil
}

// XYZRow is the demand profile of one subject.
type XYZRow struct {
	Subject      string    `json:"subject"`
	Series       []float64 `json:"series"`
	Total        float64   `json:"total"`
	Mean         float64   `json:"mean"`
	Std          *float64  `json:"std"`
	CV           *float64  `json:"cv"`
	BucketsSold  int       `json:"buckets_sold"`
	TotalBuckets int       `json:"total_buckets"`
	Coverage     float64   `json:"coverage"`
	LastSold     time.Time `json:"last_sold"`
	Label        string    `json:"xyz"`
}

// XYZResult holds one row per subject in ascending subject order and the
// shared bucket axis every series is aligned to.
type XYZResult struct {
	Granularity Granularity `json:"granularity"`
	Buckets     []time.Time `json:"buckets"`
	Rows        []XYZRow    `json:"rows"`
}

// ClassifyXYZ aggregates the metric per subject and bucket and labels each
// subject by the coefficient of variation of its series.
//
// Every series spans all buckets from the first to the last bucket with a
// sale in scope; a bucket without sales for a subject counts as zero. CV is
// undefined with a single bucket or a zero mean and then labels Z.
func ClassifyXYZ(lines []prep.SaleLine, p XYZParams) (XYZResult, error) {
	if err := p.normalize(); err != nil {
		return XYZResult{}, err
	}
	sold := lo.Filter(selectLines(lines, p.Mode, p.Scope), func(l prep.SaleLine, _ int) bool { return l.Sold() })
	res := XYZResult{Granularity: p.Granularity}
	if len(sold) == 0 {
		return res, nil
	}

	first := p.Granularity.bucketStart(lo.MinBy(sold, func(a, b prep.SaleLine) bool { return a.OpenTime.Before(b.OpenTime) }).OpenTime)
	last := p.Granularity.bucketStart(lo.MaxBy(sold, func(a, b prep.SaleLine) bool { return a.OpenTime.After(b.OpenTime) }).OpenTime)
	pos := map[time.Time]int{}
	for b := first; !b.After(last); b = p.Granularity.next(b) {
		pos[b] = len(res.Buckets)
		res.Buckets = append(res.Buckets, b)
	}

	type acc struct {
		series []float64
		hit    []bool
	}
	subjects := map[string]*acc{}
	for _, l := range sold {
		k := p.Subject.key(l)
		a, ok := subjects[k]
		if !ok {
			a = &acc{series: make([]float64, len(res.Buckets)), hit: make([]bool, len(res.Buckets))}
			subjects[k] = a
		}
		i := pos[p.Granularity.bucketStart(l.OpenTime)]
		rev, prof := lineValues(l, p.Mode)
		a.series[i] += pick(p.Metric, rev, prof)
		a.hit[i] = true
	}

	names := lo.Keys(subjects)
	sort.Strings(names)
	for _, name := range names {
		a := subjects[name]
		row := XYZRow{Subject: name, Series: a.series, TotalBuckets: len(res.Buckets)}
		for i, hit := range a.hit {
			if hit {
				row.BucketsSold++
				row.LastSold = res.Buckets[i]
			}
		}
		row.Coverage = float64(row.BucketsSold) / float64(row.TotalBuckets)
		row.Total, row.Mean, row.Std, row.CV = variation(a.series)
		row.Label = stabilityLabel(row.CV, p.Thresholds)
		res.Rows = append(res.Rows, row)
	}
	return res, nil
}

// variation returns the sum, mean, sample standard deviation and coefficient
// of variation of a series. Std and cv are nil when undefined.
func variation(series []float64) (total, mean float64, std, cv *float64) {
	n := len(series)
	if n == 0 {
		return 0, 0, nil, nil
	}
	total = lo.Sum(series)
	mean = total / float64(n)
	if n < 2 {
		return total, mean, nil, nil
	}
	var ss float64
	for _, v := range series {
		ss += (v - mean) * (v - mean)
	}
	s := math.Sqrt(ss / float64(n-1))
	std = &s
	if mean == 0 {
		return total, mean, std, nil
	}
	c := s / mean
	if math.IsNaN(c) || math.IsInf(c, 0) {
		return total, mean, std, nil
	}
	return total, mean, std, &c
}

func stabilityLabel(cv *float64, t StabilityThresholds) string {
	switch {
	case cv == nil:
		return LabelZ
	case *cv <= t.X:
		return LabelX
	case *cv <= t.Y:
		return LabelY
	default:
		return LabelZ
	}
}
