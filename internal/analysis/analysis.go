// Package analysis ranks and classifies wine sales: ABC by cumulative value
// share, XYZ by demand variability across time buckets.
package analysis

import (
	"errors"
	"fmt"
	"time"

	"github.com/samber/lo"
	"github.com/vinodismyname/mcpcellar/internal/prep"
)

// Mode selects which sale lines an analysis reads and which unit fields it prices them with.
type Mode string

const (
	ModeGlass  Mode = "glass"
	ModeBottle Mode = "bottle"
)

// Metric is the value a ranking is computed over.
type Metric string

const (
	MetricRevenue Metric = "revenue"
	MetricProfit  Metric = "profit"
)

// Errors returned for caller mistakes. Dirty data never produces them.
var (
	ErrInvalidMode        = errors.New("analysis: invalid mode")
	ErrInvalidMetric      = errors.New("analysis: invalid metric")
	ErrInvalidThreshold   = errors.New("analysis: invalid threshold")
	ErrInvalidGranularity = errors.New("analysis: invalid granularity")
	ErrInvalidSubject     = errors.New("analysis: invalid subject")
)

func (m Mode) validate() error {
	switch m {
	case ModeGlass, ModeBottle:
		return nil
	}
	return fmt.Errorf("%w: %q (want glass or bottle)", ErrInvalidMode, string(m))
}

func (m Metric) validate() error {
	switch m {
	case MetricRevenue, MetricProfit:
		return nil
	}
	return fmt.Errorf("%w: %q (want revenue or profit)", ErrInvalidMetric, string(m))
}

// Scope narrows the sale lines an analysis considers. Zero values disable
// a filter. Both time bounds are exclusive and drop lines without an open
// time. ByTheGlass keeps only articles listed under the by-the-glass
// umbrella, dropping fractional pours of bottle wines.
type Scope struct {
	After           time.Time `json:"after,omitempty"`
	Before          time.Time `json:"before,omitempty"`
	Categories      []string  `json:"categories,omitempty"`
	GlassCategories []string  `json:"glass_categories,omitempty"`
	ByTheGlass      bool      `json:"by_the_glass,omitempty"`
}

// Includes reports whether l passes every filter of s.
func (s Scope) Includes(l prep.SaleLine) bool {
	if !s.After.IsZero() && (!l.Sold() || !l.OpenTime.After(s.After)) {
		return false
	}
	if !s.Before.IsZero() && (!l.Sold() || !l.OpenTime.Before(s.Before)) {
		return false
	}
	if s.ByTheGlass && !l.ByTheGlass {
		return false
	}
	if len(s.Categories) > 0 && !lo.Contains(s.Categories, l.Category) {
		return false
	}
	if len(s.GlassCategories) > 0 && !lo.Contains(s.GlassCategories, l.GlassCategory) {
		return false
	}
	return true
}

// selectLines keeps the lines of one mode inside the scope.
func selectLines(lines []prep.SaleLine, mode Mode, scope Scope) []prep.SaleLine {
	return lo.Filter(lines, func(l prep.SaleLine, _ int) bool {
		return l.IsGlass == (mode == ModeGlass) && scope.Includes(l)
	})
}

// unitEconomics returns the per-unit price and cost of a line: per glass in
// glass mode, per bottle otherwise.
func unitEconomics(l prep.SaleLine, mode Mode) (price, cost float64) {
	if mode == ModeGlass {
		return l.GlassPrice, l.GlassCost
	}
	return l.ArticlePrice, l.ArticleCost
}

// lineValues returns revenue and profit of one line.
func lineValues(l prep.SaleLine, mode Mode) (revenue, profit float64) {
	price, cost := unitEconomics(l, mode)
	return l.GlassQuantity * price, l.GlassQuantity * (price - cost)
}

func pick(m Metric, revenue, profit float64) float64 {
	if m == MetricProfit {
		return profit
	}
	return revenue
}
