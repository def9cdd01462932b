package analysis

import (
	"fmt"
	"sort"

	"github.com/vinodismyname/mcpcellar/config"
)

// ABC labels.
const (
	LabelA = "A"
	LabelB = "B"
	LabelC = "C"
)

// Thresholds holds the A/B and B/C cumulative-share cuts as fractions.
type Thresholds struct {
	A float64 `json:"a"`
	B float64 `json:"b"`
}

// DefaultThresholds returns the 80/95 Pareto cuts.
func DefaultThresholds() Thresholds {
	return Thresholds{A: config.DefaultABCThresholdA, B: config.DefaultABCThresholdB}
}

func (t Thresholds) orDefault() Thresholds {
	if t.A == 0 && t.B == 0 {
		return DefaultThresholds()
	}
	return t
}

func (t Thresholds) validate() error {
	if !(t.A > 0 && t.A <= t.B && t.B <= 1) {
		return fmt.Errorf("%w: abc cuts a=%g b=%g (want 0 < a <= b <= 1)", ErrInvalidThreshold, t.A, t.B)
	}
	return nil
}

// ranking is the outcome of ordering values by descending size and labelling
// them by cumulative share. Slices are indexed by position in Order.
type ranking struct {
	Order      []int
	Cumulative []float64
	Share      []float64 // percent of total
	CumShare   []float64 // percent of total
	Labels     []string
	Total      float64
}

// rank sorts values descending, ties kept in input order, and labels each
// position by its cumulative percentage. A zero total yields zero
// percentages and every position labelled A. Labels never improve further
// down the order, so a negative tail cannot pull a row back into A.
func rank(values []float64, t Thresholds) ranking {
	r := ranking{
		Order:      make([]int, len(values)),
		Cumulative: make([]float64, len(values)),
		Share:      make([]float64, len(values)),
		CumShare:   make([]float64, len(values)),
		Labels:     make([]string, len(values)),
	}
	for i, v := range values {
		r.Order[i] = i
		r.Total += v
	}
	sort.SliceStable(r.Order, func(i, j int) bool {
		return values[r.Order[i]] > values[r.Order[j]]
	})

	var running float64
	worst := LabelA
	for pos, idx := range r.Order {
		running += values[idx]
		r.Cumulative[pos] = running
		if r.Total != 0 {
			r.Share[pos] = values[idx] / r.Total * 100
			r.CumShare[pos] = running / r.Total * 100
		}
		label := LabelC
		switch {
		case r.CumShare[pos] <= t.A*100:
			label = LabelA
		case r.CumShare[pos] <= t.B*100:
			label = LabelB
		}
		if label < worst {
			label = worst
		}
		worst = label
		r.Labels[pos] = label
	}
	return r
}

// concentration returns the Herfindahl-Hirschman index over the positive
// values and its band.
func concentration(values []float64) (float64, string) {
	var total float64
	for _, v := range values {
		if v > 0 {
			total += v
		}
	}
	if total == 0 {
		return 0, ""
	}
	var hhi float64
	for _, v := range values {
		if v > 0 {
			sh := v / total
			hhi += sh * sh
		}
	}
	switch {
	case hhi < 0.15:
		return hhi, "unconcentrated"
	case hhi < 0.25:
		return hhi, "moderately_concentrated"
	default:
		return hhi, "highly_concentrated"
	}
}
