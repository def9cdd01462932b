package analysis

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/vinodismyname/mcpcellar/internal/prep"
)

var day0 = time.Date(2024, 3, 4, 18, 0, 0, 0, time.UTC) // Monday

func bottleLine(name string, qty, price, cost float64, at time.Time) prep.SaleLine {
	return prep.SaleLine{
		OpenTime: at, ArticleName: name, Category: prep.FamilyRed, GlassCategory: prep.FamilyRed,
		ArticlePrice: price, ArticleCost: cost, Quantity: qty, GlassQuantity: qty,
		GlassPrice: price, GlassCost: cost, GlassProfit: price - cost,
	}
}

func glassLine(name string, glasses, bottlePrice, bottleCost float64, at time.Time) prep.SaleLine {
	return prep.SaleLine{
		OpenTime: at, ArticleName: name, Category: prep.FamilyWhite, GlassCategory: prep.FamilyWhite,
		ArticlePrice: bottlePrice, ArticleCost: bottleCost, Quantity: glasses * 0.2, GlassQuantity: glasses, IsGlass: true,
		GlassPrice: bottlePrice / 5, GlassCost: bottleCost / 5, GlassProfit: (bottlePrice - bottleCost) / 5,
	}
}

func TestClassifyABC_BottleScenario(t *testing.T) {
	lines := []prep.SaleLine{bottleLine("шабли", 6, 150, 45, day0)}
	res, err := ClassifyABC(lines, ABCParams{Mode: ModeBottle})
	require.NoError(t, err)
	require.Len(t, res.Rows, 1)
	row := res.Rows[0]
	require.Equal(t, 900.0, row.Revenue)
	require.Equal(t, 630.0, row.Profit)
	require.Equal(t, 6.0, row.Units)
	require.Equal(t, LabelC, row.Label, "full cumulative share is past the B cut")
	require.Equal(t, 100.0, row.CumulativePercentage)
	require.Equal(t, MetricRevenue, res.Metric)

	again, err := ClassifyABC(lines, ABCParams{Mode: ModeBottle})
	require.NoError(t, err)
	require.Equal(t, res.Rows, again.Rows)

	res, err = ClassifyABC(lines, ABCParams{Mode: ModeBottle, Thresholds: Thresholds{A: 0.8, B: 1}})
	require.NoError(t, err)
	require.Equal(t, LabelB, res.Rows[0].Label)
}

func TestClassifyABC_GlassUsesPerGlassUnits(t *testing.T) {
	lines := []prep.SaleLine{
		glassLine("шабли", 1, 150, 45, day0),
		glassLine("шабли", 2, 150, 45, day0),
		bottleLine("бароло", 1, 900, 300, day0),
	}
	res, err := ClassifyABC(lines, ABCParams{Mode: ModeGlass, Metric: MetricProfit})
	require.NoError(t, err)
	require.Len(t, res.Rows, 1)
	require.Equal(t, 3.0, res.Rows[0].Units)
	require.Equal(t, 30.0, res.Rows[0].UnitPrice)
	require.InDelta(t, 63.0, res.Rows[0].Profit, 1e-9)
	require.Equal(t, prep.FamilyWhite, res.Rows[0].GlassCategory)
}

func TestClassifyABC_Properties(t *testing.T) {
	var lines []prep.SaleLine
	for i, q := range []float64{50, 20, 12, 6, 5, 4, 2, 1} {
		lines = append(lines, bottleLine(string(rune('a'+i)), q, 100, 40, day0))
	}
	res, err := ClassifyABC(lines, ABCParams{Mode: ModeBottle})
	require.NoError(t, err)

	var sum float64
	prev := 0.0
	seenC := false
	for _, r := range res.Rows {
		sum += r.ValuePercentage
		require.GreaterOrEqual(t, r.CumulativePercentage, prev)
		prev = r.CumulativePercentage
		if seenC {
			require.Equal(t, LabelC, r.Label)
		}
		seenC = seenC || r.Label == LabelC
	}
	require.InDelta(t, 100.0, sum, 1e-9)
	labels := make([]string, len(res.Rows))
	for i, r := range res.Rows {
		labels[i] = r.Label
	}
	require.Equal(t, []string{"A", "A", "B", "B", "B", "C", "C", "C"}, labels)
	require.Equal(t, map[string]int{"A": 2, "B": 3, "C": 3}, res.Summary.Counts)
	require.Equal(t, 10000.0, res.Summary.Total)
}

func TestClassifyABC_TiesKeepNameOrder(t *testing.T) {
	lines := []prep.SaleLine{
		bottleLine("c", 1, 100, 10, day0),
		bottleLine("a", 1, 100, 10, day0),
		bottleLine("b", 1, 100, 10, day0),
	}
	res, err := ClassifyABC(lines, ABCParams{Mode: ModeBottle})
	require.NoError(t, err)
	require.Equal(t, "a", res.Rows[0].ArticleName)
	require.Equal(t, "b", res.Rows[1].ArticleName)
	require.Equal(t, "c", res.Rows[2].ArticleName)
}

func TestClassifyABC_ZeroTotalIsAllA(t *testing.T) {
	lines := []prep.SaleLine{
		bottleLine("a", 0, 100, 10, time.Time{}),
		bottleLine("b", 0, 200, 10, time.Time{}),
	}
	res, err := ClassifyABC(lines, ABCParams{Mode: ModeBottle})
	require.NoError(t, err)
	for _, r := range res.Rows {
		require.Equal(t, LabelA, r.Label)
		require.Zero(t, r.ValuePercentage)
		require.Zero(t, r.CumulativePercentage)
	}
	require.Zero(t, res.Summary.HHI)
}

func TestClassifyABC_NegativeTailStaysC(t *testing.T) {
	lines := []prep.SaleLine{
		bottleLine("a", 1, 100, 0, day0),
		bottleLine("b", 1, 10, 0, day0),
		bottleLine("c", 1, 10, 20, day0),
	}
	res, err := ClassifyABC(lines, ABCParams{Mode: ModeBottle, Metric: MetricProfit, Thresholds: Thresholds{A: 0.5, B: 1}})
	require.NoError(t, err)
	require.Equal(t, "c", res.Rows[2].ArticleName)
	require.Equal(t, LabelB, res.Rows[0].Label)
	require.Equal(t, LabelC, res.Rows[1].Label)
	require.InDelta(t, 100.0, res.Rows[2].CumulativePercentage, 1e-9)
	require.Equal(t, LabelC, res.Rows[2].Label)
}

func TestClassifyABC_Idempotent(t *testing.T) {
	first, err := ClassifyABC([]prep.SaleLine{bottleLine("a", 3, 100, 20, day0)}, ABCParams{Mode: ModeBottle})
	require.NoError(t, err)

	var again []prep.SaleLine
	for _, r := range first.Rows {
		again = append(again, bottleLine(r.ArticleName, r.Units, r.UnitPrice, r.UnitCost, day0))
	}
	second, err := ClassifyABC(again, ABCParams{Mode: ModeBottle})
	require.NoError(t, err)
	require.Equal(t, first.Rows, second.Rows)
}

func TestClassifyABC_Scope(t *testing.T) {
	lines := []prep.SaleLine{
		bottleLine("a", 1, 100, 10, day0),
		bottleLine("b", 1, 100, 10, day0.AddDate(0, 1, 0)),
		bottleLine("c", 1, 100, 10, time.Time{}),
	}
	res, err := ClassifyABC(lines, ABCParams{Mode: ModeBottle, Scope: Scope{After: day0.AddDate(0, 0, 1)}})
	require.NoError(t, err)
	require.Len(t, res.Rows, 1)
	require.Equal(t, "b", res.Rows[0].ArticleName)

	// The lower bound is exclusive.
	res, err = ClassifyABC(lines, ABCParams{Mode: ModeBottle, Scope: Scope{After: day0}})
	require.NoError(t, err)
	require.Len(t, res.Rows, 1)
	require.Equal(t, "b", res.Rows[0].ArticleName)

	res, err = ClassifyABC(lines, ABCParams{Mode: ModeBottle, Scope: Scope{Categories: []string{prep.FamilyWhite}}})
	require.NoError(t, err)
	require.Empty(t, res.Rows)
}

func TestClassifyABC_InvalidParams(t *testing.T) {
	_, err := ClassifyABC(nil, ABCParams{Mode: "pint"})
	require.ErrorIs(t, err, ErrInvalidMode)

	_, err = ClassifyABC(nil, ABCParams{Mode: ModeGlass, Metric: "volume"})
	require.ErrorIs(t, err, ErrInvalidMetric)

	_, err = ClassifyABC(nil, ABCParams{Mode: ModeGlass, Thresholds: Thresholds{A: 0.9, B: 0.8}})
	require.ErrorIs(t, err, ErrInvalidThreshold)
}

func TestConcentrationBands(t *testing.T) {
	hhi, band := concentration([]float64{80, 20})
	require.InDelta(t, 0.68, hhi, 1e-9)
	require.Equal(t, "highly_concentrated", band)

	_, band = concentration([]float64{1, 1, 1, 1, 1, 1, 1, 1, 1, 1})
	require.Equal(t, "unconcentrated", band)
}
