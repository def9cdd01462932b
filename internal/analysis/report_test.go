package analysis

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vinodismyname/mcpcellar/internal/prep"
)

func reportLines() []prep.SaleLine {
	var lines []prep.SaleLine
	// "a": steady, big seller (red).
	for m := 0; m < 3; m++ {
		lines = append(lines, bottleLine("a", 10, 100, 40, day0.AddDate(0, m, 0)))
	}
	// "b": one month only (white).
	b := bottleLine("b", 2, 300, 270, day0.AddDate(0, 1, 0))
	b.Category, b.GlassCategory = prep.FamilyWhite, prep.FamilyWhite
	lines = append(lines, b)
	// "c": mid-size, erratic (red).
	lines = append(lines,
		bottleLine("c", 1, 200, 40, day0),
		bottleLine("c", 3, 200, 40, day0.AddDate(0, 2, 0)),
	)
	return lines
}

func TestBuildReport_RowsAndOrder(t *testing.T) {
	rep, err := BuildReport(reportLines(), ReportParams{
		XYZParams: XYZParams{Granularity: GranularityMonth, Mode: ModeBottle},
	})
	require.NoError(t, err)
	require.Len(t, rep.Buckets, 3)
	require.Len(t, rep.Rows, 3)

	a := rep.Rows[0]
	require.Equal(t, "a", a.Name)
	require.Equal(t, LabelA, a.ABC)
	require.Equal(t, LabelX, a.XYZ)
	require.Equal(t, 3000.0, a.TotalRevenue)
	require.Equal(t, 1800.0, a.Profit)
	require.NotNil(t, a.MarginPct)
	require.InDelta(t, 60.0, *a.MarginPct, 1e-9)
	require.Equal(t, prep.FamilyRed, a.Category)
	require.Equal(t, 3, a.BucketsSold)
	require.InDelta(t, 3000.0/4400.0, a.RevShare, 1e-12)
	require.InDelta(t, a.RevShare, a.CumShare, 1e-12)

	c := rep.Rows[1]
	require.Equal(t, "c", c.Name)
	require.Equal(t, LabelB, c.ABC)
	require.Equal(t, LabelZ, c.XYZ)
	require.Equal(t, 2, c.BucketsSold)
	require.InDelta(t, 2.0/3.0, c.Coverage, 1e-12)

	b := rep.Rows[2]
	require.Equal(t, "b", b.Name)
	require.Equal(t, LabelC, b.ABC)
	require.Equal(t, prep.FamilyWhite, b.Category)
	require.InDelta(t, 1.0, b.CumShare, 1e-12)
	require.Empty(t, rep.Sections)
}

func TestBuildReport_Sections(t *testing.T) {
	rep, err := BuildReport(reportLines(), ReportParams{
		XYZParams: XYZParams{Granularity: GranularityMonth, Mode: ModeBottle},
		SliceBy:   SliceCategory,
	})
	require.NoError(t, err)
	require.Len(t, rep.Sections, 2)
	require.Equal(t, prep.FamilyRed, rep.Sections[0].Key)
	require.Equal(t, 3800.0, rep.Sections[0].Revenue)
	require.Equal(t, []string{"a", "c"}, []string{rep.Sections[0].Rows[0].Name, rep.Sections[0].Rows[1].Name})
	require.Equal(t, prep.FamilyWhite, rep.Sections[1].Key)
}

func TestBuildReport_ProfitMetricAndMargin(t *testing.T) {
	lines := []prep.SaleLine{
		bottleLine("a", 1, 100, 150, day0),
		bottleLine("b", 1, 0, 0, day0),
	}
	rep, err := BuildReport(lines, ReportParams{
		XYZParams: XYZParams{Granularity: GranularityWeek, Mode: ModeBottle, Metric: MetricProfit},
	})
	require.NoError(t, err)
	byName := map[string]ReportRow{}
	for _, r := range rep.Rows {
		byName[r.Name] = r
	}
	require.InDelta(t, -50.0, *byName["a"].MarginPct, 1e-9)
	require.Nil(t, byName["b"].MarginPct)
	require.Equal(t, -50.0, byName["a"].Profit)
}

func TestBuildReport_InvalidSlice(t *testing.T) {
	_, err := BuildReport(nil, ReportParams{
		XYZParams: XYZParams{Granularity: GranularityWeek, Mode: ModeBottle},
		SliceBy:   "table",
	})
	require.ErrorIs(t, err, ErrInvalidSubject)
}
