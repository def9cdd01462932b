package analysis

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/vinodismyname/mcpcellar/internal/prep"
)

func TestBucketStart(t *testing.T) {
	sunday := time.Date(2024, 3, 10, 23, 59, 0, 0, time.UTC)
	require.Equal(t, time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC), GranularityWeek.bucketStart(sunday))
	require.Equal(t, time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC), GranularityWeek.bucketStart(day0))
	require.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), GranularityMonth.bucketStart(sunday))
}

func TestClassifyXYZ_StableSubjectIsX(t *testing.T) {
	var lines []prep.SaleLine
	for w := 0; w < 4; w++ {
		lines = append(lines, bottleLine("a", 2, 100, 40, day0.AddDate(0, 0, 7*w)))
	}
	res, err := ClassifyXYZ(lines, XYZParams{Granularity: GranularityWeek, Mode: ModeBottle})
	require.NoError(t, err)
	require.Len(t, res.Buckets, 4)
	require.Len(t, res.Rows, 1)
	row := res.Rows[0]
	require.NotNil(t, row.CV)
	require.Equal(t, 0.0, *row.CV)
	require.Equal(t, LabelX, row.Label)
	require.Equal(t, 1.0, row.Coverage)
	require.Equal(t, 800.0, row.Total)
}

func TestClassifyXYZ_SingleBucketIsZ(t *testing.T) {
	lines := []prep.SaleLine{
		bottleLine("a", 1, 100, 40, day0),
		bottleLine("a", 3, 100, 40, day0.Add(time.Hour)),
	}
	res, err := ClassifyXYZ(lines, XYZParams{Granularity: GranularityMonth, Mode: ModeBottle})
	require.NoError(t, err)
	require.Len(t, res.Rows, 1)
	require.Nil(t, res.Rows[0].CV)
	require.Nil(t, res.Rows[0].Std)
	require.Equal(t, LabelZ, res.Rows[0].Label)
	require.Equal(t, []float64{400}, res.Rows[0].Series)
}

func TestClassifyXYZ_ZeroFilledSeries(t *testing.T) {
	lines := []prep.SaleLine{
		bottleLine("a", 1, 100, 0, day0),
		bottleLine("a", 1, 100, 0, day0.AddDate(0, 0, 14)),
		bottleLine("b", 1, 100, 0, day0.AddDate(0, 0, 7)),
		bottleLine("b", 1, 100, 0, day0.AddDate(0, 0, 8)),
	}
	res, err := ClassifyXYZ(lines, XYZParams{Granularity: GranularityWeek, Mode: ModeBottle})
	require.NoError(t, err)
	require.Len(t, res.Buckets, 3)

	a := res.Rows[0]
	require.Equal(t, "a", a.Subject)
	require.Equal(t, []float64{100, 0, 100}, a.Series)
	require.Equal(t, 2, a.BucketsSold)
	require.InDelta(t, 2.0/3.0, a.Coverage, 1e-12)
	require.Equal(t, day0.AddDate(0, 0, 14).Truncate(24*time.Hour), a.LastSold)
	// mean 66.67, sample std 57.74, cv 0.866
	require.InDelta(t, 0.866, *a.CV, 1e-3)
	require.Equal(t, LabelZ, a.Label)

	b := res.Rows[1]
	require.Equal(t, []float64{0, 200, 0}, b.Series)
	require.Equal(t, 1, b.BucketsSold)
	require.InDelta(t, 1.732, *b.CV, 1e-3)
}

func TestClassifyXYZ_Thresholds(t *testing.T) {
	// series 100, 140: mean 120, std 28.28, cv 0.2357
	lines := []prep.SaleLine{
		bottleLine("a", 1, 100, 0, day0),
		bottleLine("a", 1, 140, 0, day0.AddDate(0, 1, 0)),
	}
	res, err := ClassifyXYZ(lines, XYZParams{Granularity: GranularityMonth, Mode: ModeBottle})
	require.NoError(t, err)
	require.Equal(t, LabelX, res.Rows[0].Label)

	res, err = ClassifyXYZ(lines, XYZParams{Granularity: GranularityMonth, Mode: ModeBottle, Thresholds: StabilityThresholds{X: 0.1, Y: 0.3}})
	require.NoError(t, err)
	require.Equal(t, LabelY, res.Rows[0].Label)
}

func TestClassifyXYZ_ZeroMeanIsZ(t *testing.T) {
	lines := []prep.SaleLine{
		bottleLine("a", 1, 100, 0, day0),
		bottleLine("a", -1, 100, 0, day0.AddDate(0, 0, 7)),
	}
	res, err := ClassifyXYZ(lines, XYZParams{Granularity: GranularityWeek, Mode: ModeBottle})
	require.NoError(t, err)
	require.Nil(t, res.Rows[0].CV)
	require.NotNil(t, res.Rows[0].Std)
	require.Equal(t, LabelZ, res.Rows[0].Label)
}

func TestClassifyXYZ_SubjectsAndUnsoldLines(t *testing.T) {
	lines := []prep.SaleLine{
		glassLine("шабли", 2, 150, 45, day0),
		glassLine("рислинг", 1, 200, 50, day0.AddDate(0, 0, 7)),
		glassLine("пино", 0, 200, 50, time.Time{}),
	}
	res, err := ClassifyXYZ(lines, XYZParams{Granularity: GranularityWeek, Mode: ModeGlass, Subject: SubjectGlassCategory})
	require.NoError(t, err)
	require.Len(t, res.Rows, 1)
	require.Equal(t, prep.FamilyWhite, res.Rows[0].Subject)
	require.Equal(t, []float64{60, 40}, res.Rows[0].Series)
}

func TestClassifyXYZ_ByTheGlassScope(t *testing.T) {
	menu := glassLine("домашнее", 4, 500, 100, day0)
	menu.ByTheGlass = true
	menu.GlassPrice, menu.GlassCost, menu.GlassProfit = 500, 100, 400
	lines := []prep.SaleLine{
		menu,
		glassLine("шабли", 2, 150, 45, day0.AddDate(0, 0, 7)),
	}

	res, err := ClassifyXYZ(lines, XYZParams{Granularity: GranularityWeek, Mode: ModeGlass})
	require.NoError(t, err)
	require.Len(t, res.Rows, 2)
	require.Len(t, res.Buckets, 2)

	res, err = ClassifyXYZ(lines, XYZParams{Granularity: GranularityWeek, Mode: ModeGlass, Scope: Scope{ByTheGlass: true}})
	require.NoError(t, err)
	require.Len(t, res.Rows, 1)
	require.Equal(t, "домашнее", res.Rows[0].Subject)
	require.Equal(t, []float64{2000}, res.Rows[0].Series)
}

func TestClassifyXYZ_Empty(t *testing.T) {
	res, err := ClassifyXYZ(nil, XYZParams{Granularity: GranularityWeek, Mode: ModeGlass})
	require.NoError(t, err)
	require.Empty(t, res.Rows)
	require.Empty(t, res.Buckets)
}

func TestClassifyXYZ_InvalidParams(t *testing.T) {
	_, err := ClassifyXYZ(nil, XYZParams{Granularity: "day", Mode: ModeGlass})
	require.ErrorIs(t, err, ErrInvalidGranularity)

	_, err = ClassifyXYZ(nil, XYZParams{Granularity: GranularityWeek, Mode: ModeGlass, Subject: "table"})
	require.ErrorIs(t, err, ErrInvalidSubject)

	_, err = ClassifyXYZ(nil, XYZParams{Granularity: GranularityWeek, Mode: ModeGlass, Thresholds: StabilityThresholds{X: 0.5, Y: 0.2}})
	require.ErrorIs(t, err, ErrInvalidThreshold)
}
