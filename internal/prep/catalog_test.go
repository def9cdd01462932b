package prep

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func catalogHeaders() []string {
	return []string{"Unnamed: 0", "Unnamed: 1", "Unnamed: 2", "Unnamed: 3", "Unnamed: 4", "Unnamed: 5",
		"Артикул", "Цена, р.", "Себестоимость, р.", "Себестоимость, %"}
}

func catalogRow(line int, cells ...string) Row {
	return Row{Line: line, Cells: cells}
}

func sampleCatalog() Table {
	return Table{
		Headers: catalogHeaders(),
		Rows: []Row{
			catalogRow(3, "", "Бар", "Вино", "Белые вина", "Шабли", "Шабли Премьер Крю", "1042", "150", "45", "30,004"),
			catalogRow(4, "", "", "", "", "Рислинг", "", "1043", "2 400", "800,5", "33.35"),
			catalogRow(5, "", "", "", "ВИНА ПО БОКАЛАМ 150 МЛ", "Красные 150 мл", "Кьянти", "2001", "600", "150", "25"),
			catalogRow(6, "", "", "", "", "", "Мерло", "2002", "550", "140", "25,45"),
			catalogRow(7, "", "", "", "Пиво", "Лагер", "", "3001", "300", "100", "33"),
			catalogRow(8, "", "", "", "Красные вина", "Бароло", "", "3002", "1", "0,5", "50"),
			catalogRow(9, "", "", "", "", "Кьянти Классико", "", "3003", "900", "n/a", "40"),
			catalogRow(10, "", "", "", "ВИНА ПО БОКАЛАМ 150 МЛ", "Сезонное", "Глинтвейн", "3004", "400", "100", "25"),
		},
	}
}

func TestNormalizeCatalog_ShapesArticles(t *testing.T) {
	res, err := NormalizeCatalog(sampleCatalog())
	require.NoError(t, err)
	require.Len(t, res.Articles, 5)

	chablis := res.Articles[0]
	require.Equal(t, "1042", chablis.ID)
	require.Equal(t, "шабли премьер крю", chablis.Name)
	require.Equal(t, "белые вина", chablis.Category)
	require.Equal(t, GlassOther, chablis.GlassCategory)
	require.False(t, chablis.ByTheGlass)
	require.InDelta(t, 30.0, chablis.CostPercent, 1e-9)

	riesling := res.Articles[1]
	require.Equal(t, "рислинг", riesling.Name, "falls back to sub-category label")
	require.Equal(t, "белые вина", riesling.Category, "category forward-filled")
	require.InDelta(t, 2400.0, riesling.Price, 1e-9)
	require.InDelta(t, 800.5, riesling.Cost, 1e-9)

	merlot := res.Articles[3]
	require.Equal(t, "мерло", merlot.Name)
	require.Equal(t, "красные 150 мл", merlot.GlassCategory, "pour category forward-filled within glass subset")
	require.True(t, merlot.ByTheGlass)
	require.InDelta(t, 25.45, merlot.CostPercent, 1e-9)

	mulled := res.Articles[4]
	require.Equal(t, "глинтвейн", mulled.Name)
	require.Equal(t, GlassOther, mulled.GlassCategory)
	require.True(t, mulled.ByTheGlass, "glass menu item outside the pour categories is kept")
	require.InDelta(t, 400.0, mulled.Price, 1e-9)
}

func TestNormalizeCatalog_RejectsCarryLines(t *testing.T) {
	res, err := NormalizeCatalog(sampleCatalog())
	require.NoError(t, err)
	require.Equal(t, []Reject{
		{Line: 8, Reason: "price at or below threshold"},
		{Line: 9, Reason: "unparseable cost"},
	}, res.Rejected)
}

func TestNormalizeCatalog_GlassFillDoesNotLeak(t *testing.T) {
	tbl := Table{
		Headers: catalogHeaders(),
		Rows: []Row{
			catalogRow(3, "", "", "", "ВИНА ПО БОКАЛАМ 150 МЛ", "Белые 150 мл", "Совиньон", "1", "500", "100", "20"),
			catalogRow(4, "", "", "", "Красные вина", "", "Бароло", "2", "5000", "1500", "30"),
		},
	}
	res, err := NormalizeCatalog(tbl)
	require.NoError(t, err)
	require.Len(t, res.Articles, 2)
	require.Equal(t, GlassOther, res.Articles[1].GlassCategory)
}

func TestNormalizeCatalog_MissingColumn(t *testing.T) {
	_, err := NormalizeCatalog(Table{Headers: []string{"Unnamed: 3", "Unnamed: 4", "Unnamed: 5", "Артикул"}})
	require.ErrorIs(t, err, ErrMissingColumn)
	require.Contains(t, err.Error(), "unit_price")
}

func TestFillDownIsPure(t *testing.T) {
	rows := []Row{
		{Line: 1, Cells: []string{"a", "x"}},
		{Line: 2, Cells: []string{"", "y"}},
		{Line: 3, Cells: []string{""}},
	}
	out := fillDown(rows, 0, 1)
	require.Equal(t, "a", out[1].Cell(0))
	require.Equal(t, "a", out[2].Cell(0))
	require.Equal(t, "y", out[2].Cell(1))
	require.Equal(t, "", rows[1].Cells[0])
	require.Len(t, rows[2].Cells, 1)
}
