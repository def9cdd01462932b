package validation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/vinodismyname/mcpcellar/pkg/pagination"
)

type loadInput struct {
	DishPath string  `validate:"required,filepath_ext"`
	Mode     string  `validate:"omitempty,oneof=glass bottle"`
	A        float64 `validate:"omitempty,gt=0,ltefield=B"`
	B        float64 `validate:"omitempty,gt=0,lte=1"`
	After    string  `validate:"omitempty,isodate"`
	From     string  `validate:"omitempty,isomonth"`
	Out      string  `validate:"omitempty,xlsx_out"`
	Cursor   string  `validate:"omitempty,cursor"`
}

func TestValidateStruct(t *testing.T) {
	ok := loadInput{DishPath: "/d/dishes.xlsx", Mode: "glass", A: 0.8, B: 0.95, After: "2024-03-01", From: "2024-03", Out: "abc.xlsx"}
	require.Empty(t, ValidateStruct(ok))

	cases := []struct {
		name string
		mut  func(*loadInput)
		want string
	}{
		{"missing path", func(in *loadInput) { in.DishPath = "" }, "VALIDATION: dishpath is required"},
		{"csv path", func(in *loadInput) { in.DishPath = "/d/dishes.csv" }, "VALIDATION: dishpath must be an Excel file (.xlsx, .xlsm)"},
		{"bad mode", func(in *loadInput) { in.Mode = "keg" }, "VALIDATION: mode must be one of [glass bottle]"},
		{"a above b", func(in *loadInput) { in.A = 0.99 }, "VALIDATION: a must not exceed b"},
		{"bad date", func(in *loadInput) { in.After = "01.03.2024" }, "VALIDATION: after must be a date like 2024-03-31"},
		{"bad month", func(in *loadInput) { in.From = "2024-3-1" }, "VALIDATION: from must be a month like 2024-03"},
		{"xlsm export", func(in *loadInput) { in.Out = "abc.xlsm" }, "VALIDATION: out must end in .xlsx"},
		{"bad cursor", func(in *loadInput) { in.Cursor = "!!!" }, "CURSOR_INVALID: failed to decode cursor; restart pagination without a cursor"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			in := ok
			c.mut(&in)
			require.Equal(t, c.want, ValidateStruct(in))
		})
	}
}

func TestCursorRuleAcceptsIssuedToken(t *testing.T) {
	tok, err := pagination.EncodeCursor(pagination.Cursor{Did: "ds", View: pagination.ViewSaleLines, Ps: 10})
	require.NoError(t, err)
	require.Empty(t, ValidateStruct(loadInput{DishPath: "a.xlsx", Cursor: tok}))
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("")
	require.NoError(t, err)
	require.True(t, d.IsZero())

	d, err = ParseDate("2024-03-31")
	require.NoError(t, err)
	require.Equal(t, 31, d.Day())
}

func TestParseMonth(t *testing.T) {
	m, err := ParseMonth("2024-03")
	require.NoError(t, err)
	require.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), m)

	_, err = ParseMonth("03.2024")
	require.Error(t, err)
}
