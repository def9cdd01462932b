package prep

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/vinodismyname/mcpcellar/config"
	"github.com/xuri/excelize/v2"
)

// Canonical dish report columns.
const (
	ColArticle     = "article"
	ColDish        = "dish"
	ColOpenTime    = "open_time"
	ColSessionID   = "session_id"
	ColOrderID     = "order_id"
	ColTableNo     = "table_no"
	ColPrice       = "price"
	ColQuantity    = "quantity"
	ColTotalSum    = "total_sum"
	ColDiscount    = "discount"
	ColFinalSum    = "final_sum"
	ColPaymentType = "payment_type"
	ColGuestNo     = "guest_no"
)

// DishFields is the header vocabulary of the POS dish report.
var DishFields = []Field{
	{Name: ColArticle, Synonyms: []string{"Код блюда", ColArticle}, Required: true},
	{Name: ColDish, Synonyms: []string{"Блюдо", ColDish}},
	{Name: ColOpenTime, Synonyms: []string{"Вр. открытия", ColOpenTime}, Required: true},
	{Name: ColSessionID, Synonyms: []string{"№ смены", ColSessionID}},
	{Name: ColOrderID, Synonyms: []string{"№ заказа", ColOrderID}},
	{Name: ColTableNo, Synonyms: []string{"№ стола", ColTableNo}},
	{Name: ColPrice, Synonyms: []string{"Цена", ColPrice}, Required: true},
	{Name: ColQuantity, Synonyms: []string{"Кол-во", ColQuantity}, Required: true},
	{Name: ColTotalSum, Synonyms: []string{"Полн. сумма, р.", ColTotalSum}},
	{Name: ColDiscount, Synonyms: []string{"Скидка", ColDiscount}},
	{Name: ColFinalSum, Synonyms: []string{"Итог. сумма, р.", ColFinalSum}, Required: true},
	{Name: ColPaymentType, Synonyms: []string{"Типы оплаты", ColPaymentType}},
	{Name: ColGuestNo, Synonyms: []string{"№ гостя", ColGuestNo}},
}

var dishNumeric = []string{ColPrice, ColQuantity, ColTotalSum, ColDiscount, ColFinalSum}

// OrderLine is one normalized POS transaction line.
type OrderLine struct {
	Line        int       `json:"line"`
	ArticleID   string    `json:"article_id"`
	Dish        string    `json:"dish,omitempty"`
	OpenTime    time.Time `json:"open_time"`
	SessionID   string    `json:"session_id,omitempty"`
	OrderID     string    `json:"order_id,omitempty"`
	TableNo     string    `json:"table_no,omitempty"`
	Price       float64   `json:"price"`
	Quantity    float64   `json:"quantity"`
	TotalSum    float64   `json:"total_sum"`
	Discount    float64   `json:"discount"`
	FinalSum    float64   `json:"final_sum"`
	PaymentType string    `json:"payment_type,omitempty"`
	GuestNo     string    `json:"guest_no,omitempty"`
}

// DishResult is the normalized dish table and the rows it excluded.
type DishResult struct {
	Lines    []OrderLine
	Rejected []Reject
	Columns  []string
}

// parseOpenTime reads the exact report layout, or an Excel date serial when
// the cell was stored as a true date.
func parseOpenTime(s string) (time.Time, bool) {
	if ts, err := time.ParseInLocation(config.DishTimeLayout, s, time.UTC); err == nil {
		return ts, true
	}
	serial, err := strconv.ParseFloat(s, 64)
	if err != nil || serial <= 0 {
		return time.Time{}, false
	}
	ts, err := excelize.ExcelDateToTime(serial, false)
	if err != nil {
		return time.Time{}, false
	}
	return ts.Round(time.Minute), true
}

// NormalizeDishes turns a raw dish report into canonical order lines.
//
// Rows missing a value in any resolved column, or carrying a non-numeric
// amount, are rejected. A timestamp that is neither in config.DishTimeLayout
// nor a date serial fails the whole load.
func NormalizeDishes(t Table) (DishResult, error) {
	schema, err := Resolve(t.Headers, DishFields)
	if err != nil {
		return DishResult{}, fmt.Errorf("dish report: %w", err)
	}
	res := DishResult{Columns: schema.Fields()}

	for _, r := range t.Rows {
		vals := make(map[string]string, len(res.Columns))
		missing := ""
		for _, name := range res.Columns {
			v := r.Cell(schema.Index(name))
			if v == "" {
				missing = name
				break
			}
			vals[name] = v
		}
		if missing != "" {
			res.Rejected = append(res.Rejected, Reject{Line: r.Line, Reason: "missing " + missing})
			continue
		}

		nums := make(map[string]float64, len(dishNumeric))
		bad := ""
		for _, name := range dishNumeric {
			v, ok := vals[name]
			if !ok {
				continue
			}
			f, ok := parseNumber(v)
			if !ok {
				bad = name
				break
			}
			nums[name] = f
		}
		if bad != "" {
			res.Rejected = append(res.Rejected, Reject{Line: r.Line, Reason: "non-numeric " + bad})
			continue
		}

		ts, ok := parseOpenTime(vals[ColOpenTime])
		if !ok {
			return DishResult{}, fmt.Errorf("%w: line %d: %q (want %s)", ErrTimeFormat, r.Line, vals[ColOpenTime], config.DishTimeLayout)
		}

		res.Lines = append(res.Lines, OrderLine{
			Line:        r.Line,
			ArticleID:   articleKey(vals[ColArticle]),
			Dish:        strings.ToLower(vals[ColDish]),
			OpenTime:    ts,
			SessionID:   strings.ToLower(vals[ColSessionID]),
			OrderID:     strings.ToLower(vals[ColOrderID]),
			TableNo:     strings.ToLower(vals[ColTableNo]),
			Price:       nums[ColPrice],
			Quantity:    nums[ColQuantity],
			TotalSum:    nums[ColTotalSum],
			Discount:    nums[ColDiscount],
			FinalSum:    nums[ColFinalSum],
			PaymentType: strings.ToLower(vals[ColPaymentType]),
			GuestNo:     strings.ToLower(vals[ColGuestNo]),
		})
	}
	return res, nil
}
