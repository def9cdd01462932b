package prep

import (
	"fmt"
	"strings"

	"github.com/vinodismyname/mcpcellar/config"
)

// Catalog columns. Hierarchy columns carry no header in the price list and
// surface under positional placeholders.
const (
	ColGroup       = "group"
	ColSection     = "section"
	ColCategory    = "category"
	ColSubCategory = "sub_category"
	ColLabel       = "label"
	ColArticleID   = "article_id"
	ColUnitPrice   = "unit_price"
	ColUnitCost    = "unit_cost"
	ColCostPercent = "cost_percent"
)

// CatalogFields is the header vocabulary of the article price list.
var CatalogFields = []Field{
	{Name: ColGroup, Synonyms: []string{"Unnamed: 1"}},
	{Name: ColSection, Synonyms: []string{"Unnamed: 2"}},
	{Name: ColCategory, Synonyms: []string{"Unnamed: 3", "article_category"}, Required: true},
	{Name: ColSubCategory, Synonyms: []string{"Unnamed: 4", "sub_category"}, Required: true},
	{Name: ColLabel, Synonyms: []string{"Unnamed: 5", "label"}, Required: true},
	{Name: ColArticleID, Synonyms: []string{"Артикул", "article"}, Required: true},
	{Name: ColUnitPrice, Synonyms: []string{"Цена, р.", "article_price"}, Required: true},
	{Name: ColUnitCost, Synonyms: []string{"Себестоимость, р.", "article_profit"}, Required: true},
	{Name: ColCostPercent, Synonyms: []string{"Себестоимость, %", "article_profit_percent"}, Required: true},
}

// ByTheGlassCategory is the umbrella category of dedicated by-the-glass items.
const ByTheGlassCategory = "ВИНА ПО БОКАЛАМ 150 МЛ"

// WineCategories are the top-level catalog categories that hold wine.
var WineCategories = []string{
	"Белые вина",
	"Белые вина России",
	"Вина вне карты",
	ByTheGlassCategory,
	"Дижестивы/Сладкие вина",
	"Игристые вина Россия",
	"Игристые Вина со всего Мира",
	"Красные вина",
	"Красные вина России",
	"Оранжевые и розовые вина",
	"Пино де Шарант",
	"Шампань Франция",
}

// PourCategories are the recognised by-the-glass sub-categories.
var PourCategories = []string{
	"Белые 150 мл",
	"Дижестивы и розовые 75-150 мл",
	"Игристые 150 мл",
	"Красные 150 мл",
}

// GlassOther marks articles without a dedicated pour category.
const GlassOther = "other"

// Article is one sellable wine article from the price list.
type Article struct {
	Line          int     `json:"line"`
	ID            string  `json:"article_id"`
	Name          string  `json:"article_name"`
	Category      string  `json:"article_category"`
	GlassCategory string  `json:"glass_sub_category"`
	ByTheGlass    bool    `json:"by_the_glass"`
	Price         float64 `json:"unit_price"`
	Cost          float64 `json:"unit_cost"`
	CostPercent   float64 `json:"cost_percent"`
}

// CatalogResult is the normalized catalog and the rows it excluded.
// Rows outside the wine categories are neither kept nor rejected.
type CatalogResult struct {
	Articles []Article
	Rejected []Reject
}

// NormalizeCatalog reshapes the hierarchical price list into one record per
// sellable wine article.
func NormalizeCatalog(t Table) (CatalogResult, error) {
	schema, err := Resolve(t.Headers, CatalogFields)
	if err != nil {
		return CatalogResult{}, fmt.Errorf("article catalog: %w", err)
	}
	catIdx := schema.Index(ColCategory)
	subIdx := schema.Index(ColSubCategory)

	rows := fillDown(t.Rows, schema.Index(ColGroup), schema.Index(ColSection), catIdx)

	var wine []Row
	for _, r := range rows {
		if containsFold(WineCategories, r.Cell(catIdx)) {
			wine = append(wine, r)
		}
	}
	wine = fillDownWhere(wine, subIdx, func(r Row) bool {
		return strings.EqualFold(r.Cell(catIdx), ByTheGlassCategory)
	})

	var res CatalogResult
	reject := func(r Row, reason string) {
		res.Rejected = append(res.Rejected, Reject{Line: r.Line, Reason: reason})
	}
	for _, r := range wine {
		category := r.Cell(catIdx)
		sub := r.Cell(subIdx)
		byTheGlass := strings.EqualFold(category, ByTheGlassCategory)

		glass := GlassOther
		if containsFold(PourCategories, sub) {
			glass = sub
		}

		name := r.Cell(schema.Index(ColLabel))
		if name == "" {
			name = sub
		}

		price, ok := parseNumber(r.Cell(schema.Index(ColUnitPrice)))
		if !ok || price <= config.MinArticlePrice {
			reject(r, "price at or below threshold")
			continue
		}
		cost, ok := parseNumber(r.Cell(schema.Index(ColUnitCost)))
		if !ok {
			reject(r, "unparseable cost")
			continue
		}
		pct, ok := round2(r.Cell(schema.Index(ColCostPercent)))
		if !ok {
			reject(r, "unparseable cost percent")
			continue
		}
		id := r.Cell(schema.Index(ColArticleID))
		if id == "" || name == "" {
			reject(r, "missing article id or name")
			continue
		}

		res.Articles = append(res.Articles, Article{
			Line:          r.Line,
			ID:            articleKey(id),
			Name:          strings.ToLower(name),
			Category:      strings.ToLower(category),
			GlassCategory: strings.ToLower(glass),
			ByTheGlass:    byTheGlass,
			Price:         price,
			Cost:          cost,
			CostPercent:   pct,
		})
	}
	return res, nil
}

// fillDownWhere forward-fills col across the rows matching keep only; the
// carried value never leaks from or into other rows.
func fillDownWhere(rows []Row, col int, keep func(Row) bool) []Row {
	var idx []int
	var subset []Row
	for i, r := range rows {
		if keep(r) {
			idx = append(idx, i)
			subset = append(subset, r)
		}
	}
	filled := fillDown(subset, col)
	out := make([]Row, len(rows))
	copy(out, rows)
	for k, i := range idx {
		out[i] = filled[k]
	}
	return out
}

func containsFold(set []string, v string) bool {
	v = strings.TrimSpace(v)
	for _, s := range set {
		if strings.EqualFold(s, v) {
			return true
		}
	}
	return false
}
