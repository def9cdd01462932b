package prep

import (
	"time"

	"github.com/vinodismyname/mcpcellar/config"
)

// SaleLine is one row of the unified sale-line table both classifiers read.
// A zero OpenTime marks a catalog article with no matching sale.
type SaleLine struct {
	OpenTime      time.Time `json:"open_time"`
	ArticleID     string    `json:"article_id"`
	ArticleName   string    `json:"article_name"`
	Category      string    `json:"article_category"`
	GlassCategory string    `json:"glass_sub_category"`
	ByTheGlass    bool      `json:"by_the_glass"`
	Price         float64   `json:"price"`
	ArticlePrice  float64   `json:"article_price"`
	ArticleCost   float64   `json:"article_cost"`
	Quantity      float64   `json:"quantity"`
	FinalSum      float64   `json:"final_sum"`
	IsGlass       bool      `json:"is_glass"`
	GlassQuantity float64   `json:"glass_quantity"`
	GlassPrice    float64   `json:"glass_price"`
	GlassCost     float64   `json:"glass_cost"`
	GlassProfit   float64   `json:"glass_profit"`

	MonthYear string `json:"month_year,omitempty"`
	Weekday   string `json:"weekday,omitempty"`
	Hour      int    `json:"hour"`
}

// Sold reports whether the line carries an actual sale.
func (s SaleLine) Sold() bool { return !s.OpenTime.IsZero() }

// Merge right-joins dish lines onto the remapped catalog. Every article
// appears at least once, in catalog order; matching dish lines keep their
// dish order.
func Merge(lines []OrderLine, articles []Article) []SaleLine {
	byArticle := make(map[string][]OrderLine, len(articles))
	for _, l := range lines {
		byArticle[l.ArticleID] = append(byArticle[l.ArticleID], l)
	}

	out := make([]SaleLine, 0, len(lines)+len(articles))
	for _, a := range articles {
		matched := byArticle[a.ID]
		if len(matched) == 0 {
			out = append(out, saleLine(OrderLine{}, a))
			continue
		}
		for _, l := range matched {
			out = append(out, saleLine(l, a))
		}
	}
	return out
}

func saleLine(l OrderLine, a Article) SaleLine {
	s := SaleLine{
		OpenTime:      l.OpenTime,
		ArticleID:     a.ID,
		ArticleName:   a.Name,
		Category:      a.Category,
		GlassCategory: a.GlassCategory,
		ByTheGlass:    a.ByTheGlass,
		Price:         l.Price,
		ArticlePrice:  a.Price,
		ArticleCost:   a.Cost,
		Quantity:      l.Quantity,
		FinalSum:      l.FinalSum,
	}

	fractional := isFractional(l.Quantity)
	s.IsGlass = a.ByTheGlass || (fractional && l.Quantity != 0)

	s.GlassQuantity = l.Quantity
	if fractional {
		s.GlassQuantity = roundTo(l.Quantity/config.GlassFraction, 9)
	}

	s.GlassPrice, s.GlassCost = a.Price, a.Cost
	if s.IsGlass && !a.ByTheGlass {
		s.GlassPrice = a.Price / config.GlassesPerBottle
		s.GlassCost = a.Cost / config.GlassesPerBottle
	}
	s.GlassProfit = s.GlassPrice - s.GlassCost

	if s.Sold() {
		s.MonthYear = s.OpenTime.Format("2006-01")
		s.Weekday = s.OpenTime.Weekday().String()
		s.Hour = s.OpenTime.Hour()
	}
	return s
}
