package prep

import (
	"fmt"
	"strings"
)

// Wine families every category collapses into.
const (
	FamilyWhite          = "white"
	FamilyRed            = "red"
	FamilySparkling      = "sparkling"
	FamilyDigestifOrange = "digestif_orange"
)

// Families lists the canonical families in display order.
var Families = []string{FamilyWhite, FamilyRed, FamilySparkling, FamilyDigestifOrange}

var categoryFamily = map[string]string{
	"белые_вина":                  FamilyWhite,
	"белые_вина_россии":           FamilyWhite,
	"красные_вина":                FamilyRed,
	"красные_вина_россии":         FamilyRed,
	"вина_вне_карты":              FamilyRed,
	"игристые_вина_россия":        FamilySparkling,
	"игристые_вина_со_всего_мира": FamilySparkling,
	"шампань_франция":             FamilySparkling,
	"дижестивы/сладкие_вина":      FamilyDigestifOrange,
	"оранжевые_и_розовые_вина":    FamilyDigestifOrange,
	"пино_де_шарант":              FamilyDigestifOrange,
}

var pourFamily = map[string]string{
	"белые_150_мл":                  FamilyWhite,
	"красные_150_мл":                FamilyRed,
	"игристые_150_мл":               FamilySparkling,
	"дижестивы_и_розовые_75-150_мл": FamilyDigestifOrange,
}

var glassUmbrella = underscore(strings.ToLower(ByTheGlassCategory))

// umbrellaHints guess the family of a by-the-glass article listed outside the
// four pour categories from its name. Order matters: "розовое игристое" is
// sparkling.
var umbrellaHints = []struct {
	stem   string
	family string
}{
	{"игрист", FamilySparkling},
	{"шампан", FamilySparkling},
	{"просекко", FamilySparkling},
	{"кава", FamilySparkling},
	{"бел", FamilyWhite},
	{"красн", FamilyRed},
	{"розов", FamilyDigestifOrange},
	{"оранж", FamilyDigestifOrange},
	{"дижестив", FamilyDigestifOrange},
	{"портвейн", FamilyDigestifOrange},
	{"херес", FamilyDigestifOrange},
}

// umbrellaFallback is the family of a by-the-glass article no hint matches,
// in line with off-card wines.
const umbrellaFallback = FamilyRed

func umbrellaFamily(name string) string {
	name = strings.ToLower(name)
	for _, h := range umbrellaHints {
		if strings.Contains(name, h.stem) {
			return h.family
		}
	}
	return umbrellaFallback
}

func init() {
	for _, f := range Families {
		categoryFamily[f] = f
		pourFamily[f] = f
	}
}

// Remap collapses article and glass categories into wine families. It
// returns a new slice; articles is left untouched. A by-the-glass article
// outside the four pour categories takes the family its name suggests. A value
// outside the known vocabulary fails the whole call with ErrUnknownCategory.
func Remap(articles []Article) ([]Article, error) {
	out := make([]Article, len(articles))
	for i, a := range articles {
		cat := underscore(a.Category)
		glass := underscore(a.GlassCategory)

		var glassFam string
		switch {
		case glass == GlassOther:
		case pourFamily[glass] != "":
			glassFam = pourFamily[glass]
		default:
			return nil, fmt.Errorf("%w: glass category %q (article %s)", ErrUnknownCategory, a.GlassCategory, a.ID)
		}

		var catFam string
		switch {
		case cat == glassUmbrella:
			if glassFam == "" {
				glassFam = umbrellaFamily(a.Name)
			}
			catFam = glassFam
		case categoryFamily[cat] != "":
			catFam = categoryFamily[cat]
		default:
			return nil, fmt.Errorf("%w: category %q (article %s)", ErrUnknownCategory, a.Category, a.ID)
		}
		if glassFam == "" {
			glassFam = catFam
		}

		a.Category = catFam
		a.GlassCategory = glassFam
		out[i] = a
	}
	return out, nil
}

// isFamily reports whether v is one of the canonical families.
func isFamily(v string) bool {
	_, ok := categoryFamily[v]
	return ok && categoryFamily[v] == v
}

func underscore(s string) string {
	return strings.ReplaceAll(strings.TrimSpace(s), " ", "_")
}
