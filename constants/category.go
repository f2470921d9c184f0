package constants

import (
	"strings"
)

type Category string

const (
	Earthworks       Category = "Terrassement & VRD"
	Concrete         Category = "Béton & Gros œuvre"
	Masonry          Category = "Maçonnerie"
	Framework        Category = "Charpente & Structure métallique"
	Roofing          Category = "Couverture & Étanchéité"
	WoodJoinery      Category = "Menuiserie bois"
	AluminiumJoinery Category = "Menuiserie aluminium"
	MetalJoinery     Category = "Menuiserie métallique"
	Tiling           Category = "Carrelage & Revêtements sols"
	WallCoverings    Category = "Revêtements muraux"
	Plumbing         Category = "Plomberie & Sanitaire"
	Electrical       Category = "Électricité & Câblage"
	AirConditioning  Category = "Climatisation & Ventilation"
	Painting         Category = "Peinture & Finitions"
	FalseCeilings    Category = "Faux plafonds"
	Locksmithing     Category = "Serrurerie & Ferronnerie"
	Glazing          Category = "Vitrerie & Miroiterie"
	Miscellaneous    Category = "Divers & Imprévus"
)

// Sub-categories of Concrete, in matching priority order.
const (
	ConcreteReinforced = "Béton armé"
	ConcreteBlinding   = "Béton de propreté"
	ConcreteFootings   = "Fondations"
	ConcreteSlabs      = "Dalles"
	ConcreteColumns    = "Poteaux"
	ConcreteBeams      = "Poutres"
)

// allCategories is ordered: the categorizer breaks score ties on this order.
var allCategories = []Category{
	Earthworks,
	Concrete,
	Masonry,
	Framework,
	Roofing,
	WoodJoinery,
	AluminiumJoinery,
	MetalJoinery,
	Tiling,
	WallCoverings,
	Plumbing,
	Electrical,
	AirConditioning,
	Painting,
	FalseCeilings,
	Locksmithing,
	Glazing,
	Miscellaneous,
}

func AllCategories() []Category {
	out := make([]Category, len(allCategories))
	copy(out, allCategories)
	return out
}

func AsStringSlice() []string {
	result := make([]string, len(allCategories))
	for i, cat := range allCategories {
		result[i] = string(cat)
	}
	return result
}

// Canonicalize maps a free label (typically coming back from the inference service)
// onto a known category. The bool is false when nothing matched.
func Canonicalize(input string) (Category, bool) {
	if strings.TrimSpace(input) == "" {
		return Miscellaneous, false
	}

	normalized := strings.ToLower(strings.TrimSpace(input))

	// synonyms map
	synonyms := map[string]Category{
		"gros oeuvre":       Concrete,
		"gros œuvre":        Concrete,
		"beton":             Concrete,
		"béton":             Concrete,
		"vrd":               Earthworks,
		"terrassement":      Earthworks,
		"maconnerie":        Masonry,
		"charpente":         Framework,
		"etancheite":        Roofing,
		"étanchéité":        Roofing,
		"couverture":        Roofing,
		"carrelage":         Tiling,
		"plomberie":         Plumbing,
		"sanitaire":         Plumbing,
		"electricite":       Electrical,
		"électricité":       Electrical,
		"climatisation":     AirConditioning,
		"peinture":          Painting,
		"faux plafond":      FalseCeilings,
		"serrurerie":        Locksmithing,
		"vitrerie":          Glazing,
		"divers":            Miscellaneous,
		"imprevus":          Miscellaneous,
		"divers & imprevus": Miscellaneous,
	}

	if cat, ok := synonyms[normalized]; ok {
		return cat, true
	}

	for _, cat := range allCategories {
		if normalized == strings.ToLower(string(cat)) {
			return cat, true
		}
	}

	return Miscellaneous, false
}
