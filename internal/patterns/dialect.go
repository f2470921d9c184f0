package patterns

import "github.com/joseph-ayodele/dqe-extractor/constants"

// Dialect is the YAML-facing description of a document dialect. Every list is
// ordered: order is a tie-break or a priority wherever it is consumed.
type Dialect struct {
	HeaderTokens     []string          `yaml:"header_tokens"`
	SubtotalTokens   []string          `yaml:"subtotal_tokens"`
	TotalPattern     string            `yaml:"total_pattern"`
	CategoryKeywords []string          `yaml:"category_keywords"`
	MetadataKeywords []string          `yaml:"metadata_keywords"`
	NotANumber       string            `yaml:"not_a_number"`
	ValidUnits       []string          `yaml:"valid_units"`
	UnitAliases      map[string]string `yaml:"unit_aliases"`

	Levels     []LabeledPattern `yaml:"levels"`
	Dosage     []string         `yaml:"dosage"`
	Dimensions []string         `yaml:"dimensions"`
	Thickness  []string         `yaml:"thickness"`

	LotHeadings []string `yaml:"lot_headings"`
	LotNumber   string   `yaml:"lot_number"`

	Metadata MetadataPatterns `yaml:"metadata"`

	Columns map[string][]string `yaml:"columns"`

	DocumentTypes DocumentTypeHints `yaml:"document_types"`
	RecapCode     string            `yaml:"recap_code"`

	// TextItemLine parses one priced line of layout text into six groups:
	// code, designation, unit, quantity, unit price, total.
	TextItemLine string `yaml:"text_item_line"`
	// TextTrailingAmount splits a label from the amount ending the line.
	TextTrailingAmount string `yaml:"text_trailing_amount"`

	Categories       []CategoryRule `yaml:"categories"`
	FallbackCategory string         `yaml:"fallback_category"`
	DefaultSection   string         `yaml:"default_section"`

	Limits Limits `yaml:"limits"`
}

// LabeledPattern maps a regular expression to the label it yields.
type LabeledPattern struct {
	Label   string `yaml:"label"`
	Pattern string `yaml:"pattern"`
}

// MetadataPatterns hold one regular expression per metadata field; group 1 is the value.
type MetadataPatterns struct {
	Date         string `yaml:"date"`
	BuildingRef  string `yaml:"building_ref"`
	DocumentRef  string `yaml:"document_ref"`
	BuildingType string `yaml:"building_type"`
}

// DocumentTypeHints drive sheet typing from the sheet name first, then content.
type DocumentTypeHints struct {
	RecapName        []string `yaml:"recap_name"`
	DetailedPrefixes []string `yaml:"detailed_prefixes"`
	SummaryName      []string `yaml:"summary_name"`
	DetailedContent  []string `yaml:"detailed_content"`
	SummaryContent   []string `yaml:"summary_content"`
}

// CategoryRule is one entry of the categorization taxonomy.
type CategoryRule struct {
	Name          string            `yaml:"name"`
	Keywords      []string          `yaml:"keywords"`
	SubCategories []SubCategoryRule `yaml:"sub_categories,omitempty"`
}

// SubCategoryRule is checked in order; first match wins.
type SubCategoryRule struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
}

// Limits are the numeric knobs of the engine.
type Limits struct {
	HeaderSearchRows     int     `yaml:"header_search_rows"`
	HeaderMinMatches     int     `yaml:"header_min_matches"`
	MetadataRows         int     `yaml:"metadata_rows"`
	DetailedStartRow     int     `yaml:"detailed_start_row"`
	SummaryStartRow      int     `yaml:"summary_start_row"`
	TypeSniffRows        int     `yaml:"type_sniff_rows"`
	MinDesignationLength int     `yaml:"min_designation_length"`
	MismatchTolerance    float64 `yaml:"mismatch_tolerance"`
	PreviewRows          int     `yaml:"preview_rows"`
	EstimateColumns      int     `yaml:"estimate_columns"`
	AggregateKeyLength   int     `yaml:"aggregate_key_length"`
}

// DefaultDialect is the French-language DQE dialect the engine ships with.
func DefaultDialect() Dialect {
	return Dialect{
		HeaderTokens: []string{
			`(?i)DESIGANTION|DESIGNATION`,
			`(?i)QUANTITE|QTE|QTÉ`,
			`(?i)UNITE|U(?:[^\p{L}\p{N}_]|$)`,
			`(?i)MONTANT|TOTAL`,
		},
		SubtotalTokens: []string{
			`(?i)sous\s*total`,
			`(?i)total\s*\d`,
			`(?i)s/total`,
			`(?i)sous-total`,
		},
		TotalPattern: `(?i)^total\s*g[eé]n[eé]ral`,
		CategoryKeywords: []string{
			"NETTOYAGE", "RESEAUX", "TRAITEMENT", "ELEVATION", "MACONNERIES",
			"PLANCHER", "ESCALIERS", "ENDUITS", "REVETEMENT", "EQUIPEMENTS",
			"PEINTURE", "MENUISERIE", "ELECTRICITE", "PLOMBERIE", "ETANCHEITE",
			"CARRELAGE", "FAIENCE", "SANITAIRE", "CHAUFFAGE", "CLIMATISATION",
			"AERATION", "FONDATION", "TERRASSEMENT", "COUVERTURE", "CHARPENTE",
		},
		MetadataKeywords: []string{"libreville", "devis"},
		NotANumber:       "nan",
		ValidUnits: []string{
			"M2", "M²", "ML", "M3", "M³", "U", "KG", "L", "ENS", "FF", "PM",
			"M", "T", "HL", "LITRE", "UNITE", "FORFAIT", "ENSEMBLE",
		},
		UnitAliases: map[string]string{
			"M²":             "M2",
			"M³":             "M3",
			"METRE":          "M",
			"MÈTRE":          "M",
			"METRE CARRE":    "M2",
			"MÈTRE CARRÉ":    "M2",
			"METRE CUBE":     "M3",
			"MÈTRE CUBE":     "M3",
			"METRE LINEAIRE": "ML",
			"MÈTRE LINÉAIRE": "ML",
			"KILOGRAMME":     "KG",
			"TONNE":          "T",
			"LITRE":          "L",
			"ENSEMBLE":       "ENS",
			"FORFAIT":        "FF",
			"UNITE":          "U",
			"UNITÉ":          "U",
		},
		Levels: []LabeledPattern{
			{Label: "Sous-sol", Pattern: `(?i)sous[- ]?sol|ss(?:[^\p{L}\p{N}_]|$)|niveau -1`},
			{Label: "RDC", Pattern: `(?i)rdc|rez[- ]?de[- ]?chauss[ée]e|niveau 0`},
			{Label: "R+1", Pattern: `(?i)r\+1|1er étage|niveau 1|étage 1`},
			{Label: "R+2", Pattern: `(?i)r\+2|2[èe]me étage|niveau 2|étage 2`},
			{Label: "R+3", Pattern: `(?i)r\+3|3[èe]me étage|niveau 3|étage 3`},
			{Label: "Toiture", Pattern: `(?i)toiture|terrasses?(?:[^\p{L}\p{N}_]|$)|couverture`},
		},
		Dosage: []string{
			`(?i)(\d{3})\s*kg\s*/?\s*m[³3]`,
			`(?i)dosage\s*:?\s*(\d{3})`,
			`(?i)dos[ée]\s*[àa]\s*(\d{3})`,
		},
		Dimensions: []string{
			`(\d+)\s*[xX×]\s*(\d+)\s*[xX×]\s*(\d+)`,
			`(\d+)\s*[xX×]\s*(\d+)`,
			`[ØøD]\s*(\d+)`,
			`(\d+)\s*mm`,
		},
		Thickness: []string{
			`(?i)[ée]p(?:aisseur)?\.?\s*:?\s*(\d+)\s*(?:cm|mm)`,
			`(?i)(\d+)\s*cm\s*d['’]?[ée]paisseur`,
			`(?i)e\s*=\s*(\d+)\s*(?:cm|mm)`,
		},
		LotHeadings: []string{
			`(?i)^lot\s*[n°]*\s*\d+`,
			`(?i)^[ivxlcdm]+[.\s]+[^\d\s.]`,
			`(?i)^chapitre\s*\d+`,
		},
		LotNumber: `(?i)^lot\s*[n°]*\s*(\d+)\s*[:\-]?\s*(.*)$`,
		Metadata: MetadataPatterns{
			Date:         `(\d{1,2}[/\s]?[\p{L}\p{N}_]+[/\s]?\d{4})`,
			BuildingRef:  `(?i)BAT\s*:\s*(\d+[A-Z]?)`,
			DocumentRef:  `(?i)Devis\s*N°?\s*([\d\-/]+)`,
			BuildingType: `(?i)IMMEUBLE\s+([\p{L}\p{N}_]+)`,
		},
		Columns: map[string][]string{
			string(constants.RoleNumber):      {"n°", "no", "num", "ref", "poste"},
			string(constants.RoleDesignation): {"désignation", "designation", "libellé", "libelle", "description"},
			string(constants.RoleUnit):        {"u", "unité", "unite", "unit"},
			string(constants.RoleQuantity):    {"qté", "qte", "quantité", "quantite", "qty"},
			string(constants.RoleUnitPrice):   {"p.u", "pu", "prix unit", "unitaire"},
			string(constants.RoleTotalPrice):  {"total", "montant", "prix total", "pt"},
			string(constants.RoleLot):         {"lot", "chapitre"},
		},
		DocumentTypes: DocumentTypeHints{
			RecapName:        []string{"recap"},
			DetailedPrefixes: []string{"n°", "n "},
			SummaryName:      []string{"type", "achat", "pog", "ages"},
			DetailedContent:  []string{"prix unitaire", " pu "},
			SummaryContent:   []string{"quantite"},
		},
		RecapCode: `^\d+[AB]?$`,

		TextItemLine:       `(?i)^\s*(\d+(?:\.\d+)*)\s+(.+?)\s+(m[²³23l]?|u|kg|ml|l|ens|ft|ff)\s+(\d[\d ,.]*?)\s{2,}(\d[\d ,.]*?)\s{2,}(\d[\d ,.]*?)\s*$`,
		TextTrailingAmount: `^(.*?\S)\s{2,}(-?\d[\d ,.]*)\s*$`,
		Categories:         defaultCategories(),
		FallbackCategory:   string(constants.Miscellaneous),
		DefaultSection:     "NON CLASSE",
		Limits: Limits{
			HeaderSearchRows:     50,
			HeaderMinMatches:     2,
			MetadataRows:         30,
			DetailedStartRow:     25,
			SummaryStartRow:      10,
			TypeSniffRows:        50,
			MinDesignationLength: 3,
			MismatchTolerance:    constants.MismatchToleranceDefault,
			PreviewRows:          100,
			EstimateColumns:      5,
			AggregateKeyLength:   100,
		},
	}
}

func defaultCategories() []CategoryRule {
	return []CategoryRule{
		{Name: string(constants.Earthworks), Keywords: []string{
			"terrassement", "fouille", "remblai", "déblai", "excavation",
			"décapage", "nivellement", "vrd", "voirie", "assainissement",
			"tranchée", "compactage", "grave",
		}},
		{Name: string(constants.Concrete), Keywords: []string{
			"béton", "beton", "armé", "coffrage", "ferraillage", "armature",
			"poteau", "poutre", "dalle", "radier", "fondation", "semelle",
			"longrine", "chaînage", "linteau", "acrotère", "voile",
			"dosage", "ciment", "gravier", "sable", "granulat",
		}, SubCategories: []SubCategoryRule{
			{Name: constants.ConcreteReinforced, Keywords: []string{"armé", "ferraillage"}},
			{Name: constants.ConcreteBlinding, Keywords: []string{"propreté"}},
			{Name: constants.ConcreteFootings, Keywords: []string{"fondation", "semelle"}},
			{Name: constants.ConcreteSlabs, Keywords: []string{"dalle"}},
			{Name: constants.ConcreteColumns, Keywords: []string{"poteau"}},
			{Name: constants.ConcreteBeams, Keywords: []string{"poutre"}},
		}},
		{Name: string(constants.Masonry), Keywords: []string{
			"maçonnerie", "maconnerie", "parpaing", "agglo", "brique",
			"mur", "cloison", "élévation", "hourdis", "bloc", "moellon",
		}},
		{Name: string(constants.Framework), Keywords: []string{
			"charpente", "structure", "métallique", "acier", "ipn", "ipe",
			"hea", "heb", "tube", "cornière", "plat", "profilé", "ossature",
		}},
		{Name: string(constants.Roofing), Keywords: []string{
			"couverture", "toiture", "étanchéité", "tôle", "bac", "tuile",
			"zinc", "gouttière", "chéneau", "descente", "faîtage", "rive",
			"noue", "solin", "membrane", "bitume",
		}},
		{Name: string(constants.WoodJoinery), Keywords: []string{
			"menuiserie bois", "porte bois", "fenêtre bois", "placard",
			"parquet", "lambris", "escalier bois", "main courante bois",
		}},
		{Name: string(constants.AluminiumJoinery), Keywords: []string{
			"aluminium", "alu", "baie vitrée", "coulissant", "fenêtre alu",
			"porte alu", "mur rideau", "façade alu",
		}},
		{Name: string(constants.MetalJoinery), Keywords: []string{
			"menuiserie métallique", "porte métallique", "grille", "portail",
			"garde-corps", "rampe", "main courante métal",
		}},
		{Name: string(constants.Tiling), Keywords: []string{
			"carrelage", "faïence", "grès", "céramique", "sol", "plinthe",
			"mosaïque", "granito", "marbre sol", "pierre sol",
		}},
		{Name: string(constants.WallCoverings), Keywords: []string{
			"revêtement mural", "enduit", "crépi", "stuc", "papier peint",
			"lambris mural", "bardage", "habillage",
		}},
		{Name: string(constants.Plumbing), Keywords: []string{
			"plomberie", "sanitaire", "tuyau", "canalisation", "pvc",
			"wc", "lavabo", "douche", "baignoire", "robinet", "mitigeur",
			"évacuation", "alimentation", "eau chaude", "eau froide",
			"chauffe-eau", "cumulus", "réservoir",
		}},
		{Name: string(constants.Electrical), Keywords: []string{
			"électricité", "electricite", "câble", "fil", "gaine",
			"tableau", "disjoncteur", "prise", "interrupteur", "spot",
			"luminaire", "éclairage", "chemin de câble", "conduit",
		}},
		{Name: string(constants.AirConditioning), Keywords: []string{
			"climatisation", "clim", "ventilation", "vmc", "split",
			"gainable", "gaine", "diffuseur", "extraction", "soufflage",
		}},
		{Name: string(constants.Painting), Keywords: []string{
			"peinture", "impression", "sous-couche", "finition", "laque",
			"acrylique", "glycéro", "vernis", "lasure", "badigeon",
		}},
		{Name: string(constants.FalseCeilings), Keywords: []string{
			"faux plafond", "plafond suspendu", "dalle plafond", "ba13",
			"placo", "gyproc", "staff", "ossature suspendue",
		}},
		{Name: string(constants.Locksmithing), Keywords: []string{
			"serrurerie", "ferronnerie", "serrure", "poignée", "verrou",
			"ferme-porte", "gond", "paumelle", "crémone",
		}},
		{Name: string(constants.Glazing), Keywords: []string{
			"vitrerie", "verre", "vitrage", "miroir", "double vitrage",
			"feuilleté", "trempé", "sécurit",
		}},
	}
}
