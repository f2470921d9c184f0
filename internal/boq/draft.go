package boq

// DraftRecord is one line as returned by an external inference service. The
// JSON field names follow the French response format the service is prompted
// with. Numeric fields arrive either as JSON numbers or as formatted strings,
// so they are kept untyped until the merger coerces them.
type DraftRecord struct {
	Code        string `json:"numero,omitempty"`
	Designation string `json:"designation"`
	Category    string `json:"categorie,omitempty"`
	SubCategory string `json:"sous_categorie,omitempty"`
	Unit        string `json:"unite,omitempty"`
	Quantity    any    `json:"quantite,omitempty"`
	UnitPrice   any    `json:"prix_unitaire,omitempty"`
	TotalPrice  any    `json:"prix_total,omitempty"`
	LotNumber   string `json:"lot_numero,omitempty"`
	LotName     string `json:"lot_nom,omitempty"`
	Level       string `json:"niveau,omitempty"`
	Dosage      string `json:"dosage,omitempty"`
	Dimensions  string `json:"dimensions,omitempty"`
	Thickness   string `json:"epaisseur,omitempty"`
}

// DraftLot is a lot heading with its declared amount.
type DraftLot struct {
	Number string `json:"numero"`
	Name   string `json:"nom"`
	Total  any    `json:"total,omitempty"`
}

// Draft is the unvalidated document produced by the inference path.
type Draft struct {
	Pages         int           `json:"nb_pages,omitempty"`
	DeclaredTotal any           `json:"total_general,omitempty"`
	Currency      string        `json:"devise,omitempty"`
	Records       []DraftRecord `json:"elements"`
	Lots          []DraftLot    `json:"lots,omitempty"`
}
