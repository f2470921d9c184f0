package llm

// BuildDraftJSONSchema returns a JSON-Schema (draft 2020-12 subset) as a generic map.
// It is sent to the model as the response contract and used locally to validate.
func BuildDraftJSONSchema(categories []string) map[string]any {
	category := map[string]any{"type": "string"}
	if len(categories) > 0 {
		category["enum"] = categories
	}

	element := map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"required":             []string{"designation"},
		"properties": map[string]any{
			"numero":         textProp(),
			"designation":    map[string]any{"type": "string", "minLength": 1},
			"categorie":      category,
			"sous_categorie": textProp(),
			"unite":          textProp(),
			"quantite":       amountProp(),
			"prix_unitaire":  amountProp(),
			"prix_total":     amountProp(),
			"lot_numero":     textProp(),
			"lot_nom":        textProp(),
			"niveau":         textProp(),
			"dosage":         textProp(),
			"dimensions":     textProp(),
			"epaisseur":      textProp(),
		},
	}
	lot := map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"numero": textProp(),
			"nom":    textProp(),
			"total":  amountProp(),
		},
	}

	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"required":             []string{"elements"},
		"properties": map[string]any{
			"nb_pages":      map[string]any{"type": "integer", "minimum": 0},
			"total_general": amountProp(),
			"devise":        textProp(),
			"elements":      map[string]any{"type": "array", "items": element},
			"lots":          map[string]any{"type": "array", "items": lot},
		},
	}
}

func textProp() map[string]any {
	return map[string]any{"type": "string"}
}

// amountProp accepts numbers and formatted strings ("1 250 000,50").
func amountProp() map[string]any {
	return map[string]any{"type": []string{"number", "string"}}
}
