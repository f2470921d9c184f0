package llm

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"
)

var (
	elementText = []string{
		"numero", "designation", "categorie", "sous_categorie", "unite",
		"lot_numero", "lot_nom", "niveau", "dosage", "dimensions", "epaisseur",
	}
	elementAmounts = []string{"quantite", "prix_unitaire", "prix_total"}
	lotText        = []string{"numero", "nom"}
	lotAmounts     = []string{"total"}
)

// SanitizeDraftJSON makes a model reply fit the draft schema without losing
// usable data:
// - drops nulls, empty strings and unknown keys
// - turns numbers given for text fields (lot 2, code 1.1) into strings
// - drops amounts of unexpected types and categories outside the enum
// - drops list entries that are not objects
// The returned list names every dropped or rewritten field.
func SanitizeDraftJSON(raw []byte, categories []string, logger *slog.Logger) ([]byte, []string, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, nil, fmt.Errorf("sanitize: decode: %w", err)
	}

	var dropped []string
	note := func(path, why string) { dropped = append(dropped, path+"("+why+")") }

	for k := range m {
		switch k {
		case "nb_pages", "total_general", "devise", "elements", "lots":
		default:
			delete(m, k)
			note(k, "unknown")
		}
	}

	if v, ok := m["nb_pages"]; ok {
		if n, valid := pageCount(v); valid {
			m["nb_pages"] = n
		} else {
			delete(m, "nb_pages")
			if v != nil {
				note("nb_pages", "type")
			}
		}
	}

	cleanAmounts(m, []string{"total_general"}, "", note)
	cleanText(m, []string{"devise"}, "", note)
	if v, ok := m["devise"].(string); ok {
		m["devise"] = strings.ToUpper(v)
	}

	m["elements"] = cleanList(m["elements"], "elements", note, func(obj map[string]any, path string) {
		cleanAmounts(obj, elementAmounts, path, note)
		cleanText(obj, elementText, path, note)
		if c, ok := obj["categorie"].(string); ok && len(categories) > 0 && !slices.Contains(categories, c) {
			delete(obj, "categorie")
			note(path+".categorie", "enum")
		}
		dropUnknown(obj, append(slices.Clone(elementText), elementAmounts...), path, note)
	})
	if _, ok := m["lots"]; ok {
		m["lots"] = cleanList(m["lots"], "lots", note, func(obj map[string]any, path string) {
			cleanAmounts(obj, lotAmounts, path, note)
			cleanText(obj, lotText, path, note)
			dropUnknown(obj, append(slices.Clone(lotText), lotAmounts...), path, note)
		})
	}

	out, err := json.Marshal(m)
	if err != nil {
		return nil, dropped, fmt.Errorf("sanitize: encode: %w", err)
	}
	if len(dropped) > 0 {
		logger.Warn("llm.extract.sanitize", "dropped", dropped)
	}
	return out, dropped, nil
}

func pageCount(v any) (int, bool) {
	switch t := v.(type) {
	case float64:
		if t >= 0 && t == float64(int(t)) {
			return int(t), true
		}
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(t)); err == nil && n >= 0 {
			return n, true
		}
	}
	return 0, false
}

func cleanList(v any, path string, note func(string, string), clean func(map[string]any, string)) []any {
	list, ok := v.([]any)
	if !ok {
		if v != nil {
			note(path, "type")
		}
		return []any{}
	}
	out := make([]any, 0, len(list))
	for i, item := range list {
		obj, ok := item.(map[string]any)
		itemPath := fmt.Sprintf("%s[%d]", path, i)
		if !ok {
			note(itemPath, "type")
			continue
		}
		clean(obj, itemPath)
		out = append(out, obj)
	}
	return out
}

func cleanText(obj map[string]any, keys []string, path string, note func(string, string)) {
	for _, k := range keys {
		v, ok := obj[k]
		if !ok {
			continue
		}
		switch t := v.(type) {
		case string:
			if s := strings.TrimSpace(t); s == "" || strings.EqualFold(s, "null") {
				delete(obj, k)
				note(join(path, k), "empty")
			} else {
				obj[k] = s
			}
		case float64:
			obj[k] = strconv.FormatFloat(t, 'f', -1, 64)
		case nil:
			delete(obj, k)
		default:
			delete(obj, k)
			note(join(path, k), "type")
		}
	}
}

func cleanAmounts(obj map[string]any, keys []string, path string, note func(string, string)) {
	for _, k := range keys {
		v, ok := obj[k]
		if !ok {
			continue
		}
		switch t := v.(type) {
		case float64:
		case string:
			if s := strings.TrimSpace(t); s == "" || strings.EqualFold(s, "null") {
				delete(obj, k)
			} else {
				obj[k] = s
			}
		case nil:
			delete(obj, k)
		default:
			delete(obj, k)
			note(join(path, k), "type")
		}
	}
}

func dropUnknown(obj map[string]any, allowed []string, path string, note func(string, string)) {
	for k := range obj {
		if !slices.Contains(allowed, k) {
			delete(obj, k)
			note(join(path, k), "unknown")
		}
	}
}

func join(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}
