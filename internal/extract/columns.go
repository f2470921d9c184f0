package extract

import (
	"strings"

	"github.com/joseph-ayodele/dqe-extractor/constants"
	"github.com/joseph-ayodele/dqe-extractor/internal/boq"
	"github.com/joseph-ayodele/dqe-extractor/internal/patterns"
)

// Mapper assigns column roles from header cell texts.
type Mapper struct {
	lib *patterns.Library
}

func NewMapper(lib *patterns.Library) *Mapper {
	if lib == nil {
		lib = patterns.Default()
	}
	return &Mapper{lib: lib}
}

// MapColumns maps each role to the first header whose lower-cased text
// contains one of the role keywords. A header equal to a keyword is preferred,
// so "Unité" wins over an earlier "Quantité" for the unit role. Roles without
// a match are left out.
func (mp *Mapper) MapColumns(headers []string) boq.ColumnMapping {
	lower := make([]string, len(headers))
	for i, h := range headers {
		lower[i] = strings.ToLower(strings.TrimSpace(h))
	}
	out := make(boq.ColumnMapping)
	for _, role := range constants.ColumnRoles {
		keywords := mp.lib.Columns[role]
		if idx, ok := findColumn(lower, keywords, func(h, kw string) bool { return h == kw }); ok {
			out[role] = idx
			continue
		}
		if idx, ok := findColumn(lower, keywords, strings.Contains); ok {
			out[role] = idx
		}
	}
	return out
}

// Usable reports whether a header-derived mapping can drive extraction.
func (mp *Mapper) Usable(m boq.ColumnMapping) bool {
	if _, ok := m.Index(constants.RoleDesignation); !ok {
		return false
	}
	_, unit := m.Index(constants.RoleUnit)
	_, qty := m.Index(constants.RoleQuantity)
	return unit || qty
}

// DefaultMapping is the fixed layout used when no usable header exists.
func DefaultMapping(t constants.DocumentType) boq.ColumnMapping {
	switch t {
	case constants.DocumentSummary:
		return boq.ColumnMapping{
			constants.RoleDesignation: 1,
			constants.RoleUnit:        2,
			constants.RoleQuantity:    3,
			constants.RoleTotalPrice:  4,
		}
	case constants.DocumentRecap:
		return boq.ColumnMapping{
			constants.RoleNumber:     0,
			constants.RoleTotalPrice: 1,
		}
	default:
		return boq.ColumnMapping{
			constants.RoleNumber:      0,
			constants.RoleDesignation: 1,
			constants.RoleUnit:        2,
			constants.RoleQuantity:    3,
			constants.RoleUnitPrice:   4,
			constants.RoleTotalPrice:  5,
		}
	}
}

func findColumn(headers, keywords []string, match func(h, kw string) bool) (int, bool) {
	for i, h := range headers {
		if h == "" {
			continue
		}
		for _, kw := range keywords {
			if match(h, kw) {
				return i, true
			}
		}
	}
	return 0, false
}
