package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/joseph-ayodele/dqe-extractor/constants"
	"github.com/joseph-ayodele/dqe-extractor/internal/boq"
)

func TestFindHeaderRow(t *testing.T) {
	l := NewLocator(nil)
	g := boq.NewGrid("N° 1", [][]string{
		{"REPUBLIQUE GABONAISE"},
		{"Devis N° 2024-118"},
		{"N°", "DESIGNATION", "U", "QTE", "P.U", "MONTANT"},
		{"1", "Béton", "M3", "1", "1", "1"},
	})
	idx, ok := l.FindHeaderRow(g)
	assert.True(t, ok)
	assert.Equal(t, 2, idx)
}

func TestFindHeaderRowNeedsTwoPatterns(t *testing.T) {
	l := NewLocator(nil)
	g := boq.NewGrid("s", [][]string{
		{"TOTAL GENERAL"},
		{"DESIGNATION des ouvrages"},
	})
	_, ok := l.FindHeaderRow(g)
	assert.False(t, ok)
}

func TestFindHeaderRowBound(t *testing.T) {
	rows := make([][]string, 60)
	for i := range rows {
		rows[i] = []string{"x"}
	}
	rows[55] = []string{"Désignation", "Quantité", "Unité", "Montant"}
	_, ok := NewLocator(nil).FindHeaderRow(boq.NewGrid("s", rows))
	assert.False(t, ok, "headers beyond the search bound are ignored")
}

// The date and building type keep the first match while the building and
// document references keep the last one. This asymmetry is deliberate and
// pinned here until the owners of the source documents confirm it.
func TestHarvestMetadataFirstAndLastMatchPolicies(t *testing.T) {
	g := boq.NewGrid("N° 1", [][]string{
		{"IMMEUBLE LOGEMENTS BAT : 12A", "Libreville le 12 mars 2024"},
		{"Devis N° 118/2024"},
		{"IMMEUBLE BUREAUX BAT : 14B", "Libreville le 30 avril 2025"},
		{"Devis N° 200-7"},
	})
	md := NewLocator(nil).HarvestMetadata(g, 30)

	assert.Equal(t, "12 mars 2024", md.Date, "date: first match wins")
	assert.Equal(t, "LOGEMENTS", md.BuildingType, "building type: first match wins")
	assert.Equal(t, "14B", md.BuildingRef, "building ref: last match wins")
	assert.Equal(t, "200-7", md.DocumentRef, "document ref: last match wins")
}

func TestHarvestMetadataRespectsBound(t *testing.T) {
	g := boq.NewGrid("s", [][]string{
		{"BAT : 1"},
		{"BAT : 2"},
	})
	assert.Equal(t, "1", NewLocator(nil).HarvestMetadata(g, 1).BuildingRef)
}

func TestMapColumns(t *testing.T) {
	mp := NewMapper(nil)

	m := mp.MapColumns([]string{"N°", "DESIGNATION", "U", "QTE", "P.U", "MONTANT"})
	assert.Equal(t, boq.ColumnMapping{
		constants.RoleNumber:      0,
		constants.RoleDesignation: 1,
		constants.RoleUnit:        2,
		constants.RoleQuantity:    3,
		constants.RoleUnitPrice:   4,
		constants.RoleTotalPrice:  5,
	}, m)
	assert.True(t, mp.Usable(m))

	m = mp.MapColumns([]string{"Désignation", "Quantité", "Unité", "Prix unitaire", "Prix total"})
	assert.Equal(t, 0, m[constants.RoleDesignation])
	assert.Equal(t, 1, m[constants.RoleQuantity])
	assert.Equal(t, 2, m[constants.RoleUnit], "an exact header beats an earlier substring")
	assert.Equal(t, 3, m[constants.RoleUnitPrice])
	assert.Equal(t, 4, m[constants.RoleTotalPrice])
	_, ok := m.Index(constants.RoleLot)
	assert.False(t, ok, "unmatched roles stay absent")

	m = mp.MapColumns([]string{"N°", "Désignation", "U", "Qté", "Prix unitaire", "PU", "Montant"})
	assert.Equal(t, 5, m[constants.RoleUnitPrice], "an exact keyword header wins over an earlier substring match")
	assert.Equal(t, 6, m[constants.RoleTotalPrice])

	m = mp.MapColumns([]string{"Désignation", "Unité de mesure", "Quantité", "Prix unitaire"})
	assert.Equal(t, 1, m[constants.RoleUnit], "without an exact header the first substring match is kept")
	assert.Equal(t, 3, m[constants.RoleUnitPrice])

	assert.False(t, mp.Usable(mp.MapColumns([]string{"Libellé", "Montant"})))
}

func TestDefaultMapping(t *testing.T) {
	d := DefaultMapping(constants.DocumentDetailed)
	assert.Equal(t, 1, d[constants.RoleDesignation])
	assert.Equal(t, 5, d[constants.RoleTotalPrice])
	assert.Equal(t, d, DefaultMapping(constants.DocumentUnknown))

	s := DefaultMapping(constants.DocumentSummary)
	assert.Equal(t, 4, s[constants.RoleTotalPrice])
	_, ok := s.Index(constants.RoleUnitPrice)
	assert.False(t, ok)
}
