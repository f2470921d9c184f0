package patterns

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/dqe-extractor/constants"
	"github.com/joseph-ayodele/dqe-extractor/internal/common"
)

func TestDefaultCompiles(t *testing.T) {
	lib := Default()
	require.NotNil(t, lib)

	assert.Len(t, lib.HeaderTokens, 4)
	assert.Len(t, lib.CategoryKeywords, 25)
	assert.Equal(t, "Divers & Imprévus", lib.FallbackCategory)
	assert.Equal(t, 50, lib.Limits.HeaderSearchRows)
	assert.Equal(t, 30, lib.Limits.MetadataRows)
	assert.Equal(t, 25, lib.Limits.DetailedStartRow)
	assert.Equal(t, 10, lib.Limits.SummaryStartRow)
	assert.Equal(t, 1000.0, lib.Limits.MismatchTolerance)
	assert.Same(t, lib, Default())

	_, ok := lib.ValidUnits["M3"]
	assert.True(t, ok)
	assert.Equal(t, "M2", lib.UnitAliases["M²"])
}

func TestDefaultCategoryOrder(t *testing.T) {
	names := Default().CategoryNames()
	require.NotEmpty(t, names)
	assert.Equal(t, string(constants.Earthworks), names[0])
	assert.Equal(t, string(constants.Concrete), names[1])
	assert.Len(t, Default().Categories[1].SubCategories, 6)
}

func TestLotHeadingPatterns(t *testing.T) {
	lib := Default()
	matches := func(s string) bool {
		for _, re := range lib.LotHeadings {
			if re.MatchString(s) {
				return true
			}
		}
		return false
	}

	assert.True(t, matches("LOT 1 : GROS OEUVRE"))
	assert.True(t, matches("Lot n°12 - Electricité"))
	assert.True(t, matches("II. MACONNERIE"))
	assert.True(t, matches("Chapitre 3"))
	assert.False(t, matches("I.1"), "item codes are not roman headings")
	assert.False(t, matches("GROS OEUVRE"))
	assert.False(t, matches("DIVERS"))

	m := lib.LotNumber.FindStringSubmatch("LOT 2: Plomberie sanitaire")
	require.Len(t, m, 3)
	assert.Equal(t, "2", m[1])
	assert.Equal(t, "Plomberie sanitaire", m[2])
}

func TestParseOverridesDefaults(t *testing.T) {
	lib, err := Parse([]byte(`
fallback_category: Autres
default_section: SECTION
unit_aliases:
  PIECE: U
limits:
  header_search_rows: 20
categories:
  - name: Peinture
    keywords: [PEINTURE, Enduit]
`))
	require.NoError(t, err)

	assert.Equal(t, "Autres", lib.FallbackCategory)
	assert.Equal(t, "SECTION", lib.DefaultSection)
	assert.Equal(t, 20, lib.Limits.HeaderSearchRows)
	assert.Equal(t, 30, lib.Limits.MetadataRows, "unset limits keep their default")
	assert.Equal(t, "U", lib.UnitAliases["PIECE"])
	assert.Equal(t, "M2", lib.UnitAliases["M²"], "maps are merged")
	require.Len(t, lib.Categories, 1, "lists are replaced")
	assert.Equal(t, []string{"peinture", "enduit"}, lib.Categories[0].Keywords)
}

func TestParseEmptyDocumentIsDefault(t *testing.T) {
	lib, err := Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, Default().CategoryNames(), lib.CategoryNames())
}

func TestParseRejectsBadDialects(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{name: "bad regexp", yaml: "dosage: ['(\\d{3']"},
		{name: "unknown field", yaml: "not_a_field: 1"},
		{name: "unknown role", yaml: "columns:\n  colour: [rouge]"},
		{name: "no categories", yaml: "categories: []"},
		{name: "bad limit", yaml: "limits:\n  header_search_rows: 0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			require.Error(t, err)
			assert.True(t, common.IsCode(err, common.CodeConfig))
			assert.ErrorIs(t, err, common.ErrConfig)
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dialect.yaml")
	require.NoError(t, os.WriteFile(path, []byte("default_section: AUTRES\n"), 0o600))

	lib, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "AUTRES", lib.DefaultSection)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, common.ErrConfig)
}

func TestTextLinePatterns(t *testing.T) {
	lib := Default()

	m := lib.TextItemLine.FindStringSubmatch("1.2   Béton armé pour poteaux    m3    12,5    150 000    1 875 000")
	require.Len(t, m, 7)
	assert.Equal(t, []string{"1.2", "Béton armé pour poteaux", "m3", "12,5", "150 000", "1 875 000"}, m[1:])

	assert.Nil(t, lib.TextItemLine.FindStringSubmatch("LOT 2 : GROS OEUVRE"))

	m = lib.TextTrailingAmount.FindStringSubmatch("SOUS-TOTAL LOT 2        3 750 000")
	require.Len(t, m, 3)
	assert.Equal(t, "SOUS-TOTAL LOT 2", m[1])
	assert.Equal(t, "3 750 000", m[2])
	assert.Nil(t, lib.TextTrailingAmount.FindStringSubmatch("TERRASSEMENT GENERAL"))
}
