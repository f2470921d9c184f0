package categorize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/dqe-extractor/constants"
	"github.com/joseph-ayodele/dqe-extractor/internal/patterns"
)

func TestCategorize(t *testing.T) {
	e := New(nil)
	tests := []struct {
		designation string
		category    constants.Category
		sub         string
	}{
		{"Béton dosé à 350kg/m³ pour semelles", constants.Concrete, constants.ConcreteFootings},
		{"Béton armé pour poteaux", constants.Concrete, constants.ConcreteReinforced},
		{"Béton de propreté", constants.Concrete, constants.ConcreteBlinding},
		{"Fouille en rigole et remblai", constants.Earthworks, ""},
		{"Peinture acrylique sur murs intérieurs", constants.Painting, ""},
		{"Fourniture et pose de lavabo avec robinet", constants.Plumbing, ""},
		{"Prestation sans mot clé", constants.Miscellaneous, ""},
	}
	for _, tt := range tests {
		t.Run(tt.designation, func(t *testing.T) {
			cat, sub := e.Categorize(tt.designation)
			assert.Equal(t, string(tt.category), cat)
			assert.Equal(t, tt.sub, sub)
		})
	}
}

func TestCategorizeTieKeepsEarliestCategory(t *testing.T) {
	// "gaine" scores one point for both Electrical and AirConditioning;
	// Electrical is enumerated first.
	e := New(nil)
	for i := 0; i < 10; i++ {
		cat, _ := e.Categorize("Gaine")
		assert.Equal(t, string(constants.Electrical), cat)
	}
}

func TestCategorizeTieOrderFollowsLibrary(t *testing.T) {
	d := patterns.DefaultDialect()
	d.Categories = []patterns.CategoryRule{
		{Name: "Second", Keywords: []string{"tube"}},
		{Name: "First", Keywords: []string{"tube"}},
	}
	lib, err := patterns.Compile(d)
	require.NoError(t, err)

	cat, sub := New(lib).Categorize("TUBE acier")
	assert.Equal(t, "Second", cat)
	assert.Empty(t, sub)
}

func TestResolve(t *testing.T) {
	e := New(nil)

	cat, _ := e.Resolve(string(constants.Masonry), "Peinture")
	assert.Equal(t, string(constants.Masonry), cat, "known labels are kept")

	cat, sub := e.Resolve("gros oeuvre", "Dalle pleine en béton")
	assert.Equal(t, string(constants.Concrete), cat)
	assert.Equal(t, constants.ConcreteSlabs, sub)

	cat, _ = e.Resolve("Mobilier", "Fourniture de carrelage grès")
	assert.Equal(t, string(constants.Tiling), cat)
}

func TestNamesAndKnown(t *testing.T) {
	e := New(nil)
	names := e.Names()
	assert.Equal(t, constants.AsStringSlice(), names)
	assert.True(t, e.Known(string(constants.Miscellaneous)))
	assert.False(t, e.Known("Mobilier"))
}
