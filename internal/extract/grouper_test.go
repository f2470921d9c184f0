package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/dqe-extractor/constants"
	"github.com/joseph-ayodele/dqe-extractor/internal/boq"
)

func classified(typ constants.LineType, cells ...string) ClassifiedRow {
	r := ClassifiedRow{Row: boq.NewRow(cells...), Type: typ}
	if typ == constants.LineCategory && len(cells) > 1 {
		r.Heading = cells[1]
	}
	return r
}

func testDeps() GroupDeps {
	return GroupDeps{
		Mapping:        scenarioMapping(),
		DefaultSection: "NON CLASSE",
		BuildItem: func(r ClassifiedRow, lot Lot, level string) (boq.Item, []string) {
			d, _ := r.Row.Cell(1)
			return boq.Item{Designation: d, LotNumber: lot.Number, LotName: lot.Name, Level: level}, nil
		},
		Level: NewEngine(nil).Attributes().Level,
	}
}

func TestGroupTransitions(t *testing.T) {
	rows := []ClassifiedRow{
		classified(constants.LineCategory, "", "TERRASSEMENT"),
		classified(constants.LineCategory, "", "FOUILLES"),
		classified(constants.LineItem, "", "Fouille en rigole", "M3", "10"),
		classified(constants.LineItem, "", "Remblai", "M3", "4"),
		classified(constants.LineSubtotal, "", "Sous total", "", "", "", "12 000"),
		classified(constants.LineItem, "", "Evacuation", "M3", "2"),
		classified(constants.LineMetadata, "", "Libreville"),
		classified(constants.LineTotal, "", "TOTAL GENERAL", "", "", "", "99 000"),
		classified(constants.LineCategory, "", "BETON"),
		classified(constants.LineItem, "", "Béton de propreté", "M3", "1"),
	}

	res := Group(rows, testDeps())
	require.Len(t, res.Categories, 3)

	assert.Equal(t, "FOUILLES", res.Categories[0].Name, "empty accumulators are replaced, never flushed")
	assert.Len(t, res.Categories[0].Items, 2)
	require.NotNil(t, res.Categories[0].Subtotal)
	assert.Equal(t, 12000.0, *res.Categories[0].Subtotal)

	assert.Equal(t, "NON CLASSE", res.Categories[1].Name, "items after a subtotal land in the default section")
	assert.Len(t, res.Categories[1].Items, 1)
	assert.Nil(t, res.Categories[1].Subtotal)

	assert.Equal(t, "BETON", res.Categories[2].Name, "trailing accumulator is flushed")
	assert.Equal(t, "BETON", res.Categories[2].Items[0].Section)

	require.NotNil(t, res.DeclaredTotal)
	assert.Equal(t, 99000.0, *res.DeclaredTotal)
	assert.Empty(t, res.Warnings)
}

func TestGroupLotIsStickyAcrossSections(t *testing.T) {
	lot := &Lot{Number: "1", Name: "Gros oeuvre RDC"}
	rows := []ClassifiedRow{
		{Lot: lot},
		classified(constants.LineItem, "", "Semelles", "M3", "3"),
		classified(constants.LineCategory, "", "ETAGE R+1"),
		classified(constants.LineItem, "", "Poteaux", "M3", "2"),
	}
	res := Group(rows, testDeps())
	require.Len(t, res.Categories, 2)

	first := res.Categories[0].Items[0]
	assert.Equal(t, "1", first.LotNumber)
	assert.Equal(t, "RDC", first.Level)

	second := res.Categories[1].Items[0]
	assert.Equal(t, "1", second.LotNumber, "lot persists across sections")
	assert.Equal(t, "R+1", second.Level)
}

func TestGroupHeadingLevelIsScopedToItsSection(t *testing.T) {
	rows := []ClassifiedRow{
		classified(constants.LineCategory, "", "COUVERTURE"),
		classified(constants.LineItem, "", "Tôle bac acier", "M2", "120"),
		classified(constants.LineCategory, "", "ELECTRICITE"),
		classified(constants.LineItem, "", "Câble 3x2.5", "ML", "300"),
		{Lot: &Lot{Number: "2", Name: "Second oeuvre RDC"}},
		classified(constants.LineItem, "", "Carrelage", "M2", "40"),
		{Lot: &Lot{Number: "3", Name: "Menuiserie"}},
		classified(constants.LineCategory, "", "PORTES"),
		classified(constants.LineItem, "", "Porte", "U", "4"),
	}
	res := Group(rows, testDeps())
	require.Len(t, res.Categories, 3)

	assert.Equal(t, "Toiture", res.Categories[0].Items[0].Level)
	assert.Equal(t, "ELECTRICITE", res.Categories[1].Name)
	assert.Empty(t, res.Categories[1].Items[0].Level, "section level does not leak into the next section")
	assert.Equal(t, "RDC", res.Categories[1].Items[1].Level)

	require.Len(t, res.Categories[2].Items, 1)
	assert.Empty(t, res.Categories[2].Items[0].Level, "a lot without a level clears the previous one")
}

func TestGroupEmptySubtotalAndBadAmounts(t *testing.T) {
	rows := []ClassifiedRow{
		classified(constants.LineCategory, "", "PEINTURE"),
		classified(constants.LineSubtotal, "", "Sous total", "", "", "", "n/a"),
		classified(constants.LineTotal, "", "TOTAL GENERAL", "", "", "", "abc"),
	}
	res := Group(rows, testDeps())
	assert.Empty(t, res.Categories)
	assert.Nil(t, res.DeclaredTotal)
	assert.Len(t, res.Warnings, 2)
}

func TestGroupNeverLosesItems(t *testing.T) {
	types := []constants.LineType{
		constants.LineItem, constants.LineCategory, constants.LineItem, constants.LineItem,
		constants.LineSubtotal, constants.LineEmpty, constants.LineItem, constants.LineTotal,
		constants.LineCategory, constants.LineCategory, constants.LineItem, constants.LineMetadata,
		constants.LineSubtotal, constants.LineSubtotal, constants.LineItem,
	}
	var rows []ClassifiedRow
	want := 0
	for i, typ := range types {
		r := classified(typ, "", "LIGNE", "U", "1", "1", "1")
		r.Index = i
		if typ == constants.LineItem {
			want++
		}
		rows = append(rows, r)
	}

	res := Group(rows, testDeps())
	got := 0
	for _, c := range res.Categories {
		assert.NotEmpty(t, c.Items)
		got += len(c.Items)
	}
	assert.Equal(t, want, got)
}
