package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/dqe-extractor/constants"
	"github.com/joseph-ayodele/dqe-extractor/internal/boq"
	"github.com/joseph-ayodele/dqe-extractor/internal/common"
)

func sampleDocs() []boq.Document {
	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	return []boq.Document{{
		Name:     "N° 1",
		Currency: constants.DefaultCurrency,
		Total:    1_875_000,
		Source:   boq.Source{Path: "dqe.xlsx", Hash: "abcd", Mode: constants.ModeLocal, ExtractedAt: at},
		Categories: []boq.Category{{Name: "BETON ARME", Items: []boq.Item{{
			Code:        "1.1",
			Designation: "Béton armé dosé à 350 kg/m³",
			Category:    string(constants.Concrete),
			SubCategory: constants.ConcreteReinforced,
			Unit:        "M3",
			Quantity:    12.5,
			UnitPrice:   boq.Float(150000),
			TotalPrice:  boq.Float(1_875_000),
			LotNumber:   "2",
			LotName:     "GROS OEUVRE",
			Level:       "RDC",
			Attributes:  boq.Attributes{Dosage: "350 kg/m³"},
		}, {
			Designation: "Nettoyage",
			Unit:        "FF",
		}}}},
	}}
}

func TestNewReport(t *testing.T) {
	r := NewReport(sampleDocs(), []string{"w"})

	assert.Equal(t, "dqe.xlsx", r.File)
	assert.Equal(t, "abcd", r.Hash)
	assert.Equal(t, constants.ModeLocal, r.Mode)
	assert.Equal(t, 2, r.ItemCount)
	assert.InDelta(t, 1_875_000, r.Total, 0.001)
	assert.Len(t, r.Materials, 2)
	require.Len(t, r.Summaries.ByCategory, 2)
	assert.Equal(t, "BETON ARME", r.Summaries.ByCategory[1].Key, "items without category fall under the section name")

	empty := NewReport(nil, nil)
	assert.NotNil(t, empty.Documents)
	assert.Equal(t, constants.DefaultCurrency, empty.Currency)
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleDocs()...))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, Columns, records[0])
	assert.Equal(t, []string{
		"1.1", "Béton armé dosé à 350 kg/m³", string(constants.Concrete), constants.ConcreteReinforced,
		"M3", "12.5", "150000", "1875000", "2", "GROS OEUVRE", "RDC", "350 kg/m³", "", "",
	}, records[1])
	assert.Equal(t, "", records[2][6], "missing prices stay empty")
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, NewReport(sampleDocs(), nil)))
	assert.Contains(t, buf.String(), "Béton & Gros œuvre", "no escaping of non-ASCII text")

	var back map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &back))
	assert.EqualValues(t, 2, back["item_count"])
}

func TestXLSX(t *testing.T) {
	b, err := XLSX(NewReport(sampleDocs(), nil))
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(b))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	assert.Equal(t, []string{"Items", "Materials", "Summary"}, f.GetSheetList())
	rows, err := f.GetRows("Items")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "feuille", rows[0][0])
	assert.Equal(t, "N° 1", rows[1][0])
	assert.Equal(t, "1.1", rows[1][1])

	mats, err := f.GetRows("Materials")
	require.NoError(t, err)
	assert.Len(t, mats, 3)
}

func TestServiceWriteFile(t *testing.T) {
	s := NewService(nil)
	dir := t.TempDir()

	for _, name := range []string{"out.json", "out.csv", "out.xlsx"} {
		require.NoError(t, s.WriteFile(filepath.Join(dir, name), NewReport(sampleDocs(), nil)), name)
	}

	err := s.WriteFile(filepath.Join(dir, "out.txt"), Report{})
	assert.ErrorIs(t, err, common.ErrUnsupportedFormat)
}
