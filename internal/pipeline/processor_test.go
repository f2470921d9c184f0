package pipeline

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/dqe-extractor/constants"
	"github.com/joseph-ayodele/dqe-extractor/internal/boq"
	"github.com/joseph-ayodele/dqe-extractor/internal/common"
	"github.com/joseph-ayodele/dqe-extractor/internal/extract"
	"github.com/joseph-ayodele/dqe-extractor/internal/llm"
	"github.com/joseph-ayodele/dqe-extractor/internal/repository"
)

type fakeDrafts struct {
	mu    sync.Mutex
	calls []llm.DraftRequest
	draft llm.DraftDocument
	err   error
}

func (f *fakeDrafts) ExtractDraft(_ context.Context, req llm.DraftRequest) (llm.DraftDocument, []byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, req)
	return f.draft, []byte(`{}`), f.err
}

type fakeStore struct {
	repository.ExtractionRepository
	saved []repository.Extraction
	err   error
}

func (f *fakeStore) Save(_ context.Context, e repository.Extraction) error {
	if f.err != nil {
		return f.err
	}
	f.saved = append(f.saved, e)
	return nil
}

var detailedRows = [][]string{
	{"DEVIS QUANTITATIF ET ESTIMATIF"},
	{"Devis N° 2024-07"},
	{"N°", "DESIGNATION", "U", "QTE", "P.U", "MONTANT"},
	{"LOT 1 : GROS OEUVRE"},
	{"", "TERRASSEMENT"},
	{"1.1", "Fouille en rigole", "m3", "12,5", "4 000", ""},
	{"1.2", "Remblai compacté", "M3", "8", "2 500", "20 000"},
	{"", "TOTAL GENERAL HT", "", "", "", "70 000"},
}

func writeWorkbook(t *testing.T, sheets map[string][][]string, order ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dqe.xlsx")
	f := excelize.NewFile()
	for i, name := range order {
		if i == 0 {
			require.NoError(t, f.SetSheetName("Sheet1", name))
		} else {
			_, err := f.NewSheet(name)
			require.NoError(t, err)
		}
		for r, row := range sheets[name] {
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			require.NoError(t, err)
			values := make([]any, len(row))
			for c, v := range row {
				values[c] = v
			}
			require.NoError(t, f.SetSheetRow(name, cell, &values))
		}
	}
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())
	return path
}

func aiDraft() llm.DraftDocument {
	return llm.DraftDocument{
		Currency: "FCFA",
		Records: []boq.DraftRecord{
			{Designation: "Peinture acrylique sur murs", Unit: "m2", Quantity: 10.0, UnitPrice: "1 500"},
		},
	}
}

func TestProcessFileLocalWarningsNameTheSheet(t *testing.T) {
	rows := append([][]string{}, detailedRows[:len(detailedRows)-1]...)
	rows = append(rows, []string{"", "TOTAL GENERAL HT", "", "", "", "99 000"})
	path := writeWorkbook(t, map[string][][]string{"N° 3": rows}, "N° 3")

	res, err := NewProcessor(Deps{}).ProcessFile(context.Background(), path, Options{})
	require.NoError(t, err)
	require.Len(t, res.Results, 1)
	assert.Contains(t, res.Results[0].Warnings, "N° 3: total mismatch: computed 70000.00, declared 99000.00")
}

func TestProcessFileLocal(t *testing.T) {
	path := writeWorkbook(t, map[string][][]string{"N° 12 BAT A": detailedRows}, "N° 12 BAT A")
	store := &fakeStore{}
	p := NewProcessor(Deps{Store: store})

	res, err := p.ProcessFile(context.Background(), path, Options{})
	require.NoError(t, err)

	assert.Equal(t, constants.XLSX, res.Format)
	assert.Len(t, res.Hash, 16)
	require.Len(t, res.Results, 1)

	doc := res.Results[0].Document
	assert.Equal(t, 2, doc.ItemCount())
	assert.Equal(t, 70000.0, doc.Total)
	assert.Equal(t, constants.ModeLocal, doc.Source.Mode)
	assert.Equal(t, path, doc.Source.Path)
	assert.Equal(t, res.Hash, doc.Source.Hash)
	assert.NotEqual(t, "00000000-0000-0000-0000-000000000000", doc.ID.String())
	assert.False(t, doc.Source.ExtractedAt.IsZero())

	require.Len(t, store.saved, 1)
	assert.Equal(t, doc.ID, store.saved[0].ID)
	assert.Len(t, res.Documents(), 1)
}

func TestProcessFileSelection(t *testing.T) {
	path := writeWorkbook(t, map[string][][]string{
		"N° 12 BAT A": detailedRows,
		"N° 13 BAT B": detailedRows,
	}, "N° 12 BAT A", "N° 13 BAT B")
	p := NewProcessor(Deps{})

	res, err := p.ProcessFile(context.Background(), path, Options{Selection: extract.Selection{Exclude: []string{"N° 12 BAT A"}}})
	require.NoError(t, err)
	require.Len(t, res.Results, 1)
	assert.Equal(t, "N° 13 BAT B", res.Results[0].Document.Name)

	_, err = p.ProcessFile(context.Background(), path, Options{Selection: extract.Selection{Names: []string{"absent"}}})
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrNoSheetsSelected)
}

func TestProcessFileAIModeNeedsClient(t *testing.T) {
	path := writeWorkbook(t, map[string][][]string{"N° 12 BAT A": detailedRows}, "N° 12 BAT A")
	_, err := NewProcessor(Deps{}).ProcessFile(context.Background(), path, Options{Mode: constants.ModeAI})
	require.Error(t, err)
	assert.True(t, common.IsCode(err, common.CodeConfig))
}

func TestProcessFileAIMode(t *testing.T) {
	path := writeWorkbook(t, map[string][][]string{"N° 12 BAT A": detailedRows}, "N° 12 BAT A")
	drafts := &fakeDrafts{draft: aiDraft()}
	p := NewProcessor(Deps{Drafts: drafts})

	res, err := p.ProcessFile(context.Background(), path, Options{Mode: constants.ModeAI})
	require.NoError(t, err)
	require.Len(t, drafts.calls, 1)
	assert.Contains(t, drafts.calls[0].Text, "Fouille en rigole\tm3")
	assert.NotEmpty(t, drafts.calls[0].Categories)

	doc := res.Results[0].Document
	assert.Equal(t, constants.ModeAI, doc.Source.Mode)
	assert.Equal(t, constants.DocumentDetailed, doc.Type)
	assert.Equal(t, "2024-07", doc.Metadata.DocumentRef)
	require.Equal(t, 1, doc.ItemCount())
	assert.Equal(t, 15000.0, doc.Total)
}

func TestProcessFileAutoFallsBackOnEmptySheets(t *testing.T) {
	path := writeWorkbook(t, map[string][][]string{
		"N° 12 BAT A": detailedRows,
		"Notes":       {{"Notes de chantier"}},
	}, "N° 12 BAT A", "Notes")
	drafts := &fakeDrafts{draft: aiDraft()}
	p := NewProcessor(Deps{Drafts: drafts})

	res, err := p.ProcessFile(context.Background(), path, Options{Mode: constants.ModeAuto})
	require.NoError(t, err)
	require.Len(t, res.Results, 2)
	assert.Equal(t, constants.ModeLocal, res.Results[0].Document.Source.Mode)
	assert.Equal(t, constants.ModeAI, res.Results[1].Document.Source.Mode)
	require.Len(t, drafts.calls, 1)
	assert.Equal(t, "Notes", drafts.calls[0].FileName)
}

func TestProcessFileAutoKeepsLocalWhenInferenceFails(t *testing.T) {
	path := writeWorkbook(t, map[string][][]string{"Notes": {{"Notes de chantier"}}}, "Notes")
	drafts := &fakeDrafts{err: errors.New("upstream down")}
	p := NewProcessor(Deps{Drafts: drafts})

	res, err := p.ProcessFile(context.Background(), path, Options{Mode: constants.ModeAuto})
	require.NoError(t, err)
	require.Len(t, res.Results, 1)
	assert.Equal(t, 0, res.Results[0].Document.ItemCount())
	assert.Contains(t, res.AllWarnings()[len(res.AllWarnings())-1], "inference fallback failed")
}

func TestProcessFilePersistenceFailureIsWarning(t *testing.T) {
	path := writeWorkbook(t, map[string][][]string{"N° 12 BAT A": detailedRows}, "N° 12 BAT A")
	p := NewProcessor(Deps{Store: &fakeStore{err: errors.New("disk full")}})

	res, err := p.ProcessFile(context.Background(), path, Options{})
	require.NoError(t, err)
	require.Len(t, res.Results, 1)
	assert.Contains(t, res.Warnings[len(res.Warnings)-1], "not persisted")
}

func TestProcessFileAllSheetsFail(t *testing.T) {
	path := writeWorkbook(t, map[string][][]string{"Vide": {{""}}}, "Vide")
	res, err := NewProcessor(Deps{}).ProcessFile(context.Background(), path, Options{})
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrEmptyGrid)
	require.NotNil(t, res)
	assert.Len(t, res.Warnings, 1)
}

func TestProcessFileMissing(t *testing.T) {
	_, err := NewProcessor(Deps{}).ProcessFile(context.Background(), "/nonexistent/dqe.xlsx", Options{})
	require.Error(t, err)
	assert.True(t, common.IsCode(err, common.CodeSource))
}

func TestAnalyze(t *testing.T) {
	path := writeWorkbook(t, map[string][][]string{
		"N° 12 BAT A": detailedRows,
		"RECAP":       {{"RECAPITULATIF"}, {"1A", "70 000"}},
	}, "N° 12 BAT A", "RECAP")

	a, err := NewProcessor(Deps{}).Analyze(context.Background(), path, extract.Selection{Names: []string{"absent"}})
	require.NoError(t, err)
	require.Len(t, a.Sheets, 2)
	assert.False(t, a.Sheets[0].Selected)
	assert.Equal(t, 2, a.Summary.Sheets)
	assert.Equal(t, constants.DocumentDetailed, a.Sheets[0].Type)
}

func TestGridText(t *testing.T) {
	g := boq.NewGrid("s", [][]string{{"a", "", "b"}, {""}, {"c"}})
	assert.Equal(t, "a\tb\nc\n", GridText(g))
}
