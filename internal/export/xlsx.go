package export

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/dqe-extractor/internal/aggregate"
)

const (
	sheetItems     = "Items"
	sheetMaterials = "Materials"
	sheetSummary   = "Summary"
)

// XLSX renders r as a workbook with item, material and summary sheets.
func XLSX(r Report) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", sheetItems); err != nil {
		return nil, err
	}
	for _, name := range []string{sheetMaterials, sheetSummary} {
		if _, err := f.NewSheet(name); err != nil {
			return nil, err
		}
	}

	w := &sheetWriter{f: f}
	w.items(r)
	w.materials(r)
	w.summary(r)
	if w.err != nil {
		return nil, w.err
	}

	_ = f.SetColWidth(sheetItems, "C", "C", 60)
	_ = f.SetColWidth(sheetItems, "D", "E", 28)
	_ = f.SetColWidth(sheetMaterials, "B", "B", 60)
	_ = f.SetColWidth(sheetSummary, "A", "B", 32)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	return buf.Bytes(), nil
}

// sheetWriter keeps the first error so row writes stay linear.
type sheetWriter struct {
	f   *excelize.File
	err error
}

func (w *sheetWriter) row(sheet string, n int, values ...any) {
	if w.err != nil {
		return
	}
	cell, err := excelize.CoordinatesToCellName(1, n)
	if err != nil {
		w.err = err
		return
	}
	w.err = w.f.SetSheetRow(sheet, cell, &values)
}

func (w *sheetWriter) items(r Report) {
	header := append([]any{"feuille"}, toAny(Columns)...)
	w.row(sheetItems, 1, header...)
	n := 2
	for _, d := range r.Documents {
		for _, it := range d.Items() {
			values := []any{d.Name, it.Code, it.Designation, it.Category, it.SubCategory, it.Unit, it.Quantity}
			values = append(values, ptr(it.UnitPrice), ptr(it.TotalPrice))
			values = append(values, it.LotNumber, it.LotName, it.Level,
				it.Attributes.Dosage, it.Attributes.Dimensions, it.Attributes.Thickness)
			w.row(sheetItems, n, values...)
			n++
		}
	}
}

func (w *sheetWriter) materials(r Report) {
	w.row(sheetMaterials, 1, "cle", "designation", "unite", "quantite_totale", "occurrences", "feuilles")
	for i, m := range r.Materials {
		w.row(sheetMaterials, i+2, m.Key, m.Designation, m.Unit, m.TotalQuantity, m.Occurrences, strings.Join(m.Sheets, ", "))
	}
}

func (w *sheetWriter) summary(r Report) {
	n := 1
	w.row(sheetSummary, n, "fichier", r.File)
	w.row(sheetSummary, n+1, "elements", r.ItemCount)
	w.row(sheetSummary, n+2, "total", r.Total)
	w.row(sheetSummary, n+3, "devise", r.Currency)
	n += 5

	section := func(title string, rows []aggregate.Summary) {
		w.row(sheetSummary, n, title, "nom", "nombre", "total")
		n++
		for _, s := range rows {
			w.row(sheetSummary, n, s.Key, s.Name, s.Count, s.Total)
			n++
		}
		n++
	}
	section("categorie", r.Summaries.ByCategory)
	section("lot", r.Summaries.ByLot)
	section("niveau", r.Summaries.ByLevel)
}

func ptr(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}

func toAny(in []string) []any {
	out := make([]any, len(in))
	for i, s := range in {
		out[i] = s
	}
	return out
}
