// Package merge validates documents coming out of either extraction path and
// turns inference drafts into the same canonical shape.
package merge

import (
	"fmt"
	"math"
	"strings"

	"github.com/joseph-ayodele/dqe-extractor/constants"
	"github.com/joseph-ayodele/dqe-extractor/internal/attributes"
	"github.com/joseph-ayodele/dqe-extractor/internal/boq"
	"github.com/joseph-ayodele/dqe-extractor/internal/categorize"
	"github.com/joseph-ayodele/dqe-extractor/internal/common"
	"github.com/joseph-ayodele/dqe-extractor/internal/normalize"
	"github.com/joseph-ayodele/dqe-extractor/internal/patterns"
)

// Merger holds the read-only helpers shared by both validation entry points.
type Merger struct {
	categorizer *categorize.Engine
	attrs       *attributes.Extractor
	units       normalize.Units
	minLength   int
	tolerance   float64
}

// NewMerger builds a merger over lib; nil selects the built-in library.
func NewMerger(lib *patterns.Library) *Merger {
	if lib == nil {
		lib = patterns.Default()
	}
	tol := lib.Limits.MismatchTolerance
	if tol <= 0 {
		tol = constants.MismatchToleranceDefault
	}
	return &Merger{
		categorizer: categorize.New(lib),
		attrs:       attributes.New(lib),
		units:       normalize.NewUnits(lib),
		minLength:   lib.Limits.MinDesignationLength,
		tolerance:   tol,
	}
}

// NormalizeDocument re-validates an extracted document. Items with a missing
// or too short designation are dropped, missing totals are derived, unknown
// categories are resolved and empty categories removed. The input is not
// modified.
func (m *Merger) NormalizeDocument(doc boq.Document) (boq.Document, []string) {
	var warnings []string
	out := doc
	out.Categories = make([]boq.Category, 0, len(doc.Categories))

	for _, cat := range doc.Categories {
		items := make([]boq.Item, 0, len(cat.Items))
		for _, it := range cat.Items {
			if err := m.validateDesignation(it.Designation); err != nil {
				warnings = append(warnings, fmt.Sprintf("%s: item %q dropped: %v", cat.Name, it.Designation, err))
				continue
			}
			it.Designation = strings.TrimSpace(it.Designation)
			if it.TotalPrice == nil && it.UnitPrice != nil {
				it.TotalPrice = boq.Float(it.Quantity * *it.UnitPrice)
			}
			if !m.categorizer.Known(it.Category) {
				it.Category, it.SubCategory = m.categorizer.Resolve(it.Category, it.Designation)
			}
			items = append(items, it)
		}
		if len(items) == 0 {
			continue
		}
		cat.Items = items
		out.Categories = append(out.Categories, cat)
	}

	out.Total = out.SumTotals()
	if w, ok := m.mismatch(out.Total, out.DeclaredTotal); ok {
		warnings = append(warnings, w)
	}
	return out, warnings
}

// FromDraft converts an inference draft into a document. Records are grouped
// by resolved category in order of first appearance.
func (m *Merger) FromDraft(name string, d boq.Draft) (boq.Document, []string) {
	var warnings []string
	index := map[string]int{}
	var cats []boq.Category

	for i, rec := range d.Records {
		it, ws, ok := m.fromRecord(i, rec)
		warnings = append(warnings, ws...)
		if !ok {
			continue
		}
		pos, seen := index[it.Category]
		if !seen {
			pos = len(cats)
			index[it.Category] = pos
			cats = append(cats, boq.Category{Name: it.Category})
		}
		it.Section = it.Category
		cats[pos].Items = append(cats[pos].Items, it)
	}
	if cats == nil {
		cats = []boq.Category{}
	}

	currency := strings.TrimSpace(d.Currency)
	if currency == "" {
		currency = constants.DefaultCurrency
	}
	doc := boq.Document{
		Name:       name,
		Type:       constants.DocumentUnknown,
		Categories: cats,
		Currency:   currency,
		Source:     boq.Source{Mode: constants.ModeAI},
	}
	if v, present, valid := coerce(d.DeclaredTotal); valid {
		doc.DeclaredTotal = boq.Float(v)
	} else if present {
		warnings = append(warnings, fmt.Sprintf("declared total %v is not a number", d.DeclaredTotal))
	}

	doc.Total = doc.SumTotals()
	if w, ok := m.mismatch(doc.Total, doc.DeclaredTotal); ok {
		warnings = append(warnings, w)
	}
	return doc, warnings
}

func (m *Merger) fromRecord(i int, rec boq.DraftRecord) (boq.Item, []string, bool) {
	var warnings []string
	designation := strings.TrimSpace(rec.Designation)
	if err := m.validateDesignation(designation); err != nil {
		return boq.Item{}, []string{fmt.Sprintf("record %d dropped: %v", i, err)}, false
	}

	number := func(field string, raw any) *float64 {
		v, present, valid := coerce(raw)
		if !valid {
			if present {
				warnings = append(warnings, fmt.Sprintf("record %d: %s %v is not a number", i, field, raw))
			}
			return nil
		}
		return boq.Float(v)
	}

	it := boq.Item{
		Code:        strings.TrimSpace(rec.Code),
		Designation: designation,
		Unit:        m.units.Normalize(rec.Unit),
		LotNumber:   strings.TrimSpace(rec.LotNumber),
		LotName:     strings.TrimSpace(rec.LotName),
		Level:       strings.TrimSpace(rec.Level),
	}
	qty := number("quantity", rec.Quantity)
	if qty != nil {
		it.Quantity = *qty
	}
	it.UnitPrice = number("unit price", rec.UnitPrice)
	it.TotalPrice = number("total price", rec.TotalPrice)
	if it.TotalPrice == nil && it.UnitPrice != nil && qty != nil {
		it.TotalPrice = boq.Float(*qty * *it.UnitPrice)
	}

	it.Category, it.SubCategory = m.categorizer.Resolve(rec.Category, designation)
	if sub := strings.TrimSpace(rec.SubCategory); sub != "" && m.categorizer.Known(strings.TrimSpace(rec.Category)) {
		it.SubCategory = sub
	}

	attrs := m.attrs.Extract(designation)
	it.Attributes = boq.Attributes{
		Dosage:     firstNonEmpty(rec.Dosage, attrs.Dosage),
		Dimensions: firstNonEmpty(rec.Dimensions, attrs.Dimensions),
		Thickness:  firstNonEmpty(rec.Thickness, attrs.Thickness),
	}
	if it.Level == "" {
		it.Level = m.attrs.Level(designation)
	}
	return it, warnings, true
}

func (m *Merger) validateDesignation(designation string) error {
	return common.NewValidator().
		Field("designation", designation, common.Required, common.MinLength(m.minLength)).
		Error()
}

func (m *Merger) mismatch(sum float64, declared *float64) (string, bool) {
	if declared == nil || *declared == 0 {
		return "", false
	}
	if math.Abs(sum-*declared) <= m.tolerance {
		return "", false
	}
	return fmt.Sprintf("total mismatch: computed %.2f, declared %.2f", sum, *declared), true
}

// coerce reads a loosely typed number. present is false for nil and blank
// strings; valid is false when a present value cannot be read.
func coerce(raw any) (v float64, present, valid bool) {
	switch x := raw.(type) {
	case nil:
		return 0, false, false
	case float64:
		return x, true, !math.IsNaN(x) && !math.IsInf(x, 0)
	case float32:
		return float64(x), true, true
	case int:
		return float64(x), true, true
	case int64:
		return float64(x), true, true
	case string:
		if strings.TrimSpace(x) == "" {
			return 0, false, false
		}
		v, ok := normalize.ParseAmount(x)
		return v, true, ok
	default:
		return 0, true, false
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
