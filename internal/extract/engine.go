// Package extract infers the hierarchical structure of a bill of quantities
// (sections, priced items, subtotals, metadata) from a grid of cells.
package extract

import (
	"fmt"

	"github.com/joseph-ayodele/dqe-extractor/constants"
	"github.com/joseph-ayodele/dqe-extractor/internal/attributes"
	"github.com/joseph-ayodele/dqe-extractor/internal/boq"
	"github.com/joseph-ayodele/dqe-extractor/internal/categorize"
	"github.com/joseph-ayodele/dqe-extractor/internal/common"
	"github.com/joseph-ayodele/dqe-extractor/internal/normalize"
	"github.com/joseph-ayodele/dqe-extractor/internal/patterns"
)

// Options tune one extraction.
type Options struct {
	// Mapping overrides column detection. Scanning then starts after the header
	// row when one is found, else at row 0.
	Mapping boq.ColumnMapping
	// Type forces the document type instead of detecting it.
	Type constants.DocumentType
	// Currency defaults to FCFA.
	Currency string
}

// Engine runs the structured extraction. It holds only immutable compiled
// state and is safe for concurrent use; each call works on its own grid.
type Engine struct {
	lib         *patterns.Library
	classifier  *Classifier
	locator     *Locator
	mapper      *Mapper
	categorizer *categorize.Engine
	attrs       *attributes.Extractor
	units       normalize.Units
}

// NewEngine wires the engine over lib; nil selects the built-in library.
func NewEngine(lib *patterns.Library) *Engine {
	if lib == nil {
		lib = patterns.Default()
	}
	return &Engine{
		lib:         lib,
		classifier:  NewClassifier(lib),
		locator:     NewLocator(lib),
		mapper:      NewMapper(lib),
		categorizer: categorize.New(lib),
		attrs:       attributes.New(lib),
		units:       normalize.NewUnits(lib),
	}
}

func (e *Engine) Library() *patterns.Library        { return e.lib }
func (e *Engine) Categorizer() *categorize.Engine   { return e.categorizer }
func (e *Engine) Attributes() *attributes.Extractor { return e.attrs }
func (e *Engine) Classifier() *Classifier           { return e.classifier }
func (e *Engine) Locator() *Locator                 { return e.locator }

// Extract builds one document from g. An empty grid is a structural error;
// every row-level problem is reported as a warning.
func (e *Engine) Extract(g boq.Grid, opts Options) (boq.Result, error) {
	if g.Len() == 0 || g.IsEmpty() {
		return boq.Result{}, common.NewAppError(common.CodeStructural,
			fmt.Sprintf("sheet %q has no rows", g.Name()), common.ErrEmptyGrid)
	}

	docType := opts.Type
	if docType == "" {
		docType = e.DetectDocumentType(g.Name(), g)
	}

	var res boq.Result
	switch docType {
	case constants.DocumentRecap:
		res = e.extractRecap(g)
	case constants.DocumentSummary:
		res = e.extractSummary(g, opts.Mapping)
	default:
		res = e.extractDetailed(g, opts.Mapping)
	}

	res.Document.Name = g.Name()
	res.Document.Type = docType
	res.Document.Total = res.Document.SumTotals()
	res.Document.Currency = opts.Currency
	if res.Document.Currency == "" {
		res.Document.Currency = constants.DefaultCurrency
	}
	if res.Document.Categories == nil {
		res.Document.Categories = []boq.Category{}
	}
	for i, w := range res.Warnings {
		res.Warnings[i] = g.Name() + ": " + w
	}
	return res, nil
}

// extractDetailed handles itemized sheets with code, unit price and total columns.
func (e *Engine) extractDetailed(g boq.Grid, explicit boq.ColumnMapping) boq.Result {
	return e.extractTabular(g, constants.DocumentDetailed, explicit, e.lib.Limits.DetailedStartRow)
}

// extractSummary handles purchase summaries carrying quantity and amount only.
func (e *Engine) extractSummary(g boq.Grid, explicit boq.ColumnMapping) boq.Result {
	return e.extractTabular(g, constants.DocumentSummary, explicit, e.lib.Limits.SummaryStartRow)
}

func (e *Engine) extractTabular(g boq.Grid, t constants.DocumentType, explicit boq.ColumnMapping, defaultStart int) boq.Result {
	header, found := e.locator.FindHeaderRow(g)
	mapping, start := e.layout(g, t, explicit, header, found, defaultStart)

	rows := e.classifier.ClassifyRows(g, start, mapping)
	grouped := Group(rows, GroupDeps{
		Mapping:        mapping,
		DefaultSection: e.lib.DefaultSection,
		BuildItem:      e.itemBuilder(mapping),
		Level:          e.attrs.Level,
	})

	return boq.Result{
		Document: boq.Document{
			Categories:    grouped.Categories,
			Metadata:      e.locator.HarvestMetadata(g, e.locator.metadataBound(header, found)),
			DeclaredTotal: grouped.DeclaredTotal,
		},
		Warnings: grouped.Warnings,
	}
}

// layout picks the column mapping and the first data row.
func (e *Engine) layout(g boq.Grid, t constants.DocumentType, explicit boq.ColumnMapping, header int, found bool, defaultStart int) (boq.ColumnMapping, int) {
	if explicit != nil {
		if found {
			return explicit.Clone(), header + 1
		}
		return explicit.Clone(), 0
	}
	mapping := DefaultMapping(t)
	if !found {
		return mapping, defaultStart
	}
	if derived := e.mapper.MapColumns(g.Row(header).Values()); e.mapper.Usable(derived) {
		mapping = derived
	}
	return mapping, header + 1
}

func (e *Engine) itemBuilder(m boq.ColumnMapping) ItemBuilder {
	return func(r ClassifiedRow, lot Lot, level string) (boq.Item, []string) {
		designation, _ := m.Value(r.Row, constants.RoleDesignation)
		if designation == "" {
			return boq.Item{}, nil
		}
		var warnings []string
		price := func(role constants.ColumnRole, label string) *float64 {
			raw, ok := m.Value(r.Row, role)
			if !ok {
				return nil
			}
			v := normalize.ParseAmountPtr(raw)
			if v == nil {
				warnings = append(warnings, fmt.Sprintf("row %d: %s %q is not a number", r.Index+1, label, raw))
			}
			return v
		}

		code, _ := m.Value(r.Row, constants.RoleNumber)
		unit, _ := m.Value(r.Row, constants.RoleUnit)
		qty, _ := m.Value(r.Row, constants.RoleQuantity)

		item := boq.Item{
			Code:        code,
			Designation: designation,
			Unit:        e.units.Normalize(unit),
			Quantity:    normalize.ParseAmountOr(qty, 0),
			UnitPrice:   price(constants.RoleUnitPrice, "unit price"),
			TotalPrice:  price(constants.RoleTotalPrice, "total price"),
			LotNumber:   lot.Number,
			LotName:     lot.Name,
			Level:       e.attrs.Level(designation),
			Attributes:  e.attrs.Extract(designation),
		}
		if item.TotalPrice == nil && item.UnitPrice != nil {
			item.TotalPrice = boq.Float(item.Quantity * *item.UnitPrice)
		}
		if item.Level == "" {
			item.Level = level
		}
		item.Category, item.SubCategory = e.categorizer.Categorize(designation)
		return item, warnings
	}
}

const recapAmountCol = 1

// extractRecap reads the building recap: every row whose first cell is a
// building code and whose second cell is a positive amount becomes one item.
func (e *Engine) extractRecap(g boq.Grid) boq.Result {
	var items []boq.Item
	for idx := 0; idx < g.Len(); idx++ {
		row := g.Row(idx)
		code, ok := row.Cell(0)
		if !ok || !e.lib.RecapCode.MatchString(code) {
			continue
		}
		raw, _ := row.Cell(recapAmountCol)
		amount, ok := normalize.ParseAmount(raw)
		if !ok || amount <= 0 {
			continue
		}
		designation := "Immeuble " + code
		cat, sub := e.categorizer.Categorize(designation)
		items = append(items, boq.Item{
			Code:        code,
			Designation: designation,
			Unit:        "FF",
			Quantity:    1,
			TotalPrice:  boq.Float(amount),
			Category:    cat,
			SubCategory: sub,
			Section:     constants.RecapCategoryName,
		})
	}

	var cats []boq.Category
	if len(items) > 0 {
		cats = []boq.Category{{Name: constants.RecapCategoryName, Items: items}}
	}
	return boq.Result{Document: boq.Document{Categories: cats}}
}
