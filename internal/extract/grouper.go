package extract

import (
	"fmt"

	"github.com/joseph-ayodele/dqe-extractor/constants"
	"github.com/joseph-ayodele/dqe-extractor/internal/boq"
	"github.com/joseph-ayodele/dqe-extractor/internal/normalize"
)

// ItemBuilder turns an ITEM row into an Item under the running lot and level.
type ItemBuilder func(row ClassifiedRow, lot Lot, level string) (boq.Item, []string)

// GroupDeps are the collaborators of the fold.
type GroupDeps struct {
	Mapping        boq.ColumnMapping
	DefaultSection string
	BuildItem      ItemBuilder
	Level          func(text string) string
}

// GroupResult is the outcome of one fold over classified rows.
type GroupResult struct {
	Categories    []boq.Category
	DeclaredTotal *float64
	Warnings      []string
}

// groupState is the running context of the fold. Each step returns the next
// state; the previous one is never reused.
type groupState struct {
	section  string
	items    []boq.Item
	lot      Lot
	lotLevel string
	secLevel string
	flushed  []boq.Category
	declared *float64
	warnings []string
}

// Group folds classified rows into categories.
//
// A CATEGORY row flushes the accumulator when it holds items and opens a new
// one. ITEM rows append to the accumulator. A SUBTOTAL row flushes with the
// subtotal read from the total-price cell and resets the accumulator. TOTAL
// rows record the declared grand total. Lot headings update the running lot.
// Items seen before any heading are flushed under DefaultSection.
//
// A building level read from a heading is scoped to it: a section level lasts
// until the section is flushed and a lot level until the next lot heading.
// A section level overrides the lot level.
func Group(rows []ClassifiedRow, deps GroupDeps) GroupResult {
	st := groupState{}
	for _, r := range rows {
		st = step(st, r, deps)
	}
	st = flush(st, nil, deps)
	return GroupResult{
		Categories:    st.flushed,
		DeclaredTotal: st.declared,
		Warnings:      st.warnings,
	}
}

func step(st groupState, r ClassifiedRow, deps GroupDeps) groupState {
	if r.Lot != nil {
		st.lot = *r.Lot
		st.lotLevel = level(deps, r.Lot.Name)
		st.secLevel = ""
		return st
	}

	switch r.Type {
	case constants.LineCategory:
		st = flush(st, nil, deps)
		st.section = r.Heading
		st.secLevel = level(deps, r.Heading)
	case constants.LineItem:
		if deps.BuildItem == nil {
			return st
		}
		lv := st.secLevel
		if lv == "" {
			lv = st.lotLevel
		}
		item, warnings := deps.BuildItem(r, st.lot, lv)
		st.warnings = append(st.warnings, warnings...)
		if item.Designation != "" {
			st.items = append(st.items, item)
		}
	case constants.LineSubtotal:
		subtotal, warning := amountCell(r, deps.Mapping, "subtotal")
		if warning != "" {
			st.warnings = append(st.warnings, warning)
		}
		st = flush(st, subtotal, deps)
	case constants.LineTotal:
		total, warning := amountCell(r, deps.Mapping, "total")
		if warning != "" {
			st.warnings = append(st.warnings, warning)
		}
		if st.declared == nil && total != nil {
			st.declared = total
		}
	}
	return st
}

// flush materializes the accumulator when it holds items, then resets it.
func flush(st groupState, subtotal *float64, deps GroupDeps) groupState {
	if len(st.items) > 0 {
		name := st.section
		if name == "" {
			name = deps.DefaultSection
		}
		items := make([]boq.Item, len(st.items))
		for i, it := range st.items {
			it.Section = name
			items[i] = it
		}
		st.flushed = append(st.flushed, boq.Category{Name: name, Items: items, Subtotal: subtotal})
	}
	st.section = ""
	st.secLevel = ""
	st.items = nil
	return st
}

func level(deps GroupDeps, text string) string {
	if deps.Level == nil || text == "" {
		return ""
	}
	return deps.Level(text)
}

// amountCell reads the total-price cell of a subtotal or total row.
func amountCell(r ClassifiedRow, m boq.ColumnMapping, what string) (*float64, string) {
	raw, ok := m.Value(r.Row, constants.RoleTotalPrice)
	if !ok {
		return nil, ""
	}
	if v, ok := normalize.ParseAmount(raw); ok {
		return &v, ""
	}
	return nil, fmt.Sprintf("row %d: %s amount %q is not a number", r.Index+1, what, raw)
}
