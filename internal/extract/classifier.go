package extract

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/joseph-ayodele/dqe-extractor/constants"
	"github.com/joseph-ayodele/dqe-extractor/internal/boq"
	"github.com/joseph-ayodele/dqe-extractor/internal/normalize"
	"github.com/joseph-ayodele/dqe-extractor/internal/patterns"
)

// Lot is the lot or chapter a row belongs to. Number is empty for roman or
// chapter headings that carry no numeric lot.
type Lot struct {
	Number string
	Name   string
}

// ClassifiedRow is one grid row after classification.
type ClassifiedRow struct {
	Index   int
	Row     boq.Row
	Type    constants.LineType
	Heading string // section name for CATEGORY rows
	Lot     *Lot   // set for lot headings, which are never items or categories
}

// Classifier labels rows. It holds only compiled patterns.
type Classifier struct {
	lib   *patterns.Library
	units normalize.Units
}

func NewClassifier(lib *patterns.Library) *Classifier {
	if lib == nil {
		lib = patterns.Default()
	}
	return &Classifier{lib: lib, units: normalize.NewUnits(lib)}
}

// Classify applies the decision order below; the first rule that applies wins.
//  1. empty or not-a-number designation: EMPTY
//  2. subtotal pattern: SUBTOTAL
//  3. grand total pattern: TOTAL
//  4. valid unit and numeric quantity: ITEM
//  5. upper-case designation or category keyword: CATEGORY
//  6. metadata keyword: METADATA
//  7. otherwise EMPTY
func (c *Classifier) Classify(row boq.Row, m boq.ColumnMapping) constants.LineType {
	designation, _ := m.Value(row, constants.RoleDesignation)
	if designation == "" || strings.ToLower(designation) == c.lib.NotANumber {
		return constants.LineEmpty
	}
	for _, re := range c.lib.Subtotal {
		if re.MatchString(designation) {
			return constants.LineSubtotal
		}
	}
	if c.lib.Total.MatchString(designation) {
		return constants.LineTotal
	}

	unit, _ := m.Value(row, constants.RoleUnit)
	qty, _ := m.Value(row, constants.RoleQuantity)
	if c.validUnit(unit) && normalize.IsNumeric(qty) {
		return constants.LineItem
	}

	if isUpper(designation) || c.hasCategoryKeyword(designation) {
		return constants.LineCategory
	}

	lower := strings.ToLower(designation)
	for _, kw := range c.lib.MetadataKeywords {
		if strings.Contains(lower, kw) {
			return constants.LineMetadata
		}
	}
	return constants.LineEmpty
}

// ClassifyRows classifies grid rows from start to the end of the grid. Lot
// headings are detected on the lead cell before the regular rules. A row whose
// designation is absent but whose lead cell carries a section title is
// reported as CATEGORY with that title.
func (c *Classifier) ClassifyRows(g boq.Grid, start int, m boq.ColumnMapping) []ClassifiedRow {
	if start < 0 {
		start = 0
	}
	out := make([]ClassifiedRow, 0, max(g.Len()-start, 0))
	for idx := start; idx < g.Len(); idx++ {
		row := g.Row(idx)
		cr := ClassifiedRow{Index: idx, Row: row, Type: constants.LineEmpty}
		if lot, ok := c.LotHeading(row, m); ok {
			cr.Lot = &lot
			out = append(out, cr)
			continue
		}
		cr.Type = c.Classify(row, m)
		switch cr.Type {
		case constants.LineCategory:
			cr.Heading, _ = m.Value(row, constants.RoleDesignation)
		case constants.LineEmpty:
			if heading, ok := c.LeadHeading(row, m); ok {
				cr.Type = constants.LineCategory
				cr.Heading = heading
			}
		}
		out = append(out, cr)
	}
	return out
}

// LotHeading reports whether the lead cell of row opens a new lot or chapter.
func (c *Classifier) LotHeading(row boq.Row, m boq.ColumnMapping) (Lot, bool) {
	text, ok := row.Cell(leadColumn(m))
	if !ok {
		return Lot{}, false
	}
	matched := false
	for _, re := range c.lib.LotHeadings {
		if re.MatchString(text) {
			matched = true
			break
		}
	}
	if !matched {
		return Lot{}, false
	}
	if sm := c.lib.LotNumber.FindStringSubmatch(text); sm != nil {
		lot := Lot{Number: sm[1]}
		if len(sm) > 2 {
			lot.Name = strings.TrimSpace(sm[2])
		}
		if lot.Name == "" {
			lot.Name, _ = m.Value(row, constants.RoleDesignation)
		}
		return lot, true
	}
	return Lot{Name: text}, true
}

// LeadHeading returns the section title held by the lead cell of a row whose
// designation and value cells are all blank.
func (c *Classifier) LeadHeading(row boq.Row, m boq.ColumnMapping) (string, bool) {
	lead := leadColumn(m)
	if idx, ok := m.Index(constants.RoleDesignation); ok && idx == lead {
		return "", false
	}
	for _, role := range []constants.ColumnRole{
		constants.RoleDesignation, constants.RoleUnit, constants.RoleQuantity,
		constants.RoleUnitPrice, constants.RoleTotalPrice,
	} {
		if v, _ := m.Value(row, role); v != "" {
			return "", false
		}
	}
	text, ok := row.Cell(lead)
	if !ok || utf8.RuneCountInString(text) < c.lib.Limits.MinDesignationLength {
		return "", false
	}
	if strings.ToLower(text) == c.lib.NotANumber || !strings.ContainsFunc(text, unicode.IsLetter) {
		return "", false
	}
	if isUpper(text) || c.hasCategoryKeyword(text) {
		return text, true
	}
	return "", false
}

func (c *Classifier) validUnit(unit string) bool {
	u := strings.ToUpper(strings.TrimSpace(unit))
	if u == "" || u == strings.ToUpper(c.lib.NotANumber) {
		return false
	}
	if c.units.IsKnown(u) {
		return true
	}
	return utf8.RuneCountInString(u) <= 3 && isAlpha(u)
}

func (c *Classifier) hasCategoryKeyword(s string) bool {
	upper := strings.ToUpper(s)
	for _, kw := range c.lib.CategoryKeywords {
		if strings.Contains(upper, kw) {
			return true
		}
	}
	return false
}

// leadColumn is the LOT column, else the NUMBER column, else column 0.
func leadColumn(m boq.ColumnMapping) int {
	if idx, ok := m.Index(constants.RoleLot); ok {
		return idx
	}
	if idx, ok := m.Index(constants.RoleNumber); ok {
		return idx
	}
	return 0
}

// isUpper is true when s has at least one cased letter and no lower-case one.
func isUpper(s string) bool {
	cased := false
	for _, r := range s {
		switch {
		case unicode.IsLower(r):
			return false
		case unicode.IsUpper(r) || unicode.IsTitle(r):
			cased = true
		}
	}
	return cased
}

func isAlpha(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}
