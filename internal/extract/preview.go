package extract

import (
	"slices"
	"unicode/utf8"

	"github.com/joseph-ayodele/dqe-extractor/constants"
	"github.com/joseph-ayodele/dqe-extractor/internal/boq"
	"github.com/joseph-ayodele/dqe-extractor/internal/normalize"
)

const (
	sampleLimit         = 5
	sampleCategoryRunes = 50
	sampleItemRunes     = 60
	sampleItemMinRunes  = 10
)

// SheetPreview describes a sheet before extraction so callers can pick which
// sheets to process.
type SheetPreview struct {
	Index            int                    `json:"index"`
	Name             string                 `json:"name"`
	Type             constants.DocumentType `json:"type"`
	Rows             int                    `json:"rows"`
	Cols             int                    `json:"cols"`
	EstimatedItems   int                    `json:"estimated_items"`
	Metadata         boq.Metadata           `json:"metadata"`
	SampleCategories []string               `json:"sample_categories"`
	SampleItems      []string               `json:"sample_items"`
	Selected         bool                   `json:"selected"`
}

// AnalysisSummary counts previews per type.
type AnalysisSummary struct {
	Sheets         int `json:"sheets"`
	Detailed       int `json:"detailed"`
	Summary        int `json:"summary"`
	Recap          int `json:"recap"`
	Unknown        int `json:"unknown"`
	EstimatedItems int `json:"estimated_items"`
}

// Analyze previews every grid; all sheets start selected.
func (e *Engine) Analyze(grids []boq.Grid) []SheetPreview {
	out := make([]SheetPreview, 0, len(grids))
	for i, g := range grids {
		out = append(out, e.Preview(i, g))
	}
	return out
}

// Preview inspects one grid without extracting it.
func (e *Engine) Preview(index int, g boq.Grid) SheetPreview {
	cats, items := e.samples(g)
	return SheetPreview{
		Index:            index,
		Name:             g.Name(),
		Type:             e.DetectDocumentType(g.Name(), g),
		Rows:             g.Len(),
		Cols:             g.Width(),
		EstimatedItems:   e.estimateItems(g),
		Metadata:         e.locator.HarvestMetadata(g, e.lib.Limits.MetadataRows),
		SampleCategories: cats,
		SampleItems:      items,
		Selected:         true,
	}
}

// estimateItems counts rows holding a known unit in one of their first cells.
func (e *Engine) estimateItems(g boq.Grid) int {
	count := 0
	for idx := 0; idx < g.Len(); idx++ {
		row := g.Row(idx)
		for col := 0; col < min(row.Len(), e.lib.Limits.EstimateColumns); col++ {
			if v, ok := row.Cell(col); ok && e.units.IsKnown(v) {
				count++
				break
			}
		}
	}
	return count
}

func (e *Engine) samples(g boq.Grid) (categories, items []string) {
	categories, items = []string{}, []string{}
	limit := min(g.Len(), e.lib.Limits.PreviewRows)
	for idx := 0; idx < limit; idx++ {
		values := g.Row(idx).NonEmpty()
		if len(values) == 0 {
			continue
		}
		first := values[0]
		if len(categories) < sampleLimit && e.classifier.hasCategoryKeyword(first) {
			if c := truncate(first, sampleCategoryRunes, ""); !slices.Contains(categories, c) {
				categories = append(categories, c)
			}
		}
		if len(items) >= sampleLimit {
			continue
		}
		if !slices.ContainsFunc(values, e.units.IsKnown) || !slices.ContainsFunc(values, normalize.IsNumeric) {
			continue
		}
		for _, v := range values {
			if utf8.RuneCountInString(v) > sampleItemMinRunes {
				if it := truncate(v, sampleItemRunes, "..."); !slices.Contains(items, it) {
					items = append(items, it)
				}
				break
			}
		}
	}
	return categories, items
}

// Summarize counts previews per document type.
func Summarize(previews []SheetPreview) AnalysisSummary {
	s := AnalysisSummary{Sheets: len(previews)}
	for _, p := range previews {
		s.EstimatedItems += p.EstimatedItems
		switch p.Type {
		case constants.DocumentDetailed:
			s.Detailed++
		case constants.DocumentSummary:
			s.Summary++
		case constants.DocumentRecap:
			s.Recap++
		default:
			s.Unknown++
		}
	}
	return s
}

// Selection picks sheets by name, index or type, then removes exclusions.
// With no inclusion criterion every sheet is selected.
type Selection struct {
	Names   []string
	Indices []int
	Types   []constants.DocumentType
	Exclude []string
}

// IsZero reports whether no inclusion criterion is set.
func (s Selection) IsZero() bool {
	return len(s.Names) == 0 && len(s.Indices) == 0 && len(s.Types) == 0
}

// Apply returns a copy of previews with Selected recomputed.
func (s Selection) Apply(previews []SheetPreview) []SheetPreview {
	out := make([]SheetPreview, len(previews))
	for i, p := range previews {
		p.Selected = s.IsZero() ||
			slices.Contains(s.Names, p.Name) ||
			slices.Contains(s.Indices, p.Index) ||
			slices.Contains(s.Types, p.Type)
		if slices.Contains(s.Exclude, p.Name) {
			p.Selected = false
		}
		out[i] = p
	}
	return out
}

// Selected keeps the selected previews in sheet order.
func Selected(previews []SheetPreview) []SheetPreview {
	var out []SheetPreview
	for _, p := range previews {
		if p.Selected {
			out = append(out, p)
		}
	}
	return out
}

func truncate(s string, n int, suffix string) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n]) + suffix
}
