package extract

import (
	"regexp"
	"strings"

	"github.com/joseph-ayodele/dqe-extractor/internal/boq"
	"github.com/joseph-ayodele/dqe-extractor/internal/patterns"
)

// Locator finds the header row and harvests document metadata from the top of a grid.
type Locator struct {
	lib *patterns.Library
}

func NewLocator(lib *patterns.Library) *Locator {
	if lib == nil {
		lib = patterns.Default()
	}
	return &Locator{lib: lib}
}

// FindHeaderRow returns the first row, within the search bound, whose joined
// cells match at least HeaderMinMatches distinct header patterns.
func (l *Locator) FindHeaderRow(g boq.Grid) (int, bool) {
	limit := min(g.Len(), l.lib.Limits.HeaderSearchRows)
	for idx := 0; idx < limit; idx++ {
		text := g.Row(idx).Joined()
		if text == "" {
			continue
		}
		matches := 0
		for _, re := range l.lib.HeaderTokens {
			if re.MatchString(text) {
				matches++
			}
		}
		if matches >= l.lib.Limits.HeaderMinMatches {
			return idx, true
		}
	}
	return -1, false
}

// HarvestMetadata scans the first bound rows. Date and building type keep the
// first match; building and document references keep the last one.
func (l *Locator) HarvestMetadata(g boq.Grid, bound int) boq.Metadata {
	var md boq.Metadata
	limit := min(g.Len(), bound)
	for idx := 0; idx < limit; idx++ {
		text := g.Row(idx).Joined()
		if text == "" {
			continue
		}
		if md.Date == "" {
			md.Date = group(l.lib.Metadata.Date, text)
		}
		if v := group(l.lib.Metadata.BuildingRef, text); v != "" {
			md.BuildingRef = v
		}
		if v := group(l.lib.Metadata.DocumentRef, text); v != "" {
			md.DocumentRef = v
		}
		if md.BuildingType == "" {
			md.BuildingType = group(l.lib.Metadata.BuildingType, text)
		}
	}
	return md
}

// metadataBound follows the header when there is one below the first row.
func (l *Locator) metadataBound(header int, found bool) int {
	if found && header > 0 {
		return header
	}
	return l.lib.Limits.MetadataRows
}

func group(re *regexp.Regexp, text string) string {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	if len(m) > 1 {
		return strings.TrimSpace(m[1])
	}
	return strings.TrimSpace(m[0])
}
