package extract

import (
	"strings"

	"github.com/joseph-ayodele/dqe-extractor/constants"
	"github.com/joseph-ayodele/dqe-extractor/internal/boq"
)

// DetectDocumentType types a sheet from its name first, then from the text of
// its first rows.
func (e *Engine) DetectDocumentType(name string, g boq.Grid) constants.DocumentType {
	hints := e.lib.DocumentTypes
	lower := strings.ToLower(strings.TrimSpace(name))

	switch {
	case containsAny(lower, hints.RecapName):
		return constants.DocumentRecap
	case hasAnyPrefix(lower, hints.DetailedPrefixes):
		return constants.DocumentDetailed
	case containsAny(lower, hints.SummaryName):
		return constants.DocumentSummary
	}

	var sb strings.Builder
	limit := min(g.Len(), e.lib.Limits.TypeSniffRows)
	for idx := 0; idx < limit; idx++ {
		// Padded so hints such as " pu " match at cell boundaries.
		sb.WriteString(" ")
		sb.WriteString(strings.Join(g.Row(idx).NonEmpty(), "  "))
		sb.WriteString(" \n")
	}
	content := strings.ToLower(sb.String())

	switch {
	case containsAny(content, hints.DetailedContent):
		return constants.DocumentDetailed
	case containsAny(content, hints.SummaryContent):
		return constants.DocumentSummary
	}
	return constants.DocumentUnknown
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}
