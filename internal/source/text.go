package source

import (
	"strings"

	"github.com/joseph-ayodele/dqe-extractor/constants"
	"github.com/joseph-ayodele/dqe-extractor/internal/boq"
	"github.com/joseph-ayodele/dqe-extractor/internal/patterns"
)

// Canonical columns of a grid built from text.
const (
	colCode = iota
	colDesignation
	colUnit
	colQuantity
	colUnitPrice
	colTotal
	textColumns
)

// TextMapping is the column layout of every grid produced by TextGrid.
func TextMapping() boq.ColumnMapping {
	return boq.ColumnMapping{
		constants.RoleNumber:      colCode,
		constants.RoleDesignation: colDesignation,
		constants.RoleUnit:        colUnit,
		constants.RoleQuantity:    colQuantity,
		constants.RoleUnitPrice:   colUnitPrice,
		constants.RoleTotalPrice:  colTotal,
	}
}

// TextGrid parses layout text line by line into canonical six-column rows.
// Priced lines fill every column. Lot headings sit in the code column so the
// grouper sees them as lot changes. A label followed by a trailing amount is
// split into designation and total, which is how subtotal and total lines
// carry their value. Any other line becomes a designation-only row.
func TextGrid(lib *patterns.Library, name, text string) boq.Grid {
	if lib == nil {
		lib = patterns.Default()
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\f", "\n")

	var rows [][]string
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		rows = append(rows, textRow(lib, line))
	}
	return boq.NewGrid(name, rows)
}

func textRow(lib *patterns.Library, line string) []string {
	row := make([]string, textColumns)
	trimmed := strings.TrimSpace(line)

	if m := lib.TextItemLine.FindStringSubmatch(line); m != nil {
		row[colCode] = m[1]
		row[colDesignation] = strings.TrimSpace(m[2])
		row[colUnit] = m[3]
		row[colQuantity] = strings.TrimSpace(m[4])
		row[colUnitPrice] = strings.TrimSpace(m[5])
		row[colTotal] = strings.TrimSpace(m[6])
		return row
	}

	for _, re := range lib.LotHeadings {
		if re.MatchString(trimmed) {
			row[colCode] = trimmed
			return row
		}
	}

	if m := lib.TextTrailingAmount.FindStringSubmatch(trimmed); m != nil {
		row[colDesignation] = strings.TrimSpace(m[1])
		row[colTotal] = strings.TrimSpace(m[2])
		return row
	}

	row[colDesignation] = trimmed
	return row
}
