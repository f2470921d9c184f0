// Package source turns input files into grids: one grid per workbook sheet,
// or a single grid built from the layout text of a PDF.
package source

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/joseph-ayodele/dqe-extractor/constants"
	"github.com/joseph-ayodele/dqe-extractor/internal/boq"
	"github.com/joseph-ayodele/dqe-extractor/internal/common"
	"github.com/joseph-ayodele/dqe-extractor/internal/patterns"
)

// Sheet is one grid ready for extraction.
type Sheet struct {
	Index int
	Name  string
	Grid  boq.Grid
	// Mapping is set when the source knows its column layout.
	Mapping boq.ColumnMapping
	// Type is set when the source knows the document type.
	Type constants.DocumentType
}

// Workbook is everything read from one file.
type Workbook struct {
	Path     string
	Format   string
	Pages    int
	Sheets   []Sheet
	Warnings []string
}

// Reader opens files of any supported format.
type Reader struct {
	xlsx *XLSXReader
	pdf  *PDFReader
}

// NewReader wires the format readers. A nil runner executes real commands.
func NewReader(lib *patterns.Library, pdftotext string, runner Runner, logger *slog.Logger) *Reader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reader{
		xlsx: NewXLSXReader(logger),
		pdf:  NewPDFReader(lib, pdftotext, runner, logger),
	}
}

// Open reads path according to its extension.
func (r *Reader) Open(ctx context.Context, path string) (Workbook, error) {
	switch constants.MapExtToFormat(filepath.Ext(path)) {
	case constants.XLSX:
		return r.xlsx.Read(path)
	case constants.PDF:
		return r.pdf.Read(ctx, path)
	default:
		return Workbook{}, common.NewAppError(common.CodeSource,
			fmt.Sprintf("cannot read %q", filepath.Base(path)), common.ErrUnsupportedFormat)
	}
}
