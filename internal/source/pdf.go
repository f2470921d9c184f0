package source

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/joseph-ayodele/dqe-extractor/constants"
	"github.com/joseph-ayodele/dqe-extractor/internal/common"
	"github.com/joseph-ayodele/dqe-extractor/internal/patterns"
)

// PDFReader converts a PDF into one grid. Text comes from pdftotext in
// layout mode; when the command is missing or fails, the page content
// streams are decoded with pdfcpu instead.
type PDFReader struct {
	lib       *patterns.Library
	pdftotext string
	runner    Runner
	logger    *slog.Logger
}

func NewPDFReader(lib *patterns.Library, pdftotext string, runner Runner, logger *slog.Logger) *PDFReader {
	if lib == nil {
		lib = patterns.Default()
	}
	if logger == nil {
		logger = slog.Default()
	}
	if runner == nil {
		runner = NewToolRunner(0, logger)
	}
	if pdftotext == "" {
		pdftotext = "pdftotext"
	}
	return &PDFReader{lib: lib, pdftotext: pdftotext, runner: runner, logger: logger}
}

// Read extracts the text of path and parses it into a single sheet named
// after the file.
func (r *PDFReader) Read(ctx context.Context, path string) (Workbook, error) {
	wb := Workbook{Path: path, Format: constants.PDF}

	text, pages, err := r.layoutText(ctx, path)
	if err != nil {
		r.logger.Info("source.pdf.fallback", "path", path, "error", err)
		wb.Warnings = append(wb.Warnings, fmt.Sprintf("pdftotext unavailable, using content streams: %v", err))

		var ferr error
		text, pages, ferr = streamText(path)
		if ferr != nil {
			return Workbook{}, common.NewAppError(common.CodeSource, "read pdf text", errors.Join(err, ferr))
		}
	}

	name := filepath.Base(path)
	wb.Pages = pages
	wb.Sheets = []Sheet{{
		Index:   0,
		Name:    name,
		Grid:    TextGrid(r.lib, name, text),
		Mapping: TextMapping(),
		Type:    constants.DocumentDetailed,
	}}
	r.logger.Debug("source.pdf.read", "path", path, "pages", pages, "rows", wb.Sheets[0].Grid.Len())
	return wb, nil
}

func (r *PDFReader) layoutText(ctx context.Context, path string) (string, int, error) {
	// pdftotext -layout -enc UTF-8 -eol unix <path> -
	out, _, err := r.runner.Run(ctx, r.pdftotext, "-layout", "-enc", "UTF-8", "-eol", "unix", path, "-")
	if err != nil {
		return "", 0, err
	}
	text := string(out)
	// pages are separated by form feeds
	pages := 1 + strings.Count(strings.TrimRight(text, "\f\n"), "\f")
	return text, pages, nil
}
