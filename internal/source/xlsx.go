package source

import (
	"fmt"
	"log/slog"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/dqe-extractor/constants"
	"github.com/joseph-ayodele/dqe-extractor/internal/boq"
	"github.com/joseph-ayodele/dqe-extractor/internal/common"
)

// XLSXReader materializes every sheet of a workbook.
type XLSXReader struct {
	logger *slog.Logger
}

func NewXLSXReader(logger *slog.Logger) *XLSXReader {
	if logger == nil {
		logger = slog.Default()
	}
	return &XLSXReader{logger: logger}
}

// Read loads all sheets in workbook order. Cells are read raw so amounts keep
// their stored value rather than the display format. A sheet that cannot be
// read is skipped with a warning.
func (r *XLSXReader) Read(path string) (Workbook, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return Workbook{}, common.NewAppError(common.CodeSource, "open workbook", err)
	}
	defer func() { _ = f.Close() }()

	wb := Workbook{Path: path, Format: constants.XLSX}
	for i, name := range f.GetSheetList() {
		rows, err := f.GetRows(name, excelize.Options{RawCellValue: true})
		if err != nil {
			r.logger.Warn("source.xlsx.sheet_failed", "path", path, "sheet", name, "error", err)
			wb.Warnings = append(wb.Warnings, fmt.Sprintf("%s: unreadable sheet: %v", name, err))
			continue
		}
		wb.Sheets = append(wb.Sheets, Sheet{
			Index: i,
			Name:  name,
			Grid:  boq.NewGrid(name, rows),
		})
	}
	r.logger.Debug("source.xlsx.read", "path", path, "sheets", len(wb.Sheets))
	return wb, nil
}
