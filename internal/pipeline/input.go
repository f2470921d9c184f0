package pipeline

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"os"

	"github.com/joseph-ayodele/dqe-extractor/internal/common"
	"github.com/joseph-ayodele/dqe-extractor/internal/extract"
	"github.com/joseph-ayodele/dqe-extractor/internal/source"
)

// hashLength is the number of hex characters kept from the file digest.
const hashLength = 16

type input struct {
	hash     string
	workbook source.Workbook
	previews []extract.SheetPreview
	selected []source.Sheet
}

func (p *Processor) readInput(ctx context.Context, path string, sel extract.Selection) (input, error) {
	hash, err := HashFile(path)
	if err != nil {
		return input{}, common.NewAppError(common.CodeSource, "hash file", err)
	}
	wb, err := p.reader.Open(ctx, path)
	if err != nil {
		return input{}, err
	}

	all := make([]extract.SheetPreview, 0, len(wb.Sheets))
	for _, s := range wb.Sheets {
		pv := p.engine.Preview(s.Index, s.Grid)
		if s.Type != "" {
			pv.Type = s.Type
		}
		all = append(all, pv)
	}
	previews := sel.Apply(all)

	in := input{hash: hash, workbook: wb, previews: previews}
	for i, pv := range previews {
		if pv.Selected {
			in.selected = append(in.selected, wb.Sheets[i])
		}
	}
	if len(in.selected) == 0 {
		return in, common.NewAppError(common.CodeConfig, "selection matches no sheet", common.ErrNoSheetsSelected)
	}
	return in, nil
}

// HashFile returns the first 16 hex characters of the SHA-256 of path.
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil))[:hashLength], nil
}

// Analysis previews a file without extracting it.
type Analysis struct {
	Path     string                  `json:"path"`
	Hash     string                  `json:"hash"`
	Format   string                  `json:"format"`
	Pages    int                     `json:"pages,omitempty"`
	Sheets   []extract.SheetPreview  `json:"sheets"`
	Summary  extract.AnalysisSummary `json:"summary"`
	Warnings []string                `json:"warnings,omitempty"`
}

// Analyze reads path and previews every sheet, marking those sel selects.
func (p *Processor) Analyze(ctx context.Context, path string, sel extract.Selection) (*Analysis, error) {
	in, err := p.readInput(ctx, path, sel)
	if err != nil && !errors.Is(err, common.ErrNoSheetsSelected) {
		p.logger.Error("processor.analyze.failed", "path", path, "err", err)
		return nil, err
	}
	p.logger.Info("processor.analyze.ok", "path", path, "sheets", len(in.previews))
	return &Analysis{
		Path:     path,
		Hash:     in.hash,
		Format:   in.workbook.Format,
		Pages:    in.workbook.Pages,
		Sheets:   in.previews,
		Summary:  extract.Summarize(in.previews),
		Warnings: in.workbook.Warnings,
	}, nil
}
