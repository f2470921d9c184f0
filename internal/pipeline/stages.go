package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/joseph-ayodele/dqe-extractor/constants"
	"github.com/joseph-ayodele/dqe-extractor/internal/boq"
	"github.com/joseph-ayodele/dqe-extractor/internal/common"
	"github.com/joseph-ayodele/dqe-extractor/internal/extract"
	"github.com/joseph-ayodele/dqe-extractor/internal/llm"
	"github.com/joseph-ayodele/dqe-extractor/internal/source"
)

func (p *Processor) extractSheet(ctx context.Context, sheet source.Sheet, pages int, mode constants.ExtractionMode, opts Options) (boq.Result, error) {
	switch mode {
	case constants.ModeAI:
		return p.extractAI(ctx, sheet, pages, opts)
	case constants.ModeAuto:
		res, err := p.extractLocal(sheet, opts)
		if p.drafts == nil || (err == nil && res.Document.ItemCount() > 0) {
			return res, err
		}
		p.logger.Info("processor.fallback.ai", "sheet", sheet.Name, "local_err", err)
		aiRes, aiErr := p.extractAI(ctx, sheet, pages, opts)
		if aiErr == nil {
			return aiRes, nil
		}
		if err != nil {
			return boq.Result{}, aiErr
		}
		res.Warnings = append(res.Warnings, fmt.Sprintf("%s: inference fallback failed: %v", sheet.Name, aiErr))
		return res, nil
	default:
		return p.extractLocal(sheet, opts)
	}
}

func (p *Processor) extractLocal(sheet source.Sheet, opts Options) (boq.Result, error) {
	eo := extract.Options{Mapping: sheet.Mapping, Type: sheet.Type, Currency: opts.Currency}
	if len(opts.Mapping) > 0 {
		eo.Mapping = opts.Mapping
	}
	if opts.Type != "" {
		eo.Type = opts.Type
	}
	res, err := p.engine.Extract(sheet.Grid, eo)
	if err != nil {
		return boq.Result{}, err
	}
	doc, warnings := p.merger.NormalizeDocument(res.Document)
	doc.Source.Mode = constants.ModeLocal
	res.Document = doc
	res.Warnings = append(res.Warnings, sheetWarnings(sheet.Name, warnings)...)
	return res, nil
}

func (p *Processor) extractAI(ctx context.Context, sheet source.Sheet, pages int, opts Options) (boq.Result, error) {
	if p.drafts == nil {
		return boq.Result{}, common.NewAppError(common.CodeConfig, "ai mode needs an inference client", common.ErrConfig)
	}
	text := GridText(sheet.Grid)
	if strings.TrimSpace(text) == "" {
		return boq.Result{}, common.NewAppError(common.CodeStructural,
			fmt.Sprintf("sheet %q has no text", sheet.Name), common.ErrEmptyGrid)
	}
	hash, _ := common.ContentHashFromContext(ctx)
	req := llm.DraftRequest{
		Text:            text,
		FileName:        sheet.Name,
		Pages:           max(pages, 1),
		Categories:      p.engine.Categorizer().Names(),
		DefaultCurrency: opts.Currency,
	}
	draft, raw, err := p.drafts.ExtractDraft(ctx, req)
	if err != nil {
		p.logger.Error("processor.ai.failed", "sheet", sheet.Name, "hash", hash, "err", err)
		return boq.Result{}, err
	}
	p.logger.Debug("processor.ai.ok", "sheet", sheet.Name, "hash", hash, "bytes", len(raw), "records", len(draft.Records))

	if strings.TrimSpace(draft.Currency) == "" {
		draft.Currency = opts.Currency
	}
	doc, warnings := p.merger.FromDraft(sheet.Name, draft)
	if opts.Type != "" {
		doc.Type = opts.Type
	} else if sheet.Type != "" {
		doc.Type = sheet.Type
	} else {
		doc.Type = p.engine.DetectDocumentType(sheet.Name, sheet.Grid)
	}
	doc.Metadata = p.engine.Locator().HarvestMetadata(sheet.Grid, p.engine.Library().Limits.MetadataRows)
	return boq.Result{Document: doc, Warnings: sheetWarnings(sheet.Name, warnings)}, nil
}

func sheetWarnings(name string, warnings []string) []string {
	for i, w := range warnings {
		warnings[i] = name + ": " + w
	}
	return warnings
}

// GridText renders a grid as plain text, one line per row with non-empty
// cells separated by a tab.
func GridText(g boq.Grid) string {
	var b strings.Builder
	for i := 0; i < g.Len(); i++ {
		values := g.Row(i).NonEmpty()
		if len(values) == 0 {
			continue
		}
		b.WriteString(strings.Join(values, "\t"))
		b.WriteByte('\n')
	}
	return b.String()
}
