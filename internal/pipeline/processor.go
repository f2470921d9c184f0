// Package pipeline runs one file through reading, sheet selection,
// extraction (local engine or inference service), validation and persistence.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/dqe-extractor/constants"
	"github.com/joseph-ayodele/dqe-extractor/internal/boq"
	"github.com/joseph-ayodele/dqe-extractor/internal/common"
	"github.com/joseph-ayodele/dqe-extractor/internal/extract"
	"github.com/joseph-ayodele/dqe-extractor/internal/llm"
	"github.com/joseph-ayodele/dqe-extractor/internal/merge"
	"github.com/joseph-ayodele/dqe-extractor/internal/repository"
	"github.com/joseph-ayodele/dqe-extractor/internal/source"
)

// Options tune one file run.
type Options struct {
	// Mode defaults to local. Auto falls back to the inference service for
	// sheets where the local engine finds no item.
	Mode      constants.ExtractionMode
	Selection extract.Selection
	// Mapping and Type override detection on every selected sheet.
	Mapping  boq.ColumnMapping
	Type     constants.DocumentType
	Currency string
}

// FileResult is the outcome of one file.
type FileResult struct {
	Path     string
	Hash     string
	Format   string
	Pages    int
	Results  []boq.Result
	Warnings []string
	Elapsed  time.Duration
}

// Documents lists the extracted documents in sheet order.
func (r FileResult) Documents() []boq.Document {
	out := make([]boq.Document, 0, len(r.Results))
	for _, res := range r.Results {
		out = append(out, res.Document)
	}
	return out
}

// AllWarnings returns file warnings followed by per-document warnings.
func (r FileResult) AllWarnings() []string {
	out := append([]string{}, r.Warnings...)
	for _, res := range r.Results {
		out = append(out, res.Warnings...)
	}
	return out
}

// Deps are the collaborators of a Processor. Drafts and Store are optional.
type Deps struct {
	Engine *extract.Engine
	Merger *merge.Merger
	Reader *source.Reader
	Drafts llm.DraftExtractor
	Store  repository.ExtractionRepository
	Logger *slog.Logger
}

// Processor coordinates the stages for one file at a time. It is safe for
// concurrent use when its collaborators are.
type Processor struct {
	engine *extract.Engine
	merger *merge.Merger
	reader *source.Reader
	drafts llm.DraftExtractor
	store  repository.ExtractionRepository
	logger *slog.Logger

	now   func() time.Time
	newID func() uuid.UUID
}

func NewProcessor(d Deps) *Processor {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.Engine == nil {
		d.Engine = extract.NewEngine(nil)
	}
	if d.Merger == nil {
		d.Merger = merge.NewMerger(d.Engine.Library())
	}
	if d.Reader == nil {
		d.Reader = source.NewReader(d.Engine.Library(), "", nil, d.Logger)
	}
	return &Processor{
		engine: d.Engine,
		merger: d.Merger,
		reader: d.Reader,
		drafts: d.Drafts,
		store:  d.Store,
		logger: d.Logger,
		now:    func() time.Time { return time.Now().UTC() },
		newID:  uuid.New,
	}
}

// ProcessFile extracts every selected sheet of path. A sheet that fails is
// reported as a warning; the run fails only when no sheet could be extracted.
func (p *Processor) ProcessFile(ctx context.Context, path string, opts Options) (*FileResult, error) {
	start := time.Now()
	mode := opts.Mode
	if mode == "" {
		mode = constants.ModeLocal
	}
	if mode == constants.ModeAI && p.drafts == nil {
		return nil, common.NewAppError(common.CodeConfig, "ai mode needs an inference client", common.ErrConfig)
	}

	in, err := p.readInput(ctx, path, opts.Selection)
	if err != nil {
		p.logger.Error("processor.read.failed", "path", path, "err", err)
		return nil, err
	}
	ctx = common.WithContentHash(ctx, in.hash)
	p.logger.Info("processor.read.ok",
		"path", path,
		"hash", in.hash,
		"format", in.workbook.Format,
		"sheets", len(in.workbook.Sheets),
		"selected", len(in.selected),
	)

	out := &FileResult{
		Path:     path,
		Hash:     in.hash,
		Format:   in.workbook.Format,
		Pages:    in.workbook.Pages,
		Warnings: append([]string{}, in.workbook.Warnings...),
	}

	var failures []error
	for _, sheet := range in.selected {
		res, err := p.extractSheet(ctx, sheet, in.workbook.Pages, mode, opts)
		if err != nil {
			p.logger.Warn("processor.sheet.failed", "path", path, "sheet", sheet.Name, "err", err)
			out.Warnings = append(out.Warnings, fmt.Sprintf("%s: %v", sheet.Name, err))
			failures = append(failures, err)
			continue
		}
		p.stamp(&res.Document, path, in.hash)
		p.persist(ctx, res, out)
		out.Results = append(out.Results, res)
		p.logger.Info("processor.sheet.ok",
			"sheet", sheet.Name,
			"type", string(res.Document.Type),
			"mode", string(res.Document.Source.Mode),
			"items", res.Document.ItemCount(),
			"warnings", len(res.Warnings),
		)
	}
	out.Elapsed = time.Since(start)

	if len(out.Results) == 0 && len(failures) > 0 {
		return out, common.NewAppError(common.CodeStructural,
			fmt.Sprintf("no sheet of %q could be extracted", filepath.Base(path)), errors.Join(failures...))
	}
	return out, nil
}

func (p *Processor) stamp(d *boq.Document, path, hash string) {
	d.ID = p.newID()
	d.Source.Path = path
	d.Source.Hash = hash
	d.Source.ExtractedAt = p.now()
}

func (p *Processor) persist(ctx context.Context, res boq.Result, out *FileResult) {
	if p.store == nil {
		return
	}
	if err := p.store.Save(ctx, repository.NewExtraction(res)); err != nil {
		out.Warnings = append(out.Warnings, fmt.Sprintf("%s: not persisted: %v", res.Document.Name, err))
	}
}
