package main

import (
	"context"
	"log/slog"

	"github.com/joseph-ayodele/dqe-extractor/constants"
	"github.com/joseph-ayodele/dqe-extractor/internal/common"
	"github.com/joseph-ayodele/dqe-extractor/internal/export"
	"github.com/joseph-ayodele/dqe-extractor/internal/extract"
	"github.com/joseph-ayodele/dqe-extractor/internal/llm/openai"
	"github.com/joseph-ayodele/dqe-extractor/internal/merge"
	"github.com/joseph-ayodele/dqe-extractor/internal/patterns"
	"github.com/joseph-ayodele/dqe-extractor/internal/pipeline"
	"github.com/joseph-ayodele/dqe-extractor/internal/repository"
	"github.com/joseph-ayodele/dqe-extractor/internal/source"
)

// app holds the wired services of one command run.
type app struct {
	cfg      *common.Config
	logger   *slog.Logger
	lib      *patterns.Library
	engine   *extract.Engine
	db       *repository.DB
	store    repository.ExtractionRepository
	proc     *pipeline.Processor
	exporter *export.Service
}

type appNeeds struct {
	mode  constants.ExtractionMode
	store bool // fail unless an extraction store is configured
}

func newApp(ctx context.Context, opts *rootOptions, needs appNeeds) (*app, error) {
	logger := slog.Default()
	cfg := common.LoadConfig()
	if opts.patterns != "" {
		cfg.Patterns.File = opts.patterns
	}
	if opts.dbURL != "" {
		cfg.Database.DSN = opts.dbURL
	}
	if needs.mode == "" {
		needs.mode = constants.ModeLocal
	}
	if err := cfg.Validate(needs.mode); err != nil {
		return nil, err
	}
	if needs.store && cfg.Database.DSN == "" {
		return nil, common.NewAppError(common.CodeConfig, "DQE_DB_URL or --db is required", common.ErrConfig)
	}

	lib := patterns.Default()
	if cfg.Patterns.File != "" {
		var err error
		if lib, err = patterns.Load(cfg.Patterns.File); err != nil {
			return nil, common.NewAppError(common.CodeConfig, "load patterns", err)
		}
		logger.Info("patterns.loaded", "file", cfg.Patterns.File)
	}

	a := &app{
		cfg:      cfg,
		logger:   logger,
		lib:      lib,
		engine:   extract.NewEngine(lib),
		exporter: export.NewService(logger),
	}

	if cfg.Database.DSN != "" {
		db, err := repository.Open(ctx, repository.ConfigFrom(cfg.Database), logger)
		if err != nil {
			return nil, err
		}
		a.db = db
		a.store = repository.NewExtractionRepository(db, logger)
	}

	deps := pipeline.Deps{
		Engine: a.engine,
		Merger: merge.NewMerger(lib),
		Reader: source.NewReader(lib, cfg.PDF.Pdftotext, nil, logger),
		Store:  a.store,
		Logger: logger,
	}
	if cfg.LLM.APIKey != "" && needs.mode != constants.ModeLocal {
		deps.Drafts = openai.NewClient(openai.Config{
			APIKey:          cfg.LLM.APIKey,
			BaseURL:         cfg.LLM.BaseURL,
			Model:           cfg.LLM.Model,
			Temperature:     cfg.LLM.Temperature,
			Timeout:         cfg.LLM.Timeout,
			LenientOptional: true,
		}, logger)
		logger.Info("llm.client.ready", "model", cfg.LLM.Model)
	} else if needs.mode == constants.ModeAuto {
		logger.Warn("llm.client.disabled", "reason", "OPENAI_API_KEY not set, auto mode stays local")
	}
	a.proc = pipeline.NewProcessor(deps)
	return a, nil
}

func (a *app) Close() {
	if a.db != nil {
		a.db.Close(a.logger)
	}
}
