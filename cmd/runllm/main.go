package main

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joseph-ayodele/dqe-extractor/constants"
	"github.com/joseph-ayodele/dqe-extractor/internal/common"
	"github.com/joseph-ayodele/dqe-extractor/internal/llm/openai"
	"github.com/joseph-ayodele/dqe-extractor/internal/pipeline"
	"github.com/joseph-ayodele/dqe-extractor/internal/source"
)

// runllm sends the same file through the inference path several times, to
// compare replies of the model on one document.
func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	if len(os.Args) < 2 {
		logger.Error("usage: runllm <file> [times]")
		os.Exit(2)
	}
	path := os.Args[1]
	times := 3
	if len(os.Args) >= 3 {
		if n, err := strconv.Atoi(os.Args[2]); err == nil && n > 0 {
			times = n
		}
	}

	cfg := common.LoadConfig()
	if err := cfg.Validate(constants.ModeAI); err != nil {
		logger.Error("config", "error", err)
		os.Exit(2)
	}

	client := openai.NewClient(openai.Config{
		Model:           cfg.LLM.Model,
		APIKey:          cfg.LLM.APIKey,
		BaseURL:         cfg.LLM.BaseURL,
		Temperature:     cfg.LLM.Temperature,
		Timeout:         cfg.LLM.Timeout,
		LenientOptional: true,
	}, logger)
	proc := pipeline.NewProcessor(pipeline.Deps{
		Reader: source.NewReader(nil, cfg.PDF.Pdftotext, nil, logger),
		Drafts: client,
		Logger: logger,
	})

	base := filepath.Base(path)
	for i := 1; i <= times; i++ {
		runCtx, cancelRun := context.WithTimeout(context.Background(), 2*cfg.LLM.Timeout)
		start := time.Now()
		logger.Info("pipeline.run.start", "iter", i, "file", base)

		res, err := proc.ProcessFile(runCtx, path, pipeline.Options{Mode: constants.ModeAI, Currency: cfg.Export.Currency})
		cancelRun()

		if err != nil {
			logger.Error("pipeline.run.error", "iter", i, "err", err)
		} else {
			items, total := 0, 0.0
			for _, d := range res.Documents() {
				items += d.ItemCount()
				total += d.Total
			}
			logger.Info("pipeline.run.ok",
				"iter", i,
				"items", items,
				"total", total,
				"warnings", len(res.AllWarnings()),
				"elapsed_ms", time.Since(start).Milliseconds(),
			)
		}

		time.Sleep(750 * time.Millisecond)
	}

	logger.Info("done", "file", base, "times", times)
}
