package main

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/dqe-extractor/internal/async"
	"github.com/joseph-ayodele/dqe-extractor/internal/boq"
	"github.com/joseph-ayodele/dqe-extractor/internal/export"
	"github.com/joseph-ayodele/dqe-extractor/internal/ingest"
	"github.com/joseph-ayodele/dqe-extractor/internal/pipeline"
)

// batchCollector gathers finished jobs from the queue workers.
type batchCollector struct {
	mu       sync.Mutex
	results  []*pipeline.FileResult
	warnings []string
	failed   int
}

func (c *batchCollector) handle(job async.Job, res *pipeline.FileResult, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.failed++
		c.warnings = append(c.warnings, fmt.Sprintf("%s: %v", job.Path, err))
		return
	}
	c.results = append(c.results, res)
}

// report orders documents by file path so output does not depend on
// worker scheduling.
func (c *batchCollector) report() export.Report {
	c.mu.Lock()
	defer c.mu.Unlock()
	slices.SortFunc(c.results, func(a, b *pipeline.FileResult) int { return strings.Compare(a.Path, b.Path) })
	var docs []boq.Document
	warnings := append([]string{}, c.warnings...)
	for _, r := range c.results {
		docs = append(docs, r.Documents()...)
		warnings = append(warnings, r.AllWarnings()...)
	}
	return export.NewReport(docs, warnings)
}

func newBatchCommand(root *rootOptions) *cobra.Command {
	var f extractFlags
	var (
		output     string
		format     string
		exts       []string
		skipHidden bool
		watch      bool
		debounce   time.Duration
		workers    int
	)
	cmd := &cobra.Command{
		Use:   "batch <dir>...",
		Short: "Extract every workbook and PDF found under the given directories",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := f.options("")
			if err != nil {
				return err
			}
			a, err := newApp(cmd.Context(), root, appNeeds{mode: opts.Mode})
			if err != nil {
				return err
			}
			defer a.Close()
			if opts.Currency == "" {
				opts.Currency = a.cfg.Export.Currency
			}

			if workers <= 0 {
				workers = a.cfg.Workers.Count
			}
			c := &batchCollector{}
			q := async.NewProcessorQueue(a.proc, a.logger,
				async.WithWorkers(workers),
				async.WithQueueSize(a.cfg.Workers.QueueSize),
				async.WithProcessTimeout(a.cfg.Workers.JobTimeout),
				async.WithResultHandler(c.handle),
			)
			ing := ingest.NewFSIngestor(q, opts, a.logger)
			ing.AllowedExts = ingest.ExtSet(exts)

			var runErr error
			if watch {
				runErr = ing.Watch(cmd.Context(), ingest.WatchConfig{
					Roots:       args,
					InitialScan: true,
					Debounce:    debounce,
				})
				if errors.Is(runErr, context.Canceled) {
					runErr = nil
				}
			} else {
				for _, dir := range args {
					if _, _, err := ing.IngestDirectory(cmd.Context(), dir, skipHidden); err != nil {
						runErr = err
						break
					}
				}
			}

			// Drain with a fresh context so an interrupt still lets queued jobs finish.
			shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Workers.JobTimeout)
			defer cancel()
			q.Shutdown(shutdownCtx)

			report := c.report()
			a.logger.Info("batch.done",
				"files", len(c.results),
				"failed", c.failed,
				"documents", len(report.Documents),
				"items", report.ItemCount,
				"total", report.Total,
			)
			if err := writeReport(cmd, a, report, output, format); err != nil {
				return err
			}
			return runErr
		},
	}
	f.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (.json, .csv or .xlsx); default stdout")
	cmd.Flags().StringVar(&format, "format", "json", "stdout format: json or csv")
	cmd.Flags().StringSliceVar(&exts, "ext", nil, "file extensions to pick up (default xlsx,xlsm,pdf)")
	cmd.Flags().BoolVar(&skipHidden, "skip-hidden", true, "skip dot files and directories")
	cmd.Flags().BoolVar(&watch, "watch", false, "keep watching the directories for new files until interrupted")
	cmd.Flags().DurationVar(&debounce, "debounce", 500*time.Millisecond, "coalesce file events within this window when watching")
	cmd.Flags().IntVar(&workers, "workers", 0, "concurrent extractions (default $DQE_WORKERS)")
	return cmd
}
