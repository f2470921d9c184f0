package ingest

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/dqe-extractor/constants"
	"github.com/joseph-ayodele/dqe-extractor/internal/async"
	"github.com/joseph-ayodele/dqe-extractor/internal/common"
	"github.com/joseph-ayodele/dqe-extractor/internal/pipeline"
)

// FSIngestor reads from the local filesystem.
type FSIngestor struct {
	Queue       Enqueuer
	Options     pipeline.Options
	AllowedExts map[string]struct{} // lowercased sans '.'; nil -> default set
	logger      *slog.Logger
}

func NewFSIngestor(q Enqueuer, opts pipeline.Options, logger *slog.Logger) *FSIngestor {
	if logger == nil {
		logger = slog.Default()
	}
	return &FSIngestor{Queue: q, Options: opts, logger: logger}
}

func (i *FSIngestor) IngestPath(ctx context.Context, path string) (IngestionResult, error) {
	out := IngestionResult{SourcePath: path}

	abs, err := filepath.Abs(path)
	if err != nil {
		return out, fmt.Errorf("abs path: %w", err)
	}
	out.SourcePath = abs

	ext := constants.NormalizeExt(filepath.Ext(abs))
	out.FileExt = ext
	if ext == "" || !AllowedExt(ext, i.AllowedExts) {
		i.logger.Debug("ingest.skip.ext", "path", abs, "ext", ext)
		return out, common.NewAppError(common.CodeSource,
			fmt.Sprintf("unsupported or missing extension %q", ext), common.ErrUnsupportedFormat)
	}

	st, err := os.Stat(abs)
	if err != nil {
		return out, common.NewAppError(common.CodeSource, "stat", err)
	}
	if st.IsDir() {
		return out, common.NewAppError(common.CodeSource, "path is a directory", common.ErrInvalidInput)
	}

	job := async.Job{
		Path:        abs,
		Options:     i.Options,
		SubmittedAt: time.Now().UTC(),
		TraceID:     uuid.NewString(),
	}
	if err := i.Queue.Enqueue(ctx, job); err != nil {
		i.logger.Warn("ingest.enqueue.failed", "path", abs, "err", err)
		return out, err
	}
	out.TraceID = job.TraceID
	i.logger.Info("ingest.enqueued", "path", abs, "trace_id", job.TraceID)
	return out, nil
}

// IngestDirectory walks root, skips hidden entries if requested,
// and calls IngestPath for each matching file. Returns per-file results + aggregate stats.
func (i *FSIngestor) IngestDirectory(ctx context.Context, root string, skipHidden bool) ([]IngestionResult, DirStats, error) {
	if strings.TrimSpace(root) == "" {
		return nil, DirStats{}, common.NewAppError(common.CodeConfig, "root path is required", common.ErrInvalidInput)
	}

	var results []IngestionResult
	var stats DirStats

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		stats.Scanned++
		if walkErr != nil {
			results = append(results, IngestionResult{SourcePath: path, Err: walkErr.Error()})
			stats.Failed++
			return nil
		}
		if skipHidden && path != root && IsHidden(path) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			return nil
		}
		if !AllowedExt(filepath.Ext(path), i.AllowedExts) {
			return nil
		}
		stats.Matched++

		r, err := i.IngestPath(ctx, path)
		if err != nil {
			if errors.Is(err, async.ErrQueueClosed) {
				return err
			}
			r.Err = err.Error()
			results = append(results, r)
			stats.Failed++
			return nil
		}

		results = append(results, r)
		stats.Enqueued++
		return nil
	})

	i.logger.Info("ingest.directory.done",
		"root", root,
		"scanned", stats.Scanned,
		"matched", stats.Matched,
		"enqueued", stats.Enqueued,
		"failed", stats.Failed,
	)
	if err != nil {
		return results, stats, fmt.Errorf("walk: %w", err)
	}
	return results, stats, nil
}
