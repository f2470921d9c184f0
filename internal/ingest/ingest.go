// Package ingest discovers input files on disk and hands them to the
// extraction queue.
package ingest

import (
	"context"

	"github.com/joseph-ayodele/dqe-extractor/internal/async"
)

// IngestionResult is the per-file ingest outcome.
type IngestionResult struct {
	SourcePath string
	FileExt    string
	TraceID    string
	Err        string
}

// DirStats summarizes a directory ingest.
type DirStats struct {
	Scanned  uint32
	Matched  uint32
	Enqueued uint32
	Failed   uint32
}

// Ingestor is the behavior the CLI depends on.
type Ingestor interface {
	// IngestPath enqueues a single path.
	IngestPath(ctx context.Context, path string) (IngestionResult, error)
	// IngestDirectory enqueues all matching files under root.
	IngestDirectory(ctx context.Context, root string, skipHidden bool) ([]IngestionResult, DirStats, error)
}

var _ Ingestor = (*FSIngestor)(nil)

// Enqueuer is the part of the queue the ingestor uses.
type Enqueuer interface {
	Enqueue(ctx context.Context, job async.Job) error
}
