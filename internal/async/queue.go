package async

import (
	"context"
	"errors"
	"time"

	"github.com/joseph-ayodele/dqe-extractor/internal/pipeline"
)

// ErrQueueClosed is returned by Enqueue after Shutdown.
var ErrQueueClosed = errors.New("queue is shutting down")

// Job asks for one file to be extracted.
type Job struct {
	Path        string
	Options     pipeline.Options
	SubmittedAt time.Time
	TraceID     string
}

type Queue interface {
	Enqueue(ctx context.Context, job Job) error
	Shutdown(ctx context.Context)
}

// Processor is what the workers run for each job.
type Processor interface {
	ProcessFile(ctx context.Context, path string, opts pipeline.Options) (*pipeline.FileResult, error)
}

// ResultHandler receives every finished job. It is called from worker
// goroutines and must be safe for concurrent use.
type ResultHandler func(job Job, res *pipeline.FileResult, err error)
