package async

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/dqe-extractor/internal/pipeline"
)

type fakeProcessor struct {
	mu      sync.Mutex
	paths   []string
	release chan struct{}
}

func (f *fakeProcessor) ProcessFile(ctx context.Context, path string, _ pipeline.Options) (*pipeline.FileResult, error) {
	if f.release != nil {
		select {
		case <-f.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	f.mu.Lock()
	f.paths = append(f.paths, path)
	f.mu.Unlock()
	if path == "bad.xlsx" {
		return nil, errors.New("boom")
	}
	return &pipeline.FileResult{Path: path}, nil
}

type collector struct {
	mu   sync.Mutex
	ok   []string
	errs []string
}

func (c *collector) handle(job Job, res *pipeline.FileResult, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.errs = append(c.errs, job.Path)
		return
	}
	c.ok = append(c.ok, res.Path)
}

func TestQueueProcessesAndDrains(t *testing.T) {
	proc := &fakeProcessor{}
	c := &collector{}
	q := NewProcessorQueue(proc, nil, WithWorkers(2), WithResultHandler(c.handle))

	for _, p := range []string{"a.xlsx", "b.pdf", "bad.xlsx"} {
		require.NoError(t, q.Enqueue(context.Background(), Job{Path: p}))
	}
	q.Shutdown(context.Background())

	assert.ElementsMatch(t, []string{"a.xlsx", "b.pdf"}, c.ok)
	assert.Equal(t, []string{"bad.xlsx"}, c.errs)
}

func TestQueueRejectsAfterShutdown(t *testing.T) {
	q := NewProcessorQueue(&fakeProcessor{}, nil)
	q.Shutdown(context.Background())
	q.Shutdown(context.Background())

	err := q.Enqueue(context.Background(), Job{Path: "a.xlsx"})
	assert.ErrorIs(t, err, ErrQueueClosed)
}

func TestQueueBackpressureRespectsContext(t *testing.T) {
	proc := &fakeProcessor{release: make(chan struct{})}
	q := NewProcessorQueue(proc, nil, WithWorkers(1), WithQueueSize(1))

	// One job is held by the worker, one fills the buffer.
	require.NoError(t, q.Enqueue(context.Background(), Job{Path: "1.xlsx"}))
	require.Eventually(t, func() bool { return len(q.ch) == 0 }, time.Second, 5*time.Millisecond)
	require.NoError(t, q.Enqueue(context.Background(), Job{Path: "2.xlsx"}))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := q.Enqueue(ctx, Job{Path: "3.xlsx"})
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	close(proc.release)
	q.Shutdown(context.Background())
	assert.ElementsMatch(t, []string{"1.xlsx", "2.xlsx"}, proc.paths)
}

func TestQueueTimeoutCancelsJob(t *testing.T) {
	proc := &fakeProcessor{release: make(chan struct{})}
	c := &collector{}
	q := NewProcessorQueue(proc, nil, WithWorkers(1), WithProcessTimeout(10*time.Millisecond), WithResultHandler(c.handle))

	require.NoError(t, q.Enqueue(context.Background(), Job{Path: "slow.xlsx"}))
	q.Shutdown(context.Background())
	assert.Equal(t, []string{"slow.xlsx"}, c.errs)
}
