package ingest

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/dqe-extractor/constants"
	"github.com/joseph-ayodele/dqe-extractor/internal/async"
	"github.com/joseph-ayodele/dqe-extractor/internal/common"
	"github.com/joseph-ayodele/dqe-extractor/internal/pipeline"
)

type fakeQueue struct {
	mu   sync.Mutex
	jobs []async.Job
	err  error
}

func (f *fakeQueue) Enqueue(_ context.Context, job async.Job) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.jobs = append(f.jobs, job)
	return nil
}

func (f *fakeQueue) paths() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.jobs))
	for _, j := range f.jobs {
		out = append(out, filepath.Base(j.Path))
	}
	return out
}

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
}

func TestIngestDirectory(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "a.xlsx"))
	touch(t, filepath.Join(root, "b.PDF"))
	touch(t, filepath.Join(root, "notes.txt"))
	touch(t, filepath.Join(root, ".hidden", "c.xlsx"))
	touch(t, filepath.Join(root, "sub", "d.xlsm"))

	q := &fakeQueue{}
	opts := pipeline.Options{Mode: constants.ModeAuto}
	results, stats, err := NewFSIngestor(q, opts, nil).IngestDirectory(context.Background(), root, true)
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"a.xlsx", "b.PDF", "d.xlsm"}, q.paths())
	assert.Len(t, results, 3)
	assert.Equal(t, uint32(3), stats.Matched)
	assert.Equal(t, uint32(3), stats.Enqueued)
	assert.Zero(t, stats.Failed)
	for _, j := range q.jobs {
		assert.True(t, filepath.IsAbs(j.Path))
		assert.NotEmpty(t, j.TraceID)
		assert.Equal(t, constants.ModeAuto, j.Options.Mode)
	}
}

func TestIngestDirectoryCustomExtensions(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "a.xlsx"))
	touch(t, filepath.Join(root, "b.pdf"))

	q := &fakeQueue{}
	ing := NewFSIngestor(q, pipeline.Options{}, nil)
	ing.AllowedExts = ExtSet([]string{" .PDF ", ""})
	_, stats, err := ing.IngestDirectory(context.Background(), root, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"b.pdf"}, q.paths())
	assert.Equal(t, uint32(1), stats.Enqueued)
}

func TestIngestDirectoryStopsWhenQueueCloses(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "a.xlsx"))
	touch(t, filepath.Join(root, "b.xlsx"))

	q := &fakeQueue{err: async.ErrQueueClosed}
	_, _, err := NewFSIngestor(q, pipeline.Options{}, nil).IngestDirectory(context.Background(), root, false)
	assert.ErrorIs(t, err, async.ErrQueueClosed)
}

func TestIngestPathErrors(t *testing.T) {
	ing := NewFSIngestor(&fakeQueue{}, pipeline.Options{}, nil)

	_, err := ing.IngestPath(context.Background(), "notes.docx")
	assert.ErrorIs(t, err, common.ErrUnsupportedFormat)

	_, err = ing.IngestPath(context.Background(), filepath.Join(t.TempDir(), "missing.xlsx"))
	assert.True(t, common.IsCode(err, common.CodeSource))

	_, _, err = ing.IngestDirectory(context.Background(), "  ", false)
	assert.ErrorIs(t, err, common.ErrInvalidInput)
}

func TestUtils(t *testing.T) {
	assert.True(t, AllowedExt(".XLSX", nil))
	assert.False(t, AllowedExt("docx", nil))
	assert.Nil(t, ExtSet(nil))
	assert.True(t, IsHidden("/a/.git"))
	assert.False(t, IsHidden("."))
	assert.False(t, IsHidden("/a/b.xlsx"))
}

func TestWatchEnqueuesExistingAndNewFiles(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "old.xlsx"))

	q := &fakeQueue{}
	ing := NewFSIngestor(q, pipeline.Options{}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- ing.Watch(ctx, WatchConfig{Roots: []string{root}, InitialScan: true, Debounce: 10 * time.Millisecond})
	}()

	require.Eventually(t, func() bool { return len(q.paths()) == 1 }, 2*time.Second, 10*time.Millisecond)
	touch(t, filepath.Join(root, "new.pdf"))
	touch(t, filepath.Join(root, "ignored.txt"))
	require.Eventually(t, func() bool {
		for _, p := range q.paths() {
			if p == "new.pdf" {
				return true
			}
		}
		return false
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("watch did not stop")
	}
	assert.NotContains(t, q.paths(), "ignored.txt")
}

func TestStartWatcherNeedsRoots(t *testing.T) {
	_, _, err := StartWatcher(context.Background(), WatchConfig{})
	assert.Error(t, err)
}
