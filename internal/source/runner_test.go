package source

import (
	"context"
	"errors"
	"os/exec"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToolRunnerMissingTool(t *testing.T) {
	_, _, err := NewToolRunner(time.Second, nil).Run(context.Background(), "dqe-no-such-tool")
	assert.ErrorIs(t, err, ErrToolMissing)
}

func TestToolRunnerReportsExitAndStderr(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
	r := NewToolRunner(5*time.Second, nil)
	r.MaxStderr = 8

	out, _, err := r.Run(context.Background(), "sh", "-c", "echo page; echo 'Syntax Error: bad xref' >&2; exit 3")
	require.Error(t, err)
	assert.Equal(t, "page\n", string(out))

	var te *ToolError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, "sh", te.Tool)
	assert.Equal(t, 3, te.ExitCode)
	assert.Equal(t, "Syntax E...(truncated)", te.Stderr)
}

func TestToolRunnerTimeout(t *testing.T) {
	if _, err := exec.LookPath("sleep"); err != nil {
		t.Skip("sleep not available")
	}
	_, _, err := NewToolRunner(50*time.Millisecond, nil).Run(context.Background(), "sleep", "5")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestCappedBuffer(t *testing.T) {
	b := &cappedBuffer{max: 4}
	n, err := b.Write([]byte("ab"))
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	_, _ = b.Write([]byte("cdef"))
	_, _ = b.Write([]byte("gh"))
	assert.Equal(t, "abcd", string(b.Bytes()))
	assert.True(t, strings.HasSuffix(b.String(), "(truncated)"))
}
