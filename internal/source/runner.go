package source

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"
)

// ErrToolMissing is returned when an external text tool is not installed.
var ErrToolMissing = errors.New("text tool not found")

// Runner executes an external text tool. Tests substitute a fake.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error)
}

// ToolError describes a text tool that ran and failed.
type ToolError struct {
	Tool     string
	ExitCode int
	Stderr   string
	Err      error
}

func (e *ToolError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("%s exited with %d: %s", e.Tool, e.ExitCode, e.Stderr)
	}
	return fmt.Sprintf("%s: %v", e.Tool, e.Err)
}

func (e *ToolError) Unwrap() error { return e.Err }

// ToolRunner runs text tools with a per-call timeout and keeps at most
// MaxStderr bytes of diagnostics.
type ToolRunner struct {
	Timeout   time.Duration
	MaxStderr int
	logger    *slog.Logger
}

func NewToolRunner(timeout time.Duration, logger *slog.Logger) *ToolRunner {
	if logger == nil {
		logger = slog.Default()
	}
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	return &ToolRunner{Timeout: timeout, MaxStderr: 512, logger: logger}
}

func (r *ToolRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	bin, err := exec.LookPath(name)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %s", ErrToolMissing, name)
	}

	ctx, cancel := context.WithTimeout(ctx, r.Timeout)
	defer cancel()

	start := time.Now()
	cmd := exec.CommandContext(ctx, bin, args...)
	var out bytes.Buffer
	errb := &cappedBuffer{max: r.MaxStderr}
	cmd.Stdout = &out
	cmd.Stderr = errb

	err = cmd.Run()
	elapsed := time.Since(start).Milliseconds()
	if err != nil {
		te := &ToolError{Tool: name, ExitCode: -1, Stderr: strings.TrimSpace(errb.String()), Err: err}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			te.ExitCode = exitErr.ExitCode()
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			te.Err = ctxErr
		}
		r.logger.Warn("source.tool.failed", "tool", name, "exit_code", te.ExitCode, "duration_ms", elapsed, "stderr", te.Stderr)
		return out.Bytes(), errb.Bytes(), te
	}
	r.logger.Debug("source.tool.ok", "tool", name, "duration_ms", elapsed, "stdout_bytes", out.Len())
	return out.Bytes(), errb.Bytes(), nil
}

// cappedBuffer keeps the first max bytes written and discards the rest.
type cappedBuffer struct {
	buf       bytes.Buffer
	max       int
	truncated bool
}

func (c *cappedBuffer) Write(p []byte) (int, error) {
	if room := c.max - c.buf.Len(); room > 0 {
		if len(p) > room {
			c.buf.Write(p[:room])
			c.truncated = true
		} else {
			c.buf.Write(p)
		}
	} else if len(p) > 0 {
		c.truncated = true
	}
	return len(p), nil
}

func (c *cappedBuffer) Bytes() []byte { return c.buf.Bytes() }

func (c *cappedBuffer) String() string {
	if c.truncated {
		return c.buf.String() + "...(truncated)"
	}
	return c.buf.String()
}
