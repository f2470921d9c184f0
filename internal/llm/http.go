package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/dqe-extractor/internal/common"
)

// MaxResponseBytes is the default cap on an inference response body.
const MaxResponseBytes int64 = 8 << 20

var (
	ErrResponseTooLarge = errors.New("inference response too large")
	ErrBadStatus        = errors.New("inference endpoint returned non-2xx status")
)

// Request is one JSON POST to an inference endpoint.
type Request struct {
	URL      string
	Headers  map[string]string
	Body     any
	MaxBytes int64 // 0 means MaxResponseBytes
}

// SendJSON posts r.Body as JSON and returns the response body with its status.
// Every failure is an INFERENCE AppError; on a bad status or an oversized
// body the bytes read so far are returned too.
func SendJSON(ctx context.Context, client *http.Client, r Request, logger *slog.Logger) ([]byte, int, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if client == nil {
		client = &http.Client{Timeout: 45 * time.Second}
	}
	limit := r.MaxBytes
	if limit <= 0 {
		limit = MaxResponseBytes
	}

	reqID := uuid.New().String()
	start := time.Now()

	bs, err := json.Marshal(r.Body)
	if err != nil {
		logger.Error("llm.http.encode_error", "req_id", reqID, "error", err)
		return nil, 0, inference("encode request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.URL, bytes.NewReader(bs))
	if err != nil {
		logger.Error("llm.http.build_request_error", "req_id", reqID, "error", err)
		return nil, 0, inference("build request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range r.Headers {
		req.Header.Set(k, v)
	}

	logger.Info("llm.http.request", "req_id", reqID, "url", r.URL, "content_length", len(bs))

	resp, err := client.Do(req)
	if err != nil {
		logger.Error("llm.http.send_error", "req_id", reqID, "error", err, "elapsed_ms", time.Since(start).Milliseconds())
		return nil, 0, inference("send request", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logger.Warn("llm.http.response_body_close_error", "req_id", reqID, "error", err)
		}
	}()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		logger.Error("llm.http.read_error", "req_id", reqID, "status", resp.StatusCode, "error", err)
		return raw, resp.StatusCode, inference("read response", err)
	}

	logger.Info("llm.http.response",
		"req_id", reqID,
		"status", resp.StatusCode,
		"bytes", len(raw),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)

	if int64(len(raw)) > limit {
		return raw[:limit], resp.StatusCode, inference(fmt.Sprintf("response exceeds %d bytes", limit), ErrResponseTooLarge)
	}
	if resp.StatusCode/100 != 2 {
		return raw, resp.StatusCode, inference(fmt.Sprintf("status %d", resp.StatusCode), ErrBadStatus)
	}
	return raw, resp.StatusCode, nil
}

func inference(msg string, cause error) error {
	return common.NewAppError(common.CodeInference, msg, cause)
}
