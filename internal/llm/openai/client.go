package openai

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/dqe-extractor/internal/common"
	"github.com/joseph-ayodele/dqe-extractor/internal/llm"
)

// ExtractDraft implements llm.DraftExtractor over chat/completions in JSON mode.
func (c *Client) ExtractDraft(ctx context.Context, req llm.DraftRequest) (llm.DraftDocument, []byte, error) {
	rid := uuid.New().String()
	start := time.Now()

	c.log.Info("llm.extract.start",
		"req_id", rid,
		"model", c.cfg.Model,
		"temp", c.cfg.Temperature,
		"file", req.FileName,
		"text_len", len(req.Text),
		"pages", req.Pages,
		"categories", len(req.Categories),
	)

	schema := llm.BuildDraftJSONSchema(req.Categories)
	body := map[string]any{
		"model":           c.cfg.Model,
		"temperature":     c.cfg.Temperature,
		"response_format": map[string]any{"type": "json_object"},
		"messages": []map[string]any{
			{"role": "system", "content": llm.BuildSystemPrompt(req)},
			{"role": "user", "content": llm.BuildUserPrompt(req)},
			{"role": "system", "content": "JSON Schema:\n" + mustJSON(schema)},
		},
	}
	if c.cfg.MaxTokens > 0 {
		body["max_tokens"] = c.cfg.MaxTokens
	}

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	headers := map[string]string{"Authorization": "Bearer " + c.cfg.APIKey}
	raw, status, err := llm.SendJSON(ctx, c.httpClient, llm.Request{URL: endpoint, Headers: headers, Body: body}, c.log)
	if err != nil {
		c.log.Error("llm.extract.http_error",
			"req_id", rid, "status", status, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return llm.DraftDocument{}, raw, err
	}

	var cc struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(raw, &cc); err != nil {
		c.log.Error("llm.extract.decode_error",
			"req_id", rid, "error", err, "raw_bytes", len(raw),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return llm.DraftDocument{}, raw, inferenceError("decode openai response", err)
	}
	if len(cc.Choices) == 0 {
		c.log.Error("llm.extract.no_choices", "req_id", rid, "elapsed_ms", time.Since(start).Milliseconds())
		return llm.DraftDocument{}, raw, inferenceError("no choices in openai response", nil)
	}

	content, err := llm.ExtractJSONObject(cc.Choices[0].Message.Content)
	if err != nil {
		c.log.Error("llm.extract.no_json", "req_id", rid, "error", err)
		return llm.DraftDocument{}, []byte(cc.Choices[0].Message.Content), inferenceError("parse model reply", err)
	}

	if err := c.validator.Validate(req.Categories, content); err != nil {
		if !c.cfg.LenientOptional {
			c.log.Error("llm.extract.schema_validation_failed", "req_id", rid, "error", err)
			return llm.DraftDocument{}, content, inferenceError("schema validation failed", err)
		}
		cleaned, dropped, sErr := llm.SanitizeDraftJSON(content, req.Categories, c.log)
		if sErr != nil {
			c.log.Error("llm.extract.sanitize_failed", "req_id", rid, "error", sErr)
			return llm.DraftDocument{}, content, inferenceError("sanitize failed", sErr)
		}
		if vErr := c.validator.Validate(req.Categories, cleaned); vErr != nil {
			c.log.Error("llm.extract.schema_validation_failed", "req_id", rid, "error", vErr)
			return llm.DraftDocument{}, cleaned, inferenceError("schema validation failed", vErr)
		}
		c.log.Warn("llm.extract.lenient_sanitize_applied", "req_id", rid, "dropped", dropped)
		content = cleaned
	}

	var out llm.DraftDocument
	if err := json.Unmarshal(content, &out); err != nil {
		c.log.Error("llm.extract.unmarshal_failed", "req_id", rid, "error", err)
		return llm.DraftDocument{}, content, inferenceError("unmarshal draft", err)
	}

	c.log.Info("llm.extract.ok",
		"req_id", rid,
		"elements", len(out.Records),
		"lots", len(out.Lots),
		"currency", out.Currency,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return out, content, nil
}

func inferenceError(msg string, cause error) error {
	if cause == nil {
		cause = common.ErrInternal
	}
	return common.NewAppError(common.CodeInference, msg, cause)
}

func mustJSON(v any) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}
