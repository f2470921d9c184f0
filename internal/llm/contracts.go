package llm

import (
	"context"

	"github.com/joseph-ayodele/dqe-extractor/internal/boq"
)

// DraftDocument is the unvalidated shape returned by the inference service.
type DraftDocument = boq.Draft

// DraftRequest carries the document text and the taxonomy the model must use.
type DraftRequest struct {
	Text            string
	FileName        string
	Pages           int
	Categories      []string
	DefaultCurrency string
}

// DraftExtractor is the interface the pipeline depends on.
type DraftExtractor interface {
	ExtractDraft(ctx context.Context, req DraftRequest) (DraftDocument, []byte /*rawJSON*/, error)
}
