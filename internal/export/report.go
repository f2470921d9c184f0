// Package export renders extraction results as JSON, CSV or XLSX.
package export

import (
	"time"

	"github.com/joseph-ayodele/dqe-extractor/constants"
	"github.com/joseph-ayodele/dqe-extractor/internal/aggregate"
	"github.com/joseph-ayodele/dqe-extractor/internal/boq"
)

// Report is the exported view of one or more extracted documents.
type Report struct {
	File        string                   `json:"file,omitempty"`
	Hash        string                   `json:"hash,omitempty"`
	Mode        constants.ExtractionMode `json:"mode,omitempty"`
	ExtractedAt time.Time                `json:"extracted_at"`
	Currency    string                   `json:"currency"`
	ItemCount   int                      `json:"item_count"`
	Total       float64                  `json:"total"`
	Documents   []boq.Document           `json:"documents"`
	Materials   []boq.AggregatedMaterial `json:"materials"`
	Summaries   aggregate.Summaries      `json:"summaries"`
	Warnings    []string                 `json:"warnings,omitempty"`
}

// NewReport derives totals and aggregates from docs. Source details come from
// the first document.
func NewReport(docs []boq.Document, warnings []string) Report {
	r := Report{
		Currency:  constants.DefaultCurrency,
		Documents: docs,
		Materials: aggregate.ByMaterial(docs...),
		Summaries: aggregate.Summarize(docs...),
		Warnings:  warnings,
	}
	if r.Documents == nil {
		r.Documents = []boq.Document{}
	}
	for _, d := range docs {
		r.ItemCount += d.ItemCount()
		r.Total += d.Total
	}
	if len(docs) > 0 {
		src := docs[0].Source
		r.File, r.Hash, r.Mode, r.ExtractedAt = src.Path, src.Hash, src.Mode, src.ExtractedAt
		if docs[0].Currency != "" {
			r.Currency = docs[0].Currency
		}
	}
	return r
}
