package boq

import (
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/dqe-extractor/constants"
)

// Attributes are technical details lifted from an item designation.
type Attributes struct {
	Dosage     string `json:"dosage,omitempty"`
	Dimensions string `json:"dimensions,omitempty"`
	Thickness  string `json:"thickness,omitempty"`
}

// Item is one priced line of a bill of quantities. Designation is never empty
// and Quantity defaults to 0 when the source value could not be parsed.
type Item struct {
	Code        string     `json:"code,omitempty"`
	Designation string     `json:"designation"`
	Unit        string     `json:"unit"`
	Quantity    float64    `json:"quantity"`
	UnitPrice   *float64   `json:"unit_price,omitempty"`
	TotalPrice  *float64   `json:"total_price,omitempty"`
	Category    string     `json:"category"`
	SubCategory string     `json:"sub_category,omitempty"`
	Section     string     `json:"section,omitempty"`
	LotNumber   string     `json:"lot_number,omitempty"`
	LotName     string     `json:"lot_name,omitempty"`
	Level       string     `json:"level,omitempty"`
	Attributes  Attributes `json:"attributes"`
}

// Total returns the total price or 0.
func (i Item) Total() float64 {
	if i.TotalPrice == nil {
		return 0
	}
	return *i.TotalPrice
}

// Category groups items under a section heading, in document order.
type Category struct {
	Name     string   `json:"name"`
	Items    []Item   `json:"items"`
	Subtotal *float64 `json:"subtotal,omitempty"`
}

// Metadata is harvested from the top of a sheet.
type Metadata struct {
	Date         string `json:"date,omitempty"`
	BuildingRef  string `json:"building_ref,omitempty"`
	DocumentRef  string `json:"document_ref,omitempty"`
	BuildingType string `json:"building_type,omitempty"`
}

// Source records where a document came from.
type Source struct {
	Path        string                   `json:"path,omitempty"`
	Hash        string                   `json:"hash,omitempty"`
	Mode        constants.ExtractionMode `json:"mode"`
	ExtractedAt time.Time                `json:"extracted_at"`
}

// Document is the extraction of one sheet or one PDF.
type Document struct {
	ID            uuid.UUID              `json:"id"`
	Name          string                 `json:"name"`
	Type          constants.DocumentType `json:"type"`
	Categories    []Category             `json:"categories"`
	Metadata      Metadata               `json:"metadata"`
	Total         float64                `json:"total"`
	DeclaredTotal *float64               `json:"declared_total,omitempty"`
	Currency      string                 `json:"currency,omitempty"`
	Source        Source                 `json:"source"`
}

// ItemCount counts items across categories.
func (d Document) ItemCount() int {
	n := 0
	for _, c := range d.Categories {
		n += len(c.Items)
	}
	return n
}

// Items returns all items in document order.
func (d Document) Items() []Item {
	out := make([]Item, 0, d.ItemCount())
	for _, c := range d.Categories {
		out = append(out, c.Items...)
	}
	return out
}

// SumTotals sums item total prices.
func (d Document) SumTotals() float64 {
	var sum float64
	for _, c := range d.Categories {
		for _, it := range c.Items {
			sum += it.Total()
		}
	}
	return sum
}

// Result pairs a document with the recovered issues met while building it.
type Result struct {
	Document Document `json:"document"`
	Warnings []string `json:"warnings,omitempty"`
}

// AggregatedMaterial is derived on demand from finished documents.
type AggregatedMaterial struct {
	Key           string   `json:"key"`
	Designation   string   `json:"designation"`
	Unit          string   `json:"unit"`
	TotalQuantity float64  `json:"total_quantity"`
	Occurrences   int      `json:"occurrences"`
	Sheets        []string `json:"sheets"`
}

// Float returns a pointer to v.
func Float(v float64) *float64 { return &v }
