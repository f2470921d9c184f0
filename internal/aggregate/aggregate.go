// Package aggregate derives cross-document views (material totals, summaries,
// flat listings) from finished documents. Nothing here is persisted.
package aggregate

import (
	"cmp"
	"regexp"
	"slices"
	"strings"

	"github.com/joseph-ayodele/dqe-extractor/constants"
	"github.com/joseph-ayodele/dqe-extractor/internal/boq"
	"github.com/joseph-ayodele/dqe-extractor/internal/patterns"
)

var (
	spaceRe       = regexp.MustCompile(`\s+`)
	punctuationRe = regexp.MustCompile(`[^\p{L}\p{N}_\s]`)
)

// Aggregator groups items across documents.
type Aggregator struct {
	keyLength int
}

// New builds an aggregator over lib; nil selects the built-in library.
func New(lib *patterns.Library) Aggregator {
	if lib == nil {
		lib = patterns.Default()
	}
	n := lib.Limits.AggregateKeyLength
	if n <= 0 {
		n = 100
	}
	return Aggregator{keyLength: n}
}

// ByMaterial aggregates with the built-in limits.
func ByMaterial(docs ...boq.Document) []boq.AggregatedMaterial {
	return New(nil).ByMaterial(docs...)
}

// Key normalizes a designation for grouping: lower case, collapsed
// whitespace, punctuation removed, truncated to the key length.
func (a Aggregator) Key(designation string) string {
	k := strings.ToLower(designation)
	k = spaceRe.ReplaceAllString(k, " ")
	k = punctuationRe.ReplaceAllString(k, "")
	if r := []rune(k); len(r) > a.keyLength {
		k = string(r[:a.keyLength])
	}
	return k
}

// ByMaterial sums quantities of items sharing a key. The first occurrence
// provides the designation and unit. Results are ordered by total quantity,
// descending, ties kept in first-seen order.
func (a Aggregator) ByMaterial(docs ...boq.Document) []boq.AggregatedMaterial {
	index := map[string]int{}
	var out []boq.AggregatedMaterial

	for _, doc := range docs {
		for _, it := range doc.Items() {
			key := a.Key(it.Designation)
			pos, ok := index[key]
			if !ok {
				pos = len(out)
				index[key] = pos
				out = append(out, boq.AggregatedMaterial{
					Key:         key,
					Designation: it.Designation,
					Unit:        it.Unit,
					Sheets:      []string{},
				})
			}
			m := &out[pos]
			m.TotalQuantity += it.Quantity
			m.Occurrences++
			if !slices.Contains(m.Sheets, doc.Name) {
				m.Sheets = append(m.Sheets, doc.Name)
			}
		}
	}

	slices.SortStableFunc(out, func(x, y boq.AggregatedMaterial) int {
		return cmp.Compare(y.TotalQuantity, x.TotalQuantity)
	})
	if out == nil {
		out = []boq.AggregatedMaterial{}
	}
	return out
}

// Summary is a count and amount for one bucket.
type Summary struct {
	Key   string  `json:"key"`
	Name  string  `json:"name,omitempty"`
	Count int     `json:"count"`
	Total float64 `json:"total"`
}

// Summaries groups items by category, lot and level, each in first-seen order.
type Summaries struct {
	ByCategory []Summary `json:"by_category"`
	ByLot      []Summary `json:"by_lot"`
	ByLevel    []Summary `json:"by_level"`
}

// Summarize computes Summaries across docs. Items without a lot or level fall
// in the "Non défini" bucket.
func Summarize(docs ...boq.Document) Summaries {
	cats, lots, levels := newBuckets(), newBuckets(), newBuckets()
	for _, doc := range docs {
		for _, c := range doc.Categories {
			for _, it := range c.Items {
				cats.add(firstNonEmpty(it.Category, c.Name), "", it.Total())
				lots.add(firstNonEmpty(it.LotNumber, constants.UndefinedBucket), it.LotName, it.Total())
				levels.add(firstNonEmpty(it.Level, constants.UndefinedBucket), "", it.Total())
			}
		}
	}
	return Summaries{ByCategory: cats.list, ByLot: lots.list, ByLevel: levels.list}
}

type buckets struct {
	index map[string]int
	list  []Summary
}

func newBuckets() *buckets {
	return &buckets{index: map[string]int{}, list: []Summary{}}
}

func (b *buckets) add(key, name string, total float64) {
	pos, ok := b.index[key]
	if !ok {
		pos = len(b.list)
		b.index[key] = pos
		b.list = append(b.list, Summary{Key: key, Name: name})
	}
	b.list[pos].Count++
	b.list[pos].Total += total
}

// MaterialRow is one item flattened with its sheet and category.
type MaterialRow struct {
	Sheet       string   `json:"sheet"`
	Category    string   `json:"category"`
	Designation string   `json:"designation"`
	Unit        string   `json:"unit"`
	Quantity    float64  `json:"quantity"`
	UnitPrice   *float64 `json:"unit_price,omitempty"`
	TotalPrice  *float64 `json:"total_price,omitempty"`
}

// Flatten lists every item of docs in document order.
func Flatten(docs ...boq.Document) []MaterialRow {
	out := []MaterialRow{}
	for _, doc := range docs {
		for _, c := range doc.Categories {
			for _, it := range c.Items {
				out = append(out, MaterialRow{
					Sheet:       doc.Name,
					Category:    firstNonEmpty(it.Category, c.Name),
					Designation: it.Designation,
					Unit:        it.Unit,
					Quantity:    it.Quantity,
					UnitPrice:   it.UnitPrice,
					TotalPrice:  it.TotalPrice,
				})
			}
		}
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
