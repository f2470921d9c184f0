// Package categorize assigns a trade category to an item designation by
// keyword scoring against the pattern library's taxonomy.
package categorize

import (
	"strings"

	"github.com/joseph-ayodele/dqe-extractor/constants"
	"github.com/joseph-ayodele/dqe-extractor/internal/patterns"
)

// Engine is immutable and safe for concurrent use.
type Engine struct {
	rules    []patterns.CategoryRule
	fallback string
	known    map[string]struct{}
}

// New builds an engine over lib; nil selects the built-in library.
func New(lib *patterns.Library) *Engine {
	if lib == nil {
		lib = patterns.Default()
	}
	e := &Engine{
		rules:    lib.Categories,
		fallback: lib.FallbackCategory,
		known:    make(map[string]struct{}, len(lib.Categories)+1),
	}
	for _, r := range lib.Categories {
		e.known[r.Name] = struct{}{}
	}
	e.known[e.fallback] = struct{}{}
	return e
}

// Categorize scores every category by the number of its keywords found in the
// designation (one point per keyword, case-insensitive). A later category
// replaces the best only on a strictly greater score, so enumeration order
// breaks ties. With no keyword found the fallback category is returned.
func (e *Engine) Categorize(designation string) (string, string) {
	text := strings.ToLower(designation)
	best, bestScore := -1, 0
	for i, r := range e.rules {
		if s := score(text, r.Keywords); s > bestScore {
			best, bestScore = i, s
		}
	}
	if best < 0 {
		return e.fallback, ""
	}
	return e.rules[best].Name, subCategory(text, e.rules[best].SubCategories)
}

// SubCategory resolves the sub-category of designation inside a known category.
func (e *Engine) SubCategory(category, designation string) string {
	for _, r := range e.rules {
		if r.Name == category {
			return subCategory(strings.ToLower(designation), r.SubCategories)
		}
	}
	return ""
}

// Resolve keeps label when it names a known category, then tries the synonym
// table, and finally re-runs Categorize on the designation.
func (e *Engine) Resolve(label, designation string) (category, sub string) {
	label = strings.TrimSpace(label)
	if e.Known(label) {
		return label, e.SubCategory(label, designation)
	}
	if c, ok := constants.Canonicalize(label); ok && e.Known(string(c)) {
		return string(c), e.SubCategory(string(c), designation)
	}
	return e.Categorize(designation)
}

// Known reports whether name is a category of the taxonomy or the fallback.
func (e *Engine) Known(name string) bool {
	_, ok := e.known[name]
	return ok
}

// Names lists the taxonomy in enumeration order, fallback last.
func (e *Engine) Names() []string {
	out := make([]string, 0, len(e.rules)+1)
	seenFallback := false
	for _, r := range e.rules {
		out = append(out, r.Name)
		seenFallback = seenFallback || r.Name == e.fallback
	}
	if !seenFallback {
		out = append(out, e.fallback)
	}
	return out
}

// Fallback returns the category used when nothing scores.
func (e *Engine) Fallback() string { return e.fallback }

func score(text string, keywords []string) int {
	n := 0
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			n++
		}
	}
	return n
}

func subCategory(text string, subs []patterns.SubCategoryRule) string {
	for _, sub := range subs {
		for _, kw := range sub.Keywords {
			if strings.Contains(text, kw) {
				return sub.Name
			}
		}
	}
	return ""
}
