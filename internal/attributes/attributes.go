// Package attributes lifts technical details (building level, concrete dosage,
// dimensions, thickness) out of item designations.
package attributes

import (
	"regexp"

	"github.com/joseph-ayodele/dqe-extractor/internal/boq"
	"github.com/joseph-ayodele/dqe-extractor/internal/patterns"
)

// DosageUnit is appended to every detected dosage value.
const DosageUnit = "kg/m³"

// Extractor runs independent regex scans over a designation. Each scan
// returns the first match in pattern order, or "".
type Extractor struct {
	lib *patterns.Library
}

// New returns an extractor over lib; nil selects the built-in library.
func New(lib *patterns.Library) *Extractor {
	if lib == nil {
		lib = patterns.Default()
	}
	return &Extractor{lib: lib}
}

// Level returns the label of the first level pattern found in text.
func (e *Extractor) Level(text string) string {
	for _, lv := range e.lib.Levels {
		if lv.Re.MatchString(text) {
			return lv.Label
		}
	}
	return ""
}

// Dosage returns the concrete dosage normalized to "<n> kg/m³".
func (e *Extractor) Dosage(text string) string {
	for _, re := range e.lib.Dosage {
		if m := re.FindStringSubmatch(text); m != nil {
			return captured(m) + " " + DosageUnit
		}
	}
	return ""
}

// Dimensions returns the matched substring of the first dimension pattern.
func (e *Extractor) Dimensions(text string) string {
	return firstMatch(e.lib.Dimensions, text)
}

// Thickness returns the matched substring of the first thickness pattern.
func (e *Extractor) Thickness(text string) string {
	return firstMatch(e.lib.Thickness, text)
}

// Extract runs the dosage, dimension and thickness scans.
func (e *Extractor) Extract(designation string) boq.Attributes {
	return boq.Attributes{
		Dosage:     e.Dosage(designation),
		Dimensions: e.Dimensions(designation),
		Thickness:  e.Thickness(designation),
	}
}

func firstMatch(res []*regexp.Regexp, text string) string {
	for _, re := range res {
		if m := re.FindString(text); m != "" {
			return m
		}
	}
	return ""
}

// captured prefers the first group and falls back to the whole match.
func captured(m []string) string {
	if len(m) > 1 && m[1] != "" {
		return m[1]
	}
	return m[0]
}
