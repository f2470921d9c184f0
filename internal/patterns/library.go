package patterns

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/joseph-ayodele/dqe-extractor/constants"
	"github.com/joseph-ayodele/dqe-extractor/internal/common"
)

// Library is a compiled Dialect. It is immutable once built and safe for
// concurrent use; callers must treat every exported slice and map as read-only.
type Library struct {
	HeaderTokens     []*regexp.Regexp
	Subtotal         []*regexp.Regexp
	Total            *regexp.Regexp
	CategoryKeywords []string // upper-cased
	MetadataKeywords []string // lower-cased
	NotANumber       string
	ValidUnits       map[string]struct{}
	UnitAliases      map[string]string

	Levels     []Level
	Dosage     []*regexp.Regexp
	Dimensions []*regexp.Regexp
	Thickness  []*regexp.Regexp

	LotHeadings []*regexp.Regexp
	LotNumber   *regexp.Regexp

	Metadata MetadataRegexps

	Columns map[constants.ColumnRole][]string

	DocumentTypes DocumentTypeHints
	RecapCode     *regexp.Regexp

	TextItemLine       *regexp.Regexp
	TextTrailingAmount *regexp.Regexp

	Categories       []CategoryRule // keywords lower-cased
	FallbackCategory string
	DefaultSection   string

	Limits Limits
}

// Level is a compiled building-level pattern.
type Level struct {
	Label string
	Re    *regexp.Regexp
}

// MetadataRegexps are the compiled metadata field patterns.
type MetadataRegexps struct {
	Date         *regexp.Regexp
	BuildingRef  *regexp.Regexp
	DocumentRef  *regexp.Regexp
	BuildingType *regexp.Regexp
}

var (
	defaultOnce sync.Once
	defaultLib  *Library
)

// Default returns the built-in library. The value is shared.
func Default() *Library {
	defaultOnce.Do(func() {
		lib, err := Compile(DefaultDialect())
		if err != nil {
			panic(fmt.Sprintf("patterns: built-in dialect does not compile: %v", err))
		}
		defaultLib = lib
	})
	return defaultLib
}

// Load reads a YAML dialect file. Keys present in the file override the
// built-in dialect: lists replace the default list, maps are merged.
func Load(path string) (*Library, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, common.NewAppError(common.CodeConfig, "read patterns file "+path, errors.Join(common.ErrConfig, err))
	}
	return Parse(data)
}

// Parse decodes a YAML dialect on top of the built-in one and compiles it.
func Parse(data []byte) (*Library, error) {
	d := DefaultDialect()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&d); err != nil && !errors.Is(err, io.EOF) {
		return nil, common.NewAppError(common.CodeConfig, "decode patterns yaml", errors.Join(common.ErrConfig, err))
	}
	return Compile(d)
}

// Compile validates and compiles a dialect.
func Compile(d Dialect) (*Library, error) {
	c := &compiler{}
	lib := &Library{
		HeaderTokens:     c.all("header_tokens", d.HeaderTokens),
		Subtotal:         c.all("subtotal_tokens", d.SubtotalTokens),
		Total:            c.one("total_pattern", d.TotalPattern),
		CategoryKeywords: mapStrings(d.CategoryKeywords, strings.ToUpper),
		MetadataKeywords: mapStrings(d.MetadataKeywords, strings.ToLower),
		NotANumber:       strings.ToLower(strings.TrimSpace(d.NotANumber)),
		ValidUnits:       make(map[string]struct{}, len(d.ValidUnits)),
		UnitAliases:      make(map[string]string, len(d.UnitAliases)),
		Dosage:           c.all("dosage", d.Dosage),
		Dimensions:       c.all("dimensions", d.Dimensions),
		Thickness:        c.all("thickness", d.Thickness),
		LotHeadings:      c.all("lot_headings", d.LotHeadings),
		LotNumber:        c.one("lot_number", d.LotNumber),
		Metadata: MetadataRegexps{
			Date:         c.one("metadata.date", d.Metadata.Date),
			BuildingRef:  c.one("metadata.building_ref", d.Metadata.BuildingRef),
			DocumentRef:  c.one("metadata.document_ref", d.Metadata.DocumentRef),
			BuildingType: c.one("metadata.building_type", d.Metadata.BuildingType),
		},
		Columns:       make(map[constants.ColumnRole][]string, len(d.Columns)),
		DocumentTypes: lowerHints(d.DocumentTypes),
		RecapCode:     c.one("recap_code", d.RecapCode),

		TextItemLine:       c.one("text_item_line", d.TextItemLine),
		TextTrailingAmount: c.one("text_trailing_amount", d.TextTrailingAmount),

		FallbackCategory: strings.TrimSpace(d.FallbackCategory),
		DefaultSection:   strings.TrimSpace(d.DefaultSection),
		Limits:           d.Limits,
	}
	for _, u := range d.ValidUnits {
		lib.ValidUnits[strings.ToUpper(strings.TrimSpace(u))] = struct{}{}
	}
	for k, v := range d.UnitAliases {
		lib.UnitAliases[strings.ToUpper(strings.TrimSpace(k))] = strings.ToUpper(strings.TrimSpace(v))
	}
	for _, lv := range d.Levels {
		lib.Levels = append(lib.Levels, Level{Label: lv.Label, Re: c.one("levels."+lv.Label, lv.Pattern)})
	}
	for name, kws := range d.Columns {
		role := constants.ColumnRole(strings.ToUpper(name))
		if !role.IsValid() {
			c.fail(fmt.Errorf("columns: unknown role %q", name))
			continue
		}
		lib.Columns[role] = mapStrings(kws, strings.ToLower)
	}
	for _, cat := range d.Categories {
		rule := CategoryRule{Name: strings.TrimSpace(cat.Name), Keywords: mapStrings(cat.Keywords, strings.ToLower)}
		for _, sub := range cat.SubCategories {
			rule.SubCategories = append(rule.SubCategories, SubCategoryRule{
				Name:     strings.TrimSpace(sub.Name),
				Keywords: mapStrings(sub.Keywords, strings.ToLower),
			})
		}
		if rule.Name == "" {
			c.fail(errors.New("categories: entry without name"))
			continue
		}
		lib.Categories = append(lib.Categories, rule)
	}

	if len(lib.Categories) == 0 {
		c.fail(errors.New("categories: at least one category is required"))
	}
	if lib.FallbackCategory == "" {
		c.fail(errors.New("fallback_category is required"))
	}
	if lib.DefaultSection == "" {
		c.fail(errors.New("default_section is required"))
	}
	if _, ok := lib.Columns[constants.RoleDesignation]; !ok {
		c.fail(errors.New("columns: DESIGNATION keywords are required"))
	}
	c.limits(d.Limits)

	if err := errors.Join(c.errs...); err != nil {
		return nil, common.NewAppError(common.CodeConfig, "invalid patterns dialect", errors.Join(common.ErrConfig, err))
	}
	return lib, nil
}

// CategoryNames returns the taxonomy names in enumeration order.
func (l *Library) CategoryNames() []string {
	out := make([]string, 0, len(l.Categories)+1)
	for _, c := range l.Categories {
		out = append(out, c.Name)
	}
	return out
}

type compiler struct {
	errs []error
}

func (c *compiler) fail(err error) { c.errs = append(c.errs, err) }

func (c *compiler) one(field, pattern string) *regexp.Regexp {
	if strings.TrimSpace(pattern) == "" {
		c.fail(fmt.Errorf("%s: empty pattern", field))
		return nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		c.fail(fmt.Errorf("%s: %w", field, err))
		return nil
	}
	return re
}

func (c *compiler) all(field string, patterns []string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(patterns))
	for i, p := range patterns {
		if re := c.one(fmt.Sprintf("%s[%d]", field, i), p); re != nil {
			out = append(out, re)
		}
	}
	return out
}

func (c *compiler) limits(l Limits) {
	positive := map[string]int{
		"header_search_rows":     l.HeaderSearchRows,
		"header_min_matches":     l.HeaderMinMatches,
		"metadata_rows":          l.MetadataRows,
		"type_sniff_rows":        l.TypeSniffRows,
		"min_designation_length": l.MinDesignationLength,
		"preview_rows":           l.PreviewRows,
		"estimate_columns":       l.EstimateColumns,
		"aggregate_key_length":   l.AggregateKeyLength,
	}
	for name, v := range positive {
		if v <= 0 {
			c.fail(fmt.Errorf("limits.%s must be positive", name))
		}
	}
	if l.DetailedStartRow < 0 || l.SummaryStartRow < 0 {
		c.fail(errors.New("limits: start rows must not be negative"))
	}
	if l.MismatchTolerance < 0 {
		c.fail(errors.New("limits.mismatch_tolerance must not be negative"))
	}
}

func mapStrings(in []string, f func(string) string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, f(s))
		}
	}
	return out
}

func lowerHints(h DocumentTypeHints) DocumentTypeHints {
	// Content hints may carry meaningful surrounding spaces (" pu "), so only case is folded.
	lower := func(in []string) []string {
		out := make([]string, 0, len(in))
		for _, s := range in {
			if s != "" {
				out = append(out, strings.ToLower(s))
			}
		}
		return out
	}
	return DocumentTypeHints{
		RecapName:        lower(h.RecapName),
		DetailedPrefixes: lower(h.DetailedPrefixes),
		SummaryName:      lower(h.SummaryName),
		DetailedContent:  lower(h.DetailedContent),
		SummaryContent:   lower(h.SummaryContent),
	}
}
