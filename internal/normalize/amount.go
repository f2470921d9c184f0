// Package normalize turns free-text cell values into numbers and canonical unit codes.
package normalize

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

var (
	scientificRe   = regexp.MustCompile(`^-?\d+(?:\.\d+)?[eE][+-]?\d+$`)
	currencyRe     = regexp.MustCompile(`(?i)F\s?CFA|XAF|XOF|\p{Sc}`)
	spaceGroupedRe = regexp.MustCompile(`^\d{1,3}( \d{3})*([,.]\d+)?$`)
	dotGroupedRe   = regexp.MustCompile(`^\d{1,3}(\.\d{3})+$`)

	spaces = strings.NewReplacer("\u00a0", " ", "\u202f", " ", "\u2009", " ", "\t", " ")
)

// ParseAmount parses a monetary or quantity string where digit groups may be
// separated by spaces or dots and a comma marks the decimal part. Currency
// tokens (FCFA, XAF, symbols) are ignored; other letters such as units or
// level codes make the string unparsable.
// The steps run in a fixed order; reordering them changes which punctuation is
// read as a thousands separator.
func ParseAmount(s string) (float64, bool) {
	s = strings.TrimSpace(spaces.Replace(s))
	if s == "" {
		return 0, false
	}
	// Raw spreadsheet values may be stored in exponent form.
	if scientificRe.MatchString(s) {
		return finite(strconv.ParseFloat(s, 64))
	}

	// Only currency tokens are dropped; any other letter makes the value text.
	s = strings.TrimSpace(currencyRe.ReplaceAllString(s, ""))
	if strings.ContainsFunc(s, unicode.IsLetter) {
		return 0, false
	}
	negative := strings.HasPrefix(s, "-")
	if negative {
		s = strings.TrimSpace(s[1:])
	}
	if s == "" {
		return 0, false
	}

	if spaceGroupedRe.MatchString(s) {
		s = strings.ReplaceAll(s, " ", "")
	}
	if dotGroupedRe.MatchString(s) {
		s = strings.ReplaceAll(s, ".", "")
	}
	s = strings.ReplaceAll(s, ",", ".")
	if parts := strings.Split(s, "."); len(parts) > 2 {
		last := len(parts) - 1
		s = strings.Join(parts[:last], "") + "." + parts[last]
	}

	v, ok := finite(strconv.ParseFloat(s, 64))
	if !ok {
		return 0, false
	}
	if negative {
		v = -v
	}
	return v, true
}

// ParseAmountOr returns def when s is unparsable.
func ParseAmountOr(s string, def float64) float64 {
	if v, ok := ParseAmount(s); ok {
		return v
	}
	return def
}

// ParseAmountPtr returns nil when s is unparsable.
func ParseAmountPtr(s string) *float64 {
	if v, ok := ParseAmount(s); ok {
		return &v
	}
	return nil
}

// IsNumeric reports whether s parses as an amount.
func IsNumeric(s string) bool {
	_, ok := ParseAmount(s)
	return ok
}

func finite(v float64, err error) (float64, bool) {
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
