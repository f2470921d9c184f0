package normalize

import (
	"strings"

	"github.com/joseph-ayodele/dqe-extractor/internal/patterns"
)

// Units canonicalizes unit cells using the alias table of a pattern library.
type Units struct {
	aliases map[string]string
	valid   map[string]struct{}
	nan     string
}

// NewUnits builds a unit normalizer; a nil library selects the built-in one.
func NewUnits(lib *patterns.Library) Units {
	if lib == nil {
		lib = patterns.Default()
	}
	return Units{aliases: lib.UnitAliases, valid: lib.ValidUnits, nan: strings.ToUpper(lib.NotANumber)}
}

// Normalize upper-cases and trims u and maps known aliases to their short
// code. The not-a-number marker becomes "".
func (n Units) Normalize(u string) string {
	u = strings.Join(strings.Fields(strings.ToUpper(u)), " ")
	if u == "" || u == n.nan {
		return ""
	}
	if alias, ok := n.aliases[u]; ok {
		return alias
	}
	return u
}

// IsKnown reports whether u, after trimming and upper-casing, is a listed unit code.
func (n Units) IsKnown(u string) bool {
	_, ok := n.valid[strings.ToUpper(strings.TrimSpace(u))]
	return ok
}
