package ingest

import (
	"path/filepath"
	"strings"

	"github.com/joseph-ayodele/dqe-extractor/constants"
)

// AllowedExt checks ext against exts, or the default xlsx/xlsm/pdf set when
// exts is nil.
func AllowedExt(ext string, exts map[string]struct{}) bool {
	if exts == nil {
		exts = constants.AllowedExtensions
	}
	_, ok := exts[constants.NormalizeExt(ext)]
	return ok
}

// ExtSet builds an extension set from user input such as ".xlsx,pdf".
// An empty list yields nil, which selects the defaults.
func ExtSet(list []string) map[string]struct{} {
	var out map[string]struct{}
	for _, e := range list {
		e = constants.NormalizeExt(strings.TrimSpace(e))
		if e == "" {
			continue
		}
		if out == nil {
			out = map[string]struct{}{}
		}
		out[e] = struct{}{}
	}
	return out
}

// IsHidden checks if a file or directory is hidden (starts with '.').
func IsHidden(path string) bool {
	base := filepath.Base(path)
	return base != "." && base != ".." && strings.HasPrefix(base, ".")
}
