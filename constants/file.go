package constants

import "strings"

const (
	XLSX = "XLSX"
	PDF  = "PDF"
)

// FileTypes holds the source formats the extractor can turn into grids.
var FileTypes = []string{XLSX, PDF}

// AllowedExtensions holds the default file extensions picked up by directory scans.
var AllowedExtensions = map[string]struct{}{
	"xlsx": {},
	"xlsm": {},
	"pdf":  {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// MapExtToFormat returns XLSX, PDF or "" for an extension (with or without dot).
func MapExtToFormat(ext string) string {
	switch NormalizeExt(ext) {
	case "xlsx", "xlsm":
		return XLSX
	case "pdf":
		return PDF
	default:
		return ""
	}
}
