package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joseph-ayodele/dqe-extractor/internal/boq"
	"github.com/joseph-ayodele/dqe-extractor/internal/common"
)

// Format names an output encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// FormatFromPath picks the format from the file extension.
func FormatFromPath(path string) (Format, bool) {
	switch f := Format(strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))); f {
	case FormatJSON, FormatCSV, FormatXLSX:
		return f, true
	}
	return "", false
}

// Columns is the fixed CSV layout, one row per item.
var Columns = []string{
	"numero", "designation", "categorie", "sous_categorie",
	"unite", "quantite", "prix_unitaire", "prix_total",
	"lot_numero", "lot_nom", "niveau", "dosage", "dimensions", "epaisseur",
}

// Service writes reports.
type Service struct {
	logger *slog.Logger
}

func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger}
}

// Write encodes r to w in the given format.
func (s *Service) Write(w io.Writer, f Format, r Report) error {
	var err error
	switch f {
	case FormatJSON:
		err = WriteJSON(w, r)
	case FormatCSV:
		err = WriteCSV(w, r.Documents...)
	case FormatXLSX:
		var b []byte
		if b, err = XLSX(r); err == nil {
			_, err = w.Write(b)
		}
	default:
		return common.NewAppError(common.CodeConfig, fmt.Sprintf("unknown export format %q", f), common.ErrUnsupportedFormat)
	}
	if err != nil {
		return fmt.Errorf("export %s: %w", f, err)
	}
	s.logger.Info("export.ok", "format", string(f), "documents", len(r.Documents), "items", r.ItemCount)
	return nil
}

// WriteFile creates path and writes r in the format implied by its extension.
func (s *Service) WriteFile(path string, r Report) error {
	f, ok := FormatFromPath(path)
	if !ok {
		return common.NewAppError(common.CodeConfig, fmt.Sprintf("cannot export to %q", filepath.Base(path)), common.ErrUnsupportedFormat)
	}
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := s.Write(out, f, r); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

// WriteJSON writes r indented, keeping non-ASCII text readable.
func WriteJSON(w io.Writer, r Report) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// WriteCSV writes one row per item with the Columns header.
func WriteCSV(w io.Writer, docs ...boq.Document) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return err
	}
	for _, d := range docs {
		for _, it := range d.Items() {
			if err := cw.Write(itemRecord(it)); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

func itemRecord(it boq.Item) []string {
	return []string{
		it.Code,
		it.Designation,
		it.Category,
		it.SubCategory,
		it.Unit,
		formatFloat(it.Quantity),
		formatPtr(it.UnitPrice),
		formatPtr(it.TotalPrice),
		it.LotNumber,
		it.LotName,
		it.Level,
		it.Attributes.Dosage,
		it.Attributes.Dimensions,
		it.Attributes.Thickness,
	}
}

func formatFloat(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

func formatPtr(v *float64) string {
	if v == nil {
		return ""
	}
	return formatFloat(*v)
}
