package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/dqe-extractor/constants"
	"github.com/joseph-ayodele/dqe-extractor/internal/boq"
	"github.com/joseph-ayodele/dqe-extractor/internal/common"
	"github.com/joseph-ayodele/dqe-extractor/internal/extract"
	"github.com/joseph-ayodele/dqe-extractor/internal/pipeline"
)

// selectionFlags are shared by every command that reads workbooks.
type selectionFlags struct {
	sheets  []string
	indices []int
	types   []string
	exclude []string
}

func (f *selectionFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringSliceVar(&f.sheets, "sheet", nil, "sheet names to extract")
	cmd.Flags().IntSliceVar(&f.indices, "index", nil, "sheet indices to extract (0-based)")
	cmd.Flags().StringSliceVar(&f.types, "type-filter", nil, "document types to extract: detailed, summary, recap, unknown")
	cmd.Flags().StringSliceVar(&f.exclude, "exclude", nil, "sheet names to skip")
}

func (f *selectionFlags) selection() (extract.Selection, error) {
	sel := extract.Selection{Names: f.sheets, Indices: f.indices, Exclude: f.exclude}
	for _, t := range f.types {
		dt, ok := constants.ParseDocumentType(strings.ToLower(strings.TrimSpace(t)))
		if !ok {
			return sel, common.NewAppError(common.CodeConfig, fmt.Sprintf("unknown document type %q", t), common.ErrInvalidInput)
		}
		sel.Types = append(sel.Types, dt)
	}
	return sel, nil
}

// extractFlags configure one extraction run.
type extractFlags struct {
	selectionFlags
	mode     string
	docType  string
	mapping  string
	currency string
}

func (f *extractFlags) register(cmd *cobra.Command) {
	f.selectionFlags.register(cmd)
	cmd.Flags().StringVarP(&f.mode, "mode", "m", string(constants.ModeLocal), "extraction mode: local, ai or auto")
	cmd.Flags().StringVar(&f.docType, "type", "", "force the document type of every sheet")
	cmd.Flags().StringVar(&f.mapping, "map", "", "explicit columns, e.g. designation=1,unit=2,quantity=3,unit_price=4,total_price=5")
	cmd.Flags().StringVar(&f.currency, "currency", "", "currency label (default $DQE_CURRENCY)")
}

func (f *extractFlags) options(defaultCurrency string) (pipeline.Options, error) {
	var opts pipeline.Options
	mode, ok := constants.ParseExtractionMode(strings.ToLower(f.mode))
	if !ok {
		return opts, common.NewAppError(common.CodeConfig, fmt.Sprintf("unknown mode %q", f.mode), common.ErrInvalidInput)
	}
	opts.Mode = mode

	if f.docType != "" {
		dt, ok := constants.ParseDocumentType(strings.ToLower(f.docType))
		if !ok {
			return opts, common.NewAppError(common.CodeConfig, fmt.Sprintf("unknown document type %q", f.docType), common.ErrInvalidInput)
		}
		opts.Type = dt
	}

	m, err := parseMapping(f.mapping)
	if err != nil {
		return opts, err
	}
	opts.Mapping = m

	if opts.Selection, err = f.selection(); err != nil {
		return opts, err
	}
	opts.Currency = f.currency
	if opts.Currency == "" {
		opts.Currency = defaultCurrency
	}
	return opts, nil
}

// parseMapping reads "role=col" pairs. Roles are case-insensitive and columns
// are 0-based.
func parseMapping(s string) (boq.ColumnMapping, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	m := boq.ColumnMapping{}
	for _, pair := range strings.Split(s, ",") {
		role, col, ok := strings.Cut(strings.TrimSpace(pair), "=")
		if !ok {
			return nil, common.NewAppError(common.CodeConfig, fmt.Sprintf("bad column mapping %q", pair), common.ErrInvalidInput)
		}
		r := constants.ColumnRole(strings.ToUpper(strings.TrimSpace(role)))
		if !r.IsValid() {
			return nil, common.NewAppError(common.CodeConfig, fmt.Sprintf("unknown column role %q", role), common.ErrInvalidInput)
		}
		idx, err := strconv.Atoi(strings.TrimSpace(col))
		if err != nil || idx < 0 {
			return nil, common.NewAppError(common.CodeConfig, fmt.Sprintf("bad column index %q", col), common.ErrInvalidInput)
		}
		m[r] = idx
	}
	return m, nil
}
