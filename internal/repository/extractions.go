package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/dqe-extractor/constants"
	"github.com/joseph-ayodele/dqe-extractor/internal/boq"
	"github.com/joseph-ayodele/dqe-extractor/internal/common"
)

// Extraction is one stored document with its run metadata.
type Extraction struct {
	ID        uuid.UUID
	FilePath  string
	FileHash  string
	SheetName string
	DocType   constants.DocumentType
	Mode      constants.ExtractionMode
	Status    string
	ItemCount int
	Total     float64
	Currency  string
	Warnings  []string
	Document  boq.Document
	CreatedAt time.Time
}

// NewExtraction builds a row from a finished result.
func NewExtraction(res boq.Result) Extraction {
	d := res.Document
	status := constants.StatusOK
	if len(res.Warnings) > 0 {
		status = constants.StatusPartial
	}
	created := d.Source.ExtractedAt
	if created.IsZero() {
		created = time.Now().UTC()
	}
	return Extraction{
		ID:        d.ID,
		FilePath:  d.Source.Path,
		FileHash:  d.Source.Hash,
		SheetName: d.Name,
		DocType:   d.Type,
		Mode:      d.Source.Mode,
		Status:    status,
		ItemCount: d.ItemCount(),
		Total:     d.Total,
		Currency:  d.Currency,
		Warnings:  res.Warnings,
		Document:  d,
		CreatedAt: created,
	}
}

// ListFilter narrows List; zero values match everything.
type ListFilter struct {
	FileHash string
	Limit    int
}

type ExtractionRepository interface {
	Save(ctx context.Context, e Extraction) error
	Get(ctx context.Context, id string) (*Extraction, error)
	List(ctx context.Context, f ListFilter) ([]Extraction, error)
}

type extractionRepo struct {
	db  *DB
	log *slog.Logger
}

func NewExtractionRepository(db *DB, log *slog.Logger) ExtractionRepository {
	if log == nil {
		log = slog.Default()
	}
	return &extractionRepo{db: db, log: log}
}

func (r *extractionRepo) Save(ctx context.Context, e Extraction) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	warnings := e.Warnings
	if warnings == nil {
		warnings = []string{}
	}
	wb, err := json.Marshal(warnings)
	if err != nil {
		return fmt.Errorf("encode warnings: %w", err)
	}
	docJSON, err := json.Marshal(e.Document)
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}

	_, err = r.db.SQL.ExecContext(ctx, r.db.rebind(`
		INSERT INTO extractions
			(id, file_path, file_hash, sheet_name, doc_type, mode, status, item_count, total, currency, warnings, document, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`),
		e.ID.String(), e.FilePath, e.FileHash, e.SheetName, string(e.DocType), string(e.Mode), e.Status,
		e.ItemCount, e.Total, e.Currency, string(wb), string(docJSON), e.CreatedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		r.log.Error("extraction save failed", "id", e.ID, "sheet", e.SheetName, "err", err)
		return common.NewAppError(common.CodePersistence, "save extraction", fmt.Errorf("%w: %w", common.ErrDatabase, err))
	}
	r.log.Info("extraction saved", "id", e.ID, "sheet", e.SheetName, "items", e.ItemCount, "status", e.Status)
	return nil
}

// timeLayout is fixed width so text ordering is chronological.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

const selectColumns = `id, file_path, file_hash, sheet_name, doc_type, mode, status, item_count, total, currency, warnings, document, created_at`

func (r *extractionRepo) Get(ctx context.Context, id string) (*Extraction, error) {
	v := common.NewValidator().Field("id", id, common.Required, common.UUID)
	if err := common.ValidateAndReturnError(v); err != nil {
		return nil, err
	}

	row := r.db.SQL.QueryRowContext(ctx, r.db.rebind(`SELECT `+selectColumns+` FROM extractions WHERE id = $1`), id)
	e, err := scanExtraction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.NewAppError(common.CodePersistence, "extraction "+id, common.ErrNotFound)
	}
	if err != nil {
		r.log.Error("extraction get failed", "id", id, "err", err)
		return nil, common.NewAppError(common.CodePersistence, "get extraction", fmt.Errorf("%w: %w", common.ErrDatabase, err))
	}
	return e, nil
}

func (r *extractionRepo) List(ctx context.Context, f ListFilter) ([]Extraction, error) {
	query := `SELECT ` + selectColumns + ` FROM extractions`
	var args []any
	if f.FileHash != "" {
		query += ` WHERE file_hash = $1`
		args = append(args, f.FileHash)
	}
	query += ` ORDER BY created_at DESC, sheet_name ASC`
	if f.Limit > 0 {
		query += fmt.Sprintf(` LIMIT %d`, f.Limit)
	}

	rows, err := r.db.SQL.QueryContext(ctx, r.db.rebind(query), args...)
	if err != nil {
		return nil, common.NewAppError(common.CodePersistence, "list extractions", fmt.Errorf("%w: %w", common.ErrDatabase, err))
	}
	defer func() { _ = rows.Close() }()

	out := []Extraction{}
	for rows.Next() {
		e, err := scanExtraction(rows)
		if err != nil {
			return nil, common.NewAppError(common.CodePersistence, "scan extraction", fmt.Errorf("%w: %w", common.ErrDatabase, err))
		}
		out = append(out, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, common.NewAppError(common.CodePersistence, "list extractions", fmt.Errorf("%w: %w", common.ErrDatabase, err))
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanExtraction(s scanner) (*Extraction, error) {
	var (
		e                      Extraction
		id, docType, mode      string
		warnings, doc, created string
	)
	err := s.Scan(&id, &e.FilePath, &e.FileHash, &e.SheetName, &docType, &mode, &e.Status,
		&e.ItemCount, &e.Total, &e.Currency, &warnings, &doc, &created)
	if err != nil {
		return nil, err
	}
	if e.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("parse id: %w", err)
	}
	e.DocType = constants.DocumentType(docType)
	e.Mode = constants.ExtractionMode(mode)
	if err := json.Unmarshal([]byte(warnings), &e.Warnings); err != nil {
		return nil, fmt.Errorf("decode warnings: %w", err)
	}
	if err := json.Unmarshal([]byte(doc), &e.Document); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	if e.CreatedAt, err = time.Parse(timeLayout, created); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	return &e, nil
}
